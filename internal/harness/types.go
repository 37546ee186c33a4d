package harness

import "github.com/graphspan/splice/internal/instance"

// TraceEvent records one step of a scenario run. The match search
// produces one event per candidate in search order, and the run closes
// with either an "applied" event carrying the result fingerprint or a
// "no-result" event.
type TraceEvent struct {
	Type        string           `json:"type"`
	Seq         int64            `json:"seq"`
	Match       map[string][]int `json:"match,omitempty"`
	Condition   string           `json:"condition,omitempty"`
	Fingerprint string           `json:"fingerprint,omitempty"`
	Counts      map[string]int   `json:"counts,omitempty"`
}

// Trace event types.
const (
	TraceMatchFound    = "match-found"
	TraceMatchRejected = "match-rejected"
	TraceApplied       = "applied"
	TraceNoResult      = "no-result"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall scenario success.
	// True when the expect clause and every assertion hold.
	Pass bool `json:"pass"`

	// RunToken identifies this run in logs and golden snapshots.
	RunToken string `json:"run_token"`

	// Applied is true when the rewrite produced a result instance.
	Applied bool `json:"applied"`

	// Trace lists every match candidate in search order, then the
	// application outcome. Used for golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Output is the rewritten instance, nil when nothing applied.
	Output *instance.Instance `json:"-"`
}

// NewResult creates a new passing result carrying the run token.
// Used as the starting point for scenario execution.
func NewResult(token string) *Result {
	return &Result{
		Pass:     true,
		RunToken: token,
		Trace:    []TraceEvent{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// AddMatchFound records a candidate that passed both gluing conditions.
func (r *Result) AddMatchFound(parts map[string][]int, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:  TraceMatchFound,
		Seq:   seq,
		Match: parts,
	})
}

// AddMatchRejected records a candidate barred by a gluing condition.
func (r *Result) AddMatchRejected(parts map[string][]int, condition string, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:      TraceMatchRejected,
		Seq:       seq,
		Match:     parts,
		Condition: condition,
	})
}

// AddApplied records the fingerprint and element counts of the result
// instance.
func (r *Result) AddApplied(fingerprint string, counts map[string]int, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:        TraceApplied,
		Seq:         seq,
		Fingerprint: fingerprint,
		Counts:      counts,
	})
}

// AddNoResult records that no candidate was applied.
func (r *Result) AddNoResult(seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type: TraceNoResult,
		Seq:  seq,
	})
}
