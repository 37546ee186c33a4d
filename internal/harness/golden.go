package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/graphspan/splice/internal/attr"
)

// TraceSnapshot captures the complete trace of one scenario run.
// All fields serialize through canonical JSON so golden comparison is
// byte-stable across runs and platforms.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	RunToken     string       `json:"run_token,omitempty"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts the snapshot for attr.MarshalCanonical, which
// handles plain maps, slices, and scalars.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type": event.Type,
			"seq":  event.Seq,
		}
		if event.Match != nil {
			eventMap["match"] = matchToCanonical(event.Match)
		}
		if event.Condition != "" {
			eventMap["condition"] = event.Condition
		}
		if event.Fingerprint != "" {
			eventMap["fingerprint"] = event.Fingerprint
		}
		if event.Counts != nil {
			eventMap["counts"] = countsToCanonical(event.Counts)
		}
		traceList[i] = eventMap
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
	if s.RunToken != "" {
		out["run_token"] = s.RunToken
	}
	return out
}

func matchToCanonical(parts map[string][]int) map[string]any {
	out := make(map[string]any, len(parts))
	for sort, part := range parts {
		out[sort] = part
	}
	return out
}

func countsToCanonical(counts map[string]int) map[string]any {
	out := make(map[string]any, len(counts))
	for sort, n := range counts {
		out[sort] = n
	}
	return out
}

// Snapshot serializes a run's trace to the canonical JSON bytes stored
// in golden files.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		RunToken:     result.RunToken,
		Trace:        result.Trace,
	}
	return attr.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its trace snapshot
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files serve as the source of truth for expected trace
// behavior: the full candidate enumeration, the selected match, and the
// result fingerprint.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	data, err := Snapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
