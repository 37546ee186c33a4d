package harness

import (
	"bytes"
	"fmt"
)

// Principle names a property every scenario run must uphold, regardless
// of what the scenario itself asserts.
type Principle string

const (
	// PrincipleHostPreserved: a run never mutates the host instance.
	// The rewrite builds a fresh result and leaves its input alone.
	PrincipleHostPreserved Principle = "host-preserved"

	// PrincipleDeterministic: two runs of the same scenario produce
	// byte-identical trace snapshots.
	PrincipleDeterministic Principle = "deterministic"

	// PrincipleResultValid: an applied run's output is a valid instance
	// of the scenario's schema.
	PrincipleResultValid Principle = "result-valid"
)

// PrincipleFailure represents one violated principle.
type PrincipleFailure struct {
	Principle Principle `json:"principle"`
	Scenario  string    `json:"scenario"`
	Detail    string    `json:"detail"`
}

// PrincipleReport summarizes the principle checks for one scenario.
type PrincipleReport struct {
	Scenario string             `json:"scenario"`
	Checked  int                `json:"checked"`
	Passed   int                `json:"passed"`
	Failures []PrincipleFailure `json:"failures,omitempty"`
}

// Pass reports whether every checked principle held.
func (r *PrincipleReport) Pass() bool { return len(r.Failures) == 0 }

func (r *PrincipleReport) addFailure(p Principle, detail string) {
	r.Failures = append(r.Failures, PrincipleFailure{
		Principle: p,
		Scenario:  r.Scenario,
		Detail:    detail,
	})
}

// CheckPrinciples runs the scenario and verifies the engine laws that
// hold for every scenario, whatever its expect clause says. Scenario
// pass/fail is Run's business and is not inspected here.
//
// The checks:
//  1. host-preserved: the host fingerprint is identical before and
//     after the run
//  2. deterministic: a second run from a fresh bundle snapshots to the
//     same bytes
//  3. result-valid: the output instance validates (applied runs only)
func CheckPrinciples(scenario *Scenario) (*PrincipleReport, error) {
	report := &PrincipleReport{Scenario: scenario.Name}

	bundle, err := scenario.Build()
	if err != nil {
		return nil, fmt.Errorf("build scenario %q: %w", scenario.Name, err)
	}
	before, err := bundle.Host.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprint host: %w", err)
	}

	first, err := newHarness(bundle, scenario.RunToken).execute(scenario)
	if err != nil {
		return nil, err
	}

	report.Checked++
	after, err := bundle.Host.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprint host: %w", err)
	}
	if after == before {
		report.Passed++
	} else {
		report.addFailure(PrincipleHostPreserved,
			fmt.Sprintf("host fingerprint changed from %s to %s", before, after))
	}

	report.Checked++
	second, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	firstSnap, err := Snapshot(scenario, first)
	if err != nil {
		return nil, err
	}
	secondSnap, err := Snapshot(scenario, second)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(firstSnap, secondSnap) {
		report.Passed++
	} else {
		report.addFailure(PrincipleDeterministic,
			"two runs produced different trace snapshots")
	}

	if first.Applied {
		report.Checked++
		if err := first.Output.Validate(); err != nil {
			report.addFailure(PrincipleResultValid, err.Error())
		} else {
			report.Passed++
		}
	}

	return report, nil
}
