package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/match"
	"github.com/graphspan/splice/internal/morphism"
	"github.com/graphspan/splice/internal/rewrite"
	"github.com/graphspan/splice/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and a fixed run token.
type Harness struct {
	bundle *Bundle
	clock  *testutil.TraceClock
	tokens testutil.TokenSource
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Resolve the scenario against its fixture schema (Build)
//  2. Enumerate every match candidate and check both gluing conditions
//  3. Apply the selected applicable candidate, if any
//  4. Evaluate the expect clause and assertions against the outcome
//
// The trace records every candidate in search order. Unlike
// rewrite.Rewrite, which stops searching at the selected match, the
// harness walks the full enumeration so golden snapshots expose the
// whole search.
func Run(scenario *Scenario) (*Result, error) {
	bundle, err := scenario.Build()
	if err != nil {
		return nil, fmt.Errorf("build scenario %q: %w", scenario.Name, err)
	}

	return newHarness(bundle, scenario.RunToken).execute(scenario)
}

func newHarness(bundle *Bundle, runToken string) *Harness {
	return &Harness{
		bundle: bundle,
		clock:  testutil.NewTraceClock(),
		tokens: testutil.NewFixedTokens(runToken),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
}

func (h *Harness) execute(scenario *Scenario) (*Result, error) {
	result := NewResult(h.tokens.Next())

	// Scenario files say "1" for the first applicable match; 0 means
	// unset and defaults to the first.
	idx := scenario.MatchIndex
	if idx == 0 {
		idx = 1
	}

	rule := h.bundle.Rule
	seq, err := match.All(rule.Pattern(), h.bundle.Host, match.Options{Monic: scenario.Monic})
	if err != nil {
		return nil, fmt.Errorf("search host: %w", err)
	}

	var applicable []*morphism.Morphism
	for m := range seq {
		verdict, err := conditionVerdict(rule, m)
		if err != nil {
			return nil, fmt.Errorf("check candidate: %w", err)
		}
		if verdict == VerdictOK {
			applicable = append(applicable, m)
			result.AddMatchFound(m.Parts(), h.clock.Next())
		} else {
			result.AddMatchRejected(m.Parts(), verdict, h.clock.Next())
		}
		h.logger.Debug("candidate checked",
			"rule", rule.Name(),
			"verdict", verdict,
		)
	}

	if idx <= len(applicable) {
		out, err := rewrite.Apply(rule, applicable[idx-1])
		if err != nil {
			return nil, fmt.Errorf("apply rule %q: %w", rule.Name(), err)
		}
		fp, err := out.Fingerprint()
		if err != nil {
			return nil, fmt.Errorf("fingerprint result: %w", err)
		}
		result.Applied = true
		result.Output = out
		result.AddApplied(fp, countsOf(out), h.clock.Next())
	} else {
		result.AddNoResult(h.clock.Next())
	}

	evaluate(scenario, h.bundle, result)
	return result, nil
}

// conditionVerdict classifies a candidate against both gluing
// conditions. VerdictOK means the rule applies at this match; any error
// other than a condition violation is a harness failure, not a verdict.
func conditionVerdict(rule *rewrite.Rule, m *morphism.Morphism) (string, error) {
	if err := rewrite.CheckIdentification(rule.Left(), m); err != nil {
		if rewrite.IsIdentificationError(err) {
			return VerdictIdentification, nil
		}
		return "", err
	}
	if err := rewrite.CheckDangling(rule.Left(), m); err != nil {
		if rewrite.IsDanglingError(err) {
			return VerdictDangling, nil
		}
		return "", err
	}
	return VerdictOK, nil
}

func countsOf(x *instance.Instance) map[string]int {
	counts := make(map[string]int, len(x.Schema().Sorts()))
	for _, s := range x.Schema().Sorts() {
		counts[s.Name] = x.ElementCount(s.Name)
	}
	return counts
}
