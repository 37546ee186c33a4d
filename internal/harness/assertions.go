package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/graphspan/splice/internal/attr"
	"github.com/graphspan/splice/internal/morphism"
)

// AssertionError is returned when an expectation or assertion fails.
// It includes the run trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			switch event.Type {
			case TraceMatchFound:
				fmt.Fprintf(&buf, "  [%d] %s %v\n", i+1, event.Type, event.Match)
			case TraceMatchRejected:
				fmt.Fprintf(&buf, "  [%d] %s %v (%s)\n", i+1, event.Type, event.Match, event.Condition)
			case TraceApplied:
				fmt.Fprintf(&buf, "  [%d] %s %v\n", i+1, event.Type, event.Counts)
			default:
				fmt.Fprintf(&buf, "  [%d] %s\n", i+1, event.Type)
			}
		}
	}

	return buf.String()
}

// evaluate checks the expect clause and every assertion, recording each
// failure on the result.
func evaluate(scenario *Scenario, bundle *Bundle, result *Result) {
	if err := checkExpect(scenario.Expect, result); err != nil {
		result.AddError(err.Error())
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, bundle) {
		result.AddError(msg)
	}
}

// checkExpect compares the run outcome against the scenario's expect
// clause.
func checkExpect(expect *ExpectClause, result *Result) error {
	if outcome := outcomeOf(result); outcome != expect.Outcome {
		return &AssertionError{
			Type:     "expect",
			Expected: fmt.Sprintf("outcome %q", expect.Outcome),
			Actual:   fmt.Sprintf("outcome %q", outcome),
			Trace:    result.Trace,
		}
	}
	if len(expect.Counts) > 0 {
		return compareCounts("expect", expect.Counts, result)
	}
	return nil
}

func outcomeOf(result *Result) string {
	if result.Applied {
		return OutcomeApplied
	}
	return OutcomeNoResult
}

// EvaluateAssertions checks all assertions against the run and returns
// failure messages. An empty slice means all assertions passed.
func EvaluateAssertions(result *Result, assertions []Assertion, bundle *Bundle) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertResultCounts:
			err = assertResultCounts(result, assertion)
		case AssertResultHom:
			err = assertResultHom(result, assertion)
		case AssertResultAttr:
			err = assertResultAttr(result, assertion)
		case AssertValidMatches:
			err = assertValidMatches(result, assertion)
		case AssertCondition:
			err = assertCondition(bundle, result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertResultCounts checks per-sort element counts of the result
// instance. Sorts the assertion does not name are unconstrained.
func assertResultCounts(result *Result, assertion Assertion) error {
	if result.Output == nil {
		return &AssertionError{
			Type:     AssertResultCounts,
			Expected: fmt.Sprintf("result with counts %v", assertion.Counts),
			Actual:   "no result instance",
			Trace:    result.Trace,
		}
	}
	return compareCounts(AssertResultCounts, assertion.Counts, result)
}

func compareCounts(typ string, want map[string]int, result *Result) error {
	actual := countsOf(result.Output)
	for _, sort := range sortedKeys(want) {
		got, ok := actual[sort]
		if !ok {
			return &AssertionError{
				Type:     typ,
				Expected: fmt.Sprintf("%d elements of sort %q", want[sort], sort),
				Actual:   fmt.Sprintf("schema has no sort %q", sort),
				Trace:    result.Trace,
			}
		}
		if got != want[sort] {
			return &AssertionError{
				Type:     typ,
				Expected: fmt.Sprintf("%d elements of sort %q", want[sort], sort),
				Actual:   fmt.Sprintf("%d elements", got),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

// assertResultHom checks one full foreign-key column of the result
// instance.
func assertResultHom(result *Result, assertion Assertion) error {
	if result.Output == nil {
		return &AssertionError{
			Type:     AssertResultHom,
			Expected: fmt.Sprintf("column %q = %v", assertion.Column, assertion.Values),
			Actual:   "no result instance",
			Trace:    result.Trace,
		}
	}
	if _, ok := result.Output.Schema().Hom(assertion.Column); !ok {
		return &AssertionError{
			Type:     AssertResultHom,
			Expected: fmt.Sprintf("column %q = %v", assertion.Column, assertion.Values),
			Actual:   fmt.Sprintf("schema has no foreign-key column %q", assertion.Column),
			Trace:    result.Trace,
		}
	}
	want, err := intValues(assertion.Values)
	if err != nil {
		return fmt.Errorf("assertion %s, column %q: %w", AssertResultHom, assertion.Column, err)
	}
	got := result.Output.Hom(assertion.Column)
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     AssertResultHom,
			Expected: fmt.Sprintf("column %q = %v", assertion.Column, want),
			Actual:   fmt.Sprintf("column %q = %v", assertion.Column, got),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertResultAttr checks one full attribute column of the result
// instance.
func assertResultAttr(result *Result, assertion Assertion) error {
	if result.Output == nil {
		return &AssertionError{
			Type:     AssertResultAttr,
			Expected: fmt.Sprintf("column %q = %v", assertion.Column, assertion.Values),
			Actual:   "no result instance",
			Trace:    result.Trace,
		}
	}
	if _, ok := result.Output.Schema().Attr(assertion.Column); !ok {
		return &AssertionError{
			Type:     AssertResultAttr,
			Expected: fmt.Sprintf("column %q = %v", assertion.Column, assertion.Values),
			Actual:   fmt.Sprintf("schema has no attribute column %q", assertion.Column),
			Trace:    result.Trace,
		}
	}
	want := make([]attr.Value, len(assertion.Values))
	for i, v := range assertion.Values {
		converted, err := attr.FromGo(v)
		if err != nil {
			return fmt.Errorf("assertion %s, column %q, element %d: %w",
				AssertResultAttr, assertion.Column, i+1, err)
		}
		want[i] = converted
	}
	got := result.Output.Attr(assertion.Column)
	if !attrColumnsEqual(got, want) {
		return &AssertionError{
			Type:     AssertResultAttr,
			Expected: fmt.Sprintf("column %q = %s", assertion.Column, formatAttrColumn(want)),
			Actual:   fmt.Sprintf("column %q = %s", assertion.Column, formatAttrColumn(got)),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertValidMatches checks how many candidates passed both gluing
// conditions.
func assertValidMatches(result *Result, assertion Assertion) error {
	count := 0
	for _, event := range result.Trace {
		if event.Type == TraceMatchFound {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertValidMatches,
			Expected: fmt.Sprintf("%d applicable matches", assertion.Count),
			Actual:   fmt.Sprintf("%d applicable matches", count),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertCondition checks the applicability verdict of one explicitly
// given match, independent of the search. The match components must
// typecheck and form a homomorphism; a sloppy assertion is an error,
// not a verdict.
func assertCondition(bundle *Bundle, result *Result, assertion Assertion) error {
	m, err := morphism.New(bundle.Rule.Pattern(), bundle.Host, assertion.Match)
	if err != nil {
		return fmt.Errorf("assertion %s: match does not typecheck: %w", AssertCondition, err)
	}
	if err := m.CheckNatural(); err != nil {
		return fmt.Errorf("assertion %s: match is not a homomorphism: %w", AssertCondition, err)
	}
	verdict, err := conditionVerdict(bundle.Rule, m)
	if err != nil {
		return fmt.Errorf("assertion %s: %w", AssertCondition, err)
	}
	if verdict != assertion.Verdict {
		return &AssertionError{
			Type:     AssertCondition,
			Expected: fmt.Sprintf("verdict %q for match %v", assertion.Verdict, assertion.Match),
			Actual:   fmt.Sprintf("verdict %q", verdict),
			Trace:    result.Trace,
		}
	}
	return nil
}

// intValues converts a YAML value list to column indices.
func intValues(vals []any) ([]int, error) {
	out := make([]int, len(vals))
	for i, v := range vals {
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("element %d: expected an integer, got %T", i+1, v)
		}
		out[i] = n
	}
	return out, nil
}

func attrColumnsEqual(a, b []attr.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !attr.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func formatAttrColumn(vals []attr.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = attr.Format(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
