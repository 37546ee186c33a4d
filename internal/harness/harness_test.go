package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noResultScenarioYAML tries to delete a vertex from a host where every
// vertex is an endpoint of the edge, so both candidates dangle.
const noResultScenarioYAML = `
name: delete-vertex-blocked
description: every candidate vertex has an incident edge
schema: graph
host:
  counts: {V: 2, E: 1}
  homs:
    src: [1]
    tgt: [2]
rule:
  name: delete-vertex
  interface: {}
  pattern:
    counts: {V: 1}
  replacement: {}
expect:
  outcome: no-result
`

func mustRun(t *testing.T, text string) *Result {
	t.Helper()
	result, err := Run(mustParseScenario(t, text))
	require.NoError(t, err)
	return result
}

func TestRun_AppliedScenario(t *testing.T) {
	result := mustRun(t, validScenarioYAML)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.True(t, result.Applied)
	assert.Equal(t, "test-run-default", result.RunToken)
	require.NotNil(t, result.Output)
	assert.Equal(t, 2, result.Output.ElementCount("V"))
	assert.Equal(t, 1, result.Output.ElementCount("E"))

	require.Len(t, result.Trace, 4)
	for i, event := range result.Trace {
		assert.Equal(t, int64(i+1), event.Seq)
	}
	assert.Equal(t, TraceMatchRejected, result.Trace[0].Type)
	assert.Equal(t, []int{1}, result.Trace[0].Match["V"])
	assert.Equal(t, VerdictDangling, result.Trace[0].Condition)
	assert.Equal(t, TraceMatchRejected, result.Trace[1].Type)
	assert.Equal(t, []int{2}, result.Trace[1].Match["V"])
	assert.Equal(t, TraceMatchFound, result.Trace[2].Type)
	assert.Equal(t, []int{3}, result.Trace[2].Match["V"])
	assert.Empty(t, result.Trace[2].Condition)

	applied := result.Trace[3]
	assert.Equal(t, TraceApplied, applied.Type)
	assert.Equal(t, map[string]int{"V": 2, "E": 1}, applied.Counts)
	assert.Len(t, applied.Fingerprint, 64)
}

func TestRun_NoResultScenario(t *testing.T) {
	result := mustRun(t, noResultScenarioYAML)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.False(t, result.Applied)
	assert.Nil(t, result.Output)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, TraceMatchRejected, result.Trace[0].Type)
	assert.Equal(t, TraceMatchRejected, result.Trace[1].Type)
	assert.Equal(t, TraceNoResult, result.Trace[2].Type)
	assert.Equal(t, int64(3), result.Trace[2].Seq)
}

func TestRun_PinnedRunToken(t *testing.T) {
	scenario := mustParseScenario(t, validScenarioYAML)
	scenario.RunToken = "run-42"

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, "run-42", result.RunToken)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	scenario := mustParseScenario(t, noResultScenarioYAML)
	scenario.Expect.Outcome = OutcomeApplied

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], `Expected: outcome "applied"`)
	assert.Contains(t, result.Errors[0], `Actual: outcome "no-result"`)
}

func TestRun_ExpectCountsChecked(t *testing.T) {
	scenario := mustParseScenario(t, validScenarioYAML)
	scenario.Expect.Counts = map[string]int{"V": 7}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], `7 elements of sort "V"`)
}

func TestRun_MatchIndexSelectsAmongApplicable(t *testing.T) {
	text := `
name: delete-second-edge
description: match_index picks the second applicable edge match
schema: graph
host:
  counts: {V: 3, E: 2}
  homs:
    src: [1, 2]
    tgt: [2, 3]
rule:
  name: delete-edge
  interface:
    counts: {V: 2}
  pattern:
    counts: {V: 2, E: 1}
    homs:
      src: [1]
      tgt: [2]
  replacement:
    counts: {V: 2}
  left: {V: [1, 2]}
  right: {V: [1, 2]}
match_index: 2
expect:
  outcome: applied
  counts: {V: 3, E: 1}
assertions:
  - type: result_hom
    column: src
    values: [3]
  - type: result_hom
    column: tgt
    values: [1]
  - type: valid_matches
    count: 2
`
	// Deleting the second edge renumbers its endpoints (vertices 2 and
	// 3) to 1 and 2, so the surviving edge 1->2 comes out as 3->1.
	result := mustRun(t, text)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 3)
	assert.Equal(t, TraceMatchFound, result.Trace[0].Type)
	assert.Equal(t, []int{1}, result.Trace[0].Match["E"])
	assert.Equal(t, TraceMatchFound, result.Trace[1].Type)
	assert.Equal(t, []int{2}, result.Trace[1].Match["E"])
	assert.Equal(t, TraceApplied, result.Trace[2].Type)
}

func TestRun_MatchIndexPastEndIsNoResult(t *testing.T) {
	scenario := mustParseScenario(t, validScenarioYAML)
	scenario.MatchIndex = 2
	scenario.Expect = &ExpectClause{Outcome: OutcomeNoResult}
	scenario.Assertions = nil

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.False(t, result.Applied)
	assert.Equal(t, TraceNoResult, result.Trace[len(result.Trace)-1].Type)
}

func TestRun_MonicRestrictsSearch(t *testing.T) {
	text := `
name: identity-pair-monic
description: monic search skips matches that collapse the vertex pair
schema: graph
host:
  counts: {V: 2}
rule:
  name: identity-pair
  interface:
    counts: {V: 2}
  pattern:
    counts: {V: 2}
  replacement:
    counts: {V: 2}
  left: {V: [1, 2]}
  right: {V: [1, 2]}
monic: true
expect:
  outcome: applied
  counts: {V: 2}
assertions:
  - type: valid_matches
    count: 2
`
	result := mustRun(t, text)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	scenario := mustParseScenario(t, text)
	scenario.Monic = false
	scenario.Assertions = []Assertion{{Type: AssertValidMatches, Count: 4}}
	relaxed, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, relaxed.Pass, "errors: %v", relaxed.Errors)
}

func TestRun_ConditionAssertions(t *testing.T) {
	text := `
name: delete-vertex-verdicts
description: explicit matches get the verdict the search would give them
schema: graph
host:
  counts: {V: 3, E: 1}
  homs:
    src: [1]
    tgt: [2]
rule:
  name: delete-vertex
  interface: {}
  pattern:
    counts: {V: 1}
  replacement: {}
expect:
  outcome: applied
assertions:
  - type: condition
    match: {V: [1]}
    verdict: dangling
  - type: condition
    match: {V: [3]}
    verdict: ok
`
	result := mustRun(t, text)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_AssertionFailureCarriesTrace(t *testing.T) {
	scenario := mustParseScenario(t, validScenarioYAML)
	scenario.Assertions = []Assertion{{Type: AssertValidMatches, Count: 5}}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "Assertion failed: valid_matches")
	assert.Contains(t, result.Errors[0], "Full trace:")
}

func TestRun_BuildErrorPropagates(t *testing.T) {
	scenario := mustParseScenario(t, validScenarioYAML)
	scenario.Schema = "hypergraph"

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `build scenario "delete-isolated-vertex"`)
}
