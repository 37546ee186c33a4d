package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one parsed scenario file. Load with LoadScenario; resolve
// against its fixture schema with Build.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description"`

	// Schema names a fixture schema registered in testutil
	// ("graph", "labeled-graph", "two-color").
	Schema string `yaml:"schema"`

	// Host is the instance the rule is applied to.
	Host InstanceDoc `yaml:"host"`

	// Rule is the rewrite rule, spelled out as instance literals.
	Rule RuleDoc `yaml:"rule"`

	// Monic restricts the match search to injective matches.
	Monic bool `yaml:"monic,omitempty"`

	// MatchIndex picks the n-th applicable match, counting from 1.
	// Zero means 1.
	MatchIndex int `yaml:"match_index,omitempty"`

	// RunToken pins the trace's run token. Empty uses the deterministic
	// default, which is what golden scenarios want.
	RunToken string `yaml:"run_token,omitempty"`

	// Expect states the required outcome.
	Expect *ExpectClause `yaml:"expect"`

	// Assertions optionally inspect the result in more detail.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// InstanceDoc is the YAML shape of one instance: per-sort element counts
// and total column assignments in element order. Omitted sorts are
// empty; every declared column of a non-empty sort must be assigned.
type InstanceDoc struct {
	Counts map[string]int   `yaml:"counts,omitempty"`
	Homs   map[string][]int `yaml:"homs,omitempty"`
	Attrs  map[string][]any `yaml:"attrs,omitempty"`
}

// RuleDoc is the YAML shape of a rule: the three instances and the two
// leg component maps (per-sort, 1-based images). A missing component is
// allowed only for sorts the interface has no elements of.
type RuleDoc struct {
	Name        string           `yaml:"name,omitempty"`
	Interface   InstanceDoc      `yaml:"interface"`
	Pattern     InstanceDoc      `yaml:"pattern"`
	Replacement InstanceDoc      `yaml:"replacement"`
	Left        map[string][]int `yaml:"left,omitempty"`
	Right       map[string][]int `yaml:"right,omitempty"`
}

// ExpectClause states the required outcome of the rewrite attempt.
type ExpectClause struct {
	// Outcome is either "applied" or "no-result".
	Outcome string `yaml:"outcome"`

	// Counts optionally pins per-sort element counts of the result.
	// Only meaningful with outcome "applied".
	Counts map[string]int `yaml:"counts,omitempty"`
}

// Outcome values for ExpectClause.
const (
	OutcomeApplied  = "applied"
	OutcomeNoResult = "no-result"
)

// Assertion is one typed check against the run.
type Assertion struct {
	// Type selects the check; see the package documentation.
	Type string `yaml:"type"`

	// Counts holds expected per-sort counts (result_counts).
	Counts map[string]int `yaml:"counts,omitempty"`

	// Column names the inspected column (result_hom, result_attr).
	Column string `yaml:"column,omitempty"`

	// Values holds the full expected column (result_hom, result_attr).
	Values []any `yaml:"values,omitempty"`

	// Count is the expected number of applicable matches (valid_matches).
	Count int `yaml:"count,omitempty"`

	// Match gives an explicit match as per-sort components (condition).
	Match map[string][]int `yaml:"match,omitempty"`

	// Verdict is the expected applicability verdict for Match
	// (condition): "ok", "identification", or "dangling".
	Verdict string `yaml:"verdict,omitempty"`
}

// Assertion type names.
const (
	AssertResultCounts = "result_counts"
	AssertResultHom    = "result_hom"
	AssertResultAttr   = "result_attr"
	AssertValidMatches = "valid_matches"
	AssertCondition    = "condition"
)

// Verdict values for the condition assertion.
const (
	VerdictOK             = "ok"
	VerdictIdentification = "identification"
	VerdictDangling       = "dangling"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected, which catches typos like "assertion:" for "assertions:".
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and cross-field consistency.
// Schema resolution and instance integrity are Build's job.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if s.MatchIndex < 0 {
		return fmt.Errorf("match_index must not be negative")
	}
	if s.Expect == nil {
		return fmt.Errorf("expect is required")
	}
	switch s.Expect.Outcome {
	case OutcomeApplied:
	case OutcomeNoResult:
		if len(s.Expect.Counts) > 0 {
			return fmt.Errorf("expect: counts is meaningless with outcome %q", OutcomeNoResult)
		}
	default:
		return fmt.Errorf("expect: outcome must be %q or %q, got %q",
			OutcomeApplied, OutcomeNoResult, s.Expect.Outcome)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, s.Expect.Outcome); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion, outcome string) error {
	switch a.Type {
	case AssertResultCounts:
		if len(a.Counts) == 0 {
			return fmt.Errorf("assertions[%d]: counts is required for %s", index, a.Type)
		}
	case AssertResultHom, AssertResultAttr:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for %s", index, a.Type)
		}
		if a.Values == nil {
			return fmt.Errorf("assertions[%d]: values is required for %s (use [] for an empty column)", index, a.Type)
		}
	case AssertValidMatches:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must not be negative", index)
		}
	case AssertCondition:
		if a.Match == nil {
			return fmt.Errorf("assertions[%d]: match is required for %s", index, a.Type)
		}
		switch a.Verdict {
		case VerdictOK, VerdictIdentification, VerdictDangling:
		default:
			return fmt.Errorf("assertions[%d]: verdict must be %q, %q, or %q, got %q",
				index, VerdictOK, VerdictIdentification, VerdictDangling, a.Verdict)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if outcome == OutcomeNoResult {
		switch a.Type {
		case AssertResultCounts, AssertResultHom, AssertResultAttr:
			return fmt.Errorf("assertions[%d]: %s requires outcome %q", index, a.Type, OutcomeApplied)
		}
	}
	return nil
}
