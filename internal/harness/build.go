package harness

import (
	"fmt"
	"sort"

	"github.com/graphspan/splice/internal/attr"
	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/morphism"
	"github.com/graphspan/splice/internal/rewrite"
	"github.com/graphspan/splice/internal/schema"
	"github.com/graphspan/splice/internal/testutil"
)

// Bundle is a scenario resolved against its fixture schema: live
// instances and a validated rule, ready to run.
type Bundle struct {
	Schema *schema.Schema
	Host   *instance.Instance
	Rule   *rewrite.Rule
}

// Build resolves the scenario into live objects. It validates the
// fixture schema reference, the integrity of every instance literal, and
// the rule's shape and naturality. The host search itself happens in
// Run.
func (s *Scenario) Build() (*Bundle, error) {
	sc, err := testutil.SchemaByName(s.Schema)
	if err != nil {
		return nil, err
	}
	host, err := buildInstance(sc, s.Host)
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	rule, err := buildRule(sc, s.Rule)
	if err != nil {
		return nil, err
	}
	return &Bundle{Schema: sc, Host: host, Rule: rule}, nil
}

// buildInstance materializes an instance literal. Columns are applied in
// schema declaration order so the first reported problem is
// deterministic; unknown names are rejected up front.
func buildInstance(sc *schema.Schema, doc InstanceDoc) (*instance.Instance, error) {
	for _, name := range sortedKeys(doc.Counts) {
		if !sc.HasSort(name) {
			return nil, fmt.Errorf("unknown sort %q in counts", name)
		}
		if doc.Counts[name] < 0 {
			return nil, fmt.Errorf("sort %q: count must not be negative", name)
		}
	}
	for _, name := range sortedKeys(doc.Homs) {
		if _, ok := sc.Hom(name); !ok {
			return nil, fmt.Errorf("unknown foreign-key column %q in homs", name)
		}
	}
	for _, name := range sortedKeys(doc.Attrs) {
		if _, ok := sc.Attr(name); !ok {
			return nil, fmt.Errorf("unknown attribute column %q in attrs", name)
		}
	}

	x := instance.New(sc)
	for _, s := range sc.Sorts() {
		if n := doc.Counts[s.Name]; n > 0 {
			x.AddElements(s.Name, n)
		}
	}
	for _, h := range sc.Homs() {
		vals, ok := doc.Homs[h.Name]
		if !ok {
			if x.ElementCount(h.Src) > 0 {
				return nil, fmt.Errorf("foreign-key column %q is unassigned", h.Name)
			}
			continue
		}
		if err := x.SetHom(h.Name, vals); err != nil {
			return nil, err
		}
	}
	for _, a := range sc.Attrs() {
		raw, ok := doc.Attrs[a.Name]
		if !ok {
			if x.ElementCount(a.Src) > 0 {
				return nil, fmt.Errorf("attribute column %q is unassigned", a.Name)
			}
			continue
		}
		vals := make([]attr.Value, len(raw))
		for i, v := range raw {
			converted, err := attr.FromGo(v)
			if err != nil {
				return nil, fmt.Errorf("attribute column %q, element %d: %w", a.Name, i+1, err)
			}
			vals[i] = converted
		}
		if err := x.SetAttr(a.Name, vals); err != nil {
			return nil, err
		}
	}
	if err := x.Validate(); err != nil {
		return nil, err
	}
	return x, nil
}

// buildRule materializes a rule literal and runs it through NewRule's
// full validation.
func buildRule(sc *schema.Schema, doc RuleDoc) (*rewrite.Rule, error) {
	iface, err := buildInstance(sc, doc.Interface)
	if err != nil {
		return nil, fmt.Errorf("rule interface: %w", err)
	}
	pattern, err := buildInstance(sc, doc.Pattern)
	if err != nil {
		return nil, fmt.Errorf("rule pattern: %w", err)
	}
	repl, err := buildInstance(sc, doc.Replacement)
	if err != nil {
		return nil, fmt.Errorf("rule replacement: %w", err)
	}
	left, err := morphism.New(iface, pattern, doc.Left)
	if err != nil {
		return nil, fmt.Errorf("rule left leg: %w", err)
	}
	right, err := morphism.New(iface, repl, doc.Right)
	if err != nil {
		return nil, fmt.Errorf("rule right leg: %w", err)
	}
	name := doc.Name
	if name == "" {
		name = "rule"
	}
	return rewrite.NewRule(name, left, right)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
