// Package morphism implements homomorphisms between instances over a
// shared schema: one total index map per sort, required to commute with
// every foreign-key column and preserve every attribute.
package morphism

import (
	"fmt"

	"github.com/graphspan/splice/internal/instance"
)

// Morphism is a sort-indexed family of total maps from the elements of
// dom to the elements of codom. Components use the same 1-based indexing
// as instances. A Morphism is immutable after construction.
type Morphism struct {
	dom   *instance.Instance
	codom *instance.Instance
	parts map[string][]int
}

// New builds a morphism from per-sort components and validates its shape:
// dom and codom must share a schema, every sort needs a component of the
// right length, and every image must be a valid codom index. Naturality
// is NOT checked here; call CheckNatural where it matters. The component
// slices are copied.
func New(dom, codom *instance.Instance, parts map[string][]int) (*Morphism, error) {
	if dom.Schema() != codom.Schema() {
		return nil, fmt.Errorf("morphism: dom schema %q and codom schema %q differ",
			dom.Schema().Name(), codom.Schema().Name())
	}
	sc := dom.Schema()
	for name := range parts {
		if !sc.HasSort(name) {
			return nil, fmt.Errorf("morphism: component for unknown sort %q", name)
		}
	}
	copied := make(map[string][]int, len(sc.Sorts()))
	for _, s := range sc.Sorts() {
		comp, ok := parts[s.Name]
		if !ok && dom.ElementCount(s.Name) > 0 {
			return nil, fmt.Errorf("morphism: missing component for sort %q", s.Name)
		}
		if len(comp) != dom.ElementCount(s.Name) {
			return nil, fmt.Errorf("morphism: component for sort %q has %d entries, want %d",
				s.Name, len(comp), dom.ElementCount(s.Name))
		}
		limit := codom.ElementCount(s.Name)
		for i, v := range comp {
			if v < 1 || v > limit {
				return nil, fmt.Errorf("morphism: sort %q: element %d maps to %d, outside 1..%d",
					s.Name, i+1, v, limit)
			}
		}
		copied[s.Name] = append([]int(nil), comp...)
	}
	return &Morphism{dom: dom, codom: codom, parts: copied}, nil
}

// Identity returns the identity morphism on x.
func Identity(x *instance.Instance) *Morphism {
	parts := make(map[string][]int, len(x.Schema().Sorts()))
	for _, s := range x.Schema().Sorts() {
		n := x.ElementCount(s.Name)
		comp := make([]int, n)
		for i := range comp {
			comp[i] = i + 1
		}
		parts[s.Name] = comp
	}
	return &Morphism{dom: x, codom: x, parts: parts}
}

// Dom returns the domain instance.
func (f *Morphism) Dom() *instance.Instance { return f.dom }

// Codom returns the codomain instance.
func (f *Morphism) Codom() *instance.Instance { return f.codom }

// Part returns the live component slice for a sort; entry i-1 is the
// image of element i. Callers must not modify it. Panics on unknown sort.
func (f *Morphism) Part(sort string) []int {
	comp, ok := f.parts[sort]
	if !ok {
		panic(fmt.Sprintf("morphism: unknown sort %q", sort))
	}
	return comp
}

// Apply returns the image of element i of the given sort.
func (f *Morphism) Apply(sort string, i int) int {
	comp := f.Part(sort)
	if i < 1 || i > len(comp) {
		panic(fmt.Sprintf("morphism: index %d outside 1..%d of sort %q", i, len(comp), sort))
	}
	return comp[i-1]
}

// Then composes diagrammatically: for f : A -> B and g : B -> C the
// result is A -> C. g's domain must be f's codomain (the same instance
// value, not a lookalike).
func (f *Morphism) Then(g *Morphism) (*Morphism, error) {
	if f.codom != g.dom {
		return nil, fmt.Errorf("morphism: composition mismatch: codom of first is not dom of second")
	}
	parts := make(map[string][]int, len(f.parts))
	for sort, comp := range f.parts {
		gComp := g.parts[sort]
		out := make([]int, len(comp))
		for i, v := range comp {
			out[i] = gComp[v-1]
		}
		parts[sort] = out
	}
	return &Morphism{dom: f.dom, codom: g.codom, parts: parts}, nil
}

// Monic reports whether every component is injective.
func (f *Morphism) Monic() bool {
	for _, s := range f.dom.Schema().Sorts() {
		comp := f.parts[s.Name]
		seen := make([]bool, f.codom.ElementCount(s.Name)+1)
		for _, v := range comp {
			if seen[v] {
				return false
			}
			seen[v] = true
		}
	}
	return true
}

// Equal reports whether two morphisms have the same endpoints (pointer
// identity) and identical components.
func (f *Morphism) Equal(g *Morphism) bool {
	if f.dom != g.dom || f.codom != g.codom {
		return false
	}
	for sort, comp := range f.parts {
		other := g.parts[sort]
		if len(comp) != len(other) {
			return false
		}
		for i, v := range comp {
			if v != other[i] {
				return false
			}
		}
	}
	return true
}

// Parts returns a deep copy of all components, for callers that need to
// derive a new morphism from an existing one.
func (f *Morphism) Parts() map[string][]int {
	out := make(map[string][]int, len(f.parts))
	for sort, comp := range f.parts {
		out[sort] = append([]int(nil), comp...)
	}
	return out
}
