package match

import (
	"github.com/graphspan/splice/internal/attr"
	"github.com/graphspan/splice/internal/instance"
)

// step is one node of a compiled search plan.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern enables exhaustive type switches in the
// executor and keeps the plan vocabulary closed.
//
// Step types:
//   - bindStep: choose a host image for one pattern element
//   - homStep: require a foreign-key column to commute for a bound pair
//   - attrStep: require a bound element's image to carry an attribute value
//
// A plan is a flat []step. Every homStep and attrStep appears after the
// bindSteps it reads, so the executor can evaluate steps strictly left to
// right with no dependency tracking at run time.
type step interface {
	planStep() // Marker method - seals interface to this package
}

// bindStep extends the partial assignment: try every host element of Sort
// as the image of pattern element Elem, in ascending order. Ascending
// candidate order plus the fixed plan order makes enumeration
// deterministic.
type bindStep struct {
	Sort string
	Elem int
}

func (bindStep) planStep() {}

// homStep prunes assignments where a foreign-key column fails to commute:
// the host column at the image of SrcElem must equal the image of TgtElem.
// Both elements are bound by earlier steps.
type homStep struct {
	Column  string
	SrcSort string
	SrcElem int
	TgtSort string
	TgtElem int
}

func (homStep) planStep() {}

// attrStep prunes assignments where the image of Elem does not carry the
// pattern's attribute value.
type attrStep struct {
	Column string
	Sort   string
	Elem   int
	Value  attr.Value
}

func (attrStep) planStep() {}

// compile turns a pattern instance into a search plan. Pattern elements
// are bound in (schema sort order, ascending index) order; each constraint
// is emitted at the earliest point all its inputs are bound, so failures
// prune as high in the search tree as the binding order allows.
func compile(pattern *instance.Instance) []step {
	sc := pattern.Schema()

	type elem struct {
		sort string
		idx  int
	}
	bound := make(map[elem]bool)
	var steps []step

	for _, s := range sc.Sorts() {
		for e := 1; e <= pattern.ElementCount(s.Name); e++ {
			steps = append(steps, bindStep{Sort: s.Name, Elem: e})
			bound[elem{s.Name, e}] = true

			for _, a := range sc.AttrsOn(s.Name) {
				steps = append(steps, attrStep{
					Column: a.Name,
					Sort:   s.Name,
					Elem:   e,
					Value:  pattern.AttrValue(a.Name, e),
				})
			}

			for _, h := range sc.Homs() {
				// Constraints where e is the source end.
				if h.Src == s.Name {
					tgt := pattern.HomValue(h.Name, e)
					if bound[elem{h.Tgt, tgt}] {
						steps = append(steps, homStep{
							Column:  h.Name,
							SrcSort: h.Src,
							SrcElem: e,
							TgtSort: h.Tgt,
							TgtElem: tgt,
						})
					}
				}
				// Constraints where e is the target end of an earlier
				// element. The source itself was handled above.
				if h.Tgt == s.Name {
					for x := 1; x <= pattern.ElementCount(h.Src); x++ {
						if h.Src == s.Name && x == e {
							continue
						}
						if pattern.HomValue(h.Name, x) == e && bound[elem{h.Src, x}] {
							steps = append(steps, homStep{
								Column:  h.Name,
								SrcSort: h.Src,
								SrcElem: x,
								TgtSort: h.Tgt,
								TgtElem: e,
							})
						}
					}
				}
			}
		}
	}
	return steps
}
