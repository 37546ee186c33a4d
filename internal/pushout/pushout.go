// Package pushout glues two instances along a shared part: given a span
// Y <-f- X -g-> Z of homomorphisms, Glue builds the pushout apex W with
// its legs Y -> W and Z -> W. Elements of Y and Z are identified exactly
// when they are linked through X (transitively), and the apex keeps dense
// 1-based indexing with a deterministic numbering.
//
// This is the single colimit the rewriting step needs; there is no
// general (co)limit machinery here.
package pushout

import (
	"errors"
	"fmt"

	"github.com/graphspan/splice/internal/attr"
	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/morphism"
)

// Span is the glued result: the apex and the two legs out of the span's
// feet. Left maps f's codomain, Right maps g's codomain.
type Span struct {
	Apex  *instance.Instance
	Left  *morphism.Morphism
	Right *morphism.Morphism
}

// ConflictError reports a column that has no well-defined value on a
// glued apex element because identified members disagree. It cannot occur
// when both span legs are natural; reaching it means a caller handed in
// maps that only look like homomorphisms.
type ConflictError struct {
	Column string
	Sort   string
	Index  int // apex element
	Detail string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("gluing conflict at column %q, apex element %d of sort %q: %s",
		e.Column, e.Index, e.Sort, e.Detail)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// dsu is a disjoint-set union over 0-based nodes.
type dsu struct {
	parent []int
}

func newDSU(n int) *dsu {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &dsu{parent: p}
}

func (d *dsu) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *dsu) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra != rb {
		d.parent[ra] = rb
	}
}

// Glue computes the pushout of the span Y <-f- X -g-> Z. Both morphisms
// must share the domain instance X and be natural.
//
// The apex numbering is deterministic: per sort, equivalence classes are
// ordered by their smallest member, with all of Y's elements ordered
// before all of Z's. Gluing along an empty X therefore yields the
// disjoint union with Y's elements first.
func Glue(f, g *morphism.Morphism) (*Span, error) {
	if f.Dom() != g.Dom() {
		return nil, fmt.Errorf("pushout: span legs have different domains")
	}

	x := f.Dom()
	y := f.Codom()
	z := g.Codom()
	sc := x.Schema()

	if err := x.Validate(); err != nil {
		return nil, fmt.Errorf("pushout: span domain: %w", err)
	}
	if err := y.Validate(); err != nil {
		return nil, fmt.Errorf("pushout: left foot: %w", err)
	}
	if err := z.Validate(); err != nil {
		return nil, fmt.Errorf("pushout: right foot: %w", err)
	}
	if err := f.CheckNatural(); err != nil {
		return nil, fmt.Errorf("pushout: left leg: %w", err)
	}
	if err := g.CheckNatural(); err != nil {
		return nil, fmt.Errorf("pushout: right leg: %w", err)
	}

	apex := instance.New(sc)
	leftParts := make(map[string][]int, len(sc.Sorts()))
	rightParts := make(map[string][]int, len(sc.Sorts()))

	// Quotient the disjoint sum of Y and Z sort by sort: Y element i is
	// node i-1, Z element j is node nY+j-1.
	for _, s := range sc.Sorts() {
		nY := y.ElementCount(s.Name)
		nZ := z.ElementCount(s.Name)
		d := newDSU(nY + nZ)
		fPart := f.Part(s.Name)
		gPart := g.Part(s.Name)
		for i := 0; i < x.ElementCount(s.Name); i++ {
			d.union(fPart[i]-1, nY+gPart[i]-1)
		}

		// Number classes by smallest member.
		apexIndex := make(map[int]int)
		next := 0
		for node := 0; node < nY+nZ; node++ {
			root := d.find(node)
			if _, ok := apexIndex[root]; !ok {
				next++
				apexIndex[root] = next
			}
		}
		apex.AddElements(s.Name, next)

		left := make([]int, nY)
		for i := 0; i < nY; i++ {
			left[i] = apexIndex[d.find(i)]
		}
		right := make([]int, nZ)
		for j := 0; j < nZ; j++ {
			right[j] = apexIndex[d.find(nY+j)]
		}
		leftParts[s.Name] = left
		rightParts[s.Name] = right
	}

	// Populate columns through the legs, checking that identified
	// members agree.
	for _, h := range sc.Homs() {
		if err := glueHom(apex, h.Name, h.Src, h.Tgt, y, leftParts); err != nil {
			return nil, err
		}
		if err := glueHom(apex, h.Name, h.Src, h.Tgt, z, rightParts); err != nil {
			return nil, err
		}
	}
	for _, a := range sc.Attrs() {
		if err := glueAttr(apex, a.Name, a.Src, y, leftParts); err != nil {
			return nil, err
		}
		if err := glueAttr(apex, a.Name, a.Src, z, rightParts); err != nil {
			return nil, err
		}
	}

	left, err := morphism.New(y, apex, leftParts)
	if err != nil {
		return nil, fmt.Errorf("pushout: build left leg: %w", err)
	}
	right, err := morphism.New(z, apex, rightParts)
	if err != nil {
		return nil, fmt.Errorf("pushout: build right leg: %w", err)
	}
	if err := left.CheckNatural(); err != nil {
		return nil, fmt.Errorf("pushout: left leg on apex: %w", err)
	}
	if err := right.CheckNatural(); err != nil {
		return nil, fmt.Errorf("pushout: right leg on apex: %w", err)
	}

	return &Span{Apex: apex, Left: left, Right: right}, nil
}

// glueHom writes one foot's view of a foreign-key column onto the apex.
// A slot already written with a different target is a conflict.
func glueHom(apex *instance.Instance, column, src, tgt string, foot *instance.Instance, parts map[string][]int) error {
	footCol := foot.Hom(column)
	srcPart := parts[src]
	tgtPart := parts[tgt]
	for i, w := range srcPart {
		want := tgtPart[footCol[i]-1]
		cur := apex.HomValue(column, w)
		if cur == 0 {
			if err := apex.SetHomValue(column, w, want); err != nil {
				return fmt.Errorf("pushout: %w", err)
			}
			continue
		}
		if cur != want {
			return &ConflictError{
				Column: column,
				Sort:   src,
				Index:  w,
				Detail: fmt.Sprintf("identified elements point at %d and %d", cur, want),
			}
		}
	}
	return nil
}

// glueAttr writes one foot's view of an attribute column onto the apex.
func glueAttr(apex *instance.Instance, column, src string, foot *instance.Instance, parts map[string][]int) error {
	footCol := foot.Attr(column)
	srcPart := parts[src]
	for i, w := range srcPart {
		want := footCol[i]
		cur := apex.AttrValue(column, w)
		if cur == nil {
			if err := apex.SetAttrValue(column, w, want); err != nil {
				return fmt.Errorf("pushout: %w", err)
			}
			continue
		}
		if !attr.Equal(cur, want) {
			return &ConflictError{
				Column: column,
				Sort:   src,
				Index:  w,
				Detail: fmt.Sprintf("identified elements carry %s and %s", attr.Format(cur), attr.Format(want)),
			}
		}
	}
	return nil
}
