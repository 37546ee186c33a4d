package rewrite

import (
	"fmt"

	"github.com/graphspan/splice/internal/attr"
	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/morphism"
)

const (
	stageRestrictColumn = "column-restriction"
	stageInterfaceMap   = "interface-map"
	stageNaturality     = "complement-naturality"
)

// Complement removes the match's orphans from the host and builds the
// context K: the subinstance of everything that survives, with dense
// renumbering. It returns k : I -> K (where the interface lands in the
// context) and g : K -> G (where each context element came from).
//
// The caller must have established ValidDPO(l, m); Complement does not
// re-decide the applicability conditions. Violations it trips over
// anyway (an interface element whose host image is an orphan, a
// surviving foreign key into an orphan) surface as *ConsistencyError.
//
// Per sort, survivors keep their relative order: a surviving host
// element i lands at i minus the number of orphans at or below i,
// computed in one ascending sweep over the sorted orphan list.
func Complement(l, m *morphism.Morphism) (k, g *morphism.Morphism, err error) {
	if err := checkComposable(l, m); err != nil {
		return nil, nil, err
	}
	host := m.Codom()
	sc := host.Schema()
	iface := l.Dom()

	orphanLists, orphanIn := orphans(l, m)

	offsets := make(map[string][]int, len(sc.Sorts()))
	keep := make(map[string][]int, len(sc.Sorts()))
	ctx := instance.New(sc)
	for _, s := range sc.Sorts() {
		n := host.ElementCount(s.Name)
		list := orphanLists[s.Name]
		off := make([]int, n+1)
		kept := make([]int, 0, n-len(list))
		oi := 0
		run := 0
		for i := 1; i <= n; i++ {
			if oi < len(list) && list[oi] == i {
				run++
				oi++
			} else {
				kept = append(kept, i)
			}
			off[i] = run
		}
		offsets[s.Name] = off
		keep[s.Name] = kept
		ctx.AddElements(s.Name, len(kept))
	}

	// Restrict every column to the survivors, renumbering foreign keys
	// through the target sort's offsets.
	for _, h := range sc.Homs() {
		col := host.Hom(h.Name)
		tgtOff := offsets[h.Tgt]
		tgtOrphan := orphanIn[h.Tgt]
		vals := make([]int, len(keep[h.Src]))
		for j, hostIdx := range keep[h.Src] {
			v := col[hostIdx-1]
			if tgtOrphan[v] {
				return nil, nil, &ConsistencyError{
					Stage: stageRestrictColumn,
					Sort:  h.Src,
					Index: hostIdx,
					Message: fmt.Sprintf("surviving element still points at deleted element %d through column %q",
						v, h.Name),
				}
			}
			vals[j] = v - tgtOff[v]
		}
		if err := ctx.SetHom(h.Name, vals); err != nil {
			return nil, nil, &ConsistencyError{
				Stage:   stageRestrictColumn,
				Message: fmt.Sprintf("renumbered column %q rejected", h.Name),
				Err:     err,
			}
		}
	}
	for _, a := range sc.Attrs() {
		col := host.Attr(a.Name)
		vals := make([]attr.Value, len(keep[a.Src]))
		for j, hostIdx := range keep[a.Src] {
			vals[j] = col[hostIdx-1]
		}
		if err := ctx.SetAttr(a.Name, vals); err != nil {
			return nil, nil, &ConsistencyError{
				Stage:   stageRestrictColumn,
				Message: fmt.Sprintf("restricted column %q rejected", a.Name),
				Err:     err,
			}
		}
	}

	// k sends an interface element to the renumbered position of its
	// host image. Landing on an orphan means the identification
	// condition did not actually hold.
	kParts := make(map[string][]int, len(sc.Sorts()))
	for _, s := range sc.Sorts() {
		lPart := l.Part(s.Name)
		mPart := m.Part(s.Name)
		off := offsets[s.Name]
		orphan := orphanIn[s.Name]
		part := make([]int, len(lPart))
		for i, lv := range lPart {
			hv := mPart[lv-1]
			if orphan[hv] {
				return nil, nil, &ConsistencyError{
					Stage:   stageInterfaceMap,
					Sort:    s.Name,
					Index:   i + 1,
					Message: fmt.Sprintf("interface element maps to deleted host element %d", hv),
				}
			}
			part[i] = hv - off[hv]
		}
		kParts[s.Name] = part
	}

	k, err = morphism.New(iface, ctx, kParts)
	if err != nil {
		return nil, nil, &ConsistencyError{Stage: stageInterfaceMap, Message: "interface map rejected", Err: err}
	}
	g, err = morphism.New(ctx, host, keep)
	if err != nil {
		return nil, nil, &ConsistencyError{Stage: stageInterfaceMap, Message: "context inclusion rejected", Err: err}
	}
	if err := k.CheckNatural(); err != nil {
		return nil, nil, &ConsistencyError{Stage: stageNaturality, Message: "interface map k", Err: err}
	}
	if err := g.CheckNatural(); err != nil {
		return nil, nil, &ConsistencyError{Stage: stageNaturality, Message: "context inclusion g", Err: err}
	}
	return k, g, nil
}
