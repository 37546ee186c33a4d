package rewrite

import (
	"sort"

	"github.com/graphspan/splice/internal/morphism"
)

// deletedElements returns, per sort, the ascending pattern elements of L
// that lie outside l's image. Their host images are the orphans an
// application would delete.
func deletedElements(l *morphism.Morphism) map[string][]int {
	pattern := l.Codom()
	out := make(map[string][]int, len(pattern.Schema().Sorts()))
	for _, s := range pattern.Schema().Sorts() {
		n := pattern.ElementCount(s.Name)
		inImage := make([]bool, n+1)
		for _, v := range l.Part(s.Name) {
			inImage[v] = true
		}
		var del []int
		for e := 1; e <= n; e++ {
			if !inImage[e] {
				del = append(del, e)
			}
		}
		out[s.Name] = del
	}
	return out
}

// orphans returns, per sort, the sorted ascending host indices the match
// marks for deletion, plus a membership table indexed by host element.
// Sortedness is established here explicitly: the complement's offset
// sweep depends on it.
func orphans(l, m *morphism.Morphism) (map[string][]int, map[string][]bool) {
	host := m.Codom()
	deleted := deletedElements(l)
	lists := make(map[string][]int, len(deleted))
	members := make(map[string][]bool, len(deleted))
	for _, s := range host.Schema().Sorts() {
		mem := make([]bool, host.ElementCount(s.Name)+1)
		var list []int
		for _, d := range deleted[s.Name] {
			h := m.Apply(s.Name, d)
			if !mem[h] {
				mem[h] = true
				list = append(list, h)
			}
		}
		sort.Ints(list)
		lists[s.Name] = list
		members[s.Name] = mem
	}
	return lists, members
}

// checkComposable guards the exported checks: l and m must share the
// pattern instance.
func checkComposable(l, m *morphism.Morphism) error {
	if l.Codom() != m.Dom() {
		return &PreconditionError{
			Check:   CheckCodeMatchTarget,
			Message: "match does not start at the rule's pattern instance",
		}
	}
	return nil
}

// CheckIdentification decides the identification condition for applying
// a rule with left leg l at match m: the match may not collapse a
// deleted pattern element onto any other pattern element's image. Two
// deleted elements sharing a host image would delete one thing twice;
// a preserved element sharing a deleted element's image would make the
// same host element both kept and deleted.
//
// Returns nil when the condition holds, otherwise a *ConditionError
// naming the sort, the shared host image, and the colliding pattern
// elements, found in (schema sort order, ascending index) order.
func CheckIdentification(l, m *morphism.Morphism) error {
	if err := checkComposable(l, m); err != nil {
		return err
	}
	pattern := l.Codom()
	deleted := deletedElements(l)
	for _, s := range pattern.Schema().Sorts() {
		del := deleted[s.Name]
		owner := make(map[int]int, len(del))
		for _, d := range del {
			h := m.Apply(s.Name, d)
			if prev, dup := owner[h]; dup {
				return &ConditionError{
					Condition: ConditionIdentification,
					Sort:      s.Name,
					HostIndex: h,
					PatternA:  prev,
					PatternB:  d,
					Message:   "both deleted",
				}
			}
			owner[h] = d
		}
		if len(del) == 0 {
			continue
		}
		di := 0
		for e := 1; e <= pattern.ElementCount(s.Name); e++ {
			if di < len(del) && del[di] == e {
				di++
				continue
			}
			h := m.Apply(s.Name, e)
			if d, hit := owner[h]; hit {
				return &ConditionError{
					Condition: ConditionIdentification,
					Sort:      s.Name,
					HostIndex: h,
					PatternA:  d,
					PatternB:  e,
					Message:   "deleted and preserved",
				}
			}
		}
	}
	return nil
}

// CheckDangling decides the dangling condition for applying a rule with
// left leg l at match m: after deleting the orphans, no surviving host
// element may retain a foreign key into them. Every foreign-key column
// of the schema is inspected, not only the columns the pattern mentions.
//
// Returns nil when the condition holds, otherwise a *ConditionError
// naming the column, the surviving source element, and the orphan it
// points at, found in (column declaration order, ascending index) order.
func CheckDangling(l, m *morphism.Morphism) error {
	if err := checkComposable(l, m); err != nil {
		return err
	}
	host := m.Codom()
	lists, members := orphans(l, m)
	for _, h := range host.Schema().Homs() {
		if len(lists[h.Tgt]) == 0 {
			continue
		}
		col := host.Hom(h.Name)
		srcOrphan := members[h.Src]
		tgtOrphan := members[h.Tgt]
		for x := 1; x <= host.ElementCount(h.Src); x++ {
			if srcOrphan[x] {
				continue
			}
			if tgtOrphan[col[x-1]] {
				return &ConditionError{
					Condition: ConditionDangling,
					Sort:      h.Src,
					Column:    h.Name,
					HostIndex: x,
					Target:    col[x-1],
				}
			}
		}
	}
	return nil
}

// ValidDPO reports whether the rule with left leg l can be applied at
// match m: both applicability conditions hold and the pair is shaped
// like an application at all.
func ValidDPO(l, m *morphism.Morphism) bool {
	return CheckIdentification(l, m) == nil && CheckDangling(l, m) == nil
}
