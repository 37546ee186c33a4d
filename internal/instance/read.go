package instance

import "github.com/graphspan/splice/internal/attr"

// ElementCount returns the number of elements of a sort. Elements are
// exactly the indices 1..ElementCount.
func (x *Instance) ElementCount(sort string) int {
	x.mustSort(sort)
	return x.counts[sort]
}

// Hom returns the live backing slice of a foreign-key column; entry i-1
// holds the target index for element i. Callers must not modify it.
func (x *Instance) Hom(name string) []int {
	x.mustHom(name)
	return x.homs[name]
}

// HomValue returns the target of a foreign-key column at element i.
func (x *Instance) HomValue(name string, i int) int {
	h := x.mustHom(name)
	x.mustIndex(h.Src, i)
	return x.homs[name][i-1]
}

// Attr returns the live backing slice of an attribute column. Callers
// must not modify it.
func (x *Instance) Attr(name string) []attr.Value {
	x.mustAttr(name)
	return x.attrs[name]
}

// AttrValue returns the attribute value at element i, nil if unset.
func (x *Instance) AttrValue(name string, i int) attr.Value {
	a := x.mustAttr(name)
	x.mustIndex(a.Src, i)
	return x.attrs[name][i-1]
}

// Canonical returns the instance as plain data in the deterministic shape
// consumed by the canonical encoder: schema name, per-sort counts, and
// every column. Requires a validated instance (unset attribute slots do
// not encode).
func (x *Instance) Canonical() map[string]any {
	counts := make(map[string]any, len(x.counts))
	for _, s := range x.schema.Sorts() {
		counts[s.Name] = x.counts[s.Name]
	}
	homs := make(map[string]any, len(x.homs))
	for _, h := range x.schema.Homs() {
		homs[h.Name] = append([]int(nil), x.homs[h.Name]...)
	}
	attrs := make(map[string]any, len(x.attrs))
	for _, a := range x.schema.Attrs() {
		col := x.attrs[a.Name]
		vals := make([]any, len(col))
		for i, v := range col {
			vals[i] = attr.ToGo(v)
		}
		attrs[a.Name] = vals
	}
	return map[string]any{
		"schema": x.schema.Name(),
		"counts": counts,
		"homs":   homs,
		"attrs":  attrs,
	}
}
