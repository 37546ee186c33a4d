package instance

import (
	"fmt"

	"github.com/graphspan/splice/internal/attr"
)

// AddElements allocates n fresh elements of a sort and returns the
// inclusive index range [first, last]. Every column whose source is the
// sort grows by n unassigned slots. n <= 0 allocates nothing and returns
// an empty range (first > last).
func (x *Instance) AddElements(sort string, n int) (first, last int) {
	x.mustSort(sort)
	cur := x.counts[sort]
	if n <= 0 {
		return cur + 1, cur
	}
	x.counts[sort] = cur + n
	for _, h := range x.schema.HomsFrom(sort) {
		x.homs[h.Name] = append(x.homs[h.Name], make([]int, n)...)
	}
	for _, a := range x.schema.AttrsOn(sort) {
		x.attrs[a.Name] = append(x.attrs[a.Name], make([]attr.Value, n)...)
	}
	return cur + 1, cur + n
}

// SetHom assigns a whole foreign-key column at once. The slice length
// must equal the source sort's element count and every value must be a
// valid target index. The input is copied.
func (x *Instance) SetHom(name string, vals []int) error {
	h := x.mustHom(name)
	if len(vals) != x.counts[h.Src] {
		return fmt.Errorf("instance: hom %q: got %d values for %d elements of sort %q",
			name, len(vals), x.counts[h.Src], h.Src)
	}
	tgtCount := x.counts[h.Tgt]
	for i, v := range vals {
		if v < 1 || v > tgtCount {
			return fmt.Errorf("instance: hom %q: element %d points at %d, outside 1..%d of sort %q",
				name, i+1, v, tgtCount, h.Tgt)
		}
	}
	x.homs[name] = append([]int(nil), vals...)
	return nil
}

// SetHomValue assigns one foreign-key slot.
func (x *Instance) SetHomValue(name string, i, v int) error {
	h := x.mustHom(name)
	x.mustIndex(h.Src, i)
	if v < 1 || v > x.counts[h.Tgt] {
		return fmt.Errorf("instance: hom %q: element %d points at %d, outside 1..%d of sort %q",
			name, i, v, x.counts[h.Tgt], h.Tgt)
	}
	x.homs[name][i-1] = v
	return nil
}

// SetAttr assigns a whole attribute column at once. The slice length must
// equal the source sort's element count and every value must be non-nil.
// The input is copied.
func (x *Instance) SetAttr(name string, vals []attr.Value) error {
	a := x.mustAttr(name)
	if len(vals) != x.counts[a.Src] {
		return fmt.Errorf("instance: attr %q: got %d values for %d elements of sort %q",
			name, len(vals), x.counts[a.Src], a.Src)
	}
	for i, v := range vals {
		if v == nil {
			return fmt.Errorf("instance: attr %q: element %d is nil", name, i+1)
		}
	}
	x.attrs[name] = append([]attr.Value(nil), vals...)
	return nil
}

// SetAttrValue assigns one attribute slot.
func (x *Instance) SetAttrValue(name string, i int, v attr.Value) error {
	a := x.mustAttr(name)
	x.mustIndex(a.Src, i)
	if v == nil {
		return fmt.Errorf("instance: attr %q: element %d set to nil", name, i)
	}
	x.attrs[name][i-1] = v
	return nil
}
