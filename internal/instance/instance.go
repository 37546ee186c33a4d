package instance

import (
	"fmt"

	"github.com/graphspan/splice/internal/attr"
	"github.com/graphspan/splice/internal/schema"
)

// Instance is a finite structure over a schema: per sort a dense element
// range 1..n, per foreign-key column a total []int, per attribute column a
// total []attr.Value. See the package documentation for ownership rules.
type Instance struct {
	schema *schema.Schema
	counts map[string]int
	homs   map[string][]int
	attrs  map[string][]attr.Value
}

// New creates an empty instance over the schema: every sort has zero
// elements and every column is empty.
func New(sc *schema.Schema) *Instance {
	inst := &Instance{
		schema: sc,
		counts: make(map[string]int, len(sc.Sorts())),
		homs:   make(map[string][]int, len(sc.Homs())),
		attrs:  make(map[string][]attr.Value, len(sc.Attrs())),
	}
	for _, s := range sc.Sorts() {
		inst.counts[s.Name] = 0
	}
	for _, h := range sc.Homs() {
		inst.homs[h.Name] = nil
	}
	for _, a := range sc.Attrs() {
		inst.attrs[a.Name] = nil
	}
	return inst
}

// Schema returns the schema this instance is shaped by.
func (x *Instance) Schema() *schema.Schema { return x.schema }

// Validate checks totality and referential integrity: every foreign-key
// slot must hold an index in the target sort's range (0 means the slot was
// never assigned) and every attribute slot must be set.
func (x *Instance) Validate() error {
	for _, h := range x.schema.Homs() {
		col := x.homs[h.Name]
		tgtCount := x.counts[h.Tgt]
		for i, v := range col {
			if v == 0 {
				return fmt.Errorf("instance: hom %q: element %d of sort %q is unassigned", h.Name, i+1, h.Src)
			}
			if v < 0 || v > tgtCount {
				return fmt.Errorf("instance: hom %q: element %d of sort %q points at %d, outside 1..%d of sort %q",
					h.Name, i+1, h.Src, v, tgtCount, h.Tgt)
			}
		}
	}
	for _, a := range x.schema.Attrs() {
		col := x.attrs[a.Name]
		for i, v := range col {
			if v == nil {
				return fmt.Errorf("instance: attr %q: element %d of sort %q is unset", a.Name, i+1, a.Src)
			}
		}
	}
	return nil
}

// Clone returns a deep copy sharing only the schema.
func (x *Instance) Clone() *Instance {
	out := &Instance{
		schema: x.schema,
		counts: make(map[string]int, len(x.counts)),
		homs:   make(map[string][]int, len(x.homs)),
		attrs:  make(map[string][]attr.Value, len(x.attrs)),
	}
	for k, v := range x.counts {
		out.counts[k] = v
	}
	for k, col := range x.homs {
		cp := make([]int, len(col))
		copy(cp, col)
		out.homs[k] = cp
	}
	for k, col := range x.attrs {
		cp := make([]attr.Value, len(col))
		copy(cp, col)
		out.attrs[k] = cp
	}
	return out
}

func (x *Instance) mustSort(name string) {
	if !x.schema.HasSort(name) {
		panic(fmt.Sprintf("instance: unknown sort %q in schema %s", name, x.schema.Name()))
	}
}

func (x *Instance) mustHom(name string) schema.Hom {
	h, ok := x.schema.Hom(name)
	if !ok {
		panic(fmt.Sprintf("instance: unknown hom column %q in schema %s", name, x.schema.Name()))
	}
	return h
}

func (x *Instance) mustAttr(name string) schema.Attr {
	a, ok := x.schema.Attr(name)
	if !ok {
		panic(fmt.Sprintf("instance: unknown attr column %q in schema %s", name, x.schema.Name()))
	}
	return a
}

func (x *Instance) mustIndex(sort string, i int) {
	if i < 1 || i > x.counts[sort] {
		panic(fmt.Sprintf("instance: index %d outside 1..%d of sort %q", i, x.counts[sort], sort))
	}
}
