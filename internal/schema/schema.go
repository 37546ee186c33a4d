// Package schema describes the shape of instances: the finite list of
// sorts (element tables) plus the foreign-key and attribute columns over
// them. A schema is built programmatically, validated as it grows, and
// never mutated once instances exist over it. Instances, morphisms, and
// rules all hold a pointer to the same Schema value; identity is pointer
// identity.
package schema

import "fmt"

// Sort is one element table. Elements of a sort are addressed by dense
// 1-based indices.
type Sort struct {
	Name string
}

// Hom is a foreign-key column: a total function from the elements of Src
// to the elements of Tgt.
type Hom struct {
	Name string
	Src  string
	Tgt  string
}

// Attr is an attribute column: a total function from the elements of Src
// to opaque scalar values.
type Attr struct {
	Name string
	Src  string
}

// Schema is a validated collection of sorts and columns. The zero value is
// not usable; construct with New.
type Schema struct {
	name  string
	sorts []Sort
	homs  []Hom
	attrs []Attr

	sortIndex map[string]int
	homIndex  map[string]int
	attrIndex map[string]int
}

// New creates an empty schema with the given name.
func New(name string) *Schema {
	return &Schema{
		name:      name,
		sortIndex: make(map[string]int),
		homIndex:  make(map[string]int),
		attrIndex: make(map[string]int),
	}
}

// AddSort declares a new sort. Sort names must be unique and non-empty.
func (s *Schema) AddSort(name string) error {
	if name == "" {
		return fmt.Errorf("schema %s: sort name must be non-empty", s.name)
	}
	if _, ok := s.sortIndex[name]; ok {
		return fmt.Errorf("schema %s: duplicate sort %q", s.name, name)
	}
	s.sortIndex[name] = len(s.sorts)
	s.sorts = append(s.sorts, Sort{Name: name})
	return nil
}

// AddHom declares a foreign-key column from src to tgt. Both sorts must
// already exist; column names must be unique across homs and attrs.
func (s *Schema) AddHom(name, src, tgt string) error {
	if err := s.checkColumnName(name); err != nil {
		return err
	}
	if _, ok := s.sortIndex[src]; !ok {
		return fmt.Errorf("schema %s: hom %q: unknown source sort %q", s.name, name, src)
	}
	if _, ok := s.sortIndex[tgt]; !ok {
		return fmt.Errorf("schema %s: hom %q: unknown target sort %q", s.name, name, tgt)
	}
	s.homIndex[name] = len(s.homs)
	s.homs = append(s.homs, Hom{Name: name, Src: src, Tgt: tgt})
	return nil
}

// AddAttr declares an attribute column on src. Column names must be unique
// across homs and attrs.
func (s *Schema) AddAttr(name, src string) error {
	if err := s.checkColumnName(name); err != nil {
		return err
	}
	if _, ok := s.sortIndex[src]; !ok {
		return fmt.Errorf("schema %s: attr %q: unknown source sort %q", s.name, name, src)
	}
	s.attrIndex[name] = len(s.attrs)
	s.attrs = append(s.attrs, Attr{Name: name, Src: src})
	return nil
}

func (s *Schema) checkColumnName(name string) error {
	if name == "" {
		return fmt.Errorf("schema %s: column name must be non-empty", s.name)
	}
	if _, ok := s.homIndex[name]; ok {
		return fmt.Errorf("schema %s: duplicate column %q", s.name, name)
	}
	if _, ok := s.attrIndex[name]; ok {
		return fmt.Errorf("schema %s: duplicate column %q", s.name, name)
	}
	return nil
}

// Name returns the schema's name.
func (s *Schema) Name() string { return s.name }

// Sorts returns the declared sorts in declaration order. Callers must not
// modify the returned slice.
func (s *Schema) Sorts() []Sort { return s.sorts }

// Homs returns the declared foreign-key columns in declaration order.
// Callers must not modify the returned slice.
func (s *Schema) Homs() []Hom { return s.homs }

// Attrs returns the declared attribute columns in declaration order.
// Callers must not modify the returned slice.
func (s *Schema) Attrs() []Attr { return s.attrs }

// HasSort reports whether a sort with the given name exists.
func (s *Schema) HasSort(name string) bool {
	_, ok := s.sortIndex[name]
	return ok
}

// Hom looks up a foreign-key column by name.
func (s *Schema) Hom(name string) (Hom, bool) {
	i, ok := s.homIndex[name]
	if !ok {
		return Hom{}, false
	}
	return s.homs[i], true
}

// Attr looks up an attribute column by name.
func (s *Schema) Attr(name string) (Attr, bool) {
	i, ok := s.attrIndex[name]
	if !ok {
		return Attr{}, false
	}
	return s.attrs[i], true
}

// HomsFrom returns the foreign-key columns whose source is the given sort,
// in declaration order.
func (s *Schema) HomsFrom(sort string) []Hom {
	var out []Hom
	for _, h := range s.homs {
		if h.Src == sort {
			out = append(out, h)
		}
	}
	return out
}

// HomsInto returns the foreign-key columns whose target is the given sort,
// in declaration order. The dangling check walks these for every sort that
// loses elements.
func (s *Schema) HomsInto(sort string) []Hom {
	var out []Hom
	for _, h := range s.homs {
		if h.Tgt == sort {
			out = append(out, h)
		}
	}
	return out
}

// AttrsOn returns the attribute columns whose source is the given sort, in
// declaration order.
func (s *Schema) AttrsOn(sort string) []Attr {
	var out []Attr
	for _, a := range s.attrs {
		if a.Src == sort {
			out = append(out, a)
		}
	}
	return out
}
