package morphism

import (
	"errors"
	"fmt"

	"github.com/graphspan/splice/internal/attr"
)

// NaturalityError reports the first column and element where a morphism
// fails to be a homomorphism.
type NaturalityError struct {
	Column string // hom or attr column name
	Sort   string // source sort of the column
	Index  int    // offending dom element
	Detail string
}

// Error implements the error interface.
func (e *NaturalityError) Error() string {
	return fmt.Sprintf("naturality violated at column %q, element %d of sort %q: %s",
		e.Column, e.Index, e.Sort, e.Detail)
}

// IsNaturality reports whether err is (or wraps) a NaturalityError.
func IsNaturality(err error) bool {
	var ne *NaturalityError
	return errors.As(err, &ne)
}

// CheckNatural verifies the homomorphism laws: for every foreign-key
// column c : S -> T, f_T(c_dom(x)) = c_codom(f_S(x)), and for every
// attribute column a on S, a_dom(x) = a_codom(f_S(x)). Returns nil when
// every law holds, otherwise a *NaturalityError for the first violation
// in schema declaration order. Both endpoint instances must be valid.
func (f *Morphism) CheckNatural() error {
	sc := f.dom.Schema()
	for _, h := range sc.Homs() {
		domCol := f.dom.Hom(h.Name)
		codomCol := f.codom.Hom(h.Name)
		srcPart := f.parts[h.Src]
		tgtPart := f.parts[h.Tgt]
		for i := 1; i <= len(srcPart); i++ {
			target := domCol[i-1]
			if target == 0 {
				return &NaturalityError{
					Column: h.Name, Sort: h.Src, Index: i,
					Detail: "dom foreign-key slot is unassigned",
				}
			}
			want := tgtPart[target-1]
			got := codomCol[srcPart[i-1]-1]
			if want != got {
				return &NaturalityError{
					Column: h.Name, Sort: h.Src, Index: i,
					Detail: fmt.Sprintf("maps target to %d but codom column holds %d", want, got),
				}
			}
		}
	}
	for _, a := range sc.Attrs() {
		domCol := f.dom.Attr(a.Name)
		codomCol := f.codom.Attr(a.Name)
		srcPart := f.parts[a.Src]
		for i := 1; i <= len(srcPart); i++ {
			want := domCol[i-1]
			got := codomCol[srcPart[i-1]-1]
			if !attr.Equal(want, got) {
				return &NaturalityError{
					Column: a.Name, Sort: a.Src, Index: i,
					Detail: fmt.Sprintf("carries %s but image carries %s", attr.Format(want), attr.Format(got)),
				}
			}
		}
	}
	return nil
}

// Natural reports whether CheckNatural passes.
func (f *Morphism) Natural() bool {
	return f.CheckNatural() == nil
}
