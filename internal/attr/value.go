// Package attr defines the opaque attribute values carried by instance
// elements, plus the canonical encoding used for fingerprints and golden
// files. Values are scalars only. NO floats - attribute equality must be
// exact and the canonical encoding deterministic.
package attr

import "fmt"

// Value is a sealed interface over the attribute value types.
// Only String, Int, and Bool implement it.
type Value interface {
	attrValue() // Sealed - only these types implement it
}

// String is a string attribute value.
type String string

func (String) attrValue() {}

// Int is an integer attribute value. Always int64, never float64.
type Int int64

func (Int) attrValue() {}

// Bool is a boolean attribute value.
type Bool bool

func (Bool) attrValue() {}

// NewString creates a String value.
func NewString(s string) String {
	return String(s)
}

// NewInt creates an Int value.
func NewInt(n int64) Int {
	return Int(n)
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// Equal reports whether two values are identical. Values of different
// variants are never equal. Nil values compare equal only to each other
// (an unset attribute slot).
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	default:
		return false
	}
}

// FromGo converts a plain Go scalar (as produced by YAML or JSON decoding)
// into a Value. Floats and nulls are rejected, as are composites: attribute
// slots hold exactly one scalar.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not a valid attribute value")
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(int64(val)), nil
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in attribute values: %v", val)
	default:
		return nil, fmt.Errorf("unsupported attribute value type: %T", v)
	}
}

// ToGo converts a Value back to the plain Go scalar used by output
// formatting and the canonical encoder.
func ToGo(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// GoString implements fmt.GoStringer for readable test failure output.
func (s String) GoString() string { return fmt.Sprintf("attr.String(%q)", string(s)) }

// GoString implements fmt.GoStringer for readable test failure output.
func (n Int) GoString() string { return fmt.Sprintf("attr.Int(%d)", int64(n)) }

// GoString implements fmt.GoStringer for readable test failure output.
func (b Bool) GoString() string { return fmt.Sprintf("attr.Bool(%t)", bool(b)) }

// Format renders a value for text output: strings quoted, ints and bools
// bare. Nil renders as the unset marker.
func Format(v Value) string {
	switch val := v.(type) {
	case String:
		return fmt.Sprintf("%q", string(val))
	case Int:
		return fmt.Sprintf("%d", int64(val))
	case Bool:
		return fmt.Sprintf("%t", bool(val))
	case nil:
		return "<unset>"
	default:
		return fmt.Sprintf("<%T>", v)
	}
}
