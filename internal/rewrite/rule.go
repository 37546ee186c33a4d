package rewrite

import (
	"fmt"

	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/morphism"
)

// Rule is a validated rewrite rule: the span L <-l- I -r-> R. Pattern
// elements outside l's image are deleted by an application; replacement
// elements outside r's image are created. A Rule is immutable and safe
// to apply any number of times, concurrently, against any hosts over its
// schema.
type Rule struct {
	name  string
	left  *morphism.Morphism // l : I -> L
	right *morphism.Morphism // r : I -> R
}

// NewRule validates and freezes a rule. Both legs must start at the same
// interface instance, all three instances must be valid, and both legs
// must be natural.
func NewRule(name string, left, right *morphism.Morphism) (*Rule, error) {
	if left == nil || right == nil {
		return nil, &PreconditionError{Check: CheckCodeRule, Message: "rule needs both legs"}
	}
	if left.Dom() != right.Dom() {
		return nil, &PreconditionError{Check: CheckCodeRule, Message: "rule legs start at different interface instances"}
	}
	for _, part := range []struct {
		role string
		inst *instance.Instance
	}{
		{"interface", left.Dom()},
		{"pattern", left.Codom()},
		{"replacement", right.Codom()},
	} {
		if err := part.inst.Validate(); err != nil {
			return nil, &PreconditionError{
				Check:   CheckCodeRule,
				Message: fmt.Sprintf("%s instance invalid", part.role),
				Err:     err,
			}
		}
	}
	if err := left.CheckNatural(); err != nil {
		return nil, &PreconditionError{Check: CheckCodeRuleNatural, Message: "left leg", Err: err}
	}
	if err := right.CheckNatural(); err != nil {
		return nil, &PreconditionError{Check: CheckCodeRuleNatural, Message: "right leg", Err: err}
	}
	return &Rule{name: name, left: left, right: right}, nil
}

// Name returns the rule's diagnostic name.
func (r *Rule) Name() string { return r.name }

// Left returns l : I -> L.
func (r *Rule) Left() *morphism.Morphism { return r.left }

// Right returns r : I -> R.
func (r *Rule) Right() *morphism.Morphism { return r.right }

// Interface returns the shared interface instance I.
func (r *Rule) Interface() *instance.Instance { return r.left.Dom() }

// Pattern returns the pattern instance L.
func (r *Rule) Pattern() *instance.Instance { return r.left.Codom() }

// Replacement returns the replacement instance R.
func (r *Rule) Replacement() *instance.Instance { return r.right.Codom() }

// Identity builds the rule that matches x and changes nothing: all three
// instances are x and both legs are the identity. Applying it at any
// valid match reproduces the host up to fingerprint.
func Identity(name string, x *instance.Instance) (*Rule, error) {
	id := morphism.Identity(x)
	return NewRule(name, id, id)
}
