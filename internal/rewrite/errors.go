package rewrite

import (
	"errors"
	"fmt"
)

// Condition names one of the two DPO applicability conditions.
type Condition string

const (
	// ConditionIdentification is violated when the match collapses a
	// deleted pattern element onto another deleted or preserved one.
	ConditionIdentification Condition = "identification"

	// ConditionDangling is violated when a surviving host element's
	// foreign key points at an element slated for deletion.
	ConditionDangling Condition = "dangling"
)

// ConditionError is the verbose verdict of a failed applicability check:
// which condition broke, where, and who is involved.
//
// For identification failures, HostIndex is the shared host image and
// PatternA/PatternB are the two colliding pattern elements (PatternA
// deleted; PatternB deleted or preserved depending on the clause). For
// dangling failures, Column is the offending foreign-key column,
// HostIndex the surviving source element, and Target the orphan it
// points at.
type ConditionError struct {
	Condition Condition
	Sort      string
	Column    string
	HostIndex int
	PatternA  int
	PatternB  int
	Target    int
	Message   string
}

// Error implements the error interface.
func (e *ConditionError) Error() string {
	switch e.Condition {
	case ConditionDangling:
		return fmt.Sprintf("%s condition violated: column %q: surviving element %d of sort %q points at deleted element %d",
			e.Condition, e.Column, e.HostIndex, e.Sort, e.Target)
	default:
		return fmt.Sprintf("%s condition violated: sort %q: pattern elements %d and %d share host image %d (%s)",
			e.Condition, e.Sort, e.PatternA, e.PatternB, e.HostIndex, e.Message)
	}
}

// AsCondition unwraps err to a ConditionError if one is present.
func AsCondition(err error) (*ConditionError, bool) {
	var ce *ConditionError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsIdentificationError reports whether err carries a failed
// identification condition.
func IsIdentificationError(err error) bool {
	ce, ok := AsCondition(err)
	return ok && ce.Condition == ConditionIdentification
}

// IsDanglingError reports whether err carries a failed dangling
// condition.
func IsDanglingError(err error) bool {
	ce, ok := AsCondition(err)
	return ok && ce.Condition == ConditionDangling
}

// CheckCode categorizes precondition failures.
type CheckCode string

const (
	// CheckCodeRule: the rule's legs do not form a span over one
	// interface instance, or one of the three instances is invalid.
	CheckCodeRule CheckCode = "RULE_SHAPE"

	// CheckCodeRuleNatural: a rule leg is not a homomorphism.
	CheckCodeRuleNatural CheckCode = "RULE_NATURAL"

	// CheckCodeMatchTarget: the match does not run from the rule's
	// pattern into a valid host over the rule's schema.
	CheckCodeMatchTarget CheckCode = "MATCH_TARGET"

	// CheckCodeMatchNatural: the match is not a homomorphism.
	CheckCodeMatchNatural CheckCode = "MATCH_NATURAL"

	// CheckCodeIdentification: the identification condition failed.
	CheckCodeIdentification CheckCode = "DPO_IDENTIFICATION"

	// CheckCodeDangling: the dangling condition failed.
	CheckCodeDangling CheckCode = "DPO_DANGLING"
)

// PreconditionError reports which contract an input violated. Nothing
// was built and nothing was mutated when one is returned.
type PreconditionError struct {
	Check   CheckCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Check, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Check, e.Message)
}

// Unwrap exposes the underlying cause for errors.As chains.
func (e *PreconditionError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// PreconditionCheck extracts the failed check code, if any.
func PreconditionCheck(err error) (CheckCode, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Check, true
	}
	return "", false
}

// ConsistencyError reports a state that valid inputs cannot produce,
// detected while building the complement: an interface element whose
// host image is an orphan, a restricted column escaping the survivor
// set, or a constructed morphism failing its naturality assertion. It is
// fatal to the attempt, never repaired.
type ConsistencyError struct {
	Stage   string
	Sort    string
	Index   int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	msg := fmt.Sprintf("consistency violation in %s: %s", e.Stage, e.Message)
	if e.Sort != "" {
		msg = fmt.Sprintf("%s (sort %q, element %d)", msg, e.Sort, e.Index)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.As chains.
func (e *ConsistencyError) Unwrap() error { return e.Err }

// IsConsistency reports whether err is (or wraps) a ConsistencyError.
func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
