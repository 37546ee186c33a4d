package rewrite

import (
	"fmt"
	"log/slog"

	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/match"
	"github.com/graphspan/splice/internal/morphism"
	"github.com/graphspan/splice/internal/pushout"
)

// Options controls match selection in Rewrite and Matches.
type Options struct {
	// Monic restricts the search to injective matches.
	Monic bool

	// MatchIndex picks the n-th applicable match in search order,
	// counting from 1. Zero means 1.
	MatchIndex int
}

// Apply rewrites the host at a specific match and returns the result.
//
// The match is checked fully before anything is built: it must start at
// the rule's pattern, target a valid host, be natural, and satisfy both
// applicability conditions. Failures come back as *PreconditionError
// with the check that failed; for the applicability conditions the
// wrapped error is a *ConditionError carrying the offending elements.
//
// The host is never mutated. The result is a fresh instance.
func Apply(rule *Rule, m *morphism.Morphism) (*instance.Instance, error) {
	if m == nil {
		return nil, &PreconditionError{Check: CheckCodeMatchTarget, Message: "match is nil"}
	}
	if m.Dom() != rule.Pattern() {
		return nil, &PreconditionError{
			Check:   CheckCodeMatchTarget,
			Message: "match does not start at the rule's pattern instance",
		}
	}
	host := m.Codom()
	if err := host.Validate(); err != nil {
		return nil, &PreconditionError{Check: CheckCodeMatchTarget, Message: "host instance invalid", Err: err}
	}
	if err := m.CheckNatural(); err != nil {
		return nil, &PreconditionError{Check: CheckCodeMatchNatural, Message: "match is not a morphism", Err: err}
	}
	if err := CheckIdentification(rule.left, m); err != nil {
		return nil, &PreconditionError{Check: CheckCodeIdentification, Message: "rule not applicable here", Err: err}
	}
	if err := CheckDangling(rule.left, m); err != nil {
		return nil, &PreconditionError{Check: CheckCodeDangling, Message: "rule not applicable here", Err: err}
	}

	k, _, err := Complement(rule.left, m)
	if err != nil {
		return nil, err
	}
	span, err := pushout.Glue(rule.right, k)
	if err != nil {
		return nil, fmt.Errorf("rewrite: glue replacement into context: %w", err)
	}

	slog.Debug("rewrite applied",
		"rule", rule.name,
		"schema", host.Schema().Name(),
	)
	return span.Apex, nil
}

// Rewrite finds the n-th applicable match of the rule in the host and
// applies it. The boolean reports whether a rewrite happened: when no
// match satisfies the applicability conditions, or fewer than
// opts.MatchIndex do, the result is (nil, false, nil) rather than an
// error. Use Matches to distinguish the two cases.
//
// Candidates are visited in the deterministic search order and checked
// against both conditions; rejected candidates are skipped, so
// MatchIndex counts applicable matches only.
func Rewrite(rule *Rule, host *instance.Instance, opts Options) (*instance.Instance, bool, error) {
	idx := opts.MatchIndex
	if idx == 0 {
		idx = 1
	}
	if idx < 0 {
		return nil, false, fmt.Errorf("rewrite: match index %d out of range", idx)
	}

	seq, err := match.All(rule.Pattern(), host, match.Options{Monic: opts.Monic})
	if err != nil {
		return nil, false, &PreconditionError{Check: CheckCodeMatchTarget, Message: "cannot search host", Err: err}
	}

	candidate := 0
	valid := 0
	var chosen *morphism.Morphism
	for m := range seq {
		candidate++
		if err := CheckIdentification(rule.left, m); err != nil {
			slog.Debug("match rejected",
				"rule", rule.name,
				"candidate", candidate,
				"condition", "identification",
			)
			continue
		}
		if err := CheckDangling(rule.left, m); err != nil {
			slog.Debug("match rejected",
				"rule", rule.name,
				"candidate", candidate,
				"condition", "dangling",
			)
			continue
		}
		valid++
		if valid == idx {
			chosen = m
			break
		}
	}
	if chosen == nil {
		slog.Debug("no applicable match",
			"rule", rule.name,
			"candidates", candidate,
			"applicable", valid,
		)
		return nil, false, nil
	}

	out, err := Apply(rule, chosen)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Matches lists every applicable match of the rule in the host, in
// search order. Candidates failing an applicability condition are
// filtered out. opts.MatchIndex is ignored.
func Matches(rule *Rule, host *instance.Instance, opts Options) ([]*morphism.Morphism, error) {
	seq, err := match.All(rule.Pattern(), host, match.Options{Monic: opts.Monic})
	if err != nil {
		return nil, &PreconditionError{Check: CheckCodeMatchTarget, Message: "cannot search host", Err: err}
	}
	var out []*morphism.Morphism
	for m := range seq {
		if err := CheckIdentification(rule.left, m); err != nil {
			continue
		}
		if err := CheckDangling(rule.left, m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
