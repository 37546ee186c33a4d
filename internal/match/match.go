// Package match enumerates homomorphisms from a pattern instance into a
// host instance. The pattern is compiled once into a flat search plan
// executed by deterministic backtracking: pattern elements are bound in
// (schema sort order, ascending index) order and candidate host images
// are tried ascending, so the sequence of results is a pure function of
// the two instances and the options.
//
// The search is intentionally plain. Constraints prune as early as the
// binding order allows and nothing else: no cost-based reordering, no
// indexes. Callers that need only a prefix of the enumeration should
// range lazily and stop, or set Options.Limit.
package match

import (
	"fmt"
	"iter"

	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/morphism"
)

// Options configures one enumeration.
type Options struct {
	// Monic restricts the search to per-sort injective homomorphisms.
	Monic bool
	// Limit caps how many homomorphisms are yielded; 0 means unlimited.
	// The cap is a search budget, not an error: hitting it simply ends
	// the sequence.
	Limit int
}

// All returns a lazy, restartable sequence of the homomorphisms from
// pattern into host, in deterministic order. Both instances must be valid
// and share a schema. An empty pattern yields exactly one (empty)
// homomorphism.
func All(pattern, host *instance.Instance, opts Options) (iter.Seq[*morphism.Morphism], error) {
	if pattern.Schema() != host.Schema() {
		return nil, fmt.Errorf("match: pattern schema %q and host schema %q differ",
			pattern.Schema().Name(), host.Schema().Name())
	}
	if err := pattern.Validate(); err != nil {
		return nil, fmt.Errorf("match: invalid pattern: %w", err)
	}
	if err := host.Validate(); err != nil {
		return nil, fmt.Errorf("match: invalid host: %w", err)
	}

	steps := compile(pattern)
	seq := func(yield func(*morphism.Morphism) bool) {
		newSearcher(pattern, host, steps, opts, yield).run(0)
	}
	return seq, nil
}

// List materializes All.
func List(pattern, host *instance.Instance, opts Options) ([]*morphism.Morphism, error) {
	seq, err := All(pattern, host, opts)
	if err != nil {
		return nil, err
	}
	var out []*morphism.Morphism
	for m := range seq {
		out = append(out, m)
	}
	return out, nil
}
