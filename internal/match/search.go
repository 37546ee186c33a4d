package match

import (
	"fmt"

	"github.com/graphspan/splice/internal/attr"
	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/morphism"
)

// searcher executes a compiled plan against one host by backtracking.
// One searcher serves one enumeration pass; restarting builds a fresh one.
type searcher struct {
	pattern *instance.Instance
	host    *instance.Instance
	steps   []step
	opts    Options

	assign map[string][]int  // partial images per sort, 0 = unbound
	taken  map[string][]bool // host elements in use, monic mode only
	yield  func(*morphism.Morphism) bool
	found  int
}

func newSearcher(pattern, host *instance.Instance, steps []step, opts Options, yield func(*morphism.Morphism) bool) *searcher {
	s := &searcher{
		pattern: pattern,
		host:    host,
		steps:   steps,
		opts:    opts,
		assign:  make(map[string][]int),
		yield:   yield,
	}
	for _, srt := range pattern.Schema().Sorts() {
		s.assign[srt.Name] = make([]int, pattern.ElementCount(srt.Name))
	}
	if opts.Monic {
		s.taken = make(map[string][]bool)
		for _, srt := range pattern.Schema().Sorts() {
			s.taken[srt.Name] = make([]bool, host.ElementCount(srt.Name)+1)
		}
	}
	return s
}

// run evaluates the plan from step i onward. It returns false when the
// consumer stopped the enumeration (yield returned false or the Limit was
// reached) and true when this subtree is exhausted.
func (s *searcher) run(i int) bool {
	if i == len(s.steps) {
		return s.emit()
	}
	switch st := s.steps[i].(type) {
	case bindStep:
		comp := s.assign[st.Sort]
		limit := s.host.ElementCount(st.Sort)
		for cand := 1; cand <= limit; cand++ {
			if s.opts.Monic && s.taken[st.Sort][cand] {
				continue
			}
			comp[st.Elem-1] = cand
			if s.opts.Monic {
				s.taken[st.Sort][cand] = true
			}
			more := s.run(i + 1)
			if s.opts.Monic {
				s.taken[st.Sort][cand] = false
			}
			comp[st.Elem-1] = 0
			if !more {
				return false
			}
		}
		return true

	case homStep:
		srcImg := s.assign[st.SrcSort][st.SrcElem-1]
		tgtImg := s.assign[st.TgtSort][st.TgtElem-1]
		if s.host.HomValue(st.Column, srcImg) != tgtImg {
			return true
		}
		return s.run(i + 1)

	case attrStep:
		img := s.assign[st.Sort][st.Elem-1]
		if !attr.Equal(s.host.AttrValue(st.Column, img), st.Value) {
			return true
		}
		return s.run(i + 1)

	default:
		panic(fmt.Sprintf("match: unknown plan step %T", st))
	}
}

// emit materializes the current total assignment as a morphism and hands
// it to the consumer.
func (s *searcher) emit() bool {
	m, err := morphism.New(s.pattern, s.host, s.assign)
	if err != nil {
		// The plan binds every element to an in-range host index, so a
		// completed assignment always has morphism shape.
		panic(fmt.Sprintf("match: completed assignment rejected: %v", err))
	}
	s.found++
	if !s.yield(m) {
		return false
	}
	return s.opts.Limit == 0 || s.found < s.opts.Limit
}
