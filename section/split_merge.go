package section

import (
	"github.com/dsprotocol/agesim/node"
	"github.com/dsprotocol/agesim/params"
	"github.com/dsprotocol/agesim/prefix"
)

// trySplit checks the split threshold and, if met, partitions s into two
// child sections and transitions s to Splitting.
func (s *Section) trySplit(p params.Params) (Response, bool) {
	if s.state != Stable {
		return nil, false
	}

	pol := agePolicy(p)
	p0, p1 := s.prefix.Extend(0), s.prefix.Extend(1)
	var adults0, adults1 uint64
	for _, n := range s.members {
		if !n.IsAdult(pol) {
			continue
		}
		if p0.Matches(n.Name) {
			adults0++
		} else {
			adults1++
		}
	}

	limit := p.SplitLimit()
	if adults0 < limit || adults1 < limit {
		return nil, false
	}

	s0, s1 := s.splitInto(p, p0, p1)
	s.state = Splitting
	s.resetRelocationCaches()
	return ResponseSplit{S0: s0, S1: s1, OldPrefix: s.prefix}, true
}

// splitInto builds the two child sections by partitioning this section's
// members, chain, and in-flight relocation caches by whichever child
// prefix each entry belongs under. The parent's queued requests need no
// explicit partitioning: HandleRequests is still draining them, and once
// s.state becomes Splitting every remaining request in that drain is
// forwarded to whichever child matches it (see forwardToChild).
func (s *Section) splitInto(p params.Params, p0, p1 prefix.Prefix) (*Section, *Section) {
	s0, s1 := New(p0), New(p1)
	s0.chain, s1.chain = s.chain.Clone(), s.chain.Clone()

	for name, n := range s.members {
		if p0.Matches(name) {
			s0.members[name] = n
		} else {
			s1.members[name] = n
		}
	}
	for name, target := range s.outRelocations {
		if p0.Matches(name) {
			s0.outRelocations[name] = target
		} else {
			s1.outRelocations[name] = target
		}
	}
	for name, target := range s.inRelocations {
		// in_relocations is keyed by the relocating node's *current* name,
		// which lives in a foreign section; the child it belongs under is
		// determined by target, the address already reserved here.
		if p0.Matches(target) {
			s0.inRelocations[name] = target
		} else {
			s1.inRelocations[name] = target
		}
	}

	recomputeElders(s0, p)
	recomputeElders(s1, p)
	return s0, s1
}

// tryMerge checks the merge threshold and, if met, transitions s to
// Merging and notifies its sibling.
func (s *Section) tryMerge(p params.Params) []Response {
	if s.prefix.Len == 0 || s.state != Stable {
		return nil
	}
	if uint64(node.CountAdults(agePolicy(p), s.Nodes())) >= p.GroupSize {
		return nil
	}

	parent := s.prefix.Shorten()
	_, resp := s.transitionToMerging(parent)
	sibling := s.prefix.Sibling()
	return []Response{resp, ResponseSend{Prefix: sibling, Request: RequestMerge{Parent: parent}}}
}

// handleMerge processes an incoming request to merge toward parent,
// regardless of this section's current state.
func (s *Section) handleMerge(p params.Params, parent prefix.Prefix) []Response {
	switch s.state {
	case Splitting:
		p0, p1 := s.prefix.Extend(0), s.prefix.Extend(1)
		return []Response{
			ResponseSend{Prefix: p0, Request: RequestMerge{Parent: parent}},
			ResponseSend{Prefix: p1, Request: RequestMerge{Parent: parent}},
		}
	case Merging:
		if s.parent.IsAncestor(parent) {
			return nil
		}
		return []Response{ResponseSend{Prefix: s.parent, Request: RequestMerge{Parent: parent}}}
	default: // Stable
		_, resp := s.transitionToMerging(parent)
		return []Response{resp}
	}
}

// transitionToMerging builds the replacement section at parent, transfers
// this section's members and chain into it, and puts s itself into the
// terminal Merging state — it no longer admits anything locally and exists
// only to be removed by the network once the response is applied.
func (s *Section) transitionToMerging(parent prefix.Prefix) (*Section, Response) {
	newSection := New(parent)
	newSection.chain = s.chain.Clone()
	for name, n := range s.members {
		newSection.members[name] = n
	}

	old := s.prefix
	s.state = Merging
	s.parent = parent
	s.resetRelocationCaches()

	return newSection, ResponseMerge{Section: newSection, OldPrefix: old}
}

// Merge absorbs other, which the network has determined shares this
// section's (post-merge) prefix, unioning membership and chain history and
// recomputing elders over the combined set.
func (s *Section) Merge(other *Section, p params.Params) {
	if other.prefix != s.prefix {
		invariantViolation("cannot merge section %s into %s: prefix mismatch", other.prefix, s.prefix)
	}
	for name, n := range other.members {
		s.members[name] = n
	}
	s.chain.Extend(other.chain)
	for name, target := range other.inRelocations {
		s.inRelocations[name] = target
	}
	for name, target := range other.outRelocations {
		s.outRelocations[name] = target
	}
	recomputeElders(s, p)
}
