package section

import (
	"encoding/binary"
	"math/rand"

	"github.com/dsprotocol/agesim/chain"
	"github.com/dsprotocol/agesim/node"
	"github.com/dsprotocol/agesim/params"
	"github.com/dsprotocol/agesim/prefix"
)

// tryRelocate looks for a member eligible to be relocated away, driven by
// the section's relocation hash oracle. It returns no responses (and no
// error) whenever relocation simply doesn't apply this round: that is the
// normal, expected outcome, not a failure.
func (s *Section) tryRelocate(p params.Params) []Response {
	if len(s.outRelocations) > 0 || s.relocatedInThisTick {
		return nil
	}

	adultCount := uint64(node.CountAdults(agePolicy(p), s.Nodes()))
	if adultCount < p.GroupSize+2 {
		return nil
	}

	h, err := s.chain.RelocationHash()
	if err != nil {
		return nil
	}

	var chosen node.Node
	found := false
	for attempt := 0; attempt < p.MaxRelocationAttempts; attempt++ {
		if candidates := s.relocationCandidates(h); len(candidates) > 0 {
			chosen = selectRelocationCandidate(candidates, p.RelocationStrategy)
			found = true
			break
		}
		h = chain.Rehash(h)
	}
	if !found {
		return nil
	}

	target := chain.HashAsName(h)
	s.outRelocations[chosen.Name] = target
	return []Response{ResponseRouteByName{
		Name:    target,
		Request: RequestRelocateRequest{Src: s.prefix, Target: target, NodeName: chosen.Name},
	}}
}

// relocationCandidates returns every member whose age is at most the
// number of trailing zero bits of h — equivalently, h mod 2^age == 0.
func (s *Section) relocationCandidates(h [32]byte) []node.Node {
	tzb := chain.TrailingZeroBits(h)
	var out []node.Node
	for _, n := range s.Nodes() {
		if n.Age <= tzb {
			out = append(out, n)
		}
	}
	return out
}

// selectRelocationCandidate narrows candidates to those at the extreme
// age the strategy prefers, then breaks any remaining tie by XORing every
// tied name together and picking whichever name, XORed with that value,
// is smallest.
func selectRelocationCandidate(candidates []node.Node, strategy params.RelocationStrategy) node.Node {
	extremeAge := candidates[0].Age
	for _, n := range candidates[1:] {
		if strategy == params.YoungestFirst {
			if n.Age < extremeAge {
				extremeAge = n.Age
			}
		} else if n.Age > extremeAge {
			extremeAge = n.Age
		}
	}

	var tied []node.Node
	for _, n := range candidates {
		if n.Age == extremeAge {
			tied = append(tied, n)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}

	var xorAll prefix.Name
	for _, n := range tied {
		xorAll ^= n.Name
	}
	best := tied[0]
	bestKey := best.Name ^ xorAll
	for _, n := range tied[1:] {
		if key := n.Name ^ xorAll; key < bestKey {
			best, bestKey = n, key
		}
	}
	return best
}

// handleRelocateRequest handles an incoming ask to accept nodeName as a
// relocating member. This section can only hold one inbound relocation
// reservation at a time, never exceeds max_section_size, and — once it has
// already committed one relocation this tick — rejects every further
// request until the next tick, per relocatedInThisTick.
func (s *Section) handleRelocateRequest(p params.Params, r RequestRelocateRequest) []Response {
	if len(s.inRelocations) > 0 || s.relocatedInThisTick || uint64(s.Len()) >= p.MaxSectionSize {
		return []Response{ResponseSend{
			Prefix:  r.Src,
			Request: RequestRelocateReject{Target: r.Target, NodeName: r.NodeName},
		}}
	}
	s.inRelocations[r.NodeName] = r.Target
	return []Response{ResponseSend{
		Prefix:  r.Src,
		Request: RequestRelocateAccept{Dst: s.prefix, NodeName: r.NodeName},
	}}
}

// handleRelocateAccept handles the destination section's acceptance of a
// node this section is trying to relocate away: the node leaves, ages by
// one, is demoted (with a Dead block) if it was an elder, and is handed
// off via RelocateCommit.
func (s *Section) handleRelocateAccept(p params.Params, r RequestRelocateAccept) []Response {
	target, ok := s.outRelocations[r.NodeName]
	if !ok {
		return nil
	}
	n, present := s.members[r.NodeName]
	delete(s.outRelocations, r.NodeName)
	if !present {
		return nil
	}

	delete(s.members, r.NodeName)
	wasElder := n.Elder
	n.Elder = false
	n.IncrementAge()
	if wasElder {
		s.chain.Insert(chain.Block{Event: chain.Dead, Name: n.Name, Age: n.Age})
	}
	recomputeElders(s, p)

	return []Response{ResponseSend{
		Prefix:  r.Dst,
		Request: RequestRelocateCommit{Node: n, Target: target},
	}}
}

// handleRelocateReject handles a destination section declining a
// relocation: unless giving up is forced (this is the root, or the
// departure would immediately require a merge), the candidate's target is
// rehashed and a fresh RelocateRequest is sent.
func (s *Section) handleRelocateReject(p params.Params, r RequestRelocateReject) []Response {
	target, ok := s.outRelocations[r.NodeName]
	if !ok || target != r.Target {
		return nil
	}

	isRoot := s.prefix.Len == 0
	wouldNeedMerge := false
	if n, present := s.members[r.NodeName]; present && n.IsAdult(agePolicy(p)) {
		adultCount := uint64(node.CountAdults(agePolicy(p), s.Nodes()))
		wouldNeedMerge = adultCount-1 < p.GroupSize
	}
	if isRoot || wouldNeedMerge {
		delete(s.outRelocations, r.NodeName)
		return nil
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(target))
	newTarget := chain.HashAsName(chain.Hash(buf[:]))

	s.outRelocations[r.NodeName] = newTarget
	return []Response{ResponseRouteByName{
		Name:    newTarget,
		Request: RequestRelocateRequest{Src: s.prefix, Target: newTarget, NodeName: r.NodeName},
	}}
}

// handleRelocateCommit admits a relocating node under a freshly chosen
// name, biased toward whichever of this section's two hypothetical child
// prefixes currently holds fewer adults.
func (s *Section) handleRelocateCommit(p params.Params, rng *rand.Rand, r RequestRelocateCommit) []Response {
	delete(s.inRelocations, r.Node.Name)

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
	dst := p0
	if adults1 < adults0 {
		dst = p1
	}

	relocated := r.Node
	relocated.Name = dst.SubstitutedIn(prefix.Name(rng.Uint64()))

	s.relocatedInThisTick = true
	return s.admitLive(p, rng, relocated, false)
}

// handleRelocateCancel releases an inbound relocation reservation the
// sender gave up on.
func (s *Section) handleRelocateCancel(r RequestRelocateCancel) []Response {
	delete(s.inRelocations, r.NodeName)
	return nil
}
