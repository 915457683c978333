package section

import (
	"math/rand"

	"github.com/dsprotocol/agesim/node"
	"github.com/dsprotocol/agesim/params"
	"github.com/dsprotocol/agesim/prefix"
)

// HandleRequests drains every request queued since the last call and
// applies the protocol rules, returning the outbound Responses for the
// network dispatcher to apply. rng is the network's single scoped
// generator, threaded in explicitly since the only place a section needs
// randomness is picking a relocated node's new name.
func (s *Section) HandleRequests(p params.Params, rng *rand.Rand) []Response {
	batch := s.pending
	s.pending = nil

	var responses []Response
	for _, req := range batch {
		responses = append(responses, s.handleOne(p, rng, req)...)
	}
	return responses
}

func (s *Section) handleOne(p params.Params, rng *rand.Rand, req Request) []Response {
	if m, ok := req.(RequestMerge); ok {
		return s.handleMerge(p, m.Parent)
	}

	switch s.state {
	case Splitting:
		return s.forwardToChild(req)
	case Merging:
		return []Response{ResponseSend{Prefix: s.parent, Request: req}}
	}

	switch r := req.(type) {
	case RequestLive:
		return s.handleLive(p, rng, r.Node)
	case RequestDead:
		return s.handleDead(p, r.Name)
	case RequestRelocateRequest:
		return s.handleRelocateRequest(p, r)
	case RequestRelocateAccept:
		return s.handleRelocateAccept(p, r)
	case RequestRelocateReject:
		return s.handleRelocateReject(p, r)
	case RequestRelocateCommit:
		return s.handleRelocateCommit(p, rng, r)
	case RequestRelocateCancel:
		return s.handleRelocateCancel(r)
	default:
		invariantViolation("unhandled request type %T", req)
		return nil
	}
}

// subjectName returns the name a request is "about" — the node whose
// matching child prefix determines where the request should be forwarded
// while a split is in flight.
func subjectName(req Request) (prefix.Name, bool) {
	switch r := req.(type) {
	case RequestLive:
		return r.Node.Name, true
	case RequestDead:
		return r.Name, true
	case RequestRelocateRequest:
		return r.NodeName, true
	case RequestRelocateAccept:
		return r.NodeName, true
	case RequestRelocateReject:
		return r.NodeName, true
	case RequestRelocateCommit:
		return r.Node.Name, true
	case RequestRelocateCancel:
		return r.NodeName, true
	default:
		return 0, false
	}
}

// forwardToChild routes req to whichever of this splitting section's two
// child sub-prefixes matches its subject name. A node cannot be handled
// locally while a structural change is in flight.
func (s *Section) forwardToChild(req Request) []Response {
	name, ok := subjectName(req)
	if !ok {
		invariantViolation("cannot forward request of type %T while splitting", req)
	}
	p0, p1 := s.prefix.Extend(0), s.prefix.Extend(1)
	switch {
	case p0.Matches(name):
		return []Response{ResponseSend{Prefix: p0, Request: req}}
	case p1.Matches(name):
		return []Response{ResponseSend{Prefix: p1, Request: req}}
	default:
		invariantViolation("name %x matches neither child of %s", uint64(name), s.prefix)
		return nil
	}
}

// handleLive handles a node's attempt to join while Stable.
func (s *Section) handleLive(p params.Params, rng *rand.Rand, n node.Node) []Response {
	return s.admitLive(p, rng, n, true)
}

// admitLive runs the common admission sequence (infant-cap check, add,
// recompute elders, attempt split, attempt relocation) shared by a fresh
// join and a relocation commit. bootstrap applies the root's admit-at-
// adult-age rule; relocation commits pass false since their node's age was
// already incremented by the sending section and must be preserved.
func (s *Section) admitLive(p params.Params, rng *rand.Rand, n node.Node, bootstrap bool) []Response {
	pol := agePolicy(p)

	if bootstrap && s.prefix.Len == 0 {
		n.Age = p.AdultAge
	} else if n.IsInfant(pol) && node.CountInfants(pol, s.Nodes()) >= p.MaxInfantsPerSection {
		return []Response{ResponseReject{Node: n}}
	}

	s.addNode(n)
	s.joinedThisTick = true
	recomputeElders(s, p)

	if resp, ok := s.trySplit(p); ok {
		return []Response{resp}
	}
	if n.IsAdult(pol) {
		return s.tryRelocate(p)
	}
	return nil
}

// handleDead handles a node's departure (random drop, never relocation —
// relocation departures are handled entirely within handleRelocateAccept).
func (s *Section) handleDead(p params.Params, name prefix.Name) []Response {
	n, existed := s.dropNode(name)
	if !existed {
		return nil
	}
	s.droppedThisTick = true
	recomputeElders(s, p)

	var responses []Response
	if target, hadOut := s.outRelocations[name]; hadOut {
		delete(s.outRelocations, name)
		responses = append(responses, ResponseRouteByName{
			Name:    target,
			Request: RequestRelocateCancel{NodeName: name, Target: target},
		})
	}

	if merge := s.tryMerge(p); len(merge) > 0 {
		return append(responses, merge...)
	}
	if n.IsAdult(agePolicy(p)) {
		responses = append(responses, s.tryRelocate(p)...)
	}
	return responses
}
