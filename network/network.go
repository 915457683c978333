// Package network implements the dispatcher that owns the partition map and
// drives one simulation tick: it injects churn into every section, then
// repeatedly collects each section's Responses and applies them until no
// section has anything left to emit.
package network

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/dsprotocol/agesim/chain"
	"github.com/dsprotocol/agesim/internal/prng"
	"github.com/dsprotocol/agesim/params"
	"github.com/dsprotocol/agesim/prefix"
	"github.com/dsprotocol/agesim/section"
)

// maxQuiescenceRounds bounds the protocol phase's collect-and-apply loop. A
// correctly-implemented protocol reaches quiescence in a handful of rounds
// per tick (split/merge/relocation handshakes are a handful of hops); a
// round count anywhere near this bound means two sections are bouncing
// requests at each other forever, which is a programmer error, not a slow
// network.
const maxQuiescenceRounds = 10000

// Network is the sole mutator of the prefix -> section partition map. A
// Section only ever mutates its own membership and returns Responses
// describing everything else that needs to happen.
type Network struct {
	params params.Params
	rng    *rand.Rand

	sections map[prefix.Prefix]*section.Section
	order    []prefix.Prefix // sorted, rebuilt whenever the partition map's key set changes

	store chain.Store // optional audit log; nil unless AttachStore was called

	stats *Stats

	totalJoins uint64
	totalDrops uint64

	tickMerges      uint64
	tickSplits      uint64
	tickRelocations uint64
	tickRejections  uint64
}

// New returns a fresh network holding a single empty-prefix section and
// seeded from p's PRNG seed.
func New(p params.Params) *Network {
	n := &Network{
		params:   p,
		rng:      prng.New64(p.Seed),
		sections: make(map[prefix.Prefix]*section.Section),
		stats:    newStats(),
	}
	n.sections[prefix.Empty] = section.New(prefix.Empty)
	n.rebuildOrder()
	return n
}

// prefixLess orders prefixes by bit pattern first, then by length. Any total
// order works for determinism; this one is what every "iterate all
// sections" loop here (injection, quiescence collection, distributions)
// walks in.
func prefixLess(a, b prefix.Prefix) bool {
	if a.Bits != b.Bits {
		return a.Bits < b.Bits
	}
	return a.Len < b.Len
}

func (n *Network) rebuildOrder() {
	order := make([]prefix.Prefix, 0, len(n.sections))
	for p := range n.sections {
		order = append(order, p)
	}
	sort.Slice(order, func(i, j int) bool { return prefixLess(order[i], order[j]) })
	n.order = order
}

// invariantViolation panics with the given message: a protocol or
// bookkeeping invariant was broken, which is a programmer error rather than
// a recoverable runtime condition.
func invariantViolation(format string, args ...interface{}) {
	panic("network: invariant violation: " + fmt.Sprintf(format, args...))
}

// AttachStore wires a persisted audit log onto the network: every section
// currently installed, and every section installed from this point on by a
// split or merge, has its chain's blocks additionally appended to store.
func (n *Network) AttachStore(store chain.Store) {
	n.store = store
	for p, s := range n.sections {
		s.Chain().AttachStore(store, p)
	}
}

// NumSections returns the current number of partitions.
func (n *Network) NumSections() int { return len(n.sections) }

// NumNodes returns the total member count across every section.
func (n *Network) NumNodes() int {
	total := 0
	for _, s := range n.sections {
		total += s.Len()
	}
	return total
}

// Tick runs one full simulation round: inject churn, drive the protocol to
// quiescence, record a stats sample, and check the post-quiescence safety
// invariant. It returns false if the safety check fails, signalling that the
// simulation should stop (this is a defect, not an expected outcome).
func (n *Network) Tick(iteration int) bool {
	n.tickMerges, n.tickSplits, n.tickRelocations, n.tickRejections = 0, 0, 0, 0

	n.injectChurn()
	n.runToQuiescence()

	n.stats.record(iteration, n.NumNodes(), n.NumSections(), n.tickMerges, n.tickSplits, n.tickRelocations, n.tickRejections)

	return n.checkSafety()
}

// checkSafety reports whether every section currently respects
// max_section_size. A violation here means the protocol admitted more
// members than it should have — a correctness bug, surfaced to the caller
// rather than panicking, since the driver may want to dump state first.
func (n *Network) checkSafety() bool {
	for _, p := range n.order {
		if uint64(n.sections[p].Len()) > n.params.MaxSectionSize {
			return false
		}
	}
	return true
}

// runToQuiescence repeatedly collects every section's pending responses and
// applies them, until a full round produces nothing.
func (n *Network) runToQuiescence() {
	for round := 0; round < maxQuiescenceRounds; round++ {
		var responses []section.Response
		for _, p := range n.order {
			responses = append(responses, n.sections[p].HandleRequests(n.params, n.rng)...)
		}
		if len(responses) == 0 {
			return
		}
		for _, r := range responses {
			n.apply(r)
		}
	}
	invariantViolation("protocol phase did not reach quiescence within %d rounds", maxQuiescenceRounds)
}

// apply dispatches a single Response, mutating the partition map or routing
// a follow-up Request as needed.
func (n *Network) apply(r section.Response) {
	switch resp := r.(type) {
	case section.ResponseSplit:
		n.applySplit(resp)
	case section.ResponseMerge:
		n.applyMerge(resp)
	case section.ResponseReject:
		n.tickRejections++
	case section.ResponseSend:
		n.applySend(resp)
	case section.ResponseRouteByName:
		n.applyRouteByName(resp)
	default:
		invariantViolation("unhandled response type %T", r)
	}
}

func (n *Network) applySplit(resp section.ResponseSplit) {
	if _, collide := n.sections[resp.S0.Prefix()]; collide {
		invariantViolation("split produced colliding prefix %s", resp.S0.Prefix())
	}
	if _, collide := n.sections[resp.S1.Prefix()]; collide {
		invariantViolation("split produced colliding prefix %s", resp.S1.Prefix())
	}
	n.sections[resp.S0.Prefix()] = resp.S0
	n.sections[resp.S1.Prefix()] = resp.S1
	delete(n.sections, resp.OldPrefix)
	n.rebuildOrder()
	n.tickSplits++

	if n.store != nil {
		resp.S0.Chain().AttachStore(n.store, resp.S0.Prefix())
		resp.S1.Chain().AttachStore(n.store, resp.S1.Prefix())
	}
}

// applyMerge installs resp.Section as the replacement for resp.OldPrefix. If
// a section is already installed at resp.Section's prefix (the sibling got
// there first), the two are unioned via Section.Merge and the merge is
// counted once — counting happens here, on the union, not on the first
// sibling's placeholder install, so two incoming ResponseMerge for the same
// pair of siblings record exactly one merge event.
func (n *Network) applyMerge(resp section.ResponseMerge) {
	if existing, ok := n.sections[resp.Section.Prefix()]; ok {
		existing.Merge(resp.Section, n.params)
		n.tickMerges++
	} else {
		n.sections[resp.Section.Prefix()] = resp.Section
		if n.store != nil {
			resp.Section.Chain().AttachStore(n.store, resp.Section.Prefix())
		}
	}
	delete(n.sections, resp.OldPrefix)
	n.rebuildOrder()
}

// applySend delivers resp.Request to the section at resp.Prefix. A Merge
// request is special: its target prefix may already have been removed from
// the map by the time it arrives (the sibling that should absorb it hasn't
// split/merged there yet, or already has), so it is instead delivered to
// every section at or below resp.Prefix, and matching no section at all is
// not an error. Any other request arriving at a prefix with no section is a
// protocol violation — the sender believed that section still existed.
func (n *Network) applySend(resp section.ResponseSend) {
	if _, ok := resp.Request.(section.RequestMerge); ok {
		for _, p := range n.order {
			if resp.Prefix.IsAncestor(p) {
				n.sections[p].Receive(resp.Request)
			}
		}
		return
	}

	s, ok := n.sections[resp.Prefix]
	if !ok {
		invariantViolation("send targeted missing section %s", resp.Prefix)
	}
	s.Receive(resp.Request)
}

// applyRouteByName finds whichever section currently owns resp.Name and
// delivers resp.Request there.
func (n *Network) applyRouteByName(resp section.ResponseRouteByName) {
	n.countRelocationInitiation(resp.Request)

	for _, p := range n.order {
		if p.Matches(resp.Name) {
			n.sections[p].Receive(resp.Request)
			return
		}
	}
	invariantViolation("name %x matched no section", uint64(resp.Name))
}

// countRelocationInitiation records a relocation attempt the first time its
// request is routed — mirroring how the original simulator counted a
// relocation when it decided to move a node, not only once the destination
// section finally commits it.
func (n *Network) countRelocationInitiation(req section.Request) {
	if _, ok := req.(section.RequestRelocateRequest); ok {
		n.tickRelocations++
	}
}

// AgeDistribution returns the distribution of member ages across the whole
// network.
func (n *Network) AgeDistribution() Distribution {
	var ages []uint64
	for _, p := range n.order {
		for _, nd := range n.sections[p].Nodes() {
			ages = append(ages, nd.Age)
		}
	}
	return newDistribution(ages)
}

// SectionSizeDistribution returns the distribution of member counts across
// every section.
func (n *Network) SectionSizeDistribution() Distribution {
	sizes := make([]uint64, 0, len(n.order))
	for _, p := range n.order {
		sizes = append(sizes, uint64(n.sections[p].Len()))
	}
	return newDistribution(sizes)
}

// PrefixLengthDistribution returns the distribution of section prefix
// lengths across the network.
func (n *Network) PrefixLengthDistribution() Distribution {
	lens := make([]uint64, 0, len(n.order))
	for _, p := range n.order {
		lens = append(lens, uint64(p.Len))
	}
	return newDistribution(lens)
}

// Stats returns the network's accumulated sample history.
func (n *Network) Stats() *Stats { return n.stats }

// TotalJoins returns how many Live requests have been injected so far,
// regardless of whether they were ultimately accepted.
func (n *Network) TotalJoins() uint64 { return n.totalJoins }

// TotalDrops returns how many Dead requests have been injected so far.
func (n *Network) TotalDrops() uint64 { return n.totalDrops }
