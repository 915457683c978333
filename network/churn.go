package network

import (
	"github.com/dsprotocol/agesim/node"
	"github.com/dsprotocol/agesim/prefix"
	"github.com/dsprotocol/agesim/section"
)

// injectChurn resets every section's per-tick bookkeeping and then, for
// each section independently, injects one random join and one random drop
// in a coin-flipped order. Doing this per section (rather than picking one
// random event network-wide per tick, as an older churn model would) keeps
// churn pressure roughly uniform across partitions regardless of how many
// sections currently exist.
func (n *Network) injectChurn() {
	for _, p := range n.order {
		s := n.sections[p]
		s.ResetTickFlags()

		if n.rng.Intn(2) == 0 {
			n.injectJoin(s)
			n.injectDrop(s)
		} else {
			n.injectDrop(s)
			n.injectJoin(s)
		}
	}
}

// injectJoin delivers a single Live request for a freshly-minted node under
// s's prefix, at the configured initial age.
func (n *Network) injectJoin(s *section.Section) {
	name := s.Prefix().SubstitutedIn(prefix.Name(n.rng.Uint64()))
	s.Receive(section.RequestLive{Node: node.New(name, n.params.InitAge)})
	n.totalJoins++
}

// injectDrop delivers a single Dead request for one member of s, chosen by
// walking members youngest-first and stopping at the first whose
// age-weighted coin flip succeeds. Older nodes are steadily less likely to
// be hit, matching DropProbability's 2^(-age) falloff; if every flip fails,
// no drop is injected this tick. Since no member's flip succeeds with
// probability above 2^(-init_age), that is a common outcome, not a rare one.
func (n *Network) injectDrop(s *section.Section) {
	for _, m := range node.ByAge(s.Nodes()) {
		if n.rng.Float64() < m.DropProbability() {
			s.Receive(section.RequestDead{Name: m.Name})
			n.totalDrops++
			return
		}
	}
}
