// Package section implements the per-section protocol state machine: the
// membership, elder set, and the split/merge/relocation decision rules that
// run inside one prefix-addressed partition of the network.
package section

import (
	"fmt"
	"sort"

	"github.com/dsprotocol/agesim/chain"
	"github.com/dsprotocol/agesim/node"
	"github.com/dsprotocol/agesim/params"
	"github.com/dsprotocol/agesim/prefix"
)

// State is the section's current structural phase.
type State uint8

const (
	// Stable sections apply requests locally.
	Stable State = iota
	// Splitting sections forward Live requests to whichever child their
	// name matches, until the network installs the two children.
	Splitting
	// Merging sections forward everything to their merge parent.
	Merging
)

func (s State) String() string {
	switch s {
	case Stable:
		return "stable"
	case Splitting:
		return "splitting"
	case Merging:
		return "merging"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Section is the per-partition protocol state machine: it owns its members,
// its elder set (tracked via each node's Elder flag), its chain, and any
// relocation/request state in flight. The network is the only thing that
// mutates the partition map; a Section only ever mutates itself and returns
// Responses describing what else should happen.
type Section struct {
	prefix prefix.Prefix
	state  State
	parent prefix.Prefix // valid (and meaningful) only when state == Merging

	members map[prefix.Name]node.Node
	chain   *chain.Chain

	pending []Request

	inRelocations  map[prefix.Name]prefix.Name // incoming node name -> target name
	outRelocations map[prefix.Name]prefix.Name // outgoing node name -> target name

	joinedThisTick      bool
	droppedThisTick     bool
	relocatedInThisTick bool
}

// New returns an empty, Stable section for the given prefix.
func New(p prefix.Prefix) *Section {
	return &Section{
		prefix:         p,
		state:          Stable,
		members:        make(map[prefix.Name]node.Node),
		chain:          chain.New(),
		inRelocations:  make(map[prefix.Name]prefix.Name),
		outRelocations: make(map[prefix.Name]prefix.Name),
	}
}

// Prefix returns the section's address.
func (s *Section) Prefix() prefix.Prefix { return s.prefix }

// State returns the section's current structural phase.
func (s *Section) State() State { return s.state }

// Chain exposes the section's chain, mainly so the network can persist it
// or compute cross-section statistics.
func (s *Section) Chain() *chain.Chain { return s.chain }

// sortedNames returns the names of every member, in ascending numeric
// order. Recomputed on demand rather than maintained incrementally: section
// sizes are small and bounded by max_section_size, and recomputing here
// keeps every other method free of incremental-index bookkeeping.
func (s *Section) sortedNames() []prefix.Name {
	names := make([]prefix.Name, 0, len(s.members))
	for n := range s.members {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Nodes returns every member, ordered by ascending name.
func (s *Section) Nodes() []node.Node {
	names := s.sortedNames()
	out := make([]node.Node, len(names))
	for i, n := range names {
		out[i] = s.members[n]
	}
	return out
}

// Len returns the current member count.
func (s *Section) Len() int { return len(s.members) }

// IsComplete reports whether the section has reached group_size adults.
func (s *Section) IsComplete(p params.Params) bool {
	return uint64(node.CountAdults(agePolicy(p), s.Nodes())) >= p.GroupSize
}

// ElderCount returns how many members currently carry the elder flag.
func (s *Section) ElderCount() int {
	count := 0
	for _, n := range s.members {
		if n.Elder {
			count++
		}
	}
	return count
}

// Receive enqueues a request for the next HandleRequests call.
func (s *Section) Receive(r Request) {
	s.pending = append(s.pending, r)
}

func agePolicy(p params.Params) node.AgePolicy {
	return node.AgePolicy{AdultAge: p.AdultAge}
}

// invariantViolation panics with the given message and context, per the
// spec's error-handling design: protocol invariant violations are
// programmer errors that must fail fast with full context.
func invariantViolation(format string, args ...interface{}) {
	panic("section: invariant violation: " + fmt.Sprintf(format, args...))
}

func (s *Section) addNode(n node.Node) {
	if !s.prefix.Matches(n.Name) {
		invariantViolation("member %x does not match section prefix %s", uint64(n.Name), s.prefix)
	}
	s.members[n.Name] = n
}

func (s *Section) dropNode(name prefix.Name) (node.Node, bool) {
	n, ok := s.members[name]
	if ok {
		delete(s.members, name)
	}
	return n, ok
}

// resetRelocationCaches clears in-flight relocation bookkeeping. Called
// when the section enters a terminal structural transition (its own split
// or merge), per the "no in-flight caches at quiescence" invariant.
func (s *Section) resetRelocationCaches() {
	s.inRelocations = make(map[prefix.Name]prefix.Name)
	s.outRelocations = make(map[prefix.Name]prefix.Name)
}

// ResetTickFlags clears the per-tick bookkeeping flags. Called by the
// network at the start of each tick's injection phase, before any Live or
// Dead requests for that tick are delivered.
func (s *Section) ResetTickFlags() {
	s.joinedThisTick = false
	s.droppedThisTick = false
	s.relocatedInThisTick = false
}
