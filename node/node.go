// Package node implements the per-node identity and age/drop-probability
// policy used by a section: a node is a name, an age, and an elder flag.
package node

import (
	"math"
	"sort"

	"github.com/dsprotocol/agesim/prefix"
)

// AgePolicy is the subset of params.Params that node-level decisions depend
// on. Kept narrow so this package never imports the params package (which
// would create an import cycle once params grows to reference relocation
// strategy types that live closer to section).
type AgePolicy struct {
	AdultAge uint64
}

// Node is a single member of a section: an address, an age, and whether it
// currently sits in the section's elder set.
type Node struct {
	Name  prefix.Name
	Age   uint64
	Elder bool
}

// New returns a freshly-joined, non-elder node with the given name and age.
func New(name prefix.Name, age uint64) Node {
	return Node{Name: name, Age: age}
}

// IsInfant reports whether n is below the adult age threshold.
func (n Node) IsInfant(p AgePolicy) bool {
	return n.Age < p.AdultAge
}

// IsAdult reports whether n has reached the adult age threshold.
func (n Node) IsAdult(p AgePolicy) bool {
	return !n.IsInfant(p)
}

// IncrementAge increases n's age by one, saturating at the maximum uint64
// value instead of wrapping.
func (n *Node) IncrementAge() {
	if n.Age != math.MaxUint64 {
		n.Age++
	}
}

// DropProbability returns the probability that n should be dropped during
// biased churn selection: 2^(-age), strictly decreasing in age so older
// nodes are steadily less likely to be picked.
func (n Node) DropProbability() float64 {
	return math.Exp2(-float64(n.Age))
}

// CountAdults returns how many of nodes are adults.
func CountAdults(p AgePolicy, nodes []Node) int {
	count := 0
	for _, n := range nodes {
		if n.IsAdult(p) {
			count++
		}
	}
	return count
}

// CountInfants returns how many of nodes are infants.
func CountInfants(p AgePolicy, nodes []Node) int {
	count := 0
	for _, n := range nodes {
		if n.IsInfant(p) {
			count++
		}
	}
	return count
}

// ByAge sorts a copy of nodes from youngest to oldest, breaking ties by name
// ascending, and returns it.
func ByAge(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Age != out[j].Age {
			return out[i].Age < out[j].Age
		}
		return out[i].Name < out[j].Name
	})
	return out
}
