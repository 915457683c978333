package section

import (
	"sort"

	"github.com/dsprotocol/agesim/chain"
	"github.com/dsprotocol/agesim/node"
	"github.com/dsprotocol/agesim/params"
	"github.com/dsprotocol/agesim/prefix"
)

// recomputeElders selects the group_size oldest adult members (ties broken
// by name ascending) as the new elder set, and diffs it against the current
// one: newly-demoted names get a Gone block appended to the chain, newly-
// promoted names get a Live block, in ascending-name order so a round with
// more than one promotion/demotion (e.g. right after a Merge) still inserts
// blocks in a seed-determined order rather than map-iteration order. It is
// idempotent — calling it twice in a row with no membership or age change
// produces no diff and appends nothing.
func recomputeElders(s *Section, p params.Params) {
	pol := agePolicy(p)

	adults := make([]node.Node, 0, len(s.members))
	for _, n := range s.members {
		if n.IsAdult(pol) {
			adults = append(adults, n)
		}
	}
	sort.Slice(adults, func(i, j int) bool {
		if adults[i].Age != adults[j].Age {
			return adults[i].Age > adults[j].Age // oldest first
		}
		return adults[i].Name < adults[j].Name // ties by name ascending
	})

	newElders := make(map[prefix.Name]bool, p.GroupSize)
	for i := 0; i < len(adults) && uint64(i) < p.GroupSize; i++ {
		newElders[adults[i].Name] = true
	}

	for _, name := range s.sortedNames() {
		n := s.members[name]
		wasElder, isElder := n.Elder, newElders[name]
		if wasElder == isElder {
			continue
		}
		if isElder {
			n.Elder = true
			s.chain.Insert(chain.Block{Event: chain.Live, Name: name, Age: n.Age})
		} else {
			n.Elder = false
			s.chain.Insert(chain.Block{Event: chain.Gone, Name: name, Age: n.Age})
		}
		s.members[name] = n
	}
}
