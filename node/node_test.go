package node

import (
	"math"
	"testing"
)

var policy = AgePolicy{AdultAge: 5}

func TestInfantAdult(t *testing.T) {
	n := New(1, 4)
	if !n.IsInfant(policy) || n.IsAdult(policy) {
		t.Fatal("age 4 node should be an infant under adult_age=5")
	}
	n.Age = 5
	if n.IsInfant(policy) || !n.IsAdult(policy) {
		t.Fatal("age 5 node should be an adult under adult_age=5")
	}
}

func TestIncrementAgeSaturates(t *testing.T) {
	n := New(1, math.MaxUint64)
	n.IncrementAge()
	if n.Age != math.MaxUint64 {
		t.Fatalf("age should saturate, got %d", n.Age)
	}
}

func TestDropProbabilityDecreasesWithAge(t *testing.T) {
	prev := New(1, 1).DropProbability()
	for age := uint64(2); age < 20; age++ {
		cur := New(1, age).DropProbability()
		if cur >= prev {
			t.Fatalf("drop probability should strictly decrease: age=%d prev=%v cur=%v", age, prev, cur)
		}
		prev = cur
	}
}

func TestByAgeOrdersByAgeThenName(t *testing.T) {
	nodes := []Node{
		New(5, 10),
		New(1, 10),
		New(9, 3),
	}
	sorted := ByAge(nodes)
	if sorted[0].Name != 9 || sorted[1].Name != 1 || sorted[2].Name != 5 {
		t.Fatalf("unexpected order: %+v", sorted)
	}
}

func TestCountAdultsInfants(t *testing.T) {
	nodes := []Node{New(1, 3), New(2, 10), New(3, 4)}
	if got := CountAdults(policy, nodes); got != 1 {
		t.Fatalf("expected 1 adult, got %d", got)
	}
	if got := CountInfants(policy, nodes); got != 2 {
		t.Fatalf("expected 2 infants, got %d", got)
	}
}
