package prng

import "testing"

func TestDeterministicReplay(t *testing.T) {
	seed := [4]uint32{1, 2, 3, 4}
	a := New64(seed)
	b := New64(seed)

	for i := 0; i < 1000; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("divergence at step %d: %d != %d", i, x, y)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New64([4]uint32{1, 2, 3, 4})
	b := New64([4]uint32{5, 6, 7, 8})

	same := true
	for i := 0; i < 32; i++ {
		if a.Uint64() != b.Uint64() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds should not produce the same sequence")
	}
}

func TestAllZeroSeedIsRemapped(t *testing.T) {
	s := New([4]uint32{0, 0, 0, 0})
	if s.x == 0 && s.y == 0 && s.z == 0 && s.w == 0 {
		t.Fatal("all-zero seed should be remapped to a non-zero state")
	}
	// Should still produce a non-degenerate sequence.
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		seen[s.Uint64()] = true
	}
	if len(seen) < 90 {
		t.Fatalf("expected mostly-distinct outputs, got %d distinct of 100", len(seen))
	}
}
