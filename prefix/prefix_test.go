package prefix

import "testing"

func TestExtendShorten(t *testing.T) {
	p := Empty
	for i, bit := range []uint8{1, 0, 1, 1} {
		p = p.Extend(bit)
		if int(p.Len) != i+1 {
			t.Fatalf("unexpected length after extend: got=%d want=%d", p.Len, i+1)
		}
	}
	if got := p.String(); got != "1011" {
		t.Fatalf("unexpected string: %q", got)
	}

	for p.Len > 0 {
		before := p
		p = p.Shorten()
		if p.Len != before.Len-1 {
			t.Fatalf("shorten did not reduce length: %v -> %v", before, p)
		}
	}
	if p != Empty {
		t.Fatalf("expected empty prefix, got %v", p)
	}
}

func TestShortenExtendRoundTrip(t *testing.T) {
	for _, bit := range []uint8{0, 1} {
		p, err := ParseString("10110")
		if err != nil {
			t.Fatal(err)
		}
		if got := p.Extend(bit).Shorten(); got != p {
			t.Fatalf("shorten(extend(p, %d)) != p: got=%v want=%v", bit, got, p)
		}
	}
}

func TestMatchesSubstitutedIn(t *testing.T) {
	p, err := ParseString("101")
	if err != nil {
		t.Fatal(err)
	}
	n := Name(0xABCDEF0123456789)
	sub := p.SubstitutedIn(n)
	if !p.Matches(sub) {
		t.Fatalf("matches(p, substituted_in(p, n)) should be true")
	}
}

func TestEmptyMatchesEverything(t *testing.T) {
	for _, n := range []Name{0, 1, ^Name(0), 0xDEADBEEF} {
		if !Empty.Matches(n) {
			t.Fatalf("empty prefix should match %x", n)
		}
	}
}

func TestSiblingIdentityAtEmpty(t *testing.T) {
	if Empty.Sibling() != Empty {
		t.Fatal("sibling of empty prefix should be itself")
	}
}

func TestIsAncestor(t *testing.T) {
	root, _ := ParseString("10")
	child, _ := ParseString("1011")
	if !root.IsAncestor(child) {
		t.Fatal("10 should be an ancestor of 1011")
	}
	if child.IsAncestor(root) {
		t.Fatal("1011 should not be an ancestor of 10")
	}
}

func TestIsSiblingAndNeighbour(t *testing.T) {
	a, _ := ParseString("110")
	b, _ := ParseString("111")
	if !a.IsSibling(b) {
		t.Fatal("110 and 111 should be siblings")
	}
	if !a.IsNeighbour(b) {
		t.Fatal("siblings should be neighbours")
	}

	c, _ := ParseString("101")
	if a.IsSibling(c) {
		t.Fatal("110 and 101 should not be siblings")
	}
}

func TestIsCompatible(t *testing.T) {
	a, _ := ParseString("1")
	b, _ := ParseString("10")
	if !a.IsCompatible(b) || !b.IsCompatible(a) {
		t.Fatal("1 and 10 should be compatible in either direction")
	}

	c, _ := ParseString("01")
	if a.IsCompatible(c) {
		t.Fatal("1 and 01 should not be compatible")
	}
}

func TestParseStringRejectsInvalid(t *testing.T) {
	if _, err := ParseString("102"); err == nil {
		t.Fatal("expected error for non-binary character")
	}
}

func TestExtendPastSixtyFourPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic extending a full-length prefix")
		}
	}()
	p := Prefix{Bits: 0, Len: 64}
	p.Extend(0)
}
