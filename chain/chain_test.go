package chain

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/sha3"

	"github.com/dsprotocol/agesim/prefix"
)

func TestBlockMarshalBitExact(t *testing.T) {
	b := Block{Event: Live, Name: prefix.Name(0x0102030405060708), Age: 5}
	want := []byte{0x00, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x05, 0, 0, 0, 0, 0, 0, 0}
	if got := b.Marshal(); !bytes.Equal(got, want) {
		t.Fatalf("unexpected marshal: got=%x want=%x", got, want)
	}
}

func TestBlockHashStability(t *testing.T) {
	b := Block{Event: Live, Name: prefix.Name(0x0102030405060708), Age: 5}
	want := sha3.Sum256(b.Marshal())
	if got := b.Hash(); got != want {
		t.Fatalf("unexpected hash: got=%x want=%x", got, want)
	}
}

func TestChainRelocationHashAbsentByDefault(t *testing.T) {
	c := New()
	if _, err := c.RelocationHash(); err != ErrNoLiveBlock {
		t.Fatalf("expected ErrNoLiveBlock, got %v", err)
	}
}

func TestChainInsertLiveUpdatesRelocationHash(t *testing.T) {
	c := New()
	c.Insert(Block{Event: Dead, Name: 1, Age: 1}) // discarded
	if _, err := c.RelocationHash(); err != ErrNoLiveBlock {
		t.Fatal("dead block should not produce a relocation hash")
	}

	live := Block{Event: Live, Name: 1, Age: 5}
	c.Insert(live)
	got, err := c.RelocationHash()
	if err != nil {
		t.Fatal(err)
	}
	if got != live.Hash() {
		t.Fatal("relocation hash should be the hash of the last live block")
	}

	// A later live block replaces it.
	live2 := Block{Event: Live, Name: 2, Age: 6}
	c.Insert(live2)
	got, err = c.RelocationHash()
	if err != nil {
		t.Fatal(err)
	}
	if got != live2.Hash() {
		t.Fatal("relocation hash should reflect the newest live block")
	}
}

func TestChainCloneIsIndependent(t *testing.T) {
	c := New()
	c.Insert(Block{Event: Live, Name: 1, Age: 5})
	clone := c.Clone()

	c.Insert(Block{Event: Live, Name: 2, Age: 6})
	h1, _ := c.RelocationHash()
	h2, _ := clone.RelocationHash()
	if h1 == h2 {
		t.Fatal("clone should not observe inserts made after cloning")
	}
}

func TestChainExtendKeepsNewer(t *testing.T) {
	a := New()
	a.Insert(Block{Event: Live, Name: 1, Age: 5})

	b := New()
	b.Insert(Block{Event: Live, Name: 2, Age: 5})
	b.Insert(Block{Event: Live, Name: 3, Age: 5})

	a.Extend(b)
	got, _ := a.RelocationHash()
	want := Block{Event: Live, Name: 3, Age: 5}.Hash()
	if got != want {
		t.Fatal("extend should keep the side with the later insertion sequence")
	}
}

func TestRehashIterates(t *testing.T) {
	h := sha3.Sum256([]byte("seed"))
	h2 := Rehash(h)
	if h == h2 {
		t.Fatal("rehash should change the digest")
	}
	if Rehash(h) != h2 {
		t.Fatal("rehash should be deterministic")
	}
}

func TestTrailingZeroBitsAllZero(t *testing.T) {
	var h [32]byte
	if got := TrailingZeroBits(h); got != 256 {
		t.Fatalf("all-zero hash should report 256 trailing zero bits, got %d", got)
	}
}

func TestTrailingZeroBitsLastByte(t *testing.T) {
	var h [32]byte
	h[31] = 0b00000100 // bit 2 set
	if got := TrailingZeroBits(h); got != 2 {
		t.Fatalf("expected 2 trailing zero bits, got %d", got)
	}
}

func TestHashAsNameReadsFirstEightBytesBigEndian(t *testing.T) {
	var h [32]byte
	copy(h[:8], []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
	if got := HashAsName(h); got != prefix.Name(0x0102030405060708) {
		t.Fatalf("unexpected name: %x", got)
	}
}

type recordingStore struct {
	appends []Block
}

func (r *recordingStore) Append(p prefix.Prefix, seq uint64, b Block) error {
	r.appends = append(r.appends, b)
	return nil
}
func (r *recordingStore) Close() error { return nil }

func TestAttachStoreForwardsEveryBlockKind(t *testing.T) {
	c := New()
	store := &recordingStore{}
	c.AttachStore(store, prefix.Empty)

	c.Insert(Block{Event: Live, Name: 1, Age: 5})
	c.Insert(Block{Event: Gone, Name: 1, Age: 5})
	c.Insert(Block{Event: Dead, Name: 2, Age: 6})

	if len(store.appends) != 3 {
		t.Fatalf("expected every inserted block to reach the store, got %d", len(store.appends))
	}
	if store.appends[1].Event != Gone {
		t.Fatalf("expected the second appended block to be the Gone block")
	}
}

func TestChainWithNoAttachedStoreNeverPanics(t *testing.T) {
	c := New()
	c.Insert(Block{Event: Dead, Name: 1, Age: 1})
}
