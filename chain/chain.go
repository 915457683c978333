// Package chain implements the per-section append-only block log whose most
// recent Live block is the pseudo-random oracle driving relocation.
package chain

import (
	"encoding/binary"
	"errors"
	"log"

	"golang.org/x/crypto/sha3"

	"github.com/dsprotocol/agesim/prefix"
)

// Event is the kind of thing a Block records.
type Event uint8

const (
	// Live marks a node joining or being promoted to elder.
	Live Event = iota
	// Dead marks an elder leaving by relocation. A node dropped by churn
	// leaves no block.
	Dead
	// Gone marks a node demoted out of the elder set.
	Gone
)

// Block is one entry in a section's chain. Its wire form is bit-exact: one
// tag byte, the name as little-endian uint64, the age as little-endian
// uint64 — 17 bytes total — and its Hash is SHA3-256 of that encoding.
type Block struct {
	Event Event
	Name  prefix.Name
	Age   uint64
}

// Marshal returns the normative 17-byte encoding of b.
func (b Block) Marshal() []byte {
	out := make([]byte, 17)
	out[0] = byte(b.Event)
	binary.LittleEndian.PutUint64(out[1:9], uint64(b.Name))
	binary.LittleEndian.PutUint64(out[9:17], b.Age)
	return out
}

// Hash returns the SHA3-256 digest of b's marshaled form.
func (b Block) Hash() [32]byte {
	return sha3.Sum256(b.Marshal())
}

// Rehash iterates a relocation attempt: the digest of the previous digest.
func Rehash(h [32]byte) [32]byte {
	return sha3.Sum256(h[:])
}

// Hash returns the SHA3-256 digest of data. Exported so other packages
// needing a relocation-oracle-compatible digest (e.g. to fold in a
// rejecting section's address before rehashing) don't need their own
// import of the hash package.
func Hash(data []byte) [32]byte {
	return sha3.Sum256(data)
}

// HashAsName reads the first 8 bytes of h, big-endian, as a Name. This is
// the "target address" a relocation hash designates.
func HashAsName(h [32]byte) prefix.Name {
	return prefix.Name(binary.BigEndian.Uint64(h[:8]))
}

// TrailingZeroBits returns the number of trailing zero bits of h, read as a
// 256-bit big-endian integer (i.e. counting from the last byte backward).
// This is used to decide which ages are eligible for relocation this round:
// a node of age a is a candidate iff h mod 2^a == 0, which is equivalent to
// a <= TrailingZeroBits(h).
func TrailingZeroBits(h [32]byte) uint64 {
	var result uint64
	for i := len(h) - 1; i >= 0; i-- {
		b := h[i]
		if b == 0 {
			result += 8
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if b&(1<<bit) != 0 {
				return result + uint64(bit)
			}
		}
	}
	return result
}

// ErrNoLiveBlock is returned by RelocationHash when the chain has never
// recorded a Live block.
var ErrNoLiveBlock = errors.New("chain: no live block recorded yet")

// Chain keeps the most recently appended Live block. Older Dead/Gone blocks
// are not required for the core algorithm and are not retained in memory —
// see chain.Store for an optional, fully-retaining persisted log.
type Chain struct {
	lastLive   *Block
	lastLiveOK bool
	seq        uint64 // insertion sequence of lastLive, used to compare chains on merge.

	store       Store
	storePrefix prefix.Prefix
	appendSeq   uint64 // insertion sequence of every block ever handed to store, regardless of event kind.
}

// New returns an empty chain.
func New() *Chain {
	return &Chain{}
}

// AttachStore wires an audit log onto c: every block inserted from this
// point on (Live, Dead, and Gone alike) is additionally appended to store
// under the given section prefix. A chain with no attached store behaves
// exactly as before — this is purely additive.
func (c *Chain) AttachStore(store Store, p prefix.Prefix) {
	c.store = store
	c.storePrefix = p
}

// Insert appends a block. Live blocks replace the stored last-live block;
// Dead and Gone blocks don't affect the in-memory oracle state, but every
// block reaches the attached Store (if any), since that log exists
// precisely to retain what the in-memory chain discards.
func (c *Chain) Insert(b Block) {
	if b.Event == Live {
		cp := b
		c.lastLive = &cp
		c.lastLiveOK = true
		c.seq++
	}
	if c.store != nil {
		if err := c.store.Append(c.storePrefix, c.appendSeq, b); err != nil {
			log.Printf("chain: failed to append block to store: %v", err)
		}
		c.appendSeq++
	}
}

// Extend merges another chain into c, keeping whichever of the two holds
// the more recently inserted Live block (by insertion sequence number).
func (c *Chain) Extend(other *Chain) {
	if other.lastLiveOK && other.seq >= c.seq {
		c.lastLive = other.lastLive
		c.lastLiveOK = true
		c.seq = other.seq
	}
}

// Clone returns a chain carrying the same last-live block as c, suitable for
// handing to both children of a split.
func (c *Chain) Clone() *Chain {
	out := &Chain{lastLiveOK: c.lastLiveOK, seq: c.seq}
	if c.lastLiveOK {
		cp := *c.lastLive
		out.lastLive = &cp
	}
	return out
}

// RelocationHash returns the SHA3-256 hash of the stored last-live block. It
// returns ErrNoLiveBlock if no Live block has ever been recorded; the caller
// treats that as "no relocation possible yet" rather than an error.
func (c *Chain) RelocationHash() ([32]byte, error) {
	if !c.lastLiveOK {
		return [32]byte{}, ErrNoLiveBlock
	}
	return c.lastLive.Hash(), nil
}
