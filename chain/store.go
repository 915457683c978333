package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/dsprotocol/agesim/prefix"
)

// Store is an optional, fully-retaining audit log of every block ever
// appended to any section's chain, keyed by section prefix. Nothing in the
// core relocation algorithm reads from a Store — it exists purely to let an
// operator replay a run's full history after the fact, supplementing the
// in-memory Chain's "last Live block only" retention policy.
type Store interface {
	// Append records a block for the given section prefix at position seq
	// in that section's history.
	Append(p prefix.Prefix, seq uint64, b Block) error
	// Close releases any underlying resources.
	Close() error
}

// dup copies a byte slice so the batch map never aliases a Block's backing
// array past the call that produced it.
func dup(in []byte) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

// ldbStore implements Store over a LevelDB database: writes are batched in
// memory and flushed together rather than committed one key at a time, since
// a tick can append dozens of blocks across many sections.
type ldbStore struct {
	conn  *leveldb.DB
	batch map[string][]byte
}

// NewLevelDBStore opens (or creates) a LevelDB database at file to back a
// Store.
func NewLevelDBStore(file string) (Store, error) {
	conn, err := leveldb.OpenFile(file, nil)
	if errors.IsCorrupted(err) {
		conn, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &ldbStore{conn: conn, batch: make(map[string][]byte)}, nil
}

func blockKey(p prefix.Prefix, seq uint64) string {
	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], seq)
	return fmt.Sprintf("%s/%016x/%s", p.String(), p.Bits, string(seqBuf[:]))
}

func (s *ldbStore) Append(p prefix.Prefix, seq uint64, b Block) error {
	s.batch[blockKey(p, seq)] = dup(b.Marshal())
	if len(s.batch) < 256 {
		return nil
	}
	return s.flush()
}

func (s *ldbStore) flush() error {
	if len(s.batch) == 0 {
		return nil
	}
	batch := new(leveldb.Batch)
	for key, value := range s.batch {
		batch.Put([]byte(key), value)
	}
	if err := s.conn.Write(batch, nil); err != nil {
		return err
	}
	s.batch = make(map[string][]byte)
	return nil
}

func (s *ldbStore) Close() error {
	if err := s.flush(); err != nil {
		return err
	}
	return s.conn.Close()
}
