// Package streamstore wires the merkletree engine to durable storage:
// node state in bbolt, chunk payload bytes in a two-level hex fan-out
// directory tree, following the teacher's store.DB/store.Manager split
// between a shared bbolt handle and a reference-counted wrapper around it.
package streamstore

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/javanhut/streamtree/internal/merkletree"
	"github.com/javanhut/streamtree/internal/streamid"
)

// DB wraps the bbolt handle that backs every stream's node bucket. One
// bucket per stream, named by the stream's 43-byte StreamId encoding; one
// key per node hash within that bucket, matching merkletree.NodeStore's
// Has/Get/Put surface.
type DB struct{ *bbolt.DB }

// Open opens (creating if necessary) the bbolt file at path.
func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0666, nil)
	if err != nil {
		return nil, fmt.Errorf("streamstore: open %s: %w", path, err)
	}
	return &DB{db}, nil
}

func (db *DB) Close() error { return db.DB.Close() }

func bucketName(id streamid.StreamId) []byte {
	b := id.ToBytes()
	return b[:]
}

// buckets lists every stream bucket currently present.
func (db *DB) buckets() ([][]byte, error) {
	var names [][]byte
	err := db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			names = append(names, append([]byte(nil), name...))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("streamstore: list buckets: %w", err)
	}
	return names, nil
}

// createStream creates the named stream's bucket if absent.
func (db *DB) createStream(id streamid.StreamId) error {
	return db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName(id))
		return err
	})
}

// dropStream removes the named stream's bucket entirely.
func (db *DB) dropStream(id streamid.StreamId) error {
	return db.Update(func(tx *bbolt.Tx) error {
		name := bucketName(id)
		if tx.Bucket(name) == nil {
			return nil
		}
		return tx.DeleteBucket(name)
	})
}

// nodeStore is a merkletree.NodeStore backed by one stream's bbolt bucket.
type nodeStore struct {
	db  *DB
	key []byte
}

func newNodeStore(db *DB, id streamid.StreamId) *nodeStore {
	return &nodeStore{db: db, key: bucketName(id)}
}

func (s *nodeStore) Has(hash merkletree.Hash) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.key)
		if bucket == nil {
			return nil
		}
		found = bucket.Get(hash[:]) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("streamstore: Has: %w", err)
	}
	return found, nil
}

func (s *nodeStore) Get(hash merkletree.Hash) ([]byte, bool, error) {
	var value []byte
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.key)
		if bucket == nil {
			return nil
		}
		v := bucket.Get(hash[:])
		if v == nil {
			return nil
		}
		found = true
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("streamstore: Get: %w", err)
	}
	return value, found, nil
}

func (s *nodeStore) Put(hash merkletree.Hash, value []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(s.key)
		if err != nil {
			return err
		}
		return bucket.Put(hash[:], value)
	})
	if err != nil {
		return fmt.Errorf("streamstore: Put: %w", err)
	}
	return nil
}

// Manager owns one bbolt database's lifetime on behalf of exactly one
// StreamStorage. There is no process-wide registry of open databases: all
// state belongs to the StreamStorage instance that opened it, so closing
// one StreamStorage never touches another's database, even when two
// StreamStorage instances happen to be open against different directories
// (or, with bbolt's own file lock preventing it, the same one) at once.
type Manager struct {
	mu   sync.Mutex
	db   *DB
	refs int
}

// SharedDB wraps a DB with reference-counted lifetime, scoped to the
// Manager that opened it.
type SharedDB struct {
	manager *Manager
	*DB
}

// GetSharedDB opens <dir>/nodes.db fresh and returns a SharedDB owning it.
// Every StreamStorage gets its own independent Manager; one database is
// never shared across separate StreamStorage instances. The reference count
// starts at one and nothing in this package increments it, so the first
// Close closes the database.
func GetSharedDB(dir string) (*SharedDB, error) {
	dbPath := filepath.Join(dir, "nodes.db")
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	manager := &Manager{db: db, refs: 1}
	return &SharedDB{manager: manager, DB: manager.db}, nil
}

func (sdb *SharedDB) Close() error {
	if sdb.manager == nil {
		return nil
	}
	m := sdb.manager
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refs--
	if m.refs <= 0 {
		return m.close()
	}
	return nil
}

func (m *Manager) close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
