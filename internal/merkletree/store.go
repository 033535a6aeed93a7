package merkletree

import "github.com/javanhut/streamtree/internal/streamid"

// Hash is a BLAKE3-256 node hash.
type Hash = streamid.Hash

// NodeStore is the per-stream key-value surface the tree persists node
// state into: one entry per node hash, absent for a Missing node, empty for
// a Data chunk, and 64 bytes (left hash || right hash) for an Interior
// node. A concrete NodeStore is expected to provide crash-safe
// single-writer semantics per stream (see streamstore, which backs this
// with one bbolt bucket per stream).
type NodeStore interface {
	// Has reports whether hash has an entry (i.e. the node is not Missing).
	Has(hash Hash) (bool, error)
	// Get retrieves the raw value for hash. ok is false if the node is
	// Missing.
	Get(hash Hash) (value []byte, ok bool, err error)
	// Put stores value under hash. value is nil/empty for a Data chunk and
	// exactly 64 bytes for an Interior node.
	Put(hash Hash, value []byte) error
}
