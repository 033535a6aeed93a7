// Package merkletree implements the persistent, verified binary Merkle
// tree over 1024-byte chunks at the heart of the stream store: node
// query, range-proof encode, and range-proof decode-and-persist.
//
// A Tree is a thin, cheaply-copied handle into a NodeStore: all state
// lives in the store, keyed by node hash, so a Tree value just carries the
// coordinates (which hash, which range, whether it's the stream root)
// needed to interpret what's there. This mirrors the teacher's
// fsmerkle.Store / filechunk.Builder split between a backing CAS and a
// thin in-memory handle, generalized to the three-state Missing/Data/
// Interior model spec.md requires instead of filechunk's two-state
// Leaf/Node model.
package merkletree

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/javanhut/streamtree/internal/blake3core"
	"github.com/javanhut/streamtree/internal/rangespan"
	"github.com/javanhut/streamtree/internal/streamerr"
	"github.com/javanhut/streamtree/internal/streamid"
)

// Range is the byte-interval type shared with rangespan.
type Range = rangespan.Range

// Tree is a handle to one node of a stream's persistent Merkle tree. The
// zero value is not valid; construct one with Open.
type Tree struct {
	store NodeStore
	id    streamid.StreamId
	hash  Hash
	rng   Range
	root  bool
}

// Open returns a handle to the root node of the stream identified by id.
// The root is Missing until something has been decoded into it.
func Open(store NodeStore, id streamid.StreamId) Tree {
	return Tree{
		store: store,
		id:    id,
		hash:  id.Hash(),
		rng:   rangespan.New(0, id.Length()),
		root:  true,
	}
}

// Id returns the stream id this tree belongs to.
func (t Tree) Id() streamid.StreamId { return t.id }

// Hash returns this node's BLAKE3 hash.
func (t Tree) Hash() Hash { return t.hash }

// Range returns the byte range this node covers.
func (t Tree) Range() Range { return t.rng }

// IsRoot reports whether this node is the stream's root.
func (t Tree) IsRoot() bool { return t.root }

// IsChunk reports whether this node's range covers at most one chunk.
func (t Tree) IsChunk() bool { return t.rng.IsChunk() }

func (t Tree) isMissing() (bool, error) {
	ok, err := t.store.Has(t.hash)
	if err != nil {
		return false, fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	return !ok, nil
}

func (t Tree) isData() (bool, error) {
	if !t.IsChunk() {
		return false, nil
	}
	ok, err := t.store.Has(t.hash)
	if err != nil {
		return false, fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	return ok, nil
}

func (t Tree) setData() error {
	if err := t.store.Put(t.hash, nil); err != nil {
		return fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	return nil
}

func (t Tree) setChildren(left, right Hash) error {
	var value [64]byte
	copy(value[:32], left[:])
	copy(value[32:], right[:])
	if err := t.store.Put(t.hash, value[:]); err != nil {
		return fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	return nil
}

// children returns this node's two children if it has been promoted to
// Interior, or ok=false if it is still Missing (or is a chunk node, which
// never has children).
func (t Tree) children() (left, right Tree, ok bool, err error) {
	value, found, err := t.store.Get(t.hash)
	if err != nil {
		return Tree{}, Tree{}, false, fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	if !found || len(value) == 0 {
		return Tree{}, Tree{}, false, nil
	}
	if len(value) != 64 {
		return Tree{}, Tree{}, false, fmt.Errorf("%w: interior node value has %d bytes, want 64", streamerr.ErrFormatError, len(value))
	}
	var leftHash, rightHash Hash
	copy(leftHash[:], value[:32])
	copy(rightHash[:], value[32:])

	leftRange, rightRange, splitOK := t.rng.Split()
	if !splitOK {
		return Tree{}, Tree{}, false, fmt.Errorf("%w: interior node range %+v does not split", streamerr.ErrFormatError, t.rng)
	}
	left = Tree{store: t.store, id: t.id, hash: leftHash, rng: leftRange, root: false}
	right = Tree{store: t.store, id: t.id, hash: rightHash, rng: rightRange, root: false}
	return left, right, true, nil
}

func (t Tree) lastChunk() (Tree, error) {
	left, right, ok, err := t.children()
	if err != nil {
		return Tree{}, err
	}
	if ok {
		_ = left
		return right.lastChunk()
	}
	return t, nil
}

// Length returns the stream's total length if the rightmost chunk has been
// verified (it equals the root range's end by construction), and reports
// ok=false if it isn't known yet.
func (t Tree) Length() (length uint64, ok bool, err error) {
	last, err := t.lastChunk()
	if err != nil {
		return 0, false, err
	}
	data, err := last.isData()
	if err != nil {
		return 0, false, err
	}
	if !data {
		return 0, false, nil
	}
	return last.rng.End(), true, nil
}

// Complete reports whether the whole stream's range is held.
func (t Tree) Complete() (bool, error) {
	return t.HasRange(t.rng)
}

// HasRange reports whether every chunk covered by r has been verified.
func (t Tree) HasRange(r Range) (bool, error) {
	missing, err := t.isMissing()
	if err != nil {
		return false, err
	}
	if missing && r.Intersects(t.rng) {
		return false, nil
	}
	left, right, ok, err := t.children()
	if err != nil {
		return false, err
	}
	if ok {
		leftHas, err := left.HasRange(r)
		if err != nil {
			return false, err
		}
		rightHas, err := right.HasRange(r)
		if err != nil {
			return false, err
		}
		return leftHas && rightHas, nil
	}
	return true, nil
}

func coalesceAppend(ranges []Range, r Range) []Range {
	if n := len(ranges); n > 0 && ranges[n-1].End() == r.Offset {
		ranges[n-1].Length += r.Length
		return ranges
	}
	return append(ranges, r)
}

func (t Tree) innerRanges(out []Range) ([]Range, error) {
	left, right, ok, err := t.children()
	if err != nil {
		return nil, err
	}
	if ok {
		out, err = left.innerRanges(out)
		if err != nil {
			return nil, err
		}
		return right.innerRanges(out)
	}
	data, err := t.isData()
	if err != nil {
		return nil, err
	}
	if data {
		out = coalesceAppend(out, t.rng)
	}
	return out, nil
}

// Ranges returns the coalesced list of contiguous byte ranges for which
// every covered chunk is Data, in ascending offset order.
func (t Tree) Ranges() ([]Range, error) {
	return t.innerRanges(make([]Range, 0, t.rng.NumChunks()))
}

func (t Tree) innerMissingRanges(out []Range) ([]Range, error) {
	left, right, ok, err := t.children()
	if err != nil {
		return nil, err
	}
	if ok {
		out, err = left.innerMissingRanges(out)
		if err != nil {
			return nil, err
		}
		return right.innerMissingRanges(out)
	}
	missing, err := t.isMissing()
	if err != nil {
		return nil, err
	}
	if missing {
		out = coalesceAppend(out, t.rng)
	}
	return out, nil
}

// MissingRanges returns the coalesced list of contiguous byte ranges whose
// covering subtree is Missing. A Missing internal node contributes its
// whole range, not descendants it hasn't created yet.
func (t Tree) MissingRanges() ([]Range, error) {
	return t.innerMissingRanges(make([]Range, 0, t.rng.NumChunks()))
}

// ChunkSource reads chunk payload bytes at an absolute stream offset.
type ChunkSource interface {
	io.ReaderAt
}

// ChunkSink writes chunk payload bytes at an absolute stream offset.
type ChunkSink interface {
	io.WriterAt
}

func (t Tree) innerEncodeRangeTo(r Range, tree io.Writer, chunks ChunkSource) error {
	if t.IsChunk() {
		if !r.Intersects(t.rng) {
			return nil
		}
		data, err := t.isData()
		if err != nil {
			return err
		}
		if !data {
			return fmt.Errorf("%w: chunk at %+v", streamerr.ErrMissingNode, t.rng)
		}
		buf := make([]byte, t.rng.Length)
		if len(buf) > 0 {
			if _, err := t.readChunkAt(chunks, buf); err != nil {
				return fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
			}
		}
		if _, err := tree.Write(buf); err != nil {
			return fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
		}
		return nil
	}

	left, right, ok, err := t.children()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: interior node at %+v", streamerr.ErrMissingNode, t.rng)
	}
	if _, err := tree.Write(append(append([]byte{}, left.hash[:]...), right.hash[:]...)); err != nil {
		return fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	if r.Intersects(left.rng) {
		if err := left.innerEncodeRangeTo(r, tree, chunks); err != nil {
			return err
		}
	}
	if r.Intersects(right.rng) {
		if err := right.innerEncodeRangeTo(r, tree, chunks); err != nil {
			return err
		}
	}
	return nil
}

func (t Tree) readChunkAt(chunks ChunkSource, buf []byte) (int, error) {
	return chunks.ReadAt(buf, int64(t.rng.Offset))
}

// EncodeRangeTo streams a range proof for r to tree: an 8-byte length
// header followed by a pre-order walk emitting interior parent-hash pairs
// and chunk payloads for every node that intersects r. chunks supplies
// chunk bytes by absolute offset. Must be called on the root; fails with
// ErrMissingNode if any node on the walk is Missing.
func (t Tree) EncodeRangeTo(r Range, tree io.Writer, chunks ChunkSource) error {
	if !t.root {
		return fmt.Errorf("streamtree: EncodeRangeTo must be called on the root node")
	}
	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], t.rng.Length)
	if _, err := tree.Write(header[:]); err != nil {
		return fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	return t.innerEncodeRangeTo(r, tree, chunks)
}

func (t Tree) innerDecodeRangeFrom(r Range, tree io.Reader, chunks ChunkSink) error {
	if t.IsChunk() {
		if !r.Intersects(t.rng) {
			return nil
		}
		// The payload is read, verified and written even when the chunk is
		// already Data, so the proof stays aligned and re-decoding the same
		// slice succeeds.
		buf := make([]byte, t.rng.Length)
		if len(buf) > 0 {
			if _, err := io.ReadFull(tree, buf); err != nil {
				return fmt.Errorf("%w: %v", streamerr.ErrFormatError, err)
			}
		}
		hash := blake3core.ChunkHash(t.rng.Index(), buf, t.root)
		if hash != t.hash {
			return fmt.Errorf("%w: chunk at %+v", streamerr.ErrCryptoMismatch, t.rng)
		}
		if len(buf) > 0 {
			if _, err := chunks.WriteAt(buf, int64(t.rng.Offset)); err != nil {
				return fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
			}
		}
		return t.setData()
	}

	var leftHash, rightHash Hash
	if _, err := io.ReadFull(tree, leftHash[:]); err != nil {
		return fmt.Errorf("%w: %v", streamerr.ErrFormatError, err)
	}
	if _, err := io.ReadFull(tree, rightHash[:]); err != nil {
		return fmt.Errorf("%w: %v", streamerr.ErrFormatError, err)
	}
	hash := blake3core.ParentCV(leftHash, rightHash, t.root)
	if hash != t.hash {
		return fmt.Errorf("%w: interior node at %+v", streamerr.ErrCryptoMismatch, t.rng)
	}

	// The parent equation holds before either child is created or
	// written to: a partially failed decode below this point cannot
	// leave a Data chunk behind a mismatched parent.
	if err := t.setChildren(leftHash, rightHash); err != nil {
		return err
	}
	left, right, ok, err := t.children()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("streamtree: internal error: children missing immediately after setChildren")
	}
	if r.Intersects(left.rng) {
		if err := left.innerDecodeRangeFrom(r, tree, chunks); err != nil {
			return err
		}
	}
	if r.Intersects(right.rng) {
		if err := right.innerDecodeRangeFrom(r, tree, chunks); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRangeFrom consumes a range proof for r from tree, verifying hashes
// top-down from this (root) node's known hash: each interior node's pair is
// checked before that node's children are created, and each chunk's hash is
// checked before its bytes are written into chunks at their exact stream
// offset. Nodes and chunks verified before a later failure stay persisted.
// Must be called on the root.
func (t Tree) DecodeRangeFrom(r Range, tree io.Reader, chunks ChunkSink) error {
	if !t.root {
		return fmt.Errorf("streamtree: DecodeRangeFrom must be called on the root node")
	}
	var header [8]byte
	if _, err := io.ReadFull(tree, header[:]); err != nil {
		return fmt.Errorf("%w: reading length header: %v", streamerr.ErrFormatError, err)
	}
	length := binary.LittleEndian.Uint64(header[:])
	if length != t.rng.Length {
		return fmt.Errorf("%w: slice header length %d does not match stream length %d", streamerr.ErrFormatError, length, t.rng.Length)
	}
	return t.innerDecodeRangeFrom(r, tree, chunks)
}
