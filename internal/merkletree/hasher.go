package merkletree

import (
	"fmt"

	"github.com/javanhut/streamtree/internal/blake3core"
	"github.com/javanhut/streamtree/internal/rangespan"
)

// Insertion is one node the hasher has determined must be written into a
// stream's NodeStore: Value is nil for a Data chunk and 64 bytes (left hash
// || right hash) for an Interior node, matching the encoding setData and
// setChildren use in tree.go.
type Insertion struct {
	Hash  Hash
	Value []byte
}

type nodeKind int

const (
	chunkKind nodeKind = iota
	parentKind
)

// stackEntry is a node still on the hasher's right spine: fully computed as
// a non-root node, but carrying enough of its own inputs (either the raw
// chunk bytes or its two children's hashes) to be recomputed as the root if
// it turns out to be the last node standing once the input ends.
type stackEntry struct {
	hash  Hash
	rng   Range
	kind  nodeKind
	data  []byte // chunkKind only
	left  Hash   // parentKind only
	right Hash   // parentKind only
}

// TreeHasher incrementally hashes a byte stream into the same tree shape
// Tree persists, following BLAKE3's own incremental algorithm: every chunk
// and parent hash is computed as a non-root node as soon as enough input is
// known to produce it, and the single node left standing at the end of the
// stream is the only one ever recomputed with the root flag set. This
// mirrors the original hasher's stack of chunk states, generalized to also
// record every node it would need to persist rather than just the final
// root hash.
//
// The zero value is ready for use; NewTreeHasher returns one. A TreeHasher
// is not safe for concurrent use.
type TreeHasher struct {
	stack      []stackEntry
	buf        [rangespan.ChunkSize]byte
	bufLen     int
	length     uint64
	chunks     uint64
	insertions []Insertion
	done       bool
}

// NewTreeHasher returns a TreeHasher ready to accept Write calls.
func NewTreeHasher() *TreeHasher {
	return &TreeHasher{}
}

func (h *TreeHasher) pop() stackEntry {
	n := len(h.stack)
	e := h.stack[n-1]
	h.stack = h.stack[:n-1]
	return e
}

// Write feeds stream bytes into the hasher; it satisfies io.Writer. It never
// returns a short write, and returns an error only when called after
// Finalize.
func (h *TreeHasher) Write(p []byte) (int, error) {
	if h.done {
		return 0, fmt.Errorf("streamtree: Write called after Finalize")
	}
	total := len(p)
	for len(p) > 0 {
		room := rangespan.ChunkSize - h.bufLen
		take := room
		if take > len(p) {
			take = len(p)
		}
		copy(h.buf[h.bufLen:h.bufLen+take], p[:take])
		h.bufLen += take
		h.length += uint64(take)
		p = p[take:]
		if h.bufLen == rangespan.ChunkSize {
			h.endChunk()
		}
	}
	return total, nil
}

// endChunk closes out the chunk currently buffered (which may be a full
// 1024-byte chunk or, when called from Finalize, the trailing partial
// chunk), hashes it as a non-root node, and merges it into the right spine
// following BLAKE3's binary-counter rule: while the running chunk count is
// even, the top of the stack and the node just produced combine into their
// parent, which takes the produced node's place and the loop repeats.
func (h *TreeHasher) endChunk() {
	rng := rangespan.New(h.length-uint64(h.bufLen), uint64(h.bufLen))
	data := append([]byte(nil), h.buf[:h.bufLen]...)
	hash := blake3core.ChunkHash(rng.Index(), data, false)
	h.insertions = append(h.insertions, Insertion{Hash: hash})
	cur := stackEntry{hash: hash, rng: rng, kind: chunkKind, data: data}
	h.bufLen = 0
	h.chunks++

	total := h.chunks
	for total&1 == 0 {
		left := h.pop()
		parentHash := blake3core.ParentCV(left.hash, cur.hash, false)
		value := append(append([]byte(nil), left.hash[:]...), cur.hash[:]...)
		h.insertions = append(h.insertions, Insertion{Hash: parentHash, Value: value})
		cur = stackEntry{
			hash:  parentHash,
			rng:   rangespan.New(left.rng.Offset, left.rng.Length+cur.rng.Length),
			kind:  parentKind,
			left:  left.hash,
			right: cur.hash,
		}
		total >>= 1
	}
	h.stack = append(h.stack, cur)
}

// Finalize closes the stream and returns its root hash, total length, and
// the full set of node insertions a caller must persist (in any order) for
// the corresponding Tree to see the stream as complete. It must be called
// exactly once, after all input has been written.
func (h *TreeHasher) Finalize() (root Hash, length uint64, insertions []Insertion, err error) {
	if h.done {
		return Hash{}, 0, nil, fmt.Errorf("streamtree: Finalize called more than once")
	}
	h.done = true

	if h.chunks == 0 || h.bufLen > 0 {
		h.endChunk()
	}

	top := h.pop()
	for len(h.stack) > 0 {
		left := h.pop()
		parentHash := blake3core.ParentCV(left.hash, top.hash, false)
		value := append(append([]byte(nil), left.hash[:]...), top.hash[:]...)
		h.insertions = append(h.insertions, Insertion{Hash: parentHash, Value: value})
		top = stackEntry{
			hash:  parentHash,
			rng:   rangespan.New(left.rng.Offset, left.rng.Length+top.rng.Length),
			kind:  parentKind,
			left:  left.hash,
			right: top.hash,
		}
	}

	var rootHash Hash
	var rootValue []byte
	switch top.kind {
	case chunkKind:
		rootHash = blake3core.ChunkHash(top.rng.Index(), top.data, true)
	case parentKind:
		rootHash = blake3core.ParentCV(top.left, top.right, true)
		rootValue = append(append([]byte(nil), top.left[:]...), top.right[:]...)
	}
	h.insertions = append(h.insertions, Insertion{Hash: rootHash, Value: rootValue})

	return rootHash, top.rng.End(), h.insertions, nil
}
