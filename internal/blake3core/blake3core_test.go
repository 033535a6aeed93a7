package blake3core

import (
	"encoding/hex"
	"testing"

	"lukechampine.com/blake3"
)

// TestChunkHashMatchesReferenceForSingleChunk checks that ChunkHash(0, data,
// true) agrees with the reference blake3.Sum256 for inputs that fit in one
// chunk.
func TestChunkHashMatchesReferenceForSingleChunk(t *testing.T) {
	sizes := []int{0, 1, 63, 64, 65, 1023, 1024}
	for _, n := range sizes {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i)
		}
		got := ChunkHash(0, data, true)
		want := blake3.Sum256(data)
		if hex.EncodeToString(got[:]) != hex.EncodeToString(want[:]) {
			t.Fatalf("size %d: got %x want %x", n, got, want)
		}
	}
}

// TestTwoChunkTreeMatchesReference builds the two-chunk tree by hand (chunk
// 0 non-root, chunk 1 non-root, parent root) and checks it against the
// reference whole-buffer hash for exactly 1025..2048 bytes.
func TestTwoChunkTreeMatchesReference(t *testing.T) {
	for _, n := range []int{1025, 1536, 2048} {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i * 7)
		}
		left := ChunkHash(0, data[:1024], false)
		right := ChunkHash(1, data[1024:], false)
		got := ParentCV(left, right, true)
		want := blake3.Sum256(data)
		if got != want {
			t.Fatalf("size %d: got %x want %x", n, got, want)
		}
	}
}

func TestChunkHashDiffersByIndex(t *testing.T) {
	data := []byte("same bytes, different position")
	a := ChunkHash(0, data, false)
	b := ChunkHash(1, data, false)
	if a == b {
		t.Fatal("chunk hash must depend on index")
	}
}

func TestParentCVDiffersByRootFlag(t *testing.T) {
	left := ChunkHash(0, []byte("left"), false)
	right := ChunkHash(1, []byte("right"), false)
	a := ParentCV(left, right, false)
	b := ParentCV(left, right, true)
	if a == b {
		t.Fatal("parent hash must depend on is_root flag")
	}
}
