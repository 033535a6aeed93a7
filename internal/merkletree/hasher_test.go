package merkletree

import (
	"bytes"
	"testing"

	"lukechampine.com/blake3"

	"github.com/javanhut/streamtree/internal/rangespan"
	"github.com/javanhut/streamtree/internal/streamid"
)

// memStore is a minimal in-memory NodeStore used only by these tests.
type memStore struct {
	values map[Hash][]byte
}

func newMemStore() *memStore {
	return &memStore{values: make(map[Hash][]byte)}
}

func (s *memStore) Has(hash Hash) (bool, error) {
	_, ok := s.values[hash]
	return ok, nil
}

func (s *memStore) Get(hash Hash) ([]byte, bool, error) {
	v, ok := s.values[hash]
	return v, ok, nil
}

func (s *memStore) Put(hash Hash, value []byte) error {
	s.values[hash] = append([]byte(nil), value...)
	return nil
}

func referenceHash(data []byte) Hash {
	return blake3.Sum256(data)
}

func hashAndApply(t *testing.T, data []byte) (Hash, *memStore) {
	t.Helper()
	h := NewTreeHasher()
	if _, err := h.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	root, length, insertions, err := h.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if length != uint64(len(data)) {
		t.Fatalf("length = %d, want %d", length, len(data))
	}
	store := newMemStore()
	for _, ins := range insertions {
		if err := store.Put(ins.Hash, ins.Value); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	return root, store
}

func TestTreeHasherMatchesReferenceAcrossSizes(t *testing.T) {
	sizes := []int{
		0, 1, 63, 64, 1023, 1024, 1025,
		2 * rangespan.ChunkSize, 2*rangespan.ChunkSize + 1,
		3 * rangespan.ChunkSize, 5*rangespan.ChunkSize + 17,
	}
	for _, size := range sizes {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i * 7 % 251)
		}
		root, _ := hashAndApply(t, data)
		want := referenceHash(data)
		if root != want {
			t.Fatalf("size %d: root = %x, want %x", size, root[:], want[:])
		}
	}
}

func TestTreeHasherSplitWritesMatchSingleWrite(t *testing.T) {
	data := make([]byte, 5*rangespan.ChunkSize+300)
	for i := range data {
		data[i] = byte(i * 13 % 253)
	}

	oneShot := NewTreeHasher()
	oneShot.Write(data)
	rootOne, _, _, err := oneShot.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	split := NewTreeHasher()
	chunks := [][]byte{data[:1], data[1:100], data[100:1024], data[1024:3000], data[3000:]}
	for _, c := range chunks {
		if _, err := split.Write(c); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	rootSplit, _, _, err := split.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if rootOne != rootSplit {
		t.Fatalf("root differs by write chunking: %x vs %x", rootOne[:], rootSplit[:])
	}
}

func TestTreeHasherProducesCompleteVerifiableTree(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 4*rangespan.ChunkSize+500)
	root, store := hashAndApply(t, data)

	id := streamid.New(root, uint64(len(data)), streamid.ApplicationOctetStream)
	tr := Open(store, id)
	complete, err := tr.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !complete {
		t.Fatal("expected tree built by TreeHasher to report Complete")
	}

	length, ok, err := tr.Length()
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	if !ok || length != uint64(len(data)) {
		t.Fatalf("Length = %d, ok=%v, want %d", length, ok, len(data))
	}
}

func TestTreeHasherDoubleFinalizeFails(t *testing.T) {
	h := NewTreeHasher()
	h.Write([]byte("hello"))
	if _, _, _, err := h.Finalize(); err != nil {
		t.Fatalf("first Finalize: %v", err)
	}
	if _, _, _, err := h.Finalize(); err == nil {
		t.Fatal("expected error on second Finalize call")
	}
}

func TestTreeHasherWriteAfterFinalizeFails(t *testing.T) {
	h := NewTreeHasher()
	h.Write([]byte("hello"))
	if _, _, _, err := h.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := h.Write([]byte("more")); err == nil {
		t.Fatal("expected error writing after Finalize")
	}
}
