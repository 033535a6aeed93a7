package streamstore

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/javanhut/streamtree/internal/rangespan"
	"github.com/javanhut/streamtree/internal/streamid"
)

func newTestStorage(t *testing.T) *StreamStorage {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndReadBack(t *testing.T) {
	s := newTestStorage(t)
	data := bytes.Repeat([]byte{0x42}, 2049)

	stream, err := s.Insert(streamid.ApplicationOctetStream, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	complete, err := stream.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !complete {
		t.Fatal("expected freshly inserted stream to be complete")
	}

	r, err := stream.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("read-back bytes do not match inserted data")
	}
}

func TestInsertThenEncodeAndDecodeIntoFreshStore(t *testing.T) {
	src := newTestStorage(t)
	data := bytes.Repeat([]byte{0x7A}, 2049)

	stream, err := src.Insert(streamid.ApplicationOctetStream, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	id := stream.Id()

	sliceRange := rangespan.New(1024, 1024)
	var proof bytes.Buffer
	if err := stream.EncodeRangeTo(sliceRange, &proof); err != nil {
		t.Fatalf("EncodeRangeTo: %v", err)
	}
	if err := src.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	dst := newTestStorage(t)
	dstStream, err := dst.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := dstStream.DecodeRangeFrom(sliceRange, bytes.NewReader(proof.Bytes())); err != nil {
		t.Fatalf("DecodeRangeFrom: %v", err)
	}

	r, err := dstStream.ReadRange(sliceRange)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	defer r.Close()
	got := make([]byte, sliceRange.Length)
	if _, err := io.ReadFull(r, got); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	want := data[sliceRange.Offset:sliceRange.End()]
	if !bytes.Equal(got, want) {
		t.Fatal("decoded range bytes do not match original data")
	}
}

func TestContainsAndStreamsListing(t *testing.T) {
	s := newTestStorage(t)
	data := []byte("small stream contents")
	stream, err := s.Insert(streamid.TextPlain, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if !s.Contains(stream.Id()) {
		t.Fatal("expected Contains to report true for an inserted stream")
	}

	ids, err := s.Streams()
	if err != nil {
		t.Fatalf("Streams: %v", err)
	}
	found := false
	for _, id := range ids {
		if id.Equal(stream.Id()) {
			found = true
		}
	}
	if !found {
		t.Fatal("expected Streams to list the inserted stream id")
	}
}

func TestRemoveDeletesChunkFileAndBucket(t *testing.T) {
	s := newTestStorage(t)
	data := []byte("to be removed")
	stream, err := s.Insert(streamid.TextPlain, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	id := stream.Id()

	if err := s.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Contains(id) {
		t.Fatal("expected Contains to report false after Remove")
	}
	ids, err := s.Streams()
	if err != nil {
		t.Fatalf("Streams: %v", err)
	}
	for _, listed := range ids {
		if listed.Equal(id) {
			t.Fatal("expected Streams not to list the removed stream's bucket")
		}
	}
}

func TestInsertPathInfersMediaTypeFromExtension(t *testing.T) {
	s := newTestStorage(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	stream, err := s.InsertPath(path)
	if err != nil {
		t.Fatalf("InsertPath: %v", err)
	}
	if stream.Id().MediaType() != streamid.TextPlain {
		t.Fatalf("media type = %v, want TextPlain", stream.Id().MediaType())
	}
}
