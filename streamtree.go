// Package streamtree is the consumer-facing entry point: Store opens a
// directory as a content-addressed stream store, and Stream is a handle to
// one stream within it. Both are thin wrappers over internal/streamstore,
// kept separate so the internal package stays free to change shape without
// breaking callers who only import the root package.
package streamtree

import (
	"io"

	"github.com/javanhut/streamtree/internal/rangespan"
	"github.com/javanhut/streamtree/internal/streamid"
	"github.com/javanhut/streamtree/internal/streamstore"
)

// Range is a byte interval, as returned by Stream.Ranges and
// Stream.MissingRanges and accepted by Stream.EncodeRange/DecodeRange.
type Range = rangespan.Range

// StreamId is a stream's stable, self-describing identifier.
type StreamId = streamid.StreamId

// MediaType identifies a stream's content type.
type MediaType = streamid.MediaType

// NewRange constructs a Range from a byte offset and length.
func NewRange(offset, length uint64) Range {
	return rangespan.New(offset, length)
}

// Store is a content-addressed stream store rooted at one directory.
type Store struct {
	storage *streamstore.StreamStorage
}

// Open opens or creates a Store rooted at dir.
func Open(dir string) (*Store, error) {
	storage, err := streamstore.New(dir)
	if err != nil {
		return nil, err
	}
	return &Store{storage: storage}, nil
}

// Close releases the store's handle to its node database.
func (s *Store) Close() error {
	return s.storage.Close()
}

// List returns every stream id currently known to the store.
func (s *Store) List() ([]StreamId, error) {
	return s.storage.Streams()
}

// Insert reads r to completion and stores it under a new stream id derived
// from its content, length, and mediaType.
func (s *Store) Insert(mediaType MediaType, r io.Reader) (*Stream, error) {
	stream, err := s.storage.Insert(mediaType, r)
	if err != nil {
		return nil, err
	}
	return &Stream{stream: stream}, nil
}

// InsertPath hashes and stores the file at path, inferring its media type
// from its extension.
func (s *Store) InsertPath(path string) (*Stream, error) {
	stream, err := s.storage.InsertPath(path)
	if err != nil {
		return nil, err
	}
	return &Stream{stream: stream}, nil
}

// Get returns a handle to id's stream, creating an empty (all-Missing)
// entry for it if this is the first time id has been seen.
func (s *Store) Get(id StreamId) (*Stream, error) {
	stream, err := s.storage.Get(id)
	if err != nil {
		return nil, err
	}
	return &Stream{stream: stream}, nil
}

// Contains reports whether id's chunk file is present: it has been inserted
// or fetched and not removed since.
func (s *Store) Contains(id StreamId) bool {
	return s.storage.Contains(id)
}

// Remove deletes id's node state and chunk bytes from the store.
func (s *Store) Remove(id StreamId) error {
	return s.storage.Remove(id)
}

// Stream is a handle to one stream held (fully or partially) by a Store.
type Stream struct {
	stream *streamstore.Stream
}

// Id returns the stream's identifier.
func (s *Stream) Id() StreamId { return s.stream.Id() }

// Ranges returns the coalesced list of fully-held byte ranges.
func (s *Stream) Ranges() ([]Range, error) { return s.stream.Ranges() }

// MissingRanges returns the coalesced list of ranges not yet held.
func (s *Stream) MissingRanges() ([]Range, error) { return s.stream.MissingRanges() }

// Complete reports whether the stream is fully held.
func (s *Stream) Complete() (bool, error) { return s.stream.Complete() }

// EncodeRange writes a range proof for r to w.
func (s *Stream) EncodeRange(r Range, w io.Writer) error {
	return s.stream.EncodeRangeTo(r, w)
}

// DecodeRange reads a range proof for r from reader, persisting each node
// and chunk only after its own hash verifies.
func (s *Stream) DecodeRange(r Range, reader io.Reader) error {
	return s.stream.DecodeRangeFrom(r, reader)
}

// ReadRange opens a reader bounded to r, failing if r is not fully held.
func (s *Stream) ReadRange(r Range) (io.ReadSeekCloser, error) {
	return s.stream.ReadRange(r)
}

// Read opens a reader over the stream's whole range.
func (s *Stream) Read() (io.ReadSeekCloser, error) {
	return s.stream.Read()
}
