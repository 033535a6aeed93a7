package streamstore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"

	"github.com/javanhut/streamtree/internal/merkletree"
	"github.com/javanhut/streamtree/internal/rangespan"
	"github.com/javanhut/streamtree/internal/streamerr"
	"github.com/javanhut/streamtree/internal/streamid"
)

// Stream is a handle to one stored stream: its persistent Tree plus the
// chunk payload file backing it.
type Stream struct {
	id        streamid.StreamId
	tree      merkletree.Tree
	chunkPath string
}

// Id returns the stream's identifier.
func (s *Stream) Id() streamid.StreamId { return s.id }

// HasRange reports whether every chunk in r has been verified and stored.
func (s *Stream) HasRange(r rangespan.Range) (bool, error) {
	return s.tree.HasRange(r)
}

// Ranges returns the coalesced list of fully-held byte ranges.
func (s *Stream) Ranges() ([]rangespan.Range, error) {
	return s.tree.Ranges()
}

// MissingRanges returns the coalesced list of ranges not yet held.
func (s *Stream) MissingRanges() ([]rangespan.Range, error) {
	return s.tree.MissingRanges()
}

// Complete reports whether the whole stream has been verified and stored.
func (s *Stream) Complete() (bool, error) {
	return s.tree.Complete()
}

// EncodeRangeTo writes a range proof for r, reading chunk bytes from the
// stream's backing file.
func (s *Stream) EncodeRangeTo(r rangespan.Range, w io.Writer) error {
	f, err := os.Open(s.chunkPath)
	if err != nil {
		return fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	defer f.Close()
	return s.tree.EncodeRangeTo(r, w, f)
}

// DecodeRangeFrom reads a range proof for r and writes each chunk's bytes
// into the stream's backing file at its absolute offset as soon as that
// chunk's hash verifies.
func (s *Stream) DecodeRangeFrom(r rangespan.Range, reader io.Reader) error {
	f, err := os.OpenFile(s.chunkPath, os.O_RDWR, 0666)
	if err != nil {
		return fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	defer f.Close()
	return s.tree.DecodeRangeFrom(r, reader, f)
}

// ReadRange opens a reader bounded to r, failing if any chunk in r is not
// yet held.
func (s *Stream) ReadRange(r rangespan.Range) (*RangeReader, error) {
	has, err := s.tree.HasRange(r)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("%w: range %+v", streamerr.ErrRangeInvalid, r)
	}
	f, err := os.Open(s.chunkPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	return &RangeReader{f: f, rng: r, pos: r.Offset}, nil
}

// Read opens a reader over the stream's whole range, failing if any of it is
// not yet held.
func (s *Stream) Read() (*RangeReader, error) {
	return s.ReadRange(s.tree.Range())
}

// RangeReader reads the raw chunk bytes of a range known to be fully held.
// It implements io.ReadSeekCloser, refusing to seek outside its range.
type RangeReader struct {
	f   *os.File
	rng rangespan.Range
	pos uint64
}

func (r *RangeReader) Read(p []byte) (int, error) {
	rest := r.rng.End() - r.pos
	if rest == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > rest {
		p = p[:rest]
	}
	n, err := r.f.ReadAt(p, int64(r.pos))
	r.pos += uint64(n)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	return n, nil
}

func (r *RangeReader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = int64(r.rng.Offset) + offset
	case io.SeekCurrent:
		target = int64(r.pos) + offset
	case io.SeekEnd:
		target = int64(r.rng.End()) + offset
	default:
		return 0, fmt.Errorf("streamtree: invalid whence %d", whence)
	}
	if target < int64(r.rng.Offset) || target > int64(r.rng.End()) {
		return 0, fmt.Errorf("%w: seek target %d outside range %+v", streamerr.ErrRangeInvalid, target, r.rng)
	}
	r.pos = uint64(target)
	return target - int64(r.rng.Offset), nil
}

func (r *RangeReader) Close() error { return r.f.Close() }

// StreamStorage is the top-level store: a directory of chunk payload files
// fanned out two hex characters deep, backed by one bbolt bucket per stream
// for node state.
type StreamStorage struct {
	chunksDir string
	shared    *SharedDB
}

// New opens or creates a StreamStorage rooted at dir.
func New(dir string) (*StreamStorage, error) {
	chunksDir := filepath.Join(dir, "chunks")
	if err := os.MkdirAll(chunksDir, 0755); err != nil {
		return nil, fmt.Errorf("streamstore: create chunks dir: %w", err)
	}
	shared, err := GetSharedDB(dir)
	if err != nil {
		return nil, err
	}
	return &StreamStorage{chunksDir: chunksDir, shared: shared}, nil
}

// Close releases this StreamStorage's reference to its shared database.
func (s *StreamStorage) Close() error {
	return s.shared.Close()
}

// chunkFile mirrors the teacher's two-level hex fan-out, using a
// BLAKE3 hash of the StreamId's bytes (rather than the id's own root hash)
// so that the file name is unrelated to the stream's content hash: a
// corrupted chunk file and a corrupted node bucket fail independently.
func (s *StreamStorage) chunkFile(id streamid.StreamId) string {
	b := id.ToBytes()
	sum := blake3.Sum256(b[:])
	h := hex.EncodeToString(sum[:])
	return filepath.Join(s.chunksDir, h[:2], h)
}

// Streams lists every stream id currently present.
func (s *StreamStorage) Streams() ([]streamid.StreamId, error) {
	names, err := s.shared.DB.buckets()
	if err != nil {
		return nil, err
	}
	ids := make([]streamid.StreamId, 0, len(names))
	for _, name := range names {
		id, err := streamid.FromBytes(name)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Contains reports whether id's chunk file exists.
func (s *StreamStorage) Contains(id streamid.StreamId) bool {
	_, err := os.Stat(s.chunkFile(id))
	return err == nil
}

// Get returns a handle to id's stream, creating its (sparse, zero-filled)
// chunk file and node bucket if this is the first time it has been seen.
func (s *StreamStorage) Get(id streamid.StreamId) (*Stream, error) {
	if err := s.shared.DB.createStream(id); err != nil {
		return nil, fmt.Errorf("streamstore: create bucket: %w", err)
	}
	path := s.chunkFile(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("streamstore: create chunk dir: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("streamstore: create chunk file: %w", err)
		}
		if err := f.Truncate(int64(id.Length())); err != nil {
			f.Close()
			return nil, fmt.Errorf("streamstore: truncate chunk file: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("streamstore: close chunk file: %w", err)
		}
	}
	store := newNodeStore(s.shared.DB, id)
	return &Stream{id: id, tree: merkletree.Open(store, id), chunkPath: path}, nil
}

// InsertPath hashes and stores the file at path, inferring its media type
// from its extension.
func (s *StreamStorage) InsertPath(path string) (*Stream, error) {
	mt, _ := streamid.FromExtension(strings.TrimPrefix(filepath.Ext(path), "."))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("streamstore: open %s: %w", path, err)
	}
	defer f.Close()
	return s.Insert(mt, f)
}

// twoWriters mirrors the original ingest path's dual-sink write: every byte
// read from the source is written to the chunk file and fed into the tree
// hasher in the same pass, so the whole stream is read exactly once.
type twoWriters struct {
	chunks io.Writer
	hasher io.Writer
}

func (w twoWriters) Write(p []byte) (int, error) {
	n, err := w.chunks.Write(p)
	if err != nil {
		return n, err
	}
	if _, err := w.hasher.Write(p[:n]); err != nil {
		return n, err
	}
	return n, nil
}

// Insert reads r to completion, hashing it into a verified tree and storing
// its bytes under a new stream id, returning a handle to the result.
func (s *StreamStorage) Insert(mt streamid.MediaType, r io.Reader) (*Stream, error) {
	var randomness [8]byte
	if _, err := rand.Read(randomness[:]); err != nil {
		return nil, fmt.Errorf("streamstore: generate temp file name: %w", err)
	}
	tmpPath := filepath.Join(s.chunksDir, hex.EncodeToString(randomness[:]))

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("streamstore: create temp chunk file: %w", err)
	}

	hasher := merkletree.NewTreeHasher()
	if _, err := io.Copy(twoWriters{chunks: tmp, hasher: hasher}, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: %v", streamerr.ErrIoFailure, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("streamstore: close temp chunk file: %w", err)
	}

	root, length, insertions, err := hasher.Finalize()
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	id := streamid.New(root, length, mt)

	if err := s.shared.DB.createStream(id); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("streamstore: create bucket: %w", err)
	}
	store := newNodeStore(s.shared.DB, id)
	for _, ins := range insertions {
		if err := store.Put(ins.Hash, ins.Value); err != nil {
			os.Remove(tmpPath)
			return nil, err
		}
	}

	path := s.chunkFile(id)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("streamstore: create chunk dir: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("streamstore: rename temp chunk file: %w", err)
	}

	return &Stream{id: id, tree: merkletree.Open(store, id), chunkPath: path}, nil
}

// Remove deletes id's node bucket and chunk file.
func (s *StreamStorage) Remove(id streamid.StreamId) error {
	if err := s.shared.DB.dropStream(id); err != nil {
		return fmt.Errorf("streamstore: drop bucket: %w", err)
	}
	if err := os.Remove(s.chunkFile(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("streamstore: remove chunk file: %w", err)
	}
	return nil
}
