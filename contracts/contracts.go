// Package contracts documents, in Go interfaces only, the shape external
// collaborators outside this module are expected to satisfy or consume
// against streamtree's store. Nothing in this module calls these
// interfaces; an HTTP transport, a FUSE adapter, a media packager, or a
// search sidecar would implement or call against them, each living in its
// own module.
package contracts

import (
	"io"

	"github.com/javanhut/streamtree/internal/rangespan"
	"github.com/javanhut/streamtree/internal/streamid"
)

// Transport is what an HTTP (or other RPC) layer in front of a Store would
// need to expose stream ingest and slicing to remote callers.
type Transport interface {
	Insert(mediaType string, r io.Reader) (streamid.StreamId, error)
	EncodeRange(id streamid.StreamId, r rangespan.Range) (io.Reader, error)
	DecodeRange(id streamid.StreamId, r rangespan.Range, slice io.Reader) error
}

// Filesystem is what a FUSE (or similar virtual-filesystem) adapter would
// need to present streams as ordinary files.
type Filesystem interface {
	ReadAt(id streamid.StreamId, p []byte, off int64) (int, error)
	Attr(id streamid.StreamId) (size int64, mediaType string, err error)
}

// Packager is what a media packager shelling out to an external tool
// (transcoders, thumbnailers) would need: a way to view a stream as a plain
// file on disk, and a way to ingest that tool's output back in.
type Packager interface {
	// SourcePath materializes id as a file at the returned path, valid
	// until the returned cleanup func is called.
	SourcePath(id streamid.StreamId) (path string, cleanup func(), err error)
	Ingest(path string) (streamid.StreamId, error)
}

// SearchIndexer is what a full-text search sidecar would need to stay in
// sync with a Store's contents.
type SearchIndexer interface {
	Index(id streamid.StreamId, mediaType string, text io.Reader) error
	Remove(id streamid.StreamId) error
}
