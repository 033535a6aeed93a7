// Package streamid implements the stable, self-describing identifier for a
// stored stream: version, BLAKE3 root hash, length, and media-type code.
package streamid

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/javanhut/streamtree/internal/streamerr"
)

// Hash is a BLAKE3-256 root hash, matching the teacher's cas.Hash shape.
type Hash [32]byte

// String returns the hexadecimal representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

const (
	// currentVersion is the only StreamId encoding version this module
	// understands; non-zero version bytes are rejected as FormatError.
	currentVersion = 0

	// byteLength is the fixed-length binary encoding:
	// version(1) || hash(32) || length(8, LE) || mime(2, LE).
	byteLength = 43

	// base64Length is byteLength URL-safe base64-encoded without padding.
	base64Length = 58
)

// StreamId is the stable identifier for a stored stream: a version byte
// (currently always 0), the stream's BLAKE3 root hash, its byte length, and
// a 16-bit media-type code. Equality and hashing use all four fields.
type StreamId struct {
	version uint8
	hash    Hash
	length  uint64
	mime    uint16
}

// New constructs a StreamId from its root hash, length, and media type.
func New(hash Hash, length uint64, mime MediaType) StreamId {
	return StreamId{version: currentVersion, hash: hash, length: length, mime: uint16(mime)}
}

func (id StreamId) Version() uint8 { return id.version }
func (id StreamId) Hash() Hash     { return id.hash }
func (id StreamId) Length() uint64 { return id.length }

// MediaType returns the stream's media type, or ApplicationOctetStream if
// the embedded code is not in the current table (forward-compatible
// degrade, matching the original's Mime::from_u16().unwrap_or_default()).
func (id StreamId) MediaType() MediaType {
	if mt, ok := MediaTypeFromCode(id.mime); ok {
		return mt
	}
	return ApplicationOctetStream
}

// ToBytes encodes the StreamId into its fixed 43-byte binary form.
func (id StreamId) ToBytes() [byteLength]byte {
	var out [byteLength]byte
	out[0] = id.version
	copy(out[1:33], id.hash[:])
	binary.LittleEndian.PutUint64(out[33:41], id.length)
	binary.LittleEndian.PutUint16(out[41:43], id.mime)
	return out
}

// FromBytes decodes a StreamId from its fixed 43-byte binary form. It fails
// on a length mismatch or a non-zero version byte.
func FromBytes(b []byte) (StreamId, error) {
	if len(b) != byteLength {
		return StreamId{}, fmt.Errorf("%w: invalid byte length %d, want %d", streamerr.ErrFormatError, len(b), byteLength)
	}
	if b[0] != currentVersion {
		return StreamId{}, fmt.Errorf("%w: unsupported version %d", streamerr.ErrFormatError, b[0])
	}
	var id StreamId
	id.version = b[0]
	copy(id.hash[:], b[1:33])
	id.length = binary.LittleEndian.Uint64(b[33:41])
	id.mime = binary.LittleEndian.Uint16(b[41:43])
	return id, nil
}

var base64Encoding = base64.URLEncoding.WithPadding(base64.NoPadding)

// ToBase64 renders the StreamId as its canonical URL-safe, unpadded base64
// text form (58 characters).
func (id StreamId) ToBase64() string {
	b := id.ToBytes()
	return base64Encoding.EncodeToString(b[:])
}

// FromBase64 parses a StreamId from its canonical text form, rejecting any
// string whose length is not exactly 58 characters.
func FromBase64(s string) (StreamId, error) {
	if len(s) != base64Length {
		return StreamId{}, fmt.Errorf("%w: invalid base64 length %d, want %d", streamerr.ErrFormatError, len(s), base64Length)
	}
	raw, err := base64Encoding.DecodeString(s)
	if err != nil {
		return StreamId{}, fmt.Errorf("%w: base64 decode: %v", streamerr.ErrFormatError, err)
	}
	return FromBytes(raw)
}

func (id StreamId) String() string {
	return id.ToBase64()
}

// Equal reports whether two StreamIds are identical across all four fields.
func (id StreamId) Equal(other StreamId) bool {
	return id == other
}
