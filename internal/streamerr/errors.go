// Package streamerr defines the error taxonomy shared by the tree engine
// and the storage layer, matching spec.md §7. Hash mismatches, missing
// nodes, malformed input, unheld reads and most I/O failures are wrapped
// with fmt.Errorf("%w") around one of these sentinels, checkable with
// errors.Is. Some errors carry no sentinel: misuse such as encoding from a
// non-root node or writing to a finalized hasher, and some storage-layer
// failures (bucket creation, chunk-file setup) that wrap the underlying
// error directly.
package streamerr

import "errors"

var (
	// ErrCryptoMismatch means a parent or chunk hash did not match its
	// expected value during decode. Fatal for that operation; callers must
	// not retry against the same slice.
	ErrCryptoMismatch = errors.New("streamtree: hash does not match expected value")

	// ErrMissingNode means an encode was requested through a node that is
	// Missing. Callers should consult Tree.MissingRanges.
	ErrMissingNode = errors.New("streamtree: range is not held (missing node)")

	// ErrIoFailure wraps an underlying file or key-value store failure.
	// The core does not retry or partially succeed silently.
	ErrIoFailure = errors.New("streamtree: i/o failure")

	// ErrFormatError means a malformed StreamId, slice header, or
	// unsupported media-type code.
	ErrFormatError = errors.New("streamtree: malformed input")

	// ErrRangeInvalid means ReadRange was called for a range whose chunks
	// are not all Data; callers should fetch and decode the slice first.
	ErrRangeInvalid = errors.New("streamtree: requested range is not fully held")
)
