package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/javanhut/streamtree"
	"github.com/javanhut/streamtree/internal/streamid"
)

// parseRange parses "offset:length" (e.g. "1024:4096") into a Range.
func parseRange(s string) (streamtree.Range, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return streamtree.Range{}, fmt.Errorf("invalid --range %q, want offset:length", s)
	}
	offset, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return streamtree.Range{}, fmt.Errorf("invalid --range offset %q: %w", parts[0], err)
	}
	length, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return streamtree.Range{}, fmt.Errorf("invalid --range length %q: %w", parts[1], err)
	}
	return streamtree.NewRange(offset, length), nil
}

func parseStreamId(s string) (streamtree.StreamId, error) {
	id, err := streamid.FromBase64(s)
	if err != nil {
		return streamtree.StreamId{}, fmt.Errorf("invalid stream id %q: %w", s, err)
	}
	return id, nil
}
