package rangespan

import "testing"

func TestIntersects(t *testing.T) {
	cases := []struct {
		a, b Range
	}{
		{New(0, 0), New(0, 0)},
		{New(2, 5), New(1, 6)},
		{New(2, 5), New(3, 4)},
		{New(2, 4), New(3, 5)},
		{New(3, 5), New(2, 4)},
	}
	for _, c := range cases {
		if !c.a.Intersects(c.b) {
			t.Errorf("%+v and %+v should intersect", c.a, c.b)
		}
	}
}

func TestDoesNotIntersect(t *testing.T) {
	cases := []struct {
		a, b Range
	}{
		{New(0, 0), New(1, 0)},
		{New(0, 1), New(2, 1)},
		{New(2, 5), New(0, 1)},
	}
	for _, c := range cases {
		if c.a.Intersects(c.b) {
			t.Errorf("%+v and %+v should not intersect", c.a, c.b)
		}
	}
}

func TestSplitBaoRule(t *testing.T) {
	// length 3*ChunkSize+1 splits after 2 chunks (2*ChunkSize bytes),
	// leaving ChunkSize+1 on the right.
	r := New(0, 3*ChunkSize+1)
	left, right, ok := r.Split()
	if !ok {
		t.Fatal("expected a split")
	}
	if left != New(0, 2*ChunkSize) {
		t.Errorf("left = %+v", left)
	}
	if right != New(2*ChunkSize, ChunkSize+1) {
		t.Errorf("right = %+v", right)
	}
}

func TestSplitAtomicBelowOrAtChunkSize(t *testing.T) {
	for _, n := range []uint64{0, 1, ChunkSize - 1, ChunkSize} {
		r := New(0, n)
		if _, _, ok := r.Split(); ok {
			t.Errorf("length %d should not split", n)
		}
	}
}

func TestNumChunks(t *testing.T) {
	cases := []struct {
		length uint64
		want   uint64
	}{
		{0, 1},
		{1, 1},
		{ChunkSize, 1},
		{ChunkSize + 1, 2},
		{2 * ChunkSize, 2},
		{2*ChunkSize + 1, 3},
	}
	for _, c := range cases {
		r := New(0, c.length)
		if got := r.NumChunks(); got != c.want {
			t.Errorf("length %d: NumChunks() = %d, want %d", c.length, got, c.want)
		}
	}
}

func TestEncodedSizeIsUpperBound(t *testing.T) {
	r := New(0, 2*ChunkSize+1)
	// 8-byte header + 2 parent pairs (3 chunks -> 2 parents) + 3 chunks
	// worth of bytes, even though the last chunk is only 1 byte.
	want := uint64(8 + 2*64 + 3*ChunkSize)
	if got := r.EncodedSize(); got != want {
		t.Errorf("EncodedSize() = %d, want %d", got, want)
	}
}

func TestSplitAt(t *testing.T) {
	r := New(0, 3000)
	first, second, ok := r.SplitAt(1)
	if !ok {
		t.Fatal("expected split")
	}
	if first != New(0, ChunkSize) || second != New(ChunkSize, 3000-ChunkSize) {
		t.Errorf("first=%+v second=%+v", first, second)
	}
	if _, _, ok := New(0, ChunkSize).SplitAt(1); ok {
		t.Error("splitting exactly at the range's own length should fail")
	}
}
