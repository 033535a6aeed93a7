package streamtree

import (
	"bytes"
	"io"
	"testing"
)

func TestStoreInsertListGetRemove(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	data := bytes.Repeat([]byte{0x11}, 3000)
	stream, err := store.Insert(MediaType(0), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	ids, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 1 || !ids[0].Equal(stream.Id()) {
		t.Fatalf("List = %v, want [%v]", ids, stream.Id())
	}

	got, err := store.Get(stream.Id())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	r, err := got.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer r.Close()
	readBack, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(readBack, data) {
		t.Fatal("read-back bytes do not match inserted data")
	}

	if err := store.Remove(stream.Id()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if store.Contains(stream.Id()) {
		t.Fatal("expected Contains to report false after Remove")
	}
}
