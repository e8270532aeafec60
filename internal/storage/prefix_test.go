package storage

import (
	"errors"
	"testing"
)

func TestPrefixDB_Isolation(t *testing.T) {
	inner := NewMemory()
	a := NewPrefixDB(inner, "a/")
	b := NewPrefixDB(inner, "b/")

	a.Put([]byte("k"), []byte("from a"))
	b.Put([]byte("k"), []byte("from b"))

	got, _ := a.Get([]byte("k"))
	if string(got) != "from a" {
		t.Errorf("a.Get = %q", got)
	}
	raw, err := inner.Get([]byte("b/k"))
	if err != nil || string(raw) != "from b" {
		t.Errorf("inner b/k = %q, %v", raw, err)
	}
	if ok, _ := a.Has([]byte("missing")); ok {
		t.Error("Has(missing) = true")
	}
	if _, err := a.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v", err)
	}
}

func TestPrefixDB_ForEachStripsPrefix(t *testing.T) {
	inner := NewMemory()
	p := NewPrefixDB(inner, "ns/")
	p.Put([]byte("x/1"), []byte("1"))
	inner.Put([]byte("other/x/2"), []byte("2"))

	var keys []string
	p.ForEach([]byte("x/"), func(k, v []byte) error {
		keys = append(keys, string(k))
		return nil
	})
	if len(keys) != 1 || keys[0] != "x/1" {
		t.Errorf("keys = %v, want [x/1]", keys)
	}
}

func TestPrefixDB_DeleteAll(t *testing.T) {
	inner := NewMemory()
	p := NewPrefixDB(inner, "ns/")
	p.Put([]byte("a"), []byte("1"))
	p.Put([]byte("b"), []byte("2"))
	inner.Put([]byte("keep"), []byte("3"))

	if err := p.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll() error: %v", err)
	}
	if ok, _ := p.Has([]byte("a")); ok {
		t.Error("namespaced key survived DeleteAll")
	}
	if ok, _ := inner.Has([]byte("keep")); !ok {
		t.Error("DeleteAll removed a key outside the namespace")
	}
}

func TestPrefixDB_Batch(t *testing.T) {
	inner := NewMemory()
	p := NewPrefixDB(inner, "ns/")
	b := p.NewBatch()
	b.Put([]byte("k"), []byte("v"))
	if err := b.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if ok, _ := inner.Has([]byte("ns/k")); !ok {
		t.Error("batch write should land under the namespace")
	}
}

func TestPrefixDB_CloseIsNoop(t *testing.T) {
	inner := NewMemory()
	p := NewPrefixDB(inner, "ns/")
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := inner.Put([]byte("k"), []byte("v")); err != nil {
		t.Errorf("inner should still be usable: %v", err)
	}
}
