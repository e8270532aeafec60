package snapshot

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/Klingon-tech/peerledger/internal/storage"
	"github.com/fxamacker/cbor/v2"
)

type record struct {
	ID      int               `cbor:"id"`
	Name    string            `cbor:"name"`
	Amounts []uint64          `cbor:"amounts"`
	Labels  map[string]string `cbor:"labels"`
}

func testStore(t *testing.T, s *Store) {
	t.Helper()

	t.Run("LoadMissing", func(t *testing.T) {
		var r record
		ok, err := s.Load("missing", &r)
		if err != nil || ok {
			t.Fatalf("Load(missing) = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		want := []record{
			{ID: 1, Name: "alpha", Amounts: []uint64{100, 30}, Labels: map[string]string{"k": "v"}},
			{ID: 2, Name: "beta", Amounts: []uint64{}, Labels: map[string]string{}},
		}
		if err := s.Save("peers", want); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		var got []record
		ok, err := s.Load("peers", &got)
		if err != nil || !ok {
			t.Fatalf("Load() = %v, %v", ok, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Load() = %+v, want %+v", got, want)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := s.Save("peers", []record{{ID: 9}}); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		var got []record
		if _, err := s.Load("peers", &got); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if len(got) != 1 || got[0].ID != 9 {
			t.Errorf("Load() after overwrite = %+v", got)
		}
	})

	t.Run("NamesAndClear", func(t *testing.T) {
		if err := s.Save("other", record{ID: 3}); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		names, err := s.Names()
		if err != nil {
			t.Fatalf("Names() error: %v", err)
		}
		sort.Strings(names)
		if !reflect.DeepEqual(names, []string{"other", "peers"}) {
			t.Errorf("Names() = %v", names)
		}
		if err := s.Clear(); err != nil {
			t.Fatalf("Clear() error: %v", err)
		}
		var r record
		if ok, _ := s.Load("other", &r); ok {
			t.Error("snapshot still present after Clear")
		}
	})
}

func TestStore_Memory(t *testing.T) {
	testStore(t, New(storage.NewMemory()))
}

func TestStore_Badger(t *testing.T) {
	db, err := storage.NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	defer db.Close()
	testStore(t, New(db))
}

func TestStore_SharedDBIsolation(t *testing.T) {
	db := storage.NewMemory()
	if err := db.Put([]byte("unrelated"), []byte("x")); err != nil {
		t.Fatal(err)
	}
	s := New(db)
	if err := s.Save("peers", record{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := db.Has([]byte("unrelated")); !ok {
		t.Error("Clear() removed a key outside the snapshot namespace")
	}
}

func TestStore_VersionMismatch(t *testing.T) {
	db := storage.NewMemory()
	data, err := cbor.Marshal(Envelope{Version: Version + 1, Payload: cbor.RawMessage{0xf6}})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Put([]byte(keyPrefix+"peers"), data); err != nil {
		t.Fatal(err)
	}
	var r record
	if _, err := New(db).Load("peers", &r); !errors.Is(err, ErrVersion) {
		t.Errorf("Load() err = %v, want ErrVersion", err)
	}
}
