// Package snapshot caches opaque state blobs in a storage.DB.
//
// A snapshot is a whole-state copy written on every change and read back
// on start. It is a cache, not a ledger database: a missing or corrupt
// entry means starting fresh.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/Klingon-tech/peerledger/internal/log"
	"github.com/Klingon-tech/peerledger/internal/storage"
	"github.com/fxamacker/cbor/v2"
)

const keyPrefix = "snapshot/"

// Version is the envelope format written by Save.
const Version = 1

// ErrVersion is returned by Load for an envelope written by an
// incompatible format.
var ErrVersion = errors.New("unsupported snapshot version")

// Envelope wraps an encoded payload with its format version and save time.
type Envelope struct {
	Version uint16          `cbor:"version"`
	SavedAt int64           `cbor:"saved_at"` // Unix milliseconds
	Payload cbor.RawMessage `cbor:"payload"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: build cbor enc mode: %v", err))
	}
	encMode = em
}

// Store persists named snapshots under the "snapshot/" prefix.
type Store struct {
	db *storage.PrefixDB
}

// New creates a Store backed by db.
func New(db storage.DB) *Store {
	return &Store{db: storage.NewPrefixDB(db, keyPrefix)}
}

// Save encodes v and stores it under name, replacing any previous value.
func (s *Store) Save(name string, v any) error {
	payload, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", name, err)
	}
	env := Envelope{
		Version: Version,
		SavedAt: time.Now().UnixMilli(),
		Payload: payload,
	}
	data, err := encMode.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode snapshot envelope: %w", err)
	}
	if err := s.db.Put([]byte(name), data); err != nil {
		return fmt.Errorf("store snapshot %q: %w", name, err)
	}
	log.Storage.Debug().Str("name", name).Int("bytes", len(data)).Msg("Snapshot saved")
	return nil
}

// Load decodes the snapshot stored under name into v. It reports false
// with a nil error when no snapshot exists.
func (s *Store) Load(name string, v any) (bool, error) {
	data, err := s.db.Get([]byte(name))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read snapshot %q: %w", name, err)
	}

	var env Envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return false, fmt.Errorf("decode snapshot envelope: %w", err)
	}
	if env.Version != Version {
		return false, fmt.Errorf("%w: %d", ErrVersion, env.Version)
	}
	if err := cbor.Unmarshal(env.Payload, v); err != nil {
		return false, fmt.Errorf("decode snapshot %q: %w", name, err)
	}
	log.Storage.Debug().
		Str("name", name).
		Time("saved_at", time.UnixMilli(env.SavedAt)).
		Msg("Snapshot loaded")
	return true, nil
}

// Delete removes the snapshot stored under name.
func (s *Store) Delete(name string) error {
	return s.db.Delete([]byte(name))
}

// Names lists the stored snapshot names.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.ForEach(nil, func(key, _ []byte) error {
		names = append(names, string(key))
		return nil
	})
	return names, err
}

// Clear removes every snapshot.
func (s *Store) Clear() error {
	return s.db.DeleteAll()
}
