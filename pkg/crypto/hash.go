// Package crypto provides hashing, message authentication and key
// primitives for the ledger.
package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// encMode is the canonical encoding used for content hashing.
// Core deterministic encoding sorts map keys and uses the shortest
// integer forms, so equal values always encode to equal bytes.
var encMode cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("crypto: build cbor enc mode: %v", err))
	}
	encMode = em
}

// HashSize is the length of a hex-encoded hash.
const HashSize = 64

// Canonical returns the canonical CBOR encoding of v.
func Canonical(v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical encode: %w", err)
	}
	return b, nil
}

// Hash computes the BLAKE3-256 content hash of v's canonical encoding,
// hex-encoded. v must be CBOR-encodable; every ledger type is.
func Hash(v any) string {
	b, err := Canonical(v)
	if err != nil {
		panic(err)
	}
	return HashBytes(b)
}

// HashBytes computes the hex-encoded BLAKE3-256 hash of raw bytes.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashString hashes the raw bytes of s.
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// HashConcat hashes the concatenation of two hex hashes.
// Used for building merkle trees.
func HashConcat(a, b string) string {
	return HashString(a + b)
}
