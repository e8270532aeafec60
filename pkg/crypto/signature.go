package crypto

import (
	"crypto/hmac"
	"encoding/hex"
	"hash"

	"github.com/zeebo/blake3"
)

// Sign authenticates message with key: HMAC-BLAKE3(key, HashString(message)).
//
// This is a keyed MAC, not an asymmetric signature. Anyone holding the
// key string can produce a matching tag.
func Sign(message, key string) string {
	mac := hmac.New(newBlake3, []byte(key))
	mac.Write([]byte(HashString(message)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the MAC of message under key and compares it with
// signature in constant time.
func Verify(message, signature, key string) bool {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(newBlake3, []byte(key))
	mac.Write([]byte(HashString(message)))
	return hmac.Equal(mac.Sum(nil), want)
}

func newBlake3() hash.Hash {
	return blake3.New()
}
