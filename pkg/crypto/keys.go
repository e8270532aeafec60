package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // address format requires RIPEMD-160
)

// AddressSize is the length of a hex-encoded address.
const AddressSize = 40

// KeyPair holds a hex-encoded secp256k1 key pair.
type KeyPair struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// GenerateKeyPair creates a new random secp256k1 key pair.
func GenerateKeyPair() (KeyPair, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate key: %w", err)
	}
	defer key.Zero()
	return keyPairFrom(key), nil
}

// KeyPairFromPrivate rebuilds a key pair from a 32-byte secret.
func KeyPairFromPrivate(b []byte) (KeyPair, error) {
	if len(b) != 32 {
		return KeyPair{}, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	key := secp256k1.PrivKeyFromBytes(b)
	defer key.Zero()
	return keyPairFrom(key), nil
}

func keyPairFrom(key *secp256k1.PrivateKey) KeyPair {
	return KeyPair{
		PublicKey:  hex.EncodeToString(key.PubKey().SerializeUncompressed()),
		PrivateKey: hex.EncodeToString(key.Serialize()),
	}
}

// AddressFromPubKey derives an address from a hex public key.
// Address = hex(RIPEMD160(pubkey string)).
func AddressFromPubKey(pubKey string) string {
	h := ripemd160.New()
	h.Write([]byte(pubKey))
	return hex.EncodeToString(h.Sum(nil))[:AddressSize]
}
