package crypto

import (
	"strings"
	"testing"
)

func TestSign_Verify(t *testing.T) {
	sig := Sign("tx1:0:addr:30", "key-material")
	if !Verify("tx1:0:addr:30", sig, "key-material") {
		t.Fatal("Verify should accept signature made with the same key")
	}
}

func TestSign_Deterministic(t *testing.T) {
	if Sign("msg", "k") != Sign("msg", "k") {
		t.Error("Sign is not deterministic")
	}
}

func TestVerify_Rejects(t *testing.T) {
	sig := Sign("message", "key")

	tests := []struct {
		name string
		msg  string
		sig  string
		key  string
	}{
		{"wrong message", "other", sig, "key"},
		{"wrong key", "message", sig, "other-key"},
		{"tampered signature", "message", strings.Repeat("0", len(sig)), "key"},
		{"non-hex signature", "message", "zz", "key"},
		{"empty signature", "message", "", "key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Verify(tt.msg, tt.sig, tt.key) {
				t.Error("Verify should reject")
			}
		})
	}
}

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	// Uncompressed secp256k1 public key: 65 bytes.
	if len(kp.PublicKey) != 130 {
		t.Errorf("public key hex length = %d, want 130", len(kp.PublicKey))
	}
	if len(kp.PrivateKey) != 64 {
		t.Errorf("private key hex length = %d, want 64", len(kp.PrivateKey))
	}

	kp2, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	if kp.PrivateKey == kp2.PrivateKey {
		t.Error("two generated keys should not be identical")
	}
}

func TestKeyPairFromPrivate(t *testing.T) {
	secret := make([]byte, 32)
	secret[31] = 1
	kp, err := KeyPairFromPrivate(secret)
	if err != nil {
		t.Fatalf("KeyPairFromPrivate() error: %v", err)
	}
	// Private key 1 yields the curve generator point G.
	wantPub := "04" +
		"79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" +
		"483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"
	if kp.PublicKey != wantPub {
		t.Errorf("public key = %s, want generator point", kp.PublicKey)
	}

	if _, err := KeyPairFromPrivate(make([]byte, 16)); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestAddressFromPubKey(t *testing.T) {
	addr := AddressFromPubKey("04abcdef")
	if len(addr) != AddressSize {
		t.Fatalf("address length = %d, want %d", len(addr), AddressSize)
	}
	if addr != AddressFromPubKey("04abcdef") {
		t.Error("address derivation is not deterministic")
	}
	if addr == AddressFromPubKey("04abcdee") {
		t.Error("different keys should give different addresses")
	}
	// RIPEMD-160 of the empty string.
	if got := AddressFromPubKey(""); got != "9c1185a5c5e9fc54612808977ee8f548b2258d31" {
		t.Errorf("AddressFromPubKey(\"\") = %s", got)
	}
}
