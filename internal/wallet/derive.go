package wallet

import (
	"fmt"

	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// BIP-44 derivation: m/44'/CoinType'/0'/0/index.
const (
	PurposeBIP44 = bip32.FirstHardenedChild + 44
	CoinType     = bip32.FirstHardenedChild + 8000

	// MnemonicEntropyBits gives 24-word mnemonics.
	MnemonicEntropyBits = 256
	// SeedSize is the BIP-39 seed length in bytes.
	SeedSize = 64
)

// GenerateMnemonic creates a new 24-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks word list and checksum.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives the 512-bit BIP-39 seed.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}
	return seed, nil
}

// DeriveKeyPair derives the secp256k1 key pair at m/44'/CoinType'/0'/0/index.
func DeriveKeyPair(mnemonic, passphrase string, index uint32) (crypto.KeyPair, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return crypto.KeyPair{}, err
	}
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return crypto.KeyPair{}, fmt.Errorf("create master key: %w", err)
	}
	for _, idx := range []uint32{PurposeBIP44, CoinType, bip32.FirstHardenedChild, 0, index} {
		key, err = key.NewChildKey(idx)
		if err != nil {
			return crypto.KeyPair{}, fmt.Errorf("derive child %d: %w", idx, err)
		}
	}
	// bip32 may return the scalar with a leading zero byte or trimmed.
	raw := key.Key
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	if len(raw) < 32 {
		padded := make([]byte, 32)
		copy(padded[32-len(raw):], raw)
		raw = padded
	}
	return crypto.KeyPairFromPrivate(raw)
}
