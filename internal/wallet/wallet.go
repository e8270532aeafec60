// Package wallet holds peer wallets and their key material.
package wallet

import (
	"fmt"

	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/Klingon-tech/peerledger/pkg/tx"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Wallet is a peer's key pair, derived address and cached UTXOs.
// UTXOs is a view refreshed from the peer's chain, not a source of truth.
type Wallet struct {
	PublicKey  string       `json:"public_key" cbor:"public_key"`
	PrivateKey string       `json:"private_key" cbor:"private_key"`
	Address    string       `json:"address" cbor:"address"`
	UTXOs      []types.UTXO `json:"utxos" cbor:"utxos"`
	Port       int          `json:"port" cbor:"port"`
}

// New creates a wallet for kp listening on port.
func New(kp crypto.KeyPair, port int) *Wallet {
	return &Wallet{
		PublicKey:  kp.PublicKey,
		PrivateKey: kp.PrivateKey,
		Address:    crypto.AddressFromPubKey(kp.PublicKey),
		UTXOs:      []types.UTXO{},
		Port:       port,
	}
}

// Generate creates a wallet with a fresh random key pair.
func Generate(port int) (*Wallet, error) {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate wallet: %w", err)
	}
	return New(kp, port), nil
}

// FromMnemonic derives the wallet at account index from a BIP-39 mnemonic.
func FromMnemonic(mnemonic, passphrase string, index uint32, port int) (*Wallet, error) {
	kp, err := DeriveKeyPair(mnemonic, passphrase, index)
	if err != nil {
		return nil, err
	}
	return New(kp, port), nil
}

// Sender returns the spending identity used to build transactions.
func (w *Wallet) Sender() tx.Sender {
	return tx.Sender{Address: w.Address, PublicKey: w.PublicKey}
}

// Balance sums the cached UTXOs.
func (w *Wallet) Balance() uint64 {
	var total uint64
	for _, u := range w.UTXOs {
		total += u.Amount
	}
	return total
}

// SetUTXOs replaces the cached UTXOs with those paying the wallet address.
func (w *Wallet) SetUTXOs(utxos []types.UTXO) {
	owned := make([]types.UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Address == w.Address {
			owned = append(owned, u)
		}
	}
	w.UTXOs = owned
}

// Pay builds a transfer of amount to recipient from the cached UTXOs.
func (w *Wallet) Pay(recipient string, amount uint64) (*tx.Transaction, error) {
	return tx.Build(w.Sender(), recipient, amount, w.UTXOs)
}

// Clone returns a deep copy of w.
func (w *Wallet) Clone() *Wallet {
	if w == nil {
		return nil
	}
	c := *w
	c.UTXOs = append([]types.UTXO(nil), w.UTXOs...)
	return &c
}
