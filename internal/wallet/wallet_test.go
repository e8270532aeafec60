package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/Klingon-tech/peerledger/pkg/tx"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerate(t *testing.T) {
	w, err := Generate(8001)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(w.PublicKey) != 130 || len(w.PrivateKey) != 64 {
		t.Errorf("key lengths pub=%d priv=%d", len(w.PublicKey), len(w.PrivateKey))
	}
	if len(w.Address) != 40 {
		t.Errorf("address length = %d, want 40", len(w.Address))
	}
	if w.Port != 8001 || len(w.UTXOs) != 0 {
		t.Errorf("wallet = %+v", w)
	}
}

func TestGenerateMnemonic(t *testing.T) {
	m1, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	if n := len(strings.Fields(m1)); n != 24 {
		t.Errorf("word count = %d, want 24", n)
	}
	if !ValidateMnemonic(m1) {
		t.Error("generated mnemonic should validate")
	}
	m2, _ := GenerateMnemonic()
	if m1 == m2 {
		t.Error("two generated mnemonics should not be identical")
	}
}

func TestSeedFromMnemonic_KnownVector(t *testing.T) {
	seed, err := SeedFromMnemonic(testMnemonic, "TREZOR")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	want, _ := hex.DecodeString("c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04")
	if !bytes.Equal(seed, want) {
		t.Errorf("seed = %x, want %x", seed, want)
	}
}

func TestSeedFromMnemonic_Invalid(t *testing.T) {
	if _, err := SeedFromMnemonic("not a real mnemonic", ""); err == nil {
		t.Error("expected error for invalid mnemonic")
	}
}

func TestFromMnemonic_Deterministic(t *testing.T) {
	a, err := FromMnemonic(testMnemonic, "", 0, 8000)
	if err != nil {
		t.Fatalf("FromMnemonic() error: %v", err)
	}
	b, _ := FromMnemonic(testMnemonic, "", 0, 8000)
	if a.Address != b.Address || a.PrivateKey != b.PrivateKey {
		t.Error("same mnemonic and index should derive the same wallet")
	}
	c, _ := FromMnemonic(testMnemonic, "", 1, 8001)
	if c.Address == a.Address {
		t.Error("different index should derive a different wallet")
	}
}

func TestSetUTXOsAndBalance(t *testing.T) {
	w, _ := Generate(8000)
	w.SetUTXOs([]types.UTXO{
		{TxID: "a", Address: w.Address, Amount: 40},
		{TxID: "b", Address: "someone", Amount: 500},
		{TxID: "c", OutputIndex: 1, Address: w.Address, Amount: 2},
	})
	if len(w.UTXOs) != 2 {
		t.Errorf("UTXOs = %d, want 2", len(w.UTXOs))
	}
	if w.Balance() != 42 {
		t.Errorf("Balance() = %d, want 42", w.Balance())
	}
}

func TestPay(t *testing.T) {
	w, _ := Generate(8000)
	w.SetUTXOs([]types.UTXO{{TxID: "a", Address: w.Address, Amount: 100}})

	payment, err := w.Pay("bob", 30)
	if err != nil {
		t.Fatalf("Pay() error: %v", err)
	}
	if payment.Outputs[1].Address != w.Address || payment.Outputs[1].Amount != 70 {
		t.Errorf("change = %+v", payment.Outputs[1])
	}
	if _, err := w.Pay("bob", 101); !errors.Is(err, tx.ErrInsufficientFunds) {
		t.Errorf("overspend err = %v", err)
	}
}

func TestClone(t *testing.T) {
	w, _ := Generate(8000)
	w.SetUTXOs([]types.UTXO{{TxID: "a", Address: w.Address, Amount: 1}})
	c := w.Clone()
	c.UTXOs[0].Amount = 99
	if w.UTXOs[0].Amount != 1 {
		t.Error("clone should not share UTXOs")
	}
}
