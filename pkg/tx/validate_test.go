package tx

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/peerledger/pkg/types"
)

type mapProvider map[types.Outpoint]types.UTXO

func (m mapProvider) GetUTXO(op types.Outpoint) (types.UTXO, bool) {
	u, ok := m[op]
	return u, ok
}

const testPub = "04aabbcc"

func fundedProvider(amount uint64) (mapProvider, types.Outpoint) {
	op := types.Outpoint{TxID: "funding", Index: 0}
	return mapProvider{op: {TxID: "funding", OutputIndex: 0, Address: "alice", Amount: amount}}, op
}

func buildPayment(op types.Outpoint, to string, amount, change uint64) *Transaction {
	b := NewBuilder(KindRegular).AddInput(op).AddOutput(to, amount)
	if change > 0 {
		b.AddOutput("alice", change)
	}
	if err := b.SignPrimary(testPub, testPub); err != nil {
		panic(err)
	}
	return b.Build()
}

func TestVerify_Valid(t *testing.T) {
	utxos, op := fundedProvider(100)
	tx := buildPayment(op, "bob", 30, 70)
	if err := Verify(tx, utxos); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !IsValid(tx, utxos) {
		t.Error("IsValid should be true")
	}
}

func TestVerify_Coinbase(t *testing.T) {
	cb := NewCoinbase("miner", 10)
	if err := Verify(cb, mapProvider{}); err != nil {
		t.Errorf("coinbase should verify: %v", err)
	}
	cb.Inputs = append(cb.Inputs, Input{TxID: "x"})
	if !errors.Is(Verify(cb, mapProvider{}), ErrCoinbaseInputs) {
		t.Error("coinbase with inputs should be rejected")
	}
}

func TestVerify_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tx *Transaction)
		utxos  func() mapProvider
		want   error
	}{
		{
			name:   "unknown utxo",
			mutate: func(tx *Transaction) {},
			utxos:  func() mapProvider { return mapProvider{} },
			want:   ErrUnknownUTXO,
		},
		{
			name:   "tampered amount",
			mutate: func(tx *Transaction) { tx.Outputs[0].Amount = 31 },
			want:   ErrSignatureInvalid,
		},
		{
			name:   "tampered address",
			mutate: func(tx *Transaction) { tx.Outputs[0].Address = "mallory" },
			want:   ErrSignatureInvalid,
		},
		{
			name:   "wrong key",
			mutate: func(tx *Transaction) { tx.Inputs[0].PublicKey = "04other" },
			want:   ErrSignatureInvalid,
		},
		{
			name:   "value created",
			mutate: func(tx *Transaction) { tx.Outputs[1].Amount = 71 },
			want:   ErrValueCreated,
		},
		{
			name:   "no inputs",
			mutate: func(tx *Transaction) { tx.Inputs = nil },
			want:   ErrNoInputs,
		},
		{
			name:   "no outputs",
			mutate: func(tx *Transaction) { tx.Outputs = nil },
			want:   ErrNoOutputs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			utxos, op := fundedProvider(100)
			if tt.utxos != nil {
				utxos = tt.utxos()
			}
			tx := buildPayment(op, "bob", 30, 70)
			tt.mutate(tx)
			if err := Verify(tx, utxos); !errors.Is(err, tt.want) {
				t.Errorf("Verify() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerify_ChangeNotSigned(t *testing.T) {
	// Only the first output is covered; change may be redirected.
	utxos, op := fundedProvider(100)
	tx := buildPayment(op, "bob", 30, 70)
	tx.Outputs[1].Address = "mallory"
	if err := Verify(tx, utxos); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerify_Deployment(t *testing.T) {
	utxos, op := fundedProvider(100)
	call := &ContractCall{
		Code:    "token",
		Method:  "deploy",
		Params:  []types.Value{types.Text("token"), types.Text("Coin"), types.Text("alice")},
		Address: "c0ffee",
		Fee:     10,
	}
	b := NewBuilder(KindContract).AddInput(op).AddOutput("alice", 90).SetContract(call)
	if err := b.Sign(testPub, testPub, call.Address, call.Fee); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tx := b.Build()
	if err := Verify(tx, utxos); err != nil {
		t.Fatalf("Verify deployment: %v", err)
	}

	tx.Contract.Fee = 5
	if !errors.Is(Verify(tx, utxos), ErrSignatureInvalid) {
		t.Error("changed fee should invalidate signature")
	}
}

func TestVerify_ZeroValueWithoutInputs(t *testing.T) {
	// A regular transaction must spend something, even when it moves nothing.
	tests := []struct {
		name    string
		outputs []Output
	}{
		{"no outputs", nil},
		{"zero output", []Output{{Address: "bob", Amount: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Kind: KindRegular, Outputs: tt.outputs}
			if err := Verify(tx, mapProvider{}); !errors.Is(err, ErrNoInputs) {
				t.Errorf("Verify() = %v, want %v", err, ErrNoInputs)
			}
			if IsValid(tx, mapProvider{}) {
				t.Error("IsValid() = true, want false")
			}
		})
	}
}
