package tx

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Builder constructs transactions incrementally.
type Builder struct {
	tx *Transaction
}

// NewBuilder creates a new transaction builder.
func NewBuilder(kind Kind) *Builder {
	return &Builder{
		tx: &Transaction{Kind: kind},
	}
}

// AddInput adds an input referencing a previous output.
func (b *Builder) AddInput(prevOut types.Outpoint) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, Input{TxID: prevOut.TxID, OutputIndex: prevOut.Index})
	return b
}

// AddOutput adds an output paying amount to address.
func (b *Builder) AddOutput(address string, amount uint64) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, Output{Address: address, Amount: amount})
	return b
}

// SetContract attaches a contract call payload.
func (b *Builder) SetContract(call *ContractCall) *Builder {
	b.tx.Contract = call
	return b
}

// SetTimestamp overrides the build timestamp (unix milliseconds).
func (b *Builder) SetTimestamp(ms int64) *Builder {
	b.tx.Timestamp = ms
	return b
}

// Sign signs every input over (outpoint, address, amount) with key and
// records pubKey on each input.
func (b *Builder) Sign(key, pubKey, address string, amount uint64) error {
	if key == "" {
		return fmt.Errorf("sign tx: empty key")
	}
	for i := range b.tx.Inputs {
		msg := SigningMessage(b.tx.Inputs[i].PrevOut(), address, amount)
		b.tx.Inputs[i].Signature = crypto.Sign(msg, key)
		b.tx.Inputs[i].PublicKey = pubKey
	}
	return nil
}

// SignPrimary signs every input over the first output.
func (b *Builder) SignPrimary(key, pubKey string) error {
	primary, ok := b.tx.Primary()
	if !ok {
		return fmt.Errorf("sign tx: %w", ErrNoOutputs)
	}
	return b.Sign(key, pubKey, primary.Address, primary.Amount)
}

// Build stamps the transaction and computes its ID.
// Does NOT validate; call Verify separately.
func (b *Builder) Build() *Transaction {
	if b.tx.Timestamp == 0 {
		b.tx.Timestamp = time.Now().UnixMilli()
	}
	b.tx.ID = b.tx.ComputeID()
	return b.tx
}
