package mempool

import (
	"fmt"

	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/Klingon-tech/peerledger/pkg/tx"
)

// Default relay limits.
const (
	DefaultMaxTxSize  = 100_000
	DefaultMaxInputs  = 1000
	DefaultMaxOutputs = 100
)

// Policy defines transaction relay rules. Policy is checked before a
// transaction is broadcast and is separate from validation.
type Policy struct {
	MaxTxSize  int // Maximum canonical encoding size in bytes.
	MaxInputs  int
	MaxOutputs int
}

// DefaultPolicy returns a policy with sensible defaults.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxTxSize:  DefaultMaxTxSize,
		MaxInputs:  DefaultMaxInputs,
		MaxOutputs: DefaultMaxOutputs,
	}
}

// Check validates a transaction against policy rules.
func (p *Policy) Check(transaction *tx.Transaction) error {
	if transaction.IsCoinbase() {
		return ErrCoinbase
	}
	if p.MaxInputs > 0 && len(transaction.Inputs) > p.MaxInputs {
		return fmt.Errorf("too many inputs: %d, max %d", len(transaction.Inputs), p.MaxInputs)
	}
	if p.MaxOutputs > 0 && len(transaction.Outputs) > p.MaxOutputs {
		return fmt.Errorf("too many outputs: %d, max %d", len(transaction.Outputs), p.MaxOutputs)
	}
	if p.MaxTxSize > 0 {
		data, err := crypto.Canonical(transaction)
		if err != nil {
			return fmt.Errorf("encode transaction: %w", err)
		}
		if len(data) > p.MaxTxSize {
			return fmt.Errorf("transaction too large: %d bytes, max %d", len(data), p.MaxTxSize)
		}
	}
	if transaction.ID != transaction.ComputeID() {
		return fmt.Errorf("transaction id does not match content")
	}
	return nil
}
