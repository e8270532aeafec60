// Package tx defines transaction types and validation.
package tx

import (
	"fmt"
	"math"

	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Kind classifies a transaction.
type Kind string

const (
	KindRegular  Kind = "regular"
	KindCoinbase Kind = "coinbase"
	KindContract Kind = "contract"
)

// Transaction represents a ledger transaction.
// ID is the content hash of the transaction with ID left empty.
type Transaction struct {
	ID        string        `json:"id" cbor:"id"`
	Inputs    []Input       `json:"inputs" cbor:"inputs"`
	Outputs   []Output      `json:"outputs" cbor:"outputs"`
	Timestamp int64         `json:"timestamp" cbor:"timestamp"`
	Kind      Kind          `json:"kind" cbor:"kind"`
	Contract  *ContractCall `json:"contract,omitempty" cbor:"contract,omitempty"`
}

// Input claims one UTXO.
type Input struct {
	TxID        string `json:"tx_id" cbor:"tx_id"`
	OutputIndex uint32 `json:"output_index" cbor:"output_index"`
	Signature   string `json:"signature" cbor:"signature"`
	PublicKey   string `json:"public_key" cbor:"public_key"`
}

// PrevOut returns the outpoint this input spends.
func (in Input) PrevOut() types.Outpoint {
	return types.Outpoint{TxID: in.TxID, Index: in.OutputIndex}
}

// Output defines a new UTXO.
type Output struct {
	Address string `json:"address" cbor:"address"`
	Amount  uint64 `json:"amount" cbor:"amount"`
}

// ContractCall describes the contract invocation carried by a
// KindContract transaction. Address and Fee are set for deployments,
// where the inputs are signed over them instead of a primary output.
type ContractCall struct {
	Code    string        `json:"code" cbor:"code"`
	Method  string        `json:"method" cbor:"method"`
	Params  []types.Value `json:"params" cbor:"params"`
	Address string        `json:"address,omitempty" cbor:"address,omitempty"`
	Fee     uint64        `json:"fee,omitempty" cbor:"fee,omitempty"`
}

// ComputeID returns the content hash of the transaction with ID blanked.
func (tx *Transaction) ComputeID() string {
	c := *tx
	c.ID = ""
	return crypto.Hash(&c)
}

// IsCoinbase reports whether tx is a coinbase transaction.
func (tx *Transaction) IsCoinbase() bool {
	return tx.Kind == KindCoinbase
}

// Primary returns the first output, which is the one covered by input
// signatures.
func (tx *Transaction) Primary() (Output, bool) {
	if len(tx.Outputs) == 0 {
		return Output{}, false
	}
	return tx.Outputs[0], true
}

// TotalOutputValue returns the sum of all output values.
// Returns an error if the sum overflows uint64.
func (tx *Transaction) TotalOutputValue() (uint64, error) {
	var total uint64
	for _, out := range tx.Outputs {
		if total > math.MaxUint64-out.Amount {
			return 0, fmt.Errorf("output value overflow")
		}
		total += out.Amount
	}
	return total, nil
}

// SigningMessage is the message an input signature covers: the spent
// outpoint followed by the target address and amount.
func SigningMessage(prevOut types.Outpoint, address string, amount uint64) string {
	return fmt.Sprintf("%s%d%s%d", prevOut.TxID, prevOut.Index, address, amount)
}
