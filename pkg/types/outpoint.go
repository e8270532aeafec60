// Package types defines core primitive types shared across the ledger.
package types

import "fmt"

// Outpoint references a specific output in a transaction.
type Outpoint struct {
	TxID  string `json:"txid" cbor:"txid"`
	Index uint32 `json:"index" cbor:"index"`
}

// IsZero returns true if the outpoint has an empty TxID and zero index.
func (o Outpoint) IsZero() bool {
	return o.TxID == "" && o.Index == 0
}

// String returns "txid:index".
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Index)
}
