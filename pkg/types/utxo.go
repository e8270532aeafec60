package types

// UTXO is one spendable output, identified by (TxID, OutputIndex).
// It is always derived by replaying a chain, never stored as mutable state.
type UTXO struct {
	TxID        string `json:"tx_id" cbor:"tx_id"`
	OutputIndex uint32 `json:"output_index" cbor:"output_index"`
	Address     string `json:"address" cbor:"address"`
	Amount      uint64 `json:"amount" cbor:"amount"`
}

// Outpoint returns the outpoint identifying this UTXO.
func (u UTXO) Outpoint() Outpoint {
	return Outpoint{TxID: u.TxID, Index: u.OutputIndex}
}
