// Package block defines block types and validation.
package block

import (
	"strings"
	"time"

	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/Klingon-tech/peerledger/pkg/tx"
)

// Block represents a block in the chain.
type Block struct {
	Index        uint64            `json:"index" cbor:"index"`
	Timestamp    int64             `json:"timestamp" cbor:"timestamp"`
	Transactions []*tx.Transaction `json:"transactions" cbor:"transactions"`
	PreviousHash string            `json:"previous_hash" cbor:"previous_hash"`
	Hash         string            `json:"hash" cbor:"hash"`
	Nonce        uint64            `json:"nonce" cbor:"nonce"`
	MerkleRoot   string            `json:"merkle_root" cbor:"merkle_root"`
	Miner        string            `json:"miner" cbor:"miner"`
	Difficulty   int               `json:"difficulty" cbor:"difficulty"`
}

// New creates an unsealed block: merkle root and timestamp are filled in,
// nonce is zero and the hash is empty.
func New(index uint64, prevHash string, txs []*tx.Transaction, difficulty int, miner string) *Block {
	return &Block{
		Index:        index,
		Timestamp:    time.Now().UnixMilli(),
		Transactions: txs,
		PreviousHash: prevHash,
		MerkleRoot:   TxMerkleRoot(txs),
		Miner:        miner,
		Difficulty:   difficulty,
	}
}

// ComputeHash returns the content hash of b over every field except Hash.
func ComputeHash(b *Block) string {
	c := *b
	c.Hash = ""
	return crypto.Hash(&c)
}

// MeetsDifficulty reports whether hash starts with difficulty '0' characters.
func MeetsDifficulty(hash string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if len(hash) < difficulty {
		return false
	}
	return strings.Count(hash[:difficulty], "0") == difficulty
}

// TxIDs returns the ids of the block's transactions in order.
func (b *Block) TxIDs() []string {
	ids := make([]string, len(b.Transactions))
	for i, t := range b.Transactions {
		ids[i] = t.ID
	}
	return ids
}

// Contains reports whether the block includes a transaction with id.
func (b *Block) Contains(id string) bool {
	for _, t := range b.Transactions {
		if t.ID == id {
			return true
		}
	}
	return false
}
