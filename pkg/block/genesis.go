package block

import (
	"time"

	"github.com/Klingon-tech/peerledger/pkg/tx"
)

const (
	// GenesisPrevHash is the previous hash recorded in every genesis block.
	GenesisPrevHash = "0"
	// GenesisAddress receives the genesis coinbase.
	GenesisAddress = "genesis"
	// GenesisDifficulty is the difficulty recorded in genesis blocks.
	GenesisDifficulty = 2
)

// NewGenesis creates an unfinalized genesis block paying reward to
// GenesisAddress. Call FinalizeGenesis to fill in its hash.
func NewGenesis(reward uint64) *Block {
	txs := []*tx.Transaction{tx.NewCoinbase(GenesisAddress, reward)}
	return &Block{
		Index:        0,
		Timestamp:    time.Now().UnixMilli(),
		Transactions: txs,
		PreviousHash: GenesisPrevHash,
		MerkleRoot:   TxMerkleRoot(txs),
		Miner:        GenesisAddress,
		Difficulty:   GenesisDifficulty,
	}
}

// FinalizeGenesis fills in the genesis hash without mining. The result
// need not satisfy its difficulty.
func FinalizeGenesis(b *Block) *Block {
	b.Hash = ComputeHash(b)
	return b
}
