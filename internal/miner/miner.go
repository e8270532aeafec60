// Package miner implements block production for peerledger.
package miner

import (
	"context"
	"errors"
	"fmt"

	"github.com/Klingon-tech/peerledger/internal/consensus"
	"github.com/Klingon-tech/peerledger/internal/log"
	"github.com/Klingon-tech/peerledger/pkg/block"
	"github.com/Klingon-tech/peerledger/pkg/tx"
)

// ErrNothingToMine is returned when there are no pending transactions.
var ErrNothingToMine = errors.New("no pending transactions to mine")

// Miner produces new blocks.
type Miner struct {
	engine      consensus.Engine
	reward      uint64
	difficulty  int
	maxBlockTxs int // pending transactions per block, excluding the coinbase
}

// New creates a new block producer.
func New(engine consensus.Engine, reward uint64, difficulty, maxBlockTxs int) *Miner {
	return &Miner{
		engine:      engine,
		reward:      reward,
		difficulty:  difficulty,
		maxBlockTxs: maxBlockTxs,
	}
}

// Difficulty returns the difficulty blocks are sealed at.
func (m *Miner) Difficulty() int {
	return m.difficulty
}

// ProduceBlock builds and seals a block on top of tip. The block holds a
// coinbase paying the reward to minerAddr followed by the first
// maxBlockTxs pending transactions in order.
// The block is NOT applied to any chain; the caller broadcasts it.
func (m *Miner) ProduceBlock(ctx context.Context, tip *block.Block, pending []*tx.Transaction, minerAddr string) (*block.Block, error) {
	if tip == nil {
		return nil, fmt.Errorf("produce block: no chain tip")
	}
	if len(pending) == 0 {
		return nil, ErrNothingToMine
	}

	selected := pending
	if m.maxBlockTxs > 0 && len(selected) > m.maxBlockTxs {
		selected = selected[:m.maxBlockTxs]
	}

	txs := make([]*tx.Transaction, 0, 1+len(selected))
	txs = append(txs, BuildCoinbase(minerAddr, m.reward))
	txs = append(txs, selected...)

	done := log.Benchmark("seal block")
	blk, err := consensus.BuildBlock(ctx, m.engine, tip.Index+1, tip.Hash, txs, m.difficulty, minerAddr)
	done()
	if err != nil {
		return nil, fmt.Errorf("seal block: %w", err)
	}

	log.Miner.Debug().
		Uint64("index", blk.Index).
		Str("hash", blk.Hash).
		Uint64("nonce", blk.Nonce).
		Int("txs", len(blk.Transactions)).
		Msg("Block sealed")
	return blk, nil
}

// BuildCoinbase creates the reward transaction for minerAddr.
func BuildCoinbase(minerAddr string, reward uint64) *tx.Transaction {
	return tx.NewCoinbase(minerAddr, reward)
}
