package miner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Klingon-tech/peerledger/internal/consensus"
	"github.com/Klingon-tech/peerledger/pkg/block"
	"github.com/Klingon-tech/peerledger/pkg/tx"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

func pendingTxs(t *testing.T, n int) []*tx.Transaction {
	t.Helper()
	out := make([]*tx.Transaction, n)
	for i := range out {
		b := tx.NewBuilder(tx.KindRegular).
			AddInput(types.Outpoint{TxID: fmt.Sprintf("prev-%d", i)}).
			AddOutput("bob", 1)
		if err := b.SignPrimary("04k", "04k"); err != nil {
			t.Fatal(err)
		}
		out[i] = b.Build()
	}
	return out
}

func TestBuildCoinbase(t *testing.T) {
	cb := BuildCoinbase("miner", 10)
	if !cb.IsCoinbase() || len(cb.Inputs) != 0 {
		t.Fatalf("coinbase = %+v", cb)
	}
	if cb.Outputs[0].Address != "miner" || cb.Outputs[0].Amount != 10 {
		t.Errorf("output = %+v", cb.Outputs[0])
	}
}

func TestProduceBlock(t *testing.T) {
	genesis := block.FinalizeGenesis(block.NewGenesis(50))
	m := New(consensus.NewPoW(0, 1), 10, 2, 5)
	pending := pendingTxs(t, 7)

	blk, err := m.ProduceBlock(context.Background(), genesis, pending, "miner")
	if err != nil {
		t.Fatalf("ProduceBlock: %v", err)
	}

	if blk.Index != 1 || blk.PreviousHash != genesis.Hash {
		t.Errorf("block links to %d/%s", blk.Index, blk.PreviousHash)
	}
	if len(blk.Transactions) != 6 {
		t.Fatalf("txs = %d, want coinbase + 5", len(blk.Transactions))
	}
	if !blk.Transactions[0].IsCoinbase() || blk.Transactions[0].Outputs[0].Amount != 10 {
		t.Error("first tx should be the reward coinbase")
	}
	for i := 0; i < 5; i++ {
		if blk.Transactions[i+1] != pending[i] {
			t.Errorf("tx %d is not pending[%d]", i+1, i)
		}
	}
	if err := block.Verify(blk, genesis, 2); err != nil {
		t.Errorf("produced block should verify: %v", err)
	}
}

func TestProduceBlock_NothingToMine(t *testing.T) {
	genesis := block.FinalizeGenesis(block.NewGenesis(50))
	m := New(consensus.NewPoW(0, 1), 10, 2, 5)
	if _, err := m.ProduceBlock(context.Background(), genesis, nil, "miner"); !errors.Is(err, ErrNothingToMine) {
		t.Errorf("err = %v, want ErrNothingToMine", err)
	}
}

func TestProduceBlock_Cancelled(t *testing.T) {
	genesis := block.FinalizeGenesis(block.NewGenesis(50))
	m := New(consensus.NewPoW(0, 1), 10, 40, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.ProduceBlock(ctx, genesis, pendingTxs(t, 1), "miner")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
