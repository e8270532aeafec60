package consensus

import (
	"context"
	"errors"
	"testing"

	"github.com/Klingon-tech/peerledger/pkg/block"
	"github.com/Klingon-tech/peerledger/pkg/tx"
)

func testBlock(difficulty int) *block.Block {
	genesis := block.FinalizeGenesis(block.NewGenesis(50))
	return block.New(1, genesis.Hash, []*tx.Transaction{tx.NewCoinbase("miner", 10)}, difficulty, "miner")
}

func TestPoW_SealAndVerify(t *testing.T) {
	pow := NewPoW(0, 1)
	blk := testBlock(2)

	if err := pow.Seal(context.Background(), blk); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if !block.MeetsDifficulty(blk.Hash, 2) {
		t.Errorf("hash %s does not meet difficulty 2", blk.Hash)
	}
	if err := pow.VerifyBlock(blk, nil); err != nil {
		t.Fatalf("VerifyBlock after Seal: %v", err)
	}
}

func TestPoW_SealFindsFirstNonce(t *testing.T) {
	pow := NewPoW(0, 1)
	blk := testBlock(1)
	if err := pow.Seal(context.Background(), blk); err != nil {
		t.Fatalf("Seal: %v", err)
	}

	probe := *blk
	for n := uint64(0); n < blk.Nonce; n++ {
		probe.Nonce = n
		if block.MeetsDifficulty(block.ComputeHash(&probe), 1) {
			t.Fatalf("nonce %d also satisfies difficulty, sealed %d", n, blk.Nonce)
		}
	}
}

func TestPoW_SealZeroDifficulty(t *testing.T) {
	blk := testBlock(0)
	if err := NewPoW(0, 1).Seal(context.Background(), blk); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if blk.Nonce != 0 {
		t.Errorf("nonce = %d, want 0", blk.Nonce)
	}
}

func TestPoW_SealParallel(t *testing.T) {
	pow := NewPoW(0, 4)
	blk := testBlock(2)
	if err := pow.Seal(context.Background(), blk); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if err := pow.VerifyBlock(blk, nil); err != nil {
		t.Fatalf("VerifyBlock after parallel Seal: %v", err)
	}
}

func TestPoW_SealCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, threads := range []int{1, 4} {
		blk := testBlock(40)
		err := NewPoW(0, threads).Seal(ctx, blk)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("threads=%d: Seal err = %v, want context.Canceled", threads, err)
		}
		if blk.Hash != "" {
			t.Errorf("threads=%d: cancelled seal should leave hash empty", threads)
		}
	}
}

func TestPoW_SealIterationLimit(t *testing.T) {
	for _, threads := range []int{1, 3} {
		blk := testBlock(40)
		err := NewPoW(1000, threads).Seal(context.Background(), blk)
		if !errors.Is(err, ErrIterationLimit) {
			t.Errorf("threads=%d: Seal err = %v, want ErrIterationLimit", threads, err)
		}
	}
}

func TestPoW_NegativeDifficulty(t *testing.T) {
	blk := testBlock(-1)
	if err := NewPoW(0, 1).Seal(context.Background(), blk); !errors.Is(err, ErrNegativeDifficulty) {
		t.Errorf("Seal err = %v, want ErrNegativeDifficulty", err)
	}
}

func TestBuildBlock(t *testing.T) {
	genesis := block.FinalizeGenesis(block.NewGenesis(50))
	txs := []*tx.Transaction{tx.NewCoinbase("miner", 10)}

	blk, err := BuildBlock(context.Background(), NewPoW(0, 1), 1, genesis.Hash, txs, 2, "miner")
	if err != nil {
		t.Fatalf("BuildBlock: %v", err)
	}
	if err := block.Verify(blk, genesis, 2); err != nil {
		t.Fatalf("built block should verify: %v", err)
	}
	if blk.MerkleRoot != txs[0].ID {
		t.Errorf("merkle root = %s, want %s", blk.MerkleRoot, txs[0].ID)
	}
}
