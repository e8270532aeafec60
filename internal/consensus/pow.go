package consensus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Klingon-tech/peerledger/internal/log"
	"github.com/Klingon-tech/peerledger/pkg/block"
	"github.com/Klingon-tech/peerledger/pkg/tx"
)

// PoW errors.
var (
	ErrIterationLimit     = errors.New("proof-of-work iteration limit reached")
	ErrNegativeDifficulty = errors.New("difficulty must be >= 0")
)

// cancelCheckInterval is how many nonces are tried between context checks.
const cancelCheckInterval = 4096

// PoW implements proof-of-work consensus over hex hash prefixes.
// Difficulty is carried by each block; the engine holds no chain state.
type PoW struct {
	// MaxIterations bounds the number of nonces tried per Seal.
	// 0 = unbounded.
	MaxIterations uint64

	// Threads controls the number of parallel mining goroutines.
	// 0 or 1 = single-threaded (default). Each goroutine searches a
	// strided partition of the nonce space.
	Threads int
}

// NewPoW creates a new PoW engine.
func NewPoW(maxIterations uint64, threads int) *PoW {
	return &PoW{MaxIterations: maxIterations, Threads: threads}
}

// VerifyBlock checks linkage, hash integrity, work and merkle root at the
// difficulty recorded in blk.
func (p *PoW) VerifyBlock(blk, prev *block.Block) error {
	return block.Verify(blk, prev, blk.Difficulty)
}

// Seal mines the block by iterating the nonce from 0 until the content
// hash has Difficulty leading zeros. When the context is cancelled, mining
// stops and ctx.Err() is returned. If Threads > 1, mining runs in parallel
// goroutines with strided nonce partitioning.
func (p *PoW) Seal(ctx context.Context, blk *block.Block) error {
	if blk == nil {
		return fmt.Errorf("nil block")
	}
	if blk.Difficulty < 0 {
		return ErrNegativeDifficulty
	}

	var err error
	if p.Threads <= 1 {
		err = p.sealSingle(ctx, blk)
	} else {
		err = p.sealParallel(ctx, blk, p.Threads)
	}
	if err != nil {
		log.Consensus.Debug().Err(err).
			Uint64("index", blk.Index).
			Int("difficulty", blk.Difficulty).
			Msg("Seal aborted")
	}
	return err
}

// sealSingle mines with a single goroutine.
func (p *PoW) sealSingle(ctx context.Context, blk *block.Block) error {
	work := *blk
	for nonce := uint64(0); ; nonce++ {
		if nonce%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		if p.MaxIterations > 0 && nonce >= p.MaxIterations {
			return fmt.Errorf("%w: %d nonces at difficulty %d", ErrIterationLimit, nonce, blk.Difficulty)
		}

		work.Nonce = nonce
		hash := block.ComputeHash(&work)
		if block.MeetsDifficulty(hash, blk.Difficulty) {
			blk.Nonce = nonce
			blk.Hash = hash
			return nil
		}
		if nonce == ^uint64(0) {
			return fmt.Errorf("nonce space exhausted")
		}
	}
}

// sealParallel mines with multiple goroutines, each searching a strided
// partition of the nonce space (goroutine i starts at nonce=i, step=threads).
func (p *PoW) sealParallel(ctx context.Context, blk *block.Block, threads int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		nonce uint64
		hash  string
	}
	found := make(chan result, 1)

	var perThread uint64
	if p.MaxIterations > 0 {
		perThread = (p.MaxIterations + uint64(threads) - 1) / uint64(threads)
	}

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		startNonce := uint64(i)
		stride := uint64(threads)
		go func() {
			defer wg.Done()
			work := *blk

			for n, nonce := uint64(0), startNonce; ; n, nonce = n+1, nonce+stride {
				if n%cancelCheckInterval == 0 {
					select {
					case <-ctx.Done():
						return
					default:
					}
				}
				if perThread > 0 && n >= perThread {
					return
				}

				work.Nonce = nonce
				hash := block.ComputeHash(&work)
				if block.MeetsDifficulty(hash, blk.Difficulty) {
					select {
					case found <- result{nonce: nonce, hash: hash}:
					default:
					}
					cancel()
					return
				}
				if nonce > ^uint64(0)-stride {
					return
				}
			}
		}()
	}

	wg.Wait()

	select {
	case r := <-found:
		blk.Nonce = r.nonce
		blk.Hash = r.hash
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.MaxIterations > 0 {
		return fmt.Errorf("%w: %d nonces at difficulty %d", ErrIterationLimit, p.MaxIterations, blk.Difficulty)
	}
	return fmt.Errorf("nonce space exhausted")
}

// BuildBlock assembles a block on top of prev and seals it with engine.
func BuildBlock(ctx context.Context, engine Engine, index uint64, prevHash string, txs []*tx.Transaction, difficulty int, miner string) (*block.Block, error) {
	blk := block.New(index, prevHash, txs, difficulty, miner)
	if err := engine.Seal(ctx, blk); err != nil {
		return nil, err
	}
	return blk, nil
}
