// Package consensus defines consensus engine interfaces.
package consensus

import (
	"context"

	"github.com/Klingon-tech/peerledger/pkg/block"
)

// Engine is the interface for consensus implementations.
type Engine interface {
	// VerifyBlock checks blk against its predecessor (nil for none).
	VerifyBlock(blk, prev *block.Block) error
	// Seal fills in the block's nonce and hash.
	Seal(ctx context.Context, blk *block.Block) error
}
