package block

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrChainLinkage   = errors.New("block does not link to previous block")
	ErrHashMismatch   = errors.New("block hash mismatch")
	ErrProofOfWork    = errors.New("block hash does not meet difficulty")
	ErrMerkleMismatch = errors.New("merkle root mismatch")
)

// Verify checks b against its predecessor prev (nil for none) at
// difficulty. Checks run in order: index continuity, hash linkage, hash
// integrity, proof of work, merkle root. The first failure is returned.
func Verify(b, prev *Block, difficulty int) error {
	if prev != nil {
		if b.Index != prev.Index+1 {
			return fmt.Errorf("%w: index %d after %d", ErrChainLinkage, b.Index, prev.Index)
		}
		if b.PreviousHash != prev.Hash {
			return fmt.Errorf("%w: previous hash %s, want %s", ErrChainLinkage, b.PreviousHash, prev.Hash)
		}
	}

	if want := ComputeHash(b); b.Hash != want {
		return fmt.Errorf("%w: got %s, want %s", ErrHashMismatch, b.Hash, want)
	}

	if !MeetsDifficulty(b.Hash, difficulty) {
		return fmt.Errorf("%w: %s at difficulty %d", ErrProofOfWork, b.Hash, difficulty)
	}

	if want := TxMerkleRoot(b.Transactions); b.MerkleRoot != want {
		return fmt.Errorf("%w: got %s, want %s", ErrMerkleMismatch, b.MerkleRoot, want)
	}
	return nil
}

// IsValid is the boolean form of Verify.
func IsValid(b, prev *Block, difficulty int) bool {
	return Verify(b, prev, difficulty) == nil
}
