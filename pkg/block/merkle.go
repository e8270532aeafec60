package block

import (
	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/Klingon-tech/peerledger/pkg/tx"
)

// ComputeMerkleRoot calculates the merkle root of hex hashes.
//
// Algorithm:
//   - 0 hashes: returns ""
//   - 1 hash: returns that hash
//   - Otherwise: hash the concatenation of each adjacent pair, duplicating
//     the last element if the count is odd, then recurse on the resulting
//     layer until one hash remains.
func ComputeMerkleRoot(hashes []string) string {
	if len(hashes) == 0 {
		return ""
	}
	if len(hashes) == 1 {
		return hashes[0]
	}

	level := make([]string, len(hashes))
	copy(level, hashes)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}

		next := make([]string, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = crypto.HashConcat(level[i], level[i+1])
		}
		level = next
	}

	return level[0]
}

// TxMerkleRoot returns the merkle root of the ids of txs.
func TxMerkleRoot(txs []*tx.Transaction) string {
	ids := make([]string, len(txs))
	for i, t := range txs {
		ids[i] = t.ID
	}
	return ComputeMerkleRoot(ids)
}
