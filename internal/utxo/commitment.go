package utxo

import (
	"fmt"
	"sort"

	"github.com/Klingon-tech/peerledger/pkg/block"
	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Commitment computes a merkle root over all UTXOs in the set.
// Each UTXO is hashed, the hashes are sorted, and a merkle tree is built
// from them, so two sets holding the same UTXOs in any order commit to
// the same root. Returns "" for an empty set.
func Commitment(s *Set) string {
	hashes := make([]string, 0, s.Len())
	for _, u := range s.byOutpoint {
		hashes = append(hashes, hashUTXO(u))
	}
	sort.Strings(hashes)
	return block.ComputeMerkleRoot(hashes)
}

// hashUTXO hashes "txid:index|address|amount".
func hashUTXO(u types.UTXO) string {
	return crypto.HashString(fmt.Sprintf("%s|%s|%d", u.Outpoint(), u.Address, u.Amount))
}
