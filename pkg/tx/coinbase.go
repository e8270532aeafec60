package tx

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// NewCoinbase creates a reward-only transaction paying reward to minerAddr.
// The ID is hashed from a tag, the creation time and the miner address
// rather than the full content; the time source never repeats within a
// process so two coinbases for the same miner never collide.
func NewCoinbase(minerAddr string, reward uint64) *Transaction {
	nanos := types.UniqueNanos()
	return &Transaction{
		ID:        crypto.Hash(fmt.Sprintf("coinbase-%d-%s", nanos, minerAddr)),
		Inputs:    []Input{},
		Outputs:   []Output{{Address: minerAddr, Amount: reward}},
		Timestamp: nanos / int64(time.Millisecond),
		Kind:      KindCoinbase,
	}
}
