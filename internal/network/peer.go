// Package network coordinates the simulated peers of a ledger: wallet
// activation, neighbor graph, transaction and block propagation, UTXO
// refresh and longest-chain reconciliation.
//
// The package-level functions never mutate their inputs. Each returns a
// new peer slice in which only the peers that changed are replaced by
// fresh copies; unchanged peers are shared. Network wraps them behind a
// mutex for callers that need a single stateful handle.
package network

import (
	"github.com/Klingon-tech/peerledger/internal/contract"
	"github.com/Klingon-tech/peerledger/internal/mempool"
	"github.com/Klingon-tech/peerledger/internal/wallet"
	"github.com/Klingon-tech/peerledger/pkg/block"
)

// Peer is one simulated participant with its own chain, pending pool and
// contract table.
type Peer struct {
	ID          int
	Wallet      *wallet.Wallet
	IsActive    bool
	Blockchain  []*block.Block
	Pending     *mempool.Pool
	Contracts   *contract.Table
	Connections []int
}

// NewPeer creates an inactive peer holding only a fresh genesis block.
func NewPeer(id int, genesisReward uint64) *Peer {
	return &Peer{
		ID:          id,
		Blockchain:  []*block.Block{block.FinalizeGenesis(block.NewGenesis(genesisReward))},
		Pending:     mempool.New(0),
		Contracts:   contract.NewTable(),
		Connections: []int{},
	}
}

// Clone returns a copy of p that can be modified without affecting p.
// Blocks are immutable once sealed and are shared.
func (p *Peer) Clone() *Peer {
	c := &Peer{
		ID:          p.ID,
		Wallet:      p.Wallet.Clone(),
		IsActive:    p.IsActive,
		Blockchain:  append([]*block.Block(nil), p.Blockchain...),
		Connections: append([]int(nil), p.Connections...),
	}
	if p.Pending != nil {
		c.Pending = p.Pending.Clone()
	} else {
		c.Pending = mempool.New(0)
	}
	if p.Contracts != nil {
		c.Contracts = p.Contracts.Clone()
	} else {
		c.Contracts = contract.NewTable()
	}
	return c
}

// Tip returns the last block of the peer's chain.
func (p *Peer) Tip() *block.Block {
	if len(p.Blockchain) == 0 {
		return nil
	}
	return p.Blockchain[len(p.Blockchain)-1]
}

// Height returns the number of blocks in the peer's chain.
func (p *Peer) Height() int {
	return len(p.Blockchain)
}

// HasBlock reports whether a block with hash is in the peer's chain.
func (p *Peer) HasBlock(hash string) bool {
	for _, b := range p.Blockchain {
		if b.Hash == hash {
			return true
		}
	}
	return false
}

// IsConnected reports whether id is one of p's neighbors.
func (p *Peer) IsConnected(id int) bool {
	for _, c := range p.Connections {
		if c == id {
			return true
		}
	}
	return false
}

// Address returns the wallet address, or "" for a walletless peer.
func (p *Peer) Address() string {
	if p.Wallet == nil {
		return ""
	}
	return p.Wallet.Address
}
