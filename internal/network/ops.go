package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/Klingon-tech/peerledger/internal/consensus"
	"github.com/Klingon-tech/peerledger/internal/contract"
	"github.com/Klingon-tech/peerledger/internal/utxo"
	"github.com/Klingon-tech/peerledger/internal/wallet"
	"github.com/Klingon-tech/peerledger/pkg/block"
	"github.com/Klingon-tech/peerledger/pkg/tx"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Peer state errors.
var (
	ErrPeerNotFound     = errors.New("peer not found")
	ErrPeerInactive     = errors.New("peer is not active")
	ErrNoWallet         = errors.New("peer has no wallet")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrStaleTip         = errors.New("chain tip moved while mining")
)

// Funding describes the block minted into a fresh peer's chain when its
// wallet is activated. A zero Amount or nil Engine skips funding.
type Funding struct {
	Engine     consensus.Engine
	Amount     uint64
	Difficulty int
}

// standardContracts are deployed for every newly activated wallet, named
// after the first six characters of its address.
var standardContracts = []struct {
	kind   contract.Kind
	suffix string
}{
	{contract.KindToken, "Token"},
	{contract.KindStorage, "Storage"},
	{contract.KindAuction, "Auction"},
}

// Find returns the peer with id and its index, or (nil, -1).
func Find(peers []*Peer, id int) (*Peer, int) {
	for i, p := range peers {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// ActivateWallet attaches w to a copy of p and marks it active. A peer
// whose chain holds only genesis gets a funding block paying f.Amount to
// the wallet. The standard token, storage and auction contracts are
// deployed and the wallet UTXOs are refreshed from the resulting chain.
func ActivateWallet(ctx context.Context, p *Peer, w *wallet.Wallet, f Funding) (*Peer, error) {
	if w == nil {
		return nil, ErrNoWallet
	}
	out := p.Clone()
	out.Wallet = w.Clone()
	out.IsActive = true

	if len(out.Blockchain) == 1 && f.Engine != nil && f.Amount > 0 {
		genesis := out.Blockchain[0]
		coinbase := tx.NewCoinbase(w.Address, f.Amount)
		blk, err := consensus.BuildBlock(ctx, f.Engine, genesis.Index+1, genesis.Hash,
			[]*tx.Transaction{coinbase}, f.Difficulty, w.Address)
		if err != nil {
			return nil, fmt.Errorf("mine funding block: %w", err)
		}
		out.Blockchain = append(out.Blockchain, blk)
	}

	prefix := w.Address
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	for _, sc := range standardContracts {
		c := contract.New(sc.kind, prefix+sc.suffix, "", w.Address)
		if err := out.Contracts.Deploy(c); err != nil {
			return nil, err
		}
	}

	out.Wallet.SetUTXOs(ComputeUTXOSet(out))
	return out, nil
}

// Deactivate returns a copy of p with IsActive cleared. Chain, pending
// pool and contracts are retained.
func Deactivate(p *Peer) *Peer {
	out := p.Clone()
	out.IsActive = false
	return out
}

// Connect links a and b in both directions. Connecting already linked
// peers, or a peer to itself, returns unchanged copies.
func Connect(a, b *Peer) (*Peer, *Peer) {
	ca, cb := a.Clone(), b.Clone()
	if a.ID == b.ID {
		return ca, cb
	}
	if !ca.IsConnected(cb.ID) {
		ca.Connections = append(ca.Connections, cb.ID)
	}
	if !cb.IsConnected(ca.ID) {
		cb.Connections = append(cb.Connections, ca.ID)
	}
	return ca, cb
}

// ConnectAll returns peers linked into a complete graph.
func ConnectAll(peers []*Peer) []*Peer {
	out := copyPeers(peers)
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			out[i], out[j] = Connect(out[i], out[j])
		}
	}
	return out
}

// BroadcastTransaction adds t to the pending pool of the source peer and
// of every connected active neighbor, skipping pools that already hold
// its id. Inactive neighbors are skipped. An unknown source leaves the
// network unchanged.
func BroadcastTransaction(peers []*Peer, sourceID int, t *tx.Transaction) []*Peer {
	out := copyPeers(peers)
	src, idx := Find(out, sourceID)
	if src == nil {
		return out
	}

	deliver := func(i int) {
		if out[i].Pending.Has(t.ID) {
			return
		}
		p := out[i].Clone()
		p.Pending.Add(t)
		out[i] = p
	}

	deliver(idx)
	for _, id := range src.Connections {
		if _, i := Find(out, id); i >= 0 && out[i].IsActive {
			deliver(i)
		}
	}
	return out
}

// BroadcastBlock appends b to the chain of the source peer and of every
// connected active neighbor that does not already hold its hash. Each
// receiving peer drops the block's transactions from its pending pool.
func BroadcastBlock(peers []*Peer, sourceID int, b *block.Block) []*Peer {
	out := copyPeers(peers)
	src, idx := Find(out, sourceID)
	if src == nil {
		return out
	}

	deliver := func(i int) {
		if out[i].HasBlock(b.Hash) {
			return
		}
		p := out[i].Clone()
		p.Blockchain = append(p.Blockchain, b)
		p.Pending.RemoveConfirmed(b.Transactions)
		out[i] = p
	}

	deliver(idx)
	for _, id := range src.Connections {
		if _, i := Find(out, id); i >= 0 && out[i].IsActive {
			deliver(i)
		}
	}
	return out
}

// ComputeUTXOSet replays the peer's whole chain.
func ComputeUTXOSet(p *Peer) []types.UTXO {
	return utxo.Compute(p.Blockchain)
}

// RefreshWalletUTXOs recomputes the UTXOs owned by every peer's wallet.
func RefreshWalletUTXOs(peers []*Peer) []*Peer {
	out := copyPeers(peers)
	for i, p := range out {
		if p.Wallet == nil {
			continue
		}
		c := p.Clone()
		c.Wallet.SetUTXOs(ComputeUTXOSet(c))
		out[i] = c
	}
	return out
}

// ReconcileChains applies the longest-chain rule among active peers.
// Every active peer whose chain is strictly shorter than the longest
// adopts a copy of it and drops pending transactions the adopted chain
// already contains. Ties keep the first longest chain in peer order.
func ReconcileChains(peers []*Peer) []*Peer {
	out := copyPeers(peers)

	var longest *Peer
	active := 0
	for _, p := range out {
		if !p.IsActive {
			continue
		}
		active++
		if longest == nil || len(p.Blockchain) > len(longest.Blockchain) {
			longest = p
		}
	}
	if active <= 1 {
		return out
	}

	var confirmed map[string]struct{}
	for i, p := range out {
		if !p.IsActive || len(p.Blockchain) >= len(longest.Blockchain) {
			continue
		}
		if confirmed == nil {
			confirmed = chainTxIDs(longest.Blockchain)
		}
		c := p.Clone()
		c.Blockchain = append([]*block.Block(nil), longest.Blockchain...)
		c.Pending.RemoveIDs(confirmed)
		out[i] = c
	}
	return out
}

// DeployContract adds c to a copy of p's contract table. The peer must be
// active and hold a wallet.
func DeployContract(p *Peer, c *contract.Contract) (*Peer, error) {
	if !p.IsActive {
		return nil, fmt.Errorf("%w: peer %d", ErrPeerInactive, p.ID)
	}
	if p.Wallet == nil {
		return nil, fmt.Errorf("%w: peer %d", ErrNoWallet, p.ID)
	}
	out := p.Clone()
	if err := out.Contracts.Deploy(c); err != nil {
		return nil, err
	}
	return out, nil
}

func copyPeers(peers []*Peer) []*Peer {
	return append([]*Peer(nil), peers...)
}

func chainTxIDs(chain []*block.Block) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, b := range chain {
		for _, t := range b.Transactions {
			ids[t.ID] = struct{}{}
		}
	}
	return ids
}
