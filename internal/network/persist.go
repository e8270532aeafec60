package network

import (
	"fmt"

	"github.com/Klingon-tech/peerledger/internal/contract"
	"github.com/Klingon-tech/peerledger/internal/log"
	"github.com/Klingon-tech/peerledger/internal/mempool"
	"github.com/Klingon-tech/peerledger/internal/wallet"
	"github.com/Klingon-tech/peerledger/pkg/block"
	"github.com/Klingon-tech/peerledger/pkg/tx"
)

// peerRecord is the cached form of a Peer.
type peerRecord struct {
	ID          int                  `cbor:"id"`
	Wallet      *wallet.Wallet       `cbor:"wallet"`
	IsActive    bool                 `cbor:"is_active"`
	Blockchain  []*block.Block       `cbor:"blockchain"`
	Pending     []*tx.Transaction    `cbor:"pending"`
	Contracts   []*contract.Contract `cbor:"contracts"`
	Connections []int                `cbor:"connections"`
}

func toRecord(p *Peer) peerRecord {
	return peerRecord{
		ID:          p.ID,
		Wallet:      p.Wallet,
		IsActive:    p.IsActive,
		Blockchain:  p.Blockchain,
		Pending:     p.Pending.List(),
		Contracts:   p.Contracts.List(),
		Connections: p.Connections,
	}
}

func fromRecord(r peerRecord, maxPending int) *Peer {
	pool := mempool.New(maxPending)
	for _, t := range r.Pending {
		pool.Add(t)
	}
	conns := r.Connections
	if conns == nil {
		conns = []int{}
	}
	return &Peer{
		ID:          r.ID,
		Wallet:      r.Wallet,
		IsActive:    r.IsActive,
		Blockchain:  r.Blockchain,
		Pending:     pool,
		Contracts:   contract.NewTable(r.Contracts...),
		Connections: conns,
	}
}

// Save writes the peer set to the configured snapshot store. It is a
// no-op without a store.
func (n *Network) Save() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.saveLocked()
}

func (n *Network) saveLocked() error {
	if n.store == nil {
		return nil
	}
	records := make([]peerRecord, len(n.peers))
	for i, p := range n.peers {
		records[i] = toRecord(p)
	}
	return n.store.Save(snapshotName, records)
}

// persistLocked saves after a state change. A failed save is logged and
// does not fail the operation; the snapshot is only a cache.
func (n *Network) persistLocked() {
	if err := n.saveLocked(); err != nil {
		log.Network.Warn().Err(err).Msg("Failed to cache peers")
	}
}

// ClearCache removes every cached snapshot. The in-memory peer set is
// left as is.
func (n *Network) ClearCache() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.store == nil {
		return nil
	}
	return n.store.Clear()
}

// Load replaces the peer set with the cached one. It reports false when
// there is no store or nothing cached, leaving the network unchanged.
func (n *Network) Load() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.store == nil {
		return false, nil
	}
	var records []peerRecord
	ok, err := n.store.Load(snapshotName, &records)
	if err != nil {
		return false, fmt.Errorf("load peers: %w", err)
	}
	if !ok || len(records) == 0 {
		return false, nil
	}

	peers := make([]*Peer, len(records))
	for i, r := range records {
		peers[i] = fromRecord(r, n.cfg.Mempool.MaxSize)
	}
	n.peers = peers
	log.Network.Info().Int("peers", len(peers)).Msg("Peers loaded from cache")
	return true, nil
}
