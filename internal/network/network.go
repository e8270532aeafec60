package network

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Klingon-tech/peerledger/config"
	"github.com/Klingon-tech/peerledger/internal/consensus"
	"github.com/Klingon-tech/peerledger/internal/contract"
	"github.com/Klingon-tech/peerledger/internal/log"
	"github.com/Klingon-tech/peerledger/internal/mempool"
	"github.com/Klingon-tech/peerledger/internal/miner"
	"github.com/Klingon-tech/peerledger/internal/snapshot"
	"github.com/Klingon-tech/peerledger/internal/utxo"
	"github.com/Klingon-tech/peerledger/internal/wallet"
	"github.com/Klingon-tech/peerledger/pkg/block"
	"github.com/Klingon-tech/peerledger/pkg/tx"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// snapshotName is the key the peer set is cached under.
const snapshotName = "peers"

// Network is the stateful handle over a simulated peer set. Every
// operation runs under one mutex and swaps in the slice returned by the
// package-level functions, so readers holding an older slice never see
// it change. Mining seals outside the lock.
type Network struct {
	mu    sync.Mutex
	peers []*Peer

	cfg       *config.Config
	engine    consensus.Engine
	miner     *miner.Miner
	policy    *mempool.Policy
	contracts *contract.Engine
	store     *snapshot.Store
}

// Option configures a Network.
type Option func(*Network)

// WithStore caches the peer set in s after every change.
func WithStore(s *snapshot.Store) Option {
	return func(n *Network) { n.store = s }
}

// WithEngine replaces the proof-of-work engine built from the config.
func WithEngine(e consensus.Engine) Option {
	return func(n *Network) { n.engine = e }
}

// WithContractEngine sets the engine contracts execute on.
func WithContractEngine(e *contract.Engine) Option {
	return func(n *Network) { n.contracts = e }
}

// New creates an empty network. Call Bootstrap or Load to populate it.
func New(cfg *config.Config, opts ...Option) *Network {
	n := &Network{
		cfg:       cfg,
		contracts: &contract.Engine{},
		policy: &mempool.Policy{
			MaxTxSize:  cfg.Mempool.MaxTxSize,
			MaxInputs:  mempool.DefaultMaxInputs,
			MaxOutputs: mempool.DefaultMaxOutputs,
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.engine == nil {
		n.engine = consensus.NewPoW(cfg.Mining.MaxIterations, cfg.Mining.Threads)
	}
	n.miner = miner.New(n.engine, cfg.Protocol.MiningReward, cfg.Protocol.MiningDifficulty, cfg.Protocol.MaxBlockTxs)
	return n
}

// Bootstrap replaces the peer set with PeerCount fresh inactive peers,
// numbered from 1, fully connected when configured.
func (n *Network) Bootstrap() []*Peer {
	n.mu.Lock()
	defer n.mu.Unlock()

	peers := make([]*Peer, 0, n.cfg.Network.PeerCount)
	for id := 1; id <= n.cfg.Network.PeerCount; id++ {
		p := NewPeer(id, n.cfg.Protocol.GenesisReward)
		p.Pending = mempool.New(n.cfg.Mempool.MaxSize)
		peers = append(peers, p)
	}
	if n.cfg.Network.FullyConnected {
		peers = ConnectAll(peers)
	}
	n.peers = peers

	log.Network.Info().
		Int("peers", len(peers)).
		Bool("fully_connected", n.cfg.Network.FullyConnected).
		Msg("Network bootstrapped")
	n.persistLocked()
	return n.snapshotLocked()
}

// Peers returns copies of every peer.
func (n *Network) Peers() []*Peer {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

// Peer returns a copy of the peer with id.
func (n *Network) Peer(id int) (*Peer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p, _, err := n.findLocked(id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Connect links peers a and b.
func (n *Network) Connect(a, b int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	pa, ia, err := n.findLocked(a)
	if err != nil {
		return err
	}
	pb, ib, err := n.findLocked(b)
	if err != nil {
		return err
	}
	peers := copyPeers(n.peers)
	peers[ia], peers[ib] = Connect(pa, pb)
	n.peers = peers
	n.persistLocked()
	return nil
}

// Activate attaches a wallet to peer id and marks it active. A peer that
// already holds a wallet keeps it and is only reactivated. New wallets
// come from the configured mnemonic (account index = peer id) or from a
// fresh key pair.
func (n *Network) Activate(ctx context.Context, id int) (*Peer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	p, idx, err := n.findLocked(id)
	if err != nil {
		return nil, err
	}
	logger := log.WithPeer(log.Network, id)

	var updated *Peer
	if p.Wallet != nil {
		updated = p.Clone()
		updated.IsActive = true
		logger.Info().Str("address", updated.Address()).Msg("Peer reactivated")
	} else {
		w, err := n.newWallet(id)
		if err != nil {
			return nil, err
		}
		updated, err = ActivateWallet(ctx, p, w, Funding{
			Engine:     n.engine,
			Amount:     n.cfg.Protocol.FundingAmount,
			Difficulty: n.cfg.Protocol.FundingDifficulty,
		})
		if err != nil {
			return nil, fmt.Errorf("activate peer %d: %w", id, err)
		}
		logger.Info().
			Str("address", w.Address).
			Int("port", w.Port).
			Int("height", updated.Height()).
			Uint64("balance", updated.Wallet.Balance()).
			Msg("Peer activated")
	}

	peers := copyPeers(n.peers)
	peers[idx] = updated
	n.peers = peers
	n.persistLocked()
	return updated.Clone(), nil
}

func (n *Network) newWallet(id int) (*wallet.Wallet, error) {
	port := n.cfg.PeerPort(id)
	if n.cfg.Wallet.Mnemonic != "" {
		w, err := wallet.FromMnemonic(n.cfg.Wallet.Mnemonic, n.cfg.Wallet.Passphrase, uint32(id), port)
		if err != nil {
			return nil, err
		}
		logger := log.WithPeer(log.Wallet, id)
		logger.Debug().Uint32("account", uint32(id)).Msg("Wallet derived from mnemonic")
		return w, nil
	}
	w, err := wallet.Generate(port)
	if err != nil {
		return nil, err
	}
	logger := log.WithPeer(log.Wallet, id)
	logger.Debug().Msg("Wallet generated")
	return w, nil
}

// Deactivate clears peer id's active flag.
func (n *Network) Deactivate(id int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	p, idx, err := n.findLocked(id)
	if err != nil {
		return err
	}
	peers := copyPeers(n.peers)
	peers[idx] = Deactivate(p)
	n.peers = peers

	logger := log.WithPeer(log.Network, id)
	logger.Info().Msg("Peer deactivated")
	n.persistLocked()
	return nil
}

// Send builds a transfer of amount from peer fromID to peer toID's
// address and broadcasts it from the sender. Outputs already claimed by
// a transaction in the sender's pending pool are not selected again.
func (n *Network) Send(fromID, toID int, amount uint64) (*tx.Transaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	src, _, err := n.findLocked(fromID)
	if err != nil {
		return nil, err
	}
	if err := requireWallet(src); err != nil {
		return nil, err
	}
	dst, _, err := n.findLocked(toID)
	if err != nil || !dst.IsActive || dst.Wallet == nil || toID == fromID {
		return nil, fmt.Errorf("%w: peer %d", ErrInvalidRecipient, toID)
	}

	t, err := tx.Build(src.Wallet.Sender(), dst.Wallet.Address, amount, spendable(src))
	if err != nil {
		return nil, err
	}
	if err := n.admitLocked(src, t); err != nil {
		return nil, err
	}

	n.peers = RefreshWalletUTXOs(BroadcastTransaction(n.peers, fromID, t))
	logger := log.WithPeer(log.Network, fromID)
	logger.Info().
		Str("tx", t.ID).
		Int("to", toID).
		Uint64("amount", amount).
		Msg("Transaction broadcast")
	n.persistLocked()
	return t, nil
}

// admitLocked runs relay policy and full validation against the sender's
// chain before t is broadcast.
func (n *Network) admitLocked(src *Peer, t *tx.Transaction) error {
	if err := n.policy.Check(t); err != nil {
		return fmt.Errorf("relay policy: %w", err)
	}
	if err := tx.Verify(t, utxo.FromChain(src.Blockchain)); err != nil {
		return err
	}
	return nil
}

// Mine seals a block of peer id's pending transactions, broadcasts it,
// refreshes wallets and reconciles chains. The proof-of-work search runs
// without holding the lock; if the peer's tip changed meanwhile the
// block is discarded with ErrStaleTip.
func (n *Network) Mine(ctx context.Context, id int) (*block.Block, error) {
	n.mu.Lock()
	p, _, err := n.findLocked(id)
	if err == nil {
		err = requireWallet(p)
	}
	if err != nil {
		n.mu.Unlock()
		return nil, err
	}
	tip := p.Tip()
	pending := p.Pending.List()
	minerAddr := p.Wallet.Address
	n.mu.Unlock()

	blk, err := n.miner.ProduceBlock(ctx, tip, pending, minerAddr)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	p, _, err = n.findLocked(id)
	if err != nil {
		return nil, err
	}
	if cur := p.Tip(); cur == nil || cur.Hash != tip.Hash {
		return nil, fmt.Errorf("%w: peer %d", ErrStaleTip, id)
	}
	if err := n.engine.VerifyBlock(blk, tip); err != nil {
		return nil, fmt.Errorf("mined block rejected: %w", err)
	}

	peers := BroadcastBlock(n.peers, id, blk)
	peers = RefreshWalletUTXOs(peers)
	peers = ReconcileChains(peers)
	n.peers = RefreshWalletUTXOs(peers)

	logger := log.WithPeer(log.Network, id)
	logger.Info().
		Uint64("index", blk.Index).
		Str("hash", blk.Hash).
		Int("txs", len(blk.Transactions)).
		Msg("Block mined")
	n.persistLocked()
	return blk, nil
}

// Reconcile applies the longest-chain rule across active peers and
// refreshes wallet UTXOs.
func (n *Network) Reconcile() {
	n.mu.Lock()
	defer n.mu.Unlock()

	before := heights(n.peers)
	n.peers = RefreshWalletUTXOs(ReconcileChains(n.peers))
	for _, p := range n.peers {
		if h := p.Height(); h != before[p.ID] {
			logger := log.WithPeer(log.Network, p.ID)
			logger.Info().
				Int("from", before[p.ID]).
				Int("to", h).
				Msg("Adopted longer chain")
		}
	}
	n.persistLocked()
}

// DeployContract creates a contract owned by peer id's wallet and adds
// it to that peer's table. With a configured deployment fee, a
// deployment transaction paying the fee is broadcast first; failing to
// fund it fails the deployment.
func (n *Network) DeployContract(id int, kind contract.Kind, name, code string) (*contract.Contract, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	p, idx, err := n.findLocked(id)
	if err != nil {
		return nil, err
	}
	if err := requireWallet(p); err != nil {
		return nil, err
	}

	c := contract.New(kind, name, code, p.Wallet.Address)
	peers := n.peers

	if fee := n.cfg.Contract.DeployFee; fee > 0 {
		t, err := tx.BuildDeployment(p.Wallet.Sender(), tx.Deployment{
			Address: c.Address,
			Code:    code,
			Kind:    string(kind),
			Name:    name,
			Owner:   p.Wallet.Address,
			Fee:     fee,
		}, spendable(p))
		if err != nil {
			return nil, fmt.Errorf("deployment fee: %w", err)
		}
		if err := n.admitLocked(p, t); err != nil {
			return nil, err
		}
		peers = RefreshWalletUTXOs(BroadcastTransaction(peers, id, t))
		p = peers[idx]
	}

	updated, err := DeployContract(p, c)
	if err != nil {
		return nil, err
	}
	peers = copyPeers(peers)
	peers[idx] = updated
	n.peers = peers

	logger := log.WithPeer(log.Contract, id)
	logger.Info().
		Str("address", c.Address).
		Str("kind", string(kind)).
		Str("name", name).
		Msg("Contract deployed")
	n.persistLocked()
	return c.Clone(), nil
}

// ExecuteContract calls method on the contract at addr in peer id's
// table with the peer's wallet as sender. The call runs on a copy of the
// contract; the copy replaces the stored record unless execution
// panicked, so rejected calls keep any state they legitimately recorded
// (an auction marking itself ended).
func (n *Network) ExecuteContract(id int, addr, method string, params []types.Value) (contract.Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	p, idx, err := n.findLocked(id)
	if err != nil {
		return nil, err
	}
	if err := requireWallet(p); err != nil {
		return nil, err
	}
	c, ok := p.Contracts.Get(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", contract.ErrNotFound, addr)
	}

	working := c.Clone()
	res, execErr := n.contracts.Execute(working, method, params, p.Wallet.Address)
	logger := log.WithPeer(log.Contract, id)
	if execErr != nil {
		logger.Debug().Err(execErr).Str("contract", addr).Str("method", method).Msg("Contract call rejected")
	}
	if errors.Is(execErr, contract.ErrExecution) {
		return nil, execErr
	}

	updated := p.Clone()
	if err := updated.Contracts.Replace(working); err != nil {
		return nil, err
	}
	peers := copyPeers(n.peers)
	peers[idx] = updated
	n.peers = peers
	n.persistLocked()

	if execErr != nil {
		return nil, execErr
	}
	logger.Info().Str("contract", addr).Str("method", method).Msg("Contract executed")
	return res, nil
}

// Balance returns the cached wallet balance of peer id.
func (n *Network) Balance(id int) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	p, _, err := n.findLocked(id)
	if err != nil {
		return 0, err
	}
	if p.Wallet == nil {
		return 0, fmt.Errorf("%w: peer %d", ErrNoWallet, id)
	}
	return p.Wallet.Balance(), nil
}

func (n *Network) findLocked(id int) (*Peer, int, error) {
	p, idx := Find(n.peers, id)
	if p == nil {
		return nil, -1, fmt.Errorf("%w: %d", ErrPeerNotFound, id)
	}
	return p, idx, nil
}

func (n *Network) snapshotLocked() []*Peer {
	out := make([]*Peer, len(n.peers))
	for i, p := range n.peers {
		out[i] = p.Clone()
	}
	return out
}

func requireWallet(p *Peer) error {
	if !p.IsActive {
		return fmt.Errorf("%w: peer %d", ErrPeerInactive, p.ID)
	}
	if p.Wallet == nil {
		return fmt.Errorf("%w: peer %d", ErrNoWallet, p.ID)
	}
	return nil
}

// spendable returns the wallet's cached UTXOs minus those already spent
// by a transaction in the peer's pending pool.
func spendable(p *Peer) []types.UTXO {
	claimed := make(map[types.Outpoint]struct{})
	for _, t := range p.Pending.List() {
		for _, in := range t.Inputs {
			claimed[in.PrevOut()] = struct{}{}
		}
	}
	out := make([]types.UTXO, 0, len(p.Wallet.UTXOs))
	for _, u := range p.Wallet.UTXOs {
		if _, ok := claimed[u.Outpoint()]; !ok {
			out = append(out, u)
		}
	}
	return out
}

func heights(peers []*Peer) map[int]int {
	h := make(map[int]int, len(peers))
	for _, p := range peers {
		h[p.ID] = p.Height()
	}
	return h
}
