// Package mempool manages pending transactions waiting for block inclusion.
package mempool

import (
	"errors"
	"sync"

	"github.com/Klingon-tech/peerledger/pkg/tx"
)

// ErrCoinbase is returned by Policy.Check for coinbase transactions.
var ErrCoinbase = errors.New("coinbase transactions are not relayed")

// Pool holds unconfirmed transactions in arrival order.
type Pool struct {
	mu      sync.RWMutex
	txs     []*tx.Transaction
	ids     map[string]struct{}
	maxSize int // 0 = unbounded
}

// New creates an empty pool. maxSize <= 0 means unbounded.
func New(maxSize int) *Pool {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Pool{
		ids:     make(map[string]struct{}),
		maxSize: maxSize,
	}
}

// FromList creates an unbounded pool holding txs, skipping duplicate ids.
func FromList(txs []*tx.Transaction) *Pool {
	p := New(0)
	for _, t := range txs {
		p.Add(t)
	}
	return p
}

// Add appends t unless a transaction with the same id is already
// pending. Reports whether t was added. When the pool grows past its
// maximum size the oldest entries are evicted.
func (p *Pool) Add(t *tx.Transaction) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.ids[t.ID]; exists {
		return false
	}
	p.txs = append(p.txs, t)
	p.ids[t.ID] = struct{}{}
	p.evictLocked()
	return true
}

// Has checks if a transaction id is pending.
func (p *Pool) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.ids[id]
	return ok
}

// Get returns the pending transaction with id, or nil.
func (p *Pool) Get(id string) *tx.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, t := range p.txs {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// RemoveConfirmed removes transactions that were included in a block.
func (p *Pool) RemoveConfirmed(transactions []*tx.Transaction) int {
	ids := make(map[string]struct{}, len(transactions))
	for _, t := range transactions {
		ids[t.ID] = struct{}{}
	}
	return p.RemoveIDs(ids)
}

// RemoveIDs drops every pending transaction whose id is in ids and
// returns how many were removed.
func (p *Pool) RemoveIDs(ids map[string]struct{}) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.txs[:0]
	removed := 0
	for _, t := range p.txs {
		if _, ok := ids[t.ID]; ok {
			delete(p.ids, t.ID)
			removed++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(p.txs); i++ {
		p.txs[i] = nil
	}
	p.txs = kept
	return removed
}

// SelectForBlock returns up to limit transactions in arrival order.
// limit <= 0 returns everything.
func (p *Pool) SelectForBlock(limit int) []*tx.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := len(p.txs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*tx.Transaction, n)
	copy(out, p.txs[:n])
	return out
}

// Count returns the number of pending transactions.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.txs)
}

// List returns all pending transactions in arrival order.
func (p *Pool) List() []*tx.Transaction {
	return p.SelectForBlock(0)
}

// Clone returns an independent pool with the same entries. Transactions
// are immutable once built and are shared.
func (p *Pool) Clone() *Pool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c := New(p.maxSize)
	c.txs = make([]*tx.Transaction, len(p.txs))
	copy(c.txs, p.txs)
	for id := range p.ids {
		c.ids[id] = struct{}{}
	}
	return c
}
