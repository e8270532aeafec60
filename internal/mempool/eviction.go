package mempool

import (
	"github.com/Klingon-tech/peerledger/internal/log"
	"github.com/Klingon-tech/peerledger/pkg/tx"
)

// Evict removes the oldest transactions until the pool is at or below
// its maximum size. Returns the number evicted.
func (p *Pool) Evict() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.evictLocked()
}

func (p *Pool) evictLocked() int {
	if p.maxSize <= 0 || len(p.txs) <= p.maxSize {
		return 0
	}
	evicted := len(p.txs) - p.maxSize
	for _, t := range p.txs[:evicted] {
		delete(p.ids, t.ID)
	}
	p.txs = append([]*tx.Transaction(nil), p.txs[evicted:]...)
	log.Mempool.Debug().Int("evicted", evicted).Int("max", p.maxSize).Msg("Pool full, oldest dropped")
	return evicted
}
