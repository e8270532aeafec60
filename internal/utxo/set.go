// Package utxo derives and queries UTXO sets.
package utxo

import (
	"github.com/Klingon-tech/peerledger/pkg/block"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Compute replays chain in order and returns every output not spent by
// any input in the chain. Result order follows chain order and each
// outpoint appears at most once, even if a transaction was recorded twice.
func Compute(chain []*block.Block) []types.UTXO {
	spent := make(map[types.Outpoint]struct{})
	seen := make(map[types.Outpoint]struct{})
	var utxos []types.UTXO

	for _, b := range chain {
		for _, t := range b.Transactions {
			for _, in := range t.Inputs {
				spent[in.PrevOut()] = struct{}{}
			}
			for i, out := range t.Outputs {
				op := types.Outpoint{TxID: t.ID, Index: uint32(i)}
				if _, ok := spent[op]; ok {
					continue
				}
				if _, ok := seen[op]; ok {
					continue
				}
				seen[op] = struct{}{}
				utxos = append(utxos, types.UTXO{
					TxID:        t.ID,
					OutputIndex: uint32(i),
					Address:     out.Address,
					Amount:      out.Amount,
				})
			}
		}
	}

	// Drop outputs spent later in the chain.
	live := utxos[:0]
	for _, u := range utxos {
		if _, ok := spent[u.Outpoint()]; !ok {
			live = append(live, u)
		}
	}
	return live
}

// Set is an in-memory UTXO set keyed by outpoint.
type Set struct {
	byOutpoint map[types.Outpoint]types.UTXO
	order      []types.Outpoint
}

// NewSet indexes utxos. Later duplicates of an outpoint are ignored.
func NewSet(utxos []types.UTXO) *Set {
	s := &Set{byOutpoint: make(map[types.Outpoint]types.UTXO, len(utxos))}
	for _, u := range utxos {
		op := u.Outpoint()
		if _, ok := s.byOutpoint[op]; ok {
			continue
		}
		s.byOutpoint[op] = u
		s.order = append(s.order, op)
	}
	return s
}

// FromChain replays chain into a Set.
func FromChain(chain []*block.Block) *Set {
	return NewSet(Compute(chain))
}

// GetUTXO returns the UTXO at outpoint.
func (s *Set) GetUTXO(outpoint types.Outpoint) (types.UTXO, bool) {
	u, ok := s.byOutpoint[outpoint]
	return u, ok
}

// Has reports whether outpoint is unspent.
func (s *Set) Has(outpoint types.Outpoint) bool {
	_, ok := s.byOutpoint[outpoint]
	return ok
}

// Len returns the number of UTXOs.
func (s *Set) Len() int {
	return len(s.order)
}

// List returns all UTXOs in insertion order.
func (s *Set) List() []types.UTXO {
	out := make([]types.UTXO, 0, len(s.order))
	for _, op := range s.order {
		out = append(out, s.byOutpoint[op])
	}
	return out
}

// Owned returns the UTXOs paying address, in insertion order.
func (s *Set) Owned(address string) []types.UTXO {
	var out []types.UTXO
	for _, op := range s.order {
		if u := s.byOutpoint[op]; u.Address == address {
			out = append(out, u)
		}
	}
	return out
}

// Balance sums the UTXOs paying address.
func (s *Set) Balance(address string) uint64 {
	var total uint64
	for _, u := range s.byOutpoint {
		if u.Address == address {
			total += u.Amount
		}
	}
	return total
}
