// Package contract implements the built-in contract kinds and their
// execution engine.
package contract

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Kind selects the method table a contract dispatches to.
type Kind string

const (
	KindToken   Kind = "token"
	KindStorage Kind = "storage"
	KindAuction Kind = "auction"
	KindCustom  Kind = "custom"
)

// ParseKind validates s as a contract kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindToken, KindStorage, KindAuction, KindCustom:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// Contract is a deployed contract and its persistent state.
type Contract struct {
	Address    string `json:"address" cbor:"address"`
	Code       string `json:"code" cbor:"code"`
	State      State  `json:"state" cbor:"state"`
	Owner      string `json:"owner" cbor:"owner"`
	Name       string `json:"name" cbor:"name"`
	Kind       Kind   `json:"kind" cbor:"kind"`
	DeployedAt int64  `json:"deployed_at" cbor:"deployed_at"`
}

// State holds the per-kind state. Only the field matching the contract's
// kind is used; it stays nil until the first call.
type State struct {
	Token   *TokenState   `json:"token,omitempty" cbor:"token,omitempty"`
	Storage *StorageState `json:"storage,omitempty" cbor:"storage,omitempty"`
	Auction *AuctionState `json:"auction,omitempty" cbor:"auction,omitempty"`
	Custom  *CustomState  `json:"custom,omitempty" cbor:"custom,omitempty"`
}

// TokenState is a fungible token ledger.
type TokenState struct {
	Balances    map[string]uint64 `json:"balances" cbor:"balances"`
	TotalSupply uint64            `json:"total_supply" cbor:"total_supply"`
	Name        string            `json:"name" cbor:"name"`
	Symbol      string            `json:"symbol" cbor:"symbol"`
}

// StorageState is an owner-gated key/value store.
type StorageState struct {
	Storage map[string]types.Value `json:"storage" cbor:"storage"`
	Owners  map[string]bool        `json:"owners" cbor:"owners"`
}

// AuctionState is a single-item ascending auction.
type AuctionState struct {
	Item          string            `json:"item" cbor:"item"`
	HighestBid    uint64            `json:"highest_bid" cbor:"highest_bid"`
	HighestBidder string            `json:"highest_bidder" cbor:"highest_bidder"`
	EndTime       int64             `json:"end_time" cbor:"end_time"`
	Ended         bool              `json:"ended" cbor:"ended"`
	Bids          map[string]uint64 `json:"bids" cbor:"bids"`
}

// CustomState is the state of a custom contract.
type CustomState struct {
	Initialized bool                   `json:"initialized" cbor:"initialized"`
	Owner       string                 `json:"owner" cbor:"owner"`
	Data        map[string]types.Value `json:"data" cbor:"data"`
}

// New creates an undeployed contract. Its address is derived from the
// creation time, owner and name.
func New(kind Kind, name, code, owner string) *Contract {
	nanos := types.UniqueNanos()
	return &Contract{
		Address:    crypto.Hash(fmt.Sprintf("contract-%d-%s-%s", nanos, owner, name)),
		Code:       code,
		Owner:      owner,
		Name:       name,
		Kind:       kind,
		DeployedAt: nanos / int64(time.Millisecond),
	}
}

// Clone returns a deep copy of c.
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	out := *c
	out.State = c.State.clone()
	return &out
}

func (s State) clone() State {
	var out State
	if t := s.Token; t != nil {
		cp := *t
		cp.Balances = make(map[string]uint64, len(t.Balances))
		for k, v := range t.Balances {
			cp.Balances[k] = v
		}
		out.Token = &cp
	}
	if st := s.Storage; st != nil {
		cp := StorageState{
			Storage: make(map[string]types.Value, len(st.Storage)),
			Owners:  make(map[string]bool, len(st.Owners)),
		}
		for k, v := range st.Storage {
			cp.Storage[k] = v.Clone()
		}
		for k, v := range st.Owners {
			cp.Owners[k] = v
		}
		out.Storage = &cp
	}
	if a := s.Auction; a != nil {
		cp := *a
		cp.Bids = make(map[string]uint64, len(a.Bids))
		for k, v := range a.Bids {
			cp.Bids[k] = v
		}
		out.Auction = &cp
	}
	if c := s.Custom; c != nil {
		cp := *c
		cp.Data = make(map[string]types.Value, len(c.Data))
		for k, v := range c.Data {
			cp.Data[k] = v.Clone()
		}
		out.Custom = &cp
	}
	return out
}
