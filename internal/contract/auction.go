package contract

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Auction defaults applied on first call.
const (
	AuctionDefaultItem = "Default Item"
	AuctionDuration    = 24 * time.Hour
)

func auctionState(c *Contract, now time.Time) *AuctionState {
	if c.State.Auction == nil {
		c.State.Auction = &AuctionState{
			Item:    AuctionDefaultItem,
			EndTime: now.Add(AuctionDuration).UnixMilli(),
			Bids:    make(map[string]uint64),
		}
	}
	return c.State.Auction
}

func bidderValue(addr string) types.Value {
	if addr == "" {
		return types.Null()
	}
	return types.Text(addr)
}

func execAuction(c *Contract, method string, params []types.Value, sender string, now time.Time) (Result, error) {
	st := auctionState(c, now)
	nowMs := now.UnixMilli()

	switch method {
	case "bid":
		amount, err := uintParam(params, 0, "amount")
		if err != nil {
			return nil, err
		}
		if st.Ended || nowMs > st.EndTime {
			st.Ended = true
			return nil, ErrAuctionEnded
		}
		if amount <= st.HighestBid {
			return nil, fmt.Errorf("%w: %d <= %d", ErrBidTooLow, amount, st.HighestBid)
		}
		if st.HighestBidder != "" {
			st.Bids[st.HighestBidder] = 0
		}
		st.HighestBid = amount
		st.HighestBidder = sender
		st.Bids[sender] = amount
		return Result{
			"success":    types.Bool(true),
			"amount":     types.Uint(amount),
			"highestBid": types.Uint(st.HighestBid),
		}, nil

	case "getHighestBid":
		return Result{
			"highestBid":    types.Uint(st.HighestBid),
			"highestBidder": bidderValue(st.HighestBidder),
			"ended":         types.Bool(st.Ended || nowMs > st.EndTime),
		}, nil

	case "endAuction":
		if sender != c.Owner {
			return nil, fmt.Errorf("%w: only the owner can end the auction", ErrNotAuthorized)
		}
		if st.Ended {
			return nil, ErrAlreadyEnded
		}
		st.Ended = true
		return Result{
			"success": types.Bool(true),
			"winner":  bidderValue(st.HighestBidder),
			"amount":  types.Uint(st.HighestBid),
		}, nil

	default:
		return nil, methodNotFound(c, method)
	}
}
