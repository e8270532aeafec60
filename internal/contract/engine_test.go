package contract

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Klingon-tech/peerledger/pkg/types"
)

const owner = "owner-addr"

func mustExec(t *testing.T, e *Engine, c *Contract, method string, sender string, params ...types.Value) Result {
	t.Helper()
	res, err := e.Execute(c, method, params, sender)
	if err != nil {
		t.Fatalf("%s(%v) by %s: %v", method, params, sender, err)
	}
	return res
}

func uintResult(t *testing.T, res Result, key string) uint64 {
	t.Helper()
	n, ok := res[key].AsUint()
	if !ok {
		t.Fatalf("result[%q] = %v, want integer", key, res[key])
	}
	return n
}

func TestToken_Scenario(t *testing.T) {
	e := &Engine{}
	c := New(KindToken, "Coin", "", owner)

	if got := uintResult(t, mustExec(t, e, c, "balanceOf", owner, types.Text(owner)), "balance"); got != 1000 {
		t.Fatalf("initial owner balance = %d, want 1000", got)
	}

	res := mustExec(t, e, c, "transfer", owner, types.Text("x"), types.Uint(200))
	if got := uintResult(t, res, "newBalance"); got != 800 {
		t.Errorf("newBalance = %d, want 800", got)
	}
	if got := uintResult(t, mustExec(t, e, c, "balanceOf", "anyone", types.Text(owner)), "balance"); got != 800 {
		t.Errorf("owner balance = %d, want 800", got)
	}
	if got := uintResult(t, mustExec(t, e, c, "balanceOf", "anyone", types.Text("x")), "balance"); got != 200 {
		t.Errorf("x balance = %d, want 200", got)
	}

	before := c.Clone()
	_, err := e.Execute(c, "transfer", []types.Value{types.Text(owner), types.Uint(1)}, "broke")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("transfer from empty balance err = %v", err)
	}
	if len(c.State.Token.Balances) != len(before.State.Token.Balances) ||
		c.State.Token.Balances[owner] != 800 || c.State.Token.Balances["x"] != 200 {
		t.Errorf("failed transfer mutated state: %+v", c.State.Token.Balances)
	}
}

func TestToken_Metadata(t *testing.T) {
	e := &Engine{}
	c := New(KindToken, "", "", owner)

	if s, _ := mustExec(t, e, c, "name", owner)["name"].AsText(); s != "Token" {
		t.Errorf("name = %q, want Token", s)
	}
	if s, _ := mustExec(t, e, c, "symbol", owner)["symbol"].AsText(); s != "TKN" {
		t.Errorf("symbol = %q, want TKN", s)
	}
	if got := uintResult(t, mustExec(t, e, c, "totalSupply", owner), "totalSupply"); got != 1000 {
		t.Errorf("totalSupply = %d", got)
	}
}

func TestToken_InvalidParams(t *testing.T) {
	c := New(KindToken, "Coin", "", owner)
	tests := []struct {
		name   string
		params []types.Value
	}{
		{"missing amount", []types.Value{types.Text("x")}},
		{"negative amount", []types.Value{types.Text("x"), types.Number(-5)}},
		{"fractional amount", []types.Value{types.Text("x"), types.Number(1.5)}},
		{"numeric recipient", []types.Value{types.Number(1), types.Uint(5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Execute(c, "transfer", tt.params, owner)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("err = %v, want ErrInvalidParams", err)
			}
		})
	}
	if c.State.Token.Balances[owner] != 1000 {
		t.Error("invalid calls must not move balance")
	}
}

func TestStorage(t *testing.T) {
	e := &Engine{}
	c := New(KindStorage, "Store", "", owner)

	if v := mustExec(t, e, c, "get", "anyone", types.Text("k"))["value"]; !v.IsNull() {
		t.Errorf("unset key = %v, want null", v)
	}

	_, err := e.Execute(c, "set", []types.Value{types.Text("k"), types.Text("v")}, "stranger")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("set by stranger err = %v", err)
	}
	if _, ok := c.State.Storage.Storage["k"]; ok {
		t.Error("unauthorized set must not write")
	}

	mustExec(t, e, c, "set", owner, types.Text("k"), types.Uint(7))
	if n, _ := mustExec(t, e, c, "get", "anyone", types.Text("k"))["value"].AsUint(); n != 7 {
		t.Errorf("get = %d, want 7", n)
	}

	if _, err := e.Execute(c, "addOwner", []types.Value{types.Text("stranger")}, "stranger"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("addOwner by stranger err = %v", err)
	}
	mustExec(t, e, c, "addOwner", owner, types.Text("friend"))
	mustExec(t, e, c, "set", "friend", types.Text("k"), types.Text("new"))
	if s, _ := mustExec(t, e, c, "get", owner, types.Text("k"))["value"].AsText(); s != "new" {
		t.Errorf("get = %q, want new", s)
	}
}

func TestAuction(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	e := &Engine{Now: func() time.Time { return now }}
	c := New(KindAuction, "Auction", "", owner)

	res := mustExec(t, e, c, "getHighestBid", "anyone")
	if !res["highestBidder"].IsNull() || uintResult(t, res, "highestBid") != 0 {
		t.Errorf("initial standing = %v", res)
	}
	if c.State.Auction.Item != "Default Item" {
		t.Errorf("item = %q", c.State.Auction.Item)
	}

	mustExec(t, e, c, "bid", "alice", types.Uint(10))
	if _, err := e.Execute(c, "bid", []types.Value{types.Uint(10)}, "bob"); !errors.Is(err, ErrBidTooLow) {
		t.Fatalf("equal bid err = %v, want ErrBidTooLow", err)
	}
	mustExec(t, e, c, "bid", "bob", types.Uint(15))

	st := c.State.Auction
	if st.HighestBidder != "bob" || st.HighestBid != 15 {
		t.Errorf("standing = %s/%d", st.HighestBidder, st.HighestBid)
	}
	if st.Bids["alice"] != 0 || st.Bids["bob"] != 15 {
		t.Errorf("bids = %v, outbid bidder should be zeroed", st.Bids)
	}

	if _, err := e.Execute(c, "endAuction", nil, "bob"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("endAuction by non-owner err = %v", err)
	}
	res = mustExec(t, e, c, "endAuction", owner)
	if w, _ := res["winner"].AsText(); w != "bob" || uintResult(t, res, "amount") != 15 {
		t.Errorf("endAuction result = %v", res)
	}
	if _, err := e.Execute(c, "endAuction", nil, owner); !errors.Is(err, ErrAlreadyEnded) {
		t.Errorf("second endAuction err = %v", err)
	}
	if _, err := e.Execute(c, "bid", []types.Value{types.Uint(100)}, "carol"); !errors.Is(err, ErrAuctionEnded) {
		t.Errorf("bid after end err = %v", err)
	}
}

func TestAuction_Expiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	e := &Engine{Now: func() time.Time { return now }}
	c := New(KindAuction, "Auction", "", owner)
	mustExec(t, e, c, "getHighestBid", "anyone")

	now = now.Add(25 * time.Hour)
	res := mustExec(t, e, c, "getHighestBid", "anyone")
	if ended, _ := res["ended"].AsBool(); !ended {
		t.Error("getHighestBid should report ended past end time")
	}
	if c.State.Auction.Ended {
		t.Error("getHighestBid must not persist the ended flag")
	}

	if _, err := e.Execute(c, "bid", []types.Value{types.Uint(1)}, "alice"); !errors.Is(err, ErrAuctionEnded) {
		t.Fatalf("late bid err = %v", err)
	}
	if !c.State.Auction.Ended {
		t.Error("late bid should mark the auction ended")
	}
}

func TestCustom(t *testing.T) {
	e := &Engine{}
	c := New(KindCustom, "Thing", "v1", owner)

	res := mustExec(t, e, c, "call", "anyone", types.Text("doIt"), types.Uint(1), types.Text("two"))
	msg, _ := res["result"].AsText()
	if msg != "Called doIt with params: 1, two" {
		t.Errorf("result = %q", msg)
	}
	if s, _ := res["sender"].AsText(); s != "anyone" {
		t.Errorf("sender = %q", s)
	}
	if !c.State.Custom.Initialized || c.State.Custom.Owner != owner {
		t.Errorf("custom state = %+v", c.State.Custom)
	}

	if _, err := e.Execute(c, "update", []types.Value{types.Text("v2")}, "stranger"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("update by stranger err = %v", err)
	}
	mustExec(t, e, c, "update", owner, types.Text("v2"))
	if c.Code != "v2" {
		t.Errorf("code = %q, want v2", c.Code)
	}
}

func TestExecute_MethodNotFound(t *testing.T) {
	for _, kind := range []Kind{KindToken, KindStorage, KindAuction, KindCustom} {
		c := New(kind, "n", "", owner)
		if _, err := Execute(c, "nope", nil, owner); !errors.Is(err, ErrMethodNotFound) {
			t.Errorf("%s: err = %v, want ErrMethodNotFound", kind, err)
		}
	}
}

func TestExecute_UnsupportedKind(t *testing.T) {
	c := New(Kind("oracle"), "n", "", owner)
	if _, err := Execute(c, "call", nil, owner); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("err = %v, want ErrUnsupportedKind", err)
	}
}

func TestExecute_PanicIsExecutionError(t *testing.T) {
	c := New(KindStorage, "n", "", owner)
	c.State.Storage = &StorageState{Owners: map[string]bool{owner: true}} // nil Storage map
	_, err := Execute(c, "set", []types.Value{types.Text("k"), types.Text("v")}, owner)
	if !errors.Is(err, ErrExecution) {
		t.Errorf("err = %v, want ErrExecution", err)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("auction"); err != nil || k != KindAuction {
		t.Errorf("ParseKind(auction) = %v, %v", k, err)
	}
	if _, err := ParseKind("oracle"); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("ParseKind(oracle) err = %v", err)
	}
}

func TestNew_Address(t *testing.T) {
	a := New(KindToken, "n", "", owner)
	b := New(KindToken, "n", "", owner)
	if len(a.Address) != 64 || strings.Trim(a.Address, "0123456789abcdef") != "" {
		t.Errorf("address = %q, want 64 hex chars", a.Address)
	}
	if a.Address == b.Address {
		t.Error("contracts created at different times should get different addresses")
	}
}
