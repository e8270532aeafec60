package contract

import (
	"fmt"

	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Token defaults applied on first call.
const (
	TokenInitialSupply = 1000
	TokenSymbol        = "TKN"
	TokenDefaultName   = "Token"
)

func tokenState(c *Contract) *TokenState {
	if c.State.Token == nil {
		name := c.Name
		if name == "" {
			name = TokenDefaultName
		}
		c.State.Token = &TokenState{
			Balances:    map[string]uint64{c.Owner: TokenInitialSupply},
			TotalSupply: TokenInitialSupply,
			Name:        name,
			Symbol:      TokenSymbol,
		}
	}
	return c.State.Token
}

func execToken(c *Contract, method string, params []types.Value, sender string) (Result, error) {
	st := tokenState(c)

	switch method {
	case "transfer":
		to, err := textParam(params, 0, "to")
		if err != nil {
			return nil, err
		}
		amount, err := uintParam(params, 1, "amount")
		if err != nil {
			return nil, err
		}
		bal := st.Balances[sender]
		if bal == 0 || bal < amount {
			return nil, fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, sender, bal, amount)
		}
		st.Balances[sender] = bal - amount
		st.Balances[to] += amount
		return Result{
			"success":    types.Bool(true),
			"newBalance": types.Uint(st.Balances[sender]),
		}, nil

	case "balanceOf":
		addr, err := textParam(params, 0, "address")
		if err != nil {
			return nil, err
		}
		return Result{"balance": types.Uint(st.Balances[addr])}, nil

	case "totalSupply":
		return Result{"totalSupply": types.Uint(st.TotalSupply)}, nil

	case "name":
		return Result{"name": types.Text(st.Name)}, nil

	case "symbol":
		return Result{"symbol": types.Text(st.Symbol)}, nil

	default:
		return nil, methodNotFound(c, method)
	}
}
