package contract

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/peerledger/pkg/types"
)

func customState(c *Contract) *CustomState {
	if c.State.Custom == nil {
		c.State.Custom = &CustomState{
			Initialized: true,
			Owner:       c.Owner,
			Data:        make(map[string]types.Value),
		}
	}
	return c.State.Custom
}

func execCustom(c *Contract, method string, params []types.Value, sender string) (Result, error) {
	st := customState(c)

	switch method {
	case "call":
		// Echo only; custom code is never run.
		var fn string
		var args []string
		if len(params) > 0 {
			fn = params[0].String()
			for _, p := range params[1:] {
				args = append(args, p.String())
			}
		}
		return Result{
			"success": types.Bool(true),
			"result":  types.Text(fmt.Sprintf("Called %s with params: %s", fn, strings.Join(args, ", "))),
			"sender":  types.Text(sender),
		}, nil

	case "update":
		code, err := textParam(params, 0, "code")
		if err != nil {
			return nil, err
		}
		if sender != st.Owner {
			return nil, fmt.Errorf("%w: only the owner can update code", ErrNotAuthorized)
		}
		c.Code = code
		return Result{"success": types.Bool(true)}, nil

	default:
		return nil, methodNotFound(c, method)
	}
}
