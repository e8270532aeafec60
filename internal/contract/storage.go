package contract

import (
	"fmt"

	"github.com/Klingon-tech/peerledger/pkg/types"
)

func storageState(c *Contract) *StorageState {
	if c.State.Storage == nil {
		c.State.Storage = &StorageState{
			Storage: make(map[string]types.Value),
			Owners:  map[string]bool{c.Owner: true},
		}
	}
	return c.State.Storage
}

func execStorage(c *Contract, method string, params []types.Value, sender string) (Result, error) {
	st := storageState(c)

	switch method {
	case "set":
		key, err := textParam(params, 0, "key")
		if err != nil {
			return nil, err
		}
		value, err := param(params, 1, "value")
		if err != nil {
			return nil, err
		}
		if !st.Owners[sender] {
			return nil, fmt.Errorf("%w: %s is not an owner", ErrNotAuthorized, sender)
		}
		st.Storage[key] = value.Clone()
		return Result{
			"success": types.Bool(true),
			"key":     types.Text(key),
			"value":   value.Clone(),
		}, nil

	case "get":
		key, err := textParam(params, 0, "key")
		if err != nil {
			return nil, err
		}
		v, ok := st.Storage[key]
		if !ok {
			return Result{"value": types.Null()}, nil
		}
		return Result{"value": v.Clone()}, nil

	case "addOwner":
		owner, err := textParam(params, 0, "address")
		if err != nil {
			return nil, err
		}
		if !st.Owners[sender] {
			return nil, fmt.Errorf("%w: %s is not an owner", ErrNotAuthorized, sender)
		}
		st.Owners[owner] = true
		return Result{
			"success":  types.Bool(true),
			"newOwner": types.Text(owner),
		}, nil

	default:
		return nil, methodNotFound(c, method)
	}
}
