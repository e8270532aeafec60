package contract

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Result is the named output of a successful call.
type Result map[string]types.Value

// Engine executes contract methods against a clock.
type Engine struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

var defaultEngine = &Engine{}

// Execute runs method on c with the wall clock.
func Execute(c *Contract, method string, params []types.Value, sender string) (Result, error) {
	return defaultEngine.Execute(c, method, params, sender)
}

// Execute dispatches method to c's kind and mutates c.State in place.
// Every method validates before mutating, so a returned error leaves the
// state untouched, except that a late bid records the auction as ended.
// A panic inside a method is reported as ErrExecution.
func (e *Engine) Execute(c *Contract, method string, params []types.Value, sender string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrExecution, r)
		}
	}()

	switch c.Kind {
	case KindToken:
		return execToken(c, method, params, sender)
	case KindStorage:
		return execStorage(c, method, params, sender)
	case KindAuction:
		return execAuction(c, method, params, sender, e.now())
	case KindCustom:
		return execCustom(c, method, params, sender)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, c.Kind)
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func methodNotFound(c *Contract, method string) error {
	return fmt.Errorf("%w: %s.%s", ErrMethodNotFound, c.Kind, method)
}

// param returns params[i] or an ErrInvalidParams error naming it.
func param(params []types.Value, i int, name string) (types.Value, error) {
	if i >= len(params) {
		return types.Value{}, fmt.Errorf("%w: missing %s", ErrInvalidParams, name)
	}
	return params[i], nil
}

func textParam(params []types.Value, i int, name string) (string, error) {
	v, err := param(params, i, name)
	if err != nil {
		return "", err
	}
	s, ok := v.AsText()
	if !ok {
		return "", fmt.Errorf("%w: %s must be text, got %s", ErrInvalidParams, name, v.Kind)
	}
	return s, nil
}

func uintParam(params []types.Value, i int, name string) (uint64, error) {
	v, err := param(params, i, name)
	if err != nil {
		return 0, err
	}
	n, ok := v.AsUint()
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %s", ErrInvalidParams, name, v)
	}
	return n, nil
}
