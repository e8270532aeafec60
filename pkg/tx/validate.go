package tx

import (
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/peerledger/pkg/crypto"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// Validation errors.
var (
	ErrCoinbaseInputs   = errors.New("coinbase transaction has inputs")
	ErrNoInputs         = errors.New("transaction has no inputs")
	ErrNoOutputs        = errors.New("transaction has no outputs")
	ErrUnknownUTXO      = errors.New("input references unknown UTXO")
	ErrSignatureInvalid = errors.New("input signature invalid")
	ErrValueCreated     = errors.New("outputs exceed inputs")
	ErrInputOverflow    = errors.New("input values overflow")
)

// UTXOProvider provides read-only access to the UTXO set for validation.
type UTXOProvider interface {
	GetUTXO(outpoint types.Outpoint) (types.UTXO, bool)
}

// Verify checks a transaction against the UTXO set.
//
// Coinbase transactions are valid iff they have no inputs. Otherwise every
// input must reference an existing UTXO and carry a signature over its
// outpoint and the first output (or, for deployments, the contract address
// and fee). Only that one target is covered: additional outputs such as
// change are not signed. Inputs must cover outputs.
func Verify(t *Transaction, utxos UTXOProvider) error {
	if t.IsCoinbase() {
		if len(t.Inputs) != 0 {
			return ErrCoinbaseInputs
		}
		return nil
	}

	if len(t.Inputs) == 0 {
		return ErrNoInputs
	}

	address, amount, err := signedTarget(t)
	if err != nil {
		return err
	}

	var totalInput uint64
	for i, in := range t.Inputs {
		u, ok := utxos.GetUTXO(in.PrevOut())
		if !ok {
			return fmt.Errorf("input %d (%s): %w", i, in.PrevOut(), ErrUnknownUTXO)
		}

		msg := SigningMessage(in.PrevOut(), address, amount)
		if !crypto.Verify(msg, in.Signature, in.PublicKey) {
			return fmt.Errorf("input %d (%s): %w", i, in.PrevOut(), ErrSignatureInvalid)
		}

		if totalInput > math.MaxUint64-u.Amount {
			return fmt.Errorf("input %d: %w", i, ErrInputOverflow)
		}
		totalInput += u.Amount
	}

	totalOutput, err := t.TotalOutputValue()
	if err != nil {
		return err
	}
	if totalInput < totalOutput {
		return fmt.Errorf("%w: inputs=%d outputs=%d", ErrValueCreated, totalInput, totalOutput)
	}
	return nil
}

// IsValid is the boolean form of Verify.
func IsValid(t *Transaction, utxos UTXOProvider) bool {
	return Verify(t, utxos) == nil
}

// signedTarget returns the (address, amount) pair input signatures cover.
func signedTarget(t *Transaction) (string, uint64, error) {
	if t.Kind == KindContract && t.Contract != nil && t.Contract.Address != "" {
		return t.Contract.Address, t.Contract.Fee, nil
	}
	primary, ok := t.Primary()
	if !ok {
		return "", 0, ErrNoOutputs
	}
	return primary.Address, primary.Amount, nil
}
