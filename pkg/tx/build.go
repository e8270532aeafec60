package tx

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/peerledger/pkg/types"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrZeroAmount        = errors.New("amount must be positive")
)

// Sender identifies the spending side of a transfer.
type Sender struct {
	Address   string
	PublicKey string
}

// SigningKey returns the key input MACs are computed with. Verification
// only has the public key recorded on the input, so signing uses it too.
func (s Sender) SigningKey() string {
	return s.PublicKey
}

// SelectCoins picks UTXOs owned by address, smallest first, until their
// sum reaches target. Returns the selection and its total.
func SelectCoins(utxos []types.UTXO, address string, target uint64) ([]types.UTXO, uint64, error) {
	owned := make([]types.UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Address == address {
			owned = append(owned, u)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Amount < owned[j].Amount
	})
	return accumulate(owned, target)
}

// accumulate takes utxos in order until their sum reaches target.
func accumulate(utxos []types.UTXO, target uint64) ([]types.UTXO, uint64, error) {
	var (
		selected []types.UTXO
		total    uint64
	)
	for _, u := range utxos {
		if total >= target {
			break
		}
		selected = append(selected, u)
		total += u.Amount
	}
	if total < target {
		return nil, 0, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, total, target)
	}
	return selected, total, nil
}

// Build creates a signed transfer of amount from sender to recipient,
// spending the sender's UTXOs smallest first. Any surplus is returned to
// the sender as a second output.
func Build(sender Sender, recipient string, amount uint64, utxos []types.UTXO) (*Transaction, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	selected, total, err := SelectCoins(utxos, sender.Address, amount)
	if err != nil {
		return nil, err
	}

	b := NewBuilder(KindRegular)
	for _, u := range selected {
		b.AddInput(u.Outpoint())
	}
	b.AddOutput(recipient, amount)
	if total > amount {
		b.AddOutput(sender.Address, total-amount)
	}
	if err := b.Sign(sender.SigningKey(), sender.PublicKey, recipient, amount); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// Deployment describes a contract deployment paid for by a fee.
type Deployment struct {
	Address string
	Code    string
	Kind    string
	Name    string
	Owner   string
	Fee     uint64
}

// BuildDeployment creates the transaction recording a contract deployment.
// The sender's UTXOs are spent in the given order until the fee is
// covered; the remainder returns to the sender and no primary output is
// created. Inputs are signed over the contract address and fee.
func BuildDeployment(sender Sender, d Deployment, utxos []types.UTXO) (*Transaction, error) {
	owned := make([]types.UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Address == sender.Address {
			owned = append(owned, u)
		}
	}
	selected, total, err := accumulate(owned, d.Fee)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: deployment needs at least one input", ErrInsufficientFunds)
	}

	b := NewBuilder(KindContract)
	for _, u := range selected {
		b.AddInput(u.Outpoint())
	}
	if total > d.Fee {
		b.AddOutput(sender.Address, total-d.Fee)
	}
	b.SetContract(&ContractCall{
		Code:    d.Code,
		Method:  "deploy",
		Params:  []types.Value{types.Text(d.Kind), types.Text(d.Name), types.Text(d.Owner)},
		Address: d.Address,
		Fee:     d.Fee,
	})
	if err := b.Sign(sender.SigningKey(), sender.PublicKey, d.Address, d.Fee); err != nil {
		return nil, err
	}
	return b.Build(), nil
}
