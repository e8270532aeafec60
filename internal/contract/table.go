package contract

import "fmt"

// Table is a peer's deployed contracts in deployment order.
type Table struct {
	order  []string
	byAddr map[string]*Contract
}

// NewTable creates a table holding contracts. Later duplicates of an
// address are ignored.
func NewTable(contracts ...*Contract) *Table {
	t := &Table{byAddr: make(map[string]*Contract, len(contracts))}
	for _, c := range contracts {
		_ = t.Deploy(c)
	}
	return t
}

// Deploy adds c to the table.
func (t *Table) Deploy(c *Contract) error {
	if _, exists := t.byAddr[c.Address]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAddress, c.Address)
	}
	t.byAddr[c.Address] = c
	t.order = append(t.order, c.Address)
	return nil
}

// Get returns the contract at addr.
func (t *Table) Get(addr string) (*Contract, bool) {
	c, ok := t.byAddr[addr]
	return c, ok
}

// Replace swaps in c for the contract with the same address.
func (t *Table) Replace(c *Contract) error {
	if _, ok := t.byAddr[c.Address]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, c.Address)
	}
	t.byAddr[c.Address] = c
	return nil
}

// List returns the contracts in deployment order.
func (t *Table) List() []*Contract {
	out := make([]*Contract, 0, len(t.order))
	for _, addr := range t.order {
		out = append(out, t.byAddr[addr])
	}
	return out
}

// Len returns the number of deployed contracts.
func (t *Table) Len() int {
	return len(t.order)
}

// Clone returns a deep copy of the table and every contract in it.
func (t *Table) Clone() *Table {
	c := &Table{
		order:  append([]string(nil), t.order...),
		byAddr: make(map[string]*Contract, len(t.byAddr)),
	}
	for addr, ct := range t.byAddr {
		c.byAddr[addr] = ct.Clone()
	}
	return c
}
