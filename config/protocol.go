package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Protocol Rules
// Every peer of a run uses the same values; blocks mined under different
// rules would not agree.
// =============================================================================

// MaxDifficulty bounds the number of leading zero hex digits a block hash
// may be required to have. Anything beyond it would not finish on a CPU.
const MaxDifficulty = 8

// Protocol holds the ledger rules of a run.
type Protocol struct {
	GenesisReward     uint64 `json:"genesis_reward" conf:"protocol.genesis_reward"`
	MiningReward      uint64 `json:"mining_reward" conf:"protocol.mining_reward"`
	MiningDifficulty  int    `json:"mining_difficulty" conf:"protocol.mining_difficulty"`
	MaxBlockTxs       int    `json:"max_block_txs" conf:"protocol.max_block_txs"` // pending txs per block, coinbase excluded
	FundingAmount     uint64 `json:"funding_amount" conf:"protocol.funding_amount"`
	FundingDifficulty int    `json:"funding_difficulty" conf:"protocol.funding_difficulty"`
}

// DefaultProtocol returns the reference ledger rules.
func DefaultProtocol() Protocol {
	return Protocol{
		GenesisReward:     50,
		MiningReward:      10,
		MiningDifficulty:  2,
		MaxBlockTxs:       5,
		FundingAmount:     100,
		FundingDifficulty: 1,
	}
}

// Validate checks the rules for values no run can work with.
func (p *Protocol) Validate() error {
	if p.MiningDifficulty < 0 || p.MiningDifficulty > MaxDifficulty {
		return fmt.Errorf("mining difficulty must be in range [0, %d]", MaxDifficulty)
	}
	if p.FundingDifficulty < 0 || p.FundingDifficulty > MaxDifficulty {
		return fmt.Errorf("funding difficulty must be in range [0, %d]", MaxDifficulty)
	}
	if p.MaxBlockTxs < 1 {
		return fmt.Errorf("max block txs must be at least 1")
	}
	return nil
}

// LoadProtocol reads rules from a JSON file. Fields missing from the file
// keep their reference values.
func LoadProtocol(path string) (Protocol, error) {
	p := DefaultProtocol()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read protocol file: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse protocol file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid protocol file: %w", err)
	}
	return p, nil
}

// WriteProtocol writes rules as indented JSON.
func WriteProtocol(path string, p Protocol) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
