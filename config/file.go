package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads settings from a .conf file.
// Format: key = value (one per line, # for comments). A missing file
// yields no values.
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies key/value settings to cfg.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets one setting by its conf key. Unknown keys are ignored.
func setConfigValue(cfg *Config, key, value string) error {
	var err error
	switch key {
	case "datadir":
		cfg.DataDir = value

	// Protocol
	case "protocol.genesis_reward":
		cfg.Protocol.GenesisReward, err = strconv.ParseUint(value, 10, 64)
	case "protocol.mining_reward", "reward":
		cfg.Protocol.MiningReward, err = strconv.ParseUint(value, 10, 64)
	case "protocol.mining_difficulty", "difficulty":
		cfg.Protocol.MiningDifficulty, err = strconv.Atoi(value)
	case "protocol.max_block_txs":
		cfg.Protocol.MaxBlockTxs, err = strconv.Atoi(value)
	case "protocol.funding_amount":
		cfg.Protocol.FundingAmount, err = strconv.ParseUint(value, 10, 64)
	case "protocol.funding_difficulty":
		cfg.Protocol.FundingDifficulty, err = strconv.Atoi(value)

	// Network
	case "network.base_port":
		cfg.Network.BasePort, err = strconv.Atoi(value)
	case "network.peers":
		cfg.Network.PeerCount, err = strconv.Atoi(value)
	case "network.fully_connected":
		cfg.Network.FullyConnected = parseBool(value)

	// Mining
	case "mining.threads":
		cfg.Mining.Threads, err = strconv.Atoi(value)
	case "mining.max_iterations":
		cfg.Mining.MaxIterations, err = strconv.ParseUint(value, 10, 64)

	// Mempool
	case "mempool.max_size":
		cfg.Mempool.MaxSize, err = strconv.Atoi(value)
	case "mempool.max_tx_size":
		cfg.Mempool.MaxTxSize, err = strconv.Atoi(value)

	// Contracts
	case "contract.deploy_fee":
		cfg.Contract.DeployFee, err = strconv.ParseUint(value, 10, 64)

	// Wallet
	case "wallet.mnemonic":
		cfg.Wallet.Mnemonic = value
	case "wallet.passphrase":
		cfg.Wallet.Passphrase = value

	// Cache
	case "cache.backend", "cache":
		cfg.Cache.Backend = strings.ToLower(value)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)
	}
	return err
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a configuration file with the reference values.
func WriteDefaultConfig(path string) error {
	p := DefaultProtocol()
	content := `# PeerLedger Simulation Configuration

# Data directory (default: ~/.peerledger)
# datadir = ~/.peerledger

# ============================================================================
# Protocol rules (shared by every peer)
# ============================================================================

protocol.genesis_reward = ` + strconv.FormatUint(p.GenesisReward, 10) + `
protocol.mining_reward = ` + strconv.FormatUint(p.MiningReward, 10) + `
protocol.mining_difficulty = ` + strconv.Itoa(p.MiningDifficulty) + `
protocol.max_block_txs = ` + strconv.Itoa(p.MaxBlockTxs) + `
protocol.funding_amount = ` + strconv.FormatUint(p.FundingAmount, 10) + `
protocol.funding_difficulty = ` + strconv.Itoa(p.FundingDifficulty) + `

# ============================================================================
# Peers
# ============================================================================

network.base_port = 8000
network.peers = 4
network.fully_connected = true

# ============================================================================
# Mining
# ============================================================================

mining.threads = 1
# Give up sealing after this many nonces (0 = never)
# mining.max_iterations = 0

# ============================================================================
# Mempool / Contracts / Wallet
# ============================================================================

# mempool.max_size = 0
mempool.max_tx_size = 100000

# Charge a deployment transaction of this many units (0 = free)
# contract.deploy_fee = 0

# Derive peer wallets from a BIP-39 mnemonic instead of random keys
# wallet.mnemonic =

# ============================================================================
# Cache: none, memory or badger
# ============================================================================

cache.backend = none

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
