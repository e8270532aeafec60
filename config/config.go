// Package config handles simulation configuration.
//
// Configuration is split into two categories:
//   - Protocol rules: rewards, difficulties and block limits shared by every peer
//   - Run settings: peer topology, mining resources, cache and logging
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds the settings of one simulation run.
type Config struct {
	DataDir string `conf:"datadir"`

	// Ledger rules shared by every peer
	Protocol Protocol

	// Peer topology
	Network NetworkConfig

	// Sealing resources (not ledger rules)
	Mining MiningConfig

	Mempool  MempoolConfig
	Contract ContractConfig
	Wallet   WalletConfig
	Cache    CacheConfig
	Log      LogConfig
}

// NetworkConfig describes the simulated peer set.
type NetworkConfig struct {
	BasePort       int  `conf:"network.base_port"` // Peer i listens on BasePort+i.
	PeerCount      int  `conf:"network.peers"`
	FullyConnected bool `conf:"network.fully_connected"`
}

// MiningConfig holds proof-of-work search settings.
type MiningConfig struct {
	Threads       int    `conf:"mining.threads"`
	MaxIterations uint64 `conf:"mining.max_iterations"` // 0 = unbounded
}

// MempoolConfig holds pending-pool limits.
type MempoolConfig struct {
	MaxSize   int `conf:"mempool.max_size"`    // 0 = unbounded
	MaxTxSize int `conf:"mempool.max_tx_size"` // bytes of canonical encoding
}

// ContractConfig holds contract deployment settings.
type ContractConfig struct {
	// DeployFee is charged through a deployment transaction when > 0.
	DeployFee uint64 `conf:"contract.deploy_fee"`
}

// WalletConfig holds wallet key settings.
type WalletConfig struct {
	// Mnemonic derives peer wallets deterministically (peer id = account
	// index). Empty means fresh random keys on every activation.
	Mnemonic   string `conf:"wallet.mnemonic"`
	Passphrase string `conf:"wallet.passphrase"`
}

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheBadger = "badger"
)

// CacheConfig selects where peer snapshots are kept.
type CacheConfig struct {
	Backend string `conf:"cache.backend"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.peerledger
//	macOS:   ~/Library/Application Support/PeerLedger
//	Windows: %APPDATA%\PeerLedger
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".peerledger"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "PeerLedger")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "PeerLedger")
		}
		return filepath.Join(home, "AppData", "Roaming", "PeerLedger")
	default:
		return filepath.Join(home, ".peerledger")
	}
}

// CacheDir returns the snapshot cache directory.
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "peerledger.conf")
}

// EnvFile returns the env file path.
func (c *Config) EnvFile() string {
	return filepath.Join(c.DataDir, ".env")
}

// PeerPort returns the port assigned to peer id.
func (c *Config) PeerPort(id int) int {
	return c.Network.BasePort + id
}

// Default returns the reference configuration: four fully connected
// peers, reward 10, difficulty 2, five transactions per block and a
// funding block of 100 on activation.
func Default() *Config {
	return &Config{
		DataDir:  DefaultDataDir(),
		Protocol: DefaultProtocol(),
		Network: NetworkConfig{
			BasePort:       8000,
			PeerCount:      4,
			FullyConnected: true,
		},
		Mining: MiningConfig{
			Threads: 1,
		},
		Mempool: MempoolConfig{
			MaxTxSize: 100_000,
		},
		Cache: CacheConfig{
			Backend: CacheNone,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
