package config

import (
	"fmt"

	"github.com/Klingon-tech/peerledger/internal/log"
	"github.com/Klingon-tech/peerledger/internal/wallet"
)

// MaxPeers caps the simulated peer count. Every peer holds a full chain
// copy and broadcast is quadratic in a fully connected graph.
const MaxPeers = 64

// Validate checks the configuration for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := cfg.Protocol.Validate(); err != nil {
		return err
	}
	if cfg.Network.PeerCount < 1 || cfg.Network.PeerCount > MaxPeers {
		return fmt.Errorf("network.peers must be in range [1, %d]", MaxPeers)
	}
	if cfg.Network.BasePort < 0 || cfg.Network.BasePort+cfg.Network.PeerCount > 65535 {
		return fmt.Errorf("network.base_port leaves peer ports outside [0, 65535]")
	}
	if cfg.Mining.Threads < 1 {
		return fmt.Errorf("mining.threads must be at least 1")
	}
	if cfg.Mempool.MaxSize < 0 {
		return fmt.Errorf("mempool.max_size must not be negative")
	}
	if cfg.Mempool.MaxTxSize < 0 {
		return fmt.Errorf("mempool.max_tx_size must not be negative")
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheNone
	}
	switch cfg.Cache.Backend {
	case CacheNone, CacheMemory, CacheBadger:
	default:
		return fmt.Errorf("cache.backend must be none, memory or badger")
	}

	if cfg.Wallet.Mnemonic != "" && !wallet.ValidateMnemonic(cfg.Wallet.Mnemonic) {
		return fmt.Errorf("wallet.mnemonic is not a valid BIP-39 mnemonic")
	}
	if cfg.Log.Level != "" && !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not a known level", cfg.Log.Level)
	}
	return nil
}
