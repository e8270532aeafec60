package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	DataDir  string
	Config   string
	EnvFile  string
	Protocol string

	// Protocol
	Reward     uint64
	Difficulty int
	MaxTxs     int
	Funding    uint64

	// Network
	Peers          int
	BasePort       int
	FullyConnected bool

	// Mining
	Threads       int
	MaxIterations uint64

	// Contracts / wallet
	DeployFee uint64
	Mnemonic  string

	// Cache
	Cache string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set flags whose zero value is meaningful.
	SetDifficulty     bool
	SetFullyConnected bool
	SetDeployFee      bool
	SetLogJSON        bool
}

// ParseFlags parses command-line arguments (without the program name).
// It returns flag.ErrHelp when help was requested.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("peerledger", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")
	fs.StringVar(&f.EnvFile, "env", "", "Env file path")
	fs.StringVar(&f.Protocol, "protocol", "", "Protocol rules JSON file")

	// Protocol
	fs.Uint64Var(&f.Reward, "reward", 0, "Mining reward")
	fs.IntVar(&f.Difficulty, "difficulty", 0, "Mining difficulty (leading zero hex digits)")
	fs.IntVar(&f.MaxTxs, "max-txs", 0, "Pending transactions per block")
	fs.Uint64Var(&f.Funding, "funding", 0, "Funding amount on activation")

	// Network
	fs.IntVar(&f.Peers, "peers", 0, "Number of simulated peers")
	fs.IntVar(&f.BasePort, "base-port", 0, "Port offset for peer wallets")
	fs.BoolVar(&f.FullyConnected, "fully-connected", true, "Connect every pair of peers")

	// Mining
	fs.IntVar(&f.Threads, "threads", 0, "Proof-of-work threads")
	fs.Uint64Var(&f.MaxIterations, "max-iterations", 0, "Nonce limit per block (0 = unbounded)")

	// Contracts / wallet
	fs.Uint64Var(&f.DeployFee, "deploy-fee", 0, "Units charged per contract deployment")
	fs.StringVar(&f.Mnemonic, "mnemonic", "", "BIP-39 mnemonic for deterministic wallets")

	// Cache
	fs.StringVar(&f.Cache, "cache", "", "Snapshot cache: none, memory or badger")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.Help {
		return f, flag.ErrHelp
	}

	f.SetDifficulty = isFlagSet(fs, "difficulty")
	f.SetFullyConnected = isFlagSet(fs, "fully-connected")
	f.SetDeployFee = isFlagSet(fs, "deploy-fee")
	f.SetLogJSON = isFlagSet(fs, "log-json")

	f.Args = fs.Args()
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("flag %q was not parsed (positional argument stopped parsing)", arg)
		}
	}

	return f, nil
}

// ApplyFlags applies command-line flags to cfg.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Protocol
	if f.Reward != 0 {
		cfg.Protocol.MiningReward = f.Reward
	}
	if f.SetDifficulty {
		cfg.Protocol.MiningDifficulty = f.Difficulty
	}
	if f.MaxTxs != 0 {
		cfg.Protocol.MaxBlockTxs = f.MaxTxs
	}
	if f.Funding != 0 {
		cfg.Protocol.FundingAmount = f.Funding
	}

	// Network
	if f.Peers != 0 {
		cfg.Network.PeerCount = f.Peers
	}
	if f.BasePort != 0 {
		cfg.Network.BasePort = f.BasePort
	}
	if f.SetFullyConnected {
		cfg.Network.FullyConnected = f.FullyConnected
	}

	// Mining
	if f.Threads != 0 {
		cfg.Mining.Threads = f.Threads
	}
	if f.MaxIterations != 0 {
		cfg.Mining.MaxIterations = f.MaxIterations
	}

	// Contracts / wallet
	if f.SetDeployFee {
		cfg.Contract.DeployFee = f.DeployFee
	}
	if f.Mnemonic != "" {
		cfg.Wallet.Mnemonic = f.Mnemonic
	}

	if f.Cache != "" {
		cfg.Cache.Backend = strings.ToLower(f.Cache)
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the command-line help to w.
func PrintUsage(w io.Writer) {
	usage := `PeerLedger - simulated peer-to-peer UTXO ledger

Usage:
  peerledger [options] [command]

Commands:
  run             Run the scripted simulation round (default)
  protocol        Write the reference protocol rules as JSON to stdout
  init            Write a default config file into the data directory
  derive <peer>   Print the wallet derived for a peer from --mnemonic
                  (or a new mnemonic when none is set)

Cached Commands (need --cache=badger to persist between runs):
  status                          Show every peer
  activate <peer>                 Attach a wallet and fund it
  deactivate <peer>               Take a peer offline
  connect <peer> <peer>           Link two peers
  send <from> <to> <amount>       Transfer between peer wallets
  mine <peer>                     Mine the peer's pending transactions
  reconcile                       Adopt the longest chain everywhere
  contracts <peer>                List a peer's contracts
  deploy <peer> <kind> <name> [code]
  exec <peer> <contract> <method> ['<json params>']
  reset                           Reset every peer to genesis

Core Options:
  --help, -h      Show this help message
  --version, -v   Show version information
  --datadir       Data directory (default: ~/.peerledger)
  --config, -c    Config file path (default: <datadir>/peerledger.conf)
  --env           Env file path (default: <datadir>/.env)
  --protocol      Protocol rules JSON file

Protocol Options:
  --reward        Mining reward (default: 10)
  --difficulty    Mining difficulty (default: 2)
  --max-txs       Pending transactions per block (default: 5)
  --funding       Funding amount on activation (default: 100)

Network Options:
  --peers            Number of peers (default: 4)
  --base-port        Port offset (default: 8000)
  --fully-connected  Connect every pair of peers (default: true)

Mining Options:
  --threads          Proof-of-work threads (default: 1)
  --max-iterations   Nonce limit per block (default: unbounded)

Contract / Wallet Options:
  --deploy-fee    Units charged per deployment (default: 0)
  --mnemonic      BIP-39 mnemonic for deterministic wallets

Cache Options:
  --cache         none (default), memory or badger

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stdout)
  --log-json      Output logs as JSON

Environment:
  PEERLEDGER_<SECTION>_<KEY> overrides the conf key <section>.<key>,
  e.g. PEERLEDGER_PROTOCOL_MINING_REWARD=25.
`
	fmt.Fprint(w, usage)
}

// Load builds the configuration with the following precedence:
// 1. Default values
// 2. Protocol rules file
// 3. Config file
// 4. Env file
// 5. Process environment
// 6. Command-line flags
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, flags, err
	}

	cfg := Default()
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if flags.Protocol != "" {
		p, err := LoadProtocol(flags.Protocol)
		if err != nil {
			return nil, nil, err
		}
		cfg.Protocol = p
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	envPath := flags.EnvFile
	if envPath == "" {
		envPath = cfg.EnvFile()
	}
	envValues, err := LoadEnvFile(envPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading env file: %w", err)
	}
	if err := ApplyFileConfig(cfg, envValues); err != nil {
		return nil, nil, fmt.Errorf("applying env file: %w", err)
	}
	if err := ApplyFileConfig(cfg, EnvOverrides()); err != nil {
		return nil, nil, fmt.Errorf("applying environment: %w", err)
	}

	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default
// config file if they don't already exist.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{cfg.DataDir, cfg.LogsDir()}
	if cfg.Cache.Backend == CacheBadger {
		dirs = append(dirs, cfg.CacheDir())
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
