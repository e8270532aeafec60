// PeerLedger simulation CLI.
//
// Usage:
//
//	peerledger [options] run                          Run the scripted round
//	peerledger [options] status                       Show cached peers
//	peerledger [options] activate <peer>              Attach a wallet
//	peerledger [options] send <from> <to> <amount>    Transfer between peers
//	peerledger [options] mine <peer>                  Mine pending transactions
//	peerledger --help                                 Show help
//
// Commands other than run operate on the cached peer set, so they need
// --cache=badger to carry state from one invocation to the next.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Klingon-tech/peerledger/config"
	klog "github.com/Klingon-tech/peerledger/internal/log"
	"github.com/Klingon-tech/peerledger/internal/network"
	"github.com/Klingon-tech/peerledger/internal/snapshot"
	"github.com/Klingon-tech/peerledger/internal/storage"
)

const version = "0.1.0"

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		config.PrintUsage(os.Stdout)
		return
	}
	if err != nil {
		fatal("%v", err)
	}
	if flags.Version {
		fmt.Printf("peerledger version %s\n", version)
		return
	}

	args := flags.Args
	cmd := "run"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "protocol":
		cmdProtocol(cfg)
		return
	case "init":
		cmdInit(cfg)
		return
	case "derive":
		cmdDerive(cfg, args)
		return
	case "help":
		config.PrintUsage(os.Stdout)
		return
	}

	// ── Logger ──────────────────────────────────────────────────────────
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("initializing logger: %v", err)
	}

	// ── Snapshot cache ──────────────────────────────────────────────────
	db, err := openCache(cfg)
	if err != nil {
		fatal("%v", err)
	}
	if db != nil {
		defer db.Close()
	}

	var opts []network.Option
	if db != nil {
		opts = append(opts, network.WithStore(snapshot.New(db)))
	}
	net := network.New(cfg, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd == "run" {
		err = cmdRun(ctx, net, cfg)
	} else {
		err = dispatch(ctx, net, cmd, args)
	}
	if err != nil {
		stop()
		if db != nil {
			db.Close()
		}
		fatal("%v", err)
	}
}

func dispatch(ctx context.Context, net *network.Network, cmd string, args []string) error {
	loaded, err := net.Load()
	if err != nil {
		return err
	}
	if !loaded {
		net.Bootstrap()
	}

	switch cmd {
	case "status":
		return cmdStatus(net)
	case "activate":
		return cmdActivate(ctx, net, args)
	case "deactivate":
		return cmdDeactivate(net, args)
	case "connect":
		return cmdConnect(net, args)
	case "send":
		return cmdSend(net, args)
	case "mine":
		return cmdMine(ctx, net, args)
	case "reconcile":
		net.Reconcile()
		return cmdStatus(net)
	case "contracts":
		return cmdContracts(net, args)
	case "deploy":
		return cmdDeploy(net, args)
	case "exec":
		return cmdExec(net, args)
	case "reset":
		if err := net.ClearCache(); err != nil {
			return err
		}
		net.Bootstrap()
		fmt.Println("Peers reset to genesis")
		return nil
	default:
		config.PrintUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func openCache(cfg *config.Config) (storage.DB, error) {
	if cfg.Cache.Backend == config.CacheBadger {
		if err := config.EnsureDataDirs(cfg); err != nil {
			return nil, err
		}
	}
	return storage.Open(cfg.Cache.Backend, cfg.CacheDir())
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
