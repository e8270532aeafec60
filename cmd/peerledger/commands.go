package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Klingon-tech/peerledger/config"
	"github.com/Klingon-tech/peerledger/internal/contract"
	"github.com/Klingon-tech/peerledger/internal/network"
	"github.com/Klingon-tech/peerledger/internal/utxo"
	"github.com/Klingon-tech/peerledger/internal/wallet"
	"github.com/Klingon-tech/peerledger/pkg/types"
)

// ── run ─────────────────────────────────────────────────────────────────

// cmdRun plays one scripted round on a fresh peer set: activate every
// peer, transfer from peer 1 to peer 2, mine, then exercise each
// contract kind.
func cmdRun(ctx context.Context, net *network.Network, cfg *config.Config) error {
	net.Bootstrap()
	for _, p := range net.Peers() {
		if _, err := net.Activate(ctx, p.ID); err != nil {
			return err
		}
	}
	fmt.Println("== Activated")
	if err := cmdStatus(net); err != nil {
		return err
	}

	if cfg.Network.PeerCount >= 2 {
		t, err := net.Send(1, 2, 30)
		if err != nil {
			return err
		}
		fmt.Printf("\n== Peer 1 sent 30 to peer 2 (tx %s)\n", short(t.ID))

		blk, err := net.Mine(ctx, 1)
		if err != nil {
			return err
		}
		fmt.Printf("== Peer 1 mined block #%d %s (nonce %d, %d txs)\n",
			blk.Index, short(blk.Hash), blk.Nonce, len(blk.Transactions))
	}

	p1, err := net.Peer(1)
	if err != nil {
		return err
	}
	token, store, auction := byKind(p1, contract.KindToken), byKind(p1, contract.KindStorage), byKind(p1, contract.KindAuction)
	calls := []struct {
		addr   string
		method string
		params []types.Value
	}{
		{token, "transfer", []types.Value{types.Text("recipient"), types.Uint(100)}},
		{token, "balanceOf", []types.Value{types.Text(p1.Address())}},
		{store, "set", []types.Value{types.Text("greeting"), types.Text("hello")}},
		{store, "get", []types.Value{types.Text("greeting")}},
		{auction, "bid", []types.Value{types.Uint(25)}},
		{auction, "getHighestBid", nil},
	}

	fmt.Println("\n== Contracts on peer 1")
	for _, c := range calls {
		res, err := net.ExecuteContract(1, c.addr, c.method, c.params)
		printResult(c.method, res, err)
	}

	custom, err := net.DeployContract(1, contract.KindCustom, "Echo", "function echo() {}")
	if err != nil {
		return err
	}
	res, err := net.ExecuteContract(1, custom.Address, "call", []types.Value{types.Text("echo"), types.Text("ping")})
	printResult("call", res, err)

	net.Reconcile()
	fmt.Println("\n== Final")
	return cmdStatus(net)
}

// byKind returns the address of the first contract of kind on p.
func byKind(p *network.Peer, kind contract.Kind) string {
	for _, c := range p.Contracts.List() {
		if c.Kind == kind {
			return c.Address
		}
	}
	return ""
}

func printResult(method string, res contract.Result, err error) {
	if err != nil {
		fmt.Printf("  %-14s error: %v\n", method, err)
		return
	}
	data, _ := json.Marshal(res)
	fmt.Printf("  %-14s %s\n", method, data)
}

// ── peers ───────────────────────────────────────────────────────────────

func cmdStatus(net *network.Network) error {
	fmt.Printf("%-4s %-7s %-12s %7s %8s %8s %9s  %s\n",
		"PEER", "ACTIVE", "ADDRESS", "HEIGHT", "PENDING", "BALANCE", "CONTRACTS", "UTXO COMMITMENT")
	for _, p := range net.Peers() {
		var balance uint64
		if p.Wallet != nil {
			balance = p.Wallet.Balance()
		}
		commitment := utxo.Commitment(utxo.NewSet(network.ComputeUTXOSet(p)))
		fmt.Printf("%-4d %-7v %-12s %7d %8d %8d %9d  %s\n",
			p.ID, p.IsActive, short(p.Address()), p.Height(), p.Pending.Count(),
			balance, p.Contracts.Len(), short(commitment))
	}
	return nil
}

func cmdActivate(ctx context.Context, net *network.Network, args []string) error {
	id, err := peerArg(args, 0, "activate <peer>")
	if err != nil {
		return err
	}
	p, err := net.Activate(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Peer %d active\n", p.ID)
	fmt.Printf("Address: %s\n", p.Address())
	fmt.Printf("Port:    %d\n", p.Wallet.Port)
	fmt.Printf("Balance: %d\n", p.Wallet.Balance())
	return nil
}

func cmdDeactivate(net *network.Network, args []string) error {
	id, err := peerArg(args, 0, "deactivate <peer>")
	if err != nil {
		return err
	}
	if err := net.Deactivate(id); err != nil {
		return err
	}
	fmt.Printf("Peer %d inactive\n", id)
	return nil
}

func cmdConnect(net *network.Network, args []string) error {
	a, err := peerArg(args, 0, "connect <peer> <peer>")
	if err != nil {
		return err
	}
	b, err := peerArg(args, 1, "connect <peer> <peer>")
	if err != nil {
		return err
	}
	if err := net.Connect(a, b); err != nil {
		return err
	}
	fmt.Printf("Peers %d and %d connected\n", a, b)
	return nil
}

// ── ledger ──────────────────────────────────────────────────────────────

func cmdSend(net *network.Network, args []string) error {
	const use = "send <from> <to> <amount>"
	from, err := peerArg(args, 0, use)
	if err != nil {
		return err
	}
	to, err := peerArg(args, 1, use)
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return fmt.Errorf("usage: peerledger %s", use)
	}
	amount, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[2], err)
	}

	t, err := net.Send(from, to, amount)
	if err != nil {
		return err
	}
	fmt.Printf("Transaction: %s\n", t.ID)
	for i, out := range t.Outputs {
		fmt.Printf("  output %d: %d -> %s\n", i, out.Amount, out.Address)
	}
	return nil
}

func cmdMine(ctx context.Context, net *network.Network, args []string) error {
	id, err := peerArg(args, 0, "mine <peer>")
	if err != nil {
		return err
	}
	blk, err := net.Mine(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Block #%d\n", blk.Index)
	fmt.Printf("Hash:   %s\n", blk.Hash)
	fmt.Printf("Nonce:  %d\n", blk.Nonce)
	fmt.Printf("Merkle: %s\n", blk.MerkleRoot)
	fmt.Printf("Txs:    %d\n", len(blk.Transactions))
	return nil
}

// ── contracts ───────────────────────────────────────────────────────────

func cmdContracts(net *network.Network, args []string) error {
	id, err := peerArg(args, 0, "contracts <peer>")
	if err != nil {
		return err
	}
	p, err := net.Peer(id)
	if err != nil {
		return err
	}
	for _, c := range p.Contracts.List() {
		fmt.Printf("%s  %-8s %s\n", c.Address, c.Kind, c.Name)
	}
	return nil
}

func cmdDeploy(net *network.Network, args []string) error {
	const use = "deploy <peer> <token|storage|auction|custom> <name> [code]"
	id, err := peerArg(args, 0, use)
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return fmt.Errorf("usage: peerledger %s", use)
	}
	kind, err := contract.ParseKind(args[1])
	if err != nil {
		return err
	}
	var code string
	if len(args) > 3 {
		code = args[3]
	}
	c, err := net.DeployContract(id, kind, args[2], code)
	if err != nil {
		return err
	}
	fmt.Printf("Contract: %s\n", c.Address)
	return nil
}

func cmdExec(net *network.Network, args []string) error {
	const use = `exec <peer> <contract> <method> ['["param", 1]']`
	id, err := peerArg(args, 0, use)
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return fmt.Errorf("usage: peerledger %s", use)
	}
	var params []types.Value
	if len(args) > 3 {
		if params, err = types.ParseValues(args[3]); err != nil {
			return err
		}
	}
	res, err := net.ExecuteContract(id, args[1], args[2], params)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// ── config ──────────────────────────────────────────────────────────────

func cmdProtocol(cfg *config.Config) {
	data, err := json.MarshalIndent(cfg.Protocol, "", "  ")
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(string(data))
}

func cmdInit(cfg *config.Config) {
	if err := config.EnsureDataDirs(cfg); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Data dir: %s\n", cfg.DataDir)
	fmt.Printf("Config:   %s\n", cfg.ConfigFile())
}

// cmdDerive prints the wallet a peer would get from the configured
// mnemonic, or a fresh mnemonic when none is configured.
func cmdDerive(cfg *config.Config, args []string) {
	if cfg.Wallet.Mnemonic == "" {
		mnemonic, err := wallet.GenerateMnemonic()
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("mnemonic=%s\n", mnemonic)
		return
	}
	id, err := peerArg(args, 0, "--mnemonic=<words> derive <peer>")
	if err != nil || id < 0 {
		fatal("usage: peerledger --mnemonic=<words> derive <peer>")
	}
	w, err := wallet.FromMnemonic(cfg.Wallet.Mnemonic, cfg.Wallet.Passphrase, uint32(id), cfg.PeerPort(id))
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("pubkey=%s\n", w.PublicKey)
	fmt.Printf("address=%s\n", w.Address)
	fmt.Printf("port=%d\n", w.Port)
}

// ── helpers ─────────────────────────────────────────────────────────────

func peerArg(args []string, i int, use string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("usage: peerledger %s", use)
	}
	id, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid peer id %q", args[i])
	}
	return id, nil
}

func short(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:12]
}
