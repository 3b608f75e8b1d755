package main

import (
	"fmt"
	"os"

	"github.com/cheynewallace/tabby"
	"github.com/spf13/cast"
	"github.com/urfave/cli/v2"

	"github.com/axiomesh/axiom-vault/internal/vault"
	"github.com/axiomesh/axiom-vault/internal/vault/base"
)

var vaultArgs = struct {
	From       string
	Amount     string
	MaxEntries uint64
	JSON       bool
}{}

func fromFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "from",
		Usage:       "caller address",
		Destination: &vaultArgs.From,
		Required:    true,
	}
}

func amountFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "amount",
		Usage:       usage,
		Destination: &vaultArgs.Amount,
		Required:    true,
	}
}

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "json",
		Usage:       "print as json",
		Destination: &vaultArgs.JSON,
	}
}

var vaultCMD = &cli.Command{
	Name:  "vault",
	Usage: "The vault commands, run against the local ledger while the daemon is stopped",
	Subcommands: []*cli.Command{
		{
			Name:   "status",
			Usage:  "Show vault status",
			Action: vaultAction(showStatus),
			Flags:  []cli.Flag{jsonFlag()},
		},
		{
			Name:   "queue",
			Usage:  "List withdrawal queue entries",
			Action: vaultAction(showQueue),
		},
		{
			Name:      "claims",
			Usage:     "List claims, optionally of one owner",
			ArgsUsage: "[owner]",
			Action:    vaultAction(showClaims),
		},
		{
			Name:   "invariants",
			Usage:  "Check the accounting invariants",
			Action: vaultAction(checkInvariants),
		},
		{
			Name:   "tick",
			Usage:  "Advance the relock scheduler",
			Action: vaultAction(tick),
			Flags:  []cli.Flag{fromFlag()},
		},
		{
			Name:   "process-queue",
			Usage:  "Settle payable queue entries in order",
			Action: vaultAction(processQueue),
			Flags: []cli.Flag{
				fromFlag(),
				&cli.Uint64Flag{
					Name:        "max",
					Usage:       "max entries to settle",
					Value:       100,
					Destination: &vaultArgs.MaxEntries,
				},
			},
		},
		{
			Name:   "open",
			Usage:  "Open a position with base asset",
			Action: vaultAction(openPosition),
			Flags:  []cli.Flag{fromFlag(), amountFlag("deposit amount")},
		},
		{
			Name:      "request-close",
			Usage:     "Request the exit of a position",
			ArgsUsage: "<position id>",
			Action:    vaultAction(requestClose),
			Flags:     []cli.Flag{fromFlag()},
		},
		{
			Name:      "close",
			Usage:     "Close a position after its unlock epoch",
			ArgsUsage: "<position id>",
			Action:    vaultAction(closePosition),
			Flags:     []cli.Flag{fromFlag()},
		},
		{
			Name:   "mint",
			Usage:  "Deposit base asset for shares",
			Action: vaultAction(mint),
			Flags:  []cli.Flag{fromFlag(), amountFlag("deposit amount")},
		},
		{
			Name:   "request-withdraw",
			Usage:  "Burn shares and join the withdrawal queue",
			Action: vaultAction(requestWithdraw),
			Flags:  []cli.Flag{fromFlag(), amountFlag("shares to burn")},
		},
		{
			Name:      "withdraw",
			Usage:     "Collect every exit targeted at or before the unlock epoch",
			ArgsUsage: "<unlock epoch>",
			Action:    vaultAction(withdraw),
			Flags:     []cli.Flag{fromFlag()},
		},
	},
}

func vaultAction(fn func(ctx *cli.Context, v *vault.Vault) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		v, err := prepareVault(ctx)
		if err != nil {
			return err
		}
		defer v.Shutdown()
		return fn(ctx, v)
	}
}

func uintArg(ctx *cli.Context, name string) (uint64, error) {
	if ctx.NArg() < 1 {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := cast.ToUint64E(ctx.Args().First())
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func showStatus(_ *cli.Context, v *vault.Vault) error {
	status, err := v.Status()
	if err != nil {
		return err
	}
	if vaultArgs.JSON {
		return pretty(status)
	}

	t := tabby.New()
	t.AddLine("Variant", status.Variant)
	t.AddLine("Owner", status.Owner.Hex())
	t.AddLine("Version", status.Version)
	t.AddLine("Current epoch", status.CurrentEpoch)
	t.AddLine("Next cycle", status.NextCycle)
	t.AddLine("Total locked", status.Lock.TotalLocked)
	t.AddLine("Unlocked unspent", status.Lock.UnlockedUnspent)
	t.AddLine("Cycles", status.Lock.Cycles)
	t.AddLine("Queue depth", status.QueueDepth)
	t.AddLine("NAV", status.NAV)
	t.AddLine("Price", status.Price)
	t.AddLine("Total shares", status.TotalShares)
	t.AddLine("Halted", status.Halt.Halted)
	if status.Halt.Halted {
		t.AddLine("Halt reason", status.Halt.Reason)
	}
	t.Print()
	return nil
}

func showQueue(_ *cli.Context, v *vault.Vault) error {
	entries, err := v.Queue()
	if err != nil {
		return err
	}
	t := tabby.New()
	t.AddHeader("ID", "Owner", "Position", "Amount", "Target", "Status")
	for _, e := range entries {
		t.AddLine(e.ID, e.Owner.Hex(), e.PositionID, e.Amount, e.TargetEpoch, e.Status)
	}
	t.Print()
	return nil
}

func showClaims(ctx *cli.Context, v *vault.Vault) error {
	var (
		claims []*base.Claim
		err    error
	)
	if ctx.NArg() > 0 {
		owner, perr := parseAddress(ctx.Args().First())
		if perr != nil {
			return perr
		}
		claims, err = v.ClaimsOf(owner)
	} else {
		claims, err = v.Claims()
	}
	if err != nil {
		return err
	}
	return pretty(claims)
}

func checkInvariants(_ *cli.Context, v *vault.Vault) error {
	report, err := v.CheckInvariants()
	if err != nil {
		return err
	}
	if err := pretty(report); err != nil {
		return err
	}
	if !report.OK() {
		os.Exit(2)
	}
	printSuccess("all invariants hold")
	return nil
}

func tick(_ *cli.Context, v *vault.Vault) error {
	from, err := parseAddress(vaultArgs.From)
	if err != nil {
		return err
	}
	result, err := v.Tick(from)
	if err != nil {
		return err
	}
	return pretty(result)
}

func processQueue(_ *cli.Context, v *vault.Vault) error {
	from, err := parseAddress(vaultArgs.From)
	if err != nil {
		return err
	}
	result, err := v.ProcessQueue(from, vaultArgs.MaxEntries)
	if err != nil {
		return err
	}
	return pretty(result)
}

func openPosition(_ *cli.Context, v *vault.Vault) error {
	from, err := parseAddress(vaultArgs.From)
	if err != nil {
		return err
	}
	amount, err := parseAmount(vaultArgs.Amount)
	if err != nil {
		return err
	}
	id, err := v.Open(from, amount)
	if err != nil {
		return err
	}
	printSuccess("position %d opened", id)
	return nil
}

func requestClose(ctx *cli.Context, v *vault.Vault) error {
	from, err := parseAddress(vaultArgs.From)
	if err != nil {
		return err
	}
	id, err := uintArg(ctx, "position id")
	if err != nil {
		return err
	}
	target, err := v.RequestClose(from, id)
	if err != nil {
		return err
	}
	printSuccess("position %d closable from epoch %d", id, target)
	return nil
}

func closePosition(ctx *cli.Context, v *vault.Vault) error {
	from, err := parseAddress(vaultArgs.From)
	if err != nil {
		return err
	}
	id, err := uintArg(ctx, "position id")
	if err != nil {
		return err
	}
	paid, err := v.Close(from, id)
	if err != nil {
		return err
	}
	printSuccess("position %d closed, paid %s", id, paid)
	return nil
}

func mint(_ *cli.Context, v *vault.Vault) error {
	from, err := parseAddress(vaultArgs.From)
	if err != nil {
		return err
	}
	amount, err := parseAmount(vaultArgs.Amount)
	if err != nil {
		return err
	}
	shares, err := v.Mint(from, amount)
	if err != nil {
		return err
	}
	printSuccess("minted %s shares", shares)
	return nil
}

func requestWithdraw(_ *cli.Context, v *vault.Vault) error {
	from, err := parseAddress(vaultArgs.From)
	if err != nil {
		return err
	}
	shares, err := parseAmount(vaultArgs.Amount)
	if err != nil {
		return err
	}
	unlockEpoch, err := v.RequestWithdraw(from, shares)
	if err != nil {
		return err
	}
	printSuccess("withdrawal payable from epoch %d", unlockEpoch)
	return nil
}

func withdraw(ctx *cli.Context, v *vault.Vault) error {
	from, err := parseAddress(vaultArgs.From)
	if err != nil {
		return err
	}
	unlockEpoch, err := uintArg(ctx, "unlock epoch")
	if err != nil {
		return err
	}
	paid, err := v.Withdraw(from, unlockEpoch)
	if err != nil {
		return err
	}
	printSuccess("paid %s", paid)
	return nil
}
