package main

import (
	"github.com/cheynewallace/tabby"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/axiomesh/axiom-vault/internal/vault"
)

var ledgerDumpArgs = struct {
	Contract string
}{}

var ledgerCMD = &cli.Command{
	Name:  "ledger",
	Usage: "The ledger manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "dump",
			Usage:  "Dump the committed storage of the vault contracts",
			Action: vaultAction(dumpState),
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "contract",
					Usage:       "only dump the given contract address",
					Destination: &ledgerDumpArgs.Contract,
				},
			},
		},
		{
			Name:   "version",
			Usage:  "Show the committed ledger version",
			Action: vaultAction(ledgerVersion),
		},
	},
}

func dumpState(_ *cli.Context, v *vault.Vault) error {
	dumps, err := v.DumpState()
	if err != nil {
		return err
	}
	if ledgerDumpArgs.Contract != "" {
		contract, err := parseAddress(ledgerDumpArgs.Contract)
		if err != nil {
			return err
		}
		dumps = lo.Filter(dumps, func(d *vault.StateDump, _ int) bool {
			return d.Contract == contract
		})
	}
	return pretty(dumps)
}

func ledgerVersion(_ *cli.Context, v *vault.Vault) error {
	status, err := v.Status()
	if err != nil {
		return err
	}
	t := tabby.New()
	t.AddLine("Version", status.Version)
	t.AddLine("Timestamp", status.Timestamp)
	t.Print()
	return nil
}
