package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/axiomesh/axiom-vault/pkg/repo"
)

var configCMD = &cli.Command{
	Name:  "config",
	Usage: "The config manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "generate",
			Usage:  "Generate default config and genesis config",
			Action: generate,
		},
		{
			Name:   "show",
			Usage:  "Show the complete config processed by the environment variable",
			Action: show,
		},
		{
			Name:   "show-genesis",
			Usage:  "Show the complete genesis config processed by the environment variable",
			Action: showGenesis,
		},
		{
			Name:   "check",
			Usage:  "Check if the config file is valid",
			Action: check,
		},
	},
}

func generate(ctx *cli.Context) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	if repoExist(p) {
		fmt.Printf("%s repo already exists\n", repo.AppName)
		return nil
	}
	if err := os.MkdirAll(p, 0755); err != nil {
		return err
	}

	r := repo.Default(p)
	if err := r.Flush(); err != nil {
		return err
	}
	printSuccess("config successfully generated in %s", p)
	return nil
}

func show(ctx *cli.Context) error {
	r, err := prepareRepo(ctx)
	if err != nil {
		return err
	}
	str, err := repo.MarshalConfig(r.Config)
	if err != nil {
		return err
	}
	fmt.Println(str)
	return nil
}

func showGenesis(ctx *cli.Context) error {
	r, err := prepareRepo(ctx)
	if err != nil {
		return err
	}
	str, err := repo.MarshalConfig(r.GenesisConfig)
	if err != nil {
		return err
	}
	fmt.Println(str)
	return nil
}

func check(ctx *cli.Context) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	if !repoExist(p) {
		fmt.Printf("%s repo not exist\n", repo.AppName)
		return nil
	}
	if _, err := repo.Load(p); err != nil {
		return fmt.Errorf("config file format error, please check: %w", err)
	}
	printSuccess("config is valid")
	return nil
}
