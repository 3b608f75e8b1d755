package main

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/axiomesh/axiom-vault/internal/vault"
	"github.com/axiomesh/axiom-vault/pkg/loggers"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

func getRootPath(ctx *cli.Context) (string, error) {
	p := ctx.String("repo")
	if p == "" {
		return repo.LoadRepoRootFromEnv(p)
	}
	return homedir.Expand(p)
}

func repoExist(p string) bool {
	_, err := os.Stat(filepath.Join(p, repo.CfgFileName))
	return err == nil
}

func prepareRepo(ctx *cli.Context) (*repo.Repo, error) {
	p, err := getRootPath(ctx)
	if err != nil {
		return nil, err
	}
	if !repoExist(p) {
		return nil, errors.Errorf("%s repo not exist in %s, run 'config generate' first", repo.AppName, p)
	}
	r, err := repo.Load(p)
	if err != nil {
		return nil, err
	}
	loggers.Initialize(r.Config)
	return r, nil
}

// prepareVault opens the vault of the repo for an offline command.
func prepareVault(ctx *cli.Context) (*vault.Vault, error) {
	r, err := prepareRepo(ctx)
	if err != nil {
		return nil, err
	}
	return vault.Open(r)
}

func parseAddress(raw string) (ethcommon.Address, error) {
	if !ethcommon.IsHexAddress(raw) {
		return ethcommon.Address{}, errors.Errorf("invalid address %q", raw)
	}
	return ethcommon.HexToAddress(raw), nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, err := repo.ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, errors.New("amount must be positive")
	}
	return amount, nil
}

func pretty(d any) error {
	res, err := prettyjson.Marshal(d)
	if err != nil {
		return err
	}
	fmt.Println(string(res))
	return nil
}

func printSuccess(format string, args ...any) {
	color.Green(format, args...)
}

func printError(err error) {
	color.Red("%s", err)
}
