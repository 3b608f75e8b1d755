package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/axiomesh/axiom-vault/internal/api"
	"github.com/axiomesh/axiom-vault/internal/keeper"
	"github.com/axiomesh/axiom-vault/internal/vault"
	"github.com/axiomesh/axiom-vault/pkg/loggers"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

func start(ctx *cli.Context) error {
	r, err := prepareRepo(ctx)
	if err != nil {
		return err
	}

	log := loggers.Logger(loggers.App)
	printVersion(func(c string) {
		log.Info(c)
	})
	r.PrintNodeInfo(func(c string) {
		log.Info(c)
	})

	if err := repo.WritePid(r.RepoRoot); err != nil {
		return fmt.Errorf("write pid error: %s", err)
	}
	defer func() {
		if err := repo.RemovePID(r.RepoRoot); err != nil {
			log.WithField("err", err).Error("Remove pid failed")
		}
	}()

	v, err := vault.Open(r)
	if err != nil {
		return fmt.Errorf("open vault failed: %w", err)
	}
	defer v.Shutdown()

	var k *keeper.Keeper
	if r.Config.Keeper.Enable {
		k = keeper.New(r, v)
		if err := k.Start(); err != nil {
			return fmt.Errorf("start keeper failed: %w", err)
		}
		defer k.Stop()
	}

	if r.Config.API.Enable {
		s, err := api.New(r, v)
		if err != nil {
			return err
		}
		if err := s.Start(); err != nil {
			return fmt.Errorf("start api service failed: %w", err)
		}
		defer func() {
			if err := s.Stop(); err != nil {
				log.WithField("err", err).Error("Stop api service failed")
			}
		}()
	}

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	fmt.Println("received interrupt signal, shutting down...")
	return nil
}
