package keeper

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/axiomesh/axiom-vault/internal/vault"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/internal/vault/framework"
	"github.com/axiomesh/axiom-vault/pkg/events"
	"github.com/axiomesh/axiom-vault/pkg/loggers"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

//go:generate mockgen -destination mock_keeper/mock_keeper.go -package mock_keeper -source keeper.go

// VaultService is the part of the vault the keeper drives.
type VaultService interface {
	ProcessQueue(caller ethcommon.Address, maxEntries uint64) (*framework.ProcessResult, error)

	Status() (*vault.Status, error)

	Halted() bool

	SubscribeHaltEvent(ch chan<- events.HaltEvent) event.Subscription
}

// Keeper ticks the relock scheduler and drains the withdrawal queue on a fixed interval.
type Keeper struct {
	cfg    repo.Keeper
	vault  VaultService
	caller ethcommon.Address
	logger logrus.FieldLogger

	started atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(rep *repo.Repo, v VaultService) *Keeper {
	return &Keeper{
		cfg:    rep.Config.Keeper,
		vault:  v,
		caller: ethcommon.HexToAddress(rep.GenesisConfig.Owner),
		logger: loggers.Logger(loggers.Keeper),
	}
}

func (k *Keeper) Start() error {
	if !k.started.CompareAndSwap(false, true) {
		return errors.New("keeper already started")
	}
	if k.cfg.Interval.ToDuration() <= 0 {
		k.started.Store(false)
		return errors.Errorf("invalid keeper interval %s", k.cfg.Interval.String())
	}
	k.ctx, k.cancel = context.WithCancel(context.Background())
	k.wg.Add(1)
	go k.listen()
	k.logger.WithFields(logrus.Fields{
		"interval":    k.cfg.Interval.String(),
		"max_entries": k.cfg.MaxQueueEntries,
	}).Info("Keeper started")
	return nil
}

func (k *Keeper) Stop() {
	if !k.started.CompareAndSwap(true, false) {
		return
	}
	k.cancel()
	k.wg.Wait()
	k.logger.Info("Keeper stopped")
}

func (k *Keeper) Started() bool {
	return k.started.Load()
}

func (k *Keeper) listen() {
	defer k.wg.Done()

	haltCh := make(chan events.HaltEvent, 1)
	sub := k.vault.SubscribeHaltEvent(haltCh)
	defer sub.Unsubscribe()

	ticker := time.NewTicker(k.cfg.Interval.ToDuration())
	defer ticker.Stop()

	k.round()
	for {
		select {
		case <-k.ctx.Done():
			return
		case ev := <-haltCh:
			haltedGauge.Set(1)
			k.logger.WithFields(logrus.Fields{
				"reason": ev.Reason,
				"epoch":  ev.Epoch,
			}).Error("Vault halted, keeper paused until the owner resumes it")
		case <-ticker.C:
			k.round()
		}
	}
}

func (k *Keeper) round() {
	if _, err := k.RunOnce(); err != nil && !errors.Is(err, common.ErrVaultHalted) {
		k.logger.WithField("err", err).Warn("Keeper round failed")
	}
}

// RunOnce ticks the vault and settles up to MaxQueueEntries payable entries.
// Inconsistencies and a halted vault are returned without retrying.
func (k *Keeper) RunOnce() (*framework.ProcessResult, error) {
	if k.vault.Halted() {
		haltedGauge.Set(1)
		return nil, common.ErrVaultHalted
	}
	haltedGauge.Set(0)

	var (
		result   *framework.ProcessResult
		terminal error
	)
	err := retry.Retry(func(attempt uint) error {
		res, err := k.vault.ProcessQueue(k.caller, k.cfg.MaxQueueEntries)
		if err == nil {
			result = res
			return nil
		}
		if common.IsInconsistency(err) || errors.Is(err, common.ErrVaultHalted) {
			terminal = err
			return nil
		}
		k.logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"err":     err,
		}).Warn("Process queue failed, retry")
		return err
	}, strategy.Limit(k.cfg.RetryLimit), strategy.Wait(k.cfg.RetryWait.ToDuration()))
	if err == nil {
		err = terminal
	}
	if err != nil {
		roundFailureCounter.Inc()
		return nil, err
	}

	k.record(result)
	return result, nil
}

func (k *Keeper) record(result *framework.ProcessResult) {
	if result.Tick != nil && result.Tick.CycleRun {
		cycleCounter.Inc()
		k.logger.WithFields(logrus.Fields{
			"epoch":    result.Tick.CurrentEpoch,
			"claimed":  result.Tick.Claimed,
			"reserved": result.Tick.Reserved,
			"relocked": result.Tick.Relocked,
		}).Info("Relock cycle run")
	}
	settledCounter.Add(float64(len(result.Settled)))

	status, err := k.vault.Status()
	if err != nil {
		k.logger.WithField("err", err).Warn("Read vault status failed")
		return
	}
	epochGauge.Set(float64(status.CurrentEpoch))
	queueDepthGauge.Set(float64(status.QueueDepth))
	navGauge.Set(scaled(status.NAV))
	priceGauge.Set(scaled(status.Price))
	if status.Lock != nil {
		lockedGauge.Set(scaled(status.Lock.TotalLocked))
		unlockedGauge.Set(scaled(status.Lock.UnlockedUnspent))
	}
}

// scaled converts an 18-decimal amount into whole units for a gauge.
func scaled(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), new(big.Float).SetInt(common.PriceScale)).Float64()
	return f
}
