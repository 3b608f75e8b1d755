package vault

import (
	"math/big"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/axiomesh/axiom-vault/internal/ledger"
	"github.com/axiomesh/axiom-vault/internal/storagemgr"
	"github.com/axiomesh/axiom-vault/internal/vault/collab"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/internal/vault/framework"
	"github.com/axiomesh/axiom-vault/internal/vault/token"
	"github.com/axiomesh/axiom-vault/pkg/events"
	"github.com/axiomesh/axiom-vault/pkg/loggers"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

// Vault runs every call against the state ledger as one transaction.
type Vault struct {
	rep         *repo.Repo
	logger      logrus.FieldLogger
	stateLedger ledger.StateLedger
	storagePath string

	lock   sync.Mutex
	now    func() uint64
	params framework.Params
	halted *atomic.Bool
	// highest timestamp handed to a call, guarded by lock
	lastTimestamp uint64

	executedFeed event.Feed
	haltFeed     event.Feed

	venue       *collab.LockVenue
	distributor *collab.MerkleDistributor
	router      *collab.FixedRateRouter
	bank        *token.Bank
	manager     *framework.VaultManager
}

type Option func(v *Vault)

// WithTimeSource replaces the wall clock, timestamps are unix seconds.
func WithTimeSource(now func() uint64) Option {
	return func(v *Vault) {
		v.now = now
	}
}

// Open opens the ledger under the repo and loads the vault, running genesis on an empty ledger.
func Open(rep *repo.Repo, opts ...Option) (*Vault, error) {
	if err := storagemgr.Initialize(rep.Config.Storage.KvType, rep.Config.Storage.KvCacheSize, rep.Config.Storage.Sync); err != nil {
		return nil, err
	}
	storagePath := storagemgr.GetLedgerComponentPath(rep, storagemgr.Ledger)
	backend, err := storagemgr.Open(storagePath)
	if err != nil {
		return nil, errors.Wrap(err, "open ledger storage")
	}
	stateLedger, err := ledger.NewStateLedger(backend, rep.Config.Ledger.AccountCacheSize, loggers.Logger(loggers.Ledger))
	if err != nil {
		return nil, err
	}
	v, err := New(rep, stateLedger, opts...)
	if err != nil {
		_ = storagemgr.Close(storagePath)
		return nil, err
	}
	v.storagePath = storagePath
	return v, nil
}

func New(rep *repo.Repo, stateLedger ledger.StateLedger, opts ...Option) (*Vault, error) {
	ctx := common.NewVMContext(stateLedger, ethcommon.Address{}, 0)
	v := &Vault{
		rep:         rep,
		logger:      loggers.Logger(loggers.Vault),
		stateLedger: stateLedger,
		now: func() uint64 {
			return uint64(time.Now().Unix())
		},
		params:      framework.ParamsFromConfig(rep.Config.Vault),
		halted:      atomic.NewBool(false),
		venue:       collab.LockVenueBuildConfig.Build(ctx),
		distributor: collab.MerkleDistributorBuildConfig.Build(ctx),
		router:      collab.FixedRateRouterBuildConfig.Build(ctx),
		bank:        token.BankBuildConfig.Build(ctx),
	}
	v.manager = framework.NewVaultManagerBuildConfig(&framework.Collaborators{
		Venue:         v.venue,
		Distributor:   v.distributor,
		Router:        v.router,
		RouterAddress: v.router.Address,
		Bank:          v.bank,
	}).Build(ctx)
	for _, opt := range opts {
		opt(v)
	}

	var initialized bool
	v.view(func() {
		initialized = v.manager.Initialized()
	})
	if !initialized {
		if err := v.genesis(); err != nil {
			return nil, errors.Wrap(err, "vault genesis")
		}
	}

	var (
		stored framework.Params
		halt   framework.HaltInfo
		err    error
	)
	v.view(func() {
		stored = v.manager.Params()
		halt, err = v.manager.HaltInfo()
	})
	if err != nil {
		return nil, err
	}
	if configured := framework.ParamsFromConfig(rep.Config.Vault); configured != stored {
		v.logger.WithFields(logrus.Fields{
			"stored":     stored,
			"configured": configured,
		}).Warn("Vault params differ from config, keep the params fixed at genesis")
	}
	v.params = stored
	v.halted.Store(halt.Halted)
	v.logger.WithFields(logrus.Fields{
		"variant": stored.Variant,
		"version": stateLedger.Version(),
		"halted":  halt.Halted,
	}).Info("Vault loaded")
	return v, nil
}

func (v *Vault) genesis() error {
	genesis := v.rep.GenesisConfig
	params := v.params
	return v.execute("genesis", v.manager, ethcommon.Address{}, true, func() error {
		for _, account := range genesis.Accounts {
			balance, err := repo.ParseAmount(account.Balance)
			if err != nil {
				return errors.Wrapf(err, "account %s", account.Address)
			}
			v.stateLedger.AddBalance(ethcommon.HexToAddress(account.Address), balance)
		}
		ctx := v.manager.Ctx
		for _, contract := range []common.SystemContract{v.bank, v.distributor, v.router, v.venue} {
			contract.SetContext(ctx)
		}
		if err := v.bank.GenesisInit(genesis); err != nil {
			return errors.Wrap(err, "token bank")
		}
		if err := v.distributor.GenesisInit(genesis); err != nil {
			return errors.Wrap(err, "rewards distributor")
		}
		if err := v.router.GenesisInit(genesis); err != nil {
			return errors.Wrap(err, "liquidation router")
		}
		if err := v.venue.GenesisInit(collab.VenueParams{
			GenesisTime:    params.GenesisTime,
			EpochDuration:  params.EpochDuration,
			MaturityWindow: params.MaturityWindow,
		}); err != nil {
			return errors.Wrap(err, "lock venue")
		}
		v.manager.SetContext(ctx)
		return v.manager.GenesisInit(genesis, params)
	})
}

// newContext stamps a call with the time source, timestamps never decrease across calls.
func (v *Vault) newContext(from ethcommon.Address, callFromSystem bool) *common.VMContext {
	ts := v.now()
	if ts < v.lastTimestamp {
		ts = v.lastTimestamp
	}
	v.lastTimestamp = ts
	return &common.VMContext{
		StateLedger:    v.stateLedger,
		From:           from,
		Timestamp:      ts,
		CurrentLogs:    new([]common.Log),
		CallFromSystem: callFromSystem,
	}
}

// execute runs executor as one transaction on contract, a failed transaction leaves no state behind.
func (v *Vault) execute(method string, contract common.SystemContract, from ethcommon.Address, callFromSystem bool, executor func() error) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	err := v.executeLocked(method, contract, from, callFromSystem, executor)
	if err != nil && common.IsInconsistency(err) {
		v.haltLocked(err.Error())
	}
	return err
}

func (v *Vault) executeLocked(method string, contract common.SystemContract, from ethcommon.Address, callFromSystem bool, executor func() error) error {
	ctx := v.newContext(from, callFromSystem)
	snapshot := v.stateLedger.Snapshot()
	contract.SetContext(ctx)
	if err := executor(); err != nil {
		v.stateLedger.RevertToSnapshot(snapshot)
		v.logger.WithFields(logrus.Fields{
			"method": method,
			"caller": from.Hex(),
			"err":    err,
		}).Debug("Vault call reverted")
		return err
	}
	if err := v.stateLedger.Commit(); err != nil {
		return errors.Wrap(err, "commit state ledger")
	}

	ev := events.ExecutedEvent{
		Version:   v.stateLedger.Version(),
		Method:    method,
		Caller:    from,
		Timestamp: ctx.Timestamp,
		Epoch:     v.epochAt(ctx.Timestamp),
		Logs: lo.Map(*ctx.CurrentLogs, func(log common.Log, _ int) *events.Log {
			return &events.Log{Contract: log.Address, Name: log.Name, Args: log.Args}
		}),
	}
	v.executedFeed.Send(ev)
	return nil
}

// haltLocked stops the vault in its own transaction, after the failed one was reverted.
func (v *Vault) haltLocked(reason string) {
	err := v.executeLocked("halt", v.manager, ethcommon.Address{}, true, func() error {
		return v.manager.Halt(reason)
	})
	if err != nil {
		v.logger.WithFields(logrus.Fields{"reason": reason, "err": err}).Error("Halt vault failed")
		return
	}
	v.halted.Store(true)
	v.haltFeed.Send(events.HaltEvent{Reason: reason, Epoch: v.epochAt(v.lastTimestamp)})
}

// view runs a read only call, every state change is dropped.
func (v *Vault) view(executor func()) {
	v.lock.Lock()
	defer v.lock.Unlock()

	snapshot := v.stateLedger.Snapshot()
	v.manager.SetContext(v.newContext(ethcommon.Address{}, false))
	executor()
	v.stateLedger.RevertToSnapshot(snapshot)
}

func (v *Vault) epochAt(ts uint64) uint64 {
	return v.params.Clock().EpochAt(ts)
}

func (v *Vault) SubscribeExecutedEvent(ch chan<- events.ExecutedEvent) event.Subscription {
	return v.executedFeed.Subscribe(ch)
}

func (v *Vault) SubscribeHaltEvent(ch chan<- events.HaltEvent) event.Subscription {
	return v.haltFeed.Subscribe(ch)
}

func (v *Vault) Halted() bool {
	return v.halted.Load()
}

func (v *Vault) Repo() *repo.Repo {
	return v.rep
}

func (v *Vault) Address() ethcommon.Address {
	return v.manager.Address
}

func (v *Vault) Shutdown() {
	v.lock.Lock()
	defer v.lock.Unlock()
	if v.storagePath == "" {
		v.stateLedger.Close()
		return
	}
	if err := storagemgr.Close(v.storagePath); err != nil {
		v.logger.WithField("err", err).Warn("Close ledger storage failed")
	}
}

// NativeBalance is the base asset balance of an account.
func (v *Vault) NativeBalance(addr ethcommon.Address) *big.Int {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.stateLedger.GetBalance(addr)
}
