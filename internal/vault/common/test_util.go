package common

import (
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-vault/internal/ledger"
	"github.com/axiomesh/axiom-vault/internal/storagemgr/kv"
	"github.com/axiomesh/axiom-vault/pkg/loggers"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

type GenesisContract interface {
	SystemContract
	GenesisInit(genesis *repo.GenesisConfig) error
}

type TestVM struct {
	t           testing.TB
	Rep         *repo.Repo
	StateLedger ledger.StateLedger

	// Timestamp used by the next call, unix seconds
	Timestamp uint64
	Logs      []Log
}

func NewTestVM(t testing.TB) *TestVM {
	rep := repo.Default(t.TempDir())
	stateLedger, err := ledger.NewStateLedger(kv.NewMemory(), 128, loggers.Logger(loggers.Ledger))
	require.Nil(t, err)
	return &TestVM{
		t:           t,
		Rep:         rep,
		StateLedger: stateLedger,
	}
}

func (vm *TestVM) GenesisInit(contracts ...GenesisContract) {
	for _, contract := range contracts {
		contract.SetContext(vm.newContext(ethcommon.Address{}, true))
		require.Nil(vm.t, contract.GenesisInit(vm.Rep.GenesisConfig))
	}
	vm.StateLedger.Finalise()
}

type TestVMRunOption func(ctx *VMContext)

func TestVMRunOptionCallFromSystem() TestVMRunOption {
	return func(ctx *VMContext) {
		ctx.CallFromSystem = true
	}
}

// SetEpoch moves the clock to the first second of the given epoch.
func (vm *TestVM) SetEpoch(epochDuration uint64, epoch uint64) {
	vm.Timestamp = uint64(vm.Rep.Config.Vault.GenesisTime) + epoch*epochDuration
}

func (vm *TestVM) newContext(from ethcommon.Address, callFromSystem bool) *VMContext {
	return &VMContext{
		StateLedger:    vm.StateLedger,
		From:           from,
		Timestamp:      vm.Timestamp,
		CurrentLogs:    new([]Log),
		CallFromSystem: callFromSystem,
	}
}

// RunSingleTX executes one transaction, reverting every state change when executor fails.
func (vm *TestVM) RunSingleTX(contract SystemContract, from ethcommon.Address, executor func() error, opts ...TestVMRunOption) error {
	snapshot := vm.StateLedger.Snapshot()
	ctx := vm.newContext(from, false)
	for _, opt := range opts {
		opt(ctx)
	}
	contract.SetContext(ctx)
	if err := executor(); err != nil {
		vm.StateLedger.RevertToSnapshot(snapshot)
		return err
	}
	vm.Logs = append(vm.Logs, *ctx.CurrentLogs...)
	vm.StateLedger.Finalise()
	return nil
}

// Call executes a read only call, state changes are always dropped.
func (vm *TestVM) Call(contract SystemContract, from ethcommon.Address, executor func()) {
	snapshot := vm.StateLedger.Snapshot()
	contract.SetContext(vm.newContext(from, false))
	executor()
	vm.StateLedger.RevertToSnapshot(snapshot)
}
