package common

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-vault/internal/ledger"
	"github.com/axiomesh/axiom-vault/pkg/loggers"
)

const (
	// ZeroAddress is a special address, no one has control
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// system contract address range 0x2000-0x2fff
	VaultContractAddr       = "0x0000000000000000000000000000000000002000"
	LockVenueContractAddr   = "0x0000000000000000000000000000000000002001"
	DistributorContractAddr = "0x0000000000000000000000000000000000002002"
	RouterContractAddr      = "0x0000000000000000000000000000000000002003"
	TokenBankContractAddr   = "0x0000000000000000000000000000000000002004"
)

type VMContext struct {
	StateLedger ledger.StateLedger

	// From is the caller of the current call frame
	From ethcommon.Address

	// Timestamp in unix seconds
	Timestamp uint64

	CurrentLogs *[]Log

	CallFromSystem bool
}

func NewVMContext(stateLedger ledger.StateLedger, from ethcommon.Address, timestamp uint64) *VMContext {
	return &VMContext{
		StateLedger: stateLedger,
		From:        from,
		Timestamp:   timestamp,
		CurrentLogs: new([]Log),
	}
}

// SystemContract must be implemented by all system contract
type SystemContract interface {
	SetContext(*VMContext)
}

// Log is an event emitted by a contract during a call.
type Log struct {
	Address ethcommon.Address
	Name    string
	Args    []any
}

type SystemContractBase struct {
	Logger       logrus.FieldLogger
	Address      ethcommon.Address
	Ctx          *VMContext
	StateAccount ledger.IAccount
}

func (s *SystemContractBase) SetContext(ctx *VMContext) {
	s.Ctx = ctx
	s.StateAccount = ctx.StateLedger.GetOrCreateAccount(s.Address)
}

// CrossCallSystemContractContext is the context for calling another contract as this contract.
func (s *SystemContractBase) CrossCallSystemContractContext() *VMContext {
	return &VMContext{
		StateLedger:    s.Ctx.StateLedger,
		From:           s.Address,
		Timestamp:      s.Ctx.Timestamp,
		CurrentLogs:    s.Ctx.CurrentLogs,
		CallFromSystem: s.Ctx.CallFromSystem,
	}
}

func (s *SystemContractBase) EmitEvent(name string, args ...any) {
	if s.Ctx.CurrentLogs == nil {
		return
	}
	*s.Ctx.CurrentLogs = append(*s.Ctx.CurrentLogs, Log{
		Address: s.Address,
		Name:    name,
		Args:    args,
	})
}

type SystemContractBuildConfig[T SystemContract] struct {
	Name        string
	Address     string
	Constructor func(systemContractBase SystemContractBase) T
}

func (cfg *SystemContractBuildConfig[T]) Build(ctx *VMContext) T {
	systemContract := cfg.Constructor(SystemContractBase{
		Logger:  loggers.Logger(loggers.Vault).WithField("contract", cfg.Name),
		Address: ethcommon.HexToAddress(cfg.Address),
	})
	systemContract.SetContext(ctx)
	return systemContract
}

func (cfg *SystemContractBuildConfig[T]) EthAddress() ethcommon.Address {
	return ethcommon.HexToAddress(cfg.Address)
}
