package framework

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

var (
	ErrVariantMismatch = errors.New("operation not supported by the vault variant")
	ErrNoPermission    = errors.Wrap(common.ErrUnauthorized, "no permission")
)

const (
	ownerStorageKey  = "owner"
	paramsStorageKey = "params"
	haltStorageKey   = "halt"
)

// Collaborators are the external contracts the vault calls as itself.
type Collaborators struct {
	Venue         base.LockVenue
	Distributor   base.RewardsDistributor
	Router        base.LiquidationRouter
	RouterAddress ethcommon.Address
	Bank          base.TokenBank
}

type HaltInfo struct {
	Halted bool   `json:"halted"`
	Reason string `json:"reason,omitempty"`
	Epoch  uint64 `json:"epoch,omitempty"`
}

type ProcessResult struct {
	Tick    *TickResult `json:"tick"`
	Settled []uint64    `json:"settled"`
	Paid    *big.Int    `json:"paid"`
}

func NewVaultManagerBuildConfig(collaborators *Collaborators) *common.SystemContractBuildConfig[*VaultManager] {
	return &common.SystemContractBuildConfig[*VaultManager]{
		Name:    "framework_vault_manager",
		Address: common.VaultContractAddr,
		Constructor: func(systemContractBase common.SystemContractBase) *VaultManager {
			return &VaultManager{
				SystemContractBase: systemContractBase,
				collaborators:      collaborators,
			}
		},
	}
}

type VaultManager struct {
	common.SystemContractBase

	collaborators *Collaborators

	owner  *common.VMSlot[ethcommon.Address]
	params *common.VMSlot[Params]
	halt   *common.VMSlot[HaltInfo]
	guard  *common.ReentrancyGuard

	p          Params
	lock       *LockLedger
	queue      *WithdrawalQueue
	claims     base.ClaimLedger
	positions  *PositionLedger
	shares     *ShareLedger
	accounting *Accounting
	scheduler  *RelockScheduler
	harvester  *RewardsHarvester
}

func (s *VaultManager) SetContext(ctx *common.VMContext) {
	s.SystemContractBase.SetContext(ctx)

	s.owner = common.NewVMSlot[ethcommon.Address](s.StateAccount, ownerStorageKey)
	s.params = common.NewVMSlot[Params](s.StateAccount, paramsStorageKey)
	s.halt = common.NewVMSlot[HaltInfo](s.StateAccount, haltStorageKey)
	s.guard = common.NewReentrancyGuard(s.StateAccount)

	crossCtx := s.CrossCallSystemContractContext()
	s.collaborators.Venue.SetContext(crossCtx)
	s.collaborators.Distributor.SetContext(crossCtx)
	s.collaborators.Router.SetContext(crossCtx)
	s.collaborators.Bank.SetContext(crossCtx)

	p, err := s.params.GetOrDefault(Params{Variant: repo.VariantShare})
	if err != nil {
		s.Logger.WithField("err", err).Error("Load vault params failed")
	}
	s.wire(p)
}

func (s *VaultManager) wire(p Params) {
	s.p = p
	s.lock = NewLockLedger(s.SystemContractBase)
	s.queue = NewWithdrawalQueue(s.SystemContractBase)
	s.positions = NewPositionLedger(s.SystemContractBase)
	s.shares = NewShareLedger(s.SystemContractBase)
	if p.Variant == repo.VariantPosition {
		s.claims = s.positions
	} else {
		s.claims = s.shares
	}
	s.accounting = NewAccounting(s.SystemContractBase, s.lock, s.queue, s.claims)
	s.scheduler = NewRelockScheduler(s.SystemContractBase, p, s.lock, s.queue, s.collaborators.Venue, s.onPayable)
	s.harvester = NewRewardsHarvester(s.SystemContractBase, p, s.lock, s.collaborators)
}

func (s *VaultManager) GenesisInit(genesis *repo.GenesisConfig, params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := s.owner.Put(ethcommon.HexToAddress(genesis.Owner)); err != nil {
		return err
	}
	if err := s.params.Put(params); err != nil {
		return err
	}
	if err := s.halt.Put(HaltInfo{}); err != nil {
		return err
	}
	s.wire(params)

	if err := s.lock.Init(s.scheduler.CurrentEpoch()); err != nil {
		return err
	}
	if err := s.queue.Init(); err != nil {
		return err
	}

	seed, err := repo.ParseAmount(genesis.SeedDeposit)
	if err != nil {
		return err
	}
	if seed.Sign() > 0 {
		if _, _, err := s.deposit(ethcommon.HexToAddress(genesis.Owner), seed); err != nil {
			return errors.Wrap(err, "seed deposit")
		}
	}
	return nil
}

// mutate runs fn as a state changing call of an active vault.
func (s *VaultManager) mutate(fn func() error) error {
	halt, err := s.halt.GetOrDefault(HaltInfo{})
	if err != nil {
		return err
	}
	if halt.Halted {
		return errors.Wrap(common.ErrVaultHalted, halt.Reason)
	}
	if err := s.guard.Enter(); err != nil {
		return err
	}
	defer s.guard.Exit()
	return fn()
}

func (s *VaultManager) requireVariant(variant string) error {
	if s.p.Variant != variant {
		return errors.Wrapf(ErrVariantMismatch, "vault runs %s claims", s.p.Variant)
	}
	return nil
}

func (s *VaultManager) checkOwner() error {
	owner, err := s.owner.MustGet()
	if err != nil {
		return err
	}
	if s.Ctx.From != owner {
		return ErrNoPermission
	}
	return nil
}

func (s *VaultManager) deposit(owner ethcommon.Address, amount *big.Int) (uint64, *big.Int, error) {
	shares, err := s.accounting.SharesForDeposit(amount)
	if err != nil {
		return 0, nil, err
	}
	id, err := s.claims.Issue(owner, shares, amount, s.scheduler.CurrentEpoch())
	if err != nil {
		return 0, nil, err
	}
	if err := s.lock.AddLocked(amount); err != nil {
		return 0, nil, err
	}

	if err := s.Ctx.StateLedger.Transfer(owner, s.Address, amount); err != nil {
		return 0, nil, errors.Wrap(common.ErrInsufficientBalance, err.Error())
	}
	if err := s.collaborators.Venue.Lock(amount); err != nil {
		return 0, nil, errors.Wrap(err, "lock deposit")
	}
	s.EmitEvent("Deposited", owner, id, amount, shares)
	return id, shares, nil
}

// pay runs after the queue recorded the settlement.
func (s *VaultManager) pay(entry *QueueEntry) error {
	if err := s.lock.SpendUnlocked(entry.Amount); err != nil {
		return err
	}
	if err := s.Ctx.StateLedger.Transfer(s.Address, entry.Owner, entry.Amount); err != nil {
		return common.Inconsistency("pay queue entry %d: %v", entry.ID, err)
	}
	s.EmitEvent("Withdrawn", entry.Owner, entry.ID, entry.Amount)
	return nil
}

func (s *VaultManager) onPayable(entry *QueueEntry) error {
	if entry.PositionID == 0 {
		return nil
	}
	return s.positions.SetUnlockTime(entry.PositionID, s.p.Clock().EpochStart(entry.TargetEpoch))
}

// Tick is permissionless, calling it more than once in an epoch changes nothing.
func (s *VaultManager) Tick() (result *TickResult, err error) {
	err = s.mutate(func() error {
		result, err = s.scheduler.Tick()
		return err
	})
	return result, err
}

// ProcessQueue is permissionless, it pays at most maxEntries payable entries in request order.
func (s *VaultManager) ProcessQueue(maxEntries uint64) (result *ProcessResult, err error) {
	err = s.mutate(func() error {
		tick, err := s.scheduler.Tick()
		if err != nil {
			return err
		}
		settled, err := s.queue.Process(maxEntries, tick.CurrentEpoch, s.pay)
		if err != nil {
			return err
		}
		result = &ProcessResult{Tick: tick, Paid: big.NewInt(0)}
		for _, entry := range settled {
			result.Settled = append(result.Settled, entry.ID)
			result.Paid.Add(result.Paid, entry.Amount)
		}
		return nil
	})
	return result, err
}

// Open deposits amount into a new position of the caller.
func (s *VaultManager) Open(amount *big.Int) (id uint64, err error) {
	err = s.mutate(func() error {
		if err := s.requireVariant(repo.VariantPosition); err != nil {
			return err
		}
		if _, err := s.scheduler.Tick(); err != nil {
			return err
		}
		id, _, err = s.deposit(s.Ctx.From, amount)
		return err
	})
	return id, err
}

// RequestClose prices the position and queues its exit for the next relock cycle.
func (s *VaultManager) RequestClose(id uint64) (targetEpoch uint64, err error) {
	err = s.mutate(func() error {
		if err := s.requireVariant(repo.VariantPosition); err != nil {
			return err
		}
		tick, err := s.scheduler.Tick()
		if err != nil {
			return err
		}
		position, err := s.positions.GetOwned(s.Ctx.From, id)
		if err != nil {
			return err
		}
		if position.UnlockRequestedAt != nil {
			return common.ErrAlreadyRequested
		}
		value, err := s.accounting.ValueOfShares(position.Shares)
		if err != nil {
			return err
		}
		shares, err := s.claims.Redeem(s.Ctx.From, id, nil, tick.CurrentEpoch)
		if err != nil {
			return err
		}
		info, err := s.lock.MustGetInfo()
		if err != nil {
			return err
		}
		targetEpoch = info.LastProcessedEpoch + s.p.MaturityWindow
		entry, err := s.queue.Enqueue(s.Ctx.From, id, shares, value, tick.CurrentEpoch, targetEpoch)
		if err != nil {
			return err
		}
		return s.positions.SetQueueEntry(id, entry.ID)
	})
	return targetEpoch, err
}

// Close pays out a position whose unlock time has passed and burns it.
func (s *VaultManager) Close(id uint64) (paid *big.Int, err error) {
	err = s.mutate(func() error {
		if err := s.requireVariant(repo.VariantPosition); err != nil {
			return err
		}
		tick, err := s.scheduler.Tick()
		if err != nil {
			return err
		}
		position, err := s.positions.GetOwned(s.Ctx.From, id)
		if err != nil {
			return err
		}
		if position.UnlockRequestedAt == nil || position.QueueEntryID == nil {
			return common.ErrNotRequested
		}
		if position.UnlockTime == nil || s.Ctx.Timestamp < *position.UnlockTime {
			return common.ErrStillLocked
		}
		paid, err = s.queue.Settle(*position.QueueEntryID, tick.CurrentEpoch, s.pay)
		if err != nil {
			return err
		}
		if err := s.positions.Burn(id); err != nil {
			return err
		}
		s.EmitEvent("PositionClosed", id, s.Ctx.From, paid)
		return nil
	})
	return paid, err
}

// Mint deposits amount and issues shares to the caller at the current price.
func (s *VaultManager) Mint(amount *big.Int) (shares *big.Int, err error) {
	err = s.mutate(func() error {
		if err := s.requireVariant(repo.VariantShare); err != nil {
			return err
		}
		if _, err := s.scheduler.Tick(); err != nil {
			return err
		}
		_, shares, err = s.deposit(s.Ctx.From, amount)
		return err
	})
	return shares, err
}

// RequestWithdraw burns shares at the current price and returns the epoch the exit is payable at.
func (s *VaultManager) RequestWithdraw(shares *big.Int) (unlockEpoch uint64, err error) {
	err = s.mutate(func() error {
		if err := s.requireVariant(repo.VariantShare); err != nil {
			return err
		}
		if !common.IsPositive(shares) {
			return common.ErrInvalidAmount
		}
		tick, err := s.scheduler.Tick()
		if err != nil {
			return err
		}
		balance, err := s.shares.BalanceOf(s.Ctx.From)
		if err != nil {
			return err
		}
		if balance.Cmp(shares) < 0 {
			return errors.Wrapf(common.ErrInsufficientBalance, "%s holds %s shares, request %s", s.Ctx.From.Hex(), balance, shares)
		}
		value, err := s.accounting.ValueOfShares(shares)
		if err != nil {
			return err
		}
		if value.Sign() == 0 {
			return common.ErrInvalidAmount
		}
		if _, err := s.claims.Redeem(s.Ctx.From, 0, shares, tick.CurrentEpoch); err != nil {
			return err
		}
		unlockEpoch = tick.CurrentEpoch + s.p.MaturityWindow
		_, err = s.queue.Enqueue(s.Ctx.From, 0, shares, value, tick.CurrentEpoch, unlockEpoch)
		return err
	})
	return unlockEpoch, err
}

// Withdraw pays every exit of the caller targeted at or before unlockEpoch.
func (s *VaultManager) Withdraw(unlockEpoch uint64) (paid *big.Int, err error) {
	err = s.mutate(func() error {
		if err := s.requireVariant(repo.VariantShare); err != nil {
			return err
		}
		tick, err := s.scheduler.Tick()
		if err != nil {
			return err
		}
		paid, err = s.queue.SettleOwner(s.Ctx.From, unlockEpoch, tick.CurrentEpoch, s.pay)
		return err
	})
	return paid, err
}

func (s *VaultManager) TransferShares(to ethcommon.Address, shares *big.Int) error {
	return s.mutate(func() error {
		if err := s.requireVariant(repo.VariantShare); err != nil {
			return err
		}
		return s.shares.Transfer(s.Ctx.From, to, shares)
	})
}

// ApplyRewards is restricted to the owner unless the vault runs with permissionless rewards.
func (s *VaultManager) ApplyRewards(proofs []base.ClaimProof, plan []base.LiquidationLeg) (result *HarvestResult, err error) {
	err = s.mutate(func() error {
		if !s.p.PermissionlessRewards {
			if err := s.checkOwner(); err != nil {
				return err
			}
		}
		result, err = s.harvester.ApplyRewards(proofs, plan)
		return err
	})
	return result, err
}

func (s *VaultManager) DepositRewards(amount *big.Int) error {
	return s.mutate(func() error {
		return s.harvester.DepositRewards(amount)
	})
}

// WithdrawStuckTokens sends the vault's whole balance of a reward token to the given account.
func (s *VaultManager) WithdrawStuckTokens(token ethcommon.Address, to ethcommon.Address) (amount *big.Int, err error) {
	err = s.mutate(func() error {
		if err := s.checkOwner(); err != nil {
			return err
		}
		if token == (ethcommon.Address{}) {
			return errors.Wrap(common.ErrInvalidAmount, "base asset is accounted in the vault value")
		}
		amount, err = s.collaborators.Bank.BalanceOf(token, s.Address)
		if err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return nil
		}
		if err := s.collaborators.Bank.Transfer(token, to, amount); err != nil {
			return err
		}
		s.EmitEvent("StuckTokensWithdrawn", token, to, amount)
		return nil
	})
	return amount, err
}

func (s *VaultManager) TransferOwnership(newOwner ethcommon.Address) error {
	return s.mutate(func() error {
		if err := s.checkOwner(); err != nil {
			return err
		}
		if newOwner == (ethcommon.Address{}) {
			return errors.New("new owner is the zero address")
		}
		if err := s.owner.Put(newOwner); err != nil {
			return err
		}
		s.EmitEvent("OwnershipTransferred", s.Ctx.From, newOwner)
		return nil
	})
}

// Halt stops every mutation, only the vault runtime may call it.
func (s *VaultManager) Halt(reason string) error {
	if !s.Ctx.CallFromSystem {
		return ErrNoPermission
	}
	if err := s.halt.Put(HaltInfo{Halted: true, Reason: reason, Epoch: s.scheduler.CurrentEpoch()}); err != nil {
		return err
	}
	s.EmitEvent("Halted", reason)
	s.Logger.WithFields(logrus.Fields{"reason": reason}).Error("Vault halted")
	return nil
}

func (s *VaultManager) Resume() error {
	if err := s.checkOwner(); err != nil {
		return err
	}
	halt, err := s.halt.GetOrDefault(HaltInfo{})
	if err != nil {
		return err
	}
	if !halt.Halted {
		return nil
	}
	if err := s.halt.Put(HaltInfo{}); err != nil {
		return err
	}
	s.EmitEvent("Resumed", s.Ctx.From)
	return nil
}

func (s *VaultManager) Owner() (ethcommon.Address, error) {
	return s.owner.MustGet()
}

func (s *VaultManager) Params() Params {
	return s.p
}

func (s *VaultManager) Initialized() bool {
	return s.params.Has()
}

func (s *VaultManager) HaltInfo() (HaltInfo, error) {
	return s.halt.GetOrDefault(HaltInfo{})
}

func (s *VaultManager) CurrentEpoch() uint64 {
	return s.scheduler.CurrentEpoch()
}

func (s *VaultManager) LockInfo() (*LockInfo, error) {
	return s.lock.MustGetInfo()
}

func (s *VaultManager) QueueInfo() (*QueueInfo, error) {
	return s.queue.Info()
}

func (s *VaultManager) QueueDepth() (uint64, error) {
	return s.queue.Depth()
}

func (s *VaultManager) NAV() (*big.Int, error) {
	return s.accounting.NAV()
}

func (s *VaultManager) Price() (*big.Int, error) {
	return s.accounting.Price()
}

func (s *VaultManager) TotalShares() (*big.Int, error) {
	return s.claims.TotalShares()
}

func (s *VaultManager) BalanceOf(owner ethcommon.Address) (*big.Int, error) {
	return s.claims.BalanceOf(owner)
}

func (s *VaultManager) Claims() ([]*base.Claim, error) {
	return s.claims.Claims()
}

func (s *VaultManager) ClaimsOf(owner ethcommon.Address) ([]*base.Claim, error) {
	return s.claims.ClaimsOf(owner)
}

func (s *VaultManager) Position(id uint64) (*base.Claim, error) {
	if err := s.requireVariant(repo.VariantPosition); err != nil {
		return nil, err
	}
	return s.positions.Get(id)
}

func (s *VaultManager) Queue() ([]*QueueEntry, error) {
	return s.queue.Entries()
}

func (s *VaultManager) QueueOf(owner ethcommon.Address) ([]*QueueEntry, error) {
	return s.queue.EntriesOf(owner)
}

func (s *VaultManager) IsRewardClaimed(proof base.ClaimProof) bool {
	return s.harvester.IsClaimed(proof)
}
