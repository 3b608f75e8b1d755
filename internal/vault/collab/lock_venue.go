package collab

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/internal/vault/epoch"
)

const (
	venueParamsStorageKey = "venueParams"
	lockBatchesStorageKey = "lockBatches"
	lockedStorageKey      = "locked"
)

var LockVenueBuildConfig = &common.SystemContractBuildConfig[*LockVenue]{
	Name:    "collab_lock_venue",
	Address: common.LockVenueContractAddr,
	Constructor: func(systemContractBase common.SystemContractBase) *LockVenue {
		return &LockVenue{
			SystemContractBase: systemContractBase,
		}
	},
}

var _ base.LockVenue = (*LockVenue)(nil)

type VenueParams struct {
	GenesisTime    int64  `json:"genesis_time"`
	EpochDuration  uint64 `json:"epoch_duration"`
	MaturityWindow uint64 `json:"maturity_window"`
}

type LockBatch struct {
	Amount      *big.Int `json:"amount"`
	LockEpoch   uint64   `json:"lock_epoch"`
	UnlockEpoch uint64   `json:"unlock_epoch"`
}

// LockVenue locks the native asset in epoch aligned batches, each batch matures
// a fixed number of epochs after it was locked.
type LockVenue struct {
	common.SystemContractBase

	params  *common.VMSlot[VenueParams]
	batches *common.VMMap[ethcommon.Address, []LockBatch]
	locked  *common.VMMap[ethcommon.Address, *big.Int]
}

func (v *LockVenue) GenesisInit(params VenueParams) error {
	if params.EpochDuration == 0 || params.MaturityWindow == 0 {
		return errors.New("lock venue needs a positive epoch duration and maturity window")
	}
	return v.params.Put(params)
}

func (v *LockVenue) SetContext(ctx *common.VMContext) {
	v.SystemContractBase.SetContext(ctx)

	v.params = common.NewVMSlot[VenueParams](v.StateAccount, venueParamsStorageKey)
	v.batches = common.NewVMMap[ethcommon.Address, []LockBatch](v.StateAccount, lockBatchesStorageKey, func(key ethcommon.Address) string {
		return key.Hex()
	})
	v.locked = common.NewVMMap[ethcommon.Address, *big.Int](v.StateAccount, lockedStorageKey, func(key ethcommon.Address) string {
		return key.Hex()
	})
}

func (v *LockVenue) currentEpoch() (uint64, VenueParams, error) {
	params, err := v.params.MustGet()
	if err != nil {
		return 0, params, err
	}
	clock := &epoch.Clock{Genesis: params.GenesisTime, Duration: params.EpochDuration}
	return clock.EpochAt(v.Ctx.Timestamp), params, nil
}

func (v *LockVenue) Lock(amount *big.Int) error {
	if err := v.lock(amount); err != nil {
		return err
	}
	v.EmitEvent("Locked", v.Ctx.From, amount)
	return nil
}

// Relock is a fresh lock of principal the caller claimed before.
func (v *LockVenue) Relock(amount *big.Int) error {
	if err := v.lock(amount); err != nil {
		return err
	}
	v.EmitEvent("Relocked", v.Ctx.From, amount)
	return nil
}

func (v *LockVenue) lock(amount *big.Int) error {
	if !common.IsPositive(amount) {
		return common.ErrInvalidAmount
	}
	current, params, err := v.currentEpoch()
	if err != nil {
		return err
	}
	batches, err := v.batches.GetOrDefault(v.Ctx.From, nil)
	if err != nil {
		return err
	}
	batches = append(batches, LockBatch{
		Amount:      new(big.Int).Set(amount),
		LockEpoch:   current,
		UnlockEpoch: current + params.MaturityWindow,
	})
	if err := v.batches.Put(v.Ctx.From, batches); err != nil {
		return err
	}
	locked, err := v.LockedBalance()
	if err != nil {
		return err
	}
	if err := v.locked.Put(v.Ctx.From, locked.Add(locked, amount)); err != nil {
		return err
	}
	if err := v.Ctx.StateLedger.Transfer(v.Ctx.From, v.Address, amount); err != nil {
		return errors.Wrap(common.ErrInsufficientBalance, err.Error())
	}
	return nil
}

// RequestUnlock reports every batch of the caller, matured or not.
func (v *LockVenue) RequestUnlock() ([]base.MaturingLock, error) {
	batches, err := v.Batches(v.Ctx.From)
	if err != nil {
		return nil, err
	}
	return lo.Map(batches, func(batch LockBatch, _ int) base.MaturingLock {
		return base.MaturingLock{Amount: batch.Amount, UnlockEpoch: batch.UnlockEpoch}
	}), nil
}

func (v *LockVenue) ClaimUnlocked() (*big.Int, error) {
	current, _, err := v.currentEpoch()
	if err != nil {
		return nil, err
	}
	batches, err := v.Batches(v.Ctx.From)
	if err != nil {
		return nil, err
	}
	matured := lo.Filter(batches, func(batch LockBatch, _ int) bool {
		return batch.UnlockEpoch <= current
	})
	pending := lo.Filter(batches, func(batch LockBatch, _ int) bool {
		return batch.UnlockEpoch > current
	})
	amount := lo.Reduce(matured, func(sum *big.Int, batch LockBatch, _ int) *big.Int {
		return sum.Add(sum, batch.Amount)
	}, big.NewInt(0))
	if amount.Sign() == 0 {
		return amount, nil
	}

	if err := v.batches.Put(v.Ctx.From, pending); err != nil {
		return nil, err
	}
	locked, err := v.LockedBalance()
	if err != nil {
		return nil, err
	}
	if locked.Cmp(amount) < 0 {
		return nil, errors.Errorf("lock venue books %s for %s, releasing %s", locked, v.Ctx.From.Hex(), amount)
	}
	if err := v.locked.Put(v.Ctx.From, locked.Sub(locked, amount)); err != nil {
		return nil, err
	}
	if err := v.Ctx.StateLedger.Transfer(v.Address, v.Ctx.From, amount); err != nil {
		return nil, err
	}
	v.EmitEvent("Unlocked", v.Ctx.From, amount)
	return amount, nil
}

func (v *LockVenue) LockedBalance() (*big.Int, error) {
	return v.locked.GetOrDefault(v.Ctx.From, big.NewInt(0))
}

func (v *LockVenue) Batches(owner ethcommon.Address) ([]LockBatch, error) {
	return v.batches.GetOrDefault(owner, nil)
}
