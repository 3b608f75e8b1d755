package framework

import (
	"math/big"

	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

const lockInfoStorageKey = "lockInfo"

// LockInfo is the vault side view of the principal held by the lock venue.
type LockInfo struct {
	TotalLocked        *big.Int `json:"total_locked"`
	UnlockedUnspent    *big.Int `json:"unlocked_unspent"`
	LastProcessedEpoch uint64   `json:"last_processed_epoch"`
	Cycles             uint64   `json:"cycles"`
}

// LockLedger tracks locked and matured principal. Only the relock scheduler moves
// LastProcessedEpoch.
type LockLedger struct {
	common.SystemContractBase

	info *common.VMSlot[*LockInfo]
}

func NewLockLedger(systemContractBase common.SystemContractBase) *LockLedger {
	return &LockLedger{
		SystemContractBase: systemContractBase,
		info:               common.NewVMSlot[*LockInfo](systemContractBase.StateAccount, lockInfoStorageKey),
	}
}

func (l *LockLedger) Init(currentEpoch uint64) error {
	return l.info.Put(&LockInfo{
		TotalLocked:        big.NewInt(0),
		UnlockedUnspent:    big.NewInt(0),
		LastProcessedEpoch: currentEpoch,
	})
}

func (l *LockLedger) MustGetInfo() (*LockInfo, error) {
	info, err := l.info.MustGet()
	if err != nil {
		return nil, err
	}
	if info.TotalLocked == nil || info.UnlockedUnspent == nil {
		return nil, common.Inconsistency("lock info is corrupted")
	}
	return info, nil
}

func (l *LockLedger) put(info *LockInfo) error {
	if info.TotalLocked.Sign() < 0 || info.UnlockedUnspent.Sign() < 0 {
		return common.Inconsistency("lock ledger below zero, locked %s, unlocked %s", info.TotalLocked, info.UnlockedUnspent)
	}
	return l.info.Put(info)
}

// AddLocked records principal newly committed to the venue.
func (l *LockLedger) AddLocked(amount *big.Int) error {
	info, err := l.MustGetInfo()
	if err != nil {
		return err
	}
	info.TotalLocked.Add(info.TotalLocked, amount)
	return l.put(info)
}

// SpendUnlocked takes a payout from the matured pool.
func (l *LockLedger) SpendUnlocked(amount *big.Int) error {
	info, err := l.MustGetInfo()
	if err != nil {
		return err
	}
	if info.UnlockedUnspent.Cmp(amount) < 0 {
		return common.Inconsistency("payout %s exceeds unlocked %s", amount, info.UnlockedUnspent)
	}
	info.UnlockedUnspent.Sub(info.UnlockedUnspent, amount)
	return l.put(info)
}

// matured moves claimed principal from locked to the unlocked pool.
func (l *LockLedger) matured(info *LockInfo, amount *big.Int) error {
	if info.TotalLocked.Cmp(amount) < 0 {
		return common.Inconsistency("venue released %s but only %s is locked", amount, info.TotalLocked)
	}
	info.TotalLocked.Sub(info.TotalLocked, amount)
	info.UnlockedUnspent.Add(info.UnlockedUnspent, amount)
	return nil
}

// relocked moves principal from the unlocked pool back to locked.
func (l *LockLedger) relocked(info *LockInfo, amount *big.Int) error {
	if info.UnlockedUnspent.Cmp(amount) < 0 {
		return common.Inconsistency("relock %s exceeds unlocked %s", amount, info.UnlockedUnspent)
	}
	info.UnlockedUnspent.Sub(info.UnlockedUnspent, amount)
	info.TotalLocked.Add(info.TotalLocked, amount)
	return nil
}
