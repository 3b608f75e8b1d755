package common

import (
	"github.com/axiomesh/axiom-vault/internal/ledger"
)

const (
	NOT_ENTERED = 1
	ENTERED     = 2

	reentrancyStatusStorageKey = "reentrancyStatus"
)

// ReentrancyGuard keeps its status in contract state, so a reverted call also
// restores the guard.
type ReentrancyGuard struct {
	status *VMSlot[uint]
}

func NewReentrancyGuard(account ledger.IAccount) *ReentrancyGuard {
	return &ReentrancyGuard{status: NewVMSlot[uint](account, reentrancyStatusStorageKey)}
}

func (rg *ReentrancyGuard) Enter() error {
	if rg.IsEntered() {
		return ErrReentrantCall
	}
	return rg.status.Put(ENTERED)
}

func (rg *ReentrancyGuard) Exit() {
	_ = rg.status.Put(NOT_ENTERED)
}

func (rg *ReentrancyGuard) IsEntered() bool {
	status, err := rg.status.GetOrDefault(NOT_ENTERED)
	if err != nil {
		return false
	}
	return status == ENTERED
}
