package common

import (
	"github.com/pkg/errors"
)

var (
	ErrNotRequested        = errors.New("exit not requested")
	ErrStillLocked         = errors.New("still locked")
	ErrAlreadyRequested    = errors.New("exit already requested")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSlippageExceeded    = errors.New("slippage exceeded")
	ErrNotYetPayable       = errors.New("not yet payable")
	ErrUnauthorized        = errors.New("unauthorized")

	// ErrLedgerInconsistency is fatal, the vault halts after reporting it
	ErrLedgerInconsistency = errors.New("ledger inconsistency")

	ErrAlreadyClaimed   = errors.New("reward already claimed")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrPositionNotFound = errors.New("position not found")
	ErrInvalidProof     = errors.New("invalid reward proof")
	ErrVaultHalted      = errors.New("vault halted")
	ErrReentrantCall    = errors.New("reentrant call")
)

// Inconsistency wraps ErrLedgerInconsistency with the broken invariant.
func Inconsistency(format string, args ...any) error {
	return errors.Wrapf(ErrLedgerInconsistency, format, args...)
}

func IsInconsistency(err error) bool {
	return errors.Is(err, ErrLedgerInconsistency)
}
