package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// StateLedger is the journaled account state every system contract runs on.
//
type StateLedger interface {
	StateAccessor

	// Finalise folds the current transaction's changes into the pending block state
	// and drops the revert journal.
	Finalise()

	// Commit flushes the pending state into the backing storage in one batch.
	Commit() error

	// Version is the number of commits applied to the backing storage.
	Version() uint64

	// Close release resource
	Close()
}

// StateAccessor manipulates the state data
type StateAccessor interface {
	// GetOrCreateAccount
	GetOrCreateAccount(common.Address) IAccount
	// GetAccount returns nil when the account has never been written
	GetAccount(common.Address) IAccount
	// GetBalance
	GetBalance(common.Address) *big.Int
	// SetBalance
	SetBalance(common.Address, *big.Int)
	// SubBalance
	SubBalance(common.Address, *big.Int)
	// AddBalance
	AddBalance(common.Address, *big.Int)
	// Transfer moves amount between accounts, failing when from cannot cover it
	Transfer(from, to common.Address, amount *big.Int) error
	// GetState
	GetState(common.Address, []byte) (bool, []byte)
	// SetState
	SetState(common.Address, []byte, []byte)
	// Exist
	Exist(common.Address) bool
	// RevertToSnapshot
	RevertToSnapshot(int)
	// Snapshot
	Snapshot() int
}

type IAccount interface {
	fmt.Stringer

	GetAddress() common.Address

	GetState(key []byte) (bool, []byte)

	GetCommittedState(key []byte) []byte

	// SetState stores value under key, a nil value deletes the key
	SetState(key []byte, value []byte)

	GetBalance() *big.Int

	SetBalance(balance *big.Int)

	SubBalance(amount *big.Int)

	AddBalance(amount *big.Int)

	IsEmpty() bool
}
