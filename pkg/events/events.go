package events

import (
	"github.com/ethereum/go-ethereum/common"
)

// ExecutedEvent is published once a vault transaction committed.
type ExecutedEvent struct {
	Version   uint64
	Method    string
	Caller    common.Address
	Timestamp uint64
	Epoch     uint64
	Logs      []*Log
}

type Log struct {
	Contract common.Address
	Name     string
	Args     []any
}

// HaltEvent is published when the vault stopped on a ledger inconsistency.
type HaltEvent struct {
	Reason string
	Epoch  uint64
}
