package ledger

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	balanceKey = "bal-"
	storageKey = "st-"
	versionKey = "ledger-version"
)

func compositeBalanceKey(addr common.Address) []byte {
	return append([]byte(balanceKey), addr.Bytes()...)
}

func CompositeStorageKey(addr common.Address, key []byte) []byte {
	ret := make([]byte, 0, len(storageKey)+common.AddressLength+len(key))
	ret = append(ret, []byte(storageKey)...)
	ret = append(ret, addr.Bytes()...)
	return append(ret, key...)
}

// StoragePrefix is the kv prefix holding every state key of addr.
func StoragePrefix(addr common.Address) []byte {
	return CompositeStorageKey(addr, nil)
}

// SplitStorageKey reverses CompositeStorageKey.
func SplitStorageKey(raw []byte) (common.Address, []byte, bool) {
	if len(raw) < len(storageKey)+common.AddressLength || string(raw[:len(storageKey)]) != storageKey {
		return common.Address{}, nil, false
	}
	rest := raw[len(storageKey):]
	return common.BytesToAddress(rest[:common.AddressLength]), rest[common.AddressLength:], true
}
