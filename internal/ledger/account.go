package ledger

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-vault/internal/storagemgr/kv"
)

var _ IAccount = (*SimpleAccount)(nil)

type SimpleAccount struct {
	logger logrus.FieldLogger
	Addr   common.Address

	originBalance *big.Int
	dirtyBalance  *big.Int

	// The confirmed state of the previous commit
	originState map[string][]byte

	// Modified state of previous transactions since the last commit, nil means deleted
	pendingState map[string][]byte

	// The latest state of the current transaction, nil means deleted
	dirtyState map[string][]byte

	backend kv.Storage
	changer *stateChanger
	exist   bool
}

func NewAccount(logger logrus.FieldLogger, backend kv.Storage, addr common.Address, changer *stateChanger) *SimpleAccount {
	return &SimpleAccount{
		logger:        logger,
		Addr:          addr,
		originBalance: big.NewInt(0),
		dirtyBalance:  big.NewInt(0),
		originState:   make(map[string][]byte),
		pendingState:  make(map[string][]byte),
		dirtyState:    make(map[string][]byte),
		backend:       backend,
		changer:       changer,
	}
}

func (o *SimpleAccount) String() string {
	return fmt.Sprintf("{account: %s, balance: %s}", o.Addr.Hex(), o.GetBalance().String())
}

func (o *SimpleAccount) GetAddress() common.Address {
	return o.Addr
}

func (o *SimpleAccount) GetCommittedState(key []byte) []byte {
	if value, exist := o.originState[string(key)]; exist {
		return value
	}

	val := o.backend.Get(CompositeStorageKey(o.Addr, key))
	o.originState[string(key)] = val
	return val
}

func (o *SimpleAccount) GetState(key []byte) (bool, []byte) {
	if value, exist := o.dirtyState[string(key)]; exist {
		return value != nil, value
	}
	if value, exist := o.pendingState[string(key)]; exist {
		return value != nil, value
	}

	value := o.GetCommittedState(key)
	return value != nil, value
}

func (o *SimpleAccount) SetState(key []byte, value []byte) {
	prev, prevDirty := o.dirtyState[string(key)]
	o.changer.append(storageChange{
		account:   &o.Addr,
		key:       key,
		prevalue:  prev,
		prevDirty: prevDirty,
	})
	if value != nil {
		value = bytes.Clone(value)
	}
	o.dirtyState[string(key)] = value
}

func (o *SimpleAccount) restoreState(key []byte, prev []byte, prevDirty bool) {
	if !prevDirty {
		delete(o.dirtyState, string(key))
		return
	}
	o.dirtyState[string(key)] = prev
}

func (o *SimpleAccount) GetBalance() *big.Int {
	return new(big.Int).Set(o.dirtyBalance)
}

func (o *SimpleAccount) SetBalance(balance *big.Int) {
	o.changer.append(balanceChange{
		account: &o.Addr,
		prev:    new(big.Int).Set(o.dirtyBalance),
	})
	o.setBalance(balance)
}

func (o *SimpleAccount) setBalance(balance *big.Int) {
	o.dirtyBalance = new(big.Int).Set(balance)
}

// SubBalance panics on underflow, callers check the balance first.
func (o *SimpleAccount) SubBalance(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	if o.dirtyBalance.Cmp(amount) < 0 {
		panic(fmt.Sprintf("account %s balance %s below %s", o.Addr.Hex(), o.dirtyBalance.String(), amount.String()))
	}
	o.SetBalance(new(big.Int).Sub(o.dirtyBalance, amount))
}

func (o *SimpleAccount) AddBalance(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	o.SetBalance(new(big.Int).Add(o.dirtyBalance, amount))
}

func (o *SimpleAccount) IsEmpty() bool {
	return o.dirtyBalance.Sign() == 0 && len(o.dirtyState) == 0 && len(o.pendingState) == 0 && !o.exist
}

// finalise folds the transaction's dirty state into the pending state.
func (o *SimpleAccount) finalise() {
	for key, value := range o.dirtyState {
		o.pendingState[key] = value
	}
	o.dirtyState = make(map[string][]byte)
}

func (o *SimpleAccount) dirty() bool {
	return len(o.pendingState) != 0 || o.originBalance.Cmp(o.dirtyBalance) != 0
}

// flush writes the pending state into batch and promotes it to origin.
func (o *SimpleAccount) flush(batch kv.Batch) {
	for key, value := range o.pendingState {
		storageKey := CompositeStorageKey(o.Addr, []byte(key))
		if value == nil {
			batch.Delete(storageKey)
		} else {
			batch.Put(storageKey, value)
		}
		o.originState[key] = value
	}
	o.pendingState = make(map[string][]byte)

	if o.originBalance.Cmp(o.dirtyBalance) != 0 || !o.exist {
		batch.Put(compositeBalanceKey(o.Addr), encodeBalance(o.dirtyBalance))
		o.originBalance = new(big.Int).Set(o.dirtyBalance)
	}
	o.exist = true
}

// balances carry a version byte so a zero balance is never an empty value.
func encodeBalance(balance *big.Int) []byte {
	return append([]byte{1}, balance.Bytes()...)
}

func decodeBalance(raw []byte) *big.Int {
	if len(raw) <= 1 {
		return big.NewInt(0)
	}
	return new(big.Int).SetBytes(raw[1:])
}
