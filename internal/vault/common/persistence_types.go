package common

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/axiomesh/axiom-vault/internal/ledger"
)

// values are stored as a 1 byte existence flag followed by the json encoding

type VMMap[K, V any] struct {
	contractAccount ledger.IAccount
	mapName         string
	keyToString     func(key K) string
}

func NewVMMap[K, V any](contractAccount ledger.IAccount, mapName string, keyToString func(key K) string) *VMMap[K, V] {
	return &VMMap[K, V]{
		contractAccount: contractAccount,
		mapName:         mapName,
		keyToString:     keyToString,
	}
}

func (m *VMMap[K, V]) stateKey(key K) []byte {
	return []byte(fmt.Sprintf("%s_%s", m.mapName, m.keyToString(key)))
}

func (m *VMMap[K, V]) Get(k K) (exist bool, v V, err error) {
	return decodeState[V](m.contractAccount.GetState(m.stateKey(k)))
}

func (m *VMMap[K, V]) MustGet(k K) (v V, err error) {
	exist, v, err := m.Get(k)
	if err != nil {
		return v, err
	}
	if !exist {
		return v, errors.Errorf("system contract[%s] map[%s] key[%s] not exist", m.contractAccount.GetAddress(), m.mapName, m.keyToString(k))
	}
	return v, nil
}

// GetOrDefault returns def when k was never written or was deleted.
func (m *VMMap[K, V]) GetOrDefault(k K, def V) (V, error) {
	exist, v, err := m.Get(k)
	if err != nil {
		return v, err
	}
	if !exist {
		return def, nil
	}
	return v, nil
}

func (m *VMMap[K, V]) Has(k K) bool {
	exist, data := m.contractAccount.GetState(m.stateKey(k))
	return stateExist(exist, data)
}

func (m *VMMap[K, V]) Put(k K, v V) error {
	data, err := encodeState(v)
	if err != nil {
		return errors.Wrapf(err, "map[%s] key[%s]", m.mapName, m.keyToString(k))
	}
	m.contractAccount.SetState(m.stateKey(k), data)
	return nil
}

func (m *VMMap[K, V]) Delete(k K) error {
	m.contractAccount.SetState(m.stateKey(k), []byte{0})
	return nil
}

type VMSlot[V any] struct {
	contractAccount ledger.IAccount
	slotName        string
}

func NewVMSlot[V any](contractAccount ledger.IAccount, slotName string) *VMSlot[V] {
	return &VMSlot[V]{
		contractAccount: contractAccount,
		slotName:        slotName,
	}
}

func (s *VMSlot[V]) stateKey() []byte {
	return []byte(s.slotName)
}

func (s *VMSlot[V]) Get() (exist bool, v V, err error) {
	return decodeState[V](s.contractAccount.GetState(s.stateKey()))
}

func (s *VMSlot[V]) MustGet() (v V, err error) {
	exist, v, err := s.Get()
	if err != nil {
		return v, err
	}
	if !exist {
		return v, errors.Errorf("system contract[%s] slot[%s] not exist", s.contractAccount.GetAddress(), s.slotName)
	}
	return v, nil
}

// GetOrDefault returns def when the slot was never written or was deleted.
func (s *VMSlot[V]) GetOrDefault(def V) (V, error) {
	exist, v, err := s.Get()
	if err != nil {
		return v, err
	}
	if !exist {
		return def, nil
	}
	return v, nil
}

func (s *VMSlot[V]) Has() bool {
	exist, data := s.contractAccount.GetState(s.stateKey())
	return stateExist(exist, data)
}

func (s *VMSlot[V]) Put(v V) error {
	data, err := encodeState(v)
	if err != nil {
		return errors.Wrapf(err, "slot[%s]", s.slotName)
	}
	s.contractAccount.SetState(s.stateKey(), data)
	return nil
}

func (s *VMSlot[V]) Delete() error {
	s.contractAccount.SetState(s.stateKey(), []byte{0})
	return nil
}

func stateExist(exist bool, data []byte) bool {
	return exist && len(data) != 0 && data[0] != 0
}

func decodeState[V any](exist bool, data []byte) (bool, V, error) {
	var v V
	if !stateExist(exist, data) {
		return false, v, nil
	}
	if err := json.Unmarshal(data[1:], &v); err != nil {
		return false, v, err
	}
	return true, v, nil
}

func encodeState(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte{1}, data...), nil
}
