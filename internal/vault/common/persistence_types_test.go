package common

import (
	"math/big"
	"reflect"
	"strconv"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestVMMap(t *testing.T) {
	type Value struct {
		Name string
		Desc string
	}

	vm := NewTestVM(t)
	account := vm.StateLedger.GetOrCreateAccount(ethcommon.HexToAddress(ZeroAddress))
	vmMap := NewVMMap[string, Value](account, "test", func(key string) string { return key })

	assert.False(t, vmMap.Has("test"))
	exist, v, err := vmMap.Get("test")
	assert.Nil(t, err)
	assert.Empty(t, v)
	assert.False(t, exist)

	_, err = vmMap.MustGet("test")
	assert.NotNil(t, err)

	old := Value{Name: "name", Desc: "desc"}
	err = vmMap.Put("test", old)
	assert.Nil(t, err)

	exist, v, err = vmMap.Get("test")
	assert.Nil(t, err)
	assert.True(t, reflect.DeepEqual(v, old))
	assert.True(t, exist)

	newValue := Value{Name: "new name", Desc: "new desc"}
	err = vmMap.Put("test", newValue)
	assert.Nil(t, err)
	v, err = vmMap.MustGet("test")
	assert.Nil(t, err)
	assert.Equal(t, newValue, v)

	err = vmMap.Put("nil_value", Value{})
	assert.Nil(t, err)
	assert.True(t, vmMap.Has("nil_value"))

	err = vmMap.Delete("nil_value")
	assert.Nil(t, err)
	assert.False(t, vmMap.Has("nil_value"))
	exist, v, err = vmMap.Get("nil_value")
	assert.Nil(t, err)
	assert.Empty(t, v)
	assert.False(t, exist)

	def, err := vmMap.GetOrDefault("nil_value", old)
	assert.Nil(t, err)
	assert.Equal(t, old, def)
}

func TestVMMapUintKey(t *testing.T) {
	vm := NewTestVM(t)
	account := vm.StateLedger.GetOrCreateAccount(ethcommon.HexToAddress(ZeroAddress))
	vmMap := NewVMMap[uint64, *big.Int](account, "balances", func(key uint64) string {
		return strconv.FormatUint(key, 10)
	})

	assert.Nil(t, vmMap.Put(1, big.NewInt(100)))
	assert.Nil(t, vmMap.Put(10, big.NewInt(1000)))

	v, err := vmMap.MustGet(1)
	assert.Nil(t, err)
	assert.EqualValues(t, 100, v.Int64())
	v, err = vmMap.MustGet(10)
	assert.Nil(t, err)
	assert.EqualValues(t, 1000, v.Int64())
	assert.False(t, vmMap.Has(2))
}

func TestVMSlot(t *testing.T) {
	vm := NewTestVM(t)
	account := vm.StateLedger.GetOrCreateAccount(ethcommon.HexToAddress(ZeroAddress))
	slot := NewVMSlot[*big.Int](account, "total")

	assert.False(t, slot.Has())
	_, err := slot.MustGet()
	assert.NotNil(t, err)

	v, err := slot.GetOrDefault(big.NewInt(7))
	assert.Nil(t, err)
	assert.EqualValues(t, 7, v.Int64())

	assert.Nil(t, slot.Put(big.NewInt(0)))
	assert.True(t, slot.Has())
	v, err = slot.MustGet()
	assert.Nil(t, err)
	assert.Zero(t, v.Sign())

	assert.Nil(t, slot.Delete())
	assert.False(t, slot.Has())
}

func TestVMSlotRevert(t *testing.T) {
	vm := NewTestVM(t)
	account := vm.StateLedger.GetOrCreateAccount(ethcommon.HexToAddress(ZeroAddress))
	slot := NewVMSlot[uint64](account, "counter")
	assert.Nil(t, slot.Put(1))

	snapshot := vm.StateLedger.Snapshot()
	assert.Nil(t, slot.Put(2))
	vm.StateLedger.RevertToSnapshot(snapshot)

	v, err := slot.MustGet()
	assert.Nil(t, err)
	assert.EqualValues(t, 1, v)
}
