package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-vault/internal/storagemgr/kv"
)

var (
	addr1 = common.HexToAddress("0x79a1215469FaB6f9c63c1816b45183AD3624bE34")
	addr2 = common.HexToAddress("0x97c8B516D19edBf575D72a172Af7F418BE498C37")
)

func newTestLedger(t *testing.T, backend kv.Storage) *StateLedgerImpl {
	l, err := NewStateLedger(backend, 16, logrus.New())
	require.Nil(t, err)
	return l
}

func TestStateLedger_Balance(t *testing.T) {
	l := newTestLedger(t, kv.NewMemory())
	assert.Zero(t, l.GetBalance(addr1).Sign())
	assert.Nil(t, l.GetAccount(addr1))

	l.AddBalance(addr1, big.NewInt(100))
	assert.EqualValues(t, 100, l.GetBalance(addr1).Int64())

	err := l.Transfer(addr1, addr2, big.NewInt(40))
	require.Nil(t, err)
	assert.EqualValues(t, 60, l.GetBalance(addr1).Int64())
	assert.EqualValues(t, 40, l.GetBalance(addr2).Int64())

	err = l.Transfer(addr1, addr2, big.NewInt(61))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.EqualValues(t, 60, l.GetBalance(addr1).Int64())

	assert.Panics(t, func() {
		l.SubBalance(addr2, big.NewInt(41))
	})
}

func TestStateLedger_SnapshotRevert(t *testing.T) {
	l := newTestLedger(t, kv.NewMemory())
	l.AddBalance(addr1, big.NewInt(10))
	l.SetState(addr1, []byte("k"), []byte("v1"))
	l.Finalise()

	snap := l.Snapshot()
	l.AddBalance(addr1, big.NewInt(5))
	l.SetState(addr1, []byte("k"), []byte("v2"))
	l.SetState(addr1, []byte("k2"), []byte("x"))
	l.AddBalance(addr2, big.NewInt(7))

	inner := l.Snapshot()
	l.SetState(addr1, []byte("k"), nil)
	exist, _ := l.GetState(addr1, []byte("k"))
	assert.False(t, exist)
	l.RevertToSnapshot(inner)
	exist, value := l.GetState(addr1, []byte("k"))
	assert.True(t, exist)
	assert.Equal(t, []byte("v2"), value)

	l.RevertToSnapshot(snap)
	assert.EqualValues(t, 10, l.GetBalance(addr1).Int64())
	exist, value = l.GetState(addr1, []byte("k"))
	assert.True(t, exist)
	assert.Equal(t, []byte("v1"), value)
	exist, _ = l.GetState(addr1, []byte("k2"))
	assert.False(t, exist)
	assert.Nil(t, l.GetAccount(addr2))

	assert.Panics(t, func() {
		l.RevertToSnapshot(snap)
	})
}

func TestStateLedger_Commit(t *testing.T) {
	backend := kv.NewMemory()
	l := newTestLedger(t, backend)
	l.AddBalance(addr1, big.NewInt(10))
	l.SetState(addr1, []byte("a"), []byte("1"))
	l.SetState(addr1, []byte("b"), []byte("2"))
	require.Nil(t, l.Commit())
	assert.EqualValues(t, 1, l.Version())

	l.SetState(addr1, []byte("b"), nil)
	l.SubBalance(addr1, big.NewInt(10))
	require.Nil(t, l.Commit())

	// reopen from the same backend
	l2 := newTestLedger(t, backend)
	assert.EqualValues(t, 2, l2.Version())
	assert.True(t, l2.Exist(addr1) || l2.GetAccount(addr1) != nil)
	assert.Zero(t, l2.GetBalance(addr1).Sign())
	exist, value := l2.GetState(addr1, []byte("a"))
	assert.True(t, exist)
	assert.Equal(t, []byte("1"), value)
	exist, _ = l2.GetState(addr1, []byte("b"))
	assert.False(t, exist)

	var keys []string
	err := l2.IterateState(addr1, func(key, value []byte) bool {
		keys = append(keys, string(key))
		return true
	})
	require.Nil(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestStateLedger_AccountCache(t *testing.T) {
	l := newTestLedger(t, kv.NewMemory())
	l.AddBalance(addr1, big.NewInt(3))
	require.Nil(t, l.Commit())

	cached, ok := l.accountCache.Get(addr1)
	require.True(t, ok)
	assert.EqualValues(t, 3, cached.(*SimpleAccount).GetBalance().Int64())

	snap := l.Snapshot()
	l.AddBalance(addr1, big.NewInt(1))
	l.RevertToSnapshot(snap)
	assert.EqualValues(t, 3, l.GetBalance(addr1).Int64())
}

func TestSplitStorageKey(t *testing.T) {
	raw := CompositeStorageKey(addr1, []byte("slot"))
	addr, key, ok := SplitStorageKey(raw)
	require.True(t, ok)
	assert.Equal(t, addr1, addr)
	assert.Equal(t, []byte("slot"), key)

	_, _, ok = SplitStorageKey([]byte("bal-"))
	assert.False(t, ok)
}
