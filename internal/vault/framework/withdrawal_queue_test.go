package framework

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/pkg/loggers"
)

func newTestQueue(t *testing.T) *WithdrawalQueue {
	vm := common.NewTestVM(t)
	addr := ethcommon.HexToAddress(common.VaultContractAddr)
	ctx := common.NewVMContext(vm.StateLedger, addr, 0)
	queue := NewWithdrawalQueue(common.SystemContractBase{
		Logger:       loggers.Logger(loggers.Vault),
		Address:      addr,
		Ctx:          ctx,
		StateAccount: vm.StateLedger.GetOrCreateAccount(addr),
	})
	require.Nil(t, queue.Init())
	return queue
}

func TestWithdrawalQueue_Promote(t *testing.T) {
	queue := newTestQueue(t)
	_, err := queue.Enqueue(alice, 0, big.NewInt(1), big.NewInt(30), 0, 17)
	require.Nil(t, err)
	_, err = queue.Enqueue(bob, 0, big.NewInt(1), big.NewInt(10), 1, 18)
	require.Nil(t, err)

	_, err = queue.Enqueue(bob, 0, big.NewInt(1), big.NewInt(10), 1, 16)
	assert.True(t, common.IsInconsistency(err))
	_, err = queue.Enqueue(bob, 0, big.NewInt(1), big.NewInt(0), 1, 18)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	// not due yet
	promoted, err := queue.Promote(16, big.NewInt(100), nil)
	require.Nil(t, err)
	assert.Empty(t, promoted)

	// the head is not covered, the second entry waits behind it
	promoted, err = queue.Promote(18, big.NewInt(20), nil)
	require.Nil(t, err)
	assert.Empty(t, promoted)

	var notified []uint64
	promoted, err = queue.Promote(18, big.NewInt(35), func(entry *QueueEntry) error {
		notified = append(notified, entry.ID)
		return nil
	})
	require.Nil(t, err)
	require.Len(t, promoted, 1)
	assert.EqualValues(t, 1, promoted[0].ID)
	assert.Equal(t, []uint64{1}, notified)

	// 30 of the 40 unlocked is reserved already
	promoted, err = queue.Promote(18, big.NewInt(40), nil)
	require.Nil(t, err)
	require.Len(t, promoted, 1)
	assert.EqualValues(t, 2, promoted[0].ID)

	info, err := queue.Info()
	require.Nil(t, err)
	assert.EqualValues(t, 40, info.Payable.Int64())
	assert.EqualValues(t, 40, info.Outstanding.Int64())

	_, err = queue.Promote(18, big.NewInt(39), nil)
	assert.True(t, common.IsInconsistency(err))
}

func TestWithdrawalQueue_Settle(t *testing.T) {
	queue := newTestQueue(t)
	_, err := queue.Enqueue(alice, 0, big.NewInt(1), big.NewInt(30), 0, 17)
	require.Nil(t, err)
	_, err = queue.Enqueue(bob, 7, big.NewInt(1), big.NewInt(10), 1, 18)
	require.Nil(t, err)

	var paid []uint64
	pay := func(entry *QueueEntry) error {
		paid = append(paid, entry.ID)
		return nil
	}

	_, err = queue.Settle(2, 18, pay)
	assert.ErrorIs(t, err, common.ErrNotYetPayable)

	_, err = queue.Promote(18, big.NewInt(40), nil)
	require.Nil(t, err)

	amount, err := queue.Settle(2, 18, pay)
	require.Nil(t, err)
	assert.EqualValues(t, 10, amount.Int64())
	amount, err = queue.Settle(2, 18, pay)
	require.Nil(t, err)
	assert.Zero(t, amount.Sign())

	// position exits are settled by id only
	_, err = queue.SettleOwner(bob, 18, 18, pay)
	assert.ErrorIs(t, err, common.ErrNotRequested)

	_, err = queue.SettleOwner(alice, 17, 16, pay)
	assert.ErrorIs(t, err, common.ErrNotYetPayable)
	amount, err = queue.SettleOwner(alice, 17, 18, pay)
	require.Nil(t, err)
	assert.EqualValues(t, 30, amount.Int64())
	assert.Equal(t, []uint64{2, 1}, paid)

	info, err := queue.Info()
	require.Nil(t, err)
	assert.EqualValues(t, 3, info.Head)
	assert.Zero(t, info.Outstanding.Sign())
	assert.Zero(t, info.Payable.Sign())

	entry, err := queue.Get(1)
	require.Nil(t, err)
	assert.Equal(t, EntryStatusSettled, entry.Status)
	assert.EqualValues(t, 18, entry.SettledEpoch)

	err = transitEntry(entry, entryEventSettle)
	assert.True(t, common.IsInconsistency(err))
}

func TestWithdrawalQueue_ProcessHaltsAtPending(t *testing.T) {
	queue := newTestQueue(t)
	for i := 0; i < 3; i++ {
		_, err := queue.Enqueue(alice, 0, big.NewInt(1), big.NewInt(10), 0, 17)
		require.Nil(t, err)
	}
	_, err := queue.Promote(17, big.NewInt(20), nil)
	require.Nil(t, err)

	settled, err := queue.Process(1, 17, func(entry *QueueEntry) error { return nil })
	require.Nil(t, err)
	require.Len(t, settled, 1)

	settled, err = queue.Process(10, 17, func(entry *QueueEntry) error { return nil })
	require.Nil(t, err)
	require.Len(t, settled, 1)
	assert.EqualValues(t, 2, settled[0].ID)

	depth, err := queue.Depth()
	require.Nil(t, err)
	assert.EqualValues(t, 1, depth)
	entries, err := queue.EntriesOf(alice)
	require.Nil(t, err)
	assert.Len(t, entries, 3)
}
