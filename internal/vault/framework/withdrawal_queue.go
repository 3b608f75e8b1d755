package framework

import (
	"math/big"
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/looplab/fsm"
	"github.com/samber/lo"

	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

const (
	queueInfoStorageKey    = "queueInfo"
	queueEntriesStorageKey = "queueEntries"
	ownerEntriesStorageKey = "ownerQueueEntries"
)

const (
	EntryStatusPending = "pending"
	EntryStatusPayable = "payable"
	EntryStatusSettled = "settled"

	entryEventPromote = "promote"
	entryEventSettle  = "settle"
)

type QueueEntry struct {
	ID    uint64            `json:"id"`
	Owner ethcommon.Address `json:"owner"`

	// 0 for share withdrawals
	PositionID uint64 `json:"position_id"`

	Shares *big.Int `json:"shares"`

	// value of Shares when the exit was requested
	Amount *big.Int `json:"amount"`

	RequestEpoch uint64 `json:"request_epoch"`
	TargetEpoch  uint64 `json:"target_epoch"`
	Status       string `json:"status"`
	SettledEpoch uint64 `json:"settled_epoch,omitempty"`
}

type QueueInfo struct {
	// first entry not settled yet
	Head   uint64 `json:"head"`
	NextID uint64 `json:"next_id"`

	// value of every entry not settled yet
	Outstanding *big.Int `json:"outstanding"`

	// value of payable entries, reserved from the unlocked pool
	Payable *big.Int `json:"payable"`
}

// WithdrawalQueue orders exits by request. Entries move pending -> payable -> settled
// and are promoted strictly in order.
type WithdrawalQueue struct {
	common.SystemContractBase

	info         *common.VMSlot[*QueueInfo]
	entries      *common.VMMap[uint64, *QueueEntry]
	ownerEntries *common.VMMap[ethcommon.Address, []uint64]
}

func NewWithdrawalQueue(systemContractBase common.SystemContractBase) *WithdrawalQueue {
	return &WithdrawalQueue{
		SystemContractBase: systemContractBase,
		info:               common.NewVMSlot[*QueueInfo](systemContractBase.StateAccount, queueInfoStorageKey),
		entries: common.NewVMMap[uint64, *QueueEntry](systemContractBase.StateAccount, queueEntriesStorageKey, func(key uint64) string {
			return strconv.FormatUint(key, 10)
		}),
		ownerEntries: common.NewVMMap[ethcommon.Address, []uint64](systemContractBase.StateAccount, ownerEntriesStorageKey, func(key ethcommon.Address) string {
			return key.Hex()
		}),
	}
}

func newEntryFSM(status string) *fsm.FSM {
	return fsm.NewFSM(
		status,
		fsm.Events{
			{Name: entryEventPromote, Src: []string{EntryStatusPending}, Dst: EntryStatusPayable},
			{Name: entryEventSettle, Src: []string{EntryStatusPayable}, Dst: EntryStatusSettled},
		},
		fsm.Callbacks{},
	)
}

func transitEntry(entry *QueueEntry, event string) error {
	machine := newEntryFSM(entry.Status)
	if err := machine.Event(event); err != nil {
		return common.Inconsistency("queue entry %d %s: %v", entry.ID, event, err)
	}
	entry.Status = machine.Current()
	return nil
}

func (q *WithdrawalQueue) Init() error {
	return q.info.Put(&QueueInfo{
		Head:        1,
		NextID:      1,
		Outstanding: big.NewInt(0),
		Payable:     big.NewInt(0),
	})
}

func (q *WithdrawalQueue) Info() (*QueueInfo, error) {
	info, err := q.info.MustGet()
	if err != nil {
		return nil, err
	}
	if info.Outstanding == nil || info.Payable == nil {
		return nil, common.Inconsistency("queue info is corrupted")
	}
	return info, nil
}

func (q *WithdrawalQueue) Get(id uint64) (*QueueEntry, error) {
	exist, entry, err := q.entries.Get(id)
	if err != nil {
		return nil, err
	}
	if !exist {
		return nil, common.Inconsistency("queue entry %d not found", id)
	}
	return entry, nil
}

// Enqueue appends an exit of amount payable from targetEpoch on.
func (q *WithdrawalQueue) Enqueue(owner ethcommon.Address, positionID uint64, shares, amount *big.Int, requestEpoch, targetEpoch uint64) (*QueueEntry, error) {
	if !common.IsPositive(amount) {
		return nil, common.ErrInvalidAmount
	}
	info, err := q.Info()
	if err != nil {
		return nil, err
	}
	if info.NextID > info.Head {
		last, err := q.Get(info.NextID - 1)
		if err != nil {
			return nil, err
		}
		if last.TargetEpoch > targetEpoch {
			return nil, common.Inconsistency("queue target epoch %d before tail %d", targetEpoch, last.TargetEpoch)
		}
	}

	entry := &QueueEntry{
		ID:           info.NextID,
		Owner:        owner,
		PositionID:   positionID,
		Shares:       common.CloneBig(shares),
		Amount:       new(big.Int).Set(amount),
		RequestEpoch: requestEpoch,
		TargetEpoch:  targetEpoch,
		Status:       EntryStatusPending,
	}
	if err := q.entries.Put(entry.ID, entry); err != nil {
		return nil, err
	}
	ids, err := q.ownerEntries.GetOrDefault(owner, nil)
	if err != nil {
		return nil, err
	}
	if err := q.ownerEntries.Put(owner, append(ids, entry.ID)); err != nil {
		return nil, err
	}

	info.NextID++
	info.Outstanding.Add(info.Outstanding, amount)
	if err := q.info.Put(info); err != nil {
		return nil, err
	}
	q.EmitEvent("QueueEntryCreated", entry.ID, owner, amount, targetEpoch)
	return entry, nil
}

// Promote marks due entries payable while unlocked liquidity not yet reserved covers them.
// It stops at the first pending entry that is not due or not covered.
func (q *WithdrawalQueue) Promote(currentEpoch uint64, unlocked *big.Int, onPayable func(entry *QueueEntry) error) ([]*QueueEntry, error) {
	info, err := q.Info()
	if err != nil {
		return nil, err
	}
	available := new(big.Int).Sub(unlocked, info.Payable)
	if available.Sign() < 0 {
		return nil, common.Inconsistency("payable %s exceeds unlocked %s", info.Payable, unlocked)
	}

	var promoted []*QueueEntry
	for id := info.Head; id < info.NextID; id++ {
		entry, err := q.Get(id)
		if err != nil {
			return nil, err
		}
		if entry.Status != EntryStatusPending {
			continue
		}
		if entry.TargetEpoch > currentEpoch || available.Cmp(entry.Amount) < 0 {
			break
		}
		if err := transitEntry(entry, entryEventPromote); err != nil {
			return nil, err
		}
		available.Sub(available, entry.Amount)
		info.Payable.Add(info.Payable, entry.Amount)
		if err := q.entries.Put(entry.ID, entry); err != nil {
			return nil, err
		}
		if onPayable != nil {
			if err := onPayable(entry); err != nil {
				return nil, err
			}
		}
		q.EmitEvent("QueueEntryPayable", entry.ID, entry.Owner, entry.Amount)
		promoted = append(promoted, entry)
	}
	if err := q.info.Put(info); err != nil {
		return nil, err
	}
	return promoted, nil
}

// Process settles payable entries from the head in order, halting at the first
// entry that is still pending.
func (q *WithdrawalQueue) Process(maxEntries uint64, currentEpoch uint64, pay func(entry *QueueEntry) error) ([]*QueueEntry, error) {
	info, err := q.Info()
	if err != nil {
		return nil, err
	}

	var settled []*QueueEntry
	for id := info.Head; id < info.NextID && uint64(len(settled)) < maxEntries; id++ {
		entry, err := q.Get(id)
		if err != nil {
			return nil, err
		}
		if entry.Status == EntryStatusSettled {
			continue
		}
		if entry.Status == EntryStatusPending {
			break
		}
		if err := q.settle(info, entry, currentEpoch, pay); err != nil {
			return nil, err
		}
		settled = append(settled, entry)
	}
	if err := q.advanceHead(info); err != nil {
		return nil, err
	}
	return settled, nil
}

// SettleOwner pays every payable entry of owner targeted at or before unlockEpoch.
func (q *WithdrawalQueue) SettleOwner(owner ethcommon.Address, unlockEpoch uint64, currentEpoch uint64, pay func(entry *QueueEntry) error) (*big.Int, error) {
	entries, err := q.EntriesOf(owner)
	if err != nil {
		return nil, err
	}
	due := lo.Filter(entries, func(entry *QueueEntry, _ int) bool {
		return entry.PositionID == 0 && entry.TargetEpoch <= unlockEpoch
	})
	if len(due) == 0 {
		return nil, common.ErrNotRequested
	}
	if unlockEpoch > currentEpoch {
		return nil, common.ErrNotYetPayable
	}
	if lo.ContainsBy(due, func(entry *QueueEntry) bool {
		return entry.Status == EntryStatusPending
	}) {
		return nil, common.ErrNotYetPayable
	}

	info, err := q.Info()
	if err != nil {
		return nil, err
	}
	paid := big.NewInt(0)
	for _, entry := range due {
		if entry.Status != EntryStatusPayable {
			continue
		}
		if err := q.settle(info, entry, currentEpoch, pay); err != nil {
			return nil, err
		}
		paid.Add(paid, entry.Amount)
	}
	if err := q.advanceHead(info); err != nil {
		return nil, err
	}
	return paid, nil
}

// Settle pays a single entry, an entry settled before pays nothing.
func (q *WithdrawalQueue) Settle(id uint64, currentEpoch uint64, pay func(entry *QueueEntry) error) (*big.Int, error) {
	entry, err := q.Get(id)
	if err != nil {
		return nil, err
	}
	switch entry.Status {
	case EntryStatusSettled:
		return big.NewInt(0), nil
	case EntryStatusPending:
		return nil, common.ErrNotYetPayable
	}

	info, err := q.Info()
	if err != nil {
		return nil, err
	}
	if err := q.settle(info, entry, currentEpoch, pay); err != nil {
		return nil, err
	}
	if err := q.advanceHead(info); err != nil {
		return nil, err
	}
	return new(big.Int).Set(entry.Amount), nil
}

// settle updates the queue before pay moves any asset.
func (q *WithdrawalQueue) settle(info *QueueInfo, entry *QueueEntry, currentEpoch uint64, pay func(entry *QueueEntry) error) error {
	if err := transitEntry(entry, entryEventSettle); err != nil {
		return err
	}
	if info.Payable.Cmp(entry.Amount) < 0 || info.Outstanding.Cmp(entry.Amount) < 0 {
		return common.Inconsistency("queue entry %d amount %s exceeds payable %s or outstanding %s", entry.ID, entry.Amount, info.Payable, info.Outstanding)
	}
	info.Payable.Sub(info.Payable, entry.Amount)
	info.Outstanding.Sub(info.Outstanding, entry.Amount)
	entry.SettledEpoch = currentEpoch
	if err := q.entries.Put(entry.ID, entry); err != nil {
		return err
	}
	if err := q.info.Put(info); err != nil {
		return err
	}
	q.EmitEvent("QueueEntrySettled", entry.ID, entry.Owner, entry.Amount)
	return pay(entry)
}

func (q *WithdrawalQueue) advanceHead(info *QueueInfo) error {
	for info.Head < info.NextID {
		entry, err := q.Get(info.Head)
		if err != nil {
			return err
		}
		if entry.Status != EntryStatusSettled {
			break
		}
		info.Head++
	}
	return q.info.Put(info)
}

// Entries returns every entry ever queued in request order.
func (q *WithdrawalQueue) Entries() ([]*QueueEntry, error) {
	info, err := q.Info()
	if err != nil {
		return nil, err
	}
	entries := make([]*QueueEntry, 0, info.NextID-1)
	for id := uint64(1); id < info.NextID; id++ {
		entry, err := q.Get(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (q *WithdrawalQueue) EntriesOf(owner ethcommon.Address) ([]*QueueEntry, error) {
	ids, err := q.ownerEntries.GetOrDefault(owner, nil)
	if err != nil {
		return nil, err
	}
	entries := make([]*QueueEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := q.Get(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Depth counts the entries not settled yet.
func (q *WithdrawalQueue) Depth() (uint64, error) {
	info, err := q.Info()
	if err != nil {
		return 0, err
	}
	var depth uint64
	for id := info.Head; id < info.NextID; id++ {
		entry, err := q.Get(id)
		if err != nil {
			return 0, err
		}
		if entry.Status != EntryStatusSettled {
			depth++
		}
	}
	return depth, nil
}
