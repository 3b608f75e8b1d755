package framework

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

type TickResult struct {
	CurrentEpoch uint64 `json:"current_epoch"`

	// CycleRun is false when the maturity window has not elapsed since the last cycle
	CycleRun bool     `json:"cycle_run"`
	Claimed  *big.Int `json:"claimed"`
	Reserved *big.Int `json:"reserved"`
	Relocked *big.Int `json:"relocked"`

	// queue entries that became payable
	Promoted []uint64 `json:"promoted"`
}

// RelockScheduler advances the lock ledger. A cycle runs at most once per maturity
// window, queue promotion runs on every tick.
type RelockScheduler struct {
	common.SystemContractBase

	params    Params
	lock      *LockLedger
	queue     *WithdrawalQueue
	venue     base.LockVenue
	onPayable func(entry *QueueEntry) error
}

func NewRelockScheduler(systemContractBase common.SystemContractBase, params Params, lock *LockLedger, queue *WithdrawalQueue, venue base.LockVenue, onPayable func(entry *QueueEntry) error) *RelockScheduler {
	return &RelockScheduler{
		SystemContractBase: systemContractBase,
		params:             params,
		lock:               lock,
		queue:              queue,
		venue:              venue,
		onPayable:          onPayable,
	}
}

// CurrentEpoch never falls behind the last processed epoch, so a clock stepping back holds the epoch.
func (s *RelockScheduler) CurrentEpoch() uint64 {
	current := s.params.Clock().EpochAt(s.Ctx.Timestamp)
	if info, err := s.lock.MustGetInfo(); err == nil && current < info.LastProcessedEpoch {
		return info.LastProcessedEpoch
	}
	return current
}

func (s *RelockScheduler) Tick() (*TickResult, error) {
	info, err := s.lock.MustGetInfo()
	if err != nil {
		return nil, err
	}
	current := s.params.Clock().EpochAt(s.Ctx.Timestamp)
	if current < info.LastProcessedEpoch {
		s.Logger.WithFields(logrus.Fields{
			"epoch":                current,
			"last_processed_epoch": info.LastProcessedEpoch,
		}).Warn("Clock behind last processed epoch, hold the epoch")
		current = info.LastProcessedEpoch
	}

	result := &TickResult{
		CurrentEpoch: current,
		Claimed:      big.NewInt(0),
		Reserved:     big.NewInt(0),
		Relocked:     big.NewInt(0),
	}
	if current-info.LastProcessedEpoch >= s.params.MaturityWindow {
		if err := s.runCycle(info, current, result); err != nil {
			return nil, err
		}
	}

	promoted, err := s.queue.Promote(current, info.UnlockedUnspent, s.onPayable)
	if err != nil {
		return nil, err
	}
	result.Promoted = lo.Map(promoted, func(entry *QueueEntry, _ int) uint64 {
		return entry.ID
	})
	return result, nil
}

func (s *RelockScheduler) runCycle(info *LockInfo, current uint64, result *TickResult) error {
	schedule, err := s.venue.RequestUnlock()
	if err != nil {
		return errors.Wrap(err, "request unlock from lock venue")
	}
	due := big.NewInt(0)
	for _, batch := range schedule {
		if batch.UnlockEpoch <= current {
			due.Add(due, batch.Amount)
		}
	}

	claimed, err := s.venue.ClaimUnlocked()
	if err != nil {
		return errors.Wrap(err, "claim unlocked from lock venue")
	}
	if claimed.Cmp(due) != 0 {
		return common.Inconsistency("lock venue released %s, schedule reports %s matured", claimed, due)
	}
	if err := s.lock.matured(info, claimed); err != nil {
		return err
	}

	queueInfo, err := s.queue.Info()
	if err != nil {
		return err
	}
	reserved := common.MinBig(queueInfo.Outstanding, info.UnlockedUnspent)
	toRelock := new(big.Int).Sub(info.UnlockedUnspent, reserved)
	if err := s.lock.relocked(info, toRelock); err != nil {
		return err
	}
	info.LastProcessedEpoch = current
	info.Cycles++
	if err := s.lock.put(info); err != nil {
		return err
	}

	if toRelock.Sign() > 0 {
		if err := s.venue.Relock(toRelock); err != nil {
			return errors.Wrap(err, "relock to lock venue")
		}
	}

	result.CycleRun = true
	result.Claimed = claimed
	result.Reserved = reserved
	result.Relocked = toRelock
	s.EmitEvent("RelockCycle", current, claimed, reserved, toRelock)
	s.Logger.WithFields(logrus.Fields{
		"epoch":    current,
		"claimed":  claimed,
		"reserved": reserved,
		"relocked": toRelock,
		"cycle":    info.Cycles,
	}).Info("Run relock cycle")
	return nil
}
