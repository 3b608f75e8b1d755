package vault

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/framework"
)

// Status is the inspection surface of the vault.
type Status struct {
	Variant      string               `json:"variant"`
	Owner        ethcommon.Address    `json:"owner"`
	Version      uint64               `json:"version"`
	Timestamp    uint64               `json:"timestamp"`
	CurrentEpoch uint64               `json:"current_epoch"`
	NextCycle    uint64               `json:"next_cycle"`
	Lock         *framework.LockInfo  `json:"lock"`
	Queue        *framework.QueueInfo `json:"queue"`
	QueueDepth   uint64               `json:"queue_depth"`
	NAV          *big.Int             `json:"nav"`
	Price        *big.Int             `json:"price"`
	TotalShares  *big.Int             `json:"total_shares"`
	Halt         framework.HaltInfo   `json:"halt"`
}

func (v *Vault) Status() (status *Status, err error) {
	v.view(func() {
		status, err = v.status()
	})
	return status, err
}

func (v *Vault) status() (*Status, error) {
	s := &Status{
		Variant:      v.params.Variant,
		Version:      v.stateLedger.Version(),
		Timestamp:    v.manager.Ctx.Timestamp,
		CurrentEpoch: v.manager.CurrentEpoch(),
	}
	var err error
	if s.Owner, err = v.manager.Owner(); err != nil {
		return nil, err
	}
	if s.Lock, err = v.manager.LockInfo(); err != nil {
		return nil, err
	}
	s.NextCycle = s.Lock.LastProcessedEpoch + v.params.MaturityWindow
	if s.Queue, err = v.manager.QueueInfo(); err != nil {
		return nil, err
	}
	if s.QueueDepth, err = v.manager.QueueDepth(); err != nil {
		return nil, err
	}
	if s.NAV, err = v.manager.NAV(); err != nil {
		return nil, err
	}
	if s.Price, err = v.manager.Price(); err != nil {
		return nil, err
	}
	if s.TotalShares, err = v.manager.TotalShares(); err != nil {
		return nil, err
	}
	if s.Halt, err = v.manager.HaltInfo(); err != nil {
		return nil, err
	}
	return s, nil
}

func (v *Vault) Params() framework.Params {
	return v.params
}

func (v *Vault) Queue() (entries []*framework.QueueEntry, err error) {
	v.view(func() {
		entries, err = v.manager.Queue()
	})
	return entries, err
}

func (v *Vault) QueueOf(owner ethcommon.Address) (entries []*framework.QueueEntry, err error) {
	v.view(func() {
		entries, err = v.manager.QueueOf(owner)
	})
	return entries, err
}

func (v *Vault) Claims() (claims []*base.Claim, err error) {
	v.view(func() {
		claims, err = v.manager.Claims()
	})
	return claims, err
}

func (v *Vault) ClaimsOf(owner ethcommon.Address) (claims []*base.Claim, err error) {
	v.view(func() {
		claims, err = v.manager.ClaimsOf(owner)
	})
	return claims, err
}

func (v *Vault) BalanceOf(owner ethcommon.Address) (shares *big.Int, err error) {
	v.view(func() {
		shares, err = v.manager.BalanceOf(owner)
	})
	return shares, err
}

func (v *Vault) Position(id uint64) (position *base.Claim, err error) {
	v.view(func() {
		position, err = v.manager.Position(id)
	})
	return position, err
}

func (v *Vault) CheckInvariants() (report *framework.InvariantReport, err error) {
	v.view(func() {
		report, err = v.manager.CheckInvariants()
	})
	return report, err
}

// RewardProof builds the claim proof of a leaf under the token's current root.
func (v *Vault) RewardProof(token ethcommon.Address, index uint64) (proof base.ClaimProof, err error) {
	v.view(func() {
		v.distributor.SetContext(v.manager.Ctx)
		proof, err = v.distributor.ProofOf(token, index)
	})
	return proof, err
}

func (v *Vault) IsRewardClaimed(proof base.ClaimProof) (claimed bool) {
	v.view(func() {
		claimed = v.manager.IsRewardClaimed(proof)
	})
	return claimed
}

func (v *Vault) TokenBalance(token ethcommon.Address, owner ethcommon.Address) (balance *big.Int, err error) {
	v.view(func() {
		v.bank.SetContext(v.manager.Ctx)
		balance, err = v.bank.BalanceOf(token, owner)
	})
	return balance, err
}

// StateDump is one committed storage slot of a vault contract.
type StateDump struct {
	Contract ethcommon.Address `json:"contract"`
	Key      string            `json:"key"`
	Value    string            `json:"value"`
}

type stateIterator interface {
	IterateState(addr ethcommon.Address, fn func(key, value []byte) bool) error
}

// DumpState lists the committed storage of every vault contract.
func (v *Vault) DumpState() ([]*StateDump, error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	it, ok := v.stateLedger.(stateIterator)
	if !ok {
		return nil, errors.New("state ledger can not be iterated")
	}
	var dumps []*StateDump
	for _, addr := range []ethcommon.Address{v.manager.Address, v.venue.Address, v.distributor.Address, v.router.Address, v.bank.Address} {
		addr := addr
		if err := it.IterateState(addr, func(key, value []byte) bool {
			// first byte marks existence, deleted slots keep a single zero byte
			if len(value) == 0 || value[0] == 0 {
				return true
			}
			dumps = append(dumps, &StateDump{Contract: addr, Key: string(key), Value: string(value[1:])})
			return true
		}); err != nil {
			return nil, err
		}
	}
	return dumps, nil
}
