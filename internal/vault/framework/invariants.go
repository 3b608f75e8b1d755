package framework

import (
	"fmt"
	"math/big"

	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

type InvariantReport struct {
	TotalShares     *big.Int `json:"total_shares"`
	SumBalances     *big.Int `json:"sum_balances"`
	NAV             *big.Int `json:"nav"`
	Price           *big.Int `json:"price"`
	Balance         *big.Int `json:"balance"`
	TotalLocked     *big.Int `json:"total_locked"`
	VenueLocked     *big.Int `json:"venue_locked"`
	UnlockedUnspent *big.Int `json:"unlocked_unspent"`
	Outstanding     *big.Int `json:"outstanding"`
	Payable         *big.Int `json:"payable"`

	Violations []string `json:"violations"`
}

func (r *InvariantReport) OK() bool {
	return len(r.Violations) == 0
}

func (r *InvariantReport) violate(format string, args ...any) {
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

// CheckInvariants recomputes the vault's books from scratch.
func (s *VaultManager) CheckInvariants() (*InvariantReport, error) {
	r := &InvariantReport{Balance: s.StateAccount.GetBalance()}
	var err error
	if r.TotalShares, err = s.claims.TotalShares(); err != nil {
		return nil, err
	}
	if r.SumBalances, err = s.claims.SumBalances(); err != nil {
		return nil, err
	}
	if r.NAV, err = s.accounting.NAV(); err != nil {
		return nil, err
	}
	if r.Price, err = s.accounting.Price(); err != nil {
		return nil, err
	}
	info, err := s.lock.MustGetInfo()
	if err != nil {
		return nil, err
	}
	r.TotalLocked = info.TotalLocked
	r.UnlockedUnspent = info.UnlockedUnspent
	if r.VenueLocked, err = s.collaborators.Venue.LockedBalance(); err != nil {
		return nil, err
	}
	queueInfo, err := s.queue.Info()
	if err != nil {
		return nil, err
	}
	r.Outstanding = queueInfo.Outstanding
	r.Payable = queueInfo.Payable

	if r.SumBalances.Cmp(r.TotalShares) != 0 {
		r.violate("sum of balances %s != total shares %s", r.SumBalances, r.TotalShares)
	}
	if covered := common.MulDiv(r.Price, r.TotalShares, common.PriceScale); covered.Cmp(r.NAV) > 0 {
		r.violate("price * total shares %s exceeds vault value %s", covered, r.NAV)
	}
	if r.Balance.Cmp(r.UnlockedUnspent) < 0 {
		r.violate("balance %s below unlocked %s", r.Balance, r.UnlockedUnspent)
	}
	if r.Payable.Cmp(r.UnlockedUnspent) > 0 {
		r.violate("payable %s exceeds unlocked %s", r.Payable, r.UnlockedUnspent)
	}
	if r.Payable.Cmp(r.Outstanding) > 0 {
		r.violate("payable %s exceeds outstanding %s", r.Payable, r.Outstanding)
	}
	if r.VenueLocked.Cmp(r.TotalLocked) != 0 {
		r.violate("venue holds %s, ledger records %s locked", r.VenueLocked, r.TotalLocked)
	}

	entries, err := s.queue.Entries()
	if err != nil {
		return nil, err
	}
	unsettled, payable := big.NewInt(0), big.NewInt(0)
	for _, entry := range entries {
		switch entry.Status {
		case EntryStatusPending:
			unsettled.Add(unsettled, entry.Amount)
		case EntryStatusPayable:
			unsettled.Add(unsettled, entry.Amount)
			payable.Add(payable, entry.Amount)
		}
	}
	if unsettled.Cmp(r.Outstanding) != 0 {
		r.violate("queue entries owe %s, outstanding records %s", unsettled, r.Outstanding)
	}
	if payable.Cmp(r.Payable) != 0 {
		r.violate("payable entries owe %s, payable records %s", payable, r.Payable)
	}
	return r, nil
}
