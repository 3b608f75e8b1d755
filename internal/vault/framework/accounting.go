package framework

import (
	"math/big"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

// Accounting prices claims against the vault's net asset value. Every rounding
// is down, in favor of the vault.
type Accounting struct {
	common.SystemContractBase

	lock   *LockLedger
	queue  *WithdrawalQueue
	claims base.ClaimLedger
}

func NewAccounting(systemContractBase common.SystemContractBase, lock *LockLedger, queue *WithdrawalQueue, claims base.ClaimLedger) *Accounting {
	return &Accounting{
		SystemContractBase: systemContractBase,
		lock:               lock,
		queue:              queue,
		claims:             claims,
	}
}

// NAV is the locked principal plus the liquid balance, less what pending exits are owed.
func (a *Accounting) NAV() (*big.Int, error) {
	info, err := a.lock.MustGetInfo()
	if err != nil {
		return nil, err
	}
	queueInfo, err := a.queue.Info()
	if err != nil {
		return nil, err
	}
	nav := new(big.Int).Add(info.TotalLocked, a.StateAccount.GetBalance())
	nav.Sub(nav, queueInfo.Outstanding)
	if nav.Sign() < 0 {
		return nil, common.Inconsistency("outstanding exits %s exceed vault value", queueInfo.Outstanding)
	}
	return nav, nil
}

// Price is the value of one share scaled by common.PriceScale.
func (a *Accounting) Price() (*big.Int, error) {
	total, err := a.claims.TotalShares()
	if err != nil {
		return nil, err
	}
	if total.Sign() == 0 {
		return new(big.Int).Set(common.PriceScale), nil
	}
	nav, err := a.NAV()
	if err != nil {
		return nil, err
	}
	return common.MulDiv(nav, common.PriceScale, total), nil
}

// SharesForDeposit must be called before the deposit reaches the vault.
func (a *Accounting) SharesForDeposit(amount *big.Int) (*big.Int, error) {
	if !common.IsPositive(amount) {
		return nil, common.ErrInvalidAmount
	}
	total, err := a.claims.TotalShares()
	if err != nil {
		return nil, err
	}
	if total.Sign() == 0 {
		return new(big.Int).Set(amount), nil
	}
	nav, err := a.NAV()
	if err != nil {
		return nil, err
	}
	if nav.Sign() == 0 {
		return nil, common.Inconsistency("%s shares outstanding with zero vault value", total)
	}
	shares := common.MulDiv(amount, total, nav)
	if shares.Sign() == 0 {
		return nil, common.ErrInvalidAmount
	}
	return shares, nil
}

func (a *Accounting) ValueOfShares(shares *big.Int) (*big.Int, error) {
	total, err := a.claims.TotalShares()
	if err != nil {
		return nil, err
	}
	if shares.Cmp(total) > 0 {
		return nil, common.Inconsistency("shares %s exceed total shares %s", shares, total)
	}
	if shares.Sign() == 0 {
		return big.NewInt(0), nil
	}
	nav, err := a.NAV()
	if err != nil {
		return nil, err
	}
	return common.MulDiv(shares, nav, total), nil
}
