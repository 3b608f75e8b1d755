package framework

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

const (
	totalSharesStorageKey   = "totalShares"
	shareBalancesStorageKey = "shareBalances"
	shareHoldersStorageKey  = "shareHolders"
)

var _ base.ClaimLedger = (*ShareLedger)(nil)

// ShareLedger is the fungible claim ledger.
type ShareLedger struct {
	common.SystemContractBase

	totalShares *common.VMSlot[*big.Int]
	balances    *common.VMMap[ethcommon.Address, *big.Int]
	holders     *common.VMSlot[[]ethcommon.Address]
}

func NewShareLedger(systemContractBase common.SystemContractBase) *ShareLedger {
	return &ShareLedger{
		SystemContractBase: systemContractBase,
		totalShares:        common.NewVMSlot[*big.Int](systemContractBase.StateAccount, totalSharesStorageKey),
		balances: common.NewVMMap[ethcommon.Address, *big.Int](systemContractBase.StateAccount, shareBalancesStorageKey, func(key ethcommon.Address) string {
			return key.Hex()
		}),
		holders: common.NewVMSlot[[]ethcommon.Address](systemContractBase.StateAccount, shareHoldersStorageKey),
	}
}

func (l *ShareLedger) Kind() string {
	return base.ClaimKindShare
}

func (l *ShareLedger) TotalShares() (*big.Int, error) {
	return l.totalShares.GetOrDefault(big.NewInt(0))
}

func (l *ShareLedger) BalanceOf(owner ethcommon.Address) (*big.Int, error) {
	return l.balances.GetOrDefault(owner, big.NewInt(0))
}

func (l *ShareLedger) Issue(owner ethcommon.Address, shares *big.Int, _ *big.Int, _ uint64) (uint64, error) {
	if !common.IsPositive(shares) {
		return 0, common.ErrInvalidAmount
	}
	if err := l.add(owner, shares); err != nil {
		return 0, err
	}
	total, err := l.TotalShares()
	if err != nil {
		return 0, err
	}
	if err := l.totalShares.Put(total.Add(total, shares)); err != nil {
		return 0, err
	}
	l.EmitEvent("SharesMinted", owner, shares)
	return 0, nil
}

func (l *ShareLedger) Redeem(owner ethcommon.Address, _ uint64, shares *big.Int, _ uint64) (*big.Int, error) {
	if !common.IsPositive(shares) {
		return nil, common.ErrInvalidAmount
	}
	if err := l.sub(owner, shares); err != nil {
		return nil, err
	}
	total, err := l.TotalShares()
	if err != nil {
		return nil, err
	}
	if total.Cmp(shares) < 0 {
		return nil, common.Inconsistency("burn %s exceeds total shares %s", shares, total)
	}
	if err := l.totalShares.Put(total.Sub(total, shares)); err != nil {
		return nil, err
	}
	l.EmitEvent("SharesBurned", owner, shares)
	return new(big.Int).Set(shares), nil
}

func (l *ShareLedger) Transfer(from, to ethcommon.Address, shares *big.Int) error {
	if !common.IsPositive(shares) {
		return common.ErrInvalidAmount
	}
	if err := l.sub(from, shares); err != nil {
		return err
	}
	if err := l.add(to, shares); err != nil {
		return err
	}
	l.EmitEvent("SharesTransferred", from, to, shares)
	return nil
}

func (l *ShareLedger) add(owner ethcommon.Address, shares *big.Int) error {
	balance, err := l.BalanceOf(owner)
	if err != nil {
		return err
	}
	if balance.Sign() == 0 {
		holders, err := l.Holders()
		if err != nil {
			return err
		}
		if !lo.Contains(holders, owner) {
			if err := l.holders.Put(append(holders, owner)); err != nil {
				return err
			}
		}
	}
	return l.balances.Put(owner, balance.Add(balance, shares))
}

func (l *ShareLedger) sub(owner ethcommon.Address, shares *big.Int) error {
	balance, err := l.BalanceOf(owner)
	if err != nil {
		return err
	}
	if balance.Cmp(shares) < 0 {
		return errors.Wrapf(common.ErrInsufficientBalance, "%s holds %s shares, need %s", owner.Hex(), balance, shares)
	}
	balance.Sub(balance, shares)
	if balance.Sign() == 0 {
		holders, err := l.Holders()
		if err != nil {
			return err
		}
		if err := l.holders.Put(lo.Without(holders, owner)); err != nil {
			return err
		}
		return l.balances.Delete(owner)
	}
	return l.balances.Put(owner, balance)
}

// Holders returns every account holding a non zero balance, in first mint order.
func (l *ShareLedger) Holders() ([]ethcommon.Address, error) {
	return l.holders.GetOrDefault(nil)
}

func (l *ShareLedger) SumBalances() (*big.Int, error) {
	holders, err := l.Holders()
	if err != nil {
		return nil, err
	}
	sum := big.NewInt(0)
	for _, holder := range holders {
		balance, err := l.BalanceOf(holder)
		if err != nil {
			return nil, err
		}
		sum.Add(sum, balance)
	}
	return sum, nil
}

func (l *ShareLedger) Claims() ([]*base.Claim, error) {
	holders, err := l.Holders()
	if err != nil {
		return nil, err
	}
	var claims []*base.Claim
	for _, holder := range holders {
		c, err := l.ClaimsOf(holder)
		if err != nil {
			return nil, err
		}
		claims = append(claims, c...)
	}
	return claims, nil
}

func (l *ShareLedger) ClaimsOf(owner ethcommon.Address) ([]*base.Claim, error) {
	balance, err := l.BalanceOf(owner)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return nil, nil
	}
	return []*base.Claim{{Owner: owner, Shares: balance}}, nil
}
