package vault

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/collab"
	"github.com/axiomesh/axiom-vault/internal/vault/framework"
)

func (v *Vault) Tick(caller ethcommon.Address) (result *framework.TickResult, err error) {
	err = v.execute("tick", v.manager, caller, false, func() error {
		result, err = v.manager.Tick()
		return err
	})
	return result, err
}

func (v *Vault) ProcessQueue(caller ethcommon.Address, maxEntries uint64) (result *framework.ProcessResult, err error) {
	err = v.execute("processQueue", v.manager, caller, false, func() error {
		result, err = v.manager.ProcessQueue(maxEntries)
		return err
	})
	return result, err
}

func (v *Vault) Open(caller ethcommon.Address, amount *big.Int) (id uint64, err error) {
	err = v.execute("open", v.manager, caller, false, func() error {
		id, err = v.manager.Open(amount)
		return err
	})
	return id, err
}

func (v *Vault) RequestClose(caller ethcommon.Address, id uint64) (targetEpoch uint64, err error) {
	err = v.execute("requestClose", v.manager, caller, false, func() error {
		targetEpoch, err = v.manager.RequestClose(id)
		return err
	})
	return targetEpoch, err
}

func (v *Vault) Close(caller ethcommon.Address, id uint64) (paid *big.Int, err error) {
	err = v.execute("close", v.manager, caller, false, func() error {
		paid, err = v.manager.Close(id)
		return err
	})
	return paid, err
}

func (v *Vault) Mint(caller ethcommon.Address, amount *big.Int) (shares *big.Int, err error) {
	err = v.execute("mint", v.manager, caller, false, func() error {
		shares, err = v.manager.Mint(amount)
		return err
	})
	return shares, err
}

func (v *Vault) RequestWithdraw(caller ethcommon.Address, shares *big.Int) (unlockEpoch uint64, err error) {
	err = v.execute("requestWithdraw", v.manager, caller, false, func() error {
		unlockEpoch, err = v.manager.RequestWithdraw(shares)
		return err
	})
	return unlockEpoch, err
}

func (v *Vault) Withdraw(caller ethcommon.Address, unlockEpoch uint64) (paid *big.Int, err error) {
	err = v.execute("withdraw", v.manager, caller, false, func() error {
		paid, err = v.manager.Withdraw(unlockEpoch)
		return err
	})
	return paid, err
}

func (v *Vault) TransferShares(caller ethcommon.Address, to ethcommon.Address, shares *big.Int) error {
	return v.execute("transferShares", v.manager, caller, false, func() error {
		return v.manager.TransferShares(to, shares)
	})
}

func (v *Vault) ApplyRewards(caller ethcommon.Address, proofs []base.ClaimProof, plan []base.LiquidationLeg) (result *framework.HarvestResult, err error) {
	err = v.execute("applyRewards", v.manager, caller, false, func() error {
		result, err = v.manager.ApplyRewards(proofs, plan)
		return err
	})
	return result, err
}

func (v *Vault) DepositRewards(caller ethcommon.Address, amount *big.Int) error {
	return v.execute("depositRewards", v.manager, caller, false, func() error {
		return v.manager.DepositRewards(amount)
	})
}

func (v *Vault) WithdrawStuckTokens(caller ethcommon.Address, token ethcommon.Address, to ethcommon.Address) (amount *big.Int, err error) {
	err = v.execute("withdrawStuckTokens", v.manager, caller, false, func() error {
		amount, err = v.manager.WithdrawStuckTokens(token, to)
		return err
	})
	return amount, err
}

func (v *Vault) TransferOwnership(caller ethcommon.Address, newOwner ethcommon.Address) error {
	return v.execute("transferOwnership", v.manager, caller, false, func() error {
		return v.manager.TransferOwnership(newOwner)
	})
}

func (v *Vault) Resume(caller ethcommon.Address) error {
	err := v.execute("resume", v.manager, caller, false, func() error {
		return v.manager.Resume()
	})
	if err == nil {
		v.halted.Store(false)
	}
	return err
}

// UpdateRewardRoot publishes a reward allocation on the distributor.
func (v *Vault) UpdateRewardRoot(caller ethcommon.Address, token ethcommon.Address, leaves []collab.Leaf) (root ethcommon.Hash, err error) {
	err = v.execute("updateRewardRoot", v.distributor, caller, false, func() error {
		root, err = v.distributor.UpdateRoot(token, leaves)
		return err
	})
	return root, err
}

func (v *Vault) SetRouterRate(caller ethcommon.Address, token ethcommon.Address, numerator, denominator uint64) error {
	return v.execute("setRouterRate", v.router, caller, false, func() error {
		return v.router.SetRate(token, numerator, denominator)
	})
}
