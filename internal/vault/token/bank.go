package token

import (
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

const (
	ownerStorageKey       = "owner"
	tokensStorageKey      = "tokens"
	totalSupplyStorageKey = "totalSupply"
	balancesStorageKey    = "balances"
)

var BankBuildConfig = &common.SystemContractBuildConfig[*Bank]{
	Name:    "token_bank",
	Address: common.TokenBankContractAddr,
	Constructor: func(systemContractBase common.SystemContractBase) *Bank {
		return &Bank{
			SystemContractBase: systemContractBase,
		}
	},
}

var _ base.TokenBank = (*Bank)(nil)

type Info struct {
	Name     string            `json:"name"`
	Symbol   string            `json:"symbol"`
	Address  ethcommon.Address `json:"address"`
	Decimals uint8             `json:"decimals"`
}

// Bank keeps the balances of every reward token, the base asset is the native balance.
type Bank struct {
	common.SystemContractBase

	owner       *common.VMSlot[ethcommon.Address]
	tokens      *common.VMSlot[[]Info]
	totalSupply *common.VMMap[ethcommon.Address, *big.Int]
	balances    *common.VMMap[balanceKey, *big.Int]
}

type balanceKey struct {
	token ethcommon.Address
	owner ethcommon.Address
}

func (b *Bank) GenesisInit(genesis *repo.GenesisConfig) error {
	if err := b.owner.Put(ethcommon.HexToAddress(genesis.Owner)); err != nil {
		return err
	}

	var infos []Info
	for _, t := range genesis.RewardTokens {
		infos = append(infos, Info{
			Name:     t.Name,
			Symbol:   t.Symbol,
			Address:  ethcommon.HexToAddress(t.Address),
			Decimals: t.Decimals,
		})
		if err := b.totalSupply.Put(ethcommon.HexToAddress(t.Address), big.NewInt(0)); err != nil {
			return err
		}
	}
	return b.tokens.Put(infos)
}

func (b *Bank) SetContext(ctx *common.VMContext) {
	b.SystemContractBase.SetContext(ctx)

	b.owner = common.NewVMSlot[ethcommon.Address](b.StateAccount, ownerStorageKey)
	b.tokens = common.NewVMSlot[[]Info](b.StateAccount, tokensStorageKey)
	b.totalSupply = common.NewVMMap[ethcommon.Address, *big.Int](b.StateAccount, totalSupplyStorageKey, func(key ethcommon.Address) string {
		return key.Hex()
	})
	b.balances = common.NewVMMap[balanceKey, *big.Int](b.StateAccount, balancesStorageKey, func(key balanceKey) string {
		return fmt.Sprintf("%s_%s", key.token.Hex(), key.owner.Hex())
	})
}

func (b *Bank) Tokens() ([]Info, error) {
	return b.tokens.GetOrDefault(nil)
}

func (b *Bank) checkToken(token ethcommon.Address) error {
	if !b.totalSupply.Has(token) {
		return errors.Errorf("unknown token %s", token.Hex())
	}
	return nil
}

func (b *Bank) TotalSupply(token ethcommon.Address) (*big.Int, error) {
	if err := b.checkToken(token); err != nil {
		return nil, err
	}
	return b.totalSupply.MustGet(token)
}

func (b *Bank) BalanceOf(token ethcommon.Address, owner ethcommon.Address) (*big.Int, error) {
	if err := b.checkToken(token); err != nil {
		return nil, err
	}
	return b.balances.GetOrDefault(balanceKey{token: token, owner: owner}, big.NewInt(0))
}

// Mint is reserved to system calls and the bank owner.
func (b *Bank) Mint(token ethcommon.Address, to ethcommon.Address, amount *big.Int) error {
	if !b.Ctx.CallFromSystem {
		owner, err := b.owner.MustGet()
		if err != nil {
			return err
		}
		if b.Ctx.From != owner {
			return common.ErrUnauthorized
		}
	}
	if amount.Sign() < 0 {
		return errors.Wrap(common.ErrInvalidAmount, "mint amount below zero")
	}
	totalSupply, err := b.TotalSupply(token)
	if err != nil {
		return err
	}
	if err := b.totalSupply.Put(token, totalSupply.Add(totalSupply, amount)); err != nil {
		return err
	}
	if err := b.add(token, to, amount); err != nil {
		return err
	}
	b.EmitEvent("Transfer", token, ethcommon.Address{}, to, amount)
	return nil
}

// Burn destroys amount of the caller's balance.
func (b *Bank) Burn(token ethcommon.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.Wrap(common.ErrInvalidAmount, "burn amount below zero")
	}
	if err := b.sub(token, b.Ctx.From, amount); err != nil {
		return err
	}
	totalSupply, err := b.TotalSupply(token)
	if err != nil {
		return err
	}
	if totalSupply.Cmp(amount) < 0 {
		return common.Inconsistency("token %s total supply %s below burn amount %s", token.Hex(), totalSupply, amount)
	}
	if err := b.totalSupply.Put(token, totalSupply.Sub(totalSupply, amount)); err != nil {
		return err
	}
	b.EmitEvent("Transfer", token, b.Ctx.From, ethcommon.Address{}, amount)
	return nil
}

// Transfer moves amount of the caller's balance to another account.
func (b *Bank) Transfer(token ethcommon.Address, to ethcommon.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.Wrap(common.ErrInvalidAmount, "transfer amount below zero")
	}
	if err := b.sub(token, b.Ctx.From, amount); err != nil {
		return err
	}
	if err := b.add(token, to, amount); err != nil {
		return err
	}
	b.EmitEvent("Transfer", token, b.Ctx.From, to, amount)
	return nil
}

func (b *Bank) add(token ethcommon.Address, owner ethcommon.Address, amount *big.Int) error {
	balance, err := b.BalanceOf(token, owner)
	if err != nil {
		return err
	}
	return b.balances.Put(balanceKey{token: token, owner: owner}, balance.Add(balance, amount))
}

func (b *Bank) sub(token ethcommon.Address, owner ethcommon.Address, amount *big.Int) error {
	balance, err := b.BalanceOf(token, owner)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return errors.Wrapf(common.ErrInsufficientBalance, "%s holds %s of %s, need %s", owner.Hex(), balance, token.Hex(), amount)
	}
	return b.balances.Put(balanceKey{token: token, owner: owner}, balance.Sub(balance, amount))
}
