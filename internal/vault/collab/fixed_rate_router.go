package collab

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

const (
	routerOwnerStorageKey = "owner"
	ratesStorageKey       = "rates"
)

var ErrNoRoute = errors.New("no route for token")

var FixedRateRouterBuildConfig = &common.SystemContractBuildConfig[*FixedRateRouter]{
	Name:    "collab_fixed_rate_router",
	Address: common.RouterContractAddr,
	Constructor: func(systemContractBase common.SystemContractBase) *FixedRateRouter {
		return &FixedRateRouter{
			SystemContractBase: systemContractBase,
		}
	},
}

var _ base.LiquidationRouter = (*FixedRateRouter)(nil)

type Rate struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

// FixedRateRouter buys reward tokens for the native asset at a fixed rate out of its own liquidity.
type FixedRateRouter struct {
	common.SystemContractBase

	owner *common.VMSlot[ethcommon.Address]
	rates *common.VMMap[ethcommon.Address, Rate]
}

func (r *FixedRateRouter) GenesisInit(genesis *repo.GenesisConfig) error {
	if err := r.owner.Put(ethcommon.HexToAddress(genesis.Owner)); err != nil {
		return err
	}
	liquidity, err := repo.ParseAmount(genesis.Router.Liquidity)
	if err != nil {
		return errors.Wrap(err, "router liquidity")
	}
	r.StateAccount.AddBalance(liquidity)
	for _, rate := range genesis.Router.Rates {
		if err := r.setRate(ethcommon.HexToAddress(rate.Token), Rate{Numerator: rate.Numerator, Denominator: rate.Denominator}); err != nil {
			return err
		}
	}
	return nil
}

func (r *FixedRateRouter) SetContext(ctx *common.VMContext) {
	r.SystemContractBase.SetContext(ctx)

	r.owner = common.NewVMSlot[ethcommon.Address](r.StateAccount, routerOwnerStorageKey)
	r.rates = common.NewVMMap[ethcommon.Address, Rate](r.StateAccount, ratesStorageKey, func(key ethcommon.Address) string {
		return key.Hex()
	})
}

func (r *FixedRateRouter) SetRate(token ethcommon.Address, numerator, denominator uint64) error {
	owner, err := r.owner.MustGet()
	if err != nil {
		return err
	}
	if r.Ctx.From != owner {
		return common.ErrUnauthorized
	}
	return r.setRate(token, Rate{Numerator: numerator, Denominator: denominator})
}

func (r *FixedRateRouter) setRate(token ethcommon.Address, rate Rate) error {
	if rate.Denominator == 0 {
		return errors.Errorf("rate of %s has zero denominator", token.Hex())
	}
	if err := r.rates.Put(token, rate); err != nil {
		return err
	}
	r.EmitEvent("RateUpdated", token, rate.Numerator, rate.Denominator)
	return nil
}

func (r *FixedRateRouter) Quote(tokenIn ethcommon.Address, amountIn *big.Int) (*big.Int, error) {
	exist, rate, err := r.rates.Get(tokenIn)
	if err != nil {
		return nil, err
	}
	if !exist {
		return nil, errors.Wrapf(ErrNoRoute, "%s", tokenIn.Hex())
	}
	return common.MulDiv(amountIn, new(big.Int).SetUint64(rate.Numerator), new(big.Int).SetUint64(rate.Denominator)), nil
}

func (r *FixedRateRouter) Swap(tokenIn ethcommon.Address, amountIn *big.Int, minAmountOut *big.Int) (*big.Int, error) {
	if !common.IsPositive(amountIn) {
		return nil, common.ErrInvalidAmount
	}
	out, err := r.Quote(tokenIn, amountIn)
	if err != nil {
		return nil, err
	}
	if out.Cmp(common.CloneBig(minAmountOut)) < 0 {
		return nil, errors.Wrapf(common.ErrSlippageExceeded, "swap %s of %s gives %s, minimum %s", amountIn, tokenIn.Hex(), out, minAmountOut)
	}
	if err := r.Ctx.StateLedger.Transfer(r.Address, r.Ctx.From, out); err != nil {
		return nil, errors.Wrap(common.ErrInsufficientBalance, err.Error())
	}
	r.EmitEvent("Swapped", r.Ctx.From, tokenIn, amountIn, out)
	return out, nil
}
