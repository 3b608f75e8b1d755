package framework

import (
	"encoding/binary"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gammazero/workerpool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

const nullifiersStorageKey = "rewardNullifiers"

type ClaimedReward struct {
	Token  ethcommon.Address `json:"token"`
	Amount *big.Int          `json:"amount"`
}

type HarvestResult struct {
	Claimed  []ClaimedReward `json:"claimed"`
	Proceeds *big.Int        `json:"proceeds"`
}

// RewardsHarvester claims reward tokens, sells them for the base asset and locks
// the proceeds, it never mints shares.
type RewardsHarvester struct {
	common.SystemContractBase

	params        Params
	lock          *LockLedger
	venue         base.LockVenue
	distributor   base.RewardsDistributor
	router        base.LiquidationRouter
	routerAddress ethcommon.Address
	bank          base.TokenBank
	nullifiers    *common.VMMap[ethcommon.Hash, bool]
}

func NewRewardsHarvester(systemContractBase common.SystemContractBase, params Params, lock *LockLedger, collaborators *Collaborators) *RewardsHarvester {
	return &RewardsHarvester{
		SystemContractBase: systemContractBase,
		params:             params,
		lock:               lock,
		venue:              collaborators.Venue,
		distributor:        collaborators.Distributor,
		router:             collaborators.Router,
		routerAddress:      collaborators.RouterAddress,
		bank:               collaborators.Bank,
		nullifiers: common.NewVMMap[ethcommon.Hash, bool](systemContractBase.StateAccount, nullifiersStorageKey, func(key ethcommon.Hash) string {
			return key.Hex()
		}),
	}
}

// Nullifier identifies one reward claim across every root update.
func Nullifier(proof base.ClaimProof) ethcommon.Hash {
	index := make([]byte, 8)
	binary.BigEndian.PutUint64(index, proof.Index)
	return crypto.Keccak256Hash(
		proof.Token.Bytes(),
		proof.Root.Bytes(),
		index,
		proof.Account.Bytes(),
		math.U256Bytes(common.CloneBig(proof.Amount)),
	)
}

func (h *RewardsHarvester) IsClaimed(proof base.ClaimProof) bool {
	return h.nullifiers.Has(Nullifier(proof))
}

func (h *RewardsHarvester) ApplyRewards(proofs []base.ClaimProof, plan []base.LiquidationLeg) (*HarvestResult, error) {
	if err := h.verifyProofs(proofs); err != nil {
		return nil, err
	}

	result := &HarvestResult{Proceeds: big.NewInt(0)}
	for _, proof := range proofs {
		nullifier := Nullifier(proof)
		if h.nullifiers.Has(nullifier) {
			return nil, errors.Wrapf(common.ErrAlreadyClaimed, "token %s index %d", proof.Token.Hex(), proof.Index)
		}
		if err := h.nullifiers.Put(nullifier, true); err != nil {
			return nil, err
		}

		token, amount, err := h.distributor.VerifyAndClaim(proof)
		if err != nil {
			return nil, err
		}
		if token != proof.Token || amount.Cmp(proof.Amount) != 0 {
			return nil, errors.Wrapf(common.ErrInvalidProof, "distributor paid %s of %s, proof claims %s of %s", amount, token.Hex(), proof.Amount, proof.Token.Hex())
		}
		result.Claimed = append(result.Claimed, ClaimedReward{Token: token, Amount: amount})
	}

	for i, leg := range plan {
		out, err := h.liquidate(leg)
		if err != nil {
			return nil, errors.WithMessagef(err, "liquidation leg %d", i)
		}
		result.Proceeds.Add(result.Proceeds, out)
	}

	if result.Proceeds.Sign() > 0 {
		if err := h.lock.AddLocked(result.Proceeds); err != nil {
			return nil, err
		}
		if err := h.venue.Lock(result.Proceeds); err != nil {
			return nil, errors.Wrap(err, "lock rewards proceeds")
		}
	}
	h.EmitEvent("RewardsApplied", len(result.Claimed), result.Proceeds)
	h.Logger.WithFields(logrus.Fields{
		"claims":   len(result.Claimed),
		"legs":     len(plan),
		"proceeds": result.Proceeds,
	}).Info("Apply rewards")
	return result, nil
}

type verifierKey struct {
	token ethcommon.Address
	root  ethcommon.Hash
}

// verifyProofs checks every merkle proof in parallel before anything is claimed.
func (h *RewardsHarvester) verifyProofs(proofs []base.ClaimProof) error {
	verifiers := make(map[verifierKey]base.ProofVerifier)
	for _, proof := range proofs {
		if !common.IsPositive(proof.Amount) {
			return errors.Wrapf(common.ErrInvalidProof, "token %s index %d claims no amount", proof.Token.Hex(), proof.Index)
		}
		if proof.Account != h.Address {
			return errors.Wrapf(common.ErrInvalidProof, "token %s index %d pays %s", proof.Token.Hex(), proof.Index, proof.Account.Hex())
		}
		key := verifierKey{token: proof.Token, root: proof.Root}
		if _, ok := verifiers[key]; ok {
			continue
		}
		verifier, err := h.distributor.Verifier(proof.Token, proof.Root)
		if err != nil {
			return err
		}
		verifiers[key] = verifier
	}

	concurrency := h.params.VerifyConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]error, len(proofs))
	wp := workerpool.New(concurrency)
	for i, proof := range proofs {
		i, proof := i, proof
		verifier := verifiers[verifierKey{token: proof.Token, root: proof.Root}]
		wp.Submit(func() {
			ok, err := verifier.Verify(proof)
			if err != nil {
				results[i] = err
				return
			}
			if !ok {
				results[i] = errors.Wrapf(common.ErrInvalidProof, "token %s index %d", proof.Token.Hex(), proof.Index)
			}
		})
	}
	wp.StopWait()

	for _, err := range results {
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *RewardsHarvester) liquidate(leg base.LiquidationLeg) (*big.Int, error) {
	if !common.IsPositive(leg.AmountIn) {
		return nil, common.ErrInvalidAmount
	}
	minOut := common.CloneBig(leg.MinAmountOut)
	held, err := h.bank.BalanceOf(leg.TokenIn, h.Address)
	if err != nil {
		return nil, err
	}
	if held.Cmp(leg.AmountIn) < 0 {
		return nil, errors.Wrapf(common.ErrInsufficientBalance, "vault holds %s of %s, plan sells %s", held, leg.TokenIn.Hex(), leg.AmountIn)
	}

	before := h.StateAccount.GetBalance()
	if err := h.bank.Transfer(leg.TokenIn, h.routerAddress, leg.AmountIn); err != nil {
		return nil, err
	}
	if _, err := h.router.Swap(leg.TokenIn, leg.AmountIn, minOut); err != nil {
		return nil, err
	}
	received := new(big.Int).Sub(h.StateAccount.GetBalance(), before)
	if received.Cmp(minOut) < 0 {
		return nil, errors.Wrapf(common.ErrSlippageExceeded, "received %s, minimum %s", received, minOut)
	}
	return received, nil
}

// DepositRewards locks base asset donated by the caller, raising the price of every share.
func (h *RewardsHarvester) DepositRewards(amount *big.Int) error {
	if !common.IsPositive(amount) {
		return common.ErrInvalidAmount
	}
	if err := h.lock.AddLocked(amount); err != nil {
		return err
	}
	if err := h.Ctx.StateLedger.Transfer(h.Ctx.From, h.Address, amount); err != nil {
		return errors.Wrap(common.ErrInsufficientBalance, err.Error())
	}
	if err := h.venue.Lock(amount); err != nil {
		return errors.Wrap(err, "lock donated rewards")
	}
	h.EmitEvent("RewardsDeposited", h.Ctx.From, amount)
	return nil
}
