package base

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

// MaturingLock is one batch of principal held by the lock venue.
type MaturingLock struct {
	Amount      *big.Int `json:"amount"`
	UnlockEpoch uint64   `json:"unlock_epoch"`
}

// ClaimProof proves that Account may claim Amount of Token under Root.
type ClaimProof struct {
	Token   ethcommon.Address `json:"token"`
	Index   uint64            `json:"index"`
	Account ethcommon.Address `json:"account"`
	Amount  *big.Int          `json:"amount"`
	Root    ethcommon.Hash    `json:"root"`

	// Siblings are the node hashes from the leaf up to Root,
	// Path[i] is 1 when the node being proven is the left child at that level.
	Siblings []ethcommon.Hash `json:"siblings"`
	Path     []int64          `json:"path"`
}

// LiquidationLeg sells AmountIn of TokenIn for at least MinAmountOut of the base asset.
type LiquidationLeg struct {
	TokenIn      ethcommon.Address `json:"token_in"`
	AmountIn     *big.Int          `json:"amount_in"`
	MinAmountOut *big.Int          `json:"min_amount_out"`
}

// Contract calls are made with the caller set to the vault, every collaborator
// must be given the vault's cross call context first.

//go:generate mockgen -destination mock_base/mock_base.go -package mock_base -source collaborator.go

// LockVenue is the external long lock venue the principal is committed to.
type LockVenue interface {
	common.SystemContract

	// Lock commits amount of the caller's base asset.
	Lock(amount *big.Int) error

	// RequestUnlock returns every batch of the caller together with the epoch it matures at.
	RequestUnlock() ([]MaturingLock, error)

	// ClaimUnlocked pays every matured batch back to the caller.
	ClaimUnlocked() (*big.Int, error)

	// Relock commits amount of the caller's liquid base asset for a fresh maturity window.
	Relock(amount *big.Int) error

	LockedBalance() (*big.Int, error)
}

// ProofVerifier checks proofs against one immutable root, it is safe for concurrent use.
type ProofVerifier interface {
	Verify(proof ClaimProof) (bool, error)
}

type RewardsDistributor interface {
	common.SystemContract

	// Verifier returns a read only verifier for root of token.
	Verifier(token ethcommon.Address, root ethcommon.Hash) (ProofVerifier, error)

	// VerifyAndClaim pays the proven reward to the proof's account.
	VerifyAndClaim(proof ClaimProof) (ethcommon.Address, *big.Int, error)
}

type LiquidationRouter interface {
	common.SystemContract

	// Swap sells amountIn of tokenIn already transferred to the router,
	// the base asset is paid to the caller.
	Swap(tokenIn ethcommon.Address, amountIn *big.Int, minAmountOut *big.Int) (*big.Int, error)
}

// TokenBank holds the reward token balances.
type TokenBank interface {
	common.SystemContract

	BalanceOf(token ethcommon.Address, owner ethcommon.Address) (*big.Int, error)

	Transfer(token ethcommon.Address, to ethcommon.Address, amount *big.Int) error
}
