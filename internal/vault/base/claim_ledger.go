package base

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

const (
	ClaimKindPosition = "position"
	ClaimKindShare    = "share"
)

// Claim is either one position or the share balance of one holder.
type Claim struct {
	ID        uint64            `json:"id"`
	Owner     ethcommon.Address `json:"owner"`
	Shares    *big.Int          `json:"shares"`
	Principal *big.Int          `json:"principal,omitempty"`
	MintEpoch uint64            `json:"mint_epoch,omitempty"`

	UnlockRequestedAt *uint64 `json:"unlock_requested_at,omitempty"`

	// unix seconds, set once the queue entry of the claim becomes payable
	UnlockTime *uint64 `json:"unlock_time,omitempty"`

	QueueEntryID *uint64 `json:"queue_entry_id,omitempty"`
}

// ClaimLedger records ownership of vault value, either as non fungible
// positions or as fungible share balances.
type ClaimLedger interface {
	Kind() string

	// Issue mints shares to owner and returns the claim id, 0 for share balances.
	Issue(owner ethcommon.Address, shares *big.Int, principal *big.Int, epoch uint64) (uint64, error)

	// Redeem burns shares of owner, a position is always redeemed whole and
	// shares is ignored. It returns the burned shares.
	Redeem(owner ethcommon.Address, claimID uint64, shares *big.Int, epoch uint64) (*big.Int, error)

	TotalShares() (*big.Int, error)

	BalanceOf(owner ethcommon.Address) (*big.Int, error)

	// SumBalances adds up every holder balance, it must equal TotalShares.
	SumBalances() (*big.Int, error)

	Claims() ([]*Claim, error)

	ClaimsOf(owner ethcommon.Address) ([]*Claim, error)
}
