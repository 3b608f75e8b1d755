package framework

import (
	"math/big"
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

const (
	positionsStorageKey           = "positions"
	nextPositionIDStorageKey      = "nextPositionID"
	livePositionsStorageKey       = "livePositions"
	ownerPositionsStorageKey      = "ownerPositions"
	positionTotalSharesStorageKey = "positionTotalShares"
)

var _ base.ClaimLedger = (*PositionLedger)(nil)

// PositionLedger is the non fungible claim ledger, one position per deposit.
type PositionLedger struct {
	common.SystemContractBase

	positions      *common.VMMap[uint64, *base.Claim]
	nextID         *common.VMSlot[uint64]
	live           *common.VMSlot[[]uint64]
	ownerPositions *common.VMMap[ethcommon.Address, []uint64]
	totalShares    *common.VMSlot[*big.Int]
}

func NewPositionLedger(systemContractBase common.SystemContractBase) *PositionLedger {
	return &PositionLedger{
		SystemContractBase: systemContractBase,
		positions: common.NewVMMap[uint64, *base.Claim](systemContractBase.StateAccount, positionsStorageKey, func(key uint64) string {
			return strconv.FormatUint(key, 10)
		}),
		nextID: common.NewVMSlot[uint64](systemContractBase.StateAccount, nextPositionIDStorageKey),
		live:   common.NewVMSlot[[]uint64](systemContractBase.StateAccount, livePositionsStorageKey),
		ownerPositions: common.NewVMMap[ethcommon.Address, []uint64](systemContractBase.StateAccount, ownerPositionsStorageKey, func(key ethcommon.Address) string {
			return key.Hex()
		}),
		totalShares: common.NewVMSlot[*big.Int](systemContractBase.StateAccount, positionTotalSharesStorageKey),
	}
}

func (l *PositionLedger) Kind() string {
	return base.ClaimKindPosition
}

func (l *PositionLedger) TotalShares() (*big.Int, error) {
	return l.totalShares.GetOrDefault(big.NewInt(0))
}

func (l *PositionLedger) Issue(owner ethcommon.Address, shares *big.Int, principal *big.Int, epoch uint64) (uint64, error) {
	if !common.IsPositive(shares) {
		return 0, common.ErrInvalidAmount
	}
	id, err := l.nextID.GetOrDefault(1)
	if err != nil {
		return 0, err
	}
	position := &base.Claim{
		ID:        id,
		Owner:     owner,
		Shares:    new(big.Int).Set(shares),
		Principal: common.CloneBig(principal),
		MintEpoch: epoch,
	}
	if err := l.positions.Put(id, position); err != nil {
		return 0, err
	}
	if err := l.nextID.Put(id + 1); err != nil {
		return 0, err
	}
	live, err := l.live.GetOrDefault(nil)
	if err != nil {
		return 0, err
	}
	if err := l.live.Put(append(live, id)); err != nil {
		return 0, err
	}
	owned, err := l.ownerPositions.GetOrDefault(owner, nil)
	if err != nil {
		return 0, err
	}
	if err := l.ownerPositions.Put(owner, append(owned, id)); err != nil {
		return 0, err
	}

	total, err := l.TotalShares()
	if err != nil {
		return 0, err
	}
	if err := l.totalShares.Put(total.Add(total, shares)); err != nil {
		return 0, err
	}
	l.EmitEvent("PositionOpened", id, owner, principal, shares)
	return id, nil
}

func (l *PositionLedger) Get(id uint64) (*base.Claim, error) {
	exist, position, err := l.positions.Get(id)
	if err != nil {
		return nil, err
	}
	if !exist {
		return nil, common.ErrPositionNotFound
	}
	return position, nil
}

// GetOwned returns the position only when owner holds it.
func (l *PositionLedger) GetOwned(owner ethcommon.Address, id uint64) (*base.Claim, error) {
	position, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if position.Owner != owner {
		return nil, common.ErrUnauthorized
	}
	return position, nil
}

// Redeem burns every share of the position and records the close request.
func (l *PositionLedger) Redeem(owner ethcommon.Address, id uint64, _ *big.Int, epoch uint64) (*big.Int, error) {
	position, err := l.GetOwned(owner, id)
	if err != nil {
		return nil, err
	}
	if position.UnlockRequestedAt != nil {
		return nil, common.ErrAlreadyRequested
	}
	shares := position.Shares
	total, err := l.TotalShares()
	if err != nil {
		return nil, err
	}
	if total.Cmp(shares) < 0 {
		return nil, common.Inconsistency("position %d shares %s exceed total shares %s", id, shares, total)
	}
	if err := l.totalShares.Put(total.Sub(total, shares)); err != nil {
		return nil, err
	}

	position.Shares = big.NewInt(0)
	position.UnlockRequestedAt = &epoch
	if err := l.positions.Put(id, position); err != nil {
		return nil, err
	}
	l.EmitEvent("CloseRequested", id, owner, shares, epoch)
	return shares, nil
}

func (l *PositionLedger) SetQueueEntry(id uint64, entryID uint64) error {
	position, err := l.Get(id)
	if err != nil {
		return err
	}
	position.QueueEntryID = &entryID
	return l.positions.Put(id, position)
}

func (l *PositionLedger) SetUnlockTime(id uint64, unlockTime uint64) error {
	position, err := l.Get(id)
	if err != nil {
		return err
	}
	position.UnlockTime = &unlockTime
	return l.positions.Put(id, position)
}

// Burn removes a closed position.
func (l *PositionLedger) Burn(id uint64) error {
	position, err := l.Get(id)
	if err != nil {
		return err
	}
	if position.Shares.Sign() != 0 {
		return common.Inconsistency("burn position %d still holding %s shares", id, position.Shares)
	}
	if err := l.positions.Delete(id); err != nil {
		return err
	}
	live, err := l.live.GetOrDefault(nil)
	if err != nil {
		return err
	}
	if err := l.live.Put(lo.Without(live, id)); err != nil {
		return err
	}
	owned, err := l.ownerPositions.GetOrDefault(position.Owner, nil)
	if err != nil {
		return err
	}
	owned = lo.Without(owned, id)
	if len(owned) == 0 {
		return l.ownerPositions.Delete(position.Owner)
	}
	return l.ownerPositions.Put(position.Owner, owned)
}

func (l *PositionLedger) BalanceOf(owner ethcommon.Address) (*big.Int, error) {
	positions, err := l.ClaimsOf(owner)
	if err != nil {
		return nil, err
	}
	return sumShares(positions), nil
}

func (l *PositionLedger) SumBalances() (*big.Int, error) {
	positions, err := l.Claims()
	if err != nil {
		return nil, err
	}
	return sumShares(positions), nil
}

func (l *PositionLedger) Claims() ([]*base.Claim, error) {
	live, err := l.live.GetOrDefault(nil)
	if err != nil {
		return nil, err
	}
	return l.load(live)
}

func (l *PositionLedger) ClaimsOf(owner ethcommon.Address) ([]*base.Claim, error) {
	owned, err := l.ownerPositions.GetOrDefault(owner, nil)
	if err != nil {
		return nil, err
	}
	return l.load(owned)
}

func (l *PositionLedger) load(ids []uint64) ([]*base.Claim, error) {
	positions := make([]*base.Claim, 0, len(ids))
	for _, id := range ids {
		position, err := l.Get(id)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}
	return positions, nil
}

func sumShares(claims []*base.Claim) *big.Int {
	return lo.Reduce(claims, func(sum *big.Int, c *base.Claim, _ int) *big.Int {
		return sum.Add(sum, c.Shares)
	}, big.NewInt(0))
}
