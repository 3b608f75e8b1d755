package framework

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/base/mock_base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

type mockEnv struct {
	*testEnv
	venue       *mock_base.MockLockVenue
	distributor *mock_base.MockRewardsDistributor
	router      *mock_base.MockLiquidationRouter
	bank        *mock_base.MockTokenBank
}

func newMockEnv(t *testing.T) *mockEnv {
	ctrl := gomock.NewController(t)
	vm := common.NewTestVM(t)
	fundAccounts(t, vm)
	vm.Rep.GenesisConfig.SeedDeposit = "0"

	e := &mockEnv{
		testEnv: &testEnv{
			t:     t,
			vm:    vm,
			owner: ethcommon.HexToAddress(vm.Rep.GenesisConfig.Owner),
			cvx:   ethcommon.HexToAddress(vm.Rep.GenesisConfig.RewardTokens[0].Address),
			crv:   ethcommon.HexToAddress(vm.Rep.GenesisConfig.RewardTokens[1].Address),
		},
		venue:       mock_base.NewMockLockVenue(ctrl),
		distributor: mock_base.NewMockRewardsDistributor(ctrl),
		router:      mock_base.NewMockLiquidationRouter(ctrl),
		bank:        mock_base.NewMockTokenBank(ctrl),
	}
	e.venue.EXPECT().SetContext(gomock.Any()).AnyTimes()
	e.distributor.EXPECT().SetContext(gomock.Any()).AnyTimes()
	e.router.EXPECT().SetContext(gomock.Any()).AnyTimes()
	e.bank.EXPECT().SetContext(gomock.Any()).AnyTimes()

	e.manager = NewVaultManagerBuildConfig(&Collaborators{
		Venue:         e.venue,
		Distributor:   e.distributor,
		Router:        e.router,
		RouterAddress: ethcommon.HexToAddress(common.RouterContractAddr),
		Bank:          e.bank,
	}).Build(common.NewVMContext(vm.StateLedger, ethcommon.Address{}, 0))
	err := vm.RunSingleTX(e.manager, ethcommon.Address{}, func() error {
		return e.manager.GenesisInit(vm.Rep.GenesisConfig, testParams(repo.VariantShare))
	}, common.TestVMRunOptionCallFromSystem())
	require.Nil(t, err)
	return e
}

func TestVaultManager_VenueLockFailure(t *testing.T) {
	e := newMockEnv(t)
	before := e.vm.StateLedger.GetBalance(alice)

	e.venue.EXPECT().Lock(gomock.Any()).Return(errors.New("venue paused"))
	err := e.run(alice, func() error {
		_, err := e.manager.Mint(big.NewInt(100))
		return err
	})
	assert.Contains(t, err.Error(), "venue paused")
	assert.Equal(t, before.String(), e.vm.StateLedger.GetBalance(alice).String())
	e.view(func() {
		total, err := e.manager.TotalShares()
		assert.Nil(t, err)
		assert.Zero(t, total.Sign())
		info, err := e.manager.LockInfo()
		assert.Nil(t, err)
		assert.Zero(t, info.TotalLocked.Sign())
	})
}

func TestVaultManager_VenueReentersVault(t *testing.T) {
	e := newMockEnv(t)
	e.venue.EXPECT().Lock(big.NewInt(100)).Return(nil)
	e.mint(alice, big.NewInt(100))

	e.setEpoch(testMaturityWindow)
	schedule := []base.MaturingLock{{Amount: big.NewInt(100), UnlockEpoch: testMaturityWindow}}
	e.venue.EXPECT().RequestUnlock().Return(schedule, nil).Times(2)
	e.venue.EXPECT().ClaimUnlocked().Return(big.NewInt(100), nil).Times(2)

	var reentered []error
	e.venue.EXPECT().Relock(big.NewInt(100)).DoAndReturn(func(amount *big.Int) error {
		_, err := e.manager.Mint(big.NewInt(5))
		reentered = append(reentered, err)
		_, err = e.manager.Tick()
		reentered = append(reentered, err)
		return reentered[0]
	})
	err := e.run(bob, func() error {
		_, err := e.manager.Tick()
		return err
	})
	assert.ErrorIs(t, err, common.ErrReentrantCall)
	require.Len(t, reentered, 2)
	for _, err := range reentered {
		assert.True(t, errors.Is(err, common.ErrReentrantCall), "%v", err)
	}
	e.view(func() {
		total, err := e.manager.TotalShares()
		assert.Nil(t, err)
		assert.EqualValues(t, 100, total.Int64())
		info, err := e.manager.LockInfo()
		assert.Nil(t, err)
		assert.Zero(t, info.LastProcessedEpoch)
	})

	// the guard is released with the reverted call
	e.venue.EXPECT().Relock(big.NewInt(100)).Return(nil)
	result := e.tick()
	assert.True(t, result.CycleRun)
}

func TestVaultManager_VenueReleaseMismatch(t *testing.T) {
	e := newMockEnv(t)
	e.venue.EXPECT().Lock(big.NewInt(100)).Return(nil)
	shares := e.mint(alice, big.NewInt(100))
	assert.EqualValues(t, 100, shares.Int64())

	e.setEpoch(testMaturityWindow)
	schedule := []base.MaturingLock{{Amount: big.NewInt(100), UnlockEpoch: testMaturityWindow}}
	e.venue.EXPECT().RequestUnlock().Return(schedule, nil)
	e.venue.EXPECT().ClaimUnlocked().Return(big.NewInt(50), nil)
	err := e.run(alice, func() error {
		_, err := e.manager.Tick()
		return err
	})
	assert.True(t, common.IsInconsistency(err))

	e.venue.EXPECT().RequestUnlock().Return(nil, errors.New("venue unreachable"))
	err = e.run(alice, func() error {
		_, err := e.manager.Tick()
		return err
	})
	assert.Contains(t, err.Error(), "venue unreachable")
	assert.False(t, common.IsInconsistency(err))

	// a failed tick leaves nothing behind, the retry runs the full cycle
	e.venue.EXPECT().RequestUnlock().Return(schedule, nil)
	e.venue.EXPECT().ClaimUnlocked().Return(big.NewInt(100), nil)
	e.venue.EXPECT().Relock(big.NewInt(100)).Return(nil)
	result := e.tick()
	assert.True(t, result.CycleRun)
	assert.EqualValues(t, 100, result.Relocked.Int64())
	e.view(func() {
		info, err := e.manager.LockInfo()
		assert.Nil(t, err)
		assert.EqualValues(t, testMaturityWindow, info.LastProcessedEpoch)
		assert.EqualValues(t, 1, info.Cycles)
		assert.EqualValues(t, 100, info.TotalLocked.Int64())
	})
}

func TestVaultManager_DistributorUnderpays(t *testing.T) {
	e := newMockEnv(t)
	verifier := mock_base.NewMockProofVerifier(gomock.NewController(t))
	proof := base.ClaimProof{
		Token:   e.cvx,
		Index:   3,
		Account: e.manager.Address,
		Amount:  big.NewInt(10),
		Root:    ethcommon.HexToHash("0xabcd"),
	}
	e.distributor.EXPECT().Verifier(e.cvx, proof.Root).Return(verifier, nil).Times(2)
	verifier.EXPECT().Verify(gomock.Any()).Return(true, nil).Times(2)
	e.distributor.EXPECT().VerifyAndClaim(gomock.Any()).Return(e.cvx, big.NewInt(9), nil)

	err := e.run(e.owner, func() error {
		_, err := e.manager.ApplyRewards([]base.ClaimProof{proof}, nil)
		return err
	})
	assert.ErrorIs(t, err, common.ErrInvalidProof)
	e.view(func() {
		assert.False(t, e.manager.IsRewardClaimed(proof))
	})

	e.distributor.EXPECT().VerifyAndClaim(gomock.Any()).Return(e.cvx, big.NewInt(10), nil)
	err = e.run(e.owner, func() error {
		result, err := e.manager.ApplyRewards([]base.ClaimProof{proof}, nil)
		if err != nil {
			return err
		}
		assert.Zero(t, result.Proceeds.Sign())
		return nil
	})
	require.Nil(t, err)

	other := proof
	other.Account = alice
	err = e.run(e.owner, func() error {
		_, err := e.manager.ApplyRewards([]base.ClaimProof{other}, nil)
		return err
	})
	assert.ErrorIs(t, err, common.ErrInvalidProof)
}

func TestVaultManager_RouterShortChange(t *testing.T) {
	e := newMockEnv(t)
	leg := base.LiquidationLeg{TokenIn: e.crv, AmountIn: big.NewInt(10), MinAmountOut: big.NewInt(5)}
	e.bank.EXPECT().BalanceOf(e.crv, e.manager.Address).Return(big.NewInt(10), nil)
	e.bank.EXPECT().Transfer(e.crv, ethcommon.HexToAddress(common.RouterContractAddr), big.NewInt(10)).Return(nil)
	// the router reports a fill but never pays the vault
	e.router.EXPECT().Swap(e.crv, big.NewInt(10), big.NewInt(5)).Return(big.NewInt(5), nil)

	err := e.run(e.owner, func() error {
		_, err := e.manager.ApplyRewards(nil, []base.LiquidationLeg{leg})
		return err
	})
	assert.ErrorIs(t, err, common.ErrSlippageExceeded)
}
