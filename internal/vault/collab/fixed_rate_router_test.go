package collab

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

func TestFixedRateRouter_Swap(t *testing.T) {
	testVM := common.NewTestVM(t)
	router := FixedRateRouterBuildConfig.Build(common.NewVMContext(testVM.StateLedger, ethcommon.Address{}, 0))
	testVM.GenesisInit(router)

	cvx := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.RewardTokens[0].Address)
	crv := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.RewardTokens[1].Address)
	user := ethcommon.HexToAddress("0x79a1215469FaB6f9c63c1816b45183AD3624bE34")
	assert.Equal(t, repo.DefaultRouterBalance.String(), testVM.StateLedger.GetBalance(router.Address).String())

	err := testVM.RunSingleTX(router, user, func() error {
		_, err := router.Swap(crv, big.NewInt(100), big.NewInt(51))
		return err
	})
	assert.ErrorIs(t, err, common.ErrSlippageExceeded)

	err = testVM.RunSingleTX(router, user, func() error {
		_, err := router.Swap(ethcommon.HexToAddress("0x01"), big.NewInt(100), big.NewInt(0))
		return err
	})
	assert.ErrorIs(t, err, ErrNoRoute)

	err = testVM.RunSingleTX(router, user, func() error {
		out, err := router.Swap(crv, big.NewInt(100), big.NewInt(50))
		if err != nil {
			return err
		}
		assert.EqualValues(t, 50, out.Int64())
		return nil
	})
	require.Nil(t, err)

	err = testVM.RunSingleTX(router, user, func() error {
		out, err := router.Swap(cvx, big.NewInt(7), big.NewInt(7))
		if err != nil {
			return err
		}
		assert.EqualValues(t, 7, out.Int64())
		return nil
	})
	require.Nil(t, err)
	assert.EqualValues(t, 57, testVM.StateLedger.GetBalance(user).Int64())
}

func TestFixedRateRouter_SetRate(t *testing.T) {
	testVM := common.NewTestVM(t)
	router := FixedRateRouterBuildConfig.Build(common.NewVMContext(testVM.StateLedger, ethcommon.Address{}, 0))
	testVM.GenesisInit(router)
	owner := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.Owner)
	user := ethcommon.HexToAddress("0x79a1215469FaB6f9c63c1816b45183AD3624bE34")
	cvx := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.RewardTokens[0].Address)

	err := testVM.RunSingleTX(router, user, func() error {
		return router.SetRate(cvx, 2, 1)
	})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	err = testVM.RunSingleTX(router, owner, func() error {
		return router.SetRate(cvx, 2, 0)
	})
	assert.NotNil(t, err)

	err = testVM.RunSingleTX(router, owner, func() error {
		return router.SetRate(cvx, 3, 2)
	})
	require.Nil(t, err)

	testVM.Call(router, user, func() {
		out, err := router.Quote(cvx, big.NewInt(10))
		assert.Nil(t, err)
		assert.EqualValues(t, 15, out.Int64())
	})
}
