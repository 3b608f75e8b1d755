package token

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

func prepareBank(t *testing.T) (*common.TestVM, *Bank) {
	testVM := common.NewTestVM(t)
	bank := BankBuildConfig.Build(common.NewVMContext(testVM.StateLedger, ethcommon.Address{}, 0))
	testVM.GenesisInit(bank)
	return testVM, bank
}

func TestBank_Mint(t *testing.T) {
	testVM, bank := prepareBank(t)
	owner := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.Owner)
	cvx := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.RewardTokens[0].Address)
	user := ethcommon.HexToAddress("0x79a1215469FaB6f9c63c1816b45183AD3624bE34")

	err := testVM.RunSingleTX(bank, user, func() error {
		return bank.Mint(cvx, user, big.NewInt(100))
	})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	err = testVM.RunSingleTX(bank, owner, func() error {
		return bank.Mint(cvx, user, big.NewInt(100))
	})
	require.Nil(t, err)

	err = testVM.RunSingleTX(bank, owner, func() error {
		return bank.Mint(ethcommon.HexToAddress("0x01"), user, big.NewInt(100))
	})
	assert.Contains(t, err.Error(), "unknown token")

	testVM.Call(bank, user, func() {
		balance, err := bank.BalanceOf(cvx, user)
		assert.Nil(t, err)
		assert.EqualValues(t, 100, balance.Int64())
		supply, err := bank.TotalSupply(cvx)
		assert.Nil(t, err)
		assert.EqualValues(t, 100, supply.Int64())
		tokens, err := bank.Tokens()
		assert.Nil(t, err)
		assert.Len(t, tokens, 2)
	})
}

func TestBank_TransferAndBurn(t *testing.T) {
	testVM, bank := prepareBank(t)
	crv := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.RewardTokens[1].Address)
	alice := ethcommon.HexToAddress("0x79a1215469FaB6f9c63c1816b45183AD3624bE34")
	bob := ethcommon.HexToAddress("0x97c8B516D19edBf575D72a172Af7F418BE498C37")

	err := testVM.RunSingleTX(bank, ethcommon.Address{}, func() error {
		return bank.Mint(crv, alice, big.NewInt(50))
	}, common.TestVMRunOptionCallFromSystem())
	require.Nil(t, err)

	err = testVM.RunSingleTX(bank, alice, func() error {
		return bank.Transfer(crv, bob, big.NewInt(51))
	})
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	err = testVM.RunSingleTX(bank, alice, func() error {
		return bank.Transfer(crv, bob, big.NewInt(20))
	})
	require.Nil(t, err)

	err = testVM.RunSingleTX(bank, bob, func() error {
		return bank.Burn(crv, big.NewInt(5))
	})
	require.Nil(t, err)

	err = testVM.RunSingleTX(bank, bob, func() error {
		return bank.Transfer(crv, alice, big.NewInt(-1))
	})
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	testVM.Call(bank, alice, func() {
		balance, err := bank.BalanceOf(crv, alice)
		assert.Nil(t, err)
		assert.EqualValues(t, 30, balance.Int64())
		balance, err = bank.BalanceOf(crv, bob)
		assert.Nil(t, err)
		assert.EqualValues(t, 15, balance.Int64())
		supply, err := bank.TotalSupply(crv)
		assert.Nil(t, err)
		assert.EqualValues(t, 45, supply.Int64())
	})
}
