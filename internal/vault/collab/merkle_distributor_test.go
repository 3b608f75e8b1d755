package collab

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/internal/vault/token"
)

func prepareDistributor(t *testing.T) (*common.TestVM, *MerkleDistributor, *token.Bank) {
	testVM := common.NewTestVM(t)
	ctx := common.NewVMContext(testVM.StateLedger, ethcommon.Address{}, 0)
	bank := token.BankBuildConfig.Build(ctx)
	distributor := MerkleDistributorBuildConfig.Build(ctx)
	testVM.GenesisInit(bank, distributor)
	return testVM, distributor, bank
}

func TestMerkleDistributor_Claim(t *testing.T) {
	testVM, distributor, bank := prepareDistributor(t)
	owner := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.Owner)
	cvx := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.RewardTokens[0].Address)
	alice := ethcommon.HexToAddress("0x79a1215469FaB6f9c63c1816b45183AD3624bE34")
	bob := ethcommon.HexToAddress("0x97c8B516D19edBf575D72a172Af7F418BE498C37")
	leaves := []Leaf{
		{Index: 0, Account: alice, Amount: big.NewInt(70)},
		{Index: 1, Account: bob, Amount: big.NewInt(30)},
		{Index: 2, Account: alice, Amount: big.NewInt(5)},
	}

	err := testVM.RunSingleTX(distributor, alice, func() error {
		_, err := distributor.UpdateRoot(cvx, leaves)
		return err
	})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	var root ethcommon.Hash
	err = testVM.RunSingleTX(distributor, owner, func() error {
		var err error
		root, err = distributor.UpdateRoot(cvx, leaves)
		return err
	})
	require.Nil(t, err)
	assert.NotEqual(t, ethcommon.Hash{}, root)

	var proof base.ClaimProof
	testVM.Call(distributor, alice, func() {
		var err error
		proof, err = distributor.ProofOf(cvx, 0)
		assert.Nil(t, err)
	})
	assert.Equal(t, root, proof.Root)

	forged := proof
	forged.Amount = big.NewInt(71)
	err = testVM.RunSingleTX(distributor, alice, func() error {
		_, _, err := distributor.VerifyAndClaim(forged)
		return err
	})
	assert.ErrorIs(t, err, common.ErrInvalidProof)

	err = testVM.RunSingleTX(distributor, alice, func() error {
		claimedToken, amount, err := distributor.VerifyAndClaim(proof)
		if err != nil {
			return err
		}
		assert.Equal(t, cvx, claimedToken)
		assert.EqualValues(t, 70, amount.Int64())
		return nil
	})
	require.Nil(t, err)

	err = testVM.RunSingleTX(distributor, alice, func() error {
		_, _, err := distributor.VerifyAndClaim(proof)
		return err
	})
	assert.ErrorIs(t, err, common.ErrAlreadyClaimed)

	testVM.Call(bank, alice, func() {
		balance, err := bank.BalanceOf(cvx, alice)
		assert.Nil(t, err)
		assert.EqualValues(t, 70, balance.Int64())
	})
}

func TestMerkleDistributor_StaleRoot(t *testing.T) {
	testVM, distributor, _ := prepareDistributor(t)
	owner := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.Owner)
	crv := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.RewardTokens[1].Address)
	alice := ethcommon.HexToAddress("0x79a1215469FaB6f9c63c1816b45183AD3624bE34")

	var first base.ClaimProof
	err := testVM.RunSingleTX(distributor, owner, func() error {
		if _, err := distributor.UpdateRoot(crv, []Leaf{{Index: 0, Account: alice, Amount: big.NewInt(10)}}); err != nil {
			return err
		}
		var err error
		first, err = distributor.ProofOf(crv, 0)
		return err
	})
	require.Nil(t, err)

	err = testVM.RunSingleTX(distributor, owner, func() error {
		_, err := distributor.UpdateRoot(crv, []Leaf{{Index: 0, Account: alice, Amount: big.NewInt(20)}})
		return err
	})
	require.Nil(t, err)

	err = testVM.RunSingleTX(distributor, alice, func() error {
		_, _, err := distributor.VerifyAndClaim(first)
		return err
	})
	assert.ErrorIs(t, err, common.ErrInvalidProof)

	testVM.Call(distributor, alice, func() {
		verifier, err := distributor.Verifier(crv, first.Root)
		require.Nil(t, err)
		ok, err := verifier.Verify(first)
		assert.Nil(t, err)
		assert.True(t, ok)

		_, err = distributor.Verifier(crv, ethcommon.HexToHash("0x01"))
		assert.ErrorIs(t, err, common.ErrInvalidProof)
	})
}

func TestMerkleDistributor_UpdateRootInvalid(t *testing.T) {
	testVM, distributor, _ := prepareDistributor(t)
	owner := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.Owner)
	cvx := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.RewardTokens[0].Address)
	alice := ethcommon.HexToAddress("0x79a1215469FaB6f9c63c1816b45183AD3624bE34")

	testCases := []struct {
		name   string
		leaves []Leaf
	}{
		{name: "empty", leaves: nil},
		{name: "duplicated index", leaves: []Leaf{
			{Index: 1, Account: alice, Amount: big.NewInt(1)},
			{Index: 1, Account: alice, Amount: big.NewInt(2)},
		}},
		{name: "zero amount", leaves: []Leaf{{Index: 0, Account: alice, Amount: big.NewInt(0)}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := testVM.RunSingleTX(distributor, owner, func() error {
				_, err := distributor.UpdateRoot(cvx, tc.leaves)
				return err
			})
			assert.NotNil(t, err)
		})
	}
}

func TestMerkleDistributor_ProofPath(t *testing.T) {
	testVM, distributor, _ := prepareDistributor(t)
	owner := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.Owner)
	cvx := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.RewardTokens[0].Address)
	crv := ethcommon.HexToAddress(testVM.Rep.GenesisConfig.RewardTokens[1].Address)
	alice := ethcommon.HexToAddress("0x79a1215469FaB6f9c63c1816b45183AD3624bE34")
	leaves := make([]Leaf, 5)
	for i := range leaves {
		leaves[i] = Leaf{Index: uint64(i), Account: alice, Amount: big.NewInt(int64(i + 1))}
	}

	var root ethcommon.Hash
	err := testVM.RunSingleTX(distributor, owner, func() error {
		var err error
		root, err = distributor.UpdateRoot(cvx, leaves)
		return err
	})
	require.Nil(t, err)

	proofs := make([]base.ClaimProof, len(leaves))
	testVM.Call(distributor, alice, func() {
		for i := range leaves {
			var err error
			proofs[i], err = distributor.ProofOf(cvx, uint64(i))
			require.Nil(t, err)
		}
	})

	// the verifier only sees the root, the path alone must reach it
	verifier := &merkleVerifier{token: cvx, root: root}
	for _, proof := range proofs {
		assert.Len(t, proof.Siblings, 3)
		assert.Len(t, proof.Path, 3)
		ok, err := verifier.Verify(proof)
		assert.Nil(t, err)
		assert.True(t, ok, "index %d", proof.Index)
	}

	tamper := func(f func(p *base.ClaimProof)) base.ClaimProof {
		p := proofs[2]
		p.Siblings = append([]ethcommon.Hash(nil), p.Siblings...)
		p.Path = append([]int64(nil), p.Path...)
		f(&p)
		return p
	}
	testCases := []struct {
		name  string
		proof base.ClaimProof
	}{
		{name: "sibling changed", proof: tamper(func(p *base.ClaimProof) { p.Siblings[1] = ethcommon.HexToHash("0x01") })},
		{name: "side flipped", proof: tamper(func(p *base.ClaimProof) { p.Path[0] ^= 1 })},
		{name: "unknown side", proof: tamper(func(p *base.ClaimProof) { p.Path[0] = 2 })},
		{name: "truncated", proof: tamper(func(p *base.ClaimProof) {
			p.Siblings = p.Siblings[:2]
			p.Path = p.Path[:2]
		})},
		{name: "length mismatch", proof: tamper(func(p *base.ClaimProof) { p.Path = p.Path[:2] })},
		{name: "no path", proof: tamper(func(p *base.ClaimProof) {
			p.Siblings = nil
			p.Path = nil
		})},
		{name: "path of another leaf", proof: tamper(func(p *base.ClaimProof) {
			p.Siblings = proofs[3].Siblings
			p.Path = proofs[3].Path
		})},
		{name: "amount changed", proof: tamper(func(p *base.ClaimProof) { p.Amount = big.NewInt(30) })},
		{name: "other token", proof: tamper(func(p *base.ClaimProof) { p.Token = crv })},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := verifier.Verify(tc.proof)
			assert.Nil(t, err)
			assert.False(t, ok)

			err = testVM.RunSingleTX(distributor, alice, func() error {
				_, _, err := distributor.VerifyAndClaim(tc.proof)
				return err
			})
			assert.ErrorIs(t, err, common.ErrInvalidProof)
		})
	}

	err = testVM.RunSingleTX(distributor, alice, func() error {
		_, amount, err := distributor.VerifyAndClaim(proofs[2])
		if err != nil {
			return err
		}
		assert.EqualValues(t, 3, amount.Int64())
		return nil
	})
	require.Nil(t, err)
}
