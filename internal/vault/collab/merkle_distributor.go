package collab

import (
	"encoding/binary"
	"fmt"
	"hash"
	"math/big"

	"github.com/cbergoon/merkletree"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/common"
	"github.com/axiomesh/axiom-vault/internal/vault/token"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

const (
	distributorOwnerStorageKey = "owner"
	rootsStorageKey            = "roots"
	leavesStorageKey           = "leaves"
	claimedStorageKey          = "claimed"

	treeCacheSize = 64
)

var MerkleDistributorBuildConfig = &common.SystemContractBuildConfig[*MerkleDistributor]{
	Name:    "collab_merkle_distributor",
	Address: common.DistributorContractAddr,
	Constructor: func(systemContractBase common.SystemContractBase) *MerkleDistributor {
		trees, _ := lru.New(treeCacheSize)
		return &MerkleDistributor{
			SystemContractBase: systemContractBase,
			trees:              trees,
		}
	},
}

var _ base.RewardsDistributor = (*MerkleDistributor)(nil)

// Leaf is one reward allocation under a root.
type Leaf struct {
	Index   uint64            `json:"index"`
	Account ethcommon.Address `json:"account"`
	Amount  *big.Int          `json:"amount"`
}

type leafContent struct {
	token ethcommon.Address
	leaf  Leaf
}

func (c leafContent) CalculateHash() ([]byte, error) {
	index := make([]byte, 8)
	binary.BigEndian.PutUint64(index, c.leaf.Index)
	return crypto.Keccak256(c.token.Bytes(), index, c.leaf.Account.Bytes(), math.U256Bytes(common.CloneBig(c.leaf.Amount))), nil
}

func (c leafContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(leafContent)
	if !ok {
		return false, errors.New("value is not of type leafContent")
	}
	return c.token == o.token && c.leaf.Index == o.leaf.Index && c.leaf.Account == o.leaf.Account &&
		common.CloneBig(c.leaf.Amount).Cmp(common.CloneBig(o.leaf.Amount)) == 0, nil
}

// MerkleDistributor pays reward tokens against merkle roots published by its owner.
type MerkleDistributor struct {
	common.SystemContractBase

	owner   *common.VMSlot[ethcommon.Address]
	roots   *common.VMMap[ethcommon.Address, ethcommon.Hash]
	leaves  *common.VMMap[ethcommon.Hash, []Leaf]
	claimed *common.VMMap[string, bool]

	// trees are content addressed by root, entries never go stale
	trees *lru.Cache
}

func (d *MerkleDistributor) GenesisInit(genesis *repo.GenesisConfig) error {
	if err := d.owner.Put(ethcommon.HexToAddress(genesis.Owner)); err != nil {
		return err
	}
	bank := token.BankBuildConfig.Build(d.CrossCallSystemContractContext())
	for _, t := range genesis.RewardTokens {
		supply, err := repo.ParseAmount(t.DistributorSupply)
		if err != nil {
			return errors.Wrapf(err, "reward token %s", t.Symbol)
		}
		if err := bank.Mint(ethcommon.HexToAddress(t.Address), d.Address, supply); err != nil {
			return errors.Wrapf(err, "mint reward token %s", t.Symbol)
		}
	}
	return nil
}

func (d *MerkleDistributor) SetContext(ctx *common.VMContext) {
	d.SystemContractBase.SetContext(ctx)

	d.owner = common.NewVMSlot[ethcommon.Address](d.StateAccount, distributorOwnerStorageKey)
	d.roots = common.NewVMMap[ethcommon.Address, ethcommon.Hash](d.StateAccount, rootsStorageKey, func(key ethcommon.Address) string {
		return key.Hex()
	})
	d.leaves = common.NewVMMap[ethcommon.Hash, []Leaf](d.StateAccount, leavesStorageKey, func(key ethcommon.Hash) string {
		return key.Hex()
	})
	d.claimed = common.NewVMMap[string, bool](d.StateAccount, claimedStorageKey, func(key string) string {
		return key
	})
}

func newKeccak() hash.Hash {
	return crypto.NewKeccakState()
}

func buildTree(token ethcommon.Address, leaves []Leaf) (*merkletree.MerkleTree, error) {
	contents := lo.Map(leaves, func(leaf Leaf, _ int) merkletree.Content {
		return leafContent{token: token, leaf: leaf}
	})
	return merkletree.NewTreeWithHashStrategy(contents, newKeccak)
}

// UpdateRoot publishes a new allocation for token, replacing the current root.
func (d *MerkleDistributor) UpdateRoot(token ethcommon.Address, leaves []Leaf) (ethcommon.Hash, error) {
	owner, err := d.owner.MustGet()
	if err != nil {
		return ethcommon.Hash{}, err
	}
	if d.Ctx.From != owner {
		return ethcommon.Hash{}, common.ErrUnauthorized
	}
	if len(leaves) == 0 {
		return ethcommon.Hash{}, errors.New("empty reward allocation")
	}
	if len(lo.UniqBy(leaves, func(leaf Leaf) uint64 { return leaf.Index })) != len(leaves) {
		return ethcommon.Hash{}, errors.New("duplicated leaf index")
	}
	if lo.ContainsBy(leaves, func(leaf Leaf) bool { return !common.IsPositive(leaf.Amount) }) {
		return ethcommon.Hash{}, common.ErrInvalidAmount
	}

	tree, err := buildTree(token, leaves)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	root := ethcommon.BytesToHash(tree.MerkleRoot())
	if err := d.leaves.Put(root, leaves); err != nil {
		return ethcommon.Hash{}, err
	}
	if err := d.roots.Put(token, root); err != nil {
		return ethcommon.Hash{}, err
	}
	d.trees.Add(root, tree)
	d.EmitEvent("RootUpdated", token, root, len(leaves))
	return root, nil
}

func (d *MerkleDistributor) CurrentRoot(token ethcommon.Address) (ethcommon.Hash, error) {
	return d.roots.GetOrDefault(token, ethcommon.Hash{})
}

func (d *MerkleDistributor) Verifier(token ethcommon.Address, root ethcommon.Hash) (base.ProofVerifier, error) {
	if !d.trees.Contains(root) && !d.leaves.Has(root) {
		return nil, errors.Wrapf(common.ErrInvalidProof, "unknown root %s", root.Hex())
	}
	return &merkleVerifier{token: token, root: root}, nil
}

// treeOf returns the tree published under root, rebuilt from the stored leaves on a cache miss.
func (d *MerkleDistributor) treeOf(token ethcommon.Address, root ethcommon.Hash) (*merkletree.MerkleTree, []Leaf, error) {
	exist, leaves, err := d.leaves.Get(root)
	if err != nil {
		return nil, nil, err
	}
	if !exist {
		return nil, nil, errors.Errorf("no leaves under root %s", root.Hex())
	}
	if value, ok := d.trees.Get(root); ok {
		return value.(*merkletree.MerkleTree), leaves, nil
	}
	tree, err := buildTree(token, leaves)
	if err != nil {
		return nil, nil, err
	}
	d.trees.Add(root, tree)
	return tree, leaves, nil
}

func (d *MerkleDistributor) VerifyAndClaim(proof base.ClaimProof) (ethcommon.Address, *big.Int, error) {
	current, err := d.CurrentRoot(proof.Token)
	if err != nil {
		return ethcommon.Address{}, nil, err
	}
	if current != proof.Root {
		return ethcommon.Address{}, nil, errors.Wrapf(common.ErrInvalidProof, "root %s is not the current root of %s", proof.Root.Hex(), proof.Token.Hex())
	}
	verifier, err := d.Verifier(proof.Token, proof.Root)
	if err != nil {
		return ethcommon.Address{}, nil, err
	}
	ok, err := verifier.Verify(proof)
	if err != nil {
		return ethcommon.Address{}, nil, err
	}
	if !ok {
		return ethcommon.Address{}, nil, errors.Wrapf(common.ErrInvalidProof, "token %s index %d", proof.Token.Hex(), proof.Index)
	}

	key := claimedKey(proof.Root, proof.Index)
	if d.claimed.Has(key) {
		return ethcommon.Address{}, nil, common.ErrAlreadyClaimed
	}
	if err := d.claimed.Put(key, true); err != nil {
		return ethcommon.Address{}, nil, err
	}
	bank := token.BankBuildConfig.Build(d.CrossCallSystemContractContext())
	if err := bank.Transfer(proof.Token, proof.Account, proof.Amount); err != nil {
		return ethcommon.Address{}, nil, err
	}
	d.EmitEvent("Claimed", proof.Token, proof.Index, proof.Account, proof.Amount)
	return proof.Token, new(big.Int).Set(proof.Amount), nil
}

// ProofOf builds the claim proof of a leaf under the current root of token.
func (d *MerkleDistributor) ProofOf(token ethcommon.Address, index uint64) (base.ClaimProof, error) {
	root, err := d.CurrentRoot(token)
	if err != nil {
		return base.ClaimProof{}, err
	}
	if root == (ethcommon.Hash{}) {
		return base.ClaimProof{}, errors.Errorf("no root published for %s", token.Hex())
	}
	tree, leaves, err := d.treeOf(token, root)
	if err != nil {
		return base.ClaimProof{}, err
	}
	leaf, ok := lo.Find(leaves, func(leaf Leaf) bool { return leaf.Index == index })
	if !ok {
		return base.ClaimProof{}, errors.Errorf("no leaf %d under root %s", index, root.Hex())
	}
	siblings, path, err := tree.GetMerklePath(leafContent{token: token, leaf: leaf})
	if err != nil {
		return base.ClaimProof{}, err
	}
	if len(siblings) == 0 {
		return base.ClaimProof{}, errors.Errorf("leaf %d missing from tree %s", index, root.Hex())
	}
	hashes := lo.Map(siblings, func(sibling []byte, _ int) ethcommon.Hash {
		return ethcommon.BytesToHash(sibling)
	})
	return base.ClaimProof{
		Token:    token,
		Index:    leaf.Index,
		Account:  leaf.Account,
		Amount:   leaf.Amount,
		Root:     root,
		Siblings: hashes,
		Path:     path,
	}, nil
}

func claimedKey(root ethcommon.Hash, index uint64) string {
	return fmt.Sprintf("%s_%d", root.Hex(), index)
}

// merkleVerifier folds a proof's sibling path up to its root, it holds no tree.
type merkleVerifier struct {
	token ethcommon.Address
	root  ethcommon.Hash
}

func (v *merkleVerifier) Verify(proof base.ClaimProof) (bool, error) {
	if proof.Token != v.token || proof.Root != v.root {
		return false, nil
	}
	if len(proof.Siblings) == 0 || len(proof.Siblings) != len(proof.Path) {
		return false, nil
	}
	node, err := leafContent{
		token: proof.Token,
		leaf: Leaf{
			Index:   proof.Index,
			Account: proof.Account,
			Amount:  proof.Amount,
		},
	}.CalculateHash()
	if err != nil {
		return false, err
	}
	for i, sibling := range proof.Siblings {
		switch proof.Path[i] {
		case 1:
			node = crypto.Keccak256(node, sibling.Bytes())
		case 0:
			node = crypto.Keccak256(sibling.Bytes(), node)
		default:
			return false, nil
		}
	}
	return ethcommon.BytesToHash(node) == v.root, nil
}
