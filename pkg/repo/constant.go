package repo

import "math/big"

const (
	AppName = "AxiomVault"

	// CfgFileName is the default config name
	CfgFileName = "config.toml"

	genesisCfgFileName = "genesis.toml"

	// defaultRepoRoot is the path to the default config dir location.
	defaultRepoRoot = "~/.axiom-vault"

	// rootPathEnvVar is the environment variable used to change the path root.
	rootPathEnvVar = "AXIOM_VAULT_PATH"

	envPrefix = "AXIOM_VAULT"

	genesisEnvPrefix = "AXIOM_VAULT_GENESIS"

	pidFileName = "running.pid"

	LogsDirName = "logs"
)

const (
	KVStorageTypeLeveldb = "leveldb"
	KVStorageTypePebble  = "pebble"
	KVStorageTypeMemory  = "memory"
	KVStorageCacheSize   = 16
	KVStorageSync        = true

	// VariantPosition issues one non-fungible position per deposit.
	VariantPosition = "position"
	// VariantShare issues fungible pooled shares.
	VariantShare = "share"

	// DefaultMaturityWindow is the number of epochs a lock stays committed in the venue.
	DefaultMaturityWindow = 17

	DefaultOwnerAddress = "0xc7F999b83Af6DF9e67d0a37Ee7e900bF38b3D013"
)

var (
	// DefaultGenesisTime aligns epochs to unix weeks, the boundaries the lock venue uses.
	DefaultGenesisTime int64 = 0

	DefaultAccountBalance = CoinNumberByUnit(10000000)
	DefaultSeedDeposit    = CoinNumberByUnit(1)
	DefaultRouterBalance  = CoinNumberByUnit(1000000)
	DefaultRewardSupply   = CoinNumberByUnit(1000000)
)

var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// CoinNumberByUnit converts whole base-asset units into the 18-decimal representation.
func CoinNumberByUnit(n uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(n), unit)
}
