package repo

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	repoPath := t.TempDir()
	cfg, err := LoadConfig(repoPath)
	require.Nil(t, err)
	assert.Equal(t, VariantShare, cfg.Vault.Variant)
	assert.EqualValues(t, DefaultMaturityWindow, cfg.Vault.MaturityWindow)
	assert.Equal(t, 7*24*time.Hour, cfg.Vault.EpochDuration.ToDuration())

	cfg.Vault.Variant = VariantPosition
	cfg.Keeper.Interval = Duration(10 * time.Second)
	err = writeConfigWithEnv(path.Join(repoPath, CfgFileName), cfg)
	require.Nil(t, err)

	cfg2, err := LoadConfig(repoPath)
	require.Nil(t, err)
	assert.Equal(t, VariantPosition, cfg2.Vault.Variant)
	assert.Equal(t, 10*time.Second, cfg2.Keeper.Interval.ToDuration())
}

func TestLoadConfigFromEnv(t *testing.T) {
	repoPath := t.TempDir()
	_, err := LoadConfig(repoPath)
	require.Nil(t, err)

	t.Setenv("AXIOM_VAULT_STORAGE_KV_TYPE", KVStorageTypePebble)
	cfg, err := LoadConfig(repoPath)
	require.Nil(t, err)
	assert.Equal(t, KVStorageTypePebble, cfg.Storage.KvType)
}

func TestLoadConfigInvalid(t *testing.T) {
	repoPath := t.TempDir()
	err := os.WriteFile(path.Join(repoPath, CfgFileName), []byte("[vault]\nmaturity_window = \"abc\"\n"), 0644)
	require.Nil(t, err)
	_, err = LoadConfig(repoPath)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "check config formater failed")

	err = os.WriteFile(path.Join(repoPath, CfgFileName), []byte("[vault]\nvariant = \"lottery\"\n"), 0644)
	require.Nil(t, err)
	_, err = LoadConfig(repoPath)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "unsupported vault variant")
}

func TestGenesisConfig(t *testing.T) {
	repoPath := t.TempDir()
	cnf, err := LoadGenesisConfig(repoPath)
	require.Nil(t, err)
	require.Equal(t, DefaultOwnerAddress, cnf.Owner)
	require.Len(t, cnf.RewardTokens, 2)
	cnf.SeedDeposit = "42"
	err = writeConfigWithEnv(path.Join(repoPath, genesisCfgFileName), cnf)
	require.Nil(t, err)
	cnf2, err := LoadGenesisConfig(repoPath)
	require.Nil(t, err)
	require.Equal(t, "42", cnf2.SeedDeposit)
	require.Len(t, cnf2.Accounts, 4)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("1000000000000000000")
	require.Nil(t, err)
	assert.Equal(t, CoinNumberByUnit(1).String(), v.String())

	v, err = ParseAmount("")
	require.Nil(t, err)
	assert.Zero(t, v.Sign())

	_, err = ParseAmount("-1")
	assert.NotNil(t, err)
	_, err = ParseAmount("1e18")
	assert.NotNil(t, err)
}

func TestLoadRepoRootFromEnv(t *testing.T) {
	root, err := LoadRepoRootFromEnv("/tmp/vault")
	require.Nil(t, err)
	assert.Equal(t, "/tmp/vault", root)

	t.Setenv(rootPathEnvVar, "/tmp/from-env")
	root, err = LoadRepoRootFromEnv("")
	require.Nil(t, err)
	assert.Equal(t, "/tmp/from-env", root)
}
