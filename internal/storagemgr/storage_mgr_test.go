package storagemgr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-vault/pkg/repo"
)

func TestInitializeWrongType(t *testing.T) {
	err := Initialize("unsupport", repo.KVStorageCacheSize, false)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "unknow kv type unsupport")
}

func TestOpen(t *testing.T) {
	testcase := map[string]struct {
		kvType string
	}{
		"leveldb": {kvType: repo.KVStorageTypeLeveldb},
		"pebble":  {kvType: repo.KVStorageTypePebble},
		"memory":  {kvType: repo.KVStorageTypeMemory},
	}
	for name, tc := range testcase {
		t.Run(name, func(t *testing.T) {
			err := Initialize(tc.kvType, repo.KVStorageCacheSize, false)
			require.Nil(t, err)

			rep := repo.Default(t.TempDir())
			p := GetLedgerComponentPath(rep, Ledger)
			s, err := Open(p)
			require.Nil(t, err)
			require.NotNil(t, s)

			s2, err := Open(p)
			require.Nil(t, err)
			require.True(t, s == s2, "same path must share one store")

			s.Put([]byte("k"), []byte("v"))
			require.Equal(t, []byte("v"), s2.Get([]byte("k")))
			require.Nil(t, Close(p))
		})
	}
}
