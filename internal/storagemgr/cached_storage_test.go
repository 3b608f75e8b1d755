package storagemgr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-vault/internal/storagemgr/kv"
)

func TestCachedStorage(t *testing.T) {
	c := NewCachedStorage(kv.NewMemory(), 10)

	tests := []struct {
		key   []byte
		value []byte
	}{
		{key: []byte("k1"), value: []byte("v1")},
		{key: []byte("k2"), value: []byte("v2")},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("non_batch_%d", i), func(t *testing.T) {
			require.Nil(t, c.Get(tt.key))
			require.False(t, c.Has(tt.key))

			c.Put(tt.key, tt.value)
			require.EqualValues(t, tt.value, c.Get(tt.key))
			require.True(t, c.Has(tt.key))

			c.Delete(tt.key)
			require.Nil(t, c.Get(tt.key))
			require.False(t, c.Has(tt.key))
		})
	}

	t.Run("batch", func(t *testing.T) {
		b := c.NewBatch()
		b.Put([]byte("k1"), []byte("v1"))
		c.Put([]byte("k2"), []byte("v2"))

		require.Nil(t, c.Get([]byte("k1")))
		require.EqualValues(t, []byte("v2"), c.Get([]byte("k2")))

		b.Delete([]byte("k2"))
		b.Commit()

		require.EqualValues(t, []byte("v1"), c.Get([]byte("k1")))
		require.Nil(t, c.Get([]byte("k2")))
		require.False(t, c.Has([]byte("k2")))
	})

	t.Run("cache survives underlying miss", func(t *testing.T) {
		raw := kv.NewMemory()
		cached := NewCachedStorage(raw, 1)
		raw.Put([]byte("k"), []byte("v"))
		require.EqualValues(t, []byte("v"), cached.Get([]byte("k")))
		raw.Delete([]byte("k"))
		require.EqualValues(t, []byte("v"), cached.Get([]byte("k")))
	})
}
