package kv

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	dir := t.TempDir()
	ldb, err := NewLeveldb(filepath.Join(dir, "leveldb"), nil)
	require.Nil(t, err)
	pdb, err := NewPebble(filepath.Join(dir, "pebble"), &pebble.Options{}, pebble.NoSync, logrus.New())
	require.Nil(t, err)
	ret := map[string]Storage{
		"memory":  NewMemory(),
		"leveldb": ldb,
		"pebble":  pdb,
	}
	t.Cleanup(func() {
		for _, s := range ret {
			_ = s.Close()
		}
	})
	return ret
}

func TestStorage_PutGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, s.Get([]byte("a")))
			assert.False(t, s.Has([]byte("a")))

			s.Put([]byte("a"), []byte("1"))
			assert.Equal(t, []byte("1"), s.Get([]byte("a")))
			assert.True(t, s.Has([]byte("a")))

			s.Put([]byte("a"), []byte("2"))
			assert.Equal(t, []byte("2"), s.Get([]byte("a")))

			s.Delete([]byte("a"))
			assert.Nil(t, s.Get([]byte("a")))
			assert.False(t, s.Has([]byte("a")))
		})
	}
}

func TestStorage_Batch(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s.Put([]byte("stale"), []byte("x"))

			batch := s.NewBatch()
			for i := 0; i < 10; i++ {
				batch.Put([]byte(fmt.Sprintf("k%d", i)), []byte(fmt.Sprintf("v%d", i)))
			}
			batch.Delete([]byte("stale"))
			assert.Equal(t, 11, batch.Size())
			assert.Nil(t, s.Get([]byte("k0")))

			batch.Commit()
			for i := 0; i < 10; i++ {
				assert.Equal(t, []byte(fmt.Sprintf("v%d", i)), s.Get([]byte(fmt.Sprintf("k%d", i))))
			}
			assert.False(t, s.Has([]byte("stale")))

			batch.Put([]byte("dropped"), []byte("x"))
			batch.Reset()
			assert.Zero(t, batch.Size())
		})
	}
}

func TestStorage_Prefix(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s.Put([]byte("s/b"), []byte("2"))
			s.Put([]byte("s/a"), []byte("1"))
			s.Put([]byte("s/c"), []byte("3"))
			s.Put([]byte("t/a"), []byte("4"))
			s.Put([]byte("r/a"), []byte("5"))

			it := s.Prefix([]byte("s/"))
			var keys, values []string
			for it.Next() {
				keys = append(keys, string(it.Key()))
				values = append(values, string(it.Value()))
			}
			require.Nil(t, it.Error())
			it.Release()
			assert.Equal(t, []string{"s/a", "s/b", "s/c"}, keys)
			assert.Equal(t, []string{"1", "2", "3"}, values)

			it = s.Iterator([]byte("s/b"), []byte("t/a"))
			keys = nil
			for it.Next() {
				keys = append(keys, string(it.Key()))
			}
			it.Release()
			assert.Equal(t, []string{"s/b", "s/c"}, keys)
		})
	}
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("b"), prefixEnd([]byte("a")))
	assert.Equal(t, []byte{0x01}, prefixEnd([]byte{0x00, 0xff}))
	assert.Nil(t, prefixEnd([]byte{0xff, 0xff}))
}
