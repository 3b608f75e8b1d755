package kv

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type ldb struct {
	db *leveldb.DB
}

func NewLeveldb(path string, opts *opt.Options) (Storage, error) {
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %s", path)
	}
	return &ldb{db: db}, nil
}

func (l *ldb) Put(key, value []byte) {
	if err := l.db.Put(key, value, nil); err != nil {
		panic(err)
	}
}

func (l *ldb) Get(key []byte) []byte {
	val, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil
		}
		panic(err)
	}
	return val
}

func (l *ldb) Has(key []byte) bool {
	has, err := l.db.Has(key, nil)
	if err != nil {
		panic(err)
	}
	return has
}

func (l *ldb) Delete(key []byte) {
	if err := l.db.Delete(key, nil); err != nil {
		panic(err)
	}
}

func (l *ldb) Close() error {
	return l.db.Close()
}

func (l *ldb) NewBatch() Batch {
	return &ldbBatch{
		db:    l.db,
		batch: &leveldb.Batch{},
	}
}

func (l *ldb) Iterator(start, end []byte) Iterator {
	return l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
}

func (l *ldb) Prefix(prefix []byte) Iterator {
	return l.db.NewIterator(util.BytesPrefix(prefix), nil)
}

type ldbBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *ldbBatch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

func (b *ldbBatch) Delete(key []byte) {
	b.batch.Delete(key)
}

func (b *ldbBatch) Commit() {
	if err := b.db.Write(b.batch, nil); err != nil {
		panic(err)
	}
	b.batch.Reset()
}

func (b *ldbBatch) Size() int {
	return b.batch.Len()
}

func (b *ldbBatch) Reset() {
	b.batch.Reset()
}
