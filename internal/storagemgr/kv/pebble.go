package kv

import (
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type pdb struct {
	db     *pebble.DB
	wo     *pebble.WriteOptions
	logger logrus.FieldLogger
}

func NewPebble(path string, opts *pebble.Options, wo *pebble.WriteOptions, logger logrus.FieldLogger) (Storage, error) {
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble %s", path)
	}
	if wo == nil {
		wo = pebble.Sync
	}
	return &pdb{db: db, wo: wo, logger: logger}, nil
}

func (p *pdb) Put(key, value []byte) {
	if err := p.db.Set(key, value, p.wo); err != nil {
		panic(err)
	}
}

func (p *pdb) Get(key []byte) []byte {
	val, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil
		}
		panic(err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			p.logger.WithField("err", err).Warn("Close pebble value failed")
		}
	}()
	return copyBytes(val)
}

func (p *pdb) Has(key []byte) bool {
	return p.Get(key) != nil
}

func (p *pdb) Delete(key []byte) {
	if err := p.db.Delete(key, p.wo); err != nil {
		panic(err)
	}
}

func (p *pdb) Close() error {
	return p.db.Close()
}

func (p *pdb) NewBatch() Batch {
	return &pebbleBatch{
		batch: p.db.NewBatch(),
		wo:    p.wo,
	}
}

func (p *pdb) Iterator(start, end []byte) Iterator {
	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		panic(err)
	}
	return &pebbleIterator{it: it}
}

func (p *pdb) Prefix(prefix []byte) Iterator {
	return p.Iterator(prefix, prefixEnd(prefix))
}

type pebbleIterator struct {
	it      *pebble.Iterator
	started bool
}

func (i *pebbleIterator) Next() bool {
	if !i.started {
		i.started = true
		return i.it.First()
	}
	return i.it.Next()
}

func (i *pebbleIterator) Key() []byte {
	return copyBytes(i.it.Key())
}

func (i *pebbleIterator) Value() []byte {
	return copyBytes(i.it.Value())
}

func (i *pebbleIterator) Error() error {
	return i.it.Error()
}

func (i *pebbleIterator) Release() {
	_ = i.it.Close()
}

type pebbleBatch struct {
	batch *pebble.Batch
	wo    *pebble.WriteOptions
}

func (b *pebbleBatch) Put(key, value []byte) {
	if err := b.batch.Set(key, value, nil); err != nil {
		panic(err)
	}
}

func (b *pebbleBatch) Delete(key []byte) {
	if err := b.batch.Delete(key, nil); err != nil {
		panic(err)
	}
}

func (b *pebbleBatch) Commit() {
	if err := b.batch.Commit(b.wo); err != nil {
		panic(err)
	}
	b.batch.Reset()
}

func (b *pebbleBatch) Size() int {
	return int(b.batch.Count())
}

func (b *pebbleBatch) Reset() {
	b.batch.Reset()
}
