package kv

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

const memoryBTreeDegree = 32

type kvItem struct {
	key   []byte
	value []byte
}

func (i *kvItem) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(*kvItem).key) < 0
}

type memory struct {
	lock sync.RWMutex
	tree *btree.BTree
}

// NewMemory returns an ordered in-memory store.
func NewMemory() Storage {
	return &memory{
		tree: btree.New(memoryBTreeDegree),
	}
}

func (m *memory) Put(key, value []byte) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.tree.ReplaceOrInsert(&kvItem{key: copyBytes(key), value: copyBytes(value)})
}

func (m *memory) Get(key []byte) []byte {
	m.lock.RLock()
	defer m.lock.RUnlock()
	item := m.tree.Get(&kvItem{key: key})
	if item == nil {
		return nil
	}
	return copyBytes(item.(*kvItem).value)
}

func (m *memory) Has(key []byte) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.tree.Has(&kvItem{key: key})
}

func (m *memory) Delete(key []byte) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.tree.Delete(&kvItem{key: key})
}

func (m *memory) Close() error {
	return nil
}

func (m *memory) NewBatch() Batch {
	return &memoryBatch{db: m}
}

// Iterator captures the range at call time; later writes are not observed.
func (m *memory) Iterator(start, end []byte) Iterator {
	m.lock.RLock()
	defer m.lock.RUnlock()
	var items []*kvItem
	m.tree.AscendGreaterOrEqual(&kvItem{key: start}, func(i btree.Item) bool {
		item := i.(*kvItem)
		if end != nil && bytes.Compare(item.key, end) >= 0 {
			return false
		}
		items = append(items, &kvItem{key: copyBytes(item.key), value: copyBytes(item.value)})
		return true
	})
	return &memoryIterator{items: items, idx: -1}
}

func (m *memory) Prefix(prefix []byte) Iterator {
	return m.Iterator(prefix, prefixEnd(prefix))
}

type memoryIterator struct {
	items []*kvItem
	idx   int
}

func (it *memoryIterator) Next() bool {
	if it.idx+1 >= len(it.items) {
		it.idx = len(it.items)
		return false
	}
	it.idx++
	return true
}

func (it *memoryIterator) Key() []byte {
	if it.idx < 0 || it.idx >= len(it.items) {
		return nil
	}
	return it.items[it.idx].key
}

func (it *memoryIterator) Value() []byte {
	if it.idx < 0 || it.idx >= len(it.items) {
		return nil
	}
	return it.items[it.idx].value
}

func (it *memoryIterator) Error() error {
	return nil
}

func (it *memoryIterator) Release() {
	it.items = nil
}

type memoryOp struct {
	key    []byte
	value  []byte
	delete bool
}

type memoryBatch struct {
	db  *memory
	ops []memoryOp
}

func (b *memoryBatch) Put(key, value []byte) {
	b.ops = append(b.ops, memoryOp{key: copyBytes(key), value: copyBytes(value)})
}

func (b *memoryBatch) Delete(key []byte) {
	b.ops = append(b.ops, memoryOp{key: copyBytes(key), delete: true})
}

func (b *memoryBatch) Commit() {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()
	for _, op := range b.ops {
		if op.delete {
			b.db.tree.Delete(&kvItem{key: op.key})
			continue
		}
		b.db.tree.ReplaceOrInsert(&kvItem{key: op.key, value: op.value})
	}
	b.ops = nil
}

func (b *memoryBatch) Size() int {
	return len(b.ops)
}

func (b *memoryBatch) Reset() {
	b.ops = nil
}
