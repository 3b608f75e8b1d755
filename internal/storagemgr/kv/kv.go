package kv

// Storage is an ordered key/value store. Implementations panic on unexpected
// IO errors: a store that cannot read or write leaves the ledger unusable.
type Storage interface {
	Put(key, value []byte)
	Get(key []byte) []byte
	Has(key []byte) bool
	Delete(key []byte)
	Close() error
	NewBatch() Batch
	Iterator(start, end []byte) Iterator
	Prefix(prefix []byte) Iterator
}

type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Commit()
	Size() int
	Reset()
}

// Iterator walks keys in ascending order; Next must be called before the first Key.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}

// prefixEnd returns the smallest key greater than every key with the given prefix.
func prefixEnd(prefix []byte) []byte {
	var limit []byte
	for i := len(prefix) - 1; i >= 0; i-- {
		c := prefix[i]
		if c < 0xff {
			limit = make([]byte, i+1)
			copy(limit, prefix)
			limit[i] = c + 1
			break
		}
	}
	return limit
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	ret := make([]byte, len(b))
	copy(ret, b)
	return ret
}
