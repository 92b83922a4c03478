package kv

import "context"

// Store is a durable mapping from byte-string keys to byte-string values.
//
// All access goes through transactions. The execution model is strictly
// single-writer: callers serialize their transactions, and implementations
// need not support concurrent Update calls.
type Store interface {
	// View runs fn in a read-only transaction. Writes issued through the
	// transaction fail.
	View(ctx context.Context, fn func(tx Tx) error) error

	// Update runs fn in a writable transaction. If fn returns nil the writes
	// commit atomically; if fn returns an error every write is rolled back
	// and the error is returned unchanged.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources. Idempotent.
	Close() error
}

// Tx is a transaction over a Store.
type Tx interface {
	// Get returns the value for key. The second result reports whether the
	// key was present.
	Get(key []byte) ([]byte, bool, error)

	// Put stores value under key, replacing any existing value.
	Put(key, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key []byte) error

	// Ascend calls fn for every key with the given prefix in ascending byte
	// order. Iteration stops early if fn returns a non-nil error, and that
	// error is returned.
	Ascend(prefix []byte, fn func(key, value []byte) error) error
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil if no such key exists (prefix is all 0xFF).
func prefixUpperBound(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] < 0xFF {
			upper := make([]byte, i+1)
			copy(upper, prefix[:i+1])
			upper[i]++
			return upper
		}
	}
	return nil
}
