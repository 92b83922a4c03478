package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store implementation. It backs unit tests and
// journal replay, where a fresh substrate is rebuilt from recorded entries.
//
// Update runs fn against a copy of the map and swaps it in only on success,
// giving the same atomic no-op failure semantics as the SQLite store.
type Memory struct {
	mu    sync.Mutex
	slots map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string][]byte)}
}

// View runs fn against the current state. Writes are rejected.
func (m *Memory) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(readOnlyTx{&memoryTx{slots: m.slots}})
}

// Update runs fn against a copy-on-write snapshot and commits it on success.
func (m *Memory) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string][]byte, len(m.slots))
	for k, v := range m.slots {
		next[k] = v
	}

	if err := fn(&memoryTx{slots: next}); err != nil {
		return err
	}

	m.slots = next
	return nil
}

// Close releases nothing; it exists to satisfy Store. Idempotent.
func (m *Memory) Close() error { return nil }

// Len returns the number of stored keys. Test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

type memoryTx struct {
	slots map[string][]byte
}

func (t *memoryTx) Get(key []byte) ([]byte, bool, error) {
	value, ok := t.slots[string(key)]
	if !ok {
		return nil, false, nil
	}
	// Copy so callers cannot mutate committed state through the returned slice.
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (t *memoryTx) Put(key, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	t.slots[string(key)] = stored
	return nil
}

func (t *memoryTx) Delete(key []byte) error {
	delete(t.slots, string(key))
	return nil
}

func (t *memoryTx) Ascend(prefix []byte, fn func(key, value []byte) error) error {
	keys := make([]string, 0, len(t.slots))
	for k := range t.slots {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := fn([]byte(k), t.slots[k]); err != nil {
			return err
		}
	}
	return nil
}
