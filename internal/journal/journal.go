package journal

import (
	"context"
	"fmt"
	"strconv"

	"github.com/standlog/standlog/internal/kv"
)

var (
	entryPrefix = []byte("journal:")
	keySeq      = []byte("meta:journal_seq")
)

// entryKey returns the durable key for a journal seq. Zero padding keeps
// ascending byte order equal to numeric order.
func entryKey(seq int64) []byte {
	return []byte(fmt.Sprintf("journal:%020d", seq))
}

// Append assigns the next seq to the entry and writes it within tx.
// The seq counter lives in the same transaction, so a rolled-back call
// leaves neither the entry nor the counter bump behind.
func Append(tx kv.Tx, e Entry) (Entry, error) {
	seq, err := nextSeq(tx)
	if err != nil {
		return Entry{}, err
	}
	e.Seq = seq

	data, err := e.Encode()
	if err != nil {
		return Entry{}, fmt.Errorf("append journal entry: %w", err)
	}
	if err := tx.Put(entryKey(seq), data); err != nil {
		return Entry{}, fmt.Errorf("append journal entry: %w", err)
	}
	return e, nil
}

// Entries returns every journal entry within tx in seq order.
func Entries(tx kv.Tx) ([]Entry, error) {
	var entries []Entry
	err := tx.Ascend(entryPrefix, func(key, value []byte) error {
		e, err := DecodeEntry(value)
		if err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	// Return empty slice instead of nil
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// List reads the full journal from a store in seq order.
func List(ctx context.Context, s kv.Store) ([]Entry, error) {
	var entries []Entry
	err := s.View(ctx, func(tx kv.Tx) error {
		var err error
		entries, err = Entries(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// nextSeq reads, increments, and persists the journal seq counter.
func nextSeq(tx kv.Tx) (int64, error) {
	raw, ok, err := tx.Get(keySeq)
	if err != nil {
		return 0, fmt.Errorf("read journal seq: %w", err)
	}

	var seq int64
	if ok {
		seq, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt journal seq %q: %w", raw, err)
		}
	}

	if err := tx.Put(keySeq, []byte(strconv.FormatInt(seq+1, 10))); err != nil {
		return 0, fmt.Errorf("bump journal seq: %w", err)
	}
	return seq, nil
}
