package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/standlog/standlog/internal/journal"
	"github.com/standlog/standlog/internal/kv"
	"github.com/standlog/standlog/internal/report"
)

// Ledger is the record store. See the package doc for semantics.
type Ledger struct {
	store  kv.Store
	tokens journal.TokenSource
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithTokenSource overrides the call-token source. Replay and golden tests
// install a journal.FixedSource; the default is UUIDv7.
func WithTokenSource(src journal.TokenSource) Option {
	return func(l *Ledger) { l.tokens = src }
}

// Open constructs a ledger over the given substrate.
//
// On a fresh substrate the creator becomes the immutable owner, the greeting
// is set to report.DefaultGreeting, and an "open" entry is journaled. On a
// substrate that already holds a ledger, creator is ignored - the owner was
// captured once at construction and never changes.
func Open(ctx context.Context, store kv.Store, creator report.AccountID, opts ...Option) (*Ledger, error) {
	l := &Ledger{store: store, tokens: journal.UUIDv7Source{}}
	for _, opt := range opts {
		opt(l)
	}

	err := store.Update(ctx, func(tx kv.Tx) error {
		_, ok, err := tx.Get(keyOwner)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		if err := tx.Put(keyOwner, []byte(creator)); err != nil {
			return err
		}
		if err := tx.Put(keyGreeting, []byte(report.DefaultGreeting)); err != nil {
			return err
		}
		_, err = journal.Append(tx, journal.Entry{
			CallToken: l.tokens.Next(),
			Op:        report.OpOpen,
			Caller:    creator,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return l, nil
}

// Owner returns the identity captured at construction.
func (l *Ledger) Owner(ctx context.Context) (report.AccountID, error) {
	var owner report.AccountID
	err := l.store.View(ctx, func(tx kv.Tx) error {
		raw, ok, err := tx.Get(keyOwner)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("ledger not initialized: owner slot missing")
		}
		owner = report.AccountID(raw)
		return nil
	})
	if err != nil {
		return "", err
	}
	return owner, nil
}

// Greeting returns the current greeting. Read-only, never fails on a
// constructed ledger.
func (l *Ledger) Greeting(ctx context.Context) (string, error) {
	var greeting string
	err := l.store.View(ctx, func(tx kv.Tx) error {
		raw, ok, err := tx.Get(keyGreeting)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("ledger not initialized: greeting slot missing")
		}
		greeting = string(raw)
		return nil
	})
	if err != nil {
		return "", err
	}
	return greeting, nil
}

// SetGreeting replaces the greeting unconditionally. No ownership check.
// Journals one entry containing the new message.
func (l *Ledger) SetGreeting(ctx context.Context, caller report.AccountID, message string) error {
	return l.store.Update(ctx, func(tx kv.Tx) error {
		if err := tx.Put(keyGreeting, []byte(message)); err != nil {
			return err
		}
		_, err := journal.Append(tx, journal.Entry{
			CallToken: l.tokens.Next(),
			Op:        report.OpSetGreeting,
			Caller:    caller,
			Message:   &message,
		})
		return err
	})
}

// AddReport creates a report authored by the caller and returns its id.
//
// Ids come from a persisted counter that only moves forward: the returned id
// has never been assigned before, even across deletions and reopens.
func (l *Ledger) AddReport(ctx context.Context, caller report.AccountID, f report.Fields) (int64, error) {
	var id int64
	err := l.store.Update(ctx, func(tx kv.Tx) error {
		// update_report may have inserted records at arbitrary ids ahead of
		// the counter; keep drawing until the slot is genuinely free so the
		// returned id was never present before this call.
		for {
			var err error
			id, err = nextReportID(tx)
			if err != nil {
				return err
			}
			_, taken, err := tx.Get(reportKey(id))
			if err != nil {
				return err
			}
			if !taken {
				break
			}
		}

		rec := report.New(id, caller, f)
		data, err := rec.Encode()
		if err != nil {
			return err
		}
		if err := tx.Put(reportKey(id), data); err != nil {
			return err
		}

		_, err = journal.Append(tx, journal.Entry{
			CallToken: l.tokens.Next(),
			Op:        report.OpAddReport,
			Caller:    caller,
			ReportID:  &id,
			Fields:    &f,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Report looks up a single record. Fails with NOT_FOUND if the id was never
// assigned or has been deleted.
func (l *Ledger) Report(ctx context.Context, id int64) (report.Report, error) {
	var rec report.Report
	err := l.store.View(ctx, func(tx kv.Tx) error {
		raw, ok, err := tx.Get(reportKey(id))
		if err != nil {
			return err
		}
		if !ok {
			return report.NewNotFound(id)
		}
		rec, err = report.Decode(raw)
		return err
	})
	if err != nil {
		return report.Report{}, err
	}
	return rec, nil
}

// Reports returns every stored record in ascending id order.
// Returns an empty slice (not nil) when the ledger holds no reports.
func (l *Ledger) Reports(ctx context.Context) ([]report.Report, error) {
	var records []report.Report
	err := l.store.View(ctx, func(tx kv.Tx) error {
		return tx.Ascend(reportPrefix, func(key, value []byte) error {
			rec, err := report.Decode(value)
			if err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []report.Report{}
	}
	return records, nil
}

// UpdateReport overwrites the record at id, inserting if absent. No existence
// check, no ownership check; the author is re-stamped to the current caller.
func (l *Ledger) UpdateReport(ctx context.Context, caller report.AccountID, id int64, f report.Fields) error {
	return l.store.Update(ctx, func(tx kv.Tx) error {
		rec := report.New(id, caller, f)
		data, err := rec.Encode()
		if err != nil {
			return err
		}
		if err := tx.Put(reportKey(id), data); err != nil {
			return err
		}

		_, err = journal.Append(tx, journal.Entry{
			CallToken: l.tokens.Next(),
			Op:        report.OpUpdateReport,
			Caller:    caller,
			ReportID:  &id,
			Fields:    &f,
		})
		return err
	})
}

// DeleteReport removes the record at id if present (no-op if absent).
//
// Fails with PERMISSION_DENIED unless the caller is the ledger owner. The
// gate is on owner identity, not record authorship: the owner may delete any
// report, and nobody else may delete anything.
func (l *Ledger) DeleteReport(ctx context.Context, caller report.AccountID, id int64) error {
	return l.store.Update(ctx, func(tx kv.Tx) error {
		rawOwner, ok, err := tx.Get(keyOwner)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("ledger not initialized: owner slot missing")
		}
		if report.AccountID(rawOwner) != caller {
			return report.NewPermissionDenied(caller, id)
		}

		if err := tx.Delete(reportKey(id)); err != nil {
			return err
		}

		_, err = journal.Append(tx, journal.Entry{
			CallToken: l.tokens.Next(),
			Op:        report.OpDeleteReport,
			Caller:    caller,
			ReportID:  &id,
		})
		return err
	})
}

// nextReportID reads, increments, and persists the id counter.
func nextReportID(tx kv.Tx) (int64, error) {
	raw, ok, err := tx.Get(keyReportSeq)
	if err != nil {
		return 0, fmt.Errorf("read report seq: %w", err)
	}

	var id int64
	if ok {
		id, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt report seq %q: %w", raw, err)
		}
	}

	if err := tx.Put(keyReportSeq, []byte(strconv.FormatInt(id+1, 10))); err != nil {
		return 0, fmt.Errorf("bump report seq: %w", err)
	}
	return id, nil
}
