package host

import (
	"bytes"
	"context"
	"fmt"

	"github.com/standlog/standlog/internal/journal"
	"github.com/standlog/standlog/internal/kv"
	"github.com/standlog/standlog/internal/ledger"
	"github.com/standlog/standlog/internal/report"
)

// ReplaySummary describes a successful replay verification.
type ReplaySummary struct {
	// Entries is the number of journal entries replayed, including open.
	Entries int

	// Reports is the number of records in the converged final state.
	Reports int

	// Greeting is the converged final greeting.
	Greeting string
}

// VerifyReplay rebuilds a fresh in-memory ledger from the journal recorded in
// src and verifies convergence: the rebuilt journal must match the original
// byte-for-byte (recorded call tokens are fed back in), and the final
// greeting, owner, and report set must be identical.
//
// A non-nil error with the "replay diverged" prefix means src holds state the
// journal cannot explain - it was modified outside the journaled operations.
func VerifyReplay(ctx context.Context, src kv.Store) (ReplaySummary, error) {
	entries, err := journal.List(ctx, src)
	if err != nil {
		return ReplaySummary{}, err
	}
	if len(entries) == 0 {
		return ReplaySummary{}, fmt.Errorf("journal is empty: no ledger to replay")
	}
	if entries[0].Op != report.OpOpen {
		return ReplaySummary{}, fmt.Errorf("corrupt journal: first entry is %q, want %q", entries[0].Op, report.OpOpen)
	}

	tokens := make([]string, len(entries))
	for i, e := range entries {
		tokens[i] = e.CallToken
	}

	mem := kv.NewMemory()
	rebuilt, err := ledger.Open(ctx, mem, entries[0].Caller,
		ledger.WithTokenSource(journal.NewFixedSource(tokens...)))
	if err != nil {
		return ReplaySummary{}, fmt.Errorf("replay: %w", err)
	}

	for _, e := range entries[1:] {
		if err := apply(ctx, rebuilt, e); err != nil {
			return ReplaySummary{}, err
		}
	}

	if err := compareJournals(ctx, mem, entries); err != nil {
		return ReplaySummary{}, err
	}

	summary, err := compareState(ctx, src, rebuilt, entries[0].Caller)
	if err != nil {
		return ReplaySummary{}, err
	}
	summary.Entries = len(entries)
	return summary, nil
}

// apply re-executes one journaled mutation against the rebuilt ledger.
func apply(ctx context.Context, l *ledger.Ledger, e journal.Entry) error {
	switch e.Op {
	case report.OpSetGreeting:
		if e.Message == nil {
			return fmt.Errorf("corrupt journal: set_greeting entry %d has no message", e.Seq)
		}
		return l.SetGreeting(ctx, e.Caller, *e.Message)

	case report.OpAddReport:
		if e.ReportID == nil || e.Fields == nil {
			return fmt.Errorf("corrupt journal: add_report entry %d is incomplete", e.Seq)
		}
		id, err := l.AddReport(ctx, e.Caller, *e.Fields)
		if err != nil {
			return err
		}
		if id != *e.ReportID {
			return fmt.Errorf("replay diverged: add_report at seq %d assigned id %d, journal says %d", e.Seq, id, *e.ReportID)
		}
		return nil

	case report.OpUpdateReport:
		if e.ReportID == nil || e.Fields == nil {
			return fmt.Errorf("corrupt journal: update_report entry %d is incomplete", e.Seq)
		}
		return l.UpdateReport(ctx, e.Caller, *e.ReportID, *e.Fields)

	case report.OpDeleteReport:
		if e.ReportID == nil {
			return fmt.Errorf("corrupt journal: delete_report entry %d has no report id", e.Seq)
		}
		return l.DeleteReport(ctx, e.Caller, *e.ReportID)

	case report.OpOpen:
		return fmt.Errorf("corrupt journal: open entry at seq %d, not at the start", e.Seq)

	default:
		return fmt.Errorf("corrupt journal: unknown op %q at seq %d", e.Op, e.Seq)
	}
}

// compareJournals checks that the rebuilt journal matches the original
// byte-for-byte under canonical encoding.
func compareJournals(ctx context.Context, dst kv.Store, original []journal.Entry) error {
	replayed, err := journal.List(ctx, dst)
	if err != nil {
		return err
	}
	if len(replayed) != len(original) {
		return fmt.Errorf("replay diverged: journal has %d entries, rebuilt %d", len(original), len(replayed))
	}
	for i := range original {
		want, err := original[i].Encode()
		if err != nil {
			return err
		}
		got, err := replayed[i].Encode()
		if err != nil {
			return err
		}
		if !bytes.Equal(want, got) {
			return fmt.Errorf("replay diverged: journal entry %d differs\n  original: %s\n  rebuilt:  %s", i, want, got)
		}
	}
	return nil
}

// compareState checks greeting, owner, and the full report set.
func compareState(ctx context.Context, src kv.Store, rebuilt *ledger.Ledger, opener report.AccountID) (ReplaySummary, error) {
	orig, err := ledger.Open(ctx, src, opener)
	if err != nil {
		return ReplaySummary{}, err
	}

	origOwner, err := orig.Owner(ctx)
	if err != nil {
		return ReplaySummary{}, err
	}
	rebuiltOwner, err := rebuilt.Owner(ctx)
	if err != nil {
		return ReplaySummary{}, err
	}
	if origOwner != rebuiltOwner {
		return ReplaySummary{}, fmt.Errorf("replay diverged: owner %q, rebuilt %q", origOwner, rebuiltOwner)
	}

	origGreeting, err := orig.Greeting(ctx)
	if err != nil {
		return ReplaySummary{}, err
	}
	rebuiltGreeting, err := rebuilt.Greeting(ctx)
	if err != nil {
		return ReplaySummary{}, err
	}
	if origGreeting != rebuiltGreeting {
		return ReplaySummary{}, fmt.Errorf("replay diverged: greeting %q, rebuilt %q", origGreeting, rebuiltGreeting)
	}

	origReports, err := orig.Reports(ctx)
	if err != nil {
		return ReplaySummary{}, err
	}
	rebuiltReports, err := rebuilt.Reports(ctx)
	if err != nil {
		return ReplaySummary{}, err
	}
	if len(origReports) != len(rebuiltReports) {
		return ReplaySummary{}, fmt.Errorf("replay diverged: %d reports, rebuilt %d", len(origReports), len(rebuiltReports))
	}
	for i := range origReports {
		if origReports[i] != rebuiltReports[i] {
			return ReplaySummary{}, fmt.Errorf("replay diverged: report %d differs: %+v vs %+v", origReports[i].ID, origReports[i], rebuiltReports[i])
		}
	}

	return ReplaySummary{Reports: len(origReports), Greeting: origGreeting}, nil
}
