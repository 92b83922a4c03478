package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/standlog/standlog/internal/ledger"
	"github.com/standlog/standlog/internal/report"
)

// Args carries the inputs of a dispatched call. Ops read only the fields
// they document; the rest stay zero.
type Args struct {
	// ID selects a report (get_report, update_report, delete_report).
	ID int64

	// Message is the new greeting (set_greeting).
	Message string

	// Fields are the report fields (add_report, update_report).
	Fields report.Fields
}

// Result carries the outputs of a dispatched call.
type Result struct {
	// Greeting is set by get_greeting.
	Greeting string

	// ID is set by add_report.
	ID int64

	// Report is set by get_report.
	Report report.Report

	// Reports is set by list_reports.
	Reports []report.Report
}

// Host serializes calls against one ledger instance and dispatches them by
// op name. The mutex enforces the one-call-at-a-time execution model at the
// process boundary; the core itself takes no locks.
type Host struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
}

// New wraps a ledger in a host adapter.
func New(l *ledger.Ledger) *Host {
	return &Host{ledger: l}
}

// Call executes one operation to completion on behalf of caller.
//
// Effects are fully visible to the next call; a failed call has no effects
// at all.
func (h *Host) Call(ctx context.Context, caller report.AccountID, op report.Op, args Args) (Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch op {
	case report.OpGetGreeting:
		greeting, err := h.ledger.Greeting(ctx)
		return Result{Greeting: greeting}, err

	case report.OpSetGreeting:
		return Result{}, h.ledger.SetGreeting(ctx, caller, args.Message)

	case report.OpAddReport:
		id, err := h.ledger.AddReport(ctx, caller, args.Fields)
		return Result{ID: id}, err

	case report.OpGetReport:
		rec, err := h.ledger.Report(ctx, args.ID)
		return Result{Report: rec}, err

	case report.OpUpdateReport:
		return Result{}, h.ledger.UpdateReport(ctx, caller, args.ID, args.Fields)

	case report.OpDeleteReport:
		return Result{}, h.ledger.DeleteReport(ctx, caller, args.ID)

	case report.OpListReports:
		records, err := h.ledger.Reports(ctx)
		return Result{Reports: records}, err

	default:
		return Result{}, fmt.Errorf("unknown operation %q", op)
	}
}
