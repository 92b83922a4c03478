package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/standlog/standlog/internal/host"
	"github.com/standlog/standlog/internal/journal"
	"github.com/standlog/standlog/internal/kv"
	"github.com/standlog/standlog/internal/ledger"
	"github.com/standlog/standlog/internal/report"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step expectation and every
	// assertion held.
	Pass bool

	// Journal holds every journal entry the run produced, in seq order.
	Journal []journal.Entry

	// Greeting is the greeting after the final step.
	Greeting string

	// Reports are the surviving reports after the final step, in
	// ascending id order.
	Reports []report.Report

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string
}

// AddError records a validation failure and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// AssertionError is returned when a step expectation or a final-state
// assertion fails.
type AssertionError struct {
	Type     string // what was being checked
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s", e.Actual)
	return buf.String()
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory substrate for isolation, with
// call tokens drawn from a fixed source ("call-0001", "call-0002", ...)
// so the journal is byte-for-byte reproducible. Failed step expectations
// and failed assertions land in Result.Errors; Run itself only errors on
// infrastructure failures.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	mem := kv.NewMemory()

	// One token for the open entry plus one per step covers the worst
	// case; reads and rejected calls draw nothing, leftover tokens are
	// simply never handed out.
	tokens := make([]string, 0, 1+len(scenario.Steps))
	for i := 0; i <= len(scenario.Steps); i++ {
		tokens = append(tokens, fmt.Sprintf("call-%04d", i+1))
	}

	led, err := ledger.Open(ctx, mem, report.AccountID(scenario.Owner),
		ledger.WithTokenSource(journal.NewFixedSource(tokens...)))
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	h := host.New(led)

	result := &Result{Pass: true}
	for i, step := range scenario.Steps {
		args := host.Args{}
		if step.ID != nil {
			args.ID = *step.ID
		}
		if step.Message != nil {
			args.Message = *step.Message
		}
		if step.Fields != nil {
			args.Fields = *step.Fields
		}

		out, err := h.Call(ctx, report.AccountID(step.As), report.Op(step.Op), args)
		if verr := checkStep(i, step, out, err); verr != nil {
			result.AddError(verr.Error())
		}
	}

	result.Journal, err = journal.List(ctx, mem)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	result.Greeting, err = led.Greeting(ctx)
	if err != nil {
		return nil, fmt.Errorf("read greeting: %w", err)
	}
	result.Reports, err = led.Reports(ctx)
	if err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}

	for i, assertion := range scenario.Assertions {
		if verr := checkAssertion(i, assertion, result); verr != nil {
			result.AddError(verr.Error())
		}
	}
	return result, nil
}

// checkStep validates a step's outcome against its expect clause.
func checkStep(index int, step Step, out host.Result, err error) error {
	label := fmt.Sprintf("steps[%d] %s", index, step.Op)

	wantErr := ""
	if step.Expect != nil {
		wantErr = step.Expect.Error
	}

	switch wantErr {
	case "":
		if err != nil {
			return &AssertionError{
				Type:     label,
				Expected: "success",
				Actual:   err.Error(),
			}
		}
	case string(report.CodeNotFound):
		if !report.IsNotFound(err) {
			return &AssertionError{
				Type:     label,
				Expected: "NOT_FOUND error",
				Actual:   describeError(err),
			}
		}
		return nil
	case string(report.CodePermissionDenied):
		if !report.IsPermissionDenied(err) {
			return &AssertionError{
				Type:     label,
				Expected: "PERMISSION_DENIED error",
				Actual:   describeError(err),
			}
		}
		return nil
	}

	if step.Expect == nil {
		return nil
	}
	if step.Expect.ID != nil && out.ID != *step.Expect.ID {
		return &AssertionError{
			Type:     label,
			Expected: fmt.Sprintf("assigned id %d", *step.Expect.ID),
			Actual:   fmt.Sprintf("assigned id %d", out.ID),
		}
	}
	if step.Expect.Greeting != nil && out.Greeting != *step.Expect.Greeting {
		return &AssertionError{
			Type:     label,
			Expected: fmt.Sprintf("greeting %q", *step.Expect.Greeting),
			Actual:   fmt.Sprintf("greeting %q", out.Greeting),
		}
	}
	if len(step.Expect.Report) > 0 {
		if verr := matchReport(label, step.Expect.Report, out.Report); verr != nil {
			return verr
		}
	}
	return nil
}

// checkAssertion validates a final-state assertion against the result.
func checkAssertion(index int, a Assertion, result *Result) error {
	label := fmt.Sprintf("assertions[%d] %s", index, a.Type)

	switch a.Type {
	case AssertGreeting:
		if result.Greeting != a.Value {
			return &AssertionError{
				Type:     label,
				Expected: fmt.Sprintf("greeting %q", a.Value),
				Actual:   fmt.Sprintf("greeting %q", result.Greeting),
			}
		}

	case AssertReportCount:
		if len(result.Reports) != a.Count {
			return &AssertionError{
				Type:     label,
				Expected: fmt.Sprintf("%d reports", a.Count),
				Actual:   fmt.Sprintf("%d reports", len(result.Reports)),
			}
		}

	case AssertReport:
		var found *report.Report
		for i := range result.Reports {
			if result.Reports[i].ID == *a.ID {
				found = &result.Reports[i]
				break
			}
		}
		if a.Absent {
			if found != nil {
				return &AssertionError{
					Type:     label,
					Expected: fmt.Sprintf("no report with id %d", *a.ID),
					Actual:   fmt.Sprintf("report %d exists (author %s)", found.ID, found.Author),
				}
			}
			return nil
		}
		if found == nil {
			return &AssertionError{
				Type:     label,
				Expected: fmt.Sprintf("report with id %d", *a.ID),
				Actual:   "not present",
			}
		}
		return matchReport(label, a.Expect, *found)
	}
	return nil
}

// matchReport checks expected field values against a report. Subset
// match: only the listed keys are compared.
func matchReport(label string, expect map[string]string, rec report.Report) error {
	actual := map[string]string{
		"author":            string(rec.Author),
		"done_today":        rec.DoneToday,
		"goal_tomorrow":     rec.GoalTomorrow,
		"blocker":           rec.Blocker,
		"word_appreciation": rec.WordAppreciation,
	}
	for key, want := range expect {
		got, ok := actual[key]
		if !ok {
			return &AssertionError{
				Type:     label,
				Expected: fmt.Sprintf("known report field %q", key),
				Actual:   "no such field",
			}
		}
		if got != want {
			return &AssertionError{
				Type:     label,
				Expected: fmt.Sprintf("%s = %q", key, want),
				Actual:   fmt.Sprintf("%s = %q", key, got),
			}
		}
	}
	return nil
}

func describeError(err error) string {
	if err == nil {
		return "success"
	}
	return err.Error()
}
