package journal

import (
	"encoding/json"
	"fmt"

	"github.com/standlog/standlog/internal/report"
)

// Entry is one journal record. Seq is assigned by Append; every other field
// is stamped by the caller.
//
// Optional fields are pointers so absent values are omitted from the encoded
// entry entirely (canonical JSON forbids null).
type Entry struct {
	// Seq is the logical clock position of the entry. Ordering uses seq,
	// never timestamps, so replay is independent of wall time.
	Seq int64 `json:"seq"`

	// CallToken identifies the host call that produced this entry.
	CallToken string `json:"call_token"`

	// Op is the mutation that was applied.
	Op report.Op `json:"op"`

	// Caller is the identity the host attributed to the call.
	Caller report.AccountID `json:"caller"`

	// ReportID is set for add_report, update_report, and delete_report.
	ReportID *int64 `json:"report_id,omitempty"`

	// Message is set for set_greeting.
	Message *string `json:"message,omitempty"`

	// Fields is set for add_report and update_report.
	Fields *report.Fields `json:"fields,omitempty"`
}

// CanonicalMap returns the entry as a map ready for report.MarshalCanonical,
// either standalone or nested inside a golden trace snapshot.
func (e Entry) CanonicalMap() map[string]any {
	m := map[string]any{
		"seq":        e.Seq,
		"call_token": e.CallToken,
		"op":         string(e.Op),
		"caller":     string(e.Caller),
	}
	if e.ReportID != nil {
		m["report_id"] = *e.ReportID
	}
	if e.Message != nil {
		m["message"] = *e.Message
	}
	if e.Fields != nil {
		m["fields"] = map[string]any{
			"done_today":        e.Fields.DoneToday,
			"goal_tomorrow":     e.Fields.GoalTomorrow,
			"blocker":           e.Fields.Blocker,
			"word_appreciation": e.Fields.WordAppreciation,
		}
	}
	return m
}

// Encode serializes the entry to canonical JSON.
func (e Entry) Encode() ([]byte, error) {
	return report.MarshalCanonical(e.CanonicalMap())
}

// DecodeEntry parses a canonically encoded entry.
func DecodeEntry(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("decode journal entry: %w", err)
	}
	return e, nil
}
