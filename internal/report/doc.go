// Package report provides the foundational types for the standlog ledger.
//
// This package contains type definitions, the error taxonomy, and canonical
// JSON encoding. All other internal packages import report; report imports
// nothing internal. This ensures it remains the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Identifiers are int64, assigned by the ledger, never by callers
//   - Caller identity is always explicit (AccountID parameter), never ambient
//   - All JSON tags use snake_case
//   - Persisted encoding is canonical JSON (sorted keys, NFC, no HTML escape)
package report
