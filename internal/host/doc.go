// Package host adapts the ledger core to its execution environment.
//
// The host owns the three collaborator duties the core stays ignorant of:
// attributing a caller identity to every call, delivering calls strictly one
// at a time, and surfacing failures without persisting any effect (the core's
// transactional substrate does the actual rollback).
//
// It also implements journal replay verification: rebuilding a fresh ledger
// from the recorded journal and checking that both the rebuilt journal and
// the final state converge with the original. Since the core is
// deterministic and single-writer, any divergence means the durable state
// was modified outside the journaled operations.
package host
