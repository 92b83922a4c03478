// Package ledger implements the record store core: a greeting, an owner, and
// an ordered mapping of standup reports keyed by a persistent monotonic id.
//
// The core is host-independent. It performs no I/O beyond the kv substrate it
// is given, takes caller identity as an explicit parameter on every operation
// that needs one, and holds no locks - the host guarantees one call at a time.
//
// Behavioral notes carried over from the system this replaces:
//
//   - update_report overwrites unconditionally, inserting if absent, and
//     re-stamps the author to the current caller. Any caller may update any
//     record. Authorship is therefore not preserved across updates.
//   - delete_report is gated on the ledger owner (the identity that
//     constructed the ledger), not on the record's author.
//   - Ids are assigned from a persisted counter and never reused, so a
//     deleted id stays dead for the lifetime of the ledger.
//
// Every mutation appends one journal entry in the same transaction as the
// state change. A failed call is an atomic no-op: no state, no journal entry.
package ledger
