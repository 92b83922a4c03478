// Package journal implements the append-only operation log of a ledger.
//
// Every successful mutation (and ledger construction itself) appends one
// entry inside the same transaction as the state change, so the journal and
// the state can never diverge: a failed call leaves neither behind.
//
// Entries are stamped with a monotonic seq - a logical clock, never a wall
// timestamp - and a call token supplied by the host. Canonical JSON encoding
// makes the journal byte-stable, which is what allows replay to compare
// rebuilt journals byte-for-byte against the original.
package journal
