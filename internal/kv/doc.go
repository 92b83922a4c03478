// Package kv provides the durable byte-keyed key-value substrate the ledger
// runs on.
//
// The ledger core never touches a database directly; it consumes the Store
// interface so it stays host-independent and unit-testable. Two
// implementations exist:
//
//   - SQLite (Open): durable single-file storage, WAL mode, single writer
//   - Memory (NewMemory): in-process map with copy-on-write commit, used by
//     tests and by journal replay
//
// Both implementations guarantee transactional atomicity: every write issued
// inside Update commits together, and any error rolls back all of them. This
// is what gives failed ledger operations their atomic no-op semantics.
package kv
