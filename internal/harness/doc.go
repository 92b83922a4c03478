// Package harness runs YAML-defined conformance scenarios against the
// record store.
//
// Each scenario executes in a fresh in-memory substrate with a fixed
// call-token source, so two runs of the same scenario produce identical
// journals. That determinism is what makes golden trace comparison work:
// a scenario's journal plus its final state is serialized to canonical
// JSON and compared byte-for-byte against a checked-in golden file.
//
// Scenario files are validated twice before execution: structurally
// against an embedded CUE schema (which rejects unknown ops, bad error
// codes, and misspelled keys), then field-by-field in Go for the
// per-op argument requirements the schema cannot express.
package harness
