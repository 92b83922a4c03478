package kv

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-versioning)
// 1 - slots table, WITHOUT ROWID
const currentSchemaVersion = 1

// SQLite is the durable Store implementation backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	db.SetMaxIdleConns(1) // Keep one connection ready

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// View runs fn in a transaction that forbids writes. The transaction is
// always rolled back, so even a misbehaving fn cannot persist anything.
func (s *SQLite) View(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin view tx: %w", err)
	}
	defer tx.Rollback()

	return fn(readOnlyTx{&sqliteTx{ctx: ctx, tx: tx}})
}

// Update runs fn in a writable transaction. Commits only if fn returns nil.
func (s *SQLite) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&sqliteTx{ctx: ctx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// sqliteTx implements Tx over a database/sql transaction.
type sqliteTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *sqliteTx) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	err := t.tx.QueryRowContext(t.ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (t *sqliteTx) Put(key, value []byte) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (t *sqliteTx) Delete(key []byte) error {
	_, err := t.tx.ExecContext(t.ctx, `DELETE FROM slots WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (t *sqliteTx) Ascend(prefix []byte, fn func(key, value []byte) error) error {
	// BLOB comparison is memcmp, which matches the ascending byte order the
	// interface promises.
	var rows *sql.Rows
	var err error
	if upper := prefixUpperBound(prefix); upper != nil {
		rows, err = t.tx.QueryContext(t.ctx, `
			SELECT key, value FROM slots
			WHERE key >= ? AND key < ?
			ORDER BY key ASC
		`, prefix, upper)
	} else {
		rows, err = t.tx.QueryContext(t.ctx, `
			SELECT key, value FROM slots
			WHERE key >= ?
			ORDER BY key ASC
		`, prefix)
	}
	if err != nil {
		return fmt.Errorf("ascend %q: %w", prefix, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan slot: %w", err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate slots: %w", err)
	}
	return nil
}

// readOnlyTx wraps a transaction and rejects writes. Used by View.
type readOnlyTx struct {
	tx Tx
}

func (t readOnlyTx) Get(key []byte) ([]byte, bool, error) { return t.tx.Get(key) }

func (t readOnlyTx) Ascend(prefix []byte, fn func(key, value []byte) error) error {
	return t.tx.Ascend(prefix, fn)
}

func (t readOnlyTx) Put(key, value []byte) error {
	return fmt.Errorf("put %q: transaction is read-only", key)
}

func (t readOnlyTx) Delete(key []byte) error {
	return fmt.Errorf("delete %q: transaction is read-only", key)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates the slots table if it doesn't exist and records the
// schema version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	// No incremental migrations yet; future versions hook in here before the
	// user_version bump.
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *SQLite) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
