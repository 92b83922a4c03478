package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with the given args and returns the
// combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// testDB returns a database path in a per-test temp dir.
func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "standlog.db")
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := runCLI(t, "greeting", "get", "--db", testDB(t), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGreeting_DefaultThenSet(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, "greeting", "get", "--db", db, "--as", "olive.near")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")

	_, err = runCLI(t, "greeting", "set", "howdy", "--db", db, "--as", "alice.near")
	require.NoError(t, err)

	out, err = runCLI(t, "greeting", "get", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "howdy")
}

func TestGreeting_SetRequiresCaller(t *testing.T) {
	_, err := runCLI(t, "greeting", "set", "howdy", "--db", testDB(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGreeting_GetJSON(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, "greeting", "get", "--db", db, "--as", "olive.near", "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Hello", data["greeting"])
}

func TestReport_Lifecycle(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, "report", "add", "--db", db, "--as", "alice.near",
		"--done-today", "shipped importer",
		"--goal-tomorrow", "exports",
		"--blocker", "none",
		"--word-appreciation", "thanks bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Created report 0")

	out, err = runCLI(t, "report", "get", "0", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "alice.near")
	assert.Contains(t, out, "shipped importer")

	// Update re-stamps the author to the updating caller.
	_, err = runCLI(t, "report", "update", "0", "--db", db, "--as", "bob.near",
		"--done-today", "rewrote importer")
	require.NoError(t, err)

	out, err = runCLI(t, "report", "get", "0", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "bob.near")
	assert.Contains(t, out, "rewrote importer")

	out, err = runCLI(t, "report", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Report 0")
}

func TestReport_GetNotFoundExitCode(t *testing.T) {
	db := testDB(t)

	// Initialize the ledger so the read itself succeeds.
	_, err := runCLI(t, "greeting", "get", "--db", db, "--as", "olive.near")
	require.NoError(t, err)

	_, err = runCLI(t, "report", "get", "9", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestReport_DeleteOwnerGate(t *testing.T) {
	db := testDB(t)

	// olive.near creates the ledger and becomes the owner.
	_, err := runCLI(t, "greeting", "get", "--db", db, "--as", "olive.near")
	require.NoError(t, err)

	_, err = runCLI(t, "report", "add", "--db", db, "--as", "alice.near",
		"--done-today", "x")
	require.NoError(t, err)

	// The author is not the owner.
	_, err = runCLI(t, "report", "delete", "0", "--db", db, "--as", "alice.near")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "PERMISSION_DENIED")

	_, err = runCLI(t, "report", "delete", "0", "--db", db, "--as", "olive.near")
	require.NoError(t, err)

	// Deleting the now-empty slot again is a no-op.
	out, err := runCLI(t, "report", "delete", "0", "--db", db, "--as", "olive.near")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted report 0")
}

func TestReport_InvalidID(t *testing.T) {
	_, err := runCLI(t, "report", "get", "abc", "--db", testDB(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestJournal_ListsMutations(t *testing.T) {
	db := testDB(t)

	_, err := runCLI(t, "greeting", "set", "howdy", "--db", db, "--as", "olive.near")
	require.NoError(t, err)
	_, err = runCLI(t, "report", "add", "--db", db, "--as", "alice.near", "--done-today", "x")
	require.NoError(t, err)

	out, err := runCLI(t, "journal", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "open")
	assert.Contains(t, out, "set_greeting")
	assert.Contains(t, out, "add_report")
}

func TestReplay_Converges(t *testing.T) {
	db := testDB(t)

	_, err := runCLI(t, "greeting", "set", "howdy", "--db", db, "--as", "olive.near")
	require.NoError(t, err)
	_, err = runCLI(t, "report", "add", "--db", db, "--as", "alice.near", "--done-today", "x")
	require.NoError(t, err)
	_, err = runCLI(t, "report", "delete", "0", "--db", db, "--as", "olive.near")
	require.NoError(t, err)

	out, err := runCLI(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay converged: 4 entries")
}

func TestReplay_EmptyDatabaseFails(t *testing.T) {
	// A database that was never opened as a ledger has no journal.
	db := testDB(t)
	_, err := runCLI(t, "journal", "--db", db)
	require.NoError(t, err)

	_, err = runCLI(t, "replay", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "boom", assert.AnError)))
}
