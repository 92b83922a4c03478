package cli

import (
	"github.com/spf13/cobra"

	"github.com/standlog/standlog/internal/host"
	"github.com/standlog/standlog/internal/kv"
)

// ReplayResult holds the replay verification outcome for output.
type ReplayResult struct {
	Entries  int    `json:"entries"`
	Reports  int    `json:"reports"`
	Greeting string `json:"greeting"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Rebuild state from the journal and verify convergence",
		Long: `Replay the journal into a fresh in-memory ledger and verify that the
rebuilt state converges on the stored state.

The rebuilt journal must match the stored journal byte-for-byte, and the
final greeting, owner, and report set must be identical. A divergence
means the database was modified outside the journaled operations.

Exit codes:
  0 - Replay converged
  1 - Replay diverged or the journal is corrupt
  2 - Command error (database not found, etc.)

Examples:
  standlog replay --db ./standlog.db
  standlog replay --db ./standlog.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := kv.Open(rootOpts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer store.Close()

			summary, err := host.VerifyReplay(cmd.Context(), store)
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			if err != nil {
				if rootOpts.Format == "json" {
					encErr := f.JSONError("E_REPLAY", err.Error())
					if encErr != nil {
						return encErr
					}
				} else {
					f.Text("Replay verification failed: %v", err)
				}
				return WrapExitError(ExitFailure, "replay verification failed", err)
			}

			result := ReplayResult{
				Entries:  summary.Entries,
				Reports:  summary.Reports,
				Greeting: summary.Greeting,
			}
			if rootOpts.Format == "json" {
				return f.JSON(result)
			}
			f.Text("Replay converged: %d entries", result.Entries)
			f.Text("  Reports:  %d", result.Reports)
			f.Text("  Greeting: %q", result.Greeting)
			return nil
		},
	}
}
