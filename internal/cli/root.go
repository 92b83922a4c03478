package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/standlog/standlog/internal/kv"
	"github.com/standlog/standlog/internal/ledger"
	"github.com/standlog/standlog/internal/report"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Database string // path to the SQLite substrate
	As       string // caller account id
	Verbose  bool
	Format   string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the standlog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "standlog",
		Short: "standlog - a journaled standup record store",
		Long: `A persistent store for daily standup reports with a shared greeting.

Every mutation is journaled; the replay command verifies that the stored
state is exactly what the journal explains.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")
	cmd.PersistentFlags().StringVar(&opts.As, "as", "", "caller account id (required for mutations)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewGreetingCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openLedger opens the substrate and constructs a ledger over it. The
// caller owns the returned store and must Close it. On a fresh database
// the --as identity becomes the immutable owner, so mutating commands
// require it; on an existing database the creator is ignored.
func openLedger(ctx context.Context, opts *RootOptions) (*ledger.Ledger, *kv.SQLite, error) {
	store, err := kv.Open(opts.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	led, err := ledger.Open(ctx, store, report.AccountID(opts.As))
	if err != nil {
		store.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	return led, store, nil
}

// callerID converts the --as flag to a ledger account id.
func callerID(opts *RootOptions) report.AccountID {
	return report.AccountID(opts.As)
}

// requireCaller rejects mutating commands invoked without --as.
func requireCaller(opts *RootOptions) error {
	if opts.As == "" {
		return NewExitError(ExitCommandError, "--as is required for this command")
	}
	return nil
}

// ledgerExitError maps a ledger error to an exit code: terminal ledger
// rejections (NOT_FOUND, PERMISSION_DENIED) are failures, everything
// else is a command error.
func ledgerExitError(message string, err error) error {
	if report.IsNotFound(err) || report.IsPermissionDenied(err) {
		return WrapExitError(ExitFailure, message, err)
	}
	return WrapExitError(ExitCommandError, message, err)
}
