package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/standlog/standlog/internal/journal"
	"github.com/standlog/standlog/internal/kv"
)

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "journal",
		Short: "Print the operation journal in seq order",
		Long: `Print every journaled mutation in seq order.

The journal is the authoritative history: each successful mutation
appends exactly one entry, and failed calls append nothing.

Examples:
  standlog journal --db ./standlog.db
  standlog journal --db ./standlog.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := kv.Open(rootOpts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer store.Close()

			entries, err := journal.List(cmd.Context(), store)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read journal", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				payload := make([]map[string]any, 0, len(entries))
				for _, e := range entries {
					payload = append(payload, e.CanonicalMap())
				}
				return f.JSON(payload)
			}

			if len(entries) == 0 {
				f.Text("Journal is empty.")
				return nil
			}
			for _, e := range entries {
				line := describeEntry(e)
				f.Text("%4d  %-14s %-20s %s", e.Seq, e.Op, e.Caller, line)
				f.VerboseLog("      token=%s", e.CallToken)
			}
			return nil
		},
	}
}

// describeEntry renders the op-specific payload of an entry.
func describeEntry(e journal.Entry) string {
	switch {
	case e.Message != nil:
		return fmt.Sprintf("message=%q", *e.Message)
	case e.ReportID != nil && e.Fields != nil:
		return fmt.Sprintf("id=%d done_today=%q", *e.ReportID, e.Fields.DoneToday)
	case e.ReportID != nil:
		return fmt.Sprintf("id=%d", *e.ReportID)
	default:
		return ""
	}
}
