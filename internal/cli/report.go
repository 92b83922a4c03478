package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/standlog/standlog/internal/report"
)

// reportFieldFlags registers the four report field flags on a command
// and returns the bound Fields value.
func reportFieldFlags(cmd *cobra.Command) *report.Fields {
	f := &report.Fields{}
	cmd.Flags().StringVar(&f.DoneToday, "done-today", "", "what was done today")
	cmd.Flags().StringVar(&f.GoalTomorrow, "goal-tomorrow", "", "goal for tomorrow")
	cmd.Flags().StringVar(&f.Blocker, "blocker", "", "current blocker")
	cmd.Flags().StringVar(&f.WordAppreciation, "word-appreciation", "", "word of appreciation")
	return f
}

// parseReportID parses a positional report id argument.
func parseReportID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "invalid report id", err)
	}
	return id, nil
}

// reportPayload shapes a report for JSON output.
func reportPayload(r report.Report) map[string]any {
	return map[string]any{
		"id":                r.ID,
		"author":            string(r.Author),
		"done_today":        r.DoneToday,
		"goal_tomorrow":     r.GoalTomorrow,
		"blocker":           r.Blocker,
		"word_appreciation": r.WordAppreciation,
	}
}

// printReportText writes a report in the multi-line text format.
func printReportText(f *OutputFormatter, r report.Report) {
	f.Text("Report %d (by %s)", r.ID, r.Author)
	f.Text("  Done today:        %s", r.DoneToday)
	f.Text("  Goal tomorrow:     %s", r.GoalTomorrow)
	f.Text("  Blocker:           %s", r.Blocker)
	f.Text("  Word appreciation: %s", r.WordAppreciation)
}

// NewReportCommand creates the report command group.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Create, read, update, and delete standup reports",
	}

	cmd.AddCommand(newReportAddCommand(rootOpts))
	cmd.AddCommand(newReportGetCommand(rootOpts))
	cmd.AddCommand(newReportUpdateCommand(rootOpts))
	cmd.AddCommand(newReportDeleteCommand(rootOpts))
	cmd.AddCommand(newReportListCommand(rootOpts))
	return cmd
}

func newReportAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new report authored by --as",
		Long: `Create a new report. The assigned id is printed on success.

Ids only move forward: a deleted report's id is never handed out again.

Examples:
  standlog report add --db ./standlog.db --as alice.near \
    --done-today "shipped importer" --goal-tomorrow "exports" \
    --blocker "none" --word-appreciation "thanks bob"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	fields := reportFieldFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireCaller(rootOpts); err != nil {
			return err
		}
		led, store, err := openLedger(cmd.Context(), rootOpts)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := led.AddReport(cmd.Context(), callerID(rootOpts), *fields)
		if err != nil {
			return ledgerExitError("failed to add report", err)
		}

		f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
		if rootOpts.Format == "json" {
			return f.JSON(map[string]any{"id": id})
		}
		f.Text("Created report %d", id)
		return nil
	}
	return cmd
}

func newReportGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a single report",
		Long: `Print a single report by id.

Exits 1 with NOT_FOUND if the id was never assigned or was deleted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReportID(args[0])
			if err != nil {
				return err
			}
			led, store, err := openLedger(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := led.Report(cmd.Context(), id)
			if err != nil {
				return ledgerExitError("failed to get report", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				return f.JSON(reportPayload(rec))
			}
			printReportText(f, rec)
			return nil
		},
	}
}

func newReportUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Overwrite a report, inserting if absent",
		Long: `Overwrite the report at id with new field values.

No existence or ownership check: the record is written whether or not it
existed, and its author becomes the --as caller.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	fields := reportFieldFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireCaller(rootOpts); err != nil {
			return err
		}
		id, err := parseReportID(args[0])
		if err != nil {
			return err
		}
		led, store, err := openLedger(cmd.Context(), rootOpts)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := led.UpdateReport(cmd.Context(), callerID(rootOpts), id, *fields); err != nil {
			return ledgerExitError("failed to update report", err)
		}

		f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
		if rootOpts.Format == "json" {
			return f.JSON(map[string]any{"id": id})
		}
		f.Text("Updated report %d", id)
		return nil
	}
	return cmd
}

func newReportDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report (owner only)",
		Long: `Delete the report at id.

Only the ledger owner may delete, regardless of who authored the record.
Deleting an id that holds no record succeeds as a no-op.

Exit codes:
  0 - Deleted (or nothing to delete)
  1 - PERMISSION_DENIED (--as is not the owner)
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCaller(rootOpts); err != nil {
				return err
			}
			id, err := parseReportID(args[0])
			if err != nil {
				return err
			}
			led, store, err := openLedger(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := led.DeleteReport(cmd.Context(), callerID(rootOpts), id); err != nil {
				return ledgerExitError("failed to delete report", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				return f.JSON(map[string]any{"id": id})
			}
			f.Text("Deleted report %d", id)
			return nil
		},
	}
}

func newReportListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "Print all reports in id order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			led, store, err := openLedger(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := led.Reports(cmd.Context())
			if err != nil {
				return ledgerExitError("failed to list reports", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				payload := make([]map[string]any, 0, len(records))
				for _, rec := range records {
					payload = append(payload, reportPayload(rec))
				}
				return f.JSON(payload)
			}

			if len(records) == 0 {
				f.Text("No reports.")
				return nil
			}
			for _, rec := range records {
				printReportText(f, rec)
			}
			return nil
		},
	}
}
