package cli

import (
	"github.com/spf13/cobra"
)

// NewGreetingCommand creates the greeting command group.
func NewGreetingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greeting",
		Short: "Read or replace the shared greeting",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the current greeting",
		Long: `Print the current greeting.

Examples:
  standlog greeting get --db ./standlog.db
  standlog greeting get --db ./standlog.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			led, store, err := openLedger(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			greeting, err := led.Greeting(cmd.Context())
			if err != nil {
				return ledgerExitError("failed to read greeting", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				return f.JSON(map[string]string{"greeting": greeting})
			}
			f.Text("%s", greeting)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <message>",
		Short: "Replace the greeting",
		Long: `Replace the greeting with a new message.

Any caller may set the greeting; there is no ownership check.

Examples:
  standlog greeting set "howdy" --db ./standlog.db --as alice.near`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCaller(rootOpts); err != nil {
				return err
			}
			led, store, err := openLedger(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			caller := callerID(rootOpts)
			if err := led.SetGreeting(cmd.Context(), caller, args[0]); err != nil {
				return ledgerExitError("failed to set greeting", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				return f.JSON(map[string]string{"greeting": args[0]})
			}
			f.Text("Greeting set to %q", args[0])
			return nil
		},
	}

	cmd.AddCommand(get)
	cmd.AddCommand(set)
	return cmd
}
