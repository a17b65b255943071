// Package cli implements farmctl, the command line client of the farm API.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

type options struct {
	output string
	app    *app
}

func (o *options) printer(cmd *cobra.Command) (printer, error) {
	return newPrinter(o.output, cmd.OutOrStdout())
}

// NewRootCommand builds the farmctl command tree. Configuration is read from the
// environment when a subcommand runs.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "farmctl",
		Short: "Manage the pig farm from the command line",
		Long: `farmctl signs in to the farm API and reads or records pigs, expenses
and vaccinations, and shows the dashboard and period reports. The session is kept in FARM_SESSION_DIR and shared with
every other farmctl process of the same user.

Environment:
  FARM_API_URL      API base URL (default http://localhost:8080)
  FARM_SESSION_DIR  session directory (default <user config dir>/granja)
  FARM_PASSWORD     password used by login when --password is omitted
  FARM_LOG_LEVEL    debug, info, warn or error (default warn)
  FARM_TIMEOUT      per request timeout (default 15s)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := opts.printer(cmd); err != nil {
				return err
			}
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			opts.app, err = newApp(cfg, cmd.ErrOrStderr())
			return err
		},
	}
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", formatTable, "output format: table, json or yaml")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newPigsCmd(opts),
		newExpensesCmd(opts),
		newVaccinationsCmd(opts),
		newDashboardCmd(opts),
		newReportCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

// ExecuteContext runs farmctl with os.Args.
func ExecuteContext(ctx context.Context, stdout, stderr io.Writer) error {
	root := NewRootCommand()
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
