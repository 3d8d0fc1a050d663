// Package commands implements the bookkeeper command line.
package commands

import (
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	jsonOut    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "bookkeeper",
		Short: "Personal double-entry bookkeeping",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to bookkeeper.yaml")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of tables")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newAccountsCommand(opts),
		newRecordCommand(opts),
		newDeleteCommand(opts),
		newTransactionsCommand(opts),
		newBalancesCommand(opts),
		newBalanceSheetCommand(opts),
		newIncomeStatementCommand(opts),
		newDashboardCommand(opts),
		newLedgerCommand(opts),
		newCheckCommand(opts),
	)
	return rootCmd
}
