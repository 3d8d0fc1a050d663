package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinoosan/bookkeeper/internal/ledger"
)

func newAccountsCommand(opts *options) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := ledger.AccountType(strings.ToLower(strings.TrimSpace(typ)))
			if t != "" && !t.Valid() {
				return fmt.Errorf("unknown account type %q", typ)
			}
			return withApp(cmd, opts, func(_ context.Context, a *app) error {
				accounts := a.accounts.List()
				if t != "" {
					accounts = a.accounts.ByType(t)
				}
				out := cmd.OutOrStdout()
				if opts.jsonOut {
					type view struct {
						ID          string `json:"id"`
						Name        string `json:"name"`
						Type        string `json:"type"`
						NormalSide  string `json:"normal_side"`
						Description string `json:"description,omitempty"`
					}
					views := make([]view, 0, len(accounts))
					for _, acc := range accounts {
						views = append(views, view{acc.ID, acc.Name, string(acc.Type), string(acc.Type.NormalSide()), acc.Description})
					}
					return writeJSON(out, views)
				}
				tw := newTable(out)
				fprintf(tw, "ID\tNAME\tTYPE\tNORMAL\n")
				for _, acc := range accounts {
					fprintf(tw, "%s\t%s\t%s\t%s\n", acc.ID, acc.Name, acc.Type.Label(), acc.Type.NormalSide())
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only accounts of this type (asset, liability, equity, income, expense)")
	return cmd
}
