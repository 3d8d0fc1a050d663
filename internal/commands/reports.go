package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinoosan/bookkeeper/internal/ledger"
)

// errOutOfBalance makes `check` exit with status 1.
var errOutOfBalance = errors.New("book out of balance")

func newBalancesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Print the balance of every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				b, err := a.reports.Balances(ctx)
				if err != nil {
					return err
				}
				accounts := a.accounts.List()
				out := cmd.OutOrStdout()
				if opts.jsonOut {
					rows := make([]lineView, 0, len(accounts))
					for _, acc := range accounts {
						rows = append(rows, lineView{AccountID: acc.ID, Name: acc.Name, Balance: amount(b.Of(acc.ID))})
					}
					return writeJSON(out, rows)
				}
				tw := newTable(out)
				fprintf(tw, "ID\tNAME\tTYPE\tBALANCE\n")
				for _, acc := range accounts {
					fprintf(tw, "%s\t%s\t%s\t%s\n", acc.ID, acc.Name, acc.Type, amount(b.Of(acc.ID)))
				}
				return tw.Flush()
			})
		},
	}
}

func newBalanceSheetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance-sheet",
		Short: "Print the balance sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				bs, err := a.reports.BalanceSheet(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.jsonOut {
					return writeJSON(out, struct {
						Assets               sectionView `json:"assets"`
						Liabilities          sectionView `json:"liabilities"`
						Equity               sectionView `json:"equity"`
						NetResult            string      `json:"net_result"`
						LiabilitiesAndEquity string      `json:"liabilities_and_equity"`
						NetWorth             string      `json:"net_worth"`
						Difference           string      `json:"difference"`
						Overflow             bool        `json:"overflow"`
						Balanced             bool        `json:"balanced"`
					}{
						Assets:               toSectionView(bs.Assets),
						Liabilities:          toSectionView(bs.Liabilities),
						Equity:               toSectionView(bs.Equity),
						NetResult:            amount(bs.NetResult),
						LiabilitiesAndEquity: amount(bs.LiabilitiesAndEquity),
						NetWorth:             amount(bs.NetWorth),
						Difference:           amount(bs.Difference),
						Overflow:             bs.Overflow,
						Balanced:             bs.Balanced,
					})
				}
				tw := newTable(out)
				printSection(tw, bs.Assets)
				printSection(tw, bs.Liabilities)
				printSection(tw, bs.Equity)
				fprintf(tw, "  Resultado Acumulado\t\t%s\n", amount(bs.NetResult))
				fprintf(tw, "Passivo + PL\t\t%s\n", amount(bs.LiabilitiesAndEquity))
				fprintf(tw, "Patrimônio Líquido Real\t\t%s\n", amount(bs.NetWorth))
				if bs.Overflow {
					fprintf(tw, "OVERFLOW\t\tfigures are incomplete\n")
				}
				if !bs.Balanced {
					fprintf(tw, "OUT OF BALANCE\t\t%s\n", amount(bs.Difference))
				}
				return tw.Flush()
			})
		},
	}
}

func newIncomeStatementCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "income-statement",
		Short: "Print accumulated income against expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				is, err := a.reports.IncomeStatement(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.jsonOut {
					return writeJSON(out, struct {
						Income    sectionView `json:"income"`
						Expenses  sectionView `json:"expenses"`
						NetResult string      `json:"net_result"`
						Outcome   string      `json:"outcome"`
					}{toSectionView(is.Income), toSectionView(is.Expenses), amount(is.NetResult), string(is.Outcome)})
				}
				tw := newTable(out)
				printSection(tw, is.Income)
				printSection(tw, is.Expenses)
				fprintf(tw, "Resultado (%s)\t\t%s\n", is.Outcome, amount(is.NetResult))
				return tw.Flush()
			})
		},
	}
}

func newDashboardCommand(opts *options) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the summary: totals, asset composition and largest expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				sum, err := a.reports.Summary(ctx, top)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.jsonOut {
					type share struct {
						lineView
						Percent string `json:"percent"`
					}
					recent := make([]transactionView, 0, len(sum.Recent))
					for _, tx := range sum.Recent {
						recent = append(recent, toTransactionView(tx))
					}
					shares := make([]share, 0, len(sum.AssetComposition))
					for _, s := range sum.AssetComposition {
						shares = append(shares, share{lineView: toLineViews([]ledger.Line{s.Line})[0], Percent: s.Percent.StringFixed(2)})
					}
					return writeJSON(out, struct {
						TotalAssets      string     `json:"total_assets"`
						TotalLiabilities string     `json:"total_liabilities"`
						NetEquity        string     `json:"net_equity"`
						NetResult        string     `json:"net_result"`
						Outcome          string     `json:"outcome"`
						AssetComposition []share           `json:"asset_composition"`
						TopExpenses      []lineView        `json:"top_expenses"`
						Recent           []transactionView `json:"recent"`
						Overflow         bool              `json:"overflow"`
					}{amount(sum.TotalAssets), amount(sum.TotalLiabilities), amount(sum.NetEquity), amount(sum.NetResult), string(sum.Outcome), shares, toLineViews(sum.TopExpenses), recent, sum.Overflow})
				}
				tw := newTable(out)
				fprintf(tw, "Ativos\t%s\n", amount(sum.TotalAssets))
				fprintf(tw, "Passivos\t%s\n", amount(sum.TotalLiabilities))
				fprintf(tw, "Patrimônio Líquido\t%s\n", amount(sum.NetEquity))
				fprintf(tw, "Resultado (%s)\t%s\n", sum.Outcome, amount(sum.NetResult))
				fprintf(tw, "\t\n")
				for _, s := range sum.AssetComposition {
					fprintf(tw, "%s\t%s%%\n", s.Account.Name, s.Percent.StringFixed(2))
				}
				fprintf(tw, "\t\n")
				for _, l := range sum.TopExpenses {
					fprintf(tw, "%s\t%s\n", l.Account.Name, amount(l.Balance))
				}
				fprintf(tw, "\t\n")
				for _, tx := range sum.Recent {
					fprintf(tw, "%s %s\t%s\n", tx.Date.Format(ledger.DateLayout), tx.History, amount(tx.Value))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&top, "top", ledger.DefaultTopExpenses, "number of expense accounts to list")
	return cmd
}

func newLedgerCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger <account-id>",
		Short: "Print the running ledger of one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				p, err := a.reports.Ledger(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.jsonOut {
					type entry struct {
						TransactionID string `json:"transaction_id"`
						Date          string `json:"date"`
						History       string `json:"history"`
						Debit         string `json:"debit"`
						Credit        string `json:"credit"`
						Balance       string `json:"balance"`
						Overflow      bool   `json:"overflow,omitempty"`
					}
					entries := make([]entry, 0, p.Len())
					for e := range p.Entries() {
						entries = append(entries, entry{e.TransactionID, e.Date.Format(ledger.DateLayout), e.History, amount(e.Debit), amount(e.Credit), amount(e.Balance), e.Overflow})
					}
					return writeJSON(out, entries)
				}
				acc, _ := p.Account()
				fprintf(out, "%s %s (%s)\n", acc.ID, acc.Name, acc.Type.Label())
				tw := newTable(out)
				fprintf(tw, "DATE\tHISTORY\tDEBIT\tCREDIT\tBALANCE\n")
				for e := range p.Entries() {
					fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Date.Format(ledger.DateLayout), e.History, amount(e.Debit), amount(e.Credit), amount(e.Balance))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				if p.Overflowed() {
					fprintf(out, "running balance overflowed; figures are incomplete\n")
				}
				return nil
			})
		},
	}
}

func newCheckCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the book balances and every transaction names a known account",
		Long:  "Exits with status 1 when the balance sheet does not balance or a transaction refers to an account outside the chart.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				in, err := a.reports.Integrity(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.jsonOut {
					if err := writeJSON(out, struct {
						OK         bool                       `json:"ok"`
						Balanced   bool                       `json:"balanced"`
						Difference string                     `json:"difference"`
						TrialSum   string                     `json:"trial_sum"`
						Dangling   []ledger.DanglingReference `json:"dangling"`
						Overflows  []ledger.Overflow          `json:"overflows"`
					}{in.OK(), in.Balanced, amount(in.Difference), amount(in.TrialSum), in.Dangling, in.Overflows}); err != nil {
						return err
					}
				} else {
					for _, d := range in.Dangling {
						fprintf(out, "transaction %s: %s account %q is not in the chart\n", d.TransactionID, d.Side, d.AccountID)
					}
					for _, o := range in.Overflows {
						fprintf(out, "transaction %s: %s leg on %q does not fit in the balance\n", o.TransactionID, o.Side, o.AccountID)
					}
					if in.Balanced {
						fprintf(out, "balanced\n")
					} else {
						fprintf(out, "out of balance by %s\n", amount(in.Difference))
					}
				}
				if !in.OK() {
					return fmt.Errorf("%w: %d dangling references, %d overflowed legs", errOutOfBalance, len(in.Dangling), len(in.Overflows))
				}
				return nil
			})
		},
	}
}
