package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/govalues/money"
	"github.com/spf13/cobra"

	"github.com/tinoosan/bookkeeper/internal/ledger"
)

type transactionView struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	Value           string `json:"value"`
	History         string `json:"history"`
	DebitAccountID  string `json:"debit_account_id"`
	CreditAccountID string `json:"credit_account_id"`
}

func toTransactionView(tx ledger.Transaction) transactionView {
	return transactionView{
		ID:              tx.ID,
		Date:            tx.Date.Format(ledger.DateLayout),
		Value:           amount(tx.Value),
		History:         tx.History,
		DebitAccountID:  tx.DebitAccountID,
		CreditAccountID: tx.CreditAccountID,
	}
}

func newRecordCommand(opts *options) *cobra.Command {
	var date, value, history, debit, credit string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a transaction moving value from the credit account to the debit account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := parseDraft(date, value, history, debit, credit, time.Now())
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				saved, err := a.journal.Record(ctx, draft)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), toTransactionView(saved))
				}
				fprintf(cmd.OutOrStdout(), "recorded %s\n", saved.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&value, "value", "", "positive amount with at most two decimals (required)")
	cmd.Flags().StringVar(&history, "history", "", "description (required)")
	cmd.Flags().StringVar(&debit, "debit", "", "debit account id (required)")
	cmd.Flags().StringVar(&credit, "credit", "", "credit account id (required)")
	for _, f := range []string{"value", "history", "debit", "credit"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// parseDraft turns flag values into an unsaved transaction; the journal service
// performs the remaining validation.
func parseDraft(date, value, history, debit, credit string, now time.Time) (ledger.Transaction, error) {
	d := ledger.DateOf(now)
	if date != "" {
		parsed, err := ledger.ParseDate(date)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("--date: %w", err)
		}
		d = parsed
	}
	v, err := money.ParseAmount(ledger.Currency, strings.TrimSpace(value))
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("--value: %w", err)
	}
	return ledger.Transaction{
		Date:            d,
		Value:           v,
		History:         history,
		DebitAccountID:  strings.TrimSpace(debit),
		CreditAccountID: strings.TrimSpace(credit),
	}, nil
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.journal.Delete(ctx, args[0]); err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newTransactionsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "transactions",
		Short: "List transactions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				txs, err := a.journal.List(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.jsonOut {
					views := make([]transactionView, 0, len(txs))
					for _, tx := range txs {
						views = append(views, toTransactionView(tx))
					}
					return writeJSON(out, views)
				}
				tw := newTable(out)
				fprintf(tw, "ID\tDATE\tVALUE\tDEBIT\tCREDIT\tHISTORY\n")
				for _, tx := range txs {
					fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", tx.ID, tx.Date.Format(ledger.DateLayout), amount(tx.Value), tx.DebitAccountID, tx.CreditAccountID, tx.History)
				}
				return tw.Flush()
			})
		},
	}
}
