package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/govalues/money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tinoosan/bookkeeper/internal/ledger"
)

// withApp wires the services for one command and releases them afterwards.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

// amount formats money with exactly two decimals.
func amount(a money.Amount) string {
	units, _ := a.MinorUnits()
	return decimal.New(units, -2).StringFixed(2)
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type lineView struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
}

type sectionView struct {
	Type  string     `json:"type"`
	Label string     `json:"label"`
	Lines []lineView `json:"lines"`
	Total string     `json:"total"`
}

func toLineViews(lines []ledger.Line) []lineView {
	out := make([]lineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineView{AccountID: l.Account.ID, Name: l.Account.Name, Balance: amount(l.Balance)})
	}
	return out
}

func toSectionView(s ledger.Section) sectionView {
	return sectionView{Type: string(s.Type), Label: s.Type.Label(), Lines: toLineViews(s.Lines), Total: amount(s.Total)}
}

// printSection writes the lines of s followed by its total.
func printSection(tw *tabwriter.Writer, s ledger.Section) {
	fprintf(tw, "%s\t\t\n", s.Type.Label())
	for _, l := range s.Lines {
		fprintf(tw, "  %s\t%s\t%s\n", l.Account.ID, l.Account.Name, amount(l.Balance))
	}
	fprintf(tw, "  Total %s\t\t%s\n", s.Type.Label(), amount(s.Total))
}
