package ledger

import (
	"slices"

	"github.com/govalues/money"
	"github.com/shopspring/decimal"
)

// DefaultTopExpenses is the number of expense accounts shown on the dashboard.
const DefaultTopExpenses = 5

// DefaultRecent is the number of latest transactions shown on the dashboard.
const DefaultRecent = 5

// Share is a line together with its fraction of a total, in percent with two decimals.
type Share struct {
	Line
	Percent decimal.Decimal
}

// Summary is the dashboard view of the book.
type Summary struct {
	TotalAssets      money.Amount
	TotalLiabilities money.Amount
	// NetEquity is Assets - Liabilities.
	NetEquity money.Amount
	NetResult money.Amount
	Outcome   Outcome
	// AssetComposition lists asset accounts with a positive balance, in chart order.
	AssetComposition []Share
	// TopExpenses lists the largest positive expense balances, largest first.
	TopExpenses []Line
	// Recent lists the latest transactions, most recent first.
	Recent []Transaction
	// Overflow is set when a balance or a total did not fit in an amount.
	Overflow bool
}

// Summarize builds the dashboard summary. topN <= 0 means DefaultTopExpenses.
// overflows are the legs ComputeBalances could not post.
func Summarize(accounts []Account, b Balances, topN int, overflows ...Overflow) Summary {
	if topN <= 0 {
		topN = DefaultTopExpenses
	}
	tl := tally{overflow: len(overflows) > 0}
	s := Summary{
		TotalAssets:      b.total(&tl, accounts, AccountTypeAsset),
		TotalLiabilities: b.total(&tl, accounts, AccountTypeLiability),
		AssetComposition: make([]Share, 0),
		TopExpenses:      make([]Line, 0),
		Recent:           make([]Transaction, 0),
	}
	s.NetEquity = tl.sub(s.TotalAssets, s.TotalLiabilities)
	s.NetResult = tl.sub(b.total(&tl, accounts, AccountTypeIncome), b.total(&tl, accounts, AccountTypeExpense))
	s.Outcome = OutcomeOf(s.NetResult)

	positive := Zero()
	var held []Line
	var spent []Line
	for _, a := range accounts {
		v := b.Of(a.ID)
		if !v.IsPos() {
			continue
		}
		switch a.Type {
		case AccountTypeAsset:
			held = append(held, Line{Account: a, Balance: v})
			positive = tl.add(positive, v)
		case AccountTypeExpense:
			spent = append(spent, Line{Account: a, Balance: v})
		}
	}

	total := decimalOf(positive)
	for _, l := range held {
		pct := decimal.Zero
		if !total.IsZero() {
			pct = decimalOf(l.Balance).Mul(decimal.NewFromInt(100)).Div(total).Round(2)
		}
		s.AssetComposition = append(s.AssetComposition, Share{Line: l, Percent: pct})
	}

	// Stable sort keeps chart order among equal balances.
	slices.SortStableFunc(spent, func(x, y Line) int {
		c, err := y.Balance.Cmp(x.Balance)
		if err != nil {
			return 0
		}
		return c
	})
	if len(spent) > topN {
		spent = spent[:topN]
	}
	s.TopExpenses = append(s.TopExpenses, spent...)
	s.Overflow = tl.overflow
	return s
}

// WithRecent returns s with the first n transactions of txs, which the store keeps
// most recent first. n <= 0 means DefaultRecent.
func (s Summary) WithRecent(txs []Transaction, n int) Summary {
	if n <= 0 {
		n = DefaultRecent
	}
	s.Recent = append(make([]Transaction, 0, min(n, len(txs))), txs[:min(n, len(txs))]...)
	return s
}

func decimalOf(a money.Amount) decimal.Decimal {
	d, err := decimal.NewFromString(a.Decimal().String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
