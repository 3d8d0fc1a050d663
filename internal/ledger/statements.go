package ledger

import "github.com/govalues/money"

// Outcome classifies the accumulated result of the period.
type Outcome string

const (
	OutcomeSurplus Outcome = "surplus"
	OutcomeDeficit Outcome = "deficit"
)

// OutcomeOf returns surplus for a non-negative result, deficit otherwise.
func OutcomeOf(result money.Amount) Outcome {
	if result.IsNeg() {
		return OutcomeDeficit
	}
	return OutcomeSurplus
}

// Line is an account and its balance as shown on a statement.
type Line struct {
	Account Account
	Balance money.Amount
}

// Section groups the lines of one account type with their total.
type Section struct {
	Type  AccountType
	Lines []Line
	Total money.Amount
}

// BalanceSheet presents assets against liabilities, equity and the accumulated result.
type BalanceSheet struct {
	Assets      Section
	Liabilities Section
	Equity      Section

	TotalIncome   money.Amount
	TotalExpenses money.Amount
	// NetResult is income minus expenses, carried into equity as an adjustment line.
	NetResult money.Amount
	// LiabilitiesAndEquity is Liabilities + Equity + NetResult.
	LiabilitiesAndEquity money.Amount
	// NetWorth is Assets - Liabilities.
	NetWorth money.Amount
	// Difference is Assets - LiabilitiesAndEquity; non-zero only when some leg did not resolve.
	Difference money.Amount
	// Overflow is set when a balance or a total did not fit in an amount.
	// The figures are then incomplete and Balanced is false.
	Overflow bool
	Balanced bool
}

// IncomeStatement presents accumulated income against accumulated expenses.
type IncomeStatement struct {
	Income    Section
	Expenses  Section
	NetResult money.Amount
	Outcome   Outcome
	Overflow  bool
}

func section(tl *tally, accounts []Account, b Balances, t AccountType) Section {
	s := Section{Type: t, Lines: make([]Line, 0), Total: Zero()}
	for _, a := range accounts {
		if a.Type != t {
			continue
		}
		v := b.Of(a.ID)
		s.Lines = append(s.Lines, Line{Account: a, Balance: v})
		s.Total = tl.add(s.Total, v)
	}
	return s
}

// ComposeBalanceSheet builds the balance sheet from precomputed balances.
// Lines follow chart order. overflows are the legs ComputeBalances could not post.
func ComposeBalanceSheet(accounts []Account, b Balances, overflows ...Overflow) BalanceSheet {
	tl := tally{overflow: len(overflows) > 0}
	bs := BalanceSheet{
		Assets:        section(&tl, accounts, b, AccountTypeAsset),
		Liabilities:   section(&tl, accounts, b, AccountTypeLiability),
		Equity:        section(&tl, accounts, b, AccountTypeEquity),
		TotalIncome:   b.total(&tl, accounts, AccountTypeIncome),
		TotalExpenses: b.total(&tl, accounts, AccountTypeExpense),
	}
	bs.NetResult = tl.sub(bs.TotalIncome, bs.TotalExpenses)
	bs.LiabilitiesAndEquity = tl.add(tl.add(bs.Liabilities.Total, bs.Equity.Total), bs.NetResult)
	bs.NetWorth = tl.sub(bs.Assets.Total, bs.Liabilities.Total)
	bs.Difference = tl.sub(bs.Assets.Total, bs.LiabilitiesAndEquity)
	bs.Overflow = tl.overflow
	bs.Balanced = bs.Difference.IsZero() && !bs.Overflow
	return bs
}

// ComposeIncomeStatement builds the income statement (DRE) from precomputed balances.
func ComposeIncomeStatement(accounts []Account, b Balances, overflows ...Overflow) IncomeStatement {
	tl := tally{overflow: len(overflows) > 0}
	is := IncomeStatement{
		Income:   section(&tl, accounts, b, AccountTypeIncome),
		Expenses: section(&tl, accounts, b, AccountTypeExpense),
	}
	is.NetResult = tl.sub(is.Income.Total, is.Expenses.Total)
	is.Outcome = OutcomeOf(is.NetResult)
	is.Overflow = tl.overflow
	return is
}
