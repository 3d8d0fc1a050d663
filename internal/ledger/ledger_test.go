package ledger_test

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinoosan/bookkeeper/internal/chart"
	"github.com/tinoosan/bookkeeper/internal/ledger"
)

var (
	bank    = ledger.Account{ID: "bank", Name: "Bank Account", Type: ledger.AccountTypeAsset}
	wallet  = ledger.Account{ID: "wallet", Name: "Cash", Type: ledger.AccountTypeAsset}
	card    = ledger.Account{ID: "card", Name: "Credit Card", Type: ledger.AccountTypeLiability}
	salary  = ledger.Account{ID: "salary", Name: "Salary", Type: ledger.AccountTypeIncome}
	rent    = ledger.Account{ID: "rent", Name: "Rent", Type: ledger.AccountTypeExpense}
	food    = ledger.Account{ID: "food", Name: "Groceries", Type: ledger.AccountTypeExpense}
	capital = ledger.Account{ID: "capital", Name: "Capital", Type: ledger.AccountTypeEquity}
)

func testChart() []ledger.Account {
	return []ledger.Account{bank, wallet, card, capital, salary, rent, food}
}

func brl(s string) money.Amount { return money.MustParseAmount(ledger.Currency, s) }

func day(s string) time.Time {
	d, err := ledger.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tx(id, date, value, debit, credit string) ledger.Transaction {
	return ledger.Transaction{
		ID:              id,
		Date:            day(date),
		Value:           brl(value),
		History:         "tx " + id,
		DebitAccountID:  debit,
		CreditAccountID: credit,
	}
}

func str(a money.Amount) string { return a.Decimal().String() }

// balances computes the balances of a book that fits in an amount.
func balances(accounts []ledger.Account, txs []ledger.Transaction) ledger.Balances {
	b, overflows := ledger.ComputeBalances(accounts, txs)
	if len(overflows) > 0 {
		panic(fmt.Sprintf("unexpected overflows: %v", overflows))
	}
	return b
}

// closes reports whether the trial sum of b is zero.
func closes(accounts []ledger.Account, b ledger.Balances) bool {
	sum, ok := ledger.TrialSum(accounts, b)
	return ok && sum.IsZero()
}

func render(b ledger.Balances) map[string]string {
	out := make(map[string]string, len(b))
	for k, v := range b {
		out[k] = str(v)
	}
	return out
}

func TestEffect(t *testing.T) {
	cases := []struct {
		typ    ledger.AccountType
		debit  int
		credit int
		normal ledger.Side
	}{
		{ledger.AccountTypeAsset, 1, -1, ledger.SideDebit},
		{ledger.AccountTypeExpense, 1, -1, ledger.SideDebit},
		{ledger.AccountTypeLiability, -1, 1, ledger.SideCredit},
		{ledger.AccountTypeIncome, -1, 1, ledger.SideCredit},
		{ledger.AccountTypeEquity, -1, 1, ledger.SideCredit},
	}
	for _, c := range cases {
		t.Run(string(c.typ), func(t *testing.T) {
			assert.Equal(t, c.debit, c.typ.Effect(ledger.SideDebit))
			assert.Equal(t, c.credit, c.typ.Effect(ledger.SideCredit))
			assert.Equal(t, c.normal, c.typ.NormalSide())
			assert.True(t, c.typ.Valid())
			assert.NotEmpty(t, c.typ.Label())
		})
	}
	assert.Zero(t, ledger.AccountType("bogus").Effect(ledger.SideDebit))
	assert.Zero(t, ledger.AccountTypeAsset.Effect(ledger.Side("sideways")))
	assert.False(t, ledger.AccountType("bogus").Valid())
}

func TestComputeBalances_SeedChartNoTransactions(t *testing.T) {
	accounts := chart.Seed()
	b := balances(accounts, nil)

	require.Len(t, b, len(accounts))
	for _, a := range accounts {
		assert.True(t, b.Of(a.ID).IsZero(), a.ID)
	}
	bs := ledger.ComposeBalanceSheet(accounts, b)
	assert.True(t, bs.Assets.Total.IsZero())
	assert.True(t, bs.LiabilitiesAndEquity.IsZero())
	assert.True(t, bs.Balanced)
}

func TestComputeBalances_SalaryIntoBank(t *testing.T) {
	accounts := testChart()
	txs := []ledger.Transaction{tx("01", "2024-01-05", "1000.00", "bank", "salary")}
	b := balances(accounts, txs)

	assert.Equal(t, "1000.00", str(b.Of("bank")))
	assert.Equal(t, "1000.00", str(b.Of("salary")))

	bs := ledger.ComposeBalanceSheet(accounts, b)
	assert.Equal(t, "1000.00", str(bs.Assets.Total))
	assert.Equal(t, "1000.00", str(bs.TotalIncome))
	assert.Equal(t, "1000.00", str(bs.NetResult))
	assert.Equal(t, "1000.00", str(bs.LiabilitiesAndEquity))
	assert.True(t, bs.Balanced)
}

func TestComputeBalances_Normals(t *testing.T) {
	accounts := testChart()
	txs := []ledger.Transaction{
		tx("01", "2024-01-01", "5000.00", "bank", "capital"),
		tx("02", "2024-01-02", "300.00", "food", "card"),
		tx("03", "2024-01-03", "100.00", "card", "bank"),
		tx("04", "2024-01-04", "50.00", "wallet", "bank"),
	}
	b := balances(accounts, txs)

	assert.Equal(t, "4850.00", str(b.Of("bank")))
	assert.Equal(t, "50.00", str(b.Of("wallet")))
	assert.Equal(t, "200.00", str(b.Of("card")))
	assert.Equal(t, "5000.00", str(b.Of("capital")))
	assert.Equal(t, "300.00", str(b.Of("food")))
	assets, ok := b.Total(accounts, ledger.AccountTypeAsset)
	require.True(t, ok)
	assert.Equal(t, "4900.00", str(assets))
	assert.True(t, b.Of("missing").IsZero())
}

// Every single transaction nets to zero once balances are restated debit-positive.
func TestTrialSum_SingleTransactionCloses(t *testing.T) {
	accounts := testChart()
	for _, d := range accounts {
		for _, c := range accounts {
			b := balances(accounts, []ledger.Transaction{tx("01", "2024-03-01", "123.45", d.ID, c.ID)})
			assert.True(t, closes(accounts, b), "%s/%s", d.ID, c.ID)
		}
	}
}

func randomTransactions(r *rand.Rand, accounts []ledger.Account, n int) []ledger.Transaction {
	out := make([]ledger.Transaction, 0, n)
	for i := range n {
		d := accounts[r.IntN(len(accounts))]
		c := accounts[r.IntN(len(accounts))]
		minor := r.Int64N(1_000_000) + 1
		out = append(out, ledger.Transaction{
			ID:              fmt.Sprintf("%04d", i),
			Date:            day("2024-01-01").AddDate(0, 0, r.IntN(90)),
			Value:           money.MustNewAmount(ledger.Currency, minor, 2),
			History:         "random",
			DebitAccountID:  d.ID,
			CreditAccountID: c.ID,
		})
	}
	return out
}

func TestComposeBalanceSheet_EqualityHoldsWhenEveryLegResolves(t *testing.T) {
	accounts := chart.Seed()
	r := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		txs := randomTransactions(r, accounts, 40)
		b := balances(accounts, txs)
		bs := ledger.ComposeBalanceSheet(accounts, b)
		require.True(t, bs.Balanced, "difference %s", str(bs.Difference))
		assert.True(t, closes(accounts, b))
	}
}

func TestComputeBalances_OrderIndependent(t *testing.T) {
	accounts := chart.Seed()
	r := rand.New(rand.NewPCG(3, 4))
	txs := randomTransactions(r, accounts, 60)
	want := render(balances(accounts, txs))

	for range 10 {
		shuffled := slices.Clone(txs)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, render(balances(accounts, shuffled)))
	}
}

func TestProjection_AgreesWithBalances(t *testing.T) {
	accounts := chart.Seed()
	r := rand.New(rand.NewPCG(5, 6))
	txs := randomTransactions(r, accounts, 80)
	b := balances(accounts, txs)
	for _, a := range accounts {
		p := ledger.Project(a, txs)
		assert.Equal(t, str(b.Of(a.ID)), str(p.Balance()), a.ID)
	}
}

func TestDerivations_IdempotentAndPure(t *testing.T) {
	accounts := testChart()
	txs := []ledger.Transaction{
		tx("03", "2024-02-01", "200.00", "rent", "bank"),
		tx("01", "2024-01-01", "1000.00", "bank", "salary"),
		tx("02", "2024-01-15", "40.00", "food", "ghost"),
	}
	txsBefore := slices.Clone(txs)
	accountsBefore := slices.Clone(accounts)

	b1 := balances(accounts, txs)
	b2 := balances(accounts, txs)
	assert.Equal(t, render(b1), render(b2))
	bRendered := render(b1)

	assert.Equal(t, ledger.ComposeBalanceSheet(accounts, b1), ledger.ComposeBalanceSheet(accounts, b1))
	assert.Equal(t, ledger.ComposeIncomeStatement(accounts, b1), ledger.ComposeIncomeStatement(accounts, b1))
	assert.Equal(t, ledger.Summarize(accounts, b1, 3), ledger.Summarize(accounts, b1, 3))
	p := ledger.Project(bank, txs)
	assert.Equal(t, slices.Collect(p.Entries()), slices.Collect(ledger.Project(bank, txs).Entries()))
	ledger.DanglingReferences(accounts, txs)

	assert.Equal(t, txsBefore, txs)
	assert.Equal(t, accountsBefore, accounts)
	assert.Equal(t, bRendered, render(b1))
}

func TestComputeBalances_DanglingCreditLeg(t *testing.T) {
	accounts := testChart()
	txs := []ledger.Transaction{tx("01", "2024-01-01", "75.00", "bank", "nonexistent")}

	var b ledger.Balances
	require.NotPanics(t, func() { b = balances(accounts, txs) })
	assert.Equal(t, "75.00", str(b.Of("bank")))
	assert.Len(t, b, len(accounts))
	_, ok := b["nonexistent"]
	assert.False(t, ok)

	bs := ledger.ComposeBalanceSheet(accounts, b)
	assert.False(t, bs.Balanced)
	assert.Equal(t, "75.00", str(bs.Difference))

	refs := ledger.DanglingReferences(accounts, txs)
	require.Len(t, refs, 1)
	assert.Equal(t, ledger.DanglingReference{TransactionID: "01", Side: ledger.SideCredit, AccountID: "nonexistent"}, refs[0])
}

func TestComputeBalances_BothLegsDangling(t *testing.T) {
	accounts := testChart()
	txs := []ledger.Transaction{tx("01", "2024-01-01", "75.00", "x1", "x2")}
	b := balances(accounts, txs)
	for _, v := range b {
		assert.True(t, v.IsZero())
	}
	assert.True(t, ledger.ComposeBalanceSheet(accounts, b).Balanced)
	assert.Len(t, ledger.DanglingReferences(accounts, txs), 2)
}

func TestComputeBalances_DeleteLeavesNoResidue(t *testing.T) {
	accounts := testChart()
	txs := []ledger.Transaction{
		tx("01", "2024-01-01", "1000.00", "bank", "salary"),
		tx("02", "2024-01-02", "200.00", "rent", "bank"),
		tx("03", "2024-01-03", "35.50", "food", "card"),
	}
	remaining := slices.DeleteFunc(slices.Clone(txs), func(x ledger.Transaction) bool { return x.ID == "02" })

	got := render(balances(accounts, remaining))
	want := render(balances(accounts, []ledger.Transaction{txs[0], txs[2]}))
	assert.Equal(t, want, got)
	assert.Equal(t, "1000.00", got["bank"])
	assert.Equal(t, "0.00", got["rent"])
}

func TestComputeBalances_OverflowIsReported(t *testing.T) {
	accounts := testChart()
	txs := []ledger.Transaction{
		tx("01", "2024-01-01", "60000000000000000.00", "bank", "salary"),
		tx("02", "2024-01-02", "60000000000000000.00", "bank", "salary"),
	}

	b, overflows := ledger.ComputeBalances(accounts, txs)
	assert.Equal(t, []ledger.Overflow{
		{TransactionID: "02", Side: ledger.SideDebit, AccountID: "bank"},
		{TransactionID: "02", Side: ledger.SideCredit, AccountID: "salary"},
	}, overflows)
	assert.Equal(t, "60000000000000000.00", str(b.Of("bank")))

	bs := ledger.ComposeBalanceSheet(accounts, b, overflows...)
	assert.True(t, bs.Overflow)
	assert.False(t, bs.Balanced, "an incomplete book never reports balanced")
	assert.True(t, ledger.ComposeIncomeStatement(accounts, b, overflows...).Overflow)
	assert.True(t, ledger.Summarize(accounts, b, 0, overflows...).Overflow)

	p := ledger.Project(bank, txs)
	assert.True(t, p.Overflowed())
	entries := slices.Collect(p.Entries())
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Overflow)
	assert.True(t, entries[1].Overflow)
	assert.Equal(t, "60000000000000000.00", str(entries[1].Balance))
}

func TestComposeBalanceSheet_TotalOverflow(t *testing.T) {
	accounts := testChart()
	// Each balance fits on its own; their sum does not.
	txs := []ledger.Transaction{
		tx("01", "2024-01-01", "60000000000000000.00", "bank", "salary"),
		tx("02", "2024-01-02", "60000000000000000.00", "wallet", "capital"),
	}
	b, overflows := ledger.ComputeBalances(accounts, txs)
	require.Empty(t, overflows)

	_, ok := b.Total(accounts, ledger.AccountTypeAsset)
	assert.False(t, ok)
	bs := ledger.ComposeBalanceSheet(accounts, b)
	assert.True(t, bs.Overflow)
	assert.False(t, bs.Balanced)
}

func TestComputeBalances_SkipsOtherCurrency(t *testing.T) {
	accounts := testChart()
	usd := tx("01", "2024-01-01", "10.00", "bank", "salary")
	usd.Value = money.MustParseAmount("USD", "10.00")

	b, overflows := ledger.ComputeBalances(accounts, []ledger.Transaction{usd})
	assert.Empty(t, overflows)
	assert.True(t, b.Of("bank").IsZero())
	assert.Zero(t, ledger.Project(bank, []ledger.Transaction{usd}).Len())
}

func TestWithinLimit(t *testing.T) {
	assert.True(t, ledger.WithinLimit(brl("999999999999.99")))
	assert.False(t, ledger.WithinLimit(brl("1000000000000.00")))
}
