package ledger

import (
	"time"

	"github.com/govalues/money"
)

// Currency is the single currency every book is kept in.
const Currency = "BRL"

// DateLayout is the wire format of a transaction date.
const DateLayout = "2006-01-02"

// Side represents the accounting position of a transaction leg.
type Side string

const (
	// SideDebit is the leg where value enters (asset or expense increase).
	SideDebit Side = "debit"
	// SideCredit is the leg where value originates (liability, income or equity increase).
	SideCredit Side = "credit"
)

// AccountType enumerates the broad classification of an account in the chart.
type AccountType string

const (
	// AccountTypeAsset increases on the debit side and holds resources owned by the user.
	AccountTypeAsset AccountType = "asset"
	// AccountTypeLiability increases on the credit side and tracks obligations.
	AccountTypeLiability AccountType = "liability"
	// AccountTypeIncome represents inflows that increase the accumulated result.
	AccountTypeIncome AccountType = "income"
	// AccountTypeExpense represents outflows that decrease the accumulated result.
	AccountTypeExpense AccountType = "expense"
	// AccountTypeEquity captures the owner's residual interest (opening capital).
	AccountTypeEquity AccountType = "equity"
)

// AccountTypes lists every account type in statement order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeIncome,
	AccountTypeExpense,
}

var typeLabels = map[AccountType]string{
	AccountTypeAsset:     "Ativo",
	AccountTypeLiability: "Passivo",
	AccountTypeIncome:    "Receita",
	AccountTypeExpense:   "Despesa",
	AccountTypeEquity:    "Patrimônio Líquido",
}

// Label returns the display label used on statements.
func (t AccountType) Label() string { return typeLabels[t] }

// Valid reports whether t is one of the five known account types.
func (t AccountType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Account is an entry of the chart of accounts. Accounts never change once loaded.
type Account struct {
	ID          string
	Name        string
	Type        AccountType
	Description string
}

// Transaction moves Value from the credit account to the debit account.
type Transaction struct {
	ID string
	// Date is a calendar date at 00:00 UTC; time of day carries no meaning.
	Date time.Time
	// Value is always positive and kept in Currency.
	Value money.Amount
	// History is a free-text description with no role in computation.
	History         string
	DebitAccountID  string
	CreditAccountID string
}

// Snapshot is an immutable view of the transaction store at a single instant.
// Version changes every time a transaction is appended or deleted.
type Snapshot struct {
	Version      int64
	Transactions []Transaction
}

// Zero returns a zero amount in the book currency.
func Zero() money.Amount { return money.MustNewAmount(Currency, 0, 2) }

// MaxValue is the largest value a single transaction may carry: 999,999,999,999.99.
var MaxValue = money.MustNewAmount(Currency, 99_999_999_999_999, 2)

// WithinLimit reports whether v does not exceed MaxValue.
func WithinLimit(v money.Amount) bool {
	return v.Decimal().Cmp(MaxValue.Decimal()) <= 0
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// Index maps account ids to accounts.
func Index(accounts []Account) map[string]Account {
	out := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		out[a.ID] = a
	}
	return out
}
