package v1

import (
	"encoding/json"
	"time"

	"github.com/govalues/money"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bookkeeper/internal/ledger"
	"github.com/tinoosan/bookkeeper/internal/service/report"
)

// Requests

// postTransactionRequest is the body of POST /v1/transactions and one item of a batch.
// Value accepts a JSON number or a numeric string; Date defaults to today.
type postTransactionRequest struct {
	Date            string      `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Value           json.Number `json:"value" validate:"required,numeric"`
	History         string      `json:"history" validate:"required,nonblank,max=500"`
	DebitAccountID  string      `json:"debit_account_id" validate:"required,max=64"`
	CreditAccountID string      `json:"credit_account_id" validate:"required,max=64"`
}

type postTransactionsBatchRequest struct {
	Transactions []postTransactionRequest `json:"transactions" validate:"required,min=1,max=500"`
}

// pageQuery is the validated limit/cursor pair of list endpoints.
type pageQuery struct {
	Limit  int
	Cursor string
}

type listAccountsQuery struct {
	Type ledger.AccountType
}

// Responses

// amountResponse renders money both as a fixed two-decimal string and as minor units.
type amountResponse struct {
	Amount      string `json:"amount"`
	AmountMinor int64  `json:"amount_minor"`
}

type transactionResponse struct {
	ID              string         `json:"id"`
	Date            string         `json:"date"`
	Value           amountResponse `json:"value"`
	History         string         `json:"history"`
	DebitAccountID  string         `json:"debit_account_id"`
	CreditAccountID string         `json:"credit_account_id"`
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	NextCursor   *string               `json:"next_cursor,omitempty"`
}

type accountResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	TypeLabel   string `json:"type_label"`
	NormalSide  string `json:"normal_side"`
	Description string `json:"description,omitempty"`
}

type accountBalanceResponse struct {
	AccountID string         `json:"account_id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Balance   amountResponse `json:"balance"`
}

type ledgerEntryResponse struct {
	TransactionID string         `json:"transaction_id"`
	Date          string         `json:"date"`
	History       string         `json:"history"`
	Debit         amountResponse `json:"debit"`
	Credit        amountResponse `json:"credit"`
	Balance       amountResponse `json:"balance"`
	Overflow      bool           `json:"overflow,omitempty"`
}

type ledgerResponse struct {
	Account    accountResponse       `json:"account"`
	Entries    []ledgerEntryResponse `json:"entries"`
	Balance    amountResponse        `json:"balance"`
	Overflow   bool                  `json:"overflow"`
	NextCursor *string               `json:"next_cursor,omitempty"`
}

type lineResponse struct {
	AccountID string         `json:"account_id"`
	Name      string         `json:"name"`
	Balance   amountResponse `json:"balance"`
}

type sectionResponse struct {
	Type  string         `json:"type"`
	Label string         `json:"label"`
	Lines []lineResponse `json:"lines"`
	Total amountResponse `json:"total"`
}

type balanceSheetResponse struct {
	Assets               sectionResponse `json:"assets"`
	Liabilities          sectionResponse `json:"liabilities"`
	Equity               sectionResponse `json:"equity"`
	TotalIncome          amountResponse  `json:"total_income"`
	TotalExpenses        amountResponse  `json:"total_expenses"`
	NetResult            amountResponse  `json:"net_result"`
	LiabilitiesAndEquity amountResponse  `json:"liabilities_and_equity"`
	NetWorth             amountResponse  `json:"net_worth"`
	Difference           amountResponse  `json:"difference"`
	Overflow             bool            `json:"overflow"`
	Balanced             bool            `json:"balanced"`
}

type incomeStatementResponse struct {
	Income    sectionResponse `json:"income"`
	Expenses  sectionResponse `json:"expenses"`
	NetResult amountResponse  `json:"net_result"`
	Outcome   string          `json:"outcome"`
	Overflow  bool            `json:"overflow"`
}

type shareResponse struct {
	lineResponse
	Percent string `json:"percent"`
}

type dashboardResponse struct {
	TotalAssets      amountResponse  `json:"total_assets"`
	TotalLiabilities amountResponse  `json:"total_liabilities"`
	NetEquity        amountResponse  `json:"net_equity"`
	NetResult        amountResponse  `json:"net_result"`
	Outcome          string          `json:"outcome"`
	AssetComposition []shareResponse `json:"asset_composition"`
	TopExpenses      []lineResponse        `json:"top_expenses"`
	Recent           []transactionResponse `json:"recent"`
	Overflow         bool                  `json:"overflow"`
}

// legResponse names one leg of a transaction.
type legResponse struct {
	TransactionID string `json:"transaction_id"`
	Side          string `json:"side"`
	AccountID     string `json:"account_id"`
}

type integrityResponse struct {
	Version    int64              `json:"version"`
	OK         bool               `json:"ok"`
	Balanced   bool               `json:"balanced"`
	Difference amountResponse `json:"difference"`
	TrialSum   amountResponse `json:"trial_sum"`
	Dangling   []legResponse  `json:"dangling"`
	Overflows  []legResponse  `json:"overflows"`
}

// Mapping

func toAmount(a money.Amount) amountResponse {
	units, _ := a.MinorUnits()
	return amountResponse{
		Amount:      decimal.New(units, -2).StringFixed(2),
		AmountMinor: units,
	}
}

func formatDate(t time.Time) string { return t.Format(ledger.DateLayout) }

func toTransactionResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:              tx.ID,
		Date:            formatDate(tx.Date),
		Value:           toAmount(tx.Value),
		History:         tx.History,
		DebitAccountID:  tx.DebitAccountID,
		CreditAccountID: tx.CreditAccountID,
	}
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Name:        a.Name,
		Type:        string(a.Type),
		TypeLabel:   a.Type.Label(),
		NormalSide:  string(a.Type.NormalSide()),
		Description: a.Description,
	}
}

func toLedgerEntryResponse(e ledger.LedgerEntry) ledgerEntryResponse {
	return ledgerEntryResponse{
		TransactionID: e.TransactionID,
		Date:          formatDate(e.Date),
		History:       e.History,
		Debit:         toAmount(e.Debit),
		Credit:        toAmount(e.Credit),
		Balance:       toAmount(e.Balance),
		Overflow:      e.Overflow,
	}
}

func toLineResponse(l ledger.Line) lineResponse {
	return lineResponse{AccountID: l.Account.ID, Name: l.Account.Name, Balance: toAmount(l.Balance)}
}

func toLines(lines []ledger.Line) []lineResponse {
	out := make([]lineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, toLineResponse(l))
	}
	return out
}

func toSectionResponse(sec ledger.Section) sectionResponse {
	return sectionResponse{
		Type:  string(sec.Type),
		Label: sec.Type.Label(),
		Lines: toLines(sec.Lines),
		Total: toAmount(sec.Total),
	}
}

func toBalanceSheetResponse(bs ledger.BalanceSheet) balanceSheetResponse {
	return balanceSheetResponse{
		Assets:               toSectionResponse(bs.Assets),
		Liabilities:          toSectionResponse(bs.Liabilities),
		Equity:               toSectionResponse(bs.Equity),
		TotalIncome:          toAmount(bs.TotalIncome),
		TotalExpenses:        toAmount(bs.TotalExpenses),
		NetResult:            toAmount(bs.NetResult),
		LiabilitiesAndEquity: toAmount(bs.LiabilitiesAndEquity),
		NetWorth:             toAmount(bs.NetWorth),
		Difference:           toAmount(bs.Difference),
		Overflow:             bs.Overflow,
		Balanced:             bs.Balanced,
	}
}

func toIncomeStatementResponse(is ledger.IncomeStatement) incomeStatementResponse {
	return incomeStatementResponse{
		Income:    toSectionResponse(is.Income),
		Expenses:  toSectionResponse(is.Expenses),
		NetResult: toAmount(is.NetResult),
		Outcome:   string(is.Outcome),
		Overflow:  is.Overflow,
	}
}

func toDashboardResponse(sum ledger.Summary) dashboardResponse {
	shares := make([]shareResponse, 0, len(sum.AssetComposition))
	for _, sh := range sum.AssetComposition {
		shares = append(shares, shareResponse{lineResponse: toLineResponse(sh.Line), Percent: sh.Percent.StringFixed(2)})
	}
	recent := make([]transactionResponse, 0, len(sum.Recent))
	for _, tx := range sum.Recent {
		recent = append(recent, toTransactionResponse(tx))
	}
	return dashboardResponse{
		TotalAssets:      toAmount(sum.TotalAssets),
		TotalLiabilities: toAmount(sum.TotalLiabilities),
		NetEquity:        toAmount(sum.NetEquity),
		NetResult:        toAmount(sum.NetResult),
		Outcome:          string(sum.Outcome),
		AssetComposition: shares,
		TopExpenses:      toLines(sum.TopExpenses),
		Recent:           recent,
		Overflow:         sum.Overflow,
	}
}

func toIntegrityResponse(in report.Integrity) integrityResponse {
	dangling := make([]legResponse, 0, len(in.Dangling))
	for _, d := range in.Dangling {
		dangling = append(dangling, legResponse{TransactionID: d.TransactionID, Side: string(d.Side), AccountID: d.AccountID})
	}
	overflows := make([]legResponse, 0, len(in.Overflows))
	for _, o := range in.Overflows {
		overflows = append(overflows, legResponse{TransactionID: o.TransactionID, Side: string(o.Side), AccountID: o.AccountID})
	}
	return integrityResponse{
		Version:    in.Version,
		OK:         in.OK(),
		Balanced:   in.Balanced,
		Difference: toAmount(in.Difference),
		TrialSum:   toAmount(in.TrialSum),
		Dangling:   dangling,
		Overflows:  overflows,
	}
}
