package file

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/govalues/money"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bookkeeper/internal/ledger"
)

// Header is the CSV header of a ledger file.
const Header = "id,date,value,history,debit_account_id,credit_account_id"

const (
	numFields = 6
	colID     = 0
	colDate   = 1
	colValue  = 2
	colHist   = 3
	colDebit  = 4
	colCredit = 5
)

// ReadTransactions reads every row of a ledger file. Row problems are collected and
// returned together rather than stopping at the first one.
func ReadTransactions(r io.Reader) ([]ledger.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if strings.Join(records[0], ",") != Header {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(records[0], ","))
	}

	var result *multierror.Error
	txs := make([]ledger.Transaction, 0, len(records)-1)
	seen := make(map[string]int, len(records)-1)
	for i, rec := range records[1:] {
		row := i + 2
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("row %d: %w", row, err))
			continue
		}
		if prev, dup := seen[tx.ID]; dup {
			result = multierror.Append(result, fmt.Errorf("row %d: id %s already used on row %d", row, tx.ID, prev))
			continue
		}
		seen[tx.ID] = row
		txs = append(txs, tx)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return txs, nil
}

// WriteTransactions writes txs to w (including header).
func WriteTransactions(w io.Writer, txs []ledger.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range txs {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(tx ledger.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = tx.ID
	row[colDate] = tx.Date.Format(ledger.DateLayout)
	row[colValue] = toDecimal(tx.Value).StringFixed(2)
	row[colHist] = tx.History
	row[colDebit] = tx.DebitAccountID
	row[colCredit] = tx.CreditAccountID
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction. Account ids are not checked
// against the chart; dangling references are reported by the integrity check instead.
func UnmarshalTransaction(record []string) (ledger.Transaction, error) {
	if len(record) != numFields {
		return ledger.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return ledger.Transaction{}, fmt.Errorf("id is empty")
	}
	date, err := ledger.ParseDate(record[colDate])
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}
	d, err := decimal.NewFromString(record[colValue])
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("parsing value %q: %w", record[colValue], err)
	}
	if !d.IsPositive() {
		return ledger.Transaction{}, fmt.Errorf("value %q must be > 0", record[colValue])
	}
	if !d.Equal(d.Round(2)) {
		return ledger.Transaction{}, fmt.Errorf("value %q has more than 2 decimal places", record[colValue])
	}
	value, err := money.ParseAmount(ledger.Currency, d.StringFixed(2))
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("parsing value %q: %w", record[colValue], err)
	}
	if !ledger.WithinLimit(value) {
		return ledger.Transaction{}, fmt.Errorf("value %q exceeds %s", record[colValue], ledger.MaxValue.Decimal())
	}
	return ledger.Transaction{
		ID:              record[colID],
		Date:            date,
		Value:           value,
		History:         record[colHist],
		DebitAccountID:  record[colDebit],
		CreditAccountID: record[colCredit],
	}, nil
}

func toDecimal(a money.Amount) decimal.Decimal {
	d, err := decimal.NewFromString(a.Decimal().String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
