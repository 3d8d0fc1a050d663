package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeeper/internal/errs"
	"github.com/tinoosan/bookkeeper/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	// Snapshot returns the transaction set, most recent first, with its version.
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
	GetTransaction(ctx context.Context, id string) (ledger.Transaction, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	// AppendTransactions stores all of txs or none of them.
	AppendTransactions(ctx context.Context, txs ...ledger.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

// Chart resolves account ids at the entry boundary.
type Chart interface {
	Exists(id string) bool
}

// Service records, lists and deletes transactions.
type Service interface {
	Validate(ctx context.Context, tx ledger.Transaction) error
	Record(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error)
	RecordBatch(ctx context.Context, txs []ledger.Transaction) ([]ledger.Transaction, []ItemError, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]ledger.Transaction, error)
	Get(ctx context.Context, id string) (ledger.Transaction, error)
}

// ItemError represents a per-item failure in a batch operation.
type ItemError struct {
	Index int
	Code  string
	Err   error
}

type service struct {
	repo   Repo
	writer Writer
	chart  Chart
}

func New(repo Repo, writer Writer, chart Chart) Service {
	return &service{repo: repo, writer: writer, chart: chart}
}

// Validate checks a transaction before it is recorded. Unlike the balance engine,
// which skips legs it cannot resolve, entry rejects account ids outside the chart.
func (s *service) Validate(_ context.Context, tx ledger.Transaction) error {
	if strings.TrimSpace(tx.History) == "" {
		return errs.Field("history", errs.CodeMissingHistory, "history is required")
	}
	if tx.Date.IsZero() {
		return errs.Field("date", errs.CodeInvalidDate, "date is required")
	}
	if tx.Value.Curr().Code() != ledger.Currency {
		return errs.Field("value", errs.CodeInvalidValue, "value must be in "+ledger.Currency)
	}
	if !tx.Value.IsPos() {
		return errs.Field("value", errs.CodeInvalidValue, "value must be > 0")
	}
	if !ledger.WithinLimit(tx.Value) {
		return errs.Field("value", errs.CodeInvalidValue, "value must not exceed "+ledger.MaxValue.Decimal().String())
	}
	if tx.Value.Trim(2).Scale() > 2 {
		return errs.Field("value", errs.CodeInvalidPrecision, "value must have at most 2 decimal places")
	}
	for _, leg := range []struct{ field, id string }{
		{"debit_account_id", tx.DebitAccountID},
		{"credit_account_id", tx.CreditAccountID},
	} {
		if strings.TrimSpace(leg.id) == "" {
			return errs.Field(leg.field, errs.CodeMissingAccount, leg.field+" is required")
		}
		if !s.chart.Exists(leg.id) {
			return &errs.FieldError{Field: leg.field, Code: errs.CodeUnknownAccount, Msg: "unknown account " + leg.id, Err: errs.ErrUnknownAccount}
		}
	}
	return nil
}

// prepare normalises a validated transaction and assigns its id.
// UUIDv7 ids sort in creation order, which the ledger relies on for same-day entries.
func prepare(tx ledger.Transaction) (ledger.Transaction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return ledger.Transaction{}, err
	}
	tx.ID = id.String()
	tx.Date = ledger.DateOf(tx.Date)
	tx.Value = tx.Value.Trim(2)
	tx.History = strings.TrimSpace(tx.History)
	return tx, nil
}

func (s *service) Record(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	if err := s.Validate(ctx, tx); err != nil {
		return ledger.Transaction{}, err
	}
	tx, err := prepare(tx)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if err := s.writer.AppendTransactions(ctx, tx); err != nil {
		return ledger.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	return tx, nil
}

// RecordBatch validates every item first; if any item fails nothing is stored and the
// per-item errors are returned.
func (s *service) RecordBatch(ctx context.Context, txs []ledger.Transaction) ([]ledger.Transaction, []ItemError, error) {
	if len(txs) == 0 {
		return nil, nil, fmt.Errorf("%w: empty batch", errs.ErrInvalid)
	}
	itemErrs := make([]ItemError, 0)
	for i, tx := range txs {
		if err := s.Validate(ctx, tx); err != nil {
			code := "validation_error"
			var fe *errs.FieldError
			if errors.As(err, &fe) {
				code = fe.Code
			}
			itemErrs = append(itemErrs, ItemError{Index: i, Code: code, Err: err})
		}
	}
	if len(itemErrs) > 0 {
		return nil, itemErrs, nil
	}
	out := make([]ledger.Transaction, 0, len(txs))
	for _, tx := range txs {
		p, err := prepare(tx)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, p)
	}
	if err := s.writer.AppendTransactions(ctx, out...); err != nil {
		return nil, nil, fmt.Errorf("append batch: %w", err)
	}
	return out, nil, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errs.ErrInvalid
	}
	return s.writer.DeleteTransaction(ctx, id)
}

// List returns every transaction, most recent first.
func (s *service) List(ctx context.Context) ([]ledger.Transaction, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Transactions, nil
}

func (s *service) Get(ctx context.Context, id string) (ledger.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return ledger.Transaction{}, errs.ErrInvalid
	}
	return s.repo.GetTransaction(ctx, id)
}
