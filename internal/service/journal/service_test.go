package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/govalues/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bookkeeper/internal/chart"
	"github.com/tinoosan/bookkeeper/internal/errs"
	"github.com/tinoosan/bookkeeper/internal/ledger"
	"github.com/tinoosan/bookkeeper/internal/service/account"
	"github.com/tinoosan/bookkeeper/internal/service/journal"
	"github.com/tinoosan/bookkeeper/internal/storage/memory"
)

func setup(t *testing.T) (*memory.Store, journal.Service) {
	t.Helper()
	store := memory.New()
	return store, journal.New(store, store, account.New(chart.Seed()))
}

func draft(value string) ledger.Transaction {
	return ledger.Transaction{
		Date:            time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC),
		Value:           money.MustParseAmount(ledger.Currency, value),
		History:         "  Salário junho ",
		DebitAccountID:  "a2",
		CreditAccountID: "r1",
	}
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	store, svc := setup(t)

	got, err := svc.Record(ctx, draft("1000.00"))
	require.NoError(t, err)
	id, err := uuid.Parse(got.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, "Salário junho", got.History)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), got.Date)

	stored, err := store.GetTransaction(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestRecord_NormalisesTrailingZeros(t *testing.T) {
	_, svc := setup(t)
	got, err := svc.Record(context.Background(), draft("10.500"))
	require.NoError(t, err)
	assert.Equal(t, "10.50", got.Value.Decimal().String())
}

func TestValidate(t *testing.T) {
	_, svc := setup(t)
	usd := draft("1.00")
	usd.Value = money.MustParseAmount("USD", "1.00")

	cases := []struct {
		name   string
		mutate func(*ledger.Transaction)
		code   string
		target error
	}{
		{"missing history", func(tx *ledger.Transaction) { tx.History = "   " }, errs.CodeMissingHistory, errs.ErrUnprocessable},
		{"missing date", func(tx *ledger.Transaction) { tx.Date = time.Time{} }, errs.CodeInvalidDate, errs.ErrUnprocessable},
		{"zero value", func(tx *ledger.Transaction) { tx.Value = ledger.Zero() }, errs.CodeInvalidValue, errs.ErrUnprocessable},
		{"negative value", func(tx *ledger.Transaction) { tx.Value = money.MustParseAmount(ledger.Currency, "-5.00") }, errs.CodeInvalidValue, errs.ErrUnprocessable},
		{"other currency", func(tx *ledger.Transaction) { tx.Value = usd.Value }, errs.CodeInvalidValue, errs.ErrUnprocessable},
		{"above maximum", func(tx *ledger.Transaction) { tx.Value = money.MustParseAmount(ledger.Currency, "1000000000000.00") }, errs.CodeInvalidValue, errs.ErrUnprocessable},
		{"too precise", func(tx *ledger.Transaction) { tx.Value = money.MustParseAmount(ledger.Currency, "1.005") }, errs.CodeInvalidPrecision, errs.ErrUnprocessable},
		{"missing debit", func(tx *ledger.Transaction) { tx.DebitAccountID = "" }, errs.CodeMissingAccount, errs.ErrUnprocessable},
		{"missing credit", func(tx *ledger.Transaction) { tx.CreditAccountID = "" }, errs.CodeMissingAccount, errs.ErrUnprocessable},
		{"unknown credit", func(tx *ledger.Transaction) { tx.CreditAccountID = "nonexistent" }, errs.CodeUnknownAccount, errs.ErrUnknownAccount},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tx := draft("1.00")
			c.mutate(&tx)
			err := svc.Validate(context.Background(), tx)
			require.Error(t, err)
			var fe *errs.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, c.code, fe.Code)
			assert.ErrorIs(t, err, c.target)
		})
	}

	assert.NoError(t, svc.Validate(context.Background(), draft(ledger.MaxValue.Decimal().String())), "maximum value is accepted")

	same := draft("1.00")
	same.CreditAccountID = same.DebitAccountID
	assert.NoError(t, svc.Validate(context.Background(), same), "self-transfer is a legal no-op")
}

func TestRecord_RejectedLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	store, svc := setup(t)
	before, _ := store.Snapshot(ctx)

	bad := draft("1.00")
	bad.DebitAccountID = "ghost"
	_, err := svc.Record(ctx, bad)
	assert.ErrorIs(t, err, errs.ErrUnknownAccount)

	after, _ := store.Snapshot(ctx)
	assert.Equal(t, before, after)
}

func TestRecordBatch(t *testing.T) {
	ctx := context.Background()
	store, svc := setup(t)

	bad := draft("2.00")
	bad.History = ""
	created, itemErrs, err := svc.RecordBatch(ctx, []ledger.Transaction{draft("1.00"), bad, draft("3.00")})
	require.NoError(t, err)
	assert.Nil(t, created)
	require.Len(t, itemErrs, 1)
	assert.Equal(t, 1, itemErrs[0].Index)
	assert.Equal(t, errs.CodeMissingHistory, itemErrs[0].Code)
	snap, _ := store.Snapshot(ctx)
	assert.Empty(t, snap.Transactions)

	created, itemErrs, err = svc.RecordBatch(ctx, []ledger.Transaction{draft("1.00"), draft("3.00")})
	require.NoError(t, err)
	assert.Empty(t, itemErrs)
	require.Len(t, created, 2)
	assert.Less(t, created[0].ID, created[1].ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, created[1].ID, list[0].ID, "most recent first")

	_, _, err = svc.RecordBatch(ctx, nil)
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestDeleteAndGet(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)

	a, err := svc.Record(ctx, draft("1000.00"))
	require.NoError(t, err)
	b, err := svc.Record(ctx, draft("5.00"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), errs.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, " "), errs.ErrInvalid)

	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}
