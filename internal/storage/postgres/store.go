// Package postgres provides a pgx-backed transaction store that satisfies the
// repository and writer interfaces used by the HTTP API and services.
//
// The schema lives under db/migrations. Every append or delete bumps book_version in
// the same SQL transaction, and snapshots read that version together with the rows
// under repeatable read, so a snapshot and its version always agree.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/govalues/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinoosan/bookkeeper/internal/errs"
	"github.com/tinoosan/bookkeeper/internal/ledger"
)

const uniqueViolation = "23505"

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// Migrate applies a schema script. pgx runs multi-statement scripts in one Exec.
func (s *Store) Migrate(ctx context.Context, script string) error {
	_, err := s.pool.Exec(ctx, script)
	return err
}

const selectTransactions = `
	select id, date, value_minor, history, debit_account_id, credit_account_id
	from transactions`

func scanTransaction(row pgx.Row) (ledger.Transaction, error) {
	var tx ledger.Transaction
	var minor int64
	if err := row.Scan(&tx.ID, &tx.Date, &minor, &tx.History, &tx.DebitAccountID, &tx.CreditAccountID); err != nil {
		return ledger.Transaction{}, err
	}
	v, err := money.NewAmountFromMinorUnits(ledger.Currency, minor)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	tx.Value = v
	tx.Date = ledger.DateOf(tx.Date)
	return tx, nil
}

// Snapshot returns every transaction, most recent first, and the matching version.
func (s *Store) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return ledger.Snapshot{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var snap ledger.Snapshot
	if err := tx.QueryRow(ctx, `select version from book_version where id = 1`).Scan(&snap.Version); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("read version: %w", err)
	}
	rows, err := tx.Query(ctx, selectTransactions+` order by seq desc`)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	defer rows.Close()
	snap.Transactions = make([]ledger.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return ledger.Snapshot{}, err
		}
		snap.Transactions = append(snap.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return ledger.Snapshot{}, err
	}
	return snap, tx.Commit(ctx)
}

// GetTransaction returns one transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id string) (ledger.Transaction, error) {
	t, err := scanTransaction(s.pool.QueryRow(ctx, selectTransactions+` where id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Transaction{}, fmt.Errorf("transaction %s: %w", id, errs.ErrNotFound)
	}
	return t, err
}

// AppendTransactions inserts txs (oldest first) in a single SQL transaction.
func (s *Store) AppendTransactions(ctx context.Context, txs ...ledger.Transaction) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, t := range txs {
			minor, ok := t.Value.MinorUnits()
			if !ok {
				return fmt.Errorf("transaction %s: value out of range", t.ID)
			}
			_, err := tx.Exec(ctx, `
				insert into transactions (id, date, value_minor, history, debit_account_id, credit_account_id)
				values ($1, $2, $3, $4, $5, $6)
			`, t.ID, t.Date, minor, t.History, t.DebitAccountID, t.CreditAccountID)
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("transaction %s: %w", t.ID, errs.ErrConflict)
			}
			if err != nil {
				return err
			}
		}
		return bumpVersion(ctx, tx)
	})
}

// DeleteTransaction removes one transaction by id.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `delete from transactions where id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("transaction %s: %w", id, errs.ErrNotFound)
		}
		return bumpVersion(ctx, tx)
	})
}

func bumpVersion(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		insert into book_version (id, version) values (1, 1)
		on conflict (id) do update set version = book_version.version + 1
	`)
	return err
}

// --- Idempotency ---

// TransactionByIdempotencyKey resolves a transaction by idempotency key.
func (s *Store) TransactionByIdempotencyKey(ctx context.Context, key string) (ledger.Transaction, bool, error) {
	t, err := scanTransaction(s.pool.QueryRow(ctx, selectTransactions+`
		where id = (select transaction_id from transaction_idempotency where key = $1)
	`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Transaction{}, false, nil
	}
	if err != nil {
		return ledger.Transaction{}, false, err
	}
	return t, true, nil
}

// SaveIdempotencyKey stores a mapping from key to transaction id; an existing mapping wins.
func (s *Store) SaveIdempotencyKey(ctx context.Context, key, txID string) error {
	_, err := s.pool.Exec(ctx, `
		insert into transaction_idempotency (key, transaction_id) values ($1, $2)
		on conflict (key) do nothing
	`, key, txID)
	return err
}
