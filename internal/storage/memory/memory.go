// Package memory provides an in-memory transaction store used for development and tests,
// and as the working set of the CSV file store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/tinoosan/bookkeeper/internal/errs"
	"github.com/tinoosan/bookkeeper/internal/ledger"
)

// PersistFunc is called with the complete transaction list, most recent first, before a
// mutation becomes visible. An error aborts the mutation.
type PersistFunc func(txs []ledger.Transaction) error

// Store is an in-memory implementation of the repository+writer used by the API.
// It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
	mu sync.RWMutex
	// txs is ordered most recent first.
	txs     []ledger.Transaction
	version int64
	persist PersistFunc
	// Idempotency: key -> transaction id
	idem map[string]string
}

// New constructs an empty in-memory store.
func New() *Store { return NewPersistent(nil, nil) }

// NewPersistent constructs a store holding initial (most recent first) that calls persist
// on every mutation.
//
// Versions start at the construction time in nanoseconds so that a balances cache shared
// between runs never confuses two books.
func NewPersistent(initial []ledger.Transaction, persist PersistFunc) *Store {
	return &Store{
		txs:     slices.Clone(initial),
		version: time.Now().UnixNano(),
		persist: persist,
		idem:    make(map[string]string),
	}
}

// Seed appends txs without validation, oldest first. Tests use it to load legacy data
// such as transactions pointing at accounts missing from the chart.
func (s *Store) Seed(txs ...ledger.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = prepend(s.txs, txs)
	s.version++
}

// Replace swaps the whole transaction list, most recent first, without persisting it.
// Idempotency keys whose transactions are gone become free again.
func (s *Store) Replace(txs []ledger.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = slices.Clone(txs)
	s.version++
}

func prepend(cur, added []ledger.Transaction) []ledger.Transaction {
	out := make([]ledger.Transaction, 0, len(cur)+len(added))
	for i := len(added) - 1; i >= 0; i-- {
		out = append(out, added[i])
	}
	return append(out, cur...)
}

// Snapshot implements journal.Repo.
func (s *Store) Snapshot(_ context.Context) (ledger.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.Snapshot{Version: s.version, Transactions: slices.Clone(s.txs)}, nil
}

// GetTransaction implements journal.Repo.
func (s *Store) GetTransaction(_ context.Context, id string) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return ledger.Transaction{}, fmt.Errorf("transaction %s: %w", id, errs.ErrNotFound)
}

// AppendTransactions implements journal.Writer. txs are given oldest first.
func (s *Store) AppendTransactions(_ context.Context, txs ...ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		if slices.ContainsFunc(s.txs, func(cur ledger.Transaction) bool { return cur.ID == tx.ID }) {
			return fmt.Errorf("transaction %s: %w", tx.ID, errs.ErrConflict)
		}
	}
	next := prepend(s.txs, txs)
	if s.persist != nil {
		if err := s.persist(next); err != nil {
			return err
		}
	}
	s.txs = next
	s.version++
	return nil
}

// DeleteTransaction implements journal.Writer.
func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.txs, func(tx ledger.Transaction) bool { return tx.ID == id })
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, errs.ErrNotFound)
	}
	next := slices.Delete(slices.Clone(s.txs), i, i+1)
	if s.persist != nil {
		if err := s.persist(next); err != nil {
			return err
		}
	}
	s.txs = next
	s.version++
	return nil
}

// TransactionByIdempotencyKey implements httpapi.IdempotencyStore.
func (s *Store) TransactionByIdempotencyKey(_ context.Context, key string) (ledger.Transaction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.idem[key]
	if !ok {
		return ledger.Transaction{}, false, nil
	}
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, true, nil
		}
	}
	// the transaction was deleted since; the key is free again
	return ledger.Transaction{}, false, nil
}

// SaveIdempotencyKey implements httpapi.IdempotencyStore.
func (s *Store) SaveIdempotencyKey(_ context.Context, key, txID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Only set if absent (or its transaction was deleted) to preserve idempotency
	if prev, exists := s.idem[key]; exists && slices.ContainsFunc(s.txs, func(tx ledger.Transaction) bool { return tx.ID == prev }) {
		return nil
	}
	s.idem[key] = txID
	return nil
}

// Ready implements httpapi.ReadyChecker.
func (s *Store) Ready(context.Context) error { return nil }
