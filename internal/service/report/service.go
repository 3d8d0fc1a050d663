// Package report derives balances, statements and ledgers from a single snapshot
// of the transaction store.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/govalues/money"

	"github.com/tinoosan/bookkeeper/internal/cache"
	"github.com/tinoosan/bookkeeper/internal/errs"
	"github.com/tinoosan/bookkeeper/internal/ledger"
)

// Repo supplies immutable snapshots of the transaction store.
type Repo interface {
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
}

// Chart supplies the chart of accounts.
type Chart interface {
	List() []ledger.Account
	Get(id string) (ledger.Account, error)
}

// Integrity describes how far the book is from balancing and why.
type Integrity struct {
	Version  int64
	Dangling []ledger.DanglingReference
	// Overflows are legs left out of the balances because they did not fit.
	Overflows  []ledger.Overflow
	Difference money.Amount
	// TrialSum is every balance restated on the debit side and summed; zero for a closed book.
	TrialSum money.Amount
	Balanced bool
}

// OK reports whether every leg resolves and fits and the balance sheet balances.
func (i Integrity) OK() bool {
	return i.Balanced && len(i.Dangling) == 0 && len(i.Overflows) == 0 && i.TrialSum.IsZero()
}

type Service interface {
	Balances(ctx context.Context) (ledger.Balances, error)
	AccountBalance(ctx context.Context, accountID string) (money.Amount, error)
	Ledger(ctx context.Context, accountID string) (ledger.Projection, error)
	BalanceSheet(ctx context.Context) (ledger.BalanceSheet, error)
	IncomeStatement(ctx context.Context) (ledger.IncomeStatement, error)
	Summary(ctx context.Context, topN int) (ledger.Summary, error)
	Integrity(ctx context.Context) (Integrity, error)
}

type service struct {
	repo   Repo
	chart  Chart
	cache  cache.Balances
	logger *slog.Logger
}

// New wires the report service. A nil cache disables memoisation; a nil logger discards.
func New(repo Repo, chart Chart, c cache.Balances, logger *slog.Logger) Service {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &service{repo: repo, chart: chart, cache: c, logger: logger}
}

// balances returns the balances of snap, reading through the cache.
// Cache failures only cost a recomputation. Balances with overflowed legs are never
// cached, so a cache hit always means a complete result.
func (s *service) balances(ctx context.Context, accounts []ledger.Account, snap ledger.Snapshot) (ledger.Balances, []ledger.Overflow) {
	b, err := s.cache.Get(ctx, snap.Version)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, cache.ErrNotExists) {
		s.logger.WarnContext(ctx, "balances cache read failed", "version", snap.Version, "err", err)
	}
	b, overflows := ledger.ComputeBalances(accounts, snap.Transactions)
	if len(overflows) > 0 {
		s.logger.ErrorContext(ctx, "balances overflowed", "version", snap.Version, "legs", len(overflows))
		return b, overflows
	}
	if err := s.cache.Set(ctx, snap.Version, b); err != nil {
		s.logger.WarnContext(ctx, "balances cache write failed", "version", snap.Version, "err", err)
	}
	return b, nil
}

// book is one snapshot together with the chart and the balances derived from it.
type book struct {
	accounts  []ledger.Account
	snap      ledger.Snapshot
	balances  ledger.Balances
	overflows []ledger.Overflow
}

func (s *service) load(ctx context.Context) (book, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return book{}, fmt.Errorf("snapshot: %w", err)
	}
	accounts := s.chart.List()
	b, overflows := s.balances(ctx, accounts, snap)
	return book{accounts: accounts, snap: snap, balances: b, overflows: overflows}, nil
}

func (s *service) Balances(ctx context.Context) (ledger.Balances, error) {
	bk, err := s.load(ctx)
	return bk.balances, err
}

func (s *service) AccountBalance(ctx context.Context, accountID string) (money.Amount, error) {
	if _, err := s.chart.Get(accountID); err != nil {
		return ledger.Zero(), err
	}
	bk, err := s.load(ctx)
	if err != nil {
		return ledger.Zero(), err
	}
	return bk.balances.Of(accountID), nil
}

func (s *service) Ledger(ctx context.Context, accountID string) (ledger.Projection, error) {
	acc, err := s.chart.Get(accountID)
	if err != nil {
		return ledger.Projection{}, err
	}
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return ledger.Projection{}, fmt.Errorf("snapshot: %w", err)
	}
	return ledger.Project(acc, snap.Transactions), nil
}

func (s *service) BalanceSheet(ctx context.Context) (ledger.BalanceSheet, error) {
	bk, err := s.load(ctx)
	if err != nil {
		return ledger.BalanceSheet{}, err
	}
	return ledger.ComposeBalanceSheet(bk.accounts, bk.balances, bk.overflows...), nil
}

func (s *service) IncomeStatement(ctx context.Context) (ledger.IncomeStatement, error) {
	bk, err := s.load(ctx)
	if err != nil {
		return ledger.IncomeStatement{}, err
	}
	return ledger.ComposeIncomeStatement(bk.accounts, bk.balances, bk.overflows...), nil
}

func (s *service) Summary(ctx context.Context, topN int) (ledger.Summary, error) {
	if topN < 0 {
		return ledger.Summary{}, fmt.Errorf("%w: top must be >= 0", errs.ErrInvalid)
	}
	bk, err := s.load(ctx)
	if err != nil {
		return ledger.Summary{}, err
	}
	sum := ledger.Summarize(bk.accounts, bk.balances, topN, bk.overflows...)
	return sum.WithRecent(bk.snap.Transactions, ledger.DefaultRecent), nil
}

func (s *service) Integrity(ctx context.Context) (Integrity, error) {
	bk, err := s.load(ctx)
	if err != nil {
		return Integrity{}, err
	}
	bs := ledger.ComposeBalanceSheet(bk.accounts, bk.balances, bk.overflows...)
	trial, ok := ledger.TrialSum(bk.accounts, bk.balances)
	if !ok {
		s.logger.ErrorContext(ctx, "trial sum overflowed", "version", bk.snap.Version)
		bs.Balanced = false
	}
	return Integrity{
		Version:    bk.snap.Version,
		Dangling:   ledger.DanglingReferences(bk.accounts, bk.snap.Transactions),
		Overflows:  bk.overflows,
		Difference: bs.Difference,
		TrialSum:   trial,
		Balanced:   bs.Balanced,
	}, nil
}
