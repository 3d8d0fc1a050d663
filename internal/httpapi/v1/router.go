// Package v1 wires the HTTP surface of the bookkeeping service.
// It keeps handlers thin, delegating business rules to the service layer.
package v1

import (
	"log/slog"
	"net/http"
	"sync"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/tinoosan/bookkeeper/internal/config"
	"github.com/tinoosan/bookkeeper/internal/service/account"
	"github.com/tinoosan/bookkeeper/internal/service/journal"
	"github.com/tinoosan/bookkeeper/internal/service/report"
)

// Deps groups what the server needs. Idempotency and Ready are optional.
type Deps struct {
	Journal     journal.Service
	Accounts    account.Service
	Reports     report.Service
	Idempotency IdempotencyStore
	Ready       []ReadyChecker
	Auth        config.AuthConfig
	Logger      *slog.Logger
}

// Server wires handlers and middleware using Chi.
type Server struct {
	journal  journal.Service
	accounts account.Service
	reports  report.Service
	idem     IdempotencyStore
	ready    []ReadyChecker
	validate *validator.Validate
	log      *slog.Logger
	rt       *chi.Mux

	batchIdemMu sync.Mutex
	batchIdem   map[string]*storedBatch
}

// New constructs the HTTP server with routes and middleware.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	if auth := authJWT(d.Auth); auth != nil {
		r.Use(auth)
	}

	s := &Server{
		journal:   d.Journal,
		accounts:  d.Accounts,
		reports:   d.Reports,
		idem:      d.Idempotency,
		ready:     d.Ready,
		validate:  newValidator(),
		log:       logger,
		rt:        r,
		batchIdem: make(map[string]*storedBatch),
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	s.rt.Route("/v1", func(r chi.Router) {
		// Transactions
		r.With(s.validatePostTransaction()).Post("/transactions", s.postTransaction)
		r.Post("/transactions/batch", s.postTransactionsBatch)
		r.With(s.validatePage()).Get("/transactions", s.listTransactions)
		r.Get("/transactions/{id}", s.getTransaction)
		r.Delete("/transactions/{id}", s.deleteTransaction)
		// Chart of accounts
		r.With(s.validateListAccounts()).Get("/accounts", s.listAccounts)
		r.Get("/accounts/{id}", s.getAccount)
		r.Get("/accounts/{id}/balance", s.getAccountBalance)
		r.With(s.validatePage()).Get("/accounts/{id}/ledger", s.getAccountLedger)
		r.Get("/account-types", s.listAccountTypes)
		// Reports
		r.Get("/balances", s.getBalances)
		r.Get("/reports/balance-sheet", s.getBalanceSheet)
		r.Get("/reports/income-statement", s.getIncomeStatement)
		r.With(s.validateDashboard()).Get("/dashboard", s.getDashboard)
		r.Get("/integrity", s.getIntegrity)
	})
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
