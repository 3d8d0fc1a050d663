package v1

import (
	"net/http"
	"slices"

	chi "github.com/go-chi/chi/v5"

	"github.com/tinoosan/bookkeeper/internal/chart"
	"github.com/tinoosan/bookkeeper/internal/ledger"
)

// listAccounts handles GET /v1/accounts?type=
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	q, ok := r.Context().Value(ctxKeyListAccounts).(listAccountsQuery)
	if !ok {
		internalError(w, "validated query missing")
		return
	}
	accounts := s.accounts.List()
	if q.Type != "" {
		accounts = s.accounts.ByType(q.Type)
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

// getAccount handles GET /v1/accounts/{id}
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.accounts.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(a))
}

// GET /v1/accounts/{id}/balance
func (s *Server) getAccountBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.accounts.Get(id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	bal, err := s.reports.AccountBalance(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, accountBalanceResponse{AccountID: a.ID, Name: a.Name, Type: string(a.Type), Balance: toAmount(bal)})
}

// GET /v1/accounts/{id}/ledger?limit=&cursor=
// Entries are chronological; each carries the running balance after it, so a page
// needs no recomputation.
func (s *Server) getAccountLedger(w http.ResponseWriter, r *http.Request) {
	page, ok := r.Context().Value(ctxKeyPage).(pageQuery)
	if !ok {
		internalError(w, "validated query missing")
		return
	}
	p, err := s.reports.Ledger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	acc, _ := p.Account()
	entries := slices.Collect(p.Entries())
	window, next, ok := paginate(entries, func(e ledger.LedgerEntry) string { return e.TransactionID }, page)
	if !ok {
		badRequest(w, "invalid cursor")
		return
	}
	resp := ledgerResponse{
		Account:    toAccountResponse(acc),
		Entries:    make([]ledgerEntryResponse, 0, len(window)),
		Balance:    toAmount(p.Balance()),
		Overflow:   p.Overflowed(),
		NextCursor: next,
	}
	for _, e := range window {
		resp.Entries = append(resp.Entries, toLedgerEntryResponse(e))
	}
	toJSON(w, http.StatusOK, resp)
}

// listAccountTypes handles GET /v1/account-types.
func (s *Server) listAccountTypes(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, chart.Types())
}
