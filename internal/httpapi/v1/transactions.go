package v1

import (
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/tinoosan/bookkeeper/internal/ledger"
)

// postTransaction handles POST /v1/transactions. A repeated Idempotency-Key with the same
// body replays the stored transaction with 200; a different body is a 409.
func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	// Request has already been validated and is present in context
	draft, ok := r.Context().Value(ctxKeyPostTransaction).(ledger.Transaction)
	if !ok {
		internalError(w, "validated request missing")
		return
	}
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" && s.idem != nil {
		prev, found, err := s.idem.TransactionByIdempotencyKey(r.Context(), key)
		if err != nil {
			s.writeServiceErr(w, r, err)
			return
		}
		if found {
			if !sameTransaction(prev, draft) {
				conflict(w, "idempotency_mismatch", "idempotency_mismatch")
				return
			}
			toJSON(w, http.StatusOK, toTransactionResponse(prev))
			return
		}
	}

	saved, err := s.journal.Record(r.Context(), draft)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	transactionsRecorded.Inc()
	if key != "" && s.idem != nil {
		if err := s.idem.SaveIdempotencyKey(r.Context(), key, saved.ID); err != nil {
			s.log.WarnContext(r.Context(), "save idempotency key failed", "key", key, "err", err)
		}
	}
	s.observeIntegrity(r)
	toJSON(w, http.StatusCreated, toTransactionResponse(saved))
}

// sameTransaction reports whether a stored transaction matches a replayed draft.
func sameTransaction(stored, draft ledger.Transaction) bool {
	a, _ := stored.Value.MinorUnits()
	b, _ := draft.Value.MinorUnits()
	return a == b &&
		stored.Date.Equal(draft.Date) &&
		stored.History == strings.TrimSpace(draft.History) &&
		stored.DebitAccountID == draft.DebitAccountID &&
		stored.CreditAccountID == draft.CreditAccountID
}

// listTransactions handles GET /v1/transactions, most recent first.
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	page, ok := r.Context().Value(ctxKeyPage).(pageQuery)
	if !ok {
		internalError(w, "validated query missing")
		return
	}
	txs, err := s.journal.List(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	window, next, ok := paginate(txs, func(tx ledger.Transaction) string { return tx.ID }, page)
	if !ok {
		badRequest(w, "invalid cursor")
		return
	}
	resp := transactionListResponse{Transactions: make([]transactionResponse, 0, len(window)), NextCursor: next}
	for _, tx := range window {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(tx))
	}
	toJSON(w, http.StatusOK, resp)
}

// getTransaction handles GET /v1/transactions/{id}.
func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.journal.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// deleteTransaction handles DELETE /v1/transactions/{id}. Every balance derived afterwards
// is as if the transaction had never been recorded.
func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	transactionsDeleted.Inc()
	s.observeIntegrity(r)
	w.WriteHeader(http.StatusNoContent)
}
