package v1

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/govalues/money"

	"github.com/tinoosan/bookkeeper/internal/errs"
	"github.com/tinoosan/bookkeeper/internal/ledger"
)

type ctxKey string

const (
	ctxKeyPostTransaction ctxKey = "validatedPostTransaction"
	ctxKeyPage            ctxKey = "validatedPage"
	ctxKeyListAccounts    ctxKey = "validatedListAccounts"
	ctxKeyTop             ctxKey = "validatedTop"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// now is replaced in tests.
var now = time.Now

// toDraft converts a request into an unsaved transaction. A missing date means today.
func toDraft(req postTransactionRequest) (ledger.Transaction, error) {
	date := ledger.DateOf(now())
	if req.Date != "" {
		d, err := ledger.ParseDate(req.Date)
		if err != nil {
			return ledger.Transaction{}, errs.Field("date", errs.CodeInvalidDate, "date must be YYYY-MM-DD")
		}
		date = d
	}
	value, err := money.ParseAmount(ledger.Currency, strings.TrimSpace(req.Value.String()))
	if err != nil {
		return ledger.Transaction{}, errs.Field("value", errs.CodeInvalidValue, "value is not a number")
	}
	return ledger.Transaction{
		Date:            date,
		Value:           value,
		History:         req.History,
		DebitAccountID:  strings.TrimSpace(req.DebitAccountID),
		CreditAccountID: strings.TrimSpace(req.CreditAccountID),
	}, nil
}

// checkDraft runs the request tags, then the domain validation of the journal service.
func (s *Server) checkDraft(ctx context.Context, req postTransactionRequest) (ledger.Transaction, error) {
	if err := s.validateStruct(req); err != nil {
		return ledger.Transaction{}, err
	}
	tx, err := toDraft(req)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if err := s.journal.Validate(ctx, tx); err != nil {
		return ledger.Transaction{}, err
	}
	return tx, nil
}

// validatePostTransaction decodes and validates the POST /v1/transactions body and stores
// the resulting draft in the request context for the handler to use.
func (s *Server) validatePostTransaction() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req postTransactionRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			tx, err := s.checkDraft(r.Context(), req)
			if err != nil {
				validationFailures.Inc()
				s.writeServiceErr(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostTransaction, tx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validatePage parses limit and cursor for list endpoints.
func (s *Server) validatePage() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			page := pageQuery{Limit: defaultLimit}
			if raw := q.Get("limit"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n <= 0 || n > maxLimit {
					badRequest(w, "limit must be between 1 and "+strconv.Itoa(maxLimit))
					return
				}
				page.Limit = n
			}
			if raw := q.Get("cursor"); raw != "" {
				b, err := base64.RawURLEncoding.DecodeString(raw)
				if err != nil || len(b) == 0 {
					badRequest(w, "invalid cursor")
					return
				}
				page.Cursor = string(b)
			}
			ctx := context.WithValue(r.Context(), ctxKeyPage, page)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateListAccounts parses the optional type filter of GET /v1/accounts.
func (s *Server) validateListAccounts() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var q listAccountsQuery
			if raw := r.URL.Query().Get("type"); raw != "" {
				q.Type = ledger.AccountType(strings.ToLower(raw))
				if !q.Type.Valid() {
					badRequest(w, "invalid type")
					return
				}
			}
			ctx := context.WithValue(r.Context(), ctxKeyListAccounts, q)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateDashboard parses the top parameter of GET /v1/dashboard.
func (s *Server) validateDashboard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			top := ledger.DefaultTopExpenses
			if raw := r.URL.Query().Get("top"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n <= 0 || n > maxLimit {
					badRequest(w, "top must be between 1 and "+strconv.Itoa(maxLimit))
					return
				}
				top = n
			}
			ctx := context.WithValue(r.Context(), ctxKeyTop, top)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func encodeCursor(id string) *string {
	c := base64.RawURLEncoding.EncodeToString([]byte(id))
	return &c
}

// paginate returns the window of items following cursor, and the cursor of the next window.
// ok is false when the cursor names an item no longer present.
func paginate[T any](items []T, idOf func(T) string, page pageQuery) (window []T, next *string, ok bool) {
	start := 0
	if page.Cursor != "" {
		start = -1
		for i, it := range items {
			if idOf(it) == page.Cursor {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, nil, false
		}
	}
	end := min(start+page.Limit, len(items))
	window = items[start:end]
	if end < len(items) && len(window) > 0 {
		next = encodeCursor(idOf(window[len(window)-1]))
	}
	return window, next, true
}
