package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tinoosan/bookkeeper/internal/errs"
	"github.com/tinoosan/bookkeeper/internal/ledger"
	"github.com/tinoosan/bookkeeper/internal/service/journal"
)

type batchItemError struct {
	Index int    `json:"index"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// postTransactionsBatch handles POST /v1/transactions/batch.
// Atomic: all-or-nothing. Returns 201 with {transactions:[...]} or 422 with {errors:[...]}.
// The response is stored under the Idempotency-Key and replayed for an identical body.
func (s *Server) postTransactionsBatch(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		writeErr(w, http.StatusBadRequest, "Idempotency-Key header is required", "idempotency_required")
		return
	}
	var req postTransactionsBatchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validateStruct(req); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}

	// Hash the decoded body so whitespace and key order do not defeat replay.
	nb, _ := json.Marshal(req)
	h := hashBytes(nb)
	for {
		prev, reserved := s.reserveBatch(key, h)
		if reserved {
			break
		}
		if prev.BodyHash != h {
			conflict(w, "idempotency_mismatch", "idempotency_mismatch")
			return
		}
		if prev.Status != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(prev.Status)
			_, _ = w.Write(prev.Payload)
			return
		}
		// Same batch in flight: wait for its outcome, then replay it or take over the key.
		select {
		case <-prev.done:
		case <-r.Context().Done():
			return
		}
	}

	rw := &captureWriter{ResponseWriter: w}
	defer s.storeBatch(key, rw)

	drafts := make([]ledger.Transaction, 0, len(req.Transactions))
	itemErrs := make([]batchItemError, 0)
	for i, item := range req.Transactions {
		tx, err := s.checkItem(item)
		if err != nil {
			code, msg := mapValidationError(err)
			itemErrs = append(itemErrs, batchItemError{Index: i, Code: code, Error: msg})
			continue
		}
		drafts = append(drafts, tx)
	}
	if len(itemErrs) > 0 {
		validationFailures.Add(float64(len(itemErrs)))
		toJSON(rw, http.StatusUnprocessableEntity, struct {
			Errors []batchItemError `json:"errors"`
		}{Errors: itemErrs})
		return
	}

	created, svcErrs, err := s.journal.RecordBatch(r.Context(), drafts)
	if err != nil {
		s.writeServiceErr(rw, r, err)
		return
	}
	if len(svcErrs) > 0 {
		toJSON(rw, http.StatusUnprocessableEntity, struct {
			Errors []batchItemError `json:"errors"`
		}{Errors: toBatchItemErrors(svcErrs)})
		return
	}
	transactionsRecorded.Add(float64(len(created)))
	s.observeIntegrity(r)
	resp := struct {
		Transactions []transactionResponse `json:"transactions"`
	}{Transactions: make([]transactionResponse, 0, len(created))}
	for _, tx := range created {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(tx))
	}
	toJSON(rw, http.StatusCreated, resp)
}

// checkItem applies the request tags and converts one batch item. Domain validation is
// left to RecordBatch so it reports every failing item at once.
func (s *Server) checkItem(item postTransactionRequest) (ledger.Transaction, error) {
	if err := s.validateStruct(item); err != nil {
		return ledger.Transaction{}, err
	}
	return toDraft(item)
}

func toBatchItemErrors(in []journal.ItemError) []batchItemError {
	out := make([]batchItemError, 0, len(in))
	for _, e := range in {
		msg := e.Err.Error()
		var fe *errs.FieldError
		if errors.As(e.Err, &fe) {
			msg = fe.Error()
		}
		out = append(out, batchItemError{Index: e.Index, Code: e.Code, Error: msg})
	}
	return out
}

// reserveBatch claims key for a new batch with body hash h. When the key is taken it
// returns a copy of the entry instead.
func (s *Server) reserveBatch(key, h string) (storedBatch, bool) {
	s.batchIdemMu.Lock()
	defer s.batchIdemMu.Unlock()
	if prev, exists := s.batchIdem[key]; exists {
		return *prev, false
	}
	s.batchIdem[key] = &storedBatch{BodyHash: h, done: make(chan struct{})}
	return storedBatch{}, true
}

// storeBatch completes the reservation of key with the captured response. Server errors
// release the key instead so a retry can succeed.
func (s *Server) storeBatch(key string, rw *captureWriter) {
	s.batchIdemMu.Lock()
	defer s.batchIdemMu.Unlock()
	entry, ok := s.batchIdem[key]
	if !ok {
		return
	}
	if rw.status == 0 || rw.status >= http.StatusInternalServerError {
		delete(s.batchIdem, key)
	} else {
		entry.Status = rw.status
		entry.Payload = bytes.Clone(rw.buf.Bytes())
	}
	close(entry.done)
}
