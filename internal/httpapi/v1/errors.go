package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tinoosan/bookkeeper/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// toJSON writes a JSON response with status code.
func toJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "bad_request") }
func notFound(w http.ResponseWriter)               { writeErr(w, http.StatusNotFound, "not_found", "not_found") }
func conflict(w http.ResponseWriter, msg, code string) {
	writeErr(w, http.StatusConflict, msg, code)
}
func unprocessable(w http.ResponseWriter, msg, code string) {
	writeErr(w, http.StatusUnprocessableEntity, msg, code)
}
func internalError(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusInternalServerError, msg, "internal")
}

// mapValidationError normalizes domain validation errors into a code and message.
func mapValidationError(err error) (code, msg string) {
	if err == nil {
		return "", ""
	}
	msg = err.Error()
	var fe *errs.FieldError
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Error()
	case errors.Is(err, errs.ErrUnknownAccount):
		return errs.CodeUnknownAccount, msg
	default:
		return "validation_error", msg
	}
}

// writeServiceErr maps a service error onto a status code, logging anything unexpected.
func (s *Server) writeServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrUnprocessable), errors.Is(err, errs.ErrUnknownAccount):
		code, msg := mapValidationError(err)
		unprocessable(w, msg, code)
	case errors.Is(err, errs.ErrIdempotencyMismatch):
		conflict(w, "idempotency_mismatch", "idempotency_mismatch")
	case errors.Is(err, errs.ErrConflict):
		conflict(w, err.Error(), "conflict")
	case errors.Is(err, errs.ErrInvalid):
		badRequest(w, err.Error())
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		internalError(w, "internal error")
	}
}
