package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrUnprocessable is used for semantic validation failures (HTTP 422)
	ErrUnprocessable = errors.New("unprocessable")
	// ErrUnknownAccount rejects a transaction leg that names an account outside the chart
	ErrUnknownAccount = errors.New("unknown_account_reference")
	// ErrIdempotencyMismatch signals a reused Idempotency-Key with a different payload
	ErrIdempotencyMismatch = errors.New("idempotency_mismatch")
)

// Validation codes reported with ErrUnprocessable / ErrUnknownAccount.
const (
	CodeInvalidValue     = "invalid_value"
	CodeInvalidPrecision = "invalid_precision"
	CodeMissingHistory   = "missing_history"
	CodeMissingAccount   = "missing_account"
	CodeUnknownAccount   = "unknown_account_reference"
	CodeInvalidDate      = "invalid_date"
)

// FieldError is a validation failure tied to one input field.
type FieldError struct {
	Field string
	Code  string
	Msg   string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Msg }

func (e *FieldError) Unwrap() error { return e.Err }

// Field builds a FieldError wrapping ErrUnprocessable.
func Field(field, code, msg string) *FieldError {
	return &FieldError{Field: field, Code: code, Msg: msg, Err: ErrUnprocessable}
}
