package v1

import (
	"context"

	"github.com/tinoosan/bookkeeper/internal/ledger"
)

// IdempotencyStore abstracts idempotency key operations for single transactions.
type IdempotencyStore interface {
	// TransactionByIdempotencyKey resolves the transaction a key was first used for.
	TransactionByIdempotencyKey(ctx context.Context, key string) (ledger.Transaction, bool, error)
	// SaveIdempotencyKey stores a key mapping for a transaction.
	SaveIdempotencyKey(ctx context.Context, key, txID string) error
}

// ReadyChecker is implemented by stores and caches that can report readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
