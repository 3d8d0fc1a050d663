package v1

import (
	"github.com/tinoosan/bookkeeper/internal/storage/file"
	"github.com/tinoosan/bookkeeper/internal/storage/memory"
	"github.com/tinoosan/bookkeeper/internal/storage/postgres"
)

// Compile-time interface assertions for the stores against HTTP API interfaces.
var (
	_ IdempotencyStore = (*memory.Store)(nil)
	_ ReadyChecker     = (*memory.Store)(nil)
	_ IdempotencyStore = (*file.Store)(nil)
	_ ReadyChecker     = (*file.Store)(nil)
	_ IdempotencyStore = (*postgres.Store)(nil)
	_ ReadyChecker     = (*postgres.Store)(nil)
)
