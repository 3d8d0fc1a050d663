package cache

import (
	"context"
	"sync"

	"github.com/tinoosan/bookkeeper/internal/ledger"
)

// Memory keeps only the balances of the latest version seen.
type Memory struct {
	mu       sync.RWMutex
	version  int64
	balances ledger.Balances
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Get(_ context.Context, version int64) (ledger.Balances, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.balances == nil || m.version != version {
		return nil, ErrNotExists
	}
	return m.balances.Clone(), nil
}

func (m *Memory) Set(_ context.Context, version int64, b ledger.Balances) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances != nil && version < m.version {
		return nil
	}
	m.version = version
	m.balances = b.Clone()
	return nil
}
