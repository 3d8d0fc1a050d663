// Package account serves lookups against the chart of accounts. The chart is loaded once
// at startup and never changes afterwards.
package account

import (
	"fmt"

	"github.com/tinoosan/bookkeeper/internal/errs"
	"github.com/tinoosan/bookkeeper/internal/ledger"
)

type Service interface {
	// List returns the whole chart in chart order.
	List() []ledger.Account
	Get(id string) (ledger.Account, error)
	ByType(t ledger.AccountType) []ledger.Account
	Exists(id string) bool
}

type service struct {
	accounts []ledger.Account
	byID     map[string]ledger.Account
}

// New indexes accounts. The slice is copied, so later changes by the caller are not seen.
func New(accounts []ledger.Account) Service {
	own := make([]ledger.Account, len(accounts))
	copy(own, accounts)
	return &service{accounts: own, byID: ledger.Index(own)}
}

func (s *service) List() []ledger.Account {
	out := make([]ledger.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

func (s *service) Get(id string) (ledger.Account, error) {
	a, ok := s.byID[id]
	if !ok {
		return ledger.Account{}, fmt.Errorf("account %q: %w", id, errs.ErrNotFound)
	}
	return a, nil
}

func (s *service) ByType(t ledger.AccountType) []ledger.Account {
	out := make([]ledger.Account, 0)
	for _, a := range s.accounts {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

func (s *service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}
