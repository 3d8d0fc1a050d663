package ledger

import (
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/govalues/money"
)

// LedgerEntry is one line of an account's running ledger.
// Debit and Credit are zero when the account is not on that side of the transaction;
// both are populated when a transaction debits and credits the same account.
type LedgerEntry struct {
	TransactionID string
	Date          time.Time
	History       string
	Debit         money.Amount
	Credit        money.Amount
	Balance       money.Amount
	// Overflow is set when the posting did not fit in the running balance,
	// which then keeps its previous value.
	Overflow bool
}

// Projection is the chronological ledger of a single account.
type Projection struct {
	account  Account
	resolved bool
	entries  []LedgerEntry
	overflow bool
}

// Project builds the running ledger of acc over txs.
//
// Entries are ordered by date, then by transaction id, which for ids minted by the host
// is insertion order. The running balance starts at zero and follows the account's
// normal side. Transactions in another currency are skipped, as ComputeBalances does.
// txs is never reordered or modified.
func Project(acc Account, txs []Transaction) Projection {
	own := make([]Transaction, 0)
	for _, tx := range txs {
		if tx.Value.Curr().Code() != Currency {
			continue
		}
		if tx.DebitAccountID == acc.ID || tx.CreditAccountID == acc.ID {
			own = append(own, tx)
		}
	}
	slices.SortStableFunc(own, func(a, b Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	running := Zero()
	overflow := false
	entries := make([]LedgerEntry, 0, len(own))
	for _, tx := range own {
		var tl tally
		e := LedgerEntry{
			TransactionID: tx.ID,
			Date:          tx.Date,
			History:       tx.History,
			Debit:         Zero(),
			Credit:        Zero(),
		}
		if tx.DebitAccountID == acc.ID {
			e.Debit = tx.Value
			running = tl.add(running, signed(acc.Type, SideDebit, tx.Value))
		}
		if tx.CreditAccountID == acc.ID {
			e.Credit = tx.Value
			running = tl.add(running, signed(acc.Type, SideCredit, tx.Value))
		}
		e.Balance = running
		e.Overflow = tl.overflow
		overflow = overflow || tl.overflow
		entries = append(entries, e)
	}
	return Projection{account: acc, resolved: true, entries: entries, overflow: overflow}
}

// ProjectByID looks id up in accounts and projects its ledger.
// An unknown id yields an unresolved, empty projection.
func ProjectByID(accounts []Account, id string, txs []Transaction) Projection {
	for _, a := range accounts {
		if a.ID == id {
			return Project(a, txs)
		}
	}
	return Projection{account: Account{ID: id}}
}

// Account returns the projected account and whether it was found in the chart.
func (p Projection) Account() (Account, bool) { return p.account, p.resolved }

// Entries yields the ledger lines in chronological order. The sequence can be ranged over
// any number of times.
func (p Projection) Entries() iter.Seq[LedgerEntry] {
	return func(yield func(LedgerEntry) bool) {
		for _, e := range p.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Overflowed reports whether any entry's posting did not fit in the running balance.
// Balances from that entry on are then incomplete.
func (p Projection) Overflowed() bool { return p.overflow }

// Len returns the number of entries.
func (p Projection) Len() int { return len(p.entries) }

// Balance returns the running balance after the last entry, zero when there are none.
func (p Projection) Balance() money.Amount {
	if len(p.entries) == 0 {
		return Zero()
	}
	return p.entries[len(p.entries)-1].Balance
}
