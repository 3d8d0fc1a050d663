package ledger

import "github.com/govalues/money"

// Balances maps account ids to balances signed by each account's normal side:
// a positive asset balance is money held, a positive income balance is money earned.
type Balances map[string]money.Amount

// Overflow is a transaction leg whose posting did not fit in its account's balance.
// The balance keeps its value from before the posting.
type Overflow struct {
	TransactionID string
	Side          Side
	AccountID     string
}

// ComputeBalances derives every account's balance from the full transaction set.
//
// Every account of the chart is present in the result, at zero when it has no activity.
// A leg whose account id is not in the chart is skipped without error, so a dangling
// reference shows up only as an unbalanced balance sheet (see DanglingReferences).
// A leg in another currency is skipped the same way. A leg that would overflow its
// balance is skipped and listed in the second result; the balances are then incomplete
// and must not be reported as a balanced book.
// The result does not depend on the order of txs.
func ComputeBalances(accounts []Account, txs []Transaction) (Balances, []Overflow) {
	byID := Index(accounts)
	out := make(Balances, len(accounts))
	for _, a := range accounts {
		out[a.ID] = Zero()
	}
	overflows := make([]Overflow, 0)
	for _, tx := range txs {
		if tx.Value.Curr().Code() != Currency {
			continue
		}
		for _, leg := range []struct {
			side Side
			id   string
		}{{SideDebit, tx.DebitAccountID}, {SideCredit, tx.CreditAccountID}} {
			acc, ok := byID[leg.id]
			if !ok {
				continue
			}
			if !out.post(acc, leg.side, tx.Value) {
				overflows = append(overflows, Overflow{TransactionID: tx.ID, Side: leg.side, AccountID: acc.ID})
			}
		}
	}
	return out, overflows
}

// post adds one leg to the balance of acc and reports whether it fitted.
func (b Balances) post(acc Account, side Side, v money.Amount) bool {
	cur, ok := b[acc.ID]
	if !ok {
		cur = Zero()
	}
	var t tally
	b[acc.ID] = t.add(cur, signed(acc.Type, side, v))
	return !t.overflow
}

// Of returns the balance of account id, zero when absent.
func (b Balances) Of(id string) money.Amount {
	if v, ok := b[id]; ok {
		return v
	}
	return Zero()
}

// Total sums the balances of every account of type t.
// ok is false when the sum overflowed.
func (b Balances) Total(accounts []Account, t AccountType) (total money.Amount, ok bool) {
	var tl tally
	total = b.total(&tl, accounts, t)
	return total, !tl.overflow
}

func (b Balances) total(tl *tally, accounts []Account, t AccountType) money.Amount {
	total := Zero()
	for _, a := range accounts {
		if a.Type == t {
			total = tl.add(total, b.Of(a.ID))
		}
	}
	return total
}

// Clone returns an independent copy of b.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// TrialSum restates every balance on the debit side and adds them up.
// It is zero whenever every posted leg resolved to a chart account.
// ok is false when the sum overflowed.
func TrialSum(accounts []Account, b Balances) (sum money.Amount, ok bool) {
	var tl tally
	sum = Zero()
	for _, a := range accounts {
		sum = tl.add(sum, signed(a.Type, SideDebit, b.Of(a.ID)))
	}
	return sum, !tl.overflow
}
