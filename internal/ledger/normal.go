package ledger

import "github.com/govalues/money"

// effect holds the sign a posting on each side has on an account's balance.
type effect struct {
	debit  int
	credit int
}

// normalEffects is the only place the debit/credit sign convention lives.
var normalEffects = map[AccountType]effect{
	AccountTypeAsset:     {debit: +1, credit: -1},
	AccountTypeExpense:   {debit: +1, credit: -1},
	AccountTypeLiability: {debit: -1, credit: +1},
	AccountTypeIncome:    {debit: -1, credit: +1},
	AccountTypeEquity:    {debit: -1, credit: +1},
}

// Effect returns +1 when a posting on side s increases an account of type t,
// -1 when it decreases it, and 0 for unknown types or sides.
func (t AccountType) Effect(s Side) int {
	e, ok := normalEffects[t]
	if !ok {
		return 0
	}
	switch s {
	case SideDebit:
		return e.debit
	case SideCredit:
		return e.credit
	default:
		return 0
	}
}

// NormalSide returns the side on which accounts of type t increase.
func (t AccountType) NormalSide() Side {
	if t.Effect(SideCredit) > 0 {
		return SideCredit
	}
	return SideDebit
}

// signed applies the sign convention of t to a posting of v on side s.
func signed(t AccountType, s Side, v money.Amount) money.Amount {
	switch t.Effect(s) {
	case 1:
		return v
	case -1:
		return v.Neg()
	default:
		return Zero()
	}
}

// tally chains additions and subtractions and remembers whether any of them failed.
// A failed step leaves the running value unchanged. Within one currency the only
// failure is a result beyond the precision of money.Amount.
type tally struct {
	overflow bool
}

func (t *tally) add(a, b money.Amount) money.Amount {
	v, err := a.Add(b)
	if err != nil {
		t.overflow = true
		return a
	}
	return v
}

func (t *tally) sub(a, b money.Amount) money.Amount {
	v, err := a.Sub(b)
	if err != nil {
		t.overflow = true
		return a
	}
	return v
}
