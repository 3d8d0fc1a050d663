package ledger

// DanglingReference is a transaction leg pointing at an account id absent from the chart.
type DanglingReference struct {
	TransactionID string
	Side          Side
	AccountID     string
}

// DanglingReferences lists every unresolved leg in txs, in input order, debit before credit.
func DanglingReferences(accounts []Account, txs []Transaction) []DanglingReference {
	byID := Index(accounts)
	out := make([]DanglingReference, 0)
	for _, tx := range txs {
		if _, ok := byID[tx.DebitAccountID]; !ok {
			out = append(out, DanglingReference{TransactionID: tx.ID, Side: SideDebit, AccountID: tx.DebitAccountID})
		}
		if _, ok := byID[tx.CreditAccountID]; !ok {
			out = append(out, DanglingReference{TransactionID: tx.ID, Side: SideCredit, AccountID: tx.CreditAccountID})
		}
	}
	return out
}
