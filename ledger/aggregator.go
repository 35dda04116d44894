package ledger

// CustomerBalance is a customer's position folded over their whole
// transaction history.
type CustomerBalance struct {
	TotalBilled      float64       `json:"total_billed"`
	TotalPaid        float64       `json:"total_paid"`
	FinancialBalance float64       `json:"financial_balance"`
	CylinderBalance  SizeBreakdown `json:"cylinder_balance"`
	TransactionCount int           `json:"transaction_count"`
}

// CylinderBalanceTotal is the cylinder balance summed across sizes.
func (b CustomerBalance) CylinderBalanceTotal() int {
	return b.CylinderBalance.Total()
}

// Aggregate folds per-transaction totals into a customer balance. Order
// is irrelevant (plain sums) and an empty history yields the zero value,
// never NaN.
func Aggregate(totals []Totals) CustomerBalance {
	var b CustomerBalance
	for _, t := range totals {
		b.TotalBilled += t.TotalBill
		b.TotalPaid += t.AmountPaid
		b.CylinderBalance = b.CylinderBalance.Add(t.CylinderDelta)
		b.TransactionCount++
	}
	b.FinancialBalance = b.TotalBilled - b.TotalPaid
	return b
}
