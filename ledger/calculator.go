package ledger

// Totals is everything derivable from one transaction's raw breakdowns.
type Totals struct {
	RefillAmount     float64       `json:"refill_amount"`
	OutrightAmount   float64       `json:"outright_amount"`
	TotalBill        float64       `json:"total_bill"`
	AmountPaid       float64       `json:"amount_paid"`
	FinancialBalance float64       `json:"financial_balance"`
	CylinderDelta    SizeBreakdown `json:"cylinder_delta"`
}

// CylinderDeltaTotal is the net cylinder movement summed across sizes.
func (t Totals) CylinderDeltaTotal() int {
	return t.CylinderDelta.Total()
}

// RefillLineTotal prices one refill or swap line: count * price * kg.
// The per-kg multiplication is the whole point of the refill legs: a 13kg
// cylinder at 135 bills 1755, not 135.
func RefillLineTotal(count int, unitPrice float64, weightKg int) float64 {
	return float64(ClampQuantity(count)) * ClampAmount(unitPrice) * float64(weightKg)
}

// OutrightLineTotal prices an outright sale line: count * price, flat.
func OutrightLineTotal(count int, unitPrice float64) float64 {
	return float64(ClampQuantity(count)) * ClampAmount(unitPrice)
}

// RefillAmount bills the max_empty and swap_empty legs of a visit.
// return_full contributes nothing.
func RefillAmount(returns ReturnsBreakdown) float64 {
	me, se := returns.MaxEmpty, returns.SwapEmpty
	return RefillLineTotal(me.Kg6, me.Price6, WeightKg6) +
		RefillLineTotal(me.Kg13, me.Price13, WeightKg13) +
		RefillLineTotal(me.Kg50, me.Price50, WeightKg50) +
		RefillLineTotal(se.Kg6, se.Price6, WeightKg6) +
		RefillLineTotal(se.Kg13, se.Price13, WeightKg13) +
		RefillLineTotal(se.Kg50, se.Price50, WeightKg50)
}

// OutrightAmount bills the outright sale leg.
func OutrightAmount(outright OutrightBreakdown) float64 {
	return OutrightLineTotal(outright.Kg6, outright.Price6) +
		OutrightLineTotal(outright.Kg13, outright.Price13) +
		OutrightLineTotal(outright.Kg50, outright.Price50)
}

// CylinderDelta computes the net per-size cylinder movement of a visit:
// load out, minus every cylinder that came back in, minus outright sales
// (an outright cylinder changes ownership and is never owed back).
// Positive means the customer holds cylinders of ours.
func CylinderDelta(load SizeBreakdown, returns ReturnsBreakdown, outright OutrightBreakdown) SizeBreakdown {
	in := returns.SumForSizes()
	return SizeBreakdown{
		Kg6:  load.Kg6 - in.Kg6 - outright.Kg6,
		Kg13: load.Kg13 - in.Kg13 - outright.Kg13,
		Kg50: load.Kg50 - in.Kg50 - outright.Kg50,
	}
}

// ComputeTotals derives the full financial and physical picture of a
// single transaction from its raw breakdowns. It never rejects input:
// negative counts or prices are clamped to zero, mirroring the form's
// coercion policy. Enforcing the reconciliation invariant is the caller's
// job (ValidateReconciliation).
func ComputeTotals(load SizeBreakdown, returns ReturnsBreakdown, outright OutrightBreakdown, amountPaid float64) Totals {
	refill := RefillAmount(returns)
	sale := OutrightAmount(outright)
	paid := ClampAmount(amountPaid)

	return Totals{
		RefillAmount:     refill,
		OutrightAmount:   sale,
		TotalBill:        refill + sale,
		AmountPaid:       paid,
		FinancialBalance: refill + sale - paid,
		CylinderDelta:    CylinderDelta(load, returns, outright),
	}
}
