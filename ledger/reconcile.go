package ledger

import "errors"

// ErrReconciliationMismatch blocks a submission whose cylinders OUT do not
// reconcile against cylinders brought in. Deliberately coarse: the message
// does not name the offending size.
var ErrReconciliationMismatch = errors.New("cylinders OUT do not match cylinders brought in for at least one size")

// ValidateReconciliation enforces the same-visit settlement rule: for each
// size the load handed out must equal the cylinders returned across all
// three categories. This is a business rule, not a physical necessity;
// it is a hard block on both the form and the server.
func ValidateReconciliation(load SizeBreakdown, returns ReturnsBreakdown) error {
	in := returns.SumForSizes()
	if load.Kg6 != in.Kg6 || load.Kg13 != in.Kg13 || load.Kg50 != in.Kg50 {
		return ErrReconciliationMismatch
	}
	return nil
}

// SuggestedLoad is the load implied by what the customer brought in plus
// what they bought outright. The form offers it as an auto-fill; the
// operator may still type a diverging load.
func SuggestedLoad(returns ReturnsBreakdown, outright OutrightBreakdown) SizeBreakdown {
	return returns.SumForSizes().Add(outright.SizeBreakdown)
}
