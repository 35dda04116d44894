// Package ledger implements the cylinder-and-money reconciliation model:
// per-transaction totals, per-size cylinder deltas and customer-level
// aggregation. Everything here is pure; persistence and transport live
// elsewhere.
package ledger

// Cylinder sizes handled by the business, in kilograms.
const (
	WeightKg6  = 6
	WeightKg13 = 13
	WeightKg50 = 50
)

// Default unit prices. Refill and swap prices are per kg, outright prices
// are per cylinder.
const (
	DefaultRefillPrice  = 135.0
	DefaultSwapPrice    = 160.0
	DefaultOutright6kg  = 2200.0
	DefaultOutright13kg = 4400.0
	DefaultOutright50kg = 8000.0
)

// SizeBreakdown holds a cylinder count per size.
type SizeBreakdown struct {
	Kg6  int `json:"kg6"`
	Kg13 int `json:"kg13"`
	Kg50 int `json:"kg50"`
}

// Total returns the count summed across sizes.
func (s SizeBreakdown) Total() int {
	return s.Kg6 + s.Kg13 + s.Kg50
}

// Add returns the per-size sum of two breakdowns.
func (s SizeBreakdown) Add(o SizeBreakdown) SizeBreakdown {
	return SizeBreakdown{
		Kg6:  s.Kg6 + o.Kg6,
		Kg13: s.Kg13 + o.Kg13,
		Kg50: s.Kg50 + o.Kg50,
	}
}

// PriceSet holds a unit price per cylinder size.
type PriceSet struct {
	Price6  float64 `json:"price6"`
	Price13 float64 `json:"price13"`
	Price50 float64 `json:"price50"`
}

// PricedBreakdown is a per-size count plus the unit price charged per size.
type PricedBreakdown struct {
	SizeBreakdown
	PriceSet
}

// ReturnsBreakdown classifies the cylinders a customer brought in.
// MaxEmpty is a company-brand empty returned for refill (billed per kg),
// SwapEmpty a competitor-brand empty exchanged (billed per kg at the swap
// rate) and ReturnFull a full cylinder handed back with no fee.
type ReturnsBreakdown struct {
	MaxEmpty   PricedBreakdown `json:"max_empty"`
	SwapEmpty  PricedBreakdown `json:"swap_empty"`
	ReturnFull SizeBreakdown   `json:"return_full"`
}

// SumForSizes returns the per-size total across all three return categories.
func (r ReturnsBreakdown) SumForSizes() SizeBreakdown {
	return r.MaxEmpty.SizeBreakdown.Add(r.SwapEmpty.SizeBreakdown).Add(r.ReturnFull)
}

// Total returns the grand total of returned cylinders.
func (r ReturnsBreakdown) Total() int {
	return r.SumForSizes().Total()
}

// OutrightBreakdown records brand-new cylinders sold outright. Prices are
// per cylinder, not per kg.
type OutrightBreakdown = PricedBreakdown

// DefaultReturns returns a zero-count returns breakdown carrying the
// standard refill and swap rates.
func DefaultReturns() ReturnsBreakdown {
	return ReturnsBreakdown{
		MaxEmpty: PricedBreakdown{
			PriceSet: PriceSet{Price6: DefaultRefillPrice, Price13: DefaultRefillPrice, Price50: DefaultRefillPrice},
		},
		SwapEmpty: PricedBreakdown{
			PriceSet: PriceSet{Price6: DefaultSwapPrice, Price13: DefaultSwapPrice, Price50: DefaultSwapPrice},
		},
	}
}

// DefaultOutright returns a zero-count outright breakdown carrying the
// standard per-cylinder sale prices.
func DefaultOutright() OutrightBreakdown {
	return OutrightBreakdown{
		PriceSet: PriceSet{Price6: DefaultOutright6kg, Price13: DefaultOutright13kg, Price50: DefaultOutright50kg},
	}
}
