package ledger

// LegacyTransaction is the flat per-field shape the first generation of
// the transaction form produced. It survives only in old rows; everything
// live runs on the breakdown model. Note the structural differences: one
// undifferentiated return category per size plus a separate swipe
// category, and refill prices applied per cylinder rather than per kg.
type LegacyTransaction struct {
	TotalCylinders6kg  int `json:"totalCylinders6kg"`
	TotalCylinders13kg int `json:"totalCylinders13kg"`
	TotalCylinders50kg int `json:"totalCylinders50kg"`

	Return6kg  int `json:"return6kg"`
	Return13kg int `json:"return13kg"`
	Return50kg int `json:"return50kg"`

	Outright6kg  int `json:"outright6kg"`
	Outright13kg int `json:"outright13kg"`
	Outright50kg int `json:"outright50kg"`

	SwipeReturn6kg  int `json:"swipeReturn6kg"`
	SwipeReturn13kg int `json:"swipeReturn13kg"`
	SwipeReturn50kg int `json:"swipeReturn50kg"`

	RefillPrice6kg  float64 `json:"refillPrice6kg"`
	RefillPrice13kg float64 `json:"refillPrice13kg"`
	RefillPrice50kg float64 `json:"refillPrice50kg"`

	OutrightPrice6kg  float64 `json:"outrightPrice6kg"`
	OutrightPrice13kg float64 `json:"outrightPrice13kg"`
	OutrightPrice50kg float64 `json:"outrightPrice50kg"`

	SwipeRefillPrice6kg  float64 `json:"swipeRefillPrice6kg"`
	SwipeRefillPrice13kg float64 `json:"swipeRefillPrice13kg"`
	SwipeRefillPrice50kg float64 `json:"swipeRefillPrice50kg"`

	Paid float64 `json:"paid"`
}

// FromLegacy converts a flat legacy row into the canonical breakdown
// model. Legacy returns map to max_empty, swipes to swap_empty; the
// legacy form had no fee-free full-return category.
//
// Legacy refill and swipe prices were recorded per cylinder, not per kg,
// so they are normalized here (divided by the cylinder weight): running
// the converted row back through the per-kg formula then reproduces the
// bill the legacy form showed, and every recompute path — the balance
// auditor, edit/delete reversal, statement cross-checks — agrees with
// the stored total_bill instead of inflating it by the kg factor.
// Outright prices were per cylinder in both models and pass through
// unchanged (including the old 3200/3500/8500 set).
func FromLegacy(t LegacyTransaction) (load SizeBreakdown, returns ReturnsBreakdown, outright OutrightBreakdown) {
	load = SizeBreakdown{
		Kg6:  ClampQuantity(t.TotalCylinders6kg),
		Kg13: ClampQuantity(t.TotalCylinders13kg),
		Kg50: ClampQuantity(t.TotalCylinders50kg),
	}

	returns = ReturnsBreakdown{
		MaxEmpty: PricedBreakdown{
			SizeBreakdown: SizeBreakdown{
				Kg6:  ClampQuantity(t.Return6kg),
				Kg13: ClampQuantity(t.Return13kg),
				Kg50: ClampQuantity(t.Return50kg),
			},
			PriceSet: PriceSet{
				Price6:  ClampAmount(t.RefillPrice6kg) / WeightKg6,
				Price13: ClampAmount(t.RefillPrice13kg) / WeightKg13,
				Price50: ClampAmount(t.RefillPrice50kg) / WeightKg50,
			},
		},
		SwapEmpty: PricedBreakdown{
			SizeBreakdown: SizeBreakdown{
				Kg6:  ClampQuantity(t.SwipeReturn6kg),
				Kg13: ClampQuantity(t.SwipeReturn13kg),
				Kg50: ClampQuantity(t.SwipeReturn50kg),
			},
			PriceSet: PriceSet{
				Price6:  ClampAmount(t.SwipeRefillPrice6kg) / WeightKg6,
				Price13: ClampAmount(t.SwipeRefillPrice13kg) / WeightKg13,
				Price50: ClampAmount(t.SwipeRefillPrice50kg) / WeightKg50,
			},
		},
	}

	outright = OutrightBreakdown{
		SizeBreakdown: SizeBreakdown{
			Kg6:  ClampQuantity(t.Outright6kg),
			Kg13: ClampQuantity(t.Outright13kg),
			Kg50: ClampQuantity(t.Outright50kg),
		},
		PriceSet: PriceSet{
			Price6:  ClampAmount(t.OutrightPrice6kg),
			Price13: ClampAmount(t.OutrightPrice13kg),
			Price50: ClampAmount(t.OutrightPrice50kg),
		},
	}

	return load, returns, outright
}
