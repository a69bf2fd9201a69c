// Package pricing computes what a unit owes for attending an event.
package pricing

import (
	"github.com/shopspring/decimal"

	"eventparticipation/internal/domain"
)

// Calculate prices a registration against an event's charge configuration.
//
// Cover charge multiplies by NumTickets under PerHead and is charged once under
// PerFamily. Veg and non-veg food are priced independently the same way against
// their own head counts. The additional contribution is added on top.
// Missing modes are treated as PerHead and missing charges as zero.
func Calculate(cfg domain.EventChargeConfig, counts domain.AttendeeCounts, additional decimal.Decimal) domain.PriceBreakdown {
	cover := portion(cfg.CoverCharge, cfg.CoverChargeMode, counts.NumTickets)
	veg := portion(cfg.VegFoodCharge, cfg.VegFoodChargeMode, counts.VegHeads)
	nonVeg := portion(cfg.NonVegFoodCharge, cfg.NonVegFoodChargeMode, counts.NonVegHeads)
	food := veg.Add(nonVeg)

	return domain.PriceBreakdown{
		CoverCost:              cover,
		VegFoodCost:            veg,
		NonVegFoodCost:         nonVeg,
		FoodCost:               food,
		AdditionalContribution: additional,
		Total:                  cover.Add(food).Add(additional),
	}
}

func portion(charge decimal.Decimal, mode domain.ChargeMode, heads int) decimal.Decimal {
	if mode.Normalize() == domain.ChargePerFamily {
		return charge
	}
	return charge.Mul(decimal.NewFromInt(int64(heads)))
}
