package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeMode says whether a charge multiplies by head count or is a flat amount per family.
type ChargeMode string

const (
	ChargePerHead   ChargeMode = "per_head"
	ChargePerFamily ChargeMode = "per_family"
)

// Normalize maps anything that is not PerFamily (including the empty value) to PerHead.
func (m ChargeMode) Normalize() ChargeMode {
	if m == ChargePerFamily {
		return ChargePerFamily
	}
	return ChargePerHead
}

// EventChargeConfig is the pricing configuration of an event, owned by the event catalog.
// swagger:model EventChargeConfig
type EventChargeConfig struct {
	EventID              string          `json:"event_id"`
	EventName            string          `json:"event_name,omitempty"`
	EventDate            *time.Time      `json:"event_date,omitempty"`
	CoverCharge          decimal.Decimal `json:"cover_charge"`
	CoverChargeMode      ChargeMode      `json:"cover_charge_mode"`
	VegFoodCharge        decimal.Decimal `json:"veg_food_charge"`
	VegFoodChargeMode    ChargeMode      `json:"veg_food_charge_mode"`
	NonVegFoodCharge     decimal.Decimal `json:"non_veg_food_charge"`
	NonVegFoodChargeMode ChargeMode      `json:"non_veg_food_charge_mode"`
}

// EventCatalog resolves an event to its charge configuration.
type EventCatalog interface {
	GetChargeConfig(ctx context.Context, eventID string) (*EventChargeConfig, error)
}

// ChargeConfigCache is a short-lived cache in front of the EventCatalog.
// Get returns (nil, false, nil) on a miss.
type ChargeConfigCache interface {
	Get(ctx context.Context, eventID string) (*EventChargeConfig, bool, error)
	Set(ctx context.Context, cfg *EventChargeConfig) error
}
