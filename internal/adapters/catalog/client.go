package catalog

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eventparticipation/internal/adapters/upstream"
	"eventparticipation/internal/domain"
)

// ServiceName labels event catalog calls in errors, spans and metrics.
const ServiceName = "event_catalog"

type charges struct {
	CoverCharges          *decimal.Decimal `json:"coverCharges"`
	CoverChargesType      string           `json:"coverChargesType"`
	VegFoodCharges        *decimal.Decimal `json:"vegFoodCharges"`
	VegFoodChargesType    string           `json:"vegFoodChargesType"`
	NonVegFoodCharges     *decimal.Decimal `json:"nonVegFoodCharges"`
	NonVegFoodChargesType string           `json:"nonVegFoodChargesType"`
}

type eventResponse struct {
	Name         string   `json:"name"`
	Time         string   `json:"time"`
	CloseDate    string   `json:"close_date"`
	Subscription charges  `json:"subscription"`
	Food         *charges `json:"food"`
}

type httpCatalog struct {
	client *upstream.Client
}

// NewHTTPCatalog returns an EventCatalog backed by the event service at
// GET {base}/events/events/{id}.
func NewHTTPCatalog(client *upstream.Client) domain.EventCatalog {
	return &httpCatalog{client: client}
}

func (c *httpCatalog) GetChargeConfig(ctx context.Context, eventID string) (*domain.EventChargeConfig, error) {
	var resp eventResponse
	if err := c.client.GetJSON(ctx, "/events/events/"+url.PathEscape(eventID), &resp); err != nil {
		return nil, err
	}
	return resp.toConfig(eventID), nil
}

// toConfig reads cover charges from subscription. Food charges come from food
// when present and from subscription otherwise. Missing amounts are zero.
func (r eventResponse) toConfig(eventID string) *domain.EventChargeConfig {
	food := r.Subscription
	if r.Food != nil {
		food = *r.Food
	}
	cfg := &domain.EventChargeConfig{
		EventID:              eventID,
		EventName:            r.Name,
		CoverCharge:          amount(r.Subscription.CoverCharges),
		CoverChargeMode:      domain.ChargeMode(r.Subscription.CoverChargesType).Normalize(),
		VegFoodCharge:        amount(food.VegFoodCharges),
		VegFoodChargeMode:    domain.ChargeMode(food.VegFoodChargesType).Normalize(),
		NonVegFoodCharge:     amount(food.NonVegFoodCharges),
		NonVegFoodChargeMode: domain.ChargeMode(food.NonVegFoodChargesType).Normalize(),
	}
	if d, ok := parseDate(r.Time); ok {
		cfg.EventDate = &d
	} else if d, ok := parseDate(r.CloseDate); ok {
		cfg.EventDate = &d
	}
	return cfg
}

func amount(d *decimal.Decimal) decimal.Decimal {
	if d == nil || d.IsNegative() {
		return decimal.Zero
	}
	return *d
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseDate accepts ISO-8601 timestamps with or without zone and bare dates,
// and truncates the result to the UTC calendar day.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
