package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ParticipationStatus is the lifecycle state of a participation.
type ParticipationStatus string

const (
	StatusPendingPayment            ParticipationStatus = "pending_payment"
	StatusPartiallyPaid             ParticipationStatus = "partially_paid"
	StatusConfirmed                 ParticipationStatus = "confirmed"
	StatusPaymentFailed             ParticipationStatus = "payment_failed"
	StatusPaymentAdjustmentRequired ParticipationStatus = "payment_adjustment_required"
	StatusCancelled                 ParticipationStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are accepted.
func (s ParticipationStatus) IsTerminal() bool {
	return s == StatusCancelled
}

// Participation is one unit's paid registration for an event.
// User name, phone and email are a snapshot taken at create/edit time.
// swagger:model Participation
type Participation struct {
	ID                     string              `json:"id"`
	UserID                 string              `json:"user_id"`
	EventID                string              `json:"event_id"`
	UserName               string              `json:"user_name"`
	PhoneNumber            string              `json:"phone_number"`
	EmailID                string              `json:"email_id"`
	EventDate              *time.Time          `json:"event_date"`
	Tower                  string              `json:"tower"`
	FlatNo                 string              `json:"flat_no"`
	NumTickets             int                 `json:"num_tickets"`
	VegHeads               int                 `json:"veg_heads"`
	NonVegHeads            int                 `json:"non_veg_heads"`
	TotalPayable           decimal.Decimal     `json:"total_payable"`
	AmountPaid             decimal.Decimal     `json:"amount_paid"`
	PaymentRemaining       decimal.Decimal     `json:"payment_remaining"`
	AdditionalContribution decimal.Decimal     `json:"additional_contribution"`
	ContributionComments   string              `json:"contribution_comments"`
	Status                 ParticipationStatus `json:"status"`
	TransactionID          *string             `json:"transaction_id"`
	Version                int64               `json:"version"`
	RegisteredAt           time.Time           `json:"registered_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

// MoneyPlaces is the number of decimal places amounts are stored with.
const MoneyPlaces = 2

// FitsMoneyPlaces reports whether d can be stored without rounding.
func FitsMoneyPlaces(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyPlaces))
}

// RemainingBalance returns max(0, total - paid).
func RemainingBalance(total, paid decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, total.Sub(paid))
}

// ParticipationUpdate carries the fields to merge into a stored participation.
// Nil fields are left untouched. ID, user, event and registration time have no
// field here and therefore cannot change. ExpectedVersion of 0 skips the
// optimistic version check. Payment, when set, is written to the payment ledger
// atomically with the update.
type ParticipationUpdate struct {
	UserName               *string
	PhoneNumber            *string
	EmailID                *string
	EventDate              *time.Time
	Tower                  *string
	FlatNo                 *string
	NumTickets             *int
	VegHeads               *int
	NonVegHeads            *int
	TotalPayable           *decimal.Decimal
	AmountPaid             *decimal.Decimal
	PaymentRemaining       *decimal.Decimal
	AdditionalContribution *decimal.Decimal
	ContributionComments   *string
	Status                 *ParticipationStatus
	TransactionID          *string
	Payment                *PaymentRecord
	ExpectedVersion        int64
}

// PaymentRecord is one applied gateway callback. Amount is the credit it added
// and is nil for failures.
type PaymentRecord struct {
	TransactionID string
	Outcome       PaymentOutcome
	Amount        *decimal.Decimal
}

// ParticipationFilter narrows a listing. Empty fields match everything.
type ParticipationFilter struct {
	EventID string
	UserID  string
}

// ParticipationRepository is the Participation Store. It is the only writer of
// the (event, tower, flat) uniqueness invariant.
type ParticipationRepository interface {
	// Create assigns ID, Version, RegisteredAt and UpdatedAt. Returns ErrConflict
	// when the unit is already registered for the event.
	Create(ctx context.Context, p *Participation) error
	GetByID(ctx context.Context, id string) (*Participation, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (*Participation, error)
	ListByEvent(ctx context.Context, eventID string, page PaginationParams) ([]*Participation, int, error)
	ListByUser(ctx context.Context, userID string, page PaginationParams) ([]*Participation, int, error)
	ListAll(ctx context.Context, page PaginationParams) ([]*Participation, int, error)
	// Update merges the supplied fields. Returns ErrNotFound, ErrStaleVersion or ErrConflict,
	// and ErrDuplicatePayment when upd.Payment was already applied: a transaction
	// that succeeded once, or one already recorded with the same outcome.
	Update(ctx context.Context, id string, upd ParticipationUpdate) (*Participation, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// AttendeeCounts are the head counts a price is computed from.
type AttendeeCounts struct {
	NumTickets  int `json:"num_tickets"`
	VegHeads    int `json:"veg_heads"`
	NonVegHeads int `json:"non_veg_heads"`
}

// PriceBreakdown is the result of pricing a registration.
// swagger:model PriceBreakdown
type PriceBreakdown struct {
	CoverCost              decimal.Decimal `json:"cover_cost"`
	VegFoodCost            decimal.Decimal `json:"veg_food_cost"`
	NonVegFoodCost         decimal.Decimal `json:"non_veg_food_cost"`
	FoodCost               decimal.Decimal `json:"food_cost"`
	AdditionalContribution decimal.Decimal `json:"additional_contribution"`
	Total                  decimal.Decimal `json:"total"`
}

// PriceQuote is a price preview: the breakdown plus the config it was computed from.
// swagger:model PriceQuote
type PriceQuote struct {
	UserID    string            `json:"user_id"`
	EventID   string            `json:"event_id"`
	Counts    AttendeeCounts    `json:"counts"`
	Config    EventChargeConfig `json:"config"`
	Breakdown PriceBreakdown    `json:"breakdown"`
	Fallback  bool              `json:"fallback"`
	Warning   string            `json:"warning,omitempty"`
}

// Unit identifies the residence being registered.
type Unit struct {
	Tower  string `json:"tower"`
	FlatNo string `json:"flat_no"`
}

// PriceRequest is the input of a price preview.
type PriceRequest struct {
	UserID                 string
	EventID                string
	Counts                 AttendeeCounts
	AdditionalContribution decimal.Decimal
}

// StartParticipationInput is the input of StartParticipation.
type StartParticipationInput struct {
	UserID                 string
	EventID                string
	Unit                   Unit
	Counts                 AttendeeCounts
	AdditionalContribution decimal.Decimal
	ContributionComments   string
}

// EditParticipationInput is the input of EditParticipation. ContributionComments
// is only rewritten when non-nil.
type EditParticipationInput struct {
	ID                     string
	Unit                   Unit
	Counts                 AttendeeCounts
	AdditionalContribution decimal.Decimal
	ContributionComments   *string
}

// ParticipationService is the registration orchestrator.
type ParticipationService interface {
	CalculatePrice(ctx context.Context, req PriceRequest) (*PriceQuote, error)
	StartParticipation(ctx context.Context, in StartParticipationInput) (*Participation, error)
	EditParticipation(ctx context.Context, in EditParticipationInput) (*Participation, error)
	DeleteParticipation(ctx context.Context, id string) error
	CancelParticipation(ctx context.Context, id string) (*Participation, error)
	CheckParticipation(ctx context.Context, userID, eventID string) (*Participation, error)
	GetParticipation(ctx context.Context, id string) (*Participation, error)
	ListParticipations(ctx context.Context, filter ParticipationFilter, page PaginationParams) ([]*Participation, int, error)
}

// PaymentOutcome is the result reported by the payment gateway.
type PaymentOutcome string

const (
	PaymentSucceeded PaymentOutcome = "success"
	PaymentFailed    PaymentOutcome = "failed"
)

// PaymentCallback is a payment gateway notification. A nil Amount means the
// gateway captured the full outstanding amount.
type PaymentCallback struct {
	ParticipationID string
	Outcome         PaymentOutcome
	TransactionID   string
	Amount          *decimal.Decimal
}

// PaymentService is the payment reconciliation handler.
type PaymentService interface {
	HandleCallback(ctx context.Context, cb PaymentCallback) (*Participation, error)
}
