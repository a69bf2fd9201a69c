package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"eventparticipation/internal/delivery/http/helpers"
	"eventparticipation/internal/domain"
)

// PaymentCallbackRequest is the request body posted by the payment gateway.
// Amount is optional; when omitted the callback settles the full balance.
type PaymentCallbackRequest struct {
	ParticipationID string           `json:"participation_id"`
	PaymentStatus   string           `json:"payment_status"`
	TransactionID   string           `json:"transaction_id"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
}

// Validate implements Validator.
func (p PaymentCallbackRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(p.ParticipationID) == "" {
		errs = append(errs, "participation_id is required")
	}
	if strings.TrimSpace(p.TransactionID) == "" {
		errs = append(errs, "transaction_id is required")
	}
	switch domain.PaymentOutcome(p.PaymentStatus) {
	case domain.PaymentSucceeded, domain.PaymentFailed:
	default:
		errs = append(errs, "payment_status must be success or failed")
	}
	if p.Amount != nil && !p.Amount.IsPositive() {
		errs = append(errs, "amount must be positive")
	}
	if p.Amount != nil && !domain.FitsMoneyPlaces(*p.Amount) {
		errs = append(errs, "amount must have at most 2 decimal places")
	}
	return errs
}

type PaymentController struct {
	Logger  *slog.Logger
	Service domain.PaymentService
}

func NewPaymentController(logger *slog.Logger, svc domain.PaymentService) *PaymentController {
	return &PaymentController{
		Logger:  logger,
		Service: svc,
	}
}

// PaymentCallback godoc
// @Summary Payment gateway callback
// @Description Reconciles a gateway notification against the participation. Replaying a callback that was already applied returns the record unchanged.
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Gateway-Token header string false "Shared gateway token (required when configured)"
// @Param body body PaymentCallbackRequest true "Gateway notification"
// @Success 200 {object} controllers.ParticipationSuccessResponse "data contains the reconciled participation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /participations/payment-callback [post]
func (c *PaymentController) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req PaymentCallbackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.Service.HandleCallback(r.Context(), domain.PaymentCallback{
		ParticipationID: strings.TrimSpace(req.ParticipationID),
		Outcome:         domain.PaymentOutcome(req.PaymentStatus),
		TransactionID:   strings.TrimSpace(req.TransactionID),
		Amount:          req.Amount,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}
