package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"eventparticipation/internal/delivery/http/helpers"
	"eventparticipation/internal/domain"
)

// PriceRequest is the request body for POST /participations/price-calc.
type PriceRequest struct {
	UserID                 string          `json:"user_id"`
	EventID                string          `json:"event_id"`
	NumTickets             int             `json:"num_tickets"`
	VegHeads               int             `json:"veg_heads"`
	NonVegHeads            int             `json:"non_veg_heads"`
	AdditionalContribution decimal.Decimal `json:"additional_contribution"`
}

// Validate implements Validator.
func (p PriceRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(p.UserID) == "" {
		errs = append(errs, "user_id is required")
	}
	if strings.TrimSpace(p.EventID) == "" {
		errs = append(errs, "event_id is required")
	}
	return append(errs, validateAmounts(p.counts(), p.AdditionalContribution)...)
}

func (p PriceRequest) counts() domain.AttendeeCounts {
	return domain.AttendeeCounts{NumTickets: p.NumTickets, VegHeads: p.VegHeads, NonVegHeads: p.NonVegHeads}
}

// StartParticipationRequest is the request body for POST /participations/start.
type StartParticipationRequest struct {
	UserID                 string          `json:"user_id"`
	EventID                string          `json:"event_id"`
	Tower                  string          `json:"tower"`
	FlatNo                 string          `json:"flat_no"`
	NumTickets             int             `json:"num_tickets"`
	VegHeads               int             `json:"veg_heads"`
	NonVegHeads            int             `json:"non_veg_heads"`
	AdditionalContribution decimal.Decimal `json:"additional_contribution"`
	ContributionComments   string          `json:"contribution_comments"`
}

// Validate implements Validator. Returns error messages for required and range rules.
func (s StartParticipationRequest) Validate() []string {
	var errs []string
	for _, f := range []struct{ name, value string }{
		{"user_id", s.UserID},
		{"event_id", s.EventID},
		{"tower", s.Tower},
		{"flat_no", s.FlatNo},
	} {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, f.name+" is required")
		}
	}
	return append(errs, validateAmounts(s.counts(), s.AdditionalContribution)...)
}

func (s StartParticipationRequest) counts() domain.AttendeeCounts {
	return domain.AttendeeCounts{NumTickets: s.NumTickets, VegHeads: s.VegHeads, NonVegHeads: s.NonVegHeads}
}

// EditParticipationRequest is the request body for PUT /participations/edit.
// user_id and event_id are accepted for client compatibility but never change
// the stored record.
type EditParticipationRequest struct {
	ID                     string          `json:"id"`
	UserID                 string          `json:"user_id,omitempty"`
	EventID                string          `json:"event_id,omitempty"`
	Tower                  string          `json:"tower"`
	FlatNo                 string          `json:"flat_no"`
	NumTickets             int             `json:"num_tickets"`
	VegHeads               int             `json:"veg_heads"`
	NonVegHeads            int             `json:"non_veg_heads"`
	AdditionalContribution decimal.Decimal `json:"additional_contribution"`
	ContributionComments   *string         `json:"contribution_comments"`
}

// Validate implements Validator.
func (e EditParticipationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(e.ID) == "" {
		errs = append(errs, "id is required")
	}
	if strings.TrimSpace(e.Tower) == "" {
		errs = append(errs, "tower is required")
	}
	if strings.TrimSpace(e.FlatNo) == "" {
		errs = append(errs, "flat_no is required")
	}
	counts := domain.AttendeeCounts{NumTickets: e.NumTickets, VegHeads: e.VegHeads, NonVegHeads: e.NonVegHeads}
	return append(errs, validateAmounts(counts, e.AdditionalContribution)...)
}

func validateAmounts(c domain.AttendeeCounts, contribution decimal.Decimal) []string {
	var errs []string
	if c.NumTickets < 0 || c.VegHeads < 0 || c.NonVegHeads < 0 {
		errs = append(errs, "head counts must not be negative")
	}
	if contribution.IsNegative() {
		errs = append(errs, "additional_contribution must not be negative")
	}
	if !domain.FitsMoneyPlaces(contribution) {
		errs = append(errs, "additional_contribution must have at most 2 decimal places")
	}
	return errs
}

// ParticipationSuccessResponse is the success envelope for endpoints returning one participation.
type ParticipationSuccessResponse struct {
	Data  *domain.Participation `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// PriceQuoteSuccessResponse is the success envelope for POST /participations/price-calc.
type PriceQuoteSuccessResponse struct {
	Data  *domain.PriceQuote `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListParticipationsResponse is the data payload for GET /participations.
type ListParticipationsResponse struct {
	Participations []*domain.Participation `json:"participations"`
	Pagination     helpers.PaginationMeta  `json:"pagination"`
}

// ListParticipationsSuccessResponse is the success envelope for GET /participations.
type ListParticipationsSuccessResponse struct {
	Data  ListParticipationsResponse `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// DeleteParticipationResponse is the data payload for DELETE /participations/delete/{id}.
type DeleteParticipationResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type ParticipationController struct {
	Logger  *slog.Logger
	Service domain.ParticipationService
}

func NewParticipationController(logger *slog.Logger, svc domain.ParticipationService) *ParticipationController {
	return &ParticipationController{
		Logger:  logger,
		Service: svc,
	}
}

// CalculatePrice godoc
// @Summary Preview the price of a registration
// @Description Prices the head counts against the event's charges. When the event catalog cannot be reached the default charges are used and the response carries fallback=true and a warning. Nothing is persisted.
// @Tags participations
// @Accept json
// @Produce json
// @Param body body PriceRequest true "Head counts and contribution"
// @Success 200 {object} controllers.PriceQuoteSuccessResponse "data contains the breakdown and the charge config used"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /participations/price-calc [post]
func (c *ParticipationController) CalculatePrice(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	quote, err := c.Service.CalculatePrice(r.Context(), domain.PriceRequest{
		UserID:                 strings.TrimSpace(req.UserID),
		EventID:                strings.TrimSpace(req.EventID),
		Counts:                 req.counts(),
		AdditionalContribution: req.AdditionalContribution,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, quote)
}

// StartParticipation godoc
// @Summary Register a unit for an event
// @Description Prices the registration against the live event charges and creates a pending_payment record. A unit (tower + flat) can be registered once per event.
// @Tags participations
// @Accept json
// @Produce json
// @Param body body StartParticipationRequest true "Registration"
// @Success 201 {object} controllers.ParticipationSuccessResponse "data contains the created participation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (user or event)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /participations/start [post]
func (c *ParticipationController) StartParticipation(w http.ResponseWriter, r *http.Request) {
	var req StartParticipationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.Service.StartParticipation(r.Context(), domain.StartParticipationInput{
		UserID:                 strings.TrimSpace(req.UserID),
		EventID:                strings.TrimSpace(req.EventID),
		Unit:                   domain.Unit{Tower: req.Tower, FlatNo: req.FlatNo},
		Counts:                 req.counts(),
		AdditionalContribution: req.AdditionalContribution,
		ContributionComments:   req.ContributionComments,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, p)
}

// EditParticipation godoc
// @Summary Edit a registration
// @Description Re-prices the registration and adjusts the remaining balance. amount_paid and transaction_id are never changed. A confirmed record that now owes money moves to payment_adjustment_required.
// @Tags participations
// @Accept json
// @Produce json
// @Param body body EditParticipationRequest true "Updated registration"
// @Success 200 {object} controllers.ParticipationSuccessResponse "data contains the updated participation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /participations/edit [put]
func (c *ParticipationController) EditParticipation(w http.ResponseWriter, r *http.Request) {
	var req EditParticipationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.Service.EditParticipation(r.Context(), domain.EditParticipationInput{
		ID:   strings.TrimSpace(req.ID),
		Unit: domain.Unit{Tower: req.Tower, FlatNo: req.FlatNo},
		Counts: domain.AttendeeCounts{
			NumTickets:  req.NumTickets,
			VegHeads:    req.VegHeads,
			NonVegHeads: req.NonVegHeads,
		},
		AdditionalContribution: req.AdditionalContribution,
		ContributionComments:   req.ContributionComments,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

// DeleteParticipation godoc
// @Summary Delete a registration
// @Description Unconditional hard delete. Admin only.
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Participation ID"
// @Success 200 {object} helpers.APIResponse "data contains id and deleted=true"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /participations/delete/{id} [delete]
func (c *ParticipationController) DeleteParticipation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing id")
		return
	}
	if err := c.Service.DeleteParticipation(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteParticipationResponse{ID: id, Deleted: true})
}

// CancelParticipation godoc
// @Summary Cancel a registration
// @Description Moves the record to cancelled. Cancelling an already cancelled record returns it unchanged. Admin only.
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Participation ID"
// @Success 200 {object} controllers.ParticipationSuccessResponse "data contains the cancelled participation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /participations/{id}/cancel [post]
func (c *ParticipationController) CancelParticipation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing id")
		return
	}
	p, err := c.Service.CancelParticipation(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

// CheckParticipation godoc
// @Summary Find a user's registration for an event
// @Tags participations
// @Produce json
// @Param user_id query string true "User ID"
// @Param event_id query string true "Event ID"
// @Success 200 {object} controllers.ParticipationSuccessResponse "data contains the earliest registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /participations/check [get]
func (c *ParticipationController) CheckParticipation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := strings.TrimSpace(q.Get("user_id"))
	eventID := strings.TrimSpace(q.Get("event_id"))
	if userID == "" || eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "user_id and event_id are required")
		return
	}
	p, err := c.Service.CheckParticipation(r.Context(), userID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

// GetParticipation godoc
// @Summary Get a registration by ID
// @Tags participations
// @Produce json
// @Param id path string true "Participation ID"
// @Success 200 {object} controllers.ParticipationSuccessResponse "data contains the participation"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /participations/{id} [get]
func (c *ParticipationController) GetParticipation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing id")
		return
	}
	p, err := c.Service.GetParticipation(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

// ListParticipations godoc
// @Summary List registrations
// @Description Paginated, ordered by registration time. Filter by event_id or user_id (not both). Admin only.
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Param event_id query string false "Event ID"
// @Param user_id query string false "User ID"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListParticipationsSuccessResponse "data contains participations and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /participations [get]
func (c *ParticipationController) ListParticipations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ParticipationFilter{
		EventID: strings.TrimSpace(q.Get("event_id")),
		UserID:  strings.TrimSpace(q.Get("user_id")),
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.ListParticipations(r.Context(), filter, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if list == nil {
		list = []*domain.Participation{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListParticipationsResponse{
		Participations: list,
		Pagination:     helpers.NewPaginationMeta(params, total),
	})
}
