package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"eventparticipation/internal/domain"
	"eventparticipation/internal/metrics"
	"eventparticipation/internal/pricing"
)

// FallbackPriceWarning accompanies a price preview computed from the default
// charge config.
const FallbackPriceWarning = "Could not fetch actual event prices. Using defaults."

type participationService struct {
	repo           domain.ParticipationRepository
	users          domain.UserDirectory
	catalog        domain.EventCatalog
	fallback       domain.EventChargeConfig
	logger         *slog.Logger
	metrics        *metrics.Metrics
	contextTimeout time.Duration
}

// NewParticipationService creates the registration orchestrator. fallback is
// the charge config used by price previews when the catalog is unreachable.
func NewParticipationService(
	repo domain.ParticipationRepository,
	users domain.UserDirectory,
	catalog domain.EventCatalog,
	fallback domain.EventChargeConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
	timeout time.Duration,
) domain.ParticipationService {
	return &participationService{
		repo:           repo,
		users:          users,
		catalog:        catalog,
		fallback:       fallback,
		logger:         logger,
		metrics:        m,
		contextTimeout: timeout,
	}
}

func (s *participationService) CalculatePrice(ctx context.Context, req domain.PriceRequest) (quote *domain.PriceQuote, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := startSpan(ctx, "participation.calculate_price", attribute.String("event_id", req.EventID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.EventID) == "" {
		return nil, fmt.Errorf("%w: user_id and event_id are required", domain.ErrInvalidInput)
	}
	if err := validateCounts(req.Counts, false); err != nil {
		return nil, err
	}
	if err := validateContribution(req.AdditionalContribution); err != nil {
		return nil, err
	}

	quote = &domain.PriceQuote{UserID: req.UserID, EventID: req.EventID, Counts: req.Counts}
	cfg, err := s.catalog.GetChargeConfig(ctx, req.EventID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get event: %w", err)
	case err != nil:
		s.logger.WarnContext(ctx, "event catalog unavailable, pricing with default charges",
			"event_id", req.EventID, "err", err)
		fallback := s.fallback
		fallback.EventID = req.EventID
		cfg = &fallback
		quote.Fallback = true
		quote.Warning = FallbackPriceWarning
	}
	quote.Config = *cfg
	quote.Breakdown = pricing.Calculate(*cfg, req.Counts, req.AdditionalContribution)
	s.metrics.ObservePrice(quote.Fallback)
	return quote, nil
}

func (s *participationService) StartParticipation(ctx context.Context, in domain.StartParticipationInput) (p *domain.Participation, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := startSpan(ctx, "participation.start",
		attribute.String("event_id", in.EventID), attribute.String("user_id", in.UserID))
	defer func() { endSpan(span, err) }()

	if err := validateStart(in); err != nil {
		return nil, err
	}

	user, cfg, err := s.lookup(ctx, in.UserID, in.EventID)
	if err != nil {
		return nil, err
	}

	breakdown := pricing.Calculate(*cfg, in.Counts, in.AdditionalContribution)
	p = &domain.Participation{
		UserID:                 in.UserID,
		EventID:                in.EventID,
		UserName:               user.Name,
		PhoneNumber:            user.PhoneNumber,
		EmailID:                user.Email,
		EventDate:              cfg.EventDate,
		Tower:                  strings.TrimSpace(in.Unit.Tower),
		FlatNo:                 strings.TrimSpace(in.Unit.FlatNo),
		NumTickets:             in.Counts.NumTickets,
		VegHeads:               in.Counts.VegHeads,
		NonVegHeads:            in.Counts.NonVegHeads,
		TotalPayable:           breakdown.Total,
		AmountPaid:             decimal.Zero,
		PaymentRemaining:       breakdown.Total,
		AdditionalContribution: in.AdditionalContribution,
		ContributionComments:   in.ContributionComments,
		Status:                 domain.StatusPendingPayment,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.metrics.IncrementConflict()
			return nil, err
		}
		return nil, fmt.Errorf("create participation: %w", err)
	}
	s.metrics.IncrementCreated()
	s.logger.InfoContext(ctx, "participation started",
		"participation_id", p.ID, "event_id", p.EventID, "tower", p.Tower, "flat_no", p.FlatNo, "total", p.TotalPayable.String())
	return p, nil
}

func (s *participationService) EditParticipation(ctx context.Context, in domain.EditParticipationInput) (p *domain.Participation, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := startSpan(ctx, "participation.edit", attribute.String("participation_id", in.ID))
	defer func() { endSpan(span, err) }()

	if err := validateEdit(in); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("get participation: %w", err)
	}
	if current.Status.IsTerminal() {
		return nil, domain.ErrTerminalState
	}

	// user_id and event_id never change, so one lookup serves every retry.
	user, cfg, err := s.lookup(ctx, current.UserID, current.EventID)
	if err != nil {
		return nil, err
	}
	breakdown := pricing.Calculate(*cfg, in.Counts, in.AdditionalContribution)

	p, err = retryOnStale(s.metrics, func() (*domain.Participation, error) {
		if current == nil {
			fresh, err := s.repo.GetByID(ctx, in.ID)
			if err != nil {
				return nil, fmt.Errorf("get participation: %w", err)
			}
			if fresh.Status.IsTerminal() {
				return nil, domain.ErrTerminalState
			}
			current = fresh
		}
		updated, err := s.repo.Update(ctx, current.ID, editUpdate(current, in, user, cfg, breakdown.Total))
		if err != nil {
			current = nil
			return nil, fmt.Errorf("update participation: %w", err)
		}
		return updated, nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementEdited(string(p.Status))
	return p, nil
}

// editUpdate builds the merge for an edit of current. Payment fields other
// than the remaining balance are left alone.
func editUpdate(current *domain.Participation, in domain.EditParticipationInput, user *domain.UserProfile, cfg *domain.EventChargeConfig, total decimal.Decimal) domain.ParticipationUpdate {
	status := NextStatusAfterEdit(current.Status, total.Sub(current.AmountPaid))
	remaining := domain.RemainingBalance(total, current.AmountPaid)
	tower := strings.TrimSpace(in.Unit.Tower)
	flat := strings.TrimSpace(in.Unit.FlatNo)
	counts := in.Counts
	contribution := in.AdditionalContribution

	return domain.ParticipationUpdate{
		UserName:               &user.Name,
		PhoneNumber:            &user.PhoneNumber,
		EmailID:                &user.Email,
		EventDate:              cfg.EventDate,
		Tower:                  &tower,
		FlatNo:                 &flat,
		NumTickets:             &counts.NumTickets,
		VegHeads:               &counts.VegHeads,
		NonVegHeads:            &counts.NonVegHeads,
		TotalPayable:           &total,
		PaymentRemaining:       &remaining,
		AdditionalContribution: &contribution,
		ContributionComments:   in.ContributionComments,
		Status:                 &status,
		ExpectedVersion:        current.Version,
	}
}

// NextStatusAfterEdit applies the edit transition policy given the balance
// still owed after the edit (newTotal - amountPaid, possibly negative).
func NextStatusAfterEdit(current domain.ParticipationStatus, owed decimal.Decimal) domain.ParticipationStatus {
	if current == domain.StatusCancelled {
		return current
	}
	if owed.IsPositive() {
		if current == domain.StatusConfirmed {
			return domain.StatusPaymentAdjustmentRequired
		}
		return current
	}
	return domain.StatusConfirmed
}

// lookup resolves the registrant and the event charge config concurrently.
// Either failure fails the whole operation; no default config is substituted.
func (s *participationService) lookup(ctx context.Context, userID, eventID string) (*domain.UserProfile, *domain.EventChargeConfig, error) {
	var user *domain.UserProfile
	var cfg *domain.EventChargeConfig
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if user, err = s.users.GetUser(gctx, userID); err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if cfg, err = s.catalog.GetChargeConfig(gctx, eventID); err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return user, cfg, nil
}

func (s *participationService) DeleteParticipation(ctx context.Context, id string) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := startSpan(ctx, "participation.delete", attribute.String("participation_id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete participation: %w", err)
	}
	s.logger.InfoContext(ctx, "participation deleted", "participation_id", id)
	return nil
}

func (s *participationService) CancelParticipation(ctx context.Context, id string) (p *domain.Participation, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := startSpan(ctx, "participation.cancel", attribute.String("participation_id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	p, err = retryOnStale(s.metrics, func() (*domain.Participation, error) {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get participation: %w", err)
		}
		if current.Status.IsTerminal() {
			return current, nil
		}
		status := domain.StatusCancelled
		updated, err := s.repo.Update(ctx, id, domain.ParticipationUpdate{Status: &status, ExpectedVersion: current.Version})
		if err != nil {
			return nil, fmt.Errorf("update participation: %w", err)
		}
		return updated, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "participation cancelled", "participation_id", id)
	return p, nil
}

func (s *participationService) CheckParticipation(ctx context.Context, userID, eventID string) (*domain.Participation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(userID) == "" || strings.TrimSpace(eventID) == "" {
		return nil, fmt.Errorf("%w: user_id and event_id are required", domain.ErrInvalidInput)
	}
	p, err := s.repo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("get participation by user and event: %w", err)
	}
	return p, nil
}

func (s *participationService) GetParticipation(ctx context.Context, id string) (*domain.Participation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get participation: %w", err)
	}
	return p, nil
}

func (s *participationService) ListParticipations(ctx context.Context, filter domain.ParticipationFilter, page domain.PaginationParams) ([]*domain.Participation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		list  []*domain.Participation
		total int
		err   error
	)
	switch {
	case filter.EventID != "" && filter.UserID != "":
		return nil, 0, fmt.Errorf("%w: filter by event_id or user_id, not both", domain.ErrInvalidInput)
	case filter.EventID != "":
		list, total, err = s.repo.ListByEvent(ctx, filter.EventID, page)
	case filter.UserID != "":
		list, total, err = s.repo.ListByUser(ctx, filter.UserID, page)
	default:
		list, total, err = s.repo.ListAll(ctx, page)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list participations: %w", err)
	}
	return list, total, nil
}

func validateStart(in domain.StartParticipationInput) error {
	var missing []string
	if strings.TrimSpace(in.UserID) == "" {
		missing = append(missing, "user_id")
	}
	if strings.TrimSpace(in.EventID) == "" {
		missing = append(missing, "event_id")
	}
	if strings.TrimSpace(in.Unit.Tower) == "" {
		missing = append(missing, "tower")
	}
	if strings.TrimSpace(in.Unit.FlatNo) == "" {
		missing = append(missing, "flat_no")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if err := validateCounts(in.Counts, true); err != nil {
		return err
	}
	return validateContribution(in.AdditionalContribution)
}

func validateEdit(in domain.EditParticipationInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Unit.Tower) == "" || strings.TrimSpace(in.Unit.FlatNo) == "" {
		return fmt.Errorf("%w: tower and flat_no are required", domain.ErrInvalidInput)
	}
	if err := validateCounts(in.Counts, true); err != nil {
		return err
	}
	return validateContribution(in.AdditionalContribution)
}

func validateCounts(c domain.AttendeeCounts, requireTicket bool) error {
	if requireTicket && c.NumTickets < 1 {
		return fmt.Errorf("%w: num_tickets must be at least 1", domain.ErrInvalidInput)
	}
	if c.NumTickets < 0 || c.VegHeads < 0 || c.NonVegHeads < 0 {
		return fmt.Errorf("%w: counts must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func validateContribution(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: additional_contribution must not be negative", domain.ErrInvalidInput)
	}
	if !domain.FitsMoneyPlaces(d) {
		return fmt.Errorf("%w: additional_contribution must have at most 2 decimal places", domain.ErrInvalidInput)
	}
	return nil
}
