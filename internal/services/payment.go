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

	"eventparticipation/internal/domain"
	"eventparticipation/internal/metrics"
)

// Callback handling results, as recorded in metrics.
const (
	callbackApplied   = "applied"
	callbackDuplicate = "duplicate"
	callbackIgnored   = "ignored"
	callbackRejected  = "rejected"
)

type paymentService struct {
	repo           domain.ParticipationRepository
	notifier       domain.PaymentNotifier
	logger         *slog.Logger
	metrics        *metrics.Metrics
	contextTimeout time.Duration
}

// NewPaymentService creates the payment reconciliation handler. notifier may be
// nil; receipts are best effort and never fail a callback.
func NewPaymentService(repo domain.ParticipationRepository, notifier domain.PaymentNotifier, logger *slog.Logger, m *metrics.Metrics, timeout time.Duration) domain.PaymentService {
	return &paymentService{
		repo:           repo,
		notifier:       notifier,
		logger:         logger,
		metrics:        m,
		contextTimeout: timeout,
	}
}

func (s *paymentService) HandleCallback(ctx context.Context, cb domain.PaymentCallback) (p *domain.Participation, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := startSpan(ctx, "payment.callback",
		attribute.String("participation_id", cb.ParticipationID),
		attribute.String("payment.outcome", string(cb.Outcome)),
		attribute.String("payment.transaction_id", cb.TransactionID))
	defer func() { endSpan(span, err) }()

	if err := validateCallback(cb); err != nil {
		s.metrics.IncrementPaymentCallback(string(cb.Outcome), callbackRejected)
		return nil, err
	}

	result := callbackApplied
	p, err = retryOnStale(s.metrics, func() (*domain.Participation, error) {
		current, err := s.repo.GetByID(ctx, cb.ParticipationID)
		if err != nil {
			return nil, fmt.Errorf("get participation: %w", err)
		}
		upd, outcome := reconcile(current, cb)
		result = outcome
		if outcome != callbackApplied {
			return current, nil
		}
		updated, err := s.repo.Update(ctx, current.ID, upd)
		if errors.Is(err, domain.ErrDuplicatePayment) {
			result = callbackDuplicate
			return current, nil
		}
		if err != nil {
			return nil, fmt.Errorf("update participation: %w", err)
		}
		return updated, nil
	})
	if err != nil {
		s.metrics.IncrementPaymentCallback(string(cb.Outcome), callbackRejected)
		return nil, err
	}
	s.metrics.IncrementPaymentCallback(string(cb.Outcome), result)

	switch result {
	case callbackDuplicate:
		s.logger.InfoContext(ctx, "duplicate payment callback ignored",
			"participation_id", p.ID, "transaction_id", cb.TransactionID)
	case callbackIgnored:
		s.logger.WarnContext(ctx, "payment failure reported for confirmed participation, ignored",
			"participation_id", p.ID, "transaction_id", cb.TransactionID)
	case callbackRejected:
		return nil, domain.ErrTerminalState
	default:
		s.logger.InfoContext(ctx, "payment reconciled",
			"participation_id", p.ID, "outcome", cb.Outcome, "status", p.Status, "amount_paid", p.AmountPaid.String())
		if cb.Outcome == domain.PaymentSucceeded {
			s.sendReceipt(ctx, p)
		}
	}
	return p, nil
}

func (s *paymentService) sendReceipt(ctx context.Context, p *domain.Participation) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendPaymentReceipt(ctx, domain.ReceiptDataFrom(p)); err != nil {
		s.logger.WarnContext(ctx, "payment receipt not sent", "participation_id", p.ID, "err", err)
	}
}

// reconcile decides how cb changes current. Unless the returned result is
// callbackApplied the record must be left as is.
func reconcile(current *domain.Participation, cb domain.PaymentCallback) (domain.ParticipationUpdate, string) {
	if current.Status.IsTerminal() {
		return domain.ParticipationUpdate{}, callbackRejected
	}
	if isDuplicateCallback(current, cb) {
		return domain.ParticipationUpdate{}, callbackDuplicate
	}

	txn := cb.TransactionID
	upd := domain.ParticipationUpdate{
		TransactionID:   &txn,
		Payment:         &domain.PaymentRecord{TransactionID: txn, Outcome: cb.Outcome},
		ExpectedVersion: current.Version,
	}

	if cb.Outcome == domain.PaymentFailed {
		if current.Status == domain.StatusConfirmed {
			return domain.ParticipationUpdate{}, callbackIgnored
		}
		status := domain.StatusPaymentFailed
		upd.Status = &status
		return upd, callbackApplied
	}

	var paid decimal.Decimal
	if cb.Amount == nil {
		paid = decimal.Max(current.AmountPaid, current.TotalPayable)
	} else {
		paid = current.AmountPaid.Add(*cb.Amount)
	}
	credited := paid.Sub(current.AmountPaid)
	upd.Payment.Amount = &credited
	remaining := domain.RemainingBalance(current.TotalPayable, paid)
	status := domain.StatusConfirmed
	if remaining.IsPositive() {
		status = domain.StatusPartiallyPaid
	}
	upd.AmountPaid = &paid
	upd.PaymentRemaining = &remaining
	upd.Status = &status
	return upd, callbackApplied
}

// isDuplicateCallback reports a redelivery of the callback last recorded on
// current. Older transactions are caught by the payment ledger on update.
func isDuplicateCallback(current *domain.Participation, cb domain.PaymentCallback) bool {
	if current.TransactionID == nil || *current.TransactionID != cb.TransactionID {
		return false
	}
	switch cb.Outcome {
	case domain.PaymentSucceeded:
		return current.Status == domain.StatusConfirmed || current.Status == domain.StatusPartiallyPaid
	case domain.PaymentFailed:
		return current.Status == domain.StatusPaymentFailed
	}
	return false
}

func validateCallback(cb domain.PaymentCallback) error {
	var missing []string
	if strings.TrimSpace(cb.ParticipationID) == "" {
		missing = append(missing, "participation_id")
	}
	if strings.TrimSpace(cb.TransactionID) == "" {
		missing = append(missing, "transaction_id")
	}
	if cb.Outcome == "" {
		missing = append(missing, "payment_status")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if cb.Outcome != domain.PaymentSucceeded && cb.Outcome != domain.PaymentFailed {
		return fmt.Errorf("%w: payment_status must be success or failed", domain.ErrInvalidInput)
	}
	if cb.Amount != nil && !cb.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if cb.Amount != nil && !domain.FitsMoneyPlaces(*cb.Amount) {
		return fmt.Errorf("%w: amount must have at most 2 decimal places", domain.ErrInvalidInput)
	}
	return nil
}
