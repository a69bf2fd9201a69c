package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventparticipation/internal/domain"
)

const receiptTemplate = "payment_receipt"

type receiptService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewReceiptService returns a PaymentNotifier that renders the payment_receipt
// template and sends it with mailer.
func NewReceiptService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.PaymentNotifier {
	return &receiptService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendPaymentReceipt is a no-op for registrants without an email address.
func (s *receiptService) SendPaymentReceipt(ctx context.Context, data *domain.PaymentReceiptEmailData) error {
	if data == nil {
		return errors.New("payment receipt data is nil")
	}
	if data.Email == "" {
		return nil
	}
	subject, htmlBody, textBody, err := s.renderer.Render(receiptTemplate, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", receiptTemplate, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send payment receipt: %w", err)
	}
	s.logger.InfoContext(ctx, "payment receipt sent", "participation_id", data.ParticipationID)
	return nil
}
