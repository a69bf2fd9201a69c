package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// PaymentReceiptEmailData holds data for the payment receipt email.
type PaymentReceiptEmailData struct {
	Email            string
	Name             string
	ParticipationID  string
	EventID          string
	EventDate        *time.Time
	Tower            string
	FlatNo           string
	TransactionID    string
	TotalPayable     decimal.Decimal
	AmountPaid       decimal.Decimal
	PaymentRemaining decimal.Decimal
	FullyPaid        bool
}

// ReceiptDataFrom builds the receipt for a participation that just took a payment.
func ReceiptDataFrom(p *Participation) *PaymentReceiptEmailData {
	data := &PaymentReceiptEmailData{
		Email:            p.EmailID,
		Name:             p.UserName,
		ParticipationID:  p.ID,
		EventID:          p.EventID,
		EventDate:        p.EventDate,
		Tower:            p.Tower,
		FlatNo:           p.FlatNo,
		TotalPayable:     p.TotalPayable,
		AmountPaid:       p.AmountPaid,
		PaymentRemaining: p.PaymentRemaining,
		FullyPaid:        p.Status == StatusConfirmed,
	}
	if p.TransactionID != nil {
		data.TransactionID = *p.TransactionID
	}
	return data
}

// PaymentNotifier tells the registrant that a payment was applied.
type PaymentNotifier interface {
	SendPaymentReceipt(ctx context.Context, data *PaymentReceiptEmailData) error
}
