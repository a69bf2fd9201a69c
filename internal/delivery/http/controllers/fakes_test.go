package controllers

import (
	"context"
	"io"
	"log/slog"

	"eventparticipation/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeParticipationService implements domain.ParticipationService for handler tests.
type fakeParticipationService struct {
	err error

	quote         *domain.PriceQuote
	participation *domain.Participation
	list          []*domain.Participation
	total         int

	lastPrice  domain.PriceRequest
	lastStart  domain.StartParticipationInput
	lastEdit   domain.EditParticipationInput
	lastID     string
	lastUserID string
	lastEvent  string
	lastFilter domain.ParticipationFilter
	lastPage   domain.PaginationParams
}

func (f *fakeParticipationService) CalculatePrice(_ context.Context, req domain.PriceRequest) (*domain.PriceQuote, error) {
	f.lastPrice = req
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func (f *fakeParticipationService) StartParticipation(_ context.Context, in domain.StartParticipationInput) (*domain.Participation, error) {
	f.lastStart = in
	if f.err != nil {
		return nil, f.err
	}
	return f.participation, nil
}

func (f *fakeParticipationService) EditParticipation(_ context.Context, in domain.EditParticipationInput) (*domain.Participation, error) {
	f.lastEdit = in
	if f.err != nil {
		return nil, f.err
	}
	return f.participation, nil
}

func (f *fakeParticipationService) DeleteParticipation(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeParticipationService) CancelParticipation(_ context.Context, id string) (*domain.Participation, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.participation, nil
}

func (f *fakeParticipationService) CheckParticipation(_ context.Context, userID, eventID string) (*domain.Participation, error) {
	f.lastUserID, f.lastEvent = userID, eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.participation, nil
}

func (f *fakeParticipationService) GetParticipation(_ context.Context, id string) (*domain.Participation, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.participation, nil
}

func (f *fakeParticipationService) ListParticipations(_ context.Context, filter domain.ParticipationFilter, page domain.PaginationParams) ([]*domain.Participation, int, error) {
	f.lastFilter, f.lastPage = filter, page
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.list, f.total, nil
}

// fakePaymentService implements domain.PaymentService for handler tests.
type fakePaymentService struct {
	err           error
	participation *domain.Participation
	last          domain.PaymentCallback
}

func (f *fakePaymentService) HandleCallback(_ context.Context, cb domain.PaymentCallback) (*domain.Participation, error) {
	f.last = cb
	if f.err != nil {
		return nil, f.err
	}
	return f.participation, nil
}
