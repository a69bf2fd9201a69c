package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventparticipation/internal/domain"
	"eventparticipation/internal/metrics"
)

type fixture struct {
	repo    *memoryRepository
	users   *mockUserDirectory
	catalog *mockCatalog
	metrics *metrics.Metrics
	svc     domain.ParticipationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	eventDate := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	cfg := perHeadConfig("e1", 50, 15, 25)
	cfg.EventDate = &eventDate

	f := &fixture{
		repo: newMemoryRepository(),
		users: &mockUserDirectory{users: map[string]*domain.UserProfile{
			"u1": {ID: "u1", Name: "Asha", Email: "asha@example.com", PhoneNumber: "98450"},
			"u2": {ID: "u2", Name: "Ravi", Email: "ravi@example.com", PhoneNumber: "98451"},
		}},
		catalog: &mockCatalog{configs: map[string]*domain.EventChargeConfig{"e1": cfg}},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	f.svc = NewParticipationService(f.repo, f.users, f.catalog, *perHeadConfig("", 50, 15, 25), discardLogger, f.metrics, 5*time.Second)
	return f
}

func startInput(userID, tower, flat string, tickets, veg, nonVeg int) domain.StartParticipationInput {
	return domain.StartParticipationInput{
		UserID:  userID,
		EventID: "e1",
		Unit:    domain.Unit{Tower: tower, FlatNo: flat},
		Counts:  domain.AttendeeCounts{NumTickets: tickets, VegHeads: veg, NonVegHeads: nonVeg},
	}
}

func TestParticipationService_CalculatePrice(t *testing.T) {
	ctx := context.Background()

	t.Run("catalog config", func(t *testing.T) {
		f := newFixture(t)
		q, err := f.svc.CalculatePrice(ctx, domain.PriceRequest{
			UserID: "u1", EventID: "e1",
			Counts: domain.AttendeeCounts{NumTickets: 4, VegHeads: 2, NonVegHeads: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, "280", q.Breakdown.Total.String())
		assert.Equal(t, "200", q.Breakdown.CoverCost.String())
		assert.False(t, q.Fallback)
		assert.Empty(t, q.Warning)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PriceCalculations.WithLabelValues("catalog")))
	})

	t.Run("per family cover", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.configs["e1"].CoverChargeMode = domain.ChargePerFamily
		q, err := f.svc.CalculatePrice(ctx, domain.PriceRequest{
			UserID: "u1", EventID: "e1",
			Counts: domain.AttendeeCounts{NumTickets: 4, VegHeads: 2, NonVegHeads: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, "50", q.Breakdown.CoverCost.String())
		assert.Equal(t, "130", q.Breakdown.Total.String())
	})

	t.Run("catalog unreachable falls back with warning", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.err = &domain.UpstreamError{Service: "event_catalog", Err: errors.New("connection refused")}
		q, err := f.svc.CalculatePrice(ctx, domain.PriceRequest{
			UserID: "u1", EventID: "e9",
			Counts:                 domain.AttendeeCounts{NumTickets: 1, VegHeads: 1},
			AdditionalContribution: dec("10"),
		})
		require.NoError(t, err)
		assert.True(t, q.Fallback)
		assert.Equal(t, FallbackPriceWarning, q.Warning)
		assert.Equal(t, "e9", q.Config.EventID)
		assert.Equal(t, "75", q.Breakdown.Total.String())
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PriceCalculations.WithLabelValues("fallback")))
	})

	t.Run("unknown event", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CalculatePrice(ctx, domain.PriceRequest{UserID: "u1", EventID: "nope"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing ids", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CalculatePrice(ctx, domain.PriceRequest{EventID: "e1"})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("negative contribution", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CalculatePrice(ctx, domain.PriceRequest{UserID: "u1", EventID: "e1", AdditionalContribution: dec("-1")})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("contribution finer than cents", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CalculatePrice(ctx, domain.PriceRequest{UserID: "u1", EventID: "e1", AdditionalContribution: dec("0.005")})
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		q, err := f.svc.CalculatePrice(ctx, domain.PriceRequest{UserID: "u1", EventID: "e1", AdditionalContribution: dec("12.50")})
		require.NoError(t, err)
		assert.Equal(t, "12.5", q.Breakdown.AdditionalContribution.String())
	})
}

func TestParticipationService_StartParticipation(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending record with snapshot", func(t *testing.T) {
		f := newFixture(t)
		in := startInput("u1", " A ", "101", 4, 2, 2)
		in.AdditionalContribution = dec("20")
		in.ContributionComments = "for decorations"

		p, err := f.svc.StartParticipation(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, domain.StatusPendingPayment, p.Status)
		assert.Equal(t, "A", p.Tower)
		assert.Equal(t, "Asha", p.UserName)
		assert.Equal(t, "asha@example.com", p.EmailID)
		assert.Equal(t, "98450", p.PhoneNumber)
		assert.Equal(t, "300", p.TotalPayable.String())
		assert.True(t, p.AmountPaid.IsZero())
		assert.Equal(t, "300", p.PaymentRemaining.String())
		assert.Nil(t, p.TransactionID)
		require.NotNil(t, p.EventDate)
		assert.Equal(t, 2025, p.EventDate.Year())
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ParticipationsCreated))
	})

	t.Run("same unit twice conflicts", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.StartParticipation(ctx, startInput("u1", "A", "101", 2, 1, 1))
		require.NoError(t, err)

		_, err = f.svc.StartParticipation(ctx, startInput("u2", "A", "101", 3, 3, 0))
		require.ErrorIs(t, err, domain.ErrConflict)

		list, total, err := f.svc.ListParticipations(ctx, domain.ParticipationFilter{EventID: "e1"}, domain.PaginationParams{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "u1", list[0].UserID)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ParticipationConflicts))
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		tests := []struct {
			name string
			in   domain.StartParticipationInput
		}{
			{"missing tower", startInput("u1", "", "101", 1, 1, 0)},
			{"missing flat", startInput("u1", "A", "  ", 1, 1, 0)},
			{"missing user", startInput("", "A", "101", 1, 1, 0)},
			{"no tickets", startInput("u1", "A", "101", 0, 0, 0)},
			{"negative heads", startInput("u1", "A", "101", 1, -1, 0)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.StartParticipation(ctx, tt.in)
				require.ErrorIs(t, err, domain.ErrInvalidInput)
			})
		}
		assert.Empty(t, f.repo.rows)
	})

	t.Run("catalog unreachable fails without fallback", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.err = &domain.UpstreamError{Service: "event_catalog", StatusCode: 503, Err: errors.New("down")}
		_, err := f.svc.StartParticipation(ctx, startInput("u1", "A", "101", 1, 1, 0))
		require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		var ue *domain.UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, 503, ue.StatusCode)
		assert.Empty(t, f.repo.rows)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.StartParticipation(ctx, startInput("ghost", "A", "101", 1, 1, 0))
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("store failure is propagated", func(t *testing.T) {
		f := newFixture(t)
		f.repo.err = errors.New("disk full")
		_, err := f.svc.StartParticipation(ctx, startInput("u1", "A", "101", 1, 1, 0))
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrConflict)
	})
}

func TestParticipationService_EditParticipation(t *testing.T) {
	ctx := context.Background()
	txn := "txn-1"

	seed := func(f *fixture, status domain.ParticipationStatus, total, paid string) string {
		return f.repo.put(domain.Participation{
			UserID: "u1", EventID: "e1", UserName: "Old Name", Tower: "A", FlatNo: "101",
			NumTickets: 2, VegHeads: 2,
			TotalPayable: dec(total), AmountPaid: dec(paid),
			PaymentRemaining: domain.RemainingBalance(dec(total), dec(paid)),
			Status:           status, TransactionID: &txn,
		})
	}
	edit := func(id string, tickets, veg, nonVeg int) domain.EditParticipationInput {
		return domain.EditParticipationInput{
			ID:     id,
			Unit:   domain.Unit{Tower: "A", FlatNo: "101"},
			Counts: domain.AttendeeCounts{NumTickets: tickets, VegHeads: veg, NonVegHeads: nonVeg},
		}
	}

	t.Run("raising the total on a confirmed record requires adjustment", func(t *testing.T) {
		f := newFixture(t)
		id := seed(f, domain.StatusConfirmed, "130", "130")

		p, err := f.svc.EditParticipation(ctx, edit(id, 2, 4, 0))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPaymentAdjustmentRequired, p.Status)
		assert.Equal(t, "160", p.TotalPayable.String())
		assert.Equal(t, "130", p.AmountPaid.String())
		assert.Equal(t, "30", p.PaymentRemaining.String())
		require.NotNil(t, p.TransactionID)
		assert.Equal(t, "txn-1", *p.TransactionID)
		assert.Equal(t, "Asha", p.UserName)
	})

	t.Run("lowering the total below paid confirms and clamps", func(t *testing.T) {
		f := newFixture(t)
		id := seed(f, domain.StatusPaymentAdjustmentRequired, "200", "130")

		p, err := f.svc.EditParticipation(ctx, edit(id, 1, 1, 0))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, p.Status)
		assert.Equal(t, "65", p.TotalPayable.String())
		assert.Equal(t, "130", p.AmountPaid.String())
		assert.True(t, p.PaymentRemaining.IsZero())
	})

	t.Run("pending stays pending while money is owed", func(t *testing.T) {
		f := newFixture(t)
		id := seed(f, domain.StatusPendingPayment, "130", "0")

		in := edit(id, 3, 3, 0)
		comments := "more guests"
		in.ContributionComments = &comments
		p, err := f.svc.EditParticipation(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingPayment, p.Status)
		assert.Equal(t, "195", p.PaymentRemaining.String())
		assert.Equal(t, "more guests", p.ContributionComments)
	})

	t.Run("cancelled record is terminal", func(t *testing.T) {
		f := newFixture(t)
		id := seed(f, domain.StatusCancelled, "130", "0")

		_, err := f.svc.EditParticipation(ctx, edit(id, 1, 1, 0))
		require.ErrorIs(t, err, domain.ErrTerminalState)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.EditParticipation(ctx, edit("missing", 1, 1, 0))
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("moving onto an occupied unit conflicts", func(t *testing.T) {
		f := newFixture(t)
		seed(f, domain.StatusPendingPayment, "130", "0")
		other := f.repo.put(domain.Participation{UserID: "u2", EventID: "e1", Tower: "B", FlatNo: "5", NumTickets: 1, Status: domain.StatusPendingPayment})

		in := edit(other, 1, 1, 0)
		_, err := f.svc.EditParticipation(ctx, in)
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("upstream failure is not masked", func(t *testing.T) {
		f := newFixture(t)
		id := seed(f, domain.StatusPendingPayment, "130", "0")
		f.users.err = &domain.UpstreamError{Service: "user_directory", StatusCode: 500, Err: errors.New("boom")}

		_, err := f.svc.EditParticipation(ctx, edit(id, 1, 1, 0))
		require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.Zero(t, f.repo.updates)
	})

	t.Run("retries after a concurrent write", func(t *testing.T) {
		f := newFixture(t)
		id := seed(f, domain.StatusPendingPayment, "130", "0")
		f.repo.staleWrites = 2

		p, err := f.svc.EditParticipation(ctx, edit(id, 1, 1, 0))
		require.NoError(t, err)
		assert.Equal(t, "65", p.TotalPayable.String())
		assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.StaleVersionRetries))
	})

	t.Run("gives up after repeated concurrent writes", func(t *testing.T) {
		f := newFixture(t)
		id := seed(f, domain.StatusPendingPayment, "130", "0")
		f.repo.staleWrites = maxWriteAttempts

		_, err := f.svc.EditParticipation(ctx, edit(id, 1, 1, 0))
		require.ErrorIs(t, err, domain.ErrStaleVersion)
	})
}

func TestNextStatusAfterEdit(t *testing.T) {
	tests := []struct {
		current domain.ParticipationStatus
		owed    string
		want    domain.ParticipationStatus
	}{
		{domain.StatusConfirmed, "10", domain.StatusPaymentAdjustmentRequired},
		{domain.StatusConfirmed, "0", domain.StatusConfirmed},
		{domain.StatusConfirmed, "-5", domain.StatusConfirmed},
		{domain.StatusPendingPayment, "10", domain.StatusPendingPayment},
		{domain.StatusPendingPayment, "0", domain.StatusConfirmed},
		{domain.StatusPartiallyPaid, "10", domain.StatusPartiallyPaid},
		{domain.StatusPartiallyPaid, "-1", domain.StatusConfirmed},
		{domain.StatusPaymentFailed, "10", domain.StatusPaymentFailed},
		{domain.StatusPaymentAdjustmentRequired, "10", domain.StatusPaymentAdjustmentRequired},
		{domain.StatusPaymentAdjustmentRequired, "0", domain.StatusConfirmed},
		{domain.StatusCancelled, "0", domain.StatusCancelled},
		{domain.StatusCancelled, "10", domain.StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(string(tt.current)+"/"+tt.owed, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatusAfterEdit(tt.current, dec(tt.owed)))
		})
	}
}

func TestParticipationService_CancelDeleteCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel is terminal and idempotent", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.svc.StartParticipation(ctx, startInput("u1", "A", "101", 1, 1, 0))
		require.NoError(t, err)

		cancelled, err := f.svc.CancelParticipation(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, cancelled.Status)

		again, err := f.svc.CancelParticipation(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, cancelled.Version, again.Version)
	})

	t.Run("cancel unknown", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CancelParticipation(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete any status", func(t *testing.T) {
		f := newFixture(t)
		id := f.repo.put(domain.Participation{UserID: "u1", EventID: "e1", Tower: "A", FlatNo: "1", Status: domain.StatusConfirmed})

		require.NoError(t, f.svc.DeleteParticipation(ctx, id))
		require.ErrorIs(t, f.svc.DeleteParticipation(ctx, id), domain.ErrNotFound)
		_, err := f.svc.GetParticipation(ctx, id)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("check by user and event", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.svc.StartParticipation(ctx, startInput("u1", "A", "101", 1, 1, 0))
		require.NoError(t, err)

		got, err := f.svc.CheckParticipation(ctx, "u1", "e1")
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)

		_, err = f.svc.CheckParticipation(ctx, "u2", "e1")
		require.ErrorIs(t, err, domain.ErrNotFound)

		_, err = f.svc.CheckParticipation(ctx, "", "e1")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("list filters", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.StartParticipation(ctx, startInput("u1", "A", "101", 1, 1, 0))
		require.NoError(t, err)
		_, err = f.svc.StartParticipation(ctx, startInput("u2", "A", "102", 1, 1, 0))
		require.NoError(t, err)

		_, total, err := f.svc.ListParticipations(ctx, domain.ParticipationFilter{}, domain.PaginationParams{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		mine, _, err := f.svc.ListParticipations(ctx, domain.ParticipationFilter{UserID: "u2"}, domain.PaginationParams{})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "102", mine[0].FlatNo)

		_, _, err = f.svc.ListParticipations(ctx, domain.ParticipationFilter{UserID: "u2", EventID: "e1"}, domain.PaginationParams{})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
