package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eventparticipation/internal/domain"
	"eventparticipation/internal/metrics"
)

var tracer = otel.Tracer("eventparticipation/services")

// maxWriteAttempts bounds read-compute-write cycles lost to concurrent updates.
const maxWriteAttempts = 3

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan marks unexpected failures on span. Client-correctable errors are
// not span errors.
func endSpan(span trace.Span, err error) {
	if err != nil && !isClientError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrTerminalState)
}

// retryOnStale reruns fn while it reports domain.ErrStaleVersion, up to
// maxWriteAttempts in total.
func retryOnStale(m *metrics.Metrics, fn func() (*domain.Participation, error)) (*domain.Participation, error) {
	for attempt := 1; ; attempt++ {
		p, err := fn()
		if errors.Is(err, domain.ErrStaleVersion) && attempt < maxWriteAttempts {
			m.IncrementStaleRetry()
			continue
		}
		return p, err
	}
}
