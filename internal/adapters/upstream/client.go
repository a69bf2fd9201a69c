package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"eventparticipation/internal/domain"
	"eventparticipation/internal/metrics"
)

var tracer = otel.Tracer("eventparticipation/upstream")

// retryableError marks failures worth another attempt: transport errors,
// 429 and 5xx answers.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Client performs JSON GETs against one upstream service.
type Client struct {
	Service string
	BaseURL string
	HTTP    *http.Client
	Policy  RetryPolicy
	Metrics *metrics.Metrics
}

// NewClient builds a Client whose every attempt is bounded by timeout.
func NewClient(service, baseURL string, timeout time.Duration, policy RetryPolicy, m *metrics.Metrics) *Client {
	return &Client{
		Service: service,
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Policy:  policy,
		Metrics: m,
	}
}

// GetJSON fetches BaseURL+path into out. A 404 returns domain.ErrNotFound;
// every other failure is a *domain.UpstreamError.
func (c *Client) GetJSON(ctx context.Context, path string, out any) (err error) {
	ctx, span := tracer.Start(ctx, c.Service+".get", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("upstream.service", c.Service), attribute.String("http.path", path)))
	start := time.Now()
	defer func() {
		c.Metrics.ObserveUpstream(c.Service, start, err)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var status int
	err = Retry(ctx, c.Policy, isRetryable, func(ctx context.Context) error {
		var attemptErr error
		status, attemptErr = c.get(ctx, path, out)
		return attemptErr
	})
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	var re *retryableError
	if errors.As(err, &re) {
		err = re.err
	}
	return &domain.UpstreamError{Service: c.Service, StatusCode: status, Err: err}
}

func (c *Client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, err
		}
		return 0, &retryableError{err: fmt.Errorf("failed to call %s: %w", c.Service, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, domain.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return resp.StatusCode, &retryableError{err: fmt.Errorf("%s returned status: %d", c.Service, resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return resp.StatusCode, fmt.Errorf("%s returned status: %d", c.Service, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, &retryableError{err: fmt.Errorf("failed to read %s response: %w", c.Service, err)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", c.Service, err)
	}
	return resp.StatusCode, nil
}
