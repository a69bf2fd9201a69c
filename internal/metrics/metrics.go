package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Metrics holds the participation service collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	PriceCalculations      *prometheus.CounterVec
	ParticipationsCreated  prometheus.Counter
	ParticipationConflicts prometheus.Counter
	ParticipationsEdited   *prometheus.CounterVec
	StaleVersionRetries    prometheus.Counter
	PaymentCallbacks       *prometheus.CounterVec
	CacheLookups           *prometheus.CounterVec
	UpstreamDuration       *prometheus.HistogramVec
	HTTPRequestDuration    *prometheus.HistogramVec
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PriceCalculations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "participation_price_calculations_total",
			Help: "Price calculations by charge config source (catalog or fallback)",
		}, []string{"source"}),
		ParticipationsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "participation_created_total",
			Help: "Participations registered",
		}),
		ParticipationConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "participation_unit_conflicts_total",
			Help: "Registrations rejected because the unit already participates in the event",
		}),
		ParticipationsEdited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "participation_edited_total",
			Help: "Participation edits by resulting status",
		}, []string{"status"}),
		StaleVersionRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "participation_stale_version_retries_total",
			Help: "Read-modify-write cycles retried after a concurrent update",
		}),
		PaymentCallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "participation_payment_callbacks_total",
			Help: "Payment gateway callbacks by outcome and handling result",
		}, []string{"outcome", "result"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "participation_charge_config_cache_lookups_total",
			Help: "Charge config cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		UpstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "participation_upstream_request_duration_seconds",
			Help:    "Latency of calls to the user directory and event catalog",
			Buckets: durationBuckets,
		}, []string{"service", "outcome"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "participation_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status",
			Buckets: durationBuckets,
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) ObservePrice(fallback bool) {
	if m == nil {
		return
	}
	source := "catalog"
	if fallback {
		source = "fallback"
	}
	m.PriceCalculations.WithLabelValues(source).Inc()
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.ParticipationsCreated.Inc()
}

func (m *Metrics) IncrementConflict() {
	if m == nil {
		return
	}
	m.ParticipationConflicts.Inc()
}

func (m *Metrics) IncrementEdited(status string) {
	if m == nil {
		return
	}
	m.ParticipationsEdited.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementStaleRetry() {
	if m == nil {
		return
	}
	m.StaleVersionRetries.Inc()
}

// IncrementPaymentCallback records a handled callback. result is one of
// applied, duplicate, ignored or rejected.
func (m *Metrics) IncrementPaymentCallback(outcome, result string) {
	if m == nil {
		return
	}
	m.PaymentCallbacks.WithLabelValues(outcome, result).Inc()
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveUpstream records the duration of an outbound call.
// Call with time.Now() at the start of the call.
func (m *Metrics) ObserveUpstream(service string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamDuration.WithLabelValues(service, outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveHTTPRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, statusClass(status)).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
