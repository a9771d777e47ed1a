package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for delivery metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeBusy    = "busy"
)

// Metrics holds the service's Prometheus collectors on a private registry
// so tests can build as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	ListsGenerated   prometheus.Counter
	ItemsPerList     prometheus.Histogram
	GenerateDuration prometheus.Histogram
	SessionsDropped  prometheus.Counter
	Deliveries       *prometheus.CounterVec
	DeliveryDuration *prometheus.HistogramVec
	RateLimited      prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ListsGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "mealplanner_shopping_lists_generated_total",
			Help: "Total number of shopping lists generated",
		}),
		ItemsPerList: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mealplanner_shopping_list_items",
			Help:    "Number of items on a generated shopping list",
			Buckets: []float64{0, 1, 5, 10, 20, 40, 80, 160},
		}),
		GenerateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mealplanner_shopping_generate_duration_seconds",
			Help:    "Duration of shopping list generation including snapshot loading",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SessionsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "mealplanner_shopping_session_keys_dropped_total",
			Help: "Selection and override entries dropped because their item left the list",
		}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mealplanner_shopping_deliveries_total",
			Help: "Export and share attempts by channel and outcome",
		}, []string{"channel", "outcome"}),
		DeliveryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mealplanner_shopping_delivery_duration_seconds",
			Help:    "Duration of export and share deliveries",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"channel"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "mealplanner_http_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		}),
	}
}

// ObserveGenerate records one generated list.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveGenerate(start time.Time, items int) {
	if m == nil {
		return
	}
	m.ListsGenerated.Inc()
	m.ItemsPerList.Observe(float64(items))
	m.GenerateDuration.Observe(time.Since(start).Seconds())
}

// AddSessionDropped records reconciled session keys.
func (m *Metrics) AddSessionDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsDropped.Add(float64(n))
}

// ObserveDelivery records an export/share attempt.
func (m *Metrics) ObserveDelivery(channel, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(channel, outcome).Inc()
	if outcome != OutcomeBusy {
		m.DeliveryDuration.WithLabelValues(channel).Observe(time.Since(start).Seconds())
	}
}

// IncRateLimited records one rejected request.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
