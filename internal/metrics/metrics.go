// Package metrics exposes Prometheus collectors for the HTTP API and the
// nutrition planner.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PlansComputed   *prometheus.CounterVec
	MealsLogged     prometheus.Counter
	WeightsLogged   prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calories_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "calories_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		PlansComputed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calories_plans_computed_total",
			Help: "Nutrition plans computed and stored, by goal direction.",
		}, []string{"direction"}),
		MealsLogged: f.NewCounter(prometheus.CounterOpts{
			Name: "calories_meals_logged_total",
			Help: "Meals recorded.",
		}),
		WeightsLogged: f.NewCounter(prometheus.CounterOpts{
			Name: "calories_weights_logged_total",
			Help: "Weight measurements recorded.",
		}),
	}
}

// Handler serves the exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// PlanComputed counts a stored plan.
func (m *Metrics) PlanComputed(direction string) {
	m.PlansComputed.WithLabelValues(direction).Inc()
}

// MealLogged counts a recorded meal.
func (m *Metrics) MealLogged() { m.MealsLogged.Inc() }

// WeightLogged counts a recorded weight.
func (m *Metrics) WeightLogged() { m.WeightsLogged.Inc() }
