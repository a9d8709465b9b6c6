package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "dashboard"

// Navigation outcomes
const (
	outcomeAuthenticated = "authenticated"
	outcomeAnonymous     = "anonymous"
	outcomeRedirect      = "redirect_login"
	outcomeRejected      = "token_rejected"
	outcomeFailed        = "profile_error"
)

type metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	navigationsTotal *prometheus.CounterVec
	exchangesTotal   *prometheus.CounterVec
}

func newMetrics(registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route pattern and status code",
		}, []string{"route", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "session_navigations_total",
			Help:      "Page navigations seen by the session bootstrap, by outcome",
		}, []string{"outcome"}),

		exchangesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_exchanges_total",
			Help:      "Token exchange attempts, by result",
		}, []string{"result"}),
	}
}

func (m *metrics) observeRequest(route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *metrics) navigation(outcome string) {
	m.navigationsTotal.WithLabelValues(outcome).Inc()
}

func (m *metrics) exchange(result string) {
	m.exchangesTotal.WithLabelValues(result).Inc()
}
