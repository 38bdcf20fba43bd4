package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the Prometheus instruments for the payout pipeline.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	cascades         *prometheus.CounterVec
	cascadeWrites    prometheus.Counter
	cascadeDuplicate prometheus.Counter
	ledgerRejected   *prometheus.CounterVec
}

// New registers and returns the application metrics.
func New() *Metrics {
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atelier_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	cascades := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_cascades_total",
		Help: "Reward cascades by outcome (completed, rate_not_found, failed).",
	}, []string{"outcome"})

	cascadeWrites := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atelier_cascade_ledger_writes_total",
		Help: "Ledger transactions written by the distribution engine.",
	})

	cascadeDuplicate := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atelier_cascade_duplicate_writes_total",
		Help: "Cascade ledger writes skipped because the idempotency key already existed.",
	})

	ledgerRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_ledger_rejected_total",
		Help: "Ledger writes rejected before any append, by reason.",
	}, []string{"reason"})

	prometheus.MustRegister(
		httpRequests,
		httpDuration,
		cascades,
		cascadeWrites,
		cascadeDuplicate,
		ledgerRejected,
	)

	return &Metrics{
		httpRequests:     httpRequests,
		httpDuration:     httpDuration,
		cascades:         cascades,
		cascadeWrites:    cascadeWrites,
		cascadeDuplicate: cascadeDuplicate,
		ledgerRejected:   ledgerRejected,
	}
}

func (m *Metrics) ObserveCascade(outcome string) {
	if m == nil {
		return
	}
	m.cascades.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddCascadeWrites(written, duplicates int) {
	if m == nil {
		return
	}
	m.cascadeWrites.Add(float64(written))
	m.cascadeDuplicate.Add(float64(duplicates))
}

func (m *Metrics) ObserveLedgerRejected(reason string) {
	if m == nil {
		return
	}
	m.ledgerRejected.WithLabelValues(reason).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
