// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

const namespace = "kupovina"

// Result labels for Mutations.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

var (
	// Mutations counts controller operations by op and result.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Mutations issued by sessions, by operation and result.",
	}, []string{"op", "result"})

	// Snapshots counts remote snapshots applied to session mirrors.
	Snapshots = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_applied_total",
		Help:      "Remote snapshots applied to session mirrors, by root.",
	}, []string{"root"})

	// SyncErrors counts failed snapshot reloads.
	SyncErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_errors_total",
		Help:      "Failed snapshot reloads, by root.",
	}, []string{"root"})

	// Rejections counts requests turned away by the HTTP gates.
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rejections_total",
		Help:      "Requests rejected before reaching a handler, by reason.",
	}, []string{"reason"})

	// RequestDuration observes handled requests by route pattern.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method, route and status class.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "class"})

	// ActiveSessions is the number of live sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of live sessions.",
	})
)

// Result classifies err for the result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case domain.IsValidation(err):
		return ResultRejected
	default:
		return ResultFailed
	}
}

// ObserveMutation records the outcome of one mutation.
func ObserveMutation(op string, err error) {
	Mutations.WithLabelValues(op, Result(err)).Inc()
}

// Rejection reasons.
const (
	ReasonRateLimited  = "rate_limited"
	ReasonHost         = "host"
	ReasonCIDR         = "cidr"
	ReasonUnauthorized = "unauthorized"
)

// Reject records a request turned away for reason.
func Reject(reason string) {
	Rejections.WithLabelValues(reason).Inc()
}

// StatusClass buckets an HTTP status as "2xx", "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
