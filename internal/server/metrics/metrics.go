// Package metrics defines the Prometheus metrics of the vault. All of them
// are registered with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "credvault"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// EngineOperationsTotal counts engine calls.
// Labels:
//   - operation: engine operation name (e.g. "login", "save_credential")
//   - status: "ok" or the error kind in lower case
var EngineOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engine_operations_total",
		Help:      "Total number of auth engine operations by outcome.",
	},
	[]string{"operation", "status"},
)

// AuditWriteFailuresTotal counts audit entries that could not be persisted.
var AuditWriteFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "Total number of audit entries lost to storage errors.",
	},
)

// LoginLimiterErrorsTotal counts limiter backend failures; the limiter then
// lets the attempt through.
var LoginLimiterErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_limiter_errors_total",
		Help:      "Total number of login limiter backend errors.",
	},
)

// HTTPRequestDuration measures handler latency.
// Labels:
//   - method: HTTP method
//   - route: registered route path (e.g. "/credentials/:service")
//   - code: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "code"},
)

// GRPCRequestsTotal counts unary gRPC calls.
// Labels:
//   - method: full gRPC method name
//   - code: gRPC status code name
var GRPCRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grpc_requests_total",
		Help:      "Total number of unary gRPC requests.",
	},
	[]string{"method", "code"},
)
