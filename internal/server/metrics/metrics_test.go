package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineOperationsTotal(t *testing.T) {
	c := EngineOperationsTotal.WithLabelValues("login", StatusOK)
	before := testutil.ToFloat64(c)

	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestAuditWriteFailuresTotal(t *testing.T) {
	before := testutil.ToFloat64(AuditWriteFailuresTotal)
	AuditWriteFailuresTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AuditWriteFailuresTotal))
}

func TestRegisteredWithDefaultRegistry(t *testing.T) {
	HTTPRequestDuration.WithLabelValues("GET", "/health", "200").Observe(0.01)
	GRPCRequestsTotal.WithLabelValues("/credvault.v1.VaultService/Ping", "OK").Inc()
	LoginLimiterErrorsTotal.Inc()
	EngineOperationsTotal.WithLabelValues("register", StatusOK).Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), namespace+"_") {
			names[f.GetName()] = true
		}
	}
	for _, want := range []string{
		"credvault_engine_operations_total",
		"credvault_audit_write_failures_total",
		"credvault_login_limiter_errors_total",
		"credvault_http_request_duration_seconds",
		"credvault_grpc_requests_total",
	} {
		assert.True(t, names[want], "metric %s not registered", want)
	}
}
