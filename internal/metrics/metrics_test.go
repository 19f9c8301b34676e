package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/codearena/internal/metrics"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ObserveUpstream("leaderboard", metrics.OutcomeSuccess, time.Millisecond)
		m.CountSubmission("accepted")
		m.CountStale("leaderboard")
		m.CountJob("refresh_leaderboard", "ok")
	})
	assert.Nil(t, m.Registry())
}

func TestCountersAndExposition(t *testing.T) {
	m := metrics.New()

	m.ObserveUpstream("challenges", metrics.OutcomeSuccess, 20*time.Millisecond)
	m.ObserveUpstream("challenges", metrics.OutcomeNetwork, time.Second)
	m.CountSubmission("accepted")
	m.CountStale("leaderboard")
	m.CountStale("leaderboard")

	assert.Equal(t, 1.0, promtest.ToFloat64(m.UpstreamRequests().WithLabelValues("challenges", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Submissions().WithLabelValues("accepted")))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.StaleResponses().WithLabelValues("leaderboard")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "codearena_upstream_requests_total")
	assert.Contains(t, string(body), "codearena_stale_responses_total")
}
