package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dispatch/internal/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Record(t *testing.T) {
	m := metrics.New()

	m.RecordCycle("success", 2*time.Second)
	m.RecordCycle("success", time.Second)
	m.RecordGeocode(metrics.SourceMemory)
	m.RecordOptimizerAttempt("retry")
	m.RecordAssignments(3)
	m.RecordAssignments(0)
	m.RecordTask("SUCCESS")
	m.SetFeedState("subscribed", []string{"connecting", "subscribed", "disconnected"})

	body := scrape(t, m)

	assert.Contains(t, body, `dispatch_cycles_total{outcome="success"} 2`)
	assert.Contains(t, body, `dispatch_geocode_lookups_total{source="memory"} 1`)
	assert.Contains(t, body, `dispatch_optimizer_attempts_total{result="retry"} 1`)
	assert.Contains(t, body, `dispatch_assignments_written_total 3`)
	assert.Contains(t, body, `dispatch_tasks_total{status="SUCCESS"} 1`)
	assert.Contains(t, body, `dispatch_feed_state{state="subscribed"} 1`)
	assert.Contains(t, body, `dispatch_feed_state{state="connecting"} 0`)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.RecordCycle("failure", time.Second)
		m.RecordGeocode(metrics.SourceMiss)
		m.RecordTask("SUCCESS")
		m.SetQueueDepth(3)
		m.SetBreakerState(2)
	})
}
