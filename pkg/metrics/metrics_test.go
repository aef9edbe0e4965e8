package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordGatewayCall(t *testing.T) {
	m := New(DefaultConfig("handy-terminal"))

	m.RecordGatewayCall("listSchedules", "success", 20*time.Millisecond)
	m.RecordGatewayCall("listSchedules", "success", 30*time.Millisecond)
	m.RecordGatewayCall("listSchedules", "NETWORK_ERROR", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatewayRequestsTotal.WithLabelValues("handy-terminal", "listSchedules", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayRequestsTotal.WithLabelValues("handy-terminal", "listSchedules", "NETWORK_ERROR")))
}

func TestMetrics_RecordSubmissionAndIntent(t *testing.T) {
	m := New(DefaultConfig("handy-terminal"))

	m.RecordSubmission("new", "success", 200*time.Millisecond)
	m.RecordIntent("incoming", "submit", "success")
	m.SetStateSubscribers(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("handy-terminal", "new", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntentsTotal.WithLabelValues("handy-terminal", "incoming", "submit", "success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StateSubscribers))
}

func TestMetrics_Handler(t *testing.T) {
	m := New(DefaultConfig("handy-terminal"))
	m.RecordPickingLoad("MY_AREA", "loaded")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wms_picking_task_loads_total")
}
