package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRemoteCall("create_workflow", nil)
	m.ObserveRemoteCall("create_workflow", errors.New("boom"))
	m.ObserveRemoteCall("create_workflow", errors.New("boom"))
	m.ObserveTransition("deployed", true)

	assert.InDelta(t, 1, testutil.ToFloat64(m.remoteCalls.WithLabelValues("create_workflow", "success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.remoteCalls.WithLabelValues("create_workflow", "failure")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.transitions.WithLabelValues("deployed", "success")), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRemoteCall("x", nil)
		m.ObserveTransition("y", false)
	})
	assert.NotNil(t, m.Handler())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveTransition("activated", false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `flowgate_lifecycle_transitions_total{action="activated",outcome="failure"} 1`)
}
