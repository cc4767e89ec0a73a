package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zancompute/zanconfig/internal/errors"
)

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeOK},
		{"validation", errors.Validation("test", "bad"), OutcomeValidation},
		{"not found", errors.NotFound("test", "missing"), OutcomeNotFound},
		{"store", errors.Store("test", fmt.Errorf("boom")), OutcomeStore},
		{"plain", fmt.Errorf("boom"), OutcomeStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestMetrics_StoreOperations(t *testing.T) {
	t.Parallel()
	m := New(false)

	m.ObserveStoreOperation("create", nil, 5*time.Millisecond)
	m.ObserveStoreOperation("create", nil, 5*time.Millisecond)
	m.ObserveStoreOperation("update", errors.NotFound("test", "missing"), time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.storeOps.WithLabelValues("create", OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.storeOps.WithLabelValues("update", OutcomeNotFound)), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.storeDuration))
}

func TestMetrics_SchemaAndFreshness(t *testing.T) {
	t.Parallel()
	m := New(false)

	m.SchemaStepFailed("add_column")
	m.FreshnessFailed("query")
	m.FreshnessServed(true)
	m.FreshnessQueried(7, 20*time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(m.schemaFailures.WithLabelValues("add_column")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.freshnessFailures.WithLabelValues("query")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.freshnessReports.WithLabelValues("cache")), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(m.freshnessRows), 0)
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()
	m := New(false)
	m.ObserveHTTPRequest(http.MethodGet, "/api/clients", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `zanconfig_http_requests_total{method="GET",route="/api/clients",status="200"} 1`)
}
