package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-cohort-engine/pkg/jobs"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/periods/current", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/periods/current", http.StatusOK, 30*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveSnapshot("course", 4*time.Millisecond)
	m.ObserveStatistics("course", time.Millisecond, nil)
	m.ObserveStatistics("course", time.Millisecond, errors.New("boom"))

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(1), snap.SnapshotCount)
	assert.InDelta(t, 4.0, snap.AverageSnapshotMs, 0.001)
	assert.Equal(t, uint64(1), snap.StatisticsComputed)
	assert.Equal(t, uint64(1), snap.StatisticsFailed)
}

func TestMetricsServiceExposition(t *testing.T) {
	m := NewMetricsService()
	m.ObserveStatistics("offering", time.Millisecond, nil)
	m.TrackQueue("workload-refresh", func() jobs.Stats { return jobs.Stats{Pending: 3, Processed: 7} })
	m.TrackQueue("workload-refresh", func() jobs.Stats { return jobs.Stats{} })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `statistics_computations_total{outcome="ok",scope="offering"} 1`)
	assert.Contains(t, body, `job_queue_pending{queue="workload-refresh"} 3`)
	assert.Contains(t, body, `job_queue_processed_total{queue="workload-refresh"} 7`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveStatistics("x", time.Millisecond, nil)
	m.TrackQueue("q", nil)
	assert.Zero(t, m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
