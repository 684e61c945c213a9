package models

import "time"

// SystemMetrics is a point-in-time digest of the service's instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	SnapshotCount            uint64    `json:"snapshot_count"`
	AverageSnapshotMs        float64   `json:"average_snapshot_ms"`
	StatisticsComputed       uint64    `json:"statistics_computed"`
	StatisticsFailed         uint64    `json:"statistics_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
