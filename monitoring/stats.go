package monitoring

import (
	"sync"
	"time"
)

// Collector aggregates in-process serving counters. All methods are safe for
// concurrent use.
type Collector struct {
	mu sync.RWMutex

	startTime        time.Time
	requests         int64
	validationErrors int64
	labelCounts      [2]int64
	cacheHits        int64
	latencySum       time.Duration
	latencyCount     int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds      float64          `json:"uptime_seconds"`
	Requests           int64            `json:"requests"`
	Predictions        int64            `json:"predictions"`
	PredictionsByLabel map[string]int64 `json:"predictions_by_label"`
	ValidationErrors   int64            `json:"validation_errors"`
	CacheHits          int64            `json:"cache_hits"`
	MeanLatencyMS      float64          `json:"mean_latency_ms"`
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// RecordRequest counts one HTTP request against the API.
func (c *Collector) RecordRequest() {
	c.mu.Lock()
	c.requests++
	c.mu.Unlock()
}

// RecordPrediction counts one served prediction.
func (c *Collector) RecordPrediction(label int, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if label == 0 || label == 1 {
		c.labelCounts[label]++
	}
	c.latencySum += latency
	c.latencyCount++
}

// RecordValidationError counts one rejected predict request.
func (c *Collector) RecordValidationError() {
	c.mu.Lock()
	c.validationErrors++
	c.mu.Unlock()
}

// RecordCacheHit counts one predict call answered from the memo cache.
func (c *Collector) RecordCacheHit() {
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	meanLatency := 0.0
	if c.latencyCount > 0 {
		meanLatency = float64(c.latencySum.Microseconds()) / float64(c.latencyCount) / 1000.0
	}
	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Requests:      c.requests,
		Predictions:   c.labelCounts[0] + c.labelCounts[1],
		PredictionsByLabel: map[string]int64{
			"no heart disease": c.labelCounts[0],
			"heart disease":    c.labelCounts[1],
		},
		ValidationErrors: c.validationErrors,
		CacheHits:        c.cacheHits,
		MeanLatencyMS:    meanLatency,
	}
}
