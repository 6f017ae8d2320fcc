// Package metrics provides collectors for interception.MetricsInterceptor.
package metrics

import (
	"slices"
	"sync"
	"time"

	"github.com/glimte/phroxy-go/interception"
)

const maxSamples = 100

// SimpleCollector is an in-memory call metrics collector
type SimpleCollector struct {
	mu sync.RWMutex

	// Call counters by method
	callCounters map[string]int64

	// Failure counters by method and failure kind
	failureCounters map[string]map[string]int64

	// Duration stats by method
	durations map[string]*timeStats
}

type timeStats struct {
	count   int64
	total   time.Duration
	min     time.Duration
	max     time.Duration
	samples []time.Duration // last maxSamples for percentiles
}

// NewSimpleCollector creates a new in-memory collector
func NewSimpleCollector() *SimpleCollector {
	return &SimpleCollector{
		callCounters:    make(map[string]int64),
		failureCounters: make(map[string]map[string]int64),
		durations:       make(map[string]*timeStats),
	}
}

// IncrementCallCount implements interception.MetricsCollector
func (c *SimpleCollector) IncrementCallCount(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callCounters[method]++
}

// RecordCallDuration implements interception.MetricsCollector
func (c *SimpleCollector) RecordCallDuration(method string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, exists := c.durations[method]
	if !exists {
		stats = &timeStats{
			min:     duration,
			max:     duration,
			samples: make([]time.Duration, 0, maxSamples),
		}
		c.durations[method] = stats
	}

	stats.count++
	stats.total += duration
	stats.min = min(stats.min, duration)
	stats.max = max(stats.max, duration)

	if len(stats.samples) >= maxSamples {
		stats.samples = stats.samples[1:]
	}
	stats.samples = append(stats.samples, duration)
}

// IncrementFailureCount implements interception.MetricsCollector
func (c *SimpleCollector) IncrementFailureCount(method string, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failureCounters[method] == nil {
		c.failureCounters[method] = make(map[string]int64)
	}
	c.failureCounters[method][kind]++
}

// Summary is a snapshot of all collected metrics
type Summary struct {
	CallCounts    map[string]int64            `json:"call_counts"`
	FailureCounts map[string]map[string]int64 `json:"failure_counts"`
	DurationStats map[string]DurationStats    `json:"duration_stats"`
}

// DurationStats are call duration statistics for one method
type DurationStats struct {
	Count int64         `json:"count"`
	Avg   time.Duration `json:"avg"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
}

// Summary returns a snapshot of all collected metrics
func (c *SimpleCollector) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := Summary{
		CallCounts:    make(map[string]int64, len(c.callCounters)),
		FailureCounts: make(map[string]map[string]int64, len(c.failureCounters)),
		DurationStats: make(map[string]DurationStats, len(c.durations)),
	}

	for method, count := range c.callCounters {
		summary.CallCounts[method] = count
	}

	for method, kinds := range c.failureCounters {
		summary.FailureCounts[method] = make(map[string]int64, len(kinds))
		for kind, count := range kinds {
			summary.FailureCounts[method][kind] = count
		}
	}

	for method, stats := range c.durations {
		ds := DurationStats{
			Count: stats.count,
			Min:   stats.min,
			Max:   stats.max,
		}
		if stats.count > 0 {
			ds.Avg = stats.total / time.Duration(stats.count)
		}
		if len(stats.samples) > 0 {
			sorted := slices.Clone(stats.samples)
			slices.Sort(sorted)
			ds.P50 = percentile(sorted, 0.50)
			ds.P95 = percentile(sorted, 0.95)
			ds.P99 = percentile(sorted, 0.99)
		}
		summary.DurationStats[method] = ds
	}

	return summary
}

// Reset clears all collected metrics
func (c *SimpleCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.callCounters = make(map[string]int64)
	c.failureCounters = make(map[string]map[string]int64)
	c.durations = make(map[string]*timeStats)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}

var _ interception.MetricsCollector = (*SimpleCollector)(nil)
