package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glimte/phroxy-go/interception"
)

const namespace = "phroxy"

// PrometheusCollector exports call metrics through Prometheus
type PrometheusCollector struct {
	registry *prometheus.Registry

	callsTotal          *prometheus.CounterVec
	callDurationSeconds *prometheus.HistogramVec
	callFailuresTotal   *prometheus.CounterVec
}

// PrometheusOption configures a PrometheusCollector
type PrometheusOption func(*prometheusConfig)

type prometheusConfig struct {
	registry *prometheus.Registry
	buckets  []float64
}

// WithRegistry registers the metrics on registry instead of a private one
func WithRegistry(registry *prometheus.Registry) PrometheusOption {
	return func(c *prometheusConfig) {
		c.registry = registry
	}
}

// WithBuckets sets the duration histogram buckets
func WithBuckets(buckets ...float64) PrometheusOption {
	return func(c *prometheusConfig) {
		c.buckets = buckets
	}
}

// NewPrometheusCollector creates the collector and registers its metrics
func NewPrometheusCollector(opts ...PrometheusOption) (*PrometheusCollector, error) {
	cfg := &prometheusConfig{
		buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}

	c := &PrometheusCollector{
		registry: cfg.registry,
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of intercepted calls",
			},
			[]string{"method"},
		),
		callDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_duration_seconds",
				Help:      "Duration of intercepted calls in seconds",
				Buckets:   cfg.buckets,
			},
			[]string{"method"},
		),
		callFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "call_failures_total",
				Help:      "Total number of intercepted calls that ended in a failure",
			},
			[]string{"method", "kind"},
		),
	}

	for _, collector := range []prometheus.Collector{c.callsTotal, c.callDurationSeconds, c.callFailuresTotal} {
		if err := c.registry.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Registry returns the registry holding the metrics
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// IncrementCallCount implements interception.MetricsCollector
func (c *PrometheusCollector) IncrementCallCount(method string) {
	c.callsTotal.WithLabelValues(method).Inc()
}

// RecordCallDuration implements interception.MetricsCollector
func (c *PrometheusCollector) RecordCallDuration(method string, duration time.Duration) {
	c.callDurationSeconds.WithLabelValues(method).Observe(duration.Seconds())
}

// IncrementFailureCount implements interception.MetricsCollector
func (c *PrometheusCollector) IncrementFailureCount(method string, kind string) {
	c.callFailuresTotal.WithLabelValues(method, kind).Inc()
}

var _ interception.MetricsCollector = (*PrometheusCollector)(nil)
