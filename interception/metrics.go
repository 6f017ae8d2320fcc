package interception

import (
	"errors"
	"time"
)

const metricsStartKey = "phroxy.metrics.start"

// MetricsCollector defines the interface for collecting call metrics
type MetricsCollector interface {
	IncrementCallCount(method string)
	RecordCallDuration(method string, duration time.Duration)
	IncrementFailureCount(method string, kind string)
}

// FailureKind is implemented by failures that classify themselves for metrics
type FailureKind interface {
	Kind() string
}

// MetricsInterceptor collects metrics about intercepted calls
type MetricsInterceptor struct {
	collector MetricsCollector
}

// NewMetricsInterceptor creates a new metrics interceptor
func NewMetricsInterceptor(collector MetricsCollector) *MetricsInterceptor {
	return &MetricsInterceptor{collector: collector}
}

// OnBeforeCall implements Interceptor
func (i *MetricsInterceptor) OnBeforeCall(ctx *Context) {
	i.collector.IncrementCallCount(ctx.Method().Key().String())
	ctx.SetData(metricsStartKey, time.Now())
}

// OnAfterCall implements Interceptor
func (i *MetricsInterceptor) OnAfterCall(ctx *Context) {
	method := ctx.Method().Key().String()

	if v, ok := ctx.Data(metricsStartKey); ok {
		if start, ok := v.(time.Time); ok {
			i.collector.RecordCallDuration(method, time.Since(start))
		}
	}

	if err := ctx.Failure(); err != nil {
		i.collector.IncrementFailureCount(method, failureKind(err))
	}
}

// Name implements Named
func (i *MetricsInterceptor) Name() string {
	return "MetricsInterceptor"
}

func failureKind(err error) string {
	var kinded FailureKind
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	var guardErr *GuardError
	if errors.As(err, &guardErr) {
		return "guard"
	}
	return "error"
}
