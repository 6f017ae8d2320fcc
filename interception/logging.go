package interception

import (
	"log/slog"
	"time"
)

const loggingStartKey = "phroxy.logging.start"

// LoggingInterceptor logs intercepted calls with timing information
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor
func NewLoggingInterceptor(logger *slog.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingInterceptor{logger: logger}
}

// OnBeforeCall implements Interceptor
func (i *LoggingInterceptor) OnBeforeCall(ctx *Context) {
	ctx.SetData(loggingStartKey, time.Now())

	i.logger.Info("calling method",
		"method", ctx.Method().Key().String(),
		"invocationId", ctx.InvocationID(),
		"args", len(ctx.Arguments()),
	)
}

// OnAfterCall implements Interceptor
func (i *LoggingInterceptor) OnAfterCall(ctx *Context) {
	var duration time.Duration
	if v, ok := ctx.Data(loggingStartKey); ok {
		if start, ok := v.(time.Time); ok {
			duration = time.Since(start)
		}
	}

	if err := ctx.Failure(); err != nil {
		i.logger.Error("method call failed",
			"method", ctx.Method().Key().String(),
			"invocationId", ctx.InvocationID(),
			"duration", duration,
			"error", err,
		)
		return
	}

	i.logger.Info("method call completed",
		"method", ctx.Method().Key().String(),
		"invocationId", ctx.InvocationID(),
		"duration", duration,
	)
}

// Name implements Named
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}
