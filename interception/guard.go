package interception

import (
	"log/slog"
)

// Guard decides whether a call may proceed. A non-nil error rejects it.
type Guard func(ctx *Context) error

// GuardInterceptor rejects calls for which its guard returns an error. The
// rejection becomes the call's failure and neither the remaining
// interceptors nor the original member run.
type GuardInterceptor struct {
	guard  Guard
	logger *slog.Logger
}

// NewGuardInterceptor creates a guard interceptor
func NewGuardInterceptor(guard Guard, logger *slog.Logger) *GuardInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardInterceptor{guard: guard, logger: logger}
}

// OnBeforeCall implements Interceptor
func (i *GuardInterceptor) OnBeforeCall(ctx *Context) {
	if i.guard == nil {
		return
	}
	if err := i.guard(ctx); err != nil {
		method := ctx.Method().Key().String()
		i.logger.Warn("call rejected by guard",
			"method", method,
			"invocationId", ctx.InvocationID(),
			"error", err,
		)
		ctx.SetFailure(&GuardError{Method: method, Err: err})
		ctx.CallNext(false)
	}
}

// OnAfterCall implements Interceptor
func (i *GuardInterceptor) OnAfterCall(*Context) {}

// Name implements Named
func (i *GuardInterceptor) Name() string {
	return "GuardInterceptor"
}
