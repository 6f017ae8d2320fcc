package interception

import (
	"log/slog"
)

type phase int

const (
	phaseBefore phase = iota
	phaseAfter
)

func (p phase) String() string {
	if p == phaseBefore {
		return "before"
	}
	return "after"
}

// Dispatcher runs the before and after chains of a call
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a dispatcher over registry
func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	if registry == nil {
		registry = NewRegistry()
	}
	d := &Dispatcher{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher resolves from
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// RunBefore invokes OnBeforeCall of every applicable interceptor until one
// clears the continuation flag. Panics raised by hooks are not recovered.
func (d *Dispatcher) RunBefore(ctx *Context) {
	d.run(ctx, phaseBefore)
}

// RunAfter invokes OnAfterCall of every applicable interceptor until one
// clears the continuation flag. Panics raised by hooks are not recovered.
func (d *Dispatcher) RunAfter(ctx *Context) {
	d.run(ctx, phaseAfter)
}

func (d *Dispatcher) run(ctx *Context, p phase) {
	chain := d.registry.Resolve(ctx.Method())
	for i, interceptor := range chain {
		if !ctx.ShouldCallNext() {
			d.logger.Debug("interceptor chain short-circuited",
				"method", ctx.Method().Key().String(),
				"phase", p.String(),
				"skipped", len(chain)-i,
				"invocationId", ctx.InvocationID(),
			)
			return
		}

		if p == phaseBefore {
			interceptor.OnBeforeCall(ctx)
		} else {
			interceptor.OnAfterCall(ctx)
		}
	}
}
