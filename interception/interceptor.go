package interception

import (
	"fmt"
)

// Interceptor observes calls to proxied members. Hooks communicate only by
// mutating the shared Context. A hook that panics aborts the call.
type Interceptor interface {
	// OnBeforeCall runs before the original member
	OnBeforeCall(ctx *Context)

	// OnAfterCall runs after the original member, or after it was skipped
	OnAfterCall(ctx *Context)
}

// Named is implemented by interceptors that report a name for logging
type Named interface {
	Name() string
}

// Funcs is a function adapter for Interceptor. Nil hooks do nothing.
type Funcs struct {
	Label  string
	Before func(ctx *Context)
	After  func(ctx *Context)
}

// OnBeforeCall implements Interceptor
func (f *Funcs) OnBeforeCall(ctx *Context) {
	if f.Before != nil {
		f.Before(ctx)
	}
}

// OnAfterCall implements Interceptor
func (f *Funcs) OnAfterCall(ctx *Context) {
	if f.After != nil {
		f.After(ctx)
	}
}

// Name implements Named
func (f *Funcs) Name() string {
	if f.Label == "" {
		return "Funcs"
	}
	return f.Label
}

// NameOf returns the name of an interceptor for diagnostics
func NameOf(i Interceptor) string {
	if n, ok := i.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", i)
}
