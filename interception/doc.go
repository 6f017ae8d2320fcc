// Package interception provides the before/after interceptor model for proxied calls.
//
// Each call through a proxy gets a fresh Context. The dispatcher resolves, once
// per method identity, which registered interceptors apply, then runs their
// OnBeforeCall hooks in registration order, the original member, and their
// OnAfterCall hooks in the same order. Any hook may stop the remaining work by
// calling CallNext(false).
//
// Built-in interceptors:
//   - LoggingInterceptor: Logs calls with timing information
//   - MetricsInterceptor: Collects call counts, durations and failures
//   - CachingInterceptor: Memoizes successful results per argument list
//   - GuardInterceptor: Rejects calls that fail a check
//
// Example usage:
//
//	registry := interception.NewRegistry()
//	registry.Register(interception.NewLoggingInterceptor(logger), interception.MatchAll())
//	registry.Register(&interception.Funcs{
//		Before: func(ctx *interception.Context) {
//			if ctx.Method().Name == "Delete" {
//				ctx.SetFailure(errors.New("read only"))
//				ctx.CallNext(false)
//			}
//		},
//	}, interception.MethodPrefix("Delete"))
//
//	dispatcher := interception.NewDispatcher(registry)
//
// Interceptors communicate only through the Context. A hook that panics
// aborts the call and the panic reaches the caller unchanged.
package interception
