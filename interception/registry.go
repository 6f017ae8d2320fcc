package interception

import (
	"sync"

	"github.com/glimte/phroxy-go/introspect"
)

type registration struct {
	interceptor Interceptor
	matcher     Matcher
}

// Registry holds interceptors in registration order and memoizes, per method
// identity, which of them apply.
type Registry struct {
	mu            sync.RWMutex
	registrations []registration
	cache         map[introspect.MethodKey][]Interceptor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		registrations: make([]registration, 0),
		cache:         make(map[introspect.MethodKey][]Interceptor),
	}
}

// Register appends an interceptor. Previously resolved chains are discarded
// so the new interceptor is seen by every later call.
func (r *Registry) Register(interceptor Interceptor, matcher Matcher) error {
	if interceptor == nil {
		return ErrNilInterceptor
	}
	if matcher == nil {
		return ErrNilMatcher
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.registrations = append(r.registrations, registration{interceptor: interceptor, matcher: matcher})
	r.cache = make(map[introspect.MethodKey][]Interceptor)
	return nil
}

// Reset removes every registration and every resolved chain
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registrations = make([]registration, 0)
	r.cache = make(map[introspect.MethodKey][]Interceptor)
}

// Evict drops the resolved chains of members declared on the named types
func (r *Registry) Evict(typeNames ...string) {
	if len(typeNames) == 0 {
		return
	}
	names := make(map[string]bool, len(typeNames))
	for _, n := range typeNames {
		names[n] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.cache {
		if names[key.Type] {
			delete(r.cache, key)
		}
	}
}

// Resolve returns the interceptors whose matcher accepts m, in registration order
func (r *Registry) Resolve(m introspect.MethodDescriptor) []Interceptor {
	key := m.Key()

	r.mu.RLock()
	chain, cached := r.cache[key]
	r.mu.RUnlock()
	if cached {
		return append([]Interceptor(nil), chain...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have resolved it while waiting for the lock
	if chain, cached = r.cache[key]; cached {
		return append([]Interceptor(nil), chain...)
	}

	chain = make([]Interceptor, 0, len(r.registrations))
	for _, reg := range r.registrations {
		if reg.matcher(m) {
			chain = append(chain, reg.interceptor)
		}
	}
	r.cache[key] = chain
	return append([]Interceptor(nil), chain...)
}

// Len returns the number of registrations
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registrations)
}

// Cached returns the number of resolved method identities
func (r *Registry) Cached() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
