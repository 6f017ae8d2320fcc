package proxy

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/glimte/phroxy-go/interception"
	"github.com/glimte/phroxy-go/introspect"
)

// DefaultNamePrefix starts every proxy type name
const DefaultNamePrefix = "Phroxy"

// Synthesizer builds proxy types and caches them by original type name
type Synthesizer struct {
	dispatcher *interception.Dispatcher
	logger     *slog.Logger
	namePrefix string

	mu    sync.RWMutex
	types map[string]*Type
	group singleflight.Group
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNamePrefix sets the prefix of synthesized type names
func WithNamePrefix(prefix string) Option {
	return func(s *Synthesizer) {
		if prefix != "" {
			s.namePrefix = prefix
		}
	}
}

// NewSynthesizer creates a synthesizer whose proxies dispatch through dispatcher
func NewSynthesizer(dispatcher *interception.Dispatcher, opts ...Option) *Synthesizer {
	if dispatcher == nil {
		dispatcher = interception.NewDispatcher(nil)
	}
	s := &Synthesizer{
		dispatcher: dispatcher,
		logger:     slog.Default(),
		namePrefix: DefaultNamePrefix,
		types:      make(map[string]*Type),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatcher returns the dispatcher proxies call through
func (s *Synthesizer) Dispatcher() *interception.Dispatcher {
	return s.dispatcher
}

// Synthesize returns the proxy type for desc, creating it on first use.
// Concurrent first requests for the same type share one synthesis.
func (s *Synthesizer) Synthesize(desc *introspect.TypeDescriptor) (*Type, error) {
	if desc == nil {
		return nil, &ProxyError{Op: "synthesize", Err: fmt.Errorf("%w: %w", ErrNotProxyable, introspect.ErrMalformed)}
	}

	s.mu.RLock()
	t, ok := s.types[desc.Name]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	v, err, _ := s.group.Do(desc.Name, func() (any, error) {
		s.mu.RLock()
		t, ok := s.types[desc.Name]
		s.mu.RUnlock()
		if ok {
			return t, nil
		}

		if err := introspect.CheckProxyable(desc); err != nil {
			s.logger.Debug("type rejected for proxying", "type", desc.Name, "error", err)
			return nil, &ProxyError{Type: desc.Name, Op: "synthesize", Err: fmt.Errorf("%w: %w", ErrNotProxyable, err)}
		}

		t = newType(s, desc)

		s.mu.Lock()
		s.types[desc.Name] = t
		s.mu.Unlock()

		s.logger.Info("proxy type synthesized",
			"type", desc.Name,
			"proxy", t.name,
			"intercepted", len(t.methods),
		)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Type), nil
}

// Build implements ObjectFactory. The result is an *Instance.
func (s *Synthesizer) Build(desc *introspect.TypeDescriptor, args ...any) (any, error) {
	inst, err := s.NewInstance(desc, args...)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// NewInstance synthesizes the proxy type for desc and constructs an instance.
// Constructor arguments do not affect which proxy type is used.
func (s *Synthesizer) NewInstance(desc *introspect.TypeDescriptor, args ...any) (*Instance, error) {
	t, err := s.Synthesize(desc)
	if err != nil {
		return nil, err
	}
	return t.New(args...)
}

// Wrap binds an existing *T to the proxy type of desc
func (s *Synthesizer) Wrap(desc *introspect.TypeDescriptor, target any) (*Instance, error) {
	t, err := s.Synthesize(desc)
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(target)
	if target == nil || rv.Type() != reflect.PointerTo(desc.Type) || rv.IsNil() {
		return nil, &ProxyError{
			Type: desc.Name,
			Op:   "wrap",
			Err:  fmt.Errorf("%w: want non-nil *%s, got %T", ErrArgument, desc.Type.Name(), target),
		}
	}
	return &Instance{typ: t, target: rv}, nil
}

// Synthesized reports whether a proxy type exists for the original type name
func (s *Synthesizer) Synthesized(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[name]
	return ok
}

// Reset forgets every synthesized type and evicts their resolved
// interceptor chains from the registry
func (s *Synthesizer) Reset() {
	s.mu.Lock()
	names := make([]string, 0, len(s.types))
	for _, t := range s.types {
		names = append(names, t.name)
	}
	s.types = make(map[string]*Type)
	s.mu.Unlock()

	s.dispatcher.Registry().Evict(names...)
}

var _ ObjectFactory = (*Synthesizer)(nil)
var _ ObjectFactory = (*DirectFactory)(nil)
