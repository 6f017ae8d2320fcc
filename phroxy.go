// Copyright 2024 Phroxy Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package phroxy wires type introspection, interceptor registration and
// proxy synthesis into a single entry point.
package phroxy

import (
	"fmt"
	"log/slog"

	"github.com/glimte/phroxy-go/interception"
	"github.com/glimte/phroxy-go/introspect"
	"github.com/glimte/phroxy-go/matcher"
	"github.com/glimte/phroxy-go/proxy"
)

// Kernel provides the main entry point for phroxy-go
type Kernel struct {
	registry    *interception.Registry
	dispatcher  *interception.Dispatcher
	synthesizer *proxy.Synthesizer
	direct      *proxy.DirectFactory
	catalog     *introspect.Catalog
	evaluator   *matcher.Evaluator
	logger      *slog.Logger
	cfg         *kernelConfig
}

// NewKernel creates a kernel with its own registry, dispatcher and proxy cache
func NewKernel(options ...KernelOption) (*Kernel, error) {
	cfg := &kernelConfig{
		logger:     slog.Default(),
		namePrefix: proxy.DefaultNamePrefix,
		proxying:   true,
	}

	for _, opt := range options {
		opt(cfg)
	}

	evaluator, err := matcher.NewEvaluator(matcher.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create matcher evaluator: %w", err)
	}

	registry := interception.NewRegistry()
	dispatcher := interception.NewDispatcher(registry, interception.WithDispatcherLogger(cfg.logger))

	k := &Kernel{
		registry:   registry,
		dispatcher: dispatcher,
		synthesizer: proxy.NewSynthesizer(dispatcher,
			proxy.WithLogger(cfg.logger),
			proxy.WithNamePrefix(cfg.namePrefix),
		),
		direct:    proxy.NewDirectFactory(),
		catalog:   introspect.NewCatalog(),
		evaluator: evaluator,
		logger:    cfg.logger,
		cfg:       cfg,
	}

	if err := k.registerBuiltins(); err != nil {
		return nil, err
	}
	return k, nil
}

// registerBuiltins installs the interceptors requested through options
func (k *Kernel) registerBuiltins() error {
	if k.cfg.callLogging {
		if err := k.registry.Register(interception.NewLoggingInterceptor(k.logger), interception.MatchAll()); err != nil {
			return fmt.Errorf("failed to register logging interceptor: %w", err)
		}
	}
	if k.cfg.metrics != nil {
		if err := k.registry.Register(interception.NewMetricsInterceptor(k.cfg.metrics), interception.MatchAll()); err != nil {
			return fmt.Errorf("failed to register metrics interceptor: %w", err)
		}
	}
	return nil
}

// Register adds an interceptor for the members matcher accepts
func (k *Kernel) Register(interceptor interception.Interceptor, m interception.Matcher) error {
	if err := k.registry.Register(interceptor, m); err != nil {
		return err
	}
	k.logger.Debug("interceptor registered", "interceptor", interception.NameOf(interceptor))
	return nil
}

// RegisterExpr adds an interceptor for the members a CEL expression accepts
func (k *Kernel) RegisterExpr(interceptor interception.Interceptor, expression string) error {
	m, err := k.evaluator.Compile(expression)
	if err != nil {
		return err
	}
	return k.Register(interceptor, m)
}

// Reset drops every registration, synthesized type and cataloged descriptor.
// Interceptors installed through options are registered again.
func (k *Kernel) Reset() error {
	k.registry.Reset()
	k.synthesizer.Reset()
	k.catalog.Reset()
	return k.registerBuiltins()
}

// Describe describes v and records the descriptor for BuildByName
func (k *Kernel) Describe(v any, opts ...introspect.Option) (*introspect.TypeDescriptor, error) {
	desc, err := introspect.Describe(v, opts...)
	if err != nil {
		return nil, err
	}
	if err := k.catalog.Register(desc); err != nil {
		return nil, err
	}
	return desc, nil
}

// Build creates an instance of desc through the kernel's factory
func (k *Kernel) Build(desc *introspect.TypeDescriptor, args ...any) (any, error) {
	return k.Factory().Build(desc, args...)
}

// BuildByName builds a type previously recorded by Describe
func (k *Kernel) BuildByName(name string, args ...any) (any, error) {
	desc, err := k.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	return k.Build(desc, args...)
}

// Factory returns the proxy synthesizer, or the direct factory when
// proxying is disabled
func (k *Kernel) Factory() proxy.ObjectFactory {
	if !k.cfg.proxying {
		return k.direct
	}
	return k.synthesizer
}

// Registry returns the interceptor registry
func (k *Kernel) Registry() *interception.Registry {
	return k.registry
}

// Dispatcher returns the interceptor dispatcher
func (k *Kernel) Dispatcher() *interception.Dispatcher {
	return k.dispatcher
}

// Synthesizer returns the proxy synthesizer
func (k *Kernel) Synthesizer() *proxy.Synthesizer {
	return k.synthesizer
}

// Catalog returns the descriptors recorded by Describe
func (k *Kernel) Catalog() *introspect.Catalog {
	return k.catalog
}

// kernelConfig holds kernel configuration
type kernelConfig struct {
	logger      *slog.Logger
	namePrefix  string
	metrics     interception.MetricsCollector
	callLogging bool
	proxying    bool
}

// KernelOption configures the kernel
type KernelOption func(*kernelConfig)

// WithLogger sets the logger for all components
func WithLogger(logger *slog.Logger) KernelOption {
	return func(cfg *kernelConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithDefaultLogger uses the default logger
func WithDefaultLogger() KernelOption {
	return func(cfg *kernelConfig) {
		cfg.logger = slog.Default()
	}
}

// WithNamePrefix sets the prefix of synthesized proxy type names
func WithNamePrefix(prefix string) KernelOption {
	return func(cfg *kernelConfig) {
		cfg.namePrefix = prefix
	}
}

// WithMetricsCollector records metrics for every intercepted call
func WithMetricsCollector(collector interception.MetricsCollector) KernelOption {
	return func(cfg *kernelConfig) {
		cfg.metrics = collector
	}
}

// WithCallLogging logs every intercepted call
func WithCallLogging() KernelOption {
	return func(cfg *kernelConfig) {
		cfg.callLogging = true
	}
}

// WithoutProxying makes Build return plain instances
func WithoutProxying() KernelOption {
	return func(cfg *kernelConfig) {
		cfg.proxying = false
	}
}
