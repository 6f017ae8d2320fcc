// Package matcher compiles CEL expressions into interception matchers.
//
// Expressions see a single variable, method, with these fields:
//
//	name           string
//	type           string  declaring type
//	original_type  string
//	static         bool
//	returns_error  bool
//	returns_ref    bool
//	params         int
//	param_types    list(string)
//
// For example:
//
//	m, err := matcher.Compile(`method.name.startsWith("Get") && method.params == 0`)
package matcher

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/glimte/phroxy-go/interception"
	"github.com/glimte/phroxy-go/introspect"
)

var (
	// ErrCompile is returned for expressions that fail to compile
	ErrCompile = errors.New("matcher: compile expression")

	// ErrNotBoolean is returned for expressions whose result cannot be a bool
	ErrNotBoolean = errors.New("matcher: expression must return a boolean")
)

// Evaluator compiles and caches CEL programs
type Evaluator struct {
	mu           sync.RWMutex
	programCache map[string]cel.Program
	env          *cel.Env
	logger       *slog.Logger
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithLogger sets the logger used to report evaluation errors
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEvaluator creates an evaluator with an empty program cache
func NewEvaluator(opts ...Option) (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("method", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	e := &Evaluator{
		programCache: make(map[string]cel.Program),
		env:          env,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Compile turns expression into a Matcher. Evaluation errors make the
// matcher answer false.
func (e *Evaluator) Compile(expression string) (interception.Matcher, error) {
	program, err := e.getOrCompileProgram(expression)
	if err != nil {
		return nil, err
	}

	return func(m introspect.MethodDescriptor) bool {
		result, _, err := program.Eval(map[string]any{"method": activation(m)})
		if err != nil {
			e.logger.Debug("matcher evaluation failed",
				"expression", expression,
				"method", m.Key().String(),
				"error", err,
			)
			return false
		}
		matched, ok := result.Value().(bool)
		return ok && matched
	}, nil
}

// Cached returns the number of compiled programs
func (e *Evaluator) Cached() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.programCache)
}

func (e *Evaluator) getOrCompileProgram(expression string) (cel.Program, error) {
	e.mu.RLock()
	if program, ok := e.programCache[expression]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.programCache[expression]; ok {
		return program, nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, issues.Err())
	}

	// Map fields are dyn, so a dyn result is checked at evaluation time
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w, got %s", ErrNotBoolean, out)
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}

	e.programCache[expression] = program
	return program, nil
}

func activation(m introspect.MethodDescriptor) map[string]any {
	paramTypes := make([]string, len(m.Params))
	for i, p := range m.Params {
		if p.Type != nil {
			paramTypes[i] = p.Type.String()
		}
	}

	return map[string]any{
		"name":          m.Name,
		"type":          m.DeclaringType,
		"original_type": m.OriginalType,
		"static":        m.IsStatic(),
		"returns_error": m.ReturnsError,
		"returns_ref":   m.ReturnsRef,
		"params":        int64(len(m.Params)),
		"param_types":   paramTypes,
	}
}

var (
	defaultOnce      sync.Once
	defaultEvaluator *Evaluator
	defaultErr       error
)

// Compile compiles expression with a shared package-level evaluator
func Compile(expression string) (interception.Matcher, error) {
	defaultOnce.Do(func() {
		defaultEvaluator, defaultErr = NewEvaluator()
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return defaultEvaluator.Compile(expression)
}

// MustCompile is like Compile but panics on error
func MustCompile(expression string) interception.Matcher {
	m, err := Compile(expression)
	if err != nil {
		panic(err)
	}
	return m
}
