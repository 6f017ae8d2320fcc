package proxy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/glimte/phroxy-go/interception"
	"github.com/glimte/phroxy-go/introspect"
)

type bazOptions struct {
	label string
}

type subject struct {
	fooCalled int
	barCalled int
	bazCalled int
}

func (s *subject) Foo() { s.fooCalled++ }

func (s *subject) Bar() string {
	s.barCalled++
	return "bar"
}

func (s *subject) Baz(ref *int, items []string, opt *bazOptions, n int) *[]string {
	s.bazCalled++
	*ref += n
	if opt != nil {
		items = append(items, opt.label)
	}
	return &items
}

func (s *subject) Sum(base int, rest ...int) int {
	for _, r := range rest {
		base += r
	}
	return base
}

func (s *subject) Divide(a, b int) (int, error) {
	if b == 0 {
		return -1, errors.New("division by zero")
	}
	return a / b, nil
}

func (s *subject) Explode(reason string) string {
	panic(reason)
}

func (s *subject) Describe(v fmt.Stringer) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}

func (s *subject) Close() error { return nil }

func subjectCount(prefix string) int { return len(prefix) }

func describeSubject() *introspect.TypeDescriptor {
	return introspect.MustDescribe((*subject)(nil),
		introspect.FinalMethods("Foo"),
		introspect.Finalizer("Close"),
		introspect.StaticMethod("Count", subjectCount),
		introspect.ParamNames("Baz", "ref", "items", "opt", "n"),
		introspect.Defaults("Baz", nil, 7),
	)
}

type argsHolder struct {
	foo string
}

func newArgsHolder(foo string) *argsHolder { return &argsHolder{foo: foo} }

func (a *argsHolder) Foo() string { return a.foo }

type failingHolder struct{}

func newFailingHolder(fail bool) (*failingHolder, error) {
	if fail {
		return nil, errors.New("refused")
	}
	return &failingHolder{}, nil
}

type valueHolder struct {
	name string
}

func makeValueHolder(name string, suffixes ...string) valueHolder {
	return valueHolder{name: name + strings.Join(suffixes, "")}
}

func (v *valueHolder) Name() string { return v.name }

type sealed struct{}

func (s *sealed) Run() {}

type hidden struct{}

func newHidden() *hidden { return &hidden{} }

type runner interface {
	Run()
}

type label string

func (l label) String() string { return string(l) }

// mockInterceptor is a mock.Mock interceptor for call expectations
type mockInterceptor struct {
	mock.Mock
}

func (m *mockInterceptor) OnBeforeCall(ctx *interception.Context) {
	m.Called(ctx)
}

func (m *mockInterceptor) OnAfterCall(ctx *interception.Context) {
	m.Called(ctx)
}

// harness wires a fresh registry, dispatcher and synthesizer
type harness struct {
	registry *interception.Registry
	synth    *Synthesizer
}

func newHarness() *harness {
	registry := interception.NewRegistry()
	return &harness{
		registry: registry,
		synth:    NewSynthesizer(interception.NewDispatcher(registry)),
	}
}

func (h *harness) register(i interception.Interceptor, m interception.Matcher) {
	if err := h.registry.Register(i, m); err != nil {
		panic(err)
	}
}

func (h *harness) subject() (*Instance, *subject) {
	inst, err := h.synth.NewInstance(describeSubject())
	if err != nil {
		panic(err)
	}
	return inst, inst.Target().(*subject)
}
