package proxy

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/phroxy-go/interception"
	"github.com/glimte/phroxy-go/introspect"
)

func TestSynthesizer(t *testing.T) {
	t.Run("Ineligible types cannot be proxied", func(t *testing.T) {
		tests := []struct {
			name  string
			desc  *introspect.TypeDescriptor
			cause error
		}{
			{"final type", introspect.MustDescribe((*sealed)(nil), introspect.Final()), introspect.ErrFinalType},
			{"abstract type", introspect.MustDescribe((*sealed)(nil), introspect.Abstract()), introspect.ErrAbstractType},
			{"interface", introspect.MustDescribe((*runner)(nil)), introspect.ErrAbstractType},
			{"hidden constructor", introspect.MustDescribe((*hidden)(nil), introspect.WithHiddenConstructor(newHidden)), introspect.ErrHiddenConstructor},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := NewSynthesizer(nil)
				_, err := s.Build(tt.desc)

				var proxyErr *ProxyError
				require.True(t, errors.As(err, &proxyErr))
				assert.Equal(t, "synthesize", proxyErr.Op)
				assert.ErrorIs(t, err, ErrNotProxyable)
				assert.ErrorIs(t, err, tt.cause)
				assert.False(t, s.Synthesized(tt.desc.Name))
			})
		}
	})

	t.Run("Nil descriptor is rejected", func(t *testing.T) {
		_, err := NewSynthesizer(nil).Synthesize(nil)
		assert.ErrorIs(t, err, ErrNotProxyable)
		assert.ErrorIs(t, err, introspect.ErrMalformed)
	})

	t.Run("Proxy types are cached by original type name", func(t *testing.T) {
		s := NewSynthesizer(nil)
		first, err := s.Synthesize(describeSubject())
		require.NoError(t, err)
		second, err := s.Synthesize(describeSubject())
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.True(t, s.Synthesized(describeSubject().Name))
	})

	t.Run("Proxy type names are unique and prefixed", func(t *testing.T) {
		a, err := NewSynthesizer(nil).Synthesize(describeSubject())
		require.NoError(t, err)
		b, err := NewSynthesizer(nil).Synthesize(describeSubject())
		require.NoError(t, err)

		assert.NotEqual(t, a.Name(), b.Name())
		assert.True(t, strings.HasPrefix(a.Name(), "Phroxy_github_com_glimte_phroxy_go_proxy_subject_"))

		custom, err := NewSynthesizer(nil, WithNamePrefix("Custom")).Synthesize(describeSubject())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(custom.Name(), "Custom_"))
	})

	t.Run("Reset forgets synthesized types", func(t *testing.T) {
		s := NewSynthesizer(nil)
		first, err := s.Synthesize(describeSubject())
		require.NoError(t, err)

		s.Reset()
		assert.False(t, s.Synthesized(describeSubject().Name))

		second, err := s.Synthesize(describeSubject())
		require.NoError(t, err)
		assert.NotEqual(t, first.Name(), second.Name())
	})

	t.Run("Reset evicts resolved chains of forgotten types", func(t *testing.T) {
		h := newHarness()
		h.register(&interception.Funcs{}, interception.MatchAll())
		inst, _ := h.subject()
		_, err := inst.Call("Bar")
		require.NoError(t, err)
		require.Equal(t, 1, h.registry.Cached())

		h.synth.Reset()

		assert.Equal(t, 0, h.registry.Cached())
		assert.Equal(t, 1, h.registry.Len())
	})

	t.Run("Concurrent first requests share one type", func(t *testing.T) {
		s := NewSynthesizer(nil)
		desc := describeSubject()

		var wg sync.WaitGroup
		types := make([]*Type, 32)
		for i := range types {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				typ, err := s.Synthesize(desc)
				assert.NoError(t, err)
				types[i] = typ
			}(i)
		}
		wg.Wait()

		for _, typ := range types {
			assert.Same(t, types[0], typ)
		}
	})

	t.Run("Synthesis is logged", func(t *testing.T) {
		var buf bytes.Buffer
		s := NewSynthesizer(nil, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

		typ, err := s.Synthesize(describeSubject())
		require.NoError(t, err)

		assert.Contains(t, buf.String(), "proxy type synthesized")
		assert.Contains(t, buf.String(), typ.Name())
	})

	t.Run("Override descriptors are declared on the proxy type", func(t *testing.T) {
		s := NewSynthesizer(nil)
		typ, err := s.Synthesize(describeSubject())
		require.NoError(t, err)

		names := make([]string, 0)
		for _, m := range typ.Methods() {
			names = append(names, m.Name)
			assert.Equal(t, typ.Name(), m.DeclaringType)
			assert.Equal(t, describeSubject().Name, m.OriginalType)
		}
		assert.ElementsMatch(t, []string{"Bar", "Baz", "Count", "Describe", "Divide", "Explode", "Sum"}, names)

		assert.True(t, typ.Intercepted("Bar"))
		assert.False(t, typ.Intercepted("Foo"))
		assert.False(t, typ.Intercepted("Close"))

		foo, ok := typ.Method("Foo")
		require.True(t, ok)
		assert.Equal(t, describeSubject().Name, foo.DeclaringType)
		assert.Same(t, typ, mustInstance(t, s).Type())
	})

	t.Run("Dispatcher defaults to a private registry", func(t *testing.T) {
		s := NewSynthesizer(nil)
		require.NotNil(t, s.Dispatcher())
		assert.Equal(t, 0, s.Dispatcher().Registry().Len())
	})
}

func mustInstance(t *testing.T, s *Synthesizer) *Instance {
	t.Helper()
	inst, err := s.NewInstance(describeSubject())
	require.NoError(t, err)
	return inst
}

func TestConstruction(t *testing.T) {
	t.Run("Constructor arguments are forwarded", func(t *testing.T) {
		s := NewSynthesizer(nil)
		desc := introspect.MustDescribe((*argsHolder)(nil), introspect.WithConstructor(newArgsHolder))

		built, err := s.Build(desc, "foo")
		require.NoError(t, err)

		inst, ok := built.(*Instance)
		require.True(t, ok)
		holder, ok := inst.Target().(*argsHolder)
		require.True(t, ok)
		assert.Equal(t, "foo", holder.foo)

		out, err := inst.Call("Foo")
		require.NoError(t, err)
		assert.Equal(t, []any{"foo"}, out)
	})

	t.Run("Constructor arguments do not change the proxy type", func(t *testing.T) {
		s := NewSynthesizer(nil)
		desc := introspect.MustDescribe((*argsHolder)(nil), introspect.WithConstructor(newArgsHolder))

		a, err := s.NewInstance(desc, "a")
		require.NoError(t, err)
		b, err := s.NewInstance(desc, "b")
		require.NoError(t, err)

		assert.Same(t, a.Type(), b.Type())
	})

	t.Run("Empty arguments use constructor defaults", func(t *testing.T) {
		s := NewSynthesizer(nil)
		desc := introspect.MustDescribe((*argsHolder)(nil),
			introspect.WithConstructor(newArgsHolder),
			introspect.ConstructorDefaults("fallback"),
		)

		inst, err := s.NewInstance(desc)
		require.NoError(t, err)
		assert.Equal(t, "fallback", inst.Target().(*argsHolder).foo)
	})

	t.Run("Empty arguments without defaults fail", func(t *testing.T) {
		s := NewSynthesizer(nil)
		desc := introspect.MustDescribe((*argsHolder)(nil), introspect.WithConstructor(newArgsHolder))

		_, err := s.NewInstance(desc)
		assert.ErrorIs(t, err, ErrConstruct)
		assert.ErrorIs(t, err, ErrArgument)
	})

	t.Run("Arguments without a constructor fail", func(t *testing.T) {
		s := NewSynthesizer(nil)
		_, err := s.Build(describeSubject(), "unexpected")

		var proxyErr *ProxyError
		require.True(t, errors.As(err, &proxyErr))
		assert.Equal(t, "construct", proxyErr.Op)
		assert.ErrorIs(t, err, ErrConstruct)
	})

	t.Run("Constructor errors are wrapped", func(t *testing.T) {
		s := NewSynthesizer(nil)
		desc := introspect.MustDescribe((*failingHolder)(nil), introspect.WithConstructor(newFailingHolder))

		_, err := s.NewInstance(desc, true)
		assert.ErrorIs(t, err, ErrConstruct)
		assert.Contains(t, err.Error(), "refused")

		_, err = s.NewInstance(desc, false)
		assert.NoError(t, err)
	})

	t.Run("Value constructors and variadic constructor parameters", func(t *testing.T) {
		s := NewSynthesizer(nil)
		desc := introspect.MustDescribe((*valueHolder)(nil), introspect.WithConstructor(makeValueHolder))

		inst, err := s.NewInstance(desc, "a", "b", "c")
		require.NoError(t, err)
		assert.Equal(t, "abc", inst.Target().(*valueHolder).name)
	})

	t.Run("Zero-value construction without a constructor", func(t *testing.T) {
		inst, err := NewSynthesizer(nil).NewInstance(describeSubject())
		require.NoError(t, err)
		assert.Equal(t, &subject{}, inst.Target())
	})

	t.Run("Named non-struct types", func(t *testing.T) {
		inst, err := NewSynthesizer(nil).NewInstance(introspect.MustDescribe(label("")))
		require.NoError(t, err)

		*inst.Target().(*label) = "named"
		out, err := inst.Call("String")
		require.NoError(t, err)
		assert.Equal(t, []any{"named"}, out)
	})
}

func TestWrap(t *testing.T) {
	t.Run("Wraps an existing instance", func(t *testing.T) {
		registry := interception.NewRegistry()
		calls := 0
		require.NoError(t, registry.Register(&interception.Funcs{
			Before: func(*interception.Context) { calls++ },
		}, interception.MatchAll()))
		s := NewSynthesizer(interception.NewDispatcher(registry))

		target := &subject{}
		inst, err := s.Wrap(describeSubject(), target)
		require.NoError(t, err)

		_, err = inst.Call("Bar")
		require.NoError(t, err)
		assert.Same(t, target, inst.Target())
		assert.Equal(t, 1, target.barCalled)
		assert.Equal(t, 1, calls)
	})

	t.Run("Rejects targets of another type", func(t *testing.T) {
		s := NewSynthesizer(nil)

		for _, target := range []any{nil, subject{}, (*subject)(nil), &argsHolder{}} {
			_, err := s.Wrap(describeSubject(), target)
			assert.ErrorIs(t, err, ErrArgument, "target %T", target)
		}
	})

	t.Run("Rejects ineligible types", func(t *testing.T) {
		_, err := NewSynthesizer(nil).Wrap(introspect.MustDescribe((*sealed)(nil), introspect.Final()), &sealed{})
		assert.ErrorIs(t, err, ErrNotProxyable)
	})
}

func TestDirectFactory(t *testing.T) {
	t.Run("Builds plain instances", func(t *testing.T) {
		f := NewDirectFactory()
		desc := introspect.MustDescribe((*argsHolder)(nil), introspect.WithConstructor(newArgsHolder))

		built, err := f.Build(desc, "foo")
		require.NoError(t, err)
		assert.Equal(t, &argsHolder{foo: "foo"}, built)
	})

	t.Run("Final types can be built directly", func(t *testing.T) {
		built, err := NewDirectFactory().Build(introspect.MustDescribe((*sealed)(nil), introspect.Final()))
		require.NoError(t, err)
		assert.IsType(t, &sealed{}, built)
	})

	t.Run("Interfaces cannot be built", func(t *testing.T) {
		_, err := NewDirectFactory().Build(introspect.MustDescribe((*runner)(nil)))
		assert.ErrorIs(t, err, ErrConstruct)

		_, err = NewDirectFactory().Build(nil)
		assert.ErrorIs(t, err, ErrConstruct)
	})

	t.Run("Both factories satisfy ObjectFactory", func(t *testing.T) {
		factories := []ObjectFactory{NewDirectFactory(), NewSynthesizer(nil)}
		for _, f := range factories {
			built, err := f.Build(describeSubject())
			require.NoError(t, err)
			assert.NotNil(t, built)
		}
		assert.Equal(t, reflect.TypeOf(&Instance{}), reflect.TypeOf(mustInstance(t, NewSynthesizer(nil))))
	})
}
