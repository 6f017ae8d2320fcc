package proxy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/phroxy-go/interception"
)

type summer func(base int, rest ...int) int

func TestBind(t *testing.T) {
	t.Run("Typed funcs call through the proxy", func(t *testing.T) {
		h := newHarness()
		calls := 0
		h.register(&interception.Funcs{
			Before: func(*interception.Context) { calls++ },
		}, interception.MatchAll())

		inst, target := h.subject()
		bar, err := Bind[func() string](inst, "Bar")
		require.NoError(t, err)

		assert.Equal(t, "bar", bar())
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, target.barCalled)
	})

	t.Run("Variadic and named func types", func(t *testing.T) {
		h := newHarness()
		inst, _ := h.subject()

		sum := MustBind[summer](inst, "Sum")
		assert.Equal(t, 6, sum(1, 2, 3))
		assert.Equal(t, 1, sum(1))
	})

	t.Run("Failures are returned in the error result", func(t *testing.T) {
		h := newHarness()
		inst, _ := h.subject()

		divide := MustBind[func(int, int) (int, error)](inst, "Divide")

		n, err := divide(6, 3)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = divide(1, 0)
		assert.EqualError(t, err, "division by zero")
		assert.Equal(t, 0, n)
	})

	t.Run("Failures of members without an error result panic", func(t *testing.T) {
		h := newHarness()
		boom := errors.New("boom")
		h.register(&interception.Funcs{
			Before: func(ctx *interception.Context) { ctx.SetFailure(boom) },
		}, interception.MethodNamed("Bar"))

		inst, target := h.subject()
		bar := MustBind[func() string](inst, "Bar")

		assert.PanicsWithError(t, "boom", func() { bar() })
		assert.Equal(t, 1, target.barCalled)
	})

	t.Run("Panics of the original are raised again", func(t *testing.T) {
		h := newHarness()
		inst, _ := h.subject()

		explode := MustBind[func(string) string](inst, "Explode")
		assert.PanicsWithValue(t, "kaboom", func() { explode("kaboom") })
	})

	t.Run("By-reference results keep identity", func(t *testing.T) {
		h := newHarness()
		inst, _ := h.subject()

		self := MustBind[func(*int, []string, *bazOptions, int) *[]string](inst, "Baz")
		n := 0
		items := self(&n, []string{"x"}, nil, 1)

		assert.Equal(t, 1, n)
		assert.Equal(t, []string{"x"}, *items)
	})

	t.Run("Static members bind without a receiver", func(t *testing.T) {
		h := newHarness()
		inst, _ := h.subject()

		count := MustBind[func(string) int](inst, "Count")
		assert.Equal(t, 3, count("abc"))
	})

	t.Run("Signature mismatches are errors", func(t *testing.T) {
		h := newHarness()
		inst, _ := h.subject()

		_, err := Bind[func() int](inst, "Bar")
		assert.ErrorIs(t, err, ErrSignature)

		_, err = Bind[string](inst, "Bar")
		assert.ErrorIs(t, err, ErrSignature)

		_, err = Bind[func()](inst, "Missing")
		assert.ErrorIs(t, err, ErrUnknownMethod)

		assert.Panics(t, func() { MustBind[func() int](inst, "Bar") })
	})
}

func TestRaise(t *testing.T) {
	t.Run("Returns ordinary errors unchanged", func(t *testing.T) {
		err := errors.New("plain")
		assert.Same(t, err, Raise(err))
		assert.NoError(t, Raise(nil))
	})

	t.Run("Re-panics captured panic values", func(t *testing.T) {
		assert.PanicsWithValue(t, 42, func() {
			_ = Raise(&PanicError{Method: "m", Value: 42})
		})
	})

	t.Run("PanicError unwraps error values", func(t *testing.T) {
		cause := errors.New("cause")
		assert.ErrorIs(t, &PanicError{Value: cause}, cause)
		assert.Nil(t, (&PanicError{Value: "text"}).Unwrap())
	})
}
