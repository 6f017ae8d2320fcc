package introspect

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type callback func()

func TestIsProxyable(t *testing.T) {
	tests := []struct {
		name string
		desc *TypeDescriptor
		want error
	}{
		{
			name: "plain struct",
			desc: MustDescribe((*gadget)(nil)),
		},
		{
			name: "struct with constructor",
			desc: MustDescribe((*gadget)(nil), WithConstructor(newGadget)),
		},
		{
			name: "named non-struct",
			desc: MustDescribe(celsius(0)),
		},
		{
			name: "final type",
			desc: MustDescribe((*gadget)(nil), Final()),
			want: ErrFinalType,
		},
		{
			name: "abstract type",
			desc: MustDescribe((*gadget)(nil), Abstract()),
			want: ErrAbstractType,
		},
		{
			name: "interface",
			desc: MustDescribe((*shape)(nil)),
			want: ErrAbstractType,
		},
		{
			name: "func type",
			desc: MustDescribe(reflect.TypeOf(callback(nil))),
			want: ErrUninstantiable,
		},
		{
			name: "hidden constructor",
			desc: MustDescribe((*gadget)(nil), WithHiddenConstructor(newGadget)),
			want: ErrHiddenConstructor,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := CheckProxyable(tc.desc)
			assert.Equal(t, tc.want, err)
			assert.Equal(t, tc.want == nil, IsProxyable(tc.desc))
		})
	}

	t.Run("nil descriptor", func(t *testing.T) {
		assert.False(t, IsProxyable(nil))
	})
}

func TestIsMemberProxyable(t *testing.T) {
	base := MethodDescriptor{Name: "Run", Visibility: VisibilityExported}

	tests := []struct {
		name   string
		mutate func(m *MethodDescriptor)
		want   bool
	}{
		{name: "exported", mutate: func(m *MethodDescriptor) {}, want: true},
		{name: "static", mutate: func(m *MethodDescriptor) { m.Modifiers |= ModStatic }, want: true},
		{name: "unexported", mutate: func(m *MethodDescriptor) { m.Visibility = VisibilityUnexported }, want: false},
		{name: "final", mutate: func(m *MethodDescriptor) { m.Modifiers |= ModFinal }, want: false},
		{name: "initializer", mutate: func(m *MethodDescriptor) { m.Modifiers |= ModInitializer }, want: false},
		{name: "finalizer", mutate: func(m *MethodDescriptor) { m.Modifiers |= ModFinalizer }, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			m := base
			tc.mutate(&m)
			assert.Equal(t, tc.want, IsMemberProxyable(m))
		})
	}
}

func TestProxyableMethods(t *testing.T) {
	d := MustDescribe((*gadget)(nil), FinalMethods("Describe"), Finalizer("Close"), Initializer("Init"))

	names := make([]string, 0)
	for _, m := range ProxyableMethods(d) {
		names = append(names, m.Name)
	}
	assert.ElementsMatch(t, []string{"Rename", "Self", "Sum"}, names)
}
