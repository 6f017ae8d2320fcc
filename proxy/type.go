package proxy

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/glimte/phroxy-go/introspect"
)

// member is one entry of a proxy method table
type member struct {
	desc    introspect.MethodDescriptor
	proxied bool
	static  reflect.Value
}

// Type is a synthesized proxy type. It is immutable and shared by every
// instance built for the same original type.
type Type struct {
	name     string
	original *introspect.TypeDescriptor
	methods  []introspect.MethodDescriptor
	members  map[string]member
	synth    *Synthesizer
}

func newType(s *Synthesizer, desc *introspect.TypeDescriptor) *Type {
	t := &Type{
		name:     proxyName(s.namePrefix, desc.Name),
		original: desc,
		members:  make(map[string]member, len(desc.Methods)),
		synth:    s,
	}

	for _, m := range desc.Methods {
		entry := member{desc: m}
		if introspect.IsMemberProxyable(m) {
			entry.desc = m.Redeclare(t.name)
			entry.proxied = true
			t.methods = append(t.methods, entry.desc)
		}
		if m.IsStatic() {
			entry.static, _ = desc.Static(m.Name)
		}
		t.members[m.Name] = entry
	}
	return t
}

// proxyName builds a unique name from the original type name
func proxyName(prefix, original string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, original)
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + sanitized + "_" + id
}

// Name returns the unique proxy type name
func (t *Type) Name() string {
	return t.name
}

// Original returns the descriptor of the proxied type
func (t *Type) Original() *introspect.TypeDescriptor {
	return t.original
}

// Methods returns the override descriptors of the intercepted members
func (t *Type) Methods() []introspect.MethodDescriptor {
	return append([]introspect.MethodDescriptor(nil), t.methods...)
}

// Method returns the descriptor calls to name are dispatched with. For
// intercepted members this is the override declared on the proxy type.
func (t *Type) Method(name string) (introspect.MethodDescriptor, bool) {
	m, ok := t.members[name]
	return m.desc, ok
}

// Intercepted reports whether calls to name run the interceptor chain
func (t *Type) Intercepted(name string) bool {
	return t.members[name].proxied
}

// New constructs the original type and wraps it
func (t *Type) New(args ...any) (*Instance, error) {
	target, err := construct(t.original, args)
	if err != nil {
		return nil, err
	}
	return &Instance{typ: t, target: target}, nil
}

// CallStatic invokes a static member
func (t *Type) CallStatic(name string, args ...any) ([]any, error) {
	m, ok := t.members[name]
	if !ok || !m.desc.IsStatic() {
		return nil, &ProxyError{Type: t.name, Op: "call", Err: fmt.Errorf("%w: no static member %s", ErrUnknownMethod, name)}
	}
	return t.invoke(reflect.Value{}, m, args)
}

func (t *Type) lookup(name string) (member, error) {
	m, ok := t.members[name]
	if !ok {
		return member{}, &ProxyError{Type: t.name, Op: "call", Err: fmt.Errorf("%w: %s", ErrUnknownMethod, name)}
	}
	return m, nil
}
