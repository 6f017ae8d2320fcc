package proxy

import (
	"fmt"
	"reflect"
)

// Instance is a proxy bound to one instance of the original type
type Instance struct {
	typ    *Type
	target reflect.Value
}

// Type returns the proxy type
func (i *Instance) Type() *Type {
	return i.typ
}

// Target returns the wrapped *T
func (i *Instance) Target() any {
	return i.target.Interface()
}

// Call invokes the named member with positional arguments and returns its
// non-error results. A failure of the call is returned as the error.
func (i *Instance) Call(name string, args ...any) ([]any, error) {
	m, err := i.typ.lookup(name)
	if err != nil {
		return nil, err
	}
	if m.desc.IsStatic() {
		return i.typ.invoke(reflect.Value{}, m, args)
	}
	return i.typ.invoke(i.target, m, args)
}

// CallStatic invokes a static member of the proxied type
func (i *Instance) CallStatic(name string, args ...any) ([]any, error) {
	return i.typ.CallStatic(name, args...)
}

// Method returns a func with the member's exact signature that calls
// through the proxy
func (i *Instance) Method(name string) (reflect.Value, error) {
	m, err := i.typ.lookup(name)
	if err != nil {
		return reflect.Value{}, err
	}

	recv := i.target
	if m.desc.IsStatic() {
		recv = reflect.Value{}
	}
	sig := m.desc.Signature
	if sig == nil {
		return reflect.Value{}, &ProxyError{Type: i.typ.name, Op: "bind", Err: fmt.Errorf("%w: %s has no signature", ErrSignature, name)}
	}

	return reflect.MakeFunc(sig, func(in []reflect.Value) []reflect.Value {
		results, err := i.typ.invoke(recv, m, interfaces(in))
		return typedResults(sig, m.desc.ReturnsError, results, err)
	}), nil
}
