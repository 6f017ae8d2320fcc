package proxy

import (
	"fmt"
	"reflect"
)

// Bind returns the named member of inst as a typed func. F must have the
// member's signature, for example:
//
//	greet, err := proxy.Bind[func(string) (string, error)](inst, "Greet")
func Bind[F any](inst *Instance, name string) (F, error) {
	var zero F
	want := reflect.TypeOf((*F)(nil)).Elem()
	if want.Kind() != reflect.Func {
		return zero, &ProxyError{Type: inst.typ.name, Op: "bind", Err: fmt.Errorf("%w: %v is not a func type", ErrSignature, want)}
	}

	fn, err := inst.Method(name)
	if err != nil {
		return zero, err
	}
	if fn.Type() != want {
		if !fn.Type().ConvertibleTo(want) {
			return zero, &ProxyError{Type: inst.typ.name, Op: "bind", Err: fmt.Errorf("%w: %s is %v, not %v", ErrSignature, name, fn.Type(), want)}
		}
		fn = fn.Convert(want)
	}
	return fn.Interface().(F), nil
}

// MustBind is like Bind but panics on error
func MustBind[F any](inst *Instance, name string) F {
	fn, err := Bind[F](inst, name)
	if err != nil {
		panic(err)
	}
	return fn
}
