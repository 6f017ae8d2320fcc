package proxy

import (
	"fmt"
	"reflect"
	"runtime/debug"

	"github.com/glimte/phroxy-go/introspect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// normalizeArgs fits args to the declared parameters. Missing trailing
// arguments take their defaults and a variadic tail is packed into a slice,
// so the result always has one entry per parameter.
func normalizeArgs(params []introspect.ParamDescriptor, args []any) ([]any, error) {
	n := len(params)
	variadic := n > 0 && params[n-1].Variadic
	fixed := n
	if variadic {
		fixed = n - 1
	}

	if !variadic && len(args) > n {
		return nil, fmt.Errorf("%w: want at most %d arguments, got %d", ErrArgument, n, len(args))
	}

	out := make([]any, n)
	for i := 0; i < fixed; i++ {
		p := params[i]
		if i >= len(args) {
			if !p.Optional {
				return nil, fmt.Errorf("%w: missing argument %s", ErrArgument, p.Name)
			}
			v, err := argValue(p.Default, p.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: default of %s: %v", ErrArgument, p.Name, err)
			}
			out[i] = v.Interface()
			continue
		}
		v, err := argValue(args[i], p.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArgument, p.Name, err)
		}
		out[i] = v.Interface()
	}

	if variadic {
		tail, err := packVariadic(params[n-1], args, fixed)
		if err != nil {
			return nil, err
		}
		out[n-1] = tail.Interface()
	}
	return out, nil
}

// packVariadic builds the slice for the variadic parameter from args[from:].
// A single argument that already is a slice of the parameter type is used as is.
func packVariadic(p introspect.ParamDescriptor, args []any, from int) (reflect.Value, error) {
	if len(args) == from+1 && args[from] != nil && reflect.TypeOf(args[from]) == p.Type {
		return reflect.ValueOf(args[from]), nil
	}

	elem := p.Type.Elem()
	size := max(len(args)-from, 0)
	tail := reflect.MakeSlice(p.Type, size, size)
	for i := 0; i < size; i++ {
		v, err := argValue(args[from+i], elem)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %s[%d]: %v", ErrArgument, p.Name, i, err)
		}
		tail.Index(i).Set(v)
	}
	return tail, nil
}

// argValue converts v to a value of type t. Nil becomes the zero value of
// nillable types.
func argValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		if !introspect.Nillable(t) {
			return reflect.Value{}, fmt.Errorf("nil is not a valid %v", t)
		}
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%T is not assignable to %v", v, t)
	}
	out := reflect.New(t).Elem()
	out.Set(rv)
	return out, nil
}

// callFunc invokes fn with normalized args and splits off a trailing error.
// A panic in fn is returned as *PanicError.
func callFunc(name string, fn reflect.Value, params []introspect.ParamDescriptor, returnsError bool, args []any) (results []reflect.Value, failure error) {
	in := make([]reflect.Value, len(params))
	for i, p := range params {
		if i >= len(args) {
			return nil, fmt.Errorf("%w: missing argument %s", ErrArgument, p.Name)
		}
		v, err := argValue(args[i], p.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArgument, p.Name, err)
		}
		in[i] = v
	}

	defer func() {
		if r := recover(); r != nil {
			results = nil
			failure = &PanicError{Method: name, Value: r, Stack: debug.Stack()}
		}
	}()

	var out []reflect.Value
	if len(params) > 0 && params[len(params)-1].Variadic {
		out = fn.CallSlice(in)
	} else {
		out = fn.Call(in)
	}

	if returnsError && len(out) > 0 {
		last := out[len(out)-1]
		out = out[:len(out)-1]
		if !last.IsNil() {
			failure = last.Interface().(error)
		}
	}
	return out, failure
}

// coerceResults fits the return slot to the declared result types
func coerceResults(name string, types []reflect.Type, values []any, set bool) ([]any, error) {
	out := make([]any, len(types))
	for i, t := range types {
		var v any
		if set && i < len(values) {
			v = values[i]
		}
		if v == nil {
			out[i] = reflect.Zero(t).Interface()
			continue
		}
		if !reflect.TypeOf(v).AssignableTo(t) {
			return nil, fmt.Errorf("%w: result %d of %s is %T, want %v", ErrResultMismatch, i, name, v, t)
		}
		out[i] = v
	}
	return out, nil
}

func interfaces(values []reflect.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.Interface()
	}
	return out
}
