package proxy

import (
	"reflect"

	"github.com/glimte/phroxy-go/interception"
)

// invoke runs one call through the interception protocol. Members that are
// not intercepted are called directly.
func (t *Type) invoke(target reflect.Value, m member, args []any) ([]any, error) {
	normalized, err := normalizeArgs(m.desc.Params, args)
	if err != nil {
		return nil, &ProxyError{Type: t.name, Op: "call " + m.desc.Name, Err: err}
	}

	name := m.desc.Key().String()
	fn := m.static
	if !m.desc.IsStatic() {
		fn = target.Method(m.desc.Index)
	}

	if !m.proxied {
		out, failure := callFunc(name, fn, m.desc.Params, m.desc.ReturnsError, normalized)
		if failure != nil {
			return nil, failure
		}
		return interfaces(out), nil
	}

	var receiver any
	if target.IsValid() {
		receiver = target.Interface()
	}
	ctx := interception.NewContext(receiver, m.desc, normalized)
	dispatcher := t.synth.dispatcher

	dispatcher.RunBefore(ctx)

	if ctx.ShouldCallNext() {
		out, failure := callFunc(name, fn, m.desc.Params, m.desc.ReturnsError, ctx.Arguments())
		if failure != nil {
			ctx.SetFailure(failure)
		} else {
			ctx.SetReturnValues(interfaces(out)...)
		}
	}

	dispatcher.RunAfter(ctx)

	values, set := ctx.ReturnValues()
	results, coerceErr := coerceResults(name, m.desc.Results, values, set)
	if failure := ctx.Failure(); failure != nil {
		return results, failure
	}
	if coerceErr != nil {
		return nil, coerceErr
	}
	return results, nil
}

// typedResults converts the outcome of invoke to the results of sig. A
// captured panic is raised again, and a failure of a member without an
// error result becomes a panic.
func typedResults(sig reflect.Type, returnsError bool, results []any, err error) []reflect.Value {
	if err != nil {
		Raise(err)
		if !returnsError {
			panic(err)
		}
	}

	out := make([]reflect.Value, sig.NumOut())
	n := len(out)
	if returnsError {
		n--
	}
	for k := 0; k < n; k++ {
		v := reflect.New(sig.Out(k)).Elem()
		if k < len(results) && results[k] != nil {
			v.Set(reflect.ValueOf(results[k]))
		}
		out[k] = v
	}
	if returnsError {
		e := reflect.New(errorType).Elem()
		if err != nil {
			e.Set(reflect.ValueOf(err))
		}
		out[n] = e
	}
	return out
}
