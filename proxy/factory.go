package proxy

import (
	"fmt"
	"reflect"

	"github.com/glimte/phroxy-go/introspect"
)

// ObjectFactory creates instances of described types
type ObjectFactory interface {
	// Build constructs an instance of desc with the given constructor arguments
	Build(desc *introspect.TypeDescriptor, args ...any) (any, error)
}

// DirectFactory constructs plain instances without interception
type DirectFactory struct{}

// NewDirectFactory creates a factory that returns the constructed *T as is
func NewDirectFactory() *DirectFactory {
	return &DirectFactory{}
}

// Build implements ObjectFactory
func (f *DirectFactory) Build(desc *introspect.TypeDescriptor, args ...any) (any, error) {
	target, err := construct(desc, args)
	if err != nil {
		return nil, err
	}
	return target.Interface(), nil
}

// construct allocates a *T, through the constructor when one is declared
func construct(desc *introspect.TypeDescriptor, args []any) (reflect.Value, error) {
	if desc == nil {
		return reflect.Value{}, &ProxyError{Op: "construct", Err: fmt.Errorf("%w: nil descriptor", ErrConstruct)}
	}
	switch desc.Kind {
	case introspect.KindInterface, introspect.KindOpaque:
		return reflect.Value{}, &ProxyError{Type: desc.Name, Op: "construct", Err: fmt.Errorf("%w: %s kind", ErrConstruct, desc.Kind)}
	}

	ctor := desc.Constructor
	if ctor == nil {
		if len(args) > 0 {
			return reflect.Value{}, &ProxyError{
				Type: desc.Name,
				Op:   "construct",
				Err:  fmt.Errorf("%w: no constructor accepts %d arguments", ErrConstruct, len(args)),
			}
		}
		return reflect.New(desc.Type), nil
	}

	normalized, err := normalizeArgs(ctor.Params, args)
	if err != nil {
		return reflect.Value{}, &ProxyError{Type: desc.Name, Op: "construct", Err: fmt.Errorf("%w: %w", ErrConstruct, err)}
	}

	out, err := callFunc(desc.Name+" constructor", ctor.Func, ctor.Params, ctor.ReturnsError, normalized)
	if err != nil {
		return reflect.Value{}, &ProxyError{Type: desc.Name, Op: "construct", Err: fmt.Errorf("%w: %w", ErrConstruct, err)}
	}

	value := out[0]
	if ctor.ReturnsPointer {
		if value.IsNil() {
			return reflect.Value{}, &ProxyError{Type: desc.Name, Op: "construct", Err: fmt.Errorf("%w: constructor returned nil", ErrConstruct)}
		}
		return value, nil
	}
	ptr := reflect.New(desc.Type)
	ptr.Elem().Set(value)
	return ptr, nil
}
