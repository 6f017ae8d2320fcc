package introspect

import (
	"errors"
	"fmt"
)

var (
	// ErrFinalType is reported for types sealed against proxying
	ErrFinalType = errors.New("type is final")
	// ErrAbstractType is reported for abstract and interface types
	ErrAbstractType = errors.New("type is abstract")
	// ErrUninstantiable is reported for types that cannot be allocated
	ErrUninstantiable = errors.New("type is not instantiable")
	// ErrHiddenConstructor is reported when the only constructor is not accessible
	ErrHiddenConstructor = errors.New("type has no accessible constructor")
)

// CheckProxyable explains why d cannot be proxied, or returns nil
func CheckProxyable(d *TypeDescriptor) error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrMalformed)
	}
	switch {
	case d.IsFinal():
		return ErrFinalType
	case d.Kind == KindInterface || d.IsAbstract():
		return ErrAbstractType
	case d.Kind == KindOpaque:
		return ErrUninstantiable
	case d.Constructor != nil && d.Constructor.Visibility != VisibilityExported:
		return ErrHiddenConstructor
	}
	return nil
}

// IsProxyable reports whether a proxy can be synthesized for d
func IsProxyable(d *TypeDescriptor) bool {
	return CheckProxyable(d) == nil
}

// IsMemberProxyable reports whether calls to m can be intercepted.
// Static members qualify; unexported, final, initializer and finalizer members do not.
func IsMemberProxyable(m MethodDescriptor) bool {
	if m.Visibility != VisibilityExported {
		return false
	}
	if m.Modifiers.Has(ModFinal) || m.Modifiers.Has(ModInitializer) || m.Modifiers.Has(ModFinalizer) {
		return false
	}
	return true
}

// ProxyableMethods returns the members of d that IsMemberProxyable accepts
func ProxyableMethods(d *TypeDescriptor) []MethodDescriptor {
	out := make([]MethodDescriptor, 0, len(d.Methods))
	for _, m := range d.Methods {
		if IsMemberProxyable(m) {
			out = append(out, m)
		}
	}
	return out
}
