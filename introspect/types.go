// Package introspect inspects the shape of Go types and decides which of
// them, and which of their members, can be proxied.
package introspect

import (
	"reflect"
	"strings"
)

// Visibility describes how far a member can be reached from outside its package
type Visibility int

const (
	// VisibilityExported members are reachable from any package
	VisibilityExported Visibility = iota
	// VisibilityUnexported members are private to the declaring package
	VisibilityUnexported
)

func (v Visibility) String() string {
	if v == VisibilityUnexported {
		return "unexported"
	}
	return "exported"
}

// Modifier is a bit set of type and member modifiers
type Modifier uint8

const (
	// ModFinal marks a type that cannot be proxied or a member that cannot be overridden
	ModFinal Modifier = 1 << iota
	// ModStatic marks a member invoked without a receiver
	ModStatic
	// ModAbstract marks a type or member without a concrete implementation
	ModAbstract
	// ModInitializer marks a constructor-like member
	ModInitializer
	// ModFinalizer marks a destructor-like member
	ModFinalizer
)

// Has reports whether every bit of flag is set
func (m Modifier) Has(flag Modifier) bool {
	return m&flag == flag
}

func (m Modifier) String() string {
	var parts []string
	for _, f := range []struct {
		mod  Modifier
		name string
	}{
		{ModFinal, "final"},
		{ModStatic, "static"},
		{ModAbstract, "abstract"},
		{ModInitializer, "initializer"},
		{ModFinalizer, "finalizer"},
	} {
		if m.Has(f.mod) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

// TypeKind is a coarse category of a described type
type TypeKind int

const (
	// KindStruct is a named struct type
	KindStruct TypeKind = iota
	// KindNamed is any other named concrete type (basic, slice, map)
	KindNamed
	// KindInterface is an interface type
	KindInterface
	// KindOpaque covers funcs, channels and unsafe pointers
	KindOpaque
)

func (k TypeKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindNamed:
		return "named"
	case KindInterface:
		return "interface"
	default:
		return "opaque"
	}
}

// ParamDescriptor describes one parameter of a method or constructor
type ParamDescriptor struct {
	Name     string
	Type     reflect.Type
	ByRef    bool
	Variadic bool
	Optional bool
	Default  any
}

// MethodKey is the identity used to cache interceptor resolution
type MethodKey struct {
	Type string
	Name string
}

func (k MethodKey) String() string {
	return k.Type + "." + k.Name
}

// MethodDescriptor identifies one callable member. It is immutable once built.
type MethodDescriptor struct {
	// DeclaringType is the type that declares this member. For proxy overrides
	// this is the synthesized proxy type.
	DeclaringType string
	// OriginalType is the user type the member was first declared on
	OriginalType string
	Name         string
	Params       []ParamDescriptor
	// Results holds the non-error results
	Results      []reflect.Type
	ReturnsRef   bool
	ReturnsError bool
	Visibility   Visibility
	Modifiers    Modifier
	// Signature is the func type of the member without its receiver
	Signature reflect.Type
	// Index is the position in the pointer method set, -1 for static members
	Index int
}

// Key returns the method identity
func (m MethodDescriptor) Key() MethodKey {
	return MethodKey{Type: m.DeclaringType, Name: m.Name}
}

// IsStatic reports whether the member is invoked without a receiver
func (m MethodDescriptor) IsStatic() bool {
	return m.Modifiers.Has(ModStatic)
}

// IsVariadic reports whether the last parameter is variadic
func (m MethodDescriptor) IsVariadic() bool {
	return len(m.Params) > 0 && m.Params[len(m.Params)-1].Variadic
}

// Redeclare returns a copy of m declared on another type
func (m MethodDescriptor) Redeclare(typeName string) MethodDescriptor {
	if m.OriginalType == "" {
		m.OriginalType = m.DeclaringType
	}
	m.DeclaringType = typeName
	return m
}

func (m MethodDescriptor) String() string {
	var b strings.Builder
	b.WriteString(m.DeclaringType)
	b.WriteByte('.')
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteByte(' ')
		if p.Variadic {
			b.WriteString("..." + p.Type.Elem().String())
		} else {
			b.WriteString(p.Type.String())
		}
	}
	b.WriteByte(')')
	return b.String()
}

// ConstructorDescriptor describes the factory function of a type
type ConstructorDescriptor struct {
	Func           reflect.Value
	Params         []ParamDescriptor
	Visibility     Visibility
	ReturnsPointer bool
	ReturnsError   bool
}

// TypeDescriptor is a read-only view of a type's shape
type TypeDescriptor struct {
	Name        string
	Type        reflect.Type
	Kind        TypeKind
	Modifiers   Modifier
	Constructor *ConstructorDescriptor
	Methods     []MethodDescriptor

	statics map[string]reflect.Value
}

// Method finds a member by name
func (d *TypeDescriptor) Method(name string) (MethodDescriptor, bool) {
	for _, m := range d.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodDescriptor{}, false
}

// Static returns the function backing a static member
func (d *TypeDescriptor) Static(name string) (reflect.Value, bool) {
	fn, ok := d.statics[name]
	return fn, ok
}

// IsFinal reports whether the type is sealed against proxying
func (d *TypeDescriptor) IsFinal() bool {
	return d.Modifiers.Has(ModFinal)
}

// IsAbstract reports whether the type has no concrete implementation
func (d *TypeDescriptor) IsAbstract() bool {
	return d.Modifiers.Has(ModAbstract)
}

// TypeName returns the package-qualified name of t
func TypeName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}
