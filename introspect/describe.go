package introspect

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrMalformed is returned for input that cannot be described
var ErrMalformed = errors.New("introspect: malformed input")

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Option configures how a type is described
type Option func(*describeConfig)

type describeConfig struct {
	final        bool
	abstract     bool
	constructor  any
	hidden       bool
	finalMethods []string
	initializers []string
	finalizers   []string
	statics      []staticEntry
	paramNames   map[string][]string
	defaults     map[string][]any
	ctorDefaults []any
}

type staticEntry struct {
	name string
	fn   any
}

// Final seals the type against proxying
func Final() Option {
	return func(c *describeConfig) { c.final = true }
}

// Abstract marks the type as having no concrete implementation
func Abstract() Option {
	return func(c *describeConfig) { c.abstract = true }
}

// WithConstructor registers the factory used to instantiate the type.
// fn must return T, *T, or (*T, error).
func WithConstructor(fn any) Option {
	return func(c *describeConfig) {
		c.constructor = fn
		c.hidden = false
	}
}

// WithHiddenConstructor registers a factory that callers outside the
// package are not allowed to use. Such types cannot be proxied.
func WithHiddenConstructor(fn any) Option {
	return func(c *describeConfig) {
		c.constructor = fn
		c.hidden = true
	}
}

// FinalMethods seals the named methods against interception
func FinalMethods(names ...string) Option {
	return func(c *describeConfig) { c.finalMethods = append(c.finalMethods, names...) }
}

// Initializer flags the named methods as constructor-like
func Initializer(names ...string) Option {
	return func(c *describeConfig) { c.initializers = append(c.initializers, names...) }
}

// Finalizer flags the named methods as destructor-like
func Finalizer(names ...string) Option {
	return func(c *describeConfig) { c.finalizers = append(c.finalizers, names...) }
}

// StaticMethod attaches a package-level function to the type as a static member
func StaticMethod(name string, fn any) Option {
	return func(c *describeConfig) { c.statics = append(c.statics, staticEntry{name: name, fn: fn}) }
}

// ParamNames names the parameters of a method. Reflection does not expose them.
func ParamNames(method string, names ...string) Option {
	return func(c *describeConfig) {
		if c.paramNames == nil {
			c.paramNames = make(map[string][]string)
		}
		c.paramNames[method] = names
	}
}

// Defaults declares default values for the trailing parameters of a method
func Defaults(method string, values ...any) Option {
	return func(c *describeConfig) {
		if c.defaults == nil {
			c.defaults = make(map[string][]any)
		}
		c.defaults[method] = values
	}
}

// ConstructorDefaults declares default values for the trailing constructor parameters
func ConstructorDefaults(values ...any) Option {
	return func(c *describeConfig) { c.ctorDefaults = values }
}

// Describe builds a descriptor from a value, a pointer (possibly nil) or a reflect.Type
func Describe(v any, opts ...Option) (*TypeDescriptor, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil value", ErrMalformed)
	}
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	return DescribeType(t, opts...)
}

// MustDescribe is like Describe but panics on error
func MustDescribe(v any, opts ...Option) *TypeDescriptor {
	d, err := Describe(v, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// DescribeType builds a descriptor for t. A pointer type is described by its element.
func DescribeType(t reflect.Type, opts ...Option) (*TypeDescriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrMalformed)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return nil, fmt.Errorf("%w: unnamed type %v", ErrMalformed, t)
	}

	cfg := &describeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	d := &TypeDescriptor{
		Name:    TypeName(t),
		Type:    t,
		Kind:    kindOf(t),
		statics: make(map[string]reflect.Value),
	}
	if cfg.final {
		d.Modifiers |= ModFinal
	}
	if cfg.abstract || d.Kind == KindInterface {
		d.Modifiers |= ModAbstract
	}

	d.Methods = describeMethods(d)

	if cfg.constructor != nil {
		ctor, err := describeConstructor(t, cfg.constructor)
		if err != nil {
			return nil, err
		}
		if cfg.hidden {
			ctor.Visibility = VisibilityUnexported
		}
		if len(cfg.ctorDefaults) > 0 {
			params, err := withDefaults(ctor.Params, cfg.ctorDefaults, d.Name+" constructor")
			if err != nil {
				return nil, err
			}
			ctor.Params = params
		}
		d.Constructor = ctor
	} else if len(cfg.ctorDefaults) > 0 {
		return nil, fmt.Errorf("%w: %s has constructor defaults but no constructor", ErrMalformed, d.Name)
	}

	for _, s := range cfg.statics {
		m, fn, err := describeStatic(d.Name, s)
		if err != nil {
			return nil, err
		}
		if _, exists := d.Method(s.name); exists {
			return nil, fmt.Errorf("%w: static member %s collides with a method of %s", ErrMalformed, s.name, d.Name)
		}
		m.Index = -1
		d.Methods = append(d.Methods, m)
		d.statics[s.name] = fn
	}

	if err := applyModifiers(d, cfg.finalMethods, ModFinal); err != nil {
		return nil, err
	}
	if err := applyModifiers(d, cfg.initializers, ModInitializer); err != nil {
		return nil, err
	}
	if err := applyModifiers(d, cfg.finalizers, ModFinalizer); err != nil {
		return nil, err
	}
	for name, names := range cfg.paramNames {
		if err := applyParamNames(d, name, names); err != nil {
			return nil, err
		}
	}
	for name, values := range cfg.defaults {
		if err := applyDefaults(d, name, values); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func kindOf(t reflect.Type) TypeKind {
	switch t.Kind() {
	case reflect.Struct:
		return KindStruct
	case reflect.Interface:
		return KindInterface
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return KindOpaque
	default:
		return KindNamed
	}
}

func describeMethods(d *TypeDescriptor) []MethodDescriptor {
	if d.Kind == KindInterface {
		methods := make([]MethodDescriptor, 0, d.Type.NumMethod())
		for i := 0; i < d.Type.NumMethod(); i++ {
			m := d.Type.Method(i)
			md := describeFunc(d.Name, m.Name, m.Type, 0)
			md.Modifiers |= ModAbstract
			md.Index = i
			methods = append(methods, md)
		}
		return methods
	}

	pt := reflect.PointerTo(d.Type)
	methods := make([]MethodDescriptor, 0, pt.NumMethod())
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		md := describeFunc(d.Name, m.Name, m.Type, 1)
		md.Index = i
		methods = append(methods, md)
	}
	return methods
}

// describeFunc builds a member descriptor from a func type, skipping the
// first skip inputs (the receiver).
func describeFunc(typeName, name string, ft reflect.Type, skip int) MethodDescriptor {
	in := make([]reflect.Type, 0, ft.NumIn()-skip)
	params := make([]ParamDescriptor, 0, ft.NumIn()-skip)
	for i := skip; i < ft.NumIn(); i++ {
		pt := ft.In(i)
		in = append(in, pt)
		variadic := ft.IsVariadic() && i == ft.NumIn()-1
		params = append(params, ParamDescriptor{
			Name:     fmt.Sprintf("arg%d", i-skip),
			Type:     pt,
			ByRef:    pt.Kind() == reflect.Pointer,
			Variadic: variadic,
			Optional: variadic,
		})
	}

	out := make([]reflect.Type, 0, ft.NumOut())
	results := make([]reflect.Type, 0, ft.NumOut())
	returnsError := false
	for i := 0; i < ft.NumOut(); i++ {
		rt := ft.Out(i)
		out = append(out, rt)
		if i == ft.NumOut()-1 && rt == errorType {
			returnsError = true
			continue
		}
		results = append(results, rt)
	}

	return MethodDescriptor{
		DeclaringType: typeName,
		OriginalType:  typeName,
		Name:          name,
		Params:        params,
		Results:       results,
		ReturnsRef:    len(results) > 0 && results[0].Kind() == reflect.Pointer,
		ReturnsError:  returnsError,
		Visibility:    visibilityOf(name),
		Signature:     reflect.FuncOf(in, out, ft.IsVariadic()),
	}
}

func visibilityOf(name string) Visibility {
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		return VisibilityUnexported
	}
	return VisibilityExported
}

func describeConstructor(t reflect.Type, fn any) (*ConstructorDescriptor, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: constructor for %s is not a func", ErrMalformed, TypeName(t))
	}
	ft := v.Type()
	if ft.NumOut() < 1 || ft.NumOut() > 2 {
		return nil, fmt.Errorf("%w: constructor for %s must return the instance and optionally an error", ErrMalformed, TypeName(t))
	}
	ctor := &ConstructorDescriptor{Func: v}
	switch ft.Out(0) {
	case t:
	case reflect.PointerTo(t):
		ctor.ReturnsPointer = true
	default:
		return nil, fmt.Errorf("%w: constructor for %s returns %v", ErrMalformed, TypeName(t), ft.Out(0))
	}
	if ft.NumOut() == 2 {
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("%w: second constructor result for %s must be error", ErrMalformed, TypeName(t))
		}
		ctor.ReturnsError = true
	}
	ctor.Params = describeFunc(TypeName(t), "New", ft, 0).Params
	return ctor, nil
}

func describeStatic(typeName string, s staticEntry) (MethodDescriptor, reflect.Value, error) {
	v := reflect.ValueOf(s.fn)
	if s.name == "" || s.fn == nil || v.Kind() != reflect.Func || v.IsNil() {
		return MethodDescriptor{}, reflect.Value{}, fmt.Errorf("%w: static member %q of %s is not a func", ErrMalformed, s.name, typeName)
	}
	m := describeFunc(typeName, s.name, v.Type(), 0)
	m.Modifiers |= ModStatic
	return m, v, nil
}

func methodIndex(d *TypeDescriptor, name string) (int, error) {
	for i := range d.Methods {
		if d.Methods[i].Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s has no member %q", ErrMalformed, d.Name, name)
}

func applyModifiers(d *TypeDescriptor, names []string, mod Modifier) error {
	for _, name := range names {
		i, err := methodIndex(d, name)
		if err != nil {
			return err
		}
		d.Methods[i].Modifiers |= mod
	}
	return nil
}

func applyParamNames(d *TypeDescriptor, method string, names []string) error {
	i, err := methodIndex(d, method)
	if err != nil {
		return err
	}
	m := &d.Methods[i]
	if len(names) != len(m.Params) {
		return fmt.Errorf("%w: %s.%s takes %d parameters, got %d names", ErrMalformed, d.Name, method, len(m.Params), len(names))
	}
	params := make([]ParamDescriptor, len(m.Params))
	copy(params, m.Params)
	for j := range params {
		params[j].Name = names[j]
	}
	m.Params = params
	return nil
}

func applyDefaults(d *TypeDescriptor, method string, values []any) error {
	i, err := methodIndex(d, method)
	if err != nil {
		return err
	}
	params, err := withDefaults(d.Methods[i].Params, values, d.Name+"."+method)
	if err != nil {
		return err
	}
	d.Methods[i].Params = params
	return nil
}

// withDefaults returns a copy of params with values assigned to the trailing parameters
func withDefaults(params []ParamDescriptor, values []any, owner string) ([]ParamDescriptor, error) {
	if len(values) > len(params) {
		return nil, fmt.Errorf("%w: %s has %d parameters, got %d defaults", ErrMalformed, owner, len(params), len(values))
	}
	out := make([]ParamDescriptor, len(params))
	copy(out, params)
	start := len(out) - len(values)
	for j, value := range values {
		p := &out[start+j]
		if p.Variadic {
			return nil, fmt.Errorf("%w: variadic parameter %s of %s cannot have a default", ErrMalformed, p.Name, owner)
		}
		if !fits(value, p.Type) {
			return nil, fmt.Errorf("%w: default %v does not fit parameter %s (%v) of %s", ErrMalformed, value, p.Name, p.Type, owner)
		}
		p.Optional = true
		p.Default = value
	}
	return out, nil
}

func fits(value any, t reflect.Type) bool {
	if value == nil {
		return Nillable(t)
	}
	return reflect.TypeOf(value).AssignableTo(t)
}

// Nillable reports whether nil is a valid value of t
func Nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
