package interception

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/google/uuid"

	"github.com/glimte/phroxy-go/introspect"
)

// Context is the mutable record of one intercepted call. It is created for
// a single invocation, shared by every interceptor of that call, and never
// reused. It is not safe for concurrent use.
type Context struct {
	id       uuid.UUID
	target   any
	method   introspect.MethodDescriptor
	args     []any
	data     map[any]any
	nextKey  int
	callNext bool
	failure  error
	results  []any
	hasValue bool
}

// NewContext creates the context for one call. target is nil for static members.
func NewContext(target any, method introspect.MethodDescriptor, args []any) *Context {
	return &Context{
		id:       uuid.New(),
		target:   target,
		method:   method,
		args:     args,
		data:     make(map[any]any),
		callNext: true,
	}
}

// InvocationID identifies this call in logs and metrics
func (c *Context) InvocationID() string {
	return c.id.String()
}

// Target returns the receiver of the call, or nil for static members
func (c *Context) Target() any {
	return c.target
}

// Method returns the descriptor of the invoked member
func (c *Context) Method() introspect.MethodDescriptor {
	return c.method
}

// Arguments returns the positional arguments of the call
func (c *Context) Arguments() []any {
	return c.args
}

// Argument returns the i-th argument
func (c *Context) Argument(i int) (any, bool) {
	if i < 0 || i >= len(c.args) {
		return nil, false
	}
	return c.args[i], true
}

// SetArgument replaces the i-th argument before the original member runs
func (c *Context) SetArgument(i int, value any) error {
	if i < 0 || i >= len(c.args) {
		return fmt.Errorf("%w: %d of %d", ErrArgumentIndex, i, len(c.args))
	}
	c.args[i] = value
	return nil
}

// StdContext returns the first argument when it is a context.Context
func (c *Context) StdContext() context.Context {
	if len(c.args) > 0 {
		if ctx, ok := c.args[0].(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// SetData stores user data. String and integer keys overwrite any previous
// value; any other key appends the value under the next integer index.
// Integer keys of every kind are stored as int.
func (c *Context) SetData(key any, value any) {
	k, ok := dataKey(key)
	if !ok {
		c.data[c.nextKey] = value
		c.nextKey++
		return
	}
	c.data[k] = value
	if i, isInt := k.(int); isInt && i >= c.nextKey {
		c.nextKey = i + 1
	}
}

// Data retrieves user data. Keys that are neither strings nor integers never match.
func (c *Context) Data(key any) (any, bool) {
	k, ok := dataKey(key)
	if !ok {
		return nil, false
	}
	value, exists := c.data[k]
	return value, exists
}

// dataKey normalizes qualifying keys. Integers outside the int range do not qualify.
func dataKey(key any) (any, bool) {
	if key == nil {
		return nil, false
	}
	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.String:
		return v.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		if i < math.MinInt || i > math.MaxInt {
			return nil, false
		}
		return int(i), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt {
			return nil, false
		}
		return int(u), true
	default:
		return nil, false
	}
}

// DataString retrieves a string value from the user data
func (c *Context) DataString(key any) (string, bool) {
	value, exists := c.Data(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

// DataInt retrieves an int value from the user data
func (c *Context) DataInt(key any) (int, bool) {
	value, exists := c.Data(key)
	if !exists {
		return 0, false
	}
	i, ok := value.(int)
	return i, ok
}

// AllData returns a copy of the user data
func (c *Context) AllData() map[any]any {
	out := make(map[any]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// CallNext sets whether the remaining interceptors and the original member run
func (c *Context) CallNext(shouldCallNext bool) {
	c.callNext = shouldCallNext
}

// ShouldCallNext reports whether the remaining interceptors and the original member run
func (c *Context) ShouldCallNext() bool {
	return c.callNext
}

// Failure returns the pending failure, or nil
func (c *Context) Failure() error {
	return c.failure
}

// SetFailure records the failure the caller will observe
func (c *Context) SetFailure(err error) {
	c.failure = err
}

// ClearFailure drops the pending failure
func (c *Context) ClearFailure() {
	c.failure = nil
}

// SetReturnValue sets the result of a single-result member
func (c *Context) SetReturnValue(value any) {
	c.results = []any{value}
	c.hasValue = true
}

// SetReturnValues sets every non-error result of the member
func (c *Context) SetReturnValues(values ...any) {
	c.results = append([]any(nil), values...)
	c.hasValue = true
}

// ReturnValue returns the first result and whether any result was set
func (c *Context) ReturnValue() (any, bool) {
	if !c.hasValue || len(c.results) == 0 {
		return nil, c.hasValue
	}
	return c.results[0], true
}

// ReturnValues returns all results and whether they were set
func (c *Context) ReturnValues() ([]any, bool) {
	return c.results, c.hasValue
}

// ClearReturnValue returns the result slot to its unset state
func (c *Context) ClearReturnValue() {
	c.results = nil
	c.hasValue = false
}
