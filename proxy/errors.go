package proxy

import (
	"errors"
	"fmt"
)

var (
	// Synthesis errors
	ErrNotProxyable = errors.New("proxy: type cannot be proxied")

	// Construction errors
	ErrConstruct = errors.New("proxy: cannot construct instance")

	// Call errors
	ErrArgument       = errors.New("proxy: invalid argument")
	ErrUnknownMethod  = errors.New("proxy: unknown method")
	ErrResultMismatch = errors.New("proxy: result does not fit declared type")
	ErrSignature      = errors.New("proxy: signature mismatch")
)

// ProxyError is returned when a proxy cannot be synthesized, constructed or called
type ProxyError struct {
	Type string
	Op   string
	Err  error
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("proxy %s %s: %v", e.Op, e.Type, e.Err)
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}

// PanicError is the failure recorded when an original member panics
type PanicError struct {
	Method string
	Value  any
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("proxy: %s panicked: %v", e.Method, e.Value)
}

// Unwrap returns the panic value when it is an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Kind classifies the failure for metrics
func (e *PanicError) Kind() string {
	return "panic"
}

// Raise re-panics with the original value when err carries a panic from the
// original member, and returns err unchanged otherwise.
func Raise(err error) error {
	var p *PanicError
	if errors.As(err, &p) {
		panic(p.Value)
	}
	return err
}
