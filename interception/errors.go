package interception

import "errors"

var (
	// Registry errors
	ErrNilInterceptor = errors.New("interception: interceptor cannot be nil")
	ErrNilMatcher     = errors.New("interception: matcher cannot be nil")

	// Context errors
	ErrArgumentIndex = errors.New("interception: argument index out of range")
)

// GuardError is the failure recorded when a guard rejects a call
type GuardError struct {
	Method string
	Err    error
}

func (e *GuardError) Error() string {
	return "interception: call to " + e.Method + " rejected: " + e.Err.Error()
}

func (e *GuardError) Unwrap() error {
	return e.Err
}
