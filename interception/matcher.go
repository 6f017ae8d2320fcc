package interception

import (
	"regexp"
	"strings"

	"github.com/glimte/phroxy-go/introspect"
)

// Matcher selects the members an interceptor applies to. Matchers run once
// per method identity and their answer is cached, so they must be pure.
type Matcher func(m introspect.MethodDescriptor) bool

// MatchAll matches every member
func MatchAll() Matcher {
	return func(introspect.MethodDescriptor) bool { return true }
}

// MatchNone matches nothing
func MatchNone() Matcher {
	return func(introspect.MethodDescriptor) bool { return false }
}

// And matches when every matcher matches
func And(matchers ...Matcher) Matcher {
	return func(m introspect.MethodDescriptor) bool {
		for _, match := range matchers {
			if !match(m) {
				return false
			}
		}
		return true
	}
}

// Or matches when at least one matcher matches
func Or(matchers ...Matcher) Matcher {
	return func(m introspect.MethodDescriptor) bool {
		for _, match := range matchers {
			if match(m) {
				return true
			}
		}
		return false
	}
}

// Not inverts a matcher
func Not(matcher Matcher) Matcher {
	return func(m introspect.MethodDescriptor) bool {
		return !matcher(m)
	}
}

// MethodNamed matches members by exact name
func MethodNamed(names ...string) Matcher {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	return func(m introspect.MethodDescriptor) bool {
		return allowed[m.Name]
	}
}

// MethodPrefix matches members whose name starts with prefix
func MethodPrefix(prefix string) Matcher {
	return func(m introspect.MethodDescriptor) bool {
		return strings.HasPrefix(m.Name, prefix)
	}
}

// MethodRegexp matches members whose name matches the expression
func MethodRegexp(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return func(m introspect.MethodDescriptor) bool {
		return re.MatchString(m.Name)
	}, nil
}

// OnType matches members of the given original types
func OnType(typeNames ...string) Matcher {
	allowed := make(map[string]bool, len(typeNames))
	for _, n := range typeNames {
		allowed[n] = true
	}
	return func(m introspect.MethodDescriptor) bool {
		return allowed[m.OriginalType]
	}
}

// StaticOnly matches static members
func StaticOnly() Matcher {
	return func(m introspect.MethodDescriptor) bool {
		return m.IsStatic()
	}
}

// ReturnsError matches members with a trailing error result
func ReturnsError() Matcher {
	return func(m introspect.MethodDescriptor) bool {
		return m.ReturnsError
	}
}
