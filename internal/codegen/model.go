package codegen

import (
	"strconv"
	"strings"
)

// TypeModel describes a struct type for wrapper generation
type TypeModel struct {
	Name    string
	PkgName string
	PkgPath string
	Dir     string
	Methods []MethodModel
	Imports []string
}

// FinalMethods returns the names of methods marked final
func (t *TypeModel) FinalMethods() []string {
	names := make([]string, 0)
	for _, m := range t.Methods {
		if m.Final {
			names = append(names, m.Name)
		}
	}
	return names
}

// Overrides returns the methods the wrapper overrides
func (t *TypeModel) Overrides() []MethodModel {
	out := make([]MethodModel, 0, len(t.Methods))
	for _, m := range t.Methods {
		if !m.Final {
			out = append(out, m)
		}
	}
	return out
}

// MethodModel describes one exported method of the pointer method set
type MethodModel struct {
	Name         string
	Params       []ParamModel
	Results      []string
	ReturnsError bool
	Variadic     bool
	Final        bool
}

// ParamModel is a named parameter. The type of a variadic tail is the
// element type.
type ParamModel struct {
	Name string
	Type string
}

// ParamList renders the parameter list of the method
func (m MethodModel) ParamList() string {
	parts := make([]string, len(m.Params))
	for i, p := range m.Params {
		if m.Variadic && i == len(m.Params)-1 {
			parts[i] = p.Name + " ..." + p.Type
			continue
		}
		parts[i] = p.Name + " " + p.Type
	}
	return strings.Join(parts, ", ")
}

// ArgList renders the arguments forwarded to the proxy instance
func (m MethodModel) ArgList() string {
	if len(m.Params) == 0 {
		return ""
	}
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	return ", " + strings.Join(names, ", ")
}

// ResultList renders the result list of the method
func (m MethodModel) ResultList() string {
	results := append([]string(nil), m.Results...)
	if m.ReturnsError {
		results = append(results, "error")
	}
	switch len(results) {
	case 0:
		return ""
	case 1:
		return results[0]
	default:
		return "(" + strings.Join(results, ", ") + ")"
	}
}

// ReturnList renders the return statement operands
func (m MethodModel) ReturnList() string {
	names := make([]string, 0, len(m.Results)+1)
	for i := range m.Results {
		names = append(names, resultName(i))
	}
	if m.ReturnsError {
		names = append(names, "err")
	}
	return strings.Join(names, ", ")
}

// NeedsOut reports whether the call results must be unpacked
func (m MethodModel) NeedsOut() bool {
	return len(m.Results) > 0
}

func resultName(i int) string {
	return "r" + strconv.Itoa(i)
}
