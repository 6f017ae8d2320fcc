package widgets

import (
	"errors"
	"io"
	"strings"
)

// Widget is a plain proxyable type
type Widget struct {
	Label string
}

func (w *Widget) Describe() string {
	return "widget"
}

// Serial is never overridden
//
//phroxy:final
func (w *Widget) Serial() int {
	return 42
}

func (w *Widget) Rename(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty name")
	}
	w.Label = name
	return name, nil
}

func (w *Widget) Join(sep string, parts ...string) string {
	return strings.Join(parts, sep)
}

func (w *Widget) Copy(dst io.Writer, _ int) (int, error) {
	return io.WriteString(dst, w.Label)
}

func (w *Widget) Reset(out string) {
	w.Label = out
}

func (w *Widget) hidden() {}

// Sealed cannot be wrapped
//
//phroxy:final
type Sealed struct{}

func (s *Sealed) Name() string { return "sealed" }

type Shape interface {
	Area() float64
}

type Celsius float64
