package middleware

import (
	"net/http"
	"slices"
)

// Func wraps a handler with cross-cutting behavior.
type Func = func(http.Handler) http.Handler

// System is an ordered middleware stack. The first Func passed to Use is the
// outermost wrapper.
type System interface {
	Use(fn Func)
	Apply(handler http.Handler) http.Handler
}

type stack []Func

func New() System {
	return &stack{}
}

func (s *stack) Use(fn Func) {
	*s = append(*s, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, fn := range slices.Backward(*s) {
		handler = fn(handler)
	}
	return handler
}
