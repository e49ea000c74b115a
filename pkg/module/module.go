// Package module mounts self-contained HTTP modules (the API, for example)
// under single-segment path prefixes, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/outreach/pkg/middleware"
)

// Module strips its prefix from incoming requests and dispatches them to an
// inner router wrapped in the module's middleware.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System

	once    sync.Once
	handler http.Handler
}

// New panics unless prefix is a single segment with a leading slash, such as "/api".
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Use appends middleware. Calls after the first request has been served have no effect.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

// Handler returns the router wrapped in the middleware stack, built once.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.router)
	})
	return m.handler
}

func (m *Module) Prefix() string {
	return m.prefix
}

// Serve dispatches req with the module prefix removed from its path.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	path, _ := strings.CutPrefix(req.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	inner := req.Clone(req.Context())
	inner.URL.Path = path
	inner.URL.RawPath = ""

	m.Handler().ServeHTTP(w, inner)
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be a single path segment: %s", prefix)
	}
	return nil
}
