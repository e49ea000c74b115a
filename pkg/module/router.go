package module

import (
	"net/http"
	"strings"
)

// Router sends each request to the module mounted at its first path segment.
// Anything else, such as probes and the metrics endpoint, goes to a plain ServeMux.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// Handle registers handler on the fallback mux.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.native.Handle(pattern, handler)
}

// HandleNative registers fn on the fallback mux.
func (r *Router) HandleNative(pattern string, fn http.HandlerFunc) {
	r.native.HandleFunc(pattern, fn)
}

func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

// ServeHTTP trims a single trailing slash before matching, so "/api/admin/summary/"
// and "/api/admin/summary" reach the same route.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	if m, ok := r.modules[firstSegment(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}

	r.native.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	rest := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return "/" + rest
}
