package routes

import (
	"net/http"

	"github.com/JaimeStill/outreach/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler. Routes without an
// OpenAPI operation are served but left out of the generated document.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// muxPattern is the ServeMux pattern for r mounted under prefix,
// e.g. "POST /admin/batches/{id}/reprocess".
func (r Route) muxPattern(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
