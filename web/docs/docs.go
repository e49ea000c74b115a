// Package docs serves an interactive reference page for the API's OpenAPI document.
package docs

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/outreach/pkg/module"
)

//go:embed index.html
var pageFS embed.FS

var page = template.Must(template.ParseFS(pageFS, "index.html"))

// NewModule mounts the reference page at basePath. specURL is the absolute
// path of the document the page loads, such as "/api/openapi.json".
func NewModule(basePath, title, specURL string, logger *slog.Logger) *module.Module {
	data := map[string]string{"Title": title, "SpecURL": specURL}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, data); err != nil {
			logger.Error("render docs page failed", "error", err)
		}
	})

	return module.New(basePath, mux)
}
