package routes

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/outreach/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", group)
	}
}

// Document adds every route carrying an OpenAPI operation to spec.
// Paths are recorded as basePath + group prefix + pattern. Operations without
// tags inherit the tags of their group.
func Document(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, group := range groups {
		documentGroup(spec, basePath, nil, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		mux.HandleFunc(route.muxPattern(fullPrefix), route.Handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, child)
	}
}

func documentGroup(spec *openapi.Spec, parentPrefix string, parentTags []string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	tags := group.Tags
	if len(tags) == 0 {
		tags = parentTags
	}

	for _, route := range group.Routes {
		if route.OpenAPI == nil {
			continue
		}

		op := *route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}

		path := specPath(fullPrefix + route.Pattern)
		item, ok := spec.Paths[path]
		if !ok {
			item = &openapi.PathItem{}
			spec.Paths[path] = item
		}

		switch route.Method {
		case http.MethodGet:
			item.Get = &op
		case http.MethodPost:
			item.Post = &op
		case http.MethodPut:
			item.Put = &op
		case http.MethodPatch:
			item.Patch = &op
		case http.MethodDelete:
			item.Delete = &op
		}
	}

	for _, child := range group.Children {
		documentGroup(spec, fullPrefix, tags, child)
	}
}

// specPath converts ServeMux wildcards ({key...}) to OpenAPI path parameters ({key}).
func specPath(pattern string) string {
	if pattern == "" {
		return "/"
	}
	return strings.ReplaceAll(pattern, "...}", "}")
}
