package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/outreach/pkg/handlers"
	"github.com/JaimeStill/outreach/pkg/openapi"
	"github.com/JaimeStill/outreach/pkg/routes"
	"github.com/JaimeStill/outreach/pkg/storage"
)

// storageHandler lets operators inspect the blob container holding message
// store snapshots.
type storageHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newStorageHandler(store storage.System, logger *slog.Logger, maxListSize int32) *storageHandler {
	return &storageHandler{
		store:       store,
		logger:      logger.With("handler", "storage"),
		maxListSize: maxListSize,
	}
}

func (h *storageHandler) routes() routes.Group {
	keyParam := []*openapi.Parameter{openapi.PathParam("key", "Blob key")}

	return routes.Group{
		Prefix: "/storage",
		Tags:   []string{"Storage"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: h.list,
				OpenAPI: &openapi.Operation{
					Summary: "List stored snapshots",
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("prefix", "string", "Key prefix", false),
						openapi.QueryParam("marker", "string", "Continuation marker", false),
						openapi.QueryParam("maxResults", "integer", "Page size", false),
					},
					Responses: map[int]*openapi.Response{
						200: {Description: "Blob listing"},
						400: openapi.ResponseRef("BadRequest"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/download/{key...}", Handler: h.download,
				OpenAPI: &openapi.Operation{
					Summary:    "Download a snapshot",
					Parameters: keyParam,
					Responses: map[int]*openapi.Response{
						200: {Description: "Blob content"},
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/{key...}", Handler: h.find,
				OpenAPI: &openapi.Operation{
					Summary:    "Snapshot metadata",
					Parameters: keyParam,
					Responses: map[int]*openapi.Response{
						200: {Description: "Blob metadata"},
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
		},
	}
}

func (h *storageHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	maxResults, err := storage.ParseMaxResults(q.Get("maxResults"), h.maxListSize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.store.List(r.Context(), q.Get("prefix"), q.Get("marker"), maxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *storageHandler) find(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.Find(r.Context(), r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, meta)
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.Warn("snapshot download interrupted", "key", key, "error", err)
	}
}
