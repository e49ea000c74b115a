package messages

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/outreach/pkg/formatting"
	"github.com/JaimeStill/outreach/pkg/handlers"
	"github.com/JaimeStill/outreach/pkg/openapi"
	"github.com/JaimeStill/outreach/pkg/routes"
)

// Handler provides HTTP endpoints for message lookups and snapshot uploads.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "messages"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for message endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/messages",
		Tags:   []string{"Messages"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "/{phone}", Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary: "List recent messages for a phone number",
					Parameters: []*openapi.Parameter{
						{Name: "phone", In: "path", Required: true, Schema: &openapi.Schema{Type: "string"}},
						openapi.QueryParam("limit", "integer", "Maximum messages to return", false),
					},
					Responses: map[int]*openapi.Response{
						200: {Description: "Messages, newest first"},
						400: openapi.ResponseRef("BadRequest"),
						500: openapi.ResponseRef("ServerError"),
					},
				},
			},
			{
				Method: "POST", Pattern: "/snapshot", Handler: h.Snapshot,
				OpenAPI: &openapi.Operation{
					Summary:     "Replace the message store",
					Description: "Multipart upload of a SQLite message store in field \"file\".",
					Responses: map[int]*openapi.Response{
						200: {Description: "Active snapshot"},
						400: openapi.ResponseRef("BadRequest"),
						413: {Description: "Snapshot too large"},
						500: openapi.ResponseRef("ServerError"),
					},
				},
			},
		},
	}
}

// List returns up to limit messages exchanged with the phone path parameter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLimit)
			return
		}
		limit = n
	}

	msgs, err := h.sys.Messages(r.Context(), r.PathValue("phone"), limit)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, msgs)
}

// Snapshot accepts a multipart SQLite upload and makes it the active store.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		err = fmt.Errorf("%w: limit is %s", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize))
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSnapshot)
		return
	}
	defer file.Close()

	snap, err := h.sys.Replace(r.Context(), file)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snap)
}
