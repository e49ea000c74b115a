package admin

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/pkg/handlers"
	"github.com/JaimeStill/outreach/pkg/openapi"
	"github.com/JaimeStill/outreach/pkg/routes"
)

// Handler provides the operator HTTP surface.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "admin"),
	}
}

// Routes returns the route group definition for admin endpoints.
func (h *Handler) Routes() routes.Group {
	idParam := []*openapi.Parameter{openapi.PathParam("id", "Batch ID")}

	return routes.Group{
		Prefix: "/admin",
		Tags:   []string{"Admin"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "/summary", Handler: h.Summary,
				OpenAPI: &openapi.Operation{
					Summary: "Queue and 24 hour outcome counts",
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Summary", "AdminSummary"),
						500: openapi.ResponseRef("ServerError"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/batches", Handler: h.ListRecent,
				OpenAPI: &openapi.Operation{
					Summary: "List recently updated batches",
					Parameters: []*openapi.Parameter{
						openapi.IntQueryParam("limit", "Maximum rows", 1, MaxLimit, DefaultLimit),
						openapi.EnumParam("status", "query", "Filter by batch status", false, batches.Statuses...),
					},
					Responses: map[int]*openapi.Response{
						200: openapi.ArrayResponseJSON("Recent batches", "RecentBatch"),
						400: openapi.ResponseRef("BadRequest"),
						500: openapi.ResponseRef("ServerError"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/batches/{id}", Handler: h.Detail,
				OpenAPI: &openapi.Operation{
					Summary:    "Full batch detail",
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Batch detail", "BatchDetail"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "POST", Pattern: "/batches/{id}/reprocess", Handler: h.Reprocess,
				OpenAPI: &openapi.Operation{
					Summary:    "Reset a terminal batch to PENDING",
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Reset batch", "Batch"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
						409: openapi.ResponseRef("Conflict"),
					},
				},
			},
			{
				Method: "POST", Pattern: "/batches/purge", Handler: h.Purge,
				OpenAPI: &openapi.Operation{
					Summary: "Delete every batch, message, and suggestion",
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Deleted row counts", "PurgeResult"),
						500: openapi.ResponseRef("ServerError"),
					},
				},
			},
		},
	}
}

// Summary returns queue and trailing-window counts.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Summary(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// ListRecent returns batches ordered by last update, newest first.
func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var limit int
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %q", ErrInvalidLimit, raw))
			return
		}
		limit = n
	}

	var status *batches.Status
	if raw := q.Get("status"); raw != "" {
		s, err := batches.ParseStatus(raw)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		status = &s
	}

	items, err := h.sys.ListRecent(r.Context(), limit, status)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Detail returns the full record of one batch.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.batchID(w, r)
	if !ok {
		return
	}

	d, err := h.sys.Detail(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}

// Reprocess resets a COMPLETED or FAILED batch to PENDING.
func (h *Handler) Reprocess(w http.ResponseWriter, r *http.Request) {
	id, ok := h.batchID(w, r)
	if !ok {
		return
	}

	b, err := h.sys.Reprocess(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, b)
}

// Purge deletes all batch data and reports what was removed.
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	res, err := h.sys.PurgeAll(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, res)
}

func (h *Handler) batchID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, batches.ErrInvalidRequest)
		return uuid.Nil, false
	}
	return id, true
}
