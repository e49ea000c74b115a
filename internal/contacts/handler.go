package contacts

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/pkg/handlers"
	"github.com/JaimeStill/outreach/pkg/openapi"
	"github.com/JaimeStill/outreach/pkg/pagination"
	"github.com/JaimeStill/outreach/pkg/routes"
)

// Handler provides read-only HTTP endpoints for contacts.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "contacts"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for contact endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/contacts",
		Tags:   []string{"Contacts"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary:    "List contacts",
					Parameters: pagination.QueryParameters("Search names and notes"),
					Responses:  map[int]*openapi.Response{200: {Description: "Contact page"}},
				},
			},
			{
				Method: "GET", Pattern: "/fields", Handler: h.Fields,
				OpenAPI: &openapi.Operation{
					Summary:   "List custom field definitions",
					Responses: map[int]*openapi.Response{200: {Description: "Field definitions"}},
				},
			},
			{
				Method: "GET", Pattern: "/{id}", Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Find a contact",
					Parameters: []*openapi.Parameter{openapi.PathParam("id", "Contact ID")},
					Responses: map[int]*openapi.Response{
						200: {Description: "Contact"},
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
		},
	}
}

// List returns a paginated list of contacts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Fields returns the custom field definitions.
func (h *Handler) Fields(w http.ResponseWriter, r *http.Request) {
	defs, err := h.sys.Fields(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, defs)
}

// Find returns a single contact by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidID, err))
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}
