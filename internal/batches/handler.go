package batches

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/pkg/handlers"
	"github.com/JaimeStill/outreach/pkg/openapi"
	"github.com/JaimeStill/outreach/pkg/routes"
	"github.com/JaimeStill/outreach/pkg/validation"
)

// Handler provides HTTP endpoints for enqueueing batches and reviewing suggestions.
type Handler struct {
	sys       System
	logger    *slog.Logger
	validator *validation.Validator
}

// NewHandler creates a Handler with the given system, logger, and body validator.
func NewHandler(sys System, logger *slog.Logger, validator *validation.Validator) *Handler {
	return &Handler{
		sys:       sys,
		logger:    logger.With("handler", "batches"),
		validator: validator,
	}
}

// Routes returns the route group definition for batch endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Tags: []string{"Batches"},
		Routes: []routes.Route{
			{
				Method: "POST", Pattern: "/batches", Handler: h.Enqueue,
				OpenAPI: &openapi.Operation{
					Summary:     "Enqueue a contact for analysis",
					RequestBody: openapi.RequestBodyJSON("EnqueueCommand", true),
					Responses: map[int]*openapi.Response{
						201: openapi.ResponseJSON("Batch created", "Batch"),
						400: openapi.ResponseRef("BadRequest"),
						422: openapi.ResponseRef("Unprocessable"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/batches/{id}", Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Find a batch",
					Parameters: []*openapi.Parameter{openapi.PathParam("id", "Batch ID")},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Batch", "Batch"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "POST", Pattern: "/suggestions/{id}/review", Handler: h.Review,
				OpenAPI: &openapi.Operation{
					Summary:     "Accept or reject a suggested update",
					Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Suggestion ID")},
					RequestBody: openapi.RequestBodyJSON("ReviewCommand", true),
					Responses: map[int]*openapi.Response{
						200: {Description: "Reviewed suggestion"},
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
						409: openapi.ResponseRef("Conflict"),
					},
				},
			},
		},
	}
}

// Enqueue creates a PENDING batch for the contact in the request body.
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var cmd EnqueueCommand
	if err := h.decode(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	contactID, err := uuid.Parse(cmd.ContactID)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	b, err := h.sys.Enqueue(r.Context(), contactID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, b)
}

// Find returns a single batch by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	b, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, b)
}

// Review accepts or rejects a pending suggested update.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	var cmd ReviewCommand
	if err := h.decode(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	u, err := h.sys.Review(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

func (h *Handler) decode(r *http.Request, dst any) error {
	if err := handlers.DecodeJSON(r, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := h.validator.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}
