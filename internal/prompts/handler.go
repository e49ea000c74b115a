package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/pkg/handlers"
	"github.com/JaimeStill/outreach/pkg/openapi"
	"github.com/JaimeStill/outreach/pkg/pagination"
	"github.com/JaimeStill/outreach/pkg/routes"
)

type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest is the body of POST /prompts/search.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// StageContent is the response type for stage-scoped content endpoints.
type StageContent struct {
	Stage   Stage  `json:"stage"`
	Content string `json:"content"`
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "prompts"),
		pagination: pagination,
	}
}

func (h *Handler) Routes() routes.Group {
	idParam := []*openapi.Parameter{openapi.PathParam("id", "Prompt ID")}
	stageParam := []*openapi.Parameter{openapi.EnumParam("stage", "path", "Pipeline stage", true, Stages()...)}

	return routes.Group{
		Prefix: "/prompts",
		Tags:   []string{"Prompts"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary:    "List prompt overrides",
					Parameters: append(pagination.QueryParameters("Search names and descriptions"), openapi.QueryParam("stage", "string", "Filter by stage", false)),
					Responses:  map[int]*openapi.Response{200: {Description: "Prompt page"}},
				},
			},
			{
				Method: "GET", Pattern: "/stages", Handler: h.Stages,
				OpenAPI: &openapi.Operation{
					Summary:   "List stages",
					Responses: map[int]*openapi.Response{200: {Description: "Stage names"}},
				},
			},
			{
				Method: "GET", Pattern: "/{id}", Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Find a prompt",
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Prompt", "Prompt"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/{stage}/instructions", Handler: h.Instructions,
				OpenAPI: &openapi.Operation{
					Summary:    "Effective instructions for a stage",
					Parameters: stageParam,
					Responses: map[int]*openapi.Response{
						200: {Description: "Stage content"},
						400: openapi.ResponseRef("BadRequest"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/{stage}/spec", Handler: h.Spec,
				OpenAPI: &openapi.Operation{
					Summary:    "Output specification for a stage",
					Parameters: stageParam,
					Responses: map[int]*openapi.Response{
						200: {Description: "Stage content"},
						400: openapi.ResponseRef("BadRequest"),
					},
				},
			},
			{
				Method: "POST", Pattern: "", Handler: h.Create,
				OpenAPI: &openapi.Operation{
					Summary:     "Create a prompt override",
					RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
					Responses: map[int]*openapi.Response{
						201: openapi.ResponseJSON("Prompt created", "Prompt"),
						400: openapi.ResponseRef("BadRequest"),
						409: openapi.ResponseRef("Conflict"),
					},
				},
			},
			{
				Method: "PUT", Pattern: "/{id}", Handler: h.Update,
				OpenAPI: &openapi.Operation{
					Summary:     "Update a prompt override",
					Parameters:  idParam,
					RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Prompt", "Prompt"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "DELETE", Pattern: "/{id}", Handler: h.Delete,
				OpenAPI: &openapi.Operation{
					Summary:    "Delete a prompt override",
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						204: {Description: "Deleted"},
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{
				Method: "POST", Pattern: "/{id}/activate", Handler: h.Activate,
				OpenAPI: &openapi.Operation{
					Summary:    "Make a prompt the active override for its stage",
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Prompt", "Prompt"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "POST", Pattern: "/{id}/deactivate", Handler: h.Deactivate,
				OpenAPI: &openapi.Operation{
					Summary:    "Clear the active flag on a prompt",
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Prompt", "Prompt"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(r.Context(), w, pagination.PageRequestFromQuery(q, h.pagination), FiltersFromQuery(q))
}

// Search is List with criteria in a JSON body instead of the query string.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	req.Normalize(h.pagination)
	h.list(r.Context(), w, req.PageRequest, req.Filters)
}

func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Stages())
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.sys.Find)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.sys.Activate)
}

// Deactivate returns the stage to its built-in instructions.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.sys.Deactivate)
}

// Instructions serves the live override for the stage, or the built-in text.
func (h *Handler) Instructions(w http.ResponseWriter, r *http.Request) {
	h.byStage(w, r, h.sys.Instructions)
}

func (h *Handler) Spec(w http.ResponseWriter, r *http.Request) {
	h.byStage(w, r, h.sys.Spec)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	h.respond(w, http.StatusCreated, func() (*Prompt, error) {
		return h.sys.Create(r.Context(), cmd)
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var cmd UpdateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	h.respond(w, http.StatusOK, func() (*Prompt, error) {
		return h.sys.Update(r.Context(), id, cmd)
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(ctx context.Context, w http.ResponseWriter, page pagination.PageRequest, filters Filters) {
	result, err := h.sys.List(ctx, page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) byID(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) (*Prompt, error)) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK, func() (*Prompt, error) {
		return fn(r.Context(), id)
	})
}

func (h *Handler) byStage(w http.ResponseWriter, r *http.Request, fn func(context.Context, Stage) (string, error)) {
	stage, err := ParseStage(r.PathValue("stage"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	text, err := fn(r.Context(), stage)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, StageContent{Stage: stage, Content: text})
}

func (h *Handler) respond(w http.ResponseWriter, status int, fn func() (*Prompt, error)) {
	p, err := fn()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, status, p)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidID, err))
		return uuid.Nil, false
	}
	return id, true
}
