package api

import (
	"net/http"

	"github.com/JaimeStill/outreach/internal/admin"
	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/internal/prompts"
	"github.com/JaimeStill/outreach/pkg/openapi"
	"github.com/JaimeStill/outreach/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Contacts.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		domain.Batches.Handler().Routes(),
		domain.Admin.Handler().Routes(),
		domain.Messages.Handler().Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger, cfg.Storage.MaxListSize).routes(),
	}

	routes.Register(mux, groups...)

	serve, err := buildSpec(cfg, groups).Handler()
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", serve)

	return nil
}

func buildSpec(cfg *config.Config, groups []routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(batches.Schemas())
	spec.Components.AddSchemas(admin.Schemas())
	spec.Components.AddSchemas(prompts.Schemas())

	routes.Document(spec, "", groups...)

	return spec
}
