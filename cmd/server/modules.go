package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/outreach/internal/api"
	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/internal/infrastructure"
	"github.com/JaimeStill/outreach/pkg/middleware"
	"github.com/JaimeStill/outreach/pkg/module"
	"github.com/JaimeStill/outreach/web/docs"
)

// Modules holds the mounted HTTP modules.
type Modules struct {
	API  *api.API
	Docs *module.Module
}

// NewModules creates every module served by the router.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.New(cfg, infra)
	if err != nil {
		return nil, err
	}

	docsModule := docs.NewModule("/docs", cfg.API.OpenAPI.Title, cfg.API.BasePath+"/openapi.json", infra.Logger)
	docsModule.Use(middleware.Logger(infra.Logger))

	return &Modules{API: apiModule, Docs: docsModule}, nil
}

// Mount registers each module with the router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API.Module)
	router.Mount(m.Docs)
}

// Start registers module background work with the lifecycle coordinator.
func (m *Modules) Start() error {
	return m.API.Start()
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	router.Handle("GET /metrics", promhttp.HandlerFor(infra.Metrics, promhttp.HandlerOpts{}))

	return router
}
