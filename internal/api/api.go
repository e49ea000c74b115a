// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/internal/infrastructure"
	"github.com/JaimeStill/outreach/pkg/middleware"
	"github.com/JaimeStill/outreach/pkg/module"
)

// API is the mounted HTTP module plus the domain systems behind it.
type API struct {
	Module  *module.Module
	Domain  *Domain
	runtime *Runtime
}

// New creates the API module with all domain handlers and middleware.
func New(cfg *config.Config, infra *infrastructure.Infrastructure) (*API, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))

	return &API{
		Module:  m,
		Domain:  domain,
		runtime: runtime,
	}, nil
}

// Start registers the domain background systems with the lifecycle coordinator.
func (a *API) Start() error {
	return a.Domain.Start(a.runtime)
}
