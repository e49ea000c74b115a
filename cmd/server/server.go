package main

import (
	"fmt"
	"time"

	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/internal/infrastructure"
)

// Server owns the process: infrastructure, mounted modules and the listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

// NewServer builds every subsystem. Nothing touches the network until Start.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"env", cfg.Env(),
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"pipeline", cfg.Pipeline.IsEnabled(),
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start registers lifecycle hooks. Storage and database come first so the
// pipeline and listener never see them unprepared.
func (s *Server) Start() error {
	started := time.Now()
	steps := []struct {
		name  string
		start func() error
	}{
		{"infrastructure", s.infra.Start},
		{"modules", s.modules.Start},
		{"http", func() error { return s.http.Start(s.infra.Lifecycle) }},
	}

	for _, step := range steps {
		if err := step.start(); err != nil {
			return fmt.Errorf("start %s: %w", step.name, err)
		}
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready", "elapsed", time.Since(started))
	}()

	return nil
}

// Shutdown cancels the lifecycle context and waits up to timeout for hooks.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
