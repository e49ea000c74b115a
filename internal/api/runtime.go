package api

import (
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/internal/infrastructure"
	"github.com/JaimeStill/outreach/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Agent         gaconfig.AgentConfig
	Messages      config.MessagesConfig
	Pipeline      config.PipelineConfig
	Pagination    pagination.Config
	MaxUploadSize int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Metrics:   infra.Metrics,
		},
		Agent:         cfg.Agent,
		Messages:      cfg.Messages,
		Pipeline:      cfg.Pipeline,
		Pagination:    cfg.API.Pagination,
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
	}
}
