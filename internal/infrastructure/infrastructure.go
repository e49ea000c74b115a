// Package infrastructure builds the shared systems every domain module runs
// on: lifecycle, logging, the database pool, blob storage and metrics.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/pkg/database"
	"github.com/JaimeStill/outreach/pkg/lifecycle"
	"github.com/JaimeStill/outreach/pkg/storage"
)

type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Metrics   *prometheus.Registry
}

// New wires the systems without touching the network. Connections are
// verified by the startup hooks Start registers.
func New(cfg *config.Config) (*Infrastructure, error) {
	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    cfg.Server.NewLogger(os.Stderr),
		Metrics:   prometheus.NewRegistry(),
	}

	var err error
	if infra.Database, err = database.New(&cfg.Database, infra.Logger); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if infra.Storage, err = storage.New(&cfg.Storage, infra.Logger); err != nil {
		infra.Database.Connection().Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	infra.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(infra.Database.Connection(), cfg.Database.Name),
	)

	return infra, nil
}

// Start registers the database and storage hooks with the coordinator.
func (i *Infrastructure) Start() error {
	systems := []struct {
		name  string
		start func(*lifecycle.Coordinator) error
	}{
		{"database", i.Database.Start},
		{"storage", i.Storage.Start},
	}
	for _, sys := range systems {
		if err := sys.start(i.Lifecycle); err != nil {
			return fmt.Errorf("start %s: %w", sys.name, err)
		}
	}
	return nil
}
