// Package database owns the PostgreSQL connection pool and ties its open and
// close to the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/outreach/pkg/lifecycle"
)

type System interface {
	Connection() *sql.DB
	// Start pings the pool on startup and closes it on shutdown.
	Start(lc *lifecycle.Coordinator) error
	// CloseAfter delays closing the pool until done is closed, so background
	// writers can finish their last statement during shutdown.
	CloseAfter(done <-chan struct{})
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration

	mu      sync.Mutex
	holders []<-chan struct{}
}

// New configures the pool without connecting. The first connection is made
// by the startup ping.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) CloseAfter(done <-chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.holders = append(d.holders, done)
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
		defer cancel()

		if err := d.conn.PingContext(ctx); err != nil {
			d.logger.Error("database ping failed", "error", err)
			return
		}
		d.logger.Info("database connected")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		d.mu.Lock()
		holders := d.holders
		d.mu.Unlock()
		for _, done := range holders {
			<-done
		}

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database closed")
	})

	return nil
}
