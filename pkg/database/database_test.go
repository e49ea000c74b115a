package database_test

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/outreach/pkg/database"
	"github.com/JaimeStill/outreach/pkg/lifecycle"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestConfigFinalize(t *testing.T) {
	t.Setenv("OUTREACH_TEST_DB_PORT", "6543")
	t.Setenv("OUTREACH_TEST_DB_PASSWORD", "env-secret")
	t.Setenv("OUTREACH_TEST_DB_MAX_OPEN", "not-a-number")

	cfg := database.Config{Name: "outreach", User: "outreach"}
	err := cfg.Finalize(&database.Env{
		Port:         "OUTREACH_TEST_DB_PORT",
		Password:     "OUTREACH_TEST_DB_PASSWORD",
		MaxOpenConns: "OUTREACH_TEST_DB_MAX_OPEN",
	})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.Host != "localhost" || cfg.Port != 6543 || cfg.Password != "env-secret" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 || cfg.ApplicationName != "outreach" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.ConnTimeoutDuration() != 5*time.Second || cfg.ConnMaxLifetimeDuration() != 15*time.Minute {
		t.Errorf("durations = %v, %v", cfg.ConnTimeoutDuration(), cfg.ConnMaxLifetimeDuration())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"missing name", database.Config{User: "u"}, "name required"},
		{"missing user", database.Config{Name: "n"}, "user required"},
		{"idle above open", database.Config{Name: "n", User: "u", MaxOpenConns: 2, MaxIdleConns: 4}, "max_idle_conns"},
		{"bad lifetime", database.Config{Name: "n", User: "u", ConnMaxLifetime: "forever"}, "conn_max_lifetime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := database.Config{Host: "db", Port: 5432, Name: "outreach", MaxOpenConns: 25}
	cfg.Merge(&database.Config{Host: "replica", MaxOpenConns: 5})

	if cfg.Host != "replica" || cfg.Port != 5432 || cfg.Name != "outreach" || cfg.MaxOpenConns != 5 {
		t.Errorf("merged = %+v", cfg)
	}
}

func TestDsn(t *testing.T) {
	cfg := database.Config{
		Host:            "db.internal",
		Port:            5433,
		Name:            "outreach",
		User:            "svc",
		Password:        "p@ss word/1",
		SSLMode:         "require",
		ApplicationName: "outreach",
		ConnTimeout:     "3s",
	}

	u, err := url.Parse(cfg.Dsn())
	if err != nil {
		t.Fatalf("Dsn is not a URL: %v", err)
	}

	if u.Scheme != "postgres" || u.Host != "db.internal:5433" || u.Path != "/outreach" {
		t.Errorf("dsn = %s", cfg.Dsn())
	}
	if pw, _ := u.User.Password(); pw != "p@ss word/1" {
		t.Errorf("password round trip = %q", pw)
	}

	q := u.Query()
	if q.Get("sslmode") != "require" || q.Get("application_name") != "outreach" || q.Get("connect_timeout") != "3" {
		t.Errorf("query = %v", q)
	}
}

func TestNewPool(t *testing.T) {
	cfg := database.Config{Name: "outreach", User: "outreach"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	cfg.MaxOpenConns = 42

	sys, err := database.New(&cfg, discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sys.Connection().Close()

	if got := sys.Connection().Stats().MaxOpenConnections; got != 42 {
		t.Errorf("MaxOpenConnections = %d, want 42", got)
	}
}

func TestCloseAfter(t *testing.T) {
	cfg := database.Config{Host: "127.0.0.1", Port: 1, Name: "outreach", User: "outreach", ConnTimeout: "50ms"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	sys, err := database.New(&cfg, discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start: %v", err)
	}
	lc.WaitForStartup()

	worker := make(chan struct{})
	sys.CloseAfter(worker)

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Fatal("shutdown should wait for the pipeline to finish")
	}

	close(worker)
	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	err = sys.Connection().PingContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "closed") {
		t.Errorf("ping after shutdown = %v, want closed pool", err)
	}
}
