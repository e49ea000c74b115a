package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/outreach/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "2m"
log_level = "debug"
log_format = "json"

[database]
host = "localhost"
port = 5432
name = "outreach"
user = "outreach"
password = "outreach"
max_open_conns = 25
max_idle_conns = 5

[storage]
container_name = "snapshots"
connection_string = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

[api]
base_path = "/api"
max_upload_size = "64MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[agent]
name = "test-analyst"

[agent.provider]
name = "ollama"
base_url = "http://localhost:11434"

[agent.model]
name = "llama3.1:8b"

[messages]
path = "/data/chat.sqlite"

[pipeline]
concurrency = 4
stale_after = "20m"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[pipeline]
enabled = false
`

// minimalConfig carries only the fields validation cannot default.
const minimalConfig = `
[database]
name = "outreach"
user = "outreach"

[storage]
connection_string = "UseDevelopmentStorage=true"
`

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func setup(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		writeConfig(t, dir, name, content)
	}
	t.Chdir(dir)
}

func load(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	setup(t, map[string]string{"config.toml": baseConfig})
	cfg := load(t)

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "outreach" {
		t.Errorf("database name: got %s", cfg.Database.Name)
	}
	if cfg.Storage.ContainerName != "snapshots" {
		t.Errorf("storage container: got %s", cfg.Storage.ContainerName)
	}
	if cfg.Messages.Path != "/data/chat.sqlite" {
		t.Errorf("messages path: got %s", cfg.Messages.Path)
	}
	if cfg.Pipeline.Concurrency != 4 || cfg.Pipeline.StaleAfterDuration() != 20*time.Minute {
		t.Errorf("pipeline: got %+v", cfg.Pipeline)
	}
	if !cfg.Pipeline.IsEnabled() {
		t.Error("pipeline should be enabled by default")
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoadWithOverlay(t *testing.T) {
	setup(t, map[string]string{
		"config.toml":      baseConfig,
		"config.prod.toml": overlayConfig,
	})
	t.Setenv("OUTREACH_ENV", "prod")

	cfg := load(t)

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("database host: got %s, want prodhost", cfg.Database.Host)
	}
	if cfg.Database.Name != "outreach" {
		t.Errorf("database name should survive overlay, got %s", cfg.Database.Name)
	}
	if cfg.Pipeline.IsEnabled() {
		t.Error("overlay should disable the pipeline")
	}
	if cfg.Pipeline.Concurrency != 4 {
		t.Errorf("pipeline concurrency should survive overlay, got %d", cfg.Pipeline.Concurrency)
	}
}

func TestLoadMissingOverlayIgnored(t *testing.T) {
	setup(t, map[string]string{"config.toml": baseConfig})
	t.Setenv("OUTREACH_ENV", "staging")

	cfg := load(t)
	if cfg.Env() != "staging" {
		t.Errorf("env: got %s, want staging", cfg.Env())
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	setup(t, map[string]string{"config.toml": baseConfig})

	t.Setenv("OUTREACH_VERSION", "2.0.0")
	t.Setenv("OUTREACH_SERVER_PORT", "3000")
	t.Setenv("OUTREACH_DB_HOST", "envhost")
	t.Setenv("OUTREACH_MESSAGES_PATH", "/tmp/other.sqlite")
	t.Setenv("OUTREACH_PIPELINE_ENABLED", "false")
	t.Setenv("OUTREACH_LOG_LEVEL", "warn")

	cfg := load(t)

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Database.Host != "envhost" {
		t.Errorf("database host: got %s, want envhost", cfg.Database.Host)
	}
	if cfg.Messages.Path != "/tmp/other.sqlite" {
		t.Errorf("messages path: got %s", cfg.Messages.Path)
	}
	if cfg.Pipeline.IsEnabled() {
		t.Error("pipeline should be disabled by env")
	}
	if cfg.Server.LogLevel != "warn" {
		t.Errorf("log level: got %s, want warn", cfg.Server.LogLevel)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	setup(t, nil)

	t.Setenv("OUTREACH_DB_NAME", "testdb")
	t.Setenv("OUTREACH_DB_USER", "testuser")
	t.Setenv("OUTREACH_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")

	cfg := load(t)

	if cfg.Database.Name != "testdb" {
		t.Errorf("database name: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Version != "0.1.0" {
		t.Errorf("default version: got %s", cfg.Version)
	}
	if cfg.Agent.Model.Name != config.DefaultAgentModel {
		t.Errorf("default model: got %s, want %s", cfg.Agent.Model.Name, config.DefaultAgentModel)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid toml", "[server\nport = ", "parse config"},
		{"missing database name", "[database]\nuser = \"u\"\n[storage]\nconnection_string = \"x\"\n", "database"},
		{"missing storage connection", "[database]\nname = \"n\"\nuser = \"u\"\n", "storage"},
		{"bad shutdown timeout", "shutdown_timeout = \"soon\"\n" + minimalConfig, "shutdown_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, map[string]string{"config.toml": tt.content})

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestEnvDefault(t *testing.T) {
	t.Setenv("OUTREACH_ENV", "")
	cfg := &config.Config{}
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestServerAddr(t *testing.T) {
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := cfg.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("addr: got %s", got)
	}
}

func TestServerValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ServerConfig
		wantErr bool
	}{
		{"defaults", config.ServerConfig{}, false},
		{"port too high", config.ServerConfig{Port: 70000}, true},
		{"bad read timeout", config.ServerConfig{ReadTimeout: "later"}, true},
		{"bad log level", config.ServerConfig{LogLevel: "loud"}, true},
		{"bad log format", config.ServerConfig{LogFormat: "xml"}, true},
		{"json format", config.ServerConfig{LogFormat: "json", LogLevel: "error"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Finalize()
			if (err != nil) != tt.wantErr {
				t.Errorf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.ServerConfig{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.NewLogger(&buf)

	logger.Info("dropped")
	logger.Warn("kept", "batch", "b1")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"batch":"b1"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestPagination(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setup(t, map[string]string{"config.toml": minimalConfig})
		cfg := load(t)

		if cfg.API.Pagination.DefaultPageSize != 20 || cfg.API.Pagination.MaxPageSize != 100 {
			t.Errorf("pagination: got %+v", cfg.API.Pagination)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		setup(t, map[string]string{"config.toml": baseConfig})
		t.Setenv("OUTREACH_PAGINATION_DEFAULT_PAGE_SIZE", "10")
		t.Setenv("OUTREACH_PAGINATION_MAX_PAGE_SIZE", "200")
		cfg := load(t)

		if cfg.API.Pagination.DefaultPageSize != 10 || cfg.API.Pagination.MaxPageSize != 200 {
			t.Errorf("pagination: got %+v", cfg.API.Pagination)
		}
	})
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		size string
		want int64
	}{
		{"64MB", 64 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"bad", 256 * 1024 * 1024},
		{"", 256 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			cfg := &config.APIConfig{MaxUploadSize: tt.size}
			if got := cfg.MaxUploadSizeBytes(); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("env override", func(t *testing.T) {
		setup(t, map[string]string{"config.toml": baseConfig})
		t.Setenv("OUTREACH_API_MAX_UPLOAD_SIZE", "8MB")
		cfg := load(t)

		if got := cfg.API.MaxUploadSizeBytes(); got != 8*1024*1024 {
			t.Errorf("got %d, want %d", got, 8*1024*1024)
		}
	})
}

func TestAgentFromFile(t *testing.T) {
	setup(t, map[string]string{"config.toml": baseConfig})
	cfg := load(t)

	if cfg.Agent.Name != "test-analyst" {
		t.Errorf("agent name: got %s, want test-analyst", cfg.Agent.Name)
	}
	if cfg.Agent.Provider == nil || cfg.Agent.Provider.Name != "ollama" {
		t.Fatalf("agent provider: got %+v", cfg.Agent.Provider)
	}
	if cfg.Agent.Provider.BaseURL != "http://localhost:11434" {
		t.Errorf("base url: got %s", cfg.Agent.Provider.BaseURL)
	}
	if cfg.Agent.Model == nil || cfg.Agent.Model.Name != "llama3.1:8b" {
		t.Errorf("agent model: got %+v", cfg.Agent.Model)
	}
}

func TestAgentDefaults(t *testing.T) {
	setup(t, map[string]string{"config.toml": minimalConfig})
	cfg := load(t)

	if cfg.Agent.Name != config.DefaultAgentName {
		t.Errorf("agent name: got %s, want %s", cfg.Agent.Name, config.DefaultAgentName)
	}
	if cfg.Agent.Provider == nil || cfg.Agent.Provider.Name != "ollama" {
		t.Errorf("agent provider: got %+v", cfg.Agent.Provider)
	}
	if cfg.Agent.Model == nil || cfg.Agent.Model.Name != config.DefaultAgentModel {
		t.Errorf("agent model: got %+v, want %s", cfg.Agent.Model, config.DefaultAgentModel)
	}
}

func TestAgentEnvOverrides(t *testing.T) {
	setup(t, map[string]string{"config.toml": baseConfig})

	t.Setenv("OUTREACH_AGENT_PROVIDER_NAME", "azure")
	t.Setenv("OUTREACH_AGENT_BASE_URL", "https://example.openai.azure.com/openai")
	t.Setenv("OUTREACH_AGENT_MODEL_NAME", "gpt-5-mini")
	t.Setenv("OUTREACH_AGENT_TOKEN", "secret")
	t.Setenv("OUTREACH_AGENT_DEPLOYMENT", "gpt-5-mini")
	t.Setenv("OUTREACH_AGENT_API_VERSION", "2025-01-01-preview")
	t.Setenv("OUTREACH_AGENT_AUTH_TYPE", "api_key")

	cfg := load(t)

	if cfg.Agent.Provider.Name != "azure" {
		t.Errorf("provider name: got %s, want azure", cfg.Agent.Provider.Name)
	}
	if cfg.Agent.Model.Name != "gpt-5-mini" {
		t.Errorf("model name: got %s, want gpt-5-mini", cfg.Agent.Model.Name)
	}

	opts := cfg.Agent.Provider.Options
	for key, want := range map[string]string{
		"token":       "secret",
		"deployment":  "gpt-5-mini",
		"api_version": "2025-01-01-preview",
		"auth_type":   "api_key",
	} {
		if opts[key] != want {
			t.Errorf("option %s: got %v, want %s", key, opts[key], want)
		}
	}
}

func TestMessagesConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MessagesConfig
		wantErr bool
	}{
		{"defaults", config.MessagesConfig{}, false},
		{"default above max", config.MessagesConfig{DefaultLimit: 600}, true},
		{"explicit", config.MessagesConfig{DefaultLimit: 10, MaxLimit: 20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Finalize()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.Path == "" {
				t.Error("path should default")
			}
		})
	}
}

func TestPipelineConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg config.PipelineConfig
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.Concurrency != 2 || cfg.PollIntervalDuration() != 5*time.Second {
			t.Errorf("got %+v", cfg)
		}
		if cfg.StaleAfterDuration() != 15*time.Minute {
			t.Errorf("stale after: got %v, want 15m", cfg.StaleAfterDuration())
		}
		if cfg.MessageLimit != 50 {
			t.Errorf("message limit: got %d", cfg.MessageLimit)
		}
	})

	invalid := map[string]config.PipelineConfig{
		"bad poll interval": {PollInterval: "often"},
		"negative sweep":    {SweepInterval: "-1m"},
		"zero stale":        {StaleAfter: "0s"},
	}
	for name, cfg := range invalid {
		t.Run(name, func(t *testing.T) {
			if err := cfg.Finalize(); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("merge keeps explicit disable", func(t *testing.T) {
		disabled := false
		base := config.PipelineConfig{Concurrency: 3}
		base.Merge(&config.PipelineConfig{Enabled: &disabled})

		if base.IsEnabled() || base.Concurrency != 3 {
			t.Errorf("got %+v", base)
		}
	})
}
