package infrastructure_test

import (
	"testing"

	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/internal/infrastructure"
	"github.com/JaimeStill/outreach/pkg/database"
	"github.com/JaimeStill/outreach/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{LogLevel: "info", LogFormat: "text"},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "outreach",
			User:            "outreach",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "snapshots",
			ConnectionString: azuriteConnString,
		},
		Version: "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	if infra.Lifecycle == nil || infra.Logger == nil {
		t.Error("lifecycle and logger must be set")
	}
	if infra.Database == nil || infra.Storage == nil {
		t.Error("database and storage must be set")
	}

	families, err := infra.Metrics.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) == 0 {
		t.Error("registry should expose runtime collectors")
	}
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.ConnectionString = "not-a-connection-string"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}
