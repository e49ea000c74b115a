package config

import (
	"fmt"

	"github.com/JaimeStill/outreach/pkg/formatting"
	"github.com/JaimeStill/outreach/pkg/middleware"
	"github.com/JaimeStill/outreach/pkg/openapi"
	"github.com/JaimeStill/outreach/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "OUTREACH_CORS_ENABLED",
	Origins:          "OUTREACH_CORS_ORIGINS",
	AllowedMethods:   "OUTREACH_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "OUTREACH_CORS_ALLOWED_HEADERS",
	AllowCredentials: "OUTREACH_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "OUTREACH_CORS_MAX_AGE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "OUTREACH_OPENAPI_TITLE",
	Description: "OUTREACH_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "OUTREACH_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "OUTREACH_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig covers the HTTP API surface. MaxUploadSize bounds message store
// snapshot uploads.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	OpenAPI       openapi.Config        `toml:"openapi"`
	Pagination    pagination.Config     `toml:"pagination"`
}

const defaultMaxUploadSize = 256 << 20

// MaxUploadSizeBytes returns MaxUploadSize in bytes, or 256MB when it does
// not parse.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return defaultMaxUploadSize
	}
	return size
}

// Finalize settles base_path and max_upload_size, then the nested CORS,
// OpenAPI and pagination sections.
func (c *APIConfig) Finalize() error {
	defaultString(&c.BasePath, "/api")
	defaultString(&c.MaxUploadSize, "256MB")
	envString(&c.BasePath, "OUTREACH_API_BASE_PATH")
	envString(&c.MaxUploadSize, "OUTREACH_API_MAX_UPLOAD_SIZE")

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}

	nested := map[string]error{
		"cors":       c.CORS.Finalize(corsEnv),
		"openapi":    c.OpenAPI.Finalize(openapiEnv),
		"pagination": c.Pagination.Finalize(paginationEnv),
	}
	for _, name := range []string{"cors", "openapi", "pagination"} {
		if err := nested[name]; err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	mergeString(&c.BasePath, overlay.BasePath)
	mergeString(&c.MaxUploadSize, overlay.MaxUploadSize)
	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Pagination.Merge(&overlay.Pagination)
}
