package config

import (
	"errors"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentName         = "OUTREACH_AGENT_NAME"
	EnvAgentProviderName = "OUTREACH_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "OUTREACH_AGENT_BASE_URL"
	EnvAgentToken        = "OUTREACH_AGENT_TOKEN"
	EnvAgentDeployment   = "OUTREACH_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "OUTREACH_AGENT_API_VERSION"
	EnvAgentAuthType     = "OUTREACH_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "OUTREACH_AGENT_MODEL_NAME"
)

const (
	DefaultAgentName  = "outreach-analyst"
	DefaultAgentModel = "llama3.1:8b"
)

// providerOptions maps environment variables onto provider option keys.
// Provider options are free-form, so only keys the supported providers read
// are exposed here.
var providerOptions = map[string]string{
	EnvAgentToken:      "token",
	EnvAgentDeployment: "deployment",
	EnvAgentAPIVersion: "api_version",
	EnvAgentAuthType:   "auth_type",
}

// FinalizeAgent fills c from the go-agents defaults, applies OUTREACH_AGENT_*
// overrides, then checks that a provider and model are named.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		c.Name = DefaultAgentName
	}
	merged := gaconfig.DefaultAgentConfig()
	merged.Merge(c)
	*c = merged

	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if c.Model.Name == "" {
		c.Model.Name = DefaultAgentModel
	}
	if c.Provider.Options == nil {
		c.Provider.Options = map[string]any{}
	}

	for env, dst := range map[string]*string{
		EnvAgentName:         &c.Name,
		EnvAgentProviderName: &c.Provider.Name,
		EnvAgentBaseURL:      &c.Provider.BaseURL,
		EnvAgentModelName:    &c.Model.Name,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	for env, key := range providerOptions {
		if v := os.Getenv(env); v != "" {
			c.Provider.Options[key] = v
		}
	}

	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name required"))
	}
	if c.Provider.Name == "" {
		errs = append(errs, errors.New("provider name required"))
	}
	if c.Model.Name == "" {
		errs = append(errs, errors.New("model name required"))
	}
	return errors.Join(errs...)
}
