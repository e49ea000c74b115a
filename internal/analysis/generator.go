package analysis

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/internal/prompts"
	"github.com/JaimeStill/outreach/pkg/formatting"
)

//go:embed output.schema.json
var outputSchema []byte

const outputSchemaURL = "output.schema.json"

// Generator produces suggestions for one contact's message window.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Generation, error)
}

type agentGenerator struct {
	agent   gaconfig.AgentConfig
	prompts prompts.System
	schema  *jsonschema.Schema
	logger  *slog.Logger
}

// NewGenerator creates a Generator backed by a go-agents chat model. Each
// call makes one Chat request with no retry.
func NewGenerator(cfg gaconfig.AgentConfig, ps prompts.System, logger *slog.Logger) (Generator, error) {
	schema, err := CompileSchema()
	if err != nil {
		return nil, err
	}

	return &agentGenerator{
		agent:   cfg,
		prompts: ps,
		schema:  schema,
		logger:  logger.With("system", "generator"),
	}, nil
}

func (g *agentGenerator) Generate(ctx context.Context, req Request) (*Generation, error) {
	prompt, err := ComposePrompt(ctx, g.prompts, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	a, err := agent.New(&g.agent)
	if err != nil {
		return nil, fmt.Errorf("%w: create agent: %w", ErrGeneration, err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: chat call: %w", ErrGeneration, err)
	}

	raw := resp.Content()
	set, err := ParseOutput(g.schema, raw)
	if err != nil {
		return nil, &OutputError{Prompt: prompt, RawResponse: raw, Err: err}
	}

	g.logger.DebugContext(ctx, "suggestions generated",
		"contact_id", req.Contact.ID,
		"fields", len(set.FieldSuggestions),
		"tags", len(set.TagSuggestions),
	)

	return &Generation{
		Suggestions: set,
		Prompt:      prompt,
		RawResponse: raw,
	}, nil
}

// CompileSchema compiles the embedded output schema.
func CompileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(outputSchemaURL, bytes.NewReader(outputSchema)); err != nil {
		return nil, fmt.Errorf("add output schema: %w", err)
	}
	schema, err := compiler.Compile(outputSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile output schema: %w", err)
	}
	return schema, nil
}

// ParseOutput extracts the JSON document from a model response (bare or
// fenced), validates it against schema, and decodes it. Every failure wraps
// ErrGeneration.
func ParseOutput(schema *jsonschema.Schema, content string) (batches.SuggestionSet, error) {
	var set batches.SuggestionSet

	doc, err := formatting.Parse[json.RawMessage](content)
	if err != nil {
		return set, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return set, fmt.Errorf("%w: decode response: %w", ErrGeneration, err)
	}
	if err := schema.Validate(v); err != nil {
		return set, fmt.Errorf("%w: response does not match schema: %w", ErrGeneration, err)
	}

	if err := json.Unmarshal(doc, &set); err != nil {
		return set, fmt.Errorf("%w: decode suggestions: %w", ErrGeneration, err)
	}
	if err := set.Validate(); err != nil {
		return set, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return set, nil
}
