package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/outreach/internal/contacts"
	"github.com/JaimeStill/outreach/internal/messages"
	"github.com/JaimeStill/outreach/internal/prompts"
	"github.com/JaimeStill/outreach/pkg/formatting"
)

type profile struct {
	Name            string                     `json:"name"`
	Notes           *string                    `json:"notes,omitempty"`
	Tags            []string                   `json:"tags"`
	CustomFields    []contacts.FieldValue      `json:"customFields"`
	AvailableFields []contacts.FieldDefinition `json:"availableFields"`
}

// ComposePrompt builds the generation prompt from the stage instructions
// (override or built-in), the output spec, the contact profile, and the
// conversation transcript in chronological order.
func ComposePrompt(ctx context.Context, ps prompts.System, req Request) (string, error) {
	instructions, err := ps.Instructions(ctx, prompts.StageAnalyze)
	if err != nil {
		return "", fmt.Errorf("load instructions: %w", err)
	}

	spec, err := ps.Spec(ctx, prompts.StageAnalyze)
	if err != nil {
		return "", fmt.Errorf("load spec: %w", err)
	}

	p := profile{
		Name:            req.Contact.DisplayName(),
		Notes:           req.Contact.Notes,
		Tags:            req.Contact.Tags,
		CustomFields:    req.Contact.CustomFields,
		AvailableFields: req.Fields,
	}

	profileJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize contact profile: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)
	sb.WriteString("\n\nContact profile:\n\n")
	sb.Write(profileJSON)
	sb.WriteString("\n\nConversation (oldest first):\n\n")
	sb.WriteString(Transcript(req.Messages))

	return sb.String(), nil
}

// Transcript renders newest-first messages as chronological lines.
func Transcript(msgs []messages.Message) string {
	var sb strings.Builder
	for _, m := range slices.Backward(msgs) {
		fmt.Fprintf(&sb, "[%s] %s %s\n", m.Timestamp, speaker(m), m.Text)
	}
	return sb.String()
}

// Snippet keeps the most recent SnippetSize messages, oldest first, capped
// at SnippetCap characters.
func Snippet(msgs []messages.Message) string {
	recent := msgs[:min(len(msgs), SnippetSize)]

	lines := make([]string, 0, len(recent))
	for _, m := range slices.Backward(recent) {
		lines = append(lines, speaker(m)+" "+m.Text)
	}

	return formatting.Truncate(strings.Join(lines, "\n"), SnippetCap)
}

func speaker(m messages.Message) string {
	if m.IsFromMe {
		return "Me:"
	}
	return "Them:"
}
