package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/internal/contacts"
)

// LoadNode resolves the batch's contact, its phone number, the custom field
// definitions, and the message window.
func LoadNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		b, err := extract[batches.Batch](s, KeyBatch)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}

		contact, err := rt.Contacts.Find(ctx, b.ContactID)
		if err != nil {
			if errors.Is(err, contacts.ErrNotFound) {
				return s, fmt.Errorf("%w: %s", ErrContactNotFound, b.ContactID)
			}
			return s, fmt.Errorf("%w: find contact: %w", ErrLoadFailed, err)
		}

		if contact.PhoneNumber == nil || strings.TrimSpace(*contact.PhoneNumber) == "" {
			return s, fmt.Errorf("%w: %s", ErrMissingPhone, contact.DisplayName())
		}

		fields, err := rt.Contacts.Fields(ctx)
		if err != nil {
			return s, fmt.Errorf("%w: load field definitions: %w", ErrLoadFailed, err)
		}

		msgs, err := rt.Messages.Messages(ctx, *contact.PhoneNumber, rt.MessageLimit)
		if err != nil {
			return s, fmt.Errorf("%w: read messages: %w", ErrLoadFailed, err)
		}

		rt.Logger.InfoContext(ctx, "load node complete",
			"batch_id", b.ID,
			"contact_id", contact.ID,
			"messages", len(msgs),
		)

		return s.Set(KeyInput, Request{
			Contact:  *contact,
			Fields:   fields,
			Messages: msgs,
		}), nil
	})
}

// GenerateNode asks the Generator for suggestions. A failed generation
// fails the run.
func GenerateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		in, err := extract[Request](s, KeyInput)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrGeneration, err)
		}

		gen, err := rt.Generator.Generate(ctx, *in)
		if err != nil {
			if !errors.Is(err, ErrGeneration) {
				err = fmt.Errorf("%w: %w", ErrGeneration, err)
			}
			return s, err
		}

		rt.Logger.InfoContext(ctx, "generate node complete",
			"contact_id", in.Contact.ID,
			"changes", gen.Suggestions.ChangeCount(),
		)

		return s.Set(KeyOutput, *gen), nil
	})
}

// FinalizeNode filters suggestions against the contact's profile and builds
// the conversation snippet.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		in, err := extract[Request](s, KeyInput)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}

		var gen Generation
		if g, err := extract[Generation](s, KeyOutput); err == nil {
			gen = *g
		}

		result := Result{
			Contact:     in.Contact,
			Messages:    in.Messages,
			Suggestions: Filter(gen.Suggestions, in.Contact, in.Fields),
			Prompt:      gen.Prompt,
			RawResponse: gen.RawResponse,
			Snippet:     Snippet(in.Messages),
		}

		rt.Logger.InfoContext(ctx, "finalize node complete",
			"contact_id", in.Contact.ID,
			"generated", gen.Suggestions.ChangeCount(),
			"kept", result.Suggestions.ChangeCount(),
		)

		return s.Set(KeyResult, result), nil
	})
}

// Filter drops field suggestions for unknown field ids and tag suggestions
// the contact already carries or that repeat an earlier suggestion. Field
// names are taken from the definitions.
func Filter(set batches.SuggestionSet, contact contacts.Contact, fields []contacts.FieldDefinition) batches.SuggestionSet {
	names := make(map[string]string, len(fields))
	for _, f := range fields {
		names[f.ID] = f.Name
	}

	out := batches.SuggestionSet{
		FieldSuggestions: []batches.FieldSuggestion{},
		TagSuggestions:   []batches.TagSuggestion{},
	}

	for _, fs := range set.FieldSuggestions {
		name, ok := names[fs.FieldID]
		if !ok {
			continue
		}
		fs.FieldName = name
		out.FieldSuggestions = append(out.FieldSuggestions, fs)
	}

	seen := make(map[string]bool, len(set.TagSuggestions))
	for _, ts := range set.TagSuggestions {
		key := strings.ToLower(strings.TrimSpace(ts.TagName))
		if key == "" || seen[key] || contact.HasTag(key) {
			continue
		}
		seen[key] = true
		ts.TagName = strings.TrimSpace(ts.TagName)
		out.TagSuggestions = append(out.TagSuggestions, ts)
	}

	return out
}
