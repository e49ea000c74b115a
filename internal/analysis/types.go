package analysis

import (
	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/internal/contacts"
	"github.com/JaimeStill/outreach/internal/messages"
)

const (
	KeyBatch    = "batch"
	KeyInput    = "input"
	KeyOutput   = "generation"
	KeyResult   = "result"
	SnippetSize = 10
	SnippetCap  = 2000
)

// Request is the input to a Generator.
type Request struct {
	Contact  contacts.Contact
	Fields   []contacts.FieldDefinition
	Messages []messages.Message
}

// Generation is what a Generator produced for one Request.
type Generation struct {
	Suggestions batches.SuggestionSet
	Prompt      string
	RawResponse string
}

// Result is the outcome of one analysis run, ready to be recorded on a batch.
type Result struct {
	Contact     contacts.Contact
	Messages    []messages.Message
	Suggestions batches.SuggestionSet
	Prompt      string
	RawResponse string
	Snippet     string
}

// Command converts the result into the batch completion payload.
func (r *Result) Command() batches.CompleteCommand {
	return batches.CompleteCommand{
		Prompt:      r.Prompt,
		RawResponse: r.RawResponse,
		Snippet:     r.Snippet,
		Messages:    r.Messages,
		Suggestions: r.Suggestions,
	}
}
