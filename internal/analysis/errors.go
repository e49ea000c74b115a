// Package analysis turns a contact's message history into reviewable field
// and tag suggestions. A state graph loads the contact and message window,
// asks a Generator for suggestions, and filters the result against the
// contact's current profile.
package analysis

import (
	"errors"

	"github.com/JaimeStill/outreach/internal/batches"
)

// Sentinel errors for analysis runs. None of them reach HTTP; the worker
// records them on the batch.
var (
	ErrContactNotFound = errors.New("contact not found")
	ErrMissingPhone    = errors.New("contact has no phone number")
	ErrLoadFailed      = errors.New("failed to load analysis input")
	ErrGeneration      = errors.New("suggestion generation failed")
)

// OutputError is a model response that could not be parsed into
// suggestions. It keeps the prompt and raw response so the failed batch
// records what the model returned.
type OutputError struct {
	Prompt      string
	RawResponse string
	Err         error
}

func (e *OutputError) Error() string { return e.Err.Error() }

func (e *OutputError) Unwrap() error { return e.Err }

// FailCommand builds the terminal failure for err, including the model
// exchange when err carries one.
func FailCommand(err error) batches.FailCommand {
	cmd := batches.FailCommand{Message: err.Error()}
	var oe *OutputError
	if errors.As(err, &oe) {
		cmd.Prompt = oe.Prompt
		cmd.RawResponse = oe.RawResponse
	}
	return cmd
}
