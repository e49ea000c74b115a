package prompts

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Stage names the analysis step a prompt override replaces instructions for.
type Stage string

// StageAnalyze is the suggestion generation step.
const StageAnalyze Stage = "analyze"

var stages = []Stage{StageAnalyze}

// Stages returns the list of valid stages.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
	}
	return v, nil
}
