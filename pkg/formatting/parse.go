package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is wrapped when no JSON value of the requested shape can be
// recovered from model output.
var ErrParseFailed = errors.New("no parseable JSON in response")

var fence = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// Parse decodes model output into T. It tries, in order: the whole content,
// the body of each fenced code block, and the span from the first '{' to the
// last '}' for output that wraps the object in prose.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	candidates := []string{content}
	for _, m := range fence.FindAllStringSubmatch(content, -1) {
		candidates = append(candidates, m[1])
	}
	if start, end := strings.IndexByte(content, '{'), strings.LastIndexByte(content, '}'); start >= 0 && end > start {
		candidates = append(candidates, content[start:end+1])
	}

	for _, c := range candidates {
		if err := json.Unmarshal([]byte(c), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, Truncate(content, 200))
}
