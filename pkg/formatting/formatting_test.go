package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/outreach/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"512", 512, false},
		{"10MB", 10 << 20, false},
		{"1.5 gb", 3 << 29, false},
		{" 256MB ", 256 << 20, false},
		{"", 0, true},
		{"MB", 0, true},
		{"10 parsecs", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:         "0 B",
		1023:      "1023 B",
		10 << 20:  "10 MB",
		3 << 29:   "1.5 GB",
		256 << 20: "256 MB",
	}
	for n, want := range tests {
		if got := formatting.FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo wörld", 7, "héllo w"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := formatting.Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	type output struct {
		FieldSuggestions []map[string]any `json:"fieldSuggestions"`
		TagSuggestions   []map[string]any `json:"tagSuggestions"`
	}

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"bare", `{"fieldSuggestions":[],"tagSuggestions":[{"tagName":"climber"}]}`, false},
		{"fenced", "Here you go:\n```json\n{\"fieldSuggestions\":[],\"tagSuggestions\":[{\"tagName\":\"climber\"}]}\n```", false},
		{"unlabelled fence", "```\n{\"tagSuggestions\":[{\"tagName\":\"climber\"}]}\n```", false},
		{"prose wrapped", `Sure! {"tagSuggestions":[{"tagName":"climber"}]} Let me know.`, false},
		{"no json", "I could not find anything notable.", true},
		{"broken", "```json\n{\"tagSuggestions\": [\n```", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[output](tt.content)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("err = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(got.TagSuggestions) != 1 || got.TagSuggestions[0]["tagName"] != "climber" {
				t.Errorf("got %+v", got)
			}
		})
	}
}
