package prompts

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/outreach/pkg/query"
	"github.com/JaimeStill/outreach/pkg/repository"
)

// columns is the RETURNING list matching scanPrompt.
const columns = "id, name, stage, instructions, description, active, created_at, updated_at"

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("stage", "Stage").
	Project("instructions", "Instructions").
	Project("description", "Description").
	Project("active", "Active").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Live overrides list first.
var defaultSort = []query.SortField{
	{Field: "Active", Descending: true},
	{Field: "Name"},
}

// Filters narrows prompt listings. Unknown stages and unparsable booleans in
// the query string are dropped rather than rejected.
type Filters struct {
	Stage  *Stage  `json:"stage,omitempty"`
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Stage", f.Stage).
		WhereContains("Name", f.Name).
		WhereEquals("Active", f.Active)
}

func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if stage, err := ParseStage(values.Get("stage")); err == nil {
		f.Stage = &stage
	}
	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	if v, err := strconv.ParseBool(values.Get("active")); err == nil {
		f.Active = &v
	}

	return f
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Stage,
		&p.Instructions,
		&p.Description,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
