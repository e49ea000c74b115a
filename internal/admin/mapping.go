package admin

import (
	"strings"

	"github.com/JaimeStill/outreach/pkg/query"
	"github.com/JaimeStill/outreach/pkg/repository"
)

const contactName = `TRIM(c.first_name || ' ' || COALESCE(c.last_name, ''))`

var recentProjection = query.
	NewProjectionMap("public", "analysis_batches", "b").
	Join("public", "contacts", "c", "c.id = b.contact_id").
	Project("id", "ID").
	Project("contact_id", "ContactID").
	ProjectExpr(contactName, "ContactName").
	Project("status", "Status").
	Project("message_count", "MessageCount").
	Project("attempts", "Attempts").
	Project("error_message", "ErrorMessage").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Most recently touched first; id breaks ties so the order is stable.
var recentSort = []query.SortField{
	{Field: "UpdatedAt", Descending: true},
	{Field: "ID"},
}

func scanRecent(s repository.Scanner) (RecentBatch, error) {
	b := RecentBatch{Suggestions: []SuggestionSummary{}}
	err := s.Scan(
		&b.ID,
		&b.ContactID,
		&b.ContactName,
		&b.Status,
		&b.MessageCount,
		&b.Attempts,
		&b.ErrorMessage,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

// prefixed qualifies each column in a comma-separated list with alias.
func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
