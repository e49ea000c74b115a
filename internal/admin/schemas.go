package admin

import (
	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/pkg/openapi"
)

// Schemas returns the OpenAPI component schemas referenced by admin routes.
func Schemas() map[string]*openapi.Schema {
	integer := &openapi.Schema{Type: "integer"}
	id := &openapi.Schema{Type: "string", Format: "uuid"}
	timestamp := &openapi.Schema{Type: "string", Format: "date-time"}

	return map[string]*openapi.Schema{
		"AdminSummary": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"queue": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"pending":    integer,
						"processing": integer,
						"completed":  integer,
					},
				},
				"last24Hours": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"completed": integer,
						"failed":    integer,
					},
				},
				"pendingSuggestions": integer,
			},
		},
		"SuggestionSummary": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                id,
				"status":            openapi.Enum(batches.ReviewPending, batches.ReviewAccepted, batches.ReviewRejected),
				"changeCount":       integer,
				"hasNotableUpdates": {Type: "boolean"},
			},
		},
		"RecentBatch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           id,
				"contactId":    id,
				"contactName":  {Type: "string"},
				"status":       {Type: "string"},
				"messageCount": integer,
				"attempts":     integer,
				"errorMessage": {Type: "string"},
				"createdAt":    timestamp,
				"updatedAt":    timestamp,
				"suggestions":  {Type: "array", Items: openapi.SchemaRef("SuggestionSummary")},
			},
		},
		"BatchDetail": {
			Type:        "object",
			Description: "Batch fields plus contactName, analyzed messages, and full suggestion payloads",
			Properties: map[string]*openapi.Schema{
				"id":                  id,
				"contactId":           id,
				"contactName":         {Type: "string"},
				"status":              {Type: "string"},
				"messageCount":        integer,
				"llmPrompt":           {Type: "string"},
				"llmResponse":         {Type: "string"},
				"conversationSnippet": {Type: "string"},
				"errorMessage":        {Type: "string"},
				"messages":            {Type: "array", Items: &openapi.Schema{Type: "object"}},
				"suggestions":         {Type: "array", Items: &openapi.Schema{Type: "object"}},
			},
		},
	}
}
