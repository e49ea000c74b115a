package batches

import "github.com/JaimeStill/outreach/pkg/openapi"

// Schemas returns the OpenAPI component schemas referenced by batch routes.
func Schemas() map[string]*openapi.Schema {
	nullableStr := &openapi.Schema{Type: "string", Description: "Null until set"}
	integer := &openapi.Schema{Type: "integer"}
	timestamp := &openapi.Schema{Type: "string", Format: "date-time"}

	return map[string]*openapi.Schema{
		"Batch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                  {Type: "string", Format: "uuid"},
				"contactId":           {Type: "string", Format: "uuid"},
				"status":              openapi.Enum(Statuses...),
				"messageCount":        integer,
				"attempts":            integer,
				"claimedAt":           timestamp,
				"errorMessage":        nullableStr,
				"llmPrompt":           nullableStr,
				"llmResponse":         nullableStr,
				"conversationSnippet": nullableStr,
				"createdAt":           timestamp,
				"updatedAt":           timestamp,
			},
		},
		"EnqueueCommand": {
			Type:     "object",
			Required: []string{"contactId"},
			Properties: map[string]*openapi.Schema{
				"contactId": {Type: "string", Format: "uuid"},
			},
		},
		"ReviewCommand": {
			Type:     "object",
			Required: []string{"status"},
			Properties: map[string]*openapi.Schema{
				"status": openapi.Enum(ReviewAccepted, ReviewRejected),
			},
		},
		"PurgeResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"deletedBatches":  integer,
				"deletedMessages": integer,
				"deletedUpdates":  integer,
			},
		},
	}
}
