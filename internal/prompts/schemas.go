package prompts

import "github.com/JaimeStill/outreach/pkg/openapi"

// Schemas returns the OpenAPI component schemas referenced by prompt routes.
func Schemas() map[string]*openapi.Schema {
	stage := openapi.Enum(Stages()...)

	return map[string]*openapi.Schema{
		"Prompt": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"name":         {Type: "string"},
				"stage":        stage,
				"instructions": {Type: "string"},
				"description":  {Type: "string"},
				"active":       {Type: "boolean"},
				"createdAt":    {Type: "string", Format: "date-time"},
				"updatedAt":    {Type: "string", Format: "date-time"},
			},
		},
		"PromptCommand": {
			Type:     "object",
			Required: []string{"name", "stage", "instructions"},
			Properties: map[string]*openapi.Schema{
				"name":         {Type: "string"},
				"stage":        stage,
				"instructions": {Type: "string"},
				"description":  {Type: "string"},
			},
		},
	}
}
