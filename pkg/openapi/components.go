package openapi

import "maps"

// NewComponents returns the schemas and error responses every outreach spec shares.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:       "object",
				Required:   []string{"error"},
				Properties: map[string]*Schema{"error": {Type: "string", Description: "Error message"}},
			},
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":     {Type: "integer", Description: "Page number, starting at 1", Example: 1},
					"pageSize": {Type: "integer", Description: "Results per page", Example: 20},
					"search":   {Type: "string", Description: "Free text search"},
					"sort":     {Type: "string", Description: "Comma separated sort fields, prefix with - for descending", Example: "lastName,-createdAt"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":    errorResponse("Invalid request"),
			"NotFound":      errorResponse("Resource not found"),
			"Conflict":      errorResponse("Batch is not in a state that allows the operation, or the record already exists"),
			"Unprocessable": errorResponse("Request references a contact or field that does not exist"),
			"ServerError":   errorResponse("Internal server error"),
		},
	}
}

func errorResponse(description string) *Response {
	return ResponseJSON(description, "Error")
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
