package openapi

const jsonMedia = "application/json"

func SchemaRef(name string) *Schema {
	return &Schema{Ref: "#/components/schemas/" + name}
}

func ResponseRef(name string) *Response {
	return &Response{Ref: "#/components/responses/" + name}
}

func jsonContent(schema *Schema) map[string]*MediaType {
	return map[string]*MediaType{jsonMedia: {Schema: schema}}
}

// RequestBodyJSON is a JSON body whose schema is the named component.
func RequestBodyJSON(schemaName string, required bool) *RequestBody {
	return &RequestBody{Required: required, Content: jsonContent(SchemaRef(schemaName))}
}

// ResponseJSON is a JSON response whose schema is the named component.
func ResponseJSON(description, schemaName string) *Response {
	return &Response{Description: description, Content: jsonContent(SchemaRef(schemaName))}
}

// ArrayResponseJSON is a JSON response holding a list of the named component.
func ArrayResponseJSON(description, schemaName string) *Response {
	return &Response{
		Description: description,
		Content:     jsonContent(&Schema{Type: "array", Items: SchemaRef(schemaName)}),
	}
}

// PathParam is a required path segment holding a UUID.
func PathParam(name, description string) *Parameter {
	return &Parameter{
		Name:        name,
		In:          "path",
		Required:    true,
		Description: description,
		Schema:      &Schema{Type: "string", Format: "uuid"},
	}
}

func QueryParam(name, typ, description string, required bool) *Parameter {
	return &Parameter{
		Name:        name,
		In:          "query",
		Required:    required,
		Description: description,
		Schema:      &Schema{Type: typ},
	}
}

// IntQueryParam is an optional integer query parameter bounded to [lo, hi].
func IntQueryParam(name, description string, lo, hi, def int) *Parameter {
	return &Parameter{
		Name:        name,
		In:          "query",
		Description: description,
		Schema:      &Schema{Type: "integer", Minimum: &lo, Maximum: &hi, Default: def},
	}
}

// Enum returns a string schema restricted to values.
func Enum[S ~string](values ...S) *Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = string(v)
	}
	return &Schema{Type: "string", Enum: enum}
}

// EnumParam is a string parameter in location in restricted to values.
func EnumParam[S ~string](name, in, description string, required bool, values ...S) *Parameter {
	return &Parameter{
		Name:        name,
		In:          in,
		Required:    required,
		Description: description,
		Schema:      Enum(values...),
	}
}
