package openapi

import "maps"

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}

// NewComponents creates Components with the shared error and pagination schemas
// and the standard error responses.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:     "object",
				Required: []string{"error", "message"},
				Properties: map[string]*Schema{
					"error":   {Type: "string", Description: "HTTP status text", Example: "Bad Request"},
					"message": {Type: "string", Description: "Human-readable reason"},
					"details": ArrayOf("FieldError"),
				},
			},
			"FieldError": {
				Type: "object",
				Properties: map[string]*Schema{
					"field":   {Type: "string"},
					"message": {Type: "string"},
				},
			},
			"Pagination": {
				Type: "object",
				Properties: map[string]*Schema{
					"total":      {Type: "integer", Example: 3},
					"page":       {Type: "integer", Example: 1},
					"limit":      {Type: "integer", Example: 50},
					"totalPages": {Type: "integer", Example: 1},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":    errorResponse("Invalid request"),
			"NotFound":      errorResponse("Resource not found"),
			"InternalError": errorResponse("Unexpected failure; detail is exposed only in development"),
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}
