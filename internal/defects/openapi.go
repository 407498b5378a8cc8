package defects

import (
	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/openapi"
)

type spec struct {
	List         *openapi.Operation
	Find         *openapi.Operation
	Resolve      *openapi.Operation
	Distribution *openapi.Operation
}

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// Spec holds the OpenAPI operations for defect routes.
var Spec = spec{
	List: &openapi.Operation{
		Summary:     "List defects",
		Description: "Returns defects, newest first, each joined with its product. Unresolved defects are listed unless resolved is given.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("limit", "integer", "Page size (1-100, default 50)", false),
			openapi.QueryParam("resolved", "string", `"true", "false" (default) or any other value for both`, false),
			openapi.EnumQueryParam("productionLine", "Production line", enumOf(quality.Lines)...),
			openapi.EnumQueryParam("defectType", "Defect type", enumOf(quality.DefectTypes)...),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of defects", "DefectPage"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find defect",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Defect UUID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Defect", "Defect"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Resolve: &openapi.Operation{
		Summary:     "Resolve defect",
		Description: "Marks an unresolved defect as resolved. Resolving an already resolved defect fails.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Defect UUID")},
		RequestBody: openapi.RequestBodyJSON("ResolveCommand", false),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Resolved defect", "ResolveResponse"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	Distribution: &openapi.Operation{
		Summary:     "Unresolved defect distribution",
		Description: "Counts and average probability of unresolved defects per type, most frequent first.",
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Distribution rows",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: openapi.ArrayOf("DefectTypeCount")},
				},
			},
			500: openapi.ResponseRef("InternalError"),
		},
	},
}

// Schemas returns the component schemas referenced by defect operations.
func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Defect": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":        {Type: "string", Format: "uuid"},
				"productId": {Type: "string", Format: "uuid"},
				"product": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"productName":    {Type: "string"},
						"productionLine": {Type: "string"},
						"status":         {Type: "string"},
					},
				},
				"defectType":     {Type: "string", Enum: []any{"crack", "scratch", "dent", "deformation", "discoloration"}},
				"probability":    {Type: "number"},
				"imageUrl":       {Type: "string", Format: "uri"},
				"productionLine": {Type: "string"},
				"resolved":       {Type: "boolean"},
				"resolvedAt":     {Type: "string", Format: "date-time"},
				"resolvedBy":     {Type: "string"},
				"createdAt":      {Type: "string", Format: "date-time"},
				"updatedAt":      {Type: "string", Format: "date-time"},
			},
		},
		"DefectPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"defects":    openapi.ArrayOf("Defect"),
				"pagination": openapi.SchemaRef("Pagination"),
			},
		},
		"ResolveCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"resolvedBy": {Type: "string", Description: "Non-blank resolver identifier; trimmed"},
			},
		},
		"ResolveResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"message": {Type: "string", Example: resolvedMessage},
				"defect":  openapi.SchemaRef("Defect"),
			},
		},
		"DefectTypeCount": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"defectType":     {Type: "string"},
				"count":          {Type: "integer"},
				"avgProbability": {Type: "number"},
			},
		},
	}
}
