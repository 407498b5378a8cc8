package products

import (
	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/openapi"
)

type spec struct {
	List  *openapi.Operation
	Find  *openapi.Operation
	Stats *openapi.Operation
}

func lineValues() []string {
	out := make([]string, len(quality.Lines))
	for i, l := range quality.Lines {
		out[i] = string(l)
	}
	return out
}

// Spec holds the OpenAPI operations for product routes.
var Spec = spec{
	List: &openapi.Operation{
		Summary:     "List products",
		Description: "Returns inspected products, newest first, filtered by line and status.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("limit", "integer", "Page size (1-100, default 50)", false),
			openapi.EnumQueryParam("line", "Production line", lineValues()...),
			openapi.EnumQueryParam("status", "Inspection status", "pending", "approved", "rejected"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of products", "ProductPage"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find product",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Product UUID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Product", "Product"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Stats: &openapi.Operation{
		Summary:     "Production statistics",
		Description: "Per-line counts, average inspection time and average defect probability, with an overall roll-up.",
		Parameters: []*openapi.Parameter{
			openapi.EnumQueryParam("productionLine", "Production line", lineValues()...),
			openapi.QueryParam("dateFrom", "string", "Inclusive lower bound on creation time (RFC 3339 or YYYY-MM-DD)", false),
			openapi.QueryParam("dateTo", "string", "Inclusive upper bound on creation time (RFC 3339 or YYYY-MM-DD)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Statistics report", "ProductionStats"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
}

// Schemas returns the component schemas referenced by product operations.
func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Product": {
			Type:     "object",
			Required: []string{"id", "productionLine", "productName", "status", "imageUrl"},
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Format: "uuid"},
				"productionLine":    {Type: "string", Example: "assembly-1"},
				"productName":       {Type: "string", Example: "PROD-assembly-LZ3K9Q2A"},
				"status":            {Type: "string", Enum: []any{"pending", "approved", "rejected"}},
				"imageUrl":          {Type: "string", Format: "uri"},
				"defectProbability": {Type: "number"},
				"defectType":        {Type: "string"},
				"inspectionTime":    {Type: "integer", Description: "Milliseconds"},
				"createdAt":         {Type: "string", Format: "date-time"},
				"updatedAt":         {Type: "string", Format: "date-time"},
			},
		},
		"ProductPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"products":   openapi.ArrayOf("Product"),
				"pagination": openapi.SchemaRef("Pagination"),
			},
		},
		"LineStats": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"productionLine":       {Type: "string"},
				"total":                {Type: "integer"},
				"approved":             {Type: "integer"},
				"rejected":             {Type: "integer"},
				"pending":              {Type: "integer"},
				"avgInspectionTime":    {Type: "number"},
				"avgDefectProbability": {Type: "number"},
			},
		},
		"ProductionStats": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"byProductionLine": openapi.ArrayOf("LineStats"),
				"overall": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"total":         {Type: "integer"},
						"approved":      {Type: "integer"},
						"rejected":      {Type: "integer"},
						"pending":       {Type: "integer"},
						"approvalRate":  {Type: "string", Example: "66.67"},
						"rejectionRate": {Type: "string", Example: "33.33"},
					},
				},
			},
		},
	}
}
