package inspection

import "github.com/JaimeStill/inspector/pkg/openapi"

type spec struct {
	Inspect *openapi.Operation
}

// Spec holds the OpenAPI operations for inspection routes.
var Spec = spec{
	Inspect: &openapi.Operation{
		Summary: "Inspect product image",
		Description: "Uploads an image, classifies it, and records the product. " +
			"Rejected items with a concrete defect also get a defect record. " +
			"If that record cannot be written the product is kept and the response is marked partial.",
		RequestBody: &openapi.RequestBody{
			Required: true,
			Content: map[string]*openapi.MediaType{
				"multipart/form-data": {Schema: openapi.SchemaRef("InspectionForm")},
			},
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Inspection result", "InspectionResult"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
}

// Schemas returns the component schemas referenced by inspection operations.
func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"InspectionForm": {
			Type:     "object",
			Required: []string{"image", "lineId"},
			Properties: map[string]*openapi.Schema{
				"image":  {Type: "string", Format: "binary", Description: "JPEG, PNG or WebP, at most 10MB"},
				"lineId": {Type: "string", Enum: []any{"assembly-1", "packaging-2", "qc-3"}},
			},
		},
		"InspectionResult": {
			Type: "object",
			Required: []string{
				"success", "productId", "status", "defectType", "probability",
				"confidence", "imageUrl", "inspectionTime", "productName", "productionLine", "timestamp",
			},
			Properties: map[string]*openapi.Schema{
				"success":        {Type: "boolean"},
				"productId":      {Type: "string", Format: "uuid"},
				"status":         {Type: "string", Enum: []any{"approved", "rejected"}},
				"defectType":     {Type: "string", Description: "Null when no defect was detected"},
				"probability":    {Type: "number", Example: 0.82},
				"confidence":     {Type: "number", Example: 82},
				"imageUrl":       {Type: "string", Format: "uri"},
				"inspectionTime": {Type: "integer", Description: "Milliseconds"},
				"productName":    {Type: "string"},
				"productionLine": {Type: "string"},
				"timestamp":      {Type: "string", Format: "date-time"},
				"defectId":       {Type: "string", Format: "uuid"},
				"partial":        {Type: "boolean"},
				"warning":        {Type: "string"},
				"debug": {
					Type:        "object",
					Description: "Development only",
					Properties: map[string]*openapi.Schema{
						"allPredictions": openapi.ArrayOf("Score"),
						"threshold":      {Type: "number"},
					},
				},
			},
		},
	}
}
