package classifier

import "github.com/JaimeStill/inspector/pkg/openapi"

type spec struct {
	Status *openapi.Operation
}

// Spec holds the OpenAPI operations for classifier routes.
var Spec = spec{
	Status: &openapi.Operation{
		Summary:     "Classifier model status",
		Description: "Reports whether the defect classification model has finished loading.",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Model status", "ClassifierStatus"),
		},
	},
}

// Schemas returns the component schemas referenced by classifier operations.
func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"ClassifierStatus": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"provider":  {Type: "string", Enum: []any{ProviderMock, ProviderVision, ProviderOpenCV}},
				"loaded":    {Type: "boolean"},
				"loadedAt":  {Type: "string", Format: "date-time"},
				"error":     {Type: "string"},
				"timestamp": {Type: "string", Format: "date-time"},
			},
		},
		"Score": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"type":        {Type: "string", Example: "normal"},
				"probability": {Type: "number", Example: 0.95},
			},
		},
	}
}
