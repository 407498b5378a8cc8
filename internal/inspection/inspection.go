// Package inspection runs the inspection pipeline: upload the image,
// classify it, decide the status, persist the product and, for rejected
// items with a concrete defect, the defect record.
//
// The pipeline is at-most-once. An image uploaded before a classification
// failure is left in the store, and a product persisted before a failed
// defect write is kept and reported as a partial success.
package inspection

import (
	"mime"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/classifier"
	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/validation"
)

// DefaultMaxImageSize is the default and largest upload limit; the classifier
// rejects anything bigger.
const DefaultMaxImageSize = classifier.MaxImageSize

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Command is one inspection request.
type Command struct {
	Image       []byte
	ContentType string
	Filename    string
	Line        string
}

// Validate checks, in order: image present, line present, line known,
// content type allowed, image within maxSize.
func (c Command) Validate(maxSize int64) error {
	if len(c.Image) == 0 {
		return validation.Wrap("image", ErrNoImage)
	}
	if c.Line == "" {
		return validation.Wrap("lineId", ErrMissingLine)
	}
	if _, err := quality.ParseLine(c.Line); err != nil {
		return validation.Wrap("lineId", err)
	}
	if _, ok := extensions[mediaType(c.ContentType)]; !ok {
		return validation.Wrap("image", ErrInvalidType)
	}
	if int64(len(c.Image)) > maxSize {
		return validation.Wrap("image", sizeLimitError{maxSize})
	}
	return nil
}

// StorageKey returns inspections/<line>/<id><ext>.
func (c Command) StorageKey(id uuid.UUID) string {
	return "inspections/" + c.Line + "/" + id.String() + extensions[mediaType(c.ContentType)]
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mt
}

// Debug exposes raw classifier output in development.
type Debug struct {
	AllPredictions []classifier.Score `json:"allPredictions"`
	Threshold      float64            `json:"threshold"`
}

// Result is the outcome of one inspection run. DefectType is null when no
// defect was detected; DefectID is present only when a Defect was created.
// Partial marks a persisted product whose defect record could not be written.
type Result struct {
	Success        bool                `json:"success"`
	ProductID      uuid.UUID           `json:"productId"`
	Status         quality.Status      `json:"status"`
	DefectType     *quality.DefectType `json:"defectType"`
	Probability    float64             `json:"probability"`
	Confidence     float64             `json:"confidence"`
	ImageURL       string              `json:"imageUrl"`
	InspectionTime int64               `json:"inspectionTime"`
	ProductName    string              `json:"productName"`
	ProductionLine quality.Line        `json:"productionLine"`
	Timestamp      time.Time           `json:"timestamp"`
	DefectID       *uuid.UUID          `json:"defectId,omitempty"`
	Partial        bool                `json:"partial,omitempty"`
	Warning        string              `json:"warning,omitempty"`
	Debug          *Debug              `json:"debug,omitempty"`
}
