// Package defects implements the Defect record store: flaws found on rejected
// products, their resolution workflow and the open-defect distribution.
package defects

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/validation"
)

// ProductSummary is the read-only view of a defect's parent product.
type ProductSummary struct {
	ProductName    string         `json:"productName"`
	ProductionLine quality.Line   `json:"productionLine"`
	Status         quality.Status `json:"status"`
}

// Defect is a flaw recorded against a rejected product. It is immutable
// except for a single false to true transition of Resolved.
type Defect struct {
	ID             uuid.UUID          `json:"id"`
	ProductID      uuid.UUID          `json:"productId"`
	Product        *ProductSummary    `json:"product"`
	DefectType     quality.DefectType `json:"defectType"`
	Probability    float64            `json:"probability"`
	ImageURL       string             `json:"imageUrl"`
	ProductionLine quality.Line       `json:"productionLine"`
	Resolved       bool               `json:"resolved"`
	ResolvedAt     *time.Time         `json:"resolvedAt,omitempty"`
	ResolvedBy     *string            `json:"resolvedBy,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// CreateCommand carries the fields of a new Defect. ImageURL and
// ProductionLine must match the parent product.
type CreateCommand struct {
	ProductID      uuid.UUID          `json:"productId" validate:"required"`
	DefectType     quality.DefectType `json:"defectType" validate:"required,oneof=crack scratch dent deformation discoloration"`
	Probability    float64            `json:"probability" validate:"gte=0,lte=1"`
	ImageURL       string             `json:"imageUrl" validate:"required,http_url"`
	ProductionLine quality.Line       `json:"productionLine" validate:"required,oneof=assembly-1 packaging-2 qc-3"`
}

// ResolveCommand is the body of a resolve request.
type ResolveCommand struct {
	ResolvedBy *string `json:"resolvedBy,omitempty"`
}

// Normalize trims ResolvedBy. A supplied but blank value is invalid.
func (c *ResolveCommand) Normalize() error {
	if c.ResolvedBy == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*c.ResolvedBy)
	if trimmed == "" {
		return validation.Wrap("resolvedBy", ErrInvalidResolver)
	}
	c.ResolvedBy = &trimmed
	return nil
}

// ResolveResponse is the body returned after a successful resolve.
type ResolveResponse struct {
	Message string  `json:"message"`
	Defect  *Defect `json:"defect"`
}

// ListResult is a page of defects with its pagination envelope.
type ListResult struct {
	Defects    []Defect              `json:"defects"`
	Pagination pagination.Pagination `json:"pagination"`
}

// TypeCount is one row of the unresolved-defect distribution.
type TypeCount struct {
	DefectType     quality.DefectType `json:"defectType"`
	Count          int                `json:"count"`
	AvgProbability float64            `json:"avgProbability"`
}
