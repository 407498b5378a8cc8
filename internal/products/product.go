// Package products implements the Product record store: inspected items,
// their paginated listing and per-line production statistics.
package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/pagination"
)

// Product is one inspected item. Status and defect fields are fixed at creation.
type Product struct {
	ID                uuid.UUID           `json:"id"`
	ProductionLine    quality.Line        `json:"productionLine"`
	ProductName       string              `json:"productName"`
	Status            quality.Status      `json:"status"`
	ImageURL          string              `json:"imageUrl"`
	DefectProbability *float64            `json:"defectProbability,omitempty"`
	DefectType        *quality.DefectType `json:"defectType,omitempty"`
	InspectionTime    int64               `json:"inspectionTime"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// CreateCommand carries the fields of a new Product. An empty Status is
// stored as pending.
type CreateCommand struct {
	ProductionLine    quality.Line        `json:"productionLine" validate:"required,oneof=assembly-1 packaging-2 qc-3"`
	ProductName       string              `json:"productName" validate:"required,max=100"`
	Status            quality.Status      `json:"status" validate:"required,oneof=pending approved rejected"`
	ImageURL          string              `json:"imageUrl" validate:"required,http_url"`
	DefectProbability *float64            `json:"defectProbability" validate:"omitempty,gte=0,lte=1"`
	DefectType        *quality.DefectType `json:"defectType" validate:"omitempty,oneof=crack scratch dent deformation discoloration none"`
	InspectionTime    int64               `json:"inspectionTime" validate:"gte=0"`
}

// ListResult is a page of products with its pagination envelope.
type ListResult struct {
	Products   []Product             `json:"products"`
	Pagination pagination.Pagination `json:"pagination"`
}

// LineStats aggregates the products of one production line.
// AvgDefectProbability counts products without a probability as 0 and is
// reported with two decimals.
type LineStats struct {
	ProductionLine       quality.Line `json:"productionLine"`
	Total                int          `json:"total"`
	Approved             int          `json:"approved"`
	Rejected             int          `json:"rejected"`
	Pending              int          `json:"pending"`
	AvgInspectionTime    float64      `json:"avgInspectionTime"`
	AvgDefectProbability float64      `json:"avgDefectProbability"`
}

// Overall rolls up every matched line. Rates are percentages of Total with
// two decimals, "0" when Total is 0.
type Overall struct {
	Total         int    `json:"total"`
	Approved      int    `json:"approved"`
	Rejected      int    `json:"rejected"`
	Pending       int    `json:"pending"`
	ApprovalRate  string `json:"approvalRate"`
	RejectionRate string `json:"rejectionRate"`
}

// Stats is the production statistics report.
type Stats struct {
	ByProductionLine []LineStats `json:"byProductionLine"`
	Overall          Overall     `json:"overall"`
}

// NewStats sums per-line rows, already ordered by line, into the overall roll-up.
func NewStats(rows []LineStats) Stats {
	if rows == nil {
		rows = []LineStats{}
	}

	var o Overall
	for i, r := range rows {
		rows[i].AvgDefectProbability = quality.Round2(r.AvgDefectProbability)
		o.Total += r.Total
		o.Approved += r.Approved
		o.Rejected += r.Rejected
		o.Pending += r.Pending
	}
	o.ApprovalRate = quality.Percent(o.Approved, o.Total)
	o.RejectionRate = quality.Percent(o.Rejected, o.Total)

	return Stats{ByProductionLine: rows, Overall: o}
}
