package defects

import (
	"database/sql"
	"net/url"

	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
	"github.com/JaimeStill/inspector/pkg/validation"
)

var projection = query.
	NewProjectionMap("public", "defects", "d").
	Project("id", "ID").
	Project("product_id", "ProductID").
	Project("defect_type", "DefectType").
	Project("probability", "Probability").
	Project("image_url", "ImageURL").
	Project("production_line", "ProductionLine").
	Project("resolved", "Resolved").
	Project("resolved_at", "ResolvedAt").
	Project("resolved_by", "ResolvedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "products", "p", "LEFT JOIN", "p.id = d.product_id").
	Project("product_name", "ProductName").
	Project("production_line", "ProductProductionLine").
	Project("status", "ProductStatus")

var defaultSort = []query.SortField{
	{Field: "CreatedAt", Descending: true},
	{Field: "ID", Descending: true},
}

var distributionSelects = []string{
	"d.defect_type",
	"COUNT(*) AS count",
	"AVG(d.probability)::float8",
}

var distributionSort = []query.SortField{
	{Field: "count", Descending: true},
	{Field: "DefectType"},
}

// Filters narrows defect listings. Nil fields are ignored.
type Filters struct {
	Resolved       *bool
	ProductionLine *string
	DefectType     *string
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Resolved", f.Resolved).
		WhereEquals("ProductionLine", f.ProductionLine).
		WhereEquals("DefectType", f.DefectType)
}

// ParseListRequest validates page, limit, productionLine and defectType.
// resolved defaults to "false"; values other than "true" and "false"
// disable the resolved filter.
func ParseListRequest(values url.Values, cfg pagination.Config) (pagination.PageRequest, Filters, error) {
	page, err := pagination.PageRequestFromQuery(values, cfg)
	if err != nil {
		return page, Filters{}, err
	}

	var f Filters

	resolved := "false"
	if values.Has("resolved") {
		resolved = values.Get("resolved")
	}
	if b, ok := map[string]bool{"true": true, "false": false}[resolved]; ok {
		f.Resolved = &b
	}

	if s := values.Get("productionLine"); s != "" {
		if _, err := quality.ParseLine(s); err != nil {
			return page, f, validation.Wrap("productionLine", err)
		}
		f.ProductionLine = &s
	}

	if s := values.Get("defectType"); s != "" {
		if _, err := quality.ParseDefectType(s); err != nil {
			return page, f, validation.Wrap("defectType", err)
		}
		f.DefectType = &s
	}

	return page, f, nil
}

func scanDefect(s repository.Scanner) (Defect, error) {
	var (
		d           Defect
		productName sql.NullString
		productLine sql.NullString
		status      sql.NullString
	)

	err := s.Scan(
		&d.ID,
		&d.ProductID,
		&d.DefectType,
		&d.Probability,
		&d.ImageURL,
		&d.ProductionLine,
		&d.Resolved,
		&d.ResolvedAt,
		&d.ResolvedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
		&productName,
		&productLine,
		&status,
	)
	if err != nil {
		return d, err
	}

	if productName.Valid {
		d.Product = &ProductSummary{
			ProductName:    productName.String,
			ProductionLine: quality.Line(productLine.String),
			Status:         quality.Status(status.String),
		}
	}
	return d, nil
}

func scanTypeCount(s repository.Scanner) (TypeCount, error) {
	var tc TypeCount
	err := s.Scan(&tc.DefectType, &tc.Count, &tc.AvgProbability)
	return tc, err
}
