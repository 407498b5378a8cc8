package products

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
	"github.com/JaimeStill/inspector/pkg/validation"
)

var projection = query.
	NewProjectionMap("public", "products", "p").
	Project("id", "ID").
	Project("production_line", "ProductionLine").
	Project("product_name", "ProductName").
	Project("status", "Status").
	Project("image_url", "ImageURL").
	Project("defect_probability", "DefectProbability").
	Project("defect_type", "DefectType").
	Project("inspection_time", "InspectionTime").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

const returning = `id, production_line, product_name, status, image_url,
	defect_probability, defect_type, inspection_time, created_at, updated_at`

var defaultSort = []query.SortField{
	{Field: "CreatedAt", Descending: true},
	{Field: "ID", Descending: true},
}

var statsSelects = []string{
	"p.production_line",
	"COUNT(*)",
	"COUNT(*) FILTER (WHERE p.status = 'approved')",
	"COUNT(*) FILTER (WHERE p.status = 'rejected')",
	"COUNT(*) FILTER (WHERE p.status = 'pending')",
	"COALESCE(AVG(p.inspection_time), 0)::float8",
	"COALESCE(AVG(COALESCE(p.defect_probability, 0)), 0)::float8",
}

// Filters narrows product listings. Nil fields are ignored; set fields
// match exactly and combine with AND.
type Filters struct {
	Line   *string
	Status *string
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ProductionLine", f.Line).
		WhereEquals("Status", f.Status)
}

// ParseListRequest validates page, limit, line and status, in that order,
// before any store access.
func ParseListRequest(values url.Values, cfg pagination.Config) (pagination.PageRequest, Filters, error) {
	page, err := pagination.PageRequestFromQuery(values, cfg)
	if err != nil {
		return page, Filters{}, err
	}

	var f Filters

	if s := values.Get("line"); s != "" {
		if _, err := quality.ParseLine(s); err != nil {
			return page, f, validation.Wrap("line", err)
		}
		f.Line = &s
	}

	if s := values.Get("status"); s != "" {
		if _, err := quality.ParseStatus(s); err != nil {
			return page, f, validation.Wrap("status", err)
		}
		f.Status = &s
	}

	return page, f, nil
}

// StatsFilters narrows the statistics report. DateFrom and DateTo bound
// creation time inclusively.
type StatsFilters struct {
	ProductionLine *string
	DateFrom       *time.Time
	DateTo         *time.Time
}

// Apply adds filter conditions to a query builder.
func (f StatsFilters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ProductionLine", f.ProductionLine).
		WhereRange("CreatedAt", f.DateFrom, f.DateTo)
}

// CacheKey identifies the report for these filters.
func (f StatsFilters) CacheKey() string {
	var sb strings.Builder
	if f.ProductionLine != nil {
		sb.WriteString(*f.ProductionLine)
	}
	for _, t := range []*time.Time{f.DateFrom, f.DateTo} {
		sb.WriteByte('|')
		if t != nil {
			sb.WriteString(t.UTC().Format(time.RFC3339Nano))
		}
	}
	return sb.String()
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

const dateOnly = "2006-01-02"

// ParseStatsFilters validates productionLine, dateFrom and dateTo.
// Dates are RFC 3339 timestamps or YYYY-MM-DD; a date-only dateTo covers
// the whole day.
func ParseStatsFilters(values url.Values) (StatsFilters, error) {
	var f StatsFilters

	if s := values.Get("productionLine"); s != "" {
		if _, err := quality.ParseLine(s); err != nil {
			return f, validation.Wrap("productionLine", err)
		}
		f.ProductionLine = &s
	}

	if s := values.Get("dateFrom"); s != "" {
		t, _, err := parseDate(s)
		if err != nil {
			return f, validation.Field("dateFrom", "dateFrom must be a valid date string")
		}
		f.DateFrom = &t
	}

	if s := values.Get("dateTo"); s != "" {
		t, dayOnly, err := parseDate(s)
		if err != nil {
			return f, validation.Field("dateTo", "dateTo must be a valid date string")
		}
		if dayOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.DateTo = &t
	}

	return f, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateOnly, s); err == nil {
		return t, true, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q", s)
}

func scanProduct(s repository.Scanner) (Product, error) {
	var p Product
	err := s.Scan(
		&p.ID,
		&p.ProductionLine,
		&p.ProductName,
		&p.Status,
		&p.ImageURL,
		&p.DefectProbability,
		&p.DefectType,
		&p.InspectionTime,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func scanLineStats(s repository.Scanner) (LineStats, error) {
	var ls LineStats
	err := s.Scan(
		&ls.ProductionLine,
		&ls.Total,
		&ls.Approved,
		&ls.Rejected,
		&ls.Pending,
		&ls.AvgInspectionTime,
		&ls.AvgDefectProbability,
	)
	return ls, err
}
