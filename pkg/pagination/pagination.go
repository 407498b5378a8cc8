package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/inspector/pkg/validation"
)

// PageRequest is a validated 1-indexed page and page size.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the number of records to skip.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// PageRequestFromQuery reads page and limit from URL query values.
// Absent values take defaults (page 1, cfg.DefaultLimit). Present values
// are never clamped: a non-integer or out-of-range page or limit is a
// *validation.Error naming the parameter.
func PageRequestFromQuery(values url.Values, cfg Config) (PageRequest, error) {
	req := PageRequest{Page: 1, Limit: cfg.DefaultLimit}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > cfg.MaxLimit {
			return PageRequest{}, validation.Field(
				"limit",
				fmt.Sprintf("Limit must be a number between 1 and %d", cfg.MaxLimit),
			)
		}
		req.Limit = n
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return PageRequest{}, validation.Field("page", "Page must be a positive number")
		}
		req.Page = n
	}

	return req, nil
}

// Pagination is the envelope describing a returned page.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// New builds the envelope for req with totalPages = ceil(total/limit).
func New(total int, req PageRequest) Pagination {
	totalPages := 0
	if req.Limit > 0 {
		totalPages = (total + req.Limit - 1) / req.Limit
	}
	return Pagination{
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}
}
