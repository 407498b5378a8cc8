package products

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/pagination"
)

// System defines the public contract for product operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*ListResult, error)
	Find(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, cmd CreateCommand) (*Product, error)
	Stats(ctx context.Context, filters StatsFilters) (*Stats, error)
}
