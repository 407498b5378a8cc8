package defects

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/pagination"
)

// System defines the public contract for defect operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*ListResult, error)
	Find(ctx context.Context, id uuid.UUID) (*Defect, error)
	Create(ctx context.Context, cmd CreateCommand) (*Defect, error)
	// Resolve marks an unresolved defect as resolved. It is not idempotent:
	// resolving twice fails with ErrAlreadyResolved.
	Resolve(ctx context.Context, id uuid.UUID, cmd ResolveCommand) (*Defect, error)
	// Distribution groups unresolved defects by type, most frequent first.
	Distribution(ctx context.Context) ([]TypeCount, error)
}
