package inspection

import (
	"context"

	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/products"
)

// System runs inspections.
type System interface {
	// Handler returns the upload endpoint. verbose includes classifier debug
	// output and unredacted server errors in responses.
	Handler(maxUploadSize int64, verbose bool) *Handler
	// Inspect runs the full pipeline for one image.
	Inspect(ctx context.Context, cmd Command) (*Result, error)
}

// ProductWriter persists products.
type ProductWriter interface {
	Create(ctx context.Context, cmd products.CreateCommand) (*products.Product, error)
}

// DefectWriter persists defects.
type DefectWriter interface {
	Create(ctx context.Context, cmd defects.CreateCommand) (*defects.Defect, error)
}
