package api

import (
	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/inspection"
	"github.com/JaimeStill/inspector/internal/products"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Products   products.System
	Defects    defects.System
	Inspection inspection.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	productsSystem := products.New(
		runtime.Database.Connection(),
		runtime.Cache,
		runtime.Logger,
		runtime.Pagination,
	)

	defectsSystem := defects.New(
		runtime.Database.Connection(),
		runtime.Cache,
		runtime.Logger,
		runtime.Pagination,
	)

	inspectionSystem := inspection.New(inspection.Deps{
		Storage:    runtime.Storage,
		Classifier: runtime.Classifier,
		Products:   productsSystem,
		Defects:    defectsSystem,
		Tracer:     runtime.Tracing.Tracer("inspection"),
		Logger:     runtime.Logger,
	}, runtime.MaxUploadSize)

	return &Domain{
		Products:   productsSystem,
		Defects:    defectsSystem,
		Inspection: inspectionSystem,
	}
}
