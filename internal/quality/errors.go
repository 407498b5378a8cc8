package quality

import "errors"

// Input errors carry the message returned to clients.
var (
	ErrInvalidLine       = errors.New("Production line must be one of: assembly-1, packaging-2, qc-3")
	ErrInvalidStatus     = errors.New("Status must be one of: pending, approved, rejected")
	ErrInvalidDefectType = errors.New("Defect type must be one of: crack, scratch, dent, deformation, discoloration")
)
