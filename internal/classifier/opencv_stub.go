//go:build !gocv

package classifier

import "context"

// opencv is unavailable without the gocv build tag; loading always fails.
type opencv struct{}

func newOpenCV(OpenCVConfig) *opencv { return &opencv{} }

func (*opencv) load(context.Context) error { return ErrUnavailable }

func (*opencv) predict(context.Context, []byte) ([]Score, error) { return nil, ErrUnavailable }

func (*opencv) close() error { return nil }
