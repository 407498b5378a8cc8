package classifier

import (
	"context"
	"slices"
	"time"
)

// mock returns the same scores for every image after a simulated load delay.
type mock struct {
	scores []Score
	delay  time.Duration
}

func newMock(cfg MockConfig, delay time.Duration) *mock {
	return &mock{scores: slices.Clone(cfg.Scores), delay: delay}
}

func (m *mock) load(ctx context.Context) error {
	if m.delay <= 0 {
		return nil
	}

	t := time.NewTimer(m.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mock) predict(context.Context, []byte) ([]Score, error) {
	return slices.Clone(m.scores), nil
}

func (m *mock) close() error { return nil }
