// Package classifier is the defect classification capability. A System owns
// its model's lifecycle: the model is loaded by a startup hook and the loaded
// state lives on the System, so callers see ErrNotLoaded until loading succeeds.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/lifecycle"
)

// MaxImageSize is the largest image a classifier accepts.
const MaxImageSize = 10 << 20

// normalClass is the label models use for a defect-free item.
const normalClass = "normal"

// Score is a single class probability reported by a model.
type Score struct {
	Type        string  `json:"type" toml:"type"`
	Probability float64 `json:"probability" toml:"probability"`
}

// Prediction is the interpreted outcome of classifying one image.
// Confidence is a percentage in [0, 100].
type Prediction struct {
	DefectType  quality.DefectType `json:"defectType"`
	Probability float64            `json:"probability"`
	Confidence  float64            `json:"confidence"`
	Scores      []Score            `json:"allPredictions"`
	Threshold   float64            `json:"threshold"`
}

// Status reports the model lifecycle state.
type Status struct {
	Provider string     `json:"provider"`
	Loaded   bool       `json:"loaded"`
	LoadedAt *time.Time `json:"loadedAt,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// System classifies images for defects.
type System interface {
	// Start registers model loading and release with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Classify returns the interpreted prediction for image.
	// It fails with ErrNotLoaded until the model has loaded.
	Classify(ctx context.Context, image []byte) (*Prediction, error)
	// Status reports whether the model is loaded.
	Status() Status
}

// model is a provider-specific inference backend.
type model interface {
	load(ctx context.Context) error
	predict(ctx context.Context, image []byte) ([]Score, error)
	close() error
}

// New creates the classifier selected by cfg.Provider. The model is not
// loaded until Start's startup hook runs.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "classifier", "provider", cfg.Provider)

	var m model
	switch cfg.Provider {
	case ProviderMock:
		m = newMock(cfg.Mock, cfg.LoadDelayDuration())
	case ProviderVision:
		m = newVision(cfg.Vision)
	case ProviderOpenCV:
		m = newOpenCV(cfg.OpenCV)
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}

	return newClassifier(cfg.Provider, m, cfg.LoadTimeoutDuration(), logger), nil
}

type classifier struct {
	provider    string
	model       model
	loadTimeout time.Duration
	logger      *slog.Logger

	mu       sync.RWMutex
	loaded   bool
	loadedAt time.Time
	loadErr  error
}

func newClassifier(provider string, m model, loadTimeout time.Duration, logger *slog.Logger) *classifier {
	return &classifier{
		provider:    provider,
		model:       m,
		loadTimeout: loadTimeout,
		logger:      logger,
	}
}

func (c *classifier) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("loading classifier model")

	lc.OnStartup("classifier", func(ctx context.Context) error {
		return c.load(ctx)
	})

	lc.OnShutdown("classifier", func(context.Context) error {
		c.mu.Lock()
		c.loaded = false
		c.mu.Unlock()
		return c.model.close()
	})

	return nil
}

func (c *classifier) load(ctx context.Context) error {
	if c.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.loadTimeout)
		defer cancel()
	}

	err := c.model.load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.loadErr = err
		c.logger.Error("classifier model failed to load", "error", err)
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	c.loaded = true
	c.loadedAt = time.Now().UTC()
	c.loadErr = nil
	c.logger.Info("classifier model loaded")
	return nil
}

func (c *classifier) Classify(ctx context.Context, image []byte) (*Prediction, error) {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()

	if !loaded {
		return nil, ErrNotLoaded
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if len(image) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	scores, err := c.model.predict(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}

	p := Interpret(scores)
	c.logger.Debug(
		"classification complete",
		"defect_type", p.DefectType,
		"probability", p.Probability,
		"confidence", p.Confidence,
	)
	return &p, nil
}

func (c *classifier) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{Provider: c.provider, Loaded: c.loaded}
	if c.loaded {
		at := c.loadedAt
		s.LoadedAt = &at
	}
	if c.loadErr != nil {
		s.Error = c.loadErr.Error()
	}
	return s
}

// Interpret turns raw class scores into a Prediction.
//
// The highest persistable defect score at or above the rejection threshold
// wins. Otherwise the label is none, with probability 0 when the normal class
// scores at least 0.8 and 0.3 when the model is uncertain. Confidence is the
// winning class's probability as a percentage, or 30 when uncertain.
func Interpret(scores []Score) Prediction {
	var (
		detected    quality.DefectType
		maxDefect   float64
		normalScore float64
		hasNormal   bool
	)

	for _, s := range scores {
		label := strings.ToLower(s.Type)
		if label == normalClass {
			if !hasNormal || s.Probability > normalScore {
				normalScore = s.Probability
			}
			hasNormal = true
			continue
		}

		dt := quality.DefectType(label)
		if dt.Persistable() && s.Probability >= quality.RejectionThreshold && s.Probability > maxDefect {
			maxDefect = s.Probability
			detected = dt
		}
	}

	all := make([]Score, len(scores))
	for i, s := range scores {
		all[i] = Score{Type: s.Type, Probability: quality.Round2(s.Probability)}
	}

	p := Prediction{
		Scores:    all,
		Threshold: quality.RejectionThreshold,
	}

	isNormal := hasNormal && normalScore >= 0.8

	switch {
	case detected != "":
		p.DefectType = detected
		p.Probability = maxDefect
		p.Confidence = min(maxDefect*100, 100)
	case isNormal:
		p.DefectType = quality.DefectNone
		p.Probability = 0
		p.Confidence = min(normalScore*100, 100)
	default:
		p.DefectType = quality.DefectNone
		p.Probability = 0.3
		p.Confidence = 30
	}

	return p
}
