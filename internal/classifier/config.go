package classifier

import (
	"fmt"
	"os"
	"time"
)

// Provider names.
const (
	ProviderMock   = "mock"
	ProviderVision = "vision"
	ProviderOpenCV = "opencv"
)

// Config selects and configures the classifier provider.
type Config struct {
	Provider    string       `toml:"provider"`
	LoadTimeout string       `toml:"load_timeout"`
	LoadDelay   string       `toml:"load_delay"`
	Mock        MockConfig   `toml:"mock"`
	Vision      VisionConfig `toml:"vision"`
	OpenCV      OpenCVConfig `toml:"opencv"`
}

// MockConfig holds the fixed scores returned by the mock model.
type MockConfig struct {
	Scores []Score `toml:"scores"`
}

// VisionConfig holds Google Cloud Vision parameters. Without credentials the
// application default credentials are used.
type VisionConfig struct {
	CredentialsFile string `toml:"credentials_file"`
	CredentialsJSON string `toml:"credentials_json"`
	MaxResults      int32  `toml:"max_results"`
}

// OpenCVConfig tunes the contour heuristic. MinAreaRatio is the smallest
// contour bounding box, relative to the image, that counts as a flaw.
// Sensitivity scales flaw coverage into a probability.
type OpenCVConfig struct {
	MinAreaRatio  float64 `toml:"min_area_ratio"`
	MaxSide       int     `toml:"max_side"`
	ScratchAspect float64 `toml:"scratch_aspect"`
	Sensitivity   float64 `toml:"sensitivity"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider              string
	LoadTimeout           string
	LoadDelay             string
	VisionCredentialsFile string
	VisionCredentialsJSON string
}

// DefaultMockScores mirrors a confidently normal item.
func DefaultMockScores() []Score {
	return []Score{
		{Type: "normal", Probability: 0.95},
		{Type: "crack", Probability: 0.03},
		{Type: "scratch", Probability: 0.02},
	}
}

// LoadTimeoutDuration returns LoadTimeout as a time.Duration.
func (c *Config) LoadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.LoadTimeout)
	return d
}

// LoadDelayDuration returns LoadDelay as a time.Duration.
func (c *Config) LoadDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.LoadDelay)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.LoadTimeout != "" {
		c.LoadTimeout = overlay.LoadTimeout
	}
	if overlay.LoadDelay != "" {
		c.LoadDelay = overlay.LoadDelay
	}
	if len(overlay.Mock.Scores) > 0 {
		c.Mock.Scores = overlay.Mock.Scores
	}
	if overlay.Vision.CredentialsFile != "" {
		c.Vision.CredentialsFile = overlay.Vision.CredentialsFile
	}
	if overlay.Vision.CredentialsJSON != "" {
		c.Vision.CredentialsJSON = overlay.Vision.CredentialsJSON
	}
	if overlay.Vision.MaxResults != 0 {
		c.Vision.MaxResults = overlay.Vision.MaxResults
	}
	if overlay.OpenCV.MinAreaRatio != 0 {
		c.OpenCV.MinAreaRatio = overlay.OpenCV.MinAreaRatio
	}
	if overlay.OpenCV.MaxSide != 0 {
		c.OpenCV.MaxSide = overlay.OpenCV.MaxSide
	}
	if overlay.OpenCV.ScratchAspect != 0 {
		c.OpenCV.ScratchAspect = overlay.OpenCV.ScratchAspect
	}
	if overlay.OpenCV.Sensitivity != 0 {
		c.OpenCV.Sensitivity = overlay.OpenCV.Sensitivity
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderMock
	}
	if c.LoadTimeout == "" {
		c.LoadTimeout = "30s"
	}
	if c.LoadDelay == "" {
		c.LoadDelay = "1s"
	}
	if len(c.Mock.Scores) == 0 {
		c.Mock.Scores = DefaultMockScores()
	}
	if c.Vision.MaxResults == 0 {
		c.Vision.MaxResults = 20
	}
	if c.OpenCV.MinAreaRatio == 0 {
		c.OpenCV.MinAreaRatio = 0.001
	}
	if c.OpenCV.MaxSide == 0 {
		c.OpenCV.MaxSide = 1024
	}
	if c.OpenCV.ScratchAspect == 0 {
		c.OpenCV.ScratchAspect = 4
	}
	if c.OpenCV.Sensitivity == 0 {
		c.OpenCV.Sensitivity = 10
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(dst *string, key string) {
		if key == "" {
			return
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Provider, env.Provider)
	set(&c.LoadTimeout, env.LoadTimeout)
	set(&c.LoadDelay, env.LoadDelay)
	set(&c.Vision.CredentialsFile, env.VisionCredentialsFile)
	set(&c.Vision.CredentialsJSON, env.VisionCredentialsJSON)
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderMock, ProviderVision, ProviderOpenCV:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if _, err := time.ParseDuration(c.LoadTimeout); err != nil {
		return fmt.Errorf("invalid load_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.LoadDelay); err != nil {
		return fmt.Errorf("invalid load_delay: %w", err)
	}
	for _, s := range c.Mock.Scores {
		if s.Probability < 0 || s.Probability > 1 {
			return fmt.Errorf("mock score %q out of range [0, 1]", s.Type)
		}
	}
	if c.OpenCV.MinAreaRatio <= 0 || c.OpenCV.MinAreaRatio >= 1 {
		return fmt.Errorf("opencv.min_area_ratio must be within (0, 1)")
	}
	return nil
}
