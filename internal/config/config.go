// Package config loads the server's tuning defaults.
//
// Values are layered: built-in defaults, then an optional YAML file, then a
// .env file in the working directory, then OCRLITE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/ocrlite-mcp/internal/pipeline"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "OCRLITE_"

// Config holds server configuration.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Padding is the white border added around an image before detection.
	Padding int `yaml:"padding"`

	// MaxSideLen caps the longer side of the detector input.
	MaxSideLen int `yaml:"max_side_len"`

	// Detection thresholds
	BoxScoreThresh float64 `yaml:"box_score_thresh"`
	BoxThresh      float64 `yaml:"box_thresh"`
	UnClipRatio    float64 `yaml:"unclip_ratio"`

	// Orientation correction
	DoAngle   bool `yaml:"do_angle"`
	MostAngle bool `yaml:"most_angle"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := pipeline.DefaultParams()
	return &Config{
		LogLevel:       "info",
		Padding:        50,
		MaxSideLen:     1024,
		BoxScoreThresh: p.BoxScoreThresh,
		BoxThresh:      p.BoxThresh,
		UnClipRatio:    p.UnClipRatio,
		DoAngle:        p.DoAngle,
		MostAngle:      p.MostAngle,
	}
}

// Load builds a configuration from defaults, the YAML file at path (skipped
// when path is empty), a .env file if present and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PADDING", &c.Padding},
		{"MAX_SIDE_LEN", &c.MaxSideLen},
	}
	for _, e := range ints {
		if v, ok := lookupEnv(e.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s must be an integer, got %q", EnvPrefix, e.key, v)
			}
			*e.dst = n
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"BOX_SCORE_THRESH", &c.BoxScoreThresh},
		{"BOX_THRESH", &c.BoxThresh},
		{"UNCLIP_RATIO", &c.UnClipRatio},
	}
	for _, e := range floats {
		if v, ok := lookupEnv(e.key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s must be a number, got %q", EnvPrefix, e.key, v)
			}
			*e.dst = f
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"DO_ANGLE", &c.DoAngle},
		{"MOST_ANGLE", &c.MostAngle},
	}
	for _, e := range bools {
		if v, ok := lookupEnv(e.key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s must be true or false, got %q", EnvPrefix, e.key, v)
			}
			*e.dst = b
		}
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Padding < 0 {
		return fmt.Errorf("padding must not be negative, got %d", c.Padding)
	}
	if c.MaxSideLen <= 0 {
		return fmt.Errorf("max_side_len must be positive, got %d", c.MaxSideLen)
	}
	for _, t := range []struct {
		name string
		v    float64
	}{
		{"box_score_thresh", c.BoxScoreThresh},
		{"box_thresh", c.BoxThresh},
	} {
		if t.v < 0 || t.v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %g", t.name, t.v)
		}
	}
	if c.UnClipRatio <= 0 {
		return fmt.Errorf("unclip_ratio must be positive, got %g", c.UnClipRatio)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Params returns the detection parameters for one pipeline run.
func (c *Config) Params() pipeline.Params {
	return pipeline.Params{
		BoxScoreThresh: c.BoxScoreThresh,
		BoxThresh:      c.BoxThresh,
		UnClipRatio:    c.UnClipRatio,
		DoAngle:        c.DoAngle,
		MostAngle:      c.MostAngle,
	}
}
