package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"datacleaner/pkg/dataprep"
	"datacleaner/pkg/engine"
	"datacleaner/pkg/session"
)

var ErrInvalid = errors.New("invalid config")

// Config holds server and engine settings. Zero values mean "use the default".
type Config struct {
	Listen           string        `yaml:"listen"`
	MaxUploadMB      int64         `yaml:"max_upload_mb"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	MaxSessions      int           `yaml:"max_sessions"`
	RateLimit        float64       `yaml:"rate_limit"`
	Burst            int           `yaml:"burst"`
	CORSOrigins      []string      `yaml:"cors_origins"`
	MissingThreshold float64       `yaml:"missing_threshold"`
	CoerceTolerance  float64       `yaml:"coerce_tolerance"`
	IQRFactor        float64       `yaml:"iqr_factor"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Listen:           ":8080",
		MaxUploadMB:      32,
		SessionTTL:       session.DefaultTTL,
		MaxSessions:      session.DefaultMaxSessions,
		RateLimit:        20,
		Burst:            40,
		CORSOrigins:      []string{"*"},
		MissingThreshold: engine.DefaultMissingThreshold,
		CoerceTolerance:  dataprep.DefaultCoerceTolerance,
		IQRFactor:        engine.DefaultIQRFactor,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects out-of-range settings.
func (c Config) Validate() error {
	switch {
	case c.Listen == "":
		return fmt.Errorf("%w: listen address is empty", ErrInvalid)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalid)
	case c.SessionTTL <= 0:
		return fmt.Errorf("%w: session_ttl must be positive", ErrInvalid)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalid)
	case c.RateLimit < 0 || c.Burst < 0:
		return fmt.Errorf("%w: rate_limit and burst must not be negative", ErrInvalid)
	case c.MissingThreshold < 0 || c.MissingThreshold > 1:
		return fmt.Errorf("%w: missing_threshold must be within [0, 1]", ErrInvalid)
	case c.CoerceTolerance < 0 || c.CoerceTolerance > 1:
		return fmt.Errorf("%w: coerce_tolerance must be within [0, 1]", ErrInvalid)
	case c.IQRFactor <= 0:
		return fmt.Errorf("%w: iqr_factor must be positive", ErrInvalid)
	}
	return nil
}
