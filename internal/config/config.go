// Package config loads runtime settings from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the tremor CLI.
type Config struct {
	DBPath string `env:"TREMOR_DB"`

	BufferCap       int     `env:"TREMOR_BUFFER_CAP" envDefault:"1000"`
	NeutralIndex    int     `env:"TREMOR_NEUTRAL_INDEX" envDefault:"45"`
	LiveWindow      int     `env:"TREMOR_LIVE_WINDOW" envDefault:"1000"`
	SmoothingWindow int     `env:"TREMOR_SMOOTHING_WINDOW" envDefault:"5"`
	PeakThreshold   float64 `env:"TREMOR_PEAK_THRESHOLD" envDefault:"0.5"`
	SyncMaxReadings int     `env:"TREMOR_SYNC_MAX_READINGS" envDefault:"500"`
	ChartPoints     int     `env:"TREMOR_CHART_POINTS" envDefault:"500"`

	LogLevel    string `env:"TREMOR_LOG_LEVEL" envDefault:"info"`
	LogUseCases bool   `env:"TREMOR_LOG_USE_CASES" envDefault:"false"`
	MetricsAddr string `env:"TREMOR_METRICS_ADDR"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads .env files (unless disabled), parses the environment, fills
// the default database path, and validates the result.
func Load() (Config, error) {
	if _, err := LoadDotEnv(".env.local", ".env"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".tremor", "tremor.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.BufferCap < 1 {
		result = multierror.Append(result, errors.New("TREMOR_BUFFER_CAP must be at least 1"))
	}
	if c.NeutralIndex < 0 || c.NeutralIndex > analysis.MaxIndex {
		result = multierror.Append(result, errors.New("TREMOR_NEUTRAL_INDEX must be within 0-100"))
	}
	if c.LiveWindow < 1 {
		result = multierror.Append(result, errors.New("TREMOR_LIVE_WINDOW must be at least 1"))
	}
	if c.SmoothingWindow < 1 {
		result = multierror.Append(result, errors.New("TREMOR_SMOOTHING_WINDOW must be at least 1"))
	}
	if c.PeakThreshold <= 0 {
		result = multierror.Append(result, errors.New("TREMOR_PEAK_THRESHOLD must be positive"))
	}
	if c.SyncMaxReadings < 1 {
		result = multierror.Append(result, errors.New("TREMOR_SYNC_MAX_READINGS must be at least 1"))
	}
	if c.ChartPoints < 1 {
		result = multierror.Append(result, errors.New("TREMOR_CHART_POINTS must be at least 1"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AnalysisOptions maps the analysis settings onto analysis.Options.
func (c Config) AnalysisOptions() analysis.Options {
	return analysis.Options{
		SmoothingWindow: c.SmoothingWindow,
		PeakThreshold:   c.PeakThreshold,
		Window:          c.LiveWindow,
	}
}

// ParseLevel accepts debug, info, warn or error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("TREMOR_LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

// LoadDotEnv loads the given files in order. Variables already set in the
// environment win, as do those from earlier files. Missing files are
// skipped. It returns the files that were loaded.
func LoadDotEnv(paths ...string) ([]string, error) {
	if IsDotEnvDisabled() {
		return nil, nil
	}
	var loaded []string
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("loading %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// IsDotEnvDisabled reports whether TREMOR_DOTENV turns .env loading off.
func IsDotEnvDisabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TREMOR_DOTENV"))) {
	case "0", "false", "off", "no":
		return true
	default:
		return false
	}
}
