// Package config holds the runtime configuration for mcat. A Config is built
// once at startup from flags, environment (MCAT_*) and an optional YAML file,
// then passed explicitly to the components that need it.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/franz/music-catalog/internal/util"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration
type Config struct {
	RawPath        string   `mapstructure:"raw"`
	SnapshotPath   string   `mapstructure:"snapshot"`
	DBPath         string   `mapstructure:"db"`
	ArtifactsDir   string   `mapstructure:"artifacts"`
	OutputDir      string   `mapstructure:"output"`
	Encodings      []string `mapstructure:"encodings"`
	AtomicSnapshot bool     `mapstructure:"atomic-snapshot"`
	OutlierK       float64  `mapstructure:"outlier-k"`
	SearchLimit    int      `mapstructure:"search-limit"`
	Verbose        bool     `mapstructure:"verbose"`
	Quiet          bool     `mapstructure:"quiet"`
	Color          bool     `mapstructure:"color"`
	EventLevel     string   `mapstructure:"event-level"`
}

// Default values, mirroring the conventional data/ and output/ layout
var defaults = map[string]interface{}{
	"raw":             filepath.Join("data", "raw", "spotify_data.csv"),
	"snapshot":        filepath.Join("data", "processed", "spotify_data_clean.csv"),
	"db":              "mcat-state.db",
	"artifacts":       "artifacts",
	"output":          "output",
	"encodings":       []string{"utf-8", "latin-1", "cp1252"},
	"atomic-snapshot": true,
	"outlier-k":       3.0,
	"search-limit":    10,
	"verbose":         false,
	"quiet":           false,
	"color":           true,
	"event-level":     "info",
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
}

// Load resolves a Config from v and validates it
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	cfg, err := Load(viper.New())
	if err != nil {
		// Defaults are static; failing here is a programming error
		panic(err)
	}
	return cfg
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RawPath) == "" {
		return fmt.Errorf("%w: raw data path is empty", util.ErrInvalidConfig)
	}
	if strings.TrimSpace(c.SnapshotPath) == "" {
		return fmt.Errorf("%w: snapshot path is empty", util.ErrInvalidConfig)
	}
	if len(c.Encodings) == 0 {
		return fmt.Errorf("%w: at least one encoding is required", util.ErrInvalidConfig)
	}
	if c.OutlierK <= 0 {
		return fmt.Errorf("%w: outlier-k must be positive, got %v", util.ErrInvalidConfig, c.OutlierK)
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("%w: search-limit must be positive, got %d", util.ErrInvalidConfig, c.SearchLimit)
	}
	switch strings.ToLower(c.EventLevel) {
	case "debug", "info", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown event-level %q", util.ErrInvalidConfig, c.EventLevel)
	}
	return nil
}

// ChartsDir is where chart datasets are written
func (c *Config) ChartsDir() string {
	return filepath.Join(c.OutputDir, "charts")
}

// ReportsDir is where Markdown reports are written
func (c *Config) ReportsDir() string {
	return filepath.Join(c.ArtifactsDir, "reports")
}

// LogConfig derives logger settings
func (c *Config) LogConfig() util.LogConfig {
	return util.LogConfig{
		Verbose: c.Verbose,
		Quiet:   c.Quiet,
		Colors:  c.Color,
	}
}
