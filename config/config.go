// Package config holds the settings shared by the tickerdex database facade
// and the command line tools. A Config can be built in code with functional
// options or loaded from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSearchLimit        = 10
	DefaultAdvancedLimit      = 10
	DefaultReferenceCacheSize = 4096
	DefaultBatchSize          = 500
	DefaultPoolSize           = 4
	DefaultMaxRetries         = 3
	DefaultRetryDelay         = 100 * time.Millisecond
	DefaultReportInterval     = 1000

	// MaxConfigFileSize bounds the YAML files Load will read.
	MaxConfigFileSize = 1 << 20
)

// Config is the top level tickerdex configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Ingestion IngestionConfig `yaml:"ingestion"`
}

// DatabaseConfig locates the BadgerDB catalog.
type DatabaseConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string `yaml:"path"`

	// InMemory opens a throwaway catalog that lives for the process only.
	InMemory bool `yaml:"in_memory"`
}

// SearchConfig holds the limits used when callers pass a zero limit.
type SearchConfig struct {
	DefaultLimit         int `yaml:"default_limit"`
	AdvancedDefaultLimit int `yaml:"advanced_default_limit"`

	// ReferenceCacheSize is the number of reference entries kept in memory.
	ReferenceCacheSize int `yaml:"reference_cache_size"`
}

// IngestionConfig tunes bulk loads.
type IngestionConfig struct {
	BatchSize      int           `yaml:"batch_size"`
	PoolSize       int           `yaml:"pool_size"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	ReportInterval int           `yaml:"report_interval"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDatabasePath sets the on-disk catalog location.
func WithDatabasePath(path string) ConfigOption {
	return func(c *Config) {
		c.Database.Path = path
	}
}

// WithInMemory toggles the in-memory catalog.
func WithInMemory(inMemory bool) ConfigOption {
	return func(c *Config) {
		c.Database.InMemory = inMemory
	}
}

// WithSearchLimits sets the default text and advanced search limits.
func WithSearchLimits(text, advanced int) ConfigOption {
	return func(c *Config) {
		c.Search.DefaultLimit = text
		c.Search.AdvancedDefaultLimit = advanced
	}
}

// WithReferenceCacheSize sets the reference cache capacity.
func WithReferenceCacheSize(n int) ConfigOption {
	return func(c *Config) {
		c.Search.ReferenceCacheSize = n
	}
}

// WithBatchSize sets the ingestion batch size.
func WithBatchSize(n int) ConfigOption {
	return func(c *Config) {
		c.Ingestion.BatchSize = n
	}
}

// WithPoolSize sets the number of concurrent batch writers.
func WithPoolSize(n int) ConfigOption {
	return func(c *Config) {
		c.Ingestion.PoolSize = n
	}
}

// WithRetry sets the retry budget for transient storage errors.
func WithRetry(maxRetries int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.Ingestion.MaxRetries = maxRetries
		c.Ingestion.RetryDelay = delay
	}
}

// WithReportInterval sets how often ingestion progress is printed.
func WithReportInterval(n int) ConfigOption {
	return func(c *Config) {
		c.Ingestion.ReportInterval = n
	}
}

// DefaultConfig returns a Config with defaults suitable for a local catalog.
// The database location is left empty.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			DefaultLimit:         DefaultSearchLimit,
			AdvancedDefaultLimit: DefaultAdvancedLimit,
			ReferenceCacheSize:   DefaultReferenceCacheSize,
		},
		Ingestion: IngestionConfig{
			BatchSize:      DefaultBatchSize,
			PoolSize:       DefaultPoolSize,
			MaxRetries:     DefaultMaxRetries,
			RetryDelay:     DefaultRetryDelay,
			ReportInterval: DefaultReportInterval,
		},
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//		WithDatabasePath("/var/lib/tickerdex"),
//		WithBatchSize(1000),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize fills zero values with defaults and tidies the database path.
func (c *Config) Normalize() {
	c.Database.Path = strings.TrimSpace(c.Database.Path)

	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = DefaultSearchLimit
	}
	if c.Search.AdvancedDefaultLimit <= 0 {
		c.Search.AdvancedDefaultLimit = DefaultAdvancedLimit
	}
	if c.Search.ReferenceCacheSize <= 0 {
		c.Search.ReferenceCacheSize = DefaultReferenceCacheSize
	}
	if c.Ingestion.BatchSize <= 0 {
		c.Ingestion.BatchSize = DefaultBatchSize
	}
	if c.Ingestion.PoolSize <= 0 {
		c.Ingestion.PoolSize = DefaultPoolSize
	}
	if c.Ingestion.MaxRetries <= 0 {
		c.Ingestion.MaxRetries = DefaultMaxRetries
	}
	if c.Ingestion.RetryDelay < 0 {
		c.Ingestion.RetryDelay = DefaultRetryDelay
	}
	if c.Ingestion.ReportInterval <= 0 {
		c.Ingestion.ReportInterval = DefaultReportInterval
	}
}

// Validate checks that the configuration is usable.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Database.Path == "" && !c.Database.InMemory {
		return errors.New("tickerdex config: database path is required unless in_memory is set")
	}
	if c.Search.DefaultLimit > 50 {
		return fmt.Errorf("tickerdex config: search.default_limit must be at most 50, got %d", c.Search.DefaultLimit)
	}
	if c.Search.AdvancedDefaultLimit > 100 {
		return fmt.Errorf("tickerdex config: search.advanced_default_limit must be at most 100, got %d", c.Search.AdvancedDefaultLimit)
	}
	return nil
}

// Parse decodes YAML configuration data. Missing fields take their defaults.
// The result is not validated so callers can layer flag overrides first.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxConfigFileSize {
		return nil, fmt.Errorf("tickerdex config: YAML data exceeds maximum size (%d > %d)", len(data), MaxConfigFileSize)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("tickerdex config: parsing YAML: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tickerdex config: %w", err)
	}
	return Parse(data)
}
