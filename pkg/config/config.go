// Package config holds the YAML configuration surface of the neuroband
// tools: logging, connection timeouts and session tuning.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/srg/neuroband/pkg/band"
)

// Duration wraps time.Duration so YAML scalars like "30s" parse directly.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config is the root configuration document.
type Config struct {
	// LogLevel is any level name logrus accepts.
	LogLevel string `yaml:"log_level" default:"info"`

	// ConnectTimeout bounds device discovery and connection.
	ConnectTimeout Duration `yaml:"connect_timeout"`

	// DetectTimeout bounds the wait for hardware-variant detection.
	DetectTimeout Duration `yaml:"detect_timeout"`

	// BufferCapacity is the per-channel sample buffer capacity.
	BufferCapacity int `yaml:"buffer_capacity" default:"256"`

	// QueueSize is the notification queue capacity.
	QueueSize int `yaml:"queue_size" default:"256"`

	// MockDataset, when set, replays the CSV recording at this path
	// instead of connecting to hardware.
	MockDataset string `yaml:"mock_dataset"`
}

// Default returns a config with every field at its default.
func Default() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	cfg.ConnectTimeout = Duration{30 * time.Second}
	cfg.DetectTimeout = Duration{band.DefaultDetectTimeout}
	return cfg
}

// Load reads and validates the YAML file at path, layered over the
// defaults. An empty path yields the defaults untouched.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values a session cannot be built from.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.BufferCapacity <= 0 {
		return fmt.Errorf("buffer_capacity must be positive, got %d", c.BufferCapacity)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	if c.ConnectTimeout.Duration <= 0 {
		return fmt.Errorf("connect_timeout must be positive, got %s", c.ConnectTimeout)
	}
	if c.DetectTimeout.Duration <= 0 {
		return fmt.Errorf("detect_timeout must be positive, got %s", c.DetectTimeout)
	}
	return nil
}

// SessionOptions maps the config onto session options.
func (c *Config) SessionOptions() *band.Options {
	return &band.Options{
		DetectTimeout:  c.DetectTimeout.Duration,
		BufferCapacity: c.BufferCapacity,
		QueueSize:      c.QueueSize,
		MockDataset:    c.MockDataset,
	}
}

// NewLogger builds a logger per the configured level.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger, nil
}
