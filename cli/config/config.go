package config

import (
	"fmt"
	"time"
)

// DefaultPort is the listening port when neither flag, env, nor file sets one.
const DefaultPort = 8080

// Config represents a pensiond.yaml configuration file.
// All values are optional and act as defaults for pensiond serve flags.
// Precedence: CLI flags > environment variables > config file > defaults.
type Config struct {
	Port           int                  `yaml:"port"`
	SchemeRegistry SchemeRegistryConfig `yaml:"scheme_registry"`
	RateCache      RateCacheConfig      `yaml:"rate_cache"`
}

// SchemeRegistryConfig holds scheme registry defaults from the config file.
type SchemeRegistryConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// RateCacheConfig holds accrual-rate cache defaults from the config file.
type RateCacheConfig struct {
	RedisURL string   `yaml:"redis_url"`
	TTL      Duration `yaml:"ttl"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "2s", "15m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "2s" or "15m".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks config values for internal consistency.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.SchemeRegistry.Timeout.Duration < 0 {
		return fmt.Errorf("scheme_registry.timeout must not be negative")
	}
	if c.RateCache.TTL.Duration < 0 {
		return fmt.Errorf("rate_cache.ttl must not be negative")
	}
	return nil
}
