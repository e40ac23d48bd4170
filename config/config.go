// Package config holds the runtime configuration of a modkit host.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	DefaultPatternCacheSize = 1024
)

type Config struct {
	Log       Log       `yaml:"log"`
	Policy    Policy    `yaml:"policy"`
	Namespace Namespace `yaml:"namespace"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

type Policy struct {
	PatternCacheSize int `yaml:"pattern_cache_size"` // default: 1024
}

type Namespace struct {
	// SuppressBootstrapProbe makes the first lookup of a namespace answer the
	// host loader's bootstrap probe with a quiet miss. Default: true.
	SuppressBootstrapProbe *bool `yaml:"suppress_bootstrap_probe"`
}

// Default returns the configuration used when nothing is provided.
func Default() Config {
	return Config{}.Normalize()
}

// Normalize fills unset or out-of-range fields with defaults.
func (c Config) Normalize() Config {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Policy.PatternCacheSize <= 0 {
		c.Policy.PatternCacheSize = DefaultPatternCacheSize
	}
	if c.Namespace.SuppressBootstrapProbe == nil {
		enabled := true
		c.Namespace.SuppressBootstrapProbe = &enabled
	}
	return c
}

// BootstrapProbeSuppressed reports the effective SuppressBootstrapProbe value.
func (c Config) BootstrapProbeSuppressed() bool {
	return c.Namespace.SuppressBootstrapProbe == nil || *c.Namespace.SuppressBootstrapProbe
}

// Validate rejects values Normalize cannot repair.
func (c Config) Validate() error {
	if c.Policy.PatternCacheSize > 0 && uint64(c.Policy.PatternCacheSize) > math.MaxUint32 {
		return fmt.Errorf("config: %s: %d exceeds %d", ConfigPolicyPatternCacheSize, c.Policy.PatternCacheSize, uint64(math.MaxUint32))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: %s: unknown level %q", ConfigLogLevel, c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: %s: unknown format %q", ConfigLogFormat, c.Log.Format)
	}
	return nil
}

// Parse decodes YAML, normalizes and validates the result.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// FromMap builds a configuration from dotted keys such as ConfigLogLevel.
// Unknown keys are ignored; a known key holding the wrong type is an error.
func FromMap(m map[string]any) (Config, error) {
	var c Config
	var err error

	if c.Log.Level, err = lookup[string](m, ConfigLogLevel); err != nil {
		return Config{}, err
	}
	if c.Log.Format, err = lookup[string](m, ConfigLogFormat); err != nil {
		return Config{}, err
	}
	if c.Policy.PatternCacheSize, err = lookup[int](m, ConfigPolicyPatternCacheSize); err != nil {
		return Config{}, err
	}
	if _, ok := m[ConfigNamespaceSuppressBootstrapProbe]; ok {
		enabled, err := lookup[bool](m, ConfigNamespaceSuppressBootstrapProbe)
		if err != nil {
			return Config{}, err
		}
		c.Namespace.SuppressBootstrapProbe = &enabled
	}

	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// lookup returns m[key] asserted to T, or the zero value when key is absent.
func lookup[T any](m map[string]any, key string) (T, error) {
	var zero T

	raw, ok := m[key]
	if !ok {
		return zero, nil
	}

	val, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("config: %s: unexpected type: %T", key, raw)
	}

	return val, nil
}
