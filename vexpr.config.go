package vexpr

import (
	"bytes"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the YAML form of the engine options.
//
//	max_depth: 32
//	max_suggestions: 3
//	delimiters:
//	  start: "$"
//	  type: "{"
//	  end: "}"
//	output_types: [attribute, session]
//	builtins: true
//	bundles:
//	  driver: filesystem
//	  source: ./bundles
//	  cache:
//	    ttl: 5m
//	    max_entries: 1024
//	    negative_ttl: 30s
type Config struct {
	MaxDepth       int             `yaml:"max_depth"`
	MaxSuggestions *int            `yaml:"max_suggestions"`
	Delimiters     DelimiterConfig `yaml:"delimiters"`
	OutputTypes    []string        `yaml:"output_types"`
	Builtins       *bool           `yaml:"builtins"`
	Bundles        *BundleConfig   `yaml:"bundles"`
}

// DelimiterConfig overrides the substitution token shape. Empty fields keep
// the defaults.
type DelimiterConfig struct {
	Start     string `yaml:"start"`
	TypeDelim string `yaml:"type"`
	End       string `yaml:"end"`
}

// BundleConfig selects a bundle store driver.
type BundleConfig struct {
	Driver string           `yaml:"driver"`
	Source string           `yaml:"source"`
	Cache  *BundleCacheSpec `yaml:"cache"`
}

// BundleCacheSpec enables a CachedBundleStore around the opened store.
type BundleCacheSpec struct {
	TTL         time.Duration `yaml:"ttl"`
	MaxEntries  int           `yaml:"max_entries"`
	NegativeTTL time.Duration `yaml:"negative_ttl"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, path, err)
	}
	return parseConfig(raw, path)
}

// ParseConfig parses YAML configuration. Unknown fields are rejected.
func ParseConfig(data []byte) (*Config, error) {
	return parseConfig(data, StringValueEmpty)
}

func parseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, NewConfigError(ErrMsgConfigParse, path, err)
	}
	return &cfg, nil
}

// Options converts the configuration into engine options. When a bundle
// driver is configured the store is opened here; the caller owns it and
// should close it through Engine.BundleStore.
func (c *Config) Options(logger *zap.Logger) ([]Option, error) {
	var opts []Option
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	if c == nil {
		return opts, nil
	}

	if c.MaxDepth > 0 {
		opts = append(opts, WithMaxDepth(c.MaxDepth))
	}
	if c.MaxSuggestions != nil {
		opts = append(opts, WithMaxSuggestions(*c.MaxSuggestions))
	}
	d := c.Delimiters
	if d.Start != StringValueEmpty || d.TypeDelim != StringValueEmpty || d.End != StringValueEmpty {
		opts = append(opts, WithDelimiters(d.Start, d.TypeDelim, d.End))
	}
	if len(c.OutputTypes) > 0 {
		opts = append(opts, WithOutputTypes(c.OutputTypes...))
	}
	if c.Builtins != nil && !*c.Builtins {
		opts = append(opts, WithoutBuiltins())
	}

	if c.Bundles != nil && c.Bundles.Driver != StringValueEmpty {
		store, err := OpenBundleStore(c.Bundles.Driver, c.Bundles.Source)
		if err != nil {
			return nil, err
		}
		if cache := c.Bundles.Cache; cache != nil {
			store = NewCachedBundleStore(store, BundleCacheConfig{
				TTL:              cache.TTL,
				MaxEntries:       cache.MaxEntries,
				NegativeCacheTTL: cache.NegativeTTL,
			}, logger)
		}
		if logger != nil {
			logger.Debug(LogMsgBundleStoreOpened, zap.String(LogFieldDriver, c.Bundles.Driver))
		}
		opts = append(opts, WithBundleStore(store))
	}

	if logger != nil {
		logger.Debug(LogMsgConfigLoaded, zap.Int(LogFieldMaxDepth, c.MaxDepth))
	}
	return opts, nil
}
