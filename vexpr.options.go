package vexpr

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	start          string
	typeDelim      string
	end            string
	maxDepth       int
	maxSuggestions int
	outputTypes    []string
	bundles        BundleStore
	builtins       bool
	logger         *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		start:          DefaultStart,
		typeDelim:      DefaultTypeDelim,
		end:            DefaultEnd,
		maxDepth:       DefaultMaxDepth,
		maxSuggestions: DefaultMaxSuggestions,
		builtins:       true,
		logger:         nil,
	}
}

// WithDelimiters sets the substitution token shape. Empty values keep the
// current setting.
// Default: "$", "{" and "}"
func WithDelimiters(start, typeDelim, end string) Option {
	return func(c *engineConfig) {
		if start != "" {
			c.start = start
		}
		if typeDelim != "" {
			c.typeDelim = typeDelim
		}
		if end != "" {
			c.end = end
		}
	}
}

// WithMaxDepth bounds nested substitution and #{} merging. Values below 1
// are ignored.
// Default: 64
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// WithMaxSuggestions sets how many "did you mean" candidates accompany an
// unknown type keyword. 0 disables suggestions.
// Default: 3
func WithMaxSuggestions(n int) Option {
	return func(c *engineConfig) {
		if n >= 0 {
			c.maxSuggestions = n
		}
	}
}

// WithOutputTypes sets the scopes accepted as "name => $type{key}" targets.
// Default: attribute, application, session, pageSession
func WithOutputTypes(types ...string) Option {
	return func(c *engineConfig) {
		c.outputTypes = append([]string(nil), types...)
	}
}

// WithBundleStore sets the store used by $resource{bundle.key}.
// Default: nil (keys resolve to themselves)
func WithBundleStore(store BundleStore) Option {
	return func(c *engineConfig) {
		c.bundles = store
	}
}

// WithoutBuiltins creates the engine with empty data source and function
// registries.
func WithoutBuiltins() Option {
	return func(c *engineConfig) {
		c.builtins = false
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
