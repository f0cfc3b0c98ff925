package internal

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// DataSource resolves the key of a $type{key} substitution.
type DataSource interface {
	Type() string
	Value(ctx context.Context, env Env, key string) (any, error)
}

// SourceFunc adapts a function to the DataSource interface.
type SourceFunc struct {
	TypeName string
	Fn       func(ctx context.Context, env Env, key string) (any, error)
}

// Type returns the type keyword.
func (s SourceFunc) Type() string { return s.TypeName }

// Value calls the wrapped function.
func (s SourceFunc) Value(ctx context.Context, env Env, key string) (any, error) {
	return s.Fn(ctx, env, key)
}

// SourceRegistry maps type keywords to data sources. Register keeps the
// first source for a keyword; Replace lets the host override one.
type SourceRegistry struct {
	sources map[string]DataSource
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewSourceRegistry creates an empty data source registry.
func NewSourceRegistry(logger *zap.Logger) *SourceRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated, zap.String(LogFieldKind, RegistryKindSource))
	return &SourceRegistry{
		sources: make(map[string]DataSource),
		logger:  logger,
	}
}

// Register adds a data source. The empty type keyword is allowed and
// serves plain ${key} lookups.
func (r *SourceRegistry) Register(source DataSource) error {
	if source == nil {
		return NewRegistryError(ErrMsgNilSource, StringValueEmpty)
	}
	typ := source.Type()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[typ]; exists {
		r.logger.Warn(LogMsgSourceCollision, zap.String(LogFieldType, typ))
		return NewRegistryError(ErrMsgSourceExists, typ)
	}
	r.sources[typ] = source
	r.logger.Debug(LogMsgSourceRegistered, zap.String(LogFieldType, typ))
	return nil
}

// MustRegister adds a data source and panics if registration fails.
func (r *SourceRegistry) MustRegister(source DataSource) {
	if err := r.Register(source); err != nil {
		panic(err)
	}
}

// Replace registers source, overriding any existing one for its type.
func (r *SourceRegistry) Replace(source DataSource) error {
	if source == nil {
		return NewRegistryError(ErrMsgNilSource, StringValueEmpty)
	}
	typ := source.Type()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[typ]; exists {
		r.logger.Debug(LogMsgSourceReplaced, zap.String(LogFieldType, typ))
	} else {
		r.logger.Debug(LogMsgSourceRegistered, zap.String(LogFieldType, typ))
	}
	r.sources[typ] = source
	return nil
}

// Remove deletes the source for typ. It reports whether one was registered.
func (r *SourceRegistry) Remove(typ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[typ]; !exists {
		return false
	}
	delete(r.sources, typ)
	r.logger.Debug(LogMsgSourceRemoved, zap.String(LogFieldType, typ))
	return true
}

// Get retrieves a data source by type keyword.
func (r *SourceRegistry) Get(typ string) (DataSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, exists := r.sources[typ]
	return source, exists
}

// Has checks if a data source is registered for typ.
func (r *SourceRegistry) Has(typ string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.sources[typ]
	return exists
}

// List returns all registered type keywords in sorted order.
func (r *SourceRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.sources))
	for typ := range r.sources {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Count returns the number of registered data sources.
func (r *SourceRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sources)
}
