package vexpr

import (
	"context"

	"github.com/itsatony/go-vexpr/internal"
)

// DataSource resolves the key of a $type{key} token. Each data source
// handles one type keyword.
type DataSource interface {
	// Type returns the type keyword this source handles (e.g. "session").
	Type() string

	// Value resolves key. vctx is the context passed to the resolving call.
	// A nil value is substituted as the empty string.
	Value(ctx context.Context, vctx *Context, key string) (any, error)
}

// DataSourceFunc is a convenience type for creating data sources from
// functions.
type DataSourceFunc struct {
	typ string
	fn  func(ctx context.Context, vctx *Context, key string) (any, error)
}

// NewDataSourceFunc creates a function-based data source for typ.
func NewDataSourceFunc(typ string, fn func(ctx context.Context, vctx *Context, key string) (any, error)) *DataSourceFunc {
	return &DataSourceFunc{typ: typ, fn: fn}
}

// Type returns the type keyword.
func (d *DataSourceFunc) Type() string {
	return d.typ
}

// Value calls the wrapped function.
func (d *DataSourceFunc) Value(ctx context.Context, vctx *Context, key string) (any, error) {
	return d.fn(ctx, vctx, key)
}

// RegisterDataSource adds a data source. The first registration of a type
// keyword wins; use ReplaceDataSource to override a built-in.
func (e *Engine) RegisterDataSource(ds DataSource) error {
	if err := validateDataSource(ds); err != nil {
		return err
	}
	return wrapError(e.sources.Register(&dataSourceAdapter{source: ds}))
}

// MustRegisterDataSource adds a data source and panics if registration fails.
func (e *Engine) MustRegisterDataSource(ds DataSource) {
	if err := e.RegisterDataSource(ds); err != nil {
		panic(err)
	}
}

// ReplaceDataSource registers ds, replacing any source for the same type.
func (e *Engine) ReplaceDataSource(ds DataSource) error {
	if err := validateDataSource(ds); err != nil {
		return err
	}
	return wrapError(e.sources.Replace(&dataSourceAdapter{source: ds}))
}

// RemoveDataSource unregisters typ. It reports whether typ was registered.
func (e *Engine) RemoveDataSource(typ string) bool {
	return e.sources.Remove(typ)
}

// HasDataSource checks if a data source is registered for typ.
func (e *Engine) HasDataSource(typ string) bool {
	return e.sources.Has(typ)
}

// ListDataSources returns all registered type keywords in sorted order.
func (e *Engine) ListDataSources() []string {
	return e.sources.List()
}

// DataSourceCount returns the number of registered data sources.
func (e *Engine) DataSourceCount() int {
	return e.sources.Count()
}

// LookupDataSource resolves a single key through the source registered for
// typ, without scanning key for tokens. An unknown typ is reported with
// suggestions.
func (e *Engine) LookupDataSource(ctx context.Context, vctx *Context, typ, key string) (any, error) {
	ds, ok := e.sources.Get(typ)
	if !ok {
		return nil, NewUnknownSourceError(typ, internal.FindSimilarStrings(typ, e.sources.List(), e.config.maxSuggestions))
	}
	v, err := ds.Value(ctx, e.env(vctx), key)
	return v, wrapError(err)
}

func validateDataSource(ds DataSource) error {
	if ds == nil {
		return NewRegistryError(ErrMsgNilDataSource, StringValueEmpty, nil)
	}
	return nil
}

// dataSourceAdapter adapts the public DataSource interface to the internal
// one.
type dataSourceAdapter struct {
	source DataSource
}

func (a *dataSourceAdapter) Type() string {
	return a.source.Type()
}

func (a *dataSourceAdapter) Value(ctx context.Context, env internal.Env, key string) (any, error) {
	vctx, err := hostContext(env, a.source.Type())
	if err != nil {
		return nil, err
	}
	return a.source.Value(ctx, vctx, key)
}

// hostContext recovers the *Context an engine call was made with.
func hostContext(env internal.Env, name string) (*Context, error) {
	if env.Host == nil {
		return NewContext(), nil
	}
	vctx, ok := env.Host.(*Context)
	if !ok {
		return nil, internal.NewResolutionError(ErrMsgInvalidContext, name, StringValueEmpty, nil)
	}
	return vctx, nil
}
