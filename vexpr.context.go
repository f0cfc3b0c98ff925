package vexpr

import (
	"maps"
	"sync"
)

// Context holds the named scopes and template parameters a resolution reads
// from. Scopes are maps keyed by scope name (ScopeAttribute, ScopeSession,
// ...); any other scope name may be used by custom data sources. A child
// context falls back to its parent for keys it does not hold itself.
//
// Context is safe for concurrent use.
type Context struct {
	scopes map[string]map[string]any
	params map[string]any
	parent *Context
	mu     sync.RWMutex
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{
		scopes: make(map[string]map[string]any),
		params: make(map[string]any),
	}
}

// NewContextWithScopes creates a context over the given scopes and template
// parameters. Both maps are copied one level deep; nil is treated as empty.
func NewContextWithScopes(scopes map[string]map[string]any, params map[string]any) *Context {
	c := NewContext()
	for name, data := range scopes {
		c.scopes[name] = maps.Clone(data)
		if c.scopes[name] == nil {
			c.scopes[name] = make(map[string]any)
		}
	}
	maps.Copy(c.params, params)
	return c
}

// Child creates a context whose lookups fall back to c.
func (c *Context) Child() *Context {
	child := NewContext()
	child.parent = c
	return child
}

// Parent returns the parent context, or nil.
func (c *Context) Parent() *Context {
	return c.parent
}

// Set stores value under key in scope.
func (c *Context) Set(scope, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.scopes[scope]
	if !ok {
		data = make(map[string]any)
		c.scopes[scope] = data
	}
	data[key] = value
}

// SetAttribute stores value in the attribute scope.
func (c *Context) SetAttribute(key string, value any) {
	c.Set(ScopeAttribute, key, value)
}

// Get returns the value stored under key in scope, consulting parents.
func (c *Context) Get(scope, key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.scopes[scope][key]
	c.mu.RUnlock()
	if ok {
		return v, true
	}
	if c.parent != nil {
		return c.parent.Get(scope, key)
	}
	return nil, false
}

// Delete removes key from scope in this context only. It reports whether
// the key was present.
func (c *Context) Delete(scope, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.scopes[scope][key]; !ok {
		return false
	}
	delete(c.scopes[scope], key)
	return true
}

// Scope returns a copy of one scope, parents included.
func (c *Context) Scope(name string) map[string]any {
	out := make(map[string]any)
	if c.parent != nil {
		maps.Copy(out, c.parent.Scope(name))
	}
	c.mu.RLock()
	maps.Copy(out, c.scopes[name])
	c.mu.RUnlock()
	return out
}

// SetParam sets a #{key} template parameter.
func (c *Context) SetParam(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params[key] = value
}

// Params returns a copy of the template parameters, parents included.
func (c *Context) Params() map[string]any {
	out := make(map[string]any)
	if c.parent != nil {
		maps.Copy(out, c.parent.Params())
	}
	c.mu.RLock()
	maps.Copy(out, c.params)
	c.mu.RUnlock()
	return out
}

// ApplyOutput stores value in the scope named by an output mapping
// ("name => $session{key}" stores under key in the session scope).
func (c *Context) ApplyOutput(pair NameValuePair, value any) error {
	if !pair.IsOutputMapping() {
		return NewSyntaxError(ErrMsgNotOutputMapping, pair.Name(), pair.String(), nil)
	}
	c.Set(pair.Target(), pair.Value(), value)
	return nil
}

// Lookup implements the host lookup used by the scope data sources.
func (c *Context) Lookup(scope, key string) (any, bool) {
	return c.Get(scope, key)
}

// Scopes returns a snapshot of every scope, parents included.
func (c *Context) Scopes() map[string]map[string]any {
	out := make(map[string]map[string]any)
	if c.parent != nil {
		out = c.parent.Scopes()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, data := range c.scopes {
		merged, ok := out[name]
		if !ok {
			merged = make(map[string]any, len(data))
			out[name] = merged
		}
		maps.Copy(merged, data)
	}
	return out
}

// Param returns a template parameter, consulting parents.
func (c *Context) Param(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.params[key]
	c.mu.RUnlock()
	if ok {
		return v, true
	}
	if c.parent != nil {
		return c.parent.Param(key)
	}
	return nil, false
}

// ParamCount returns the number of distinct template parameters.
func (c *Context) ParamCount() int {
	if c.parent == nil {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return len(c.params)
	}
	return len(c.Params())
}
