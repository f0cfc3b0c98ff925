package internal

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// FunctionRegistry maps function names to factories. It is safe for
// concurrent use; lookups take a read lock only.
type FunctionRegistry struct {
	factories map[string]FunctionFactory
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewFunctionRegistry creates an empty function registry.
func NewFunctionRegistry(logger *zap.Logger) *FunctionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated, zap.String(LogFieldKind, RegistryKindFunction))
	return &FunctionRegistry{
		factories: make(map[string]FunctionFactory),
		logger:    logger,
	}
}

// Register adds a factory under name. The factory is invoked once to make
// sure it yields a usable Function. The first registration of a name wins.
func (r *FunctionRegistry) Register(name string, factory FunctionFactory) error {
	if factory == nil {
		return NewRegistryError(ErrMsgNilFactory, name)
	}
	if name == StringValueEmpty {
		return NewRegistryError(ErrMsgEmptyFuncName, StringValueEmpty)
	}
	if strings.ContainsAny(name, OperatorChars) || strings.ContainsRune(name, ArgumentSeparator) {
		return NewRegistryError(ErrMsgInvalidFuncName, name)
	}
	if factory() == nil {
		return NewRegistryError(ErrMsgFactoryNil, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		r.logger.Warn(LogMsgFuncCollision, zap.String(LogFieldFunc, name))
		return NewRegistryError(ErrMsgFuncExists, name)
	}
	r.factories[name] = factory
	r.logger.Debug(LogMsgFuncRegistered, zap.String(LogFieldFunc, name))
	return nil
}

// MustRegister adds a factory and panics if registration fails.
func (r *FunctionRegistry) MustRegister(name string, factory FunctionFactory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Unregister removes name. It reports whether the name was registered.
func (r *FunctionRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return false
	}
	delete(r.factories, name)
	r.logger.Debug(LogMsgFuncRemoved, zap.String(LogFieldFunc, name))
	return true
}

// New instantiates the function registered under name. ok is false when
// no such function exists.
func (r *FunctionRegistry) New(name string) (fn Function, ok bool, err error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}
	fn = factory()
	if fn == nil {
		return nil, true, NewResolutionError(ErrMsgFunctionInstantiate, name, name, nil)
	}
	r.logger.Debug(LogMsgFunctionInstantiate, zap.String(LogFieldFunc, name))
	return fn, true, nil
}

// Has checks if a function is registered under name.
func (r *FunctionRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// List returns all registered function names in sorted order.
func (r *FunctionRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
