package vexpr

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// BundleStore provides the messages read by $resource{bundle.key}.
type BundleStore interface {
	// Message returns the message stored under key in bundle. found is
	// false when either the bundle or the key does not exist.
	Message(ctx context.Context, bundle, key string) (msg string, found bool, err error)

	// Close releases any resources held by the store.
	Close() error
}

// BundleDriver is a factory for bundle stores. Drivers register themselves
// during init().
type BundleDriver interface {
	// Open creates a store. The connection string is driver-specific.
	Open(connectionString string) (BundleStore, error)
}

var (
	bundleDriversMu sync.RWMutex
	bundleDrivers   = make(map[string]BundleDriver)
)

// RegisterBundleDriver registers a bundle store driver by name.
// Panics if driver is nil or the name is already registered.
func RegisterBundleDriver(name string, driver BundleDriver) {
	bundleDriversMu.Lock()
	defer bundleDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilBundleDriver)
	}
	if _, exists := bundleDrivers[name]; exists {
		panic(ErrMsgBundleDriverExists + ": " + name)
	}
	bundleDrivers[name] = driver
}

// OpenBundleStore opens a store using the named driver.
//
// Example:
//
//	store, err := vexpr.OpenBundleStore("memory", "")
//	store, err := vexpr.OpenBundleStore("filesystem", "/etc/app/bundles")
//	store, err := vexpr.OpenBundleStore("postgres", "postgres://localhost/app?sslmode=disable")
func OpenBundleStore(driverName, connectionString string) (BundleStore, error) {
	bundleDriversMu.RLock()
	driver, ok := bundleDrivers[driverName]
	bundleDriversMu.RUnlock()

	if !ok {
		return nil, NewUnknownDriverError(driverName, ListBundleDrivers())
	}
	return driver.Open(connectionString)
}

// ListBundleDrivers returns the names of all registered drivers, sorted.
func ListBundleDrivers() []string {
	bundleDriversMu.RLock()
	defer bundleDriversMu.RUnlock()

	return slices.Sorted(maps.Keys(bundleDrivers))
}

// MemoryBundleStore keeps bundles in memory. It is intended for tests and
// for bundles assembled at startup.
type MemoryBundleStore struct {
	mu      sync.RWMutex
	bundles map[string]map[string]string
	closed  bool
}

// MemoryBundleDriver opens MemoryBundleStore instances.
type MemoryBundleDriver struct{}

func init() {
	RegisterBundleDriver(BundleDriverMemory, &MemoryBundleDriver{})
}

// Open creates an empty store. The connection string is ignored.
func (d *MemoryBundleDriver) Open(string) (BundleStore, error) {
	return NewMemoryBundleStore(), nil
}

// NewMemoryBundleStore creates an empty store.
func NewMemoryBundleStore() *MemoryBundleStore {
	return &MemoryBundleStore{
		bundles: make(map[string]map[string]string),
	}
}

// Message implements BundleStore.
func (s *MemoryBundleStore) Message(ctx context.Context, bundle, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return StringValueEmpty, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return StringValueEmpty, false, NewStorageError(ErrMsgStorageClosed, bundle, key, nil)
	}
	msg, ok := s.bundles[bundle][key]
	return msg, ok, nil
}

// Put stores one message.
func (s *MemoryBundleStore) Put(bundle, key, msg string) error {
	if err := validateBundleKey(bundle, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageError(ErrMsgStorageClosed, bundle, key, nil)
	}
	data, ok := s.bundles[bundle]
	if !ok {
		data = make(map[string]string)
		s.bundles[bundle] = data
	}
	data[key] = msg
	return nil
}

// PutBundle replaces a whole bundle with a copy of messages.
func (s *MemoryBundleStore) PutBundle(bundle string, messages map[string]string) error {
	if err := validateBundleName(bundle); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageError(ErrMsgStorageClosed, bundle, StringValueEmpty, nil)
	}
	s.bundles[bundle] = maps.Clone(messages)
	if s.bundles[bundle] == nil {
		s.bundles[bundle] = make(map[string]string)
	}
	return nil
}

// Delete removes one message. It reports whether the message existed.
func (s *MemoryBundleStore) Delete(bundle, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bundles[bundle][key]; !ok {
		return false
	}
	delete(s.bundles[bundle], key)
	return true
}

// Bundles returns the stored bundle names, sorted.
func (s *MemoryBundleStore) Bundles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.bundles))
}

// Close marks the store closed. Later calls fail.
func (s *MemoryBundleStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.bundles = nil
	return nil
}

func validateBundleName(bundle string) error {
	if bundle == StringValueEmpty {
		return NewStorageError(ErrMsgEmptyBundleName, bundle, StringValueEmpty, nil)
	}
	return nil
}

func validateBundleKey(bundle, key string) error {
	if err := validateBundleName(bundle); err != nil {
		return err
	}
	if key == StringValueEmpty {
		return NewStorageError(ErrMsgEmptyMessageKey, bundle, key, nil)
	}
	return nil
}
