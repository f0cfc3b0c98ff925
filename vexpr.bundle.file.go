package vexpr

import (
	"context"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/itsatony/go-vexpr/internal"
)

// FileBundleStore reads bundles from a directory of YAML files, one file per
// bundle named <bundle>.yaml. Nested maps are flattened into dotted keys:
//
//	# messages.yaml
//	greeting:
//	  hello: "Hello {0}!"
//
// makes $resource{messages.greeting.hello,Ann} resolve to "Hello Ann!".
// Bundles are loaded on first use and kept until Reload.
type FileBundleStore struct {
	mu      sync.RWMutex
	root    string
	bundles map[string]map[string]string // nil value: file does not exist
	closed  bool
	logger  *zap.Logger
}

// FileBundleDriver opens FileBundleStore instances.
type FileBundleDriver struct{}

func init() {
	RegisterBundleDriver(BundleDriverFilesystem, &FileBundleDriver{})
}

// Open creates a store. The connection string is the root directory.
func (d *FileBundleDriver) Open(connectionString string) (BundleStore, error) {
	return NewFileBundleStore(connectionString, nil)
}

// NewFileBundleStore creates a store rooted at root, creating the directory
// when it does not exist.
func NewFileBundleStore(root string, logger *zap.Logger) (*FileBundleStore, error) {
	if root == StringValueEmpty {
		return nil, NewStorageError(ErrMsgEmptyConnection, StringValueEmpty, StringValueEmpty, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, FileBundleDirPerms); err != nil {
		return nil, NewStorageError(ErrMsgBundleWriteFailed, StringValueEmpty, StringValueEmpty, err)
	}
	return &FileBundleStore{
		root:    root,
		bundles: make(map[string]map[string]string),
		logger:  logger,
	}, nil
}

// Message implements BundleStore.
func (s *FileBundleStore) Message(ctx context.Context, bundle, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return StringValueEmpty, false, err
	}
	if err := validateFileBundleName(bundle); err != nil {
		return StringValueEmpty, false, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return StringValueEmpty, false, NewStorageError(ErrMsgStorageClosed, bundle, key, nil)
	}
	data, loaded := s.bundles[bundle]
	s.mu.RUnlock()

	if !loaded {
		var err error
		if data, err = s.load(bundle); err != nil {
			return StringValueEmpty, false, err
		}
	}
	msg, ok := data[key]
	return msg, ok, nil
}

// Put writes one message to the bundle file, creating it when needed.
func (s *FileBundleStore) Put(ctx context.Context, bundle, key, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateBundleKey(bundle, key); err != nil {
		return err
	}
	if err := validateFileBundleName(bundle); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageError(ErrMsgStorageClosed, bundle, key, nil)
	}
	data, err := s.read(bundle)
	if err != nil {
		return err
	}
	if data == nil {
		data = make(map[string]string)
	}
	data[key] = msg

	out, err := yaml.Marshal(data)
	if err != nil {
		return NewStorageError(ErrMsgBundleWriteFailed, bundle, key, err)
	}
	if err := os.WriteFile(s.path(bundle), out, FileBundleFilePerms); err != nil {
		return NewStorageError(ErrMsgBundleWriteFailed, bundle, key, err)
	}
	s.bundles[bundle] = data
	return nil
}

// Bundles returns the bundle names found in the root directory, sorted.
func (s *FileBundleStore) Bundles() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, NewStorageError(ErrMsgBundleReadFailed, StringValueEmpty, StringValueEmpty, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != FileBundleExtension {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), FileBundleExtension))
	}
	slices.Sort(names)
	return names, nil
}

// Reload drops cached bundles so they are read again on next use. With no
// names every bundle is dropped.
func (s *FileBundleStore) Reload(bundles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(bundles) == 0 {
		s.bundles = make(map[string]map[string]string)
		return
	}
	for _, b := range bundles {
		delete(s.bundles, b)
	}
}

// Close marks the store closed. Later calls fail.
func (s *FileBundleStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.bundles = nil
	return nil
}

func (s *FileBundleStore) load(bundle string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, NewStorageError(ErrMsgStorageClosed, bundle, StringValueEmpty, nil)
	}
	if data, ok := s.bundles[bundle]; ok {
		return data, nil
	}
	data, err := s.read(bundle)
	if err != nil {
		return nil, err
	}
	s.bundles[bundle] = data
	s.logger.Debug(LogMsgBundleLoaded,
		zap.String(LogFieldBundle, bundle),
		zap.Int(LogFieldCount, len(data)),
	)
	return data, nil
}

// read parses a bundle file. A missing file yields a nil map.
// Caller must hold the write lock.
func (s *FileBundleStore) read(bundle string) (map[string]string, error) {
	path := s.path(bundle)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug(LogMsgBundleMissing, zap.String(LogFieldPath, path))
		return nil, nil
	}
	if err != nil {
		return nil, NewStorageError(ErrMsgBundleReadFailed, bundle, StringValueEmpty, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, NewStorageError(ErrMsgBundleParseFailed, bundle, StringValueEmpty, err)
	}
	data := make(map[string]string, len(doc))
	flattenMessages(data, StringValueEmpty, doc)
	return data, nil
}

func (s *FileBundleStore) path(bundle string) string {
	return filepath.Join(s.root, bundle+FileBundleExtension)
}

// flattenMessages copies doc into out, joining nested keys with '.'.
func flattenMessages(out map[string]string, prefix string, doc map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(doc)) {
		key := k
		if prefix != StringValueEmpty {
			key = prefix + internal.ResourceKeySep + k
		}
		if nested, ok := doc[k].(map[string]any); ok {
			flattenMessages(out, key, nested)
			continue
		}
		out[key] = internal.Stringify(doc[k])
	}
}

func validateFileBundleName(bundle string) error {
	if err := validateBundleName(bundle); err != nil {
		return err
	}
	if strings.Contains(bundle, "..") || strings.ContainsAny(bundle, FileBundleInvalidName) {
		return NewStorageError(ErrMsgInvalidBundleName, bundle, StringValueEmpty, nil)
	}
	return nil
}
