package vexpr

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBundleStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBundleStore()

	t.Run("missing", func(t *testing.T) {
		_, found, err := store.Message(ctx, "msgs", "title")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("put and read", func(t *testing.T) {
		require.NoError(t, store.Put("msgs", "title", "Welcome"))
		msg, found, err := store.Message(ctx, "msgs", "title")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Welcome", msg)
	})

	t.Run("put bundle copies", func(t *testing.T) {
		src := map[string]string{"a": "A"}
		require.NoError(t, store.PutBundle("other", src))
		src["a"] = "changed"

		msg, _, err := store.Message(ctx, "other", "a")
		require.NoError(t, err)
		assert.Equal(t, "A", msg)
		assert.Equal(t, []string{"msgs", "other"}, store.Bundles())
	})

	t.Run("validation", func(t *testing.T) {
		err := store.Put("", "k", "v")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgEmptyBundleName)

		err = store.Put("b", "", "v")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgEmptyMessageKey)

		assert.Error(t, store.PutBundle("", nil))
	})

	t.Run("delete", func(t *testing.T) {
		assert.True(t, store.Delete("msgs", "title"))
		assert.False(t, store.Delete("msgs", "title"))
	})

	t.Run("closed", func(t *testing.T) {
		require.NoError(t, store.Close())
		_, _, err := store.Message(ctx, "msgs", "title")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgStorageClosed)
		assert.Error(t, store.Put("msgs", "k", "v"))
	})
}

func TestMemoryBundleStore_CancelledContext(t *testing.T) {
	store := NewMemoryBundleStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Message(ctx, "msgs", "title")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryBundleStore_Concurrent(t *testing.T) {
	store := NewMemoryBundleStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Put("msgs", "k", "v")
			_, _, _ = store.Message(ctx, "msgs", "k")
		}()
	}
	wg.Wait()

	msg, found, err := store.Message(ctx, "msgs", "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", msg)
}

func TestBundleDrivers(t *testing.T) {
	drivers := ListBundleDrivers()
	assert.Contains(t, drivers, BundleDriverMemory)
	assert.Contains(t, drivers, BundleDriverFilesystem)
	assert.Contains(t, drivers, BundleDriverPostgres)

	store, err := OpenBundleStore(BundleDriverMemory, StringValueEmpty)
	require.NoError(t, err)
	assert.IsType(t, &MemoryBundleStore{}, store)

	_, err = OpenBundleStore("memroy", StringValueEmpty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnknownDriver)
	suggestions, ok := metadata(t, err, MetaKeySuggestions)
	assert.True(t, ok)
	assert.Contains(t, suggestions, BundleDriverMemory)
}

func TestRegisterBundleDriver_Panics(t *testing.T) {
	assert.Panics(t, func() { RegisterBundleDriver("nil-driver", nil) })
	assert.Panics(t, func() { RegisterBundleDriver(BundleDriverMemory, &MemoryBundleDriver{}) })
}
