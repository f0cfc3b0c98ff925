package vexpr

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBundle(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+FileBundleExtension), []byte(content), FileBundleFilePerms))
}

func TestFileBundleStore_Message(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "messages", `
title: Welcome
greeting:
  hello: "Hello {0}!"
  count: 3
`)

	store, err := NewFileBundleStore(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name   string
		bundle string
		key    string
		want   string
		found  bool
	}{
		{"flat key", "messages", "title", "Welcome", true},
		{"nested key", "messages", "greeting.hello", "Hello {0}!", true},
		{"nested number", "messages", "greeting.count", "3", true},
		{"missing key", "messages", "nope", "", false},
		{"missing bundle", "other", "title", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, found, err := store.Message(ctx, tt.bundle, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestFileBundleStore_InvalidNames(t *testing.T) {
	store, err := NewFileBundleStore(t.TempDir(), nil)
	require.NoError(t, err)

	for _, name := range []string{"../etc", "a/b", `a\b`} {
		_, _, err := store.Message(context.Background(), name, "k")
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), ErrMsgInvalidBundleName)
	}
}

func TestFileBundleStore_ParseError(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "broken", "a: [unclosed")

	store, err := NewFileBundleStore(dir, nil)
	require.NoError(t, err)

	_, _, err = store.Message(context.Background(), "broken", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgBundleParseFailed)
}

func TestFileBundleStore_PutAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileBundleStore(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "messages", "title", "Welcome"))
	msg, found, err := store.Message(ctx, "messages", "title")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Welcome", msg)

	names, err := store.Bundles()
	require.NoError(t, err)
	assert.Equal(t, []string{"messages"}, names)

	writeBundle(t, dir, "messages", "title: Changed\n")
	msg, _, err = store.Message(ctx, "messages", "title")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", msg)

	store.Reload("messages")
	msg, _, err = store.Message(ctx, "messages", "title")
	require.NoError(t, err)
	assert.Equal(t, "Changed", msg)

	reopened, err := OpenBundleStore(BundleDriverFilesystem, dir)
	require.NoError(t, err)
	msg, found, err = reopened.Message(ctx, "messages", "title")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Changed", msg)
}

func TestFileBundleStore_Closed(t *testing.T) {
	store, err := NewFileBundleStore(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, _, err = store.Message(context.Background(), "messages", "title")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgStorageClosed)
	assert.Error(t, store.Put(context.Background(), "messages", "k", "v"))
}

func TestFileBundleStore_EmptyRoot(t *testing.T) {
	_, err := NewFileBundleStore(StringValueEmpty, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgEmptyConnection)
}

func TestEngine_FileBundleResource(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "messages", "greeting:\n  hello: \"Hello {0}!\"\n")

	store, err := NewFileBundleStore(dir, nil)
	require.NoError(t, err)
	engine := MustNew(WithBundleStore(store))

	out, err := engine.ResolveString(context.Background(), nil, "$resource{messages.greeting.hello,Ann}")
	require.NoError(t, err)
	assert.Equal(t, "Hello Ann!", out)
}
