package vexpr

import (
	"errors"
	"strings"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/go-vexpr/internal"
)

func metadata(t *testing.T, err error, key string) (string, bool) {
	t.Helper()
	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	return customErr.GetMetadata(key)
}

func TestNewSyntaxError(t *testing.T) {
	t.Run("with cause error", func(t *testing.T) {
		cause := errors.New("bad token")
		err := NewSyntaxError(ErrMsgMissingEquals, "x", "x y", cause)

		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgMissingEquals)
		assert.True(t, errors.Is(err, cause))

		fragment, ok := metadata(t, err, MetaKeyFragment)
		assert.True(t, ok)
		assert.Equal(t, "x", fragment)

		source, ok := metadata(t, err, MetaKeySource)
		assert.True(t, ok)
		assert.Equal(t, "x y", source)
	})

	t.Run("without cause error", func(t *testing.T) {
		err := NewSyntaxError(ErrMsgUnterminatedQuote, "'a", "'a", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnterminatedQuote)
	})
}

func TestNewResolutionError(t *testing.T) {
	err := NewResolutionError(ErrMsgInvalidType, "atribute", "$atribute{x}", []string{"attribute", "application"}, nil)

	typ, ok := metadata(t, err, MetaKeyType)
	assert.True(t, ok)
	assert.Equal(t, "atribute", typ)

	suggestions, ok := metadata(t, err, MetaKeySuggestions)
	assert.True(t, ok)
	assert.Equal(t, "attribute,application", suggestions)

	err = NewResolutionError(ErrMsgInvalidInt, TypeInt, "abc", nil, nil)
	_, ok = metadata(t, err, MetaKeySuggestions)
	assert.False(t, ok)
}

func TestNewEvaluationError(t *testing.T) {
	err := NewEvaluationError(ErrMsgDivideByZero, "/", "1/0", nil)

	op, ok := metadata(t, err, MetaKeyOperator)
	assert.True(t, ok)
	assert.Equal(t, "/", op)

	expr, ok := metadata(t, err, MetaKeyExpression)
	assert.True(t, ok)
	assert.Equal(t, "1/0", expr)
}

func TestNewStorageError(t *testing.T) {
	err := NewStorageError(ErrMsgStorageClosed, "messages", StringValueEmpty, nil)

	bundle, ok := metadata(t, err, MetaKeyBundle)
	assert.True(t, ok)
	assert.Equal(t, "messages", bundle)

	_, ok = metadata(t, err, MetaKeyKey)
	assert.False(t, ok)
}

func TestNewUnknownDriverError(t *testing.T) {
	err := NewUnknownDriverError("postgre", []string{BundleDriverMemory, BundleDriverPostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnknownDriver)

	driver, ok := metadata(t, err, MetaKeyDriver)
	assert.True(t, ok)
	assert.Equal(t, "postgre", driver)

	suggestions, ok := metadata(t, err, MetaKeySuggestions)
	assert.True(t, ok)
	assert.Contains(t, suggestions, BundleDriverPostgres)
}

func TestWrapError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, wrapError(nil))
	})

	t.Run("syntax", func(t *testing.T) {
		src := internal.NewSyntaxError(internal.ErrMsgMissingEquals, "a", "a b")
		err := wrapError(src)

		assert.Equal(t, 1, strings.Count(err.Error(), ErrMsgMissingEquals))
		assert.True(t, strings.HasPrefix(err.Error(), ErrCodeSyntax+": "+ErrMsgMissingEquals))
		var syntaxErr *internal.SyntaxError
		assert.True(t, errors.As(err, &syntaxErr))

		fragment, ok := metadata(t, err, MetaKeyFragment)
		assert.True(t, ok)
		assert.Equal(t, "a", fragment)
	})

	t.Run("resolution keeps suggestions", func(t *testing.T) {
		src := &internal.ResolutionError{
			Message:     internal.ErrMsgInvalidType,
			Type:        "sesion",
			Source:      "$sesion{x}",
			Suggestions: []string{TypeSession},
		}
		err := wrapError(src)

		suggestions, ok := metadata(t, err, MetaKeySuggestions)
		assert.True(t, ok)
		assert.Equal(t, TypeSession, suggestions)
	})

	t.Run("custom error passes through", func(t *testing.T) {
		src := NewConfigError(ErrMsgConfigRead, "x.yaml", nil)
		assert.Same(t, src, wrapError(src))
	})

	t.Run("plain error passes through", func(t *testing.T) {
		src := errors.New("plain")
		assert.Equal(t, src, wrapError(src))
	})
}
