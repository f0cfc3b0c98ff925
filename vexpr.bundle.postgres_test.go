package vexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPostgresBundleConfig(t *testing.T) {
	cfg := DefaultPostgresBundleConfig()

	assert.Equal(t, PostgresDefaultMaxOpenConns, cfg.MaxOpenConns)
	assert.Equal(t, PostgresDefaultMaxIdleConns, cfg.MaxIdleConns)
	assert.Equal(t, PostgresDefaultConnMaxLifetime, cfg.ConnMaxLifetime)
	assert.Equal(t, PostgresDefaultConnMaxIdleTime, cfg.ConnMaxIdleTime)
	assert.Equal(t, PostgresTablePrefix, cfg.TablePrefix)
	assert.Equal(t, PostgresDefaultQueryTimeout, cfg.QueryTimeout)
	assert.False(t, cfg.AutoMigrate)
	assert.Empty(t, cfg.ConnectionString)
}

func TestPostgresBundleStore_EmptyConnectionString(t *testing.T) {
	_, err := NewPostgresBundleStore(PostgresBundleConfig{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgEmptyConnection)
}

func TestPostgresBundleStore_InvalidConnectionString(t *testing.T) {
	cfg := PostgresBundleConfig{
		ConnectionString: "invalid://not-a-valid-connection-string",
	}

	_, err := NewPostgresBundleStore(cfg)
	require.Error(t, err)
}

func TestPostgresBundleStore_InvalidTablePrefix(t *testing.T) {
	cfg := PostgresBundleConfig{
		ConnectionString: "postgres://localhost/test?sslmode=disable",
		TablePrefix:      "bad; DROP TABLE x; --",
	}

	_, err := NewPostgresBundleStore(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgInvalidTablePrefix)
}

func TestPostgresBundleDriver_Registered(t *testing.T) {
	assert.Contains(t, ListBundleDrivers(), BundleDriverPostgres)
}

func TestPostgresBundleDriver_Open_EmptyConnectionString(t *testing.T) {
	_, err := OpenBundleStore(BundleDriverPostgres, "")
	require.Error(t, err)
}

func TestValidTablePrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   bool
	}{
		{"vexpr_", true},
		{"App2_", true},
		{"", true},
		{"a-b", false},
		{"a.b", false},
		{"a b", false},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, validTablePrefix(tt.prefix))
		})
	}
}

func TestValidatePostgresBundleKey(t *testing.T) {
	long := make([]byte, PostgresMaxKeyLength+1)
	for i := range long {
		long[i] = 'k'
	}

	assert.NoError(t, validatePostgresBundleKey("b", "k"))
	assert.Error(t, validatePostgresBundleKey("", "k"))
	assert.Error(t, validatePostgresBundleKey("b", ""))

	err := validatePostgresBundleKey(string(long), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgBundleNameTooLong)

	err = validatePostgresBundleKey("b", string(long))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgMessageKeyTooLong)
}
