package vexpr

import (
	"time"

	"github.com/itsatony/go-vexpr/internal"
)

// Default substitution token shape
const (
	DefaultStart     = internal.SubStart
	DefaultTypeDelim = internal.SubTypeDelim
	DefaultEnd       = internal.SubEnd
)

// Default limits
const (
	DefaultMaxDepth       = internal.DefaultMaxDepth
	DefaultMaxSuggestions = internal.DefaultMaxSuggestions
)

// Scope names, as used by Context.Set and by the $scope{key} data sources
const (
	ScopeAttribute        = internal.TypeAttribute
	ScopeApplication      = internal.TypeApplication
	ScopeSession          = internal.TypeSession
	ScopePageSession      = internal.TypePageSession
	ScopeRequestParameter = internal.TypeRequestParameter
)

// Built-in data source type keywords
const (
	TypeDefault          = internal.TypeDefault
	TypeAttribute        = internal.TypeAttribute
	TypeApplication      = internal.TypeApplication
	TypeSession          = internal.TypeSession
	TypePageSession      = internal.TypePageSession
	TypeRequestParameter = internal.TypeRequestParameter
	TypeEscape           = internal.TypeEscape
	TypeEval             = internal.TypeEval
	TypeBoolean          = internal.TypeBoolean
	TypeInt              = internal.TypeInt
	TypeResource         = internal.TypeResource
	TypeEnv              = internal.TypeEnv
	TypeExpr             = internal.TypeExpr
	TypeStackTrace       = internal.TypeStackTrace
)

// Built-in function names
const (
	FuncNameEmpty    = internal.FuncNameEmpty
	FuncNameEquals   = internal.FuncNameEquals
	FuncNameContains = internal.FuncNameContains
	FuncNameHas      = internal.FuncNameHas
)

// Func argument bounds
const (
	FuncVariadic = -1
)

// Error metadata keys
const (
	MetaKeyFragment    = "fragment"
	MetaKeySource      = "source"
	MetaKeyOperator    = "operator"
	MetaKeyExpression  = "expression"
	MetaKeyType        = "type"
	MetaKeySuggestions = "suggestions"
	MetaKeyName        = "name"
	MetaKeyBundle      = "bundle"
	MetaKeyKey         = "key"
	MetaKeyScope       = "scope"
	MetaKeyPath        = "path"
	MetaKeyDriver      = "driver"
)

// Suggestion list separator used in error metadata
const MetaSuggestionSep = ","

// Bundle store driver names
const (
	BundleDriverMemory     = "memory"
	BundleDriverFilesystem = "filesystem"
	BundleDriverPostgres   = "postgres"
)

// Filesystem bundle store constants
const (
	FileBundleExtension   = ".yaml"
	FileBundleDirPerms    = 0755
	FileBundleFilePerms   = 0644
	FileBundleInvalidName = `/\`
)

// Cached bundle store defaults
const (
	DefaultBundleCacheTTL         = 5 * time.Minute
	DefaultBundleCacheMaxEntries  = 4096
	DefaultBundleNegativeCacheTTL = 30 * time.Second
)

// PostgreSQL bundle store constants
const (
	PostgresDriverName             = "postgres"
	PostgresTablePrefix            = "vexpr_"
	PostgresMessagesTable          = "messages"
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
	PostgresMaxBundleLength        = 255
	PostgresMaxKeyLength           = 255
)

// Log message constants
const (
	LogMsgEngineCreated      = "engine created"
	LogMsgResolveStart       = "resolving value"
	LogMsgEvaluateStart      = "evaluating expression"
	LogMsgConfigLoaded       = "configuration loaded"
	LogMsgBundleLoaded       = "bundle loaded"
	LogMsgBundleMissing      = "bundle file not found"
	LogMsgBundleCacheHit     = "bundle cache hit"
	LogMsgBundleCacheMiss    = "bundle cache miss"
	LogMsgBundleCacheEvict   = "bundle cache evicted"
	LogMsgPostgresConnected  = "postgres bundle store connected"
	LogMsgPostgresMigrated   = "postgres bundle store migrated"
	LogMsgOutputApplied      = "output mapping applied"
	LogMsgBundleStoreOpened  = "bundle store opened"
	LogMsgDataSourceReplaced = "data source replaced"
)

// Log field names
const (
	LogFieldSourceLength = "source_length"
	LogFieldInfix        = "infix"
	LogFieldResult       = "result"
	LogFieldBundle       = "bundle"
	LogFieldKey          = "key"
	LogFieldPath         = "path"
	LogFieldDriver       = "driver"
	LogFieldCount        = "count"
	LogFieldMaxDepth     = "max_depth"
	LogFieldType         = "type"
	LogFieldTable        = "table"
)

// Misc string constants
const (
	StringValueEmpty = ""
	FmtErrorCause    = "%s: %v"
)
