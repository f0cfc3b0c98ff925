package vexpr

import (
	"errors"
	"strings"

	"github.com/itsatony/go-cuserr"

	"github.com/itsatony/go-vexpr/internal"
)

// Error message constants. Messages raised by the substitution engine and
// the expression compiler are re-exported so callers can match on them.
const (
	// Syntax errors
	ErrMsgUnterminatedQuote   = internal.ErrMsgUnterminatedQuote
	ErrMsgUnterminatedToken   = internal.ErrMsgUnterminatedToken
	ErrMsgMissingEquals       = internal.ErrMsgMissingEquals
	ErrMsgMissingQuotes       = internal.ErrMsgMissingQuotes
	ErrMsgMissingOutputDollar = internal.ErrMsgMissingOutputDollar
	ErrMsgInvalidOutputType   = internal.ErrMsgInvalidOutputType
	ErrMsgMissingLeftParen    = internal.ErrMsgMissingLeftParen
	ErrMsgUnterminatedArgs    = internal.ErrMsgUnterminatedArgs
	ErrMsgUnterminatedParam   = internal.ErrMsgUnterminatedParam

	// Resolution errors
	ErrMsgInvalidType      = internal.ErrMsgInvalidType
	ErrMsgSourceFailed     = internal.ErrMsgSourceFailed
	ErrMsgMaxDepthExceeded = internal.ErrMsgMaxDepthExceeded
	ErrMsgInvalidInt       = internal.ErrMsgInvalidInt

	// Evaluation errors
	ErrMsgStackUnderflow    = internal.ErrMsgStackUnderflow
	ErrMsgValuesLeftOnStack = internal.ErrMsgValuesLeftOnStack
	ErrMsgNotAnInteger      = internal.ErrMsgNotAnInteger
	ErrMsgDivideByZero      = internal.ErrMsgDivideByZero
	ErrMsgInvalidPattern    = internal.ErrMsgInvalidPattern

	// Registry errors
	ErrMsgNilDataSource    = "data source cannot be nil"
	ErrMsgSourceExists     = internal.ErrMsgSourceExists
	ErrMsgNilFunc          = "function cannot be nil"
	ErrMsgNilFuncImpl      = "function implementation cannot be nil"
	ErrMsgFuncExists       = internal.ErrMsgFuncExists
	ErrMsgInvalidFuncName  = internal.ErrMsgInvalidFuncName
	ErrMsgFuncArgCount     = internal.ErrMsgFunctionArgCount
	ErrMsgFuncFailed       = "function failed"
	ErrMsgUnknownSource    = "data source not registered"
	ErrMsgInvalidContext   = "data source called without a *vexpr.Context"
	ErrMsgExpressionNil    = "expression is not compiled"

	// Output mapping errors
	ErrMsgNotOutputMapping    = "name value pair is not an output mapping"
	ErrMsgUnknownOutputTarget = "unknown output mapping target"

	// Configuration errors
	ErrMsgConfigRead  = "failed to read configuration"
	ErrMsgConfigParse = "failed to parse configuration"

	// Storage errors
	ErrMsgStorageClosed      = "bundle store is closed"
	ErrMsgEmptyBundleName    = "bundle name cannot be empty"
	ErrMsgInvalidBundleName  = "bundle name contains invalid characters"
	ErrMsgBundleNameTooLong  = "bundle name exceeds maximum length"
	ErrMsgEmptyMessageKey    = "message key cannot be empty"
	ErrMsgMessageKeyTooLong  = "message key exceeds maximum length"
	ErrMsgBundleReadFailed   = "failed to read bundle"
	ErrMsgBundleParseFailed  = "failed to parse bundle"
	ErrMsgBundleWriteFailed  = "failed to write bundle"
	ErrMsgNilBundleStore     = "bundle store cannot be nil"
	ErrMsgUnknownDriver      = "unknown bundle store driver"
	ErrMsgNilBundleDriver    = "bundle store driver is nil"
	ErrMsgBundleDriverExists = "bundle store driver already registered"
	ErrMsgEmptyConnection    = "bundle store connection string cannot be empty"
	ErrMsgPostgresConnFailed = "failed to connect to postgres"
	ErrMsgPostgresPing       = "failed to ping postgres"
	ErrMsgPostgresMigration  = "failed to run postgres migrations"
	ErrMsgPostgresQuery      = "postgres query failed"
	ErrMsgInvalidTablePrefix = "table prefix may only contain letters, digits and underscores"
)

// Error code constants for categorization
const (
	ErrCodeSyntax     = "VEXPR_SYNTAX"
	ErrCodeResolution = "VEXPR_RESOLUTION"
	ErrCodeEvaluation = "VEXPR_EVALUATION"
	ErrCodeRegistry   = "VEXPR_REGISTRY"
	ErrCodeStorage    = "VEXPR_STORAGE"
	ErrCodeConfig     = "VEXPR_CONFIG"
)

// NewSyntaxError creates an error for malformed input
func NewSyntaxError(msg, fragment, source string, cause error) error {
	return newError(ErrCodeSyntax, msg, cause).
		WithMetadata(MetaKeyFragment, fragment).
		WithMetadata(MetaKeySource, source)
}

// NewResolutionError creates an error for a substitution that could not be
// resolved. suggestions lists registered type keywords resembling typ.
func NewResolutionError(msg, typ, source string, suggestions []string, cause error) error {
	err := newError(ErrCodeResolution, msg, cause).
		WithMetadata(MetaKeyType, typ).
		WithMetadata(MetaKeySource, source)
	if len(suggestions) > 0 {
		err = err.WithMetadata(MetaKeySuggestions, strings.Join(suggestions, MetaSuggestionSep))
	}
	return err
}

// NewEvaluationError creates an error raised while evaluating a compiled
// expression
func NewEvaluationError(msg, operator, expression string, cause error) error {
	return newError(ErrCodeEvaluation, msg, cause).
		WithMetadata(MetaKeyOperator, operator).
		WithMetadata(MetaKeyExpression, expression)
}

// NewRegistryError creates a data source or function registration error
func NewRegistryError(msg, name string, cause error) error {
	return newError(ErrCodeRegistry, msg, cause).
		WithMetadata(MetaKeyName, name)
}

// NewUnknownSourceError creates an error for a data source type that is not
// registered
func NewUnknownSourceError(typ string, suggestions []string) error {
	err := cuserr.NewNotFoundError(MetaKeyType, ErrMsgUnknownSource).
		WithMetadata(MetaKeyType, typ)
	if len(suggestions) > 0 {
		err = err.WithMetadata(MetaKeySuggestions, strings.Join(suggestions, MetaSuggestionSep))
	}
	return err
}

// NewStorageError creates a bundle store error
func NewStorageError(msg, bundle, key string, cause error) error {
	err := newError(ErrCodeStorage, msg, cause)
	if bundle != StringValueEmpty {
		err = err.WithMetadata(MetaKeyBundle, bundle)
	}
	if key != StringValueEmpty {
		err = err.WithMetadata(MetaKeyKey, key)
	}
	return err
}

// NewUnknownDriverError creates an error for a bundle driver name that is
// not registered
func NewUnknownDriverError(driver string, registered []string) error {
	err := cuserr.NewNotFoundError(MetaKeyDriver, ErrMsgUnknownDriver).
		WithMetadata(MetaKeyDriver, driver)
	if suggestions := internal.FindSimilarStrings(driver, registered, DefaultMaxSuggestions); len(suggestions) > 0 {
		err = err.WithMetadata(MetaKeySuggestions, strings.Join(suggestions, MetaSuggestionSep))
	}
	return err
}

// NewConfigError creates a configuration loading error
func NewConfigError(msg, path string, cause error) error {
	return newError(ErrCodeConfig, msg, cause).
		WithMetadata(MetaKeyPath, path)
}

func newError(code, msg string, cause error) *cuserr.CustomError {
	if cause == nil {
		return cuserr.NewValidationError(code, msg)
	}
	err := cuserr.WrapStdError(cause, code, msg)
	// internal errors already start with msg
	if strings.HasPrefix(cause.Error(), msg) {
		err.Message = code
	}
	return err
}

// wrapError converts errors raised by the runtime into the public taxonomy.
// Errors that already carry a code pass through unchanged.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*cuserr.CustomError); ok {
		return err
	}

	var (
		syntaxErr   *internal.SyntaxError
		resErr      *internal.ResolutionError
		evalErr     *internal.EvaluationError
		registryErr *internal.RegistryError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return NewSyntaxError(syntaxErr.Message, syntaxErr.Fragment, syntaxErr.Source, err)
	case errors.As(err, &resErr):
		return NewResolutionError(resErr.Message, resErr.Type, resErr.Source, resErr.Suggestions, err)
	case errors.As(err, &evalErr):
		return NewEvaluationError(evalErr.Message, evalErr.Operator, evalErr.Expression, err)
	case errors.As(err, &registryErr):
		return NewRegistryError(registryErr.Message, registryErr.Name, err)
	default:
		return err
	}
}
