package internal

import (
	"fmt"
	"strings"
)

// SyntaxError is raised by the cursor and the expression compiler when
// the input is structurally malformed. It is never recovered from.
type SyntaxError struct {
	Message  string
	Fragment string
	Source   string
	Cause    error
}

// NewSyntaxError creates a syntax error for the offending fragment.
func NewSyntaxError(message, fragment, source string) *SyntaxError {
	return &SyntaxError{
		Message:  message,
		Fragment: fragment,
		Source:   source,
	}
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	if e.Source != "" && e.Source != e.Fragment {
		return fmt.Sprintf(ErrFmtWithSource, e.Message, e.Fragment, e.Source)
	}
	if e.Fragment != "" {
		return fmt.Sprintf(ErrFmtWithFragment, e.Message, e.Fragment)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *SyntaxError) Unwrap() error {
	return e.Cause
}

// ResolutionError is raised when a substitution cannot be resolved, for
// example an unregistered type keyword or a failing data source.
type ResolutionError struct {
	Message     string
	Type        string
	Source      string
	Suggestions []string
	Cause       error
}

// NewResolutionError creates a resolution error.
func NewResolutionError(message, typ, source string, cause error) *ResolutionError {
	return &ResolutionError{
		Message: message,
		Type:    typ,
		Source:  source,
		Cause:   cause,
	}
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(ErrFmtWithSource, e.Message, e.Type, e.Source))
	if len(e.Suggestions) > 0 {
		sb.WriteString(ErrMsgDidYouMean)
		sb.WriteString(strings.Join(e.Suggestions, FmtSuggestionSep))
		sb.WriteString(FmtSuggestionEnd)
	}
	if e.Cause != nil {
		sb.WriteString(FmtCauseSep)
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// EvaluationError is raised by the stack evaluator. It identifies the
// operator being applied and the reconstructed expression.
type EvaluationError struct {
	Message    string
	Operator   string
	Expression string
	Cause      error
}

// NewEvaluationError creates an evaluation error.
func NewEvaluationError(message, operator, expression string, cause error) *EvaluationError {
	return &EvaluationError{
		Message:    message,
		Operator:   operator,
		Expression: expression,
		Cause:      cause,
	}
}

// Error implements the error interface
func (e *EvaluationError) Error() string {
	msg := fmt.Sprintf(ErrFmtEvaluation, e.Message, e.Operator, e.Expression)
	if e.Cause != nil {
		return fmt.Sprintf(ErrFmtWithCause, msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// RegistryError represents a registry operation error
type RegistryError struct {
	Message string
	Name    string
}

// NewRegistryError creates a new registry error
func NewRegistryError(message, name string) *RegistryError {
	return &RegistryError{
		Message: message,
		Name:    name,
	}
}

// Error implements the error interface
func (e *RegistryError) Error() string {
	if e.Name != StringValueEmpty {
		return fmt.Sprintf(ErrFmtWithFragment, e.Message, e.Name)
	}
	return e.Message
}

// Suggestion formatting
const (
	ErrMsgDidYouMean = " (did you mean: "
	FmtSuggestionSep = ", "
	FmtSuggestionEnd = "?)"
	FmtCauseSep      = ": "
)

// Syntax error messages
const (
	ErrMsgUnterminatedQuote   = "unterminated quoted value"
	ErrMsgUnterminatedToken   = "unable to find terminator, read to end of input"
	ErrMsgMissingEquals       = "'=' or ':' missing for name value pair"
	ErrMsgMissingQuotes       = "name value pair is missing single or double quotes enclosing its value"
	ErrMsgMissingOutputDollar = "'$' missing for output mapping"
	ErrMsgInvalidOutputType   = "invalid output type for output mapping"
	ErrMsgMissingOutputBrace  = "'{' missing for output mapping"
	ErrMsgListMissingQuotes   = "list or array value is missing single or double quotes"
	ErrMsgUnterminatedList    = "unterminated list or array value"
	ErrMsgMissingLeftParen    = "function is expected to have a '(' immediately following it"
	ErrMsgUnterminatedArgs    = "function arguments are missing a closing ')'"
	ErrMsgUnterminatedParam   = "unterminated #{} expression"
)

// Resolution error messages
const (
	ErrMsgInvalidType         = "invalid type in value"
	ErrMsgSourceFailed        = "data source failed"
	ErrMsgMaxDepthExceeded    = "maximum substitution depth exceeded"
	ErrMsgInvalidInt          = "value is not a valid integer"
	ErrMsgResourceKeyFormat   = "resource key is not in format [bundleID].[bundleKey]"
	ErrMsgExprCompileFailed   = "expr expression failed to compile"
	ErrMsgExprRunFailed       = "expr expression failed to run"
	ErrMsgNoHost              = "no host context available"
	ErrMsgUnknownScope        = "unknown scope"
	ErrMsgFunctionArgCount    = "wrong number of function arguments"
	ErrMsgFunctionArgInvalid  = "invalid function argument"
	ErrMsgFunctionInstantiate = "unable to instantiate function"
)

// Evaluation error messages
const (
	ErrMsgStackUnderflow    = "unable to evaluate, stack underflow"
	ErrMsgMissingFunction   = "found function marker without corresponding function"
	ErrMsgValuesLeftOnStack = "unable to evaluate, values left on the stack"
	ErrMsgNotAnInteger      = "operand is not an integer"
	ErrMsgDivideByZero      = "division by zero"
	ErrMsgInvalidPattern    = "invalid regular expression"
	ErrMsgUnknownOperator   = "unknown operator"
)

// Registry error messages
const (
	ErrMsgNilSource       = "data source cannot be nil"
	ErrMsgSourceExists    = "data source already registered for type"
	ErrMsgNilFactory      = "function factory cannot be nil"
	ErrMsgEmptyFuncName   = "function name cannot be empty"
	ErrMsgInvalidFuncName = "function name cannot contain operator characters"
	ErrMsgFactoryNil      = "function factory returned nil"
	ErrMsgFuncExists      = "function already registered"
)
