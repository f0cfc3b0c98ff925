package main

// Command names
const (
	CmdNameResolve = "resolve"
	CmdNameEval    = "eval"
	CmdNameCompile = "compile"
	CmdNameNVP     = "nvp"
	CmdNameLint    = "lint"
	CmdNameVersion = "version"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Scope data file keys
const (
	DataKeyParams = "params"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Error messages - ALL must be constants
const (
	ErrMsgReadFileFailed   = "failed to read file"
	ErrMsgReadStdinFailed  = "failed to read from stdin"
	ErrMsgInvalidData      = "invalid scope data file"
	ErrMsgInvalidScope     = "scope data must be a mapping"
	ErrMsgConfigFailed     = "failed to load configuration"
	ErrMsgEngineFailed     = "failed to create engine"
	ErrMsgResolveFailed    = "substitution failed"
	ErrMsgEvalFailed       = "evaluation failed"
	ErrMsgCompileFailed    = "compilation failed"
	ErrMsgNVPFailed        = "name value pair parsing failed"
	ErrMsgLintFailed       = "expressions failed to compile"
	ErrMsgJSONMarshal      = "failed to marshal JSON"
)

// Lint output
const (
	LintFmtPass      = "ok    %d: %s\n"
	LintFmtFail      = "FAIL  %d: %s\n"
	LintFmtError     = "line %d: %w"
	LintFmtSummary   = "%d expression(s), %d error(s)\n"
	LintCommentStart = "#"
)

// Version output
const (
	VersionTextTemplate = "vexpr version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
	VersionsFile        = "versions.yaml"
)

// Compile output
const (
	CompileFmtFunctions = "functions: %d\n"
)

// CLI metadata
const (
	CLIName        = "vexpr"
	CLIDescription = "Substitute $type{key} tokens and evaluate boolean expressions"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorCause = "%s: %v"
	FmtNewline    = "\n"
	FmtValueLine  = "%s\n"
	FmtJSONIndent = "  "
)

// Log messages
const (
	LogMsgCommandStart = "command started"
	LogMsgDataLoaded   = "scope data loaded"
	LogFieldCommand    = "command"
	LogFieldPath       = "path"
	LogFieldScopes     = "scopes"
)
