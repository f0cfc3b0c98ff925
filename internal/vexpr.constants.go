package internal

// Substitution delimiters
const (
	SubStart     = "$"
	SubTypeDelim = "{"
	SubEnd       = "}"
	EscapeChar   = '\\'
)

// Template parameter (#{key}) markers
const (
	ParamOpen       = "#{"
	ParamClose      = '}'
	ParamOpenLen    = 2
	ParamMinTail    = 3 // "#" must be followed by at least "{x}"
	ParamTerminals  = "}[.=><!&|*+-?/%("
	ParamDefaultSep = ","
)

// ForeignMarkupChars marks a $type{...} whose type cannot be a keyword.
// Such spans are left untouched instead of failing resolution.
const ForeignMarkupChars = "<&[#$%()"

// Default limits
const (
	DefaultMaxDepth       = 64
	DefaultMaxSuggestions = 3
)

// Built-in data source type keywords
const (
	TypeDefault          = ""
	TypeAttribute        = "attribute"
	TypeApplication      = "application"
	TypeSession          = "session"
	TypePageSession      = "pageSession"
	TypeRequestParameter = "requestParameter"
	TypeEscape           = "escape"
	TypeEval             = "eval"
	TypeBoolean          = "boolean"
	TypeInt              = "int"
	TypeResource         = "resource"
	TypeEnv              = "env"
	TypeExpr             = "expr"
	TypeStackTrace       = "stackTrace"
)

// Built-in named function names
const (
	FuncNameEmpty    = "empty"
	FuncNameEquals   = "equals"
	FuncNameContains = "contains"
	FuncNameHas      = "has"
)

// Argument names used by the has() function
const (
	ArgKey   = "key"
	ArgScope = "scope"
)

// Boolean literal words
const (
	LiteralTrue  = "true"
	LiteralFalse = "false"
)

// Lexer character classes
const (
	SimpleWhiteSpace   = " \t\r\n"
	ListSeparators     = ",:;"
	DefaultTokenChars  = "_:."
	DefaultNameChars   = "_."
	OutputTargetPrefix = '$'
)

// Comment markers recognised by SkipCommentsAndWhitespace
const (
	CommentBlockEnd = "*/"
	CommentHTMLEnd  = "-->"
)

// Resource bundle key separators
const (
	ResourceKeySep = "."
	ResourceArgSep = ","
	EnvDefaultSep  = ","
)

// Stringified nil
const StringValueEmpty = ""

// Log message constants
const (
	LogMsgRegistryCreated     = "registry created"
	LogMsgSourceRegistered    = "data source registered"
	LogMsgSourceReplaced      = "data source replaced"
	LogMsgSourceRemoved       = "data source removed"
	LogMsgSourceCollision     = "data source collision, keeping first registration"
	LogMsgFuncCollision       = "function collision, keeping first registration"
	LogMsgFuncRegistered      = "function registered"
	LogMsgFuncRemoved         = "function removed"
	LogMsgCompileStart        = "compiling expression"
	LogMsgCompileEnd          = "expression compiled"
	LogMsgEvaluateEnd         = "expression evaluated"
	LogMsgSubstituteStart     = "substitution started"
	LogMsgSubstituteEnd       = "substitution complete"
	LogMsgSourceInvoked       = "data source invoked"
	LogMsgForeignMarkup       = "skipping foreign markup"
	LogMsgParamMerged         = "template parameter merged"
	LogMsgResourceMissing     = "resource key not found, returning key"
	LogMsgResourceNoBundles   = "no bundle store configured, returning key"
	LogMsgCursorCreated       = "cursor created"
	LogMsgFunctionInstantiate = "function instantiated"
)

// Log field names
const (
	LogFieldType      = "type"
	LogFieldKey       = "key"
	LogFieldFunc      = "function"
	LogFieldInfix     = "infix"
	LogFieldPostfix   = "postfix"
	LogFieldFuncCount = "function_count"
	LogFieldResult    = "result"
	LogFieldSource    = "source_length"
	LogFieldDepth     = "depth"
	LogFieldBundle    = "bundle"
	LogFieldParam     = "param"
	LogFieldKind      = "kind"
)

// Registry kinds, used in log fields
const (
	RegistryKindSource   = "data_source"
	RegistryKindFunction = "function"
)

// Error format strings
const (
	ErrFmtWithFragment = "%s: '%s'"
	ErrFmtWithSource   = "%s: '%s' in '%s'"
	ErrFmtWithCause    = "%s: %v"
	ErrFmtEvaluation   = "%s [%s] while evaluating '%s'"
)
