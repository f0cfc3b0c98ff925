package internal

import (
	"context"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"
)

// ScopeSource reads keys from one host scope. Missing keys resolve to nil.
type ScopeSource struct {
	typ   string
	scope string
}

// NewScopeSource creates a data source for typ backed by scope.
func NewScopeSource(typ, scope string) *ScopeSource {
	return &ScopeSource{typ: typ, scope: scope}
}

// Type returns the type keyword.
func (s *ScopeSource) Type() string { return s.typ }

// Value looks key up in the scope.
func (s *ScopeSource) Value(_ context.Context, env Env, key string) (any, error) {
	v, _ := env.Lookup(s.scope, key)
	return v, nil
}

// EscapeSource returns its key verbatim, protecting text from further
// processing.
type EscapeSource struct{}

func (EscapeSource) Type() string { return TypeEscape }

func (EscapeSource) Value(_ context.Context, _ Env, key string) (any, error) {
	return key, nil
}

// BooleanSource parses its key; only a case-insensitive "true" is true.
type BooleanSource struct{}

func (BooleanSource) Type() string { return TypeBoolean }

func (BooleanSource) Value(_ context.Context, _ Env, key string) (any, error) {
	return strings.EqualFold(key, LiteralTrue), nil
}

// IntSource parses its key as an integer.
type IntSource struct{}

func (IntSource) Type() string { return TypeInt }

func (IntSource) Value(_ context.Context, _ Env, key string) (any, error) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return nil, NewResolutionError(ErrMsgInvalidInt, TypeInt, key, err)
	}
	return n, nil
}

// EvalSource compiles its key as a boolean expression and evaluates it.
type EvalSource struct {
	compiler  *Compiler
	evaluator *Evaluator
}

// NewEvalSource creates the eval data source.
func NewEvalSource(compiler *Compiler, evaluator *Evaluator) *EvalSource {
	return &EvalSource{compiler: compiler, evaluator: evaluator}
}

func (s *EvalSource) Type() string { return TypeEval }

// Value returns the bool result of the expression.
func (s *EvalSource) Value(ctx context.Context, env Env, key string) (any, error) {
	ce, err := s.compiler.Compile(key)
	if err != nil {
		return nil, err
	}
	return s.evaluator.Evaluate(ctx, env, ce)
}

// MessageLookup finds a message in a resource bundle.
type MessageLookup interface {
	Message(ctx context.Context, bundle, key string) (string, bool, error)
}

// ResourceSource resolves "bundle.key[,arg0,arg1...]" against a message
// lookup, formatting {0}, {1}... placeholders with the trimmed arguments.
// A missing bundle or key resolves to the key itself.
type ResourceSource struct {
	bundles MessageLookup
	logger  *zap.Logger
}

// NewResourceSource creates the resource data source. bundles may be nil.
func NewResourceSource(bundles MessageLookup, logger *zap.Logger) *ResourceSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceSource{bundles: bundles, logger: logger}
}

func (s *ResourceSource) Type() string { return TypeResource }

func (s *ResourceSource) Value(ctx context.Context, _ Env, key string) (any, error) {
	bundle, rest, ok := strings.Cut(key, ResourceKeySep)
	if !ok {
		return nil, NewResolutionError(ErrMsgResourceKeyFormat, TypeResource, key, nil)
	}
	msgKey, argList, hasArgs := strings.Cut(rest, ResourceArgSep)

	if s.bundles == nil {
		s.logger.Debug(LogMsgResourceNoBundles, zap.String(LogFieldBundle, bundle), zap.String(LogFieldKey, msgKey))
		return key, nil
	}
	msg, found, err := s.bundles.Message(ctx, bundle, msgKey)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Info(LogMsgResourceMissing, zap.String(LogFieldBundle, bundle), zap.String(LogFieldKey, msgKey))
		return key, nil
	}
	if !hasArgs {
		return msg, nil
	}
	return FormatMessage(msg, splitArgs(argList)), nil
}

// splitArgs splits on commas, trimming and dropping empty tokens.
func splitArgs(list string) []string {
	var args []string
	for _, a := range strings.Split(list, ResourceArgSep) {
		if a = strings.TrimSpace(a); a != StringValueEmpty {
			args = append(args, a)
		}
	}
	return args
}

// FormatMessage replaces {0}, {1}... in msg with args.
func FormatMessage(msg string, args []string) string {
	if len(args) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(args)*2)
	for i, a := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", a)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// EnvSource reads process environment variables. The key is "NAME" or
// "NAME,default".
type EnvSource struct{}

func (EnvSource) Type() string { return TypeEnv }

func (EnvSource) Value(_ context.Context, _ Env, key string) (any, error) {
	name, fallback, hasDefault := strings.Cut(key, EnvDefaultSep)
	name = strings.TrimSpace(name)
	if val, ok := os.LookupEnv(name); ok && val != StringValueEmpty {
		return val, nil
	}
	if hasDefault {
		return strings.TrimSpace(fallback), nil
	}
	return StringValueEmpty, nil
}

// ExprSource evaluates its key with expr-lang. Every scope is visible by
// name and request attributes are also visible at the top level.
type ExprSource struct{}

func (ExprSource) Type() string { return TypeExpr }

func (ExprSource) Value(_ context.Context, env Env, key string) (any, error) {
	vars := exprEnv(env)
	program, err := expr.Compile(key, expr.Env(vars), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, NewResolutionError(ErrMsgExprCompileFailed, TypeExpr, key, err)
	}
	out, err := vm.Run(program, vars)
	if err != nil {
		return nil, NewResolutionError(ErrMsgExprRunFailed, TypeExpr, key, err)
	}
	return out, nil
}

func exprEnv(env Env) map[string]any {
	vars := make(map[string]any)
	if env.Host == nil {
		return vars
	}
	scopes := env.Host.Scopes()
	for k, v := range scopes[TypeAttribute] {
		vars[k] = v
	}
	for name, data := range scopes {
		vars[name] = data
	}
	return vars
}

// StackTraceSource returns the key followed by the current goroutine stack.
type StackTraceSource struct{}

func (StackTraceSource) Type() string { return TypeStackTrace }

func (StackTraceSource) Value(_ context.Context, _ Env, key string) (any, error) {
	return key + "\n" + string(debug.Stack()), nil
}

// RegisterBuiltinSources registers every built-in data source.
func RegisterBuiltinSources(r *SourceRegistry, compiler *Compiler, evaluator *Evaluator, bundles MessageLookup, logger *zap.Logger) error {
	sources := []DataSource{
		NewScopeSource(TypeDefault, TypeAttribute),
		NewScopeSource(TypeAttribute, TypeAttribute),
		NewScopeSource(TypeApplication, TypeApplication),
		NewScopeSource(TypeSession, TypeSession),
		NewScopeSource(TypePageSession, TypePageSession),
		NewScopeSource(TypeRequestParameter, TypeRequestParameter),
		EscapeSource{},
		NewEvalSource(compiler, evaluator),
		BooleanSource{},
		IntSource{},
		NewResourceSource(bundles, logger),
		EnvSource{},
		ExprSource{},
		StackTraceSource{},
	}
	for _, s := range sources {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}
