package vexpr

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/itsatony/go-vexpr/internal"
)

// Engine is the main entry point for substitution and expression
// evaluation. It owns the data source and function registries and is safe
// for concurrent use once configured.
type Engine struct {
	sources     *internal.SourceRegistry
	funcs       *internal.FunctionRegistry
	compiler    *internal.Compiler
	evaluator   *internal.Evaluator
	substituter *internal.Substituter
	config      *engineConfig
	logger      *zap.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	funcs := internal.NewFunctionRegistry(logger)
	sources := internal.NewSourceRegistry(logger)
	compiler := internal.NewCompiler(funcs, logger)
	evaluator := internal.NewEvaluator(logger)

	if config.builtins {
		if err := internal.RegisterBuiltinFunctions(funcs); err != nil {
			return nil, wrapError(err)
		}
		var bundles internal.MessageLookup
		if config.bundles != nil {
			bundles = config.bundles
		}
		if err := internal.RegisterBuiltinSources(sources, compiler, evaluator, bundles, logger); err != nil {
			return nil, wrapError(err)
		}
	}

	substituter := internal.NewSubstituter(sources, internal.SubstituterConfig{
		Delimiters: internal.Delimiters{
			Start:     config.start,
			TypeDelim: config.typeDelim,
			End:       config.end,
		},
		MaxDepth:       config.maxDepth,
		MaxSuggestions: config.maxSuggestions,
	}, logger)

	logger.Debug(LogMsgEngineCreated,
		zap.Int(LogFieldCount, sources.Count()),
		zap.Int(LogFieldMaxDepth, config.maxDepth),
	)

	return &Engine{
		sources:     sources,
		funcs:       funcs,
		compiler:    compiler,
		evaluator:   evaluator,
		substituter: substituter,
		config:      config,
		logger:      logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Resolve substitutes every $type{key} token in source, then merges #{key}
// template parameters. When one token spans the whole of source its value
// is returned with its native type; otherwise the result is a string. A nil
// vctx is treated as an empty context.
func (e *Engine) Resolve(ctx context.Context, vctx *Context, source string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.logger.Debug(LogMsgResolveStart, zap.Int(LogFieldSourceLength, len(source)))
	v, err := e.substituter.Resolve(ctx, e.env(vctx), source)
	return v, wrapError(err)
}

// ResolveString is Resolve with the result converted to a string. nil
// becomes the empty string.
func (e *Engine) ResolveString(ctx context.Context, vctx *Context, source string) (string, error) {
	v, err := e.Resolve(ctx, vctx, source)
	if err != nil {
		return StringValueEmpty, err
	}
	return internal.Stringify(v), nil
}

// ResolveWithDelimiters is Resolve with a one-off token shape, for example
// "$", "(" and ")". Empty delimiters fall back to the engine's.
func (e *Engine) ResolveWithDelimiters(ctx context.Context, vctx *Context, source, start, typeDelim, end string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := internal.Delimiters{Start: start, TypeDelim: typeDelim, End: end}
	v, err := e.substituter.ResolveWith(ctx, e.env(vctx), source, d)
	return v, wrapError(err)
}

// ResolveValue resolves strings, and slices of values element by element
// into new slices. Other values are returned unchanged.
func (e *Engine) ResolveValue(ctx context.Context, vctx *Context, v any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := e.substituter.ResolveValue(ctx, e.env(vctx), v)
	return out, wrapError(err)
}

// Compile compiles an infix expression. The result can be evaluated many
// times against different contexts.
func (e *Engine) Compile(infix string) (*Expression, error) {
	ce, err := e.compiler.Compile(infix)
	if err != nil {
		return nil, wrapError(err)
	}
	return &Expression{compiled: ce, engine: e}, nil
}

// MustCompile compiles an expression and panics on error.
func (e *Engine) MustCompile(infix string) *Expression {
	expr, err := e.Compile(infix)
	if err != nil {
		panic(err)
	}
	return expr
}

// Evaluate compiles and evaluates infix in one step.
func (e *Engine) Evaluate(ctx context.Context, vctx *Context, infix string) (bool, error) {
	expr, err := e.Compile(infix)
	if err != nil {
		return false, err
	}
	return expr.Evaluate(ctx, vctx)
}

// ApplyOutput stores value as directed by an output mapping, rejecting
// targets outside the engine's output types.
func (e *Engine) ApplyOutput(vctx *Context, pair NameValuePair, value any) error {
	if !pair.IsOutputMapping() {
		return NewSyntaxError(ErrMsgNotOutputMapping, pair.Name(), pair.String(), nil)
	}
	if !slices.Contains(e.OutputTypes(), pair.Target()) {
		return NewSyntaxError(ErrMsgUnknownOutputTarget, pair.Target(), pair.String(), nil)
	}
	e.logger.Debug(LogMsgOutputApplied,
		zap.String(LogFieldType, pair.Target()),
		zap.String(LogFieldKey, pair.Value()),
	)
	return vctx.ApplyOutput(pair, value)
}

// OutputTypes returns the scopes accepted as output mapping targets.
func (e *Engine) OutputTypes() []string {
	if len(e.config.outputTypes) > 0 {
		return slices.Clone(e.config.outputTypes)
	}
	return internal.DefaultOutputTypes()
}

// Delimiters returns the configured start, type and end delimiters.
func (e *Engine) Delimiters() (start, typeDelim, end string) {
	d := e.substituter.Delimiters()
	return d.Start, d.TypeDelim, d.End
}

// BundleStore returns the configured bundle store, or nil.
func (e *Engine) BundleStore() BundleStore {
	return e.config.bundles
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

func (e *Engine) env(vctx *Context) internal.Env {
	if vctx == nil {
		vctx = NewContext()
	}
	return internal.Env{Host: vctx, Substituter: e.substituter}
}

// Expression is a compiled expression.
type Expression struct {
	compiled *internal.CompiledExpression
	engine   *Engine
}

// Evaluate runs the expression against vctx.
func (x *Expression) Evaluate(ctx context.Context, vctx *Context) (bool, error) {
	if x == nil || x.compiled == nil {
		return false, NewEvaluationError(ErrMsgExpressionNil, StringValueEmpty, StringValueEmpty, nil)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	x.engine.logger.Debug(LogMsgEvaluateStart, zap.String(LogFieldInfix, x.compiled.Infix()))
	ok, err := x.engine.evaluator.Evaluate(ctx, x.engine.env(vctx), x.compiled)
	if err != nil {
		return false, wrapError(err)
	}
	return ok, nil
}

// Infix returns the whitespace-stripped source expression.
func (x *Expression) Infix() string {
	return x.compiled.Infix()
}

// Postfix returns the compiled instruction sequence with every operand
// written out as in the source.
func (x *Expression) Postfix() string {
	return x.compiled.Postfix()
}

// String returns "infix = postfix".
func (x *Expression) String() string {
	return x.compiled.String()
}

// Operands returns the source form of each value and function operand, in
// evaluation order.
func (x *Expression) Operands() []string {
	ops := x.compiled.Operands()
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.String()
	}
	return out
}

// FunctionCount returns the number of named function calls.
func (x *Expression) FunctionCount() int {
	n := 0
	for _, op := range x.compiled.Operands() {
		if op.Kind() == internal.OperandNamed {
			n++
		}
	}
	return n
}
