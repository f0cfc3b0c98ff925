package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/itsatony/go-vexpr"
)

type resolveCmd struct {
	Source    string `arg:"" optional:"" help:"String to resolve, or '-' for stdin"`
	Data      string `help:"YAML scope data file" short:"d"`
	Start     string `help:"Override the start delimiter"`
	TypeDelim string `help:"Override the type delimiter" name:"type-delim"`
	End       string `help:"Override the end delimiter"`
}

// Run executes the resolve command.
func (c *resolveCmd) Run(env *cliEnv) error {
	source, err := sourceText(c.Source, env.stdin)
	if err != nil {
		return err
	}
	vctx, err := loadData(c.Data, env.stdin, env.logger)
	if err != nil {
		return err
	}
	engine, err := env.engine()
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	ctx := context.Background()
	var v any
	if c.Start != "" || c.TypeDelim != "" || c.End != "" {
		v, err = engine.ResolveWithDelimiters(ctx, vctx, source, c.Start, c.TypeDelim, c.End)
	} else {
		v, err = engine.Resolve(ctx, vctx, source)
	}
	if err != nil {
		return newCLIError(ExitCodeError, ErrMsgResolveFailed, err)
	}
	if v == nil {
		v = ""
	}
	fmt.Fprintf(env.stdout, FmtValueLine, fmt.Sprint(v))
	return nil
}

type evalCmd struct {
	Expression string `arg:"" optional:"" help:"Expression to evaluate, or '-' for stdin"`
	Data       string `help:"YAML scope data file" short:"d"`
	ExitStatus bool   `help:"Exit with status 1 when the expression is false" short:"e"`
}

// Run executes the eval command.
func (c *evalCmd) Run(env *cliEnv) error {
	infix, err := sourceText(c.Expression, env.stdin)
	if err != nil {
		return err
	}
	vctx, err := loadData(c.Data, env.stdin, env.logger)
	if err != nil {
		return err
	}
	engine, err := env.engine()
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	ok, err := engine.Evaluate(context.Background(), vctx, infix)
	if err != nil {
		return newCLIError(ExitCodeError, ErrMsgEvalFailed, err)
	}
	fmt.Fprintf(env.stdout, FmtValueLine, strconv.FormatBool(ok))
	if !ok && c.ExitStatus {
		return &cliError{code: ExitCodeError}
	}
	return nil
}

type compileCmd struct {
	Expression string `arg:"" optional:"" help:"Expression to compile, or '-' for stdin"`
}

// Run executes the compile command.
func (c *compileCmd) Run(env *cliEnv) error {
	infix, err := sourceText(c.Expression, env.stdin)
	if err != nil {
		return err
	}
	engine, err := env.engine()
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	expr, err := engine.Compile(infix)
	if err != nil {
		return newCLIError(ExitCodeValidationError, ErrMsgCompileFailed, err)
	}
	fmt.Fprintf(env.stdout, FmtValueLine, expr.String())
	fmt.Fprintf(env.stdout, CompileFmtFunctions, expr.FunctionCount())
	return nil
}

type nvpCmd struct {
	Source        string `arg:"" optional:"" help:"Name/value pairs, or '-' for stdin"`
	DefaultName   string `help:"Name given to a leading bare value" name:"default-name"`
	RequireQuotes bool   `help:"Reject unquoted values" name:"require-quotes" short:"q"`
}

// Run executes the nvp command.
func (c *nvpCmd) Run(env *cliEnv) error {
	source, err := sourceText(c.Source, env.stdin)
	if err != nil {
		return err
	}
	engine, err := env.engine()
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	pairs, err := engine.ParseNameValuePairs(source, vexpr.NVPOptions{
		DefaultName:   c.DefaultName,
		RequireQuotes: c.RequireQuotes,
	})
	if err != nil {
		return newCLIError(ExitCodeValidationError, ErrMsgNVPFailed, err)
	}
	for _, p := range pairs {
		fmt.Fprintf(env.stdout, FmtValueLine, p.String())
	}
	return nil
}
