package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/itsatony/go-vexpr"
)

// CLI is the top-level command-line interface for vexpr.
type CLI struct {
	Globals globals `embed:""`

	Resolve resolveCmd `cmd:"" help:"Substitute $type{key} and #{key} tokens in a string"`
	Eval    evalCmd    `cmd:"" help:"Evaluate a boolean expression"`
	Compile compileCmd `cmd:"" help:"Show the postfix form of an expression"`
	NVP     nvpCmd     `cmd:"" name:"nvp" help:"Parse name/value pairs"`
	Lint    lintCmd    `cmd:"" help:"Compile every expression of a file, one per line"`
	Version versionCmd `cmd:"" help:"Show version information"`
}

type globals struct {
	Config  string `help:"YAML engine configuration file" short:"c"`
	Verbose bool   `help:"Write debug logs to stderr" short:"v"`
}

// cliEnv carries the process streams and global flags into commands.
type cliEnv struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cli    *CLI
	logger *zap.Logger
}

// kongExit is raised by the kong exit hook and recovered in run.
type kongExit int

// cliError carries an exit code and a message out of a command.
type cliError struct {
	code int
	msg  string
	err  error
}

func (e *cliError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return fmt.Sprintf(FmtErrorCause, e.msg, e.err)
}

func (e *cliError) Unwrap() error {
	return e.err
}

func newCLIError(code int, msg string, err error) error {
	return &cliError{code: code, msg: msg, err: err}
}

func parse(env *cliEnv, args []string) (*kong.Kong, *kong.Context, error) {
	var cli CLI
	env.cli = &cli

	parser, err := kong.New(&cli,
		kong.Name(CLIName),
		kong.Description(CLIDescription),
		kong.Writers(env.stdout, env.stderr),
		kong.Exit(func(code int) { panic(kongExit(code)) }),
		kong.Bind(env),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)
	if err != nil {
		return nil, nil, err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return parser, nil, err
	}

	env.logger = newLogger(env.stderr, cli.Globals.Verbose)
	env.logger.Debug(LogMsgCommandStart, zap.String(LogFieldCommand, ktx.Command()))
	return parser, ktx, nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// engine builds an Engine from the --config file, if any.
func (env *cliEnv) engine() (*vexpr.Engine, error) {
	var cfg *vexpr.Config
	if path := env.cli.Globals.Config; path != "" {
		var err error
		if cfg, err = vexpr.LoadConfig(path); err != nil {
			return nil, newCLIError(ExitCodeInputError, ErrMsgConfigFailed, err)
		}
	}
	opts, err := cfg.Options(env.logger)
	if err != nil {
		return nil, newCLIError(ExitCodeInputError, ErrMsgConfigFailed, err)
	}
	engine, err := vexpr.New(opts...)
	if err != nil {
		return nil, newCLIError(ExitCodeError, ErrMsgEngineFailed, err)
	}
	return engine, nil
}

// closeEngine releases the bundle store opened from configuration.
func closeEngine(engine *vexpr.Engine) {
	if store := engine.BundleStore(); store != nil {
		_ = store.Close()
	}
}

func report(stderr io.Writer, err error) int {
	var cerr *cliError
	if errors.As(err, &cerr) {
		if msg := cerr.Error(); msg != "" {
			fmt.Fprintf(stderr, FmtValueLine, msg)
		}
		return cerr.code
	}
	fmt.Fprintf(stderr, FmtValueLine, err)
	return ExitCodeError
}
