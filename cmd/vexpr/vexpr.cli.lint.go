package main

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
)

type lintCmd struct {
	File    string `help:"File of expressions, one per line, or '-' for stdin" short:"f" default:"-"`
	NoColor bool   `help:"Disable coloured output" name:"no-color"`
	Quiet   bool   `help:"Only print failing lines" short:"q"`
}

// lintResult is the outcome of compiling one line.
type lintResult struct {
	line int
	expr string
	err  error
}

// Run executes the lint command. Blank lines and lines starting with '#'
// are skipped.
func (c *lintCmd) Run(env *cliEnv) error {
	data, err := readInput(c.File, env.stdin)
	if err != nil {
		return err
	}
	engine, err := env.engine()
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	var results []lintResult
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, LintCommentStart) {
			continue
		}
		_, err := engine.Compile(line)
		results = append(results, lintResult{line: n, expr: line, err: err})
	}
	if err := scanner.Err(); err != nil {
		return newCLIError(ExitCodeInputError, ErrMsgReadFileFailed, err)
	}

	merr := c.print(env, results)
	fmt.Fprintf(env.stdout, LintFmtSummary, len(results), merr.Len())
	if err := merr.ErrorOrNil(); err != nil {
		return newCLIError(ExitCodeValidationError, ErrMsgLintFailed, err)
	}
	return nil
}

func (c *lintCmd) print(env *cliEnv, results []lintResult) *multierror.Error {
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed, color.Bold)
	if c.NoColor {
		pass.DisableColor()
		fail.DisableColor()
	}

	merr := &multierror.Error{ErrorFormat: lintErrorFormat}
	for _, r := range results {
		if r.err == nil {
			if !c.Quiet {
				pass.Fprintf(env.stdout, LintFmtPass, r.line, r.expr)
			}
			continue
		}
		fail.Fprintf(env.stdout, LintFmtFail, r.line, r.expr)
		merr = multierror.Append(merr, fmt.Errorf(LintFmtError, r.line, r.err))
	}
	return merr
}

// lintErrorFormat lists one error per line.
func lintErrorFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, FmtNewline)
}
