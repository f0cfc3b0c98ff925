package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	exitCode := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (exitCode int) {
	if len(args) == 0 {
		args = []string{"--help"}
	}

	// kong reports --help and fatal parse errors through its exit hook.
	defer func() {
		if r := recover(); r != nil {
			code, ok := r.(kongExit)
			if !ok {
				panic(r)
			}
			exitCode = int(code)
		}
	}()

	env := &cliEnv{stdin: stdin, stdout: stdout, stderr: stderr}
	parser, ktx, err := parse(env, args)
	if err != nil {
		if parser != nil {
			parser.Errorf("%s", err)
		} else {
			fmt.Fprintf(stderr, FmtValueLine, err)
		}
		return ExitCodeUsageError
	}

	if err := ktx.Run(); err != nil {
		return report(stderr, err)
	}
	return ExitCodeSuccess
}
