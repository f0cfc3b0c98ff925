package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/itsatony/go-vexpr"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, newCLIError(ExitCodeInputError, ErrMsgReadStdinFailed, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newCLIError(ExitCodeInputError, ErrMsgReadFileFailed, err)
	}
	return data, nil
}

// sourceText returns arg, or stdin when arg is empty or "-". A single
// trailing newline read from input is dropped.
func sourceText(arg string, stdin io.Reader) (string, error) {
	if arg != "" && arg != InputSourceStdin {
		return arg, nil
	}
	data, err := readInput(InputSourceStdin, stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(data), FmtNewline), nil
}

// loadData builds a context from a YAML scope data file. Top-level keys
// name scopes; the "params" key holds #{key} template parameters.
//
//	attribute:
//	  name: Bob
//	session:
//	  user: alice
//	params:
//	  who: Ann
func loadData(path string, stdin io.Reader, logger *zap.Logger) (*vexpr.Context, error) {
	if path == "" {
		return vexpr.NewContext(), nil
	}
	raw, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, newCLIError(ExitCodeInputError, ErrMsgInvalidData, err)
	}

	scopes := make(map[string]map[string]any, len(doc))
	var params map[string]any
	for name, v := range doc {
		data, ok := v.(map[string]any)
		if !ok && v != nil {
			return nil, newCLIError(ExitCodeInputError, ErrMsgInvalidData, fmt.Errorf(FmtErrorCause, ErrMsgInvalidScope, name))
		}
		if name == DataKeyParams {
			params = data
			continue
		}
		scopes[name] = data
	}

	logger.Debug(LogMsgDataLoaded, zap.String(LogFieldPath, path), zap.Int(LogFieldScopes, len(scopes)))
	return vexpr.NewContextWithScopes(scopes, params), nil
}
