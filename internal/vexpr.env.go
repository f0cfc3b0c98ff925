package internal

import (
	"context"
	"fmt"
	"strings"
)

// Host is the value-lookup capability owned by the embedding application.
// It exposes named scopes and the template parameters used by #{key}.
type Host interface {
	// Lookup returns the value stored under key in scope.
	Lookup(scope, key string) (any, bool)
	// Scopes returns a snapshot of every scope, keyed by scope name.
	Scopes() map[string]map[string]any
	// Param returns a template parameter.
	Param(key string) (any, bool)
	// ParamCount returns the number of template parameters.
	ParamCount() int
}

// Env is the per-call state threaded through data sources, functions and
// the evaluator. It is passed by value; Nested returns a deeper copy.
type Env struct {
	Host        Host
	Substituter *Substituter
	Depth       int
}

// Nested returns a copy of the env one level deeper.
func (e Env) Nested() Env {
	e.Depth++
	return e
}

// Resolve runs substitution over s. Without a substituter s is returned.
func (e Env) Resolve(ctx context.Context, s string) (any, error) {
	if e.Substituter == nil {
		return s, nil
	}
	return e.Substituter.Resolve(ctx, e.Nested(), s)
}

// Lookup reads key from scope on the host, if there is one.
func (e Env) Lookup(scope, key string) (any, bool) {
	if e.Host == nil {
		return nil, false
	}
	return e.Host.Lookup(scope, key)
}

// Stringify converts a resolved value to its string form. nil is empty.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return StringValueEmpty
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// IsTruthy applies the truthiness rule: nil, "" and any casing of "false"
// are false, everything else is true.
func IsTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	default:
		s := Stringify(val)
		return s != StringValueEmpty && !strings.EqualFold(s, LiteralFalse)
	}
}
