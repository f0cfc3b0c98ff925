package internal

import (
	"context"
	"strconv"
	"strings"
)

// argHolder stores the raw argument strings of a function.
type argHolder struct {
	args []string
}

func (h *argHolder) Arguments() []string {
	return append([]string(nil), h.args...)
}

func (h *argHolder) SetArguments(args []string) {
	h.args = append([]string(nil), args...)
}

// resolved resolves every argument, requiring exactly want of them.
func (h *argHolder) resolved(ctx context.Context, env Env, name string, want int) ([]any, error) {
	if len(h.args) != want {
		return nil, NewResolutionError(ErrMsgFunctionArgCount, name, strings.Join(h.args, string(ArgumentSeparator)), nil)
	}
	out := make([]any, len(h.args))
	for i, a := range h.args {
		v, err := env.Resolve(ctx, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// boolText renders a boolean function result as its keyword.
func boolText(b bool, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(b), nil
}

// EmptyFunction is true when its single argument resolves to nil or "".
type EmptyFunction struct{ argHolder }

func NewEmptyFunction() Function { return &EmptyFunction{} }

func (f *EmptyFunction) Evaluate(ctx context.Context, env Env) (bool, error) {
	vals, err := f.resolved(ctx, env, FuncNameEmpty, 1)
	if err != nil {
		return false, err
	}
	return Stringify(vals[0]) == StringValueEmpty, nil
}

func (f *EmptyFunction) Text(ctx context.Context, env Env) (string, error) {
	return boolText(f.Evaluate(ctx, env))
}

// EqualsFunction compares the string forms of two arguments literally,
// unlike the = operator which matches a regular expression.
type EqualsFunction struct{ argHolder }

func NewEqualsFunction() Function { return &EqualsFunction{} }

func (f *EqualsFunction) Evaluate(ctx context.Context, env Env) (bool, error) {
	vals, err := f.resolved(ctx, env, FuncNameEquals, 2)
	if err != nil {
		return false, err
	}
	return Stringify(vals[0]) == Stringify(vals[1]), nil
}

func (f *EqualsFunction) Text(ctx context.Context, env Env) (string, error) {
	return boolText(f.Evaluate(ctx, env))
}

// ContainsFunction is true when the first argument contains the second.
type ContainsFunction struct{ argHolder }

func NewContainsFunction() Function { return &ContainsFunction{} }

func (f *ContainsFunction) Evaluate(ctx context.Context, env Env) (bool, error) {
	vals, err := f.resolved(ctx, env, FuncNameContains, 2)
	if err != nil {
		return false, err
	}
	return strings.Contains(Stringify(vals[0]), Stringify(vals[1])), nil
}

func (f *ContainsFunction) Text(ctx context.Context, env Env) (string, error) {
	return boolText(f.Evaluate(ctx, env))
}

// HasFunction checks whether a scope holds a key. Its arguments are name
// value pairs: has(key='k',scope='session'). A bare first argument is the
// key and the scope defaults to attribute.
type HasFunction struct{ argHolder }

func NewHasFunction() Function { return &HasFunction{} }

func (f *HasFunction) Evaluate(ctx context.Context, env Env) (bool, error) {
	if len(f.args) == 0 || len(f.args) > 2 {
		return false, NewResolutionError(ErrMsgFunctionArgCount, FuncNameHas, strings.Join(f.args, string(ArgumentSeparator)), nil)
	}

	key, scope := StringValueEmpty, TypeAttribute
	for i, arg := range f.args {
		defaultName := StringValueEmpty
		if i == 0 {
			defaultName = ArgKey
		}
		pair, err := NewStringCursor(arg, nil).NameValuePair(defaultName, false, StringValueEmpty)
		if err != nil {
			return false, err
		}
		switch pair.Name() {
		case ArgKey:
			key = pair.Value()
		case ArgScope:
			scope = pair.Value()
		default:
			return false, NewResolutionError(ErrMsgFunctionArgInvalid, FuncNameHas, arg, nil)
		}
	}

	resolvedKey, err := env.Resolve(ctx, key)
	if err != nil {
		return false, err
	}
	v, ok := env.Lookup(scope, Stringify(resolvedKey))
	return ok && v != nil, nil
}

func (f *HasFunction) Text(ctx context.Context, env Env) (string, error) {
	return boolText(f.Evaluate(ctx, env))
}

// RegisterBuiltinFunctions registers every built-in named function.
func RegisterBuiltinFunctions(r *FunctionRegistry) error {
	builtins := map[string]FunctionFactory{
		FuncNameEmpty:    NewEmptyFunction,
		FuncNameEquals:   NewEqualsFunction,
		FuncNameContains: NewContainsFunction,
		FuncNameHas:      NewHasFunction,
	}
	for name, factory := range builtins {
		if err := r.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}
