package vexpr

import (
	"context"
	"strings"

	"github.com/itsatony/go-vexpr/internal"
)

// Function is a named expression function such as equals(a,b). A fresh
// instance is created by its factory for every occurrence in a compiled
// expression and receives that occurrence's raw argument strings.
type Function interface {
	// Arguments returns the raw argument strings.
	Arguments() []string
	// SetArguments is called once, right after the instance is created.
	SetArguments(args []string)
	// Evaluate returns the boolean result used by &, | and !.
	Evaluate(ctx context.Context, call *Call) (bool, error)
	// Text returns the string form used by =, <, >, % and /.
	Text(ctx context.Context, call *Call) (string, error)
}

// FunctionFactory creates a Function instance.
type FunctionFactory func() Function

// Call is the per-evaluation state handed to a Function.
type Call struct {
	env  internal.Env
	vctx *Context
}

// Context returns the context the expression is evaluated against.
func (c *Call) Context() *Context {
	return c.vctx
}

// Resolve substitutes the $type{key} tokens of s, typically an argument.
func (c *Call) Resolve(ctx context.Context, s string) (any, error) {
	return c.env.Resolve(ctx, s)
}

// Func represents a custom function that can be used in expressions.
type Func struct {
	// Name is the function identifier used in expressions (e.g., "myFunc" for myFunc(x))
	Name string
	// MinArgs is the minimum number of arguments required
	MinArgs int
	// MaxArgs is the maximum number of arguments allowed (-1 for variadic)
	MaxArgs int
	// Raw passes the argument strings to Fn without resolving them
	Raw bool
	// Fn is the function implementation
	Fn func(args []any) (any, error)
}

// RegisterFunc registers a custom function for use in expressions.
//
// Example:
//
//	engine.RegisterFunc(&vexpr.Func{
//	    Name:    "longer",
//	    MinArgs: 2,
//	    MaxArgs: 2,
//	    Fn: func(args []any) (any, error) {
//	        return len(fmt.Sprint(args[0])) > len(fmt.Sprint(args[1])), nil
//	    },
//	})
//
// The function can then be used in expressions:
//
//	longer($attribute{name},abc)&!empty($session{user})
func (e *Engine) RegisterFunc(f *Func) error {
	if f == nil {
		return NewRegistryError(ErrMsgNilFunc, StringValueEmpty, nil)
	}
	if f.Fn == nil {
		return NewRegistryError(ErrMsgNilFuncImpl, f.Name, nil)
	}
	spec := *f
	return e.RegisterFunction(f.Name, func() Function {
		return &funcFunction{spec: &spec}
	})
}

// MustRegisterFunc registers a custom function and panics on error.
func (e *Engine) MustRegisterFunc(f *Func) {
	if err := e.RegisterFunc(f); err != nil {
		panic(err)
	}
}

// RegisterFunction registers a Function factory under name. The factory is
// called once during registration and must not return nil.
func (e *Engine) RegisterFunction(name string, factory FunctionFactory) error {
	if factory == nil {
		return NewRegistryError(ErrMsgNilFunc, name, nil)
	}
	err := e.funcs.Register(name, func() internal.Function {
		fn := factory()
		if fn == nil {
			return nil
		}
		return &functionAdapter{fn: fn, name: name}
	})
	return wrapError(err)
}

// UnregisterFunc removes a function. It reports whether name was registered.
func (e *Engine) UnregisterFunc(name string) bool {
	return e.funcs.Unregister(name)
}

// HasFunc checks if a function is registered with the given name.
func (e *Engine) HasFunc(name string) bool {
	return e.funcs.Has(name)
}

// ListFuncs returns all registered function names.
func (e *Engine) ListFuncs() []string {
	return e.funcs.List()
}

// FuncCount returns the number of registered functions.
func (e *Engine) FuncCount() int {
	return len(e.funcs.List())
}

// functionAdapter adapts the public Function interface to the internal one.
type functionAdapter struct {
	fn   Function
	name string
}

func (a *functionAdapter) Arguments() []string {
	return a.fn.Arguments()
}

func (a *functionAdapter) SetArguments(args []string) {
	a.fn.SetArguments(args)
}

func (a *functionAdapter) Evaluate(ctx context.Context, env internal.Env) (bool, error) {
	call, err := newCall(env, a.name)
	if err != nil {
		return false, err
	}
	return a.fn.Evaluate(ctx, call)
}

func (a *functionAdapter) Text(ctx context.Context, env internal.Env) (string, error) {
	call, err := newCall(env, a.name)
	if err != nil {
		return StringValueEmpty, err
	}
	return a.fn.Text(ctx, call)
}

func newCall(env internal.Env, name string) (*Call, error) {
	vctx, err := hostContext(env, name)
	if err != nil {
		return nil, err
	}
	return &Call{env: env, vctx: vctx}, nil
}

// funcFunction runs a Func for one occurrence.
type funcFunction struct {
	spec *Func
	args []string
}

func (f *funcFunction) Arguments() []string {
	return append([]string(nil), f.args...)
}

func (f *funcFunction) SetArguments(args []string) {
	f.args = append([]string(nil), args...)
}

func (f *funcFunction) Evaluate(ctx context.Context, call *Call) (bool, error) {
	v, err := f.call(ctx, call)
	if err != nil {
		return false, err
	}
	return internal.IsTruthy(v), nil
}

func (f *funcFunction) Text(ctx context.Context, call *Call) (string, error) {
	v, err := f.call(ctx, call)
	if err != nil {
		return StringValueEmpty, err
	}
	return internal.Stringify(v), nil
}

func (f *funcFunction) call(ctx context.Context, call *Call) (any, error) {
	n := len(f.args)
	if n < f.spec.MinArgs || (f.spec.MaxArgs != FuncVariadic && n > f.spec.MaxArgs) {
		return nil, internal.NewResolutionError(ErrMsgFuncArgCount, f.spec.Name, strings.Join(f.args, string(internal.ArgumentSeparator)), nil)
	}

	args := make([]any, n)
	for i, raw := range f.args {
		if f.spec.Raw {
			args[i] = raw
			continue
		}
		v, err := call.Resolve(ctx, raw)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	v, err := f.spec.Fn(args)
	if err != nil {
		return nil, internal.NewResolutionError(ErrMsgFuncFailed, f.spec.Name, strings.Join(f.args, string(internal.ArgumentSeparator)), err)
	}
	return v, nil
}
