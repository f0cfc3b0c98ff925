package internal

import (
	"context"
	"strings"
)

// Function is a named plug-in operand. A fresh instance is created for
// every occurrence in an expression and receives the raw argument strings
// found between its parentheses.
type Function interface {
	Arguments() []string
	SetArguments(args []string)
	// Evaluate returns the boolean value of the function.
	Evaluate(ctx context.Context, env Env) (bool, error)
	// Text returns the string form used by =, <, >, % and /.
	Text(ctx context.Context, env Env) (string, error)
}

// FunctionFactory creates a new Function instance.
type FunctionFactory func() Function

// OperandKind identifies an Operand variant.
type OperandKind int

const (
	OperandLiteral OperandKind = iota
	OperandValue
	OperandNamed
)

// Operand is a value pushed onto the evaluation stack: a boolean literal,
// a deferred value lookup, or a named function.
type Operand struct {
	kind     OperandKind
	literal  bool
	raw      string
	resolved bool
	name     string
	fn       Function
}

// LiteralOperand wraps a fixed boolean.
func LiteralOperand(b bool) Operand {
	return Operand{kind: OperandLiteral, literal: b}
}

// ValueOperand wraps unresolved text that is resolved on demand.
func ValueOperand(raw string) Operand {
	return Operand{kind: OperandValue, raw: raw}
}

// resultOperand wraps an already computed string, such as the output of
// % or /. It is never run through substitution.
func resultOperand(s string) Operand {
	return Operand{kind: OperandValue, raw: s, resolved: true}
}

// NamedOperand wraps a registered function.
func NamedOperand(name string, fn Function) Operand {
	return Operand{kind: OperandNamed, name: name, fn: fn}
}

// Kind returns the operand variant.
func (o Operand) Kind() OperandKind {
	return o.kind
}

// Function returns the wrapped function for named operands.
func (o Operand) Function() Function {
	return o.fn
}

// Truthy resolves the operand and applies the truthiness rule.
func (o Operand) Truthy(ctx context.Context, env Env) (bool, error) {
	switch o.kind {
	case OperandLiteral:
		return o.literal, nil
	case OperandNamed:
		return o.fn.Evaluate(ctx, env)
	}
	if o.resolved {
		return IsTruthy(o.raw), nil
	}
	v, err := env.Resolve(ctx, o.raw)
	if err != nil {
		return false, err
	}
	return IsTruthy(v), nil
}

// Text resolves the operand to its string form.
func (o Operand) Text(ctx context.Context, env Env) (string, error) {
	switch o.kind {
	case OperandLiteral:
		if o.literal {
			return LiteralTrue, nil
		}
		return LiteralFalse, nil
	case OperandNamed:
		return o.fn.Text(ctx, env)
	}
	if o.resolved {
		return o.raw, nil
	}
	v, err := env.Resolve(ctx, o.raw)
	if err != nil {
		return "", err
	}
	return Stringify(v), nil
}

// String renders the operand as written, without resolving anything.
func (o Operand) String() string {
	switch o.kind {
	case OperandLiteral:
		if o.literal {
			return LiteralTrue
		}
		return LiteralFalse
	case OperandNamed:
		return o.name + "(" + strings.Join(o.fn.Arguments(), string(ArgumentSeparator)) + ")"
	default:
		return o.raw
	}
}
