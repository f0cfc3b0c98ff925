package internal

import (
	"context"
	"regexp"
	"strconv"

	"go.uber.org/zap"
)

// Evaluator runs compiled expressions on a stack machine.
type Evaluator struct {
	logger *zap.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger}
}

// evalStack is seeded with a false sentinel so a lone operator such as
// "!" still has an operand.
type evalStack struct {
	items []Operand
	ce    *CompiledExpression
}

func (s *evalStack) push(o Operand) {
	s.items = append(s.items, o)
}

func (s *evalStack) pop(op OpCode) (Operand, error) {
	n := len(s.items)
	if n == 0 {
		return Operand{}, NewEvaluationError(ErrMsgStackUnderflow, op.String(), s.ce.String(), nil)
	}
	o := s.items[n-1]
	s.items = s.items[:n-1]
	return o, nil
}

// pop2 pops the top operand and then the one below it.
func (s *evalStack) pop2(op OpCode) (top, below Operand, err error) {
	if top, err = s.pop(op); err != nil {
		return
	}
	below, err = s.pop(op)
	return
}

// Evaluate executes ce and returns its boolean result.
func (e *Evaluator) Evaluate(ctx context.Context, env Env, ce *CompiledExpression) (bool, error) {
	stack := &evalStack{items: []Operand{LiteralOperand(false)}, ce: ce}
	next := 0

	for _, op := range ce.postfix {
		switch op {
		case OpTrue:
			stack.push(LiteralOperand(true))
		case OpFalse:
			stack.push(LiteralOperand(false))
		case OpFunction:
			if next >= len(ce.operands) {
				return false, NewEvaluationError(ErrMsgMissingFunction, op.String(), ce.String(), nil)
			}
			stack.push(ce.operands[next])
			next++
		case OpEquals:
			pattern, subject, err := stack.pop2(op)
			if err != nil {
				return false, err
			}
			matched, err := e.matches(ctx, env, op, ce, subject, pattern)
			if err != nil {
				return false, err
			}
			stack.push(LiteralOperand(matched))
		case OpLess, OpMore:
			right, left, err := e.integers(ctx, env, op, stack)
			if err != nil {
				return false, err
			}
			if op == OpLess {
				stack.push(LiteralOperand(left < right))
			} else {
				stack.push(LiteralOperand(left > right))
			}
		case OpModulus, OpDivide:
			divisor, dividend, err := e.integers(ctx, env, op, stack)
			if err != nil {
				return false, err
			}
			if divisor == 0 {
				return false, NewEvaluationError(ErrMsgDivideByZero, op.String(), ce.String(), nil)
			}
			if op == OpModulus {
				stack.push(resultOperand(strconv.Itoa(dividend % divisor)))
			} else {
				stack.push(resultOperand(strconv.Itoa(dividend / divisor)))
			}
		case OpOr, OpAnd:
			first, second, err := stack.pop2(op)
			if err != nil {
				return false, err
			}
			a, err := first.Truthy(ctx, env)
			if err != nil {
				return false, err
			}
			b, err := second.Truthy(ctx, env)
			if err != nil {
				return false, err
			}
			if op == OpOr {
				stack.push(LiteralOperand(a || b))
			} else {
				stack.push(LiteralOperand(a && b))
			}
		case OpNot:
			o, err := stack.pop(op)
			if err != nil {
				return false, err
			}
			b, err := o.Truthy(ctx, env)
			if err != nil {
				return false, err
			}
			stack.push(LiteralOperand(!b))
		default:
			return false, NewEvaluationError(ErrMsgUnknownOperator, op.String(), ce.String(), nil)
		}
	}

	final, err := stack.pop(OpFunction)
	if err != nil {
		return false, err
	}
	// only the seed may remain
	if len(stack.items) > 1 {
		return false, NewEvaluationError(ErrMsgValuesLeftOnStack, final.String(), ce.String(), nil)
	}
	result, err := final.Truthy(ctx, env)
	if err != nil {
		return false, err
	}

	e.logger.Debug(LogMsgEvaluateEnd,
		zap.String(LogFieldInfix, ce.infix),
		zap.Bool(LogFieldResult, result),
	)
	return result, nil
}

// matches reports whether the whole of subject matches the pattern.
func (e *Evaluator) matches(ctx context.Context, env Env, op OpCode, ce *CompiledExpression, subject, pattern Operand) (bool, error) {
	p, err := pattern.Text(ctx, env)
	if err != nil {
		return false, err
	}
	s, err := subject.Text(ctx, env)
	if err != nil {
		return false, err
	}
	re, err := regexp.Compile(`^(?:` + p + `)$`)
	if err != nil {
		return false, NewEvaluationError(ErrMsgInvalidPattern, op.String(), ce.String(), err)
	}
	return re.MatchString(s), nil
}

// integers pops two operands and parses their string forms.
func (e *Evaluator) integers(ctx context.Context, env Env, op OpCode, stack *evalStack) (top, below int, err error) {
	first, second, err := stack.pop2(op)
	if err != nil {
		return 0, 0, err
	}
	if top, err = e.integer(ctx, env, op, stack.ce, first); err != nil {
		return 0, 0, err
	}
	if below, err = e.integer(ctx, env, op, stack.ce, second); err != nil {
		return 0, 0, err
	}
	return top, below, nil
}

func (e *Evaluator) integer(ctx context.Context, env Env, op OpCode, ce *CompiledExpression, o Operand) (int, error) {
	text, err := o.Text(ctx, env)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, NewEvaluationError(ErrMsgNotAnInteger, op.String(), ce.String(), err)
	}
	return n, nil
}
