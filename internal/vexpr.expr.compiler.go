package internal

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// CompiledExpression is the postfix form of an infix expression. Every
// OpFunction in the instruction sequence has exactly one operand, in order.
type CompiledExpression struct {
	infix    string
	postfix  []OpCode
	operands []Operand
}

// Infix returns the whitespace-stripped source expression.
func (ce *CompiledExpression) Infix() string {
	return ce.infix
}

// Instructions returns a copy of the postfix instruction sequence.
func (ce *CompiledExpression) Instructions() []OpCode {
	return append([]OpCode(nil), ce.postfix...)
}

// Operands returns a copy of the function operand list.
func (ce *CompiledExpression) Operands() []Operand {
	return append([]Operand(nil), ce.operands...)
}

// Postfix renders the instruction sequence, substituting each function
// marker with the text of its operand.
func (ce *CompiledExpression) Postfix() string {
	var sb strings.Builder
	next := 0
	for _, op := range ce.postfix {
		if op == OpFunction && next < len(ce.operands) {
			sb.WriteString(ce.operands[next].String())
			next++
			continue
		}
		sb.WriteString(op.String())
	}
	return sb.String()
}

// String returns "infix = postfix".
func (ce *CompiledExpression) String() string {
	return ce.infix + " = " + ce.Postfix()
}

// Compiler turns infix expressions into CompiledExpressions.
type Compiler struct {
	funcs  *FunctionRegistry
	logger *zap.Logger
}

// NewCompiler creates a compiler resolving named functions from funcs.
// A nil registry means no named functions are available.
func NewCompiler(funcs *FunctionRegistry, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if funcs == nil {
		funcs = NewFunctionRegistry(logger)
	}
	return &Compiler{funcs: funcs, logger: logger}
}

// StripWhitespace removes every whitespace character from s.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Compile converts infix to postfix using the shunting-yard algorithm.
// Whitespace is stripped first.
func (c *Compiler) Compile(infix string) (*CompiledExpression, error) {
	infix = StripWhitespace(infix)
	c.logger.Debug(LogMsgCompileStart, zap.String(LogFieldInfix, infix))

	tokens, operands, err := c.preprocess(infix)
	if err != nil {
		return nil, err
	}

	postfix := make([]OpCode, 0, len(tokens))
	var stack []OpCode
	for _, tok := range tokens {
		switch tok {
		case OpFunction, OpTrue, OpFalse:
			postfix = append(postfix, tok)
		case OpLeftParen:
			stack = append(stack, tok)
		case OpRightParen:
			for len(stack) > 0 && stack[len(stack)-1] != OpLeftParen {
				postfix = append(postfix, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			// an unmatched ')' is ignored
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			precedence := tok.Precedence()
			for len(stack) > 0 && stack[len(stack)-1].Precedence() >= precedence {
				postfix = append(postfix, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		}
	}
	// an unmatched '(' is dropped
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] != OpLeftParen {
			postfix = append(postfix, stack[i])
		}
	}

	ce := &CompiledExpression{infix: infix, postfix: postfix, operands: operands}
	c.logger.Debug(LogMsgCompileEnd,
		zap.String(LogFieldInfix, infix),
		zap.String(LogFieldPostfix, ce.Postfix()),
		zap.Int(LogFieldFuncCount, len(operands)),
	)
	return ce, nil
}

// preprocess classifies the source into literals, operators and function
// markers, collecting one operand per marker.
func (c *Compiler) preprocess(infix string) ([]OpCode, []Operand, error) {
	src := []rune(infix)
	var tokens []OpCode
	var operands []Operand

	for i := 0; i < len(src); {
		ch := src[i]
		if IsOperatorChar(ch) {
			tokens = append(tokens, OpCode(ch))
			i++
			continue
		}
		if n := matchKeyword(src, i, LiteralTrue); n > 0 {
			tokens = append(tokens, OpTrue)
			i += n
			continue
		}
		if n := matchKeyword(src, i, LiteralFalse); n > 0 {
			tokens = append(tokens, OpFalse)
			i += n
			continue
		}

		operand, next, err := c.function(src, i, infix)
		if err != nil {
			return nil, nil, err
		}
		tokens = append(tokens, OpFunction)
		operands = append(operands, operand)
		i = next
	}
	return tokens, operands, nil
}

// matchKeyword returns the length of word if it appears at src[i] in any
// case and is followed by an operator or the end of input.
func matchKeyword(src []rune, i int, word string) int {
	n := len(word)
	if i+n > len(src) || !strings.EqualFold(string(src[i:i+n]), word) {
		return 0
	}
	if i+n < len(src) && !IsOperatorChar(src[i+n]) {
		return 0
	}
	return n
}

// function reads the maximal non-operator run at src[start]. A registered
// name must be followed by its argument list; anything else becomes a
// deferred value lookup.
func (c *Compiler) function(src []rune, start int, infix string) (Operand, int, error) {
	end := start
	for end < len(src) && !IsOperatorChar(src[end]) {
		end++
	}
	text := string(src[start:end])

	fn, ok, err := c.funcs.New(text)
	if err != nil {
		return Operand{}, 0, err
	}
	if !ok {
		return ValueOperand(text), end, nil
	}

	if end >= len(src) || src[end] != rune(OpLeftParen) {
		return Operand{}, 0, NewSyntaxError(ErrMsgMissingLeftParen, text, infix)
	}
	args, next, err := splitArguments(src, end+1)
	if err != nil {
		return Operand{}, 0, NewSyntaxError(ErrMsgUnterminatedArgs, text, infix)
	}
	fn.SetArguments(args)
	return NamedOperand(text, fn), next, nil
}

// splitArguments splits src[start:] on top-level commas up to the ')'
// closing the argument list. Parentheses and braces nest. It returns the
// index after the closing ')'. A trailing empty argument is dropped.
func splitArguments(src []rune, start int) ([]string, int, error) {
	args := []string{}
	depth := 0
	left := start
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '(', '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ')':
			if depth == 0 {
				if i > left {
					args = append(args, string(src[left:i]))
				}
				return args, i + 1, nil
			}
			depth--
		case ArgumentSeparator:
			if depth == 0 {
				args = append(args, string(src[left:i]))
				left = i + 1
			}
		}
	}
	return nil, 0, NewSyntaxError(ErrMsgUnterminatedArgs, string(src[start:]), string(src))
}
