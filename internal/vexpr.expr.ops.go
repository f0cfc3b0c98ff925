package internal

import "strings"

// OpCode is one symbol of a compiled postfix sequence.
type OpCode byte

const (
	OpTrue       OpCode = 't'
	OpFalse      OpCode = 'f'
	OpFunction   OpCode = 'F'
	OpLeftParen  OpCode = '('
	OpRightParen OpCode = ')'
	OpEquals     OpCode = '='
	OpLess       OpCode = '<'
	OpMore       OpCode = '>'
	OpModulus    OpCode = '%'
	OpDivide     OpCode = '/'
	OpOr         OpCode = '|'
	OpAnd        OpCode = '&'
	OpNot        OpCode = '!'
)

// OperatorChars lists every character that terminates a function reference.
const OperatorChars = "()=<>%/|&!"

// ArgumentSeparator splits function arguments.
const ArgumentSeparator = ','

// IsOperatorChar reports whether r is one of the fixed operator characters.
func IsOperatorChar(r rune) bool {
	return strings.ContainsRune(OperatorChars, r)
}

// IsOperator reports whether the opcode is an operator rather than an operand.
func (o OpCode) IsOperator() bool {
	return IsOperatorChar(rune(o))
}

// Precedence is used only to order stack pops during infix to postfix
// conversion. Higher binds tighter.
func (o OpCode) Precedence() int {
	switch o {
	case OpLeftParen:
		return 1
	case OpEquals:
		return 2
	case OpLess, OpMore:
		return 4
	case OpOr:
		return 8
	case OpAnd:
		return 16
	case OpModulus, OpDivide:
		return 32
	case OpNot:
		return 64
	case OpRightParen:
		return 999
	}
	return 1
}

// String renders the opcode. Literals render as their keyword.
func (o OpCode) String() string {
	switch o {
	case OpTrue:
		return LiteralTrue
	case OpFalse:
		return LiteralFalse
	default:
		return string(rune(o))
	}
}
