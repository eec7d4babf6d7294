package vvm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Operand encoding errors
var (
	ErrOperandTooLarge  = errors.New("operand too large")
	ErrBadOperand       = errors.New("malformed operand")
	ErrExpectedRegister = errors.New("was expecting a register")
)

// OperandKind is the tag stored in the low bits of an operand.
type OperandKind uint64

const (
	KindImmediate OperandKind = iota
	KindLocal
	KindGlobal
	KindState
	KindType
)

const operandTagBits = 3

// Operand is a tagged 64-bit word. The low three bits carry the kind,
// the rest the payload (an immediate integer, a register index, or a
// tagged type for KindType).
type Operand uint64

// EncodeOperand tags value with kind. Values that do not survive the
// tag shift are rejected.
func EncodeOperand(value uint64, kind OperandKind) (Operand, error) {
	if (value<<operandTagBits)>>operandTagBits != value {
		return 0, fmt.Errorf("%w: %d", ErrOperandTooLarge, value)
	}
	return Operand(value<<operandTagBits | uint64(kind)), nil
}

// EncodeTypeOperand wraps a tagged type as an operand.
func EncodeTypeOperand(t Type) (Operand, error) {
	return EncodeOperand(uint64(t), KindType)
}

// Kind returns the operand's tag.
func (o Operand) Kind() OperandKind {
	return OperandKind(o & (1<<operandTagBits - 1))
}

// Value returns the untagged payload.
func (o Operand) Value() uint64 {
	return uint64(o >> operandTagBits)
}

// AsType reinterprets a KindType payload as a tagged type.
func (o Operand) AsType() Type {
	return Type(o.Value())
}

// String renders the textual form: a bare integer for immediates,
// %n / @n / *n for local, global and state registers, and the type
// name for type operands.
func (o Operand) String() string {
	switch o.Kind() {
	case KindImmediate:
		return strconv.FormatUint(o.Value(), 10)
	case KindLocal:
		return "%" + strconv.FormatUint(o.Value(), 10)
	case KindGlobal:
		return "@" + strconv.FormatUint(o.Value(), 10)
	case KindState:
		return "*" + strconv.FormatUint(o.Value(), 10)
	case KindType:
		return o.AsType().String()
	}
	return fmt.Sprintf("?%d", uint64(o))
}

// ParseOperand parses the textual operand form produced by String.
func ParseOperand(s string) (Operand, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty token", ErrBadOperand)
	}
	kind := KindImmediate
	num := s
	switch s[0] {
	case '%':
		kind, num = KindLocal, s[1:]
	case '@':
		kind, num = KindGlobal, s[1:]
	case '*':
		kind, num = KindState, s[1:]
	}
	if kind == KindImmediate {
		if !isDigits(s) {
			t, err := ParseType(s)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrBadOperand, s)
			}
			return EncodeTypeOperand(t)
		}
	}
	v, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadOperand, s)
	}
	return EncodeOperand(v, kind)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}
