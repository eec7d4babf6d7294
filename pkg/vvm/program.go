package vvm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Program model errors
var (
	ErrBadConstant = errors.New("malformed constant")
)

// FunctionDef is a named bytecode routine stored in the constant pool.
// The body carries its own trailing halt.
type FunctionDef struct {
	Name    string   `cbor:"name"`
	Args    TypeDef  `cbor:"args"`
	RetType Type     `cbor:"ret"`
	Body    []uint64 `cbor:"body"`
}

// ConstKind discriminates constant pool entries.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstStr
	ConstFunc
)

// Constant is one constant pool entry, preloaded into a global
// register before execution.
type Constant struct {
	Kind  ConstKind    `cbor:"kind"`
	Int   int64        `cbor:"int,omitempty"`
	Float float64      `cbor:"float,omitempty"`
	Str   string       `cbor:"str,omitempty"`
	Func  *FunctionDef `cbor:"func,omitempty"`
}

// IntConstant, FloatConstant, StrConstant and FuncConstant build pool entries.
func IntConstant(v int64) Constant         { return Constant{Kind: ConstInt, Int: v} }
func FloatConstant(v float64) Constant     { return Constant{Kind: ConstFloat, Float: v} }
func StrConstant(v string) Constant        { return Constant{Kind: ConstStr, Str: v} }
func FuncConstant(f *FunctionDef) Constant { return Constant{Kind: ConstFunc, Func: f} }

// cell boxes a fresh register cell holding the constant's value.
func (c Constant) cell() any {
	switch c.Kind {
	case ConstInt:
		v := c.Int
		return &v
	case ConstFloat:
		v := c.Float
		return &v
	case ConstStr:
		v := c.Str
		return &v
	case ConstFunc:
		return c.Func
	}
	return nil
}

// String renders the constant's textual form.
func (c Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstFloat:
		return formatFloat(c.Float)
	case ConstStr:
		return strconv.Quote(c.Str)
	case ConstFunc:
		return c.Func.signature() + ":"
	}
	return "?"
}

func (f *FunctionDef) signature() string {
	var b strings.Builder
	b.WriteString("def ")
	b.WriteString(f.Name)
	b.WriteByte('(')
	for i, a := range f.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %s", a.Name, a.Type)
	}
	b.WriteString(") ")
	b.WriteString(f.RetType.String())
	return b.String()
}

// Program is a complete executable unit: the instruction stream plus
// the constant pool and user-defined type definitions it references.
type Program struct {
	Instructions []uint64             `cbor:"instructions"`
	Constants    map[Operand]Constant `cbor:"constants"`
	Types        map[Type]TypeDef     `cbor:"types"`
}

// NewProgram returns an empty program with allocated pools.
func NewProgram() *Program {
	return &Program{
		Constants: make(map[Operand]Constant),
		Types:     make(map[Type]TypeDef),
	}
}
