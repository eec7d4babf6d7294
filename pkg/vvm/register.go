package vvm

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Register access errors
var (
	ErrTypeMismatch = errors.New("register type mismatch")
	ErrBadRegister  = errors.New("bad register reference")
)

// TableSource supplies external tables to load and accepts rendered
// rows from store. Implementations live outside this package; see
// pkg/loader.
type TableSource interface {
	// ReadColumns reads the named table and returns its cells
	// column-major as strings, one slice per requested field.
	ReadColumns(name string, fields int) ([][]string, error)

	// WriteRows persists rendered lines (header first) to the named table.
	WriteRows(name string, rows []string) error
}

// Interpreter executes programs against three register banks: globals
// (preloaded from the constant pool), locals (per call frame) and
// state registers that survive across runs.
type Interpreter struct {
	types   map[uint64]TypeDef
	globals []any
	locals  []any
	states  []any

	ip    int
	retOp uint64
	saved string

	out    io.Writer
	source TableSource

	// Console geometry bounds dataframe display.
	consoleRows int
	consoleCols int
}

// NewInterpreter returns an interpreter writing to stdout with no
// table source attached.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		types:       make(map[uint64]TypeDef),
		out:         os.Stdout,
		consoleRows: 24,
		consoleCols: 80,
	}
}

// SetOutput redirects write and print output.
func (in *Interpreter) SetOutput(w io.Writer) { in.out = w }

// SetSource attaches the table source used by load and store.
func (in *Interpreter) SetSource(s TableSource) { in.source = s }

// SetConsoleSize overrides the geometry used for dataframe display.
func (in *Interpreter) SetConsoleSize(rows, cols int) {
	in.consoleRows, in.consoleCols = rows, cols
}

// bank selects the register bank for a register kind.
func (in *Interpreter) bank(k OperandKind) *[]any {
	switch k {
	case KindLocal:
		return &in.locals
	case KindGlobal:
		return &in.globals
	default:
		return &in.states
	}
}

// slot resolves an operand to its register cell, growing the bank as
// needed. Immediates and types are not registers.
func (in *Interpreter) slot(op uint64) (*any, error) {
	o := Operand(op)
	switch o.Kind() {
	case KindImmediate:
		return nil, fmt.Errorf("%w, but got immediate value %d", ErrExpectedRegister, o.Value())
	case KindType:
		return nil, fmt.Errorf("%w, but got type %s", ErrExpectedRegister, o.AsType())
	}
	bank := in.bank(o.Kind())
	idx := int(o.Value())
	for len(*bank) <= idx {
		*bank = append(*bank, nil)
	}
	return &(*bank)[idx], nil
}

// setCell rebinds a register to the given cell, aliasing it.
func (in *Interpreter) setCell(op uint64, cell any) error {
	s, err := in.slot(op)
	if err != nil {
		return err
	}
	*s = cell
	return nil
}

// cellOf returns the register's current cell without materializing one.
func (in *Interpreter) cellOf(op uint64) (any, error) {
	s, err := in.slot(op)
	if err != nil {
		return nil, err
	}
	return *s, nil
}

// refOf resolves a register to a typed cell, default-constructing the
// cell on first touch.
func refOf[T any](in *Interpreter, op uint64) (*T, error) {
	s, err := in.slot(op)
	if err != nil {
		return nil, err
	}
	if *s == nil {
		p := new(T)
		*s = p
		return p, nil
	}
	p, ok := (*s).(*T)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, Operand(op), *s)
	}
	return p, nil
}

// valueOf reads a scalar operand: an immediate payload when the class
// supports it, otherwise the register's current value.
func valueOf[T any](in *Interpreter, op uint64, c class[T]) (T, error) {
	var zero T
	o := Operand(op)
	if o.Kind() == KindImmediate {
		v, ok := c.imm(o.Value())
		if !ok {
			return zero, fmt.Errorf("%w, but got immediate value %d", ErrExpectedRegister, o.Value())
		}
		return v, nil
	}
	p, err := refOf[T](in, op)
	if err != nil {
		return zero, err
	}
	return *p, nil
}

// intVal and boolVal are the common scalar reads.
func (in *Interpreter) intVal(op uint64) (int64, error) { return valueOf(in, op, intClass) }

func (in *Interpreter) boolVal(op uint64) (bool, error) { return valueOf(in, op, boolClass) }

func (in *Interpreter) strVal(op uint64) (string, error) { return valueOf(in, op, strClass) }

// loc reads a branch target: an immediate instruction index or an
// int64 register holding one.
func (in *Interpreter) loc(op uint64) (int, error) {
	v, err := in.intVal(op)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// typeOperand checks that an operand carries a type tag.
func typeOperand(op uint64) (Type, error) {
	o := Operand(op)
	if o.Kind() != KindType {
		return 0, fmt.Errorf("%w: expected a type, got %s", ErrBadRegister, o)
	}
	return o.AsType(), nil
}

// typedef resolves a user-defined type id.
func (in *Interpreter) typedef(t Type) (TypeDef, error) {
	def, ok := in.types[t.Value()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedType, t)
	}
	return def, nil
}
