// Package vvm implements a register-based virtual machine for a
// vectorized data language. Programs are streams of tagged 64-bit
// words: an opcode followed by its operands, where each operand is an
// immediate, a register reference or a type reference. Registers hold
// boxed scalars, vectors or dataframes and alias freely, so member
// access and element indexing write through to their source.
//
// Basic usage:
//
//	program, err := asm.Assemble(source)
//	if err != nil { ... }
//	result, err := vvm.Interpret(program)
package vvm

import (
	"errors"
	"fmt"
	"time"
)

// Execution errors
var (
	ErrTruncated   = errors.New("truncated instruction stream")
	ErrCall        = errors.New("bad call")
	ErrMemberRange = errors.New("member index out of bounds")
	ErrBuiltinOnly = errors.New("operation requires a builtin type")
	ErrUserOnly    = errors.New("operation requires a user-defined type")
	ErrNoSource    = errors.New("no table source configured")
)

// Interpret runs a program on a fresh interpreter and returns the
// saved result string.
func Interpret(p *Program) (string, error) {
	return NewInterpreter().Run(p)
}

// Run loads the program's types and constants and executes its
// instruction stream. State registers persist across calls, so a
// REPL can run incremental programs against one interpreter.
func (in *Interpreter) Run(p *Program) (string, error) {
	in.saved = ""
	for t, def := range p.Types {
		in.types[t.Value()] = def
	}
	for op, c := range p.Constants {
		s, err := in.slot(uint64(op))
		if err != nil {
			return "", err
		}
		*s = c.cell()
	}
	if err := in.dispatch(p.Instructions); err != nil {
		return "", err
	}
	return in.saved, nil
}

// dispatch executes one instruction stream to its halt.
func (in *Interpreter) dispatch(code []uint64) error {
	in.ip = 0
	for in.ip < len(code) {
		op := Opcode(code[in.ip])
		if int(op) >= len(opcodeTable) {
			return fmt.Errorf("%w: %d", ErrUnknownOpcode, uint64(op))
		}
		if op == OpHalt {
			return nil
		}
		info := &opcodeTable[op]
		next := in.ip + 1 + info.arity
		if next > len(code) {
			return fmt.Errorf("%w: %s at %d", ErrTruncated, info.name, in.ip)
		}
		args := code[in.ip+1 : next]
		in.ip = next
		if err := info.exec(in, args, code); err != nil {
			return err
		}
	}
	return nil
}

// newBuiltinCell boxes a zeroed cell for a builtin type.
func newBuiltinCell(b BuiltinType) any {
	vec := b.Vector()
	switch storageOf(b.Kind()) {
	case KFloat64:
		if vec {
			return new([]float64)
		}
		return new(float64)
	case KBool:
		if vec {
			return new([]bool)
		}
		return new(bool)
	case KString:
		if vec {
			return new([]string)
		}
		return new(string)
	case KChar:
		if vec {
			return new([]byte)
		}
		return new(byte)
	default:
		if vec {
			return new([]int64)
		}
		return new(int64)
	}
}

// wrapImmediate boxes an immediate payload as a fresh builtin cell.
func wrapImmediate(b BuiltinType, payload uint64) any {
	cell := newBuiltinCell(b)
	if b.Vector() {
		return cell
	}
	switch p := cell.(type) {
	case *int64:
		*p = int64(payload)
	case *bool:
		*p = payload != 0
	case *byte:
		*p = byte(payload)
	}
	return cell
}

// alloc builds a zeroed cell for any type; user-defined types become
// dataframes with one cell per member, recursively.
func (in *Interpreter) alloc(t Type) (any, error) {
	if !t.UserDefined() {
		return newBuiltinCell(t.Builtin()), nil
	}
	def, err := in.typedef(t)
	if err != nil {
		return nil, err
	}
	df := make(Dataframe, len(def))
	for i, m := range def {
		df[i], err = in.alloc(m.Type)
		if err != nil {
			return nil, err
		}
	}
	return &df, nil
}

func (in *Interpreter) execAlloc(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	cell, err := in.alloc(t)
	if err != nil {
		return err
	}
	return in.setCell(args[1], cell)
}

func (in *Interpreter) execWrite(args, code []uint64) error {
	s, err := in.strVal(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(in.out, s)
	return nil
}

func (in *Interpreter) execSave(args, code []uint64) error {
	s, err := in.strVal(args[0])
	if err != nil {
		return err
	}
	in.saved = s
	return nil
}

func (in *Interpreter) execMember(args, code []uint64) error {
	df, err := refOf[Dataframe](in, args[0])
	if err != nil {
		return err
	}
	y, err := in.intVal(args[1])
	if err != nil {
		return err
	}
	if y < 0 || y >= int64(len(*df)) {
		return fmt.Errorf("%w: %d of %d", ErrMemberRange, y, len(*df))
	}
	return in.setCell(args[2], (*df)[y])
}

// execAssign copies a value into an existing register of the given
// type, materializing the destination cell when the register is fresh.
func (in *Interpreter) execAssign(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	src, err := in.argCell(t, args[1])
	if err != nil {
		return err
	}
	dst, err := in.cellOf(args[2])
	if err != nil {
		return err
	}
	if dst == nil {
		if dst, err = in.alloc(t); err != nil {
			return err
		}
		if err = in.setCell(args[2], dst); err != nil {
			return err
		}
	}
	return assignCell(src, dst)
}

// assignCell deep-copies one cell's contents into another through
// their boxes, preserving every alias of the destination.
func assignCell(src, dst any) error {
	switch s := src.(type) {
	case *int64:
		if d, ok := dst.(*int64); ok {
			*d = *s
			return nil
		}
	case *float64:
		if d, ok := dst.(*float64); ok {
			*d = *s
			return nil
		}
	case *bool:
		if d, ok := dst.(*bool); ok {
			*d = *s
			return nil
		}
	case *string:
		if d, ok := dst.(*string); ok {
			*d = *s
			return nil
		}
	case *byte:
		if d, ok := dst.(*byte); ok {
			*d = *s
			return nil
		}
	case *[]int64:
		if d, ok := dst.(*[]int64); ok {
			*d = append([]int64(nil), *s...)
			return nil
		}
	case *[]float64:
		if d, ok := dst.(*[]float64); ok {
			*d = append([]float64(nil), *s...)
			return nil
		}
	case *[]bool:
		if d, ok := dst.(*[]bool); ok {
			*d = append([]bool(nil), *s...)
			return nil
		}
	case *[]string:
		if d, ok := dst.(*[]string); ok {
			*d = append([]string(nil), *s...)
			return nil
		}
	case *[]byte:
		if d, ok := dst.(*[]byte); ok {
			*d = append([]byte(nil), *s...)
			return nil
		}
	case *Dataframe:
		d, ok := dst.(*Dataframe)
		if !ok || len(*d) != len(*s) {
			break
		}
		for i := range *s {
			if err := assignCell((*s)[i], (*d)[i]); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: assigning %T to %T", ErrTypeMismatch, src, dst)
}

func appendScalar[T any](in *Interpreter, ca class[T], src, dst uint64) error {
	x, err := valueOf(in, src, ca)
	if err != nil {
		return err
	}
	z, err := refOf[[]T](in, dst)
	if err != nil {
		return err
	}
	*z = append(*z, x)
	return nil
}

// execAppend pushes a builtin scalar onto a vector register.
func (in *Interpreter) execAppend(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	if t.UserDefined() {
		return fmt.Errorf("%w: cannot build a list from user-defined types", ErrBuiltinOnly)
	}
	switch storageOf(t.Builtin().Kind()) {
	case KFloat64:
		return appendScalar(in, floatClass, args[1], args[2])
	case KBool:
		return appendScalar(in, boolClass, args[1], args[2])
	case KString:
		return appendScalar(in, strClass, args[1], args[2])
	case KChar:
		return appendScalar(in, charClass, args[1], args[2])
	default:
		return appendScalar(in, intClass, args[1], args[2])
	}
}

func (in *Interpreter) execBr(args, code []uint64) error {
	loc, err := in.loc(args[0])
	if err != nil {
		return err
	}
	in.ip = loc
	return nil
}

func (in *Interpreter) execBtrue(args, code []uint64) error {
	x, err := in.boolVal(args[0])
	if err != nil {
		return err
	}
	if x {
		loc, err := in.loc(args[1])
		if err != nil {
			return err
		}
		in.ip = loc
	}
	return nil
}

func (in *Interpreter) execBfalse(args, code []uint64) error {
	x, err := in.boolVal(args[0])
	if err != nil {
		return err
	}
	if !x {
		loc, err := in.loc(args[1])
		if err != nil {
			return err
		}
		in.ip = loc
	}
	return nil
}

// execRet records the return operand and jumps to the stream's
// trailing halt.
func (in *Interpreter) execRet(args, code []uint64) error {
	in.retOp = args[0]
	in.ip = len(code) - 1
	return nil
}

// argCell resolves an operand to a cell for parameter passing:
// builtin immediates are boxed fresh, registers are aliased.
func (in *Interpreter) argCell(t Type, op uint64) (any, error) {
	o := Operand(op)
	if !t.UserDefined() && o.Kind() == KindImmediate {
		return wrapImmediate(t.Builtin(), o.Value()), nil
	}
	return in.cellOf(op)
}

// execCall invokes a function constant. The two fixed operands are
// the function and the operand count; that many operand words follow
// the instruction, the last naming where the result lands.
func (in *Interpreter) execCall(args, code []uint64) error {
	fd, err := refOf[FunctionDef](in, args[0])
	if err != nil {
		return err
	}
	n, err := in.intVal(args[1])
	if err != nil {
		return err
	}
	np := int(n) - 1
	if np < 0 {
		return fmt.Errorf("%w: calling %s requires location of return value", ErrCall, fd.Name)
	}
	if np != len(fd.Args) {
		return fmt.Errorf("%w: calling %s with wrong number of arguments: %d vs %d (must include location of return value)",
			ErrCall, fd.Name, np, len(fd.Args))
	}
	if in.ip+np+1 > len(code) {
		return fmt.Errorf("%w: call to %s", ErrTruncated, fd.Name)
	}
	bc := code[in.ip : in.ip+np+1]
	in.ip += np + 1

	locals := make([]any, np)
	for i, a := range fd.Args {
		cell, err := in.argCell(a.Type, bc[i])
		if err != nil {
			return err
		}
		locals[i] = cell
	}

	callerLocals, callerIP := in.locals, in.ip
	in.locals = locals
	err = in.dispatch(fd.Body)
	var ret any
	if err == nil {
		ret, err = in.argCell(fd.RetType, in.retOp)
	}
	in.locals, in.ip = callerLocals, callerIP
	if err != nil {
		return err
	}
	return in.setCell(bc[np], ret)
}

func (in *Interpreter) execNow(args, code []uint64) error {
	z, err := refOf[int64](in, args[0])
	if err != nil {
		return err
	}
	*z = time.Now().UnixNano()
	return nil
}

// execLoad reads an external table into a fresh dataframe, parsing
// each column by its member type.
func (in *Interpreter) execLoad(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	if !t.UserDefined() {
		return fmt.Errorf("%w: cannot load a file into builtin type %s", ErrUserOnly, t)
	}
	name, err := in.strVal(args[1])
	if err != nil {
		return err
	}
	if in.source == nil {
		return ErrNoSource
	}
	def, err := in.typedef(t)
	if err != nil {
		return err
	}
	cols, err := in.source.ReadColumns(name, len(def))
	if err != nil {
		return err
	}
	df := make(Dataframe, len(def))
	for i, m := range def {
		var raw []string
		if i < len(cols) {
			raw = cols[i]
		}
		df[i] = parseColumn(m.Type.Builtin().Kind(), raw)
	}
	return in.setCell(args[2], &df)
}

// parseColumn converts raw text cells to a typed column.
func parseColumn(k ScalarKind, raw []string) any {
	switch storageOf(k) {
	case KFloat64:
		out := make([]float64, len(raw))
		for i, s := range raw {
			out[i] = parseFloat64(s)
		}
		return &out
	case KBool:
		out := make([]bool, len(raw))
		for i, s := range raw {
			out[i] = parseBool(s)
		}
		return &out
	case KString:
		out := append([]string(nil), raw...)
		return &out
	case KChar:
		out := make([]byte, len(raw))
		for i, s := range raw {
			out[i] = parseChar(s)
		}
		return &out
	default:
		out := make([]int64, len(raw))
		for i, s := range raw {
			out[i] = parseTimeValue(k, s)
		}
		return &out
	}
}

// execStore renders a dataframe as delimited text rows and hands them
// to the table source. The result register reports success as zero.
func (in *Interpreter) execStore(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	if !t.UserDefined() {
		return fmt.Errorf("%w: cannot store builtin type %s", ErrUserOnly, t)
	}
	df, err := refOf[Dataframe](in, args[1])
	if err != nil {
		return err
	}
	name, err := in.strVal(args[2])
	if err != nil {
		return err
	}
	if in.source == nil {
		return ErrNoSource
	}
	def, err := in.typedef(t)
	if err != nil {
		return err
	}
	rows, err := renderRows(def, *df)
	if err != nil {
		return err
	}
	if err := in.source.WriteRows(name, rows); err != nil {
		return err
	}
	z, err := refOf[int64](in, args[3])
	if err != nil {
		return err
	}
	*z = 0
	return nil
}
