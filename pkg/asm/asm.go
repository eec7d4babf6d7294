// Package asm assembles the textual instruction form into executable
// programs. A source file holds type definitions ($n = {...}),
// constant pool entries (@n = value, including function definitions),
// labels (name:) and instructions (mnemonic followed by operands).
package asm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/akhildatla/vvm/pkg/vvm"
)

// Assembly errors
var (
	ErrSyntax          = errors.New("syntax error")
	ErrUnknownLabel    = errors.New("unknown label")
	ErrOperandCount    = errors.New("wrong operand count")
	ErrNestedConstants = errors.New("cannot nest a constant pool in a function")
	ErrNestedTypes     = errors.New("cannot nest type definitions in a function")
	ErrUnterminated    = errors.New("function definition missing end")
)

// Assemble parses source text into a program. Every instruction
// stream, including function bodies, gets a trailing halt.
func Assemble(source string) (*vvm.Program, error) {
	a := &assembler{
		prog:   vvm.NewProgram(),
		labels: newLabeler(),
	}
	for i, raw := range strings.Split(source, "\n") {
		if err := a.line(raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	if a.fn != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnterminated, a.fn.def.Name)
	}
	if err := a.labels.check(); err != nil {
		return nil, err
	}
	a.code = append(a.code, uint64(vvm.OpHalt))
	a.prog.Instructions = a.code
	return a.prog, nil
}

type assembler struct {
	prog   *vvm.Program
	code   []uint64
	labels *labeler

	// fn is non-nil while inside a function definition body.
	fn *funcContext
}

type funcContext struct {
	op     vvm.Operand
	def    *vvm.FunctionDef
	labels *labeler
}

// stream returns the instruction stream and labeler currently being
// assembled into.
func (a *assembler) stream() (*[]uint64, *labeler) {
	if a.fn != nil {
		return &a.fn.def.Body, a.fn.labels
	}
	return &a.code, a.labels
}

func (a *assembler) line(raw string) error {
	text := strings.TrimSpace(stripComment(raw))
	if text == "" {
		return nil
	}
	switch {
	case a.fn != nil && text == "end":
		return a.endFunc()
	case strings.HasPrefix(text, "@") && strings.Contains(text, "="):
		return a.constant(text)
	case strings.HasPrefix(text, "$") && strings.Contains(text, "="):
		return a.typedef(text)
	case strings.HasSuffix(text, ":") && !strings.Contains(text, " "):
		return a.label(strings.TrimSuffix(text, ":"))
	}
	return a.instruction(text)
}

// stripComment drops everything from an unquoted semicolon or hash.
func stripComment(s string) string {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ';', '#':
			if !inQuote {
				return s[:i]
			}
		}
	}
	return s
}

func (a *assembler) label(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty label", ErrSyntax)
	}
	code, labels := a.stream()
	labels.resolve(name, *code, uint64(len(*code)))
	return nil
}

func (a *assembler) instruction(text string) error {
	tokens := strings.Fields(text)
	op, err := vvm.OpcodeFromString(tokens[0])
	if err != nil {
		return err
	}
	code, labels := a.stream()
	words := make([]uint64, 0, len(tokens))
	words = append(words, uint64(op))
	var labelRefs []struct {
		name string
		pos  int
	}
	for _, tok := range tokens[1:] {
		operand, err := vvm.ParseOperand(tok)
		if err != nil {
			// An unparseable operand is a label reference,
			// patched once the label's location is known.
			labelRefs = append(labelRefs, struct {
				name string
				pos  int
			}{tok, len(*code) + len(words)})
			operand = 0
		}
		words = append(words, uint64(operand))
	}
	if err := checkOperands(op, words[1:]); err != nil {
		return err
	}
	*code = append(*code, words...)
	for _, ref := range labelRefs {
		labels.addDep(ref.name, *code, ref.pos)
	}
	return nil
}

// checkOperands validates the operand count; call carries its operand
// count in its second fixed operand.
func checkOperands(op vvm.Opcode, words []uint64) error {
	want := op.Arity()
	if op == vvm.OpCall {
		if len(words) < want {
			return fmt.Errorf("%w for %s: got %d, want at least %d", ErrOperandCount, op, len(words), want)
		}
		extra := int(vvm.Operand(words[1]).Value())
		if len(words) != want+extra {
			return fmt.Errorf("%w for %s: got %d, want %d", ErrOperandCount, op, len(words), want+extra)
		}
		return nil
	}
	if len(words) != want {
		return fmt.Errorf("%w for %s: got %d, want %d", ErrOperandCount, op, len(words), want)
	}
	return nil
}

func (a *assembler) constant(text string) error {
	if a.fn != nil {
		return fmt.Errorf("%w: %s", ErrNestedConstants, a.fn.def.Name)
	}
	lhs, rhs, err := splitAssign(text)
	if err != nil {
		return err
	}
	op, err := vvm.ParseOperand(lhs)
	if err != nil {
		return err
	}
	if vvm.Operand(op).Kind() != vvm.KindGlobal {
		return fmt.Errorf("%w: constant %s must be a global register", ErrSyntax, lhs)
	}
	if strings.HasPrefix(rhs, "def ") {
		return a.beginFunc(op, rhs)
	}
	c, err := parseConstant(rhs)
	if err != nil {
		return err
	}
	a.prog.Constants[op] = c
	return nil
}

func splitAssign(text string) (string, string, error) {
	lhs, rhs, ok := strings.Cut(text, "=")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrSyntax, text)
	}
	return strings.TrimSpace(lhs), strings.TrimSpace(rhs), nil
}

func parseConstant(rhs string) (vvm.Constant, error) {
	if strings.HasPrefix(rhs, `"`) {
		s, err := strconv.Unquote(rhs)
		if err != nil {
			return vvm.Constant{}, fmt.Errorf("%w: string constant %s", ErrSyntax, rhs)
		}
		return vvm.StrConstant(s), nil
	}
	if v, err := strconv.ParseInt(rhs, 10, 64); err == nil {
		return vvm.IntConstant(v), nil
	}
	if v, err := strconv.ParseFloat(rhs, 64); err == nil {
		return vvm.FloatConstant(v), nil
	}
	return vvm.Constant{}, fmt.Errorf("%w: constant %q", ErrSyntax, rhs)
}

// beginFunc parses a function header of the form
// def name("arg": type, ...) rettype:
func (a *assembler) beginFunc(op vvm.Operand, rhs string) error {
	header := strings.TrimSpace(strings.TrimPrefix(rhs, "def "))
	if !strings.HasSuffix(header, ":") {
		return fmt.Errorf("%w: function header %q", ErrSyntax, rhs)
	}
	header = strings.TrimSuffix(header, ":")
	open := strings.Index(header, "(")
	end := strings.LastIndex(header, ")")
	if open < 1 || end < open {
		return fmt.Errorf("%w: function header %q", ErrSyntax, rhs)
	}
	name := strings.TrimSpace(header[:open])
	args, err := parseMembers(header[open+1 : end])
	if err != nil {
		return err
	}
	retType, err := vvm.ParseType(strings.TrimSpace(header[end+1:]))
	if err != nil {
		return err
	}
	a.fn = &funcContext{
		op: op,
		def: &vvm.FunctionDef{
			Name:    name,
			Args:    args,
			RetType: retType,
		},
		labels: newLabeler(),
	}
	return nil
}

func (a *assembler) endFunc() error {
	fn := a.fn
	a.fn = nil
	if err := fn.labels.check(); err != nil {
		return err
	}
	fn.def.Body = append(fn.def.Body, uint64(vvm.OpHalt))
	a.prog.Constants[fn.op] = vvm.FuncConstant(fn.def)
	return nil
}

func (a *assembler) typedef(text string) error {
	if a.fn != nil {
		return fmt.Errorf("%w: %s", ErrNestedTypes, a.fn.def.Name)
	}
	lhs, rhs, err := splitAssign(text)
	if err != nil {
		return err
	}
	t, err := vvm.ParseType(lhs)
	if err != nil {
		return err
	}
	if !t.UserDefined() {
		return fmt.Errorf("%w: cannot redefine builtin type %s", ErrSyntax, lhs)
	}
	if !strings.HasPrefix(rhs, "{") || !strings.HasSuffix(rhs, "}") {
		return fmt.Errorf("%w: type definition %q", ErrSyntax, rhs)
	}
	def, err := parseMembers(rhs[1 : len(rhs)-1])
	if err != nil {
		return err
	}
	a.prog.Types[t] = def
	return nil
}

// parseMembers parses a comma-separated list of "name": type pairs.
func parseMembers(body string) (vvm.TypeDef, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}
	var def vvm.TypeDef
	for _, part := range strings.Split(body, ",") {
		nameStr, typeStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("%w: member %q", ErrSyntax, part)
		}
		name, err := strconv.Unquote(strings.TrimSpace(nameStr))
		if err != nil {
			return nil, fmt.Errorf("%w: member name %q", ErrSyntax, nameStr)
		}
		t, err := vvm.ParseType(strings.TrimSpace(typeStr))
		if err != nil {
			return nil, err
		}
		def = append(def, vvm.NamedType{Name: name, Type: t})
	}
	return def, nil
}
