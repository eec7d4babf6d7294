package vvm

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Disassemble renders a program in assemblable text form: type
// definitions, then the constant pool, then the instruction stream,
// separated by blank lines.
func Disassemble(p *Program) string {
	var b strings.Builder

	types := maps.Keys(p.Types)
	slices.Sort(types)
	for _, t := range types {
		fmt.Fprintf(&b, "$%d = {", t.Value())
		for i, m := range p.Types[t] {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q: %s", m.Name, m.Type)
		}
		b.WriteString("}\n")
	}
	if len(types) > 0 {
		b.WriteByte('\n')
	}

	consts := maps.Keys(p.Constants)
	slices.Sort(consts)
	for _, op := range consts {
		c := p.Constants[op]
		if c.Kind == ConstFunc {
			fmt.Fprintf(&b, "%s = %s\n", Operand(op), c)
			disassembleCode(&b, c.Func.Body, "  ")
			b.WriteString("end\n")
		} else {
			fmt.Fprintf(&b, "%s = %s\n", Operand(op), c)
		}
	}
	if len(consts) > 0 {
		b.WriteByte('\n')
	}

	disassembleCode(&b, p.Instructions, "")
	return b.String()
}

// disassembleCode writes one instruction stream, omitting the
// trailing halt that assembly always appends.
func disassembleCode(b *strings.Builder, code []uint64, indent string) {
	end := len(code)
	if end > 0 && Opcode(code[end-1]) == OpHalt {
		end--
	}
	ip := 0
	for ip < end {
		op := Opcode(code[ip])
		if int(op) >= len(opcodeTable) {
			fmt.Fprintf(b, "%s?op:%d\n", indent, code[ip])
			ip++
			continue
		}
		arity := op.Arity()
		if ip+1+arity > len(code) {
			fmt.Fprintf(b, "%s%s\n", indent, op)
			break
		}
		words := code[ip+1 : ip+1+arity]
		ip += 1 + arity
		extra := 0
		if op == OpCall && arity == 2 {
			extra = int(Operand(words[1]).Value())
			if ip+extra > len(code) {
				extra = len(code) - ip
			}
		}
		b.WriteString(indent)
		b.WriteString(op.String())
		for _, w := range words {
			b.WriteByte(' ')
			b.WriteString(Operand(w).String())
		}
		for _, w := range code[ip : ip+extra] {
			b.WriteByte(' ')
			b.WriteString(Operand(w).String())
		}
		ip += extra
		b.WriteByte('\n')
	}
}
