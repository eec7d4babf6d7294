package asm_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/akhildatla/vvm/pkg/asm"
	"github.com/akhildatla/vvm/pkg/vvm"
)

func TestAssembleEmpty(t *testing.T) {
	p, err := asm.Assemble("")
	if err != nil {
		t.Fatal(err)
	}
	if want := []uint64{uint64(vvm.OpHalt)}; !reflect.DeepEqual(p.Instructions, want) {
		t.Errorf("got %v, want a lone halt", p.Instructions)
	}
}

func TestAssembleInstruction(t *testing.T) {
	p, err := asm.Assemble("add_i64s_i64s 2 3 %0")
	if err != nil {
		t.Fatal(err)
	}
	op, err := vvm.OpcodeFromString("add_i64s_i64s")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Instructions) != 5 {
		t.Fatalf("word count: got %d, want 5", len(p.Instructions))
	}
	if p.Instructions[0] != uint64(op) {
		t.Errorf("opcode word: got %d, want %d", p.Instructions[0], op)
	}
	if vvm.Operand(p.Instructions[1]).Value() != 2 {
		t.Errorf("first operand: got %d", vvm.Operand(p.Instructions[1]).Value())
	}
	if vvm.Operand(p.Instructions[3]).Kind() != vvm.KindLocal {
		t.Errorf("result operand kind: got %d", vvm.Operand(p.Instructions[3]).Kind())
	}
}

func TestAssembleComments(t *testing.T) {
	p, err := asm.Assemble(`
		; full-line comment
		# another
		add_i64s_i64s 1 1 %0  ; trailing
	`)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Instructions) != 5 {
		t.Errorf("word count: got %d, want 5", len(p.Instructions))
	}
}

func TestAssembleQuotedSemicolon(t *testing.T) {
	p, err := asm.Assemble(`@0 = "a;b"`)
	if err != nil {
		t.Fatal(err)
	}
	g0, err := vvm.EncodeOperand(0, vvm.KindGlobal)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := p.Constants[g0]
	if !ok {
		t.Fatal("constant missing")
	}
	if c.Str != "a;b" {
		t.Errorf("got %q, want \"a;b\"", c.Str)
	}
}

func TestAssembleConstants(t *testing.T) {
	p, err := asm.Assemble(`
		@0 = 42
		@1 = 2.5
		@2 = "hi"
	`)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Constants) != 3 {
		t.Fatalf("constant count: got %d", len(p.Constants))
	}
}

func TestAssembleConstantNotGlobal(t *testing.T) {
	if _, err := asm.Assemble("%0 = 42"); err == nil {
		t.Fatal("local-register constant should fail")
	}
}

func TestAssembleTypedef(t *testing.T) {
	p, err := asm.Assemble(`$0 = {"price": f64v, "qty": i64v}`)
	if err != nil {
		t.Fatal(err)
	}
	ut, err := vvm.ParseType("$0")
	if err != nil {
		t.Fatal(err)
	}
	def, ok := p.Types[ut]
	if !ok {
		t.Fatal("typedef missing")
	}
	if len(def) != 2 || def[0].Name != "price" || def[1].Name != "qty" {
		t.Errorf("got %v", def)
	}
	if def[0].Type.Builtin() != vvm.F64v {
		t.Errorf("price type: got %s", def[0].Type)
	}
}

func TestAssembleBuiltinTypedefRejected(t *testing.T) {
	if _, err := asm.Assemble(`i64s = {"x": i64s}`); err == nil {
		t.Fatal("builtin redefinition should fail")
	}
}

func TestAssembleLabels(t *testing.T) {
	p, err := asm.Assemble(`
		br done
		add_i64s_i64s 1 1 %0
	done:
		save %1
	`)
	if err != nil {
		t.Fatal(err)
	}
	// br(2) + add(4) puts the label at word six.
	if vvm.Operand(p.Instructions[1]).Value() != 6 {
		t.Errorf("label patched to %d, want 6", vvm.Operand(p.Instructions[1]).Value())
	}
}

func TestAssembleUnknownLabel(t *testing.T) {
	_, err := asm.Assemble("br nowhere")
	if !errors.Is(err, asm.ErrUnknownLabel) {
		t.Fatalf("got %v, want ErrUnknownLabel", err)
	}
}

func TestAssembleOperandCount(t *testing.T) {
	_, err := asm.Assemble("add_i64s_i64s 1 2")
	if !errors.Is(err, asm.ErrOperandCount) {
		t.Fatalf("got %v, want ErrOperandCount", err)
	}
}

func TestAssembleCallOperandCount(t *testing.T) {
	if _, err := asm.Assemble("call @0 2 7 %0"); err != nil {
		t.Fatalf("valid call rejected: %v", err)
	}
	_, err := asm.Assemble("call @0 2 7")
	if !errors.Is(err, asm.ErrOperandCount) {
		t.Fatalf("got %v, want ErrOperandCount", err)
	}
}

func TestAssembleFunction(t *testing.T) {
	p, err := asm.Assemble(`
		@1 = def inc("x": i64s) i64s:
			add_i64s_i64s %0 1 %1
			ret %1
		end
	`)
	if err != nil {
		t.Fatal(err)
	}
	g1, err := vvm.EncodeOperand(1, vvm.KindGlobal)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := p.Constants[g1]
	if !ok {
		t.Fatal("function constant missing")
	}
	if c.Kind != vvm.ConstFunc {
		t.Fatalf("kind: got %d", c.Kind)
	}
	fd := c.Func
	if fd.Name != "inc" || len(fd.Args) != 1 || fd.Args[0].Name != "x" {
		t.Errorf("header: %+v", fd)
	}
	if vvm.Opcode(fd.Body[len(fd.Body)-1]) != vvm.OpHalt {
		t.Error("function body should end with halt")
	}
}

func TestAssembleUnterminatedFunction(t *testing.T) {
	_, err := asm.Assemble(`
		@1 = def f("x": i64s) i64s:
			ret %0
	`)
	if !errors.Is(err, asm.ErrUnterminated) {
		t.Fatalf("got %v, want ErrUnterminated", err)
	}
}

func TestAssembleNestedConstantRejected(t *testing.T) {
	_, err := asm.Assemble(`
		@1 = def f("x": i64s) i64s:
			@2 = 5
		end
	`)
	if !errors.Is(err, asm.ErrNestedConstants) {
		t.Fatalf("got %v, want ErrNestedConstants", err)
	}
}

func TestAssembleNestedTypeRejected(t *testing.T) {
	_, err := asm.Assemble(`
		@1 = def f("x": i64s) i64s:
			$0 = {"a": i64s}
		end
	`)
	if !errors.Is(err, asm.ErrNestedTypes) {
		t.Fatalf("got %v, want ErrNestedTypes", err)
	}
}

func TestAssembleErrorCarriesLine(t *testing.T) {
	_, err := asm.Assemble("\n\nbogus_op %0")
	if err == nil || !errors.Is(err, vvm.ErrUnknownOpcode) {
		t.Fatalf("got %v, want ErrUnknownOpcode", err)
	}
	if got := err.Error(); got[:7] != "line 3:" {
		t.Errorf("error should name the line: %q", got)
	}
}

func TestDisassembleRoundTrip(t *testing.T) {
	source := `
		$0 = {"k": Sv, "v": i64v}
		@0 = 42
		@1 = 2.5
		@2 = "hi"
		@3 = def inc("x": i64s) i64s:
			add_i64s_i64s %0 1 %1
			ret %1
		end
		alloc $0 %0
		member %0 1 %1
		append i64s 5 %1
		call @3 2 7 %2
		isort $0 %0 %3
	`
	first, err := asm.Assemble(source)
	if err != nil {
		t.Fatal(err)
	}
	text := vvm.Disassemble(first)
	second, err := asm.Assemble(text)
	if err != nil {
		t.Fatalf("reassembling disassembly: %v\n%s", err, text)
	}
	if !reflect.DeepEqual(first.Instructions, second.Instructions) {
		t.Errorf("instructions diverge:\n%v\n%v", first.Instructions, second.Instructions)
	}
	if !reflect.DeepEqual(first.Types, second.Types) {
		t.Errorf("types diverge")
	}
	if !reflect.DeepEqual(first.Constants, second.Constants) {
		t.Errorf("constants diverge:\n%v\n%v", first.Constants, second.Constants)
	}
}
