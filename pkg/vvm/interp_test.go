package vvm_test

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/akhildatla/vvm/internal/testutil"
	"github.com/akhildatla/vvm/pkg/asm"
	"github.com/akhildatla/vvm/pkg/vvm"
)

// run assembles and executes source on a fresh machine, returning the
// saved result.
func run(t *testing.T, source string) string {
	t.Helper()
	program, err := asm.Assemble(source)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	result, err := vvm.Interpret(program)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return result
}

func runErr(t *testing.T, source string) error {
	t.Helper()
	program, err := asm.Assemble(source)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	_, err = vvm.Interpret(program)
	if err == nil {
		t.Fatal("expected an execution error")
	}
	return err
}

func TestArithmetic(t *testing.T) {
	got := run(t, `
		add_i64s_i64s 2 3 %0
		mul_i64s_i64s %0 4 %1
		cast_i64s_Ss %1 %2
		save %2
	`)
	if got != "20" {
		t.Errorf("got %q, want \"20\"", got)
	}
}

func TestFloatConstants(t *testing.T) {
	got := run(t, `
		@0 = 1.5
		add_f64s_f64s @0 @0 %0
		repr f64s %0 %1
		save %1
	`)
	if got != "3.0" {
		t.Errorf("got %q, want \"3.0\"", got)
	}
}

func TestStringConcat(t *testing.T) {
	got := run(t, `
		@0 = "foo"
		@1 = "bar"
		add_Ss_Ss @0 @1 %0
		save %0
	`)
	if got != "foobar" {
		t.Errorf("got %q", got)
	}
}

func TestDivisionByZeroYieldsNil(t *testing.T) {
	got := run(t, `
		div_i64s_i64s 7 0 %0
		add_i64s_i64s %0 5 %1
		repr i64s %1 %2
		save %2
	`)
	if got != "nil" {
		t.Errorf("nil should propagate through addition, got %q", got)
	}
}

func TestRangeAndSum(t *testing.T) {
	got := run(t, `
		range_i64s 10 %0
		sum_i64v %0 %1
		cast_i64s_Ss %1 %2
		save %2
	`)
	if got != "45" {
		t.Errorf("got %q, want \"45\"", got)
	}
}

func TestVectorScalarShapes(t *testing.T) {
	got := run(t, `
		range_i64s 3 %0
		add_i64v_i64s %0 10 %1
		repr i64v %1 %2
		save %2
	`)
	if got != "[10, 11, 12]" {
		t.Errorf("got %q", got)
	}
}

func TestVectorLengthMismatch(t *testing.T) {
	err := runErr(t, `
		range_i64s 3 %0
		range_i64s 4 %1
		add_i64v_i64v %0 %1 %2
	`)
	if !errors.Is(err, vvm.ErrLengthMismatch) {
		t.Fatalf("got %v, want ErrLengthMismatch", err)
	}
}

func TestBranchLoop(t *testing.T) {
	got := run(t, `
		add_i64s_i64s 0 0 %0   ; acc
		add_i64s_i64s 0 0 %1   ; i
	loop:
		add_i64s_i64s %0 %1 %0
		add_i64s_i64s %1 1 %1
		lt_i64s_i64s %1 5 %2
		btrue %2 loop
		cast_i64s_Ss %0 %3
		save %3
	`)
	if got != "10" {
		t.Errorf("got %q, want \"10\"", got)
	}
}

func TestForwardBranch(t *testing.T) {
	got := run(t, `
		br done
		add_i64s_i64s 1 1 %0
	done:
		cast_i64s_Ss %0 %1
		save %1
	`)
	// The skipped add leaves the register default-constructed.
	if got != "0" {
		t.Errorf("got %q, want \"0\"", got)
	}
}

func TestFunctionCall(t *testing.T) {
	got := run(t, `
		@1 = def inc("x": i64s) i64s:
			add_i64s_i64s %0 1 %1
			ret %1
		end
		call @1 2 7 %0
		cast_i64s_Ss %0 %1
		save %1
	`)
	if got != "8" {
		t.Errorf("got %q, want \"8\"", got)
	}
}

func TestRecursiveCall(t *testing.T) {
	got := run(t, `
		@1 = def fact("n": i64s) i64s:
			gt_i64s_i64s %0 1 %1
			btrue %1 recurse
			add_i64s_i64s 0 1 %2
			ret %2
		recurse:
			sub_i64s_i64s %0 1 %3
			call @1 2 %3 %4
			mul_i64s_i64s %0 %4 %5
			ret %5
		end
		call @1 2 5 %0
		cast_i64s_Ss %0 %1
		save %1
	`)
	if got != "120" {
		t.Errorf("got %q, want \"120\"", got)
	}
}

func TestCallArityMismatch(t *testing.T) {
	err := runErr(t, `
		@1 = def two("a": i64s, "b": i64s) i64s:
			add_i64s_i64s %0 %1 %2
			ret %2
		end
		call @1 2 7 %0
	`)
	if !errors.Is(err, vvm.ErrCall) {
		t.Fatalf("got %v, want ErrCall", err)
	}
}

func TestAppendAndIdxAliasing(t *testing.T) {
	got := run(t, `
		append i64s 10 %0
		append i64s 20 %0
		idx_i64v_i64s %0 1 %1
		assign i64s 99 %1
		repr i64v %0 %2
		save %2
	`)
	// Assigning through the element register writes into the vector.
	if got != "[10, 99]" {
		t.Errorf("got %q", got)
	}
}

func TestMemberAliasing(t *testing.T) {
	got := run(t, `
		$0 = {"v": i64v}
		alloc $0 %0
		member %0 0 %1
		append i64s 5 %1
		member %0 0 %2
		repr i64v %2 %3
		save %3
	`)
	if got != "[5]" {
		t.Errorf("member cells should alias, got %q", got)
	}
}

func TestWhereMask(t *testing.T) {
	got := run(t, `
		$0 = {"v": i64v}
		alloc $0 %0
		member %0 0 %1
		append i64s 1 %1
		append i64s 2 %1
		append i64s 3 %1
		gt_i64v_i64s %1 1 %2
		where $0 %0 %2 %3
		member %3 0 %4
		repr i64v %4 %5
		save %5
	`)
	if got != "[2, 3]" {
		t.Errorf("got %q", got)
	}
}

func TestStateRegistersPersistAcrossRuns(t *testing.T) {
	machine := vvm.NewInterpreter()
	first, err := asm.Assemble(`add_i64s_i64s 1 2 *0`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := machine.Run(first); err != nil {
		t.Fatal(err)
	}
	second, err := asm.Assemble(`
		cast_i64s_Ss *0 %0
		save %0
	`)
	if err != nil {
		t.Fatal(err)
	}
	got, err := machine.Run(second)
	if err != nil {
		t.Fatal(err)
	}
	if got != "3" {
		t.Errorf("got %q, want \"3\"", got)
	}
}

func TestWriteOutput(t *testing.T) {
	program, err := asm.Assemble(`
		@0 = "hello"
		write @0
		print_i64s 42 %0
	`)
	if err != nil {
		t.Fatal(err)
	}
	machine := vvm.NewInterpreter()
	var buf bytes.Buffer
	machine.SetOutput(&buf)
	if _, err := machine.Run(program); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello\n42\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestImmediateWhereRegisterExpected(t *testing.T) {
	err := runErr(t, `save 5`)
	if !errors.Is(err, vvm.ErrExpectedRegister) {
		t.Fatalf("got %v, want ErrExpectedRegister", err)
	}
}

func TestTimeUnits(t *testing.T) {
	got := run(t, `
		unit_s_i64s 5 %0
		repr Ds %0 %1
		save %1
	`)
	if got != "5000000000" {
		t.Errorf("got %q", got)
	}
}

func TestTimestampCast(t *testing.T) {
	got := run(t, `
		@0 = "2024-03-15 09:30:00"
		cast_Ss_Ts @0 %0
		unit_h_i64s 1 %1
		add_Ts_Ds %0 %1 %2
		cast_Ts_Ss %2 %3
		save %3
	`)
	if got != "2024-03-15 10:30:00" {
		t.Errorf("got %q", got)
	}
}

func TestMathFunction(t *testing.T) {
	got := run(t, `
		@0 = 1.0
		sin_f64s @0 %0
		repr f64s %0 %1
		save %1
	`)
	// Display rounds to six decimals, so compare numerically.
	v, err := strconv.ParseFloat(got, 64)
	if err != nil {
		t.Fatalf("parsing %q: %v", got, err)
	}
	testutil.AssertFloat64Near(t, math.Sin(1), v, 1e-5)
}

func TestReprTruncatesLongVectors(t *testing.T) {
	got := run(t, `
		range_i64s 30 %0
		repr i64v %0 %1
		save %1
	`)
	if !strings.HasSuffix(got, ", ...]") {
		t.Errorf("long vector display should elide: %q", got)
	}
}

func TestDelReleasesRegister(t *testing.T) {
	got := run(t, `
		add_i64s_i64s 1 2 %0
		del_i64s %0
		cast_i64s_Ss %0 %1
		save %1
	`)
	// A released register default-constructs on next touch.
	if got != "0" {
		t.Errorf("got %q, want \"0\"", got)
	}
}
