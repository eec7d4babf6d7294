package vvm

import (
	"errors"
	"testing"
)

func TestFixedOpcodeEncoding(t *testing.T) {
	// The table order is the binary encoding; the fixed block must
	// stay glued to the front.
	fixed := []struct {
		op    Opcode
		name  string
		arity int
	}{
		{OpHalt, "halt", 0},
		{OpAlloc, "alloc", 2},
		{OpWrite, "write", 1},
		{OpSave, "save", 1},
		{OpMember, "member", 3},
		{OpAssign, "assign", 3},
		{OpAppend, "append", 3},
		{OpRepr, "repr", 3},
		{OpLoad, "load", 3},
		{OpStore, "store", 4},
		{OpWhere, "where", 4},
		{OpBr, "br", 1},
		{OpBtrue, "btrue", 2},
		{OpBfalse, "bfalse", 2},
		{OpRet, "ret", 1},
		{OpCall, "call", 2},
		{OpIsort, "isort", 3},
		{OpMultidx, "multidx", 4},
		{OpGroup, "group", 8},
		{OpEqmatch, "eqmatch", 5},
		{OpAsofmatch, "asofmatch", 7},
		{OpAsofnear, "asofnear", 7},
		{OpAsofwithin, "asofwithin", 8},
		{OpEqasofmatch, "eqasofmatch", 10},
		{OpEqasofnear, "eqasofnear", 10},
		{OpEqasofwithin, "eqasofwithin", 11},
		{OpTake, "take", 4},
		{OpConcat, "concat", 4},
		{OpNow, "now_Ts", 1},
	}
	for i, f := range fixed {
		if f.op != Opcode(i) {
			t.Errorf("%s: encoded as %d, want %d", f.name, f.op, i)
		}
		if f.op.String() != f.name {
			t.Errorf("opcode %d: name %q, want %q", f.op, f.op.String(), f.name)
		}
		if f.op.Arity() != f.arity {
			t.Errorf("%s: arity %d, want %d", f.name, f.op.Arity(), f.arity)
		}
	}
}

func TestGeneratedOpcodesExist(t *testing.T) {
	names := []string{
		"cast_i64s_Ss", "cast_Sv_i64v", "cast_f64s_i64s", "cast_Ts_DAs",
		"print_i64s", "print_Sv",
		"or_b8s_b8s", "and_b8v_b8v",
		"bitand_i64s_i64s", "mod_i64v_i64s",
		"add_i64s_i64s", "add_f64v_f64v", "div_i64s_i64s",
		"lt_i64s_i64s", "eq_Sv_Ss", "gte_DAs_DAv",
		"not_b8s", "neg_f64v",
		"sin_f64s", "atanh_f64v",
		"sum_i64v", "prod_f64v", "sum_Sv",
		"add_Ss_Sv",
		"sub_Ts_Ts", "add_Ts_Ds", "bar_Ts_Dv", "add_Ds_Ts", "add_DAs_TIs",
		"unit_ns_i64s", "unit_d_i64s",
		"len_i64v", "count_Sv",
		"range_i64s",
		"del_i64s", "del_DAv",
		"idx_i64v_i64s", "idx_Sv_i64s",
	}
	for _, name := range names {
		op, err := OpcodeFromString(name)
		if err != nil {
			t.Errorf("missing opcode %q", name)
			continue
		}
		if op.String() != name {
			t.Errorf("%q: round trip gave %q", name, op.String())
		}
	}
}

func TestOpcodeFromStringUnknown(t *testing.T) {
	if _, err := OpcodeFromString("frobnicate"); !errors.Is(err, ErrUnknownOpcode) {
		t.Fatalf("got %v, want ErrUnknownOpcode", err)
	}
}

func TestOpcodeTableStable(t *testing.T) {
	// Spot-check an encoding that serialized programs depend on: the
	// first generated opcode follows the fixed block directly.
	op, err := OpcodeFromString("cast_i64s_Ss")
	if err != nil {
		t.Fatal(err)
	}
	if op != OpNow+1 {
		t.Errorf("cast_i64s_Ss encoded as %d, want %d", op, OpNow+1)
	}
	if NumOpcodes() < 500 {
		t.Errorf("opcode table suspiciously small: %d", NumOpcodes())
	}
}
