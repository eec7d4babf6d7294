package vvm

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEncodeOperand(t *testing.T) {
	tests := []struct {
		value uint64
		kind  OperandKind
		text  string
	}{
		{0, KindImmediate, "0"},
		{42, KindImmediate, "42"},
		{3, KindLocal, "%3"},
		{7, KindGlobal, "@7"},
		{1, KindState, "*1"},
	}
	for _, tt := range tests {
		op, err := EncodeOperand(tt.value, tt.kind)
		if err != nil {
			t.Fatalf("EncodeOperand(%d, %d): %v", tt.value, tt.kind, err)
		}
		if op.Kind() != tt.kind {
			t.Errorf("kind: got %d, want %d", op.Kind(), tt.kind)
		}
		if op.Value() != tt.value {
			t.Errorf("value: got %d, want %d", op.Value(), tt.value)
		}
		if op.String() != tt.text {
			t.Errorf("text: got %q, want %q", op.String(), tt.text)
		}
	}
}

func TestEncodeOperandTooLarge(t *testing.T) {
	_, err := EncodeOperand(1<<62, KindLocal)
	if !errors.Is(err, ErrOperandTooLarge) {
		t.Fatalf("got %v, want ErrOperandTooLarge", err)
	}
}

func TestParseOperand(t *testing.T) {
	tests := []struct {
		text  string
		kind  OperandKind
		value uint64
	}{
		{"17", KindImmediate, 17},
		{"%0", KindLocal, 0},
		{"@12", KindGlobal, 12},
		{"*4", KindState, 4},
	}
	for _, tt := range tests {
		op, err := ParseOperand(tt.text)
		if err != nil {
			t.Fatalf("ParseOperand(%q): %v", tt.text, err)
		}
		if op.Kind() != tt.kind || op.Value() != tt.value {
			t.Errorf("ParseOperand(%q) = kind %d value %d, want kind %d value %d",
				tt.text, op.Kind(), op.Value(), tt.kind, tt.value)
		}
	}
}

func TestParseOperandType(t *testing.T) {
	op, err := ParseOperand("f64v")
	if err != nil {
		t.Fatal(err)
	}
	if op.Kind() != KindType {
		t.Fatalf("kind: got %d, want KindType", op.Kind())
	}
	if op.AsType().Builtin() != F64v {
		t.Errorf("type: got %s", op.AsType())
	}
}

func TestParseOperandBad(t *testing.T) {
	for _, s := range []string{"", "%x", "@", "bogus", "1.5"} {
		if _, err := ParseOperand(s); err == nil {
			t.Errorf("ParseOperand(%q) succeeded, want error", s)
		}
	}
}

func TestOperandRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	kinds := []OperandKind{KindImmediate, KindLocal, KindGlobal, KindState}
	properties.Property("encode/parse round trip", prop.ForAll(
		func(value uint64, ki uint8) bool {
			kind := kinds[int(ki)%len(kinds)]
			op, err := EncodeOperand(value, kind)
			if err != nil {
				return false
			}
			back, err := ParseOperand(op.String())
			return err == nil && back == op
		},
		gen.UInt64Range(0, 1<<61-1),
		gen.UInt8(),
	))
	properties.TestingRun(t)
}
