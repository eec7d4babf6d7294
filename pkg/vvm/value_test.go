package vvm

import (
	"math"
	"testing"
)

func TestTrimTrailingZeros(t *testing.T) {
	tests := []struct{ in, want string }{
		{"3.000000", "3.0"},
		{"3.140000", "3.14"},
		{"0.500000", "0.5"},
		{"42", "42"},
		{"1.000001", "1.000001"},
	}
	for _, tt := range tests {
		if got := trimTrailingZeros(tt.in); got != tt.want {
			t.Errorf("trimTrailingZeros(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReprScalars(t *testing.T) {
	if got := reprInt64(nilInt64); got != "nil" {
		t.Errorf("nil int: %q", got)
	}
	if got := reprInt64(-7); got != "-7" {
		t.Errorf("int: %q", got)
	}
	if got := reprFloat64(math.NaN()); got != "nan" {
		t.Errorf("nil float: %q", got)
	}
	if got := reprFloat64(2.5); got != "2.5" {
		t.Errorf("float: %q", got)
	}
	if got := reprString("hi"); got != `"hi"` {
		t.Errorf("string: %q", got)
	}
	if got := reprChar('x'); got != "'x'" {
		t.Errorf("char: %q", got)
	}
	if got := reprChar(nilChar); got != "''" {
		t.Errorf("nil char: %q", got)
	}
}

func TestStringScalars(t *testing.T) {
	if got := stringInt64(nilInt64); got != "" {
		t.Errorf("nil int storage: %q", got)
	}
	if got := stringFloat64(1.25); got != "1.250000" {
		t.Errorf("float storage: %q", got)
	}
	if got := stringFloat64(math.NaN()); got != "" {
		t.Errorf("nil float storage: %q", got)
	}
	if got := stringChar(nilChar); got != "" {
		t.Errorf("nil char storage: %q", got)
	}
}

func TestParseScalars(t *testing.T) {
	if got := parseInt64(" 42 "); got != 42 {
		t.Errorf("parseInt64: %d", got)
	}
	if got := parseInt64("x"); !isNilInt64(got) {
		t.Errorf("bad int should be nil, got %d", got)
	}
	if got := parseFloat64("2.5"); got != 2.5 {
		t.Errorf("parseFloat64: %v", got)
	}
	if got := parseFloat64(""); !isNilFloat64(got) {
		t.Errorf("bad float should be nil, got %v", got)
	}
	if !parseBool("true") || parseBool("yes") || parseBool("") {
		t.Error("parseBool accepts only \"true\"")
	}
	if got := parseChar("q"); got != 'q' {
		t.Errorf("parseChar: %c", got)
	}
	if got := parseChar("qq"); !isNilChar(got) {
		t.Errorf("long char should be nil, got %c", got)
	}
}

func TestDataframeLen(t *testing.T) {
	col := []int64{1, 2, 3}
	df := Dataframe{&col, new([]string)}
	if df.Len() != 3 {
		t.Errorf("Len: got %d, want 3", df.Len())
	}
	if (Dataframe{}).Len() != 0 {
		t.Error("empty frame should have zero rows")
	}
}
