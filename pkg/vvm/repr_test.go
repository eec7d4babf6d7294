package vvm

import (
	"strings"
	"testing"
)

func TestReprListTruncation(t *testing.T) {
	xs := make([]int64, 30)
	for i := range xs {
		xs[i] = int64(i)
	}
	s := reprList(xs, reprInt64, reprElemLimit)
	if !strings.HasSuffix(s, ", ...]") {
		t.Errorf("long vector should elide: %q", s)
	}
	if strings.Count(s, ",") != reprElemLimit {
		t.Errorf("element count off: %q", s)
	}

	short := reprList([]int64{1, 2}, reprInt64, reprElemLimit)
	if short != "[1, 2]" {
		t.Errorf("short vector: %q", short)
	}
}

func TestReprVectorKinds(t *testing.T) {
	fs := []float64{1.5, nilFloat64()}
	s, err := reprVector(KFloat64, &fs, reprElemLimit)
	if err != nil {
		t.Fatal(err)
	}
	if s != "[1.5, nan]" {
		t.Errorf("float vector: %q", s)
	}

	ss := []string{"a"}
	s, err = reprVector(KString, &ss, reprElemLimit)
	if err != nil {
		t.Fatal(err)
	}
	if s != `["a"]` {
		t.Errorf("string vector: %q", s)
	}
}

func frameDef(t *testing.T) TypeDef {
	t.Helper()
	i64v, err := ParseType("i64v")
	if err != nil {
		t.Fatal(err)
	}
	sv, err := ParseType("Sv")
	if err != nil {
		t.Fatal(err)
	}
	return TypeDef{{Name: "a", Type: i64v}, {Name: "b", Type: sv}}
}

func TestReprFrame(t *testing.T) {
	in := NewInterpreter()
	a := []int64{1, 2}
	b := []string{"x", "y"}
	s, err := in.reprFrame(frameDef(t), Dataframe{&a, &b})
	if err != nil {
		t.Fatal(err)
	}
	if s != "a b\n1 x\n2 y" {
		t.Errorf("got %q", s)
	}
}

func TestReprFrameElidesRows(t *testing.T) {
	in := NewInterpreter()
	in.SetConsoleSize(8, 80)
	a := make([]int64, 10)
	b := make([]string, 10)
	for i := range a {
		a[i] = int64(i)
		b[i] = "r"
	}
	s, err := in.reprFrame(frameDef(t), Dataframe{&a, &b})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(s, "\n")
	// Header, first rows, the dotted row, the final row.
	if len(lines) != 5 {
		t.Fatalf("line count: got %d in %q", len(lines), s)
	}
	if !strings.Contains(lines[3], "...") {
		t.Errorf("missing elision row: %q", s)
	}
	if !strings.HasPrefix(lines[4], "9") {
		t.Errorf("last row should survive: %q", lines[4])
	}
}

func TestReprFrameCutsWideLines(t *testing.T) {
	in := NewInterpreter()
	in.SetConsoleSize(24, 20)
	a := []int64{1}
	b := []string{strings.Repeat("w", 40)}
	s, err := in.reprFrame(frameDef(t), Dataframe{&a, &b})
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(s, "\n") {
		if len(line) > 20 {
			t.Errorf("line exceeds console width: %q", line)
		}
		if !strings.HasSuffix(line, "...") {
			t.Errorf("cut line should end with ellipsis: %q", line)
		}
	}
}
