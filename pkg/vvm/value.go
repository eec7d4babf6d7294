package vvm

import (
	"math"
	"strconv"
	"strings"
)

// Nil sentinels. Integer-backed kinds reserve their maximum value,
// floats use NaN, chars the DEL byte. Bools and strings have no nil.
const (
	nilInt64 int64 = math.MaxInt64
	nilChar  byte  = 0x7F
)

func nilFloat64() float64 { return math.NaN() }

func isNilInt64(x int64) bool     { return x == nilInt64 }
func isNilFloat64(x float64) bool { return math.IsNaN(x) }
func isNilChar(x byte) bool       { return x == nilChar }

// Dataframe is a row-major-order collection of column cells. Each cell
// holds a boxed scalar vector (or a nested *Dataframe for grouped
// results), aliased exactly as register cells are.
type Dataframe []any

// colLen returns the row count of a column cell.
func colLen(cell any) int {
	switch xs := cell.(type) {
	case *[]int64:
		return len(*xs)
	case *[]float64:
		return len(*xs)
	case *[]bool:
		return len(*xs)
	case *[]string:
		return len(*xs)
	case *[]byte:
		return len(*xs)
	case *Dataframe:
		return len(*xs)
	}
	return 0
}

// Len returns the row count of the dataframe, taken from its first
// column. An empty definition has zero rows.
func (df Dataframe) Len() int {
	if len(df) == 0 {
		return 0
	}
	return colLen(df[0])
}

// class bundles the per-storage behaviors the generic operation
// builders need: the nil sentinel, the nil test, and immediate
// payload decoding.
type class[T any] struct {
	nilValue T
	isNil    func(T) bool
	imm      func(uint64) (T, bool)
}

var (
	intClass = class[int64]{
		nilValue: nilInt64,
		isNil:    isNilInt64,
		imm:      func(u uint64) (int64, bool) { return int64(u), true },
	}
	floatClass = class[float64]{
		nilValue: nilFloat64(),
		isNil:    isNilFloat64,
		imm:      func(u uint64) (float64, bool) { return 0, false },
	}
	boolClass = class[bool]{
		nilValue: false,
		isNil:    func(bool) bool { return false },
		imm:      func(u uint64) (bool, bool) { return u != 0, true },
	}
	strClass = class[string]{
		nilValue: "",
		isNil:    func(string) bool { return false },
		imm:      func(u uint64) (string, bool) { return "", false },
	}
	charClass = class[byte]{
		nilValue: nilChar,
		isNil:    isNilChar,
		imm:      func(u uint64) (byte, bool) { return byte(u), true },
	}
)

// trimTrailingZeros drops trailing zeros from a fixed-point rendering,
// always keeping one digit after the point.
func trimTrailingZeros(s string) string {
	if !strings.ContainsRune(s, '.') {
		return s
	}
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

// reprInt64 and friends render display form: nils appear as "nil"
// (or "nan" for floats), strings are quoted, chars single-quoted.
func reprInt64(x int64) string {
	if isNilInt64(x) {
		return "nil"
	}
	return strconv.FormatInt(x, 10)
}

func reprFloat64(x float64) string {
	if isNilFloat64(x) {
		return "nan"
	}
	return trimTrailingZeros(formatFloat(x))
}

func reprBool(x bool) string {
	if x {
		return "true"
	}
	return "false"
}

func reprString(x string) string { return strconv.Quote(x) }

func reprChar(x byte) string {
	if isNilChar(x) {
		return "''"
	}
	return "'" + string(x) + "'"
}

// stringInt64 and friends render storage form for casts and store:
// nils become the empty string, strings and chars are unquoted.
func stringInt64(x int64) string {
	if isNilInt64(x) {
		return ""
	}
	return strconv.FormatInt(x, 10)
}

func stringFloat64(x float64) string {
	if isNilFloat64(x) {
		return ""
	}
	return formatFloat(x)
}

func stringChar(x byte) string {
	if isNilChar(x) {
		return ""
	}
	return string(x)
}

// parseInt64 and friends invert the storage form; anything that does
// not parse completely maps to nil.
func parseInt64(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nilInt64
	}
	return v
}

func parseFloat64(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nilFloat64()
	}
	return v
}

func parseBool(s string) bool { return s == "true" }

func parseChar(s string) byte {
	if len(s) != 1 {
		return nilChar
	}
	return s[0]
}

// reprScalar renders the display form of one element of the given kind.
// Int-backed time kinds get their own textual layouts.
func reprScalar(k ScalarKind, cell any) string {
	switch k {
	case KInt64:
		return reprInt64(*cell.(*int64))
	case KFloat64:
		return reprFloat64(*cell.(*float64))
	case KBool:
		return reprBool(*cell.(*bool))
	case KString:
		return reprString(*cell.(*string))
	case KChar:
		return reprChar(*cell.(*byte))
	default:
		return reprTimeValue(k, *cell.(*int64))
	}
}

// stringifyScalarKind renders storage form per kind (used by store and
// the string casts).
func stringifyKind(k ScalarKind) func(any) string {
	switch k {
	case KInt64:
		return func(v any) string { return stringInt64(v.(int64)) }
	case KFloat64:
		return func(v any) string { return stringFloat64(v.(float64)) }
	case KBool:
		return func(v any) string { return reprBool(v.(bool)) }
	case KString:
		return func(v any) string { return v.(string) }
	case KChar:
		return func(v any) string { return stringChar(v.(byte)) }
	default:
		return func(v any) string { return stringTimeValue(k, v.(int64)) }
	}
}
