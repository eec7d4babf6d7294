package vvm

import (
	"errors"
)

// Elementwise execution errors
var (
	ErrLengthMismatch = errors.New("mismatch array lengths")
	ErrIndexRange     = errors.New("index out of bounds")
)

// storageOf maps a kind to the kind whose Go storage it shares. The
// temporal kinds are int64-backed.
func storageOf(k ScalarKind) ScalarKind {
	switch k {
	case KTimestamp, KTimedelta, KTime, KDate:
		return KInt64
	}
	return k
}

// allKinds is the generated-family ordering of element kinds. It
// differs from the type-code ordering: timedelta comes last.
var allKinds = []ScalarKind{
	KInt64, KFloat64, KBool, KString, KChar,
	KTimestamp, KTime, KDate, KTimedelta,
}

// shapePairs orders the four operand shapes of a binary family:
// scalar-scalar, scalar-vector, vector-scalar, vector-vector.
var shapePairs = [4][2]bool{{false, false}, {false, true}, {true, false}, {true, true}}

// binSS..binVV build the four shapes of a binary operation. A nil
// operand element yields the result class's nil.
func binSS[T, U any](ca class[T], cr class[U], f func(T, T) U) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		x, err := valueOf(in, args[0], ca)
		if err != nil {
			return err
		}
		y, err := valueOf(in, args[1], ca)
		if err != nil {
			return err
		}
		z, err := refOf[U](in, args[2])
		if err != nil {
			return err
		}
		if ca.isNil(x) || ca.isNil(y) {
			*z = cr.nilValue
		} else {
			*z = f(x, y)
		}
		return nil
	}
}

func binSV[T, U any](ca class[T], cr class[U], f func(T, T) U) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		x, err := valueOf(in, args[0], ca)
		if err != nil {
			return err
		}
		ys, err := refOf[[]T](in, args[1])
		if err != nil {
			return err
		}
		z, err := refOf[[]U](in, args[2])
		if err != nil {
			return err
		}
		out := make([]U, len(*ys))
		for i, y := range *ys {
			if ca.isNil(x) || ca.isNil(y) {
				out[i] = cr.nilValue
			} else {
				out[i] = f(x, y)
			}
		}
		*z = out
		return nil
	}
}

func binVS[T, U any](ca class[T], cr class[U], f func(T, T) U) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		xs, err := refOf[[]T](in, args[0])
		if err != nil {
			return err
		}
		y, err := valueOf(in, args[1], ca)
		if err != nil {
			return err
		}
		z, err := refOf[[]U](in, args[2])
		if err != nil {
			return err
		}
		out := make([]U, len(*xs))
		for i, x := range *xs {
			if ca.isNil(x) || ca.isNil(y) {
				out[i] = cr.nilValue
			} else {
				out[i] = f(x, y)
			}
		}
		*z = out
		return nil
	}
}

func binVV[T, U any](ca class[T], cr class[U], f func(T, T) U) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		xs, err := refOf[[]T](in, args[0])
		if err != nil {
			return err
		}
		ys, err := refOf[[]T](in, args[1])
		if err != nil {
			return err
		}
		if len(*xs) != len(*ys) {
			return ErrLengthMismatch
		}
		z, err := refOf[[]U](in, args[2])
		if err != nil {
			return err
		}
		out := make([]U, len(*xs))
		for i, x := range *xs {
			y := (*ys)[i]
			if ca.isNil(x) || ca.isNil(y) {
				out[i] = cr.nilValue
			} else {
				out[i] = f(x, y)
			}
		}
		*z = out
		return nil
	}
}

func binShapes[T, U any](ca class[T], cr class[U], f func(T, T) U) [4]execFn {
	return [4]execFn{
		binSS(ca, cr, f),
		binSV(ca, cr, f),
		binVS(ca, cr, f),
		binVV(ca, cr, f),
	}
}

// registerBinShapes registers the four shapes of base over operand
// kind k. Result registers are typed by the exec closures, not the name.
func registerBinShapes(base string, k ScalarKind, shapes [4]execFn) {
	for i, sh := range shapePairs {
		name := base + "_" + opSuffix(k, sh[0]) + "_" + opSuffix(k, sh[1])
		registerOp(name, 3, shapes[i])
	}
}

// unS and unV build unary operation shapes.
func unS[T any](ca class[T], f func(T) T) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		x, err := valueOf(in, args[0], ca)
		if err != nil {
			return err
		}
		z, err := refOf[T](in, args[1])
		if err != nil {
			return err
		}
		if ca.isNil(x) {
			*z = ca.nilValue
		} else {
			*z = f(x)
		}
		return nil
	}
}

func unV[T any](ca class[T], f func(T) T) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		xs, err := refOf[[]T](in, args[0])
		if err != nil {
			return err
		}
		z, err := refOf[[]T](in, args[1])
		if err != nil {
			return err
		}
		out := make([]T, len(*xs))
		for i, x := range *xs {
			if ca.isNil(x) {
				out[i] = ca.nilValue
			} else {
				out[i] = f(x)
			}
		}
		*z = out
		return nil
	}
}

// reduceV builds a vector reduction that skips nil elements.
func reduceV[T any](ca class[T], init T, f func(T, T) T) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		xs, err := refOf[[]T](in, args[0])
		if err != nil {
			return err
		}
		z, err := refOf[T](in, args[1])
		if err != nil {
			return err
		}
		acc := init
		for _, x := range *xs {
			if !ca.isNil(x) {
				acc = f(acc, x)
			}
		}
		*z = acc
		return nil
	}
}

// cmpFor returns the element comparison for an operation name over an
// ordered storage class.
func cmpFor[T any](less func(T, T) bool, eq func(T, T) bool, op string) func(T, T) bool {
	switch op {
	case "lt":
		return less
	case "gt":
		return func(a, b T) bool { return less(b, a) }
	case "eq":
		return eq
	case "ne":
		return func(a, b T) bool { return !eq(a, b) }
	case "lte":
		return func(a, b T) bool { return !less(b, a) }
	default: // gte
		return func(a, b T) bool { return !less(a, b) }
	}
}

func b2i(x bool) int64 {
	if x {
		return 1
	}
	return 0
}

// cmpShapesFor builds the four comparison shapes for op over kind k.
func cmpShapesFor(k ScalarKind, op string) [4]execFn {
	switch storageOf(k) {
	case KFloat64:
		f := cmpFor(func(a, b float64) bool { return a < b }, func(a, b float64) bool { return a == b }, op)
		return binShapes(floatClass, boolClass, f)
	case KBool:
		f := cmpFor(func(a, b bool) bool { return b2i(a) < b2i(b) }, func(a, b bool) bool { return a == b }, op)
		return binShapes(boolClass, boolClass, f)
	case KString:
		f := cmpFor(func(a, b string) bool { return a < b }, func(a, b string) bool { return a == b }, op)
		return binShapes(strClass, boolClass, f)
	case KChar:
		f := cmpFor(func(a, b byte) bool { return a < b }, func(a, b byte) bool { return a == b }, op)
		return binShapes(charClass, boolClass, f)
	default:
		f := cmpFor(func(a, b int64) bool { return a < b }, func(a, b int64) bool { return a == b }, op)
		return binShapes(intClass, boolClass, f)
	}
}

// Integer helpers. Division and shifts neutralize operands the
// hardware would trap on.
func intDiv(a, b int64) int64 {
	if b == 0 {
		return nilInt64
	}
	return a / b
}

func intMod(a, b int64) int64 {
	if b == 0 {
		return nilInt64
	}
	return a % b
}

func intBar(a, b int64) int64 {
	if b == 0 {
		return nilInt64
	}
	return (a / b) * b
}

func intLshift(a, b int64) int64 {
	if b < 0 || b > 63 {
		return nilInt64
	}
	return a << uint64(b)
}

func intRshift(a, b int64) int64 {
	if b < 0 || b > 63 {
		return nilInt64
	}
	return a >> uint64(b)
}
