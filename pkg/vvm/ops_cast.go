package vvm

import (
	"fmt"
	"strings"
)

// castS and castV build cast shapes. The conversion itself owns nil
// handling, since string casts map nils to empty strings rather than
// sentinel values.
func castS[T, U any](ca class[T], conv func(T) U) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		x, err := valueOf(in, args[0], ca)
		if err != nil {
			return err
		}
		z, err := refOf[U](in, args[1])
		if err != nil {
			return err
		}
		*z = conv(x)
		return nil
	}
}

func castV[T, U any](conv func(T) U) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		xs, err := refOf[[]T](in, args[0])
		if err != nil {
			return err
		}
		z, err := refOf[[]U](in, args[1])
		if err != nil {
			return err
		}
		out := make([]U, len(*xs))
		for i, x := range *xs {
			out[i] = conv(x)
		}
		*z = out
		return nil
	}
}

// castExec builds the scalar and vector executors for one source and
// target kind pair.
func castExec(src, tgt ScalarKind) (execFn, execFn) {
	ss := storageOf(src)
	switch storageOf(tgt) {
	case KString:
		switch ss {
		case KFloat64:
			conv := func(x float64) string { return trimTrailingZeros(stringFloat64(x)) }
			return castS(floatClass, conv), castV(conv)
		case KBool:
			return castS(boolClass, reprBool), castV(reprBool)
		case KString:
			conv := func(x string) string { return x }
			return castS(strClass, conv), castV(conv)
		case KChar:
			return castS(charClass, stringChar), castV(stringChar)
		default:
			conv := func(x int64) string { return stringTimeValue(src, x) }
			return castS(intClass, conv), castV(conv)
		}
	case KFloat64:
		switch ss {
		case KInt64:
			conv := func(x int64) float64 {
				if isNilInt64(x) {
					return nilFloat64()
				}
				return float64(x)
			}
			return castS(intClass, conv), castV(conv)
		case KString:
			return castS(strClass, parseFloat64), castV(parseFloat64)
		default:
			conv := func(x float64) float64 { return x }
			return castS(floatClass, conv), castV(conv)
		}
	case KChar:
		switch ss {
		case KInt64:
			conv := func(x int64) byte {
				if isNilInt64(x) {
					return nilChar
				}
				return byte(x)
			}
			return castS(intClass, conv), castV(conv)
		default:
			conv := func(x byte) byte { return x }
			return castS(charClass, conv), castV(conv)
		}
	case KBool:
		switch ss {
		case KString:
			return castS(strClass, parseBool), castV(parseBool)
		default:
			conv := func(x bool) bool { return x }
			return castS(boolClass, conv), castV(conv)
		}
	default: // an int64-backed kind
		switch ss {
		case KFloat64:
			conv := func(x float64) int64 {
				if isNilFloat64(x) {
					return nilInt64
				}
				return int64(x)
			}
			return castS(floatClass, conv), castV(conv)
		case KBool:
			return castS(boolClass, b2i), castV(b2i)
		case KString:
			conv := func(s string) int64 { return parseTimeValue(tgt, s) }
			return castS(strClass, conv), castV(conv)
		case KChar:
			conv := func(x byte) int64 {
				if isNilChar(x) {
					return nilInt64
				}
				return int64(x)
			}
			return castS(charClass, conv), castV(conv)
		default:
			conv := func(x int64) int64 { return x }
			return castS(intClass, conv), castV(conv)
		}
	}
}

// registerCasts registers the cast families in target-major order,
// scalar before vector for each source.
func registerCasts() {
	pairs := []struct {
		tgt  ScalarKind
		srcs []ScalarKind
	}{
		{KString, allKinds},
		{KInt64, allKinds},
		{KFloat64, []ScalarKind{KFloat64, KInt64, KString}},
		{KChar, []ScalarKind{KChar, KInt64}},
		{KBool, []ScalarKind{KBool}},
		{KTimestamp, []ScalarKind{KTimestamp, KTime, KDate, KInt64, KString}},
		{KTimedelta, []ScalarKind{KTimedelta, KInt64, KString}},
		{KTime, []ScalarKind{KTimestamp, KTime, KInt64, KString}},
		{KDate, []ScalarKind{KTimestamp, KDate, KInt64, KString}},
	}
	for _, p := range pairs {
		for _, src := range p.srcs {
			sExec, vExec := castExec(src, p.tgt)
			registerOp("cast_"+opSuffix(src, false)+"_"+opSuffix(p.tgt, false), 2, sExec)
			registerOp("cast_"+opSuffix(src, true)+"_"+opSuffix(p.tgt, true), 2, vExec)
		}
	}
}

// reprIntKind picks the display renderer for an int64-backed kind.
func reprIntKind(k ScalarKind) func(int64) string {
	if k == KInt64 {
		return reprInt64
	}
	return func(x int64) string { return reprTimeValue(k, x) }
}

func (in *Interpreter) printResult(op uint64) error {
	z, err := refOf[int64](in, op)
	if err != nil {
		return err
	}
	*z = 0
	return nil
}

// printSExec prints a scalar in storage form followed by a newline.
func printSExec(k ScalarKind) execFn {
	switch storageOf(k) {
	case KFloat64:
		return func(in *Interpreter, args, code []uint64) error {
			x, err := valueOf(in, args[0], floatClass)
			if err != nil {
				return err
			}
			fmt.Fprintln(in.out, trimTrailingZeros(stringFloat64(x)))
			return in.printResult(args[1])
		}
	case KBool:
		return func(in *Interpreter, args, code []uint64) error {
			x, err := in.boolVal(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(in.out, reprBool(x))
			return in.printResult(args[1])
		}
	case KString:
		return func(in *Interpreter, args, code []uint64) error {
			x, err := in.strVal(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(in.out, x)
			return in.printResult(args[1])
		}
	case KChar:
		return func(in *Interpreter, args, code []uint64) error {
			x, err := valueOf(in, args[0], charClass)
			if err != nil {
				return err
			}
			fmt.Fprintln(in.out, stringChar(x))
			return in.printResult(args[1])
		}
	default:
		return func(in *Interpreter, args, code []uint64) error {
			x, err := in.intVal(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(in.out, stringTimeValue(k, x))
			return in.printResult(args[1])
		}
	}
}

func printVFor[T any](r func(T) string) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		xs, err := refOf[[]T](in, args[0])
		if err != nil {
			return err
		}
		var b strings.Builder
		b.WriteByte('[')
		for i, x := range *xs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r(x))
		}
		b.WriteByte(']')
		fmt.Fprintln(in.out, b.String())
		return in.printResult(args[1])
	}
}

// printVExec prints a vector in bracketed display form.
func printVExec(k ScalarKind) execFn {
	switch storageOf(k) {
	case KFloat64:
		return printVFor(reprFloat64)
	case KBool:
		return printVFor(reprBool)
	case KString:
		return printVFor(reprString)
	case KChar:
		return printVFor(reprChar)
	default:
		return printVFor(reprIntKind(k))
	}
}

// registerPrints registers print over all scalars, then all vectors.
func registerPrints() {
	for _, k := range allKinds {
		registerOp("print_"+opSuffix(k, false), 2, printSExec(k))
	}
	for _, k := range allKinds {
		registerOp("print_"+opSuffix(k, true), 2, printVExec(k))
	}
}
