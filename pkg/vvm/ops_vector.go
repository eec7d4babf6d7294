package vvm

import "fmt"

func lenFor[T any]() execFn {
	return func(in *Interpreter, args, code []uint64) error {
		xs, err := refOf[[]T](in, args[0])
		if err != nil {
			return err
		}
		z, err := refOf[int64](in, args[1])
		if err != nil {
			return err
		}
		*z = int64(len(*xs))
		return nil
	}
}

func countFor[T any](ca class[T]) execFn {
	return func(in *Interpreter, args, code []uint64) error {
		xs, err := refOf[[]T](in, args[0])
		if err != nil {
			return err
		}
		z, err := refOf[int64](in, args[1])
		if err != nil {
			return err
		}
		var n int64
		for _, x := range *xs {
			if !ca.isNil(x) {
				n++
			}
		}
		*z = n
		return nil
	}
}

func lenExec(k ScalarKind) execFn {
	switch storageOf(k) {
	case KFloat64:
		return lenFor[float64]()
	case KBool:
		return lenFor[bool]()
	case KString:
		return lenFor[string]()
	case KChar:
		return lenFor[byte]()
	default:
		return lenFor[int64]()
	}
}

func countExec(k ScalarKind) execFn {
	switch storageOf(k) {
	case KFloat64:
		return countFor(floatClass)
	case KBool:
		return countFor(boolClass)
	case KString:
		return countFor(strClass)
	case KChar:
		return countFor(charClass)
	default:
		return countFor(intClass)
	}
}

// registerLengths registers len (all elements) and count (non-nil
// elements) over every vector kind.
func registerLengths() {
	for _, k := range allKinds {
		registerOp("len_"+opSuffix(k, true), 2, lenExec(k))
	}
	for _, k := range allKinds {
		registerOp("count_"+opSuffix(k, true), 2, countExec(k))
	}
}

// registerRange registers the integer iota constructor.
func registerRange() {
	registerOp("range_i64s", 2, func(in *Interpreter, args, code []uint64) error {
		n, err := in.intVal(args[0])
		if err != nil {
			return err
		}
		if n < 0 || isNilInt64(n) {
			return fmt.Errorf("%w: range length %d", ErrIndexRange, n)
		}
		z, err := refOf[[]int64](in, args[1])
		if err != nil {
			return err
		}
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(i)
		}
		*z = out
		return nil
	})
}

func delExec(in *Interpreter, args, code []uint64) error {
	return in.setCell(args[0], nil)
}

// registerDels registers del over all scalars, then all vectors. Both
// shapes release the register's cell.
func registerDels() {
	for _, k := range allKinds {
		registerOp("del_"+opSuffix(k, false), 1, delExec)
	}
	for _, k := range allKinds {
		registerOp("del_"+opSuffix(k, true), 1, delExec)
	}
}

// idxFor aliases one vector element into the result register, so
// assigning through the result writes back into the vector.
func idxFor[T any]() execFn {
	return func(in *Interpreter, args, code []uint64) error {
		xs, err := refOf[[]T](in, args[0])
		if err != nil {
			return err
		}
		y, err := in.intVal(args[1])
		if err != nil {
			return err
		}
		if y < 0 || y >= int64(len(*xs)) {
			return fmt.Errorf("%w: %d of %d", ErrIndexRange, y, len(*xs))
		}
		return in.setCell(args[2], &(*xs)[y])
	}
}

func idxExec(k ScalarKind) execFn {
	switch storageOf(k) {
	case KFloat64:
		return idxFor[float64]()
	case KBool:
		return idxFor[bool]()
	case KString:
		return idxFor[string]()
	case KChar:
		return idxFor[byte]()
	default:
		return idxFor[int64]()
	}
}

// registerIdx registers element access over every vector kind.
func registerIdx() {
	for _, k := range allKinds {
		registerOp("idx_"+opSuffix(k, true)+"_i64s", 3, idxExec(k))
	}
}
