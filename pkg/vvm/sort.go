package vvm

import (
	"fmt"

	"golang.org/x/exp/slices"
)

func compareBy[T any](xs []T, less func(T, T) bool) func(a, b int64) int {
	return func(a, b int64) int {
		switch {
		case less(xs[a], xs[b]):
			return -1
		case less(xs[b], xs[a]):
			return 1
		}
		return 0
	}
}

// columnCompare builds an index comparator over one column.
func columnCompare(cell any) (func(a, b int64) int, error) {
	switch xs := cell.(type) {
	case *[]int64:
		return compareBy(*xs, func(a, b int64) bool { return a < b }), nil
	case *[]float64:
		return compareBy(*xs, func(a, b float64) bool { return a < b }), nil
	case *[]bool:
		return compareBy(*xs, func(a, b bool) bool { return b2i(a) < b2i(b) }), nil
	case *[]string:
		return compareBy(*xs, func(a, b string) bool { return a < b }), nil
	case *[]byte:
		return compareBy(*xs, func(a, b byte) bool { return a < b }), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrColumnType, cell)
}

func identityIndices(n int) []int64 {
	idx := make([]int64, n)
	for i := range idx {
		idx[i] = int64(i)
	}
	return idx
}

// execIsort produces the row ordering that sorts a dataframe by all
// of its columns, leftmost most significant. Sorting each column
// stably from the last to the first yields exactly that ordering, and
// equal rows keep their original relative positions.
func (in *Interpreter) execIsort(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	if !t.UserDefined() {
		return fmt.Errorf("%w: cannot sort a builtin type %s", ErrUserOnly, t)
	}
	df, err := refOf[Dataframe](in, args[1])
	if err != nil {
		return err
	}
	idx := identityIndices(df.Len())
	for j := len(*df) - 1; j >= 0; j-- {
		cmp, err := columnCompare((*df)[j])
		if err != nil {
			return err
		}
		slices.SortStableFunc(idx, cmp)
	}
	z, err := refOf[[]int64](in, args[2])
	if err != nil {
		return err
	}
	*z = idx
	return nil
}
