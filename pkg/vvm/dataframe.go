package vvm

import (
	"errors"
	"fmt"
	"strings"
)

// Dataframe operation errors
var (
	ErrColumnType    = errors.New("unsupported column type")
	ErrUnknownColumn = errors.New("unknown target column")
	ErrFrameLengths  = errors.New("mismatch dataframe lengths")
)

func filterVec[T any](xs []T, mask []bool) (*[]T, error) {
	if len(xs) != len(mask) {
		return nil, ErrLengthMismatch
	}
	out := []T{}
	for i, keep := range mask {
		if keep {
			out = append(out, xs[i])
		}
	}
	return &out, nil
}

func gatherVec[T any](xs []T, idxs []int64, nilValue T) (*[]T, error) {
	out := make([]T, len(idxs))
	for i, idx := range idxs {
		if idx < 0 {
			out[i] = nilValue
			continue
		}
		if idx >= int64(len(xs)) {
			return nil, fmt.Errorf("%w: %d of %d", ErrIndexRange, idx, len(xs))
		}
		out[i] = xs[idx]
	}
	return &out, nil
}

// filterCell compacts a column by a boolean mask.
func filterCell(cell any, mask []bool) (any, error) {
	switch xs := cell.(type) {
	case *[]int64:
		return filterVec(*xs, mask)
	case *[]float64:
		return filterVec(*xs, mask)
	case *[]bool:
		return filterVec(*xs, mask)
	case *[]string:
		return filterVec(*xs, mask)
	case *[]byte:
		return filterVec(*xs, mask)
	}
	return nil, fmt.Errorf("%w: %T", ErrColumnType, cell)
}

// gatherCell reorders a column by an index vector; negative indices
// produce nil elements.
func gatherCell(cell any, idxs []int64) (any, error) {
	switch xs := cell.(type) {
	case *[]int64:
		return gatherVec(*xs, idxs, nilInt64)
	case *[]float64:
		return gatherVec(*xs, idxs, nilFloat64())
	case *[]bool:
		return gatherVec(*xs, idxs, false)
	case *[]string:
		return gatherVec(*xs, idxs, "")
	case *[]byte:
		return gatherVec(*xs, idxs, nilChar)
	}
	return nil, fmt.Errorf("%w: %T", ErrColumnType, cell)
}

// filterRows and gatherRows build fresh dataframes column by column.
func filterRows(df Dataframe, mask []bool) (*Dataframe, error) {
	out := make(Dataframe, len(df))
	for i, col := range df {
		cell, err := filterCell(col, mask)
		if err != nil {
			return nil, err
		}
		out[i] = cell
	}
	return &out, nil
}

func gatherRows(df Dataframe, idxs []int64) (*Dataframe, error) {
	out := make(Dataframe, len(df))
	for i, col := range df {
		cell, err := gatherCell(col, idxs)
		if err != nil {
			return nil, err
		}
		out[i] = cell
	}
	return &out, nil
}

// execWhere compacts a dataframe's rows by a boolean mask.
func (in *Interpreter) execWhere(args, code []uint64) error {
	if _, err := typeOperand(args[0]); err != nil {
		return err
	}
	df, err := refOf[Dataframe](in, args[1])
	if err != nil {
		return err
	}
	mask, err := refOf[[]bool](in, args[2])
	if err != nil {
		return err
	}
	out, err := filterRows(*df, *mask)
	if err != nil {
		return err
	}
	return in.setCell(args[3], out)
}

// execMultidx reorders a dataframe's rows by an index vector.
func (in *Interpreter) execMultidx(args, code []uint64) error {
	if _, err := typeOperand(args[0]); err != nil {
		return err
	}
	df, err := refOf[Dataframe](in, args[1])
	if err != nil {
		return err
	}
	idxs, err := refOf[[]int64](in, args[2])
	if err != nil {
		return err
	}
	out, err := gatherRows(*df, *idxs)
	if err != nil {
		return err
	}
	return in.setCell(args[3], out)
}

// execTake projects a dataframe onto a narrower type, matching member
// names of the target against the source.
func (in *Interpreter) execTake(args, code []uint64) error {
	srcType, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	df, err := refOf[Dataframe](in, args[1])
	if err != nil {
		return err
	}
	dstType, err := typeOperand(args[2])
	if err != nil {
		return err
	}
	srcDef, err := in.typedef(srcType)
	if err != nil {
		return err
	}
	dstDef, err := in.typedef(dstType)
	if err != nil {
		return err
	}
	byName := make(map[string]int, len(srcDef))
	for i, m := range srcDef {
		byName[m.Name] = i
	}
	out := make(Dataframe, len(dstDef))
	for i, m := range dstDef {
		j, ok := byName[m.Name]
		if !ok || j >= len(*df) {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, m.Name)
		}
		out[i] = (*df)[j]
	}
	return in.setCell(args[3], &out)
}

// execConcat widens a dataframe by the columns of another of equal
// length. Columns are aliased, not copied.
func (in *Interpreter) execConcat(args, code []uint64) error {
	if _, err := typeOperand(args[0]); err != nil {
		return err
	}
	left, err := refOf[Dataframe](in, args[1])
	if err != nil {
		return err
	}
	right, err := refOf[Dataframe](in, args[2])
	if err != nil {
		return err
	}
	if len(*left) > 0 && len(*right) > 0 && left.Len() != right.Len() {
		return fmt.Errorf("%w: %d vs %d", ErrFrameLengths, left.Len(), right.Len())
	}
	out := make(Dataframe, 0, len(*left)+len(*right))
	out = append(out, (*left)...)
	out = append(out, (*right)...)
	return in.setCell(args[3], &out)
}

// stringifyColumn renders a column in storage form.
func stringifyColumn(k ScalarKind, cell any) ([]string, error) {
	switch xs := cell.(type) {
	case *[]int64:
		out := make([]string, len(*xs))
		for i, x := range *xs {
			out[i] = stringTimeValue(k, x)
		}
		return out, nil
	case *[]float64:
		out := make([]string, len(*xs))
		for i, x := range *xs {
			out[i] = stringFloat64(x)
		}
		return out, nil
	case *[]bool:
		out := make([]string, len(*xs))
		for i, x := range *xs {
			out[i] = reprBool(x)
		}
		return out, nil
	case *[]string:
		return append([]string(nil), (*xs)...), nil
	case *[]byte:
		out := make([]string, len(*xs))
		for i, x := range *xs {
			out[i] = stringChar(x)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrColumnType, cell)
}

// renderRows renders a dataframe as delimited lines, header first.
func renderRows(def TypeDef, df Dataframe) ([]string, error) {
	names := make([]string, len(def))
	cols := make([][]string, len(df))
	for i, m := range def {
		names[i] = m.Name
		if i >= len(df) {
			break
		}
		col, err := stringifyColumn(m.Type.Builtin().Kind(), df[i])
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	rows := make([]string, 0, df.Len()+1)
	rows = append(rows, strings.Join(names, ","))
	for r := 0; r < df.Len(); r++ {
		fields := make([]string, len(cols))
		for c, col := range cols {
			if r < len(col) {
				fields[c] = col[r]
			}
		}
		rows = append(rows, strings.Join(fields, ","))
	}
	return rows, nil
}
