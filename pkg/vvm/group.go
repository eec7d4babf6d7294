package vvm

import (
	"errors"
	"fmt"
)

var ErrCategorize = errors.New("cannot categorize column")

// categorizeVec assigns each distinct value a dense label in order of
// first appearance and accumulates labels scaled by stride.
func categorizeVec[T comparable](xs []T, labs []int64, stride int64) int64 {
	m := make(map[T]int64, len(xs))
	var next int64
	for i, x := range xs {
		code, ok := m[x]
		if !ok {
			code = next
			m[x] = code
			next++
		}
		labs[i] += code * stride
	}
	return next
}

// recategorize densifies combined labels in row order.
func recategorize(labs []int64) int64 {
	m := make(map[int64]int64, len(labs))
	var next int64
	for i, v := range labs {
		code, ok := m[v]
		if !ok {
			code = next
			m[v] = code
			next++
		}
		labs[i] = code
	}
	return next
}

func categorizeCol(cell any, labs []int64, stride int64) (int64, error) {
	if colLen(cell) != len(labs) {
		return 0, ErrLengthMismatch
	}
	var count int64
	switch xs := cell.(type) {
	case *[]int64:
		count = categorizeVec(*xs, labs, stride)
	case *[]float64:
		count = categorizeVec(*xs, labs, stride)
	case *[]bool:
		count = categorizeVec(*xs, labs, stride)
	case *[]string:
		count = categorizeVec(*xs, labs, stride)
	case *[]byte:
		count = categorizeVec(*xs, labs, stride)
	default:
		return 0, fmt.Errorf("%w: %T", ErrCategorize, cell)
	}
	if stride != 1 {
		count = recategorize(labs)
	}
	return count, nil
}

// categorizeDF labels every row of a key dataframe with a dense group
// id and returns the labels with the group count.
func categorizeDF(df Dataframe) ([]int64, int64, error) {
	labs := make([]int64, df.Len())
	stride := int64(1)
	var err error
	for _, col := range df {
		stride, err = categorizeCol(col, labs, stride)
		if err != nil {
			return nil, 0, err
		}
	}
	return labs, stride, nil
}

// categorizeVec2 labels two aligned columns against one shared
// dictionary, left rows first.
func categorizeVec2[T comparable](l, r []T, llabs, rlabs []int64, stride int64) int64 {
	m := make(map[T]int64, len(l)+len(r))
	var next int64
	assign := func(xs []T, labs []int64) {
		for i, x := range xs {
			code, ok := m[x]
			if !ok {
				code = next
				m[x] = code
				next++
			}
			labs[i] += code * stride
		}
	}
	assign(l, llabs)
	assign(r, rlabs)
	return next
}

func recategorize2(llabs, rlabs []int64) int64 {
	m := make(map[int64]int64, len(llabs)+len(rlabs))
	var next int64
	assign := func(labs []int64) {
		for i, v := range labs {
			code, ok := m[v]
			if !ok {
				code = next
				m[v] = code
				next++
			}
			labs[i] = code
		}
	}
	assign(llabs)
	assign(rlabs)
	return next
}

func categorizeCol2(lcell, rcell any, llabs, rlabs []int64, stride int64) (int64, error) {
	if colLen(lcell) != len(llabs) || colLen(rcell) != len(rlabs) {
		return 0, ErrLengthMismatch
	}
	var count int64
	switch ls := lcell.(type) {
	case *[]int64:
		rs, ok := rcell.(*[]int64)
		if !ok {
			return 0, fmt.Errorf("%w: %T vs %T", ErrCategorize, lcell, rcell)
		}
		count = categorizeVec2(*ls, *rs, llabs, rlabs, stride)
	case *[]float64:
		rs, ok := rcell.(*[]float64)
		if !ok {
			return 0, fmt.Errorf("%w: %T vs %T", ErrCategorize, lcell, rcell)
		}
		count = categorizeVec2(*ls, *rs, llabs, rlabs, stride)
	case *[]bool:
		rs, ok := rcell.(*[]bool)
		if !ok {
			return 0, fmt.Errorf("%w: %T vs %T", ErrCategorize, lcell, rcell)
		}
		count = categorizeVec2(*ls, *rs, llabs, rlabs, stride)
	case *[]string:
		rs, ok := rcell.(*[]string)
		if !ok {
			return 0, fmt.Errorf("%w: %T vs %T", ErrCategorize, lcell, rcell)
		}
		count = categorizeVec2(*ls, *rs, llabs, rlabs, stride)
	case *[]byte:
		rs, ok := rcell.(*[]byte)
		if !ok {
			return 0, fmt.Errorf("%w: %T vs %T", ErrCategorize, lcell, rcell)
		}
		count = categorizeVec2(*ls, *rs, llabs, rlabs, stride)
	default:
		return 0, fmt.Errorf("%w: %T", ErrCategorize, lcell)
	}
	if stride != 1 {
		count = recategorize2(llabs, rlabs)
	}
	return count, nil
}

// categorizeDF2 labels two key dataframes of the same shape against a
// shared dictionary, so equal rows get equal labels across frames.
func categorizeDF2(l, r Dataframe) ([]int64, []int64, int64, error) {
	if len(l) != len(r) {
		return nil, nil, 0, fmt.Errorf("%w: %d vs %d key columns", ErrFrameLengths, len(l), len(r))
	}
	llabs := make([]int64, l.Len())
	rlabs := make([]int64, r.Len())
	stride := int64(1)
	var err error
	for i := range l {
		stride, err = categorizeCol2(l[i], r[i], llabs, rlabs, stride)
		if err != nil {
			return nil, nil, 0, err
		}
	}
	return llabs, rlabs, stride, nil
}

// execGroup partitions a dataframe by key columns. It emits three
// results: a seed frame typed by the result type whose leading
// columns hold each group's key values, a vector of per-group
// sub-frames in first-appearance order, and the group count.
func (in *Interpreter) execGroup(args, code []uint64) error {
	if _, err := typeOperand(args[0]); err != nil {
		return err
	}
	df, err := refOf[Dataframe](in, args[1])
	if err != nil {
		return err
	}
	keyType, err := typeOperand(args[2])
	if err != nil {
		return err
	}
	if !keyType.UserDefined() {
		return fmt.Errorf("%w: cannot group by builtin type %s", ErrUserOnly, keyType)
	}
	keys, err := refOf[Dataframe](in, args[3])
	if err != nil {
		return err
	}
	retType, err := typeOperand(args[4])
	if err != nil {
		return err
	}

	labs, count, err := categorizeDF(*keys)
	if err != nil {
		return err
	}

	// Counting sort of row indices keeps rows in original order
	// within each group.
	counts := make([]int64, count)
	for _, l := range labs {
		counts[l]++
	}
	igroup := make([][]int64, count)
	for g := range igroup {
		igroup[g] = make([]int64, 0, counts[g])
	}
	firsts := make([]int64, count)
	for g := range firsts {
		firsts[g] = -1
	}
	for i, l := range labs {
		if firsts[l] < 0 {
			firsts[l] = int64(i)
		}
		igroup[l] = append(igroup[l], int64(i))
	}

	groups := make(Dataframe, count)
	for g := range igroup {
		sub, err := gatherRows(*df, igroup[g])
		if err != nil {
			return err
		}
		groups[g] = sub
	}

	initCell, err := in.alloc(retType)
	if err != nil {
		return err
	}
	initDF := initCell.(*Dataframe)
	keyed, err := gatherRows(*keys, firsts)
	if err != nil {
		return err
	}
	for i := range *keyed {
		if i < len(*initDF) {
			(*initDF)[i] = (*keyed)[i]
		}
	}

	if err := in.setCell(args[5], initDF); err != nil {
		return err
	}
	if err := in.setCell(args[6], &groups); err != nil {
		return err
	}
	z, err := refOf[int64](in, args[7])
	if err != nil {
		return err
	}
	*z = count
	return nil
}
