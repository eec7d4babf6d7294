package vvm

import (
	"errors"
	"fmt"
)

var ErrDuplicateKeys = errors.New("duplicate keys in right table")

// execEqmatch matches each left key row against a unique right key
// row. Left indices come out as the identity; right indices hold the
// matching right row or -1, which materializes as nil on gather.
func (in *Interpreter) execEqmatch(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	if !t.UserDefined() {
		return fmt.Errorf("%w: cannot match on builtin type %s", ErrUserOnly, t)
	}
	left, err := refOf[Dataframe](in, args[1])
	if err != nil {
		return err
	}
	right, err := refOf[Dataframe](in, args[2])
	if err != nil {
		return err
	}
	llabs, rlabs, _, err := categorizeDF2(*left, *right)
	if err != nil {
		return err
	}

	byLabel := make(map[int64]int64, len(rlabs))
	for i, l := range rlabs {
		if j, ok := byLabel[l]; ok {
			return fmt.Errorf("%w: at index %d and %d", ErrDuplicateKeys, j, i)
		}
		byLabel[l] = int64(i)
	}

	ri := make([]int64, len(llabs))
	for i, l := range llabs {
		if j, ok := byLabel[l]; ok {
			ri[i] = j
		} else {
			ri[i] = -1
		}
	}

	li, err := refOf[[]int64](in, args[3])
	if err != nil {
		return err
	}
	*li = identityIndices(len(llabs))
	ro, err := refOf[[]int64](in, args[4])
	if err != nil {
		return err
	}
	*ro = ri
	return nil
}
