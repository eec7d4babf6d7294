package vvm

import (
	"errors"
	"fmt"
)

// As-of matching errors
var (
	ErrAsofDirection = errors.New("invalid as-of direction")
	ErrAsofType      = errors.New("invalid as-of type")
)

// asofDirection selects which side of each left value to search.
type asofDirection int64

const (
	asofBackward asofDirection = iota
	asofForward
	asofNearest
)

type number interface {
	~int64 | ~float64
}

func negIndices(n int) []int64 {
	ri := make([]int64, n)
	for i := range ri {
		ri[i] = -1
	}
	return ri
}

// advanceFn builds the cursor predicate for backward scans: consume
// right values at or before (strictly before) the left value.
func advanceFn[T any](strict bool, less func(T, T) bool) func(r, l T) bool {
	if strict {
		return func(r, l T) bool { return less(r, l) }
	}
	return func(r, l T) bool { return !less(l, r) }
}

// holdFn builds the cursor predicate for forward scans: a left value
// waits on the first right value at or after (strictly after) it.
func holdFn[T any](strict bool, less func(T, T) bool) func(l, r T) bool {
	if strict {
		return func(l, r T) bool { return less(l, r) }
	}
	return func(l, r T) bool { return !less(r, l) }
}

// asofScan computes backward or forward as-of matches over sorted
// arrays with one pass of two cursors.
func asofScan[T any](lv, rv []T, strict bool, dir asofDirection, less func(T, T) bool) ([]int64, error) {
	ri := negIndices(len(lv))
	switch dir {
	case asofBackward:
		adv := advanceFn(strict, less)
		rp := 0
		for lp := range lv {
			for rp < len(rv) && adv(rv[rp], lv[lp]) {
				rp++
			}
			ri[lp] = int64(rp) - 1
		}
	case asofForward:
		hold := holdFn(strict, less)
		lp := 0
		for rp := 0; rp < len(rv); rp++ {
			for lp < len(lv) && hold(lv[lp], rv[rp]) {
				ri[lp] = int64(rp)
				lp++
			}
		}
	case asofNearest:
		return nil, fmt.Errorf("%w: 'nearest' direction requires asofnear", ErrAsofDirection)
	default:
		return nil, fmt.Errorf("%w: %d", ErrAsofDirection, dir)
	}
	return ri, nil
}

// asofNearScan matches each left value with whichever neighboring
// right value is closer, preferring the earlier one on ties.
func asofNearScan[T number](lv, rv []T) []int64 {
	ri := negIndices(len(lv))
	rp := 0
	lp := 0
	for lp < len(lv) {
		for rp < len(rv) && rv[rp] <= lv[lp] {
			rp++
		}
		prev := rp - 1
		if rp < len(rv) {
			for lp < len(lv) && lv[lp] <= rv[rp] {
				if prev >= 0 {
					p := lv[lp] - rv[prev]
					n := rv[rp] - lv[lp]
					if p <= n {
						ri[lp] = int64(prev)
					} else {
						ri[lp] = int64(rp)
					}
				} else {
					ri[lp] = int64(rp)
				}
				lp++
			}
		} else {
			ri[lp] = int64(prev)
			lp++
		}
	}
	return ri
}

// asofWithinScan is the tolerance-bounded variant: a candidate match
// counts only when its distance stays within the given bound.
func asofWithinScan[T number](lv, rv []T, strict bool, dir asofDirection, within T) ([]int64, error) {
	ri := negIndices(len(lv))
	less := func(a, b T) bool { return a < b }
	switch dir {
	case asofBackward:
		adv := advanceFn(strict, less)
		rp := 0
		for lp := range lv {
			for rp < len(rv) && adv(rv[rp], lv[lp]) {
				rp++
			}
			if pos := rp - 1; pos >= 0 && lv[lp]-rv[pos] <= within {
				ri[lp] = int64(pos)
			}
		}
	case asofForward:
		hold := holdFn(strict, less)
		lp := 0
		for rp := 0; rp < len(rv); rp++ {
			for lp < len(lv) && hold(lv[lp], rv[rp]) {
				if rv[rp]-lv[lp] <= within {
					ri[lp] = int64(rp)
				}
				lp++
			}
		}
	case asofNearest:
		rp := 0
		lp := 0
		for lp < len(lv) {
			for rp < len(rv) && rv[rp] <= lv[lp] {
				rp++
			}
			prev := rp - 1
			if rp < len(rv) {
				for lp < len(lv) && lv[lp] <= rv[rp] {
					p := within + 1
					if prev >= 0 {
						p = lv[lp] - rv[prev]
					}
					n := rv[rp] - lv[lp]
					switch {
					case prev >= 0 && p <= n && p <= within:
						ri[lp] = int64(prev)
					case n <= within:
						ri[lp] = int64(rp)
					}
					lp++
				}
			} else {
				if prev >= 0 && lv[lp]-rv[prev] <= within {
					ri[lp] = int64(prev)
				}
				lp++
			}
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrAsofDirection, dir)
	}
	return ri, nil
}

// writeMatches stores the identity left indices and the computed
// right indices.
func (in *Interpreter) writeMatches(liOp, riOp uint64, n int, ri []int64) error {
	li, err := refOf[[]int64](in, liOp)
	if err != nil {
		return err
	}
	*li = identityIndices(n)
	ro, err := refOf[[]int64](in, riOp)
	if err != nil {
		return err
	}
	*ro = ri
	return nil
}

func asofMatchCols[T any](in *Interpreter, args []uint64, less func(T, T) bool) error {
	lv, err := refOf[[]T](in, args[1])
	if err != nil {
		return err
	}
	rv, err := refOf[[]T](in, args[2])
	if err != nil {
		return err
	}
	strict, err := in.boolVal(args[3])
	if err != nil {
		return err
	}
	dir, err := in.intVal(args[4])
	if err != nil {
		return err
	}
	ri, err := asofScan(*lv, *rv, strict, asofDirection(dir), less)
	if err != nil {
		return err
	}
	return in.writeMatches(args[5], args[6], len(*lv), ri)
}

// execAsofmatch computes backward or forward matches over sorted
// columns of any element kind.
func (in *Interpreter) execAsofmatch(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	switch storageOf(t.Builtin().Kind()) {
	case KFloat64:
		return asofMatchCols(in, args, func(a, b float64) bool { return a < b })
	case KBool:
		return asofMatchCols(in, args, func(a, b bool) bool { return b2i(a) < b2i(b) })
	case KString:
		return asofMatchCols(in, args, func(a, b string) bool { return a < b })
	case KChar:
		return asofMatchCols(in, args, func(a, b byte) bool { return a < b })
	default:
		return asofMatchCols(in, args, func(a, b int64) bool { return a < b })
	}
}

// orderedAsofKind admits the kinds with a meaningful distance metric.
func orderedAsofKind(t Type) (ScalarKind, error) {
	k := t.Builtin().Kind()
	switch k {
	case KInt64, KFloat64, KTimestamp, KTime, KDate:
		return k, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrAsofType, t)
}

func asofNearCols[T number](in *Interpreter, args []uint64) error {
	lv, err := refOf[[]T](in, args[1])
	if err != nil {
		return err
	}
	rv, err := refOf[[]T](in, args[2])
	if err != nil {
		return err
	}
	dir, err := in.intVal(args[4])
	if err != nil {
		return err
	}
	if asofDirection(dir) != asofNearest {
		return fmt.Errorf("%w: asofnear requires 'nearest' direction", ErrAsofDirection)
	}
	return in.writeMatches(args[5], args[6], len(*lv), asofNearScan(*lv, *rv))
}

func (in *Interpreter) execAsofnear(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	k, err := orderedAsofKind(t)
	if err != nil {
		return err
	}
	if storageOf(k) == KFloat64 {
		return asofNearCols[float64](in, args)
	}
	return asofNearCols[int64](in, args)
}

func asofWithinCols[T number](in *Interpreter, args []uint64, ca class[T]) error {
	lv, err := refOf[[]T](in, args[1])
	if err != nil {
		return err
	}
	rv, err := refOf[[]T](in, args[2])
	if err != nil {
		return err
	}
	strict, err := in.boolVal(args[3])
	if err != nil {
		return err
	}
	dir, err := in.intVal(args[4])
	if err != nil {
		return err
	}
	within, err := valueOf(in, args[5], ca)
	if err != nil {
		return err
	}
	ri, err := asofWithinScan(*lv, *rv, strict, asofDirection(dir), within)
	if err != nil {
		return err
	}
	return in.writeMatches(args[6], args[7], len(*lv), ri)
}

func (in *Interpreter) execAsofwithin(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	k, err := orderedAsofKind(t)
	if err != nil {
		return err
	}
	if storageOf(k) == KFloat64 {
		return asofWithinCols(in, args, floatClass)
	}
	return asofWithinCols(in, args, intClass)
}

// eqAsofLabels resolves the equality key frames of the combined
// operations to shared group labels.
func (in *Interpreter) eqAsofLabels(args []uint64) ([]int64, []int64, error) {
	t, err := typeOperand(args[0])
	if err != nil {
		return nil, nil, err
	}
	if !t.UserDefined() {
		return nil, nil, fmt.Errorf("%w: cannot match on builtin type %s", ErrUserOnly, t)
	}
	left, err := refOf[Dataframe](in, args[1])
	if err != nil {
		return nil, nil, err
	}
	right, err := refOf[Dataframe](in, args[2])
	if err != nil {
		return nil, nil, err
	}
	llabs, rlabs, _, err := categorizeDF2(*left, *right)
	if err != nil {
		return nil, nil, err
	}
	return llabs, rlabs, nil
}

// eqAsofScan computes per-label backward or forward matches in one
// pass, tracking the latest right row per label (backward) or the
// waiting left rows per label (forward).
func eqAsofScan[T any](lv, rv []T, llabs, rlabs []int64, strict bool, dir asofDirection, less func(T, T) bool) ([]int64, error) {
	ri := negIndices(len(lv))
	switch dir {
	case asofBackward:
		adv := advanceFn(strict, less)
		latest := make(map[int64]int64)
		rp := 0
		for lp := range lv {
			for rp < len(rv) && adv(rv[rp], lv[lp]) {
				latest[rlabs[rp]] = int64(rp)
				rp++
			}
			if pos, ok := latest[llabs[lp]]; ok {
				ri[lp] = pos
			}
		}
	case asofForward:
		hold := holdFn(strict, less)
		waiting := make(map[int64][]int)
		lp := 0
		for rp := 0; rp < len(rv); rp++ {
			for lp < len(lv) && hold(lv[lp], rv[rp]) {
				waiting[llabs[lp]] = append(waiting[llabs[lp]], lp)
				lp++
			}
			if pend := waiting[rlabs[rp]]; len(pend) > 0 {
				for _, p := range pend {
					ri[p] = int64(rp)
				}
				delete(waiting, rlabs[rp])
			}
		}
	case asofNearest:
		return nil, fmt.Errorf("%w: 'nearest' direction requires eqasofnear", ErrAsofDirection)
	default:
		return nil, fmt.Errorf("%w: %d", ErrAsofDirection, dir)
	}
	return ri, nil
}

// eqAsofNearScan is the per-label nearest match. Each pending left row
// is pre-filled with the last-seen earlier right row of its label; a
// right row at the scan boundary settles the pending rows of its own
// label by comparing distances, earlier winning ties. Pending rows
// whose label never surfaces at a boundary keep the pre-fill. hasBound
// limits matches to the given distance.
func eqAsofNearScan[T number](lv, rv []T, llabs, rlabs []int64, hasBound bool, within T) []int64 {
	ri := negIndices(len(lv))
	latest := make(map[int64]int64)
	pending := make(map[int64][]int)
	rp := 0
	for lp := 0; lp < len(lv); {
		for rp < len(rv) && rv[rp] <= lv[lp] {
			latest[rlabs[rp]] = int64(rp)
			rp++
		}
		if rp == len(rv) {
			if prev, ok := latest[llabs[lp]]; ok {
				if !hasBound || lv[lp]-rv[prev] <= within {
					ri[lp] = prev
				}
			}
			lp++
			continue
		}
		for lp < len(lv) && lv[lp] <= rv[rp] {
			pending[llabs[lp]] = append(pending[llabs[lp]], lp)
			if prev, ok := latest[llabs[lp]]; ok {
				if !hasBound || lv[lp]-rv[prev] <= within {
					ri[lp] = prev
				}
			}
			lp++
		}
		if pend := pending[rlabs[rp]]; len(pend) > 0 {
			next := int64(rp)
			if prev, ok := latest[rlabs[rp]]; ok {
				for _, p := range pend {
					d := lv[p] - rv[prev]
					n := rv[next] - lv[p]
					if d <= n {
						if !hasBound || d <= within {
							ri[p] = prev
						}
					} else if !hasBound || n <= within {
						ri[p] = next
					}
				}
			} else {
				for _, p := range pend {
					if !hasBound || rv[next]-lv[p] <= within {
						ri[p] = next
					}
				}
			}
			delete(pending, rlabs[rp])
		}
	}
	return ri
}

// eqAsofWithinScan bounds the backward and forward label scans.
func eqAsofWithinScan[T number](lv, rv []T, llabs, rlabs []int64, strict bool, dir asofDirection, within T) ([]int64, error) {
	less := func(a, b T) bool { return a < b }
	ri := negIndices(len(lv))
	switch dir {
	case asofBackward:
		adv := advanceFn(strict, less)
		latest := make(map[int64]int64)
		rp := 0
		for lp := range lv {
			for rp < len(rv) && adv(rv[rp], lv[lp]) {
				latest[rlabs[rp]] = int64(rp)
				rp++
			}
			if pos, ok := latest[llabs[lp]]; ok && lv[lp]-rv[pos] <= within {
				ri[lp] = pos
			}
		}
	case asofForward:
		hold := holdFn(strict, less)
		waiting := make(map[int64][]int)
		lp := 0
		for rp := 0; rp < len(rv); rp++ {
			for lp < len(lv) && hold(lv[lp], rv[rp]) {
				waiting[llabs[lp]] = append(waiting[llabs[lp]], lp)
				lp++
			}
			if pend := waiting[rlabs[rp]]; len(pend) > 0 {
				for _, p := range pend {
					if rv[rp]-lv[p] <= within {
						ri[p] = int64(rp)
					}
				}
				delete(waiting, rlabs[rp])
			}
		}
	case asofNearest:
		return eqAsofNearScan(lv, rv, llabs, rlabs, true, within), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrAsofDirection, dir)
	}
	return ri, nil
}

func eqAsofMatchCols[T any](in *Interpreter, args []uint64, llabs, rlabs []int64, less func(T, T) bool) error {
	lv, err := refOf[[]T](in, args[4])
	if err != nil {
		return err
	}
	rv, err := refOf[[]T](in, args[5])
	if err != nil {
		return err
	}
	if len(*lv) != len(llabs) || len(*rv) != len(rlabs) {
		return ErrLengthMismatch
	}
	strict, err := in.boolVal(args[6])
	if err != nil {
		return err
	}
	dir, err := in.intVal(args[7])
	if err != nil {
		return err
	}
	ri, err := eqAsofScan(*lv, *rv, llabs, rlabs, strict, asofDirection(dir), less)
	if err != nil {
		return err
	}
	return in.writeMatches(args[8], args[9], len(*lv), ri)
}

// execEqasofmatch combines an equality match on key frames with a
// backward or forward as-of match on ordering columns.
func (in *Interpreter) execEqasofmatch(args, code []uint64) error {
	llabs, rlabs, err := in.eqAsofLabels(args)
	if err != nil {
		return err
	}
	ont, err := typeOperand(args[3])
	if err != nil {
		return err
	}
	switch storageOf(ont.Builtin().Kind()) {
	case KFloat64:
		return eqAsofMatchCols(in, args, llabs, rlabs, func(a, b float64) bool { return a < b })
	case KBool:
		return eqAsofMatchCols(in, args, llabs, rlabs, func(a, b bool) bool { return b2i(a) < b2i(b) })
	case KString:
		return eqAsofMatchCols(in, args, llabs, rlabs, func(a, b string) bool { return a < b })
	case KChar:
		return eqAsofMatchCols(in, args, llabs, rlabs, func(a, b byte) bool { return a < b })
	default:
		return eqAsofMatchCols(in, args, llabs, rlabs, func(a, b int64) bool { return a < b })
	}
}

func eqAsofNearCols[T number](in *Interpreter, args []uint64, llabs, rlabs []int64) error {
	lv, err := refOf[[]T](in, args[4])
	if err != nil {
		return err
	}
	rv, err := refOf[[]T](in, args[5])
	if err != nil {
		return err
	}
	if len(*lv) != len(llabs) || len(*rv) != len(rlabs) {
		return ErrLengthMismatch
	}
	dir, err := in.intVal(args[7])
	if err != nil {
		return err
	}
	if asofDirection(dir) != asofNearest {
		return fmt.Errorf("%w: eqasofnear requires 'nearest' direction", ErrAsofDirection)
	}
	var zero T
	ri := eqAsofNearScan(*lv, *rv, llabs, rlabs, false, zero)
	return in.writeMatches(args[8], args[9], len(*lv), ri)
}

func (in *Interpreter) execEqasofnear(args, code []uint64) error {
	llabs, rlabs, err := in.eqAsofLabels(args)
	if err != nil {
		return err
	}
	ont, err := typeOperand(args[3])
	if err != nil {
		return err
	}
	k, err := orderedAsofKind(ont)
	if err != nil {
		return err
	}
	if storageOf(k) == KFloat64 {
		return eqAsofNearCols[float64](in, args, llabs, rlabs)
	}
	return eqAsofNearCols[int64](in, args, llabs, rlabs)
}

func eqAsofWithinCols[T number](in *Interpreter, args []uint64, llabs, rlabs []int64, ca class[T]) error {
	lv, err := refOf[[]T](in, args[4])
	if err != nil {
		return err
	}
	rv, err := refOf[[]T](in, args[5])
	if err != nil {
		return err
	}
	if len(*lv) != len(llabs) || len(*rv) != len(rlabs) {
		return ErrLengthMismatch
	}
	strict, err := in.boolVal(args[6])
	if err != nil {
		return err
	}
	dir, err := in.intVal(args[7])
	if err != nil {
		return err
	}
	within, err := valueOf(in, args[8], ca)
	if err != nil {
		return err
	}
	ri, err := eqAsofWithinScan(*lv, *rv, llabs, rlabs, strict, asofDirection(dir), within)
	if err != nil {
		return err
	}
	return in.writeMatches(args[9], args[10], len(*lv), ri)
}

func (in *Interpreter) execEqasofwithin(args, code []uint64) error {
	llabs, rlabs, err := in.eqAsofLabels(args)
	if err != nil {
		return err
	}
	ont, err := typeOperand(args[3])
	if err != nil {
		return err
	}
	k, err := orderedAsofKind(ont)
	if err != nil {
		return err
	}
	if storageOf(k) == KFloat64 {
		return eqAsofWithinCols(in, args, llabs, rlabs, floatClass)
	}
	return eqAsofWithinCols(in, args, llabs, rlabs, intClass)
}
