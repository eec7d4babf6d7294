package vvm

import (
	"fmt"
	"strings"
)

// reprElemLimit caps vector display length.
const reprElemLimit = 25

func reprList[T any](xs []T, r func(T) string, limit int) string {
	n := len(xs)
	truncated := false
	if n > limit {
		n = limit
		truncated = true
	}
	parts := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		parts = append(parts, r(xs[i]))
	}
	if truncated {
		parts = append(parts, "...")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// reprVector renders a vector cell in bracketed display form.
func reprVector(k ScalarKind, cell any, limit int) (string, error) {
	switch xs := cell.(type) {
	case *[]int64:
		return reprList(*xs, reprIntKind(k), limit), nil
	case *[]float64:
		return reprList(*xs, reprFloat64, limit), nil
	case *[]bool:
		return reprList(*xs, reprBool, limit), nil
	case *[]string:
		return reprList(*xs, reprString, limit), nil
	case *[]byte:
		return reprList(*xs, reprChar, limit), nil
	}
	return "", fmt.Errorf("%w: %T", ErrColumnType, cell)
}

// displayColumn renders a column for tabular display, trimming float
// renderings column-wise.
func displayColumn(k ScalarKind, cell any) ([]string, error) {
	if xs, ok := cell.(*[]float64); ok {
		out := make([]string, len(*xs))
		for i, x := range *xs {
			out[i] = reprFloat64(x)
		}
		return out, nil
	}
	return stringifyColumn(k, cell)
}

// reprFrame renders a dataframe as an aligned table bounded by the
// console geometry: long frames elide middle rows, wide lines are cut
// with an ellipsis.
func (in *Interpreter) reprFrame(def TypeDef, df Dataframe) (string, error) {
	cols := make([][]string, len(df))
	widths := make([]int, len(df))
	for i, m := range def {
		if i >= len(df) {
			break
		}
		col, err := displayColumn(m.Type.Builtin().Kind(), df[i])
		if err != nil {
			return "", err
		}
		cols[i] = col
		widths[i] = len(m.Name)
		for _, s := range col {
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}

	line := func(fields func(c int) string) string {
		var b strings.Builder
		for c := range cols {
			s := fields(c)
			pad := widths[c] + 1 - len(s)
			if pad < 1 {
				pad = 1
			}
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(s)
		}
		out := b.String()
		if len(out) > 0 {
			out = out[1:]
		}
		if in.consoleCols > 3 && len(out) > in.consoleCols-3 {
			out = out[:in.consoleCols-3] + "..."
		}
		return out
	}

	nrows := df.Len()
	maxRows := in.consoleRows - 4
	if maxRows < 3 {
		maxRows = 3
	}

	var b strings.Builder
	b.WriteString(line(func(c int) string { return def[c].Name }))
	row := func(r int) {
		b.WriteByte('\n')
		b.WriteString(line(func(c int) string {
			if r < len(cols[c]) {
				return cols[c][r]
			}
			return ""
		}))
	}
	if nrows <= maxRows {
		for r := 0; r < nrows; r++ {
			row(r)
		}
	} else {
		for r := 0; r < maxRows-2; r++ {
			row(r)
		}
		b.WriteByte('\n')
		b.WriteString(line(func(c int) string { return "..." }))
		row(nrows - 1)
	}
	return b.String(), nil
}

// execRepr renders any value as display text into a string register.
func (in *Interpreter) execRepr(args, code []uint64) error {
	t, err := typeOperand(args[0])
	if err != nil {
		return err
	}
	var s string
	if t.UserDefined() {
		def, err := in.typedef(t)
		if err != nil {
			return err
		}
		df, err := refOf[Dataframe](in, args[1])
		if err != nil {
			return err
		}
		s, err = in.reprFrame(def, *df)
		if err != nil {
			return err
		}
	} else {
		b := t.Builtin()
		cell, err := in.argCell(t, args[1])
		if err != nil {
			return err
		}
		if b.Vector() {
			s, err = reprVector(b.Kind(), cell, reprElemLimit)
			if err != nil {
				return err
			}
		} else {
			s = reprScalar(b.Kind(), cell)
		}
	}
	z, err := refOf[string](in, args[2])
	if err != nil {
		return err
	}
	*z = s
	return nil
}
