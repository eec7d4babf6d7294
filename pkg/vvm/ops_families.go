package vvm

import "math"

// registerLogical registers or/and over booleans.
func registerLogical() {
	registerBinShapes("or", KBool, binShapes(boolClass, boolClass,
		func(a, b bool) bool { return a || b }))
	registerBinShapes("and", KBool, binShapes(boolClass, boolClass,
		func(a, b bool) bool { return a && b }))
}

// registerIntegerOps registers the integer-only binary families.
func registerIntegerOps() {
	fns := []struct {
		base string
		f    func(int64, int64) int64
	}{
		{"bitand", func(a, b int64) int64 { return a & b }},
		{"bitor", func(a, b int64) int64 { return a | b }},
		{"lshift", intLshift},
		{"rshift", intRshift},
		{"mod", intMod},
	}
	for _, fn := range fns {
		registerBinShapes(fn.base, KInt64, binShapes(intClass, intClass, fn.f))
	}
}

// registerArithmetic registers add/sub/mul/div over int64 and float64.
// Within each operation the shapes are outer and the element types inner.
func registerArithmetic() {
	intFns := map[string]func(int64, int64) int64{
		"add": func(a, b int64) int64 { return a + b },
		"sub": func(a, b int64) int64 { return a - b },
		"mul": func(a, b int64) int64 { return a * b },
		"div": intDiv,
	}
	floatFns := map[string]func(float64, float64) float64{
		"add": func(a, b float64) float64 { return a + b },
		"sub": func(a, b float64) float64 { return a - b },
		"mul": func(a, b float64) float64 { return a * b },
		"div": func(a, b float64) float64 { return a / b },
	}
	for _, base := range []string{"add", "sub", "mul", "div"} {
		iShapes := binShapes(intClass, intClass, intFns[base])
		fShapes := binShapes(floatClass, floatClass, floatFns[base])
		for i, sh := range shapePairs {
			registerOp(base+"_"+opSuffix(KInt64, sh[0])+"_"+opSuffix(KInt64, sh[1]), 3, iShapes[i])
			registerOp(base+"_"+opSuffix(KFloat64, sh[0])+"_"+opSuffix(KFloat64, sh[1]), 3, fShapes[i])
		}
	}
}

// registerComparisons registers lt/gt/eq/ne/lte/gte over every element
// kind, producing booleans. Shapes outer, element kinds inner.
func registerComparisons() {
	for _, base := range []string{"lt", "gt", "eq", "ne", "lte", "gte"} {
		perKind := make(map[ScalarKind][4]execFn, len(allKinds))
		for _, k := range allKinds {
			perKind[k] = cmpShapesFor(k, base)
		}
		for i, sh := range shapePairs {
			for _, k := range allKinds {
				name := base + "_" + opSuffix(k, sh[0]) + "_" + opSuffix(k, sh[1])
				registerOp(name, 3, perKind[k][i])
			}
		}
	}
}

// registerUnary registers not over booleans and neg/pos over the
// numeric kinds.
func registerUnary() {
	registerOp("not_b8s", 2, unS(boolClass, func(x bool) bool { return !x }))
	registerOp("not_b8v", 2, unV(boolClass, func(x bool) bool { return !x }))

	negI := func(x int64) int64 { return -x }
	negF := func(x float64) float64 { return -x }
	posI := func(x int64) int64 { return x }
	posF := func(x float64) float64 { return x }

	registerOp("neg_i64s", 2, unS(intClass, negI))
	registerOp("neg_f64s", 2, unS(floatClass, negF))
	registerOp("neg_i64v", 2, unV(intClass, negI))
	registerOp("neg_f64v", 2, unV(floatClass, negF))
	registerOp("pos_i64s", 2, unS(intClass, posI))
	registerOp("pos_f64s", 2, unS(floatClass, posF))
	registerOp("pos_i64v", 2, unV(intClass, posI))
	registerOp("pos_f64v", 2, unV(floatClass, posF))
}

// registerMath registers the transcendental functions over float64.
func registerMath() {
	fns := []struct {
		base string
		f    func(float64) float64
	}{
		{"sin", math.Sin}, {"cos", math.Cos}, {"tan", math.Tan},
		{"asin", math.Asin}, {"acos", math.Acos}, {"atan", math.Atan},
		{"sinh", math.Sinh}, {"cosh", math.Cosh}, {"tanh", math.Tanh},
		{"asinh", math.Asinh}, {"acosh", math.Acosh}, {"atanh", math.Atanh},
	}
	for _, fn := range fns {
		registerOp(fn.base+"_f64s", 2, unS(floatClass, fn.f))
		registerOp(fn.base+"_f64v", 2, unV(floatClass, fn.f))
	}
}

// registerReductions registers sum and prod over the numeric vectors.
// Nil elements are skipped.
func registerReductions() {
	registerOp("sum_i64v", 2, reduceV(intClass, 0, func(a, b int64) int64 { return a + b }))
	registerOp("sum_f64v", 2, reduceV(floatClass, 0, func(a, b float64) float64 { return a + b }))
	registerOp("prod_i64v", 2, reduceV(intClass, 1, func(a, b int64) int64 { return a * b }))
	registerOp("prod_f64v", 2, reduceV(floatClass, 1, func(a, b float64) float64 { return a * b }))
}

// registerStringOps registers string concatenation and its reduction.
func registerStringOps() {
	concat := func(a, b string) string { return a + b }
	registerBinShapes("add", KString, binShapes(strClass, strClass, concat))
	registerOp("sum_Sv", 2, reduceV(strClass, "", concat))
}

// registerTimeOps registers the temporal arithmetic families. All the
// temporal kinds share int64 storage, so the element functions are the
// integer ones; only the mnemonics carry the kind suffixes.
func registerTimeOps() {
	timeIsh := []ScalarKind{KTimestamp, KTime, KDate}
	withDelta := []ScalarKind{KTimestamp, KTime, KDate, KTimedelta}

	intAdd := func(a, b int64) int64 { return a + b }
	intSub := func(a, b int64) int64 { return a - b }
	intMul := func(a, b int64) int64 { return a * b }

	// Differences of like temporal values yield timedeltas.
	subShapes := binShapes(intClass, intClass, intSub)
	for i, sh := range shapePairs {
		for _, k := range timeIsh {
			name := "sub_" + opSuffix(k, sh[0]) + "_" + opSuffix(k, sh[1])
			registerOp(name, 3, subShapes[i])
		}
	}

	// Temporal value combined with a timedelta yields the left kind.
	rightDelta := []struct {
		base string
		f    func(int64, int64) int64
	}{
		{"add", intAdd}, {"sub", intSub}, {"mul", intMul}, {"div", intDiv}, {"bar", intBar},
	}
	for _, fam := range rightDelta {
		shapes := binShapes(intClass, intClass, fam.f)
		for i, sh := range shapePairs {
			for _, k := range withDelta {
				name := fam.base + "_" + opSuffix(k, sh[0]) + "_" + opSuffix(KTimedelta, sh[1])
				registerOp(name, 3, shapes[i])
			}
		}
	}

	// Timedelta on the left commutes for add and mul.
	leftDelta := []struct {
		base string
		f    func(int64, int64) int64
	}{
		{"add", intAdd}, {"mul", intMul},
	}
	for _, fam := range leftDelta {
		shapes := binShapes(intClass, intClass, fam.f)
		for i, sh := range shapePairs {
			for _, k := range timeIsh {
				name := fam.base + "_" + opSuffix(KTimedelta, sh[0]) + "_" + opSuffix(k, sh[1])
				registerOp(name, 3, shapes[i])
			}
		}
	}

	// A date plus a time of day is a timestamp.
	addShapes := binShapes(intClass, intClass, intAdd)
	for i, sh := range shapePairs {
		name := "add_" + opSuffix(KDate, sh[0]) + "_" + opSuffix(KTime, sh[1])
		registerOp(name, 3, addShapes[i])
	}
}

// registerUnits registers the duration constructors (unit_s_i64s and
// friends) that scale an integer count to nanoseconds.
func registerUnits() {
	for _, u := range unitNames {
		factor := unitFactors[u]
		registerOp("unit_"+u+"_i64s", 2, unS(intClass, func(x int64) int64 { return x * factor }))
	}
}
