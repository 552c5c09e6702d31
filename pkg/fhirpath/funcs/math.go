package funcs

import (
	"math"

	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/eval"
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/types"
	"github.com/shopspring/decimal"
)

func init() {
	for _, def := range []FuncDef{
		{Name: "abs", MinArgs: 0, MaxArgs: 0, Fn: fnAbs},
		{Name: "ceiling", MinArgs: 0, MaxArgs: 0, Fn: fnCeiling},
		{Name: "exp", MinArgs: 0, MaxArgs: 0, Fn: fnExp},
		{Name: "floor", MinArgs: 0, MaxArgs: 0, Fn: fnFloor},
		{Name: "ln", MinArgs: 0, MaxArgs: 0, Fn: fnLn},
		{Name: "log", MinArgs: 1, MaxArgs: 1, Fn: fnLog},
		{Name: "power", MinArgs: 1, MaxArgs: 1, Fn: fnPower},
		{Name: "round", MinArgs: 0, MaxArgs: 1, Fn: fnRound},
		{Name: "sqrt", MinArgs: 0, MaxArgs: 0, Fn: fnSqrt},
		{Name: "truncate", MinArgs: 0, MaxArgs: 0, Fn: fnTruncate},
		{Name: "sum", MinArgs: 0, MaxArgs: 0, Fn: fnSum},
		{Name: "min", MinArgs: 0, MaxArgs: 0, Fn: fnMin},
		{Name: "max", MinArgs: 0, MaxArgs: 0, Fn: fnMax},
		{Name: "avg", MinArgs: 0, MaxArgs: 0, Fn: fnAvg},
	} {
		Register(def)
	}
}

// numericFloat widens an Integer or Decimal singleton to float64 for the
// transcendental functions below, which shopspring/decimal doesn't provide
// directly (no Ln/Exp/Sqrt on decimal.Decimal).
func numericFloat(v types.Value) (float64, bool) {
	switch n := v.(type) {
	case types.Integer:
		return float64(n.Value()), true
	case types.Decimal:
		return n.Value().InexactFloat64(), true
	default:
		return 0, false
	}
}

// fnAbs returns the absolute value of a single Integer or Decimal.
func fnAbs(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}
	switch v := input[0].(type) {
	case types.Integer:
		val := v.Value()
		if val < 0 {
			val = -val
		}
		return types.Collection{types.NewInteger(val)}, nil
	case types.Decimal:
		return types.Collection{types.NewDecimalFromFloat(math.Abs(v.Value().InexactFloat64()))}, nil
	default:
		return types.Collection{}, nil
	}
}

// fnCeiling rounds a single Integer or Decimal up to the nearest integer.
func fnCeiling(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}
	switch v := input[0].(type) {
	case types.Integer:
		return types.Collection{v}, nil
	case types.Decimal:
		return types.Collection{types.NewInteger(int64(math.Ceil(v.Value().InexactFloat64())))}, nil
	default:
		return types.Collection{}, nil
	}
}

// fnExp returns e raised to the power of a single Integer or Decimal.
func fnExp(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	val, ok := singleNumeric(input)
	if !ok {
		return types.Collection{}, nil
	}
	return types.Collection{types.NewDecimalFromFloat(math.Exp(val))}, nil
}

// fnFloor rounds a single Integer or Decimal down to the nearest integer.
func fnFloor(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}
	switch v := input[0].(type) {
	case types.Integer:
		return types.Collection{v}, nil
	case types.Decimal:
		return types.Collection{types.NewInteger(int64(math.Floor(v.Value().InexactFloat64())))}, nil
	default:
		return types.Collection{}, nil
	}
}

// fnLn returns the natural logarithm, empty for non-positive input.
func fnLn(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	val, ok := singleNumeric(input)
	if !ok || val <= 0 {
		return types.Collection{}, nil
	}
	return types.Collection{types.NewDecimalFromFloat(math.Log(val))}, nil
}

// fnLog returns the base-args[0] logarithm, empty when either operand is
// non-positive or the base is 1.
func fnLog(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	val, ok := singleNumeric(input)
	if !ok || len(args) == 0 {
		return types.Collection{}, nil
	}
	base, err := toFloat(args[0])
	if err != nil || val <= 0 || base <= 0 || base == 1 {
		return types.Collection{}, nil
	}
	return types.Collection{types.NewDecimalFromFloat(math.Log(val) / math.Log(base))}, nil
}

// fnPower returns input raised to args[0], empty on NaN/Inf results (e.g.
// a negative base with a fractional exponent).
func fnPower(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	base, ok := singleNumeric(input)
	if !ok || len(args) == 0 {
		return types.Collection{}, nil
	}
	exp, err := toFloat(args[0])
	if err != nil {
		return types.Collection{}, nil
	}
	result := math.Pow(base, exp)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return types.Collection{}, nil
	}
	return types.Collection{types.NewDecimalFromFloat(result)}, nil
}

// fnRound rounds a Decimal to args[0] decimal places (0 if omitted).
// Integer input passes through unchanged.
func fnRound(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}
	precision := int32(0)
	if len(args) > 0 {
		p, err := integerArg(args, 0, "round")
		if err != nil {
			return types.Collection{}, nil
		}
		precision = int32(p)
	}
	switch v := input[0].(type) {
	case types.Integer:
		return types.Collection{v}, nil
	case types.Decimal:
		d, _ := types.NewDecimal(v.Value().Round(precision).String())
		return types.Collection{d}, nil
	default:
		return types.Collection{}, nil
	}
}

// fnSqrt returns the square root, empty for negative input.
func fnSqrt(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	val, ok := singleNumeric(input)
	if !ok || val < 0 {
		return types.Collection{}, nil
	}
	return types.Collection{types.NewDecimalFromFloat(math.Sqrt(val))}, nil
}

// fnTruncate discards the fractional part, rounding toward zero.
func fnTruncate(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}
	switch v := input[0].(type) {
	case types.Integer:
		return types.Collection{v}, nil
	case types.Decimal:
		return types.Collection{types.NewInteger(int64(math.Trunc(v.Value().InexactFloat64())))}, nil
	default:
		return types.Collection{}, nil
	}
}

// singleNumeric extracts input[0] as a float64 when it is the sole element
// and is Integer or Decimal; reports false otherwise (empty or non-numeric).
func singleNumeric(input types.Collection) (float64, bool) {
	if input.Empty() {
		return 0, false
	}
	return numericFloat(input[0])
}

// toFloat converts a registry-call argument (which may arrive boxed in a
// Collection, a bare Value, or a raw Go numeric) to float64.
func toFloat(arg interface{}) (float64, error) {
	switch v := arg.(type) {
	case types.Collection:
		if v.Empty() {
			return 0, eval.NewEvalError(eval.ErrType, "expected number, got empty collection")
		}
		return toFloat(v[0])
	case types.Integer:
		return float64(v.Value()), nil
	case types.Decimal:
		return v.Value().InexactFloat64(), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case decimal.Decimal:
		return v.InexactFloat64(), nil
	default:
		return 0, eval.NewEvalError(eval.ErrType, "expected number")
	}
}

// fnSum adds every element, which must be Integer or Decimal; empty input
// sums to 0, and any non-numeric element makes the whole result empty.
func fnSum(ctx *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{types.NewInteger(0)}, nil
	}
	if err := ctx.CheckCancellation(); err != nil {
		return nil, err
	}

	var sum decimal.Decimal
	hasDecimal := false
	for _, item := range input {
		switch v := item.(type) {
		case types.Integer:
			sum = sum.Add(decimal.NewFromInt(v.Value()))
		case types.Decimal:
			sum = sum.Add(v.Value())
			hasDecimal = true
		default:
			return types.Collection{}, nil
		}
	}

	if hasDecimal {
		d, _ := types.NewDecimal(sum.String())
		return types.Collection{d}, nil
	}
	return types.Collection{types.NewInteger(sum.IntPart())}, nil
}

// fnAvg returns the arithmetic mean of every element, which must be
// Integer or Decimal; empty on empty input or a non-numeric element.
func fnAvg(ctx *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}
	if err := ctx.CheckCancellation(); err != nil {
		return nil, err
	}

	var sum decimal.Decimal
	count := 0
	for _, item := range input {
		switch v := item.(type) {
		case types.Integer:
			sum = sum.Add(decimal.NewFromInt(v.Value()))
			count++
		case types.Decimal:
			sum = sum.Add(v.Value())
			count++
		default:
			return types.Collection{}, nil
		}
	}
	if count == 0 {
		return types.Collection{}, nil
	}

	avg := sum.Div(decimal.NewFromInt(int64(count)))
	d, _ := types.NewDecimal(avg.String())
	return types.Collection{d}, nil
}

// fnMin returns the smallest element by Compare ordering.
func fnMin(ctx *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return extremum(ctx, input, -1)
}

// fnMax returns the largest element by Compare ordering.
func fnMax(ctx *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return extremum(ctx, input, 1)
}

// extremum folds input down to the element most extreme in the direction
// of want (-1 for min, 1 for max), using each element's own Compare method
// rather than duplicating a per-type switch for min and for max: every
// types.Value that supports ordering (Integer, Decimal, String, Date,
// Time, DateTime, Quantity) already implements Compare.
func extremum(ctx *eval.Context, input types.Collection, want int) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}
	if err := ctx.CheckCancellation(); err != nil {
		return nil, err
	}

	best := input[0]
	for _, item := range input[1:] {
		cmp, err := item.Compare(best)
		if err != nil {
			return types.Collection{}, nil
		}
		if cmp == want {
			best = item
		}
	}
	return types.Collection{best}, nil
}
