package funcs

import (
	"strconv"
	"strings"

	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/eval"
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/types"
	"github.com/shopspring/decimal"
)

func init() {
	for _, def := range []FuncDef{
		{Name: "iif", MinArgs: 2, MaxArgs: 3, Fn: fnIif},
		{Name: "toBoolean", MinArgs: 0, MaxArgs: 0, Fn: fnToBoolean},
		{Name: "convertsToBoolean", MinArgs: 0, MaxArgs: 0, Fn: convertsTo(fnToBoolean)},
		{Name: "toInteger", MinArgs: 0, MaxArgs: 0, Fn: fnToInteger},
		{Name: "convertsToInteger", MinArgs: 0, MaxArgs: 0, Fn: convertsTo(fnToInteger)},
		{Name: "toDecimal", MinArgs: 0, MaxArgs: 0, Fn: fnToDecimal},
		{Name: "convertsToDecimal", MinArgs: 0, MaxArgs: 0, Fn: convertsTo(fnToDecimal)},
		{Name: "toString", MinArgs: 0, MaxArgs: 0, Fn: fnToString},
		{Name: "convertsToString", MinArgs: 0, MaxArgs: 0, Fn: fnConvertsToString},
		{Name: "toDate", MinArgs: 0, MaxArgs: 0, Fn: fnToDate},
		{Name: "convertsToDate", MinArgs: 0, MaxArgs: 0, Fn: fnConvertsToDate},
		{Name: "toDateTime", MinArgs: 0, MaxArgs: 0, Fn: fnToDateTime},
		{Name: "convertsToDateTime", MinArgs: 0, MaxArgs: 0, Fn: fnConvertsToDateTime},
		{Name: "toTime", MinArgs: 0, MaxArgs: 0, Fn: fnToTime},
		{Name: "convertsToTime", MinArgs: 0, MaxArgs: 0, Fn: fnConvertsToTime},
		{Name: "toQuantity", MinArgs: 0, MaxArgs: 1, Fn: fnToQuantity},
		{Name: "convertsToQuantity", MinArgs: 0, MaxArgs: 1, Fn: convertsTo(fnToQuantity)},
	} {
		Register(def)
	}
}

// convertsTo derives a convertsTo* registry function from the matching
// to* conversion: the conversion already reports failure as an empty
// collection, so "converts" is just "did it produce something". Only
// sound when the to* function's empty-on-failure behavior precisely
// covers the set of types the spec allows it to convert.
func convertsTo(to eval.FuncImpl) eval.FuncImpl {
	return func(ctx *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
		if input.Empty() {
			return types.FalseCollection, nil
		}
		result, err := to(ctx, input, args)
		if err != nil {
			return types.FalseCollection, nil
		}
		return types.BoolCollection(!result.Empty()), nil
	}
}

// fnIif is a placeholder: the evaluator intercepts iif() before this
// registry entry runs, since only the selected branch may be evaluated
// (the other must not raise side effects or errors).
func fnIif(_ *eval.Context, _ types.Collection, args []interface{}) (types.Collection, error) {
	if len(args) < 2 {
		return nil, eval.InvalidArgumentsError("iif", 2, len(args))
	}

	condition := false
	if cond, ok := args[0].(types.Collection); ok && !cond.Empty() {
		if b, ok := cond[0].(types.Boolean); ok {
			condition = b.Bool()
		}
	}

	if condition {
		if result, ok := args[1].(types.Collection); ok {
			return result, nil
		}
		return types.Collection{}, nil
	}
	if len(args) > 2 {
		if result, ok := args[2].(types.Collection); ok {
			return result, nil
		}
	}
	return types.Collection{}, nil
}

// fnToBoolean converts a singleton Boolean, recognized String ("true",
// "yes", "1", ...), or 0/1 Integer/Decimal to Boolean; empty otherwise.
func fnToBoolean(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}

	switch v := input[0].(type) {
	case types.Boolean:
		return types.Collection{v}, nil
	case types.String:
		switch strings.ToLower(v.Value()) {
		case "true", "t", "yes", "y", "1", "1.0":
			return types.TrueCollection, nil
		case "false", "f", "no", "n", "0", "0.0":
			return types.FalseCollection, nil
		default:
			return types.Collection{}, nil
		}
	case types.Integer:
		switch v.Value() {
		case 1:
			return types.TrueCollection, nil
		case 0:
			return types.FalseCollection, nil
		default:
			return types.Collection{}, nil
		}
	case types.Decimal:
		switch {
		case v.Value().Equal(decimal.NewFromInt(1)):
			return types.TrueCollection, nil
		case v.Value().Equal(decimal.NewFromInt(0)):
			return types.FalseCollection, nil
		default:
			return types.Collection{}, nil
		}
	default:
		return types.Collection{}, nil
	}
}

// fnToInteger converts a singleton Integer, Boolean, base-10 numeric
// String, or truncated Decimal to Integer; empty otherwise.
func fnToInteger(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}

	switch v := input[0].(type) {
	case types.Integer:
		return types.Collection{v}, nil
	case types.Boolean:
		if v.Bool() {
			return types.Collection{types.NewInteger(1)}, nil
		}
		return types.Collection{types.NewInteger(0)}, nil
	case types.String:
		i, err := strconv.ParseInt(v.Value(), 10, 64)
		if err != nil {
			return types.Collection{}, nil
		}
		return types.Collection{types.NewInteger(i)}, nil
	case types.Decimal:
		return types.Collection{types.NewInteger(v.Value().IntPart())}, nil
	default:
		return types.Collection{}, nil
	}
}

// fnToDecimal converts a singleton Decimal, Integer, Boolean, or numeric
// String to Decimal; empty otherwise.
func fnToDecimal(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}

	switch v := input[0].(type) {
	case types.Decimal:
		return types.Collection{v}, nil
	case types.Integer:
		return types.Collection{types.NewDecimalFromInt(v.Value())}, nil
	case types.Boolean:
		if v.Bool() {
			return types.Collection{types.NewDecimalFromInt(1)}, nil
		}
		return types.Collection{types.NewDecimalFromInt(0)}, nil
	case types.String:
		d, err := types.NewDecimal(v.Value())
		if err != nil {
			return types.Collection{}, nil
		}
		return types.Collection{d}, nil
	default:
		return types.Collection{}, nil
	}
}

// fnToString renders the sole input element via its own String() method.
// Every Value implements String(), so this never reports failure the way
// toBoolean/toInteger/toDecimal do — convertsToString below still narrows
// to the primitive types the spec actually promises a round-trippable
// string form for.
func fnToString(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}
	return types.Collection{types.NewString(input[0].String())}, nil
}

// fnConvertsToString reports whether the sole input element is one of the
// primitive types toString promises a string form for.
func fnConvertsToString(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.FalseCollection, nil
	}
	switch input[0].(type) {
	case types.String, types.Boolean, types.Integer, types.Decimal:
		return types.TrueCollection, nil
	default:
		return types.FalseCollection, nil
	}
}

// fnToDate converts a singleton Date, the date portion of a DateTime, or a
// parseable date String to Date; empty otherwise.
func fnToDate(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}

	switch v := input[0].(type) {
	case types.Date:
		return types.Collection{v}, nil
	case types.DateTime:
		d, _ := types.NewDate(v.String()[:10])
		return types.Collection{d}, nil
	case types.String:
		d, err := types.NewDate(v.Value())
		if err != nil {
			return types.Collection{}, nil
		}
		return types.Collection{d}, nil
	default:
		return types.Collection{}, nil
	}
}

// fnConvertsToDate reports whether the sole input element is a String
// (full Date/DateTime parse validation is left to toDate itself).
func fnConvertsToDate(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.FalseCollection, nil
	}
	_, ok := input[0].(types.String)
	return types.BoolCollection(ok), nil
}

// fnToDateTime parses a String input as a DateTime; empty if the input is
// not a String or does not parse.
func fnToDateTime(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}
	if s, ok := input[0].(types.String); ok {
		if dt, err := types.NewDateTime(s.Value()); err == nil {
			return types.Collection{dt}, nil
		}
	}
	return types.Collection{}, nil
}

// fnConvertsToDateTime reports whether the sole input element is a String.
func fnConvertsToDateTime(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.FalseCollection, nil
	}
	_, ok := input[0].(types.String)
	return types.BoolCollection(ok), nil
}

// fnToTime parses a String input as a Time; empty if the input is not a
// String or does not parse.
func fnToTime(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}
	if s, ok := input[0].(types.String); ok {
		if tm, err := types.NewTime(s.Value()); err == nil {
			return types.Collection{tm}, nil
		}
	}
	return types.Collection{}, nil
}

// fnConvertsToTime reports whether the sole input element is a String.
func fnConvertsToTime(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.FalseCollection, nil
	}
	_, ok := input[0].(types.String)
	return types.BoolCollection(ok), nil
}

// fnToQuantity converts a singleton Quantity, Integer, Decimal (optionally
// paired with a unit in args[0]), or a parseable quantity String like
// "5.5 mg" to Quantity; empty otherwise.
func fnToQuantity(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}

	unit := ""
	if len(args) > 0 {
		if argCol, ok := args[0].(types.Collection); ok && !argCol.Empty() {
			if s, ok := argCol[0].(types.String); ok {
				unit = s.Value()
			}
		}
	}

	switch v := input[0].(type) {
	case types.Quantity:
		return types.Collection{v}, nil
	case types.Integer:
		return types.Collection{types.NewQuantityFromDecimal(decimal.NewFromInt(v.Value()), unit)}, nil
	case types.Decimal:
		return types.Collection{types.NewQuantityFromDecimal(v.Value(), unit)}, nil
	case types.String:
		q, err := types.NewQuantity(v.Value())
		if err != nil {
			return types.Collection{}, nil
		}
		return types.Collection{q}, nil
	default:
		return types.Collection{}, nil
	}
}
