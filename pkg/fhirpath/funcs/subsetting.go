package funcs

import (
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/eval"
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/types"
)

func init() {
	for _, def := range []FuncDef{
		{Name: "first", MinArgs: 0, MaxArgs: 0, Fn: fnFirst},
		{Name: "last", MinArgs: 0, MaxArgs: 0, Fn: fnLast},
		{Name: "tail", MinArgs: 0, MaxArgs: 0, Fn: fnTail},
		{Name: "skip", MinArgs: 1, MaxArgs: 1, Fn: fnSkip},
		{Name: "take", MinArgs: 1, MaxArgs: 1, Fn: fnTake},
		{Name: "single", MinArgs: 0, MaxArgs: 0, Fn: fnSingle},
		{Name: "intersect", MinArgs: 1, MaxArgs: 1, Fn: fnIntersect},
		{Name: "exclude", MinArgs: 1, MaxArgs: 1, Fn: fnExclude},
	} {
		Register(def)
	}
}

// fnFirst returns a singleton collection holding the first element, or
// an empty collection if input is empty.
func fnFirst(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if first, ok := input.First(); ok {
		return types.Collection{first}, nil
	}
	return types.Collection{}, nil
}

// fnLast returns a singleton collection holding the last element, or
// an empty collection if input is empty.
func fnLast(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if last, ok := input.Last(); ok {
		return types.Collection{last}, nil
	}
	return types.Collection{}, nil
}

// fnTail returns every element after the first.
func fnTail(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return input.Tail(), nil
}

// fnSkip drops the first n elements, where n is the sole argument.
func fnSkip(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	n, err := integerArg(args, 0, "skip")
	if err != nil {
		return nil, err
	}
	return input.Skip(int(n)), nil
}

// fnTake keeps at most the first n elements, where n is the sole argument.
func fnTake(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	n, err := integerArg(args, 0, "take")
	if err != nil {
		return nil, err
	}
	return input.Take(int(n)), nil
}

// fnSingle returns the sole element of input, or a singleton-expected error
// if input does not contain exactly one element.
func fnSingle(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	single, err := input.Single()
	if err != nil {
		return nil, eval.NewEvalError(eval.ErrSingletonExpected, err.Error())
	}
	return types.Collection{single}, nil
}

// fnIntersect returns the elements common to input and args[0], per
// Collection equality (not identity).
func fnIntersect(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	other, err := collectionArg(args, 0, "intersect")
	if err != nil {
		return nil, err
	}
	return input.Intersect(other), nil
}

// fnExclude returns the elements of input that do not occur in args[0].
func fnExclude(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	other, err := collectionArg(args, 0, "exclude")
	if err != nil {
		return nil, err
	}
	return input.Exclude(other), nil
}

// integerArg extracts an Integer-convertible value at args[idx] and
// unwraps it to an int64, reporting a typed error against fnName otherwise.
func integerArg(args []interface{}, idx int, fnName string) (int64, error) {
	if idx >= len(args) {
		return 0, eval.InvalidArgumentsError(fnName, idx+1, len(args))
	}
	switch v := args[idx].(type) {
	case types.Collection:
		if v.Empty() {
			return 0, eval.NewEvalError(eval.ErrType, "expected integer, got empty collection")
		}
		if i, ok := v[0].(types.Integer); ok {
			return i.Value(), nil
		}
		return 0, eval.TypeError("Integer", v[0].Type(), fnName)
	case types.Integer:
		return v.Value(), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, eval.NewEvalError(eval.ErrType, "expected integer")
	}
}
