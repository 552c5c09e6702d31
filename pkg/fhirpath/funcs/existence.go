package funcs

import (
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/eval"
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/types"
)

func init() {
	for _, def := range []FuncDef{
		{Name: "empty", MinArgs: 0, MaxArgs: 0, Fn: fnEmpty},
		{Name: "exists", MinArgs: 0, MaxArgs: 1, Fn: fnExists},
		{Name: "all", MinArgs: 1, MaxArgs: 1, Fn: fnAll},
		{Name: "allTrue", MinArgs: 0, MaxArgs: 0, Fn: fnAllTrue},
		{Name: "anyTrue", MinArgs: 0, MaxArgs: 0, Fn: fnAnyTrue},
		{Name: "allFalse", MinArgs: 0, MaxArgs: 0, Fn: fnAllFalse},
		{Name: "anyFalse", MinArgs: 0, MaxArgs: 0, Fn: fnAnyFalse},
		{Name: "count", MinArgs: 0, MaxArgs: 0, Fn: fnCount},
		{Name: "distinct", MinArgs: 0, MaxArgs: 0, Fn: fnDistinct},
		{Name: "isDistinct", MinArgs: 0, MaxArgs: 0, Fn: fnIsDistinct},
		{Name: "subsetOf", MinArgs: 1, MaxArgs: 1, Fn: fnSubsetOf},
		{Name: "supersetOf", MinArgs: 1, MaxArgs: 1, Fn: fnSupersetOf},
	} {
		Register(def)
	}
}

// fnEmpty reports whether the input collection has no elements.
func fnEmpty(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return types.BoolCollection(input.Empty()), nil
}

// fnExists is the no-criteria form of exists(); the evaluator special-cases
// the one-argument form so the criteria expression can be rebound per
// element the same way where()'s criteria is.
func fnExists(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return types.BoolCollection(!input.Empty()), nil
}

// fnAll is a placeholder: the evaluator intercepts all(criteria) before this
// registry entry runs, since the vacuous-truth-on-empty rule and per-element
// rebinding both need the raw criteria expression.
func fnAll(_ *eval.Context, _ types.Collection, _ []interface{}) (types.Collection, error) {
	return types.TrueCollection, nil
}

// fnAllTrue reports whether every element is the boolean true. Vacuously
// true for an empty collection.
func fnAllTrue(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return types.BoolCollection(input.Empty() || input.AllTrue()), nil
}

// fnAnyTrue reports whether at least one element is the boolean true.
func fnAnyTrue(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return types.BoolCollection(!input.Empty() && input.AnyTrue()), nil
}

// fnAllFalse reports whether every element is the boolean false. Vacuously
// true for an empty collection.
func fnAllFalse(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return types.BoolCollection(input.Empty() || input.AllFalse()), nil
}

// fnAnyFalse reports whether at least one element is the boolean false.
func fnAnyFalse(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return types.BoolCollection(!input.Empty() && input.AnyFalse()), nil
}

// fnCount returns the number of elements in the input collection.
func fnCount(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return types.Collection{types.GetInteger(int64(input.Count()))}, nil
}

// fnDistinct removes duplicate elements, preserving first-seen order.
func fnDistinct(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return input.Distinct(), nil
}

// fnIsDistinct reports whether the input already contains no duplicates.
func fnIsDistinct(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	return types.BoolCollection(input.IsDistinct()), nil
}

// fnSubsetOf reports whether every element of input also occurs in args[0].
func fnSubsetOf(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	other, err := collectionArg(args, 0, "subsetOf")
	if err != nil {
		return nil, err
	}
	return types.BoolCollection(allMembersOf(input, other)), nil
}

// fnSupersetOf reports whether every element of args[0] also occurs in input.
func fnSupersetOf(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	other, err := collectionArg(args, 0, "supersetOf")
	if err != nil {
		return nil, err
	}
	return types.BoolCollection(allMembersOf(other, input)), nil
}

// collectionArg extracts the Collection at args[idx], reporting a typed
// error against fnName when the argument is missing or of the wrong shape.
func collectionArg(args []interface{}, idx int, fnName string) (types.Collection, error) {
	if idx >= len(args) {
		return nil, eval.InvalidArgumentsError(fnName, idx+1, len(args))
	}
	col, ok := args[idx].(types.Collection)
	if !ok {
		return nil, eval.TypeError("Collection", "unknown", fnName)
	}
	return col, nil
}

// allMembersOf reports whether every element of members is present in set.
func allMembersOf(members, set types.Collection) bool {
	for _, item := range members {
		if !set.Contains(item) {
			return false
		}
	}
	return true
}
