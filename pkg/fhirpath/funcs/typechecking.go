// Package funcs: this file registers the is(type) function form (as(type)
// is registered in aggregate.go).
//
// The evaluator intercepts is(TypeSpecifier) and as(TypeSpecifier) before
// either registry entry runs, reading the type name straight off the
// call's AST node rather than evaluating it as a path — "Patient" in
// is(Patient) is a type name, not a member to resolve. fnIsType stays
// registered as a fallback for callers that evaluate the argument to a
// plain string ahead of time.
package funcs

import (
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/eval"
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/types"
)

func init() {
	Register(FuncDef{
		Name:    "is",
		MinArgs: 1,
		MaxArgs: 1,
		Fn:      fnIsType,
	})
}

// fnIsType reports whether the singleton input's runtime type matches the
// type name carried in args[0].
func fnIsType(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	if len(args) == 0 {
		return nil, eval.InvalidArgumentsError("is", 1, 0)
	}
	if input.Empty() {
		return types.Collection{}, nil
	}
	if len(input) != 1 {
		return nil, eval.SingletonError(len(input))
	}

	typeName := extractTypeName(args[0])
	if typeName == "" {
		return types.Collection{}, nil
	}

	return types.BoolCollection(eval.TypeMatches(input[0].Type(), typeName)), nil
}

// extractTypeName pulls a bare type name out of an already-evaluated
// function argument, which may arrive as a raw string, a types.String, or
// a singleton Collection wrapping one.
func extractTypeName(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return v
	case types.String:
		return v.Value()
	case types.Collection:
		if s, ok := firstString(v); ok {
			return s
		}
	}
	return ""
}

func firstString(col types.Collection) (string, bool) {
	if col.Empty() {
		return "", false
	}
	s, ok := col[0].(types.String)
	if !ok {
		return "", false
	}
	return s.Value(), true
}
