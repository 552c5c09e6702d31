package funcs

import (
	"strings"

	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/eval"
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/types"
)

func init() {
	for _, def := range []FuncDef{
		{Name: "startsWith", MinArgs: 1, MaxArgs: 1, Fn: fnStartsWith},
		{Name: "endsWith", MinArgs: 1, MaxArgs: 1, Fn: fnEndsWith},
		{Name: "contains", MinArgs: 1, MaxArgs: 1, Fn: fnContains},
		{Name: "replace", MinArgs: 2, MaxArgs: 2, Fn: fnReplace},
		{Name: "matches", MinArgs: 1, MaxArgs: 1, Fn: fnMatches},
		{Name: "replaceMatches", MinArgs: 2, MaxArgs: 2, Fn: fnReplaceMatches},
		{Name: "indexOf", MinArgs: 1, MaxArgs: 1, Fn: fnIndexOf},
		{Name: "substring", MinArgs: 1, MaxArgs: 2, Fn: fnSubstring},
		{Name: "lower", MinArgs: 0, MaxArgs: 0, Fn: fnLower},
		{Name: "upper", MinArgs: 0, MaxArgs: 0, Fn: fnUpper},
		{Name: "toChars", MinArgs: 0, MaxArgs: 0, Fn: fnToChars},
		{Name: "split", MinArgs: 1, MaxArgs: 1, Fn: fnSplit},
		{Name: "join", MinArgs: 0, MaxArgs: 1, Fn: fnJoin},
		{Name: "trim", MinArgs: 0, MaxArgs: 0, Fn: fnTrim},
		{Name: "length", MinArgs: 0, MaxArgs: 0, Fn: fnLength},
	} {
		Register(def)
	}
}

// fnStartsWith reports whether the receiver string starts with args[0].
func fnStartsWith(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	str, ok := toStringValue(input)
	prefix, okArg := toStringArg(args[0])
	if !ok || !okArg {
		return types.Collection{}, nil
	}
	return types.BoolCollection(str.StartsWith(prefix)), nil
}

// fnEndsWith reports whether the receiver string ends with args[0].
func fnEndsWith(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	str, ok := toStringValue(input)
	suffix, okArg := toStringArg(args[0])
	if !ok || !okArg {
		return types.Collection{}, nil
	}
	return types.BoolCollection(str.EndsWith(suffix)), nil
}

// fnContains reports whether the receiver string contains args[0].
func fnContains(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	str, ok := toStringValue(input)
	substr, okArg := toStringArg(args[0])
	if !ok || !okArg {
		return types.Collection{}, nil
	}
	return types.BoolCollection(str.Contains(substr)), nil
}

// fnReplace replaces every occurrence of args[0] with args[1].
func fnReplace(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	str, ok := toStringValue(input)
	pattern, okP := toStringArg(args[0])
	substitution, okS := toStringArg(args[1])
	if !ok || !okP || !okS {
		return types.Collection{}, nil
	}
	return types.Collection{str.Replace(pattern, substitution)}, nil
}

// fnMatches reports whether the receiver string matches the regex in
// args[0], via the shared cache that also bounds match time against ReDoS.
func fnMatches(ctx *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	str, ok := toString(input)
	pattern, okArg := toStringArg(args[0])
	if !ok || !okArg {
		return types.Collection{}, nil
	}

	matched, err := DefaultRegexCache.MatchWithTimeout(ctx.Context(), pattern, str)
	if err != nil {
		return nil, err
	}
	return types.BoolCollection(matched), nil
}

// fnReplaceMatches substitutes every regex match of args[0] with args[1],
// via the same cache fnMatches uses.
func fnReplaceMatches(ctx *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	str, ok := toString(input)
	pattern, okP := toStringArg(args[0])
	substitution, okS := toStringArg(args[1])
	if !ok || !okP || !okS {
		return types.Collection{}, nil
	}

	result, err := DefaultRegexCache.ReplaceWithTimeout(ctx.Context(), pattern, str, substitution)
	if err != nil {
		return nil, err
	}
	return types.Collection{types.NewString(result)}, nil
}

// fnIndexOf returns the rune offset of the first occurrence of args[0], or
// -1 if absent.
func fnIndexOf(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	str, ok := toStringValue(input)
	substr, okArg := toStringArg(args[0])
	if !ok || !okArg {
		return types.Collection{}, nil
	}
	return types.Collection{types.NewInteger(int64(str.IndexOf(substr)))}, nil
}

// fnSubstring returns the portion of the receiver string starting at
// args[0], limited to args[1] characters when given. Indices count runes,
// not bytes, so a multi-byte character is never split in half.
func fnSubstring(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	str, ok := toStringValue(input)
	if !ok {
		return types.Collection{}, nil
	}

	start, err := integerArg(args, 0, "substring")
	if err != nil {
		return nil, err
	}
	if start < 0 || int(start) >= str.Length() {
		return types.Collection{}, nil
	}

	length := str.Length() - int(start)
	if len(args) > 1 {
		l, err := integerArg(args, 1, "substring")
		if err != nil {
			return nil, err
		}
		length = int(l)
	}
	return types.Collection{str.Substring(int(start), length)}, nil
}

// fnLower lowercases the receiver string.
func fnLower(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	str, ok := toStringValue(input)
	if !ok {
		return types.Collection{}, nil
	}
	return types.Collection{str.Lower()}, nil
}

// fnUpper uppercases the receiver string.
func fnUpper(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	str, ok := toStringValue(input)
	if !ok {
		return types.Collection{}, nil
	}
	return types.Collection{str.Upper()}, nil
}

// fnToChars splits the receiver string into a collection of single
// characters, one String per rune.
func fnToChars(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	str, ok := toStringValue(input)
	if !ok {
		return types.Collection{}, nil
	}
	return str.ToChars(), nil
}

// fnSplit splits the receiver string on the args[0] separator.
func fnSplit(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	str, ok := toString(input)
	separator, okArg := toStringArg(args[0])
	if !ok || !okArg {
		return types.Collection{}, nil
	}
	parts := strings.Split(str, separator)
	result := make(types.Collection, 0, len(parts))
	for _, part := range parts {
		result = append(result, types.NewString(part))
	}
	return result, nil
}

// fnJoin concatenates every element of input, coercing non-String elements
// via their own String() representation, with an optional args[0] separator.
func fnJoin(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{types.NewString("")}, nil
	}

	separator := ""
	if len(args) > 0 {
		if sep, ok := toStringArg(args[0]); ok {
			separator = sep
		}
	}

	parts := make([]string, 0, len(input))
	for _, item := range input {
		if s, ok := item.(types.String); ok {
			parts = append(parts, s.Value())
		} else {
			parts = append(parts, item.String())
		}
	}
	return types.Collection{types.NewString(strings.Join(parts, separator))}, nil
}

// fnTrim strips leading and trailing whitespace from the receiver string.
func fnTrim(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	str, ok := toString(input)
	if !ok {
		return types.Collection{}, nil
	}
	return types.Collection{types.NewString(strings.TrimSpace(str))}, nil
}

// fnLength returns the number of characters in the receiver string.
func fnLength(_ *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	str, ok := toStringValue(input)
	if !ok {
		return types.Collection{}, nil
	}
	return types.Collection{types.NewInteger(int64(str.Length()))}, nil
}

// toString extracts the receiver string from a singleton collection's
// first element, falling back to its String() representation when it is
// not already a types.String.
func toString(col types.Collection) (string, bool) {
	if col.Empty() {
		return "", false
	}
	if s, ok := col[0].(types.String); ok {
		return s.Value(), true
	}
	return col[0].String(), true
}

// toStringValue is toString's counterpart that keeps the result wrapped as
// a types.String, so callers can drive its own Contains/Substring/Upper/...
// methods instead of re-implementing them against a raw Go string.
func toStringValue(col types.Collection) (types.String, bool) {
	if col.Empty() {
		return types.String{}, false
	}
	if s, ok := col[0].(types.String); ok {
		return s, true
	}
	return types.NewString(col[0].String()), true
}

// toStringArg is toString's counterpart for a registry-call argument,
// which may arrive as a Collection, a bare types.String, or a raw string.
func toStringArg(arg interface{}) (string, bool) {
	switch v := arg.(type) {
	case types.Collection:
		return toString(v)
	case types.String:
		return v.Value(), true
	case string:
		return v, true
	default:
		return "", false
	}
}
