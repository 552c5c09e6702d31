package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooleanValue(t *testing.T) {
	assert.True(t, NewBoolean(true).Bool())
	assert.Equal(t, "Boolean", NewBoolean(true).Type())
	assert.Equal(t, "true", NewBoolean(true).String())
	assert.Equal(t, "false", NewBoolean(false).String())
	assert.False(t, NewBoolean(true).IsEmpty())
	assert.False(t, NewBoolean(true).Not().Bool())

	assert.True(t, NewBoolean(true).Equal(NewBoolean(true)))
	assert.False(t, NewBoolean(true).Equal(NewBoolean(false)))
	assert.True(t, NewBoolean(true).Equivalent(NewBoolean(true)))
}

func TestBoolCollectionReusesCachedCollections(t *testing.T) {
	assert.Equal(t, TrueCollection, BoolCollection(true))
	assert.Equal(t, FalseCollection, BoolCollection(false))
}

func TestStringValue(t *testing.T) {
	s := NewString("hello")
	assert.Equal(t, "hello", s.Value())
	assert.Equal(t, "String", s.Type())
	assert.False(t, s.IsEmpty())
	assert.True(t, NewString("").IsEmpty())

	assert.True(t, s.Equal(NewString("hello")))
	assert.False(t, s.Equal(NewString("world")))
}

func TestStringEquivalentNormalizesWhitespaceAndCase(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"HELLO", "hello", true},
		{"hello", "  hello  ", true},
		{"a  b", "a b", true},
		{"a\tb\nc", "a b c", true},
		{"hello", "goodbye", false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, NewString(c.a).Equivalent(NewString(c.b)), "%q ~ %q", c.a, c.b)
	}
}

func TestStringMethodsOperateOnRunesNotBytes(t *testing.T) {
	s := NewString("héllo wörld")

	assert.Equal(t, 11, s.Length())
	assert.True(t, s.Contains("wörld"))
	assert.True(t, s.StartsWith("héllo"))
	assert.True(t, s.EndsWith("wörld"))
	assert.Equal(t, "HÉLLO WÖRLD", s.Upper().Value())
	assert.Equal(t, "héllo wörld", s.Lower().Value())

	// "wörld" starts at rune index 6, even though ö is two bytes.
	assert.Equal(t, 6, s.IndexOf("wörld"))
	assert.Equal(t, "wörld", s.Substring(6, 5).Value())
	assert.Equal(t, "örld", s.Substring(7, 100).Value())
	assert.Equal(t, "", s.Substring(-1, 2).Value())
	assert.Equal(t, "", s.Substring(100, 2).Value())

	chars := s.ToChars()
	require.Len(t, chars, 11)
	assert.Equal(t, "ö", chars[7].String())
}

func TestStringCompare(t *testing.T) {
	cmp, err := NewString("apple").Compare(NewString("banana"))
	require.NoError(t, err)
	assert.Negative(t, cmp)

	_, err = NewString("apple").Compare(NewInteger(1))
	assert.Error(t, err)
}

func TestIntegerArithmetic(t *testing.T) {
	i1, i2 := NewInteger(10), NewInteger(3)

	assert.Equal(t, int64(13), i1.Add(i2).Value())
	assert.Equal(t, int64(7), i1.Subtract(i2).Value())
	assert.Equal(t, int64(30), i1.Multiply(i2).Value())

	div, err := i1.Div(i2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), div.Value())

	mod, err := i1.Mod(i2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mod.Value())

	_, err = i1.Div(NewInteger(0))
	assert.Error(t, err)

	quotient, err := i1.Divide(i2)
	require.NoError(t, err)
	assert.Equal(t, "Decimal", quotient.Type())
}

func TestIntegerCompareAndNegate(t *testing.T) {
	cmp, err := NewInteger(10).Compare(NewInteger(20))
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	// Cross-type comparison widens the Integer to Decimal.
	cmp, err = NewInteger(10).Compare(MustDecimal("10.0"))
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	assert.Equal(t, int64(-42), NewInteger(42).Negate().Value())
	assert.Equal(t, int64(42), NewInteger(-42).Abs().Value())
	assert.Equal(t, "42", NewInteger(42).String())
}

func TestDecimalPrecisionSurvivesArithmetic(t *testing.T) {
	sum := MustDecimal("0.1").Add(MustDecimal("0.2"))
	assert.True(t, sum.Equal(MustDecimal("0.3")), "expected 0.1+0.2 == 0.3 exactly, got %s", sum.String())
}

func TestDecimalRoundingAndConversions(t *testing.T) {
	d := MustDecimal("3.7")
	assert.Equal(t, int64(4), d.Ceiling().Value())
	assert.Equal(t, int64(3), d.Floor().Value())
	assert.Equal(t, int64(3), MustDecimal("3.99").Truncate().Value())

	assert.True(t, MustDecimal("42").IsInteger())
	assert.False(t, MustDecimal("42.5").IsInteger())

	i, ok := MustDecimal("42").ToInteger()
	require.True(t, ok)
	assert.Equal(t, int64(42), i.Value())

	_, ok = MustDecimal("42.5").ToInteger()
	assert.False(t, ok)
}

func TestDecimalCrossTypeEquality(t *testing.T) {
	assert.True(t, MustDecimal("42").Equal(NewInteger(42)))
	assert.True(t, NewInteger(42).Equal(MustDecimal("42")))
}

func TestDecimalTranscendentals(t *testing.T) {
	sqrt, err := MustDecimal("4").Sqrt()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, sqrt.toFloat64(), 0.0001)

	_, err = MustDecimal("-1").Sqrt()
	assert.Error(t, err)

	_, err = MustDecimal("0").Ln()
	assert.Error(t, err)
}

func TestCollectionBasics(t *testing.T) {
	empty := Collection{}
	assert.True(t, empty.Empty())
	assert.Equal(t, 0, empty.Count())
	assert.True(t, empty.Tail().Empty())

	c := Collection{NewInteger(1), NewInteger(2), NewInteger(3)}
	first, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, int64(1), first.(Integer).Value())

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, int64(3), last.(Integer).Value())
}

func TestCollectionSingle(t *testing.T) {
	single, err := Collection{NewInteger(42)}.Single()
	require.NoError(t, err)
	assert.Equal(t, int64(42), single.(Integer).Value())

	_, err = Collection{}.Single()
	assert.Error(t, err)

	_, err = Collection{NewInteger(1), NewInteger(2)}.Single()
	assert.Error(t, err)
}

func TestCollectionSkipAndTake(t *testing.T) {
	c := Collection{NewInteger(1), NewInteger(2), NewInteger(3), NewInteger(4), NewInteger(5)}

	assert.Equal(t, 3, c.Skip(2).Count())
	assert.True(t, c.Skip(10).Empty())
	assert.Equal(t, 5, c.Skip(0).Count())

	assert.Equal(t, 3, c.Take(3).Count())
	assert.Equal(t, 5, c.Take(10).Count())
	assert.True(t, c.Take(0).Empty())
}

func TestCollectionSetOperations(t *testing.T) {
	c1 := Collection{NewInteger(1), NewInteger(2), NewInteger(1), NewInteger(3), NewInteger(2)}
	assert.Equal(t, 3, c1.Distinct().Count())
	assert.False(t, c1.IsDistinct())
	assert.True(t, Collection{NewInteger(1), NewInteger(2)}.IsDistinct())

	a := Collection{NewInteger(1), NewInteger(2), NewInteger(3)}
	b := Collection{NewInteger(2), NewInteger(3), NewInteger(4)}

	assert.Equal(t, 4, a.Union(b).Count())
	assert.Equal(t, 2, a.Intersect(b).Count())
	assert.Equal(t, 2, a.Exclude(b).Count())
	assert.Equal(t, 6, a.Combine(b).Count(), "Combine keeps duplicates, unlike Union")
}

func TestCollectionBooleanAggregation(t *testing.T) {
	allTrue := Collection{NewBoolean(true), NewBoolean(true)}
	assert.True(t, allTrue.AllTrue())
	assert.False(t, allTrue.AllFalse())

	mixed := Collection{NewBoolean(false), NewBoolean(true)}
	assert.True(t, mixed.AnyTrue())
	assert.True(t, mixed.AnyFalse())
	assert.False(t, mixed.AllTrue())
	assert.False(t, mixed.AllFalse())

	// Vacuous truth on the "all" predicates, vacuous falsity on "any".
	empty := Collection{}
	assert.True(t, empty.AllTrue())
	assert.True(t, empty.AllFalse())
	assert.False(t, empty.AnyTrue())
	assert.False(t, empty.AnyFalse())
}

func TestCollectionToBoolean(t *testing.T) {
	b, err := Collection{NewBoolean(true)}.ToBoolean()
	require.NoError(t, err)
	assert.True(t, b)

	_, err = Collection{}.ToBoolean()
	assert.Error(t, err)
	_, err = Collection{NewBoolean(true), NewBoolean(false)}.ToBoolean()
	assert.Error(t, err)
	_, err = Collection{NewInteger(1)}.ToBoolean()
	assert.Error(t, err)
}

func TestObjectValueTypeInference(t *testing.T) {
	cases := []struct {
		name string
		json string
		want string
	}{
		{"resource", `{"resourceType": "Patient", "id": "123"}`, "Patient"},
		{"no structural match", `{"name": "John", "age": 30}`, "Object"},
		{"quantity", `{"value": 120, "unit": "mm[Hg]"}`, "Quantity"},
		{"coding", `{"system": "http://loinc.org", "code": "1234"}`, "Coding"},
		{"codeableConcept", `{"coding": [{"system": "x", "code": "y"}]}`, "CodeableConcept"},
		{"reference", `{"reference": "Patient/123"}`, "Reference"},
		{"period", `{"start": "2024-01-01"}`, "Period"},
		{"range", `{"low": {"value": 1}}`, "Range"},
		{"ratio", `{"numerator": {"value": 1}}`, "Ratio"},
		{"attachment", `{"contentType": "text/plain"}`, "Attachment"},
		{"humanName", `{"family": "Smith"}`, "HumanName"},
		{"address", `{"city": "Springfield"}`, "Address"},
		{"contactPoint", `{"system": "phone", "use": "home"}`, "ContactPoint"},
		{"annotation", `{"text": "note", "time": "2024-01-01"}`, "Annotation"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, NewObjectValue([]byte(c.json)).Type())
		})
	}
}

func TestObjectValueTypeInferencePrecedence(t *testing.T) {
	// An Identifier's shape ("system" + string "value") is a strict subset of
	// Quantity's trigger fields, so the Quantity rule (checked first) always
	// wins when both are present.
	obj := NewObjectValue([]byte(`{"system": "urn:x", "value": "abc"}`))
	assert.Equal(t, "Quantity", obj.Type())
}

func TestObjectValueGet(t *testing.T) {
	obj := NewObjectValue([]byte(`{"name": "John", "age": 30, "active": true}`))

	name, ok := obj.Get("name")
	require.True(t, ok)
	assert.Equal(t, "John", name.(String).Value())

	age, ok := obj.Get("age")
	require.True(t, ok)
	assert.Equal(t, int64(30), age.(Integer).Value())

	active, ok := obj.Get("active")
	require.True(t, ok)
	assert.True(t, active.(Boolean).Bool())

	// A second lookup hits the cache rather than reparsing the JSON.
	name2, ok := obj.Get("name")
	require.True(t, ok)
	assert.Equal(t, name, name2)

	_, ok = obj.Get("missing")
	assert.False(t, ok)
}

func TestObjectValueGetCollectionAndChildren(t *testing.T) {
	obj := NewObjectValue([]byte(`{"items": [1, 2, 3], "name": "x"}`))
	assert.Equal(t, 3, obj.GetCollection("items").Count())
	assert.Equal(t, 1, obj.GetCollection("name").Count())
	assert.True(t, obj.GetCollection("missing").Empty())

	assert.ElementsMatch(t, []string{"items", "name"}, obj.Keys())
	assert.Equal(t, 4, obj.Children().Count(), "array field flattens into Children")
}

func TestObjectValueToQuantity(t *testing.T) {
	t.Run("unit field", func(t *testing.T) {
		q, ok := NewObjectValue([]byte(`{"value": 120, "unit": "mm[Hg]"}`)).ToQuantity()
		require.True(t, ok)
		assert.Equal(t, "120", q.Value().String())
		assert.Equal(t, "mm[Hg]", q.Unit())
	})

	t.Run("code field", func(t *testing.T) {
		q, ok := NewObjectValue([]byte(`{"value": 75.5, "code": "kg"}`)).ToQuantity()
		require.True(t, ok)
		assert.Equal(t, "kg", q.Unit())
	})

	t.Run("unit takes precedence over code", func(t *testing.T) {
		q, ok := NewObjectValue([]byte(`{"value": 100, "unit": "mg", "code": "mg_alt"}`)).ToQuantity()
		require.True(t, ok)
		assert.Equal(t, "mg", q.Unit())
	})

	t.Run("missing value fails", func(t *testing.T) {
		_, ok := NewObjectValue([]byte(`{"unit": "kg"}`)).ToQuantity()
		assert.False(t, ok)
	})

	t.Run("non-numeric value fails", func(t *testing.T) {
		_, ok := NewObjectValue([]byte(`{"value": "abc", "unit": "kg"}`)).ToQuantity()
		assert.False(t, ok)
	})

	t.Run("null value fails", func(t *testing.T) {
		_, ok := NewObjectValue([]byte(`{"value": null, "unit": "kg"}`)).ToQuantity()
		assert.False(t, ok)
	})
}

func TestJSONToCollection(t *testing.T) {
	cases := []struct {
		name string
		json string
		want int
	}{
		{"object", `{"name": "John"}`, 1},
		{"array", `[1, 2, 3]`, 3},
		{"null", `null`, 0},
		{"primitive", `42`, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := JSONToCollection([]byte(c.json))
			require.NoError(t, err)
			assert.Equal(t, c.want, got.Count())
		})
	}
}

func TestPoolReuse(t *testing.T) {
	assert.Equal(t, GetBoolean(true), GetBoolean(true))
	assert.Equal(t, GetBoolean(false), GetBoolean(false))

	assert.Equal(t, GetInteger(42), GetInteger(42), "cached range shares representation, not necessarily identity")
	assert.Equal(t, int64(1000), GetInteger(1000).Value(), "values outside the cache range still convert correctly")

	assert.False(t, TrueCollection.Empty())
	assert.True(t, TrueCollection[0].(Boolean).Bool())
	assert.False(t, FalseCollection[0].(Boolean).Bool())
	assert.True(t, EmptyCollection.Empty())

	c := GetCollection()
	require.NotNil(t, c)
	*c = append(*c, NewInteger(1))
	PutCollection(c)

	c2 := GetCollection()
	require.NotNil(t, c2)
	assert.Empty(t, *c2, "collection from the pool must come back empty")

	assert.GreaterOrEqual(t, cap(NewCollectionWithCap(10)), 10)

	single := SingletonCollection(NewInteger(42))
	require.Len(t, single, 1)
	assert.Equal(t, int64(42), single[0].(Integer).Value())
}
