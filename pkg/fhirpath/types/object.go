package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/shopspring/decimal"
)

// ObjectValue is a FHIR resource or complex-type value backed directly by
// its source JSON bytes; fields are parsed lazily on first access and
// cached rather than unmarshaled eagerly into a Go struct.
type ObjectValue struct {
	data   []byte
	fields map[string]Value
}

// NewObjectValue wraps a JSON object's raw bytes as an ObjectValue.
func NewObjectValue(data []byte) *ObjectValue {
	return &ObjectValue{
		data:   data,
		fields: make(map[string]Value),
	}
}

// FHIR type names inferred from structural shape when an object carries no
// explicit resourceType (i.e. every complex type, since only resources
// declare one).
const (
	typeQuantity        = "Quantity"
	typeCoding          = "Coding"
	typeCodeableConcept = "CodeableConcept"
	typeReference       = "Reference"
	typePeriod          = "Period"
	typeIdentifier      = "Identifier"
	typeRange           = "Range"
	typeRatio           = "Ratio"
	typeAttachment      = "Attachment"
	typeHumanName       = "HumanName"
	typeAddress         = "Address"
	typeContactPoint    = "ContactPoint"
	typeAnnotation      = "Annotation"
	typeObject          = "Object"
)

// typeInferenceRules matches an object's field shape against FHIR's complex
// types, in priority order: the first rule whose predicate holds wins.
// Order matters because shapes overlap (a Quantity and a Coding both carry
// "system", for instance).
var typeInferenceRules = []struct {
	name    string
	matches func(o *ObjectValue) bool
}{
	{typeQuantity, func(o *ObjectValue) bool {
		return o.hasField("value") && (o.hasField("unit") || o.hasField("code") || o.hasField("system"))
	}},
	{typeCoding, func(o *ObjectValue) bool {
		return o.hasField("system") && o.hasField("code") && !o.hasField("value")
	}},
	{typeCodeableConcept, func(o *ObjectValue) bool {
		return o.hasArrayField("coding")
	}},
	{typeReference, func(o *ObjectValue) bool {
		return o.hasField("reference")
	}},
	{typePeriod, func(o *ObjectValue) bool {
		return o.hasField("start") || o.hasField("end")
	}},
	{typeIdentifier, func(o *ObjectValue) bool {
		return o.hasField("system") && o.hasStringField("value")
	}},
	{typeRange, func(o *ObjectValue) bool {
		return o.hasField("low") || o.hasField("high")
	}},
	{typeRatio, func(o *ObjectValue) bool {
		return o.hasField("numerator") || o.hasField("denominator")
	}},
	{typeAttachment, func(o *ObjectValue) bool {
		return o.hasField("contentType")
	}},
	{typeHumanName, func(o *ObjectValue) bool {
		return o.hasField("family") || o.hasArrayField("given")
	}},
	{typeAddress, func(o *ObjectValue) bool {
		return o.hasField("city") || o.hasField("postalCode")
	}},
	{typeContactPoint, func(o *ObjectValue) bool {
		return o.hasField("system") && o.hasField("use")
	}},
	{typeAnnotation, func(o *ObjectValue) bool {
		return o.hasField("text") && (o.hasField("time") || o.hasField("authorReference") || o.hasField("authorString"))
	}},
}

// Type returns the explicit resourceType when present, otherwise the best
// structural guess from typeInferenceRules, otherwise "Object".
func (o *ObjectValue) Type() string {
	if rt, err := jsonparser.GetString(o.data, "resourceType"); err == nil {
		return rt
	}
	for _, rule := range typeInferenceRules {
		if rule.matches(o) {
			return rule.name
		}
	}
	return typeObject
}

// hasArrayField reports whether name is present and holds a JSON array.
func (o *ObjectValue) hasArrayField(name string) bool {
	_, dataType, _, err := jsonparser.Get(o.data, name)
	return err == nil && dataType == jsonparser.Array
}

// hasField reports whether name is present at all, regardless of type.
func (o *ObjectValue) hasField(name string) bool {
	//nolint:dogsled // jsonparser.Get returns 4 values, we only need the error
	_, _, _, err := jsonparser.Get(o.data, name)
	return err == nil
}

// hasStringField reports whether name is present and holds a JSON string.
func (o *ObjectValue) hasStringField(name string) bool {
	_, dataType, _, err := jsonparser.Get(o.data, name)
	return err == nil && dataType == jsonparser.String
}

// Equal reports whether other is an ObjectValue backed by byte-identical
// JSON.
func (o *ObjectValue) Equal(other Value) bool {
	ov, ok := other.(*ObjectValue)
	return ok && bytes.Equal(o.data, ov.data)
}

// Equivalent is identical to Equal for ObjectValue.
func (o *ObjectValue) Equivalent(other Value) bool {
	return o.Equal(other)
}

// String renders the object's raw JSON.
func (o *ObjectValue) String() string {
	return string(o.data)
}

// IsEmpty is always false for a well-formed ObjectValue.
func (o *ObjectValue) IsEmpty() bool {
	return false
}

// Data exposes the object's raw JSON bytes.
func (o *ObjectValue) Data() []byte {
	return o.data
}

// Get looks up field, parsing and caching it as a Value on first access.
func (o *ObjectValue) Get(field string) (Value, bool) {
	if v, ok := o.fields[field]; ok {
		return v, true
	}

	value, dataType, _, err := jsonparser.Get(o.data, field)
	if err != nil {
		return nil, false
	}

	v := jsonValueToFHIRValue(value, dataType)
	o.fields[field] = v
	return v, true
}

// GetCollection looks up field and widens it to a Collection: every
// element when it's a JSON array, a singleton otherwise.
func (o *ObjectValue) GetCollection(field string) Collection {
	value, dataType, _, err := jsonparser.Get(o.data, field)
	if err != nil {
		return Collection{}
	}

	if dataType == jsonparser.Array {
		return jsonArrayToCollection(value)
	}

	v := jsonValueToFHIRValue(value, dataType)
	if v == nil {
		return Collection{}
	}
	return Collection{v}
}

// Keys returns every top-level field name in the object.
func (o *ObjectValue) Keys() []string {
	var keys []string
	//nolint:errcheck // ObjectEach only returns errors for non-objects; o.data is always a valid object
	jsonparser.ObjectEach(o.data, func(key []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
		keys = append(keys, string(key))
		return nil
	})
	return keys
}

// Children returns every top-level field's value, flattening array fields
// into the result rather than nesting them.
func (o *ObjectValue) Children() Collection {
	var result Collection
	//nolint:errcheck // ObjectEach only returns errors for non-objects; o.data is always a valid object
	jsonparser.ObjectEach(o.data, func(_ []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType == jsonparser.Array {
			result = append(result, jsonArrayToCollection(value)...)
			return nil
		}
		if v := jsonValueToFHIRValue(value, dataType); v != nil {
			result = append(result, v)
		}
		return nil
	})
	return result
}

// jsonValueToFHIRValue converts one JSON scalar/object to its FHIRPath
// Value representation; arrays are handled by the caller via
// jsonArrayToCollection, never by this function.
func jsonValueToFHIRValue(data []byte, dataType jsonparser.ValueType) Value {
	switch dataType {
	case jsonparser.String:
		var s string
		if err := json.Unmarshal(append([]byte{'"'}, append(data, '"')...), &s); err != nil {
			s = string(data)
		}
		return NewString(s)

	case jsonparser.Number:
		s := string(data)
		if !strings.ContainsAny(s, ".eE") {
			if i, err := jsonparser.ParseInt(data); err == nil {
				return NewInteger(i)
			}
		}
		d, err := NewDecimal(s)
		if err != nil {
			return nil
		}
		return d

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return nil
		}
		return NewBoolean(b)

	case jsonparser.Object:
		return NewObjectValue(data)

	default: // Array handled by the caller, Null and anything else carry no value
		return nil
	}
}

// jsonArrayToCollection converts a JSON array's raw bytes to a Collection,
// dropping any element that converts to nil (e.g. a null entry).
func jsonArrayToCollection(data []byte) Collection {
	var result Collection
	//nolint:errcheck // ArrayEach only returns errors for non-arrays; data is already validated as array
	jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if v := jsonValueToFHIRValue(value, dataType); v != nil {
			result = append(result, v)
		}
	})
	return result
}

// JSONToCollection parses a full JSON document into the Collection it
// represents: a singleton for an object or scalar, every element for an
// array, empty for null.
func JSONToCollection(data []byte) (Collection, error) {
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, err
	}

	switch dataType {
	case jsonparser.Object:
		return Collection{NewObjectValue(value)}, nil
	case jsonparser.Array:
		return jsonArrayToCollection(value), nil
	case jsonparser.Null:
		return Collection{}, nil
	default:
		v := jsonValueToFHIRValue(value, dataType)
		if v == nil {
			return Collection{}, nil
		}
		return Collection{v}, nil
	}
}

// ToQuantity attempts to read o as a FHIR Quantity-shaped object (a
// numeric "value" plus a "unit" or "code" string), reporting ok=false if
// the required "value" field is missing or non-numeric.
func (o *ObjectValue) ToQuantity() (Quantity, bool) {
	valueBytes, dataType, _, err := jsonparser.Get(o.data, "value")
	if err != nil || dataType != jsonparser.Number {
		return Quantity{}, false
	}

	val, err := decimal.NewFromString(string(valueBytes))
	if err != nil {
		return Quantity{}, false
	}

	unit := ""
	if unitBytes, _, _, err := jsonparser.Get(o.data, "unit"); err == nil {
		unit = string(unitBytes)
	} else if codeBytes, _, _, err := jsonparser.Get(o.data, "code"); err == nil {
		unit = string(codeBytes)
	}

	return NewQuantityFromDecimal(val, unit), true
}
