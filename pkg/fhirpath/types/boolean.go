package types

import "strconv"

// Boolean is the FHIRPath Boolean primitive.
type Boolean struct {
	value bool
}

// NewBoolean wraps a Go bool as a Boolean value.
func NewBoolean(v bool) Boolean {
	return Boolean{value: v}
}

// Bool unwraps the underlying Go bool.
func (b Boolean) Bool() bool {
	return b.value
}

// Type returns "Boolean".
func (b Boolean) Type() string {
	return "Boolean"
}

// Equal reports whether other is a Boolean carrying the same value.
func (b Boolean) Equal(other Value) bool {
	o, ok := other.(Boolean)
	return ok && b.value == o.value
}

// Equivalent is identical to Equal for Boolean — there's no looser notion
// of equivalence for a two-valued type.
func (b Boolean) Equivalent(other Value) bool {
	return b.Equal(other)
}

// String renders "true" or "false".
func (b Boolean) String() string {
	return strconv.FormatBool(b.value)
}

// IsEmpty is always false: Boolean has no representation of FHIRPath's
// empty value, that's Collection{} having zero elements.
func (b Boolean) IsEmpty() bool {
	return false
}

// Not returns the logical negation.
func (b Boolean) Not() Boolean {
	return NewBoolean(!b.value)
}
