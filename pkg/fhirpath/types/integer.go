package types

import (
	"cmp"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Integer is the FHIRPath Integer primitive, a 64-bit signed whole number.
type Integer struct {
	value int64
}

// NewInteger wraps a Go int64 as an Integer value.
func NewInteger(v int64) Integer {
	return Integer{value: v}
}

// Value unwraps the underlying int64.
func (i Integer) Value() int64 {
	return i.value
}

// Type returns "Integer".
func (i Integer) Type() string {
	return "Integer"
}

// Equal reports equality against another Integer, or against a Decimal
// via decimal widening (1 equals 1.0).
func (i Integer) Equal(other Value) bool {
	switch o := other.(type) {
	case Integer:
		return i.value == o.value
	case Decimal:
		return i.ToDecimal().Equal(o)
	}
	return false
}

// Equivalent is identical to Equal for Integer.
func (i Integer) Equivalent(other Value) bool {
	return i.Equal(other)
}

// String renders the decimal representation, e.g. "42" or "-1".
func (i Integer) String() string {
	return strconv.FormatInt(i.value, 10)
}

// IsEmpty is always false for a well-formed Integer value.
func (i Integer) IsEmpty() bool {
	return false
}

// ToDecimal widens the integer to an exact Decimal.
func (i Integer) ToDecimal() Decimal {
	return Decimal{value: decimal.NewFromInt(i.value)}
}

// Compare orders against another Integer directly, or against a Decimal
// by widening first.
func (i Integer) Compare(other Value) (int, error) {
	switch o := other.(type) {
	case Integer:
		return cmp.Compare(i.value, o.value), nil
	case Decimal:
		return i.ToDecimal().Compare(o)
	}
	return 0, NewTypeError("Integer", other.Type(), "comparison")
}

// Add returns i + other.
func (i Integer) Add(other Integer) Integer {
	return NewInteger(i.value + other.value)
}

// Subtract returns i - other.
func (i Integer) Subtract(other Integer) Integer {
	return NewInteger(i.value - other.value)
}

// Multiply returns i * other.
func (i Integer) Multiply(other Integer) Integer {
	return NewInteger(i.value * other.value)
}

// Divide returns i / other widened to Decimal, since FHIRPath's / operator
// always produces a Decimal even for two Integer operands.
func (i Integer) Divide(other Integer) (Decimal, error) {
	if other.value == 0 {
		return Decimal{}, fmt.Errorf("division by zero")
	}
	return i.ToDecimal().Divide(other.ToDecimal())
}

// Div implements FHIRPath's div operator: truncating integer division.
func (i Integer) Div(other Integer) (Integer, error) {
	if other.value == 0 {
		return Integer{}, fmt.Errorf("division by zero")
	}
	return NewInteger(i.value / other.value), nil
}

// Mod implements FHIRPath's mod operator.
func (i Integer) Mod(other Integer) (Integer, error) {
	if other.value == 0 {
		return Integer{}, fmt.Errorf("division by zero")
	}
	return NewInteger(i.value % other.value), nil
}

// Negate returns -i.
func (i Integer) Negate() Integer {
	return NewInteger(-i.value)
}

// Abs returns the absolute value.
func (i Integer) Abs() Integer {
	if i.value < 0 {
		return NewInteger(-i.value)
	}
	return i
}

// Power returns i raised to exp, widened to Decimal since the result may
// not be a whole number (e.g. negative exponents).
func (i Integer) Power(exp Integer) Decimal {
	return i.ToDecimal().Power(exp.ToDecimal())
}

// Sqrt returns the square root widened to Decimal, erroring on a negative
// receiver.
func (i Integer) Sqrt() (Decimal, error) {
	if i.value < 0 {
		return Decimal{}, fmt.Errorf("cannot take square root of negative number")
	}
	return NewDecimalFromFloat(math.Sqrt(float64(i.value))), nil
}
