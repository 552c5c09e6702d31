package types

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// TypeNameDecimal is the FHIRPath type name for decimal values.
const TypeNameDecimal = "Decimal"

// Decimal is the FHIRPath Decimal primitive: an arbitrary-precision
// number backed by shopspring/decimal rather than float64, so that
// literal precision (1.10 vs 1.1) and monetary-style math round the way
// the spec requires instead of drifting with binary floating point.
type Decimal struct {
	value decimal.Decimal
}

// NewDecimal parses s (e.g. "1.50", "-3") into a Decimal.
func NewDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal: %s", s)
	}
	return Decimal{value: d}, nil
}

// NewDecimalFromInt converts a whole int64 to Decimal exactly.
func NewDecimalFromInt(v int64) Decimal {
	return Decimal{value: decimal.NewFromInt(v)}
}

// NewDecimalFromFloat converts a float64 to Decimal. Transcendental
// functions (exp, ln, sqrt, power) go through float64 internally since
// shopspring/decimal has no native implementation of them, so their
// results land here.
func NewDecimalFromFloat(v float64) Decimal {
	return Decimal{value: decimal.NewFromFloat(v)}
}

// MustDecimal parses s like NewDecimal but panics on a malformed literal;
// for use with compile-time-constant decimal literals only.
func MustDecimal(s string) Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Value exposes the underlying shopspring/decimal.Decimal.
func (d Decimal) Value() decimal.Decimal {
	return d.value
}

// Type returns "Decimal".
func (d Decimal) Type() string {
	return TypeNameDecimal
}

// Equal reports numeric equality against another Decimal, or against an
// Integer widened to Decimal.
func (d Decimal) Equal(other Value) bool {
	switch o := other.(type) {
	case Decimal:
		return d.value.Equal(o.value)
	case Integer:
		return d.value.Equal(decimal.NewFromInt(o.value))
	}
	return false
}

// Equivalent is identical to Equal for Decimal.
func (d Decimal) Equivalent(other Value) bool {
	return d.Equal(other)
}

// String renders the decimal in its canonical (non-scientific) form.
func (d Decimal) String() string {
	return d.value.String()
}

// IsEmpty is always false for a well-formed Decimal value.
func (d Decimal) IsEmpty() bool {
	return false
}

// ToDecimal returns d unchanged (Decimal already satisfies Numeric).
func (d Decimal) ToDecimal() Decimal {
	return d
}

// Compare orders against another Decimal, or against an Integer widened
// to Decimal.
func (d Decimal) Compare(other Value) (int, error) {
	switch o := other.(type) {
	case Decimal:
		return d.value.Cmp(o.value), nil
	case Integer:
		return d.value.Cmp(decimal.NewFromInt(o.value)), nil
	}
	return 0, NewTypeError(TypeNameDecimal, other.Type(), "comparison")
}

// Add returns d + other.
func (d Decimal) Add(other Decimal) Decimal {
	return Decimal{value: d.value.Add(other.value)}
}

// Subtract returns d - other.
func (d Decimal) Subtract(other Decimal) Decimal {
	return Decimal{value: d.value.Sub(other.value)}
}

// Multiply returns d * other.
func (d Decimal) Multiply(other Decimal) Decimal {
	return Decimal{value: d.value.Mul(other.value)}
}

// Divide returns d / other rounded to 16 decimal places, enough headroom
// that repeated arithmetic in a FHIRPath expression doesn't visibly lose
// precision before the final round() call, if any, trims it back down.
func (d Decimal) Divide(other Decimal) (Decimal, error) {
	if other.value.IsZero() {
		return Decimal{}, fmt.Errorf("division by zero")
	}
	return Decimal{value: d.value.DivRound(other.value, 16)}, nil
}

// Negate returns -d.
func (d Decimal) Negate() Decimal {
	return Decimal{value: d.value.Neg()}
}

// Abs returns the absolute value.
func (d Decimal) Abs() Decimal {
	return Decimal{value: d.value.Abs()}
}

// Ceiling rounds up to the nearest Integer.
func (d Decimal) Ceiling() Integer {
	return NewInteger(d.value.Ceil().IntPart())
}

// Floor rounds down to the nearest Integer.
func (d Decimal) Floor() Integer {
	return NewInteger(d.value.Floor().IntPart())
}

// Truncate discards the fractional part, rounding toward zero.
func (d Decimal) Truncate() Integer {
	return NewInteger(d.value.Truncate(0).IntPart())
}

// Round rounds to precision decimal places, halves away from zero (as
// shopspring/decimal.Round does).
func (d Decimal) Round(precision int32) Decimal {
	return Decimal{value: d.value.Round(precision)}
}

// toFloat64 widens d for use with a math.* transcendental function, which
// has no arbitrary-precision equivalent in shopspring/decimal. The
// precision loss is inherent to exp/ln/sqrt/power and matches what the
// registry-level math functions already accept.
func (d Decimal) toFloat64() float64 {
	f, _ := d.value.Float64()
	return f
}

// Power returns d raised to exp.
func (d Decimal) Power(exp Decimal) Decimal {
	return NewDecimalFromFloat(math.Pow(d.toFloat64(), exp.toFloat64()))
}

// Sqrt returns the square root, erroring on a negative receiver.
func (d Decimal) Sqrt() (Decimal, error) {
	if d.value.IsNegative() {
		return Decimal{}, fmt.Errorf("cannot take square root of negative number")
	}
	return NewDecimalFromFloat(math.Sqrt(d.toFloat64())), nil
}

// Exp returns e^d.
func (d Decimal) Exp() Decimal {
	return NewDecimalFromFloat(math.Exp(d.toFloat64()))
}

// Ln returns the natural logarithm, erroring on a non-positive receiver.
func (d Decimal) Ln() (Decimal, error) {
	if !d.value.IsPositive() {
		return Decimal{}, fmt.Errorf("cannot take logarithm of non-positive number")
	}
	return NewDecimalFromFloat(math.Log(d.toFloat64())), nil
}

// Log returns the base-`base` logarithm, erroring if either operand is
// non-positive or base is 1.
func (d Decimal) Log(base Decimal) (Decimal, error) {
	if !d.value.IsPositive() {
		return Decimal{}, fmt.Errorf("cannot take logarithm of non-positive number")
	}
	if !base.value.IsPositive() || base.value.Equal(decimal.NewFromInt(1)) {
		return Decimal{}, fmt.Errorf("invalid logarithm base")
	}
	return NewDecimalFromFloat(math.Log(d.toFloat64()) / math.Log(base.toFloat64())), nil
}

// IsInteger reports whether d has no fractional part.
func (d Decimal) IsInteger() bool {
	return d.value.Equal(d.value.Truncate(0))
}

// ToInteger converts d to Integer, reporting ok=false if it has a
// fractional part.
func (d Decimal) ToInteger() (Integer, bool) {
	if d.IsInteger() {
		return NewInteger(d.value.IntPart()), true
	}
	return Integer{}, false
}
