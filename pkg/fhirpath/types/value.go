// Package types implements the FHIRPath value model: every evaluation step
// in pkg/fhirpath/eval produces a Collection of these, never a bare Go
// value, which is what gives the engine its collection-always semantics.
package types

// Value is satisfied by every FHIRPath primitive and complex type that can
// appear inside a Collection (Boolean, String, Integer, Decimal, Date,
// Time, DateTime, Quantity, Object, ...).
type Value interface {
	// Type returns the FHIRPath type name, e.g. "Integer" or "FHIR.Patient".
	Type() string

	// Equal implements the = operator: exact equality, no unit coercion.
	Equal(other Value) bool

	// Equivalent implements the ~ operator: looser than Equal — strings
	// compare case- and whitespace-insensitively, quantities compare after
	// unit conversion.
	Equivalent(other Value) bool

	// String renders the value the way it would appear in a re-parsable
	// FHIRPath literal, where possible.
	String() string

	// IsEmpty reports whether this value represents the FHIRPath empty
	// value ({}), as opposed to an empty Collection containing it.
	IsEmpty() bool
}

// Comparable is the subset of Value types that support <, <=, >, >=.
// Mixing incompatible Comparable types (e.g. String against Date) is
// reported through the returned error rather than panicking.
type Comparable interface {
	Value
	// Compare returns -1/0/1 per usual ordering semantics, or an error if
	// other is not ordered against the receiver.
	Compare(other Value) (int, error)
}

// Numeric is implemented by Integer and Decimal, the two types arithmetic
// operators and aggregate functions (sum, min, max, avg) operate over.
type Numeric interface {
	Value
	// ToDecimal widens the numeric to Decimal so mixed Integer/Decimal
	// arithmetic can share one code path.
	ToDecimal() Decimal
}
