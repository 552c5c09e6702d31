// Package fhirpath implements a FHIRPath expression engine over FHIR
// resources encoded as JSON.
//
// FHIRPath is a path-based navigation and extraction language for FHIR
// resources. This implementation covers:
//   - Path navigation and collection projection (where, select, repeat, ...)
//   - Boolean, arithmetic, string, and collection operators
//   - Date/Time/DateTime arithmetic with partial-precision comparison
//   - Quantity arithmetic with UCUM unit conversion
//   - Type testing and conversion (is, as, ofType, toInteger, ...)
//   - Regex-backed string functions guarded against catastrophic backtracking
//   - FHIR-specific extensions: resolve(), extension(), getReferenceKey()
//
// Usage:
//
//	result, err := fhirpath.Evaluate(patientJSON, "name.given.first()")
//	active, err := fhirpath.EvaluateToBoolean(patientJSON, "active.exists()")
package fhirpath
