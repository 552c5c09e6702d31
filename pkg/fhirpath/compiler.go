package fhirpath

import (
	"fmt"

	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/parser"
)

// compile parses a FHIRPath expression into a compiled Expression.
func compile(expr string) (*Expression, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}

	tree, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}

	return &Expression{
		source: expr,
		tree:   tree,
	}, nil
}

// Validate checks that expr lexes and parses without evaluating it.
func Validate(expr string) error {
	if expr == "" {
		return fmt.Errorf("empty expression")
	}
	_, err := parser.Parse(expr)
	return err
}
