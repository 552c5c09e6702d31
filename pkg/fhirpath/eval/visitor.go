package eval

import (
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/ast"
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/types"
)

// Visitor observes evaluation of every AST node as a before/after hook pair,
// mirroring the trace() logging pattern but at the granularity of the whole
// expression tree rather than a single function call. Implementations must
// not mutate node or ctx.
type Visitor interface {
	// Before runs immediately before node is evaluated, with ctx.This()
	// reflecting the input the node will see.
	Before(node ast.Node, ctx *Context)
	// After runs immediately after node is evaluated. result is either a
	// types.Collection or an error, matching what Evaluate would surface.
	After(node ast.Node, ctx *Context, result interface{})
}

// NullVisitor is a Visitor that does nothing; it is the Evaluator's default.
type NullVisitor struct{}

func (NullVisitor) Before(ast.Node, *Context)          {}
func (NullVisitor) After(ast.Node, *Context, interface{}) {}

// StepEntry records one Before/After observation for a TraceVisitor.
type StepEntry struct {
	Node   string
	Input  types.Collection
	Result types.Collection
	Err    error
}

// TraceVisitor accumulates a StepEntry per node in memory for later
// inspection: nothing is recorded unless the caller installs this visitor
// on an Evaluator via SetVisitor.
type TraceVisitor struct {
	Steps []StepEntry
}

func (v *TraceVisitor) Before(node ast.Node, ctx *Context) {
	v.Steps = append(v.Steps, StepEntry{Node: node.String(), Input: ctx.This()})
}

func (v *TraceVisitor) After(node ast.Node, _ *Context, result interface{}) {
	if len(v.Steps) == 0 {
		return
	}
	last := &v.Steps[len(v.Steps)-1]
	switch r := result.(type) {
	case error:
		last.Err = r
	case types.Collection:
		last.Result = r
	}
}
