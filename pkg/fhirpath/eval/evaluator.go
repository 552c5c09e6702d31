package eval

import (
	"strconv"
	"strings"

	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/ast"
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/types"
)

// FuncImpl is the signature for function implementations.
type FuncImpl func(ctx *Context, input types.Collection, args []interface{}) (types.Collection, error)

// FuncDef defines a FHIRPath function.
type FuncDef struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      FuncImpl
}

// FuncRegistry is an interface for function lookup.
type FuncRegistry interface {
	Get(name string) (FuncDef, bool)
}

// Evaluator evaluates a FHIRPath AST by dispatching on concrete node type.
type Evaluator struct {
	ctx     *Context
	funcs   FuncRegistry
	visitor Visitor
}

// NewEvaluator creates a new evaluator with the given context and function registry.
func NewEvaluator(ctx *Context, funcs FuncRegistry) *Evaluator {
	return &Evaluator{ctx: ctx, funcs: funcs, visitor: NullVisitor{}}
}

// SetVisitor installs a before/after evaluation hook pair (see visitor.go).
// A nil visitor is replaced with NullVisitor.
func (e *Evaluator) SetVisitor(v Visitor) {
	if v == nil {
		v = NullVisitor{}
	}
	e.visitor = v
}

// Evaluate evaluates an AST node and returns the result.
func (e *Evaluator) Evaluate(node ast.Node) (types.Collection, error) {
	result := e.eval(node)
	if err, ok := result.(error); ok {
		return nil, err
	}
	if col, ok := result.(types.Collection); ok {
		return col, nil
	}
	return types.Collection{}, nil
}

// eval dispatches on the concrete AST node type and returns either a
// types.Collection or an error.
func (e *Evaluator) eval(node ast.Node) interface{} {
	if node == nil {
		return types.Collection{}
	}

	e.visitor.Before(node, e.ctx)
	result := e.evalNode(node)
	e.visitor.After(node, e.ctx, result)
	return result
}

func (e *Evaluator) evalNode(node ast.Node) interface{} {
	switch n := node.(type) {
	case *ast.Identifier:
		return e.evalIdentifier(n)
	case *ast.StringLiteral:
		return types.Collection{types.NewString(n.Value)}
	case *ast.NumberLiteral:
		return e.evalNumberLiteral(n)
	case *ast.BooleanLiteral:
		return types.Collection{types.NewBoolean(n.Value)}
	case *ast.EmptyLiteral:
		return types.Collection{}
	case *ast.DateTimeLiteral:
		return e.evalTemporalLiteral(n)
	case *ast.QuantityLiteral:
		return e.evalQuantityLiteral(n)
	case *ast.Variable:
		return e.evalVariable(n)
	case *ast.Path:
		return e.evalPath(n)
	case *ast.Indexer:
		return e.evalIndexer(n)
	case *ast.FunctionCall:
		return e.evalFunctionCall(n)
	case *ast.BinaryOp:
		return e.evalBinaryOp(n)
	case *ast.UnaryOp:
		return e.evalUnaryOp(n)
	case *ast.TypeSpecifier:
		// A bare type specifier with no operator context is not a valid
		// standalone expression; it only appears as the right operand of
		// is/as, handled directly in evalBinaryOp.
		return NewEvalError(ErrInvalidExpression, "unexpected type specifier %q", n.String())
	}
	return NewEvalError(ErrInvalidExpression, "unrecognized expression node %T", node)
}

func (e *Evaluator) evalIdentifier(n *ast.Identifier) interface{} {
	switch n.Name {
	case "$this":
		return e.ctx.This()
	case "$index":
		return types.Collection{types.NewInteger(int64(e.ctx.index))}
	case "$total":
		if e.ctx.total != nil {
			return types.Collection{e.ctx.total}
		}
		return types.Collection{}
	}
	if strings.HasPrefix(n.Name, "$") {
		return NewEvalError(ErrInvalidPath, "unknown special variable: %s", n.Name)
	}
	return e.navigateMember(e.ctx.This(), n.Name)
}

func (e *Evaluator) evalNumberLiteral(n *ast.NumberLiteral) interface{} {
	if n.Kind == ast.IntegerNumber {
		if i, err := strconv.ParseInt(n.Lexeme, 10, 64); err == nil {
			return types.Collection{types.NewInteger(i)}
		}
	}
	d, err := types.NewDecimal(n.Lexeme)
	if err != nil {
		return ParseError("invalid number: " + n.Lexeme)
	}
	return types.Collection{d}
}

func (e *Evaluator) evalTemporalLiteral(n *ast.DateTimeLiteral) interface{} {
	switch n.Kind {
	case ast.DateKind:
		d, err := types.NewDate(n.Lexical)
		if err != nil {
			return ParseError("invalid date: " + n.Lexical)
		}
		return types.Collection{d}
	case ast.DateTimeKind:
		dt, err := types.NewDateTime(n.Lexical)
		if err != nil {
			return ParseError("invalid datetime: " + n.Lexical)
		}
		return types.Collection{dt}
	case ast.TimeKind:
		t, err := types.NewTime(n.Lexical)
		if err != nil {
			return ParseError("invalid time: " + n.Lexical)
		}
		return types.Collection{t}
	}
	return ParseError("invalid temporal literal: " + n.Lexical)
}

func (e *Evaluator) evalQuantityLiteral(n *ast.QuantityLiteral) interface{} {
	text := n.Value
	if n.Unit != "" {
		text += " '" + n.Unit + "'"
	}
	q, err := types.NewQuantity(text)
	if err != nil {
		return ParseError("invalid quantity: " + text)
	}
	return types.Collection{q}
}

func (e *Evaluator) evalVariable(n *ast.Variable) interface{} {
	if value, ok := e.ctx.GetVariable(n.Name); ok {
		return value
	}
	return NewEvalError(ErrInvalidPath, "undefined variable: %%%s", n.Name)
}

// evalPath evaluates Left, then evaluates Right with $this rebound to Left's
// result, implementing dot navigation and method-style function calls alike.
func (e *Evaluator) evalPath(n *ast.Path) interface{} {
	left := e.eval(n.Left)
	if err, ok := left.(error); ok {
		return err
	}
	leftCol, ok := left.(types.Collection)
	if !ok {
		return types.Collection{}
	}

	oldThis := e.ctx.this
	e.ctx.this = leftCol
	defer func() { e.ctx.this = oldThis }()

	return e.eval(n.Right)
}

func (e *Evaluator) evalIndexer(n *ast.Indexer) interface{} {
	base := e.eval(n.Collection)
	if err, ok := base.(error); ok {
		return err
	}
	baseCol, _ := base.(types.Collection)

	index := e.eval(n.Index)
	if err, ok := index.(error); ok {
		return err
	}
	indexCol, _ := index.(types.Collection)

	if indexCol.Empty() {
		return types.Collection{}
	}

	idx, ok := indexCol[0].(types.Integer)
	if !ok {
		return TypeError("Integer", indexCol[0].Type(), "indexer")
	}

	i := int(idx.Value())
	if i < 0 || i >= len(baseCol) {
		return types.Collection{}
	}
	return types.Collection{baseCol[i]}
}

func (e *Evaluator) evalUnaryOp(n *ast.UnaryOp) interface{} {
	result := e.eval(n.Operand)
	if err, ok := result.(error); ok {
		return err
	}
	col, _ := result.(types.Collection)

	if col.Empty() {
		return col
	}
	if len(col) != 1 {
		return SingletonError(len(col))
	}

	if n.Op == "-" {
		negated, err := Negate(col[0])
		if err != nil {
			return err
		}
		return types.Collection{negated}
	}
	return col
}

// evalFunctionCall evaluates a function invocation against $this, handling
// the functions that require lazy per-argument-expression evaluation before
// falling back to eager argument evaluation plus a registry lookup.
func (e *Evaluator) evalFunctionCall(n *ast.FunctionCall) interface{} {
	fn, ok := e.funcs.Get(n.Name)
	if !ok {
		return FunctionNotFoundError(n.Name)
	}

	argCount := len(n.Args)
	if argCount < fn.MinArgs {
		return InvalidArgumentsError(n.Name, fn.MinArgs, argCount)
	}
	if fn.MaxArgs >= 0 && argCount > fn.MaxArgs {
		return InvalidArgumentsError(n.Name, fn.MaxArgs, argCount)
	}

	input := e.ctx.This()
	switch n.Name {
	case "where":
		if argCount > 0 {
			return e.evaluateWhere(input, n.Args[0])
		}
	case "exists":
		if argCount > 0 {
			return e.evaluateExists(input, n.Args[0])
		}
	case "all":
		if argCount > 0 {
			return e.evaluateAll(input, n.Args[0])
		}
	case "select":
		if argCount > 0 {
			return e.evaluateSelect(input, n.Args[0])
		}
	case "repeat":
		if argCount > 0 {
			return e.evaluateRepeat(input, n.Args[0])
		}
	case "is":
		if argCount > 0 {
			return e.evaluateIsFunction(input, n.Args[0])
		}
	case "as":
		if argCount > 0 {
			return e.evaluateAsFunction(input, n.Args[0])
		}
	case "ofType":
		if argCount > 0 {
			return e.evaluateOfType(input, n.Args[0])
		}
	case "iif":
		if argCount >= 2 {
			return e.evaluateIif(input, n.Args)
		}
	case "aggregate":
		if argCount > 0 {
			var init ast.Node
			if argCount > 1 {
				init = n.Args[1]
			}
			return e.evaluateAggregate(input, n.Args[0], init)
		}
	}

	args := make([]interface{}, argCount)
	for i, argExpr := range n.Args {
		result := e.eval(argExpr)
		if err, ok := result.(error); ok {
			return err
		}
		args[i] = result
	}

	result, err := fn.Fn(e.ctx, e.ctx.This(), args)
	if err != nil {
		return err
	}
	return result
}

// evaluateWhere evaluates the where() function with per-element criteria.
func (e *Evaluator) evaluateWhere(input types.Collection, criteria ast.Node) interface{} {
	result := types.Collection{}

	if err := e.ctx.CheckCollectionSize(input); err != nil {
		return err
	}

	for i, item := range input {
		if i%100 == 0 {
			if err := e.ctx.CheckCancellation(); err != nil {
				return err
			}
		}

		oldThis := e.ctx.this
		oldIndex := e.ctx.index
		e.ctx.this = types.Collection{item}
		e.ctx.index = i

		criteriaResult := e.eval(criteria)

		e.ctx.this = oldThis
		e.ctx.index = oldIndex

		if err, ok := criteriaResult.(error); ok {
			return err
		}

		if col, ok := criteriaResult.(types.Collection); ok && !col.Empty() {
			if b, ok := col[0].(types.Boolean); ok && b.Bool() {
				result = append(result, item)
			}
		}
	}

	return result
}

// evaluateExists evaluates exists() with optional criteria.
func (e *Evaluator) evaluateExists(input types.Collection, criteria ast.Node) interface{} {
	for i, item := range input {
		if i%100 == 0 {
			if err := e.ctx.CheckCancellation(); err != nil {
				return err
			}
		}

		oldThis := e.ctx.this
		oldIndex := e.ctx.index
		e.ctx.this = types.Collection{item}
		e.ctx.index = i

		criteriaResult := e.eval(criteria)

		e.ctx.this = oldThis
		e.ctx.index = oldIndex

		if err, ok := criteriaResult.(error); ok {
			return err
		}

		if col, ok := criteriaResult.(types.Collection); ok && !col.Empty() {
			if b, ok := col[0].(types.Boolean); ok && b.Bool() {
				return types.Collection{types.NewBoolean(true)}
			}
		}
	}

	return types.Collection{types.NewBoolean(false)}
}

// evaluateAll evaluates all() - returns true if all elements match criteria.
func (e *Evaluator) evaluateAll(input types.Collection, criteria ast.Node) interface{} {
	if input.Empty() {
		return types.Collection{types.NewBoolean(true)}
	}

	for i, item := range input {
		if i%100 == 0 {
			if err := e.ctx.CheckCancellation(); err != nil {
				return err
			}
		}

		oldThis := e.ctx.this
		oldIndex := e.ctx.index
		e.ctx.this = types.Collection{item}
		e.ctx.index = i

		criteriaResult := e.eval(criteria)

		e.ctx.this = oldThis
		e.ctx.index = oldIndex

		if err, ok := criteriaResult.(error); ok {
			return err
		}

		if col, ok := criteriaResult.(types.Collection); ok {
			if col.Empty() {
				return types.Collection{types.NewBoolean(false)}
			}
			if b, ok := col[0].(types.Boolean); ok && !b.Bool() {
				return types.Collection{types.NewBoolean(false)}
			}
		}
	}

	return types.Collection{types.NewBoolean(true)}
}

// evaluateSelect evaluates select() - projects each element.
func (e *Evaluator) evaluateSelect(input types.Collection, projection ast.Node) interface{} {
	result := types.Collection{}

	if err := e.ctx.CheckCollectionSize(input); err != nil {
		return err
	}

	for i, item := range input {
		if i%100 == 0 {
			if err := e.ctx.CheckCancellation(); err != nil {
				return err
			}
		}

		oldThis := e.ctx.this
		oldIndex := e.ctx.index
		e.ctx.this = types.Collection{item}
		e.ctx.index = i

		projResult := e.eval(projection)

		e.ctx.this = oldThis
		e.ctx.index = oldIndex

		if err, ok := projResult.(error); ok {
			return err
		}

		if col, ok := projResult.(types.Collection); ok {
			result = append(result, col...)

			if err := e.ctx.CheckCollectionSize(result); err != nil {
				return err
			}
		}
	}

	return result
}

// evaluateRepeat applies projection to input, then to its own output, and so
// on, accumulating every newly seen item until a round produces nothing not
// already collected.
func (e *Evaluator) evaluateRepeat(input types.Collection, projection ast.Node) interface{} {
	result := types.Collection{}
	current := input
	round := 0

	for len(current) > 0 {
		round++
		if round > 10000 {
			return NewEvalError(ErrInvalidExpression, "repeat() exceeded maximum iteration count")
		}
		if err := e.ctx.CheckCancellation(); err != nil {
			return err
		}

		next := types.Collection{}
		for i, item := range current {
			oldThis := e.ctx.this
			oldIndex := e.ctx.index
			e.ctx.this = types.Collection{item}
			e.ctx.index = i

			projResult := e.eval(projection)

			e.ctx.this = oldThis
			e.ctx.index = oldIndex

			if err, ok := projResult.(error); ok {
				return err
			}
			if col, ok := projResult.(types.Collection); ok {
				next = append(next, col...)
			}
		}

		fresh := types.Collection{}
		for _, item := range next {
			if !result.Contains(item) && !fresh.Contains(item) {
				fresh = append(fresh, item)
			}
		}
		if len(fresh) == 0 {
			break
		}
		result = append(result, fresh...)
		current = fresh

		if err := e.ctx.CheckCollectionSize(result); err != nil {
			return err
		}
	}

	return result
}

// evaluateAggregate folds aggregator over input, left to right, exposing the
// running accumulator to the aggregator expression as $total and each element
// as $this/$index. init, if given, seeds $total; otherwise $total starts Empty.
func (e *Evaluator) evaluateAggregate(input types.Collection, aggregator ast.Node, init ast.Node) interface{} {
	var total types.Value
	if init != nil {
		initResult := e.eval(init)
		if err, ok := initResult.(error); ok {
			return err
		}
		if col, ok := initResult.(types.Collection); ok && !col.Empty() {
			total = col[0]
		}
	}

	for i, item := range input {
		if i%100 == 0 {
			if err := e.ctx.CheckCancellation(); err != nil {
				return err
			}
		}

		oldThis := e.ctx.this
		oldIndex := e.ctx.index
		oldTotal := e.ctx.total
		e.ctx.this = types.Collection{item}
		e.ctx.index = i
		e.ctx.total = total

		stepResult := e.eval(aggregator)

		e.ctx.this = oldThis
		e.ctx.index = oldIndex
		e.ctx.total = oldTotal

		if err, ok := stepResult.(error); ok {
			return err
		}
		if col, ok := stepResult.(types.Collection); ok && !col.Empty() {
			total = col[0]
		} else {
			total = nil
		}
	}

	if total == nil {
		return types.Collection{}
	}
	return types.Collection{total}
}

// evaluateIsFunction evaluates is(Type) - checks if input is of specified type.
func (e *Evaluator) evaluateIsFunction(input types.Collection, typeExpr ast.Node) interface{} {
	if input.Empty() {
		return types.Collection{}
	}
	if len(input) != 1 {
		return SingletonError(len(input))
	}

	typeName := extractTypeNameFromNode(typeExpr)
	if typeName == "" {
		return InvalidArgumentsError("is", 1, 0)
	}

	actualType := input[0].Type()
	matches := TypeMatches(actualType, typeName)
	return types.Collection{types.NewBoolean(matches)}
}

// evaluateAsFunction evaluates as(Type) - casts input to specified type.
func (e *Evaluator) evaluateAsFunction(input types.Collection, typeExpr ast.Node) interface{} {
	if input.Empty() {
		return types.Collection{}
	}
	if len(input) != 1 {
		return SingletonError(len(input))
	}

	typeName := extractTypeNameFromNode(typeExpr)
	if typeName == "" {
		return InvalidArgumentsError("as", 1, 0)
	}

	actualType := input[0].Type()
	if TypeMatches(actualType, typeName) {
		return input
	}
	return types.Collection{}
}

// extractTypeNameFromNode extracts a type name from the argument position of
// is()/as()/ofType(), which the parser recognizes either as a TypeSpecifier
// or (since the grammar also permits a path-shaped type name) an Identifier
// or Path chain of identifiers.
func extractTypeNameFromNode(node ast.Node) string {
	switch n := node.(type) {
	case *ast.TypeSpecifier:
		if n.Qualifier != "" {
			return n.Qualifier + "." + n.Name
		}
		return n.Name
	case *ast.Identifier:
		return n.Name
	case *ast.Path:
		return n.String()
	}
	return ""
}

// evaluateOfType evaluates ofType() - filters a collection by type.
func (e *Evaluator) evaluateOfType(input types.Collection, typeExpr ast.Node) interface{} {
	if input.Empty() {
		return types.Collection{}
	}

	typeName := extractTypeNameFromNode(typeExpr)
	if typeName == "" {
		return InvalidArgumentsError("ofType", 1, 0)
	}

	result := types.Collection{}
	for _, item := range input {
		actualType := item.Type()
		if obj, ok := item.(*types.ObjectValue); ok {
			actualType = obj.Type()
		}
		if TypeMatches(actualType, typeName) {
			result = append(result, item)
		}
	}

	return result
}

// evaluateIif evaluates the iif() function with lazy evaluation.
// Only the matching branch is evaluated, preventing errors from the other branch.
// Signature: iif(criterion, true-result [, otherwise-result])
func (e *Evaluator) evaluateIif(_ types.Collection, argExprs []ast.Node) interface{} {
	if len(argExprs) < 2 {
		return InvalidArgumentsError("iif", 2, len(argExprs))
	}

	criterionResult := e.eval(argExprs[0])
	if err, ok := criterionResult.(error); ok {
		return err
	}

	criterion := false
	if coll, ok := criterionResult.(types.Collection); ok && !coll.Empty() {
		if b, ok := coll[0].(types.Boolean); ok {
			criterion = b.Bool()
		}
	}

	if criterion {
		result := e.eval(argExprs[1])
		if err, ok := result.(error); ok {
			return err
		}
		if coll, ok := result.(types.Collection); ok {
			return coll
		}
		return types.Collection{}
	}

	if len(argExprs) > 2 {
		result := e.eval(argExprs[2])
		if err, ok := result.(error); ok {
			return err
		}
		if coll, ok := result.(types.Collection); ok {
			return coll
		}
	}

	return types.Collection{}
}

// evalBinaryOp dispatches infix operators by operator string.
func (e *Evaluator) evalBinaryOp(n *ast.BinaryOp) interface{} {
	switch n.Op {
	case "is", "as":
		return e.evalTypeOp(n)
	}

	left := e.eval(n.Left)
	if err, ok := left.(error); ok {
		return err
	}
	leftCol, _ := left.(types.Collection)

	// and/or/xor/implies use three-valued logic and must see the raw
	// (possibly empty) right-hand collection, so they bypass the shared
	// empty/singleton gate below used by the value operators.
	switch n.Op {
	case "and":
		right := e.eval(n.Right)
		if err, ok := right.(error); ok {
			return err
		}
		rightCol, _ := right.(types.Collection)
		return And(leftCol, rightCol)
	case "or":
		right := e.eval(n.Right)
		if err, ok := right.(error); ok {
			return err
		}
		rightCol, _ := right.(types.Collection)
		return Or(leftCol, rightCol)
	case "xor":
		right := e.eval(n.Right)
		if err, ok := right.(error); ok {
			return err
		}
		rightCol, _ := right.(types.Collection)
		return Xor(leftCol, rightCol)
	case "implies":
		right := e.eval(n.Right)
		if err, ok := right.(error); ok {
			return err
		}
		rightCol, _ := right.(types.Collection)
		return Implies(leftCol, rightCol)
	}

	right := e.eval(n.Right)
	if err, ok := right.(error); ok {
		return err
	}
	rightCol, _ := right.(types.Collection)

	switch n.Op {
	case "|":
		return Union(leftCol, rightCol)
	case "=":
		return Equal(leftCol, rightCol)
	case "!=":
		return NotEqual(leftCol, rightCol)
	case "~":
		return Equivalent(leftCol, rightCol)
	case "!~":
		return NotEquivalent(leftCol, rightCol)
	case "in":
		return In(leftCol, rightCol)
	case "contains":
		return Contains(leftCol, rightCol)
	case "&":
		return Concatenate(leftCol, rightCol)
	}

	// Remaining operators: comparison and arithmetic, which propagate
	// empty and require singleton operands.
	if leftCol.Empty() || rightCol.Empty() {
		return types.Collection{}
	}
	if len(leftCol) != 1 || len(rightCol) != 1 {
		return SingletonError(len(leftCol) + len(rightCol))
	}

	// Dates, DateTimes and Times of the same kind only fail to compare when
	// their precisions differ and the order is ambiguous; that yields Empty.
	switch n.Op {
	case "<", "<=", ">", ">=":
		if _, err := Compare(leftCol[0], rightCol[0]); err != nil {
			switch leftCol[0].(type) {
			case types.Date, types.DateTime, types.Time:
				if leftCol[0].Type() == rightCol[0].Type() {
					return types.Collection{}
				}
			}
		}
	}

	switch n.Op {
	case "<":
		result, err := LessThan(leftCol[0], rightCol[0])
		if err != nil {
			return err
		}
		return result
	case "<=":
		result, err := LessOrEqual(leftCol[0], rightCol[0])
		if err != nil {
			return err
		}
		return result
	case ">":
		result, err := GreaterThan(leftCol[0], rightCol[0])
		if err != nil {
			return err
		}
		return result
	case ">=":
		result, err := GreaterOrEqual(leftCol[0], rightCol[0])
		if err != nil {
			return err
		}
		return result
	case "+":
		result, err := Add(leftCol[0], rightCol[0])
		if err != nil {
			return err
		}
		return types.Collection{result}
	case "-":
		result, err := Subtract(leftCol[0], rightCol[0])
		if err != nil {
			return err
		}
		return types.Collection{result}
	case "*":
		result, err := Multiply(leftCol[0], rightCol[0])
		if err != nil {
			return err
		}
		return types.Collection{result}
	case "/":
		result, err := Divide(leftCol[0], rightCol[0])
		if err != nil {
			return err
		}
		return types.Collection{result}
	case "div":
		result, err := IntegerDivide(leftCol[0], rightCol[0])
		if err != nil {
			return err
		}
		return types.Collection{result}
	case "mod":
		result, err := Modulo(leftCol[0], rightCol[0])
		if err != nil {
			return err
		}
		return types.Collection{result}
	}

	return NewEvalError(ErrInvalidOperation, "unknown operator %q", n.Op)
}

// evalTypeOp evaluates 'is' and 'as' binary-operator form (distinct from the
// is()/as() function-call form, which evaluateIsFunction/evaluateAsFunction
// handle).
func (e *Evaluator) evalTypeOp(n *ast.BinaryOp) interface{} {
	left := e.eval(n.Left)
	if err, ok := left.(error); ok {
		return err
	}
	leftCol, _ := left.(types.Collection)

	typeName := extractTypeNameFromNode(n.Right)

	if leftCol.Empty() {
		return types.Collection{}
	}
	if len(leftCol) != 1 {
		return SingletonError(len(leftCol))
	}

	actualType := leftCol[0].Type()

	switch n.Op {
	case "is":
		return types.Collection{types.NewBoolean(TypeMatches(actualType, typeName))}
	case "as":
		if TypeMatches(actualType, typeName) {
			return leftCol
		}
		return types.Collection{}
	}

	return types.Collection{}
}

// nonDomainResources contains FHIR resources that inherit directly from Resource,
// not from DomainResource. All other resources inherit from DomainResource.
var nonDomainResources = map[string]bool{
	"Bundle":     true,
	"Binary":     true,
	"Parameters": true,
}

// IsDomainResource returns true if the given resource type inherits from DomainResource.
// Bundle, Binary, and Parameters inherit directly from Resource, not DomainResource.
func IsDomainResource(resourceType string) bool {
	return !nonDomainResources[resourceType]
}

// IsSubtypeOf checks if actualType is a subtype of (or equal to) baseType.
// This handles the FHIR type hierarchy:
//
//	Resource
//	  └── DomainResource
//	        ├── Patient
//	        ├── Observation
//	        └── ... (most resources)
//	  └── Bundle, Binary, Parameters (directly inherit from Resource)
func IsSubtypeOf(actualType, baseType string) bool {
	if actualType == baseType {
		return true
	}
	if strings.EqualFold(actualType, baseType) {
		return true
	}

	if baseType == "Resource" || strings.EqualFold(baseType, "resource") {
		return isPossibleResourceType(actualType)
	}

	if baseType == "DomainResource" || strings.EqualFold(baseType, "domainresource") {
		return isPossibleResourceType(actualType) && IsDomainResource(actualType)
	}

	return false
}

// isPossibleResourceType checks if the type looks like a FHIR resource type.
// Resource types are PascalCase and are not primitive types.
func isPossibleResourceType(typeName string) bool {
	if typeName == "" {
		return false
	}

	primitiveTypes := map[string]bool{
		"Boolean": true, "String": true, "Integer": true, "Decimal": true,
		"Date": true, "DateTime": true, "Time": true, "Quantity": true,
		"Object": true,
	}
	if primitiveTypes[typeName] {
		return false
	}

	return typeName[0] >= 'A' && typeName[0] <= 'Z'
}

// TypeMatches checks if actualType matches the requested typeName.
// Handles case-insensitive comparison and FHIR type aliases.
// This function is exported for use by the is() function implementation.
func TypeMatches(actualType, typeName string) bool {
	if actualType == typeName {
		return true
	}

	actualLower := strings.ToLower(actualType)
	typeNameLower := strings.ToLower(typeName)

	if actualLower == typeNameLower {
		return true
	}

	if IsSubtypeOf(actualType, typeName) {
		return true
	}

	// FHIR primitive type mappings (FHIR uses lowercase, FHIRPath uses PascalCase)
	fhirToFHIRPath := map[string]string{
		"boolean":        "Boolean",
		"string":         "String",
		"integer":        "Integer",
		"decimal":        "Decimal",
		"date":           "Date",
		"datetime":       "DateTime",
		"time":           "Time",
		"instant":        "DateTime",
		"uri":            "String",
		"url":            "String",
		"canonical":      "String",
		"base64binary":   "String",
		"code":           "String",
		"id":             "String",
		"markdown":       "String",
		"oid":            "String",
		"uuid":           "String",
		"positiveint":    "Integer",
		"unsignedint":    "Integer",
		"integer64":      "Integer",
		"quantity":       "Quantity",
		"simplequantity": "Quantity",
		"age":            "Quantity",
		"count":          "Quantity",
		"distance":       "Quantity",
		"duration":       "Quantity",
		"money":          "Quantity",
	}

	if fhirPathType, ok := fhirToFHIRPath[typeNameLower]; ok {
		if actualType == fhirPathType {
			return true
		}
	}

	if fhirPathType, ok := fhirToFHIRPath[actualLower]; ok {
		if fhirPathType == typeName || strings.EqualFold(fhirPathType, typeName) {
			return true
		}
	}

	// System type namespace handling (System.Boolean, System.String, ...)
	if strings.HasPrefix(typeNameLower, "system.") {
		systemType := typeName[7:]
		if strings.EqualFold(actualType, systemType) {
			return true
		}
	}

	// FHIR namespace handling (FHIR.Patient, ...)
	if strings.HasPrefix(typeNameLower, "fhir.") {
		fhirType := typeName[5:]
		if strings.EqualFold(actualType, fhirType) {
			return true
		}
	}

	return false
}

// polymorphicTypeSuffixes contains all FHIR type suffixes for polymorphic elements (value[x] pattern).
// These are used to resolve element names like "value" to "valueQuantity", "valueString", etc.
var polymorphicTypeSuffixes = []string{
	// Primitive types
	"Boolean", "Integer", "Integer64", "Decimal", "String", "Code", "Id", "Uri", "Url", "Canonical",
	"Base64Binary", "Instant", "Date", "DateTime", "Time", "Oid", "Uuid", "Markdown", "PositiveInt", "UnsignedInt",
	// Complex types
	"Quantity", "CodeableConcept", "Coding", "Range", "Period", "Ratio", "RatioRange",
	"Identifier", "Reference", "Attachment", "HumanName", "Address", "ContactPoint",
	"Timing", "Signature", "Annotation", "SampledData", "Age", "Distance", "Duration",
	"Count", "Money", "MoneyQuantity", "SimpleQuantity",
	// Special types
	"Meta", "Dosage", "ContactDetail", "Contributor", "DataRequirement", "Expression",
	"ParameterDefinition", "RelatedArtifact", "TriggerDefinition", "UsageContext",
}

// navigateMember navigates to a member of objects in the collection.
// Supports FHIR polymorphic elements (value[x] pattern) by automatically
// resolving element names like "value" to their typed variants.
func (e *Evaluator) navigateMember(input types.Collection, name string) types.Collection {
	result := types.Collection{}

	for _, item := range input {
		obj, ok := item.(*types.ObjectValue)
		if !ok {
			continue
		}

		if IsSubtypeOf(obj.Type(), name) {
			result = append(result, obj)
			continue
		}

		children := obj.GetCollection(name)
		if len(children) > 0 {
			result = append(result, children...)
			continue
		}

		polymorphicChildren := e.resolvePolymorphicField(obj, name)
		result = append(result, polymorphicChildren...)
	}

	return result
}

// resolvePolymorphicField attempts to resolve a polymorphic FHIR element.
// For example, accessing "value" will search for "valueQuantity", "valueString", etc.
func (e *Evaluator) resolvePolymorphicField(obj *types.ObjectValue, name string) types.Collection {
	result := types.Collection{}

	for _, suffix := range polymorphicTypeSuffixes {
		fieldName := name + suffix
		children := obj.GetCollection(fieldName)
		if len(children) > 0 {
			result = append(result, children...)
			return result
		}
	}

	return result
}
