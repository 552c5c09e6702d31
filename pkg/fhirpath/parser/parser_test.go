package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/ast"
)

func TestParsePrecedenceCascade(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"implies lowest", "a and b implies c or d", "((a and b) implies (c or d))"},
		{"or before and", "a or b and c", "(a or (b and c))"},
		{"and before membership", "a and b in c", "(a and (b in c))"},
		{"membership before equality", "a in b = c", "(a in (b = c))"},
		{"equality before inequality", "a = b < c", "(a = (b < c))"},
		{"inequality before union", "a < b | c", "(a < (b | c))"},
		{"union before additive", "a | b + c", "(a | (b + c))"},
		{"additive before multiplicative", "a + b * c", "(a + (b * c))"},
		{"multiplicative before unary", "-a * b", "((-a) * b)"},
		{"unary before postfix", "-a.b", "(-a.b)"},
		{"parens override", "(a + b) * c", "((a + b) * c)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestParseLeftAssociativity(t *testing.T) {
	node, err := Parse("a - b - c")
	require.NoError(t, err)
	assert.Equal(t, "((a - b) - c)", node.String())
}

func TestParseIsAsTypeSpecifier(t *testing.T) {
	node, err := Parse("value is FHIR.Quantity")
	require.NoError(t, err)

	bin, ok := node.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "is", bin.Op)

	spec, ok := bin.Right.(*ast.TypeSpecifier)
	require.True(t, ok)
	assert.Equal(t, "FHIR", spec.Qualifier)
	assert.Equal(t, "Quantity", spec.Name)
}

func TestParseUnqualifiedTypeSpecifier(t *testing.T) {
	node, err := Parse("value as Patient")
	require.NoError(t, err)

	bin := node.(*ast.BinaryOp)
	spec := bin.Right.(*ast.TypeSpecifier)
	assert.Equal(t, "", spec.Qualifier)
	assert.Equal(t, "Patient", spec.Name)
}

func TestParsePathChain(t *testing.T) {
	node, err := Parse("Patient.name.given")
	require.NoError(t, err)

	outer, ok := node.(*ast.Path)
	require.True(t, ok)
	assert.Equal(t, "given", outer.Right.(*ast.Identifier).Name)

	inner, ok := outer.Left.(*ast.Path)
	require.True(t, ok)
	assert.Equal(t, "name", inner.Right.(*ast.Identifier).Name)
	assert.Equal(t, "Patient", inner.Left.(*ast.Identifier).Name)
}

func TestParseFunctionCallArgs(t *testing.T) {
	node, err := Parse("where(active and name.exists())")
	require.NoError(t, err)

	call, ok := node.(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "where", call.Name)
	require.Len(t, call.Args, 1)
}

func TestParseFunctionCallMultipleArgs(t *testing.T) {
	node, err := Parse("substring(1, 2)")
	require.NoError(t, err)

	call := node.(*ast.FunctionCall)
	assert.Equal(t, "substring", call.Name)
	require.Len(t, call.Args, 2)
}

func TestParseIndexer(t *testing.T) {
	node, err := Parse("name[0]")
	require.NoError(t, err)

	idx, ok := node.(*ast.Indexer)
	require.True(t, ok)
	assert.Equal(t, "name", idx.Collection.(*ast.Identifier).Name)
	assert.Equal(t, "0", idx.Index.(*ast.NumberLiteral).Lexeme)
}

func TestParseChainedPathAndFunctionCall(t *testing.T) {
	node, err := Parse("Patient.name.where(use = 'official').given.first()")
	require.NoError(t, err)
	assert.Equal(t, `Patient.name.where(...).given.first(...)`, node.String())

	// Drill into the where() call to confirm its argument was parsed, even
	// though FunctionCall.String() doesn't render argument contents.
	path4 := node.(*ast.Path)
	path3 := path4.Left.(*ast.Path)
	assert.Equal(t, "first", path4.Right.(*ast.FunctionCall).Name)
	assert.Equal(t, "given", path3.Right.(*ast.Identifier).Name)

	path2 := path3.Left.(*ast.Path)
	whereCall := path2.Right.(*ast.FunctionCall)
	assert.Equal(t, "where", whereCall.Name)
	require.Len(t, whereCall.Args, 1)
	criteria := whereCall.Args[0].(*ast.BinaryOp)
	assert.Equal(t, "=", criteria.Op)
}

func TestParseVariables(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"resource", "%resource", "resource"},
		{"context", "%context", "context"},
		{"delimited variable", "%`vs-name`", "vs-name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.src)
			require.NoError(t, err)
			v, ok := node.(*ast.Variable)
			require.True(t, ok)
			assert.Equal(t, tt.want, v.Name)
		})
	}
}

func TestParseSpecialIdentifiers(t *testing.T) {
	tests := []string{"$this", "$index", "$total"}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			node, err := Parse(src)
			require.NoError(t, err)
			id, ok := node.(*ast.Identifier)
			require.True(t, ok)
			assert.Equal(t, src, id.Name)
		})
	}
}

func TestParseEmptyLiteral(t *testing.T) {
	node, err := Parse("{}")
	require.NoError(t, err)
	_, ok := node.(*ast.EmptyLiteral)
	assert.True(t, ok)
}

func TestParseQuantityLiteral(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		value    string
		wantUnit string
	}{
		{"bare unit", "4 days", "4", "day"},
		{"quoted unit", "5 'mg'", "5", "mg"},
		{"plain number no unit", "5", "5", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.src)
			require.NoError(t, err)
			if tt.wantUnit == "" {
				_, ok := node.(*ast.NumberLiteral)
				assert.True(t, ok)
				return
			}
			q, ok := node.(*ast.QuantityLiteral)
			require.True(t, ok)
			assert.Equal(t, tt.value, q.Value)
			assert.Equal(t, tt.wantUnit, q.Unit)
		})
	}
}

func TestParseKeywordsAsMemberNames(t *testing.T) {
	node, err := Parse("Patient.contains")
	require.NoError(t, err)
	p, ok := node.(*ast.Path)
	require.True(t, ok)
	assert.Equal(t, "contains", p.Right.(*ast.Identifier).Name)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"trailing tokens", "a)"},
		{"unterminated function call", "where(a"},
		{"missing member after dot", "a."},
		{"missing type name", "a is"},
		{"unexpected token", ")"},
		{"dangling lex error", "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			assert.Error(t, err)
		})
	}
}

func TestParseDateTimeLiteralNode(t *testing.T) {
	node, err := Parse("@2015-02-04T14:34:28Z")
	require.NoError(t, err)
	dt, ok := node.(*ast.DateTimeLiteral)
	require.True(t, ok)
	assert.Equal(t, ast.DateTimeKind, dt.Kind)
	assert.Equal(t, "2015-02-04T14:34:28Z", dt.Lexical)
}

func TestParseBooleanLiterals(t *testing.T) {
	node, err := Parse("true")
	require.NoError(t, err)
	b, ok := node.(*ast.BooleanLiteral)
	require.True(t, ok)
	assert.True(t, b.Value)
}
