// Package parser builds an ast.Node tree from a token stream produced by
// the lexer, using recursive-descent parsing with the operator precedence
// table FHIRPath expressions require.
package parser

import (
	"fmt"

	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/ast"
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/lexer"
)

// ParseError reports a malformed expression at a token position.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser consumes a token stream and produces an ast.Node tree.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse lexes and parses a complete FHIRPath expression.
func Parse(src string) (ast.Node, error) {
	tokens, err := lexer.All(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.check(lexer.EOF) {
		t := p.peek()
		return nil, &ParseError{Line: t.Line, Column: t.Column, Message: fmt.Sprintf("unexpected token %q", t.Lexeme)}
	}
	return node, nil
}

func (p *Parser) peek() lexer.Token  { return p.tokens[p.pos] }
func (p *Parser) previous() lexer.Token {
	return p.tokens[p.pos-1]
}

func (p *Parser) check(k lexer.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) advance() lexer.Token {
	if !p.check(lexer.EOF) {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) match(kinds ...lexer.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	t := p.peek()
	return lexer.Token{}, &ParseError{Line: t.Line, Column: t.Column, Message: fmt.Sprintf("expected %s, got %q", what, t.Lexeme)}
}

func (p *Parser) errAt(t lexer.Token, msg string) error {
	return &ParseError{Line: t.Line, Column: t.Column, Message: msg}
}

// parseExpression is the entry point, at the lowest-precedence level.
func (p *Parser) parseExpression() (ast.Node, error) {
	return p.parseImplies()
}

func (p *Parser) parseImplies() (ast.Node, error) {
	left, err := p.parseOrXor()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.KwImplies) {
		right, err := p.parseOrXor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: "implies", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseOrXor() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.KwOr) || p.check(lexer.KwXor) {
		op := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Node, error) {
	left, err := p.parseMembership()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.KwAnd) {
		right, err := p.parseMembership()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMembership() (ast.Node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.KwIn) || p.check(lexer.KwContains) {
		op := p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Node, error) {
	left, err := p.parseInequality()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.Eq) || p.check(lexer.NotEq) || p.check(lexer.Tilde) || p.check(lexer.NotTilde) {
		op := p.advance()
		right, err := p.parseInequality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseInequality() (ast.Node, error) {
	left, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.Lt) || p.check(lexer.LtEq) || p.check(lexer.Gt) || p.check(lexer.GtEq) {
		op := p.advance()
		right, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnion() (ast.Node, error) {
	left, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.Pipe) {
		right, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: "|", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTypeExpr() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.KwIs) || p.check(lexer.KwAs) {
		op := p.advance()
		spec, err := p.parseTypeSpecifier()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op.Lexeme, Left: left, Right: spec}
	}
	return left, nil
}

// parseTypeSpecifier parses a (possibly qualified) type name: Patient or
// FHIR.Quantity or System.String.
func (p *Parser) parseTypeSpecifier() (ast.Node, error) {
	first, err := p.expect(lexer.Identifier, "type name")
	if err != nil {
		return nil, err
	}
	if p.check(lexer.Dot) {
		// Lookahead: only consume as qualifier if followed by another identifier.
		save := p.pos
		p.advance()
		if p.check(lexer.Identifier) {
			second := p.advance()
			return &ast.TypeSpecifier{Qualifier: first.Lexeme, Name: second.Lexeme}, nil
		}
		p.pos = save
	}
	return &ast.TypeSpecifier{Name: first.Lexeme}, nil
}

func (p *Parser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.Plus) || p.check(lexer.Minus) || p.check(lexer.Ampersand) {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.Star) || p.check(lexer.Slash) || p.check(lexer.KwDiv) || p.check(lexer.KwMod) {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Node, error) {
	if p.check(lexer.Plus) || p.check(lexer.Minus) {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: op.Lexeme, Operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles left-to-right dot navigation and indexing, the
// highest-precedence layer (invocation and indexer).
func (p *Parser) parsePostfix() (ast.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(lexer.Dot):
			rhs, err := p.parseMemberOrCall()
			if err != nil {
				return nil, err
			}
			node = &ast.Path{Left: node, Right: rhs}
		case p.match(lexer.LBracket):
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
				return nil, err
			}
			node = &ast.Indexer{Collection: node, Index: idx}
		default:
			return node, nil
		}
	}
}

// parseMemberOrCall parses the right-hand side of a '.', which is either a
// bare identifier or a function invocation.
func (p *Parser) parseMemberOrCall() (ast.Node, error) {
	if p.check(lexer.Identifier) || p.check(lexer.KwAs) || p.check(lexer.KwIs) || p.check(lexer.KwContains) || p.check(lexer.KwIn) {
		name := p.advance()
		if p.check(lexer.LParen) {
			return p.finishCall(name.Lexeme)
		}
		return &ast.Identifier{Name: name.Lexeme}, nil
	}
	if p.check(lexer.DelimitedIdentifier) {
		name := p.advance()
		if p.check(lexer.LParen) {
			return p.finishCall(name.Lexeme)
		}
		return &ast.Identifier{Name: name.Lexeme}, nil
	}
	t := p.peek()
	return nil, p.errAt(t, fmt.Sprintf("expected member name after '.', got %q", t.Lexeme))
}

func (p *Parser) finishCall(name string) (ast.Node, error) {
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Node
	if !p.check(lexer.RParen) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: name, Args: args}, nil
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	t := p.peek()
	switch t.Kind {
	case lexer.NumberLit:
		p.advance()
		return p.maybeQuantity(t.Lexeme)
	case lexer.StringLit:
		p.advance()
		return &ast.StringLiteral{Value: t.Lexeme}, nil
	case lexer.KwTrue:
		p.advance()
		return &ast.BooleanLiteral{Value: true}, nil
	case lexer.KwFalse:
		p.advance()
		return &ast.BooleanLiteral{Value: false}, nil
	case lexer.DateLit:
		p.advance()
		return &ast.DateTimeLiteral{Lexical: t.Lexeme, Kind: ast.DateKind}, nil
	case lexer.DateTimeLit:
		p.advance()
		return &ast.DateTimeLiteral{Lexical: t.Lexeme, Kind: ast.DateTimeKind}, nil
	case lexer.TimeLit:
		p.advance()
		return &ast.DateTimeLiteral{Lexical: t.Lexeme, Kind: ast.TimeKind}, nil
	case lexer.LBrace:
		p.advance()
		if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
			return nil, err
		}
		return &ast.EmptyLiteral{}, nil
	case lexer.Percent:
		p.advance()
		return p.parseVariable()
	case lexer.Dollar:
		p.advance()
		name, err := p.expect(lexer.Identifier, "$-variable name")
		if err != nil {
			return nil, err
		}
		return &ast.Identifier{Name: "$" + name.Lexeme}, nil
	case lexer.LParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.Identifier, lexer.DelimitedIdentifier:
		p.advance()
		if p.check(lexer.LParen) {
			return p.finishCall(t.Lexeme)
		}
		return &ast.Identifier{Name: t.Lexeme}, nil
	case lexer.KwAnd, lexer.KwOr, lexer.KwXor, lexer.KwImplies, lexer.KwDiv, lexer.KwMod, lexer.KwAs, lexer.KwIs, lexer.KwIn, lexer.KwContains:
		// Keywords are valid identifiers in member/path position (e.g. Patient.contains).
		p.advance()
		if p.check(lexer.LParen) {
			return p.finishCall(t.Lexeme)
		}
		return &ast.Identifier{Name: t.Lexeme}, nil
	}
	return nil, p.errAt(t, fmt.Sprintf("unexpected token %q", t.Lexeme))
}

// maybeQuantity checks whether a number literal is immediately followed by a
// unit (bare time-unit word or quoted UCUM code), forming a quantity literal.
func (p *Parser) maybeQuantity(value string) (ast.Node, error) {
	switch p.peek().Kind {
	case lexer.StringLit:
		unit := p.advance()
		return &ast.QuantityLiteral{Value: value, Unit: unit.Lexeme}, nil
	case lexer.Identifier:
		if unit, ok := timeUnitWord(p.peek().Lexeme); ok {
			p.advance()
			return &ast.QuantityLiteral{Value: value, Unit: unit}, nil
		}
	}
	kind := ast.IntegerNumber
	for i := 0; i < len(value); i++ {
		if value[i] == '.' {
			kind = ast.DecimalNumber
			break
		}
	}
	return &ast.NumberLiteral{Lexeme: value, Kind: kind}, nil
}

func timeUnitWord(word string) (string, bool) {
	switch word {
	case "year", "years":
		return "year", true
	case "month", "months":
		return "month", true
	case "week", "weeks":
		return "week", true
	case "day", "days":
		return "day", true
	case "hour", "hours":
		return "hour", true
	case "minute", "minutes":
		return "minute", true
	case "second", "seconds":
		return "second", true
	case "millisecond", "milliseconds":
		return "millisecond", true
	}
	return "", false
}

// parseVariable parses %name, %`delimited name`, or a reserved environment
// variable such as %context, %resource, %sct.
func (p *Parser) parseVariable() (ast.Node, error) {
	t := p.peek()
	switch t.Kind {
	case lexer.Identifier:
		p.advance()
		return &ast.Variable{Name: t.Lexeme}, nil
	case lexer.DelimitedIdentifier:
		p.advance()
		return &ast.Variable{Name: t.Lexeme}, nil
	case lexer.StringLit:
		p.advance()
		return &ast.Variable{Name: t.Lexeme}, nil
	}
	return nil, p.errAt(t, fmt.Sprintf("expected variable name after '%%', got %q", t.Lexeme))
}
