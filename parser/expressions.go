/*
File   : spl/parser/expressions.go

expressions.go implements the expression grammar as a Pratt
(precedence-climbing) parser.
*/
package parser

import (
	"strconv"

	"github.com/gospl/spl/ast"
	"github.com/gospl/spl/diag"
	"github.com/gospl/spl/lexer"
)

// binaryPrecedence gives each binary operator token its precedence,
// lowest first: || < && < | < ^ < & < ==/!= < relational < shifts <
// +/- < */% < **.
var binaryPrecedence = map[lexer.TokenType]int{
	lexer.OR_OR:   0,
	lexer.AND_AND: 1,
	lexer.PIPE:    2,
	lexer.CARET:   3,
	lexer.AMP:     4,
	lexer.EQ:      5,
	lexer.NE:      5,
	lexer.GT:      6,
	lexer.LT:      6,
	lexer.GE:      6,
	lexer.LE:      6,
	lexer.SHL:     7,
	lexer.SHR:     7,
	lexer.PLUS:    8,
	lexer.MINUS:   8,
	lexer.STAR:    9,
	lexer.SLASH:   9,
	lexer.PERCENT: 9,
	lexer.STAR_STAR: 10,
}

// rightAssociative holds the operators that group right-to-left.
// Exponentiation is the highest-precedence binary operator; most
// languages treat `**` as right-associative (`2 ** 3 ** 2` is
// `2 ** (3 ** 2)`, not `(2 ** 3) ** 2`), so that is the convention
// followed here, with every other operator left-associative.
var rightAssociative = map[lexer.TokenType]bool{
	lexer.STAR_STAR: true,
}

func tokenOpString(kind lexer.TokenType) string { return string(kind) }

// expression implements parse_expr(minPrec): read a primary, then while
// the next token is a binary operator at or above minPrec, consume it
// and recurse for the right-hand side at a minimum precedence one
// higher (or, for a right-associative operator, the same precedence),
// which is what produces left- or right-grouping respectively.
func (p *Parser) expression(minPrec int) (ast.Expression, error) {
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		prec, isBinary := binaryPrecedence[p.cur.Type]
		if !isBinary || prec < minPrec {
			return lhs, nil
		}
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !canStartExpression(p.cur.Type) {
			return nil, diag.New(diag.NoExpressionAfterBinaryOp, p.pos(), "expected expression after binary operator %q", opTok.Literal)
		}

		nextMin := prec + 1
		if rightAssociative[opTok.Type] {
			nextMin = prec
		}
		rhs, err := p.expression(nextMin)
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryOp{Op: tokenOpString(opTok.Type), LHS: lhs, RHS: rhs, Position: diag.Position{Line: opTok.Line, Column: opTok.Column}}
	}
}

var unaryOps = map[lexer.TokenType]bool{
	lexer.PLUS: true, lexer.MINUS: true, lexer.BANG: true, lexer.TILDE: true,
}

// canStartExpression reports whether kind can begin a primary: a literal,
// an identifier, an opening paren, or another unary operator.
func canStartExpression(kind lexer.TokenType) bool {
	if unaryOps[kind] {
		return true
	}
	switch kind {
	case lexer.LPAREN, lexer.INT, lexer.STRING, lexer.IDENT:
		return true
	default:
		return false
	}
}

// unary parses a unary operator applied to a further primary, or falls
// through to primary directly.
func (p *Parser) unary() (ast.Expression, error) {
	if unaryOps[p.cur.Type] {
		opTok := p.cur
		if !canStartExpression(p.peek.Type) {
			return nil, diag.New(diag.NoExpressionAfterUnaryOp, p.pos(), "expected expression after unary operator %q", opTok.Literal)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: tokenOpString(opTok.Type), Operand: operand, Position: diag.Position{Line: opTok.Line, Column: opTok.Column}}, nil
	}
	return p.primary()
}

// primary parses a parenthesized expression, a literal, an identifier,
// or a call to `print`.
func (p *Parser) primary() (ast.Expression, error) {
	pos := p.pos()
	switch p.cur.Type {
	case lexer.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curIs(lexer.RPAREN) {
			return nil, diag.New(diag.NoExpressionAfterLParen, pos, "expected expression after '('")
		}
		inner, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if !p.curIs(lexer.RPAREN) {
			return nil, diag.New(diag.UnmatchedParen, p.pos(), "unmatched '('")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil

	case lexer.INT:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := strconv.ParseUint(tok.Literal, 10, 64)
		if err != nil {
			return nil, diag.New(diag.InvalidToken, pos, "malformed integer literal %q", tok.Literal)
		}
		return &ast.IntegerLiteral{Value: v, Position: pos}, nil

	case lexer.STRING:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Value: tok.Literal, Position: pos}, nil

	case lexer.IDENT:
		return p.identifierOrCall()

	default:
		return nil, diag.New(diag.UnexpectedToken, pos, "unexpected token %q in expression", p.cur.Literal)
	}
}

// identifierOrCall parses either a plain Identifier or a FunctionCall
// (`name(arg)`); only `print` is a recognized callee in this language
// revision, but the grammar accepts any identifier call syntax and lets
// the IR builder reject unknown callees with a precise error.
func (p *Parser) identifierOrCall() (ast.Expression, error) {
	pos := p.pos()
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if !p.curIs(lexer.LPAREN) {
		return &ast.Identifier{Name: nameTok.Literal, Position: pos}, nil
	}

	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	var arg ast.Expression
	if !p.curIs(lexer.RPAREN) {
		arg, err = p.expression(0)
		if err != nil {
			return nil, err
		}
	}
	if !p.curIs(lexer.RPAREN) {
		return nil, diag.New(diag.UnmatchedParen, p.pos(), "unmatched '(' in call to %q", nameTok.Literal)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: nameTok.Literal, Arg: arg, Position: pos}, nil
}
