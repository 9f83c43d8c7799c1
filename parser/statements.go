/*
File   : spl/parser/statements.go
*/
package parser

import (
	"github.com/gospl/spl/ast"
	"github.com/gospl/spl/diag"
	"github.com/gospl/spl/lexer"
)

// statement dispatches on the current token: let, assignment (or
// compound assignment), if, break, continue, loop, while, then a bare
// expression. A bare `;` with nothing before it is an Empty statement.
func (p *Parser) statement() (ast.Statement, error) {
	switch {
	case p.curIs(lexer.SEMICOLON):
		return p.emptyStatement()
	case p.curIs(lexer.LET):
		return p.letStatement()
	case p.curIs(lexer.IF):
		return p.ifStatement()
	case p.curIs(lexer.BREAK):
		return p.breakStatement()
	case p.curIs(lexer.CONTINUE):
		return p.continueStatement()
	case p.curIs(lexer.LOOP):
		return p.loopStatement()
	case p.curIs(lexer.WHILE):
		return p.whileStatement()
	case p.curIs(lexer.IDENT):
		// An identifier can begin either an assignment or a bare
		// expression; they share the IDENT prefix, so speculate.
		if stmt, ok, err := p.tryAssignment(); err != nil {
			return nil, err
		} else if ok {
			return stmt, nil
		}
		return p.expressionStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) emptyStatement() (ast.Statement, error) {
	pos := p.pos()
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Empty{Position: pos}, nil
}

// letStatement parses `let [mut] name [= expr] ;`.
func (p *Parser) letStatement() (ast.Statement, error) {
	pos := p.pos()
	if _, err := p.expect(lexer.LET); err != nil {
		return nil, err
	}
	mutable := false
	if p.curIs(lexer.MUT) {
		mutable = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}

	var init ast.Expression
	if p.curIs(lexer.ASSIGN) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		init, err = p.expression(0)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, diag.New(diag.MissingSemicolon, p.pos(), "missing ';' after let statement")
	}
	return &ast.Let{Name: nameTok.Literal, Mutable: mutable, Init: init, Position: pos}, nil
}

// compoundOps maps a compound-assignment token to the binary operator it
// desugars through: `x OP= e` becomes `x = x OP e`.
var compoundOps = map[lexer.TokenType]string{
	lexer.PLUS_EQ:      "+",
	lexer.MINUS_EQ:     "-",
	lexer.STAR_EQ:      "*",
	lexer.SLASH_EQ:     "/",
	lexer.PERCENT_EQ:   "%",
	lexer.STAR_STAR_EQ: "**",
	lexer.AMP_EQ:       "&",
	lexer.PIPE_EQ:      "|",
	lexer.CARET_EQ:     "^",
	lexer.SHL_EQ:       "<<",
	lexer.SHR_EQ:       ">>",
}

// tryAssignment speculatively parses `identifier = expr` or
// `identifier OP= expr`. ok is false (with the lexer/lookahead restored)
// if the current position is not an assignment at all, letting the
// caller fall back to parsing a bare expression instead.
func (p *Parser) tryAssignment() (ast.Statement, bool, error) {
	save := p.snapshot()

	pos := p.pos()
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		p.restore(save)
		return nil, false, nil
	}

	if p.curIs(lexer.ASSIGN) {
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		expr, err := p.expression(0)
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(lexer.SEMICOLON); err != nil {
			return nil, false, diag.New(diag.MissingSemicolon, p.pos(), "missing ';' after assignment")
		}
		return &ast.Assignment{Name: nameTok.Literal, Expr: expr, Position: pos}, true, nil
	}

	if op, isCompound := compoundOps[p.cur.Type]; isCompound {
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		rhs, err := p.expression(0)
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(lexer.SEMICOLON); err != nil {
			return nil, false, diag.New(diag.MissingSemicolon, p.pos(), "missing ';' after assignment")
		}
		desugared := &ast.BinaryOp{
			Op:       op,
			LHS:      &ast.Identifier{Name: nameTok.Literal, Position: pos},
			RHS:      rhs,
			Position: pos,
		}
		return &ast.Assignment{Name: nameTok.Literal, Expr: desugared, Position: pos}, true, nil
	}

	p.restore(save)
	return nil, false, nil
}

func (p *Parser) ifStatement() (ast.Statement, error) {
	pos := p.pos()
	if _, err := p.expect(lexer.IF); err != nil {
		return nil, err
	}
	cond, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	blk, err := p.block()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Branches: []ast.CondBlock{{Cond: cond, Block: blk}}, Position: pos}

	for p.curIs(lexer.ELSE) && p.peekIs(lexer.IF) {
		if err := p.advance(); err != nil { // consume else
			return nil, err
		}
		if err := p.advance(); err != nil { // consume if
			return nil, err
		}
		elifCond, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		elifBlk, err := p.block()
		if err != nil {
			return nil, err
		}
		node.Branches = append(node.Branches, ast.CondBlock{Cond: elifCond, Block: elifBlk})
	}

	if p.curIs(lexer.ELSE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBlk, err := p.block()
		if err != nil {
			return nil, err
		}
		node.Else = elseBlk
	}

	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, diag.New(diag.MissingSemicolon, p.pos(), "missing ';' after if statement")
	}
	return node, nil
}

func (p *Parser) loopStatement() (ast.Statement, error) {
	pos := p.pos()
	if _, err := p.expect(lexer.LOOP); err != nil {
		return nil, err
	}
	blk, err := p.block()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, diag.New(diag.MissingSemicolon, p.pos(), "missing ';' after loop statement")
	}
	return &ast.Loop{Block: blk, Position: pos}, nil
}

func (p *Parser) whileStatement() (ast.Statement, error) {
	pos := p.pos()
	if _, err := p.expect(lexer.WHILE); err != nil {
		return nil, err
	}
	cond, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	blk, err := p.block()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, diag.New(diag.MissingSemicolon, p.pos(), "missing ';' after while statement")
	}
	return &ast.While{Cond: cond, Block: blk, Position: pos}, nil
}

func (p *Parser) breakStatement() (ast.Statement, error) {
	pos := p.pos()
	if _, err := p.expect(lexer.BREAK); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, diag.New(diag.MissingSemicolon, p.pos(), "missing ';' after break")
	}
	return &ast.Break{Position: pos}, nil
}

func (p *Parser) continueStatement() (ast.Statement, error) {
	pos := p.pos()
	if _, err := p.expect(lexer.CONTINUE); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, diag.New(diag.MissingSemicolon, p.pos(), "missing ';' after continue")
	}
	return &ast.Continue{Position: pos}, nil
}

func (p *Parser) expressionStatement() (ast.Statement, error) {
	pos := p.pos()
	expr, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, diag.New(diag.MissingSemicolon, p.pos(), "missing ';' after expression statement")
	}
	return &ast.ExpressionStatement{Expr: expr, Position: pos}, nil
}
