/*
File   : spl/parser/parser.go

Package parser builds an *ast.Block from a token stream using recursive
descent. Speculative productions (an identifier could start either an
assignment or a bare expression) snapshot the lexer and the lookahead
tokens before the tentative read and restore both on failure, so
lookahead never commits.
*/
package parser

import (
	"github.com/gospl/spl/ast"
	"github.com/gospl/spl/diag"
	"github.com/gospl/spl/lexer"
)

// Parser reads tokens from a lexer.Lexer and produces ast nodes. It
// holds a single token of lookahead (cur) plus the next one (peek),
// classic two-token recursive descent.
type Parser struct {
	lex  lexer.Lexer
	cur  lexer.Token
	peek lexer.Token
}

// New creates a Parser over src and primes the first two tokens.
func New(src string) (*Parser, error) {
	p := &Parser{lex: lexer.New(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// checkpoint is a cheap snapshot of everything speculative parsing needs
// to restore: the lexer cursor (a plain value type) and the two
// lookahead tokens.
type checkpoint struct {
	lex  lexer.Lexer
	cur  lexer.Token
	peek lexer.Token
}

func (p *Parser) snapshot() checkpoint {
	return checkpoint{lex: p.lex.Snapshot(), cur: p.cur, peek: p.peek}
}

func (p *Parser) restore(c checkpoint) {
	p.lex, p.cur, p.peek = c.lex, c.cur, c.peek
}

func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) curIs(kind lexer.TokenType) bool  { return p.cur.Type == kind }
func (p *Parser) peekIs(kind lexer.TokenType) bool { return p.peek.Type == kind }

func (p *Parser) expect(kind lexer.TokenType) (lexer.Token, error) {
	if !p.curIs(kind) {
		if kind == lexer.IDENT {
			return lexer.Token{}, diag.New(diag.ExpectedIdentifier, p.pos(),
				"expected identifier, found %s %q", p.cur.Type, p.cur.Literal)
		}
		return lexer.Token{}, diag.New(diag.UnexpectedToken, p.pos(),
			"expected %s, found %s %q", kind, p.cur.Type, p.cur.Literal)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return lexer.Token{}, err
	}
	return tok, nil
}

func (p *Parser) pos() diag.Position {
	return diag.Position{Line: p.cur.Line, Column: p.cur.Column}
}

// ParseProgram parses the unbraced top-level Block: statements until no
// more can be recognized, then EOF. Any remaining token is an error.
func ParseProgram(src string) (*ast.Block, error) {
	p, err := New(src)
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Position: p.pos()}
	for !p.curIs(lexer.EOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if !p.curIs(lexer.EOF) {
		return nil, diag.New(diag.TrailingTokensAfterProgram, p.pos(), "trailing tokens after program")
	}
	return block, nil
}

// block parses a braced `{ stmt* }`.
func (p *Parser) block() (*ast.Block, error) {
	start := p.pos()
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	blk := &ast.Block{Position: start}
	for !p.curIs(lexer.RBRACE) {
		if p.curIs(lexer.EOF) {
			return nil, diag.New(diag.UnmatchedBrace, p.pos(), "unmatched '{'")
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		blk.Statements = append(blk.Statements, stmt)
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return blk, nil
}
