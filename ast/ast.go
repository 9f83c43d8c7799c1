/*
File   : spl/ast/ast.go

Package ast defines the syntax tree the parser builds and the IR builder
consumes. Every node owns its children exclusively: the tree has no
sharing and no cycles.
*/
package ast

import "github.com/gospl/spl/diag"

// Node is implemented by every AST node.
type Node interface {
	Pos() diag.Position
}

// Statement is one of Let, Assignment, If, Loop, While, Break, Continue,
// ExpressionStatement, or Empty.
type Statement interface {
	Node
	statementNode()
}

// Expression is one of BinaryOp, UnaryOp, IntegerLiteral, StringLiteral,
// Identifier, or FunctionCall.
type Expression interface {
	Node
	expressionNode()
}

// Block is an ordered sequence of statements. A program is the unbraced
// top-level Block; `if`/`loop`/`while` bodies are braced Blocks.
type Block struct {
	Statements []Statement
	Position   diag.Position
}

func (b *Block) Pos() diag.Position { return b.Position }

// Let declares a new binding, optionally mutable, optionally initialized.
// A Let with Init == nil still reserves a register; its value is
// undefined until assigned.
type Let struct {
	Name     string
	Mutable  bool
	Init     Expression // nil if uninitialized
	Position diag.Position
}

func (l *Let) statementNode()      {}
func (l *Let) Pos() diag.Position  { return l.Position }

// Assignment is `name = expr`. Compound assignment (`x += e`) is desugared
// to Assignment{Name: x, Expr: BinaryOp{+, Identifier(x), e}} by the
// parser, so the IR builder never sees a compound form.
type Assignment struct {
	Name     string
	Expr     Expression
	Position diag.Position
}

func (a *Assignment) statementNode()     {}
func (a *Assignment) Pos() diag.Position { return a.Position }

// CondBlock pairs a condition expression with the block to run when it is
// non-zero. If.Branches[0] is the primary `if`; the rest are `else if`s.
type CondBlock struct {
	Cond  Expression
	Block *Block
}

// If is `if cond {..} (else if cond {..})* (else {..})?`. Else is nil when
// there is no trailing else.
type If struct {
	Branches []CondBlock // Branches[0] is the primary if; rest are else-if
	Else     *Block      // nil if absent
	Position diag.Position
}

func (i *If) statementNode()     {}
func (i *If) Pos() diag.Position { return i.Position }

// Loop is an unconditional `loop { .. }`, exited only via break.
type Loop struct {
	Block    *Block
	Position diag.Position
}

func (l *Loop) statementNode()     {}
func (l *Loop) Pos() diag.Position { return l.Position }

// While is `while cond { .. }`.
type While struct {
	Cond     Expression
	Block    *Block
	Position diag.Position
}

func (w *While) statementNode()     {}
func (w *While) Pos() diag.Position { return w.Position }

// Break is `break;`. It must appear inside a Loop or While.
type Break struct {
	Position diag.Position
}

func (b *Break) statementNode()     {}
func (b *Break) Pos() diag.Position { return b.Position }

// Continue is `continue;`. It must appear inside a Loop or While.
type Continue struct {
	Position diag.Position
}

func (c *Continue) statementNode()     {}
func (c *Continue) Pos() diag.Position { return c.Position }

// ExpressionStatement is a bare expression used for its side effect
// (currently only `print(...)` calls have any).
type ExpressionStatement struct {
	Expr     Expression
	Position diag.Position
}

func (e *ExpressionStatement) statementNode()     {}
func (e *ExpressionStatement) Pos() diag.Position { return e.Position }

// Empty is a bare `;` with nothing before it.
type Empty struct {
	Position diag.Position
}

func (e *Empty) statementNode()     {}
func (e *Empty) Pos() diag.Position { return e.Position }

// BinaryOp is `lhs OP rhs` for any of the binary operator token types.
type BinaryOp struct {
	Op       string
	LHS, RHS Expression
	Position diag.Position
}

func (b *BinaryOp) expressionNode()   {}
func (b *BinaryOp) Pos() diag.Position { return b.Position }

// UnaryOp is `OP operand` for one of +, -, !, ~.
type UnaryOp struct {
	Op       string
	Operand  Expression
	Position diag.Position
}

func (u *UnaryOp) expressionNode()   {}
func (u *UnaryOp) Pos() diag.Position { return u.Position }

// IntegerLiteral is a literal 64-bit unsigned value, including values
// produced by a character literal.
type IntegerLiteral struct {
	Value    uint64
	Position diag.Position
}

func (i *IntegerLiteral) expressionNode()   {}
func (i *IntegerLiteral) Pos() diag.Position { return i.Position }

// StringLiteral is a literal string. IR lowering of string expressions is
// currently unimplemented; the node exists so the parser can accept the
// syntax and the IR builder can report a precise error.
type StringLiteral struct {
	Value    string
	Position diag.Position
}

func (s *StringLiteral) expressionNode()   {}
func (s *StringLiteral) Pos() diag.Position { return s.Position }

// Identifier is a reference to a previously bound name.
type Identifier struct {
	Name     string
	Position diag.Position
}

func (i *Identifier) expressionNode()   {}
func (i *Identifier) Pos() diag.Position { return i.Position }

// FunctionCall is `name(arg)`. Only `print` is recognized in the current
// language revision.
type FunctionCall struct {
	Name     string
	Arg      Expression
	Position diag.Position
}

func (f *FunctionCall) expressionNode()   {}
func (f *FunctionCall) Pos() diag.Position { return f.Position }
