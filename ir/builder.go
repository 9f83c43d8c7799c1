/*
File   : spl/ir/builder.go

builder.go lowers an *ast.Block into a Program: a flat, linear sequence
of Instructions, resolving identifiers to virtual registers and control
flow to labels.
*/
package ir

import (
	"github.com/gospl/spl/ast"
	"github.com/gospl/spl/diag"
	"github.com/gospl/spl/scope"
)

// loopLabels is the break/continue target pair active inside a Loop or
// While body. A nil *loopLabels means "not inside a loop".
type loopLabels struct {
	breakLabel    Label
	continueLabel Label
}

// Builder holds all shared lowering state: the output instruction list,
// the current scope frame, and monotonic register/label counters.
type Builder struct {
	program  Program
	current  *scope.Scope
	nextReg  Register
	nextLbl  Label
	loop     *loopLabels
}

// NewBuilder creates a Builder with an empty top-level scope. Register 0
// is never allocated; the first call to newRegister returns 1.
func NewBuilder() *Builder {
	return &Builder{current: scope.New(nil)}
}

// Build lowers block into a Program. It is the sole entry point; callers
// that want the AST→IR pipeline as a single function should use this.
func Build(block *ast.Block) (Program, error) {
	b := NewBuilder()
	if err := b.block(block); err != nil {
		return nil, err
	}
	return b.program, nil
}

func (b *Builder) newRegister() Register {
	b.nextReg++
	return b.nextReg
}

func (b *Builder) newLabel() Label {
	b.nextLbl++
	return b.nextLbl
}

func (b *Builder) emit(ins Instruction) {
	b.program = append(b.program, ins)
}

// block pushes a fresh scope frame, lowers every statement, then restores
// the enclosing frame.
func (b *Builder) block(blk *ast.Block) error {
	outer := b.current
	b.current = scope.New(outer)
	defer func() { b.current = outer }()

	for _, stmt := range blk.Statements {
		if err := b.statement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) statement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Let:
		return b.letStmt(s)
	case *ast.Assignment:
		return b.assignment(s)
	case *ast.If:
		return b.ifStmt(s)
	case *ast.Loop:
		return b.loopStmt(s)
	case *ast.While:
		return b.whileStmt(s)
	case *ast.Break:
		return b.breakStmt(s)
	case *ast.Continue:
		return b.continueStmt(s)
	case *ast.ExpressionStatement:
		_, err := b.expression(s.Expr)
		return err
	case *ast.Empty:
		return nil
	default:
		return diag.New(diag.UnexpectedToken, stmt.Pos(), "unsupported statement type %T", stmt)
	}
}

// letStmt lowers `let [mut] name [= init];`. With an initializer, name is
// bound directly to the register the initializer evaluated into. Without
// one, a fresh register is reserved and its contents are undefined.
func (b *Builder) letStmt(s *ast.Let) error {
	var reg Register
	if s.Init != nil {
		r, err := b.expression(s.Init)
		if err != nil {
			return err
		}
		reg = r
	} else {
		reg = b.newRegister()
	}
	b.current.Bind(s.Name, int(reg), s.Mutable)
	return nil
}

// assignment lowers `name = expr`. The IR has no dedicated move
// instruction, so "write rs1's value into rd" is expressed as
// LoadImmediate{tmp,0}; Add{rd, rs1, tmp} — addition with zero, keeping
// every instruction three-operand-shaped.
func (b *Builder) assignment(s *ast.Assignment) error {
	rdInt, ok := b.current.Lookup(s.Name)
	if !ok {
		return diag.New(diag.AssignedUndeclaredVar, s.Position, "assignment to undeclared variable %q", s.Name)
	}
	if !b.current.IsMutable(s.Name) {
		return diag.New(diag.AssignedImmutableVar, s.Position, "cannot assign twice to immutable variable %q", s.Name)
	}
	rd := Register(rdInt)
	rs1, err := b.expression(s.Expr)
	if err != nil {
		return err
	}
	tmp := b.newRegister()
	b.emit(LoadImmediate(tmp, 0))
	b.emit(BinOp(OpAdd, rd, rs1, tmp))
	return nil
}

// ifStmt allocates one label per branch head, an always-allocated else
// label (even when no else exists), and a shared done label.
func (b *Builder) ifStmt(s *ast.If) error {
	branchLabels := make([]Label, len(s.Branches))
	for i := range s.Branches {
		branchLabels[i] = b.newLabel()
	}
	elseLabel := b.newLabel()
	doneLabel := b.newLabel()

	for i, branch := range s.Branches {
		r, err := b.expression(branch.Cond)
		if err != nil {
			return err
		}
		b.emit(BranchIfNonZero(r, branchLabels[i]))
	}
	if s.Else != nil {
		b.emit(Branch(elseLabel))
	} else {
		b.emit(Branch(doneLabel))
	}

	for i, branch := range s.Branches {
		b.emit(LabelDef(branchLabels[i]))
		if err := b.block(branch.Block); err != nil {
			return err
		}
		b.emit(Branch(doneLabel))
	}

	b.emit(LabelDef(elseLabel))
	if s.Else != nil {
		if err := b.block(s.Else); err != nil {
			return err
		}
	}
	b.emit(LabelDef(doneLabel))
	return nil
}

func (b *Builder) loopStmt(s *ast.Loop) error {
	start := b.newLabel()
	continueLabel := b.newLabel()
	breakLabel := b.newLabel()

	b.emit(LabelDef(start))

	outer := b.loop
	b.loop = &loopLabels{breakLabel: breakLabel, continueLabel: continueLabel}
	err := b.block(s.Block)
	b.loop = outer
	if err != nil {
		return err
	}

	b.emit(LabelDef(continueLabel))
	b.emit(Branch(start))
	b.emit(LabelDef(breakLabel))
	return nil
}

func (b *Builder) whileStmt(s *ast.While) error {
	start := b.newLabel()
	continueLabel := b.newLabel()
	breakLabel := b.newLabel()

	b.emit(LabelDef(start))
	r, err := b.expression(s.Cond)
	if err != nil {
		return err
	}
	b.emit(BranchIfZero(r, breakLabel))

	outer := b.loop
	b.loop = &loopLabels{breakLabel: breakLabel, continueLabel: continueLabel}
	err = b.block(s.Block)
	b.loop = outer
	if err != nil {
		return err
	}

	b.emit(LabelDef(continueLabel))
	b.emit(Branch(start))
	b.emit(LabelDef(breakLabel))
	return nil
}

func (b *Builder) breakStmt(s *ast.Break) error {
	if b.loop == nil {
		return diag.New(diag.BreakOutsideLoop, s.Position, "break statement outside of a loop")
	}
	b.emit(Branch(b.loop.breakLabel))
	return nil
}

func (b *Builder) continueStmt(s *ast.Continue) error {
	if b.loop == nil {
		return diag.New(diag.ContinueOutsideLoop, s.Position, "continue statement outside of a loop")
	}
	b.emit(Branch(b.loop.continueLabel))
	return nil
}

var binaryOpcode = map[string]Op{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod, "**": OpExp,
	"&": OpAnd, "|": OpOr, "^": OpXor, "<<": OpShl, ">>": OpShr,
	"==": OpEq, "!=": OpNe, ">=": OpGe, "<=": OpLe, ">": OpGt, "<": OpLt,
	"&&": OpLAnd, "||": OpLOr,
}

func (b *Builder) expression(expr ast.Expression) (Register, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		r := b.newRegister()
		b.emit(LoadImmediate(r, e.Value))
		return r, nil
	case *ast.StringLiteral:
		return 0, diag.New(diag.UnimplementedStringExpr, e.Position, "string expressions are not lowerable to IR")
	case *ast.Identifier:
		r, ok := b.current.Lookup(e.Name)
		if !ok {
			return 0, diag.New(diag.UndefinedReference, e.Position, "undefined reference to %q", e.Name)
		}
		return Register(r), nil
	case *ast.BinaryOp:
		return b.binaryOp(e)
	case *ast.UnaryOp:
		return b.unaryOp(e)
	case *ast.FunctionCall:
		return b.functionCall(e)
	default:
		return 0, diag.New(diag.UnexpectedToken, expr.Pos(), "unsupported expression type %T", expr)
	}
}

func (b *Builder) binaryOp(e *ast.BinaryOp) (Register, error) {
	lhs, err := b.expression(e.LHS)
	if err != nil {
		return 0, err
	}
	rhs, err := b.expression(e.RHS)
	if err != nil {
		return 0, err
	}
	op, ok := binaryOpcode[e.Op]
	if !ok {
		return 0, diag.New(diag.UnexpectedToken, e.Position, "unknown binary operator %q", e.Op)
	}
	rd := b.newRegister()
	b.emit(BinOp(op, rd, lhs, rhs))
	return rd, nil
}

// unaryOp lowers the four unary operators: `+x` is an identity (no
// instruction emitted, the operand's own register is reused), `-x` and
// `~x` synthesize their identity element via LoadImmediate, and `!x`
// has a dedicated LNot instruction.
func (b *Builder) unaryOp(e *ast.UnaryOp) (Register, error) {
	operand, err := b.expression(e.Operand)
	if err != nil {
		return 0, err
	}
	switch e.Op {
	case "+":
		return operand, nil
	case "-":
		tmp := b.newRegister()
		b.emit(LoadImmediate(tmp, 0))
		rd := b.newRegister()
		b.emit(BinOp(OpSub, rd, tmp, operand))
		return rd, nil
	case "~":
		tmp := b.newRegister()
		b.emit(LoadImmediate(tmp, ^uint64(0)))
		rd := b.newRegister()
		b.emit(BinOp(OpXor, rd, operand, tmp))
		return rd, nil
	case "!":
		rd := b.newRegister()
		b.emit(UnOp(OpLNot, rd, operand))
		return rd, nil
	default:
		return 0, diag.New(diag.UnexpectedToken, e.Position, "unknown unary operator %q", e.Op)
	}
}

// functionCall lowers the only recognized call form, `print(arg)`, to a
// Print instruction. print "returns" its argument's register so that
// `print(x)` can still be used as an expression whose value is x, matching
// how the REPL reports "the last expression's value".
func (b *Builder) functionCall(e *ast.FunctionCall) (Register, error) {
	if e.Name != "print" {
		return 0, diag.New(diag.UnknownFunctionCall, e.Position, "unknown function %q", e.Name)
	}
	if e.Arg == nil {
		return 0, diag.New(diag.NoExpressionAfterLParen, e.Position, "print requires exactly one argument")
	}
	arg, err := b.expression(e.Arg)
	if err != nil {
		return 0, err
	}
	b.emit(Print(arg))
	return arg, nil
}
