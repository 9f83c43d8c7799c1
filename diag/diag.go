/*
File   : spl/diag/diag.go

Package diag defines the single error taxonomy shared by the lexer, parser,
IR builder, interpreter, and register allocator. Every stage of the SPL
pipeline reports failures as a *diag.Error rather than panicking, so the
CLI and REPL can format lexical, syntactic, semantic, and runtime failures
the same way.
*/
package diag

import "fmt"

// Kind identifies the category of a diagnostic. The set mirrors the error
// taxonomy used across the pipeline: lexical errors, parse errors, and
// the semantic/runtime errors caught during IR lowering, interpretation,
// and register allocation.
type Kind string

const (
	// Lexical errors.
	InvalidToken                Kind = "InvalidToken"
	UnterminatedStringLiteral   Kind = "UnterminatedStringLiteral"
	InvalidEscapeInString       Kind = "InvalidEscapeInStringLiteral"
	UnterminatedCharLiteral     Kind = "UnterminatedCharLiteral"
	EmptyCharLiteral            Kind = "EmptyCharLiteral"
	InvalidEscapeInCharLiteral  Kind = "InvalidEscapeInCharLiteral"
	TooLargeIntegerLiteral      Kind = "TooLargeIntegerLiteral"

	// Parse errors.
	UnexpectedToken            Kind = "UnexpectedToken"
	UnmatchedBrace             Kind = "UnmatchedBrace"
	UnmatchedParen             Kind = "UnmatchedParen"
	NoExpressionAfterLParen    Kind = "NoExpressionAfterLParen"
	NoExpressionAfterBinaryOp  Kind = "NoExpressionAfterBinaryOperator"
	NoExpressionAfterUnaryOp   Kind = "NoExpressionAfterUnaryOperator"
	MissingSemicolon           Kind = "MissingSemicolon"
	ExpectedIdentifier         Kind = "ExpectedIdentifier"
	UnknownFunctionCall        Kind = "UnknownFunctionCall"
	TrailingTokensAfterProgram Kind = "TrailingTokensAfterProgram"

	// IR-lowering (semantic) errors.
	UndefinedReference        Kind = "UndefinedReference"
	AssignedUndeclaredVar     Kind = "AssignedUndeclaredVariable"
	AssignedImmutableVar      Kind = "AssignedImmutableVariable"
	BreakOutsideLoop          Kind = "BreakStatementOutsideLoop"
	ContinueOutsideLoop       Kind = "ContinueStatementOutsideLoop"
	UnimplementedStringExpr   Kind = "UnimplementedStringExpression"

	// Runtime errors.
	RuntimeDivisionByZero  Kind = "RuntimeDivisionByZero"
	RuntimeUnassignedRead  Kind = "RuntimeUnassignedRegisterRead"
	RuntimeUnknownLabel    Kind = "RuntimeUnknownLabel"

	// Register allocator errors.
	AllocatorExhausted Kind = "RegisterAllocatorExhausted"
)

// Position locates a diagnostic in the original source text. Line and
// Column are both 1-indexed, matching the lexer's own bookkeeping.
type Position struct {
	Line   int
	Column int
}

// String renders a position as "line:column", used by Error's message.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error is the single error type produced anywhere in the SPL pipeline.
// It carries enough structure (Kind, Position) for callers that want to
// branch on the failure category, while still satisfying the standard
// error interface so it composes with fmt.Errorf("%w", ...) and errors.As.
type Error struct {
	Kind    Kind
	Pos     Position
	Message string
}

// New builds a diagnostic of the given kind at the given position.
func New(kind Kind, pos Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface. The format is deliberately plain
// text (no color) — colorizing a diagnostic is the CLI/REPL's job, not
// diag's.
func (e *Error) Error() string {
	if e.Pos.Line == 0 && e.Pos.Column == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Message)
}
