/*
File   : spl/scope/scope.go
*/
package scope

// Scope is one frame of the IR builder's lexical scope chain: a mapping
// from identifier to the register number currently holding its value,
// plus a pointer to the enclosing frame. Entering a block pushes a new
// Scope; exiting restores the parent. Lookups walk from innermost to
// outermost, so an inner `let x` shadows an outer one until its block
// exits.
//
// Register is plain int rather than ir.Register so this package stays a
// leaf: the ir package imports scope, not the other way around.
type Scope struct {
	Variables map[string]int
	Mutable   map[string]bool
	Parent    *Scope
}

// New creates an empty scope chained to parent. parent is nil for the
// program's top-level scope.
func New(parent *Scope) *Scope {
	return &Scope{
		Variables: make(map[string]int),
		Mutable:   make(map[string]bool),
		Parent:    parent,
	}
}

// Lookup resolves name by walking the chain from this scope outward. The
// first binding found wins, which is exactly the shadowing rule a block
// scope is supposed to have.
func (s *Scope) Lookup(name string) (int, bool) {
	for frame := s; frame != nil; frame = frame.Parent {
		if reg, ok := frame.Variables[name]; ok {
			return reg, true
		}
	}
	return 0, false
}

// Bind introduces name in the current frame only, shadowing any binding
// of the same name in an outer frame.
func (s *Scope) Bind(name string, reg int, mutable bool) {
	s.Variables[name] = reg
	s.Mutable[name] = mutable
}

// IsMutable reports whether name, however it resolves, was declared
// `let mut`. The IR builder calls this before lowering an Assignment and
// rejects the write if the binding isn't mutable.
func (s *Scope) IsMutable(name string) bool {
	for frame := s; frame != nil; frame = frame.Parent {
		if _, ok := frame.Variables[name]; ok {
			return frame.Mutable[name]
		}
	}
	return false
}
