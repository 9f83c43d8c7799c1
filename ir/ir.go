/*
File   : spl/ir/ir.go

Package ir defines SPL's linear, register-based intermediate
representation and the textual format used by `--output-stage=ir`.
*/
package ir

import "fmt"

// Register is an opaque virtual (pre-allocation) or physical
// (post-allocation) register identifier. Register 0 is never allocated;
// the builder's counter starts at 0 and the first allocation is 1.
type Register int

func (r Register) String() string { return fmt.Sprintf("r%d", int(r)) }

// Label is an opaque identifier in its own namespace, distinct from
// Register.
type Label int

func (l Label) String() string { return fmt.Sprintf("L%d", int(l)) }

// Op identifies the operation an Instruction performs.
type Op int

const (
	OpLoadImmediate Op = iota

	// Three-operand arithmetic and bitwise ops: Rd = Rs1 OP Rs2.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpExp
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr

	// Comparisons produce 0 or 1 in Rd.
	OpEq
	OpNe
	OpGe
	OpLe
	OpGt
	OpLt

	// Logical ops treat any nonzero operand as true and produce 0/1.
	OpLAnd
	OpLOr
	OpLNot

	// Control flow.
	OpBranch
	OpBranchIfNonZero
	OpBranchIfZero
	OpLabel

	// I/O.
	OpPrint

	// Spill traffic, inserted by the register allocator when a virtual
	// register could not be assigned a physical register for its whole
	// lifetime. Slot (reusing the Imm field) names a memory slot, not a
	// register.
	OpSpillLoad
	OpSpillStore
)

// Instruction is a single IR statement. Which fields are meaningful
// depends on Op; see the op-specific constructors below.
type Instruction struct {
	Op     Op
	Rd     Register
	Rs1    Register
	Rs2    Register
	Imm    uint64
	Target Label
}

func LoadImmediate(rd Register, imm uint64) Instruction {
	return Instruction{Op: OpLoadImmediate, Rd: rd, Imm: imm}
}

func BinOp(op Op, rd, rs1, rs2 Register) Instruction {
	return Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}
}

func UnOp(op Op, rd, rs1 Register) Instruction {
	return Instruction{Op: op, Rd: rd, Rs1: rs1}
}

func Branch(target Label) Instruction {
	return Instruction{Op: OpBranch, Target: target}
}

func BranchIfNonZero(rs1 Register, target Label) Instruction {
	return Instruction{Op: OpBranchIfNonZero, Rs1: rs1, Target: target}
}

func BranchIfZero(rs1 Register, target Label) Instruction {
	return Instruction{Op: OpBranchIfZero, Rs1: rs1, Target: target}
}

func LabelDef(l Label) Instruction {
	return Instruction{Op: OpLabel, Target: l}
}

func Print(rs1 Register) Instruction {
	return Instruction{Op: OpPrint, Rs1: rs1}
}

// SpillLoad reads memory slot into rd.
func SpillLoad(rd Register, slot uint64) Instruction {
	return Instruction{Op: OpSpillLoad, Rd: rd, Imm: slot}
}

// SpillStore writes rs1 into memory slot.
func SpillStore(slot uint64, rs1 Register) Instruction {
	return Instruction{Op: OpSpillStore, Rs1: rs1, Imm: slot}
}

var binOpMnemonic = map[Op]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod", OpExp: "exp",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpShl: "shl", OpShr: "shr",
	OpEq: "eq", OpNe: "ne", OpGe: "ge", OpLe: "le", OpGt: "gt", OpLt: "lt",
	OpLAnd: "land", OpLOr: "lor",
}

// String renders an Instruction in the textual IR format documented for
// --output-stage=ir, e.g. "li r3, 42", "add r4, r1, r2", "L7:", "j L9",
// "bnz r3, L7", "bz r3, L9", "print r4".
func (ins Instruction) String() string {
	switch ins.Op {
	case OpLoadImmediate:
		return fmt.Sprintf("li %s, %d", ins.Rd, ins.Imm)
	case OpLNot:
		return fmt.Sprintf("lnot %s, %s", ins.Rd, ins.Rs1)
	case OpBranch:
		return fmt.Sprintf("j %s", ins.Target)
	case OpBranchIfNonZero:
		return fmt.Sprintf("bnz %s, %s", ins.Rs1, ins.Target)
	case OpBranchIfZero:
		return fmt.Sprintf("bz %s, %s", ins.Rs1, ins.Target)
	case OpLabel:
		return fmt.Sprintf("%s:", ins.Target)
	case OpPrint:
		return fmt.Sprintf("print %s", ins.Rs1)
	case OpSpillLoad:
		return fmt.Sprintf("spill_load %s, [%d]", ins.Rd, ins.Imm)
	case OpSpillStore:
		return fmt.Sprintf("spill_store [%d], %s", ins.Imm, ins.Rs1)
	default:
		if mnemonic, ok := binOpMnemonic[ins.Op]; ok {
			return fmt.Sprintf("%s %s, %s, %s", mnemonic, ins.Rd, ins.Rs1, ins.Rs2)
		}
		return fmt.Sprintf("<unknown op %d>", ins.Op)
	}
}

// Program is the ordered sequence of Instructions the builder produces
// and the interpreter and register allocator both consume.
type Program []Instruction

func (p Program) String() string {
	s := ""
	for i, ins := range p {
		if i > 0 {
			s += "\n"
		}
		s += ins.String()
	}
	return s
}
