/*
File   : spl/regalloc/regalloc.go

Package regalloc implements the linear-scan register allocator: it
rewrites an ir.Program that uses an unbounded number of virtual
registers into one that uses only K physical registers, spilling to
memory slots when K is exhausted.
*/
package regalloc

import (
	"sort"

	"github.com/gospl/spl/diag"
	"github.com/gospl/spl/ir"
)

// interval is the inclusive instruction-index range [start, end] during
// which a virtual register must retain its value.
type interval struct {
	reg        ir.Register
	start, end int
}

// liveIntervals computes Phase 1: iterate statements in program order,
// opening an interval at a register's first mention and extending End to
// its latest mention.
//
// This ignores control flow, a conservative approximation valid for
// straight-line code. To make it safe for the branching code SPL's `if`,
// `loop`, and `while` actually produce, a register's interval is also
// extended across any loop body that lies between its first and last
// mention: a fixed-point pass walks backward branches (labels targeted
// by an instruction that appears after them) and, for every register
// live going into such a back-edge, stretches its interval to cover the
// whole loop. This is short of a full CFG liveness analysis but it is
// enough for SPL's structured control flow, where loop bodies are the
// only source of back-edges.
func liveIntervals(program ir.Program) []*interval {
	byReg := make(map[ir.Register]*interval)
	order := make([]ir.Register, 0)

	touch := func(r ir.Register, idx int) {
		if r == 0 {
			return
		}
		iv, ok := byReg[r]
		if !ok {
			iv = &interval{reg: r, start: idx, end: idx}
			byReg[r] = iv
			order = append(order, r)
			return
		}
		if idx > iv.end {
			iv.end = idx
		}
	}

	for idx, ins := range program {
		switch ins.Op {
		case ir.OpLoadImmediate:
			touch(ins.Rd, idx)
		case ir.OpLNot:
			touch(ins.Rd, idx)
			touch(ins.Rs1, idx)
		case ir.OpBranchIfNonZero, ir.OpBranchIfZero:
			touch(ins.Rs1, idx)
		case ir.OpPrint:
			touch(ins.Rs1, idx)
		case ir.OpBranch, ir.OpLabel:
			// no register operands
		default:
			touch(ins.Rd, idx)
			touch(ins.Rs1, idx)
			touch(ins.Rs2, idx)
		}
	}

	extendAcrossBackEdges(program, byReg)

	intervals := make([]*interval, 0, len(order))
	for _, r := range order {
		intervals = append(intervals, byReg[r])
	}
	return intervals
}

// extendAcrossBackEdges finds loop back-edges (a branch targeting a label
// defined earlier in the program) and stretches every interval that spans
// the branch to also cover the loop body, so a register defined before a
// loop and used inside it stays live for the loop's whole duration.
func extendAcrossBackEdges(program ir.Program, byReg map[ir.Register]*interval) {
	labelIndex := make(map[ir.Label]int)
	for idx, ins := range program {
		if ins.Op == ir.OpLabel {
			labelIndex[ins.Target] = idx
		}
	}

	var backEdges [][2]int // [loopStart, branchIdx]
	for idx, ins := range program {
		if ins.Op != ir.OpBranch && ins.Op != ir.OpBranchIfNonZero && ins.Op != ir.OpBranchIfZero {
			continue
		}
		targetIdx, ok := labelIndex[ins.Target]
		if ok && targetIdx < idx {
			backEdges = append(backEdges, [2]int{targetIdx, idx})
		}
	}

	changed := true
	for changed {
		changed = false
		for _, edge := range backEdges {
			loopStart, loopEnd := edge[0], edge[1]
			for _, iv := range byReg {
				if iv.start < loopStart && iv.end >= loopStart && iv.end < loopEnd {
					iv.end = loopEnd
					changed = true
				}
			}
		}
	}
}

// physicalRegister names the fixed pool the allocator draws from: K
// registers numbered 1..K. A program that needs no spill uses all K for
// ordinary allocation. Once a spill is needed, the top two, K-1 and K,
// are reserved exclusively for ferrying spilled values in and out of
// memory around the instruction that touches them, and ordinary
// allocation is redone over 1..K-2.
type physicalRegister = ir.Register

// active entry, kept sorted by interval end for fast expiry.
type activeEntry struct {
	iv  *interval
	reg physicalRegister
}

// Allocate rewrites program to use only a fixed pool of physical
// registers. When k registers cannot cover every simultaneously live
// virtual register, the excess is spilled to memory: a spilled register
// never holds a physical register for any part of its lifetime, instead
// round-tripping through memory via OpSpillStore/OpSpillLoad immediately
// around each instruction that defines or uses it. This trades some
// allocation quality (a spilled register's interval is not split into a
// register-resident part and a memory-resident part) for a Phase 3
// rewrite simple enough to state an explicit correctness argument for:
// two virtual registers simultaneously live never share a physical
// register, because spilled registers never occupy one at all.
func Allocate(program ir.Program, k int) (ir.Program, error) {
	intervals := liveIntervals(program)

	mapping, spilled, err := linearScan(intervals, k)
	if err != nil {
		return nil, err
	}

	scratch1, scratch2 := physicalRegister(k+1), physicalRegister(k+2)
	if len(spilled) > 0 {
		if k < 3 {
			return nil, diag.New(diag.AllocatorExhausted, diag.Position{}, "spilling needs at least 3 physical registers, have %d", k)
		}
		mapping, spilled, err = linearScan(intervals, k-2)
		if err != nil {
			return nil, err
		}
		scratch1, scratch2 = physicalRegister(k-1), physicalRegister(k)
	}
	slots := assignSlots(spilled)

	out := make(ir.Program, 0, len(program))
	for _, ins := range program {
		out = append(out, lowerSpills(ins, mapping, slots, scratch1, scratch2)...)
	}
	return out, nil
}

// linearScan runs Phases 1-2 of the algorithm: expire intervals that have
// ended, allocate a free physical register if one exists, and otherwise
// spill the active interval with the farthest end (or the current
// interval itself, if that is better) to memory for its entire lifetime.
func linearScan(intervals []*interval, k int) (map[ir.Register]physicalRegister, map[ir.Register]bool, error) {
	free := make([]physicalRegister, k)
	for i := 0; i < k; i++ {
		free[i] = physicalRegister(i + 1)
	}

	var active []activeEntry
	mapping := make(map[ir.Register]physicalRegister)
	spilled := make(map[ir.Register]bool)

	expire := func(start int) {
		kept := active[:0]
		for _, entry := range active {
			if entry.iv.end < start {
				free = append(free, entry.reg)
			} else {
				kept = append(kept, entry)
			}
		}
		active = kept
	}

	insertActive := func(entry activeEntry) {
		active = append(active, entry)
		sort.Slice(active, func(i, j int) bool { return active[i].iv.end < active[j].iv.end })
	}

	for _, iv := range intervals {
		expire(iv.start)

		if len(free) > 0 {
			reg := free[len(free)-1]
			free = free[:len(free)-1]
			mapping[iv.reg] = reg
			insertActive(activeEntry{iv: iv, reg: reg})
			continue
		}

		if len(active) == 0 {
			return nil, nil, diag.New(diag.AllocatorExhausted, diag.Position{}, "no physical registers available and nothing to spill")
		}

		// No free register: spill the active interval with the farthest
		// end, swapping it for iv if that end is later than iv's own end;
		// otherwise spill iv itself.
		farthest := active[len(active)-1]
		if farthest.iv.end > iv.end {
			active = active[:len(active)-1]
			delete(mapping, farthest.iv.reg)
			spilled[farthest.iv.reg] = true
			mapping[iv.reg] = farthest.reg
			insertActive(activeEntry{iv: iv, reg: farthest.reg})
		} else {
			spilled[iv.reg] = true
		}
	}

	return mapping, spilled, nil
}

// assignSlots gives every spilled virtual register a distinct memory
// slot number.
func assignSlots(spilled map[ir.Register]bool) map[ir.Register]uint64 {
	slots := make(map[ir.Register]uint64, len(spilled))
	var next uint64
	for r := range spilled {
		slots[r] = next
		next++
	}
	return slots
}

// lowerSpills rewrites one source instruction into the physical-register
// form, inserting an OpSpillLoad immediately before it for each spilled
// source operand and an OpSpillStore immediately after for a spilled
// destination operand. rs1 and rs2 load into separate scratch registers,
// so both can be spilled at once; a spilled rd reuses scratch1, which is
// safe because the store follows the instruction, even when rd and rs1
// are the same register (as in the lowering of `x = x`).
func lowerSpills(ins ir.Instruction, mapping map[ir.Register]physicalRegister, slots map[ir.Register]uint64, scratch1, scratch2 physicalRegister) []ir.Instruction {
	var pre []ir.Instruction
	var post []ir.Instruction

	resolveSource := func(r ir.Register, scratch physicalRegister) ir.Register {
		if r == 0 {
			return 0
		}
		if slot, ok := slots[r]; ok {
			pre = append(pre, ir.SpillLoad(scratch, slot))
			return scratch
		}
		return mapping[r]
	}

	rs1 := resolveSource(ins.Rs1, scratch1)
	rs2 := resolveSource(ins.Rs2, scratch2)

	rd := ins.Rd
	destScratch := scratch1
	if slot, ok := slots[ins.Rd]; ok && ins.Rd != 0 {
		rd = destScratch
		post = append(post, ir.SpillStore(slot, destScratch))
	} else if ins.Rd != 0 {
		rd = mapping[ins.Rd]
	}

	ins.Rs1, ins.Rs2, ins.Rd = rs1, rs2, rd

	out := make([]ir.Instruction, 0, len(pre)+1+len(post))
	out = append(out, pre...)
	out = append(out, ins)
	out = append(out, post...)
	return out
}
