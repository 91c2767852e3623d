// Package lsq implements the load-store queue: the structure that
// enforces strict in-program-order execution of memory operations. Unlike
// the issue queue, only the oldest outstanding memory instruction is ever
// a candidate to execute — nothing behind it may run ahead, regardless of
// operand readiness.
package lsq

import "github.com/kestrel-sim/oopipe/insn"

// LSQ is the load-store queue.
type LSQ struct {
	entries []*insn.Instruction
}

// New returns an empty LSQ.
func New() *LSQ {
	return &LSQ{}
}

// Append adds a freshly dispatched memory instruction at the tail.
func (q *LSQ) Append(inst *insn.Instruction) {
	q.entries = append(q.entries, inst)
}

// Len reports how many memory instructions are outstanding.
func (q *LSQ) Len() int {
	return len(q.entries)
}

// CanExecute reports whether inst is allowed to issue this cycle under the
// in-order memory discipline: only the oldest outstanding memory
// instruction — the head of the queue — may ever execute, regardless of
// whether its operands would otherwise be ready.
func (q *LSQ) CanExecute(inst *insn.Instruction) bool {
	return len(q.entries) > 0 && q.entries[0] == inst
}

// GetExecutable returns the head instruction if it is ready to write back
// this cycle (issued but not yet written back), or nil otherwise. It does
// not remove the instruction — callers remove it explicitly via Remove
// once writeback has stamped it.
func (q *LSQ) GetExecutable() *insn.Instruction {
	if len(q.entries) == 0 {
		return nil
	}
	head := q.entries[0]
	if !head.IsIssued() || head.IsWrittenBack() {
		return nil
	}
	return head
}

// Remove drops the head instruction once it has written back. It panics
// if inst is not the current head — memory ops never leave the queue out
// of order.
func (q *LSQ) Remove(inst *insn.Instruction) {
	if len(q.entries) == 0 || q.entries[0] != inst {
		panic("lsq: Remove called on non-head instruction")
	}
	q.entries = q.entries[1:]
}
