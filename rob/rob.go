// Package rob implements the reorder buffer: the structure that enforces
// in-order commit. Instructions are appended at the tail as they dispatch
// and walked from the head during commit; the walk stops at the first
// instruction that has not yet written back, since nothing past it may
// commit out of order.
package rob

import "github.com/kestrel-sim/oopipe/insn"

// ROB is the reorder buffer.
type ROB struct {
	entries []*insn.Instruction
}

// New returns an empty ROB.
func New() *ROB {
	return &ROB{}
}

// Append adds a freshly dispatched instruction at the tail, in program
// order.
func (r *ROB) Append(inst *insn.Instruction) {
	r.entries = append(r.entries, inst)
}

// Len reports how many instructions are outstanding in the ROB (dispatched
// but not yet committed).
func (r *ROB) Len() int {
	return len(r.entries)
}

// Walk calls fn for each outstanding instruction from the head, stopping
// as soon as fn returns false — used by commit to stop at the first
// instruction that has not written back yet, preserving in-order commit.
func (r *ROB) Walk(fn func(inst *insn.Instruction) (keepGoing bool)) {
	for _, inst := range r.entries {
		if !fn(inst) {
			return
		}
	}
}

// RemoveCommitted drops every entry at the head that has already been
// committed, called once per cycle after commit has stamped whatever it
// could. The ROB never removes a not-yet-committed entry out of order.
func (r *ROB) RemoveCommitted() {
	i := 0
	for i < len(r.entries) && r.entries[i].IsCommitted() {
		i++
	}
	r.entries = r.entries[i:]
}
