// Package latch implements the bounded FIFO that connects two adjacent
// pipeline stages (fetch→decode, decode→rename, rename→dispatch).
//
// Its capacity is always the machine's issue width. The capacity is nominal:
// Push never rejects an entry, and during a rename stall the rename latch
// holds more than W entries (see Push).
package latch

import "github.com/kestrel-sim/oopipe/insn"

// Latch is a capacity-bounded FIFO of instructions awaiting the next
// pipeline stage.
type Latch struct {
	capacity int
	entries  []*insn.Instruction
}

// New returns an empty Latch with the given capacity.
func New(capacity int) *Latch {
	return &Latch{capacity: capacity}
}

// Empty reports whether the latch holds no instructions.
func (l *Latch) Empty() bool {
	return len(l.entries) == 0
}

// Len reports how many instructions the latch currently holds.
func (l *Latch) Len() int {
	return len(l.entries)
}

// Full reports whether the latch is at capacity.
func (l *Latch) Full() bool {
	return len(l.entries) >= l.capacity
}

// Push appends an instruction at the tail. Capacity is nominal, not
// enforced: the decode stage drains its latch fully into the rename latch
// every cycle with no capacity check (a rename stall can leave the rename
// latch holding more than one cycle's worth until it catches up), so Push
// never rejects an entry — Full is informational only.
func (l *Latch) Push(inst *insn.Instruction) {
	l.entries = append(l.entries, inst)
}

// Pop removes and returns the head instruction. It returns nil if the latch
// is empty.
func (l *Latch) Pop() *insn.Instruction {
	if l.Empty() {
		return nil
	}
	inst := l.entries[0]
	l.entries = l.entries[1:]
	return inst
}

// InsertFront pushes an instruction back onto the head of the latch. A
// consuming stage uses this to put an instruction back when it could not
// finish processing it this cycle (the rename stage does this when the
// free list runs dry) — the instruction must be tried again next cycle
// before anything else already in the latch.
func (l *Latch) InsertFront(inst *insn.Instruction) {
	l.entries = append([]*insn.Instruction{inst}, l.entries...)
}
