// Package issuequeue implements the pool of dispatched
// instructions awaiting issue. Unlike the ROB or LSQ, entries are never
// removed once an instruction is dispatched into it — it is scanned every
// cycle in program order and an already-issued entry is simply skipped.
package issuequeue

import "github.com/kestrel-sim/oopipe/insn"

// IssueQueue holds every dispatched instruction until the scheduler has
// finished with it. Membership is permanent for the life of the
// instruction; only its issue stamp changes.
type IssueQueue struct {
	entries []*insn.Instruction
}

// New returns an empty IssueQueue.
func New() *IssueQueue {
	return &IssueQueue{}
}

// Add appends a freshly dispatched instruction.
func (q *IssueQueue) Add(inst *insn.Instruction) {
	q.entries = append(q.entries, inst)
}

// Entries returns the queue contents in program order. The slice is a
// snapshot: the issue stage takes one each cycle before any instruction in
// it can itself add more entries, mirroring the source's `list(self.
// issue_queue)` snapshot-then-iterate pattern.
func (q *IssueQueue) Entries() []*insn.Instruction {
	out := make([]*insn.Instruction, len(q.entries))
	copy(out, q.entries)
	return out
}
