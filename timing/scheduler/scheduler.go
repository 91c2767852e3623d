// Package scheduler implements the cycle-accurate out-of-order scheduler:
// the top-level loop that drives fetch, decode, rename, dispatch, issue,
// writeback, and commit, one cycle at a time, until every instruction has
// committed or the schedule is detected stuck.
//
// Grounded on the reference out_of_order_scheduler: schedule()/
// advance_cycle()/is_scheduling()/made_progress() become Run()/the
// cycle-boundary register-free flush in advanceCycle()/scheduling()/an internal
// progress flag, and the seven stage methods are carried over from
// fetch/decode/rename/dispatch/issue/writeback/commit with the same
// back-to-front evaluation order each cycle.
package scheduler

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/kestrel-sim/oopipe/insn"
	"github.com/kestrel-sim/oopipe/issuequeue"
	"github.com/kestrel-sim/oopipe/latch"
	"github.com/kestrel-sim/oopipe/loader"
	"github.com/kestrel-sim/oopipe/lsq"
	"github.com/kestrel-sim/oopipe/rename"
	"github.com/kestrel-sim/oopipe/rob"
	"github.com/kestrel-sim/oopipe/timing/config"
)

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithLogger sets the logger used for per-stage debug tracing and
// stuck-schedule warnings. The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// Stats summarizes a finished run.
type Stats struct {
	Cycles       int
	Instructions int
	Stuck        bool
}

// Scheduler holds all pipeline state and drives the cycle loop.
type Scheduler struct {
	cycle      int
	issueWidth int

	source     []*insn.Instruction
	fetchIndex int
	fetching   bool

	instructions []*insn.Instruction

	mapTable   *rename.MapTable
	freeList   *rename.FreeList
	readyTable *rename.ReadyTable

	decodeLatch   *latch.Latch
	renameLatch   *latch.Latch
	dispatchLatch *latch.Latch

	issueQueue     *issuequeue.IssueQueue
	executingQueue []*insn.Instruction
	rob            *rob.ROB
	lsq            *lsq.LSQ

	freeingRegisters []int

	madeProgress bool
	logger       *slog.Logger
}

// New builds a Scheduler for prog, applying any overrides in cfg.
func New(prog *loader.Program, cfg *config.RunConfig, opts ...Option) *Scheduler {
	if cfg == nil {
		cfg = config.DefaultRunConfig()
	}
	physRegCount, issueWidth := cfg.ApplyOverrides(prog.PhysRegCount, prog.IssueWidth)

	s := &Scheduler{
		issueWidth:    issueWidth,
		source:        prog.Instructions,
		fetching:      true,
		madeProgress:  true,
		mapTable:      rename.NewMapTable(),
		freeList:      rename.NewFreeList(physRegCount),
		readyTable:    rename.NewReadyTable(physRegCount),
		decodeLatch:   latch.New(issueWidth),
		renameLatch:   latch.New(issueWidth),
		dispatchLatch: latch.New(issueWidth),
		issueQueue:    issuequeue.New(),
		rob:           rob.New(),
		lsq:           lsq.New(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Seed the initial identity mapping: architectural register r is backed
	// by physical register r, for r in [0, ArchRegCount). These are the
	// first ArchRegCount registers drawn from the free list.
	for arch := 0; arch < rename.ArchRegCount; arch++ {
		s.mapTable.Put(arch, s.freeList.GetFreeReg())
	}

	return s
}

// Run drives the scheduler to completion: every cycle until either every
// fetched instruction has committed, or a cycle passes with no stage
// making progress (a stuck schedule).
func (s *Scheduler) Run() Stats {
	for s.scheduling() && s.madeProgress {
		s.logger.Debug("cycle begin", "scheduler", s.String())
		s.tick()
	}

	stuck := s.scheduling()
	if stuck {
		s.logger.Warn("schedule stuck", "cycle", s.cycle, "committed", s.committedCount(), "total", len(s.instructions))
	}

	return Stats{Cycles: s.cycle, Instructions: len(s.instructions), Stuck: stuck}
}

// Instructions returns the full fetched-instruction log, in program
// order, for reporting.
func (s *Scheduler) Instructions() []*insn.Instruction {
	return s.instructions
}

// String summarizes the scheduler's current cycle state, mirroring the
// original scheduler's __str__/"Scheduling: %s" trace line: the cycle
// number alongside how much of the fetched stream has committed so far.
func (s *Scheduler) String() string {
	return fmt.Sprintf("cycle=%d committed=%d/%d free=%d", s.cycle, s.committedCount(), len(s.instructions), s.freeList.Len())
}

// tick runs every stage once, back-to-front, then advances the cycle.
func (s *Scheduler) tick() {
	s.madeProgress = false

	s.commit()
	s.writeback()
	s.issue()
	s.dispatch()
	s.rename()
	s.decode()
	s.fetch()

	s.advanceCycle()
}

// scheduling reports whether there is still work to do: either the source
// stream has not been exhausted, or some fetched instruction has not yet
// committed.
func (s *Scheduler) scheduling() bool {
	if s.fetching {
		return true
	}
	for _, inst := range s.instructions {
		if !inst.IsCommitted() {
			return true
		}
	}
	return false
}

func (s *Scheduler) committedCount() int {
	n := 0
	for _, inst := range s.instructions {
		if inst.IsCommitted() {
			n++
		}
	}
	return n
}

// advanceCycle flushes registers freed by this cycle's commits and moves
// the clock forward. Freeing happens here, at the cycle boundary, rather
// than synchronously inside commit, so a register being freed this cycle
// cannot be handed back out by this same cycle's rename.
func (s *Scheduler) advanceCycle() {
	for _, reg := range s.freeingRegisters {
		s.freeList.Free(reg)
	}
	s.freeingRegisters = nil

	s.cycle++
	s.logger.Debug("cycle end", "scheduler", s.String())
}

func (s *Scheduler) fetchInst() *insn.Instruction {
	if s.fetchIndex >= len(s.source) {
		s.fetching = false
		return nil
	}
	inst := s.source[s.fetchIndex]
	s.fetchIndex++
	return inst
}

// fetch pulls up to the issue width's worth of new instructions from the
// source stream into the decode latch.
func (s *Scheduler) fetch() {
	fetched := 0
	for s.fetching && fetched < s.issueWidth {
		inst := s.fetchInst()
		if inst == nil {
			continue
		}
		inst.SetFetch(s.cycle)
		s.instructions = append(s.instructions, inst)
		s.decodeLatch.Push(inst)
		fetched++
		s.madeProgress = true
		s.logger.Debug("fetched", "inst", inst.String())
	}
}

// decode drains the decode latch into the rename latch. There is no
// capacity check on this push: the rename latch must absorb whatever
// decode hands it, including any backlog left by a rename stall.
func (s *Scheduler) decode() {
	for !s.decodeLatch.Empty() {
		inst := s.decodeLatch.Pop()
		inst.SetDecode(s.cycle)
		s.renameLatch.Push(inst)
		s.madeProgress = true
		s.logger.Debug("decoded", "inst", inst.String())
	}
}

// rename walks the rename latch in program order, assigning a fresh
// physical register to every destination and rewriting source operands to
// the physical registers that currently back them. An instruction that
// needs a destination register but finds the free list empty is
// re-inserted at the head of the latch and processing stops for this
// cycle — everything behind it must wait its turn next cycle too, since
// renaming out of program order would break in-order commit bookkeeping.
func (s *Scheduler) rename() {
	for !s.renameLatch.Empty() {
		inst := s.renameLatch.Pop()

		if inst.HasDest() && !s.freeList.IsFree() {
			s.renameLatch.InsertFront(inst)
			break
		}

		inst.Src0 = s.mapTable.Get(inst.Src0)
		if inst.HasSrc1() {
			inst.Src1 = s.mapTable.Get(inst.Src1)
		}

		if inst.HasDest() {
			phys := s.freeList.GetFreeReg()
			s.mapTable.Put(inst.DstReg, phys)
			inst.DstReg = phys
			s.readyTable.Clear(phys)
		}

		inst.SetRename(s.cycle)
		s.dispatchLatch.Push(inst)
		s.madeProgress = true
		s.logger.Debug("renamed", "inst", inst.String())
	}
}

// dispatch drains the dispatch latch into the issue queue, the ROB, and
// (for memory ops) the LSQ.
func (s *Scheduler) dispatch() {
	for !s.dispatchLatch.Empty() {
		inst := s.dispatchLatch.Pop()

		s.issueQueue.Add(inst)
		s.rob.Append(inst)
		if inst.IsMemory() {
			s.lsq.Append(inst)
		}

		inst.SetDispatch(s.cycle)
		s.madeProgress = true
		s.logger.Debug("dispatched", "inst", inst.String())
	}
}

// issue scans the issue queue in program order, issuing at most the issue
// width's worth of ready instructions this cycle. An instruction already
// issued in an earlier cycle is skipped, not counted against the width.
func (s *Scheduler) issue() {
	issued := 0
	for _, inst := range s.issueQueue.Entries() {
		if issued >= s.issueWidth {
			break
		}
		if inst.IsIssued() {
			continue
		}
		if !s.ready(inst) {
			continue
		}

		s.executingQueue = append(s.executingQueue, inst)
		inst.SetIssue(s.cycle)
		issued++
		s.madeProgress = true
		s.logger.Debug("issued", "inst", inst.String())
	}
}

// ready reports whether inst's operands are available and, for memory
// ops, whether the LSQ's in-order discipline allows it to start.
func (s *Scheduler) ready(inst *insn.Instruction) bool {
	if !s.readyTable.IsReady(inst.Src0) {
		return false
	}
	if inst.HasSrc1() && !s.readyTable.IsReady(inst.Src1) {
		return false
	}
	if inst.IsMemory() {
		return s.lsq.CanExecute(inst)
	}
	return true
}

// writeback completes every issued-but-not-yet-written-back instruction
// that is allowed to finish this cycle: every non-memory instruction
// completes in the cycle after it issues, while memory instructions only
// complete once the LSQ retires them in order.
func (s *Scheduler) writeback() {
	for _, inst := range s.executingQueue {
		if !inst.IsIssued() || inst.IsWrittenBack() || inst.IsMemory() {
			continue
		}
		if inst.HasDest() {
			s.readyTable.Ready(inst.DstReg)
		}
		inst.SetWriteback(s.cycle)
		s.madeProgress = true
		s.logger.Debug("wrote back", "inst", inst.String())
	}

	if head := s.lsq.GetExecutable(); head != nil {
		if head.HasDest() {
			s.readyTable.Ready(head.DstReg)
		}
		s.lsq.Remove(head)
		head.SetWriteback(s.cycle)
		s.madeProgress = true
		s.logger.Debug("wrote back memory op", "inst", head.String())
	}
}

// commit walks the ROB from the head, stamping commit_cycle on every
// instruction that has written back, stopping at the first that has not —
// the in-order commit barrier. A committing instruction's own destination
// register is queued to be freed at the next cycle boundary; stores, with
// no destination, free nothing.
func (s *Scheduler) commit() {
	s.rob.Walk(func(inst *insn.Instruction) bool {
		if inst.IsCommitted() {
			return true
		}
		if !inst.IsWrittenBack() {
			return false
		}

		if inst.HasDest() {
			s.freeingRegisters = append(s.freeingRegisters, inst.DstReg)
		}
		inst.SetCommit(s.cycle)
		s.madeProgress = true
		s.logger.Debug("committed", "inst", inst.String())
		return true
	})

	s.rob.RemoveCommitted()
}
