package scheduler_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kestrel-sim/oopipe/insn"
	"github.com/kestrel-sim/oopipe/loader"
	"github.com/kestrel-sim/oopipe/timing/config"
	"github.com/kestrel-sim/oopipe/timing/scheduler"
)

func program(physRegCount, issueWidth int, instrs ...*insn.Instruction) *loader.Program {
	return &loader.Program{PhysRegCount: physRegCount, IssueWidth: issueWidth, Instructions: instrs}
}

func stamps(i *insn.Instruction) [7]int {
	s := i.Stamps
	return [7]int{s.Fetch, s.Decode, s.Rename, s.Dispatch, s.Issue, s.Writeback, s.Commit}
}

var _ = Describe("Scheduler", func() {
	Describe("a single ALU-R instruction", func() {
		It("advances through all seven stages one cycle apart", func() {
			i0 := insn.New(0, insn.KindR, 1, 2, 3)
			prog := program(40, 1, i0)

			sched := scheduler.New(prog, config.DefaultRunConfig())
			stats := sched.Run()

			Expect(stats.Stuck).To(BeFalse())
			Expect(stamps(i0)).To(Equal([7]int{0, 1, 2, 3, 4, 5, 6}))
		})
	})

	Describe("a RAW hazard between two ALU-R instructions", func() {
		It("issues the dependent instruction only after its producer writes back", func() {
			i0 := insn.New(0, insn.KindR, 1, 2, 3)
			i1 := insn.New(1, insn.KindR, 4, 1, 2)
			prog := program(40, 1, i0, i1)

			sched := scheduler.New(prog, config.DefaultRunConfig())
			stats := sched.Run()

			Expect(stats.Stuck).To(BeFalse())
			Expect(stamps(i0)).To(Equal([7]int{0, 1, 2, 3, 4, 5, 6}))

			Expect(i1.Stamps.Fetch).To(Equal(1))
			Expect(i1.Stamps.Decode).To(Equal(2))
			Expect(i1.Stamps.Rename).To(Equal(3))
			Expect(i1.Stamps.Dispatch).To(Equal(4))
			Expect(i1.Stamps.Issue).To(BeNumerically(">", i0.Stamps.Rename),
				"dependent must issue strictly after its producer renames (gets its new physical dst)")
			Expect(i1.Stamps.Issue).To(BeNumerically(">=", i0.Stamps.Writeback),
				"the ready table is written by writeback before issue runs, so a dependent may issue the same cycle its producer writes back")
			Expect(i1.Stamps.Writeback).To(BeNumerically(">", i1.Stamps.Issue))
			Expect(i1.Stamps.Commit).To(BeNumerically(">", i0.Stamps.Commit))
		})
	})

	Describe("free-list exhaustion", func() {
		// With P=32 exactly, the architectural file alone consumes every
		// physical register at start-up: the free list starts at zero, and
		// since nothing can rename, nothing can ever reach commit to free a
		// register either. This is a permanent stall (same family as the
		// stuck-pipeline scenario below), not a recoverable one — fetch and
		// decode still run to completion regardless, so every instruction
		// still shows up in the log even though none of them ever commits.
		It("stalls rename forever but still logs every fetched instruction", func() {
			instrs := make([]*insn.Instruction, 0, 33)
			for k := 0; k < 33; k++ {
				instrs = append(instrs, insn.New(k, insn.KindR, k%32, 0, 0))
			}
			prog := program(32, 1, instrs...)

			sched := scheduler.New(prog, config.DefaultRunConfig())
			stats := sched.Run()

			Expect(stats.Stuck).To(BeTrue())
			Expect(stats.Instructions).To(Equal(33), "no instruction is lost even though none commits")
			Expect(sched.Instructions()).To(Equal(instrs))
			for _, inst := range instrs {
				Expect(inst.IsCommitted()).To(BeFalse())
			}
			Expect(instrs[0].Stamps.Fetch).To(Equal(0))
			Expect(instrs[0].Stamps.Decode).To(Equal(1))
			Expect(instrs[0].Stamps.Rename).To(Equal(-1), "rename never completes once the free list is empty")
		})
	})

	Describe("memory ordering", func() {
		It("keeps the load and store in LSQ order and serializes the dependent ALU op", func() {
			load := insn.New(0, insn.KindL, 1, 2, 0)
			store := insn.New(1, insn.KindS, 3, 4, 0)
			dependent := insn.New(2, insn.KindR, 5, 1, 3)
			prog := program(40, 1, load, store, dependent)

			sched := scheduler.New(prog, config.DefaultRunConfig())
			stats := sched.Run()

			Expect(stats.Stuck).To(BeFalse())
			Expect(load.Stamps.Dispatch).To(BeNumerically("<=", store.Stamps.Dispatch),
				"program order is preserved into the LSQ")
			Expect(load.Stamps.Issue).To(BeNumerically("<", store.Stamps.Issue),
				"the load, being older, must issue before the store can become the LSQ head")
			Expect(dependent.Stamps.Issue).To(BeNumerically(">", load.Stamps.Writeback),
				"the final R has a real RAW dependency on the load's destination register")
		})
	})

	Describe("superscalar width", func() {
		It("advances two independent instructions through every stage together", func() {
			i0 := insn.New(0, insn.KindR, 1, 0, 0)
			i1 := insn.New(1, insn.KindR, 2, 0, 0)
			prog := program(40, 2, i0, i1)

			sched := scheduler.New(prog, config.DefaultRunConfig())
			stats := sched.Run()

			Expect(stats.Stuck).To(BeFalse())
			want := [7]int{0, 1, 2, 3, 4, 5, 6}
			Expect(stamps(i0)).To(Equal(want))
			Expect(stamps(i1)).To(Equal(want))
		})
	})

	Describe("a pipeline with no free physical registers at all", func() {
		It("terminates instead of looping forever, and reports stuck", func() {
			i0 := insn.New(0, insn.KindR, 1, 2, 3)
			prog := program(32, 1, i0)

			sched := scheduler.New(prog, config.DefaultRunConfig())
			stats := sched.Run()

			Expect(stats.Stuck).To(BeTrue())
			Expect(i0.IsCommitted()).To(BeFalse())
		})
	})

	Describe("an empty instruction stream", func() {
		It("completes immediately with no instructions", func() {
			prog := program(40, 1)
			sched := scheduler.New(prog, config.DefaultRunConfig())
			stats := sched.Run()

			Expect(stats.Stuck).To(BeFalse())
			Expect(stats.Instructions).To(Equal(0))
		})
	})

	Describe("config overrides", func() {
		It("lets a RunConfig override the header's issue width", func() {
			i0 := insn.New(0, insn.KindR, 1, 0, 0)
			i1 := insn.New(1, insn.KindR, 2, 0, 0)
			prog := program(40, 1, i0, i1)

			sched := scheduler.New(prog, &config.RunConfig{IssueWidth: 2})
			stats := sched.Run()

			Expect(stats.Stuck).To(BeFalse())
			Expect(i0.Stamps.Fetch).To(Equal(0))
			Expect(i1.Stamps.Fetch).To(Equal(0), "overridden width 2 should fetch both together")
		})
	})
})
