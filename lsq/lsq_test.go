package lsq_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kestrel-sim/oopipe/insn"
	"github.com/kestrel-sim/oopipe/lsq"
)

var _ = Describe("LSQ", func() {
	var (
		q          *lsq.LSQ
		load0      *insn.Instruction
		load1      *insn.Instruction
	)

	BeforeEach(func() {
		q = lsq.New()
		load0 = insn.New(0, insn.KindL, 1, 2, 0)
		load1 = insn.New(1, insn.KindL, 3, 4, 0)
		q.Append(load0)
		q.Append(load1)
	})

	It("only the head can execute, regardless of issue state", func() {
		Expect(q.CanExecute(load0)).To(BeTrue(), "head is executable even before issuing")
		Expect(q.CanExecute(load1)).To(BeFalse(), "not head")
	})

	It("GetExecutable is nil until the head has issued", func() {
		Expect(q.GetExecutable()).To(BeNil())
		load0.SetFetch(0)
		load0.SetIssue(1)
		Expect(q.GetExecutable()).To(Equal(load0))
	})

	It("GetExecutable is nil once the head has written back", func() {
		load0.SetFetch(0)
		load0.SetIssue(1)
		load0.SetWriteback(2)
		Expect(q.GetExecutable()).To(BeNil())
	})

	It("Remove advances the head in order", func() {
		load0.SetFetch(0)
		load0.SetIssue(1)
		load0.SetWriteback(2)
		q.Remove(load0)
		Expect(q.Len()).To(Equal(1))
		Expect(q.CanExecute(load1)).To(BeTrue(), "load1 is now head")
	})

	It("Remove panics on a non-head instruction", func() {
		Expect(func() { q.Remove(load1) }).To(Panic())
	})
})
