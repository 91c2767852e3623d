package rename

// FreeList tracks which physical registers are available for allocation
// during rename. Registers are freed in a deferred batch at the end of a
// cycle (see timing/scheduler), never synchronously during commit, so that
// a register freed this cycle cannot be handed out again until the next
// one.
type FreeList struct {
	free []int
}

// NewFreeList returns a FreeList seeded with all of physical registers
// 0..count-1 available. The scheduler's start-up sequence immediately
// draws ArchRegCount of them to build the initial identity map (R0->P0,
// R1->P1, ...), leaving count-ArchRegCount free for renaming.
func NewFreeList(count int) *FreeList {
	fl := &FreeList{}
	for p := 0; p < count; p++ {
		fl.free = append(fl.free, p)
	}
	return fl
}

// IsFree reports whether at least one physical register is available.
func (fl *FreeList) IsFree() bool {
	return len(fl.free) > 0
}

// GetFreeReg removes and returns an available physical register. It
// panics if none is available — callers must check IsFree first.
func (fl *FreeList) GetFreeReg() int {
	if !fl.IsFree() {
		panic("freelist: GetFreeReg on empty free list")
	}
	reg := fl.free[0]
	fl.free = fl.free[1:]
	return reg
}

// Free returns a physical register to the pool.
func (fl *FreeList) Free(reg int) {
	fl.free = append(fl.free, reg)
}

// Len reports how many physical registers are currently free.
func (fl *FreeList) Len() int {
	return len(fl.free)
}
