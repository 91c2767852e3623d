// Package insn defines the instruction record that flows through every
// pipeline stage of the scheduler.
//
// An Instruction's identity (its program-order index, kind, and operand
// fields) is fixed at fetch time. Its register fields start out
// architectural and are rewritten in place to physical register numbers
// during rename (see the rename stage in timing/scheduler). It stays the same record, not a
// copy, so every downstream structure (issue queue,
// ROB, LSQ) holds a pointer back into the same log entry.
package insn

import "fmt"

// Kind identifies the four instruction shapes the scheduler understands.
type Kind uint8

const (
	// KindR is a register-register ALU op: dst, src0, src1 all architectural
	// registers.
	KindR Kind = iota
	// KindI is a register-immediate ALU op: dst, src0 registers, no src1.
	KindI
	// KindL is a load: dst is the loaded value, src0 is the base register.
	KindL
	// KindS is a store: no dst, src0 is the value, src1 is the base.
	KindS
)

// String renders the kind using the single-letter spelling from the input
// file format (R, I, L, S).
func (k Kind) String() string {
	switch k {
	case KindR:
		return "R"
	case KindI:
		return "I"
	case KindL:
		return "L"
	case KindS:
		return "S"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind converts a single-letter code to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "R":
		return KindR, true
	case "I":
		return KindI, true
	case "L":
		return KindL, true
	case "S":
		return KindS, true
	default:
		return 0, false
	}
}

// HasDest reports whether this kind writes a destination register. Only
// stores have none.
func (k Kind) HasDest() bool {
	return k != KindS
}

// HasSrc1 reports whether this kind has a second source register. Only R
// and S carry one; I has no second source and L's offset field plays no
// part in scheduling.
func (k Kind) HasSrc1() bool {
	return k == KindR || k == KindS
}

// IsMemory reports whether this kind is a load or a store.
func (k Kind) IsMemory() bool {
	return k == KindL || k == KindS
}

// noStamp marks a cycle stamp field that has not yet been set. Cycle
// numbers are non-negative, so a negative sentinel is unambiguous.
const noStamp = -1

// Stamps holds the seven per-stage cycle numbers described in spec.md §3.
// Each field is noStamp until the corresponding stage runs; once set, a
// stamp is never overwritten.
type Stamps struct {
	Fetch     int
	Decode    int
	Rename    int
	Dispatch  int
	Issue     int
	Writeback int
	Commit    int
}

// Instruction is one entry in the scheduler's instruction log. Index,
// Kind, and the original architectural operand numbers are immutable once
// fetched. DstReg, Src0, Src1 start out architectural and are rewritten to
// physical register numbers by rename; downstream structures (the issue
// queue, ROB, LSQ) hold a pointer to this same struct, not a copy.
type Instruction struct {
	Index int
	Kind  Kind

	// DstReg, Src0, Src1 are architectural register numbers until rename
	// runs, after which they hold physical register numbers. A value of
	// -1 means the field is not used by this instruction's kind.
	DstReg int
	Src0   int
	Src1   int

	Stamps Stamps
}

// New builds an Instruction from the raw a,b,c fields straight out of the
// input file. The fields fill the kind's applicable columns from spec's
// dst_reg/src_reg_0/src_reg_1 table in order, skipping any column the
// kind has none of: R fills all three (dst,src0,src1); I and L fill
// dst,src0 (L's src0 is its base register; the third field, an address
// offset, plays no part in scheduling and is discarded); S has no dst, so
// its two fields are src0 (the value to store) and src1 (the base),
// pulled from the line's first two positions, not its last two.
func New(index int, kind Kind, a, b, c int) *Instruction {
	inst := &Instruction{
		Index: index,
		Kind:  kind,
		Stamps: Stamps{
			Fetch: noStamp, Decode: noStamp, Rename: noStamp,
			Dispatch: noStamp, Issue: noStamp, Writeback: noStamp,
			Commit: noStamp,
		},
	}

	switch kind {
	case KindR:
		inst.DstReg, inst.Src0, inst.Src1 = a, b, c
	case KindI:
		inst.DstReg, inst.Src0, inst.Src1 = a, b, -1
	case KindL:
		inst.DstReg, inst.Src0, inst.Src1 = a, b, -1
	case KindS:
		inst.DstReg, inst.Src0, inst.Src1 = -1, a, b
	}

	return inst
}

// HasDest reports whether this instruction writes a destination register.
func (i *Instruction) HasDest() bool { return i.Kind.HasDest() }

// HasSrc1 reports whether this instruction has a second source register.
func (i *Instruction) HasSrc1() bool { return i.Kind.HasSrc1() }

// IsMemory reports whether this instruction is a load or a store.
func (i *Instruction) IsMemory() bool { return i.Kind.IsMemory() }

// setOnce and the accessors below give every stage a single place to record
// its cycle without risk of clobbering an earlier value.

func setOnce(field *int, cycle int) {
	if *field != noStamp {
		panic(fmt.Sprintf("stamp already set to %d, refusing to overwrite with %d", *field, cycle))
	}
	*field = cycle
}

// SetFetch stamps the fetch cycle. Panics if already set.
func (i *Instruction) SetFetch(cycle int) { setOnce(&i.Stamps.Fetch, cycle) }

// SetDecode stamps the decode cycle. Panics if already set.
func (i *Instruction) SetDecode(cycle int) { setOnce(&i.Stamps.Decode, cycle) }

// SetRename stamps the rename cycle. Panics if already set.
func (i *Instruction) SetRename(cycle int) { setOnce(&i.Stamps.Rename, cycle) }

// SetDispatch stamps the dispatch cycle. Panics if already set.
func (i *Instruction) SetDispatch(cycle int) { setOnce(&i.Stamps.Dispatch, cycle) }

// SetIssue stamps the issue cycle. Panics if already set.
func (i *Instruction) SetIssue(cycle int) { setOnce(&i.Stamps.Issue, cycle) }

// SetWriteback stamps the writeback cycle. Panics if already set.
func (i *Instruction) SetWriteback(cycle int) { setOnce(&i.Stamps.Writeback, cycle) }

// SetCommit stamps the commit cycle. Panics if already set.
func (i *Instruction) SetCommit(cycle int) { setOnce(&i.Stamps.Commit, cycle) }

// IsIssued reports whether this instruction has an issue stamp yet.
func (i *Instruction) IsIssued() bool { return i.Stamps.Issue != noStamp }

// IsWrittenBack reports whether this instruction has a writeback stamp yet.
func (i *Instruction) IsWrittenBack() bool { return i.Stamps.Writeback != noStamp }

// IsCommitted reports whether this instruction has a commit stamp yet.
func (i *Instruction) IsCommitted() bool { return i.Stamps.Commit != noStamp }

// CSVRecord renders the seven stamps as the comma-separated fields the
// report package writes to the output file, in fetch,decode,rename,
// dispatch,issue,writeback,commit order.
func (i *Instruction) CSVRecord() []string {
	s := i.Stamps
	return []string{
		itoa(s.Fetch), itoa(s.Decode), itoa(s.Rename),
		itoa(s.Dispatch), itoa(s.Issue), itoa(s.Writeback), itoa(s.Commit),
	}
}

func itoa(v int) string {
	if v == noStamp {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// String gives a short debug rendering used by the scheduler's trace
// logging, mirroring the original scheduler's `%s` instruction summaries.
func (i *Instruction) String() string {
	return fmt.Sprintf("#%d %s dst=%d src0=%d src1=%d", i.Index, i.Kind, i.DstReg, i.Src0, i.Src1)
}
