// Package report writes the scheduler's output file: one CSV-shaped line
// per instruction giving its seven stage cycle numbers, or an empty file
// if the schedule never finished.
package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/kestrel-sim/oopipe/insn"
)

// Write renders instructions (already in program order) to path. If stuck
// is true, the scheduler gave up before every instruction committed, and
// the file is written empty per spec.md §7 — a stuck schedule is not an
// error, it is a reportable outcome, so Write still returns nil in that
// case.
func Write(path string, instructions []*insn.Instruction, stuck bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating output file: %w", err)
	}
	defer f.Close()

	if stuck {
		return nil
	}

	w := csv.NewWriter(f)
	for _, inst := range instructions {
		if err := w.Write(inst.CSVRecord()); err != nil {
			return fmt.Errorf("report: writing record for instruction %d: %w", inst.Index, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("report: flushing output file: %w", err)
	}

	return nil
}
