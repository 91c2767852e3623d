// Package loader parses the scheduler's input file: a header line giving
// the machine's physical register count and issue width, followed by one
// line per instruction.
//
// The line shapes and the regular expressions used to recognize them are
// grounded directly on the reference scheduler's parse_input_file: a
// `^(\d+),(\d+)$` header and a `^([RILS]),(\d+),(\d+),(\d+)$` instruction
// line, read one line at a time rather than slurped and split.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/kestrel-sim/oopipe/insn"
)

// MinPhysRegCount is the minimum number of physical registers a valid
// input file may declare. The architectural register file occupies the
// first ArchRegCount of them for the initial identity mapping, so this
// also happens to be the architectural register count — same constant,
// same reasoning as the original.
const MinPhysRegCount = 32

// ErrInvalidHeader is returned when the first line of the input file does
// not match the `P,W` header shape.
var ErrInvalidHeader = errors.New("loader: invalid input file header")

// ErrInvalidInstruction is returned when an instruction line does not
// match the `K,a,b,c` shape.
var ErrInvalidInstruction = errors.New("loader: invalid instruction line")

// ErrPhysRegCountTooSmall is returned when the header declares fewer than
// MinPhysRegCount physical registers.
var ErrPhysRegCountTooSmall = errors.New("loader: physical register count below minimum")

var (
	headerPattern = regexp.MustCompile(`^(\d+),(\d+)$`)
	instPattern   = regexp.MustCompile(`^([RILS]),(\d+),(\d+),(\d+)$`)
)

// Program is the parsed contents of an input file: the machine
// configuration from the header plus the instruction stream in program
// order.
type Program struct {
	PhysRegCount int
	IssueWidth   int
	Instructions []*insn.Instruction
}

// Load reads and parses the input file at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: opening input file: %w", err)
	}
	defer f.Close()

	return parse(f)
}

func parse(r io.Reader) (*Program, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("loader: reading header: %w", err)
		}
		return nil, fmt.Errorf("%w: empty file", ErrInvalidHeader)
	}

	physRegCount, issueWidth, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, err
	}

	prog := &Program{PhysRegCount: physRegCount, IssueWidth: issueWidth}

	index := 0
	for scanner.Scan() {
		inst, err := parseInstruction(index, scanner.Text())
		if err != nil {
			return nil, err
		}
		prog.Instructions = append(prog.Instructions, inst)
		index++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: reading instructions: %w", err)
	}

	return prog, nil
}

func parseHeader(line string) (physRegCount, issueWidth int, err error) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
	}

	physRegCount = atoi(m[1])
	issueWidth = atoi(m[2])

	if physRegCount < MinPhysRegCount {
		return 0, 0, fmt.Errorf("%w: got %d, need at least %d", ErrPhysRegCountTooSmall, physRegCount, MinPhysRegCount)
	}

	return physRegCount, issueWidth, nil
}

func parseInstruction(index int, line string) (*insn.Instruction, error) {
	m := instPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInstruction, line)
	}

	kind, ok := insn.ParseKind(m[1])
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInstruction, m[1])
	}

	a, b, c := atoi(m[2]), atoi(m[3]), atoi(m[4])
	return insn.New(index, kind, a, b, c), nil
}

// atoi converts a string already validated by the regexp's `\d+` class, so
// it can never fail.
func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
