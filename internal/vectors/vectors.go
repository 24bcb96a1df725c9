// Package vectors runs SM83 ALU conformance vectors through the CPU.
//
// A vector file is a JSON array of entries
//
//	{"x": "0x0f", "y": "0x01", "flags": "0x00", "result": {"value": "0x10", "flags": "0x20"}}
//
// named after the operation it exercises (add.json, swap.json.gz, ...).
// Hex fields may carry a "0x" prefix or not.
package vectors

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/richardwooding/sm83/internal/cpu"
)

var (
	// ErrUnknownOp indicates a vector file for an operation with no mapping.
	ErrUnknownOp = errors.New("unknown vector operation")

	// ErrBadField indicates a hex field that does not parse.
	ErrBadField = errors.New("bad vector field")
)

// Entry is a single test vector.
type Entry struct {
	X      string `json:"x"`
	Y      string `json:"y"`
	Flags  string `json:"flags"`
	Result Result `json:"result"`
}

// Result is the expected outcome of an Entry.
type Result struct {
	Value string `json:"value"`
	Flags string `json:"flags"`
}

// Op describes how an operation's vectors drive the CPU.
type Op struct {
	// Target receives x and is read back as the result value.
	Target cpu.Register
	// LoadY copies y into B before executing.
	LoadY bool
	// Build returns the instruction under test for operand y.
	Build func(y uint8) cpu.Instruction
}

func aluOp(op cpu.ALUOp) Op {
	return Op{Target: cpu.A, LoadY: true, Build: func(uint8) cpu.Instruction {
		return cpu.ALU{Op: op, Src: cpu.B}
	}}
}

func fixed(target cpu.Register, instr cpu.Instruction) Op {
	return Op{Target: target, Build: func(uint8) cpu.Instruction { return instr }}
}

// Ops maps vector file names to their operation.
var Ops = map[string]Op{
	"add":  aluOp(cpu.OpAdd),
	"adc":  aluOp(cpu.OpAddWithCarry),
	"sub":  aluOp(cpu.OpSub),
	"sbc":  aluOp(cpu.OpSubWithCarry),
	"and":  aluOp(cpu.OpAnd),
	"xor":  aluOp(cpu.OpXor),
	"or":   aluOp(cpu.OpOr),
	"cp":   aluOp(cpu.OpCompare),
	"cpl":  fixed(cpu.A, cpu.Complement{}),
	"scf":  fixed(cpu.A, cpu.SetCarry{}),
	"ccf":  fixed(cpu.A, cpu.ComplementCarry{}),
	"rlca": fixed(cpu.A, cpu.RotateAccumulator{Left: true}),
	"rla":  fixed(cpu.A, cpu.RotateAccumulator{Left: true, ThroughCarry: true}),
	"rrca": fixed(cpu.A, cpu.RotateAccumulator{}),
	"rra":  fixed(cpu.A, cpu.RotateAccumulator{ThroughCarry: true}),
	"rlc":  fixed(cpu.B, cpu.Rotate{Target: cpu.B, Left: true}),
	"rl":   fixed(cpu.B, cpu.Rotate{Target: cpu.B, Left: true, ThroughCarry: true}),
	"rrc":  fixed(cpu.B, cpu.Rotate{Target: cpu.B}),
	"rr":   fixed(cpu.B, cpu.Rotate{Target: cpu.B, ThroughCarry: true}),
	"sla":  fixed(cpu.B, cpu.Shift{Op: cpu.ShiftLeftArithmetic, Target: cpu.B}),
	"sra":  fixed(cpu.B, cpu.Shift{Op: cpu.ShiftRightArithmetic, Target: cpu.B}),
	"srl":  fixed(cpu.B, cpu.Shift{Op: cpu.ShiftRightLogical, Target: cpu.B}),
	"swap": fixed(cpu.B, cpu.Swap{Target: cpu.B}),
	"bit": {Target: cpu.B, Build: func(y uint8) cpu.Instruction {
		return cpu.BitTest{Bit: y, Target: cpu.B}
	}},
	"set": {Target: cpu.B, Build: func(y uint8) cpu.Instruction {
		return cpu.BitSet{Bit: y, Target: cpu.B}
	}},
	"res": {Target: cpu.B, Build: func(y uint8) cpu.Instruction {
		return cpu.BitReset{Bit: y, Target: cpu.B}
	}},
}

// OpNames returns the supported operation names, sorted.
func OpNames() []string {
	names := make([]string, 0, len(Ops))
	for name := range Ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// OpName derives the operation name from a vector file path.
func OpName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	return strings.TrimSuffix(name, ".json")
}

// Load reads a vector file, transparently decompressing .gz files.
func Load(path string) ([]Entry, error) {
	// #nosec G304 - path is provided by the user via CLI argument
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	entries, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Decode reads a JSON array of entries.
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode vectors: %w", err)
	}
	return entries, nil
}

// Discover expands a path into vector files. A directory yields its *.json and
// *.json.gz files in name order; a file is returned as is.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !(strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.gz")) {
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	return files, nil
}

// parseByte parses a hex field with or without a 0x prefix.
func parseByte(field string) (uint8, error) {
	s := strings.TrimSpace(field)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	value, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadField, field)
	}
	return uint8(value), nil
}
