// Package asm assembles SM83 mnemonics into decoded cpu.Instruction values.
//
// Source is line oriented: one instruction or directive per line, with ';'
// starting a comment. Immediates may be decimal, hex ("0x1F" or "$1F"),
// binary ("0b1010"), a symbol defined with ".equ NAME value", or a
// compile-time expression "$(...)" evaluated with Starlark.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/richardwooding/sm83/internal/cpu"
)

// Assembler is a single pass assembler for the SM83 instruction set.
type Assembler struct {
	Equate map[string]int64 // Symbols defined by .equ
}

// Assemble parses a whole program with a fresh Assembler.
func Assemble(r io.Reader) ([]cpu.Instruction, error) {
	return (&Assembler{}).Parse(r)
}

// Parse assembles every line of r.
func (asm *Assembler) Parse(r io.Reader) (prog []cpu.Instruction, err error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()

		var instr cpu.Instruction
		instr, err = asm.ParseLine(text)
		if err != nil {
			return nil, SyntaxError{Line: lineNo, Text: strings.TrimSpace(text), Err: err}
		}
		if instr != nil {
			prog = append(prog, instr)
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	return prog, nil
}

// ParseLine assembles a single line. Blank lines, comments and directives
// return a nil instruction.
func (asm *Assembler) ParseLine(line string) (cpu.Instruction, error) {
	if n := strings.IndexByte(line, ';'); n >= 0 {
		line = line[:n]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	mnemonic, rest := line, ""
	if n := strings.IndexAny(line, " \t"); n >= 0 {
		mnemonic, rest = line[:n], line[n+1:]
	}
	mnemonic = strings.ToLower(mnemonic)

	if strings.HasPrefix(mnemonic, ".") {
		return nil, asm.directive(mnemonic, rest)
	}

	return asm.instruction(mnemonic, splitOperands(rest))
}

// directive handles assembler directives.
func (asm *Assembler) directive(name, rest string) error {
	switch name {
	case ".equ":
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			return ErrEquateSyntax
		}
		symbol := fields[0]
		if _, dup := asm.Equate[symbol]; dup {
			return fmt.Errorf("%w: %v", ErrEquateDuplicate, symbol)
		}
		value, err := asm.valueOf(strings.Join(fields[1:], " "))
		if err != nil {
			return err
		}
		if asm.Equate == nil {
			asm.Equate = map[string]int64{}
		}
		asm.Equate[symbol] = value
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDirectiveUnknown, name)
}

// Control instructions without operands.
var bareMap = map[string]cpu.Instruction{
	"nop":  cpu.Nop{},
	"halt": cpu.Halt{},
	"cpl":  cpu.Complement{},
	"scf":  cpu.SetCarry{},
	"ccf":  cpu.ComplementCarry{},
	"rlca": cpu.RotateAccumulator{Left: true},
	"rla":  cpu.RotateAccumulator{Left: true, ThroughCarry: true},
	"rrca": cpu.RotateAccumulator{},
	"rra":  cpu.RotateAccumulator{ThroughCarry: true},
}

// Accumulator operations; the "A," prefix is optional for all of them.
var aluMap = map[string]cpu.ALUOp{
	"add": cpu.OpAdd,
	"adc": cpu.OpAddWithCarry,
	"sub": cpu.OpSub,
	"sbc": cpu.OpSubWithCarry,
	"and": cpu.OpAnd,
	"xor": cpu.OpXor,
	"or":  cpu.OpOr,
	"cp":  cpu.OpCompare,
}

// Single register rotates, shifts and swap.
var unaryMap = map[string]func(cpu.Register) cpu.Instruction{
	"rlc":  func(r cpu.Register) cpu.Instruction { return cpu.Rotate{Target: r, Left: true} },
	"rl":   func(r cpu.Register) cpu.Instruction { return cpu.Rotate{Target: r, Left: true, ThroughCarry: true} },
	"rrc":  func(r cpu.Register) cpu.Instruction { return cpu.Rotate{Target: r} },
	"rr":   func(r cpu.Register) cpu.Instruction { return cpu.Rotate{Target: r, ThroughCarry: true} },
	"sla":  func(r cpu.Register) cpu.Instruction { return cpu.Shift{Op: cpu.ShiftLeftArithmetic, Target: r} },
	"sra":  func(r cpu.Register) cpu.Instruction { return cpu.Shift{Op: cpu.ShiftRightArithmetic, Target: r} },
	"srl":  func(r cpu.Register) cpu.Instruction { return cpu.Shift{Op: cpu.ShiftRightLogical, Target: r} },
	"swap": func(r cpu.Register) cpu.Instruction { return cpu.Swap{Target: r} },
}

// Bit operations.
var bitMap = map[string]func(uint8, cpu.Register) cpu.Instruction{
	"bit": func(n uint8, r cpu.Register) cpu.Instruction { return cpu.BitTest{Bit: n, Target: r} },
	"set": func(n uint8, r cpu.Register) cpu.Instruction { return cpu.BitSet{Bit: n, Target: r} },
	"res": func(n uint8, r cpu.Register) cpu.Instruction { return cpu.BitReset{Bit: n, Target: r} },
}

// Mnemonics returns every mnemonic the assembler understands, sorted.
func Mnemonics() []string {
	names := []string{"ld", "inc", "dec", "push", "pop"}
	names = slices.AppendSeq(names, maps.Keys(bareMap))
	names = slices.AppendSeq(names, maps.Keys(aluMap))
	names = slices.AppendSeq(names, maps.Keys(unaryMap))
	names = slices.AppendSeq(names, maps.Keys(bitMap))
	slices.Sort(names)
	return names
}

//nolint:gocyclo // One branch per mnemonic family
func (asm *Assembler) instruction(mnemonic string, args []string) (cpu.Instruction, error) {
	if instr, ok := bareMap[mnemonic]; ok {
		if len(args) != 0 {
			return nil, ErrOperandCount
		}
		return instr, nil
	}

	if op, ok := aluMap[mnemonic]; ok {
		if op == cpu.OpAdd && len(args) == 2 {
			if hl, ok := parsePair(args[0]); ok && hl == cpu.HL {
				src, err := widePair(args[1])
				if err != nil {
					return nil, err
				}
				return cpu.AddHL{Src: src}, nil
			}
		}
		if len(args) == 2 {
			if reg, ok := parseRegister(args[0]); !ok || reg != cpu.A {
				return nil, fmt.Errorf("%w: %v", ErrOperandInvalid, args[0])
			}
			args = args[1:]
		}
		if len(args) != 1 {
			return nil, ErrOperandCount
		}
		if reg, ok := parseRegister(args[0]); ok {
			return cpu.ALU{Op: op, Src: reg}, nil
		}
		value, err := asm.byteOf(args[0])
		if err != nil {
			return nil, err
		}
		return cpu.ALUImmediate{Op: op, Value: value}, nil
	}

	if build, ok := unaryMap[mnemonic]; ok {
		if len(args) != 1 {
			return nil, ErrOperandCount
		}
		reg, err := register(args[0])
		if err != nil {
			return nil, err
		}
		return build(reg), nil
	}

	if build, ok := bitMap[mnemonic]; ok {
		if len(args) != 2 {
			return nil, ErrOperandCount
		}
		n, err := asm.byteOf(args[0])
		if err != nil {
			return nil, err
		}
		reg, err := register(args[1])
		if err != nil {
			return nil, err
		}
		return build(n, reg), nil
	}

	switch mnemonic {
	case "ld":
		return asm.load(args)
	case "inc", "dec":
		if len(args) != 1 {
			return nil, ErrOperandCount
		}
		inc := mnemonic == "inc"
		if reg, ok := parseRegister(args[0]); ok {
			if inc {
				return cpu.Increment{Target: reg}, nil
			}
			return cpu.Decrement{Target: reg}, nil
		}
		pair, err := widePair(args[0])
		if err != nil {
			return nil, err
		}
		if inc {
			return cpu.IncrementPair{Target: pair}, nil
		}
		return cpu.DecrementPair{Target: pair}, nil
	case "push", "pop":
		if len(args) != 1 {
			return nil, ErrOperandCount
		}
		pair, ok := parsePair(args[0])
		if !ok || pair == cpu.SP {
			return nil, fmt.Errorf("%w: %v", ErrOperandInvalid, args[0])
		}
		if mnemonic == "push" {
			return cpu.Push{Src: pair}, nil
		}
		return cpu.Pop{Dst: pair}, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrMnemonicUnknown, mnemonic)
}

// load handles the LD family.
func (asm *Assembler) load(args []string) (cpu.Instruction, error) {
	if len(args) != 2 {
		return nil, ErrOperandCount
	}

	if dst, ok := parseRegister(args[0]); ok {
		if src, ok := parseRegister(args[1]); ok {
			return cpu.Load{Dst: dst, Src: src}, nil
		}
		value, err := asm.byteOf(args[1])
		if err != nil {
			return nil, err
		}
		return cpu.LoadImmediate{Dst: dst, Value: value}, nil
	}

	dst, err := widePair(args[0])
	if err != nil {
		return nil, err
	}
	if src, ok := parsePair(args[1]); ok {
		if dst == cpu.SP && src == cpu.HL {
			return cpu.LoadSPFromHL{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrOperandInvalid, args[1])
	}
	value, err := asm.wordOf(args[1])
	if err != nil {
		return nil, err
	}
	return cpu.LoadPairImmediate{Dst: dst, Value: value}, nil
}

var registerMap = map[string]cpu.Register{
	"a": cpu.A, "b": cpu.B, "c": cpu.C, "d": cpu.D, "e": cpu.E, "h": cpu.H, "l": cpu.L,
}

var pairMap = map[string]cpu.Pair{
	"af": cpu.AF, "bc": cpu.BC, "de": cpu.DE, "hl": cpu.HL, "sp": cpu.SP,
}

func parseRegister(word string) (cpu.Register, bool) {
	reg, ok := registerMap[strings.ToLower(word)]
	return reg, ok
}

func parsePair(word string) (cpu.Pair, bool) {
	pair, ok := pairMap[strings.ToLower(word)]
	return pair, ok
}

func register(word string) (cpu.Register, error) {
	reg, ok := parseRegister(word)
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrOperandInvalid, word)
	}
	return reg, nil
}

// widePair accepts BC, DE, HL and SP.
func widePair(word string) (cpu.Pair, error) {
	pair, ok := parsePair(word)
	if !ok || pair == cpu.AF {
		return 0, fmt.Errorf("%w: %v", ErrOperandInvalid, word)
	}
	return pair, nil
}

// splitOperands splits on commas outside of parentheses.
func splitOperands(rest string) (args []string) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	depth := 0
	start := 0
	for i, ch := range rest {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(rest[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(rest[start:]))
}

func (asm *Assembler) byteOf(word string) (uint8, error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return 0, err
	}
	if value < 0 || value > 0xFF {
		return 0, fmt.Errorf("%w: %v does not fit in a byte", ErrValueRange, word)
	}
	return uint8(value), nil
}

func (asm *Assembler) wordOf(word string) (uint16, error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return 0, err
	}
	if value < 0 || value > 0xFFFF {
		return 0, fmt.Errorf("%w: %v does not fit in a word", ErrValueRange, word)
	}
	return uint16(value), nil
}

// valueOf returns the value of a number, symbol or $(...) expression.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return 0, ErrParseValue(word)
	}

	if strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")") {
		return asm.parenEval(word[2 : len(word)-1])
	}

	if value, ok := asm.Equate[word]; ok {
		return value, nil
	}

	lower := strings.ToLower(word)
	switch {
	case strings.HasPrefix(lower, "0x"):
		value, err = strconv.ParseInt(lower[2:], 16, 64)
	case strings.HasPrefix(lower, "$"):
		value, err = strconv.ParseInt(lower[1:], 16, 64)
	case strings.HasPrefix(lower, "0b"):
		value, err = strconv.ParseInt(lower[2:], 2, 64)
	default:
		value, err = strconv.ParseInt(lower, 10, 64)
	}
	if err != nil {
		return 0, ErrParseValue(word)
	}
	return value, nil
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, value := range asm.Equate {
		pred[key] = starlark.MakeInt64(value)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
	}
	rc, ok := dict["rc"]
	if !ok {
		return 0, ErrParseExpression(expr)
	}
	n, ok := rc.(starlark.Int)
	if !ok {
		return 0, ErrParseExpression(expr)
	}
	value, ok = n.Int64()
	if !ok {
		return 0, ErrParseExpression(expr)
	}
	return value, nil
}

// Format renders a program as one mnemonic per line.
func Format(prog []cpu.Instruction) string {
	var sb strings.Builder
	for _, instr := range prog {
		sb.WriteString(instr.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
