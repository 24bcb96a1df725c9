package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richardwooding/sm83/internal/cpu"
)

func TestParseLine(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		line string
		want cpu.Instruction
	}{
		{"nop", cpu.Nop{}},
		{"HALT", cpu.Halt{}},
		{"ld a,b", cpu.Load{Dst: cpu.A, Src: cpu.B}},
		{"LD  C , 0x0F", cpu.LoadImmediate{Dst: cpu.C, Value: 0x0F}},
		{"ld\th,$ff", cpu.LoadImmediate{Dst: cpu.H, Value: 0xFF}},
		{"ld e,0b1010", cpu.LoadImmediate{Dst: cpu.E, Value: 0x0A}},
		{"ld hl,4096", cpu.LoadPairImmediate{Dst: cpu.HL, Value: 0x1000}},
		{"ld sp,0xFFFE", cpu.LoadPairImmediate{Dst: cpu.SP, Value: 0xFFFE}},
		{"ld sp,hl", cpu.LoadSPFromHL{}},
		{"add a,b", cpu.ALU{Op: cpu.OpAdd, Src: cpu.B}},
		{"add 0x10", cpu.ALUImmediate{Op: cpu.OpAdd, Value: 0x10}},
		{"adc a,0x01", cpu.ALUImmediate{Op: cpu.OpAddWithCarry, Value: 0x01}},
		{"sub l", cpu.ALU{Op: cpu.OpSub, Src: cpu.L}},
		{"sub a,l", cpu.ALU{Op: cpu.OpSub, Src: cpu.L}},
		{"sbc a,d", cpu.ALU{Op: cpu.OpSubWithCarry, Src: cpu.D}},
		{"and 0x3f", cpu.ALUImmediate{Op: cpu.OpAnd, Value: 0x3F}},
		{"xor a", cpu.ALU{Op: cpu.OpXor, Src: cpu.A}},
		{"or e", cpu.ALU{Op: cpu.OpOr, Src: cpu.E}},
		{"cp 42", cpu.ALUImmediate{Op: cpu.OpCompare, Value: 42}},
		{"inc b", cpu.Increment{Target: cpu.B}},
		{"dec a", cpu.Decrement{Target: cpu.A}},
		{"inc hl", cpu.IncrementPair{Target: cpu.HL}},
		{"dec sp", cpu.DecrementPair{Target: cpu.SP}},
		{"cpl", cpu.Complement{}},
		{"add hl,bc", cpu.AddHL{Src: cpu.BC}},
		{"rlca", cpu.RotateAccumulator{Left: true}},
		{"rra", cpu.RotateAccumulator{ThroughCarry: true}},
		{"rl c", cpu.Rotate{Target: cpu.C, Left: true, ThroughCarry: true}},
		{"rrc d", cpu.Rotate{Target: cpu.D}},
		{"sla a", cpu.Shift{Op: cpu.ShiftLeftArithmetic, Target: cpu.A}},
		{"sra b", cpu.Shift{Op: cpu.ShiftRightArithmetic, Target: cpu.B}},
		{"srl c", cpu.Shift{Op: cpu.ShiftRightLogical, Target: cpu.C}},
		{"swap h", cpu.Swap{Target: cpu.H}},
		{"bit 7,h", cpu.BitTest{Bit: 7, Target: cpu.H}},
		{"set 0,a", cpu.BitSet{Bit: 0, Target: cpu.A}},
		{"res 3,l", cpu.BitReset{Bit: 3, Target: cpu.L}},
		{"push af", cpu.Push{Src: cpu.AF}},
		{"pop bc", cpu.Pop{Dst: cpu.BC}},
		{"scf ; set carry", cpu.SetCarry{}},
		{"ccf", cpu.ComplementCarry{}},
		// Out of range bit indexes are the engine's to reject.
		{"bit 8,b", cpu.BitTest{Bit: 8, Target: cpu.B}},
	}

	for _, entry := range table {
		asm := &Assembler{}
		got, err := asm.ParseLine(entry.line)
		if assert.NoError(err, entry.line) {
			assert.Equal(entry.want, got, entry.line)
		}
	}
}

func TestParseLineErrors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		line string
		err  error
	}{
		{"jp 0x100", ErrMnemonicUnknown},
		{"nop a", ErrOperandCount},
		{"ld a", ErrOperandCount},
		{"inc", ErrOperandCount},
		{"add b,c", ErrOperandInvalid},
		{"ld af,0x1234", ErrOperandInvalid},
		{"ld bc,de", ErrOperandInvalid},
		{"push sp", ErrOperandInvalid},
		{"add hl,af", ErrOperandInvalid},
		{"swap bc", ErrOperandInvalid},
		{"ld a,256", ErrValueRange},
		{"ld a,-1", ErrValueRange},
		{"ld hl,0x10000", ErrValueRange},
		{".org 0x100", ErrDirectiveUnknown},
		{".equ ONLY", ErrEquateSyntax},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.ParseLine(entry.line)
		assert.ErrorIs(err, entry.err, entry.line)
	}

	_, err := (&Assembler{}).ParseLine("ld a,zzz")
	var perr ErrParseValue
	assert.True(errors.As(err, &perr))
}

func TestBlankAndComment(t *testing.T) {
	assert := assert.New(t)

	for _, line := range []string{"", "   ", "; only a comment", "\t; indented"} {
		instr, err := (&Assembler{}).ParseLine(line)
		assert.NoError(err)
		assert.Nil(instr)
	}
}

func TestEquateAndExpression(t *testing.T) {
	assert := assert.New(t)

	source := `
.equ BASE 0x1000
.equ OFFSET $(BASE + 4)
ld hl,OFFSET
ld a,$(1 << 4 | 3)
ld b,$(OFFSET - BASE)
cp $(max(3, 7))
`
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	require.NoError(t, err)

	assert.Equal([]cpu.Instruction{
		cpu.LoadPairImmediate{Dst: cpu.HL, Value: 0x1004},
		cpu.LoadImmediate{Dst: cpu.A, Value: 0x13},
		cpu.LoadImmediate{Dst: cpu.B, Value: 4},
		cpu.ALUImmediate{Op: cpu.OpCompare, Value: 7},
	}, prog)
	assert.Equal(int64(0x1000), asm.Equate["BASE"])
	assert.Equal(int64(0x1004), asm.Equate["OFFSET"])
}

func TestBadExpression(t *testing.T) {
	assert := assert.New(t)

	for _, line := range []string{"ld a,$(1 +)", "ld a,$(\"str\")", "ld a,$(UNDEFINED)"} {
		_, err := (&Assembler{}).ParseLine(line)
		var perr ErrParseExpression
		assert.True(errors.As(err, &perr), line)
	}
}

func TestEquateDuplicate(t *testing.T) {
	_, err := Assemble(strings.NewReader(".equ X 1\n.equ X 2\n"))
	assert.ErrorIs(t, err, ErrEquateDuplicate)
}

func TestSyntaxErrorLine(t *testing.T) {
	assert := assert.New(t)

	_, err := Assemble(strings.NewReader("nop\n\nld a,b\nfrob c\n"))

	var serr SyntaxError
	require.True(t, errors.As(err, &serr))
	assert.Equal(4, serr.Line)
	assert.Equal("frob c", serr.Text)
	assert.ErrorIs(err, ErrMnemonicUnknown)
}

func TestFormatRoundTrip(t *testing.T) {
	prog := []cpu.Instruction{
		cpu.Load{Dst: cpu.A, Src: cpu.B},
		cpu.LoadImmediate{Dst: cpu.C, Value: 0x0F},
		cpu.LoadPairImmediate{Dst: cpu.DE, Value: 0xBEEF},
		cpu.LoadSPFromHL{},
		cpu.ALU{Op: cpu.OpSubWithCarry, Src: cpu.E},
		cpu.ALUImmediate{Op: cpu.OpXor, Value: 0xAA},
		cpu.Increment{Target: cpu.L},
		cpu.DecrementPair{Target: cpu.BC},
		cpu.AddHL{Src: cpu.SP},
		cpu.Complement{},
		cpu.RotateAccumulator{Left: true, ThroughCarry: true},
		cpu.Rotate{Target: cpu.H, ThroughCarry: true},
		cpu.Shift{Op: cpu.ShiftRightArithmetic, Target: cpu.D},
		cpu.Swap{Target: cpu.A},
		cpu.BitTest{Bit: 2, Target: cpu.C},
		cpu.BitSet{Bit: 6, Target: cpu.B},
		cpu.BitReset{Bit: 1, Target: cpu.E},
		cpu.Push{Src: cpu.DE},
		cpu.Pop{Dst: cpu.HL},
		cpu.SetCarry{},
		cpu.ComplementCarry{},
		cpu.Nop{},
		cpu.Halt{},
	}

	again, err := Assemble(strings.NewReader(Format(prog)))
	require.NoError(t, err)
	assert.Equal(t, prog, again)
}

func TestMnemonics(t *testing.T) {
	names := Mnemonics()

	assert.Contains(t, names, "ld")
	assert.Contains(t, names, "swap")
	assert.Contains(t, names, "rlca")
	assert.IsIncreasing(t, names)
	for _, name := range names {
		// Every mnemonic is recognised by the parser.
		_, err := (&Assembler{}).ParseLine(name)
		assert.False(t, errors.Is(err, ErrMnemonicUnknown), name)
	}
}
