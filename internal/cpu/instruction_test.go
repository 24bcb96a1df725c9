package cpu

import "testing"

func TestInstructionString(t *testing.T) {
	tests := []struct {
		instr Instruction
		want  string
	}{
		{Load{Dst: A, Src: B}, "LD A,B"},
		{LoadImmediate{Dst: C, Value: 0x0F}, "LD C,0x0F"},
		{LoadPairImmediate{Dst: SP, Value: 0xFFFE}, "LD SP,0xFFFE"},
		{LoadSPFromHL{}, "LD SP,HL"},
		{ALU{Op: OpAdd, Src: B}, "ADD A,B"},
		{ALU{Op: OpSub, Src: L}, "SUB L"},
		{ALUImmediate{Op: OpAddWithCarry, Value: 0x10}, "ADC A,0x10"},
		{ALUImmediate{Op: OpSubWithCarry, Value: 0x01}, "SBC A,0x01"},
		{ALUImmediate{Op: OpCompare, Value: 0xFE}, "CP 0xFE"},
		{ALU{Op: OpAnd, Src: D}, "AND D"},
		{ALU{Op: OpXor, Src: A}, "XOR A"},
		{ALU{Op: OpOr, Src: E}, "OR E"},
		{Increment{Target: H}, "INC H"},
		{Decrement{Target: L}, "DEC L"},
		{IncrementPair{Target: HL}, "INC HL"},
		{DecrementPair{Target: SP}, "DEC SP"},
		{Complement{}, "CPL"},
		{AddHL{Src: DE}, "ADD HL,DE"},
		{RotateAccumulator{Left: true}, "RLCA"},
		{RotateAccumulator{Left: true, ThroughCarry: true}, "RLA"},
		{RotateAccumulator{}, "RRCA"},
		{RotateAccumulator{ThroughCarry: true}, "RRA"},
		{Rotate{Target: B, Left: true}, "RLC B"},
		{Rotate{Target: C, Left: true, ThroughCarry: true}, "RL C"},
		{Rotate{Target: D}, "RRC D"},
		{Rotate{Target: E, ThroughCarry: true}, "RR E"},
		{Shift{Op: ShiftLeftArithmetic, Target: A}, "SLA A"},
		{Shift{Op: ShiftRightArithmetic, Target: B}, "SRA B"},
		{Shift{Op: ShiftRightLogical, Target: C}, "SRL C"},
		{Swap{Target: H}, "SWAP H"},
		{BitTest{Bit: 7, Target: H}, "BIT 7,H"},
		{BitSet{Bit: 0, Target: A}, "SET 0,A"},
		{BitReset{Bit: 3, Target: L}, "RES 3,L"},
		{Push{Src: AF}, "PUSH AF"},
		{Pop{Dst: BC}, "POP BC"},
		{SetCarry{}, "SCF"},
		{ComplementCarry{}, "CCF"},
		{Nop{}, "NOP"},
		{Halt{}, "HALT"},
	}

	for _, tt := range tests {
		if got := tt.instr.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.instr, got, tt.want)
		}
	}
}
