package cpu

import "fmt"

// Instruction is a decoded SM83 operation ready for Execute.
//
// The set of implementations is closed: every variant is declared in this file
// and Execute handles each of them.
type Instruction interface {
	fmt.Stringer
	instruction()
}

// ALUOp selects the accumulator operation performed by ALU and ALUImmediate.
type ALUOp uint8

// Accumulator operations.
const (
	OpAdd ALUOp = iota
	OpAddWithCarry
	OpSub
	OpSubWithCarry
	OpAnd
	OpXor
	OpOr
	OpCompare
)

var aluMnemonics = [...]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

func (op ALUOp) mnemonic() string {
	if int(op) < len(aluMnemonics) {
		return aluMnemonics[op]
	}
	return "ALU? "
}

// ShiftOp selects the shift performed by Shift.
type ShiftOp uint8

// Shift operations.
const (
	ShiftLeftArithmetic  ShiftOp = iota // SLA
	ShiftRightArithmetic                // SRA
	ShiftRightLogical                   // SRL
)

var shiftMnemonics = [...]string{"SLA", "SRA", "SRL"}

/* 8-bit and 16-bit loads */

// Load copies Src into Dst (LD r,r').
type Load struct{ Dst, Src Register }

// LoadImmediate writes Value into Dst (LD r,n).
type LoadImmediate struct {
	Dst   Register
	Value uint8
}

// LoadPairImmediate writes Value into a 16-bit register (LD rr,nn).
type LoadPairImmediate struct {
	Dst   Pair
	Value uint16
}

// LoadSPFromHL copies HL into SP (LD SP,HL).
type LoadSPFromHL struct{}

/* 8-bit arithmetic and logic */

// ALU combines the accumulator with a register.
type ALU struct {
	Op  ALUOp
	Src Register
}

// ALUImmediate combines the accumulator with an immediate byte.
type ALUImmediate struct {
	Op    ALUOp
	Value uint8
}

// Increment adds one to a register (INC r).
type Increment struct{ Target Register }

// Decrement subtracts one from a register (DEC r).
type Decrement struct{ Target Register }

// Complement inverts the accumulator (CPL).
type Complement struct{}

/* 16-bit arithmetic */

// AddHL adds a register pair into HL (ADD HL,rr).
type AddHL struct{ Src Pair }

// IncrementPair adds one to a register pair (INC rr).
type IncrementPair struct{ Target Pair }

// DecrementPair subtracts one from a register pair (DEC rr).
type DecrementPair struct{ Target Pair }

/* Rotates and shifts */

// RotateAccumulator is RLCA, RLA, RRCA or RRA.
type RotateAccumulator struct {
	Left         bool
	ThroughCarry bool
}

// Rotate is RLC, RL, RRC or RR on any register.
type Rotate struct {
	Target       Register
	Left         bool
	ThroughCarry bool
}

// Shift is SLA, SRA or SRL.
type Shift struct {
	Op     ShiftOp
	Target Register
}

// Swap exchanges the nibbles of a register (SWAP r).
type Swap struct{ Target Register }

/* Single bit operations */

// BitTest tests bit Bit of Target (BIT n,r).
type BitTest struct {
	Bit    uint8
	Target Register
}

// BitSet sets bit Bit of Target (SET n,r).
type BitSet struct {
	Bit    uint8
	Target Register
}

// BitReset clears bit Bit of Target (RES n,r).
type BitReset struct {
	Bit    uint8
	Target Register
}

/* Stack */

// Push stores a register pair on the stack (PUSH rr).
type Push struct{ Src Pair }

// Pop loads a register pair from the stack (POP rr).
type Pop struct{ Dst Pair }

/* CPU control */

// SetCarry is SCF.
type SetCarry struct{}

// ComplementCarry is CCF.
type ComplementCarry struct{}

// Nop does nothing.
type Nop struct{}

// Halt marks the end of a program. Execute does not change state for it.
type Halt struct{}

func (Load) instruction()              {}
func (LoadImmediate) instruction()     {}
func (LoadPairImmediate) instruction() {}
func (LoadSPFromHL) instruction()      {}
func (ALU) instruction()               {}
func (ALUImmediate) instruction()      {}
func (Increment) instruction()         {}
func (Decrement) instruction()         {}
func (Complement) instruction()        {}
func (AddHL) instruction()             {}
func (IncrementPair) instruction()     {}
func (DecrementPair) instruction()     {}
func (RotateAccumulator) instruction() {}
func (Rotate) instruction()            {}
func (Shift) instruction()             {}
func (Swap) instruction()              {}
func (BitTest) instruction()           {}
func (BitSet) instruction()            {}
func (BitReset) instruction()          {}
func (Push) instruction()              {}
func (Pop) instruction()               {}
func (SetCarry) instruction()          {}
func (ComplementCarry) instruction()   {}
func (Nop) instruction()               {}
func (Halt) instruction()              {}

// Mnemonics

func (i Load) String() string { return fmt.Sprintf("LD %v,%v", i.Dst, i.Src) }
func (i LoadImmediate) String() string {
	return fmt.Sprintf("LD %v,0x%02X", i.Dst, i.Value)
}
func (i LoadPairImmediate) String() string {
	return fmt.Sprintf("LD %v,0x%04X", i.Dst, i.Value)
}
func (LoadSPFromHL) String() string   { return "LD SP,HL" }
func (i ALU) String() string          { return i.Op.mnemonic() + i.Src.String() }
func (i ALUImmediate) String() string { return fmt.Sprintf("%s0x%02X", i.Op.mnemonic(), i.Value) }
func (i Increment) String() string    { return "INC " + i.Target.String() }
func (i Decrement) String() string    { return "DEC " + i.Target.String() }
func (Complement) String() string     { return "CPL" }
func (i AddHL) String() string        { return "ADD HL," + i.Src.String() }
func (i IncrementPair) String() string {
	return "INC " + i.Target.String()
}
func (i DecrementPair) String() string {
	return "DEC " + i.Target.String()
}

func (i RotateAccumulator) String() string {
	return rotateMnemonic(i.Left, i.ThroughCarry) + "A"
}

func (i Rotate) String() string {
	return rotateMnemonic(i.Left, i.ThroughCarry) + " " + i.Target.String()
}

func rotateMnemonic(left, throughCarry bool) string {
	switch {
	case left && throughCarry:
		return "RL"
	case left:
		return "RLC"
	case throughCarry:
		return "RR"
	default:
		return "RRC"
	}
}

func (i Shift) String() string {
	name := "SHIFT?"
	if int(i.Op) < len(shiftMnemonics) {
		name = shiftMnemonics[i.Op]
	}
	return name + " " + i.Target.String()
}

func (i Swap) String() string          { return "SWAP " + i.Target.String() }
func (i BitTest) String() string       { return fmt.Sprintf("BIT %d,%v", i.Bit, i.Target) }
func (i BitSet) String() string        { return fmt.Sprintf("SET %d,%v", i.Bit, i.Target) }
func (i BitReset) String() string      { return fmt.Sprintf("RES %d,%v", i.Bit, i.Target) }
func (i Push) String() string          { return "PUSH " + i.Src.String() }
func (i Pop) String() string           { return "POP " + i.Dst.String() }
func (SetCarry) String() string        { return "SCF" }
func (ComplementCarry) String() string { return "CCF" }
func (Nop) String() string             { return "NOP" }
func (Halt) String() string            { return "HALT" }
