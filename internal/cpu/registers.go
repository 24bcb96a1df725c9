package cpu

// Flag bit positions inside the packed F byte.
const (
	FlagZ uint8 = 0b10000000 // Zero flag (bit 7)
	FlagN uint8 = 0b01000000 // Subtraction flag (bit 6)
	FlagH uint8 = 0b00100000 // Half-carry flag (bit 5)
	FlagC uint8 = 0b00010000 // Carry flag (bit 4)
)

// Register names one of the 8-bit general purpose registers.
type Register uint8

// 8-bit registers.
const (
	A Register = iota
	B
	C
	D
	E
	H
	L
)

var registerNames = [...]string{"A", "B", "C", "D", "E", "H", "L"}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return "?"
}

func (r Register) valid() bool {
	return r <= L
}

// Pair names a 16-bit register or register pair.
type Pair uint8

// 16-bit registers.
const (
	AF Pair = iota
	BC
	DE
	HL
	SP
)

var pairNames = [...]string{"AF", "BC", "DE", "HL", "SP"}

func (p Pair) String() string {
	if int(p) < len(pairNames) {
		return pairNames[p]
	}
	return "?"
}

// Flags holds the four condition bits of the F register.
type Flags struct {
	Zero      bool // Z
	Subtract  bool // N
	HalfCarry bool // H
	Carry     bool // C
}

// Pack returns the flags as the upper nibble of a byte. The lower nibble is always zero.
func (f Flags) Pack() uint8 {
	var b uint8
	if f.Zero {
		b |= FlagZ
	}
	if f.Subtract {
		b |= FlagN
	}
	if f.HalfCarry {
		b |= FlagH
	}
	if f.Carry {
		b |= FlagC
	}
	return b
}

// UnpackFlags converts a packed F byte into Flags, ignoring bits 3-0.
func UnpackFlags(b uint8) Flags {
	return Flags{
		Zero:      b&FlagZ != 0,
		Subtract:  b&FlagN != 0,
		HalfCarry: b&FlagH != 0,
		Carry:     b&FlagC != 0,
	}
}

// Registers represents the SM83 CPU registers.
type Registers struct {
	A  uint8  // Accumulator
	B  uint8  // General purpose
	C  uint8  // General purpose
	D  uint8  // General purpose
	E  uint8  // General purpose
	H  uint8  // General purpose (high byte of HL pointer)
	L  uint8  // General purpose (low byte of HL pointer)
	F  Flags  // Flags
	SP uint16 // Stack pointer
	PC uint16 // Program counter, never advanced by Execute
}

// NewRegisters creates a zeroed Registers instance.
func NewRegisters() *Registers {
	return &Registers{}
}

// Reset restores every register and flag to zero.
func (r *Registers) Reset() {
	*r = Registers{}
}

// Get returns the value of an 8-bit register.
// It panics if reg is not one of A, B, C, D, E, H or L; Execute validates
// operands before reaching the register file.
func (r *Registers) Get(reg Register) uint8 {
	return *r.slot(reg)
}

// Set writes an 8-bit register. Like Get, it panics on values outside the enum.
func (r *Registers) Set(reg Register, value uint8) {
	*r.slot(reg) = value
}

func (r *Registers) slot(reg Register) *uint8 {
	switch reg {
	case A:
		return &r.A
	case B:
		return &r.B
	case C:
		return &r.C
	case D:
		return &r.D
	case E:
		return &r.E
	case H:
		return &r.H
	case L:
		return &r.L
	}
	panic("cpu: invalid register " + reg.String())
}

// 16-bit register pair getters

// AF returns the 16-bit AF register pair.
func (r *Registers) AF() uint16 {
	return uint16(r.A)<<8 | uint16(r.F.Pack())
}

// BC returns the 16-bit BC register pair.
func (r *Registers) BC() uint16 {
	return uint16(r.B)<<8 | uint16(r.C)
}

// DE returns the 16-bit DE register pair.
func (r *Registers) DE() uint16 {
	return uint16(r.D)<<8 | uint16(r.E)
}

// HL returns the 16-bit HL register pair.
func (r *Registers) HL() uint16 {
	return uint16(r.H)<<8 | uint16(r.L)
}

// 16-bit register pair setters

// SetAF sets A and unpacks the low byte into the flags.
func (r *Registers) SetAF(value uint16) {
	r.A = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.F = UnpackFlags(uint8(value))
}

// SetBC sets the 16-bit BC register pair.
func (r *Registers) SetBC(value uint16) {
	r.B = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.C = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// SetDE sets the 16-bit DE register pair.
func (r *Registers) SetDE(value uint16) {
	r.D = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.E = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// SetHL sets the 16-bit HL register pair.
func (r *Registers) SetHL(value uint16) {
	r.H = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.L = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// Pair returns the value of a 16-bit register.
// It panics if p is not one of AF, BC, DE, HL or SP.
func (r *Registers) Pair(p Pair) uint16 {
	switch p {
	case AF:
		return r.AF()
	case BC:
		return r.BC()
	case DE:
		return r.DE()
	case HL:
		return r.HL()
	case SP:
		return r.SP
	}
	panic("cpu: invalid register pair " + p.String())
}

// SetPair writes a 16-bit register. Like Pair, it panics on values outside the enum.
func (r *Registers) SetPair(p Pair, value uint16) {
	switch p {
	case AF:
		r.SetAF(value)
	case BC:
		r.SetBC(value)
	case DE:
		r.SetDE(value)
	case HL:
		r.SetHL(value)
	case SP:
		r.SP = value
	default:
		panic("cpu: invalid register pair " + p.String())
	}
}
