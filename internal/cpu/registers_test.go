package cpu

import "testing"

func TestRegisters(t *testing.T) {
	r := NewRegisters()

	// Test 16-bit register pairs
	r.SetBC(0x1234)
	if r.BC() != 0x1234 {
		t.Errorf("BC() = %04X, want 0x1234", r.BC())
	}
	if r.B != 0x12 || r.C != 0x34 {
		t.Errorf("B = %02X, C = %02X, want 0x12, 0x34", r.B, r.C)
	}

	r.SetDE(0x5678)
	if r.DE() != 0x5678 {
		t.Errorf("DE() = %04X, want 0x5678", r.DE())
	}
	if r.D != 0x56 || r.E != 0x78 {
		t.Errorf("D = %02X, E = %02X, want 0x56, 0x78", r.D, r.E)
	}

	r.SetHL(0x9ABC)
	if r.HL() != 0x9ABC {
		t.Errorf("HL() = %04X, want 0x9ABC", r.HL())
	}

	// Lower 4 bits of F are dropped
	r.SetAF(0x12FF)
	if r.AF() != 0x12F0 {
		t.Errorf("AF() = %04X, want 0x12F0", r.AF())
	}
	want := Flags{Zero: true, Subtract: true, HalfCarry: true, Carry: true}
	if r.F != want {
		t.Errorf("F = %+v, want %+v", r.F, want)
	}

	r.SetAF(0x3490)
	if r.A != 0x34 || r.F != (Flags{Zero: true, Carry: true}) {
		t.Errorf("A = %02X, F = %+v after SetAF(0x3490)", r.A, r.F)
	}
}

func TestRegisterPairAccess(t *testing.T) {
	r := NewRegisters()

	for _, p := range []Pair{AF, BC, DE, HL, SP} {
		r.SetPair(p, 0xBEE0)
		if got := r.Pair(p); got != 0xBEE0 {
			t.Errorf("Pair(%v) = %04X, want 0xBEE0", p, got)
		}
	}

	if r.SP != 0xBEE0 {
		t.Errorf("SP = %04X, want 0xBEE0", r.SP)
	}
}

func TestRegisterGetSet(t *testing.T) {
	r := NewRegisters()

	for i, reg := range []Register{A, B, C, D, E, H, L} {
		r.Set(reg, uint8(0x10+i))
	}

	want := Registers{A: 0x10, B: 0x11, C: 0x12, D: 0x13, E: 0x14, H: 0x15, L: 0x16}
	if *r != want {
		t.Errorf("registers = %+v, want %+v", *r, want)
	}
	for i, reg := range []Register{A, B, C, D, E, H, L} {
		if got := r.Get(reg); got != uint8(0x10+i) {
			t.Errorf("Get(%v) = %02X, want %02X", reg, got, 0x10+i)
		}
	}
}

func TestRegisterOutOfRangePanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(r *Registers)
	}{
		{"Get", func(r *Registers) { r.Get(Register(7)) }},
		{"Set", func(r *Registers) { r.Set(Register(0xFF), 1) }},
		{"Pair", func(r *Registers) { r.Pair(Pair(5)) }},
		{"SetPair", func(r *Registers) { r.SetPair(Pair(0xFF), 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s with an out of range value did not panic", tt.name)
				}
			}()
			tt.fn(NewRegisters())
		})
	}
}

func TestRegistersReset(t *testing.T) {
	r := NewRegisters()
	r.SetAF(0xFFF0)
	r.SetBC(0x1234)
	r.SetDE(0x5678)
	r.SetHL(0x9ABC)
	r.SP = 0xFFFE
	r.PC = 0x0100

	r.Reset()

	if *r != (Registers{}) {
		t.Errorf("registers after Reset = %+v, want zero value", *r)
	}
}

func TestFlagsPackRoundTrip(t *testing.T) {
	// Every combination of the four flags survives pack/unpack.
	for n := 0; n < 16; n++ {
		f := Flags{
			Zero:      n&8 != 0,
			Subtract:  n&4 != 0,
			HalfCarry: n&2 != 0,
			Carry:     n&1 != 0,
		}
		if got := UnpackFlags(f.Pack()); got != f {
			t.Errorf("UnpackFlags(Pack(%+v)) = %+v", f, got)
		}
	}

	// Every byte survives unpack/pack with the low nibble cleared.
	for b := 0; b < 256; b++ {
		if got := UnpackFlags(uint8(b)).Pack(); got != uint8(b)&0xF0 {
			t.Errorf("Pack(UnpackFlags(%02X)) = %02X, want %02X", b, got, b&0xF0)
		}
	}
}

func TestFlagsPackBits(t *testing.T) {
	tests := []struct {
		flags Flags
		want  uint8
	}{
		{Flags{Zero: true}, FlagZ},
		{Flags{Subtract: true}, FlagN},
		{Flags{HalfCarry: true}, FlagH},
		{Flags{Carry: true}, FlagC},
		{Flags{}, 0x00},
	}

	for _, tt := range tests {
		if got := tt.flags.Pack(); got != tt.want {
			t.Errorf("%+v.Pack() = %08b, want %08b", tt.flags, got, tt.want)
		}
	}
}
