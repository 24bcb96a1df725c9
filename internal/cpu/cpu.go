// Package cpu implements the Sharp SM83 instruction set for already-decoded
// instructions: the register file, the instruction model and the execution engine.
//
// A CPU is owned by a single goroutine. Execute runs one instruction to completion
// and leaves the registers untouched when it rejects an operand.
package cpu

import (
	"fmt"
)

// Memory interface for CPU to access memory bus.
//
// Errors returned by the bus are passed back to the caller of Execute unchanged.
type Memory interface {
	Read(addr uint16) (uint8, error)
	Write(addr uint16, value uint8) error
}

// CPU represents the Sharp SM83 CPU.
type CPU struct {
	Registers *Registers
	Memory    Memory
}

// New creates a new CPU instance with zeroed registers.
func New(mem Memory) *CPU {
	return &CPU{
		Registers: NewRegisters(),
		Memory:    mem,
	}
}

// Reset zeroes all registers and flags. Memory is left alone.
func (c *CPU) Reset() {
	c.Registers.Reset()
}

// Execute applies one instruction to the register file and, for stack
// operations, to memory.
//
//nolint:gocyclo // One case per instruction variant
func (c *CPU) Execute(instr Instruction) error {
	r := c.Registers

	switch i := instr.(type) {
	// 8-bit and 16-bit loads
	case Load:
		if err := checkRegisters(i.Dst, i.Src); err != nil {
			return err
		}
		r.Set(i.Dst, r.Get(i.Src))
	case LoadImmediate:
		if err := checkRegisters(i.Dst); err != nil {
			return err
		}
		r.Set(i.Dst, i.Value)
	case LoadPairImmediate:
		if err := checkWidePair(i.Dst); err != nil {
			return err
		}
		r.SetPair(i.Dst, i.Value)
	case LoadSPFromHL:
		r.SP = r.HL()

	// 8-bit arithmetic and logic
	case ALU:
		if err := checkRegisters(i.Src); err != nil {
			return err
		}
		return c.alu(i.Op, r.Get(i.Src))
	case ALUImmediate:
		return c.alu(i.Op, i.Value)
	case Increment:
		if err := checkRegisters(i.Target); err != nil {
			return err
		}
		r.Set(i.Target, c.add8(r.Get(i.Target), 1))
	case Decrement:
		if err := checkRegisters(i.Target); err != nil {
			return err
		}
		r.Set(i.Target, c.sub8(r.Get(i.Target), 1))
	case Complement:
		r.A = ^r.A
		r.F.Subtract = true
		r.F.HalfCarry = true

	// 16-bit arithmetic
	case AddHL:
		if err := checkWidePair(i.Src); err != nil {
			return err
		}
		r.SetHL(c.addHL(r.Pair(i.Src)))
	case IncrementPair:
		if err := checkWidePair(i.Target); err != nil {
			return err
		}
		r.SetPair(i.Target, r.Pair(i.Target)+1)
	case DecrementPair:
		if err := checkWidePair(i.Target); err != nil {
			return err
		}
		r.SetPair(i.Target, r.Pair(i.Target)-1)

	// Rotates and shifts
	case RotateAccumulator:
		r.A = c.rotate(r.A, i.Left, i.ThroughCarry)
		r.F.Zero = false
		r.F.Subtract = false
		r.F.HalfCarry = false
	case Rotate:
		if err := checkRegisters(i.Target); err != nil {
			return err
		}
		r.Set(i.Target, c.rotate(r.Get(i.Target), i.Left, i.ThroughCarry))
	case Shift:
		if err := checkRegisters(i.Target); err != nil {
			return err
		}
		return c.shift(i.Op, i.Target)
	case Swap:
		if err := checkRegisters(i.Target); err != nil {
			return err
		}
		r.Set(i.Target, swap(r.Get(i.Target)))

	// Single bit operations
	case BitTest:
		if err := checkBit(i.Bit, i.Target); err != nil {
			return err
		}
		c.bit(r.Get(i.Target), i.Bit)
	case BitSet:
		if err := checkBit(i.Bit, i.Target); err != nil {
			return err
		}
		r.Set(i.Target, r.Get(i.Target)|(1<<i.Bit))
	case BitReset:
		if err := checkBit(i.Bit, i.Target); err != nil {
			return err
		}
		r.Set(i.Target, r.Get(i.Target)&^(1<<i.Bit))

	// Stack
	case Push:
		if err := checkStackPair(i.Src); err != nil {
			return err
		}
		return c.push(r.Pair(i.Src))
	case Pop:
		if err := checkStackPair(i.Dst); err != nil {
			return err
		}
		value, err := c.pop()
		if err != nil {
			return err
		}
		r.SetPair(i.Dst, value)

	// CPU control
	case SetCarry:
		r.F.Zero = true
		r.F.Subtract = false
		r.F.Carry = true
	case ComplementCarry:
		r.F.Zero = true
		r.F.Subtract = false
		r.F.Carry = !r.F.Carry
	case Nop:
	case Halt:
		// A surrounding program loop owns the halted state.

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedInstruction, instr)
	}

	return nil
}

// push pushes a 16-bit value onto the stack, high byte first.
// SP is only committed once both writes succeed.
func (c *CPU) push(value uint16) error {
	sp := c.Registers.SP - 1
	if err := c.Memory.Write(sp, uint8(value>>8)); err != nil { //nolint:gosec // G115: Intentional byte extraction from 16-bit value
		return err
	}
	sp--
	if err := c.Memory.Write(sp, uint8(value)); err != nil { //nolint:gosec // G115: Intentional byte extraction from 16-bit value
		return err
	}
	c.Registers.SP = sp
	return nil
}

// pop pops a 16-bit value from the stack.
func (c *CPU) pop() (uint16, error) {
	sp := c.Registers.SP
	low, err := c.Memory.Read(sp)
	if err != nil {
		return 0, err
	}
	high, err := c.Memory.Read(sp + 1)
	if err != nil {
		return 0, err
	}
	c.Registers.SP = sp + 2
	return uint16(high)<<8 | uint16(low), nil
}

func checkRegisters(regs ...Register) error {
	for _, reg := range regs {
		if !reg.valid() {
			return fmt.Errorf("%w: register %d", ErrInvalidOperand, reg)
		}
	}
	return nil
}

func checkBit(bit uint8, reg Register) error {
	if bit > 7 {
		return fmt.Errorf("%w: bit index %d", ErrInvalidOperand, bit)
	}
	return checkRegisters(reg)
}

// checkWidePair accepts the pairs addressable by LD rr,nn, INC rr, DEC rr and ADD HL,rr.
func checkWidePair(p Pair) error {
	switch p {
	case BC, DE, HL, SP:
		return nil
	}
	return fmt.Errorf("%w: register pair %v", ErrInvalidOperand, p)
}

// checkStackPair accepts the pairs addressable by PUSH and POP.
func checkStackPair(p Pair) error {
	switch p {
	case AF, BC, DE, HL:
		return nil
	}
	return fmt.Errorf("%w: register pair %v", ErrInvalidOperand, p)
}
