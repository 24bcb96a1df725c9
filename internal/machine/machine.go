// Package machine provides the program runner that ties together the CPU and
// memory bus.
//
// The CPU only executes decoded instructions; the machine supplies the loop
// around it: PC indexes the program, advances by one per instruction, and a
// HALT parks the machine until Reset.
package machine

import (
	"context"
	"errors"
	"fmt"

	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/log"
	"github.com/richardwooding/sm83/internal/memory"
)

var _ cpu.Memory = (*memory.Bus)(nil)

// ErrProgramTooLarge indicates a program with more instructions than PC can address.
var ErrProgramTooLarge = errors.New("program exceeds 65535 instructions")

// StepError reports the instruction that failed and where.
type StepError struct {
	PC          uint16
	Instruction cpu.Instruction
	Err         error
}

func (err *StepError) Error() string {
	return fmt.Sprintf("pc %04X %v: %v", err.PC, err.Instruction, err.Err)
}

func (err *StepError) Unwrap() error {
	return err.Err
}

// Option configures a Machine.
type Option func(*Machine) error

// WithLogger sets the logger used for per-instruction tracing.
func WithLogger(l log.Logger) Option {
	return func(m *Machine) error {
		m.logger = l
		return nil
	}
}

// WithProtected marks memory regions read-only.
func WithProtected(regions ...memory.Region) Option {
	return func(m *Machine) error {
		for _, r := range regions {
			if err := m.Memory.Protect(r); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithImage copies data into memory at addr before the program runs.
// Protected regions do not apply to images.
func WithImage(addr uint16, data []byte) Option {
	return func(m *Machine) error {
		return m.Memory.Load(addr, data)
	}
}

// Machine represents a CPU, its memory and the program it runs.
type Machine struct {
	CPU    *cpu.CPU
	Memory *memory.Bus

	// Instructions executed since the last Reset
	Executed uint64

	logger log.Logger
	halted bool
}

// New creates a new machine with a zeroed CPU and memory.
func New(opts ...Option) (*Machine, error) {
	mem := memory.NewBus()
	m := &Machine{
		CPU:    cpu.New(mem),
		Memory: mem,
		logger: log.NewNullLogger(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("failed to configure machine: %w", err)
		}
	}

	return m, nil
}

// Halted reports whether a HALT instruction stopped the machine.
func (m *Machine) Halted() bool {
	return m.halted
}

// Step executes the instruction at PC. It returns false once the machine is
// halted or PC has run off the end of the program.
func (m *Machine) Step(prog []cpu.Instruction) (bool, error) {
	regs := m.CPU.Registers
	if m.halted || int(regs.PC) >= len(prog) {
		return false, nil
	}

	pc := regs.PC
	instr := prog[pc]
	m.logger.Debugf("%04X  %-12v AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X",
		pc, instr, regs.AF(), regs.BC(), regs.DE(), regs.HL(), regs.SP)

	if err := m.CPU.Execute(instr); err != nil {
		return false, &StepError{PC: pc, Instruction: instr, Err: err}
	}

	regs.PC = pc + 1
	m.Executed++

	if _, ok := instr.(cpu.Halt); ok {
		m.halted = true
		m.logger.Debugf("%04X  halted", pc)
		return false, nil
	}

	return true, nil
}

// Run executes prog from the current PC until HALT, the end of the program,
// an execution error or cancellation of ctx.
func (m *Machine) Run(ctx context.Context, prog []cpu.Instruction) error {
	if len(prog) > 0xFFFF {
		return fmt.Errorf("%w: %d", ErrProgramTooLarge, len(prog))
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		more, err := m.Step(prog)
		if err != nil {
			m.logger.Errorf("%v", err)
			return err
		}
		if !more {
			return nil
		}
	}
}

// Reset zeroes the CPU and clears the halted marker. Memory is kept.
func (m *Machine) Reset() {
	m.CPU.Reset()
	m.halted = false
	m.Executed = 0
}
