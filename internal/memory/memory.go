// Package memory implements a flat 16-bit address space for the CPU.
package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrWriteProtected indicates a write to a read-only region.
	ErrWriteProtected = errors.New("write to protected memory")

	// ErrLoadFailed indicates data could not be placed in the address space.
	ErrLoadFailed = errors.New("memory load failed")

	// ErrInvalidRegion indicates a region whose start lies after its end.
	ErrInvalidRegion = errors.New("invalid memory region")
)

// Region is an inclusive address range.
type Region struct {
	Start uint16
	End   uint16
}

// Contains reports whether addr lies inside the region.
func (r Region) Contains(addr uint16) bool {
	return addr >= r.Start && addr <= r.End
}

func (r Region) String() string {
	return fmt.Sprintf("%04X-%04X", r.Start, r.End)
}

// Bus represents a 64 KiB byte-addressable memory.
type Bus struct {
	ram [0x10000]uint8

	// Write-protected regions (ROM-like)
	protected []Region
}

// NewBus creates a new zeroed memory bus.
func NewBus() *Bus {
	return &Bus{}
}

// Protect marks a region read-only. Writes into it fail with ErrWriteProtected.
func (b *Bus) Protect(r Region) error {
	if r.Start > r.End {
		return fmt.Errorf("%w: %v", ErrInvalidRegion, r)
	}
	b.protected = append(b.protected, r)
	return nil
}

// Protected returns the write-protected regions.
func (b *Bus) Protected() []Region {
	return b.protected
}

// Read reads a byte from the memory bus. Every address is readable.
func (b *Bus) Read(addr uint16) (uint8, error) {
	return b.ram[addr], nil
}

// Write writes a byte to the memory bus.
func (b *Bus) Write(addr uint16, value uint8) error {
	for _, r := range b.protected {
		if r.Contains(addr) {
			return fmt.Errorf("%w: 0x%04X in %v", ErrWriteProtected, addr, r)
		}
	}
	b.ram[addr] = value
	return nil
}

// Load copies data into memory starting at addr, bypassing write protection.
func (b *Bus) Load(addr uint16, data []byte) error {
	if int(addr)+len(data) > len(b.ram) {
		return fmt.Errorf("%w: %d bytes at 0x%04X exceed address space", ErrLoadFailed, len(data), addr)
	}
	copy(b.ram[addr:], data)
	return nil
}
