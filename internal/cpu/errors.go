package cpu

import "errors"

var (
	// ErrInvalidOperand indicates an operand outside the range an instruction accepts,
	// such as a bit index above 7 or a register pair the instruction cannot address.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrUnsupportedInstruction indicates an instruction value Execute does not implement.
	ErrUnsupportedInstruction = errors.New("unsupported instruction")
)
