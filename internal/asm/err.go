package asm

import (
	"errors"
	"fmt"
)

var (
	// Line errors
	ErrMnemonicUnknown = errors.New("unknown mnemonic")
	ErrOperandCount    = errors.New("wrong number of operands")
	ErrOperandInvalid  = errors.New("invalid operand")
	ErrValueRange      = errors.New("value out of range")

	// Directive errors
	ErrEquateSyntax     = errors.New(".equ syntax")
	ErrEquateDuplicate  = errors.New(".equ duplicated")
	ErrDirectiveUnknown = errors.New("unknown directive")
)

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return fmt.Sprintf("'%v' is not a number or symbol", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return fmt.Sprintf("$(%v) is not a valid expression", string(err))
}

// SyntaxError reports the source line that failed to assemble.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

func (err SyntaxError) Error() string {
	return fmt.Sprintf("line %d '%v': %v", err.Line, err.Text, err.Err)
}

func (err SyntaxError) Unwrap() error {
	return err.Err
}
