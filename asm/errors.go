package asm

import "fmt"

// ErrUnexpectedToken is returned by the parser when a token doesn't fit
// the grammar position it was found in.
type ErrUnexpectedToken struct {
	Got  string
	Line int
}

func (e *ErrUnexpectedToken) Error() string {
	return fmt.Sprintf("asm: unexpected token %s at line %d", e.Got, e.Line)
}

// ErrUnexpectedEOF is returned when the token stream ends mid-statement.
type ErrUnexpectedEOF struct {
	Line int
}

func (e *ErrUnexpectedEOF) Error() string {
	return fmt.Sprintf("asm: unexpected end of input at line %d", e.Line)
}

// ErrInvalidRegister is returned when an operand position expects a
// register but the token isn't one, or names a register outside R0-R15.
type ErrInvalidRegister struct {
	Got  string
	Line int
}

func (e *ErrInvalidRegister) Error() string {
	return fmt.Sprintf("asm: invalid register %q at line %d", e.Got, e.Line)
}

// ErrUndefinedLabel is returned by the compiler's second pass when a
// LOADI identifier operand resolves to neither a label nor a constant.
type ErrUndefinedLabel struct {
	Name string
}

func (e *ErrUndefinedLabel) Error() string {
	return fmt.Sprintf("asm: undefined label or constant %q", e.Name)
}

// ErrDuplicateLabel is returned by the compiler's first pass when a
// label is defined more than once; FirstAddr is the address bound by
// the earlier definition.
type ErrDuplicateLabel struct {
	Name      string
	FirstAddr int
}

func (e *ErrDuplicateLabel) Error() string {
	return fmt.Sprintf("asm: duplicate label %q (first defined at address %d)", e.Name, e.FirstAddr)
}
