// Package errz defines the typed errors raised while decoding or encoding
// compiled code objects. These are deterministic structural failures: they
// are returned at the point of detection and never recovered internally.
package errz

import "fmt"

// UnknownOpcodeError indicates a raw byte that does not map to any
// instruction in the active format version's opcode table.
type UnknownOpcodeError struct {
	Version string
	Opcode  byte
	Offset  int
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %d at offset %d (python %s)", e.Opcode, e.Offset, e.Version)
}

// MalformedLineTableError indicates a truncated line table or an invalid
// delta/op-code combination within it.
type MalformedLineTableError struct {
	Offset int
	Reason string
}

func (e *MalformedLineTableError) Error() string {
	return fmt.Sprintf("malformed line table at byte %d: %s", e.Offset, e.Reason)
}

// DanglingJumpTargetError indicates a jump whose computed target offset does
// not align with any block boundary.
type DanglingJumpTargetError struct {
	Offset int // offset of the jump instruction, in bytes
	Target int // computed target offset, in bytes
}

func (e *DanglingJumpTargetError) Error() string {
	return fmt.Sprintf("jump at offset %d targets offset %d, which is not an instruction boundary", e.Offset, e.Target)
}

// JumpEncodingError indicates that the EXTENDED_ARG fixed-point computation
// failed to stabilize within its iteration bound during encoding.
type JumpEncodingError struct {
	Iterations int
}

func (e *JumpEncodingError) Error() string {
	return fmt.Sprintf("jump encoding did not converge after %d iterations", e.Iterations)
}

// UnsupportedVersionError indicates a format version with no registered
// opcode table or line-table codec.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported format version %q", e.Version)
}
