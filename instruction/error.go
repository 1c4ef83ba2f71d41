package instruction

import (
	"errors"
	"fmt"
)

// ErrEmptySet is returned when a proposed instruction stream contains no
// bytes.
var ErrEmptySet = errors.New("the provided instruction set is empty")

// ErrInvalidLength describes a stream whose length cannot hold a whole
// number of instructions. No function in this package returns it: a
// truncated stream is reported as an IncompleteInstructionError.
var ErrInvalidLength = errors.New("the provided instruction set is of invalid length")

// IncompleteInstructionError reports a byte that broke the instruction
// grammar, either because an instruction did not end with the 0x0C
// terminator or because the stream was truncated mid-instruction.
type IncompleteInstructionError struct {
	Byte byte
}

func (e *IncompleteInstructionError) Error() string {
	return fmt.Sprintf("an instruction did not end with the instruction termination 0x0c, instead %#04x", e.Byte)
}

// StartOutOfBoundsError reports a starting index outside the stream.
type StartOutOfBoundsError struct {
	Start      int
	UpperBound int
}

func (e *StartOutOfBoundsError) Error() string {
	return fmt.Sprintf("invalid start index: %d, expected between 0 and %d", e.Start, e.UpperBound)
}

// BufferTooSmallError reports a requested chunk size below the 8-byte
// minimum, which lies above the 6-byte worst case size of a single
// instruction.
type BufferTooSmallError struct {
	Size int
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("the configured instruction buffer size is too small: %d bytes", e.Size)
}

// errEndOfStream signals a clean end of the stream to the instruction
// walk. It never escapes this package.
var errEndOfStream = errors.New("end of instruction stream")
