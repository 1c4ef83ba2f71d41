package client

import (
	"errors"
	"fmt"
)

// ErrMachineInUse is returned when the target machine refuses the
// greeting because it is already drawing.
var ErrMachineInUse = errors.New("the target drawing machine is already in use")

// ErrGreetingTimedOut is returned when a greeting is sent but no response
// is read.
var ErrGreetingTimedOut = errors.New("error reading greeting from machine, it's likely the connection timed out")

// MachineNotFoundError is returned when the machine cannot be reached on
// the network.
type MachineNotFoundError struct {
	Addr string
	Port uint16
}

func (e *MachineNotFoundError) Error() string {
	return fmt.Sprintf("the target machine %s:%d did not respond, it may be the wrong address", e.Addr, e.Port)
}

// InsBufferSmallError is returned when the firmware reports an
// instruction buffer too small to stream into.
type InsBufferSmallError struct {
	Size uint32
}

func (e *InsBufferSmallError) Error() string {
	return fmt.Sprintf("the target machine's instruction buffer size was too small: %d bytes", e.Size)
}

// InvalidBytesError is returned when the machine sends bytes the host
// wasn't expecting.
type InvalidBytesError struct {
	Reason string
}

func (e *InvalidBytesError) Error() string {
	return fmt.Sprintf("error reading bytes from client: %s", e.Reason)
}
