package drawing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/blot-bot-org/core-lib/hardware"
	"github.com/blot-bot-org/core-lib/instruction"
)

// ErrNoSamples is returned when an operation needs at least one encoded
// instruction and the surface has none.
var ErrNoSamples = errors.New("drawing: no instructions on the surface")

// StepOverflowError is returned by SampleXY when a single move needs more
// steps than one instruction can carry. Generators are expected to
// subdivide long moves.
type StepOverflowError struct {
	Instructions int
	LeftSteps    float64
	RightSteps   float64
}

func (e *StepOverflowError) Error() string {
	return fmt.Sprintf("steps are outside range, currently %d instruction bytes generated, with step sizes l:%v and r:%v", e.Instructions, e.LeftSteps, e.RightSteps)
}

// Surface is a stateful encoder from pen positions to instruction bytes.
// It is created per drawing and is not reusable.
//
// The first sample initialises the pen position and emits no bytes; the
// pen is physically moved there out of band before the drawing starts.
// Every later sample encodes the belt delta from the accumulated belt
// state, so rounding error never compounds beyond half a step per
// instruction.
type Surface struct {
	dims *hardware.PhysicalDimensions

	ins   []byte
	belts *hardware.Belts

	firstX   float64
	firstY   float64
	hasFirst bool

	// A pen op issued before any instruction exists is held here and
	// attached to the next emitted instruction.
	pendingPen *byte
}

// NewSurface returns a blank surface for the given machine layout.
func NewSurface(dims *hardware.PhysicalDimensions) *Surface {
	return &Surface{dims: dims}
}

// SampleXY moves the pen to (x, y), in millimetres relative to the top
// left of the page. The first call records the drawing's starting
// position and emits nothing; subsequent calls emit one instruction.
func (s *Surface) SampleXY(x, y float64) error {
	newLeft, newRight := hardware.CartesianToBelt(
		s.dims.PageHorizontalOffset+x,
		s.dims.PageVerticalOffset+y,
		s.dims.MotorInterspace,
	)

	if !s.hasFirst {
		s.firstX, s.firstY = x, y
		s.hasFirst = true
		s.belts = hardware.NewBeltsByLength(newLeft, newRight, s.dims.MotorInterspace)
		return nil
	}

	left, right := s.belts.Lengths()
	deltaLeftSteps := hardware.MMToSteps(newLeft - left)
	// The right motor is mounted mirrored; its wire sign is inverted.
	deltaRightSteps := -hardware.MMToSteps(newRight - right)

	if deltaLeftSteps > math.MaxInt16 || deltaLeftSteps < math.MinInt16 ||
		deltaRightSteps > math.MaxInt16 || deltaRightSteps < math.MinInt16 {
		return &StepOverflowError{Instructions: len(s.ins), LeftSteps: deltaLeftSteps, RightSteps: deltaRightSteps}
	}

	ls := int16(math.Round(deltaLeftSteps))
	rs := int16(math.Round(deltaRightSteps))
	// Undo the wire inversion before feeding the accumulator.
	s.belts.MoveBySteps(ls, -rs)

	var step [4]byte
	binary.BigEndian.PutUint16(step[0:], uint16(ls))
	binary.BigEndian.PutUint16(step[2:], uint16(rs))
	s.ins = append(s.ins, step[:]...)
	if s.pendingPen != nil {
		s.ins = append(s.ins, *s.pendingPen)
		s.pendingPen = nil
	}
	s.ins = append(s.ins, instruction.OpTerminator)
	return nil
}

// RaisePen lifts the pen off the page (raised true) or lowers it onto the
// page. The pen op is attached to the last encoded instruction; if that
// instruction already carries one, it is replaced. Before any instruction
// exists the op is held and attached to the next one.
func (s *Surface) RaisePen(raised bool) {
	op := byte(instruction.OpPenDown)
	if raised {
		op = instruction.OpPenUp
	}
	if len(s.ins) == 0 {
		s.pendingPen = &op
		return
	}
	// Find the last instruction walking forwards: in a 5-byte instruction
	// the byte before the terminator is a step byte and may equal a pen op.
	last := 0
	for i := 0; i < len(s.ins); i += 5 {
		last = i
		if b := s.ins[i+4]; b == instruction.OpPenUp || b == instruction.OpPenDown {
			i++
		}
	}
	if len(s.ins)-last == 6 {
		s.ins[len(s.ins)-2] = op
		return
	}
	s.ins = append(s.ins[:len(s.ins)-1], op, instruction.OpTerminator)
}

// PopSample removes the last encoded instruction and reverses the belt
// accumulator by its deltas.
func (s *Surface) PopSample() error {
	if len(s.ins) < 5 {
		return ErrNoSamples
	}
	// Walk forwards to the last instruction; the byte before a terminator
	// can be a step byte equal to a pen op.
	start := 0
	for i := 0; i < len(s.ins); i += 5 {
		start = i
		if op := s.ins[i+4]; op == instruction.OpPenUp || op == instruction.OpPenDown {
			i++
		}
	}
	ls := int16(binary.BigEndian.Uint16(s.ins[start:]))
	rs := int16(binary.BigEndian.Uint16(s.ins[start+2:]))
	// Reverse the move; the right motor's wire sign is inverted twice.
	s.belts.MoveBySteps(-ls, rs)
	s.ins = s.ins[:start]
	return nil
}

// XY returns the pen position relative to the top left of the page,
// projected from the belt state.
func (s *Surface) XY() (x, y float64) {
	totalX, totalY := s.belts.Cartesian()
	return totalX - s.dims.PageHorizontalOffset, totalY - s.dims.PageVerticalOffset
}

// Instructions borrows the accumulated instruction bytes.
func (s *Surface) Instructions() []byte {
	return s.ins
}

// FirstSample returns the drawing's starting position, if any sample has
// been taken.
func (s *Surface) FirstSample() (x, y float64, ok bool) {
	return s.firstX, s.firstY, s.hasFirst
}

// PenToStartIns builds the single instruction that moves the pen from the
// page origin to (x, y). It is sent once at the start of a session to
// bring the pen to the drawing's starting point.
func PenToStartIns(dims *hardware.PhysicalDimensions, x, y float64) []byte {
	s := NewSurface(dims)
	s.SampleXY(0, 0)
	s.SampleXY(x, y)
	return s.Instructions()
}
