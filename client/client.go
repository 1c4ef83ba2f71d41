// Package client implements the streaming protocol that drives a drawing
// machine. The firmware pulls instruction chunks on demand over a single
// connection while the host injects pause, resume and abort controls and
// publishes progress.
package client

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blot-bot-org/core-lib/drawing"
	"github.com/blot-bot-org/core-lib/hardware"
	"github.com/blot-bot-org/core-lib/instruction"
)

// Log is the package's diagnostic logger. Progress events go to the
// per-call emit callback instead.
var Log = zerolog.Nop()

// Wire opcodes. Every message is one opcode byte optionally followed by
// a payload; a single message is always emitted by one write.
const (
	opGreeting     = 0x00 // host→fw, followed by the greeting tail
	opMachineBusy  = 0x00 // fw→host, greeting refused
	opGreetingOK   = 0x01 // fw→host, followed by the machine config header
	opChunk        = 0x01 // host→fw, followed by the chunk bytes
	opFinished     = 0x02 // host→fw, end of instructions
	opRequestChunk = 0x03 // fw→host, queue has space
	opPause        = 0x04 // host→fw, followed by the pause flag
	opAbort        = 0x05 // host→fw, force shutdown

	greetingTail = 0x01
)

// readBufferSize covers the greeting header; every later fw→host message
// is a single opcode byte.
const readBufferSize = 255

// minInstructionBuffer is the smallest firmware queue the host will
// stream into.
const minInstructionBuffer = 1024

// MachineConfiguration is reported by the firmware in the greeting
// response.
type MachineConfiguration struct {
	ProtocolVersion       uint16
	InstructionBufferSize uint32 // bytes of on-device queue
	MaxMotorSpeed         uint32 // steps per second
	MinPulseWidth         uint32 // nanoseconds
}

// Conn is the transport to the machine: a duplex byte stream whose write
// side can be half-closed to signal the end of the session.
type Conn interface {
	io.ReadWriteCloser
	CloseWrite() error
}

// Session is one connection to the drawing machine. The listener
// goroutine owns the read side; every write, from the listener or from a
// control call, is serialised by an internal mutex so a message is never
// split or interleaved.
type Session struct {
	conn   Conn
	config MachineConfiguration

	// writeMu serialises all writes to conn.
	writeMu sync.Mutex

	// idxMu guards nextChunk, mutated by the listener and readable by
	// controls for progress.
	idxMu     sync.Mutex
	nextChunk int
}

// New connects to the machine, performs the greeting handshake and
// returns a running session.
func New(addr string, port uint16) (*Session, error) {
	conn, err := net.Dial("tcp", net.JoinHostPort(addr, strconv.Itoa(int(port))))
	if err != nil {
		return nil, &MachineNotFoundError{Addr: addr, Port: port}
	}
	return NewWithConn(conn.(*net.TCPConn))
}

// NewWithConn performs the greeting handshake over an established
// transport. On failure the transport is closed.
func NewWithConn(conn Conn) (*Session, error) {
	s := &Session{conn: conn}
	if err := s.greet(); err != nil {
		conn.Close()
		return nil, err
	}
	Log.Debug().
		Uint16("protocol_version", s.config.ProtocolVersion).
		Uint32("ins_buffer_size", s.config.InstructionBufferSize).
		Uint32("max_motor_speed", s.config.MaxMotorSpeed).
		Msg("session greeted")
	return s, nil
}

func (s *Session) greet() error {
	if _, err := s.conn.Write([]byte{opGreeting, greetingTail}); err != nil {
		return fmt.Errorf("client: send greeting: %w", err)
	}
	buf := make([]byte, readBufferSize)
	n, err := s.conn.Read(buf)
	if err != nil || n == 0 {
		return ErrGreetingTimedOut
	}
	switch buf[0] {
	case opGreetingOK:
		s.config = readHeader(buf[:n])
		if s.config.InstructionBufferSize < minInstructionBuffer {
			return &InsBufferSmallError{Size: s.config.InstructionBufferSize}
		}
		return nil
	case opMachineBusy:
		return ErrMachineInUse
	default:
		return &InvalidBytesError{Reason: "sent a greeting but the response header was not 0x01"}
	}
}

// Config returns the machine configuration from the handshake.
func (s *Session) Config() MachineConfiguration {
	return s.config
}

// Listen runs the pull-driven transfer loop until the drawing finishes,
// the session is aborted or the connection fails. It blocks; controls
// are issued concurrently through Pause and Abort. Progress events are
// delivered to emit as JSON strings.
func (s *Session) Listen(set *instruction.Set, emit func(string)) error {
	bounds, err := set.BufferBounds(int(s.config.InstructionBufferSize))
	if err != nil {
		// A stream the machine cannot buffer is a generator bug; shut
		// the machine down rather than leaving it waiting for chunks.
		s.Abort(emit)
		return err
	}

	buf := make([]byte, readBufferSize)
	for {
		n, err := s.conn.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				Log.Debug().Msg("connection closed, listener exiting")
				return nil
			}
			return fmt.Errorf("client: read: %w", err)
		}
		if n == 0 || buf[0] != opRequestChunk {
			continue
		}

		s.idxMu.Lock()
		idx := s.nextChunk
		s.nextChunk++
		s.idxMu.Unlock()

		if idx == len(bounds) {
			s.writeMu.Lock()
			_, werr := s.conn.Write([]byte{opFinished})
			cerr := s.conn.CloseWrite()
			s.writeMu.Unlock()
			emitEvent(emit, simpleEvent{Event: "drawing_finished"})
			Log.Debug().Int("chunks", len(bounds)).Msg("drawing finished")
			if werr != nil {
				return fmt.Errorf("client: send finish: %w", werr)
			}
			return cerr
		}

		b := bounds[idx]
		msg := make([]byte, 1+b.End-b.Start+1)
		msg[0] = opChunk
		copy(msg[1:], set.Binary()[b.Start:b.End+1])

		s.writeMu.Lock()
		_, err = s.conn.Write(msg)
		s.writeMu.Unlock()
		if err != nil {
			return fmt.Errorf("client: send chunk: %w", err)
		}

		remaining := instruction.EstimateDrawTime(set.Binary()[b.Start:], s.config.MaxMotorSpeed, s.config.MinPulseWidth)
		emitEvent(emit, drawingEvent{
			Event:         "drawing",
			InsPos:        fmt.Sprintf("%d → %d (%d/%d)", b.Start, b.End, idx+1, len(bounds)),
			SecsRemaining: uint64((remaining + time.Second - 1) / time.Second),
		})
		Log.Debug().Int("chunk", idx+1).Int("of", len(bounds)).Msg("sent chunk")
	}
}

// Pause pauses (true) or resumes (false) the drawing. The pause is
// optimistic: the firmware applies it when it next consults its state
// and sends no acknowledgement.
func (s *Session) Pause(shouldPause bool, emit func(string)) error {
	flag := byte(0x00)
	paused := "0"
	if shouldPause {
		flag = 0x01
		paused = "1"
	}
	s.writeMu.Lock()
	_, err := s.conn.Write([]byte{opPause, flag})
	s.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("client: send pause: %w", err)
	}
	emitEvent(emit, pauseEvent{Event: "pause", IsPaused: paused})
	return nil
}

// Abort forces the machine to shut down and half-closes the write side;
// the listener exits when the machine closes the connection.
func (s *Session) Abort(emit func(string)) error {
	s.writeMu.Lock()
	_, err := s.conn.Write([]byte{opAbort})
	cerr := s.conn.CloseWrite()
	s.writeMu.Unlock()
	emitEvent(emit, simpleEvent{Event: "shutdown"})
	if err != nil {
		return fmt.Errorf("client: send abort: %w", err)
	}
	return cerr
}

// Progress returns how many chunk requests the listener has taken from
// the firmware. A request is counted before it is answered, and the
// final request, answered with the end-of-instructions opcode, is
// counted too, so a finished session reports one more than its number
// of chunks.
func (s *Session) Progress() int {
	s.idxMu.Lock()
	defer s.idxMu.Unlock()
	return s.nextChunk
}

// Close releases the connection. It must be called on every exit path.
func (s *Session) Close() error {
	return s.conn.Close()
}

// MoveToStart opens a throwaway connection and moves the pen from its
// rest position to (x, y), the drawing's starting point. It blocks until
// the move has been handed to the firmware.
func MoveToStart(addr string, port uint16, dims *hardware.PhysicalDimensions, x, y float64) error {
	conn, err := net.Dial("tcp", net.JoinHostPort(addr, strconv.Itoa(int(port))))
	if err != nil {
		return &MachineNotFoundError{Addr: addr, Port: port}
	}
	tcp := conn.(*net.TCPConn)
	defer tcp.Close()
	return moveToStart(tcp, dims, x, y)
}

func moveToStart(conn Conn, dims *hardware.PhysicalDimensions, x, y float64) error {
	raw := drawing.PenToStartIns(dims, x, y)
	set, err := instruction.NewSet(raw, 0, 0)
	if err != nil {
		return &InvalidBytesError{Reason: fmt.Sprintf("instructions to move pen to starting position were invalid: %v", err)}
	}

	if _, err := conn.Write([]byte{opGreeting, greetingTail}); err != nil {
		return fmt.Errorf("client: send greeting: %w", err)
	}

	// A lightweight blocking loop with no concurrent controls.
	sentMoveBytes := false
	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if err != nil || n == 0 {
			return ErrGreetingTimedOut
		}
		switch buf[0] {
		case opRequestChunk:
			if !sentMoveBytes {
				msg := append([]byte{opChunk}, set.Binary()...)
				if _, err := conn.Write(msg); err != nil {
					return fmt.Errorf("client: send move: %w", err)
				}
				sentMoveBytes = true
			} else {
				if _, err := conn.Write([]byte{opFinished}); err != nil {
					return fmt.Errorf("client: send finish: %w", err)
				}
				return nil
			}
		case opMachineBusy:
			return ErrMachineInUse
		case opGreetingOK:
			// The move is sent as a single chunk; it must fit the
			// machine's buffer.
			cfg := readHeader(buf[:n])
			if int(cfg.InstructionBufferSize) < len(set.Binary()) {
				return &InsBufferSmallError{Size: cfg.InstructionBufferSize}
			}
		}
	}
}

// readHeader extracts the machine configuration from the greeting
// response. Byte 0 is the opcode; bytes 3-6 are reserved.
func readHeader(header []byte) MachineConfiguration {
	padded := header
	if len(padded) < 19 {
		padded = make([]byte, 19)
		copy(padded, header)
	}
	return MachineConfiguration{
		ProtocolVersion:       binary.BigEndian.Uint16(padded[1:3]),
		InstructionBufferSize: binary.BigEndian.Uint32(padded[7:11]),
		MaxMotorSpeed:         binary.BigEndian.Uint32(padded[11:15]),
		MinPulseWidth:         binary.BigEndian.Uint32(padded[15:19]),
	}
}
