package client

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

// Simulator emulates the firmware end of the protocol in-process. It
// implements Conn, so a Session can be driven against it in tests and by
// frontends that want a dry-run mode. Each host message is handled
// whole, mirroring the firmware's one-message-per-write assumption.
type Simulator struct {
	// Config is reported in the greeting response.
	Config MachineConfiguration
	// Busy makes the simulator refuse the greeting.
	Busy bool

	mu       sync.Mutex
	chunks   [][]byte
	msgs     [][]byte
	paused   bool
	finished bool
	aborted  bool

	resp      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	pending   []byte
}

// NewSimulator returns a simulator reporting a default machine
// configuration.
func NewSimulator() *Simulator {
	return &Simulator{
		Config: MachineConfiguration{
			ProtocolVersion:       1,
			InstructionBufferSize: 4096,
			MaxMotorSpeed:         2000,
			MinPulseWidth:         2500,
		},
		resp:   make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (s *Simulator) Read(p []byte) (int, error) {
	if len(s.pending) > 0 {
		n := copy(p, s.pending)
		s.pending = s.pending[n:]
		return n, nil
	}
	// A closed connection wins over queued responses, as it does for the
	// real firmware.
	select {
	case <-s.closed:
		return 0, io.EOF
	default:
	}
	select {
	case msg := <-s.resp:
		n := copy(p, msg)
		s.pending = msg[n:]
		return n, nil
	case <-s.closed:
		return 0, io.EOF
	}
}

func (s *Simulator) Write(p []byte) (int, error) {
	select {
	case <-s.closed:
		return 0, errors.New("sim: write on closed connection")
	default:
	}
	if len(p) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	s.msgs = append(s.msgs, append([]byte(nil), p...))
	s.mu.Unlock()

	switch p[0] {
	case opGreeting:
		if s.Busy {
			s.push([]byte{opMachineBusy})
			break
		}
		s.push(s.header())
		// The queue is empty; ask for the first chunk.
		s.push([]byte{opRequestChunk})
	case opChunk:
		s.mu.Lock()
		s.chunks = append(s.chunks, append([]byte(nil), p[1:]...))
		s.mu.Unlock()
		// The queue drains instantly; ask for more.
		s.push([]byte{opRequestChunk})
	case opFinished:
		s.mu.Lock()
		s.finished = true
		s.mu.Unlock()
		s.close()
	case opPause:
		s.mu.Lock()
		s.paused = len(p) >= 2 && p[1] == 0x01
		s.mu.Unlock()
	case opAbort:
		s.mu.Lock()
		s.aborted = true
		s.mu.Unlock()
		s.close()
	}
	return len(p), nil
}

// CloseWrite is the host's half-close; the firmware side shuts down in
// response.
func (s *Simulator) CloseWrite() error {
	s.close()
	return nil
}

func (s *Simulator) Close() error {
	s.close()
	return nil
}

func (s *Simulator) close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *Simulator) push(msg []byte) {
	select {
	case s.resp <- msg:
	case <-s.closed:
	}
}

func (s *Simulator) header() []byte {
	h := make([]byte, 19)
	h[0] = opGreetingOK
	binary.BigEndian.PutUint16(h[1:3], s.Config.ProtocolVersion)
	// Bytes 3-6 are reserved.
	binary.BigEndian.PutUint32(h[7:11], s.Config.InstructionBufferSize)
	binary.BigEndian.PutUint32(h[11:15], s.Config.MaxMotorSpeed)
	binary.BigEndian.PutUint32(h[15:19], s.Config.MinPulseWidth)
	return h
}

// Chunks returns the instruction chunks received so far.
func (s *Simulator) Chunks() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.chunks...)
}

// Messages returns every host message as written, in order.
func (s *Simulator) Messages() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.msgs...)
}

// Paused reports the last pause flag received.
func (s *Simulator) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Finished reports whether the host signalled a clean end of
// instructions.
func (s *Simulator) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Aborted reports whether the host forced a shutdown.
func (s *Simulator) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}
