// Package drawing turns pen movements into motor instruction bytes and
// bundles the built-in drawing generators.
//
// Generators treat the surface as write-only: they call SampleXY and
// RaisePen and never inspect the encoded bytes. A generator that wants
// the drawing to start at the page origin must sample (0, 0) first; the
// first sample anchors the pen position established out of band by the
// session bootstrap.
package drawing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blot-bot-org/core-lib/hardware"
)

// Method is a drawing generator: a pure producer of pen movements from
// parameters.
type Method interface {
	// ID is the stable backend identifier of the method.
	ID() string
	// Name is the formatted display name.
	Name() string
	// DefaultParams returns the method's JSON-encodable default
	// parameters, used by frontends to render editing controls.
	DefaultParams() any
	// Draw emits the drawing onto the surface. params is the JSON
	// encoding of the method's parameter struct; nil selects defaults.
	Draw(s *Surface, params json.RawMessage) error
}

// Methods returns the built-in generators.
func Methods() []Method {
	return []Method{
		&LinesMethod{},
		&WavesMethod{},
		&QRMethod{},
	}
}

// MethodByID returns the built-in generator with the given ID.
func MethodByID(id string) (Method, error) {
	for _, m := range Methods() {
		if m.ID() == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("drawing: unknown method %q", id)
}

// GenInstructions runs a generator against a fresh surface and returns
// the instruction bytes together with the drawing's starting position.
func GenInstructions(m Method, dims *hardware.PhysicalDimensions, params json.RawMessage) (ins []byte, initX, initY float64, err error) {
	s := NewSurface(dims)
	if err := m.Draw(s, params); err != nil {
		return nil, 0, 0, fmt.Errorf("drawing: %s: %w", m.ID(), err)
	}
	x, y, ok := s.FirstSample()
	if !ok {
		return nil, 0, 0, errors.New("drawing: generator took no samples")
	}
	return s.Instructions(), x, y, nil
}

// decodeParams unmarshals params over defaults, leaving defaults intact
// when params is nil.
func decodeParams(params json.RawMessage, into any) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, into)
}
