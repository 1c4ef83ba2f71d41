// Package plugin defines the capability surface handed to user-authored
// drawing generators and replays their recorded movements onto a
// surface.
//
// A plugin exposes two entry points to its host: params, returning a
// JSON-encodable parameter schema, and run, which is handed a capability
// object exposing exactly Goto and RaisePen. The script engine embedding
// itself lives outside this module; plugins interact with the core only
// through the types here, and plugin failures travel as strings.
package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/blot-bot-org/core-lib/drawing"
	"github.com/blot-bot-org/core-lib/hardware"
)

// Instruction kinds.
const (
	KindRaisePen = "raise_pen"
	KindSampleXY = "sample_xy"
)

// Instruction is one recorded call against the capability object.
type Instruction struct {
	Kind   string   `json:"kind"`
	Raised *bool    `json:"raised,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
}

// RaisePenInstruction records a pen lift or drop.
func RaisePenInstruction(raised bool) Instruction {
	return Instruction{Kind: KindRaisePen, Raised: &raised}
}

// SampleInstruction records a pen move.
func SampleInstruction(x, y float64) Instruction {
	return Instruction{Kind: KindSampleXY, X: &x, Y: &y}
}

// Recorder is the capability object given to a running plugin. It is
// write-only: plugins append movements and never see instruction bytes.
type Recorder struct {
	ins []Instruction
}

// RaisePen records a pen lift (raised true) or drop.
func (r *Recorder) RaisePen(raised bool) {
	r.ins = append(r.ins, RaisePenInstruction(raised))
}

// Goto records a move to (x, y) in page millimetres.
func (r *Recorder) Goto(x, y float64) {
	r.ins = append(r.ins, SampleInstruction(x, y))
}

// Instructions returns the recorded movements in call order.
func (r *Recorder) Instructions() []Instruction {
	return r.ins
}

// Apply replays recorded movements onto a surface. Goto maps to a
// sample; RaisePen maps to a pen op on the last emitted instruction.
func Apply(s *drawing.Surface, ins []Instruction) error {
	for i, in := range ins {
		switch in.Kind {
		case KindRaisePen:
			if in.Raised == nil {
				return fmt.Errorf("plugin: instruction %d: raise_pen without a raised flag", i)
			}
			s.RaisePen(*in.Raised)
		case KindSampleXY:
			if in.X == nil || in.Y == nil {
				return fmt.Errorf("plugin: instruction %d: sample_xy without coordinates", i)
			}
			if err := s.SampleXY(*in.X, *in.Y); err != nil {
				return fmt.Errorf("plugin: instruction %d: %w", i, err)
			}
		default:
			return fmt.Errorf("plugin: instruction %d: unknown kind %q", i, in.Kind)
		}
	}
	return nil
}

// Recorded is a finished plugin run packaged as a drawing method, so
// custom drawings flow through the same generator pipeline as the
// built-ins.
type Recorded struct {
	PluginID     string
	DisplayName  string
	ParamsSchema json.RawMessage
	Movements    []Instruction
}

func (r *Recorded) ID() string {
	if r.PluginID == "" {
		return "custom"
	}
	return r.PluginID
}

func (r *Recorded) Name() string {
	if r.DisplayName == "" {
		return "Custom"
	}
	return r.DisplayName
}

// DefaultParams returns the plugin's own parameter schema; the host
// passes it through to the frontend untouched.
func (r *Recorded) DefaultParams() any {
	return r.ParamsSchema
}

// Draw replays the recorded movements. The movements were produced by a
// plugin run that already consumed its parameters, so params is ignored.
func (r *Recorded) Draw(s *drawing.Surface, params json.RawMessage) error {
	return Apply(s, r.Movements)
}

// GenInstructions replays recorded movements against a fresh surface and
// returns the instruction bytes with the drawing's starting position.
func GenInstructions(dims *hardware.PhysicalDimensions, ins []Instruction) ([]byte, float64, float64, error) {
	return drawing.GenInstructions(&Recorded{Movements: ins}, dims, nil)
}
