package drawing

import (
	"encoding/json"
	"fmt"
)

// LinesMethod draws horizontal lines across the page, alternating
// direction each row.
type LinesMethod struct{}

// LinesParams configures the lines generator.
type LinesParams struct {
	NumLines         int     `json:"num_lines"`
	LineSpacing      float64 `json:"line_spacing"`
	HorizontalMargin float64 `json:"horizontal_margin"`
}

func (m *LinesMethod) ID() string   { return "lines" }
func (m *LinesMethod) Name() string { return "Lines" }

func (m *LinesMethod) DefaultParams() any {
	return LinesParams{NumLines: 20, LineSpacing: 10, HorizontalMargin: 15}
}

func (m *LinesMethod) Draw(s *Surface, params json.RawMessage) error {
	p := m.DefaultParams().(LinesParams)
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	if p.NumLines <= 0 || p.LineSpacing <= 0 {
		return fmt.Errorf("lines: num_lines and line_spacing must be positive")
	}

	dims := s.dims
	span := dims.PageWidth - 2*p.HorizontalMargin
	if span <= 0 {
		return fmt.Errorf("lines: horizontal margin %v leaves no page width", p.HorizontalMargin)
	}

	// Each row is sampled in 100 short segments so no single move
	// overflows an instruction's step bounds.
	const samples = 100
	for i := 0; i < p.NumLines; i++ {
		y := float64(i) * p.LineSpacing
		if y > dims.PageHeight {
			break
		}
		for n := 0; n <= samples; n++ {
			x := p.HorizontalMargin + span*float64(n)/samples
			if i%2 == 1 {
				x = dims.PageWidth - p.HorizontalMargin - span*float64(n)/samples
			}
			if err := s.SampleXY(x, y); err != nil {
				return err
			}
		}
		if i == p.NumLines-1 {
			break
		}
		// Step down to the next row in single-millimetre moves.
		cx, cy := s.XY()
		for step := 1.0; step <= p.LineSpacing; step++ {
			if err := s.SampleXY(cx, cy+step); err != nil {
				return err
			}
		}
	}
	return nil
}
