package drawing

import (
	"encoding/json"
	"fmt"

	"github.com/kortschak/qr"
)

// QRMethod draws a QR code by filling black module runs with horizontal
// strokes, sweeping direction every other line.
type QRMethod struct{}

// QRParams configures the QR generator.
type QRParams struct {
	Content    string  `json:"content"`
	ModuleSize float64 `json:"module_size"`
	MarginX    float64 `json:"margin_x"`
	MarginY    float64 `json:"margin_y"`
}

func (m *QRMethod) ID() string   { return "qr" }
func (m *QRMethod) Name() string { return "QR Code" }

func (m *QRMethod) DefaultParams() any {
	return QRParams{Content: "https://blot-bot.org", ModuleSize: 4, MarginX: 30, MarginY: 30}
}

func (m *QRMethod) Draw(s *Surface, params json.RawMessage) error {
	p := m.DefaultParams().(QRParams)
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	if p.Content == "" {
		return fmt.Errorf("qr: content must not be empty")
	}
	if p.ModuleSize <= 0 {
		return fmt.Errorf("qr: module_size must be positive")
	}

	code, err := qr.Encode(p.Content, qr.M)
	if err != nil {
		return fmt.Errorf("qr: %w", err)
	}
	dim := code.Size
	if side := float64(dim) * p.ModuleSize; p.MarginX+side > s.dims.PageWidth || p.MarginY+side > s.dims.PageHeight {
		return fmt.Errorf("qr: code of %d modules at %vmm does not fit the page", dim, p.ModuleSize)
	}

	// Anchor the drawing before the first stroke.
	if err := s.SampleXY(p.MarginX, p.MarginY); err != nil {
		return err
	}

	stroke := func(x0, x1, y float64) error {
		s.RaisePen(true)
		if err := s.SampleXY(x0, y); err != nil {
			return err
		}
		s.RaisePen(false)
		return s.SampleXY(x1, y)
	}

	for line := 0; line < dim; line++ {
		y := p.MarginY + (float64(line)+0.5)*p.ModuleSize
		rev := line%2 != 0
		run := -1
		for i := 0; i <= dim; i++ {
			x := i
			if rev {
				x = dim - 1 - i
			}
			on := i < dim && code.Black(x, line)
			switch {
			case run < 0 && on:
				run = x
			case run >= 0 && !on:
				// run holds the first module of the run in sweep order;
				// x is the first empty column after it.
				x0 := p.MarginX + float64(run)*p.ModuleSize
				x1 := p.MarginX + float64(x)*p.ModuleSize
				if rev {
					x0 = p.MarginX + float64(run+1)*p.ModuleSize
					x1 = p.MarginX + float64(x+1)*p.ModuleSize
				}
				if err := stroke(x0, x1, y); err != nil {
					return err
				}
				run = -1
			}
		}
	}
	s.RaisePen(true)
	return nil
}
