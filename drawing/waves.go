package drawing

import (
	"encoding/json"
	"fmt"
	"math"
)

// WavesMethod draws rows of sine waves across the page, alternating
// direction each row.
type WavesMethod struct{}

// WavesParams configures the waves generator.
type WavesParams struct {
	NumWaves          int     `json:"num_waves"`
	HorizontalSamples int     `json:"horizontal_samples"`
	HorizontalMargin  float64 `json:"horizontal_margin"`
	VerticalMargin    float64 `json:"vertical_margin"`
	WaveAmplifier     float64 `json:"wave_amplifier"`
	WaveFrequency     float64 `json:"wave_frequency"`
}

func (m *WavesMethod) ID() string   { return "waves" }
func (m *WavesMethod) Name() string { return "Waves" }

func (m *WavesMethod) DefaultParams() any {
	return WavesParams{
		NumWaves:          24,
		HorizontalSamples: 60,
		HorizontalMargin:  15,
		VerticalMargin:    15,
		WaveAmplifier:     20,
		WaveFrequency:     1,
	}
}

func (m *WavesMethod) Draw(s *Surface, params json.RawMessage) error {
	p := m.DefaultParams().(WavesParams)
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	if p.NumWaves <= 0 || p.HorizontalSamples <= 0 {
		return fmt.Errorf("waves: num_waves and horizontal_samples must be positive")
	}

	dims := s.dims
	totalWidth := dims.PageWidth - 2*p.HorizontalMargin
	totalHeight := dims.PageHeight - 2*p.VerticalMargin
	if totalWidth <= 0 || totalHeight <= 0 {
		return fmt.Errorf("waves: margins leave no page area")
	}

	heightPerWave := totalHeight / float64(p.NumWaves)
	mmPerSample := totalWidth / float64(p.HorizontalSamples)
	amplitude := p.WaveAmplifier / 10

	// Each sample is subdivided so no single move overflows an
	// instruction's step bounds.
	const iterations = 10
	for row := 0; row < p.NumWaves; row++ {
		reversed := row%2 == 1
		baseY := p.VerticalMargin + (float64(row)+0.5)*heightPerWave
		for sample := 0; sample < p.HorizontalSamples; sample++ {
			startX := p.HorizontalMargin + float64(sample)*mmPerSample
			if reversed {
				startX = dims.PageWidth - p.HorizontalMargin - float64(sample)*mmPerSample
			}
			stepX := mmPerSample / iterations
			for i := 0; i < iterations; i++ {
				t := float64(sample*iterations+i) * p.WaveFrequency
				y := baseY + math.Sin(t)*amplitude
				x := startX + float64(i)*stepX
				if reversed {
					x = startX - float64(i+1)*stepX
				}
				if err := s.SampleXY(x, y); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
