// Package hardware describes the physical layout of the plotter and the
// belt geometry derived from it.
package hardware

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// PhysicalDimensions is the physical layout of the machine. The page
// offsets locate the top-left corner of the page relative to the left
// motor shaft. All values are in millimetres.
type PhysicalDimensions struct {
	MotorInterspace      float64 `yaml:"motor_interspace"`
	PageHorizontalOffset float64 `yaml:"page_horizontal_offset"`
	PageVerticalOffset   float64 `yaml:"page_vertical_offset"`
	PageWidth            float64 `yaml:"page_width"`
	PageHeight           float64 `yaml:"page_height"`
}

// Validate reports the first dimension that is not a positive finite
// number.
func (d *PhysicalDimensions) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"motor_interspace", d.MotorInterspace},
		{"page_horizontal_offset", d.PageHorizontalOffset},
		{"page_vertical_offset", d.PageVerticalOffset},
		{"page_width", d.PageWidth},
		{"page_height", d.PageHeight},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return fmt.Errorf("hardware: %s must be a positive finite number, got %v", f.name, f.value)
		}
	}
	return nil
}

// Profile is a machine profile: where to reach the machine and how it is
// physically laid out.
type Profile struct {
	Addr       string             `yaml:"addr"`
	Port       uint16             `yaml:"port"`
	Dimensions PhysicalDimensions `yaml:"dimensions"`
}

// LoadProfile reads and validates a YAML machine profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hardware: read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("hardware: parse profile: %w", err)
	}
	if p.Addr == "" {
		return nil, fmt.Errorf("hardware: profile is missing the machine address")
	}
	if err := p.Dimensions.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfile writes a machine profile as YAML.
func SaveProfile(path string, p *Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("hardware: encode profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("hardware: write profile: %w", err)
	}
	return nil
}
