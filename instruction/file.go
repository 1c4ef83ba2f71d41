package instruction

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// fileVersion is the on-disk envelope version.
const fileVersion = 1

// envelope is the CBOR file layout for a persisted instruction set.
type envelope struct {
	Version int     `cbor:"v"`
	Binary  []byte  `cbor:"ins"`
	InitX   float64 `cbor:"init_x"`
	InitY   float64 `cbor:"init_y"`
}

// Save writes the instruction set to path so a compiled drawing can
// outlive the process.
func (s *Set) Save(path string) error {
	data, err := cbor.Marshal(envelope{
		Version: fileVersion,
		Binary:  s.binary,
		InitX:   s.initX,
		InitY:   s.initY,
	})
	if err != nil {
		return fmt.Errorf("instruction: encode set: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("instruction: write set: %w", err)
	}
	return nil
}

// Load reads a persisted instruction set and re-validates it.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("instruction: read set: %w", err)
	}
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("instruction: decode set: %w", err)
	}
	if env.Version != fileVersion {
		return nil, fmt.Errorf("instruction: unsupported set file version %d", env.Version)
	}
	return NewSet(env.Binary, env.InitX, env.InitY)
}
