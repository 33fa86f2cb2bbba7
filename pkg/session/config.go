package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DebugFormat selects which debug-line sink a Session drives.
type DebugFormat string

const (
	DebugNone  DebugFormat = "none"
	DebugDWARF DebugFormat = "dwarf"
	DebugPlan9 DebugFormat = "plan9"
)

// Config is this backend's on-disk configuration, loaded via --config.
// Its knobs are the debug-line format to emit, the Plan9 quantum, and a
// code-buffer capacity hint, mirroring how small this backend's actual
// surface is: most "policy" here is fixed by the ISA itself, not
// configurable.
type Config struct {
	Debug struct {
		Format DebugFormat `yaml:"format"`
		// Quantum is the Plan9 pcline table's per-architecture quantum:
		// the smallest instruction length the target ISA ever emits.
		// Ignored when Format isn't "plan9". Defaults to 1 (x86-64's
		// variable-length encoding has no fixed minimum above one byte).
		Quantum int `yaml:"quantum"`
	} `yaml:"debug"`
	CapacityHint int `yaml:"capacity_hint"`
}

// DefaultConfig returns the zero-config behavior: no debug info, no
// buffer pre-sizing hint.
func DefaultConfig() Config {
	c := Config{}
	c.Debug.Format = DebugNone
	c.Debug.Quantum = 1
	return c
}

// LoadConfig reads and parses a YAML config file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("session: reading config %s: %w", path, err)
	}
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("session: parsing config %s: %w", path, err)
	}
	if c.Debug.Format == "" {
		c.Debug.Format = DebugNone
	}
	if c.Debug.Quantum == 0 {
		c.Debug.Quantum = 1
	}
	return c, nil
}
