package vm

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ---------------------------------------------------------------------------
// Engine configuration
// ---------------------------------------------------------------------------

// Config controls engine construction. Zero-valued fields fall back to the
// defaults below.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Trace  TraceConfig  `toml:"trace"`
}

// EngineConfig sets initial capacities. Both stacks still grow without
// bound; recursion depth is limited only by available memory.
type EngineConfig struct {
	StackCapacity int `toml:"stack-capacity"`
	FrameCapacity int `toml:"frame-capacity"`
}

// TraceConfig enables the logging tracer on engines built from this
// config.
type TraceConfig struct {
	Enabled bool `toml:"enabled"`
}

const (
	defaultStackCapacity = 64
	defaultFrameCapacity = 16
)

// DefaultConfig returns the configuration used by NewEngine.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			StackCapacity: defaultStackCapacity,
			FrameCapacity: defaultFrameCapacity,
		},
	}
}

func (c *Config) applyDefaults() {
	if c.Engine.StackCapacity <= 0 {
		c.Engine.StackCapacity = defaultStackCapacity
	}
	if c.Engine.FrameCapacity <= 0 {
		c.Engine.FrameCapacity = defaultFrameCapacity
	}
}

// LoadConfig parses a planter.toml file from the given directory.
func LoadConfig(dir string) (Config, error) {
	path := filepath.Join(dir, "planter.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}
