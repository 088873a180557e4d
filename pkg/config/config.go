// Package config handles meshbool configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/chazu/meshbool/pkg/validate"
)

// Config holds all meshbool settings.
type Config struct {
	Validation ValidationConfig `yaml:"validation"`
	Kernel     KernelConfig     `yaml:"kernel"`
	Engine     EngineConfig     `yaml:"engine"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ValidationConfig selects the validity gate policy.
type ValidationConfig struct {
	Policy      string  `yaml:"policy"` // strict or relaxed
	ProbeOffset float64 `yaml:"probe_offset"`
}

// KernelConfig selects the boolean kernel.
type KernelConfig struct {
	Backend   string `yaml:"backend"` // sdfx or manifold
	MeshCells int    `yaml:"mesh_cells"`
}

// EngineConfig holds scene script settings.
type EngineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Validation: ValidationConfig{
			Policy:      "strict",
			ProbeOffset: validate.DefaultProbeOffset,
		},
		Kernel: KernelConfig{
			Backend:   "sdfx",
			MeshCells: 64,
		},
		Engine: EngineConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Policy returns the gate policy described by the validation section.
func (c *Config) Policy() (validate.Policy, error) {
	p, ok := validate.PolicyByName(c.Validation.Policy)
	if !ok {
		return validate.Policy{}, fmt.Errorf("config: unknown validation policy %q", c.Validation.Policy)
	}
	if c.Validation.ProbeOffset > 0 {
		p.ProbeOffset = c.Validation.ProbeOffset
	}
	return p, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	switch c.Kernel.Backend {
	case "sdfx", "manifold":
	default:
		return fmt.Errorf("config: unknown kernel backend %q", c.Kernel.Backend)
	}
	if c.Kernel.MeshCells < 8 {
		return fmt.Errorf("config: kernel.mesh_cells must be at least 8, got %d", c.Kernel.MeshCells)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("config: engine.timeout must be positive, got %s", c.Engine.Timeout)
	}
	return nil
}
