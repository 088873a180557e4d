package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config alone.
type Flags struct {
	Config    string
	Debug     bool
	Policy    string
	Backend   string
	MeshCells int
	LogFile   string
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Policy, "policy", "", "Validation policy (strict, relaxed)")
	fs.StringVar(&f.Backend, "kernel", "", "Boolean kernel (sdfx, manifold)")
	fs.IntVar(&f.MeshCells, "cells", 0, "Marching cubes cells along the longest axis (sdfx kernel)")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Policy != "" {
		cfg.Validation.Policy = f.Policy
	}
	if f.Backend != "" {
		cfg.Kernel.Backend = f.Backend
	}
	if f.MeshCells > 0 {
		cfg.Kernel.MeshCells = f.MeshCells
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
