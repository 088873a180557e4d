package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/meshbool/pkg/validate"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Validation.Policy != "strict" {
		t.Errorf("expected strict policy, got %s", cfg.Validation.Policy)
	}
	if cfg.Validation.ProbeOffset != 0.5 {
		t.Errorf("expected probe offset 0.5, got %g", cfg.Validation.ProbeOffset)
	}
	if cfg.Kernel.Backend != "sdfx" {
		t.Errorf("expected sdfx backend, got %s", cfg.Kernel.Backend)
	}
	if cfg.Engine.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Engine.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	p, err := cfg.Policy()
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	if p != validate.Strict() {
		t.Errorf("Policy() = %+v, want Strict()", p)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshbool.yaml")
	content := `
validation:
  policy: relaxed
  probe_offset: 2
kernel:
  mesh_cells: 32
engine:
  timeout: 10s
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(&Flags{Config: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Validation.Policy != "relaxed" {
		t.Errorf("expected relaxed policy, got %s", cfg.Validation.Policy)
	}
	if cfg.Kernel.MeshCells != 32 {
		t.Errorf("expected 32 cells, got %d", cfg.Kernel.MeshCells)
	}
	if cfg.Engine.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Engine.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
	// Missing keys keep their defaults.
	if cfg.Kernel.Backend != "sdfx" {
		t.Errorf("expected default backend, got %s", cfg.Kernel.Backend)
	}

	p, err := cfg.Policy()
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	if !p.CorrectPolarity || p.RequireWatertight || p.ProbeOffset != 2 {
		t.Errorf("Policy() = %+v", p)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshbool.yaml")
	content := "validation:\n  policy: relaxed\nkernel:\n  mesh_cells: 32\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.Register(fs)
	args := []string{"-config", path, "-policy", "strict", "-cells", "48", "-debug"}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(&f)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Validation.Policy != "strict" {
		t.Errorf("expected flag policy strict, got %s", cfg.Validation.Policy)
	}
	if cfg.Kernel.MeshCells != 48 {
		t.Errorf("expected 48 cells, got %d", cfg.Kernel.MeshCells)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Validation.Policy != "strict" {
		t.Errorf("expected defaults, got policy %s", cfg.Validation.Policy)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml")},
		{"bad yaml", write("bad.yaml", "validation: [\n")},
		{"unknown policy", write("policy.yaml", "validation:\n  policy: lenient\n")},
		{"unknown backend", write("backend.yaml", "kernel:\n  backend: cgal\n")},
		{"too few cells", write("cells.yaml", "kernel:\n  mesh_cells: 2\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(&Flags{Config: tt.path}); err == nil {
				t.Error("Load() error = nil")
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "meshbool.yaml")

	cfg := Default()
	cfg.Validation.Policy = "relaxed"
	cfg.Kernel.Backend = "manifold"
	cfg.Engine.Timeout = 2 * time.Second

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := Load(&Flags{Config: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}
