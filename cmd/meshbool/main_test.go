package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshbool/pkg/config"
	"github.com/chazu/meshbool/pkg/engine"
	"github.com/chazu/meshbool/pkg/mesh"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

// TestRunOverlapExample exercises the full pipeline: script → engine → gate
// → sdfx kernel → STL files.
func TestRunOverlapExample(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run([]string{"run", "-o", dir, "-cells", "16", "../../examples/overlap.mbl"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run exited %d: %s", code, stderr.String())
	}

	for _, name := range []string{"union", "difference", "intersection", "xor"} {
		path := filepath.Join(dir, name+".stl")
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("missing output %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("output %s is empty", name)
		}
		if !strings.Contains(stdout.String(), path) {
			t.Errorf("stdout does not list %s", path)
		}
	}
}

func TestRunSkipsEmptyOutputs(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if code := run([]string{"run", "-o", dir, "../../examples/disjoint.mbl"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run exited %d: %s", code, stderr.String())
	}
	lines := strings.Fields(stdout.String())
	if len(lines) != 3 {
		t.Errorf("wrote %d files, want 3: %v", len(lines), lines)
	}
	if _, err := os.Stat(filepath.Join(dir, "none.stl")); !os.IsNotExist(err) {
		t.Error("empty intersection was written")
	}
}

func TestCheckExample(t *testing.T) {
	tests := []struct {
		policy   string
		wantCode int
		want     map[string]string
	}{
		{
			policy:   "strict",
			wantCode: 2,
			want: map[string]string{
				"cube":             "valid",
				"inverted":         "invalid: misoriented",
				"overlapping-soup": "invalid: self-intersecting",
				"two-islands":      "valid (2 component(s))",
				"cavity":           "valid (2 component(s))",
			},
		},
		{
			policy:   "relaxed",
			wantCode: 2,
			want: map[string]string{
				"inverted":         "valid (1 component(s), polarity corrected)",
				"overlapping-soup": "invalid: self-intersecting",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			isolateConfig(t)
			var stdout, stderr bytes.Buffer
			code := run([]string{"check", "-policy", tt.policy, "../../examples/validity.mbl"}, &stdout, &stderr)
			if code != tt.wantCode {
				t.Fatalf("check exited %d, want %d: %s", code, tt.wantCode, stderr.String())
			}

			lines := map[string]string{}
			for _, line := range strings.Split(strings.TrimSpace(stdout.String()), "\n") {
				name, report, _ := strings.Cut(line, " ")
				lines[name] = strings.TrimSpace(report)
			}
			for name, want := range tt.want {
				if !strings.HasPrefix(lines[name], want) {
					t.Errorf("%s: report %q, want prefix %q", name, lines[name], want)
				}
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	isolateConfig(t)
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 1},
		{"unknown command", []string{"render"}, 1},
		{"help", []string{"help"}, 0},
		{"missing script", []string{"run"}, 1},
		{"bad policy", []string{"check", "-policy", "lenient", "x.mbl"}, 1},
		{"missing file", []string{"check", "nope.mbl"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.code {
				t.Errorf("run(%v) = %d, want %d", tt.args, code, tt.code)
			}
		})
	}
}

func TestConfigCommand(t *testing.T) {
	isolateConfig(t)

	t.Run("print", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		if code := run([]string{"config", "-cells", "32"}, &stdout, &stderr); code != 0 {
			t.Fatalf("config exited %d: %s", code, stderr.String())
		}
		if !strings.Contains(stdout.String(), "mesh_cells: 32") {
			t.Errorf("stdout = %q", stdout.String())
		}
	})

	t.Run("write file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "meshbool.yaml")
		var stdout, stderr bytes.Buffer
		if code := run([]string{"config", "-policy", "relaxed", "-o", path}, &stdout, &stderr); code != 0 {
			t.Fatalf("config exited %d: %s", code, stderr.String())
		}
		cfg, err := config.Load(&config.Flags{Config: path})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Validation.Policy != "relaxed" {
			t.Errorf("policy = %q, want relaxed", cfg.Validation.Policy)
		}
	})

	t.Run("save", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		if code := run([]string{"config", "-kernel", "sdfx", "-cells", "24", "-save"}, &stdout, &stderr); code != 0 {
			t.Fatalf("config exited %d: %s", code, stderr.String())
		}
		want := filepath.Join(config.ConfigDir(), config.FileName)
		if strings.TrimSpace(stdout.String()) != want {
			t.Errorf("stdout = %q, want %q", stdout.String(), want)
		}
		cfg, err := config.Load(nil)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Kernel.MeshCells != 24 {
			t.Errorf("saved cells = %d, want 24", cfg.Kernel.MeshCells)
		}
	})

	t.Run("extra argument", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		if code := run([]string{"config", "x.mbl"}, &stdout, &stderr); code != 1 {
			t.Errorf("config exited %d, want 1", code)
		}
	})
}

func TestScriptErrorReported(t *testing.T) {
	app, err := NewApp(config.Default(), nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	_, err = app.Evaluate(`(cube :size "big")`)
	se, ok := err.(*ScriptError)
	if !ok {
		t.Fatalf("Evaluate() error = %v, want *ScriptError", err)
	}
	if len(se.Errors) == 0 || !strings.Contains(se.Error(), "script failed") {
		t.Errorf("ScriptError = %v", se)
	}
}

func TestManifoldBackendWithoutTag(t *testing.T) {
	cfg := config.Default()
	cfg.Kernel.Backend = "manifold"
	if _, err := NewApp(cfg, nil); err == nil {
		t.Skip("manifold kernel available in this build")
	}
}

func TestToTriangles(t *testing.T) {
	m := mesh.Tetrahedron()
	tris := toTriangles(m)
	if len(tris) != 4 {
		t.Fatalf("got %d triangles, want 4", len(tris))
	}
	if tris[3][0] != (v3.Vec{X: 1}) || tris[3][2] != (v3.Vec{Z: 1}) {
		t.Errorf("triangle 3 = %v", *tris[3])
	}

	app, _ := NewApp(config.Default(), nil)
	written, err := app.WriteSTL(t.TempDir(), &engine.Scene{Outputs: []engine.Output{{Name: "../escape", Mesh: m}}})
	if err != nil {
		t.Fatalf("WriteSTL() error = %v", err)
	}
	if len(written) != 1 || filepath.Base(written[0]) != "escape.stl" {
		t.Errorf("written = %v", written)
	}
}
