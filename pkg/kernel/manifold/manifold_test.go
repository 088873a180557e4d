//go:build manifold

package manifold

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/mesh"
	"github.com/chazu/meshbool/pkg/validate"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func TestBooleanOverlappingCubes(t *testing.T) {
	k := mustNew(t)
	a := mesh.Cube(v3.Vec{}, 1)
	b := mesh.Cube(v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, 1)

	tests := []struct {
		op      kernel.Op
		wantVol float64
	}{
		{kernel.Union, 1.875},
		{kernel.Subtraction, 0.875},
		{kernel.Intersection, 0.125},
		{kernel.XOR, 1.75},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			out, err := k.Boolean(kernel.Merge(a, b), tt.op)
			if err != nil {
				t.Fatalf("Boolean() error = %v", err)
			}
			vol := validate.SignedVolume(out, validate.DefaultProbeOffset)
			if math.Abs(vol-tt.wantVol) > 1e-5 {
				t.Errorf("volume = %g, want %g", vol, tt.wantVol)
			}
		})
	}
}

func TestBooleanResultPassesGate(t *testing.T) {
	k := mustNew(t)
	in := kernel.Merge(mesh.Cube(v3.Vec{}, 2), mesh.Cube(v3.Vec{X: 1, Y: 1, Z: 1}, 2))
	out, err := k.Boolean(in, kernel.Union)
	if err != nil {
		t.Fatalf("Boolean() error = %v", err)
	}
	if r := validate.New().Check(out); !r.Valid {
		t.Errorf("result rejected: %v", r)
	}
}

func TestBooleanSubtractIdentical(t *testing.T) {
	k := mustNew(t)
	unit := mesh.Cube(v3.Vec{}, 1)
	out, err := k.Boolean(kernel.Merge(unit, unit), kernel.Subtraction)
	if err != nil {
		t.Fatalf("Boolean() error = %v", err)
	}
	if !out.IsEmpty() {
		t.Errorf("Boolean() = %d triangles, want empty", out.TriangleCount())
	}
}

func TestBooleanEmptyOperand(t *testing.T) {
	k := mustNew(t)
	in := kernel.Merge(mesh.Cube(v3.Vec{}, 1), &mesh.Mesh{})
	if _, err := k.Boolean(in, kernel.Union); err == nil {
		t.Error("Boolean() with an empty operand: error = nil")
	}
}

func TestName(t *testing.T) {
	if got := mustNew(t).Name(); got != "manifold" {
		t.Errorf("Name() = %q, want manifold", got)
	}
}
