package kernel

import (
	"errors"
	"fmt"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshbool/pkg/mesh"
)

// --- Operator codes ---

func TestOpFromCode(t *testing.T) {
	tests := []struct {
		code   int
		want   Op
		wantOK bool
	}{
		{0, Union, true},
		{1, Subtraction, true},
		{2, Intersection, true},
		{3, XOR, true},
		{99, Union, false},
		{-1, Union, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("code %d", tt.code), func(t *testing.T) {
			got, ok := OpFromCode(tt.code)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("OpFromCode(%d) = %v, %v; want %v, %v", tt.code, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseOp(t *testing.T) {
	tests := []struct {
		name string
		want Op
		ok   bool
	}{
		{":union", Union, true},
		{"SUB", Subtraction, true},
		{"difference", Subtraction, true},
		{"intersection", Intersection, true},
		{":xor", XOR, true},
		{"blend", Union, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseOp(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseOp(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// --- Labeled mesh helpers ---

func TestMergeLabelsAndOffsets(t *testing.T) {
	a := mesh.Cube(v3.Vec{}, 1)
	b := mesh.Tetrahedron()
	l := Merge(a, b)

	if l.VertexCount() != 12 || l.TriangleCount() != 16 {
		t.Fatalf("Merge() = %d verts / %d tris, want 12 / 16", l.VertexCount(), l.TriangleCount())
	}
	for i, lb := range l.Labels {
		want := LabelA
		if i >= 12 {
			want = LabelB
		}
		if lb != want {
			t.Errorf("label %d = %d, want %d", i, lb, want)
		}
	}
	if l.Tris[12*3] != 8 {
		t.Errorf("first B index = %d, want 8", l.Tris[12*3])
	}
}

func TestSplitRoundTrip(t *testing.T) {
	a := mesh.Cube(v3.Vec{X: 3}, 2)
	b := mesh.Tetrahedron()
	gotA, gotB := Merge(a, b).Split()
	if !gotA.Equal(a) {
		t.Errorf("Split() A = %+v, want %+v", gotA, a)
	}
	if !gotB.Equal(b) {
		t.Errorf("Split() B = %+v, want %+v", gotB, b)
	}
}

func TestSplitDropsUnreferenced(t *testing.T) {
	l := &LabeledMesh{
		Coords: []float64{0, 0, 0, 9, 9, 9, 1, 0, 0, 0, 1, 0},
		Tris:   []uint32{0, 2, 3},
		Labels: []Label{LabelA},
	}
	a, b := l.Split()
	if a.VertexCount() != 3 {
		t.Errorf("A has %d vertices, want 3", a.VertexCount())
	}
	if got := a.Triangle(0); got != [3]uint32{0, 1, 2} {
		t.Errorf("A triangle = %v, want [0 1 2]", got)
	}
	if !b.IsEmpty() || b.VertexCount() != 0 {
		t.Errorf("B = %+v, want empty", b)
	}
}

// --- Shortcut resolution ---

func TestResolve(t *testing.T) {
	unit := mesh.Cube(v3.Vec{}, 1)
	far := mesh.Cube(v3.Vec{X: 5}, 1)
	overlap := mesh.Cube(v3.Vec{X: 0.5}, 1)

	tests := []struct {
		name      string
		a, b      *mesh.Mesh
		op        Op
		wantOK    bool
		wantTris  int
		wantVerts int
	}{
		{"disjoint union", unit, far, Union, true, 24, 16},
		{"disjoint xor", unit, far, XOR, true, 24, 16},
		{"disjoint subtraction", unit, far, Subtraction, true, 12, 8},
		{"disjoint intersection", unit, far, Intersection, true, 0, 0},
		{"identical union", unit, unit, Union, true, 12, 8},
		{"identical intersection", unit, unit, Intersection, true, 12, 8},
		{"identical subtraction", unit, unit, Subtraction, true, 0, 0},
		{"identical xor", unit, unit, XOR, true, 0, 0},
		{"overlapping", unit, overlap, Union, false, 0, 0},
		{"touching", unit, mesh.Cube(v3.Vec{X: 1}, 1), Union, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := Resolve(Merge(tt.a, tt.b), tt.op)
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if out.TriangleCount() != tt.wantTris || out.VertexCount() != tt.wantVerts {
				t.Errorf("Resolve() = %d tris / %d verts, want %d / %d",
					out.TriangleCount(), out.VertexCount(), tt.wantTris, tt.wantVerts)
			}
		})
	}
}

func TestResolvingKernel(t *testing.T) {
	unit := mesh.Cube(v3.Vec{}, 1)
	far := mesh.Cube(v3.Vec{X: 5}, 1)
	overlap := mesh.Cube(v3.Vec{X: 0.5}, 1)

	t.Run("resolvable operands skip the fallback", func(t *testing.T) {
		next := &stubKernel{}
		out, err := Resolving(next).Boolean(Merge(unit, far), Union)
		if err != nil {
			t.Fatalf("Boolean() error = %v", err)
		}
		if out.TriangleCount() != 24 || next.calls != 0 {
			t.Errorf("Boolean() = %d tris after %d fallback calls, want 24 after 0", out.TriangleCount(), next.calls)
		}
	})

	t.Run("overlapping operands reach the fallback", func(t *testing.T) {
		next := &stubKernel{}
		out, err := Resolving(next).Boolean(Merge(unit, overlap), Union)
		if err != nil {
			t.Fatalf("Boolean() error = %v", err)
		}
		if next.calls != 1 || out.TriangleCount() != 12 {
			t.Errorf("fallback calls = %d, result %d tris; want 1, 12", next.calls, out.TriangleCount())
		}
	})

	t.Run("no fallback", func(t *testing.T) {
		k := Resolving(nil)
		if _, err := k.Boolean(Merge(unit, overlap), XOR); !errors.Is(err, ErrUnresolved) {
			t.Errorf("Boolean() error = %v, want ErrUnresolved", err)
		}
		if out, err := k.Boolean(Merge(unit, unit), Subtraction); err != nil || !out.IsEmpty() {
			t.Errorf("Boolean(identical) = %v, %v; want empty", out, err)
		}
	})

	t.Run("name", func(t *testing.T) {
		if got := Resolving(&stubKernel{}).Name(); got != "stub" {
			t.Errorf("Name() = %q, want stub", got)
		}
		if got := Resolving(nil).Name(); got != "resolve" {
			t.Errorf("Name() = %q, want resolve", got)
		}
	})
}

// --- Compile-time interface check with a stub kernel ---

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. It returns operand A unchanged.
type stubKernel struct {
	calls int
}

func (k *stubKernel) Name() string { return "stub" }

func (k *stubKernel) Boolean(in *LabeledMesh, _ Op) (*mesh.Mesh, error) {
	k.calls++
	a, _ := in.Split()
	return a, nil
}

var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoolean(t *testing.T) {
	k := &stubKernel{}
	var kern Kernel = k
	out, err := kern.Boolean(Merge(mesh.Tetrahedron(), mesh.Cube(v3.Vec{}, 1)), Union)
	if err != nil {
		t.Fatalf("Boolean() error = %v", err)
	}
	if out.TriangleCount() != 4 {
		t.Errorf("Boolean() = %d triangles, want 4", out.TriangleCount())
	}
	if k.calls != 1 {
		t.Errorf("calls = %d, want 1", k.calls)
	}
}
