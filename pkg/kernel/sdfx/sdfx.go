// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Each operand is turned into
// a signed distance field, combined with the SDF boolean operators and
// meshed again with marching cubes. The result is an approximation whose
// resolution is set by the number of cells along the longest axis.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/geom"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/mesh"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 64

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells  int
	logger *zap.Logger
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithCells sets the number of marching cubes cells along the longest axis.
func WithCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.cells = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(k *SdfxKernel) {
		if l != nil {
			k.logger = l
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{cells: DefaultMeshCells, logger: zap.NewNop()}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Name implements kernel.Kernel.
func (k *SdfxKernel) Name() string { return "sdfx" }

// Boolean implements kernel.Kernel.
func (k *SdfxKernel) Boolean(in *kernel.LabeledMesh, op kernel.Op) (*mesh.Mesh, error) {
	a, b := in.Split()
	sa, err := NewMeshSDF(a)
	if err != nil {
		return nil, fmt.Errorf("sdfx: operand A: %w", err)
	}
	sb, err := NewMeshSDF(b)
	if err != nil {
		return nil, fmt.Errorf("sdfx: operand B: %w", err)
	}

	var s sdf.SDF3
	switch op {
	case kernel.Union:
		s = sdf.Union3D(sa, sb)
	case kernel.Subtraction:
		s = sdf.Difference3D(sa, sb)
	case kernel.Intersection:
		s = sdf.Intersect3D(sa, sb)
	case kernel.XOR:
		s = sdf.Union3D(sdf.Difference3D(sa, sb), sdf.Difference3D(sb, sa))
	default:
		return nil, fmt.Errorf("sdfx: unsupported operator %v", op)
	}

	out := k.ToMesh(s)
	k.logger.Debug("sdfx boolean",
		zap.Stringer("op", op),
		zap.Int("cells", k.cells),
		zap.Int("triangles", out.TriangleCount()),
		zap.Int("vertices", out.VertexCount()),
	)
	return out, nil
}

// ToMesh converts an SDF to a welded triangle mesh using marching cubes.
// Degenerate triangles are dropped and the result is wound outward.
func (k *SdfxKernel) ToMesh(s sdf.SDF3) *mesh.Mesh {
	bb := s.BoundingBox()
	size := bb.Max.Sub(bb.Min)
	// Intersections of operands that do not overlap have an inverted box.
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return &mesh.Mesh{}
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(s, renderer)

	w := newWelder(math.Max(size.X, math.Max(size.Y, size.Z)) * 1e-9)

	out := &mesh.Mesh{}
	for _, tri := range triangles {
		var idx [3]uint32
		for j := 0; j < 3; j++ {
			idx[j] = w.index(out, tri[j])
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			continue
		}
		out.Tris = append(out.Tris, idx[0], idx[1], idx[2])
	}
	if out.IsEmpty() {
		return &mesh.Mesh{}
	}

	if min, _, ok := out.BoundingBox(); ok {
		var tris [][3]v3.Vec
		for t := 0; t < out.TriangleCount(); t++ {
			tris = append(tris, out.TrianglePoints(t))
		}
		if geom.SignedVolume(min, tris) < 0 {
			out = out.Flipped()
		}
	}
	return out
}

// welder merges marching cubes vertices that coincide up to a quantum.
type welder struct {
	quantum float64
	seen    map[[3]int64]uint32
}

func newWelder(quantum float64) *welder {
	if quantum <= 0 {
		quantum = 1e-12
	}
	return &welder{quantum: quantum, seen: make(map[[3]int64]uint32)}
}

func (w *welder) index(m *mesh.Mesh, p v3.Vec) uint32 {
	key := [3]int64{
		int64(math.Round(p.X / w.quantum)),
		int64(math.Round(p.Y / w.quantum)),
		int64(math.Round(p.Z / w.quantum)),
	}
	if i, ok := w.seen[key]; ok {
		return i
	}
	i := uint32(m.VertexCount())
	m.Coords = append(m.Coords, p.X, p.Y, p.Z)
	w.seen[key] = i
	return i
}
