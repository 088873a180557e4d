package sdfx

import (
	"errors"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshbool/pkg/geom"
	"github.com/chazu/meshbool/pkg/mesh"
)

// errEmptyMesh is returned for an operand without triangles.
var errEmptyMesh = errors.New("mesh has no triangles")

// MeshSDF is a signed distance field over a closed triangle mesh. The
// distance is to the nearest triangle; the sign comes from the generalized
// winding number, so points enclosed by the surface are negative.
type MeshSDF struct {
	tris [][3]v3.Vec
	bb   sdf.Box3
}

// Compile-time interface check.
var _ sdf.SDF3 = (*MeshSDF)(nil)

// NewMeshSDF builds the distance field of m.
func NewMeshSDF(m *mesh.Mesh) (*MeshSDF, error) {
	min, max, ok := m.BoundingBox()
	if !ok || m.IsEmpty() {
		return nil, errEmptyMesh
	}
	tris := make([][3]v3.Vec, m.TriangleCount())
	for t := range tris {
		tris[t] = m.TrianglePoints(t)
	}

	// Pad so marching cubes samples outside the surface on every side.
	size := max.Sub(min)
	pad := 0.05 * math.Max(size.X, math.Max(size.Y, size.Z))
	if pad == 0 {
		pad = 1e-3
	}
	p := v3.Vec{X: pad, Y: pad, Z: pad}
	return &MeshSDF{
		tris: tris,
		bb:   sdf.Box3{Min: min.Sub(p), Max: max.Add(p)},
	}, nil
}

// Evaluate returns the signed distance from p to the surface.
func (s *MeshSDF) Evaluate(p v3.Vec) float64 {
	d := math.Inf(1)
	for _, t := range s.tris {
		q := geom.ClosestPointOnTriangle(p, t[0], t[1], t[2])
		d = math.Min(d, p.Sub(q).Length())
	}
	if math.Abs(geom.WindingNumber(p, s.tris)) > 0.5 {
		return -d
	}
	return d
}

// BoundingBox returns the padded bounding box of the surface.
func (s *MeshSDF) BoundingBox() sdf.Box3 {
	return s.bb
}
