package validate

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshbool/pkg/geom"
	"github.com/chazu/meshbool/pkg/mesh"
)

// SignedVolume returns the signed volume enclosed by m, measured against a
// reference point offset outside the bounding box along -x.
func SignedVolume(m *mesh.Mesh, offset float64) float64 {
	min, _, ok := m.BoundingBox()
	if !ok {
		return 0
	}
	ref := min.Sub(v3.Vec{X: offset})
	return geom.SignedVolume(ref, trianglePoints(m))
}

func trianglePoints(m *mesh.Mesh) [][3]v3.Vec {
	out := make([][3]v3.Vec, m.TriangleCount())
	for t := range out {
		out[t] = m.TrianglePoints(t)
	}
	return out
}

// correctPolarity returns a flipped copy of m when its signed volume is
// negative. ok is false when the flipped copy still measures negative, in
// which case m itself is returned. m is never modified.
func correctPolarity(m *mesh.Mesh, offset float64) (out *mesh.Mesh, flipped, ok bool) {
	if SignedVolume(m, offset) >= 0 {
		return m, false, true
	}
	f := m.Flipped()
	if SignedVolume(f, offset) < 0 {
		return m, false, false
	}
	return f, true, true
}
