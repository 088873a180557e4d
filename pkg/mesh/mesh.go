// Package mesh defines the flat triangle mesh exchanged with the validity
// gate and the boolean kernels. Coordinates are doubles, three per vertex;
// triangles are vertex index triples whose winding order is significant.
package mesh

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrCoordLength is returned when the coordinate buffer is not a multiple of 3.
	ErrCoordLength = errors.New("mesh: coordinate count is not a multiple of 3")
	// ErrTriLength is returned when the triangle buffer is not a multiple of 3.
	ErrTriLength = errors.New("mesh: triangle index count is not a multiple of 3")
	// ErrIndexOutOfRange is returned when a triangle references a missing vertex.
	ErrIndexOutOfRange = errors.New("mesh: triangle index out of range")
)

// Mesh is a triangle surface. All arrays are flat: Coords has 3 doubles per
// vertex (x,y,z) and Tris has 3 vertex indices per triangle.
type Mesh struct {
	Coords []float64 `json:"coords"` // [x0,y0,z0, x1,y1,z1, ...]
	Tris   []uint32  `json:"tris"`   // [i0,i1,i2, ...] triangles
}

// New wraps the given buffers after checking their shape. The buffers are
// used as-is, not copied.
func New(coords []float64, tris []uint32) (*Mesh, error) {
	m := &Mesh{Coords: coords, Tris: tris}
	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}

// Check verifies the buffer lengths and that every index is in range.
func (m *Mesh) Check() error {
	if len(m.Coords)%3 != 0 {
		return fmt.Errorf("%w: got %d", ErrCoordLength, len(m.Coords))
	}
	if len(m.Tris)%3 != 0 {
		return fmt.Errorf("%w: got %d", ErrTriLength, len(m.Tris))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Tris {
		if idx >= n {
			return fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrIndexOutOfRange, i/3, idx, n)
		}
	}
	return nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Coords) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Tris) / 3
}

// IsEmpty returns true if the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Tris) == 0
}

// Vertex returns the position of vertex i.
func (m *Mesh) Vertex(i uint32) v3.Vec {
	return v3.Vec{X: m.Coords[i*3], Y: m.Coords[i*3+1], Z: m.Coords[i*3+2]}
}

// Triangle returns the vertex indices of triangle t.
func (m *Mesh) Triangle(t int) [3]uint32 {
	return [3]uint32{m.Tris[t*3], m.Tris[t*3+1], m.Tris[t*3+2]}
}

// TrianglePoints returns the three corner positions of triangle t.
func (m *Mesh) TrianglePoints(t int) [3]v3.Vec {
	tri := m.Triangle(t)
	return [3]v3.Vec{m.Vertex(tri[0]), m.Vertex(tri[1]), m.Vertex(tri[2])}
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Coords: append([]float64(nil), m.Coords...),
		Tris:   append([]uint32(nil), m.Tris...),
	}
}

// Flipped returns a copy with every triangle's winding reversed by swapping
// its last two indices. The receiver is not modified.
func (m *Mesh) Flipped() *Mesh {
	out := m.Clone()
	for t := 0; t+2 < len(out.Tris); t += 3 {
		out.Tris[t+1], out.Tris[t+2] = out.Tris[t+2], out.Tris[t+1]
	}
	return out
}

// Translated returns a copy moved by d.
func (m *Mesh) Translated(d v3.Vec) *Mesh {
	out := m.Clone()
	for i := 0; i+2 < len(out.Coords); i += 3 {
		out.Coords[i] += d.X
		out.Coords[i+1] += d.Y
		out.Coords[i+2] += d.Z
	}
	return out
}

// Scaled returns a copy with every coordinate multiplied by s. A negative s
// mirrors the mesh and so inverts its orientation.
func (m *Mesh) Scaled(s float64) *Mesh {
	out := m.Clone()
	for i := range out.Coords {
		out.Coords[i] *= s
	}
	return out
}

// BoundingBox returns the axis-aligned bounds of the vertices. ok is false
// for a mesh without vertices.
func (m *Mesh) BoundingBox() (min, max v3.Vec, ok bool) {
	if m.VertexCount() == 0 {
		return v3.Vec{}, v3.Vec{}, false
	}
	min = m.Vertex(0)
	max = min
	for i := 1; i < m.VertexCount(); i++ {
		p := m.Vertex(uint32(i))
		min = v3.Vec{X: minf(min.X, p.X), Y: minf(min.Y, p.Y), Z: minf(min.Z, p.Z)}
		max = v3.Vec{X: maxf(max.X, p.X), Y: maxf(max.Y, p.Y), Z: maxf(max.Z, p.Z)}
	}
	return min, max, true
}

// Equal reports whether both meshes have identical buffers.
func (m *Mesh) Equal(o *Mesh) bool {
	if len(m.Coords) != len(o.Coords) || len(m.Tris) != len(o.Tris) {
		return false
	}
	for i := range m.Coords {
		if m.Coords[i] != o.Coords[i] {
			return false
		}
	}
	for i := range m.Tris {
		if m.Tris[i] != o.Tris[i] {
			return false
		}
	}
	return true
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
