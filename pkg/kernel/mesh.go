package kernel

import "github.com/chazu/meshbool/pkg/mesh"

// Label tags the operand a triangle came from.
type Label uint8

const (
	LabelA Label = 0
	LabelB Label = 1
)

// LabeledMesh is the merged input of a boolean. All arrays are flat like
// mesh.Mesh; Labels has one entry per triangle.
type LabeledMesh struct {
	Coords []float64 `json:"coords"` // [x0,y0,z0, x1,y1,z1, ...]
	Tris   []uint32  `json:"tris"`   // [i0,i1,i2, ...] triangles
	Labels []Label   `json:"labels"` // operand of each triangle
}

// Merge concatenates a and b: a's vertices and triangles come first, b's
// triangle indices are offset by a's vertex count.
func Merge(a, b *mesh.Mesh) *LabeledMesh {
	soup := mesh.Concat(a, b)
	labels := make([]Label, 0, soup.TriangleCount())
	for i := 0; i < a.TriangleCount(); i++ {
		labels = append(labels, LabelA)
	}
	for i := 0; i < b.TriangleCount(); i++ {
		labels = append(labels, LabelB)
	}
	return &LabeledMesh{Coords: soup.Coords, Tris: soup.Tris, Labels: labels}
}

// VertexCount returns the number of vertices.
func (l *LabeledMesh) VertexCount() int {
	return len(l.Coords) / 3
}

// TriangleCount returns the number of triangles.
func (l *LabeledMesh) TriangleCount() int {
	return len(l.Tris) / 3
}

// Split separates the operands. Each result keeps only the vertices its
// triangles reference, in their original order.
func (l *LabeledMesh) Split() (a, b *mesh.Mesh) {
	return l.extract(LabelA), l.extract(LabelB)
}

func (l *LabeledMesh) extract(label Label) *mesh.Mesh {
	nv := l.VertexCount()
	used := make([]bool, nv)
	for t, lb := range l.Labels {
		if lb != label {
			continue
		}
		used[l.Tris[t*3]] = true
		used[l.Tris[t*3+1]] = true
		used[l.Tris[t*3+2]] = true
	}

	remap := make([]uint32, nv)
	out := &mesh.Mesh{}
	for i := 0; i < nv; i++ {
		if !used[i] {
			continue
		}
		remap[i] = uint32(len(out.Coords) / 3)
		out.Coords = append(out.Coords, l.Coords[i*3:i*3+3]...)
	}
	for t, lb := range l.Labels {
		if lb != label {
			continue
		}
		out.Tris = append(out.Tris,
			remap[l.Tris[t*3]], remap[l.Tris[t*3+1]], remap[l.Tris[t*3+2]])
	}
	return out
}
