package mesh

import v3 "github.com/deadsy/sdfx/vec/v3"

// cubeTris lists the 12 outward-wound triangles of a box whose corner i
// sits at (x,y,z) = (i&1, i>>1&1, i>>2&1) scaled into the box.
var cubeTris = []uint32{
	0, 2, 3, 0, 3, 1, // z min
	4, 5, 7, 4, 7, 6, // z max
	0, 1, 5, 0, 5, 4, // y min
	2, 6, 7, 2, 7, 3, // y max
	0, 4, 6, 0, 6, 2, // x min
	1, 3, 7, 1, 7, 5, // x max
}

// Box returns a closed, outward-oriented box spanning min..max with 8
// vertices and 12 triangles.
func Box(min, max v3.Vec) *Mesh {
	coords := make([]float64, 0, 24)
	for i := 0; i < 8; i++ {
		x, y, z := min.X, min.Y, min.Z
		if i&1 != 0 {
			x = max.X
		}
		if i&2 != 0 {
			y = max.Y
		}
		if i&4 != 0 {
			z = max.Z
		}
		coords = append(coords, x, y, z)
	}
	return &Mesh{Coords: coords, Tris: append([]uint32(nil), cubeTris...)}
}

// Cube returns an axis-aligned cube with its minimum corner at min.
func Cube(min v3.Vec, size float64) *Mesh {
	return Box(min, v3.Vec{X: min.X + size, Y: min.Y + size, Z: min.Z + size})
}

// Tetrahedron returns the outward-oriented corner tetrahedron with vertices
// at the origin and the three unit axis points.
func Tetrahedron() *Mesh {
	return &Mesh{
		Coords: []float64{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		},
		Tris: []uint32{
			0, 2, 1, // z = 0
			0, 1, 3, // y = 0
			0, 3, 2, // x = 0
			1, 2, 3, // slanted
		},
	}
}

// Concat returns a triangle soup holding a followed by b, with b's indices
// offset by a's vertex count. No boolean is performed.
func Concat(a, b *Mesh) *Mesh {
	out := &Mesh{
		Coords: make([]float64, 0, len(a.Coords)+len(b.Coords)),
		Tris:   make([]uint32, 0, len(a.Tris)+len(b.Tris)),
	}
	out.Coords = append(out.Coords, a.Coords...)
	out.Coords = append(out.Coords, b.Coords...)
	out.Tris = append(out.Tris, a.Tris...)
	offset := uint32(a.VertexCount())
	for _, idx := range b.Tris {
		out.Tris = append(out.Tris, idx+offset)
	}
	return out
}
