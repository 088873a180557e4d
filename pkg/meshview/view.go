// Package meshview builds an adjacency-queryable view over a flat triangle
// mesh: unique undirected edges plus vertex/edge/triangle incidence lists.
// A View is built once per validation and is read-only afterwards.
package meshview

import (
	"github.com/samber/lo"

	"github.com/chazu/meshbool/pkg/mesh"
)

// Edge is an undirected edge stored with Lo < Hi.
type Edge struct {
	Lo, Hi uint32
}

// View is the adjacency structure of a mesh. Edge indices follow the order
// in which edges are first met while scanning triangles.
type View struct {
	Mesh *mesh.Mesh

	edges []Edge
	index map[Edge]int

	v2e [][]int
	v2t [][]int
	e2t [][]int
	t2e [][3]int
}

// New builds the adjacency view of m. m must have passed mesh.Check.
func New(m *mesh.Mesh) *View {
	nv, nt := m.VertexCount(), m.TriangleCount()
	v := &View{
		Mesh:  m,
		index: make(map[Edge]int, nt*3/2),
		v2e:   make([][]int, nv),
		v2t:   make([][]int, nv),
		t2e:   make([][3]int, nt),
	}

	for t := 0; t < nt; t++ {
		tri := m.Triangle(t)
		for k := 0; k < 3; k++ {
			v.v2t[tri[k]] = append(v.v2t[tri[k]], t)
			e := v.addEdge(tri[k], tri[(k+1)%3])
			v.e2t[e] = append(v.e2t[e], t)
			v.t2e[t][k] = e
		}
	}
	return v
}

func (v *View) addEdge(a, b uint32) int {
	key := Edge{Lo: a, Hi: b}
	if b < a {
		key = Edge{Lo: b, Hi: a}
	}
	if e, ok := v.index[key]; ok {
		return e
	}
	e := len(v.edges)
	v.edges = append(v.edges, key)
	v.e2t = append(v.e2t, nil)
	v.index[key] = e
	v.v2e[key.Lo] = append(v.v2e[key.Lo], e)
	if key.Hi != key.Lo {
		v.v2e[key.Hi] = append(v.v2e[key.Hi], e)
	}
	return e
}

// NumVertices returns the vertex count of the underlying mesh.
func (v *View) NumVertices() int { return len(v.v2t) }

// NumTriangles returns the triangle count of the underlying mesh.
func (v *View) NumTriangles() int { return len(v.t2e) }

// NumEdges returns the number of unique edges.
func (v *View) NumEdges() int { return len(v.edges) }

// Edge returns edge e.
func (v *View) Edge(e int) Edge { return v.edges[e] }

// VertexEdges returns the edges incident to vertex i.
func (v *View) VertexEdges(i uint32) []int { return v.v2e[i] }

// VertexTriangles returns the triangles incident to vertex i.
func (v *View) VertexTriangles(i uint32) []int { return v.v2t[i] }

// EdgeTriangles returns the triangles bordering edge e.
func (v *View) EdgeTriangles(e int) []int { return v.e2t[e] }

// Referenced reports whether any triangle uses vertex i.
func (v *View) Referenced(i uint32) bool { return len(v.v2t[i]) > 0 }

// OtherVertex returns the endpoint of e that is not i.
func (v *View) OtherVertex(e int, i uint32) uint32 {
	if v.edges[e].Lo == i {
		return v.edges[e].Hi
	}
	return v.edges[e].Lo
}

// AdjacentTriangles returns the triangles sharing an edge with t, in edge
// order, without duplicates.
func (v *View) AdjacentTriangles(t int) []int {
	var out []int
	for _, e := range v.t2e[t] {
		for _, o := range v.e2t[e] {
			if o != t {
				out = append(out, o)
			}
		}
	}
	return lo.Uniq(out)
}

// SharedEdge returns the edge common to triangles t1 and t2.
func (v *View) SharedEdge(t1, t2 int) (int, bool) {
	for _, e1 := range v.t2e[t1] {
		for _, e2 := range v.t2e[t2] {
			if e1 == e2 {
				return e1, true
			}
		}
	}
	return -1, false
}

// EdgeIsCCW reports whether triangle t traverses edge e from Lo to Hi.
// Two consistently oriented triangles sharing e give opposite answers.
func (v *View) EdgeIsCCW(e, t int) bool {
	tri := v.Mesh.Triangle(t)
	ed := v.edges[e]
	for k := 0; k < 3; k++ {
		if tri[k] == ed.Lo && tri[(k+1)%3] == ed.Hi {
			return true
		}
	}
	return false
}

// VertexOpposite returns the corner of triangle t that is not on edge e.
func (v *View) VertexOpposite(e, t int) uint32 {
	tri := v.Mesh.Triangle(t)
	ed := v.edges[e]
	for _, c := range tri {
		if c != ed.Lo && c != ed.Hi {
			return c
		}
	}
	return tri[0]
}

// EdgeIsBoundary reports whether e borders exactly one triangle.
func (v *View) EdgeIsBoundary(e int) bool { return len(v.e2t[e]) == 1 }

// VertexIsBoundary reports whether any edge at vertex i is a boundary edge.
func (v *View) VertexIsBoundary(i uint32) bool {
	return lo.SomeBy(v.v2e[i], v.EdgeIsBoundary)
}

// VertexIsManifold reports whether the link of vertex i, the edges opposite
// to i in its incident triangles, forms a single chain or a single loop.
func (v *View) VertexIsManifold(i uint32) bool {
	tris := v.v2t[i]
	if len(tris) == 0 {
		return true
	}

	degree := make(map[uint32]int)
	parent := make(map[uint32]uint32)
	var find func(x uint32) uint32
	find = func(x uint32) uint32 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	add := func(x uint32) {
		if _, ok := parent[x]; !ok {
			parent[x] = x
		}
	}

	for _, t := range tris {
		tri := v.Mesh.Triangle(t)
		var link []uint32
		for _, c := range tri {
			if c != i {
				link = append(link, c)
			}
		}
		// i appears more than once: the triangle is degenerate at i.
		if len(link) != 2 || link[0] == link[1] {
			return false
		}
		a, b := link[0], link[1]
		add(a)
		add(b)
		degree[a]++
		degree[b]++
		if degree[a] > 2 || degree[b] > 2 {
			return false
		}
		parent[find(a)] = find(b)
	}

	root := find(lo.Keys(parent)[0])
	for x := range parent {
		if find(x) != root {
			return false
		}
	}
	return true
}
