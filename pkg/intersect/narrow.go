package intersect

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshbool/pkg/geom"
	"github.com/chazu/meshbool/pkg/mesh"
)

// Intersects reports whether triangles t1 and t2 of m intersect beyond
// sharing a vertex or an edge. Zero-area triangles never intersect.
func Intersects(m *mesh.Mesh, t1, t2 int) bool {
	i1, i2 := m.Triangle(t1), m.Triangle(t2)
	p1, p2 := m.TrianglePoints(t1), m.TrianglePoints(t2)
	if geom.IsDegenerate(p1[0], p1[1], p1[2]) || geom.IsDegenerate(p2[0], p2[1], p2[2]) {
		return false
	}

	// shared[k] is the corner of t2 matching corner k of t1, or -1.
	shared := [3]int{-1, -1, -1}
	n := 0
	for k := 0; k < 3; k++ {
		for j := 0; j < 3; j++ {
			if i1[k] == i2[j] {
				shared[k] = j
				n++
				break
			}
		}
	}

	switch n {
	case 0:
		return trianglesIntersect(p1, p2)
	case 1:
		for k := 0; k < 3; k++ {
			if shared[k] >= 0 {
				return sharedVertexIntersect(p1, p2, k, shared[k])
			}
		}
	case 2:
		for k := 0; k < 3; k++ {
			if shared[k] < 0 {
				return sharedEdgeIntersect(p1, p2, k, i1, i2)
			}
		}
	}
	return true
}

// trianglesIntersect is the closed test for triangles without shared
// vertices: some edge of one touches the other.
func trianglesIntersect(p, q [3]v3.Vec) bool {
	for k := 0; k < 3; k++ {
		if geom.SegmentIntersectsTriangle(p[k], p[(k+1)%3], q[0], q[1], q[2]) {
			return true
		}
		if geom.SegmentIntersectsTriangle(q[k], q[(k+1)%3], p[0], p[1], p[2]) {
			return true
		}
	}
	return false
}

// sharedVertexIntersect handles triangles meeting at corner k of p and
// corner j of q.
func sharedVertexIntersect(p, q [3]v3.Vec, k, j int) bool {
	s := p[k]
	pa, pb := p[(k+1)%3], p[(k+2)%3]
	qa, qb := q[(j+1)%3], q[(j+2)%3]

	// Edges opposite the shared corner.
	if geom.SegmentIntersectsTriangle(pa, pb, q[0], q[1], q[2]) {
		return true
	}
	if geom.SegmentIntersectsTriangle(qa, qb, p[0], p[1], p[2]) {
		return true
	}

	// Edges at the shared corner entering the other triangle in its plane.
	if wedgeHit(s, qa, qb, q, pa) || wedgeHit(s, qa, qb, q, pb) {
		return true
	}
	return wedgeHit(s, pa, pb, p, qa) || wedgeHit(s, pa, pb, p, qb)
}

// wedgeHit reports whether x lies in the plane of tri and inside the wedge
// of tri at apex s.
func wedgeHit(s, a, b v3.Vec, tri [3]v3.Vec, x v3.Vec) bool {
	if geom.Orient3D(tri[0], tri[1], tri[2], x) != 0 {
		return false
	}
	axis := geom.DominantAxis(geom.Normal(tri[0], tri[1], tri[2]))
	return geom.InWedge2D(
		geom.Project(s, axis), geom.Project(a, axis),
		geom.Project(b, axis), geom.Project(x, axis),
	)
}

// sharedEdgeIntersect handles triangles sharing an edge; k is the corner of
// p off that edge. They overlap only when coplanar and folded together.
func sharedEdgeIntersect(p, q [3]v3.Vec, k int, ip, iq [3]uint32) bool {
	u, v := p[(k+1)%3], p[(k+2)%3]
	a := p[k]
	var b v3.Vec
	for j := 0; j < 3; j++ {
		if iq[j] != ip[(k+1)%3] && iq[j] != ip[(k+2)%3] {
			b = q[j]
		}
	}
	if geom.Orient3D(u, v, a, b) != 0 {
		return false
	}
	axis := geom.DominantAxis(geom.Normal(p[0], p[1], p[2]))
	pu, pv := geom.Project(u, axis), geom.Project(v, axis)
	sa := geom.Sign(geom.Orient2D(pu, pv, geom.Project(a, axis)))
	sb := geom.Sign(geom.Orient2D(pu, pv, geom.Project(b, axis)))
	return sa == sb
}
