package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DominantAxis returns the index (0=x, 1=y, 2=z) of the largest absolute
// component of n. Dropping that axis gives the most stable 2D projection of
// a plane with normal n.
func DominantAxis(n v3.Vec) int {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	if ax >= ay && ax >= az {
		return 0
	}
	if ay >= az {
		return 1
	}
	return 2
}

// Project drops the given axis.
func Project(p v3.Vec, axis int) v2.Vec {
	switch axis {
	case 0:
		return v2.Vec{X: p.Y, Y: p.Z}
	case 1:
		return v2.Vec{X: p.Z, Y: p.X}
	}
	return v2.Vec{X: p.X, Y: p.Y}
}

// IsDegenerate reports whether the triangle has zero area, exactly.
func IsDegenerate(a, b, c v3.Vec) bool {
	for axis := 0; axis < 3; axis++ {
		if Orient2D(Project(a, axis), Project(b, axis), Project(c, axis)) != 0 {
			return false
		}
	}
	return true
}

// SegmentIntersectsTriangle reports whether the closed segment s0-s1 touches
// the closed triangle (a, b, c). Coplanar configurations are resolved in
// the triangle's dominant projection. Degenerate triangles never intersect.
func SegmentIntersectsTriangle(s0, s1, a, b, c v3.Vec) bool {
	if IsDegenerate(a, b, c) {
		return false
	}
	o0 := Sign(Orient3D(a, b, c, s0))
	o1 := Sign(Orient3D(a, b, c, s1))
	if o0 == o1 && o0 != 0 {
		return false
	}
	if o0 == 0 && o1 == 0 {
		axis := DominantAxis(Normal(a, b, c))
		return SegmentIntersectsTriangle2D(
			Project(s0, axis), Project(s1, axis),
			Project(a, axis), Project(b, axis), Project(c, axis),
		)
	}

	e0 := Sign(Orient3D(s0, s1, a, b))
	e1 := Sign(Orient3D(s0, s1, b, c))
	e2 := Sign(Orient3D(s0, s1, c, a))
	pos := e0 > 0 || e1 > 0 || e2 > 0
	neg := e0 < 0 || e1 < 0 || e2 < 0
	return !(pos && neg)
}

// SegmentIntersectsTriangle2D reports whether the closed segment p-q touches
// the closed triangle (a, b, c) in the plane.
func SegmentIntersectsTriangle2D(p, q, a, b, c v2.Vec) bool {
	if PointInTriangle2D(p, a, b, c) || PointInTriangle2D(q, a, b, c) {
		return true
	}
	return SegmentsIntersect2D(p, q, a, b) ||
		SegmentsIntersect2D(p, q, b, c) ||
		SegmentsIntersect2D(p, q, c, a)
}

// PointInTriangle2D reports whether p lies in the closed triangle (a, b, c).
// A degenerate triangle contains nothing.
func PointInTriangle2D(p, a, b, c v2.Vec) bool {
	o := Sign(Orient2D(a, b, c))
	if o == 0 {
		return false
	}
	s0 := Sign(Orient2D(a, b, p))
	s1 := Sign(Orient2D(b, c, p))
	s2 := Sign(Orient2D(c, a, p))
	return s0 != -o && s1 != -o && s2 != -o
}

// SegmentsIntersect2D reports whether the closed segments p1-p2 and q1-q2 touch.
func SegmentsIntersect2D(p1, p2, q1, q2 v2.Vec) bool {
	d1 := Sign(Orient2D(q1, q2, p1))
	d2 := Sign(Orient2D(q1, q2, p2))
	d3 := Sign(Orient2D(p1, p2, q1))
	d4 := Sign(Orient2D(p1, p2, q2))

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	if d1 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if d2 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	return false
}

// onSegment reports whether p, known to be collinear with a-b, lies within it.
func onSegment(a, b, p v2.Vec) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// InWedge2D reports whether x lies in the closed convex wedge with apex p
// bounded by the rays p->a and p->b. A degenerate wedge contains nothing.
func InWedge2D(p, a, b, x v2.Vec) bool {
	o := Sign(Orient2D(p, a, b))
	if o == 0 {
		return false
	}
	s0 := Sign(Orient2D(p, a, x))
	s1 := Sign(Orient2D(p, x, b))
	if s0 == 0 && s1 == 0 {
		return false
	}
	return s0 != -o && s1 != -o
}
