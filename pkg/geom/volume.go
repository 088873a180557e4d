package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// TetraVolume returns the signed volume of the tetrahedron (r, a, b, c).
// It is positive when a, b, c wind counterclockwise as seen from the side
// opposite r, i.e. when the triangle faces away from r.
func TetraVolume(r, a, b, c v3.Vec) float64 {
	ar, br, cr := a.Sub(r), b.Sub(r), c.Sub(r)
	return ar.Dot(br.Cross(cr)) / 6
}

// SolidAngle returns the signed solid angle subtended by triangle (a, b, c)
// at q, using the Van Oosterom–Strackee formula.
func SolidAngle(q, a, b, c v3.Vec) float64 {
	ra, rb, rc := a.Sub(q), b.Sub(q), c.Sub(q)
	la, lb, lc := ra.Length(), rb.Length(), rc.Length()
	num := ra.Dot(rb.Cross(rc))
	den := la*lb*lc + ra.Dot(rb)*lc + rb.Dot(rc)*la + rc.Dot(ra)*lb
	return 2 * math.Atan2(num, den)
}

// WindingNumber returns the generalized winding number of the triangles
// around q. For a closed outward-oriented surface it is 1 inside and 0
// outside.
func WindingNumber(q v3.Vec, tris [][3]v3.Vec) float64 {
	var sum float64
	for _, t := range tris {
		sum += SolidAngle(q, t[0], t[1], t[2])
	}
	return sum / (4 * math.Pi)
}

// Normal returns the unnormalized normal (b-a)×(c-a).
func Normal(a, b, c v3.Vec) v3.Vec {
	return b.Sub(a).Cross(c.Sub(a))
}

// ClosestPointOnTriangle returns the point of triangle (a, b, c) closest to p.
func ClosestPointOnTriangle(p, a, b, c v3.Vec) v3.Vec {
	ab, ac, ap := b.Sub(a), c.Sub(a), p.Sub(a)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.MulScalar(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.MulScalar(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return b.Add(c.Sub(b).MulScalar((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	denom := 1 / (va + vb + vc)
	v, w := vb*denom, vc*denom
	return a.Add(ab.MulScalar(v)).Add(ac.MulScalar(w))
}

// SignedVolume returns the enclosed volume of the triangles, measured as a
// sum of tetrahedra against ref. For a closed surface the result does not
// depend on ref and is positive when the triangles face outward.
func SignedVolume(ref v3.Vec, tris [][3]v3.Vec) float64 {
	var vol float64
	for _, t := range tris {
		vol += TetraVolume(ref, t[0], t[1], t[2])
	}
	return vol
}
