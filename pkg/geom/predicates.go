// Package geom provides the geometric predicates used by the validity gate
// and the self-intersection detector. Orientation tests are exact: a fast
// floating point evaluation is accepted when it clears a forward error
// bound, otherwise the determinant is recomputed with rationals.
package geom

import (
	"math"
	"math/big"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	epsilon      = math.Ldexp(1, -53)
	o3dErrBoundA = (7 + 56*epsilon) * epsilon
	ccwErrBoundA = (3 + 16*epsilon) * epsilon
)

// Orient3D returns a value whose sign is exact: positive when d lies below
// the plane through a, b and c, where "below" is the side from which a, b, c
// appear clockwise. Zero means the four points are coplanar.
func Orient3D(a, b, c, d v3.Vec) float64 {
	adx, ady, adz := a.X-d.X, a.Y-d.Y, a.Z-d.Z
	bdx, bdy, bdz := b.X-d.X, b.Y-d.Y, b.Z-d.Z
	cdx, cdy, cdz := c.X-d.X, c.Y-d.Y, c.Z-d.Z

	bdxcdy, cdxbdy := bdx*cdy, cdx*bdy
	cdxady, adxcdy := cdx*ady, adx*cdy
	adxbdy, bdxady := adx*bdy, bdx*ady

	det := adz*(bdxcdy-cdxbdy) + bdz*(cdxady-adxcdy) + cdz*(adxbdy-bdxady)

	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*math.Abs(adz) +
		(math.Abs(cdxady)+math.Abs(adxcdy))*math.Abs(bdz) +
		(math.Abs(adxbdy)+math.Abs(bdxady))*math.Abs(cdz)
	errBound := o3dErrBoundA * permanent
	if det > errBound || -det > errBound {
		return det
	}
	return orient3DExact(a, b, c, d)
}

// Orient2D returns a value whose sign is exact: positive when a, b and c
// are in counterclockwise order, negative when clockwise, zero when collinear.
func Orient2D(a, b, c v2.Vec) float64 {
	detLeft := (a.X - c.X) * (b.Y - c.Y)
	detRight := (a.Y - c.Y) * (b.X - c.X)
	det := detLeft - detRight

	var detSum float64
	switch {
	case detLeft > 0:
		if detRight <= 0 {
			return det
		}
		detSum = detLeft + detRight
	case detLeft < 0:
		if detRight >= 0 {
			return det
		}
		detSum = -detLeft - detRight
	default:
		return det
	}

	errBound := ccwErrBoundA * detSum
	if det >= errBound || -det >= errBound {
		return det
	}
	return orient2DExact(a, b, c)
}

func rat(f float64) *big.Rat {
	r := new(big.Rat)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return r
	}
	return r.SetFloat64(f)
}

func sub(a, b float64) *big.Rat {
	return new(big.Rat).Sub(rat(a), rat(b))
}

func mul(a, b *big.Rat) *big.Rat {
	return new(big.Rat).Mul(a, b)
}

func orient3DExact(a, b, c, d v3.Vec) float64 {
	adx, ady, adz := sub(a.X, d.X), sub(a.Y, d.Y), sub(a.Z, d.Z)
	bdx, bdy, bdz := sub(b.X, d.X), sub(b.Y, d.Y), sub(b.Z, d.Z)
	cdx, cdy, cdz := sub(c.X, d.X), sub(c.Y, d.Y), sub(c.Z, d.Z)

	t0 := mul(adz, new(big.Rat).Sub(mul(bdx, cdy), mul(cdx, bdy)))
	t1 := mul(bdz, new(big.Rat).Sub(mul(cdx, ady), mul(adx, cdy)))
	t2 := mul(cdz, new(big.Rat).Sub(mul(adx, bdy), mul(bdx, ady)))

	det := new(big.Rat).Add(t0, t1)
	det.Add(det, t2)
	return ratSign(det)
}

func orient2DExact(a, b, c v2.Vec) float64 {
	left := mul(sub(a.X, c.X), sub(b.Y, c.Y))
	right := mul(sub(a.Y, c.Y), sub(b.X, c.X))
	return ratSign(new(big.Rat).Sub(left, right))
}

// ratSign converts an exact determinant to a float64 that keeps its sign
// even when the magnitude underflows.
func ratSign(r *big.Rat) float64 {
	s := r.Sign()
	if s == 0 {
		return 0
	}
	f, _ := r.Float64()
	if f == 0 {
		return float64(s) * math.SmallestNonzeroFloat64
	}
	return f
}

// Sign returns -1, 0 or +1.
func Sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}
