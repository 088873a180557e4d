package validate

import (
	"errors"
	"fmt"
	"math"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshbool/pkg/geom"
	"github.com/chazu/meshbool/pkg/meshview"
)

var (
	errNoEdge     = errors.New("anchor vertex has no usable edge")
	errNoSeed     = errors.New("no seed triangle could be selected")
	errZeroProbe  = errors.New("seed probe is exactly zero")
	errNoVertices = errors.New("no referenced vertex")
)

// seed is a triangle whose winding has been tested against a point just
// outside the mesh near the anchor vertex.
type seed struct {
	tri    int
	anchor uint32
	// probe is the sign of the orientation test: -1 means the triangle
	// faces away from the surface it bounds, +1 means it faces inward.
	probe int
}

// findSeed picks and probes a seed among the triangles for which active
// returns true.
//
// The anchor is the active vertex with the smallest x (first index on
// ties). Its edges are tried by decreasing |dy| with ties kept in encounter
// order; the first edge whose two triangles yield a seed wins. On that edge
// the triangle whose opposite corner leaves the anchor's z level is
// preferred; when both leave it on the same side, the one whose opposite
// corner has the smaller x wins, the second on ties.
func findSeed(v *meshview.View, active func(t int) bool, offset float64) (seed, error) {
	anchor, ok := anchorVertex(v, active)
	if !ok {
		return seed{}, errNoVertices
	}
	a := v.Mesh.Vertex(anchor)

	type candidate struct {
		edge int
		dy   float64
	}
	var cands []candidate
	for _, e := range v.VertexEdges(anchor) {
		if !slices.ContainsFunc(v.EdgeTriangles(e), active) {
			continue
		}
		dy := math.Abs(v.Mesh.Vertex(v.OtherVertex(e, anchor)).Y - a.Y)
		if dy > 0 {
			cands = append(cands, candidate{edge: e, dy: dy})
		}
	}
	if len(cands) == 0 {
		return seed{}, fmt.Errorf("vertex %d: %w", anchor, errNoEdge)
	}
	slices.SortStableFunc(cands, func(x, y candidate) int {
		switch {
		case x.dy > y.dy:
			return -1
		case x.dy < y.dy:
			return 1
		}
		return 0
	})

	for _, c := range cands {
		tri, ok := pickSeedTriangle(v, c.edge, a)
		if !ok {
			continue
		}
		p := v.Mesh.TrianglePoints(tri)
		probe := a.Sub(v3.Vec{X: offset})
		o := geom.Sign(geom.Orient3D(p[0], p[1], p[2], probe))
		if o == 0 {
			return seed{}, fmt.Errorf("triangle %d: %w", tri, errZeroProbe)
		}
		return seed{tri: tri, anchor: anchor, probe: o}, nil
	}
	return seed{}, fmt.Errorf("vertex %d: %w", anchor, errNoSeed)
}

func anchorVertex(v *meshview.View, active func(t int) bool) (uint32, bool) {
	best := uint32(0)
	found := false
	for i := 0; i < v.NumVertices(); i++ {
		vi := uint32(i)
		if !slices.ContainsFunc(v.VertexTriangles(vi), active) {
			continue
		}
		if !found || v.Mesh.Vertex(vi).X < v.Mesh.Vertex(best).X {
			best = vi
			found = true
		}
	}
	return best, found
}

// pickSeedTriangle applies the seed policy to the two triangles on edge e.
func pickSeedTriangle(v *meshview.View, e int, anchor v3.Vec) (int, bool) {
	ts := v.EdgeTriangles(e)
	if len(ts) != 2 {
		return -1, false
	}
	t0, t1 := ts[0], ts[1]
	o0 := v.Mesh.Vertex(v.VertexOpposite(e, t0))
	o1 := v.Mesh.Vertex(v.VertexOpposite(e, t1))
	z0 := geom.Sign(o0.Z - anchor.Z)
	z1 := geom.Sign(o1.Z - anchor.Z)

	switch {
	case z0*z1 < 0:
		return t0, true
	case z0 != 0 && z1 == 0:
		return t0, true
	case z0 == 0 && z1 != 0:
		return t1, true
	case z0 == z1 && z0 != 0:
		if o0.X < o1.X {
			return t0, true
		}
		return t1, true
	}
	return -1, false
}
