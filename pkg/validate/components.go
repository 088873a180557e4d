package validate

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshbool/pkg/geom"
	"github.com/chazu/meshbool/pkg/meshview"
)

// component is one edge-connected piece of the surface.
type component struct {
	tris   []int
	anchor uint32
	// probe is the seed probe sign; 0 for components found by the relaxed
	// sweep, which does not probe.
	probe int
}

// checkComponentPolarity verifies every component after the first against
// the ones before it. Components arrive ordered by anchor x, so enclosing
// shells precede what they enclose. At a component's anchor the winding
// number of the earlier components is 0 outside them and 1 inside a solid;
// an island must face outward and a cavity inward.
//
// It returns the index of the first offending component, or -1.
func checkComponentPolarity(v *meshview.View, comps []component) (int, float64) {
	var verified [][3]v3.Vec
	add := func(c component) {
		for _, t := range c.tris {
			verified = append(verified, v.Mesh.TrianglePoints(t))
		}
	}
	add(comps[0])

	for i := 1; i < len(comps); i++ {
		c := comps[i]
		w := geom.WindingNumber(v.Mesh.Vertex(c.anchor), verified)
		switch math.Round(w) {
		case 0:
			if c.probe > 0 {
				return i, w
			}
		case 1:
			if c.probe < 0 {
				return i, w
			}
		default:
			return i, w
		}
		add(c)
	}
	return -1, 0
}
