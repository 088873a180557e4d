package validate

import (
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/intersect"
	"github.com/chazu/meshbool/pkg/mesh"
	"github.com/chazu/meshbool/pkg/meshview"
)

// IntersectionFinder returns the intersecting triangle pairs of a mesh.
// *intersect.Detector implements it.
type IntersectionFinder interface {
	FindIntersections(m *mesh.Mesh) []intersect.Pair
}

// Gate runs the validity checks. A Gate is immutable after New and safe for
// concurrent use as long as its IntersectionFinder is.
type Gate struct {
	policy Policy
	finder IntersectionFinder
	logger *zap.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithPolicy selects the gate variant. The default is Strict.
func WithPolicy(p Policy) Option {
	return func(g *Gate) { g.policy = p }
}

// WithFinder replaces the self-intersection detector.
func WithFinder(f IntersectionFinder) Option {
	return func(g *Gate) {
		if f != nil {
			g.finder = f
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Gate.
func New(opts ...Option) *Gate {
	g := &Gate{
		policy: Strict(),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(g)
	}
	if g.finder == nil {
		g.finder = intersect.New(intersect.WithLogger(g.logger))
	}
	return g
}

// Policy returns the gate's policy.
func (g *Gate) Policy() Policy { return g.policy }

// Check runs the gate on m. m is never modified; when polarity correction
// applies, the checks run on a flipped copy returned in Report.Mesh.
func (g *Gate) Check(m *mesh.Mesh) *Report {
	r := g.check(m)
	switch {
	case r.Valid:
		g.logger.Debug("mesh valid",
			zap.Int("components", r.Components),
			zap.Bool("corrected", r.Corrected),
		)
	case r.Reason == ReasonInternal:
		g.logger.Error("mesh validation hit an internal inconsistency",
			zap.String("message", r.Message),
			zap.Int("vertex", r.Vertex),
			zap.Int("triangle", r.Triangle),
		)
	default:
		g.logger.Info("mesh rejected",
			zap.Stringer("reason", r.Reason),
			zap.String("message", r.Message),
			zap.Strings("checks", checkNames(r.Checks)),
		)
	}
	return r
}

func (g *Gate) check(m *mesh.Mesh) *Report {
	r := newReport()
	offset := g.policy.offset()

	// 0. structure
	r.ran(CheckStructure)
	if m == nil || m.IsEmpty() {
		return r.fail(ReasonEmpty, "mesh has no triangles")
	}
	if err := m.Check(); err != nil {
		return r.fail(ReasonMalformed, "%v", err)
	}
	work := m

	// 1. polarity
	if g.policy.CorrectPolarity {
		r.ran(CheckPolarity)
		out, flipped, ok := correctPolarity(m, offset)
		if !ok {
			g.logger.Warn("polarity correction failed, continuing with the input mesh",
				zap.Float64("volume", SignedVolume(m, offset)),
			)
		}
		work = out
		r.Corrected = flipped
	}
	r.Mesh = work
	v := meshview.New(work)
	g.logger.Debug("checking mesh",
		zap.Int("vertices", v.NumVertices()),
		zap.Int("edges", v.NumEdges()),
		zap.Int("triangles", v.NumTriangles()),
	)

	// 2. manifold and watertight
	r.ran(CheckManifold)
	if reason, vert := checkManifold(v, g.policy.RequireWatertight); reason != ReasonNone {
		r.Vertex = vert
		if reason == ReasonNotWatertight {
			return r.fail(reason, "vertex %d lies on a boundary edge", vert)
		}
		return r.fail(reason, "vertex %d is not manifold", vert)
	}

	// 3. orientation
	r.ran(CheckOrientation)
	var (
		comps  []component
		failed *Report
	)
	if g.policy.ExactSeed {
		comps, failed = g.orientExact(v, r, offset)
	} else {
		comps, failed = g.orientSweep(v, r)
	}
	if failed != nil {
		return failed
	}
	r.Components = len(comps)

	// 4. self-intersection
	r.ran(CheckSelfIntersection)
	if pairs := g.finder.FindIntersections(work); len(pairs) > 0 {
		r.Pairs = pairs
		r.Triangle = pairs[0].A
		return r.fail(ReasonSelfIntersecting, "%d intersecting triangle pair(s), first (%d, %d)",
			len(pairs), pairs[0].A, pairs[0].B)
	}

	// 5. component polarity
	if g.policy.ExactSeed && len(comps) > 1 {
		r.ran(CheckComponentPolarity)
		if i, w := checkComponentPolarity(v, comps); i >= 0 {
			c := comps[i]
			r.Vertex = int(c.anchor)
			r.Triangle = c.tris[0]
			return r.fail(ReasonMisoriented, "component %d at vertex %d is wound against its enclosure (winding %.3f)",
				i, c.anchor, w)
		}
	}

	r.Valid = true
	return r
}

// orientExact seeds and floods every component. The first component holds
// the global minimum-x vertex and must probe outward.
func (g *Gate) orientExact(v *meshview.View, r *Report, offset float64) ([]component, *Report) {
	visited := make([]bool, v.NumTriangles())
	active := func(t int) bool { return !visited[t] }

	var comps []component
	for remaining(visited) {
		s, err := findSeed(v, active, offset)
		if err != nil {
			return nil, r.fail(ReasonInternal, "seed selection: %v", err)
		}
		if len(comps) == 0 && s.probe > 0 {
			r.Vertex = int(s.anchor)
			r.Triangle = s.tri
			return nil, r.fail(ReasonMisoriented, "seed triangle %d faces inward", s.tri)
		}
		res := flood(v, s.tri, visited)
		if res.bad >= 0 {
			r.Triangle = res.bad
			return nil, r.fail(ReasonMisoriented, "triangle %d is wound like its neighbour %d across edge %v",
				res.bad, res.from, v.Edge(res.edge))
		}
		comps = append(comps, component{tris: res.tris, anchor: s.anchor, probe: s.probe})
	}
	return comps, nil
}

// orientSweep floods every component from its first triangle without a
// probe, checking only that winding is consistent within each.
func (g *Gate) orientSweep(v *meshview.View, r *Report) ([]component, *Report) {
	visited := make([]bool, v.NumTriangles())
	var comps []component
	for t := range visited {
		if visited[t] {
			continue
		}
		res := flood(v, t, visited)
		if res.bad >= 0 {
			r.Triangle = res.bad
			return nil, r.fail(ReasonMisoriented, "triangle %d is wound like its neighbour %d across edge %v",
				res.bad, res.from, v.Edge(res.edge))
		}
		tri := v.Mesh.Triangle(t)
		comps = append(comps, component{tris: res.tris, anchor: tri[0]})
	}
	return comps, nil
}

func remaining(visited []bool) bool {
	return lo.Contains(visited, false)
}

func checkNames(cs []Check) []string {
	return lo.Map(cs, func(c Check, _ int) string { return string(c) })
}
