// Package intersect finds pairs of triangles in a mesh whose interiors
// intersect. Triangles that merely touch through a shared vertex or a
// shared edge are not reported.
//
// The broad phase is an R-tree of padded triangle bounding boxes, the narrow
// phase uses the exact predicates of package geom and depends on how many
// vertex indices the two triangles share.
package intersect

import (
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/geom"
	"github.com/chazu/meshbool/pkg/mesh"
)

// Pair is an unordered triangle pair with A < B.
type Pair struct {
	A, B int
}

// Detector finds self-intersections. The zero value is not usable; call New.
type Detector struct {
	minChildren int
	maxChildren int
	logger      *zap.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithBranching sets the R-tree node fan-out.
func WithBranching(min, max int) Option {
	return func(d *Detector) {
		if min > 0 && max >= 2*min {
			d.minChildren, d.maxChildren = min, max
		}
	}
}

// New creates a Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		minChildren: 25,
		maxChildren: 50,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// box is the R-tree entry for one triangle.
type box struct {
	tri  int
	rect rtreego.Rect
}

func (b *box) Bounds() rtreego.Rect { return b.rect }

// FindIntersections returns the intersecting triangle pairs of m sorted by
// (A, B). m must have passed mesh.Check.
func (d *Detector) FindIntersections(m *mesh.Mesh) []Pair {
	nt := m.TriangleCount()
	if nt < 2 {
		return nil
	}

	pad := padding(m)
	boxes := make([]*box, 0, nt)
	objs := make([]rtreego.Spatial, 0, nt)
	for t := 0; t < nt; t++ {
		p := m.TrianglePoints(t)
		if geom.IsDegenerate(p[0], p[1], p[2]) {
			continue
		}
		b := &box{tri: t, rect: triangleRect(p, pad)}
		boxes = append(boxes, b)
		objs = append(objs, b)
	}
	tree := rtreego.NewTree(3, d.minChildren, d.maxChildren, objs...)

	var pairs []Pair
	candidates := 0
	for _, b := range boxes {
		for _, hit := range tree.SearchIntersect(b.rect) {
			o := hit.(*box).tri
			if o <= b.tri {
				continue
			}
			candidates++
			if Intersects(m, b.tri, o) {
				pairs = append(pairs, Pair{A: b.tri, B: o})
			}
		}
	}

	slices.SortFunc(pairs, func(x, y Pair) int {
		if x.A != y.A {
			return x.A - y.A
		}
		return x.B - y.B
	})
	d.logger.Debug("self-intersection scan",
		zap.Int("triangles", nt),
		zap.Int("candidates", candidates),
		zap.Int("pairs", len(pairs)),
	)
	return pairs
}

// padding grows every box a little so that zero-thickness and merely
// touching boxes still overlap in the tree.
func padding(m *mesh.Mesh) float64 {
	scale := 1.0
	for _, c := range m.Coords {
		scale = math.Max(scale, math.Abs(c))
	}
	return scale * 1e-9
}

func triangleRect(p [3]v3.Vec, pad float64) rtreego.Rect {
	lo := p[0]
	hi := p[0]
	for _, q := range p[1:] {
		lo = v3.Vec{X: math.Min(lo.X, q.X), Y: math.Min(lo.Y, q.Y), Z: math.Min(lo.Z, q.Z)}
		hi = v3.Vec{X: math.Max(hi.X, q.X), Y: math.Max(hi.Y, q.Y), Z: math.Max(hi.Z, q.Z)}
	}
	point := rtreego.Point{lo.X - pad, lo.Y - pad, lo.Z - pad}
	lengths := []float64{hi.X - lo.X + 2*pad, hi.Y - lo.Y + 2*pad, hi.Z - lo.Z + 2*pad}
	r, err := rtreego.NewRect(point, lengths)
	if err != nil {
		// lengths are positive by construction
		panic(err)
	}
	return r
}
