package validate

import "github.com/chazu/meshbool/pkg/meshview"

// checkManifold visits referenced vertices in index order and returns the
// first one that is not manifold, or, when watertight is set, lies on a
// boundary edge. Unreferenced vertices are ignored.
func checkManifold(v *meshview.View, watertight bool) (Reason, int) {
	for i := 0; i < v.NumVertices(); i++ {
		vi := uint32(i)
		if !v.Referenced(vi) {
			continue
		}
		if !v.VertexIsManifold(vi) {
			return ReasonNonManifold, i
		}
		if watertight && v.VertexIsBoundary(vi) {
			return ReasonNotWatertight, i
		}
	}
	return ReasonNone, -1
}
