package validate

import "github.com/chazu/meshbool/pkg/meshview"

// floodResult describes one flood-fill pass.
type floodResult struct {
	tris []int
	// bad is the first neighbour found wound like its predecessor, or -1.
	bad  int
	from int
	edge int
}

// flood walks the edge-connected component of start. Every neighbour must
// traverse the shared edge in the opposite direction of the triangle it was
// reached from; the walk stops at the first one that does not. Triangles are
// marked in visited as they are popped.
func flood(v *meshview.View, start int, visited []bool) floodResult {
	res := floodResult{bad: -1, from: -1, edge: -1}
	stack := []int{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		res.tris = append(res.tris, cur)

		for _, adj := range v.AdjacentTriangles(cur) {
			if visited[adj] {
				continue
			}
			e, _ := v.SharedEdge(cur, adj)
			if v.EdgeIsCCW(e, cur) == v.EdgeIsCCW(e, adj) {
				res.bad, res.from, res.edge = adj, cur, e
				return res
			}
			stack = append(stack, adj)
		}
	}
	return res
}
