// Package validate implements the mesh validity gate: the ordered checks a
// mesh has to pass before it may be handed to a boolean kernel.
//
// The gate runs, in order and stopping at the first failure: structural
// sanity, optional polarity correction, manifold and watertight checks,
// orientation consistency (seed probe plus flood-fill, per connected
// component), self-intersection, and, for meshes with several components,
// the polarity of every secondary component relative to the others.
package validate

import (
	"fmt"

	"github.com/chazu/meshbool/pkg/intersect"
	"github.com/chazu/meshbool/pkg/mesh"
)

// Reason classifies why a mesh was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonEmpty
	ReasonMalformed
	ReasonNonManifold
	ReasonNotWatertight
	ReasonMisoriented
	ReasonSelfIntersecting
	// ReasonInternal marks a state the algorithms cannot resolve, such as a
	// seed probe that evaluates to exactly zero.
	ReasonInternal
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonEmpty:
		return "empty"
	case ReasonMalformed:
		return "malformed"
	case ReasonNonManifold:
		return "non-manifold"
	case ReasonNotWatertight:
		return "not-watertight"
	case ReasonMisoriented:
		return "misoriented"
	case ReasonSelfIntersecting:
		return "self-intersecting"
	case ReasonInternal:
		return "internal"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Check names one stage of the gate.
type Check string

const (
	CheckStructure         Check = "structure"
	CheckPolarity          Check = "polarity"
	CheckManifold          Check = "manifold"
	CheckOrientation       Check = "orientation"
	CheckSelfIntersection  Check = "self-intersection"
	CheckComponentPolarity Check = "component-polarity"
)

// Report is the outcome of running the gate on one mesh.
type Report struct {
	Valid   bool
	Reason  Reason
	Message string

	// Vertex and Triangle locate the failure when it has a location, else -1.
	Vertex   int
	Triangle int
	// Pairs holds the intersecting triangle pairs for ReasonSelfIntersecting.
	Pairs []intersect.Pair

	// Checks lists the stages that ran, in order.
	Checks []Check
	// Corrected is set when the polarity corrector flipped the mesh.
	Corrected bool
	// Components is the number of edge-connected components found.
	Components int

	// Mesh is the mesh the checks ran on: the input, or a flipped copy when
	// Corrected is set. It is nil when the structural check failed.
	Mesh *mesh.Mesh
}

func newReport() *Report {
	return &Report{Vertex: -1, Triangle: -1}
}

func (r *Report) ran(c Check) {
	r.Checks = append(r.Checks, c)
}

func (r *Report) fail(reason Reason, format string, args ...any) *Report {
	r.Valid = false
	r.Reason = reason
	r.Message = fmt.Sprintf(format, args...)
	return r
}

// Ran reports whether stage c was executed.
func (r *Report) Ran(c Check) bool {
	for _, x := range r.Checks {
		if x == c {
			return true
		}
	}
	return false
}

func (r *Report) String() string {
	if r.Valid {
		s := fmt.Sprintf("valid (%d component(s)", r.Components)
		if r.Corrected {
			s += ", polarity corrected"
		}
		return s + ")"
	}
	return fmt.Sprintf("invalid: %s: %s", r.Reason, r.Message)
}
