// Package kernel defines the boolean kernel interface. Implementations
// (sdfx, manifold) compute the boolean of two labeled operands behind this
// interface, so the dispatch layer can swap backends without changes.
package kernel

import (
	"fmt"
	"strings"

	"github.com/chazu/meshbool/pkg/mesh"
)

// Op is a boolean operator.
type Op int

const (
	Union Op = iota
	Subtraction
	Intersection
	XOR
)

func (o Op) String() string {
	switch o {
	case Union:
		return "union"
	case Subtraction:
		return "subtraction"
	case Intersection:
		return "intersection"
	case XOR:
		return "xor"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// OpFromCode maps an integer operator code: 1 subtraction, 2 intersection,
// 3 xor, 0 union. Any other code maps to Union with ok set to false.
func OpFromCode(code int) (op Op, ok bool) {
	switch code {
	case 0:
		return Union, true
	case 1:
		return Subtraction, true
	case 2:
		return Intersection, true
	case 3:
		return XOR, true
	}
	return Union, false
}

// ParseOp maps an operator name such as "union" or "sub" to an Op.
func ParseOp(name string) (Op, bool) {
	switch strings.ToLower(strings.TrimPrefix(name, ":")) {
	case "union", "add":
		return Union, true
	case "subtraction", "subtract", "difference", "sub":
		return Subtraction, true
	case "intersection", "intersect", "inter":
		return Intersection, true
	case "xor":
		return XOR, true
	}
	return Union, false
}

// Kernel computes booleans. in carries both operands, told apart by label.
// A successful empty result is an empty mesh, not an error.
type Kernel interface {
	Name() string
	Boolean(in *LabeledMesh, op Op) (*mesh.Mesh, error)
}
