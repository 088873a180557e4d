package kernel

import (
	"errors"

	"github.com/chazu/meshbool/pkg/mesh"
)

// ErrUnresolved is returned by a resolving kernel without a fallback when
// the operands need a real boolean.
var ErrUnresolved = errors.New("kernel: operands need a boolean kernel")

// ResolvingKernel answers the cases Resolve covers itself and passes every
// other boolean to the wrapped kernel.
type ResolvingKernel struct {
	next Kernel
}

// Compile-time interface check.
var _ Kernel = (*ResolvingKernel)(nil)

// Resolving wraps next with Resolve. next may be nil, in which case only
// resolvable operands succeed.
func Resolving(next Kernel) *ResolvingKernel {
	return &ResolvingKernel{next: next}
}

// Name implements Kernel. It reports the wrapped kernel's name.
func (k *ResolvingKernel) Name() string {
	if k.next == nil {
		return "resolve"
	}
	return k.next.Name()
}

// Boolean implements Kernel.
func (k *ResolvingKernel) Boolean(in *LabeledMesh, op Op) (*mesh.Mesh, error) {
	if out, ok := Resolve(in, op); ok {
		return out, nil
	}
	if k.next == nil {
		return nil, ErrUnresolved
	}
	return k.next.Boolean(in, op)
}

// Resolve answers the boolean without a kernel when the result follows from
// the operands alone: one operand is empty, their bounding boxes are
// strictly apart, or they are identical. ok is false otherwise.
func Resolve(in *LabeledMesh, op Op) (out *mesh.Mesh, ok bool) {
	a, b := in.Split()

	switch {
	case a.IsEmpty() || b.IsEmpty():
		switch op {
		case Subtraction:
			return a, true
		case Intersection:
			return &mesh.Mesh{}, true
		}
		if a.IsEmpty() {
			return b, true
		}
		return a, true

	case disjoint(a, b):
		switch op {
		case Subtraction:
			return a, true
		case Intersection:
			return &mesh.Mesh{}, true
		}
		return mesh.Concat(a, b), true

	case a.Equal(b):
		switch op {
		case Union, Intersection:
			return a, true
		}
		return &mesh.Mesh{}, true
	}
	return nil, false
}

// disjoint reports whether the bounding boxes are separated on some axis.
// Touching boxes are not disjoint.
func disjoint(a, b *mesh.Mesh) bool {
	amin, amax, _ := a.BoundingBox()
	bmin, bmax, _ := b.BoundingBox()
	return amax.X < bmin.X || bmax.X < amin.X ||
		amax.Y < bmin.Y || bmax.Y < amin.Y ||
		amax.Z < bmin.Z || bmax.Z < amin.Z
}
