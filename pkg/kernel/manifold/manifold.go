//go:build manifold

// Package manifold provides a CGo-based boolean kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold computes
// exact, guaranteed-manifold mesh booleans.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/mesh"
)

// Compile-time interface check.
var _ kernel.Kernel = (*ManifoldKernel)(nil)

// solid wraps a C ManifoldManifold pointer.
type solid struct {
	ptr *C.ManifoldManifold
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *solid {
	s := &solid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *solid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

func (s *solid) status() error {
	if st := C.manifold_status(s.ptr); st != C.MANIFOLD_NO_ERROR {
		return fmt.Errorf("manifold: status %d", int(st))
	}
	return nil
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct {
	logger *zap.Logger
}

// Option configures a ManifoldKernel.
type Option func(*ManifoldKernel)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(k *ManifoldKernel) {
		if l != nil {
			k.logger = l
		}
	}
}

// New creates a new ManifoldKernel.
func New(opts ...Option) (kernel.Kernel, error) {
	k := &ManifoldKernel{logger: zap.NewNop()}
	for _, o := range opts {
		o(k)
	}
	return k, nil
}

// Name implements kernel.Kernel.
func (k *ManifoldKernel) Name() string { return "manifold" }

// Boolean implements kernel.Kernel.
func (k *ManifoldKernel) Boolean(in *kernel.LabeledMesh, op kernel.Op) (*mesh.Mesh, error) {
	a, b := in.Split()
	sa, err := fromMesh(a)
	if err != nil {
		return nil, fmt.Errorf("manifold: operand A: %w", err)
	}
	sb, err := fromMesh(b)
	if err != nil {
		return nil, fmt.Errorf("manifold: operand B: %w", err)
	}

	var r *solid
	switch op {
	case kernel.Union:
		r = boolean(sa, sb, C.MANIFOLD_ADD)
	case kernel.Subtraction:
		r = boolean(sa, sb, C.MANIFOLD_SUBTRACT)
	case kernel.Intersection:
		r = boolean(sa, sb, C.MANIFOLD_INTERSECT)
	case kernel.XOR:
		r = boolean(
			boolean(sa, sb, C.MANIFOLD_SUBTRACT),
			boolean(sb, sa, C.MANIFOLD_SUBTRACT),
			C.MANIFOLD_ADD,
		)
	default:
		return nil, fmt.Errorf("manifold: unsupported operator %v", op)
	}
	if err := r.status(); err != nil {
		return nil, err
	}

	out, err := toMesh(r)
	if err != nil {
		return nil, err
	}
	k.logger.Debug("manifold boolean",
		zap.Stringer("op", op),
		zap.Int("triangles", out.TriangleCount()),
	)
	return out, nil
}

func boolean(a, b *solid, op C.ManifoldOpType) *solid {
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_boolean(alloc, a.ptr, b.ptr, op))
}

// fromMesh uploads m through Manifold's MeshGL format with positions as the
// only vertex properties.
func fromMesh(m *mesh.Mesh) (*solid, error) {
	if m.IsEmpty() {
		return nil, errors.New("mesh has no triangles")
	}
	props := make([]float32, len(m.Coords))
	for i, c := range m.Coords {
		props[i] = float32(c)
	}
	tris := append([]uint32(nil), m.Tris...)

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_meshgl(meshAlloc,
		(*C.float)(unsafe.Pointer(&props[0])),
		C.size_t(m.VertexCount()),
		C.size_t(3),
		(*C.uint32_t)(unsafe.Pointer(&tris[0])),
		C.size_t(m.TriangleCount()),
	)
	defer C.manifold_delete_meshgl(meshGL)

	alloc := C.manifold_alloc_manifold()
	s := newSolid(C.manifold_of_meshgl(alloc, meshGL))
	if err := s.status(); err != nil {
		return nil, err
	}
	return s, nil
}

// toMesh extracts a triangle mesh from the solid using Manifold's MeshGL
// format. Vertex properties are interleaved in MeshGL; only the leading
// position triple of each vertex is kept.
func toMesh(s *solid) (*mesh.Mesh, error) {
	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, s.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))

	if numVert == 0 || numTri == 0 {
		return &mesh.Mesh{}, nil
	}

	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	coords := make([]float64, numVert*3)
	for i := 0; i < numVert; i++ {
		base := i * numProp
		coords[i*3+0] = float64(propData[base+0])
		coords[i*3+1] = float64(propData[base+1])
		coords[i*3+2] = float64(propData[base+2])
	}

	out, err := mesh.New(coords, indices)
	if err != nil {
		return nil, fmt.Errorf("manifold: %w", err)
	}
	return out, nil
}
