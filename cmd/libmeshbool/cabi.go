package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/chazu/meshbool/pkg/mesh"
)

// Go-side callers of the exported entry points. Test files cannot use cgo,
// so the C conversions live here.

// abiResult is what an entry point left in its output arguments.
type abiResult struct {
	code   int64
	coords []float64
	tris   []uint32
	faces  []int32
	// count is the scalar coordinate count of bool_meshes or the vertex
	// count of mesh_boolean; tricnt is the triangle or face count.
	count  int
	tricnt int
	// cleared is set when every output pointer came back NULL.
	cleared bool
}

func cScalars(m *mesh.Mesh) (*C.double, C.int, *C.uint, C.int) {
	var (
		cs *C.double
		ts *C.uint
	)
	if len(m.Coords) > 0 {
		cs = (*C.double)(unsafe.Pointer(&m.Coords[0]))
	}
	if len(m.Tris) > 0 {
		ts = (*C.uint)(unsafe.Pointer(&m.Tris[0]))
	}
	return cs, C.int(len(m.Coords)), ts, C.int(m.TriangleCount())
}

// callBoolMeshes runs bool_meshes on a and b. With withOutput false the
// output pointers are NULL. The outputs start out non-NULL so clearing is
// observable.
func callBoolMeshes(op int, a, b *mesh.Mesh, withOutput bool) abiResult {
	ac, acl, at, atc := cScalars(a)
	bc, bcl, bt, btc := cScalars(b)

	if !withOutput {
		code := bool_meshes(nil, nil, nil, nil, C.int(op), ac, acl, at, atc, bc, bcl, bt, btc)
		return abiResult{code: int64(code)}
	}

	var (
		sentinelD C.double
		sentinelU C.uint
	)
	oc, ot := &sentinelD, &sentinelU
	oclen, otc := C.int(-1), C.int(-1)
	code := bool_meshes(&oc, &oclen, &ot, &otc, C.int(op), ac, acl, at, atc, bc, bcl, bt, btc)

	res := abiResult{
		code:    int64(code),
		count:   int(oclen),
		tricnt:  int(otc),
		cleared: oc == nil && ot == nil,
	}
	if oc != nil && oc != &sentinelD {
		res.coords = append([]float64(nil), unsafe.Slice((*float64)(unsafe.Pointer(oc)), int(oclen))...)
		C.free(unsafe.Pointer(oc))
	}
	if ot != nil && ot != &sentinelU {
		res.tris = append([]uint32(nil), unsafe.Slice((*uint32)(unsafe.Pointer(ot)), int(otc)*3)...)
		C.free(unsafe.Pointer(ot))
	}
	return res
}

// callMeshBoolean runs mesh_boolean on a and b in face/vertex form. With
// withOutput false the output pointers are NULL.
func callMeshBoolean(op int, a, b *mesh.Mesh, withOutput bool) abiResult {
	fa, va := cFacesOf(a)
	fb, vb := cFacesOf(b)
	nfa, nva := C.int(a.TriangleCount()), C.int(a.VertexCount())
	nfb, nvb := C.int(b.TriangleCount()), C.int(b.VertexCount())

	if !withOutput {
		code := mesh_boolean(nil, nil, nil, nil, fa, nfa, va, nva, C.int(op), fb, nfb, vb, nvb)
		return abiResult{code: int64(code)}
	}

	var (
		faces    *C.int
		vertices *C.double
		nf, nv   = C.int(-1), C.int(-1)
	)
	code := mesh_boolean(&faces, &nf, &vertices, &nv, fa, nfa, va, nva, C.int(op), fb, nfb, vb, nvb)

	res := abiResult{
		code:    int64(code),
		count:   int(nv),
		tricnt:  int(nf),
		cleared: faces == nil && vertices == nil,
	}
	if faces != nil {
		res.faces = append([]int32(nil), unsafe.Slice((*int32)(unsafe.Pointer(faces)), int(nf)*3)...)
		C.free(unsafe.Pointer(faces))
	}
	if vertices != nil {
		res.coords = append([]float64(nil), unsafe.Slice((*float64)(unsafe.Pointer(vertices)), int(nv)*3)...)
		C.free(unsafe.Pointer(vertices))
	}
	return res
}

func cFacesOf(m *mesh.Mesh) (*C.int, *C.double) {
	var (
		fs *C.int
		vs *C.double
	)
	if len(m.Tris) > 0 {
		faces := make([]int32, len(m.Tris))
		for i, t := range m.Tris {
			faces[i] = int32(t)
		}
		fs = (*C.int)(unsafe.Pointer(&faces[0]))
	}
	if len(m.Coords) > 0 {
		vs = (*C.double)(unsafe.Pointer(&m.Coords[0]))
	}
	return fs, vs
}
