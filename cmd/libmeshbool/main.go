// libmeshbool exposes the mesh validity gate and boolean dispatch through a
// C ABI. Build with:
//
//	go build -buildmode=c-shared -o libmeshbool.so ./cmd/libmeshbool
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/booleans"
	"github.com/chazu/meshbool/pkg/mesh"
)

func main() {}

// recoverCode turns a panic into the pipeline failure code.
func recoverCode(ret *int64) {
	if r := recover(); r != nil {
		currentLogger().Error("panic in boolean", zap.Any("panic", r))
		*ret = booleans.CodePipelineFailed
	}
}

// bool_meshes validates both meshes with the strict gate and computes the
// boolean. Coordinate counts are scalar counts. When any output pointer is
// NULL only the triangle count is returned. Output buffers are allocated
// with calloc and owned by the caller.
//
//export bool_meshes
func bool_meshes(
	oCoords **C.double, oClen *C.int, oTris **C.uint, oTricnt *C.int,
	bOp C.int,
	aCoords *C.double, aClen C.int, aTris *C.uint, aTricnt C.int,
	bCoords *C.double, bClen C.int, bTris *C.uint, bTricnt C.int,
) (ret C.long) {
	code := int64(booleans.CodePipelineFailed)
	defer func() { ret = C.long(code) }()
	defer recoverCode(&code)

	withOutput := oCoords != nil && oClen != nil && oTris != nil && oTricnt != nil
	if withOutput {
		*oCoords, *oClen, *oTris, *oTricnt = nil, 0, nil, 0
	}

	a, err := cMeshScalars(aCoords, aClen, aTris, aTricnt)
	if err != nil {
		code = booleans.CodeInvalid
		return
	}
	b, err := cMeshScalars(bCoords, bClen, bTris, bTricnt)
	if err != nil {
		code = booleans.CodeInvalid
		return
	}

	ds, err := getDispatchers()
	if err != nil {
		return
	}
	if !withOutput {
		code = ds.strict.BoolMeshes(nil, int(bOp), a, b)
		return
	}

	var out booleans.Output
	code = ds.strict.BoolMeshes(&out, int(bOp), a, b)
	if code <= 0 {
		return
	}
	*oCoords = copyDoubles(out.Coords)
	*oClen = C.int(out.CoordCount)
	*oTris = copyUints(out.Tris)
	*oTricnt = C.int(out.TriCount)
	return
}

// mesh_boolean validates both meshes with the relaxed gate and computes the
// boolean. Vertex arrays hold num_vertices points of three doubles; face
// arrays hold num_faces index triples. NULL output pointers are an error.
//
//export mesh_boolean
func mesh_boolean(
	faces **C.int, numFaces *C.int, vertices **C.double, numVertices *C.int,
	f1 *C.int, nf1 C.int, v1 *C.double, nv1 C.int,
	op C.int,
	f2 *C.int, nf2 C.int, v2 *C.double, nv2 C.int,
) (ret C.int) {
	code := int64(booleans.CodePipelineFailed)
	defer func() { ret = C.int(code) }()
	defer recoverCode(&code)

	if faces == nil || numFaces == nil || vertices == nil || numVertices == nil {
		code = booleans.CodeInvalid
		return
	}
	*faces, *numFaces, *vertices, *numVertices = nil, 0, nil, 0

	fa, va, ok1 := cFaces(f1, nf1, v1, nv1)
	fb, vb, ok2 := cFaces(f2, nf2, v2, nv2)
	if !ok1 || !ok2 {
		code = booleans.CodeInvalid
		return
	}

	ds, err := getDispatchers()
	if err != nil {
		return
	}
	n, res := meshBoolean(ds.relaxed, int(op), fa, va, fb, vb)
	code = int64(n)
	if res == nil {
		return
	}
	*faces = copyInts(res.faces)
	*numFaces = C.int(len(res.faces) / 3)
	*vertices = copyDoubles(res.verts)
	*numVertices = C.int(len(res.verts) / 3)
	return
}

func cMeshScalars(coords *C.double, clen C.int, tris *C.uint, tricnt C.int) (*mesh.Mesh, error) {
	if clen < 0 || tricnt < 0 {
		return nil, errNegativeCount
	}
	if (clen > 0 && coords == nil) || (tricnt > 0 && tris == nil) {
		return nil, mesh.ErrCoordLength
	}
	var cs []float64
	if clen > 0 {
		cs = unsafe.Slice((*float64)(unsafe.Pointer(coords)), int(clen))
	}
	var ts []uint32
	if tricnt > 0 {
		ts = unsafe.Slice((*uint32)(unsafe.Pointer(tris)), int(tricnt)*3)
	}
	return meshFromScalars(cs, ts)
}

func cFaces(f *C.int, nf C.int, v *C.double, nv C.int) ([]int32, []float64, bool) {
	if nf < 0 || nv < 0 || (nf > 0 && f == nil) || (nv > 0 && v == nil) {
		return nil, nil, false
	}
	var fs []int32
	if nf > 0 {
		fs = unsafe.Slice((*int32)(unsafe.Pointer(f)), int(nf)*3)
	}
	var vs []float64
	if nv > 0 {
		vs = unsafe.Slice((*float64)(unsafe.Pointer(v)), int(nv)*3)
	}
	return fs, vs, true
}

func copyDoubles(src []float64) *C.double {
	p := (*C.double)(C.calloc(C.size_t(len(src)), C.size_t(unsafe.Sizeof(C.double(0)))))
	copy(unsafe.Slice((*float64)(unsafe.Pointer(p)), len(src)), src)
	return p
}

func copyUints(src []uint32) *C.uint {
	p := (*C.uint)(C.calloc(C.size_t(len(src)), C.size_t(unsafe.Sizeof(C.uint(0)))))
	copy(unsafe.Slice((*uint32)(unsafe.Pointer(p)), len(src)), src)
	return p
}

func copyInts(src []int32) *C.int {
	p := (*C.int)(C.calloc(C.size_t(len(src)), C.size_t(unsafe.Sizeof(C.int(0)))))
	copy(unsafe.Slice((*int32)(unsafe.Pointer(p)), len(src)), src)
	return p
}
