package main

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/booleans"
	"github.com/chazu/meshbool/pkg/config"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/sdfx"
	"github.com/chazu/meshbool/pkg/logger"
	"github.com/chazu/meshbool/pkg/mesh"
	"github.com/chazu/meshbool/pkg/validate"
)

// Environment variables read once when the library is first called.
const (
	envConfig   = "MESHBOOL_CONFIG"
	envLogLevel = "MESHBOOL_LOG_LEVEL"
	envLogFile  = "MESHBOOL_LOG_FILE"
)

var errNegativeCount = errors.New("negative element count")

// dispatchers holds the strict and relaxed dispatchers shared by all calls.
type dispatchers struct {
	strict  *booleans.Dispatcher
	relaxed *booleans.Dispatcher
	logger  *zap.Logger
}

var (
	shared     *dispatchers
	sharedErr  error
	sharedOnce sync.Once

	// libLog is the dispatchers' logger once they exist.
	libLog atomic.Pointer[zap.Logger]

	buildDispatchers = newDispatchers
)

// getDispatchers builds the shared dispatchers on first use. A panic while
// building them is reported on this and every later call.
func getDispatchers() (*dispatchers, error) {
	sharedOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				sharedErr = fmt.Errorf("initializing dispatchers: %v", r)
				logger.Log.Error("library initialization failed", zap.Any("panic", r))
			}
		}()
		shared = buildDispatchers()
		libLog.Store(shared.logger)
	})
	return shared, sharedErr
}

// currentLogger returns the dispatchers' logger, or the process-wide one
// before they are built.
func currentLogger() *zap.Logger {
	if l := libLog.Load(); l != nil {
		return l
	}
	return logger.Log
}

// newDispatchers builds both dispatchers from the optional config file and
// logging environment. The library never logs to the console.
func newDispatchers() *dispatchers {
	cfg := config.Default()
	var loadErr error
	if path := os.Getenv(envConfig); path != "" {
		if c, err := config.Load(&config.Flags{Config: path}); err != nil {
			loadErr = err
		} else {
			cfg = c
		}
	}
	if lvl := os.Getenv(envLogLevel); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if f := os.Getenv(envLogFile); f != "" {
		cfg.Logging.LogFile = f
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	log, err := logger.New(cfg.Logging.Level, fileCfg, nil)
	if err != nil {
		log = zap.NewNop()
	}
	if loadErr != nil {
		log.Warn("ignoring config", zap.String("path", os.Getenv(envConfig)), zap.Error(loadErr))
	}

	strict := validate.Strict()
	strict.ProbeOffset = cfg.Validation.ProbeOffset
	relaxed := validate.Relaxed()
	relaxed.ProbeOffset = cfg.Validation.ProbeOffset

	k := kernel.Resolving(sdfx.New(sdfx.WithCells(cfg.Kernel.MeshCells), sdfx.WithLogger(log)))
	build := func(p validate.Policy) *booleans.Dispatcher {
		return booleans.New(
			booleans.WithKernel(k),
			booleans.WithGate(validate.New(validate.WithPolicy(p), validate.WithLogger(log))),
			booleans.WithLogger(log),
		)
	}
	return &dispatchers{strict: build(strict), relaxed: build(relaxed), logger: log}
}

// meshFromScalars builds a mesh from a flat coordinate array and triangle
// index array.
func meshFromScalars(coords []float64, tris []uint32) (*mesh.Mesh, error) {
	return mesh.New(append([]float64(nil), coords...), append([]uint32(nil), tris...))
}

// meshFromFaces builds a mesh from signed face indices. Negative indices
// are rejected.
func meshFromFaces(faces []int32, verts []float64) (*mesh.Mesh, error) {
	tris := make([]uint32, len(faces))
	for i, f := range faces {
		if f < 0 {
			return nil, fmt.Errorf("face index %d is negative: %w", i, mesh.ErrIndexOutOfRange)
		}
		tris[i] = uint32(f)
	}
	return mesh.New(append([]float64(nil), verts...), tris)
}

// faceResult is the output of meshBoolean in face/vertex form.
type faceResult struct {
	faces []int32
	verts []float64
}

// meshBoolean runs the relaxed pipeline on face/vertex input.
func meshBoolean(d *booleans.Dispatcher, op int, f1 []int32, v1 []float64, f2 []int32, v2 []float64) (int, *faceResult) {
	a, err := meshFromFaces(f1, v1)
	if err != nil {
		return int(booleans.CodeInvalid), nil
	}
	b, err := meshFromFaces(f2, v2)
	if err != nil {
		return int(booleans.CodeInvalid), nil
	}

	var out booleans.Output
	n := d.BoolMeshes(&out, op, a, b)
	if n <= 0 {
		return int(n), nil
	}
	res := &faceResult{
		faces: make([]int32, len(out.Tris)),
		verts: out.Coords,
	}
	for i, t := range out.Tris {
		res.faces[i] = int32(t)
	}
	return int(n), res
}
