package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/booleans"
	"github.com/chazu/meshbool/pkg/config"
	"github.com/chazu/meshbool/pkg/engine"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/manifold"
	"github.com/chazu/meshbool/pkg/kernel/sdfx"
	"github.com/chazu/meshbool/pkg/mesh"
	"github.com/chazu/meshbool/pkg/validate"
)

// App wires the configured gate, kernel and script engine together.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	dispatcher *booleans.Dispatcher
	engine     *engine.Engine
}

// ScriptError carries the eval errors of a failed script.
type ScriptError struct {
	Errors []engine.EvalError
}

func (e *ScriptError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ee := range e.Errors {
		msgs[i] = ee.Error()
	}
	return "script failed: " + strings.Join(msgs, "; ")
}

// NewApp creates an App from cfg.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	k, err := newKernel(cfg, log)
	if err != nil {
		return nil, err
	}

	d := booleans.New(
		booleans.WithKernel(kernel.Resolving(k)),
		booleans.WithGate(validate.New(validate.WithPolicy(policy), validate.WithLogger(log))),
		booleans.WithLogger(log),
	)
	return &App{
		cfg:        cfg,
		logger:     log,
		dispatcher: d,
		engine: engine.NewEngine(
			engine.WithDispatcher(d),
			engine.WithTimeout(cfg.Engine.Timeout),
			engine.WithLogger(log),
		),
	}, nil
}

func newKernel(cfg *config.Config, log *zap.Logger) (kernel.Kernel, error) {
	switch cfg.Kernel.Backend {
	case "sdfx":
		return sdfx.New(sdfx.WithCells(cfg.Kernel.MeshCells), sdfx.WithLogger(log)), nil
	case "manifold":
		return manifold.New(manifold.WithLogger(log))
	}
	return nil, fmt.Errorf("unknown kernel backend %q", cfg.Kernel.Backend)
}

// Evaluate runs a scene script. Eval errors are returned as *ScriptError.
func (a *App) Evaluate(source string) (*engine.Scene, error) {
	scene, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		return nil, &ScriptError{Errors: evalErrs}
	}
	return scene, nil
}

// WriteSTL writes every non-empty output of scene to dir as <name>.stl and
// returns the written paths.
func (a *App) WriteSTL(dir string, scene *engine.Scene) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var written []string
	for _, o := range scene.Outputs {
		if o.Mesh.IsEmpty() {
			a.logger.Warn("skipping empty output", zap.String("name", o.Name))
			continue
		}
		path := filepath.Join(dir, filepath.Base(o.Name)+".stl")
		if err := render.SaveSTL(path, toTriangles(o.Mesh)); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		a.logger.Info("wrote output",
			zap.String("path", path),
			zap.Int("triangles", o.Mesh.TriangleCount()),
		)
		written = append(written, path)
	}
	return written, nil
}

func toTriangles(m *mesh.Mesh) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, m.TriangleCount())
	for t := range out {
		p := m.TrianglePoints(t)
		out[t] = &sdf.Triangle3{p[0], p[1], p[2]}
	}
	return out
}
