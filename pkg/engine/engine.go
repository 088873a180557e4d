// Package engine provides the Lisp evaluation engine for meshbool scene
// scripts. It wraps zygomys in a sandboxed environment and produces a Scene
// of named meshes and gate reports from user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/booleans"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/sdfx"
	"github.com/chazu/meshbool/pkg/mesh"
	"github.com/chazu/meshbool/pkg/validate"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Output is a mesh emitted by (output "name" m).
type Output struct {
	Name string
	Mesh *mesh.Mesh
}

// Check is a gate report produced by (validate m).
type Check struct {
	Name   string
	Report *validate.Report
}

// Scene is the result of evaluating a script.
type Scene struct {
	Outputs []Output
	Checks  []Check
}

// Lookup returns the output mesh with the given name, or nil.
func (s *Scene) Lookup(name string) *mesh.Mesh {
	for _, o := range s.Outputs {
		if o.Name == name {
			return o.Mesh
		}
	}
	return nil
}

// Engine wraps the zygomys interpreter for scene evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	dispatcher *booleans.Dispatcher
	timeout    time.Duration
	logger     *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDispatcher sets the dispatcher used by (validate ...) and
// (boolean ...). The default is a strict gate with the sdfx kernel.
func WithDispatcher(d *booleans.Dispatcher) Option {
	return func(e *Engine) { e.dispatcher = d }
}

// WithTimeout sets the evaluation limit. Values <= 0 keep EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout, logger: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	if e.dispatcher == nil {
		e.dispatcher = booleans.New(
			booleans.WithKernel(kernel.Resolving(sdfx.New(sdfx.WithLogger(e.logger)))),
			booleans.WithLogger(e.logger),
		)
	}
	return e
}

// Evaluate runs source with no deadline besides the engine's timeout.
func (e *Engine) Evaluate(source string) (*Scene, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext takes Lisp source code and produces a new Scene. Each call
// creates a fresh zygomys sandbox, so nothing leaks between scripts.
//
// A script that fails to parse or raises an error yields a nil scene and
// its EvalErrors. Timeouts, cancellation, panics and superseded runs are
// returned as the error.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("panic in script", zap.Any("panic", r))
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		s, evalErrs, err := e.evaluate(source)
		ch <- evalResult{scene: s, errors: evalErrs, err: err}
	}()

	return e.await(ctx, ch, gen)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Scene, []EvalError, error) {
	scene := &Scene{}

	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return scene, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &builtinContext{
		scene:      scene,
		dispatcher: e.dispatcher,
		logger:     e.logger,
	})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	e.logger.Debug("scene evaluated",
		zap.Int("outputs", len(scene.Outputs)),
		zap.Int("checks", len(scene.Checks)),
	)
	return scene, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
