// Package booleans validates two meshes and dispatches them to a boolean
// kernel. It is the layer behind the flat C entry points: it owns the
// integer operator codes, the return code convention and the output buffer
// contract.
package booleans

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/mesh"
	"github.com/chazu/meshbool/pkg/validate"
)

// Return codes of BoolMeshes besides the non-negative triangle count.
const (
	CodeInvalid        int64 = -1
	CodePipelineFailed int64 = -2
)

// ErrNoKernel is returned when no kernel is set.
var ErrNoKernel = errors.New("booleans: no kernel configured")

// Operand names an input of a boolean.
type Operand string

const (
	OperandA Operand = "A"
	OperandB Operand = "B"
)

// InvalidInputError reports an operand rejected by the validity gate.
type InvalidInputError struct {
	Operand Operand
	Report  *validate.Report
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("booleans: operand %s: %s", e.Operand, e.Report)
}

// Result is a successful boolean.
type Result struct {
	Mesh *mesh.Mesh
	Op   kernel.Op
}

// Output receives the result of BoolMeshes. CoordCount is the number of
// doubles in Coords (3 per vertex); TriCount is the number of triangles.
type Output struct {
	Coords     []float64
	CoordCount int
	Tris       []uint32
	TriCount   int
}

// Dispatcher runs the gate and the kernel. It holds no per-call state and
// is safe for concurrent use when its kernel is.
type Dispatcher struct {
	gate   *validate.Gate
	kernel kernel.Kernel
	logger *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithGate sets the validity gate. The default is a strict gate.
func WithGate(g *validate.Gate) Option {
	return func(d *Dispatcher) {
		if g != nil {
			d.gate = g
		}
	}
}

// WithKernel sets the boolean kernel. Every pair of valid operands is
// passed to it; wrap it with kernel.Resolving to answer disjoint, identical
// or empty operands without a full boolean.
func WithKernel(k kernel.Kernel) Option {
	return func(d *Dispatcher) { d.kernel = k }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{logger: zap.NewNop()}
	for _, o := range opts {
		o(d)
	}
	if d.gate == nil {
		d.gate = validate.New(validate.WithLogger(d.logger))
	}
	return d
}

// Gate returns the validity gate.
func (d *Dispatcher) Gate() *validate.Gate { return d.gate }

// Boolean validates a and b and computes the boolean. A rejected operand is
// reported as *InvalidInputError; kernel failures are wrapped.
func (d *Dispatcher) Boolean(a, b *mesh.Mesh, op kernel.Op) (*Result, error) {
	ra := d.gate.Check(a)
	if !ra.Valid {
		return nil, &InvalidInputError{Operand: OperandA, Report: ra}
	}
	rb := d.gate.Check(b)
	if !rb.Valid {
		return nil, &InvalidInputError{Operand: OperandB, Report: rb}
	}

	if d.kernel == nil {
		return nil, ErrNoKernel
	}
	in := kernel.Merge(ra.Mesh, rb.Mesh)
	out, err := d.kernel.Boolean(in, op)
	if err != nil {
		return nil, fmt.Errorf("booleans: %s kernel: %w", d.kernel.Name(), err)
	}
	if out == nil {
		out = &mesh.Mesh{}
	}
	d.logger.Debug("boolean computed",
		zap.String("kernel", d.kernel.Name()),
		zap.Stringer("op", op),
		zap.Int("triangles", out.TriangleCount()),
	)
	return &Result{Mesh: out, Op: op}, nil
}

// BoolMeshes is the flat form of Boolean. opCode follows kernel.OpFromCode;
// unknown codes run as a union. It returns CodeInvalid when an operand is
// rejected, CodePipelineFailed when the kernel fails, and otherwise the
// result's triangle count. out is filled only for a non-empty result and
// may be nil to ask for the count alone.
func (d *Dispatcher) BoolMeshes(out *Output, opCode int, a, b *mesh.Mesh) int64 {
	op, ok := kernel.OpFromCode(opCode)
	if !ok {
		d.logger.Warn("unknown operator code, running union", zap.Int("code", opCode))
	}

	res, err := d.Boolean(a, b, op)
	if err != nil {
		var invalid *InvalidInputError
		if errors.As(err, &invalid) {
			d.logger.Info("boolean input rejected",
				zap.String("operand", string(invalid.Operand)),
				zap.Stringer("reason", invalid.Report.Reason),
				zap.String("message", invalid.Report.Message),
			)
			return CodeInvalid
		}
		d.logger.Error("boolean pipeline failed", zap.Error(err))
		return CodePipelineFailed
	}

	n := res.Mesh.TriangleCount()
	if n == 0 || out == nil {
		return int64(n)
	}
	out.Coords = append([]float64(nil), res.Mesh.Coords...)
	out.CoordCount = len(out.Coords)
	out.Tris = append([]uint32(nil), res.Mesh.Tris...)
	out.TriCount = n
	return int64(n)
}
