//go:build !manifold

// Package manifold provides a CGo-based boolean kernel binding to the
// Manifold library. When the "manifold" build tag is not set, this stub
// package is compiled instead, returning an error from New().
//
// Build with: go build -tags=manifold
package manifold

import (
	"errors"

	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/kernel"
)

// ErrUnavailable is returned by New when built without the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// Option configures the kernel. It has no effect in this build.
type Option func()

// WithLogger sets the logger. It has no effect in this build.
func WithLogger(*zap.Logger) Option { return func() {} }

// New returns ErrUnavailable.
// Build with -tags=manifold to enable.
func New(...Option) (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
