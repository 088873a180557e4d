package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/chazu/meshbool/pkg/booleans"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/mesh"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: triangle-count -> triangle_count
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a mesh so it can be passed between builtins. Builtins never
// modify a wrapped mesh; every transform returns a new one.
type sexpMesh struct {
	m *mesh.Mesh
}

func (s *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh :vertices %d :triangles %d)", s.m.VertexCount(), s.m.TriangleCount())
}
func (s *sexpMesh) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_union) and plain strings ("union").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toMesh extracts a mesh from a sexpMesh.
func toMesh(s zygo.Sexp) (*mesh.Mesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m.m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// toMeshes extracts every positional argument as a mesh.
func toMeshes(fn string, args []zygo.Sexp) ([]*mesh.Mesh, error) {
	out := make([]*mesh.Mesh, 0, len(args))
	for i, a := range args {
		m, err := toMesh(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// floatKW returns the keyword value as a float, or def when absent.
func floatKW(pa kwArgs, fn, key string, def float64) (float64, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return f, nil
}

// vecKW returns the keyword value as a vector. required reports an error
// when the keyword is absent; otherwise the zero vector is returned.
func vecKW(pa kwArgs, fn, key string, required bool) (v3.Vec, error) {
	v, ok := pa.kw[key]
	if !ok {
		if required {
			return v3.Vec{}, fmt.Errorf("%s requires :%s", fn, key)
		}
		return v3.Vec{}, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return vec, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinContext is the state shared by the builtins of one evaluation.
type builtinContext struct {
	scene      *Scene
	dispatcher *booleans.Dispatcher
	logger     *zap.Logger
}

func wrap(m *mesh.Mesh) zygo.Sexp { return &sexpMesh{m: m} }

// registerBuiltins installs all scene builtins into a zygomys environment.
// The builtins record outputs and gate reports in ctx.scene.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, ctx *builtinContext) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (cube :size 2 :at (vec3 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size, err := floatKW(pa, "cube", "size", 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		if size <= 0 {
			return zygo.SexpNull, fmt.Errorf("cube: size must be positive, got %g", size)
		}
		at, err := vecKW(pa, "cube", "at", false)
		if err != nil {
			return zygo.SexpNull, err
		}
		return wrap(mesh.Cube(at, size)), nil
	})

	// -----------------------------------------------------------------------
	// (box :min (vec3 0 0 0) :max (vec3 1 2 3))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		min, err := vecKW(pa, "box", "min", true)
		if err != nil {
			return zygo.SexpNull, err
		}
		max, err := vecKW(pa, "box", "max", true)
		if err != nil {
			return zygo.SexpNull, err
		}
		return wrap(mesh.Box(min, max)), nil
	})

	// -----------------------------------------------------------------------
	// (tetra :at (vec3 0 0 0) :size 1)
	// -----------------------------------------------------------------------
	env.AddFunction("tetra", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size, err := floatKW(pa, "tetra", "size", 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		at, err := vecKW(pa, "tetra", "at", false)
		if err != nil {
			return zygo.SexpNull, err
		}
		return wrap(mesh.Tetrahedron().Scaled(size).Translated(at)), nil
	})

	// -----------------------------------------------------------------------
	// (translate m (vec3 1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a mesh and a vec3")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		d, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		return wrap(m.Translated(d)), nil
	})

	// -----------------------------------------------------------------------
	// (flip m)
	// -----------------------------------------------------------------------
	env.AddFunction("flip", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("flip requires exactly 1 argument, got %d", len(args))
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("flip: %w", err)
		}
		return wrap(m.Flipped()), nil
	})

	// -----------------------------------------------------------------------
	// (merge a b ...) concatenates triangle soups without a boolean.
	// -----------------------------------------------------------------------
	env.AddFunction("merge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("merge requires at least 2 meshes")
		}
		ms, err := toMeshes("merge", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		out := ms[0]
		for _, m := range ms[1:] {
			out = mesh.Concat(out, m)
		}
		return wrap(out), nil
	})

	// -----------------------------------------------------------------------
	// (triangle-count m)
	// -----------------------------------------------------------------------
	env.AddFunction("triangle_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("triangle-count requires exactly 1 argument, got %d", len(args))
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("triangle-count: %w", err)
		}
		return &zygo.SexpInt{Val: int64(m.TriangleCount())}, nil
	})

	// -----------------------------------------------------------------------
	// (validate m :name "lid") runs the gate and returns true or false.
	// -----------------------------------------------------------------------
	env.AddFunction("validate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("validate requires exactly 1 mesh")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("validate: %w", err)
		}
		checkName := fmt.Sprintf("check-%d", len(ctx.scene.Checks)+1)
		if v, ok := pa.kw["name"]; ok {
			if checkName, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("validate: name: %w", err)
			}
		}

		r := ctx.dispatcher.Gate().Check(m)
		ctx.scene.Checks = append(ctx.scene.Checks, Check{Name: checkName, Report: r})
		return &zygo.SexpBool{Val: r.Valid}, nil
	})

	// -----------------------------------------------------------------------
	// (boolean :op :subtraction a b c) folds left: (a - b) - c.
	// -----------------------------------------------------------------------
	env.AddFunction("boolean", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		op := kernel.Union
		if v, ok := pa.kw["op"]; ok {
			opName, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boolean: op: %w", err)
			}
			if op, ok = kernel.ParseOp(opName); !ok {
				return zygo.SexpNull, fmt.Errorf("boolean: unknown op %q, expected union, subtraction, intersection or xor", opName)
			}
		}
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("boolean requires at least 2 meshes")
		}
		ms, err := toMeshes("boolean", pa.positional)
		if err != nil {
			return zygo.SexpNull, err
		}

		out := ms[0]
		for _, m := range ms[1:] {
			res, err := ctx.dispatcher.Boolean(out, m, op)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boolean %s: %w", op, err)
			}
			out = res.Mesh
		}
		ctx.logger.Debug("script boolean",
			zap.Stringer("op", op),
			zap.Int("operands", len(ms)),
			zap.Int("triangles", out.TriangleCount()),
		)
		return wrap(out), nil
	})

	// -----------------------------------------------------------------------
	// (output "name" m) records m as a named result and returns it.
	// -----------------------------------------------------------------------
	env.AddFunction("output", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("output requires a name and a mesh")
		}
		outName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("output: name: %w", err)
		}
		m, err := toMesh(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("output: %w", err)
		}
		taken := lo.ContainsBy(ctx.scene.Outputs, func(o Output) bool { return o.Name == outName })
		if taken {
			return zygo.SexpNull, fmt.Errorf("output: duplicate name %q", outName)
		}
		ctx.scene.Outputs = append(ctx.scene.Outputs, Output{Name: outName, Mesh: m})
		return args[1], nil
	})
}
