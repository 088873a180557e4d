package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chazu/meshbool/pkg/validate"
)

func TestEvaluateWithoutOutputs(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  \n  "},
		{"arithmetic", "(+ 1 2)"},
		{"definitions", "(def x 10)\n(def y (* x 2))"},
	}
	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := evalScene(t, eng, tt.source)
			if len(s.Outputs) != 0 || len(s.Checks) != 0 {
				t.Errorf("scene = %d outputs / %d checks, want none", len(s.Outputs), len(s.Checks))
			}
		})
	}
}

func TestEvaluateCollectsScene(t *testing.T) {
	eng := engineWith(&fixedKernel{}, validate.Strict())

	source := `
(def c (cube :size 2))
(validate c :name "solid")
(validate (flip c))
(output "first" c)
(output "second" (translate c (vec3 5 0 0)))
`
	s := evalScene(t, eng, source)

	names := make([]string, 0, len(s.Outputs))
	for _, o := range s.Outputs {
		names = append(names, o.Name)
	}
	if strings.Join(names, ",") != "first,second" {
		t.Errorf("outputs = %v, want [first second] in script order", names)
	}
	if s.Lookup("missing") != nil {
		t.Error("Lookup() of an unknown name returned a mesh")
	}

	if len(s.Checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(s.Checks))
	}
	if s.Checks[0].Name != "solid" || !s.Checks[0].Report.Valid {
		t.Errorf("check 0 = %s %v, want solid valid", s.Checks[0].Name, s.Checks[0].Report)
	}
	if s.Checks[1].Name != "check-2" || s.Checks[1].Report.Reason != validate.ReasonMisoriented {
		t.Errorf("check 1 = %s %v, want check-2 misoriented", s.Checks[1].Name, s.Checks[1].Report)
	}
}

func TestEvaluateUsesFreshSandbox(t *testing.T) {
	eng := NewEngine()
	evalScene(t, eng, `(def kept (cube)) (output "a" kept)`)

	// Definitions from the previous script are gone.
	s, evalErrs, err := eng.Evaluate(`(output "b" kept)`)
	if err != nil {
		t.Fatalf("Evaluate() fatal error = %v", err)
	}
	if s != nil || len(evalErrs) == 0 {
		t.Errorf("Evaluate() = %v, %v; want an eval error for the undefined symbol", s, evalErrs)
	}
}

func TestEvaluateRepeatable(t *testing.T) {
	eng := NewEngine()
	source := `(output "m" (merge (tetra) (cube :at (vec3 4 0 0))))`

	first := evalScene(t, eng, source).Lookup("m")
	for i := 0; i < 3; i++ {
		if got := evalScene(t, eng, source).Lookup("m"); !got.Equal(first) {
			t.Fatalf("run %d produced a different mesh", i+2)
		}
	}
}

func TestEvaluateScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unbalanced paren", "(+ 1 2"},
		{"unbalanced on second line", "(+ 1 2)\n(+ 3"},
		{"undefined symbol", "(+ 1 undefined-symbol)"},
		{"builtin rejects argument", `(output "x" 5)`},
	}
	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("Evaluate() fatal error = %v", err)
			}
			if s != nil {
				t.Error("scene returned for a failing script")
			}
			if len(evalErrs) == 0 || evalErrs[0].Message == "" {
				t.Errorf("eval errors = %v, want a message", evalErrs)
			}
		})
	}
}

func TestEvalErrorString(t *testing.T) {
	tests := []struct {
		err  EvalError
		want string
	}{
		{EvalError{Line: 5, Message: "bad token"}, "line 5: bad token"},
		{EvalError{Message: "no location"}, "no location"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var err error = tt.err
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestAwait(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		eng := NewEngine(WithTimeout(50 * time.Millisecond))
		start := time.Now()
		_, _, err := eng.await(context.Background(), make(chan evalResult), 0)
		if !errors.Is(err, ErrTimeout) {
			t.Fatalf("await() error = %v, want ErrTimeout", err)
		}
		if !strings.Contains(err.Error(), "50ms") {
			t.Errorf("error %q does not name the timeout", err)
		}
		if elapsed := time.Since(start); elapsed > EvalTimeout {
			t.Errorf("await() took %s", elapsed)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := NewEngine().await(ctx, make(chan evalResult), 0)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("await() error = %v, want context.Canceled", err)
		}
	})

	t.Run("superseded", func(t *testing.T) {
		eng := NewEngine()
		eng.generation = 2
		ch := make(chan evalResult, 1)
		ch <- evalResult{scene: &Scene{}}
		if _, _, err := eng.await(context.Background(), ch, 1); !errors.Is(err, ErrSuperseded) {
			t.Errorf("await() error = %v, want ErrSuperseded", err)
		}
	})

	t.Run("current", func(t *testing.T) {
		eng := NewEngine()
		eng.generation = 3
		want := &Scene{Outputs: []Output{{Name: "r"}}}
		ch := make(chan evalResult, 1)
		ch <- evalResult{scene: want}
		got, _, err := eng.await(context.Background(), ch, 3)
		if err != nil || got != want {
			t.Errorf("await() = %v, %v; want the sent scene", got, err)
		}
	})
}

func TestEngineTimeoutOption(t *testing.T) {
	tests := []struct {
		name string
		opt  time.Duration
		want time.Duration
	}{
		{"unset", 0, EvalTimeout},
		{"set", time.Second, time.Second},
		{"negative", -1, EvalTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewEngine(WithTimeout(tt.opt)).timeout; got != tt.want {
				t.Errorf("timeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"error on line 12: missing paren", 12, "missing paren"},
		{"line 3: cube: size must be positive", 3, "cube: size must be positive"},
		{"output: expected mesh", 0, "output: expected mesh"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1", len(errs))
			}
			if errs[0].Line != tt.wantLine || errs[0].Message != tt.wantMsg {
				t.Errorf("parseZygomysError() = %+v, want line %d %q", errs[0], tt.wantLine, tt.wantMsg)
			}
		})
	}
}
