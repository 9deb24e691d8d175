package falloff

import (
	"errors"
	"math"
	"testing"
)

func TestFalloffCurves(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		amp   float64
		coeff float64
		r     float64
		want  float64
	}{
		{"inverse", Inverse, 1, 0, 2, 0.5},
		{"inverse amplitude", Inverse, 3, 0, 2, 1.5},
		{"inverse square", InverseSquare, 1, 0, 2, 0.25},
		{"inverse cubic", InverseCubic, 2, 0, 2, 0.25},
		{"inverse exp", InverseExp, 1, 0.5, 2, math.Exp(-1)},
		{"gauss", Gauss, 2, 1, 2, 2 * math.Exp(-2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.kind, tt.amp, tt.coeff, false)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := f(tt.r); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("f(%v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestFalloffAtZeroReturnsAmplitude(t *testing.T) {
	for _, kind := range Kinds[1:] {
		f := MustNew(kind, 0.75, 1, false)
		if got := f(0); got != 0.75 {
			t.Errorf("%s: f(0) = %v, want 0.75", kind, got)
		}
	}
}

func TestFalloffNegativeClampsToZero(t *testing.T) {
	f := MustNew(Inverse, -2, 0, false)
	if got := f(1); got != 0 {
		t.Errorf("f(1) = %v, want 0", got)
	}
}

func TestFalloffClampCapsAtDistance(t *testing.T) {
	f := MustNew(Inverse, 1, 0, true)
	// 1/0.5 = 2 overshoots the raw distance.
	if got := f(0.5); got != 0.5 {
		t.Errorf("f(0.5) = %v, want 0.5", got)
	}
	if got := f(4); got != 0.25 {
		t.Errorf("f(4) = %v, want 0.25", got)
	}
	if got := f(0); got != 0 {
		t.Errorf("clamped f(0) = %v, want 0", got)
	}
}

func TestNoneIsPassthrough(t *testing.T) {
	f, err := New(None, 5, 5, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f != nil {
		t.Fatal("expected nil func for none")
	}
	if got := f.Eval(3.5); got != 3.5 {
		t.Errorf("Eval = %v, want 3.5", got)
	}

	rs := []float64{1, 2, 3}
	dst := make([]float64, 3)
	f.Apply(rs, dst)
	for i := range rs {
		if dst[i] != rs[i] {
			t.Errorf("Apply[%d] = %v, want %v", i, dst[i], rs[i])
		}
	}
}

func TestApplyMatchesEval(t *testing.T) {
	f := MustNew(Gauss, 1.5, 0.3, false)
	rs := []float64{0, 0.1, 1, 2.5, 10}
	dst := make([]float64, len(rs))
	f.Apply(rs, dst)
	for i, r := range rs {
		if dst[i] != f.Eval(r) {
			t.Errorf("Apply[%d] = %v, Eval = %v", i, dst[i], f.Eval(r))
		}
	}
}

func TestUnsupportedKind(t *testing.T) {
	if _, err := New("cosine", 1, 1, false); !errors.Is(err, ErrUnsupported) {
		t.Errorf("New: got %v, want ErrUnsupported", err)
	}
	if _, err := ParseKind("linear"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ParseKind: got %v, want ErrUnsupported", err)
	}
	if k, err := ParseKind(""); err != nil || k != None {
		t.Errorf("ParseKind(\"\") = %v, %v; want none", k, err)
	}
}
