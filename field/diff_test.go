package field

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var probes = []r3.Vec{
	{X: 1, Y: 2, Z: 3},
	{X: -0.5, Y: 0.25, Z: 4},
	{X: 10, Y: -3, Z: 0},
}

func TestGradient(t *testing.T) {
	tests := []struct {
		name string
		f    Scalar
		want func(p r3.Vec) r3.Vec
	}{
		{"constant", NewConstant(7), func(r3.Vec) r3.Vec { return r3.Vec{} }},
		{"linear", sumXYZ(), func(r3.Vec) r3.Vec { return r3.Vec{X: 1, Y: 1, Z: 1} }},
		{"quadratic", ScalarOf(func(x, y, z float64) float64 { return x*x + y*y + z*z }),
			func(p r3.Vec) r3.Vec { return r3.Scale(2, p) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGradient(tt.f, DefaultStep)
			require.NoError(t, err)
			got := make([]r3.Vec, len(probes))
			require.NoError(t, g.EvaluateGrid(probes, got))
			for i, p := range probes {
				assertVecNear(t, tt.want(p), got[i], 1e-6, "at %v", p)
			}
		})
	}
}

func TestRotor(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
		want r3.Vec
	}{
		{"identity", identity(), r3.Vec{}},
		{"swirl", swirl(), r3.Vec{Z: 2}},
		{"constant", NewConstantVector(r3.Vec{X: 1, Y: 2, Z: 3}), r3.Vec{}},
		{"shear", VectorOf(func(x, y, z float64) (float64, float64, float64) { return z, 0, 0 }), r3.Vec{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRotor(tt.v, DefaultStep)
			require.NoError(t, err)
			for _, p := range probes {
				got, err := r.Evaluate(p)
				require.NoError(t, err)
				assertVecNear(t, tt.want, got, 1e-6, "at %v", p)
			}
		})
	}
}

func TestDivergenceAndLaplacian(t *testing.T) {
	div, err := NewDivergence(identity(), DefaultStep)
	require.NoError(t, err)
	lap, err := NewLaplacian(ScalarOf(func(x, y, z float64) float64 { return x*x + y*y + z*z }), DefaultStep)
	require.NoError(t, err)

	for _, p := range probes {
		d, err := div.Evaluate(p)
		require.NoError(t, err)
		assert.InDelta(t, 3, d, 1e-6)

		l, err := lap.Evaluate(p)
		require.NoError(t, err)
		assert.InDelta(t, 6, l, 1e-6)
	}

	// Curl of a gradient vanishes.
	g, err := NewGradient(prodXYZ(), DefaultStep)
	require.NoError(t, err)
	r, err := NewRotor(g, DefaultStep)
	require.NoError(t, err)
	got, err := r.Evaluate(r3.Vec{X: 1, Y: 2, Z: 3})
	require.NoError(t, err)
	assertVecNear(t, r3.Vec{}, got, 1e-4)
}

func TestNonPositiveStep(t *testing.T) {
	for _, h := range []float64{0, -1} {
		_, err := NewGradient(sumXYZ(), h)
		assert.True(t, errors.Is(err, ErrDegenerate))
		_, err = NewRotor(identity(), h)
		assert.True(t, errors.Is(err, ErrDegenerate))
		_, err = NewDivergence(identity(), h)
		assert.True(t, errors.Is(err, ErrDegenerate))
		_, err = NewLaplacian(sumXYZ(), h)
		assert.True(t, errors.Is(err, ErrDegenerate))
	}
}
