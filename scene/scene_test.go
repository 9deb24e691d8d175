package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/config"
	"github.com/pthm-cable/fields/field"
	"github.com/pthm-cable/fields/sample"
)

var sites = []r3.Vec{{X: 0.5}, {Y: -0.5, Z: 0.25}, {X: -0.3, Y: 0.4, Z: -0.6}}

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestBuildEveryKind(t *testing.T) {
	cfg := loadDefaults(t)
	l := sample.Lattice{
		Min: cfg.Derived.LatticeMin, Max: cfg.Derived.LatticeMax,
		NX: 4, NY: 4, NZ: 4,
	}
	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			s, err := Build(kind, cfg, sites)
			require.NoError(t, err)
			assert.Equal(t, kind, s.Kind)
			assert.True(t, (s.Scalar == nil) != (s.Vector == nil), "exactly one of scalar and vector")

			dev, err := s.MaxDeviation(l.Points())
			require.NoError(t, err)
			assert.LessOrEqual(t, dev, cfg.Field.Tolerance)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := loadDefaults(t)

	_, err := Build("vortex", cfg, sites)
	assert.True(t, errors.Is(err, field.ErrUnsupported))

	_, err = Build(Distance, cfg, nil)
	assert.True(t, errors.Is(err, field.ErrNoGeometry))

	_, err = Build(Median, cfg, nil)
	assert.True(t, errors.Is(err, field.ErrNoFields))

	// Scenes without sites still build.
	_, err = Build(Noise, cfg, nil)
	assert.NoError(t, err)
}

func TestSummedDistance(t *testing.T) {
	f, err := SummedDistance([]r3.Vec{{}, {X: 2}})
	require.NoError(t, err)
	v, err := f.Evaluate(r3.Vec{X: 1, Y: 1})
	require.NoError(t, err)
	assert.InDelta(t, 2*1.4142135623730951, v, 1e-12)
}

func TestCentroid(t *testing.T) {
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, Centroid([]r3.Vec{{X: 0, Y: 2, Z: 6}, {X: 2, Y: 2, Z: 0}}))
}

func TestMinimizeGeometricMedian(t *testing.T) {
	square := []r3.Vec{{X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}}
	f, err := SummedDistance(square)
	require.NoError(t, err)

	evals := 0
	res, err := Minimize(f, r3.Vec{X: 0.3, Y: -0.2, Z: 0.1}, MinimizeSettings{
		Step:              field.DefaultStep,
		MaxIterations:     200,
		GradientThreshold: 1e-8,
	}, func(r3.Vec, float64) { evals++ })
	require.NoError(t, err)

	assert.InDelta(t, 0, res.Point.X, 1e-3)
	assert.InDelta(t, 0, res.Point.Y, 1e-3)
	assert.InDelta(t, 0, res.Point.Z, 1e-3)
	assert.InDelta(t, 4*1.4142135623730951, res.Value, 1e-5)
	assert.Positive(t, res.Evaluations)
	assert.Positive(t, evals)
}

// failing is a scalar field whose evaluation always fails.
type failing struct{}

var errBroken = errors.New("broken")

func (failing) Evaluate(r3.Vec) (float64, error)      { return 0, errBroken }
func (failing) EvaluateGrid([]r3.Vec, []float64) error { return errBroken }

func TestMinimizeReportsEvaluationErrors(t *testing.T) {
	_, err := Minimize(failing{}, r3.Vec{}, MinimizeSettings{Step: field.DefaultStep, MaxIterations: 5}, nil)
	assert.True(t, errors.Is(err, errBroken))

	_, err = Minimize(failing{}, r3.Vec{}, MinimizeSettings{Step: 0}, nil)
	assert.True(t, errors.Is(err, field.ErrDegenerate))
}
