package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/falloff"
	"github.com/pthm-cable/fields/noise"
	"github.com/pthm-cable/fields/spatial"
)

// lattice returns an n^3 grid of points in [-2, 2]^3, offset so no point
// lands on an integer coordinate.
func lattice(n int) []r3.Vec {
	pts := make([]r3.Vec, 0, n*n*n)
	step := 4.0 / float64(n)
	for i := range n {
		for j := range n {
			for k := range n {
				pts = append(pts, r3.Vec{
					X: -2 + (float64(i)+0.37)*step,
					Y: -2 + (float64(j)+0.61)*step,
					Z: -2 + (float64(k)+0.13)*step,
				})
			}
		}
	}
	return pts
}

func fixtures(t *testing.T) ([]Scalar, []Vector, []string, []string) {
	t.Helper()
	must := func(err error) {
		t.Helper()
		require.NoError(t, err)
	}
	gauss := falloff.MustNew(falloff.Gauss, 2, 1, false)
	sites := []r3.Vec{{X: 1}, {Y: -1, Z: 1}, {X: -1, Y: 1, Z: -1}}
	cube := &spatial.Mesh{
		Vertices: []r3.Vec{
			{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
			{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
		},
		Faces: [][]int{{0, 3, 2, 1}, {4, 5, 6, 7}, {0, 1, 5, 4}, {2, 3, 7, 6}, {1, 2, 6, 5}, {0, 4, 7, 3}},
	}

	pd, err := NewPointDistance(r3.Vec{X: 0.5}, Manhattan, gauss)
	must(err)
	ld, err := NewLineDistance(r3.Vec{}, r3.Vec{X: 1, Y: 1}, nil)
	must(err)
	pl, err := NewPlaneDistance(r3.Vec{Z: 0.2}, r3.Vec{Z: 1}, gauss)
	must(err)
	np, err := NewNearestPoint(nil, sites, nil)
	must(err)
	ns, err := NewNearestSurface(nil, cube, nil)
	must(err)
	ns1, err := NewNoiseScalar(noise.BasisPerlin, 3)
	must(err)
	ns2, err := NewNoiseScalar(noise.BasisOpenSimplex, 3)
	must(err)
	ns3, err := NewNoiseScalar(noise.BasisFractal, 3)
	must(err)
	merge, err := NewMerge(MergeAvg, pd, ld, np)
	must(err)
	mmin, err := NewMerge(MergeMin, pd, ns)
	must(err)

	la, err := NewLineAttractor(r3.Vec{Y: 1}, r3.Vec{Z: 1}, gauss)
	must(err)
	pa, err := NewPlaneAttractor(r3.Vec{}, r3.Vec{X: 1, Z: 1}, nil)
	must(err)
	npv, err := NewNearestPointVector(nil, sites, gauss, true)
	must(err)
	nsv, err := NewNearestSurfaceVector(nil, cube, SurfaceOptions{Falloff: gauss})
	must(err)
	nsn, err := NewNearestSurfaceVector(nil, cube, SurfaceOptions{UseNormal: true, SignedNormal: true})
	must(err)
	nv, err := NewNoiseVector(noise.BasisOpenSimplex, 9)
	must(err)
	rot := mat.NewDense(4, 4, []float64{
		0, -1, 0, 0.5,
		1, 0, 0, 0,
		0, 0, 1, -1,
		0, 0, 0, 1,
	})
	mv, err := NewMatrixVector(rot)
	must(err)
	proj, err := NewProjection(swirl(), npv, Tangent)
	must(err)
	cot, err := NewProjection(swirl(), npv, Cotangent)
	must(err)
	comp, err := NewComponent(swirl(), 2)
	must(err)

	grad, err := NewGradient(merge, DefaultStep)
	must(err)
	rotor, err := NewRotor(nv, DefaultStep)
	must(err)
	div, err := NewDivergence(la, DefaultStep)
	must(err)
	lap, err := NewLaplacian(ns1, DefaultStep)
	must(err)

	scalars := []Scalar{
		NewConstant(0.5), sumXYZ(), NewScalarLambda(func(p, v r3.Vec) float64 { return r3.Dot(p, v) }, swirl()),
		pd, ld, pl, np, ns, ns1, ns2, ns3,
		NewScalarBinOp(pd, np, OpMul), NewNegated(ns), NewNorm(nsv), comp,
		NewDot(swirl(), npv), merge, mmin,
		NewScalarComposition(swirl(), pd), div, lap,
	}
	scalarNames := []string{
		"constant", "lambda", "lambda driven",
		"point distance", "line distance", "plane distance", "nearest point", "nearest surface",
		"perlin", "opensimplex", "fractal",
		"binop", "negated", "norm", "component",
		"dot", "merge avg", "merge min",
		"composition", "divergence", "laplacian",
	}

	vectors := []Vector{
		NewConstantVector(r3.Vec{X: 1, Y: -1}), swirl(),
		NewVectorLambda(func(p r3.Vec, s float64) r3.Vec { return r3.Scale(s, p) }, np),
		NewPointAttractor(r3.Vec{Z: 1}, gauss), la, pa, npv, nsv, nsn, nv, mv,
		NewVectorBinOp(swirl(), la, OpVectorSub), NewCross(swirl(), npv), NewNegatedVector(nsv),
		NewScaled(swirl(), pd), NewLerp(swirl(), pa, ns1), proj, cot,
		NewCompose(pd, np, ns), NewVectorComposition(swirl(), nv), grad, rotor,
	}
	vectorNames := []string{
		"constant", "lambda", "lambda driven",
		"point attractor", "line attractor", "plane attractor", "nearest point", "nearest surface", "surface normal", "noise", "matrix",
		"binop", "cross", "negated",
		"scaled", "lerp", "tangent", "cotangent",
		"compose", "composition", "gradient", "rotor",
	}
	return scalars, vectors, scalarNames, vectorNames
}

func TestGridMatchesPointwise(t *testing.T) {
	pts := lattice(5)
	scalars, vectors, scalarNames, vectorNames := fixtures(t)
	require.Len(t, scalarNames, len(scalars))
	require.Len(t, vectorNames, len(vectors))

	for i, f := range scalars {
		t.Run("scalar/"+scalarNames[i], func(t *testing.T) {
			grid := make([]float64, len(pts))
			require.NoError(t, f.EvaluateGrid(pts, grid))
			for j, p := range pts {
				v, err := f.Evaluate(p)
				require.NoError(t, err)
				require.False(t, math.IsNaN(v), "NaN at %v", p)
				assert.InDelta(t, v, grid[j], 1e-9, "at %v", p)
			}
		})
	}
	for i, f := range vectors {
		t.Run("vector/"+vectorNames[i], func(t *testing.T) {
			grid := make([]r3.Vec, len(pts))
			require.NoError(t, f.EvaluateGrid(pts, grid))
			for j, p := range pts {
				v, err := f.Evaluate(p)
				require.NoError(t, err)
				assertVecNear(t, v, grid[j], 1e-9, "at %v", p)
			}
		})
	}
}

func TestSinglePointBatch(t *testing.T) {
	scalars, vectors, _, _ := fixtures(t)
	p := r3.Vec{X: 0.3, Y: -0.7, Z: 1.1}
	for _, f := range scalars {
		want, err := f.Evaluate(p)
		require.NoError(t, err)
		got := make([]float64, 1)
		require.NoError(t, f.EvaluateGrid([]r3.Vec{p}, got))
		assert.Equal(t, want, got[0])
	}
	for _, f := range vectors {
		want, err := f.Evaluate(p)
		require.NoError(t, err)
		got := make([]r3.Vec, 1)
		require.NoError(t, f.EvaluateGrid([]r3.Vec{p}, got))
		assertVecNear(t, want, got[0], 1e-12)
	}
}

func TestNoiseReseed(t *testing.T) {
	f, err := NewNoiseScalar(noise.BasisPerlin, 1)
	require.NoError(t, err)
	g, err := f.Reseed(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.Seed())
	assert.Equal(t, int64(2), g.Seed())
	assert.Equal(t, noise.BasisPerlin, g.Basis())

	differs := false
	for _, p := range lattice(4) {
		a, _ := f.Evaluate(p)
		b, _ := g.Evaluate(p)
		if a != b {
			differs = true
			break
		}
	}
	assert.True(t, differs, "reseeded field matched the original everywhere")

	same, err := f.Reseed(1)
	require.NoError(t, err)
	for _, p := range lattice(3) {
		a, _ := f.Evaluate(p)
		b, _ := same.Evaluate(p)
		assert.Equal(t, a, b)
	}

	_, err = NewNoiseVectorWithParams(noise.BasisFractal, 1, noise.FractalParams{Alpha: 2, Beta: 2})
	assert.Error(t, err)
	_, err = NewNoiseScalar("worley", 1)
	assert.Error(t, err)
}
