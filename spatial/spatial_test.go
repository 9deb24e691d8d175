package spatial

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// unitCube returns a quad-faced cube spanning [0,1]^3 with outward normals.
func unitCube() Mesh {
	return Mesh{
		Vertices: []r3.Vec{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
		},
		Faces: [][]int{
			{0, 3, 2, 1}, // bottom
			{4, 5, 6, 7}, // top
			{0, 1, 5, 4}, // front
			{2, 3, 7, 6}, // back
			{1, 2, 6, 5}, // right
			{0, 4, 7, 3}, // left
		},
	}
}

func TestKDTreeNearest(t *testing.T) {
	sites := []r3.Vec{{X: 1, Y: 2, Z: 3}, {X: 10, Y: 10, Z: 10}}
	tree, err := NewKDTree(sites)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Len())

	hit, ok := tree.Nearest(r3.Vec{X: 2, Y: 3, Z: 4})
	require.True(t, ok)
	assert.Equal(t, 0, hit.Index)
	assert.InDelta(t, math.Sqrt(3), hit.Distance, 1e-12)

	hit, ok = tree.Nearest(r3.Vec{X: 9, Y: 9, Z: 9})
	require.True(t, ok)
	assert.Equal(t, 1, hit.Index)
	assert.Equal(t, sites[1], hit.Point)
}

func TestKDTreeMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sites := make([]r3.Vec, 200)
	for i := range sites {
		sites[i] = r3.Vec{X: rng.Float64() * 10, Y: rng.Float64() * 10, Z: rng.Float64() * 10}
	}
	tree, err := NewKDTree(sites)
	require.NoError(t, err)

	for n := 0; n < 100; n++ {
		q := r3.Vec{X: rng.Float64()*12 - 1, Y: rng.Float64()*12 - 1, Z: rng.Float64()*12 - 1}
		want := math.Inf(1)
		for _, s := range sites {
			want = math.Min(want, r3.Norm(r3.Sub(s, q)))
		}
		hit, ok := tree.Nearest(q)
		require.True(t, ok)
		assert.InDelta(t, want, hit.Distance, 1e-12)
	}
}

func TestKDTreeEmpty(t *testing.T) {
	_, err := NewKDTree(nil)
	assert.True(t, errors.Is(err, ErrNoGeometry))

	var tree *KDTree
	_, ok := tree.Nearest(r3.Vec{})
	assert.False(t, ok)
}

func TestTriangleClosestPointRegions(t *testing.T) {
	tri := Triangle{A: r3.Vec{}, B: r3.Vec{X: 1}, C: r3.Vec{Y: 1}}
	tests := []struct {
		name string
		p    r3.Vec
		want r3.Vec
	}{
		{"above interior", r3.Vec{X: 0.25, Y: 0.25, Z: 2}, r3.Vec{X: 0.25, Y: 0.25}},
		{"vertex A", r3.Vec{X: -1, Y: -1, Z: 0}, r3.Vec{}},
		{"vertex B", r3.Vec{X: 2, Y: -0.5}, r3.Vec{X: 1}},
		{"vertex C", r3.Vec{X: -0.5, Y: 2}, r3.Vec{Y: 1}},
		{"edge AB", r3.Vec{X: 0.5, Y: -1}, r3.Vec{X: 0.5}},
		{"edge AC", r3.Vec{X: -1, Y: 0.5}, r3.Vec{Y: 0.5}},
		{"edge BC", r3.Vec{X: 1, Y: 1}, r3.Vec{X: 0.5, Y: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tri.ClosestPoint(tt.p)
			assert.InDelta(t, 0, r3.Norm(r3.Sub(got, tt.want)), 1e-12, "got %v want %v", got, tt.want)
		})
	}
}

func TestBVHNearestOnCube(t *testing.T) {
	bvh, err := NewBVH(unitCube())
	require.NoError(t, err)
	assert.Equal(t, 12, bvh.Len())

	hit, ok := bvh.NearestSurface(r3.Vec{X: 0.5, Y: 0.5, Z: 3})
	require.True(t, ok)
	assert.InDelta(t, 2, hit.Distance, 1e-12)
	assert.InDelta(t, 1, hit.Point.Z, 1e-12)
	assert.InDelta(t, 1, hit.Normal.Z, 1e-12)
	assert.Equal(t, 1, hit.Face)

	// Inside the cube, nearest face is the left one at x=0.
	hit, ok = bvh.NearestSurface(r3.Vec{X: 0.1, Y: 0.5, Z: 0.5})
	require.True(t, ok)
	assert.InDelta(t, 0.1, hit.Distance, 1e-12)
	assert.InDelta(t, -1, hit.Normal.X, 1e-12)
	assert.Equal(t, 5, hit.Face)
}

func TestBVHMatchesBruteForce(t *testing.T) {
	// A bumpy grid surface with enough triangles to force inner nodes.
	const n = 12
	var m Mesh
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			x, y := float64(i)/n, float64(j)/n
			m.Vertices = append(m.Vertices, r3.Vec{X: x, Y: y, Z: 0.1 * math.Sin(6*x) * math.Cos(5*y)})
		}
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			a := j*(n+1) + i
			m.Faces = append(m.Faces, []int{a, a + 1, a + n + 2, a + n + 1})
		}
	}
	bvh, err := NewBVH(m)
	require.NoError(t, err)
	tris, err := m.Triangles()
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	for k := 0; k < 200; k++ {
		q := r3.Vec{X: rng.Float64()*1.4 - 0.2, Y: rng.Float64()*1.4 - 0.2, Z: rng.Float64() - 0.5}
		want := math.Inf(1)
		for _, tri := range tris {
			want = math.Min(want, r3.Norm(r3.Sub(tri.ClosestPoint(q), q)))
		}
		hit, ok := bvh.NearestSurface(q)
		require.True(t, ok)
		assert.InDelta(t, want, hit.Distance, 1e-12)
	}
}

func TestBVHDegenerateMesh(t *testing.T) {
	bvh, err := NewBVH(Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {X: 2}},
		Faces:    [][]int{{0, 1, 2}},
	})
	require.NoError(t, err)
	_, ok := bvh.NearestSurface(r3.Vec{Y: 1})
	assert.False(t, ok)

	empty, err := NewBVH(Mesh{})
	require.NoError(t, err)
	_, ok = empty.NearestSurface(r3.Vec{})
	assert.False(t, ok)
}

func TestMeshBadFace(t *testing.T) {
	_, err := NewBVH(Mesh{Vertices: []r3.Vec{{}, {X: 1}}, Faces: [][]int{{0, 1, 2}}})
	assert.True(t, errors.Is(err, ErrBadFace))
}

func TestNonFiniteQueries(t *testing.T) {
	tree, err := NewKDTree([]r3.Vec{{}, {X: 1}})
	require.NoError(t, err)
	bvh, err := NewBVH(unitCube())
	require.NoError(t, err)

	for _, q := range []r3.Vec{
		{X: math.NaN()},
		{Y: math.Inf(1)},
		{Z: math.Inf(-1)},
	} {
		_, ok := tree.Nearest(q)
		assert.False(t, ok, "kdtree %v", q)
		_, ok = bvh.NearestSurface(q)
		assert.False(t, ok, "bvh %v", q)
	}
	assert.True(t, Finite(r3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64}))
}
