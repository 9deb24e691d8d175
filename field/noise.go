package field

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/noise"
)

// Offsets decorrelate the three components of a noise vector.
var (
	noiseOffsetY = r3.Vec{X: 17.3, Y: -41.7, Z: 8.9}
	noiseOffsetZ = r3.Vec{X: -23.1, Y: 5.3, Z: 61.2}
)

// noiseSource records how a noise source was built so it can be rebuilt with a
// different seed.
type noiseSource struct {
	basis  noise.Basis
	seed   int64
	params noise.FractalParams
	src    noise.Source
}

func newNoiseSource(basis noise.Basis, seed int64, fp noise.FractalParams) (noiseSource, error) {
	src, err := noise.NewWithParams(basis, seed, fp)
	if err != nil {
		return noiseSource{}, err
	}
	return noiseSource{basis: basis, seed: seed, params: fp, src: src}, nil
}

func (n noiseSource) scalar(p r3.Vec) float64 {
	return n.src.Noise3D(p.X, p.Y, p.Z)
}

func (n noiseSource) vector(p r3.Vec) r3.Vec {
	py := r3.Add(p, noiseOffsetY)
	pz := r3.Add(p, noiseOffsetZ)
	return r3.Vec{
		X: n.src.Noise3D(p.X, p.Y, p.Z),
		Y: n.src.Noise3D(py.X, py.Y, py.Z),
		Z: n.src.Noise3D(pz.X, pz.Y, pz.Z),
	}
}

// Seed returns the seed the field was built with.
func (n noiseSource) Seed() int64 { return n.seed }

// Basis returns the noise basis.
func (n noiseSource) Basis() noise.Basis { return n.basis }

// NoiseScalar is a seeded noise scalar field.
type NoiseScalar struct{ noiseSource }

// NewNoiseScalar builds a noise scalar field with default fractal parameters.
func NewNoiseScalar(basis noise.Basis, seed int64) (*NoiseScalar, error) {
	return NewNoiseScalarWithParams(basis, seed, noise.DefaultFractal)
}

// NewNoiseScalarWithParams builds a noise scalar field.
func NewNoiseScalarWithParams(basis noise.Basis, seed int64, fp noise.FractalParams) (*NoiseScalar, error) {
	n, err := newNoiseSource(basis, seed, fp)
	if err != nil {
		return nil, err
	}
	return &NoiseScalar{n}, nil
}

// Reseed returns a copy of f using seed. f itself is unchanged.
func (f *NoiseScalar) Reseed(seed int64) (*NoiseScalar, error) {
	return NewNoiseScalarWithParams(f.basis, seed, f.params)
}

// Evaluate implements Scalar.
func (f *NoiseScalar) Evaluate(p r3.Vec) (float64, error) { return f.scalar(p), nil }

// EvaluateGrid implements Scalar.
func (f *NoiseScalar) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i, p := range pts {
		dst[i] = f.scalar(p)
	}
	return nil
}

// NoiseVector is a seeded noise vector field. Each component samples the same
// source at a fixed offset.
type NoiseVector struct{ noiseSource }

// NewNoiseVector builds a noise vector field with default fractal parameters.
func NewNoiseVector(basis noise.Basis, seed int64) (*NoiseVector, error) {
	return NewNoiseVectorWithParams(basis, seed, noise.DefaultFractal)
}

// NewNoiseVectorWithParams builds a noise vector field.
func NewNoiseVectorWithParams(basis noise.Basis, seed int64, fp noise.FractalParams) (*NoiseVector, error) {
	n, err := newNoiseSource(basis, seed, fp)
	if err != nil {
		return nil, err
	}
	return &NoiseVector{n}, nil
}

// Reseed returns a copy of f using seed. f itself is unchanged.
func (f *NoiseVector) Reseed(seed int64) (*NoiseVector, error) {
	return NewNoiseVectorWithParams(f.basis, seed, f.params)
}

// Evaluate implements Vector.
func (f *NoiseVector) Evaluate(p r3.Vec) (r3.Vec, error) { return f.vector(p), nil }

// EvaluateGrid implements Vector.
func (f *NoiseVector) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i, p := range pts {
		dst[i] = f.vector(p)
	}
	return nil
}
