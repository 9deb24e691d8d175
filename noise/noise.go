// Package noise provides deterministic, explicitly seeded 3D noise sources.
//
// There is no package-level generator: every Source is built from a basis and
// a seed and is read-only afterwards, so evaluation is referentially
// transparent for a fixed seed.
package noise

import (
	"errors"
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// ErrUnsupported is returned for an unknown basis name.
var ErrUnsupported = errors.New("noise: unsupported basis")

// Basis identifies a noise algorithm.
type Basis string

// Supported bases.
const (
	BasisPerlin      Basis = "perlin"
	BasisOpenSimplex Basis = "opensimplex"
	BasisFractal     Basis = "fractal"
)

// Bases lists every supported basis.
var Bases = []Basis{BasisPerlin, BasisOpenSimplex, BasisFractal}

// Source is a 3D scalar noise function.
type Source interface {
	Noise3D(x, y, z float64) float64
}

// FractalParams configures the fractal basis.
type FractalParams struct {
	Alpha   float64 // weight divisor between octaves
	Beta    float64 // frequency multiplier between octaves
	Octaves int
}

// DefaultFractal is used by New for BasisFractal.
var DefaultFractal = FractalParams{Alpha: 2, Beta: 2, Octaves: 3}

// ParseBasis validates a basis name. The empty string maps to BasisPerlin.
func ParseBasis(name string) (Basis, error) {
	if name == "" {
		return BasisPerlin, nil
	}
	for _, b := range Bases {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
}

// New builds a source for basis and seed using default parameters.
func New(basis Basis, seed int64) (Source, error) {
	return NewWithParams(basis, seed, DefaultFractal)
}

// NewWithParams builds a source, using fp when basis is BasisFractal.
func NewWithParams(basis Basis, seed int64, fp FractalParams) (Source, error) {
	switch basis {
	case BasisPerlin, "":
		return lifted{perlin.NewPerlin(2, 2, 1, seed)}, nil
	case BasisOpenSimplex:
		return simplex{opensimplex.New(seed)}, nil
	case BasisFractal:
		if fp.Octaves < 1 {
			return nil, fmt.Errorf("noise: fractal octaves must be positive, got %d", fp.Octaves)
		}
		return lifted{perlin.NewPerlin(fp.Alpha, fp.Beta, int32(fp.Octaves), seed)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, basis)
}

// zLift shifts queries into positive z. go-perlin answers any z < 0 with 2D
// noise, which would flatten the lower half-space.
const zLift = 1024

// lifted adapts go-perlin to Source. It is three-dimensional for z > -zLift.
type lifted struct {
	p *perlin.Perlin
}

func (l lifted) Noise3D(x, y, z float64) float64 {
	return l.p.Noise3D(x, y, z+zLift)
}

// simplex adapts opensimplex.Noise to Source.
type simplex struct {
	n opensimplex.Noise
}

func (s simplex) Noise3D(x, y, z float64) float64 {
	return s.n.Eval3(x, y, z)
}
