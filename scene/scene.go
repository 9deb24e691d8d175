// Package scene assembles the named field graphs exposed by the command line
// tools from configuration and a site list.
package scene

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/config"
	"github.com/pthm-cable/fields/field"
)

// Kind names a prebuilt field graph.
type Kind string

// Available scenes.
const (
	Distance Kind = "distance" // distance to the nearest site, shaped by the falloff
	Attract  Kind = "attract"  // offset toward the nearest site, shaped by the falloff
	Noise    Kind = "noise"    // scalar noise
	Curl     Kind = "curl"     // curl of vector noise
	Gradient Kind = "gradient" // gradient of the nearest-site distance
	Median   Kind = "median"   // summed distance to every site
)

// Kinds lists every scene in help order.
var Kinds = []Kind{Distance, Attract, Noise, Curl, Gradient, Median}

// Scene is a built field graph. Exactly one of Scalar and Vector is set.
type Scene struct {
	Kind   Kind
	Scalar field.Scalar
	Vector field.Vector
}

// Build assembles the graph for kind.
func Build(kind Kind, cfg *config.Config, sites []r3.Vec) (Scene, error) {
	s := Scene{Kind: kind}
	var err error
	switch kind {
	case Distance:
		s.Scalar, err = field.NewNearestPoint(nil, sites, cfg.Derived.Falloff)
	case Attract:
		s.Vector, err = field.NewNearestPointVector(nil, sites, cfg.Derived.Falloff, false)
	case Noise:
		s.Scalar, err = field.NewNoiseScalarWithParams(cfg.Derived.NoiseBasis, cfg.Noise.Seed, cfg.Derived.Fractal)
	case Curl:
		var nv *field.NoiseVector
		if nv, err = field.NewNoiseVectorWithParams(cfg.Derived.NoiseBasis, cfg.Noise.Seed, cfg.Derived.Fractal); err == nil {
			s.Vector, err = field.NewRotor(nv, cfg.Field.Step)
		}
	case Gradient:
		var d *field.NearestPoint
		if d, err = field.NewNearestPoint(nil, sites, cfg.Derived.Falloff); err == nil {
			s.Vector, err = field.NewGradient(d, cfg.Field.Step)
		}
	case Median:
		s.Scalar, err = SummedDistance(sites)
	default:
		return Scene{}, fmt.Errorf("%w: scene %q", field.ErrUnsupported, kind)
	}
	if err != nil {
		return Scene{}, fmt.Errorf("building %s scene: %w", kind, err)
	}
	slog.Debug("scene built", "kind", kind, "sites", len(sites), "vector", s.Vector != nil)
	return s, nil
}

// SummedDistance returns the sum of Euclidean distances to every site. Its
// minimum is the geometric median of the sites.
func SummedDistance(sites []r3.Vec) (*field.Merge, error) {
	parts := make([]field.Scalar, len(sites))
	for i, c := range sites {
		d, err := field.NewPointDistance(c, field.Euclidean, nil)
		if err != nil {
			return nil, err
		}
		parts[i] = d
	}
	return field.NewMerge(field.MergeSum, parts...)
}

// MaxDeviation evaluates the scene point by point and returns the largest
// absolute difference from a batch evaluation over the same points.
func (s Scene) MaxDeviation(pts []r3.Vec) (float64, error) {
	var worst float64
	if s.Scalar != nil {
		grid := make([]float64, len(pts))
		if err := s.Scalar.EvaluateGrid(pts, grid); err != nil {
			return 0, err
		}
		for i, p := range pts {
			v, err := s.Scalar.Evaluate(p)
			if err != nil {
				return 0, err
			}
			worst = max(worst, math.Abs(v-grid[i]))
		}
		return worst, nil
	}
	grid := make([]r3.Vec, len(pts))
	if err := s.Vector.EvaluateGrid(pts, grid); err != nil {
		return 0, err
	}
	for i, p := range pts {
		v, err := s.Vector.Evaluate(p)
		if err != nil {
			return 0, err
		}
		d := r3.Sub(v, grid[i])
		worst = max(worst, math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z))
	}
	return worst, nil
}
