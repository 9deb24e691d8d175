// Package field implements an algebra of continuous fields over R^3.
//
// A Scalar maps a point to a real number and a Vector maps a point to a 3D
// vector. Fields are built from leaves (constants, distance and attractor
// fields, spatial-index lookups, noise, user closures) and combinators that
// hold already-built children. Every field is immutable after construction.
//
// Each field has two entry points: Evaluate for one point and EvaluateGrid for
// a batch. A batch is a flat slice of points in the caller's order and the
// result has the same length and order. For every field F and point p,
//
//	F.Evaluate(p) == F.EvaluateGrid([p])[0]
//
// holds, including through combinators and differential operators. Batch
// results of vector fields are always one r3.Vec per point; use Components to
// split them into coordinate slices.
package field

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrShapeMismatch is returned when coordinate or result slices differ in length.
	ErrShapeMismatch = errors.New("field: coordinate and result shapes differ")
	// ErrNoGeometry is returned when a spatial leaf gets neither an index nor geometry.
	ErrNoGeometry = errors.New("field: neither a prebuilt index nor input geometry supplied")
	// ErrUnsupported is returned for an unknown operation or mode name.
	ErrUnsupported = errors.New("field: unsupported operation")
	// ErrNoFields is returned when a reduction has no inputs.
	ErrNoFields = errors.New("field: no input fields")
	// ErrDegenerate is returned for zero-length directions and non-positive steps.
	ErrDegenerate = errors.New("field: degenerate parameter")
)

// Scalar is a function R^3 -> R.
type Scalar interface {
	Evaluate(p r3.Vec) (float64, error)
	// EvaluateGrid writes the value at pts[i] to dst[i].
	EvaluateGrid(pts []r3.Vec, dst []float64) error
}

// Vector is a function R^3 -> R^3.
type Vector interface {
	Evaluate(p r3.Vec) (r3.Vec, error)
	// EvaluateGrid writes the value at pts[i] to dst[i].
	EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error
}

// Points zips three coordinate slices into points.
func Points(xs, ys, zs []float64) ([]r3.Vec, error) {
	if len(xs) != len(ys) || len(xs) != len(zs) {
		return nil, fmt.Errorf("%w: %d, %d, %d", ErrShapeMismatch, len(xs), len(ys), len(zs))
	}
	pts := make([]r3.Vec, len(xs))
	for i := range pts {
		pts[i] = r3.Vec{X: xs[i], Y: ys[i], Z: zs[i]}
	}
	return pts, nil
}

// Components splits vectors into coordinate slices.
func Components(vs []r3.Vec) (xs, ys, zs []float64) {
	xs = make([]float64, len(vs))
	ys = make([]float64, len(vs))
	zs = make([]float64, len(vs))
	for i, v := range vs {
		xs[i], ys[i], zs[i] = v.X, v.Y, v.Z
	}
	return xs, ys, zs
}

// SampleScalar evaluates f over the points given as coordinate slices.
func SampleScalar(f Scalar, xs, ys, zs []float64) ([]float64, error) {
	pts, err := Points(xs, ys, zs)
	if err != nil {
		return nil, err
	}
	dst := make([]float64, len(pts))
	if err := f.EvaluateGrid(pts, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// SampleVector evaluates f over the points given as coordinate slices.
func SampleVector(f Vector, xs, ys, zs []float64) ([]r3.Vec, error) {
	pts, err := Points(xs, ys, zs)
	if err != nil {
		return nil, err
	}
	dst := make([]r3.Vec, len(pts))
	if err := f.EvaluateGrid(pts, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

func checkLen[T any](pts []r3.Vec, dst []T) error {
	if len(pts) != len(dst) {
		return fmt.Errorf("%w: %d points, %d results", ErrShapeMismatch, len(pts), len(dst))
	}
	return nil
}

// scalarGrid evaluates f into a fresh buffer.
func scalarGrid(f Scalar, pts []r3.Vec) ([]float64, error) {
	buf := make([]float64, len(pts))
	if err := f.EvaluateGrid(pts, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// vectorGrid evaluates f into a fresh buffer.
func vectorGrid(f Vector, pts []r3.Vec) ([]r3.Vec, error) {
	buf := make([]r3.Vec, len(pts))
	if err := f.EvaluateGrid(pts, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// unit returns v/|v|, or the zero vector when v is zero.
func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}
