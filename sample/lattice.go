// Package sample evaluates fields over regular lattices and exports the
// results: shaped grids, summary statistics and CSV files.
package sample

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/field"
)

// ErrEmptyLattice is returned for a lattice with a non-positive resolution.
var ErrEmptyLattice = errors.New("sample: lattice has no points")

// Lattice is a regular axis-aligned grid of NX*NY*NZ points spanning Min..Max.
// An axis with a single sample sits at Min.
type Lattice struct {
	Min, Max   r3.Vec
	NX, NY, NZ int
}

// Validate reports whether l describes at least one point.
func (l Lattice) Validate() error {
	if l.NX < 1 || l.NY < 1 || l.NZ < 1 {
		return fmt.Errorf("%w: resolution %dx%dx%d", ErrEmptyLattice, l.NX, l.NY, l.NZ)
	}
	return nil
}

// Len returns the number of points.
func (l Lattice) Len() int { return l.NX * l.NY * l.NZ }

// Shape returns the per-axis resolution.
func (l Lattice) Shape() [3]int { return [3]int{l.NX, l.NY, l.NZ} }

// Index returns the flat index of (i, j, k). x varies fastest.
func (l Lattice) Index(i, j, k int) int { return i + l.NX*(j+l.NY*k) }

func span(lo, hi float64, n, i int) float64 {
	if n == 1 {
		return lo
	}
	return lo + (hi-lo)*float64(i)/float64(n-1)
}

// At returns the point at (i, j, k).
func (l Lattice) At(i, j, k int) r3.Vec {
	return r3.Vec{
		X: span(l.Min.X, l.Max.X, l.NX, i),
		Y: span(l.Min.Y, l.Max.Y, l.NY, j),
		Z: span(l.Min.Z, l.Max.Z, l.NZ, k),
	}
}

// Points returns every lattice point in x-fastest order.
func (l Lattice) Points() []r3.Vec {
	pts := make([]r3.Vec, 0, l.Len())
	for k := range l.NZ {
		for j := range l.NY {
			for i := range l.NX {
				pts = append(pts, l.At(i, j, k))
			}
		}
	}
	return pts
}

// ScalarGrid holds scalar samples over a lattice.
type ScalarGrid struct {
	Lattice Lattice
	Values  []float64
}

// At returns the sample at (i, j, k).
func (g *ScalarGrid) At(i, j, k int) float64 { return g.Values[g.Lattice.Index(i, j, k)] }

// VectorGrid holds vector samples over a lattice.
type VectorGrid struct {
	Lattice Lattice
	Values  []r3.Vec
}

// At returns the sample at (i, j, k).
func (g *VectorGrid) At(i, j, k int) r3.Vec { return g.Values[g.Lattice.Index(i, j, k)] }

// Scalar evaluates f over every point of l in one batch.
func Scalar(f field.Scalar, l Lattice) (*ScalarGrid, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	g := &ScalarGrid{Lattice: l, Values: make([]float64, l.Len())}
	if err := f.EvaluateGrid(l.Points(), g.Values); err != nil {
		return nil, fmt.Errorf("sampling scalar field: %w", err)
	}
	return g, nil
}

// Vector evaluates f over every point of l in one batch.
func Vector(f field.Vector, l Lattice) (*VectorGrid, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	g := &VectorGrid{Lattice: l, Values: make([]r3.Vec, l.Len())}
	if err := f.EvaluateGrid(l.Points(), g.Values); err != nil {
		return nil, fmt.Errorf("sampling vector field: %w", err)
	}
	return g, nil
}

// Magnitudes returns |v| for every sample.
func (g *VectorGrid) Magnitudes() []float64 {
	out := make([]float64, len(g.Values))
	for i, v := range g.Values {
		out[i] = r3.Norm(v)
	}
	return out
}
