package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/falloff"
)

// Constant is a scalar field with the same value everywhere.
type Constant struct {
	Value float64
}

// NewConstant returns a constant scalar field.
func NewConstant(v float64) *Constant { return &Constant{Value: v} }

// Evaluate implements Scalar.
func (f *Constant) Evaluate(r3.Vec) (float64, error) { return f.Value, nil }

// EvaluateGrid implements Scalar.
func (f *Constant) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = f.Value
	}
	return nil
}

// ConstantVector is a vector field with the same value everywhere.
type ConstantVector struct {
	Value r3.Vec
}

// NewConstantVector returns a constant vector field.
func NewConstantVector(v r3.Vec) *ConstantVector { return &ConstantVector{Value: v} }

// Evaluate implements Vector.
func (f *ConstantVector) Evaluate(r3.Vec) (r3.Vec, error) { return f.Value, nil }

// EvaluateGrid implements Vector.
func (f *ConstantVector) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = f.Value
	}
	return nil
}

// Metric selects how PointDistance measures distance.
type Metric string

// Supported metrics.
const (
	Euclidean Metric = "euclidean"
	Manhattan Metric = "manhattan"
	Chebyshev Metric = "chebyshev"
)

// ParseMetric validates a metric name. The empty string maps to Euclidean.
func ParseMetric(name string) (Metric, error) {
	switch Metric(name) {
	case "", Euclidean:
		return Euclidean, nil
	case Manhattan, Chebyshev:
		return Metric(name), nil
	}
	return "", fmt.Errorf("%w: metric %q", ErrUnsupported, name)
}

func (m Metric) length(v r3.Vec) float64 {
	switch m {
	case Manhattan:
		return math.Abs(v.X) + math.Abs(v.Y) + math.Abs(v.Z)
	case Chebyshev:
		return max(math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z))
	}
	return r3.Norm(v)
}

// PointDistance is the distance to a fixed center, optionally shaped by a falloff.
type PointDistance struct {
	center  r3.Vec
	metric  Metric
	falloff falloff.Func
}

// NewPointDistance returns a point distance field. f may be nil.
func NewPointDistance(center r3.Vec, metric Metric, f falloff.Func) (*PointDistance, error) {
	m, err := ParseMetric(string(metric))
	if err != nil {
		return nil, err
	}
	return &PointDistance{center: center, metric: m, falloff: f}, nil
}

func (f *PointDistance) at(p r3.Vec) float64 {
	return f.falloff.Eval(f.metric.length(r3.Sub(p, f.center)))
}

// Evaluate implements Scalar.
func (f *PointDistance) Evaluate(p r3.Vec) (float64, error) { return f.at(p), nil }

// EvaluateGrid implements Scalar.
func (f *PointDistance) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i, p := range pts {
		dst[i] = f.at(p)
	}
	return nil
}

// line holds a point and unit direction shared by line fields.
type line struct {
	point, dir r3.Vec
}

func newLine(point, direction r3.Vec) (line, error) {
	if r3.Norm(direction) == 0 {
		return line{}, fmt.Errorf("%w: zero line direction", ErrDegenerate)
	}
	return line{point: point, dir: unit(direction)}, nil
}

// toward returns the vector from p to its projection on the line.
func (l line) toward(p r3.Vec) r3.Vec {
	rel := r3.Sub(p, l.point)
	return r3.Sub(r3.Scale(r3.Dot(rel, l.dir), l.dir), rel)
}

// plane holds a point and unit normal shared by plane fields.
type plane struct {
	point, normal r3.Vec
}

func newPlane(point, normal r3.Vec) (plane, error) {
	if r3.Norm(normal) == 0 {
		return plane{}, fmt.Errorf("%w: zero plane normal", ErrDegenerate)
	}
	return plane{point: point, normal: unit(normal)}, nil
}

// toward returns the vector from p to its projection on the plane.
func (pl plane) toward(p r3.Vec) r3.Vec {
	return r3.Scale(-r3.Dot(r3.Sub(p, pl.point), pl.normal), pl.normal)
}

// LineDistance is the distance to an infinite line.
type LineDistance struct {
	line    line
	falloff falloff.Func
}

// NewLineDistance returns a line distance field. f may be nil.
func NewLineDistance(point, direction r3.Vec, f falloff.Func) (*LineDistance, error) {
	l, err := newLine(point, direction)
	if err != nil {
		return nil, err
	}
	return &LineDistance{line: l, falloff: f}, nil
}

func (f *LineDistance) at(p r3.Vec) float64 {
	return f.falloff.Eval(r3.Norm(f.line.toward(p)))
}

// Evaluate implements Scalar.
func (f *LineDistance) Evaluate(p r3.Vec) (float64, error) { return f.at(p), nil }

// EvaluateGrid implements Scalar.
func (f *LineDistance) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i, p := range pts {
		dst[i] = f.at(p)
	}
	return nil
}

// PlaneDistance is the unsigned distance to a plane.
type PlaneDistance struct {
	plane   plane
	falloff falloff.Func
}

// NewPlaneDistance returns a plane distance field. f may be nil.
func NewPlaneDistance(point, normal r3.Vec, f falloff.Func) (*PlaneDistance, error) {
	pl, err := newPlane(point, normal)
	if err != nil {
		return nil, err
	}
	return &PlaneDistance{plane: pl, falloff: f}, nil
}

func (f *PlaneDistance) at(p r3.Vec) float64 {
	return f.falloff.Eval(math.Abs(r3.Dot(r3.Sub(p, f.plane.point), f.plane.normal)))
}

// Evaluate implements Scalar.
func (f *PlaneDistance) Evaluate(p r3.Vec) (float64, error) { return f.at(p), nil }

// EvaluateGrid implements Scalar.
func (f *PlaneDistance) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i, p := range pts {
		dst[i] = f.at(p)
	}
	return nil
}

// rescale sets the length of v to falloff(|v|), keeping its direction.
// A nil falloff leaves v unchanged; a zero v stays zero.
func rescale(v r3.Vec, f falloff.Func) r3.Vec {
	if f == nil {
		return v
	}
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(f(n)/n, v)
}

// attractor is a vector field defined by a per-point offset function.
type attractor struct {
	toward  func(p r3.Vec) r3.Vec
	falloff falloff.Func
}

func (f *attractor) at(p r3.Vec) r3.Vec { return rescale(f.toward(p), f.falloff) }

func (f *attractor) Evaluate(p r3.Vec) (r3.Vec, error) { return f.at(p), nil }

func (f *attractor) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i, p := range pts {
		dst[i] = f.at(p)
	}
	return nil
}

// PointAttractor points from each sample toward a center.
type PointAttractor struct{ attractor }

// NewPointAttractor returns center - p, rescaled by f when f is non-nil.
func NewPointAttractor(center r3.Vec, f falloff.Func) *PointAttractor {
	return &PointAttractor{attractor{
		toward:  func(p r3.Vec) r3.Vec { return r3.Sub(center, p) },
		falloff: f,
	}}
}

// LineAttractor points from each sample to its projection on a line.
type LineAttractor struct{ attractor }

// NewLineAttractor returns a line attractor. f may be nil.
func NewLineAttractor(point, direction r3.Vec, f falloff.Func) (*LineAttractor, error) {
	l, err := newLine(point, direction)
	if err != nil {
		return nil, err
	}
	return &LineAttractor{attractor{toward: l.toward, falloff: f}}, nil
}

// PlaneAttractor points from each sample to its projection on a plane.
type PlaneAttractor struct{ attractor }

// NewPlaneAttractor returns a plane attractor. f may be nil.
func NewPlaneAttractor(point, normal r3.Vec, f falloff.Func) (*PlaneAttractor, error) {
	pl, err := newPlane(point, normal)
	if err != nil {
		return nil, err
	}
	return &PlaneAttractor{attractor{toward: pl.toward, falloff: f}}, nil
}

// MatrixVector is the displacement M·p - p induced by a 4x4 homogeneous
// transform. The w component of M·p is ignored.
type MatrixVector struct {
	m *mat.Dense
}

// NewMatrixVector copies m, which must be 4x4.
func NewMatrixVector(m mat.Matrix) (*MatrixVector, error) {
	r, c := m.Dims()
	if r != 4 || c != 4 {
		return nil, fmt.Errorf("%w: matrix is %dx%d, want 4x4", ErrShapeMismatch, r, c)
	}
	return &MatrixVector{m: mat.DenseCopyOf(m)}, nil
}

// Evaluate implements Vector.
func (f *MatrixVector) Evaluate(p r3.Vec) (r3.Vec, error) {
	var out mat.VecDense
	out.MulVec(f.m, mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1}))
	return r3.Vec{X: out.AtVec(0) - p.X, Y: out.AtVec(1) - p.Y, Z: out.AtVec(2) - p.Z}, nil
}

// EvaluateGrid stacks the points as columns of a 4xN matrix and applies the
// transform in one multiplication.
func (f *MatrixVector) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	if len(pts) == 0 {
		return nil
	}
	n := len(pts)
	stacked := mat.NewDense(4, n, nil)
	for i, p := range pts {
		stacked.Set(0, i, p.X)
		stacked.Set(1, i, p.Y)
		stacked.Set(2, i, p.Z)
		stacked.Set(3, i, 1)
	}
	var out mat.Dense
	out.Mul(f.m, stacked)
	for i, p := range pts {
		dst[i] = r3.Vec{X: out.At(0, i) - p.X, Y: out.At(1, i) - p.Y, Z: out.At(2, i) - p.Z}
	}
	return nil
}
