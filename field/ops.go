package field

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// ScalarOp combines two scalar values.
type ScalarOp func(a, b float64) float64

// VectorOp combines two vector values.
type VectorOp func(a, b r3.Vec) r3.Vec

// Named scalar operations.
var (
	OpAdd ScalarOp = func(a, b float64) float64 { return a + b }
	OpSub ScalarOp = func(a, b float64) float64 { return a - b }
	OpMul ScalarOp = func(a, b float64) float64 { return a * b }
	OpMin ScalarOp = func(a, b float64) float64 { return min(a, b) }
	OpMax ScalarOp = func(a, b float64) float64 { return max(a, b) }
	OpAvg ScalarOp = func(a, b float64) float64 { return (a + b) / 2 }
)

// Named vector operations.
var (
	OpVectorAdd VectorOp = r3.Add
	OpVectorSub VectorOp = r3.Sub
	OpVectorAvg VectorOp = func(a, b r3.Vec) r3.Vec { return r3.Scale(0.5, r3.Add(a, b)) }
)

var scalarOps = map[string]ScalarOp{
	"add": OpAdd, "sub": OpSub, "mul": OpMul,
	"min": OpMin, "max": OpMax, "avg": OpAvg,
}

var vectorOps = map[string]VectorOp{
	"add": OpVectorAdd, "sub": OpVectorSub, "avg": OpVectorAvg,
}

// ParseScalarOp looks up a scalar operation by name.
func ParseScalarOp(name string) (ScalarOp, error) {
	op, ok := scalarOps[name]
	if !ok {
		return nil, fmt.Errorf("%w: scalar op %q", ErrUnsupported, name)
	}
	return op, nil
}

// ParseVectorOp looks up a vector operation by name.
func ParseVectorOp(name string) (VectorOp, error) {
	op, ok := vectorOps[name]
	if !ok {
		return nil, fmt.Errorf("%w: vector op %q", ErrUnsupported, name)
	}
	return op, nil
}

// ScalarBinOp is op(A(p), B(p)).
type ScalarBinOp struct {
	a, b Scalar
	op   ScalarOp
}

// NewScalarBinOp combines two scalar fields with op.
func NewScalarBinOp(a, b Scalar, op ScalarOp) *ScalarBinOp {
	return &ScalarBinOp{a: a, b: b, op: op}
}

// Evaluate implements Scalar.
func (f *ScalarBinOp) Evaluate(p r3.Vec) (float64, error) {
	a, err := f.a.Evaluate(p)
	if err != nil {
		return 0, err
	}
	b, err := f.b.Evaluate(p)
	if err != nil {
		return 0, err
	}
	return f.op(a, b), nil
}

// EvaluateGrid implements Scalar.
func (f *ScalarBinOp) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	if err := f.a.EvaluateGrid(pts, dst); err != nil {
		return err
	}
	bs, err := scalarGrid(f.b, pts)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = f.op(dst[i], bs[i])
	}
	return nil
}

// VectorBinOp is op(A(p), B(p)).
type VectorBinOp struct {
	a, b Vector
	op   VectorOp
}

// NewVectorBinOp combines two vector fields with op.
func NewVectorBinOp(a, b Vector, op VectorOp) *VectorBinOp {
	return &VectorBinOp{a: a, b: b, op: op}
}

// Evaluate implements Vector.
func (f *VectorBinOp) Evaluate(p r3.Vec) (r3.Vec, error) {
	a, err := f.a.Evaluate(p)
	if err != nil {
		return r3.Vec{}, err
	}
	b, err := f.b.Evaluate(p)
	if err != nil {
		return r3.Vec{}, err
	}
	return f.op(a, b), nil
}

// EvaluateGrid implements Vector.
func (f *VectorBinOp) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	if err := f.a.EvaluateGrid(pts, dst); err != nil {
		return err
	}
	bs, err := vectorGrid(f.b, pts)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = f.op(dst[i], bs[i])
	}
	return nil
}

// NewCross returns the pointwise cross product A × B.
func NewCross(a, b Vector) *VectorBinOp {
	return NewVectorBinOp(a, b, r3.Cross)
}

// Negated is -A.
type Negated struct{ a Scalar }

// NewNegated negates a scalar field.
func NewNegated(a Scalar) *Negated { return &Negated{a: a} }

// Evaluate implements Scalar.
func (f *Negated) Evaluate(p r3.Vec) (float64, error) {
	v, err := f.a.Evaluate(p)
	return -v, err
}

// EvaluateGrid implements Scalar.
func (f *Negated) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	if err := f.a.EvaluateGrid(pts, dst); err != nil {
		return err
	}
	floats.Scale(-1, dst)
	return nil
}

// NegatedVector is -A.
type NegatedVector struct{ a Vector }

// NewNegatedVector negates a vector field.
func NewNegatedVector(a Vector) *NegatedVector { return &NegatedVector{a: a} }

// Evaluate implements Vector.
func (f *NegatedVector) Evaluate(p r3.Vec) (r3.Vec, error) {
	v, err := f.a.Evaluate(p)
	return r3.Scale(-1, v), err
}

// EvaluateGrid implements Vector.
func (f *NegatedVector) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	if err := f.a.EvaluateGrid(pts, dst); err != nil {
		return err
	}
	for i, v := range dst {
		dst[i] = r3.Scale(-1, v)
	}
	return nil
}

// reduceVector is a scalar field computed from one vector field.
type reduceVector struct {
	a  Vector
	fn func(r3.Vec) float64
}

func (f *reduceVector) Evaluate(p r3.Vec) (float64, error) {
	v, err := f.a.Evaluate(p)
	if err != nil {
		return 0, err
	}
	return f.fn(v), nil
}

func (f *reduceVector) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	vs, err := vectorGrid(f.a, pts)
	if err != nil {
		return err
	}
	for i, v := range vs {
		dst[i] = f.fn(v)
	}
	return nil
}

// Norm is |A(p)|.
type Norm struct{ reduceVector }

// NewNorm returns the Euclidean length of a vector field.
func NewNorm(a Vector) *Norm { return &Norm{reduceVector{a: a, fn: r3.Norm}} }

// Component extracts one coordinate (0, 1 or 2) of a vector field.
type Component struct{ reduceVector }

// NewComponent returns the axis-th coordinate of a.
func NewComponent(a Vector, axis int) (*Component, error) {
	var fn func(r3.Vec) float64
	switch axis {
	case 0:
		fn = func(v r3.Vec) float64 { return v.X }
	case 1:
		fn = func(v r3.Vec) float64 { return v.Y }
	case 2:
		fn = func(v r3.Vec) float64 { return v.Z }
	default:
		return nil, fmt.Errorf("%w: axis %d", ErrUnsupported, axis)
	}
	return &Component{reduceVector{a: a, fn: fn}}, nil
}

// Dot is the pointwise scalar product A·B.
type Dot struct{ a, b Vector }

// NewDot returns the scalar product of two vector fields.
func NewDot(a, b Vector) *Dot { return &Dot{a: a, b: b} }

// Evaluate implements Scalar.
func (f *Dot) Evaluate(p r3.Vec) (float64, error) {
	a, err := f.a.Evaluate(p)
	if err != nil {
		return 0, err
	}
	b, err := f.b.Evaluate(p)
	if err != nil {
		return 0, err
	}
	return r3.Dot(a, b), nil
}

// EvaluateGrid implements Scalar.
func (f *Dot) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	as, err := vectorGrid(f.a, pts)
	if err != nil {
		return err
	}
	bs, err := vectorGrid(f.b, pts)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = r3.Dot(as[i], bs[i])
	}
	return nil
}

// Scaled is V(p) multiplied by S(p).
type Scaled struct {
	v Vector
	s Scalar
}

// NewScaled multiplies a vector field by a scalar field.
func NewScaled(v Vector, s Scalar) *Scaled { return &Scaled{v: v, s: s} }

// Evaluate implements Vector.
func (f *Scaled) Evaluate(p r3.Vec) (r3.Vec, error) {
	v, err := f.v.Evaluate(p)
	if err != nil {
		return r3.Vec{}, err
	}
	s, err := f.s.Evaluate(p)
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Scale(s, v), nil
}

// EvaluateGrid implements Vector.
func (f *Scaled) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	if err := f.v.EvaluateGrid(pts, dst); err != nil {
		return err
	}
	ss, err := scalarGrid(f.s, pts)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = r3.Scale(ss[i], dst[i])
	}
	return nil
}

// Lerp is (1-s)·V1 + s·V2 with s taken from a scalar field.
type Lerp struct {
	v1, v2 Vector
	s      Scalar
}

// NewLerp interpolates between two vector fields.
func NewLerp(v1, v2 Vector, s Scalar) *Lerp { return &Lerp{v1: v1, v2: v2, s: s} }

func lerpVec(a, b r3.Vec, s float64) r3.Vec {
	return r3.Add(r3.Scale(1-s, a), r3.Scale(s, b))
}

// Evaluate implements Vector.
func (f *Lerp) Evaluate(p r3.Vec) (r3.Vec, error) {
	a, err := f.v1.Evaluate(p)
	if err != nil {
		return r3.Vec{}, err
	}
	b, err := f.v2.Evaluate(p)
	if err != nil {
		return r3.Vec{}, err
	}
	s, err := f.s.Evaluate(p)
	if err != nil {
		return r3.Vec{}, err
	}
	return lerpVec(a, b, s), nil
}

// EvaluateGrid implements Vector.
func (f *Lerp) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	if err := f.v1.EvaluateGrid(pts, dst); err != nil {
		return err
	}
	bs, err := vectorGrid(f.v2, pts)
	if err != nil {
		return err
	}
	ss, err := scalarGrid(f.s, pts)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = lerpVec(dst[i], bs[i], ss[i])
	}
	return nil
}

// MergeMode names a reduction over several scalar fields.
type MergeMode string

// Supported merge modes.
const (
	MergeMin MergeMode = "min"
	MergeMax MergeMode = "max"
	MergeSum MergeMode = "sum"
	MergeAvg MergeMode = "avg"
)

// Merge reduces a fixed list of scalar fields elementwise.
type Merge struct {
	mode   MergeMode
	fields []Scalar
}

// NewMerge validates mode and returns the reduction over fields.
// A single field is returned unchanged by evaluation.
func NewMerge(mode MergeMode, fields ...Scalar) (*Merge, error) {
	switch mode {
	case MergeMin, MergeMax, MergeSum, MergeAvg:
	default:
		return nil, fmt.Errorf("%w: merge mode %q", ErrUnsupported, mode)
	}
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	return &Merge{mode: mode, fields: append([]Scalar(nil), fields...)}, nil
}

// combine folds v into acc.
func (f *Merge) combine(acc, v float64) float64 {
	switch f.mode {
	case MergeMin:
		return min(acc, v)
	case MergeMax:
		return max(acc, v)
	}
	return acc + v
}

// Evaluate implements Scalar.
func (f *Merge) Evaluate(p r3.Vec) (float64, error) {
	acc, err := f.fields[0].Evaluate(p)
	if err != nil {
		return 0, err
	}
	for _, sf := range f.fields[1:] {
		v, err := sf.Evaluate(p)
		if err != nil {
			return 0, err
		}
		acc = f.combine(acc, v)
	}
	if f.mode == MergeAvg {
		acc *= 1 / float64(len(f.fields))
	}
	return acc, nil
}

// EvaluateGrid implements Scalar.
func (f *Merge) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	if err := f.fields[0].EvaluateGrid(pts, dst); err != nil {
		return err
	}
	aux := make([]float64, len(pts))
	for _, sf := range f.fields[1:] {
		if err := sf.EvaluateGrid(pts, aux); err != nil {
			return err
		}
		switch f.mode {
		case MergeSum, MergeAvg:
			floats.Add(dst, aux)
		default:
			for i := range dst {
				dst[i] = f.combine(dst[i], aux[i])
			}
		}
	}
	if f.mode == MergeAvg {
		floats.Scale(1/float64(len(f.fields)), dst)
	}
	return nil
}

// ProjectionMode selects the tangent or cotangent part of a projection.
type ProjectionMode string

// Projection modes.
const (
	Tangent   ProjectionMode = "tangent"
	Cotangent ProjectionMode = "cotangent"
)

// Projection projects V1 onto the direction of V2 (Tangent) or returns the
// remainder orthogonal to V2 (Cotangent). Where V2 is zero the tangent part is
// the zero vector and the cotangent part is V1.
type Projection struct {
	v1, v2 Vector
	mode   ProjectionMode
}

// NewProjection validates mode and returns the projection field.
func NewProjection(v1, v2 Vector, mode ProjectionMode) (*Projection, error) {
	if mode != Tangent && mode != Cotangent {
		return nil, fmt.Errorf("%w: projection mode %q", ErrUnsupported, mode)
	}
	return &Projection{v1: v1, v2: v2, mode: mode}, nil
}

func (f *Projection) project(a, b r3.Vec) r3.Vec {
	var tangent r3.Vec
	if bb := r3.Dot(b, b); bb != 0 {
		tangent = r3.Scale(r3.Dot(a, b)/bb, b)
	}
	if f.mode == Tangent {
		return tangent
	}
	return r3.Sub(a, tangent)
}

// Evaluate implements Vector.
func (f *Projection) Evaluate(p r3.Vec) (r3.Vec, error) {
	a, err := f.v1.Evaluate(p)
	if err != nil {
		return r3.Vec{}, err
	}
	b, err := f.v2.Evaluate(p)
	if err != nil {
		return r3.Vec{}, err
	}
	return f.project(a, b), nil
}

// EvaluateGrid implements Vector.
func (f *Projection) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	if err := f.v1.EvaluateGrid(pts, dst); err != nil {
		return err
	}
	bs, err := vectorGrid(f.v2, pts)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = f.project(dst[i], bs[i])
	}
	return nil
}

// Compose builds a vector field from three scalar coordinate fields.
type Compose struct {
	x, y, z Scalar
}

// NewCompose returns (X(p), Y(p), Z(p)).
func NewCompose(x, y, z Scalar) *Compose { return &Compose{x: x, y: y, z: z} }

// Evaluate implements Vector.
func (f *Compose) Evaluate(p r3.Vec) (r3.Vec, error) {
	var out r3.Vec
	var err error
	if out.X, err = f.x.Evaluate(p); err != nil {
		return r3.Vec{}, err
	}
	if out.Y, err = f.y.Evaluate(p); err != nil {
		return r3.Vec{}, err
	}
	if out.Z, err = f.z.Evaluate(p); err != nil {
		return r3.Vec{}, err
	}
	return out, nil
}

// EvaluateGrid implements Vector.
func (f *Compose) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	xs, err := scalarGrid(f.x, pts)
	if err != nil {
		return err
	}
	ys, err := scalarGrid(f.y, pts)
	if err != nil {
		return err
	}
	zs, err := scalarGrid(f.z, pts)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = r3.Vec{X: xs[i], Y: ys[i], Z: zs[i]}
	}
	return nil
}
