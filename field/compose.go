package field

import "gonum.org/v1/gonum/spatial/r3"

// ScalarComposition is B(A(p)): the output of vector field A is used as the
// coordinates at which scalar field B is evaluated.
type ScalarComposition struct {
	a Vector
	b Scalar
}

// NewScalarComposition returns B∘A.
func NewScalarComposition(a Vector, b Scalar) *ScalarComposition {
	return &ScalarComposition{a: a, b: b}
}

// Evaluate implements Scalar.
func (f *ScalarComposition) Evaluate(p r3.Vec) (float64, error) {
	q, err := f.a.Evaluate(p)
	if err != nil {
		return 0, err
	}
	return f.b.Evaluate(q)
}

// EvaluateGrid implements Scalar.
func (f *ScalarComposition) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	qs, err := vectorGrid(f.a, pts)
	if err != nil {
		return err
	}
	return f.b.EvaluateGrid(qs, dst)
}

// VectorComposition is B(A(p)) for two vector fields.
type VectorComposition struct {
	a, b Vector
}

// NewVectorComposition returns B∘A.
func NewVectorComposition(a, b Vector) *VectorComposition {
	return &VectorComposition{a: a, b: b}
}

// Evaluate implements Vector.
func (f *VectorComposition) Evaluate(p r3.Vec) (r3.Vec, error) {
	q, err := f.a.Evaluate(p)
	if err != nil {
		return r3.Vec{}, err
	}
	return f.b.Evaluate(q)
}

// EvaluateGrid implements Vector.
func (f *VectorComposition) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	qs, err := vectorGrid(f.a, pts)
	if err != nil {
		return err
	}
	return f.b.EvaluateGrid(qs, dst)
}
