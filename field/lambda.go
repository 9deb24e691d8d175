package field

import "gonum.org/v1/gonum/spatial/r3"

// ScalarFunc computes a scalar from a point and the value of an optional
// driving vector field at that point (zero when there is no driver).
type ScalarFunc func(p, v r3.Vec) float64

// VectorFunc computes a vector from a point and the value of an optional
// driving scalar field at that point (zero when there is no driver).
type VectorFunc func(p r3.Vec, s float64) r3.Vec

// ScalarLambda wraps a user function as a scalar field.
type ScalarLambda struct {
	fn     ScalarFunc
	driver Vector
}

// NewScalarLambda returns a field evaluating fn. driver may be nil.
func NewScalarLambda(fn ScalarFunc, driver Vector) *ScalarLambda {
	return &ScalarLambda{fn: fn, driver: driver}
}

// ScalarOf wraps a plain coordinate function.
func ScalarOf(fn func(x, y, z float64) float64) *ScalarLambda {
	return NewScalarLambda(func(p, _ r3.Vec) float64 { return fn(p.X, p.Y, p.Z) }, nil)
}

// Evaluate implements Scalar.
func (f *ScalarLambda) Evaluate(p r3.Vec) (float64, error) {
	var v r3.Vec
	if f.driver != nil {
		var err error
		if v, err = f.driver.Evaluate(p); err != nil {
			return 0, err
		}
	}
	return f.fn(p, v), nil
}

// EvaluateGrid implements Scalar.
func (f *ScalarLambda) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	var vs []r3.Vec
	if f.driver != nil {
		var err error
		if vs, err = vectorGrid(f.driver, pts); err != nil {
			return err
		}
	}
	for i, p := range pts {
		var v r3.Vec
		if vs != nil {
			v = vs[i]
		}
		dst[i] = f.fn(p, v)
	}
	return nil
}

// VectorLambda wraps a user function as a vector field.
type VectorLambda struct {
	fn     VectorFunc
	driver Scalar
}

// NewVectorLambda returns a field evaluating fn. driver may be nil.
func NewVectorLambda(fn VectorFunc, driver Scalar) *VectorLambda {
	return &VectorLambda{fn: fn, driver: driver}
}

// VectorOf wraps a plain coordinate function.
func VectorOf(fn func(x, y, z float64) (float64, float64, float64)) *VectorLambda {
	return NewVectorLambda(func(p r3.Vec, _ float64) r3.Vec {
		x, y, z := fn(p.X, p.Y, p.Z)
		return r3.Vec{X: x, Y: y, Z: z}
	}, nil)
}

// Evaluate implements Vector.
func (f *VectorLambda) Evaluate(p r3.Vec) (r3.Vec, error) {
	var s float64
	if f.driver != nil {
		var err error
		if s, err = f.driver.Evaluate(p); err != nil {
			return r3.Vec{}, err
		}
	}
	return f.fn(p, s), nil
}

// EvaluateGrid implements Vector.
func (f *VectorLambda) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	var ss []float64
	if f.driver != nil {
		var err error
		if ss, err = scalarGrid(f.driver, pts); err != nil {
			return err
		}
	}
	for i, p := range pts {
		var s float64
		if ss != nil {
			s = ss[i]
		}
		dst[i] = f.fn(p, s)
	}
	return nil
}
