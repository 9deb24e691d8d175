package field

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultStep is the finite-difference step used when none is configured.
const DefaultStep = 0.001

// Differential operators use fixed-step central differences. Each partial
// derivative costs two evaluations of the child field, and nothing is cached,
// so nesting operators multiplies the work.

func checkStep(h float64) error {
	if !(h > 0) {
		return fmt.Errorf("%w: step %v must be positive", ErrDegenerate, h)
	}
	return nil
}

func axes(h float64) [3]r3.Vec {
	return [3]r3.Vec{{X: h}, {Y: h}, {Z: h}}
}

func shifted(pts []r3.Vec, o r3.Vec, plus bool) []r3.Vec {
	out := make([]r3.Vec, len(pts))
	for i, p := range pts {
		if plus {
			out[i] = r3.Add(p, o)
		} else {
			out[i] = r3.Sub(p, o)
		}
	}
	return out
}

func scalarPartials(f Scalar, p r3.Vec, h float64) ([3]float64, error) {
	var d [3]float64
	for ax, o := range axes(h) {
		fp, err := f.Evaluate(r3.Add(p, o))
		if err != nil {
			return d, err
		}
		fm, err := f.Evaluate(r3.Sub(p, o))
		if err != nil {
			return d, err
		}
		d[ax] = (fp - fm) / (2 * h)
	}
	return d, nil
}

func scalarPartialsGrid(f Scalar, pts []r3.Vec, h float64) ([3][]float64, error) {
	var d [3][]float64
	for ax, o := range axes(h) {
		fp, err := scalarGrid(f, shifted(pts, o, true))
		if err != nil {
			return d, err
		}
		fm, err := scalarGrid(f, shifted(pts, o, false))
		if err != nil {
			return d, err
		}
		for i := range fp {
			fp[i] = (fp[i] - fm[i]) / (2 * h)
		}
		d[ax] = fp
	}
	return d, nil
}

func vectorPartials(f Vector, p r3.Vec, h float64) ([3]r3.Vec, error) {
	var d [3]r3.Vec
	for ax, o := range axes(h) {
		vp, err := f.Evaluate(r3.Add(p, o))
		if err != nil {
			return d, err
		}
		vm, err := f.Evaluate(r3.Sub(p, o))
		if err != nil {
			return d, err
		}
		d[ax] = r3.Scale(1/(2*h), r3.Sub(vp, vm))
	}
	return d, nil
}

func vectorPartialsGrid(f Vector, pts []r3.Vec, h float64) ([3][]r3.Vec, error) {
	var d [3][]r3.Vec
	for ax, o := range axes(h) {
		vp, err := vectorGrid(f, shifted(pts, o, true))
		if err != nil {
			return d, err
		}
		vm, err := vectorGrid(f, shifted(pts, o, false))
		if err != nil {
			return d, err
		}
		for i := range vp {
			vp[i] = r3.Scale(1/(2*h), r3.Sub(vp[i], vm[i]))
		}
		d[ax] = vp
	}
	return d, nil
}

// Gradient is the gradient of a scalar field.
type Gradient struct {
	f Scalar
	h float64
}

// NewGradient returns the gradient of f with step h.
func NewGradient(f Scalar, h float64) (*Gradient, error) {
	if err := checkStep(h); err != nil {
		return nil, err
	}
	return &Gradient{f: f, h: h}, nil
}

// Evaluate implements Vector.
func (g *Gradient) Evaluate(p r3.Vec) (r3.Vec, error) {
	d, err := scalarPartials(g.f, p, g.h)
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Vec{X: d[0], Y: d[1], Z: d[2]}, nil
}

// EvaluateGrid implements Vector.
func (g *Gradient) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	d, err := scalarPartialsGrid(g.f, pts, g.h)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = r3.Vec{X: d[0][i], Y: d[1][i], Z: d[2][i]}
	}
	return nil
}

// Rotor is the curl of a vector field.
type Rotor struct {
	v Vector
	h float64
}

// NewRotor returns the curl of v with step h.
func NewRotor(v Vector, h float64) (*Rotor, error) {
	if err := checkStep(h); err != nil {
		return nil, err
	}
	return &Rotor{v: v, h: h}, nil
}

// curl assembles the rotor from partials d[axis] = dV/d(axis).
func curl(dx, dy, dz r3.Vec) r3.Vec {
	return r3.Vec{
		X: dy.Z - dz.Y,
		Y: -(dx.Z - dz.X),
		Z: dx.Y - dy.X,
	}
}

// Evaluate implements Vector.
func (r *Rotor) Evaluate(p r3.Vec) (r3.Vec, error) {
	d, err := vectorPartials(r.v, p, r.h)
	if err != nil {
		return r3.Vec{}, err
	}
	return curl(d[0], d[1], d[2]), nil
}

// EvaluateGrid implements Vector.
func (r *Rotor) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	d, err := vectorPartialsGrid(r.v, pts, r.h)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = curl(d[0][i], d[1][i], d[2][i])
	}
	return nil
}

// Divergence is the divergence of a vector field.
type Divergence struct {
	v Vector
	h float64
}

// NewDivergence returns the divergence of v with step h.
func NewDivergence(v Vector, h float64) (*Divergence, error) {
	if err := checkStep(h); err != nil {
		return nil, err
	}
	return &Divergence{v: v, h: h}, nil
}

// Evaluate implements Scalar.
func (f *Divergence) Evaluate(p r3.Vec) (float64, error) {
	d, err := vectorPartials(f.v, p, f.h)
	if err != nil {
		return 0, err
	}
	return d[0].X + d[1].Y + d[2].Z, nil
}

// EvaluateGrid implements Scalar.
func (f *Divergence) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	d, err := vectorPartialsGrid(f.v, pts, f.h)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = d[0][i].X + d[1][i].Y + d[2][i].Z
	}
	return nil
}

// Laplacian is the sum of second partial derivatives of a scalar field.
type Laplacian struct {
	f Scalar
	h float64
}

// NewLaplacian returns the Laplacian of f with step h.
func NewLaplacian(f Scalar, h float64) (*Laplacian, error) {
	if err := checkStep(h); err != nil {
		return nil, err
	}
	return &Laplacian{f: f, h: h}, nil
}

// Evaluate implements Scalar.
func (l *Laplacian) Evaluate(p r3.Vec) (float64, error) {
	c, err := l.f.Evaluate(p)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, o := range axes(l.h) {
		fp, err := l.f.Evaluate(r3.Add(p, o))
		if err != nil {
			return 0, err
		}
		fm, err := l.f.Evaluate(r3.Sub(p, o))
		if err != nil {
			return 0, err
		}
		sum += (fp - 2*c + fm) / (l.h * l.h)
	}
	return sum, nil
}

// EvaluateGrid implements Scalar.
func (l *Laplacian) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	cs, err := scalarGrid(l.f, pts)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, o := range axes(l.h) {
		fp, err := scalarGrid(l.f, shifted(pts, o, true))
		if err != nil {
			return err
		}
		fm, err := scalarGrid(l.f, shifted(pts, o, false))
		if err != nil {
			return err
		}
		for i := range dst {
			dst[i] += (fp[i] - 2*cs[i] + fm[i]) / (l.h * l.h)
		}
	}
	return nil
}
