// Package falloff provides distance falloff functions used to shape how a
// field's magnitude decays away from its source geometry.
package falloff

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnsupported is returned for an unknown falloff kind.
var ErrUnsupported = errors.New("falloff: unsupported kind")

// Kind names a falloff curve.
type Kind string

// Supported falloff kinds.
const (
	None          Kind = "none"
	Inverse       Kind = "inverse"
	InverseSquare Kind = "inverse_square"
	InverseCubic  Kind = "inverse_cubic"
	InverseExp    Kind = "inverse_exp"
	Gauss         Kind = "gauss"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{None, Inverse, InverseSquare, InverseCubic, InverseExp, Gauss}

// ParseKind validates a kind name. The empty string maps to None.
func ParseKind(name string) (Kind, error) {
	if name == "" {
		return None, nil
	}
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
}

// Func maps a distance to a shaped value.
// A nil Func is a passthrough.
type Func func(r float64) float64

// Eval applies f to r, treating a nil f as the identity.
func (f Func) Eval(r float64) float64 {
	if f == nil {
		return r
	}
	return f(r)
}

// Apply evaluates f elementwise into dst. dst may alias rs.
func (f Func) Apply(rs, dst []float64) {
	for i, r := range rs {
		dst[i] = f.Eval(r)
	}
}

// curve returns the unscaled curve for kind, or nil for None.
func curve(kind Kind) (func(c, r float64) float64, error) {
	switch kind {
	case None:
		return nil, nil
	case Inverse:
		return func(_, r float64) float64 { return 1 / r }, nil
	case InverseSquare:
		return func(_, r float64) float64 { return 1 / (r * r) }, nil
	case InverseCubic:
		return func(_, r float64) float64 { return 1 / (r * r * r) }, nil
	case InverseExp:
		return func(c, r float64) float64 { return math.Exp(-c * r) }, nil
	case Gauss:
		return func(c, r float64) float64 { return math.Exp(-c * r * r / 2) }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, kind)
}

// New builds a falloff function of the given kind.
//
// Every kind except None is scaled by amplitude and evaluates to amplitude
// exactly at r = 0. Negative results clamp to zero. With clamp set the result
// is also capped at r itself, so the curve never exceeds the raw distance.
// None returns a nil Func (passthrough).
func New(kind Kind, amplitude, coefficient float64, clamp bool) (Func, error) {
	fn, err := curve(kind)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, nil
	}
	return func(r float64) float64 {
		var v float64
		if r == 0 {
			v = amplitude
		} else {
			v = amplitude * fn(coefficient, r)
		}
		if v < 0 || math.IsNaN(v) {
			v = 0
		}
		if clamp && v > r {
			v = r
		}
		return v
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(kind Kind, amplitude, coefficient float64, clamp bool) Func {
	f, err := New(kind, amplitude, coefficient, clamp)
	if err != nil {
		panic(err)
	}
	return f
}
