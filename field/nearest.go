package field

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/falloff"
	"github.com/pthm-cable/fields/spatial"
)

// pointIndex returns index if set, otherwise builds a k-d tree over sites.
func pointIndex(index spatial.PointIndex, sites []r3.Vec) (spatial.PointIndex, error) {
	if index != nil {
		return index, nil
	}
	if len(sites) == 0 {
		return nil, ErrNoGeometry
	}
	return spatial.NewKDTree(sites)
}

// surfaceIndex returns index if set, otherwise builds a BVH over mesh.
func surfaceIndex(index spatial.SurfaceIndex, mesh *spatial.Mesh) (spatial.SurfaceIndex, error) {
	if index != nil {
		return index, nil
	}
	if mesh == nil {
		return nil, ErrNoGeometry
	}
	return spatial.NewBVH(*mesh)
}

// nearestSite and nearestSurface fail with spatial.ErrNoNearest for a
// non-finite query, whatever index is in use.
func nearestSite(index spatial.PointIndex, p r3.Vec) (spatial.Hit, error) {
	if !spatial.Finite(p) {
		return spatial.Hit{}, fmt.Errorf("query %v: %w", p, spatial.ErrNoNearest)
	}
	hit, ok := index.Nearest(p)
	if !ok {
		return spatial.Hit{}, fmt.Errorf("query %v: %w", p, spatial.ErrNoNearest)
	}
	return hit, nil
}

func nearestSurface(index spatial.SurfaceIndex, p r3.Vec) (spatial.SurfaceHit, error) {
	if !spatial.Finite(p) {
		return spatial.SurfaceHit{}, fmt.Errorf("query %v: %w", p, spatial.ErrNoNearest)
	}
	hit, ok := index.NearestSurface(p)
	if !ok {
		return spatial.SurfaceHit{}, fmt.Errorf("query %v: %w", p, spatial.ErrNoNearest)
	}
	return hit, nil
}

// NearestPoint is the distance to the nearest of a set of sites.
type NearestPoint struct {
	index   spatial.PointIndex
	falloff falloff.Func
}

// NewNearestPoint returns a nearest-site distance field. Either index or a
// non-empty sites list is required; a supplied index takes precedence.
// f may be nil.
func NewNearestPoint(index spatial.PointIndex, sites []r3.Vec, f falloff.Func) (*NearestPoint, error) {
	idx, err := pointIndex(index, sites)
	if err != nil {
		return nil, err
	}
	return &NearestPoint{index: idx, falloff: f}, nil
}

// Evaluate implements Scalar.
func (f *NearestPoint) Evaluate(p r3.Vec) (float64, error) {
	hit, err := nearestSite(f.index, p)
	if err != nil {
		return 0, err
	}
	return f.falloff.Eval(hit.Distance), nil
}

// EvaluateGrid implements Scalar.
func (f *NearestPoint) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i, p := range pts {
		hit, err := nearestSite(f.index, p)
		if err != nil {
			return err
		}
		dst[i] = f.falloff.Eval(hit.Distance)
	}
	return nil
}

// NearestPointVector is the offset from a sample to its nearest site.
type NearestPointVector struct {
	index   spatial.PointIndex
	falloff falloff.Func
	negate  bool
}

// NewNearestPointVector returns a nearest-site offset field. With a falloff
// the offset is rescaled to falloff(distance); negate flips the result.
func NewNearestPointVector(index spatial.PointIndex, sites []r3.Vec, f falloff.Func, negate bool) (*NearestPointVector, error) {
	idx, err := pointIndex(index, sites)
	if err != nil {
		return nil, err
	}
	return &NearestPointVector{index: idx, falloff: f, negate: negate}, nil
}

func (f *NearestPointVector) at(p r3.Vec) (r3.Vec, error) {
	hit, err := nearestSite(f.index, p)
	if err != nil {
		return r3.Vec{}, err
	}
	v := rescale(r3.Sub(hit.Point, p), f.falloff)
	if f.negate {
		v = r3.Scale(-1, v)
	}
	return v, nil
}

// Evaluate implements Vector.
func (f *NearestPointVector) Evaluate(p r3.Vec) (r3.Vec, error) { return f.at(p) }

// EvaluateGrid implements Vector.
func (f *NearestPointVector) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i, p := range pts {
		v, err := f.at(p)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

// NearestSurface is the distance to the nearest point of a mesh surface.
type NearestSurface struct {
	index   spatial.SurfaceIndex
	falloff falloff.Func
}

// NewNearestSurface returns a surface distance field. Either index or mesh is
// required; a supplied index takes precedence. f may be nil.
func NewNearestSurface(index spatial.SurfaceIndex, mesh *spatial.Mesh, f falloff.Func) (*NearestSurface, error) {
	idx, err := surfaceIndex(index, mesh)
	if err != nil {
		return nil, err
	}
	return &NearestSurface{index: idx, falloff: f}, nil
}

// Evaluate implements Scalar.
func (f *NearestSurface) Evaluate(p r3.Vec) (float64, error) {
	hit, err := nearestSurface(f.index, p)
	if err != nil {
		return 0, err
	}
	return f.falloff.Eval(hit.Distance), nil
}

// EvaluateGrid implements Scalar.
func (f *NearestSurface) EvaluateGrid(pts []r3.Vec, dst []float64) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i, p := range pts {
		hit, err := nearestSurface(f.index, p)
		if err != nil {
			return err
		}
		dst[i] = f.falloff.Eval(hit.Distance)
	}
	return nil
}

// SurfaceOptions configures NearestSurfaceVector.
type SurfaceOptions struct {
	// Falloff rescales the offset toward the surface. Ignored with UseNormal.
	Falloff falloff.Func
	// UseNormal returns the face normal at the nearest point instead of the offset.
	UseNormal bool
	// SignedNormal flips the normal so it points to the side of the surface
	// the sample is on.
	SignedNormal bool
}

// NearestSurfaceVector is the offset toward, or the normal at, the nearest
// surface point.
type NearestSurfaceVector struct {
	index spatial.SurfaceIndex
	opts  SurfaceOptions
}

// NewNearestSurfaceVector returns a surface vector field under the same
// index-or-mesh rule as NewNearestSurface.
func NewNearestSurfaceVector(index spatial.SurfaceIndex, mesh *spatial.Mesh, opts SurfaceOptions) (*NearestSurfaceVector, error) {
	idx, err := surfaceIndex(index, mesh)
	if err != nil {
		return nil, err
	}
	return &NearestSurfaceVector{index: idx, opts: opts}, nil
}

func (f *NearestSurfaceVector) at(p r3.Vec) (r3.Vec, error) {
	hit, err := nearestSurface(f.index, p)
	if err != nil {
		return r3.Vec{}, err
	}
	if !f.opts.UseNormal {
		return rescale(r3.Sub(hit.Point, p), f.opts.Falloff), nil
	}
	n := hit.Normal
	if f.opts.SignedNormal && r3.Dot(r3.Sub(p, hit.Point), n) < 0 {
		n = r3.Scale(-1, n)
	}
	return n, nil
}

// Evaluate implements Vector.
func (f *NearestSurfaceVector) Evaluate(p r3.Vec) (r3.Vec, error) { return f.at(p) }

// EvaluateGrid implements Vector.
func (f *NearestSurfaceVector) EvaluateGrid(pts []r3.Vec, dst []r3.Vec) error {
	if err := checkLen(pts, dst); err != nil {
		return err
	}
	for i, p := range pts {
		v, err := f.at(p)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}
